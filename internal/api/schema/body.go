package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"reflect"
	"strconv"
	"strings"
)

var (
	errRequestBodyInvalidJSON = func(err string) *Error {
		return &Error{
			Type:    "validation.requestBody.invalidJSON",
			Message: "Request body is not a valid JSON input.",
			Details: map[string]any{
				"error": err,
			},
		}
	}
	errRequestBodyTooLarge = func(limit int64) *Error {
		return &Error{
			Type:    "validation.requestBody.tooLarge",
			Message: fmt.Sprintf("Request body exceeds the maximum size of %d bytes.", limit),
			Details: map[string]any{
				"limit": limit,
			},
		}
	}
	errRequestBodyParameterUnknown = func(name string) *Error {
		return &Error{
			Type:    "validation.requestBody.parameter.unknown",
			Message: fmt.Sprintf("The request body parameter '%s' is not supported by this endpoint.", name),
			Details: map[string]any{
				"parameter": name,
			},
		}
	}
	errRequestBodyParameterInvalidType = func(name, expectedType string) *Error {
		return &Error{
			Type:    "validation.requestBody.parameter.invalidType",
			Message: fmt.Sprintf("The request body parameter '%s' could not be assigned to the required type (%s).", name, expectedType),
			Details: map[string]any{
				"parameter":     name,
				"expected_type": expectedType,
			},
		}
	}
	errRequestBodyParameterMissing = func(name string) *Error {
		return &Error{
			Type:    "validation.requestBody.parameter.missing",
			Message: fmt.Sprintf("The request body parameter '%s' is required but was not present in the request.", name),
			Details: map[string]any{
				"parameter": name,
			},
		}
	}
	errRequestBodyParameterNumberOutOfRange = func(name string, value, min, max int64) *Error {
		comparison := ""
		if value < min {
			comparison = fmt.Sprintf("%d [given] < %d [min]", value, min)
		} else if value > max {
			comparison = fmt.Sprintf("%d [given] > %d [max]", value, max)
		}

		return &Error{
			Type:    "validation.requestBody.parameter.number.outOfRange",
			Message: fmt.Sprintf("The request body parameter '%s' is out of the required range (%s).", name, comparison),
			Details: map[string]any{
				"parameter": name,
				"value":     value,
				"min":       min,
				"max":       max,
			},
		}
	}
)

// UnmarshalBody parses and decodes a JSON request body of at most maxSize bytes and performs validations on it.
// Parameters the target type does not declare are rejected.
func UnmarshalBody[T any](request *http.Request, maxSize int64) (*T, []*Error, error) {
	body, err := io.ReadAll(http.MaxBytesReader(nil, request.Body, maxSize))
	if err != nil {
		var sizeErr *http.MaxBytesError
		if errors.As(err, &sizeErr) {
			return nil, []*Error{errRequestBodyTooLarge(sizeErr.Limit)}, nil
		}
		return nil, nil, err
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()

	target := new(T)
	if err := decoder.Decode(target); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, []*Error{errRequestBodyParameterInvalidType(typeErr.Field, typeErr.Type.String())}, nil
		}
		if name, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
			return nil, []*Error{errRequestBodyParameterUnknown(strings.Trim(name, "\""))}, nil
		}
		return nil, []*Error{errRequestBodyInvalidJSON(err.Error())}, nil
	}
	if decoder.More() {
		return nil, []*Error{errRequestBodyInvalidJSON("unexpected data after the top-level value")}, nil
	}

	errs, err := validateStruct("", target)
	if err != nil {
		return nil, nil, err
	}
	return target, errs, nil
}

// validateStruct checks the 'required', 'min' and 'max' tags of every field of val, descending into nested structs
func validateStruct(fieldPrefix string, val any) ([]*Error, error) {
	ref := reflect.Indirect(reflect.ValueOf(val))
	if ref.Kind() != reflect.Struct {
		return nil, errors.New("illegal call to validateStruct with non-struct parameter")
	}
	typ := ref.Type()

	var errs []*Error
	for i := 0; i < typ.NumField(); i++ {
		fieldDef := typ.Field(i)
		fieldName := fieldPrefix + getFieldName(fieldDef)
		min, max := numberBounds(fieldDef)

		field := ref.Field(i)
		if strings.EqualFold(fieldDef.Tag.Get("required"), "true") && field.Kind() == reflect.Pointer && field.IsNil() {
			errs = append(errs, errRequestBodyParameterMissing(fieldName))
			continue
		}
		field = reflect.Indirect(field)

		switch {
		case field.CanUint():
			val := field.Uint()
			if val > math.MaxInt64 || int64(val) < min || int64(val) > max {
				errs = append(errs, errRequestBodyParameterNumberOutOfRange(fieldName, clampToInt64(val), min, max))
			}
		case field.CanInt():
			val := field.Int()
			if val < min || val > max {
				errs = append(errs, errRequestBodyParameterNumberOutOfRange(fieldName, val, min, max))
			}
		case field.Kind() == reflect.Struct:
			subErrs, err := validateStruct(fieldName+".", field.Interface())
			if err != nil {
				return nil, err
			}
			errs = append(errs, subErrs...)
		}
	}

	return errs, nil
}

// numberBounds reads the 'min' and 'max' tags of a field, defaulting to the int64 range
func numberBounds(def reflect.StructField) (int64, int64) {
	min, err := strconv.ParseInt(def.Tag.Get("min"), 10, 64)
	if err != nil {
		min = math.MinInt64
	}
	max, err := strconv.ParseInt(def.Tag.Get("max"), 10, 64)
	if err != nil {
		max = math.MaxInt64
	}
	return min, max
}

func clampToInt64(val uint64) int64 {
	if val > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(val)
}

func getFieldName(def reflect.StructField) string {
	jsonVal, ok := def.Tag.Lookup("json")
	if !ok || jsonVal == "-" {
		return def.Name
	}
	name, _, _ := strings.Cut(jsonVal, ",")
	return name
}
