package function

import "slices"

// Nest wraps final into every function of funcs, the first one being the outermost.
// It allows rewriting expressions like `res := a(b(c(final)))` as `res := function.Nest(final, a, b, c)`.
func Nest[T any](final T, funcs ...func(T) T) T {
	res := final
	for _, fn := range slices.Backward(funcs) {
		res = fn(res)
	}
	return res
}
