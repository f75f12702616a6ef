package random

import "math/rand/v2"

// CharsetAlphanumeric contains characters a-zA-Z0-9
var CharsetAlphanumeric = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

// String generates a random string with a specific length, only using characters out of the given charset.
// The global source is used if rng is nil.
func String(rng *rand.Rand, length int, charset []rune) string {
	buf := make([]rune, length)
	for i := range buf {
		if rng == nil {
			buf[i] = charset[rand.IntN(len(charset))]
		} else {
			buf[i] = charset[rng.IntN(len(charset))]
		}
	}
	return string(buf)
}

// Strings generates n distinct random strings using String.
// It panics if the charset cannot produce n distinct strings of the given length.
func Strings(rng *rand.Rand, n, length int, charset []rune) []string {
	if distinct := combinations(len(charset), length); distinct >= 0 && distinct < n {
		panic("random: charset too small for the requested amount of distinct strings")
	}
	seen := make(map[string]struct{}, n)
	res := make([]string, 0, n)
	for len(res) < n {
		str := String(rng, length, charset)
		if _, ok := seen[str]; ok {
			continue
		}
		seen[str] = struct{}{}
		res = append(res, str)
	}
	return res
}

// combinations returns base^exp, or -1 if it does not fit into an int
func combinations(base, exp int) int {
	res := 1
	for i := 0; i < exp; i++ {
		if res > (1<<62)/max(base, 1) {
			return -1
		}
		res *= base
	}
	return res
}
