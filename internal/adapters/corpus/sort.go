package corpus

import (
	"fmt"
	"strings"
)

// LessFunc returns the file name ordering for a corpus.sort_order value
func LessFunc(order string) (func(a, b string) bool, error) {
	switch order {
	case "natural":
		return NaturalLess, nil
	case "lexical":
		return func(a, b string) bool { return a < b }, nil
	default:
		return nil, fmt.Errorf("unsupported sort order: %s", order)
	}
}

// NaturalLess orders names so that embedded numbers compare by value:
// "2.txt" sorts before "10.txt". Equal-valued numbers fall back to the
// shorter digit run, then to plain string order.
func NaturalLess(a, b string) bool {
	ra, rb := a, b
	for ra != "" && rb != "" {
		ca, da := chunk(ra)
		cb, db := chunk(rb)
		ra, rb = ra[len(ca):], rb[len(cb):]

		if da && db {
			na, nb := strings.TrimLeft(ca, "0"), strings.TrimLeft(cb, "0")
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			if na != nb {
				return na < nb
			}
			if len(ca) != len(cb) {
				return len(ca) < len(cb)
			}
			continue
		}
		if ca != cb {
			return ca < cb
		}
	}
	if len(ra) != len(rb) {
		return len(ra) < len(rb)
	}
	return a < b
}

// chunk returns the leading run of digits or non-digits of s
func chunk(s string) (string, bool) {
	digit := isDigit(s[0])
	i := 1
	for i < len(s) && isDigit(s[i]) == digit {
		i++
	}
	return s[:i], digit
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
