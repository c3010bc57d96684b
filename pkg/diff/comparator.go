package diff

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Comparator reports whether the obtained output matches the expected output
type Comparator func(obtained, expected string) bool

// Names of the comparators accepted by ByName
const (
	NameAlpha  = "alpha"
	NameLines  = "lines"
	NameExact  = "exact"
	NameTokens = "tokens"
)

// Alpha compares only the letters of both strings, everything else
// (white spaces, digits, punctuations, new lines) is discarded.
func Alpha(obtained, expected string) bool {
	a, b := []rune(obtained), []rune(expected)
	i, j := 0, 0
	for {
		for i < len(a) && !unicode.IsLetter(a[i]) {
			i++
		}
		for j < len(b) && !unicode.IsLetter(b[j]) {
			j++
		}
		if i == len(a) || j == len(b) {
			return i == len(a) && j == len(b)
		}
		if a[i] != b[j] {
			return false
		}
		i++
		j++
	}
}

// Exact compares both strings byte by byte
func Exact(obtained, expected string) bool {
	return obtained == expected
}

// Tokens returns a comparator splits both strings by white spaces and compares
// token by token. Tokens that both parse as float are equal if they are within
// the absolute or relative tolerance.
func Tokens(tolerance float64) Comparator {
	return func(obtained, expected string) bool {
		act, exp := strings.Fields(obtained), strings.Fields(expected)
		if len(act) != len(exp) {
			return false
		}
		for i := range exp {
			if act[i] == exp[i] {
				continue
			}
			if !numberEqual(act[i], exp[i], tolerance) {
				return false
			}
		}
		return true
	}
}

func numberEqual(act, exp string, tolerance float64) bool {
	a, err := strconv.ParseFloat(act, 64)
	if err != nil {
		return false
	}
	e, err := strconv.ParseFloat(exp, 64)
	if err != nil {
		return false
	}
	if math.IsNaN(a) || math.IsNaN(e) {
		return false
	}
	d := math.Abs(a - e)
	return d <= tolerance || d <= tolerance*math.Abs(e)
}

// ByName resolves comparator by its configured name
func ByName(name string, tolerance float64) (Comparator, error) {
	switch strings.ToLower(name) {
	case "", NameAlpha:
		return Alpha, nil
	case NameLines:
		return Lines, nil
	case NameExact:
		return Exact, nil
	case NameTokens:
		return Tokens(tolerance), nil
	default:
		return nil, fmt.Errorf("unknown comparator %q", name)
	}
}
