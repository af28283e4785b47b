package content

import (
	"fmt"
	"strconv"
	"strings"
)

// AnswerKind selects how numeric answers are normalized before comparison.
type AnswerKind string

const (
	AnswerInteger  AnswerKind = "integer"
	AnswerDecimal  AnswerKind = "decimal"
	AnswerFraction AnswerKind = "fraction"
)

// normalizeAnswer normalizes an answer string for comparison.
//
// Integers ignore leading zeros, decimals ignore trailing zeros and
// fractions are reduced to lowest terms, so "2/4" matches "1/2".
func normalizeAnswer(answer string, kind AnswerKind) (string, error) {
	answer = strings.TrimSpace(answer)

	switch kind {
	case AnswerInteger, "":
		n, err := strconv.ParseInt(answer, 10, 64)
		if err != nil {
			return "", fmt.Errorf("invalid integer: %w", err)
		}
		return strconv.FormatInt(n, 10), nil

	case AnswerDecimal:
		f, err := strconv.ParseFloat(answer, 64)
		if err != nil {
			return "", fmt.Errorf("invalid decimal: %w", err)
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil

	case AnswerFraction:
		num, den, err := parseFraction(answer)
		if err != nil {
			return "", err
		}
		if den == 0 {
			return "", fmt.Errorf("zero denominator")
		}
		if den < 0 {
			num = -num
			den = -den
		}
		g := gcd(abs(num), den)
		if g == 0 {
			g = 1
		}
		return fmt.Sprintf("%d/%d", num/g, den/g), nil

	default:
		return "", fmt.Errorf("unknown answer kind %q", kind)
	}
}

// parseFraction parses "a/b" into numerator and denominator. A bare
// integer is read as a whole number over 1.
func parseFraction(s string) (int64, int64, error) {
	numStr, denStr, ok := strings.Cut(s, "/")
	if !ok {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid fraction format: %q", s)
		}
		return n, 1, nil
	}
	num, err := strconv.ParseInt(strings.TrimSpace(numStr), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid numerator: %w", err)
	}
	den, err := strconv.ParseInt(strings.TrimSpace(denStr), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid denominator: %w", err)
	}
	return num, den, nil
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
