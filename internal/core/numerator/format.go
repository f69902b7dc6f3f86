package numerator

import (
	"fmt"
	"regexp"
	"strconv"

	"custody/internal/core/apperror"
)

// SequenceWidth is the minimum number of digits of the sequence part.
const SequenceWidth = 4

var (
	// canonicalPattern is the legal shape accepted from callers.
	canonicalPattern = regexp.MustCompile(`^(FA|AV)-\d{4}-\d{4}$`)

	// parsePattern also accepts sequences that outgrew the padding.
	parsePattern = regexp.MustCompile(`^(FA|AV)-(\d{4})-(\d{4,})$`)
)

// Number is a decoded invoice number.
type Number struct {
	Prefix   string
	Year     int
	Sequence int64
}

// String formats the number back to its canonical text.
func (n Number) String() string {
	return Format(n.Prefix, n.Year, n.Sequence)
}

// Key returns the sequence the number belongs to.
func (n Number) Key() Key {
	return Key{Prefix: n.Prefix, Year: n.Year}
}

// Format renders PREFIX-YYYY-NNNN. Sequences wider than four digits are kept whole.
func Format(prefix string, year int, sequence int64) string {
	return fmt.Sprintf("%s-%04d-%0*d", prefix, year, SequenceWidth, sequence)
}

// Validate reports whether number matches the legal format exactly.
func Validate(number string) bool {
	return canonicalPattern.MatchString(number)
}

// Parse decodes a number produced by Format.
func Parse(number string) (Number, error) {
	m := parsePattern.FindStringSubmatch(number)
	if m == nil {
		return Number{}, apperror.NewMalformedNumber(number)
	}

	year, err := strconv.Atoi(m[2])
	if err != nil {
		return Number{}, apperror.NewMalformedNumber(number)
	}
	seq, err := strconv.ParseInt(m[3], 10, 64)
	if err != nil {
		return Number{}, apperror.NewMalformedNumber(number).WithCause(err)
	}

	return Number{Prefix: m[1], Year: year, Sequence: seq}, nil
}

// ParseSequence extracts the trailing sequence of a number.
func ParseSequence(number string) (int64, error) {
	n, err := Parse(number)
	if err != nil {
		return 0, err
	}
	return n.Sequence, nil
}
