package order

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	numberPrefix   = "MO"
	sequenceDigits = 5
	// MaxSequence is the largest sequence that fits the fixed-width format.
	MaxSequence = 99999
)

// NumberPrefix returns the order-number prefix shared by one hotel and year,
// e.g. "MO-GRAND-2026-".
func NumberPrefix(hotelCode string, year int) string {
	return fmt.Sprintf("%s-%s-%04d-", numberPrefix, strings.ToUpper(hotelCode), year)
}

// FormatNumber renders MO-<hotelCode>-<year>-<5-digit sequence>.
func FormatNumber(hotelCode string, year, seq int) (string, error) {
	if strings.TrimSpace(hotelCode) == "" {
		return "", fmt.Errorf("hotel code is required")
	}
	if seq < 1 || seq > MaxSequence {
		return "", fmt.Errorf("sequence %d out of range 1..%d", seq, MaxSequence)
	}
	return fmt.Sprintf("%s%0*d", NumberPrefix(hotelCode, year), sequenceDigits, seq), nil
}

// ParsedNumber is the decoded form of an order number.
type ParsedNumber struct {
	HotelCode string
	Year      int
	Sequence  int
}

// ParseNumber decodes an order number produced by FormatNumber. Hotel codes
// may themselves contain dashes, so the year and sequence are read from the
// right.
func ParseNumber(s string) (ParsedNumber, error) {
	parts := strings.Split(s, "-")
	if len(parts) < 4 || parts[0] != numberPrefix {
		return ParsedNumber{}, fmt.Errorf("malformed order number %q", s)
	}
	seqPart := parts[len(parts)-1]
	yearPart := parts[len(parts)-2]
	if len(seqPart) != sequenceDigits || len(yearPart) != 4 {
		return ParsedNumber{}, fmt.Errorf("malformed order number %q", s)
	}
	seq, err := strconv.Atoi(seqPart)
	if err != nil {
		return ParsedNumber{}, fmt.Errorf("malformed sequence in %q: %w", s, err)
	}
	year, err := strconv.Atoi(yearPart)
	if err != nil {
		return ParsedNumber{}, fmt.Errorf("malformed year in %q: %w", s, err)
	}
	return ParsedNumber{
		HotelCode: strings.Join(parts[1:len(parts)-2], "-"),
		Year:      year,
		Sequence:  seq,
	}, nil
}
