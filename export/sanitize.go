package export

import (
	"fmt"
	"strings"

	"github.com/faretracker/fareexport/types"
	"github.com/shopspring/decimal"
)

// PricePolicy decides what happens to prices that do not fit the expected
// "<number><suffix>" shape.
type PricePolicy string

const (
	// PriceBestEffort truncates whatever is left after separator removal. A
	// price shorter than the suffix becomes an empty string.
	PriceBestEffort PricePolicy = "best-effort"

	// PriceStrict rejects prices shorter than the suffix and prices whose
	// remaining value is not a decimal number.
	PriceStrict PricePolicy = "strict"
)

// Sanitizer strips thousands separators and a fixed-length unit suffix from
// raw prices.
type Sanitizer struct {
	Separator    string
	SuffixLength int
	Policy       PricePolicy
}

// DefaultSanitizer removes "," and a three character currency suffix.
func DefaultSanitizer() Sanitizer {
	return Sanitizer{
		Separator:    DefaultSeparator,
		SuffixLength: DefaultSuffixLength,
		Policy:       PriceBestEffort,
	}
}

// Sanitize removes every separator from the raw price and then drops the last
// three characters. No trimming happens: "1,234.56 USD" becomes "1234.56 ".
func Sanitize(raw types.RawRecord) types.CleanRecord {
	clean, _ := DefaultSanitizer().Sanitize(raw)
	return clean
}

// Sanitize applies the sanitizer to one record.
func (s Sanitizer) Sanitize(raw types.RawRecord) (types.CleanRecord, error) {
	price := raw.Price
	if s.Separator != "" {
		price = strings.ReplaceAll(price, s.Separator, "")
	}

	runes := []rune(price)

	if len(runes) < s.SuffixLength {
		if s.Policy == PriceStrict {
			return types.CleanRecord{}, fmt.Errorf("%w: %q at %s is shorter than the %d character suffix", ErrMalformedPrice, raw.Price, raw.Time, s.SuffixLength)
		}

		return types.CleanRecord{Time: raw.Time, Price: ""}, nil
	}

	price = string(runes[:len(runes)-s.SuffixLength])

	if s.Policy == PriceStrict {
		if _, err := decimal.NewFromString(strings.TrimSpace(price)); err != nil {
			return types.CleanRecord{}, fmt.Errorf("%w: %q at %s is not a decimal number", ErrMalformedPrice, raw.Price, raw.Time)
		}
	}

	return types.CleanRecord{Time: raw.Time, Price: price}, nil
}
