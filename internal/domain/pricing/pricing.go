package pricing

import (
	"errors"

	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

var ErrCurrencyUnset = errors.New("pricing: currency must be defined")

// Quote is the price computed for a stay. The total is frozen when the
// reservation is created and never recalculated from the listing's current
// rate.
type Quote struct {
	Nights  int
	Nightly money.Money
	Total   money.Money
}

// ForStay computes nights × nightly rate in integer minor units. Fails with
// daterange.ErrInvalidRange when the range yields no nights.
func ForStay(nightly money.Money, r daterange.DateRange) (Quote, error) {
	if nightly.Currency == "" {
		return Quote{}, ErrCurrencyUnset
	}
	if err := r.Validate(); err != nil {
		return Quote{}, err
	}
	nights := r.Nights()
	if nights <= 0 {
		return Quote{}, daterange.ErrInvalidRange
	}
	return Quote{
		Nights:  nights,
		Nightly: nightly,
		Total:   nightly.Multiply(int64(nights)),
	}, nil
}
