package pricing

import (
	"errors"
	"math"
)

// ErrInvalidNights is returned for derivations over a non-positive stay length.
var ErrInvalidNights = errors.New("pricing: nights must be positive")

// Breakdown is the derived price view of a stay. Never persisted as-is;
// the booking carries the three price fields and the rest is recomputed.
type Breakdown struct {
	PerNightNoVat   float64 `json:"per_night_no_vat"`
	PerNightWithVat float64 `json:"per_night_with_vat"`
	TotalPrice      float64 `json:"total_price"`
	Nights          int     `json:"nights"`
	IsTourist       bool    `json:"is_tourist"`
}

// Calculator performs VAT-inclusive/exclusive/total derivations. The VAT
// rate is configuration, never a literal at a call site; tourists are
// VAT-exempt so both nightly figures coincide for them.
type Calculator struct {
	VATRate float64
}

// NewCalculator builds a calculator for the configured VAT rate.
func NewCalculator(vatRate float64) Calculator {
	return Calculator{VATRate: vatRate}
}

// WithVat derives the VAT-inclusive nightly price.
func (c Calculator) WithVat(noVat float64, isTourist bool) float64 {
	if isTourist {
		return noVat
	}
	return round2(noVat * (1 + c.VATRate))
}

// WithoutVat derives the VAT-exclusive nightly price.
func (c Calculator) WithoutVat(withVat float64, isTourist bool) float64 {
	if isTourist {
		return withVat
	}
	return round2(withVat / (1 + c.VATRate))
}

// TotalFromPerNight derives the stay total from the nightly price.
func (c Calculator) TotalFromPerNight(perNightWithVat float64, nights int) (float64, error) {
	if nights <= 0 {
		return 0, ErrInvalidNights
	}
	return round2(perNightWithVat * float64(nights)), nil
}

// PerNightFromTotal derives the nightly price from a user-entered total.
// The total is authoritative and must survive verbatim, so the quotient is
// returned unrounded; rounding belongs only to secondary derived fields.
func (c Calculator) PerNightFromTotal(total float64, nights int) (float64, error) {
	if nights <= 0 {
		return 0, ErrInvalidNights
	}
	return total / float64(nights), nil
}

// FromPerNight builds the full breakdown from a VAT-exclusive nightly price.
func (c Calculator) FromPerNight(perNightNoVat float64, nights int, isTourist bool) (Breakdown, error) {
	if nights <= 0 {
		return Breakdown{}, ErrInvalidNights
	}
	withVat := c.WithVat(perNightNoVat, isTourist)
	total, err := c.TotalFromPerNight(withVat, nights)
	if err != nil {
		return Breakdown{}, err
	}
	return Breakdown{
		PerNightNoVat:   perNightNoVat,
		PerNightWithVat: withVat,
		TotalPrice:      total,
		Nights:          nights,
		IsTourist:       isTourist,
	}, nil
}

// FromTotal builds the breakdown when the user edited the total directly.
// The entered total is preserved exactly; per-night figures are re-derived
// downward from it.
func (c Calculator) FromTotal(total float64, nights int, isTourist bool) (Breakdown, error) {
	perNight, err := c.PerNightFromTotal(total, nights)
	if err != nil {
		return Breakdown{}, err
	}
	return Breakdown{
		PerNightNoVat:   c.WithoutVat(perNight, isTourist),
		PerNightWithVat: round2(perNight),
		TotalPrice:      total,
		Nights:          nights,
		IsTourist:       isTourist,
	}, nil
}

// ToggleTourist recomputes the VAT split after the tourist flag changed.
// The total is left untouched; only the no-VAT side of the split moves.
func (c Calculator) ToggleTourist(b Breakdown, isTourist bool) Breakdown {
	b.IsTourist = isTourist
	b.PerNightNoVat = c.WithoutVat(b.PerNightWithVat, isTourist)
	return b
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
