package eoq

import (
	"errors"
	"math"
)

// Result carries the order quantity and its cost breakdown.
type Result struct {
	Q            int64   `json:"q"`
	OrderingCost float64 `json:"orderingCost"`
	HoldingCost  float64 `json:"holdingCost"`
	TotalCost    float64 `json:"totalCost"`
	Frequency    int64   `json:"frequency"`
}

var ErrBadParameters = errors.New("parameters D, S and H must be greater than 0")

// Calculate applies the classic formula Q = sqrt(2DS/H) for annual demand
// d, ordering cost s and holding cost h. Pure arithmetic, no state.
func Calculate(d, s, h float64) (*Result, error) {
	if d <= 0 || s <= 0 || h <= 0 {
		return nil, ErrBadParameters
	}

	q := math.Sqrt((2 * d * s) / h)

	orderingCost := (d / q) * s
	holdingCost := (q / 2) * h

	return &Result{
		Q:            int64(math.Round(q)),
		OrderingCost: orderingCost,
		HoldingCost:  holdingCost,
		TotalCost:    orderingCost + holdingCost,
		Frequency:    int64(math.Round(d / q)),
	}, nil
}
