package eoq_test

import (
	"testing"

	"eoq-backend/internal/eoq"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate(t *testing.T) {
	// D=1000, S=50, H=2 -> Q = sqrt(50000) ~ 223.6
	res, err := eoq.Calculate(1000, 50, 2)
	require.NoError(t, err)

	assert.EqualValues(t, 224, res.Q)
	assert.InDelta(t, 223.61, res.OrderingCost, 0.01)
	assert.InDelta(t, 223.61, res.HoldingCost, 0.01)
	assert.InDelta(t, 447.21, res.TotalCost, 0.01)
	assert.EqualValues(t, 4, res.Frequency)

	// at the optimum the two cost components are equal
	assert.InDelta(t, res.OrderingCost, res.HoldingCost, 0.0001)
}

func TestCalculate_ExactSquare(t *testing.T) {
	// D=100, S=2, H=4 -> Q = sqrt(100) = 10 exactly
	res, err := eoq.Calculate(100, 2, 4)
	require.NoError(t, err)

	assert.EqualValues(t, 10, res.Q)
	assert.InDelta(t, 20, res.OrderingCost, 0.0001)
	assert.InDelta(t, 20, res.HoldingCost, 0.0001)
	assert.InDelta(t, 40, res.TotalCost, 0.0001)
	assert.EqualValues(t, 10, res.Frequency)
}

func TestCalculate_BadParameters(t *testing.T) {
	for _, params := range [][3]float64{
		{0, 50, 2},
		{1000, 0, 2},
		{1000, 50, 0},
		{-1, 50, 2},
		{1000, -5, 2},
		{1000, 50, -2},
	} {
		_, err := eoq.Calculate(params[0], params[1], params[2])
		assert.ErrorIs(t, err, eoq.ErrBadParameters)
	}
}
