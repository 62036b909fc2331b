package goal_test

import (
	"testing"

	"goaltrack-service/internal/goal"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(value int64) decimal.Decimal {
	return decimal.NewFromInt(value)
}

func TestComputeProgress_TargetReached(t *testing.T) {
	p := goal.ComputeProgress(d(10000), d(10000), 5)

	assert.True(t, p.Remaining.IsZero(), "remaining should be 0, got %s", p.Remaining)
	assert.True(t, p.Percent.Equal(d(100)), "percent should be 100, got %s", p.Percent)
	assert.True(t, p.DailyRunRate.IsZero(), "run-rate should be 0, got %s", p.DailyRunRate)
}

func TestComputeProgress_ZeroTarget(t *testing.T) {
	// A zero target is defined as 0% complete, not a division error
	p := goal.ComputeProgress(d(0), d(500), 3)

	assert.True(t, p.Percent.IsZero(), "percent should be 0, got %s", p.Percent)
	assert.True(t, p.Remaining.IsZero(), "remaining should be 0, got %s", p.Remaining)
	assert.True(t, p.DailyRunRate.IsZero())
}

func TestComputeProgress_PartwayThroughMonth(t *testing.T) {
	p := goal.ComputeProgress(d(10000), d(2500), 5)

	assert.True(t, p.Remaining.Equal(d(7500)), "remaining should be 7500, got %s", p.Remaining)
	assert.True(t, p.Percent.Equal(d(25)), "percent should be 25, got %s", p.Percent)
	assert.True(t, p.DailyRunRate.Equal(d(1500)), "run-rate should be 1500, got %s", p.DailyRunRate)
}

func TestComputeProgress_TargetExceeded(t *testing.T) {
	p := goal.ComputeProgress(d(10000), d(12000), 5)

	assert.True(t, p.Remaining.IsZero(), "overshoot clamps remaining to 0")
	assert.True(t, p.Percent.Equal(d(120)), "percent keeps going past 100, got %s", p.Percent)
	assert.True(t, p.DailyRunRate.IsZero())
}

func TestComputeProgress_NoDaysLeft(t *testing.T) {
	// Zero business days yields a zero run-rate, not a division error
	p := goal.ComputeProgress(d(10000), d(4000), 0)

	assert.True(t, p.Remaining.Equal(d(6000)))
	assert.True(t, p.DailyRunRate.IsZero())
}

func TestComputeProgress_FractionalRunRate(t *testing.T) {
	p := goal.ComputeProgress(d(1000), d(0), 3)

	expected := d(1000).Div(d(3))
	assert.True(t, p.DailyRunRate.Equal(expected), "run-rate should be 1000/3, got %s", p.DailyRunRate)
}
