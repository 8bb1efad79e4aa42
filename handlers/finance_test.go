package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/missionai/agrimesh/core"
)

func TestCalculateProfit_Rice(t *testing.T) {
	calc, err := CalculateProfit("rice", 2, 28)

	require.NoError(t, err)
	assert.Equal(t, "rice", calc.Crop)
	// Per-acre rice costs sum to 25000; two acres doubles that.
	assert.InDelta(t, 50000, calc.TotalCost, 0.01)
	// Average of kharif/rabi/summer yields (2500+2000+1800)/3 = 2100 kg/acre.
	assert.InDelta(t, 4200, calc.ExpectedYield, 0.01)
	assert.InDelta(t, 4200*28, calc.TotalRevenue, 0.01)
	assert.InDelta(t, 4200*28-50000, calc.ProfitLoss, 0.01)
	assert.InDelta(t, 50000.0/4200, calc.BreakEvenPrice, 0.01)
	assert.NotEmpty(t, calc.CalculationID)
}

func TestCalculateProfit_CaseInsensitiveCrop(t *testing.T) {
	calc, err := CalculateProfit("TOMATO", 1, 30)

	require.NoError(t, err)
	assert.Equal(t, "tomato", calc.Crop)
}

func TestCalculateProfit_LossRoundsAwayFromZero(t *testing.T) {
	// Rice at 1 per kg is a heavy loss; negative ROI must round to the
	// nearest hundredth, not truncate toward zero.
	calc, err := CalculateProfit("rice", 1, 1)

	require.NoError(t, err)
	assert.Negative(t, calc.ProfitLoss)
	// (2100 - 25000) / 25000 * 100 = -91.6
	assert.InDelta(t, -91.6, calc.ROIPercentage, 0.001)

	assert.InDelta(t, -1.24, round2(-1.236), 0.0001)
	assert.InDelta(t, -1.23, round2(-1.234), 0.0001)
	assert.InDelta(t, 1.24, round2(1.236), 0.0001)
}

func TestCalculateProfit_InvalidInputs(t *testing.T) {
	_, err := CalculateProfit("", 1, 30)
	assert.Error(t, err)

	_, err = CalculateProfit("rice", 0, 30)
	assert.Error(t, err)

	_, err = CalculateProfit("rice", 1, -5)
	assert.Error(t, err)

	_, err = CalculateProfit("dragonfruit", 1, 30)
	assert.Error(t, err)
}

func TestCompareCrops_SortedByProfit(t *testing.T) {
	results, err := CompareCrops([]string{"rice", "tomato", "cotton"}, 1, "kharif")

	require.NoError(t, err)
	require.Len(t, results, 3)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].EstimatedProfit, results[i].EstimatedProfit)
	}
}

func TestCompareCrops_SkipsUnknownCrops(t *testing.T) {
	results, err := CompareCrops([]string{"rice", "dragonfruit", "wheat"}, 1, "rabi")

	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestCompareCrops_Validation(t *testing.T) {
	_, err := CompareCrops([]string{"rice"}, 1, "kharif")
	assert.Error(t, err)

	_, err = CompareCrops([]string{"rice", "wheat"}, 0, "kharif")
	assert.Error(t, err)

	_, err = CompareCrops([]string{"rice", "wheat"}, 1, "spring")
	assert.Error(t, err)
}

func TestFinanceHandler_SingleCrop(t *testing.T) {
	h := NewFinanceHandler()
	hc := core.HandoffContext{
		UserID:  "farmer-1",
		Profile: &core.Profile{Farm: &core.Farm{SizeAcres: 2}},
	}

	result, err := h.Process(context.Background(), hc, "Calculate the profit for growing rice")

	require.NoError(t, err)
	assert.Equal(t, core.HandlerFinanceCalc, result.HandlerName)
	assert.Contains(t, result.Message, "rice")
	assert.Contains(t, result.Message, "2.0 acres")
	require.Contains(t, result.Data, "calculation")
}

func TestFinanceHandler_ComparesMultipleCrops(t *testing.T) {
	h := NewFinanceHandler()

	result, err := h.Process(context.Background(), core.HandoffContext{},
		"Should I grow cotton or groundnut this year?")

	require.NoError(t, err)
	require.Contains(t, result.Data, "comparison")
	comparison := result.Data["comparison"].([]CropComparison)
	assert.Len(t, comparison, 2)
}

func TestFinanceHandler_NoCropAsksForOne(t *testing.T) {
	h := NewFinanceHandler()

	result, err := h.Process(context.Background(), core.HandoffContext{},
		"How much money will I make?")

	require.NoError(t, err)
	assert.Contains(t, result.Message, "Which crop")
}

func TestFinanceHandler_DefaultsToOneAcre(t *testing.T) {
	h := NewFinanceHandler()

	result, err := h.Process(context.Background(), core.HandoffContext{},
		"profit for wheat")

	require.NoError(t, err)
	assert.Contains(t, result.Message, "1.0 acres")
}
