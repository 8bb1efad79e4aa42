package handlers

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/missionai/agrimesh/core"
)

// CropCosts is the per-acre cultivation cost breakdown for a crop, in rupees.
type CropCosts struct {
	Seeds       float64 `json:"seeds"`
	Fertilizers float64 `json:"fertilizers"`
	Pesticides  float64 `json:"pesticides"`
	Labor       float64 `json:"labor"`
	Water       float64 `json:"water"`
	Equipment   float64 `json:"equipment"`
}

// Total returns the summed per-acre cost.
func (c CropCosts) Total() float64 {
	return c.Seeds + c.Fertilizers + c.Pesticides + c.Labor + c.Water + c.Equipment
}

// cropCostTable holds per-acre cultivation costs for the supported crops.
var cropCostTable = map[string]CropCosts{
	"tomato":    {Seeds: 3000, Fertilizers: 5000, Pesticides: 3500, Labor: 8000, Water: 2000, Equipment: 1500},
	"onion":     {Seeds: 2500, Fertilizers: 4000, Pesticides: 2500, Labor: 6000, Water: 1500, Equipment: 1000},
	"potato":    {Seeds: 8000, Fertilizers: 6000, Pesticides: 3000, Labor: 7000, Water: 2500, Equipment: 2000},
	"rice":      {Seeds: 2000, Fertilizers: 5000, Pesticides: 2000, Labor: 10000, Water: 3000, Equipment: 3000},
	"wheat":     {Seeds: 1500, Fertilizers: 4500, Pesticides: 1500, Labor: 8000, Water: 2000, Equipment: 2500},
	"sugarcane": {Seeds: 15000, Fertilizers: 8000, Pesticides: 4000, Labor: 12000, Water: 5000, Equipment: 5000},
	"cotton":    {Seeds: 3500, Fertilizers: 6000, Pesticides: 5000, Labor: 9000, Water: 2500, Equipment: 2000},
	"chilli":    {Seeds: 4000, Fertilizers: 5500, Pesticides: 4500, Labor: 8500, Water: 2000, Equipment: 1500},
	"groundnut": {Seeds: 5000, Fertilizers: 4000, Pesticides: 2500, Labor: 7000, Water: 1500, Equipment: 1500},
	"coffee":    {Seeds: 10000, Fertilizers: 7000, Pesticides: 3000, Labor: 15000, Water: 4000, Equipment: 3000},
}

// cropYieldTable holds expected yields in kg per acre by season.
var cropYieldTable = map[string]map[string]float64{
	"tomato":    {"kharif": 8000, "rabi": 9000, "summer": 7000},
	"onion":     {"kharif": 6000, "rabi": 7000, "summer": 5500},
	"potato":    {"kharif": 7000, "rabi": 8000, "summer": 6500},
	"rice":      {"kharif": 2500, "rabi": 2000, "summer": 1800},
	"wheat":     {"kharif": 1500, "rabi": 2000, "summer": 1200},
	"sugarcane": {"kharif": 35000, "rabi": 32000, "summer": 30000},
	"cotton":    {"kharif": 800, "rabi": 700, "summer": 600},
	"chilli":    {"kharif": 1500, "rabi": 1800, "summer": 1400},
	"groundnut": {"kharif": 1200, "rabi": 1400, "summer": 1100},
	"coffee":    {"kharif": 600, "rabi": 650, "summer": 550},
}

// referencePriceTable holds indicative farm-gate prices in rupees per kg.
var referencePriceTable = map[string]float64{
	"tomato": 30, "onion": 22, "potato": 19, "rice": 28,
	"wheat": 24, "sugarcane": 3.2, "cotton": 62, "chilli": 185,
	"groundnut": 58, "coffee": 285,
}

const defaultReferencePrice = 25

// ProfitCalculation is the result of a per-crop profit estimate.
type ProfitCalculation struct {
	CalculationID  string    `json:"calculation_id"`
	Crop           string    `json:"crop"`
	AreaAcres      float64   `json:"area_acres"`
	Costs          CropCosts `json:"costs"`
	TotalCost      float64   `json:"total_cost"`
	ExpectedYield  float64   `json:"expected_yield_kg"`
	PricePerKg     float64   `json:"price_per_kg"`
	TotalRevenue   float64   `json:"total_revenue"`
	ProfitLoss     float64   `json:"profit_loss"`
	ROIPercentage  float64   `json:"roi_percentage"`
	BreakEvenPrice float64   `json:"break_even_price"`
	Timestamp      time.Time `json:"timestamp"`
}

// CalculateProfit estimates profit or loss for growing the crop on the given
// area at the given selling price. Yields are averaged across seasons.
func CalculateProfit(crop string, areaAcres, pricePerKg float64) (ProfitCalculation, error) {
	if crop == "" {
		return ProfitCalculation{}, fmt.Errorf("crop name must not be empty")
	}
	if areaAcres <= 0 {
		return ProfitCalculation{}, fmt.Errorf("area must be greater than zero")
	}
	if pricePerKg <= 0 {
		return ProfitCalculation{}, fmt.Errorf("selling price must be greater than zero")
	}

	key := strings.ToLower(crop)
	perAcre, ok := cropCostTable[key]
	if !ok {
		return ProfitCalculation{}, fmt.Errorf("crop %q not in cost database", crop)
	}

	costs := CropCosts{
		Seeds:       perAcre.Seeds * areaAcres,
		Fertilizers: perAcre.Fertilizers * areaAcres,
		Pesticides:  perAcre.Pesticides * areaAcres,
		Labor:       perAcre.Labor * areaAcres,
		Water:       perAcre.Water * areaAcres,
		Equipment:   perAcre.Equipment * areaAcres,
	}
	totalCost := costs.Total()

	expectedYield := averageYield(key) * areaAcres
	totalRevenue := expectedYield * pricePerKg
	profit := totalRevenue - totalCost

	roi := 0.0
	if totalCost > 0 {
		roi = profit / totalCost * 100
	}
	breakEven := 0.0
	if expectedYield > 0 {
		breakEven = totalCost / expectedYield
	}

	return ProfitCalculation{
		CalculationID:  uuid.NewString(),
		Crop:           key,
		AreaAcres:      areaAcres,
		Costs:          costs,
		TotalCost:      totalCost,
		ExpectedYield:  expectedYield,
		PricePerKg:     pricePerKg,
		TotalRevenue:   totalRevenue,
		ProfitLoss:     profit,
		ROIPercentage:  round2(roi),
		BreakEvenPrice: round2(breakEven),
		Timestamp:      time.Now().UTC(),
	}, nil
}

// CropComparison is one row of a multi-crop financial comparison.
type CropComparison struct {
	Crop            string  `json:"crop"`
	Season          string  `json:"season"`
	TotalCost       float64 `json:"total_cost"`
	ExpectedYield   float64 `json:"expected_yield_kg"`
	PricePerKg      float64 `json:"estimated_price_per_kg"`
	EstimatedProfit float64 `json:"estimated_profit"`
	ROIPercentage   float64 `json:"roi_percentage"`
}

// CompareCrops ranks the given crops by estimated profit for the season.
// Crops missing from the database are skipped.
func CompareCrops(crops []string, areaAcres float64, season string) ([]CropComparison, error) {
	if len(crops) < 2 {
		return nil, fmt.Errorf("at least two crops required for comparison")
	}
	if areaAcres <= 0 {
		return nil, fmt.Errorf("area must be greater than zero")
	}
	season = strings.ToLower(season)
	if season != "kharif" && season != "rabi" && season != "summer" {
		return nil, fmt.Errorf("season must be one of kharif, rabi, summer")
	}

	results := make([]CropComparison, 0, len(crops))
	for _, crop := range crops {
		key := strings.ToLower(crop)
		perAcre, ok := cropCostTable[key]
		if !ok {
			continue
		}
		yields, ok := cropYieldTable[key]
		if !ok {
			continue
		}

		totalCost := perAcre.Total() * areaAcres
		yieldPerAcre, ok := yields[season]
		if !ok {
			yieldPerAcre = averageYield(key)
		}
		expectedYield := yieldPerAcre * areaAcres

		price, ok := referencePriceTable[key]
		if !ok {
			price = defaultReferencePrice
		}
		revenue := expectedYield * price
		profit := revenue - totalCost
		roi := 0.0
		if totalCost > 0 {
			roi = profit / totalCost * 100
		}

		results = append(results, CropComparison{
			Crop:            key,
			Season:          season,
			TotalCost:       round2(totalCost),
			ExpectedYield:   round2(expectedYield),
			PricePerKg:      price,
			EstimatedProfit: round2(profit),
			ROIPercentage:   round2(roi),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].EstimatedProfit > results[j].EstimatedProfit
	})
	return results, nil
}

func averageYield(crop string) float64 {
	yields, ok := cropYieldTable[crop]
	if !ok || len(yields) == 0 {
		return 5000
	}
	sum := 0.0
	for _, y := range yields {
		sum += y
	}
	return sum / float64(len(yields))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FinanceHandler answers profitability questions using the static cost and
// yield tables. It looks for a known crop name in the message and takes the
// farm area from the user's profile, defaulting to one acre.
type FinanceHandler struct{}

// NewFinanceHandler creates the finance calculator handler.
func NewFinanceHandler() *FinanceHandler { return &FinanceHandler{} }

// Name returns the handler identifier.
func (h *FinanceHandler) Name() string { return core.HandlerFinanceCalc }

// Process parses the message for known crop names, then either calculates a
// single-crop profit estimate or compares several crops.
func (h *FinanceHandler) Process(_ context.Context, hc core.HandoffContext, message string) (core.Result, error) {
	crops := cropsMentioned(message)
	area := 1.0
	if hc.Profile != nil && hc.Profile.Farm != nil && hc.Profile.Farm.SizeAcres > 0 {
		area = hc.Profile.Farm.SizeAcres
	}

	switch {
	case len(crops) >= 2:
		comparison, err := CompareCrops(crops, area, "kharif")
		if err != nil {
			return core.Result{}, err
		}
		best := comparison[0]
		return core.Result{
			HandlerName: h.Name(),
			Message: fmt.Sprintf("For %.1f acres, %s looks most profitable at an estimated ₹%.0f (%.1f%% ROI).",
				area, best.Crop, best.EstimatedProfit, best.ROIPercentage),
			Data: map[string]any{"comparison": comparison, "area_acres": area},
		}, nil

	case len(crops) == 1:
		price, ok := referencePriceTable[crops[0]]
		if !ok {
			price = defaultReferencePrice
		}
		calc, err := CalculateProfit(crops[0], area, price)
		if err != nil {
			return core.Result{}, err
		}
		verdict := "profit"
		if calc.ProfitLoss < 0 {
			verdict = "loss"
		}
		return core.Result{
			HandlerName: h.Name(),
			Message: fmt.Sprintf("Growing %s on %.1f acres: estimated %s of ₹%.0f at ₹%.0f/kg (break-even ₹%.2f/kg).",
				calc.Crop, area, verdict, calc.ProfitLoss, price, calc.BreakEvenPrice),
			Data: map[string]any{"calculation": calc},
		}, nil

	default:
		return core.Result{
			HandlerName: h.Name(),
			Message:     "Which crop would you like a cost and profit estimate for? I have data for tomato, onion, potato, rice, wheat, sugarcane, cotton, chilli, groundnut and coffee.",
		}, nil
	}
}

// cropsMentioned returns the known crops named in the text, in a fixed
// deterministic order.
func cropsMentioned(text string) []string {
	lower := strings.ToLower(text)
	known := []string{"tomato", "onion", "potato", "rice", "wheat", "sugarcane", "cotton", "chilli", "groundnut", "coffee"}
	var found []string
	for _, crop := range known {
		if strings.Contains(lower, crop) {
			found = append(found, crop)
		}
	}
	return found
}
