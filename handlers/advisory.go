package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/missionai/agrimesh/core"
	"github.com/missionai/agrimesh/resilience"
)

// AdvisoryHandler answers questions in one advisory category. When an
// inference service is configured it enriches the deterministic baseline
// answer with a model response; when the service is absent or degraded the
// baseline stands on its own.
type AdvisoryHandler struct {
	name     string
	services *resilience.Services
	baseline func(hc core.HandoffContext, message string) (string, map[string]any)
}

// Name returns the handler identifier.
func (h *AdvisoryHandler) Name() string { return h.name }

// Process builds the deterministic baseline answer, then asks the inference
// service to expand on it. A degraded inference never fails the handoff.
func (h *AdvisoryHandler) Process(ctx context.Context, hc core.HandoffContext, message string) (core.Result, error) {
	answer, data := h.baseline(hc, message)

	if h.services != nil {
		inf := h.services.Infer(ctx, advisoryPrompt(h.name, hc, message, answer))
		if inf.OK && !inf.FallbackMode && inf.Text != "" {
			answer = inf.Text
			if data == nil {
				data = map[string]any{}
			}
			data["model_assisted"] = true
		}
	}

	return core.Result{HandlerName: h.name, Message: answer, Data: data}, nil
}

// advisoryPrompt frames the user's question for the inference model with the
// handoff context and the deterministic baseline as grounding.
func advisoryPrompt(handler string, hc core.HandoffContext, message, baseline string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a %s assistant for smallholder farmers. Answer in %s.\n",
		strings.ReplaceAll(handler, "_", " "), hc.Language)
	if hc.Profile != nil && hc.Profile.Farm != nil {
		fmt.Fprintf(&b, "Farm: %.1f acres, soil %s, crops %s.\n",
			hc.Profile.Farm.SizeAcres, hc.Profile.Farm.SoilType,
			strings.Join(hc.Profile.Farm.CurrentCrops, ", "))
	}
	for _, turn := range hc.RecentTurns {
		fmt.Fprintf(&b, "Earlier: Q: %s A: %s\n", turn.UserMessage, turn.AgentResponse)
	}
	fmt.Fprintf(&b, "Baseline advice: %s\nQuestion: %s", baseline, message)
	return b.String()
}

// NewDiseaseHandler creates the crop disease diagnosis handler.
func NewDiseaseHandler(services *resilience.Services) *AdvisoryHandler {
	return &AdvisoryHandler{
		name:     core.HandlerDiseaseDiagnosis,
		services: services,
		baseline: func(hc core.HandoffContext, message string) (string, map[string]any) {
			data := map[string]any{}
			if hc.AttachmentRef != "" {
				data["attachment_ref"] = hc.AttachmentRef
			}
			symptoms := symptomsMentioned(message)
			data["symptoms"] = symptoms
			if len(symptoms) == 0 {
				return "Please describe the symptoms you see: leaf spots, wilting, yellowing, or visible insects. A clear photo of the affected plant helps a lot.", data
			}
			return fmt.Sprintf("Observed symptoms (%s) suggest a fungal or pest problem. Isolate affected plants, avoid overhead watering, and apply a neem-based spray in the evening. If it spreads within a week, consult your local Krishi Vigyan Kendra.",
				strings.Join(symptoms, ", ")), data
		},
	}
}

// NewSoilHandler creates the soil analysis and crop selection handler.
func NewSoilHandler(services *resilience.Services) *AdvisoryHandler {
	return &AdvisoryHandler{
		name:     core.HandlerSoilAnalysis,
		services: services,
		baseline: func(hc core.HandoffContext, _ string) (string, map[string]any) {
			soil := ""
			if hc.Profile != nil && hc.Profile.Farm != nil {
				soil = strings.ToLower(hc.Profile.Farm.SoilType)
			}
			advice, ok := soilAdviceTable[soil]
			if !ok {
				return "Get a soil test done through your nearest Raitha Samparka Kendra first. Knowing pH and nutrient levels lets me recommend the right crops and amendments.", nil
			}
			return advice, map[string]any{"soil_type": soil}
		},
	}
}

var soilAdviceTable = map[string]string{
	"red":   "Red soil drains well but is low in nitrogen and humus. Groundnut, ragi and pulses do well; add compost before sowing.",
	"black": "Black soil holds moisture and suits cotton, sugarcane and chilli. Avoid over-irrigation to prevent waterlogging.",
	"loamy": "Loamy soil is the most versatile. Vegetables like tomato and onion give strong yields with balanced NPK application.",
	"sandy": "Sandy soil needs frequent light irrigation and organic matter. Groundnut and potato are good fits.",
	"clay":  "Clay soil suits rice with its water retention. For other crops, improve drainage with raised beds.",
}

// NewWeatherHandler creates the weather and timing advisory handler.
func NewWeatherHandler(services *resilience.Services) *AdvisoryHandler {
	return &AdvisoryHandler{
		name:     core.HandlerWeatherAdvisor,
		services: services,
		baseline: func(hc core.HandoffContext, message string) (string, map[string]any) {
			district := ""
			if hc.Profile != nil && hc.Profile.Location != nil {
				district = hc.Profile.Location.District
			}
			lower := strings.ToLower(message)
			switch {
			case strings.Contains(lower, "spray"):
				return "Spray in the early morning or late evening on a calm, dry day. Never spray when rain is expected within six hours or the chemical washes off.", nil
			case strings.Contains(lower, "harvest"):
				return "Harvest on a dry morning after dew has lifted. Check the three-day forecast and finish before any predicted rain spell.", nil
			default:
				data := map[string]any{}
				if district != "" {
					data["district"] = district
				}
				return "Check the IMD district forecast before field operations. During monsoon onset, delay sowing until two consecutive good rain days have soaked the field.", data
			}
		},
	}
}

// NewMarketHandler creates the market price advisory handler.
func NewMarketHandler(services *resilience.Services) *AdvisoryHandler {
	return &AdvisoryHandler{
		name:     core.HandlerMarketPrice,
		services: services,
		baseline: func(_ core.HandoffContext, message string) (string, map[string]any) {
			crops := cropsMentioned(message)
			if len(crops) == 0 {
				return "Which crop's price are you asking about? I can share indicative mandi rates for the major crops.", nil
			}
			prices := map[string]float64{}
			var parts []string
			for _, crop := range crops {
				price, ok := referencePriceTable[crop]
				if !ok {
					continue
				}
				prices[crop] = price
				parts = append(parts, fmt.Sprintf("%s ₹%.0f/kg", crop, price))
			}
			if len(parts) == 0 {
				return "I don't have an indicative rate for that crop. Check your nearest APMC mandi board for today's price.", nil
			}
			return "Indicative mandi rates: " + strings.Join(parts, ", ") + ". Rates vary by mandi and grade; confirm locally before selling.",
				map[string]any{"prices": prices}
		},
	}
}

// NewCommunityHandler creates the community advice handler.
func NewCommunityHandler(services *resilience.Services) *AdvisoryHandler {
	return &AdvisoryHandler{
		name:     core.HandlerCommunityAdvisor,
		services: services,
		baseline: func(hc core.HandoffContext, _ string) (string, map[string]any) {
			village := ""
			if hc.Profile != nil && hc.Profile.Location != nil {
				village = hc.Profile.Location.Village
			}
			if village != "" {
				return fmt.Sprintf("Farmers around %s share experiences at the weekly Raitha Samparka Kendra meeting. Post your question there or on the local farmer WhatsApp group for first-hand advice.", village), nil
			}
			return "Connect with nearby farmers through your Raitha Samparka Kendra or local farmer producer organisation. Peer experience with your exact soil and weather is often the best guide.", nil
		},
	}
}

func symptomsMentioned(message string) []string {
	lower := strings.ToLower(message)
	var found []string
	for _, s := range []string{"spots", "wilting", "yellowing", "holes", "curling", "rot", "insects", "worm"} {
		if strings.Contains(lower, s) {
			found = append(found, s)
		}
	}
	return found
}
