package router

import (
	"strings"

	"github.com/missionai/agrimesh/core"
)

// Sentinel routing targets.
const (
	// TargetNone means no category matched; the caller should ask a
	// generic clarifying question.
	TargetNone = "none"
	// TargetAmbiguous means two or more categories tied for the top
	// score; the caller must ask the user to disambiguate before any
	// handoff occurs.
	TargetAmbiguous = "ambiguous"
)

// category pairs a handler name with its trigger phrases.
type category struct {
	name     string
	triggers []string
}

// Router scores text against fixed per-category trigger sets. It holds no
// mutable state; Route is a pure function of the input text.
type Router struct {
	categories []category
}

// New constructs a Router with the default trigger sets for the seven
// specialist handler categories.
func New() *Router {
	return &Router{categories: []category{
		{core.HandlerDiseaseDiagnosis, []string{
			"disease", "pest", "spots", "wilting", "yellowing", "infected",
			"fungus", "insect", "damage", "leaves", "dying", "sick", "problem with crop",
			"crop health", "plant disease", "bug", "worm", "caterpillar", "cotton",
		}},
		{core.HandlerSoilAnalysis, []string{
			"soil", "fertility", "nutrients", "ph", "soil type", "soil health",
			"soil test", "which crop", "crop recommendation", "what to plant",
			"soil improvement", "compost", "manure",
		}},
		{core.HandlerWeatherAdvisor, []string{
			"weather", "rain", "forecast", "temperature", "humidity", "wind",
			"when to spray", "when to plant", "when to harvest", "timing",
			"monsoon", "drought", "storm", "climate",
		}},
		{core.HandlerMarketPrice, []string{
			"price", "market", "sell", "buy", "listing", "buyer", "seller",
			"mandi", "rate", "cost of", "selling price", "purchase", "marketplace",
			"expiry", "quality grade",
		}},
		{core.HandlerSchemesNavigator, []string{
			"scheme", "subsidy", "government", "loan", "insurance", "pm-kisan",
			"eligibility", "benefit", "application", "yojana", "support",
			"financial aid", "grant",
		}},
		{core.HandlerFinanceCalc, []string{
			"profit", "loss", "calculate", "cost", "expense", "income", "roi",
			"return", "investment", "budget", "financial", "money", "earnings",
			"compare crops", "which crop profitable", "cotton",
		}},
		{core.HandlerCommunityAdvisor, []string{
			"community", "forum", "other farmers", "local farmers", "experience",
			"advice from farmers", "what others say", "peer", "neighbor",
			"share experience", "ask farmers",
		}},
	}}
}

// Route scores the text against every category and returns the winning
// handler name. A zero maximum yields TargetNone; a tied non-zero maximum
// yields TargetAmbiguous with isAmbiguous true. The session is accepted for
// contract compatibility but is not consulted for scoring; identical text
// always yields an identical decision.
func (r *Router) Route(text string, _ *core.Session) (target string, isAmbiguous bool) {
	lower := strings.ToLower(text)

	best := 0
	var winners []string
	for _, cat := range r.categories {
		score := 0
		for _, trigger := range cat.triggers {
			if strings.Contains(lower, trigger) {
				score++
			}
		}
		switch {
		case score > best:
			best = score
			winners = winners[:0]
			winners = append(winners, cat.name)
		case score == best && score > 0:
			winners = append(winners, cat.name)
		}
	}

	if best == 0 {
		return TargetNone, false
	}
	if len(winners) > 1 {
		return TargetAmbiguous, true
	}
	return winners[0], false
}
