package core

import "context"

// Handler category names recognized by the intent router. Every registered
// handler uses one of these as its stable identifier.
const (
	HandlerDiseaseDiagnosis = "disease_diagnosis"
	HandlerSoilAnalysis     = "soil_analysis"
	HandlerWeatherAdvisor   = "weather_advisor"
	HandlerMarketPrice      = "market_price"
	HandlerSchemesNavigator = "schemes_navigator"
	HandlerFinanceCalc      = "finance_calculator"
	HandlerCommunityAdvisor = "community_advisor"
)

// HandoffContext is the packaged state a specialist handler receives during a
// handoff. RecentTurns carries at most HandoffHistoryTurns entries.
type HandoffContext struct {
	UserID        string             `json:"user_id"`
	Language      Language           `json:"language"`
	Profile       *Profile           `json:"profile,omitempty"`
	RecentTurns   []ConversationTurn `json:"recent_turns,omitempty"`
	AttachmentRef string             `json:"attachment_ref,omitempty"`
}

// Result is the structured outcome a handler returns for a processed message.
type Result struct {
	HandlerName string         `json:"handler_name"`
	Message     string         `json:"message"`
	Data        map[string]any `json:"data,omitempty"`
}

// Handler is the contract every specialist handler presents to the core.
// Implementations are expected to be stateless free functions over the
// provided context; the core propagates their errors without reinterpreting
// them.
type Handler interface {
	// Name returns the stable handler identifier used for routing.
	Name() string

	// Process handles a single user message with the packaged handoff
	// context and returns a structured result.
	Process(ctx context.Context, hc HandoffContext, message string) (Result, error)
}

// HandlerFunc adapts a free function into a named Handler.
type HandlerFunc struct {
	HandlerName string
	Fn          func(ctx context.Context, hc HandoffContext, message string) (Result, error)
}

// Name returns the handler identifier.
func (h HandlerFunc) Name() string { return h.HandlerName }

// Process invokes the wrapped function.
func (h HandlerFunc) Process(ctx context.Context, hc HandoffContext, message string) (Result, error) {
	return h.Fn(ctx, hc, message)
}
