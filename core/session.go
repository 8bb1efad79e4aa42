package core

import "time"

// MaxStoredTurns caps the in-memory conversation history per user; the
// oldest turns are dropped once the cap is exceeded.
const MaxStoredTurns = 20

// MaxContextTurns bounds how many recent turns a read-for-context operation
// may return.
const MaxContextTurns = 10

// HandoffHistoryTurns is the number of recent turns packaged into a
// HandoffContext for a specialist handler.
const HandoffHistoryTurns = 3

// Location describes where a user's farm is situated.
type Location struct {
	State    string `json:"state,omitempty"`
	District string `json:"district,omitempty"`
	Village  string `json:"village,omitempty"`
}

// Farm captures the attributes of a user's farm relevant to advice.
type Farm struct {
	SizeAcres    float64  `json:"size_acres,omitempty"`
	SoilType     string   `json:"soil_type,omitempty"`
	CurrentCrops []string `json:"current_crops,omitempty"`
	Irrigation   string   `json:"irrigation,omitempty"` // "rainfed", "drip", "flood"
}

// Profile is the optional structured user profile attached to a session.
type Profile struct {
	Name     string    `json:"name,omitempty"`
	Phone    string    `json:"phone,omitempty"`
	Location *Location `json:"location,omitempty"`
	Farm     *Farm     `json:"farm,omitempty"`
}

// Clone returns a deep copy of the profile, or nil for a nil receiver.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	cp := *p
	if p.Location != nil {
		loc := *p.Location
		cp.Location = &loc
	}
	if p.Farm != nil {
		farm := *p.Farm
		farm.CurrentCrops = append([]string(nil), p.Farm.CurrentCrops...)
		cp.Farm = &farm
	}
	return &cp
}

// Session is the per-user conversational record. Exactly one in-memory
// Session exists per active user id; the session store owns it and hands out
// clones. LastActiveAt is refreshed on every read or write.
type Session struct {
	UserID             string    `json:"user_id"`
	LanguagePreference Language  `json:"language_preference"`
	Profile            *Profile  `json:"profile,omitempty"`
	OnboardingStep     int       `json:"onboarding_step"`
	OnboardingComplete bool      `json:"onboarding_complete"`
	CreatedAt          time.Time `json:"created_at"`
	LastActiveAt       time.Time `json:"last_active_at"`
}

// NewSession creates a session with default values for an unknown user id.
func NewSession(userID string) *Session {
	now := time.Now().UTC()
	return &Session{
		UserID:             userID,
		LanguagePreference: DefaultLanguage,
		CreatedAt:          now,
		LastActiveAt:       now,
	}
}

// Clone returns a deep copy safe for independent mutation.
func (s *Session) Clone() *Session {
	cp := *s
	cp.Profile = s.Profile.Clone()
	return &cp
}

// ConversationTurn is one immutable user/handler exchange. Turns form an
// append-only ordered sequence owned by exactly one session.
type ConversationTurn struct {
	Timestamp     time.Time `json:"timestamp"`
	UserMessage   string    `json:"user_message"`
	AgentResponse string    `json:"agent_response"`
	HandlerName   string    `json:"handler_name"`
}

// SessionUpdate carries a partial session mutation. Nil fields are left
// untouched by a merge.
type SessionUpdate struct {
	LanguagePreference *Language
	Profile            *Profile
	OnboardingStep     *int
	OnboardingComplete *bool
}

// Apply merges the non-nil fields of the update into the session.
func (u SessionUpdate) Apply(s *Session) {
	if u.LanguagePreference != nil {
		s.LanguagePreference = *u.LanguagePreference
	}
	if u.Profile != nil {
		s.Profile = u.Profile.Clone()
	}
	if u.OnboardingStep != nil {
		s.OnboardingStep = *u.OnboardingStep
	}
	if u.OnboardingComplete != nil {
		s.OnboardingComplete = *u.OnboardingComplete
	}
}
