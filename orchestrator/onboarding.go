package orchestrator

import (
	"fmt"
	"strings"
	"time"

	"github.com/missionai/agrimesh/core"
)

// Season is a broad Indian farming season used to pick onboarding roadmaps.
type Season string

const (
	SeasonMonsoon Season = "monsoon" // June-September
	SeasonWinter  Season = "winter"  // October-February
	SeasonSummer  Season = "summer"  // March-May
)

// RoadmapStep is one stage of a seasonal onboarding roadmap.
type RoadmapStep struct {
	Step        int      `json:"step"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tasks       []string `json:"tasks"`
	Handlers    []string `json:"handlers"`
}

// Roadmap is the onboarding plan presented to a new farmer, personalized
// with whatever profile information exists.
type Roadmap struct {
	Season         string         `json:"season"`
	Steps          []RoadmapStep  `json:"steps"`
	CurrentStep    int            `json:"current_step"`
	TotalSteps     int            `json:"total_steps"`
	Personalized   bool           `json:"personalized"`
	Location       *core.Location `json:"location,omitempty"`
	PreferredCrops []string       `json:"preferred_crops,omitempty"`
}

var roadmapTemplates = map[Season]struct {
	label string
	steps []RoadmapStep
}{
	SeasonMonsoon: {
		label: "Monsoon (June-September)",
		steps: []RoadmapStep{
			{
				Step: 1, Title: "Soil Preparation",
				Description: "Prepare your soil before monsoon planting",
				Tasks:       []string{"Test soil pH and nutrients", "Add organic matter or compost", "Ensure proper drainage", "Level the field"},
				Handlers:    []string{core.HandlerSoilAnalysis},
			},
			{
				Step: 2, Title: "Crop Selection",
				Description: "Choose suitable crops for monsoon season",
				Tasks:       []string{"Consider soil type and rainfall", "Select disease-resistant varieties", "Plan crop rotation", "Calculate seed requirements"},
				Handlers:    []string{core.HandlerSoilAnalysis, core.HandlerFinanceCalc},
			},
			{
				Step: 3, Title: "Planting",
				Description: "Plant at the right time with proper spacing",
				Tasks:       []string{"Wait for adequate soil moisture", "Follow recommended spacing", "Use quality seeds", "Apply starter fertilizer"},
				Handlers:    []string{core.HandlerWeatherAdvisor},
			},
			{
				Step: 4, Title: "Crop Management",
				Description: "Monitor and care for your crops",
				Tasks:       []string{"Regular field inspection", "Pest and disease monitoring", "Timely weeding", "Proper irrigation management"},
				Handlers:    []string{core.HandlerDiseaseDiagnosis, core.HandlerWeatherAdvisor},
			},
			{
				Step: 5, Title: "Harvest Planning",
				Description: "Prepare for harvest and marketing",
				Tasks:       []string{"Monitor crop maturity", "Check market prices", "Arrange harvest labor", "Plan storage or immediate sale"},
				Handlers:    []string{core.HandlerMarketPrice, core.HandlerFinanceCalc},
			},
		},
	},
	SeasonWinter: {
		label: "Winter (October-February)",
		steps: []RoadmapStep{
			{
				Step: 1, Title: "Post-Monsoon Soil Assessment",
				Description: "Assess soil condition after monsoon",
				Tasks:       []string{"Check soil moisture levels", "Test nutrient status", "Repair any erosion damage", "Plan irrigation needs"},
				Handlers:    []string{core.HandlerSoilAnalysis},
			},
			{
				Step: 2, Title: "Winter Crop Selection",
				Description: "Choose crops suitable for winter season",
				Tasks:       []string{"Select cold-tolerant varieties", "Consider market demand", "Plan for irrigation availability", "Calculate input costs"},
				Handlers:    []string{core.HandlerSoilAnalysis, core.HandlerMarketPrice, core.HandlerFinanceCalc},
			},
			{
				Step: 3, Title: "Planting and Care",
				Description: "Plant and manage winter crops",
				Tasks:       []string{"Plant at optimal time", "Protect from frost if needed", "Manage irrigation carefully", "Monitor for pests"},
				Handlers:    []string{core.HandlerWeatherAdvisor, core.HandlerDiseaseDiagnosis},
			},
			{
				Step: 4, Title: "Harvest and Marketing",
				Description: "Harvest and sell your produce",
				Tasks:       []string{"Harvest at right maturity", "Grade and sort produce", "Find best market prices", "Arrange transportation"},
				Handlers:    []string{core.HandlerMarketPrice, core.HandlerFinanceCalc},
			},
		},
	},
	SeasonSummer: {
		label: "Summer (March-May)",
		steps: []RoadmapStep{
			{
				Step: 1, Title: "Soil Conservation",
				Description: "Protect soil during hot season",
				Tasks:       []string{"Apply mulch to retain moisture", "Consider cover crops", "Repair bunds and terraces", "Plan water conservation"},
				Handlers:    []string{core.HandlerSoilAnalysis},
			},
			{
				Step: 2, Title: "Summer Crop Planning",
				Description: "Select drought-tolerant crops",
				Tasks:       []string{"Choose water-efficient crops", "Ensure irrigation availability", "Consider short-duration varieties", "Plan for heat stress management"},
				Handlers:    []string{core.HandlerSoilAnalysis, core.HandlerWeatherAdvisor, core.HandlerFinanceCalc},
			},
			{
				Step: 3, Title: "Water Management",
				Description: "Efficient irrigation practices",
				Tasks:       []string{"Use drip or sprinkler irrigation", "Irrigate during cooler hours", "Monitor soil moisture", "Prevent water wastage"},
				Handlers:    []string{core.HandlerWeatherAdvisor},
			},
			{
				Step: 4, Title: "Harvest and Storage",
				Description: "Harvest and store properly",
				Tasks:       []string{"Harvest early morning", "Proper drying and storage", "Check market prices", "Plan for next season"},
				Handlers:    []string{core.HandlerMarketPrice, core.HandlerFinanceCalc},
			},
		},
	},
}

// CurrentSeason maps the current month onto a farming season.
func CurrentSeason() Season {
	return SeasonForMonth(time.Now().Month())
}

// SeasonForMonth maps a month onto a farming season.
func SeasonForMonth(m time.Month) Season {
	switch {
	case m >= time.June && m <= time.September:
		return SeasonMonsoon
	case m >= time.October || m <= time.February:
		return SeasonWinter
	default:
		return SeasonSummer
	}
}

// IsNewFarmer reports whether the session belongs to a farmer who has
// neither completed onboarding nor filled in a profile.
func IsNewFarmer(sess *core.Session) bool {
	return !sess.OnboardingComplete && sess.Profile == nil
}

// RoadmapForSeason builds the roadmap for the season, personalized from the
// session's profile when one exists. Unknown seasons fall back to monsoon.
func RoadmapForSeason(season Season, sess *core.Session) Roadmap {
	tmpl, ok := roadmapTemplates[season]
	if !ok {
		season = SeasonMonsoon
		tmpl = roadmapTemplates[season]
	}

	currentStep := 1
	if sess != nil && sess.OnboardingStep > 0 {
		currentStep = sess.OnboardingStep
	}

	roadmap := Roadmap{
		Season:      tmpl.label,
		Steps:       append([]RoadmapStep(nil), tmpl.steps...),
		CurrentStep: currentStep,
		TotalSteps:  len(tmpl.steps),
	}
	if sess != nil && sess.Profile != nil {
		roadmap.Personalized = true
		roadmap.Location = sess.Profile.Location
		if sess.Profile.Farm != nil {
			roadmap.PreferredCrops = append([]string(nil), sess.Profile.Farm.CurrentCrops...)
		}
	}
	return roadmap
}

// OnboardingStatus describes how far a farmer has progressed through the
// current season's roadmap.
type OnboardingStatus struct {
	UserID             string       `json:"user_id"`
	OnboardingComplete bool         `json:"onboarding_complete"`
	CurrentStep        int          `json:"current_step,omitempty"`
	TotalSteps         int          `json:"total_steps,omitempty"`
	Season             string       `json:"season,omitempty"`
	CurrentStepDetails *RoadmapStep `json:"current_step_details,omitempty"`
	ProgressPercentage float64      `json:"progress_percentage"`
	Message            string       `json:"message,omitempty"`
}

// OnboardingStatus reports the farmer's progress through the current
// season's roadmap, including details of the step they are on.
func (o *Orchestrator) OnboardingStatus(userID string) OnboardingStatus {
	sess := o.sessions.Get(userID)
	if sess.OnboardingComplete {
		return OnboardingStatus{
			UserID:             userID,
			OnboardingComplete: true,
			ProgressPercentage: 100,
			Message:            "Onboarding completed",
		}
	}

	roadmap := RoadmapForSeason(CurrentSeason(), sess)
	currentStep := sess.OnboardingStep
	if currentStep == 0 {
		currentStep = 1
	}

	status := OnboardingStatus{
		UserID:             userID,
		CurrentStep:        currentStep,
		TotalSteps:         roadmap.TotalSteps,
		Season:             roadmap.Season,
		ProgressPercentage: float64(currentStep-1) / float64(roadmap.TotalSteps) * 100,
	}
	if currentStep <= len(roadmap.Steps) {
		step := roadmap.Steps[currentStep-1]
		status.CurrentStepDetails = &step
	}
	return status
}

// Recommendations is a set of suggestion strings derived from the farmer's
// profile and recent conversation topics.
type Recommendations struct {
	UserID       string   `json:"user_id"`
	Personalized bool     `json:"personalized"`
	Suggestions  []string `json:"suggestions"`
}

// handlerTopics maps recent handler usage onto broad topics.
var handlerTopics = map[string]string{
	core.HandlerDiseaseDiagnosis: "crop health",
	core.HandlerMarketPrice:      "market prices",
	core.HandlerWeatherAdvisor:   "weather",
}

// Recommend builds personalized suggestions from the farmer's profile and
// the handlers used in their last five turns. Without a profile it only
// suggests completing one.
func (o *Orchestrator) Recommend(userID string) Recommendations {
	sess := o.sessions.Get(userID)
	rec := Recommendations{UserID: userID}

	if sess.Profile == nil {
		rec.Suggestions = append(rec.Suggestions,
			"Complete your profile to get personalized recommendations")
		return rec
	}
	rec.Personalized = true

	if loc := sess.Profile.Location; loc != nil && loc.District != "" {
		rec.Suggestions = append(rec.Suggestions, fmt.Sprintf(
			"Based on your location in %s, I can provide hyper-local advice", loc.District))
	}
	if farm := sess.Profile.Farm; farm != nil && len(farm.CurrentCrops) > 0 {
		rec.Suggestions = append(rec.Suggestions, fmt.Sprintf(
			"I see you grow %s. I can help with specific advice for these crops",
			strings.Join(farm.CurrentCrops, ", ")))
	}

	turns := o.sessions.RecentTurns(userID, 5)
	var topics []string
	seen := map[string]bool{}
	for _, turn := range turns {
		topic, ok := handlerTopics[turn.HandlerName]
		if ok && !seen[topic] {
			seen[topic] = true
			topics = append(topics, topic)
		}
	}
	if len(topics) > 0 {
		rec.Suggestions = append(rec.Suggestions, fmt.Sprintf(
			"Based on your recent questions about %s, I can provide follow-up advice",
			strings.Join(topics, ", ")))
	}
	return rec
}

// ProgressUpdate reports the result of advancing a farmer's onboarding.
type ProgressUpdate struct {
	Success            bool   `json:"success"`
	CurrentStep        int    `json:"current_step,omitempty"`
	TotalSteps         int    `json:"total_steps,omitempty"`
	OnboardingComplete bool   `json:"onboarding_complete"`
	Message            string `json:"message"`
}

// StartOnboarding resets the farmer's onboarding progress to the first step
// of the current season's roadmap and returns it.
func (o *Orchestrator) StartOnboarding(userID string) (Roadmap, error) {
	step := 1
	complete := false
	if err := o.sessions.Save(userID, core.SessionUpdate{
		OnboardingStep:     &step,
		OnboardingComplete: &complete,
	}); err != nil {
		return Roadmap{}, fmt.Errorf("start onboarding: %w", err)
	}
	return RoadmapForSeason(CurrentSeason(), o.sessions.Get(userID)), nil
}

// UpdateOnboardingProgress marks the given step completed and advances the
// farmer. Completing the last step of the season's roadmap marks onboarding
// complete. A step behind the current one is ignored.
func (o *Orchestrator) UpdateOnboardingProgress(userID string, step int) (ProgressUpdate, error) {
	sess := o.sessions.Get(userID)
	currentStep := sess.OnboardingStep
	if currentStep == 0 {
		currentStep = 1
	}
	if step < currentStep {
		return ProgressUpdate{Success: false, Message: "Step not updated"}, nil
	}

	tmpl := roadmapTemplates[CurrentSeason()]
	totalSteps := len(tmpl.steps)
	newStep := step + 1

	if newStep > totalSteps {
		complete := true
		if err := o.sessions.Save(userID, core.SessionUpdate{
			OnboardingStep:     &newStep,
			OnboardingComplete: &complete,
		}); err != nil {
			return ProgressUpdate{}, fmt.Errorf("update onboarding: %w", err)
		}
		return ProgressUpdate{
			Success:            true,
			OnboardingComplete: true,
			Message:            "Congratulations! You've completed the onboarding roadmap.",
		}, nil
	}

	if err := o.sessions.Save(userID, core.SessionUpdate{OnboardingStep: &newStep}); err != nil {
		return ProgressUpdate{}, fmt.Errorf("update onboarding: %w", err)
	}
	return ProgressUpdate{
		Success:     true,
		CurrentStep: newStep,
		TotalSteps:  totalSteps,
		Message:     fmt.Sprintf("Step %d completed! Moving to step %d.", step, newStep),
	}, nil
}
