package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/missionai/agrimesh/core"
	"github.com/missionai/agrimesh/handoff"
	"github.com/missionai/agrimesh/logging"
	"github.com/missionai/agrimesh/resilience"
	"github.com/missionai/agrimesh/router"
	"github.com/missionai/agrimesh/session"
)

// Response is the structured reply for a processed message. The orchestrator
// always returns a well-formed Response; failures surface as apologetic
// messages with alternatives, never as errors to the end user.
type Response struct {
	RequestID    string         `json:"request_id"`
	UserID       string         `json:"user_id"`
	HandlerName  string         `json:"handler_name,omitempty"`
	Message      string         `json:"message"`
	Language     core.Language  `json:"language"`
	Ambiguous    bool           `json:"ambiguous,omitempty"`
	Alternatives []string       `json:"alternatives,omitempty"`
	Data         map[string]any `json:"data,omitempty"`
	AudioReply   []byte         `json:"audio_reply,omitempty"`
	FallbackMode bool           `json:"fallback_mode,omitempty"`
}

// Options configure an Orchestrator.
type Options struct {
	Services *resilience.Services
	Logger   *logging.AgriLogger
}

// Orchestrator wires the router, session store and handoff coordinator into
// a single message-processing pipeline.
type Orchestrator struct {
	sessions    *session.Store
	router      *router.Router
	coordinator *handoff.Coordinator
	services    *resilience.Services
	logger      *logging.AgriLogger
}

// New constructs an Orchestrator over the given session store and
// coordinator.
func New(sessions *session.Store, coordinator *handoff.Coordinator, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		Services: resilience.NewServices(),
		Logger:   logging.NewLogger(nil),
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Services == nil {
		opts.Services = resilience.NewServices()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewLogger(nil)
	}
	return &Orchestrator{
		sessions:    sessions,
		router:      router.New(),
		coordinator: coordinator,
		services:    opts.Services,
		logger:      opts.Logger.WithComponent("orchestrator"),
	}
}

// ProcessText handles one text message end to end: language detection,
// intent routing, handoff and turn recording.
func (o *Orchestrator) ProcessText(ctx context.Context, userID, message, attachmentRef string) Response {
	requestID := uuid.NewString()
	log := o.logger.WithRequest(userID, requestID)

	lang := o.resolveLanguage(userID, message, log)
	sess := o.sessions.Get(userID)

	target, ambiguous := o.router.Route(message, sess)
	log.Info("message routed", "target", target, "ambiguous", ambiguous)

	var resp Response
	switch {
	case ambiguous:
		resp = Response{
			Message:   clarifyMessage(lang),
			Ambiguous: true,
		}
	case target == router.TargetNone:
		resp = o.generalResponse(sess, lang)
	default:
		result, err := o.coordinator.Handoff(ctx, userID, target, message, attachmentRef)
		if err != nil {
			resp = o.handleHandoffError(target, err, lang)
		} else {
			resp = Response{HandlerName: result.HandlerName, Message: result.Message, Data: result.Data}
		}
	}

	resp.RequestID = requestID
	resp.UserID = userID
	resp.Language = lang

	// Specialist replies are authored in English; translate them into the
	// user's language when it differs. A degraded translation keeps the
	// English text.
	if resp.HandlerName != "" && lang != core.DefaultLanguage {
		tr := o.services.Translate(ctx, resp.Message, core.DefaultLanguage, lang)
		resp.Message = tr.TranslatedText
	}

	if err := o.sessions.AppendTurn(userID, core.ConversationTurn{
		UserMessage:   message,
		AgentResponse: resp.Message,
		HandlerName:   resp.HandlerName,
	}); err != nil {
		log.Warn("failed to record turn", "error", err)
	}
	return resp
}

// ProcessVoice transcribes the audio, runs the text pipeline and synthesizes
// a spoken reply. A degraded transcription short-circuits with the fallback
// prompt; a degraded synthesis still returns the text answer.
func (o *Orchestrator) ProcessVoice(ctx context.Context, userID string, audio []byte) Response {
	sess := o.sessions.Get(userID)
	lang := sess.LanguagePreference

	tr := o.services.Transcribe(ctx, audio, lang)
	if tr.FallbackMode {
		return Response{
			RequestID:    uuid.NewString(),
			UserID:       userID,
			Message:      tr.Message,
			Language:     lang,
			FallbackMode: true,
		}
	}

	resp := o.ProcessText(ctx, userID, tr.Text, "")

	syn := o.services.Synthesize(ctx, resp.Message, resp.Language)
	if syn.FallbackMode {
		resp.FallbackMode = true
	} else {
		resp.AudioReply = syn.Audio
	}
	return resp
}

// resolveLanguage detects the script of the message and persists a changed
// preference so later replies use it.
func (o *Orchestrator) resolveLanguage(userID, message string, log *logging.AgriLogger) core.Language {
	detected := router.DetectLanguage(message)
	sess := o.sessions.Get(userID)
	if strings.TrimSpace(message) == "" {
		return sess.LanguagePreference
	}
	if detected != sess.LanguagePreference {
		if err := o.sessions.Save(userID, core.SessionUpdate{LanguagePreference: &detected}); err != nil {
			log.Warn("failed to save language preference", "error", err)
		}
	}
	return detected
}

// generalResponse answers messages no specialist matched. New farmers get
// pointed at the onboarding roadmap; everyone else gets the capability
// overview.
func (o *Orchestrator) generalResponse(sess *core.Session, lang core.Language) Response {
	if IsNewFarmer(sess) {
		roadmap := RoadmapForSeason(CurrentSeason(), sess)
		return Response{
			Message: fmt.Sprintf("Welcome! Since you're getting started, I've prepared a %s roadmap with %d steps, beginning with %q. Say \"start onboarding\" to begin, or ask me anything about your farm.",
				roadmap.Season, roadmap.TotalSteps, roadmap.Steps[0].Title),
			Data: map[string]any{"roadmap": roadmap},
		}
	}
	return Response{Message: capabilityMessage(lang)}
}

// handleHandoffError converts a failed handoff into an apologetic localized
// response with concrete alternatives instead of surfacing the raw error.
func (o *Orchestrator) handleHandoffError(target string, err error, lang core.Language) Response {
	o.logger.Error("handoff failed", "handler", target, "error", err)

	specialist := strings.ReplaceAll(target, "_", " ")
	var message string
	switch lang {
	case core.LanguageKannada:
		message = fmt.Sprintf("%s ವಿಶೇಷಜ್ಞರೊಂದಿಗೆ ಸಂಪರ್ಕ ಸಾಧಿಸಲು ನನಗೆ ತೊಂದರೆಯಾಗುತ್ತಿದೆ. ಇಲ್ಲಿ ಕೆಲವು ಪರ್ಯಾಯಗಳಿವೆ:", specialist)
	case core.LanguageHindi:
		message = fmt.Sprintf("मुझे अभी %s विशेषज्ञ से जुड़ने में परेशानी हो रही है। यहां कुछ विकल्प हैं:", specialist)
	default:
		message = fmt.Sprintf("I'm having trouble connecting to the %s specialist right now. Here are some alternatives:", specialist)
	}

	return Response{
		Message:      message,
		Alternatives: alternativesFor(target),
		FallbackMode: true,
	}
}

// alternativesFor suggests next actions when a specialist is unreachable.
func alternativesFor(target string) []string {
	switch target {
	case core.HandlerDiseaseDiagnosis:
		return []string{
			"Try uploading a clearer image",
			"Describe the symptoms in detail",
			"Check the community forum for similar issues",
		}
	case core.HandlerWeatherAdvisor:
		return []string{
			"Try again in a few moments",
			"Check local weather sources",
			"Ask the community about current conditions",
		}
	case core.HandlerMarketPrice:
		return []string{
			"Try again shortly",
			"Check local mandi prices",
			"Ask other farmers about recent prices",
		}
	default:
		return []string{
			"Try rephrasing your question",
			"Try again in a few moments",
			"Ask the community for advice",
		}
	}
}

func clarifyMessage(lang core.Language) string {
	switch lang {
	case core.LanguageKannada:
		return "ನಿಮ್ಮ ಪ್ರಶ್ನೆ ಹಲವು ವಿಷಯಗಳಿಗೆ ಹೊಂದುತ್ತದೆ. ನೀವು ಬೆಳೆ ರೋಗದ ಬಗ್ಗೆ ಕೇಳುತ್ತಿದ್ದೀರಾ, ಅಥವಾ ಬೆಲೆ ಮತ್ತು ಲಾಭದ ಬಗ್ಗೆ?"
	case core.LanguageHindi:
		return "आपका सवाल कई विषयों से मेल खाता है। क्या आप फसल की बीमारी के बारे में पूछ रहे हैं, या कीमत और मुनाफे के बारे में?"
	default:
		return "Your question could go a few different ways. Are you asking about crop health, prices and profit, or something else? A little more detail helps me send you to the right specialist."
	}
}

func capabilityMessage(lang core.Language) string {
	switch lang {
	case core.LanguageKannada:
		return "ನಾನು ಬೆಳೆ ರೋಗ, ಮಣ್ಣು, ಹವಾಮಾನ, ಮಾರುಕಟ್ಟೆ ಬೆಲೆ, ಸರ್ಕಾರಿ ಯೋಜನೆ ಮತ್ತು ಲಾಭ ಲೆಕ್ಕಾಚಾರದಲ್ಲಿ ಸಹಾಯ ಮಾಡಬಲ್ಲೆ. ನಿಮ್ಮ ಪ್ರಶ್ನೆ ಕೇಳಿ."
	case core.LanguageHindi:
		return "मैं फसल रोग, मिट्टी, मौसम, बाजार भाव, सरकारी योजनाओं और मुनाफे की गणना में मदद कर सकता हूं। अपना सवाल पूछें।"
	default:
		return "I can help with crop disease diagnosis, soil and crop selection, weather timing, market prices, government schemes, profit calculations and community advice. What would you like to know?"
	}
}
