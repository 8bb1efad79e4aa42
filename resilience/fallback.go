package resilience

import (
	"context"

	"github.com/missionai/agrimesh/core"
	"github.com/missionai/agrimesh/logging"
)

// TranscriptionResult is the outcome of a guarded transcription call. On
// failure it is a well-formed degraded value, never an error.
type TranscriptionResult struct {
	OK           bool   `json:"ok"`
	FallbackMode bool   `json:"fallback_mode,omitempty"`
	Text         string `json:"text"`
	Message      string `json:"message,omitempty"`
}

// SynthesisResult is the outcome of a guarded speech synthesis call. When
// synthesis is unavailable DisplayText carries the original text for
// text-only presentation.
type SynthesisResult struct {
	OK           bool   `json:"ok"`
	FallbackMode bool   `json:"fallback_mode,omitempty"`
	Audio        []byte `json:"audio,omitempty"`
	DisplayText  string `json:"display_text,omitempty"`
	Message      string `json:"message,omitempty"`
}

// TranslationResult is the outcome of a guarded translation call. On failure
// TranslatedText carries the original text unchanged.
type TranslationResult struct {
	OK             bool   `json:"ok"`
	FallbackMode   bool   `json:"fallback_mode,omitempty"`
	TranslatedText string `json:"translated_text"`
	Message        string `json:"message,omitempty"`
}

// InferenceResult is the outcome of a guarded language model call.
type InferenceResult struct {
	OK           bool   `json:"ok"`
	FallbackMode bool   `json:"fallback_mode,omitempty"`
	Text         string `json:"text"`
	Message      string `json:"message,omitempty"`
}

// ServiceOptions configure a Services wrapper.
type ServiceOptions struct {
	Executor    *Executor
	Speech      core.SpeechService
	Translation core.TranslationService
	Inference   core.InferenceService
	Logger      logging.Logger
}

// Services wraps the four external AI operations with retry, circuit
// breaking and graceful fallback. Every method returns a well-formed value;
// callers never need a catch-all for raised errors at this layer.
type Services struct {
	executor    *Executor
	speech      core.SpeechService
	translation core.TranslationService
	inference   core.InferenceService
	logger      logging.Logger
}

// NewServices constructs the resilient service wrapper. Nil service fields
// are allowed; their operations then always degrade to fallback results.
func NewServices(optFns ...func(o *ServiceOptions)) *Services {
	opts := ServiceOptions{
		Executor: NewExecutor(),
		Logger:   logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Executor == nil {
		opts.Executor = NewExecutor()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Services{
		executor:    opts.Executor,
		speech:      opts.Speech,
		translation: opts.Translation,
		inference:   opts.Inference,
		logger:      opts.Logger,
	}
}

// Executor exposes the underlying executor (and through it the breaker
// registry).
func (s *Services) Executor() *Executor { return s.executor }

// Transcribe converts audio to text, degrading to a retry prompt when the
// transcription service is unavailable.
func (s *Services) Transcribe(ctx context.Context, audio []byte, lang core.Language) TranscriptionResult {
	if s.speech == nil {
		return TranscriptionResult{FallbackMode: true, Message: "Voice input unavailable. Please try again or use text input."}
	}
	text, err := Call(ctx, s.executor, core.ServiceTranscribe, func(ctx context.Context) (string, error) {
		return s.speech.Transcribe(ctx, audio, lang)
	})
	if err != nil {
		s.logger.Warn("transcription failed, degrading to text input prompt", "error", err)
		return TranscriptionResult{FallbackMode: true, Message: "Voice input unavailable. Please try again or use text input."}
	}
	return TranscriptionResult{OK: true, Text: text}
}

// Synthesize renders text to speech, degrading to text-only display when the
// synthesis service is unavailable.
func (s *Services) Synthesize(ctx context.Context, text string, lang core.Language) SynthesisResult {
	if s.speech == nil {
		return SynthesisResult{FallbackMode: true, DisplayText: text, Message: "Audio unavailable, displaying text only"}
	}
	audio, err := Call(ctx, s.executor, core.ServiceSynthesize, func(ctx context.Context) ([]byte, error) {
		return s.speech.Synthesize(ctx, text, lang)
	})
	if err != nil {
		s.logger.Warn("speech synthesis failed, degrading to text only", "error", err)
		return SynthesisResult{FallbackMode: true, DisplayText: text, Message: "Audio unavailable, displaying text only"}
	}
	return SynthesisResult{OK: true, Audio: audio, DisplayText: text}
}

// Translate translates text between languages, returning the original text
// unchanged when translation is unavailable.
func (s *Services) Translate(ctx context.Context, text string, source, target core.Language) TranslationResult {
	if source == target {
		return TranslationResult{OK: true, TranslatedText: text}
	}
	if s.translation == nil {
		return TranslationResult{FallbackMode: true, TranslatedText: text, Message: "Translation unavailable, showing original text"}
	}
	translated, err := Call(ctx, s.executor, core.ServiceTranslate, func(ctx context.Context) (string, error) {
		return s.translation.Translate(ctx, text, source, target)
	})
	if err != nil {
		s.logger.Warn("translation failed, returning original text", "error", err)
		return TranslationResult{FallbackMode: true, TranslatedText: text, Message: "Translation unavailable, showing original text"}
	}
	return TranslationResult{OK: true, TranslatedText: translated}
}

// Infer runs a prompt against the language model, degrading to an apology
// when inference is unavailable.
func (s *Services) Infer(ctx context.Context, prompt string) InferenceResult {
	if s.inference == nil {
		return InferenceResult{FallbackMode: true, Message: "The assistant is unavailable right now. Please try again shortly."}
	}
	text, err := Call(ctx, s.executor, core.ServiceInference, func(ctx context.Context) (string, error) {
		return s.inference.Infer(ctx, prompt)
	})
	if err != nil {
		s.logger.Warn("model inference failed, degrading to apology", "error", err)
		return InferenceResult{FallbackMode: true, Message: "The assistant is unavailable right now. Please try again shortly."}
	}
	return InferenceResult{OK: true, Text: text}
}
