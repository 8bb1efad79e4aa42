package core

import "context"

// External AI service names used to key circuit breakers and retry policies.
const (
	ServiceTranscribe = "transcribe"
	ServiceSynthesize = "synthesize"
	ServiceTranslate  = "translate"
	ServiceInference  = "inference"
)

// SpeechService is the boundary to external speech transcription and
// synthesis. Implementations perform no resilience handling of their own;
// callers wrap invocations with the resilience layer.
type SpeechService interface {
	// Transcribe converts spoken audio into text in the given language.
	Transcribe(ctx context.Context, audio []byte, lang Language) (string, error)

	// Synthesize renders text into spoken audio bytes.
	Synthesize(ctx context.Context, text string, lang Language) ([]byte, error)
}

// TranslationService translates text between two supported languages.
type TranslationService interface {
	Translate(ctx context.Context, text string, source, target Language) (string, error)
}

// InferenceService runs a prompt against an external language model.
type InferenceService interface {
	Infer(ctx context.Context, prompt string) (string, error)
}
