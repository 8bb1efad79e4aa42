// Package openai backs the speech, translation and inference boundaries
// with the OpenAI API: Whisper for transcription, the TTS endpoint for
// synthesis and Chat Completions for translation and inference. Errors are
// classified for the resilience layer at this boundary.
package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/openai/openai-go"

	"github.com/missionai/agrimesh/core"
	"github.com/missionai/agrimesh/resilience"
)

// Options configure the OpenAI provider.
type Options struct {
	ChatModel          string
	TranscriptionModel string
	SpeechModel        string
	Voice              openai.AudioSpeechNewParamsVoice
	Temperature        float64
	MaxTokens          int64
}

// Provider implements the speech, translation and inference boundaries over
// a single OpenAI client.
type Provider struct {
	client *openai.Client
	opts   Options
}

var (
	_ core.SpeechService      = (*Provider)(nil)
	_ core.TranslationService = (*Provider)(nil)
	_ core.InferenceService   = (*Provider)(nil)
)

// New creates a Provider using the default client, which reads the API key
// from the environment.
func New(optFns ...func(o *Options)) *Provider {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates a Provider from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Provider {
	opts := Options{
		ChatModel:          openai.ChatModelGPT4oMini,
		TranscriptionModel: openai.AudioModelWhisper1,
		SpeechModel:        openai.SpeechModelTTS1,
		Voice:              openai.AudioSpeechNewParamsVoiceAlloy,
		Temperature:        0.3,
		MaxTokens:          1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Provider{client: client, opts: opts}
}

// Transcribe converts spoken audio to text with Whisper.
func (p *Provider) Transcribe(ctx context.Context, audio []byte, lang core.Language) (string, error) {
	resp, err := p.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:     openai.File(bytes.NewReader(audio), "audio.wav", "audio/wav"),
		Model:    p.opts.TranscriptionModel,
		Language: openai.String(lang.Code()),
	})
	if err != nil {
		return "", classify(core.ServiceTranscribe, err)
	}
	return resp.Text, nil
}

// Synthesize renders text into spoken audio.
func (p *Provider) Synthesize(ctx context.Context, text string, _ core.Language) ([]byte, error) {
	resp, err := p.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model: p.opts.SpeechModel,
		Voice: p.opts.Voice,
		Input: text,
	})
	if err != nil {
		return nil, classify(core.ServiceSynthesize, err)
	}
	defer resp.Body.Close()
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resilience.NewTransientError(core.ServiceSynthesize, resilience.CodeServerError, err)
	}
	return audio, nil
}

// Translate translates text between two supported languages via chat
// completion.
func (p *Provider) Translate(ctx context.Context, text string, source, target core.Language) (string, error) {
	prompt := fmt.Sprintf("Translate the following text from %s to %s. Reply with only the translation.\n\n%s",
		source, target, text)
	return p.complete(ctx, core.ServiceTranslate,
		"You are a precise translator for agricultural conversations.", prompt)
}

// Infer runs a free-form prompt against the chat model.
func (p *Provider) Infer(ctx context.Context, prompt string) (string, error) {
	return p.complete(ctx, core.ServiceInference,
		"You are an agricultural assistant for smallholder farmers. Be concrete and brief.", prompt)
}

func (p *Provider) complete(ctx context.Context, service, system, prompt string) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
		Model:               p.opts.ChatModel,
		Temperature:         openai.Float(p.opts.Temperature),
		MaxCompletionTokens: openai.Int(p.opts.MaxTokens),
	})
	if err != nil {
		return "", classify(service, err)
	}
	if len(resp.Choices) == 0 {
		return "", resilience.NewTransientError(service, resilience.CodeServerError,
			errors.New("empty completion response"))
	}
	return resp.Choices[0].Message.Content, nil
}

// classify maps SDK errors onto the resilience layer's retryability model:
// throttling and server errors retry, client errors do not.
func classify(service string, err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return resilience.NewTransientError(service, resilience.CodeServerError, err)
	}
	switch {
	case apiErr.StatusCode == 429:
		return resilience.NewTransientError(service, resilience.CodeThrottled, err)
	case apiErr.StatusCode >= 500:
		return resilience.NewTransientError(service, resilience.CodeServerError, err)
	case apiErr.StatusCode == 401 || apiErr.StatusCode == 403:
		return resilience.NewPermanentError(service, resilience.CodeAccessDenied, err)
	case apiErr.StatusCode == 404:
		return resilience.NewPermanentError(service, resilience.CodeNotFound, err)
	default:
		return resilience.NewPermanentError(service, resilience.CodeValidation, err)
	}
}
