package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/missionai/agrimesh/core"
	"github.com/stretchr/testify/assert"
)

// flakySpeech fails every call with the configured error.
type flakySpeech struct{ err error }

func (f *flakySpeech) Transcribe(context.Context, []byte, core.Language) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "transcribed text", nil
}

func (f *flakySpeech) Synthesize(_ context.Context, text string, _ core.Language) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("audio:" + text), nil
}

type flakyTranslator struct{ err error }

func (f *flakyTranslator) Translate(_ context.Context, text string, _, _ core.Language) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "translated:" + text, nil
}

type flakyInference struct{ err error }

func (f *flakyInference) Infer(_ context.Context, prompt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "answer:" + prompt, nil
}

func newTestServices(speechErr, translateErr, inferErr error) *Services {
	return NewServices(func(o *ServiceOptions) {
		o.Executor = NewExecutor(func(o *Options) {
			o.Policy = RetryPolicy{MaxRetries: 2, BackoffFactor: 2.0, BackoffUnit: time.Microsecond}
		})
		o.Speech = &flakySpeech{err: speechErr}
		o.Translation = &flakyTranslator{err: translateErr}
		o.Inference = &flakyInference{err: inferErr}
	})
}

func TestServices_TranscribeSuccess(t *testing.T) {
	s := newTestServices(nil, nil, nil)
	res := s.Transcribe(context.Background(), []byte("audio"), core.LanguageEnglish)
	assert.True(t, res.OK)
	assert.False(t, res.FallbackMode)
	assert.Equal(t, "transcribed text", res.Text)
}

func TestServices_TranscribeFallback(t *testing.T) {
	s := newTestServices(errors.New("down"), nil, nil)
	res := s.Transcribe(context.Background(), []byte("audio"), core.LanguageEnglish)
	assert.False(t, res.OK)
	assert.True(t, res.FallbackMode)
	assert.Empty(t, res.Text)
	assert.Contains(t, res.Message, "text input")
}

func TestServices_SynthesizeFallbackKeepsText(t *testing.T) {
	s := newTestServices(errors.New("down"), nil, nil)
	res := s.Synthesize(context.Background(), "hello farmer", core.LanguageKannada)
	assert.False(t, res.OK)
	assert.True(t, res.FallbackMode)
	assert.Nil(t, res.Audio)
	assert.Equal(t, "hello farmer", res.DisplayText)
}

func TestServices_TranslateFallbackReturnsOriginal(t *testing.T) {
	s := newTestServices(nil, errors.New("down"), nil)
	res := s.Translate(context.Background(), "good morning", core.LanguageEnglish, core.LanguageHindi)
	assert.False(t, res.OK)
	assert.True(t, res.FallbackMode)
	assert.Equal(t, "good morning", res.TranslatedText)
}

func TestServices_TranslateSameLanguageShortCircuits(t *testing.T) {
	s := newTestServices(nil, errors.New("down"), nil)
	res := s.Translate(context.Background(), "good morning", core.LanguageHindi, core.LanguageHindi)
	assert.True(t, res.OK)
	assert.Equal(t, "good morning", res.TranslatedText)
}

func TestServices_InferFallback(t *testing.T) {
	s := newTestServices(nil, nil, errors.New("down"))
	res := s.Infer(context.Background(), "what should I plant")
	assert.False(t, res.OK)
	assert.True(t, res.FallbackMode)
	assert.NotEmpty(t, res.Message)
}

func TestServices_NilServicesAlwaysDegrade(t *testing.T) {
	s := NewServices()
	assert.True(t, s.Transcribe(context.Background(), nil, core.LanguageEnglish).FallbackMode)
	assert.True(t, s.Synthesize(context.Background(), "x", core.LanguageEnglish).FallbackMode)
	assert.True(t, s.Translate(context.Background(), "x", core.LanguageEnglish, core.LanguageHindi).FallbackMode)
	assert.True(t, s.Infer(context.Background(), "x").FallbackMode)
}
