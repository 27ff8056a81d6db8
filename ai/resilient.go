package ai

import (
	"context"

	"ws-chatt/backend/pkg/logger"
	"ws-chatt/backend/pkg/resilience"
)

// ResilientResponder wraps a Responder with a circuit breaker so a
// misbehaving backend is cut off instead of stacking up timed-out
// requests. A tripped breaker surfaces as an ordinary error, which the
// chat service already converts into fallback content; there are no
// retries on this path.
type ResilientResponder struct {
	inner   Responder
	breaker *resilience.CircuitBreaker
}

// NewResilientResponder wraps the given responder.
func NewResilientResponder(inner Responder, log *logger.Logger) *ResilientResponder {
	return &ResilientResponder{
		inner:   inner,
		breaker: resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("responder"), log),
	}
}

func (r *ResilientResponder) Converse(ctx context.Context, prompt, systemInstruction string) (*ConverseResult, error) {
	var result *ConverseResult
	err := r.breaker.Execute(func() error {
		var err error
		result, err = r.inner.Converse(ctx, prompt, systemInstruction)
		return err
	})
	return result, err
}

func (r *ResilientResponder) CreateImage(ctx context.Context, prompt string) (string, error) {
	var out string
	err := r.breaker.Execute(func() error {
		var err error
		out, err = r.inner.CreateImage(ctx, prompt)
		return err
	})
	return out, err
}

func (r *ResilientResponder) EditImage(ctx context.Context, prompt, imageBase64, mimeType string) (string, error) {
	var out string
	err := r.breaker.Execute(func() error {
		var err error
		out, err = r.inner.EditImage(ctx, prompt, imageBase64, mimeType)
		return err
	})
	return out, err
}

func (r *ResilientResponder) CreateVideo(ctx context.Context, prompt, imageBase64, mimeType, aspectRatio string) (string, error) {
	var out string
	err := r.breaker.Execute(func() error {
		var err error
		out, err = r.inner.CreateVideo(ctx, prompt, imageBase64, mimeType, aspectRatio)
		return err
	})
	return out, err
}

func (r *ResilientResponder) SynthesizeSpeech(ctx context.Context, text string) (string, error) {
	var out string
	err := r.breaker.Execute(func() error {
		var err error
		out, err = r.inner.SynthesizeSpeech(ctx, text)
		return err
	})
	return out, err
}
