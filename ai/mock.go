package ai

import (
	"context"
	"fmt"
	"time"

	"ws-chatt/backend/pkg/clock"
)

// MockResponder is used when no API key is configured. It answers with
// canned content after a short simulated latency so the rest of the
// system behaves as it would against the real backend.
type MockResponder struct {
	clock   clock.Clock
	latency time.Duration
}

// NewMockResponder creates a mock with the default simulated latency.
func NewMockResponder(clk clock.Clock) *MockResponder {
	return &MockResponder{clock: clk, latency: 800 * time.Millisecond}
}

func (m *MockResponder) Converse(ctx context.Context, prompt, systemInstruction string) (*ConverseResult, error) {
	m.clock.Sleep(ctx, m.latency)
	return &ConverseResult{Text: fmt.Sprintf("Mock response for: %q", prompt)}, nil
}

func (m *MockResponder) CreateImage(ctx context.Context, prompt string) (string, error) {
	m.clock.Sleep(ctx, m.latency)
	return "https://picsum.photos/seed/mock-image/512/512", nil
}

func (m *MockResponder) EditImage(ctx context.Context, prompt, imageBase64, mimeType string) (string, error) {
	m.clock.Sleep(ctx, m.latency)
	return imageBase64, nil
}

func (m *MockResponder) CreateVideo(ctx context.Context, prompt, imageBase64, mimeType, aspectRatio string) (string, error) {
	m.clock.Sleep(ctx, m.latency)
	return "https://storage.googleapis.com/gtv-videos-bucket/sample/ForBiggerFun.mp4", nil
}

func (m *MockResponder) SynthesizeSpeech(ctx context.Context, text string) (string, error) {
	return "", fmt.Errorf("text-to-speech unavailable: no API key configured")
}
