package ai

import (
	"context"

	"ws-chatt/backend/chat/models"
)

// ConverseResult is what a conversational exchange produces: the reply
// text plus optional citations and quick-reply suggestions.
type ConverseResult struct {
	Text             string                   `json:"text"`
	GroundingSources []models.GroundingSource `json:"grounding_sources,omitempty"`
	Suggestions      []models.Suggestion      `json:"suggestions,omitempty"`
}

// Responder is the boundary to the generative backend. Every call may
// take unbounded time and may fail; callers are expected to degrade to
// fallback content rather than propagate errors to the user.
type Responder interface {
	// Converse generates a persona reply for the given prompt.
	Converse(ctx context.Context, prompt, systemInstruction string) (*ConverseResult, error)

	// CreateImage generates an image for the prompt and returns it as a
	// data URI.
	CreateImage(ctx context.Context, prompt string) (string, error)

	// EditImage applies the prompt to the supplied base64 image and
	// returns the edited image as a data URI.
	EditImage(ctx context.Context, prompt, imageBase64, mimeType string) (string, error)

	// CreateVideo generates a video from the prompt and reference image,
	// polling until the long-running operation completes. The returned
	// string is a downloadable video URL.
	CreateVideo(ctx context.Context, prompt, imageBase64, mimeType, aspectRatio string) (string, error)

	// SynthesizeSpeech converts text to base64 encoded audio.
	SynthesizeSpeech(ctx context.Context, text string) (string, error)
}
