package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ws-chatt/backend/chat/models"
	"ws-chatt/backend/pkg/clock"
	"ws-chatt/backend/pkg/config"
)

// GeminiService talks to the Gemini REST API for conversation, image
// and video generation, and text-to-speech.
type GeminiService struct {
	apiKey         string
	baseURL        string
	chatModel      string
	imageModel     string
	imageEditModel string
	videoModel     string
	ttsModel       string
	pollInterval   time.Duration
	httpClient     *http.Client
	clock          clock.Clock
}

// NewGeminiService creates a responder from configuration.
func NewGeminiService(cfg *config.Config) (*GeminiService, error) {
	if cfg.AI.APIKey == "" {
		return nil, errors.New("Gemini API key is required")
	}

	return &GeminiService{
		apiKey:         cfg.AI.APIKey,
		baseURL:        strings.TrimRight(cfg.AI.BaseURL, "/"),
		chatModel:      cfg.AI.ChatModel,
		imageModel:     cfg.AI.ImageModel,
		imageEditModel: cfg.AI.ImageEditModel,
		videoModel:     cfg.AI.VideoModel,
		ttsModel:       cfg.AI.TTSModel,
		pollInterval:   cfg.AI.VideoPoll,
		httpClient:     &http.Client{Timeout: cfg.AI.Timeout},
		clock:          clock.Real{},
	}, nil
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type contentPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type content struct {
	Parts []contentPart `json:"parts"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig struct {
		VoiceName string `json:"voiceName"`
	} `json:"prebuiltVoiceConfig"`
}

type speechConfig struct {
	VoiceConfig voiceConfig `json:"voiceConfig"`
}

type generationConfig struct {
	ResponseModalities []string      `json:"responseModalities,omitempty"`
	SpeechConfig       *speechConfig `json:"speechConfig,omitempty"`
}

type generateContentRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	Tools             []map[string]any  `json:"tools,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type groundingChunkSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content           content `json:"content"`
		GroundingMetadata *struct {
			GroundingChunks []struct {
				Web  *groundingChunkSource `json:"web"`
				Maps *groundingChunkSource `json:"maps"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
}

// Converse generates a persona reply, collecting any grounding
// citations the model attaches.
func (s *GeminiService) Converse(ctx context.Context, prompt, systemInstruction string) (*ConverseResult, error) {
	requestBody := generateContentRequest{
		Contents: []content{{Parts: []contentPart{{Text: prompt}}}},
		Tools:    []map[string]any{{"googleMaps": map[string]any{}}},
	}
	if systemInstruction != "" {
		requestBody.SystemInstruction = &content{Parts: []contentPart{{Text: systemInstruction}}}
	}

	var resp generateContentResponse
	if err := s.post(ctx, s.modelURL(s.chatModel, "generateContent"), requestBody, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("API error: %s", resp.Error.Message)
	}
	if len(resp.Candidates) == 0 {
		return nil, errors.New("no response generated")
	}

	candidate := resp.Candidates[0]

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		text.WriteString(part.Text)
	}

	var sources []models.GroundingSource
	if candidate.GroundingMetadata != nil {
		for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
			source := chunk.Maps
			if source == nil {
				source = chunk.Web
			}
			if source != nil && source.URI != "" {
				title := source.Title
				if title == "" {
					title = "Source"
				}
				sources = append(sources, models.GroundingSource{Title: title, URI: source.URI})
			}
		}
	}

	return &ConverseResult{Text: text.String(), GroundingSources: sources}, nil
}

type imagePredictRequest struct {
	Instances []struct {
		Prompt string `json:"prompt"`
	} `json:"instances"`
	Parameters struct {
		SampleCount    int    `json:"sampleCount"`
		OutputMimeType string `json:"outputMimeType"`
	} `json:"parameters"`
}

// CreateImage generates a single JPEG image and returns it as a data URI.
func (s *GeminiService) CreateImage(ctx context.Context, prompt string) (string, error) {
	var requestBody imagePredictRequest
	requestBody.Instances = []struct {
		Prompt string `json:"prompt"`
	}{{Prompt: prompt}}
	requestBody.Parameters.SampleCount = 1
	requestBody.Parameters.OutputMimeType = "image/jpeg"

	var resp struct {
		Predictions []struct {
			BytesBase64Encoded string `json:"bytesBase64Encoded"`
			MimeType           string `json:"mimeType"`
		} `json:"predictions"`
		Error *apiError `json:"error,omitempty"`
	}
	if err := s.post(ctx, s.modelURL(s.imageModel, "predict"), requestBody, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("API error: %s", resp.Error.Message)
	}
	if len(resp.Predictions) == 0 || resp.Predictions[0].BytesBase64Encoded == "" {
		return "", errors.New("no image data in response")
	}

	return "data:image/jpeg;base64," + resp.Predictions[0].BytesBase64Encoded, nil
}

// EditImage applies the prompt to the supplied image and returns the
// edited image as a data URI.
func (s *GeminiService) EditImage(ctx context.Context, prompt, imageBase64, mimeType string) (string, error) {
	requestBody := generateContentRequest{
		Contents: []content{{Parts: []contentPart{
			{InlineData: &inlineData{MimeType: mimeType, Data: stripDataURI(imageBase64)}},
			{Text: prompt},
		}}},
		GenerationConfig: &generationConfig{ResponseModalities: []string{"IMAGE"}},
	}

	var resp generateContentResponse
	if err := s.post(ctx, s.modelURL(s.imageEditModel, "generateContent"), requestBody, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("API error: %s", resp.Error.Message)
	}
	for _, candidate := range resp.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				return fmt.Sprintf("data:%s;base64,%s", part.InlineData.MimeType, part.InlineData.Data), nil
			}
		}
	}
	return "", errors.New("no image data in response")
}

type videoPredictRequest struct {
	Instances []struct {
		Prompt string `json:"prompt"`
		Image  struct {
			BytesBase64Encoded string `json:"bytesBase64Encoded"`
			MimeType           string `json:"mimeType"`
		} `json:"image"`
	} `json:"instances"`
	Parameters struct {
		SampleCount int    `json:"sampleCount"`
		Resolution  string `json:"resolution"`
		AspectRatio string `json:"aspectRatio"`
	} `json:"parameters"`
}

type videoOperation struct {
	Name     string `json:"name"`
	Done     bool   `json:"done"`
	Response *struct {
		GenerateVideoResponse struct {
			GeneratedSamples []struct {
				Video struct {
					URI string `json:"uri"`
				} `json:"video"`
			} `json:"generatedSamples"`
		} `json:"generateVideoResponse"`
	} `json:"response"`
	Error *apiError `json:"error,omitempty"`
}

// CreateVideo starts a long-running video generation operation and
// polls it to completion. The poll waits go through the injected clock
// so the loop is testable without real delays.
func (s *GeminiService) CreateVideo(ctx context.Context, prompt, imageBase64, mimeType, aspectRatio string) (string, error) {
	var requestBody videoPredictRequest
	requestBody.Instances = make([]struct {
		Prompt string `json:"prompt"`
		Image  struct {
			BytesBase64Encoded string `json:"bytesBase64Encoded"`
			MimeType           string `json:"mimeType"`
		} `json:"image"`
	}, 1)
	requestBody.Instances[0].Prompt = prompt
	requestBody.Instances[0].Image.BytesBase64Encoded = stripDataURI(imageBase64)
	requestBody.Instances[0].Image.MimeType = mimeType
	requestBody.Parameters.SampleCount = 1
	requestBody.Parameters.Resolution = "720p"
	requestBody.Parameters.AspectRatio = aspectRatio

	var started videoOperation
	if err := s.post(ctx, s.modelURL(s.videoModel, "predictLongRunning"), requestBody, &started); err != nil {
		return "", err
	}
	if started.Error != nil {
		return "", fmt.Errorf("API error: %s", started.Error.Message)
	}
	if started.Name == "" {
		return "", errors.New("no operation name in response")
	}

	for {
		s.clock.Sleep(ctx, s.pollInterval)
		if err := ctx.Err(); err != nil {
			return "", err
		}

		var op videoOperation
		if err := s.get(ctx, s.baseURL+"/"+started.Name, &op); err != nil {
			return "", err
		}
		if op.Error != nil {
			return "", fmt.Errorf("API error: %s", op.Error.Message)
		}
		if !op.Done {
			continue
		}
		if op.Response == nil || len(op.Response.GenerateVideoResponse.GeneratedSamples) == 0 {
			return "", errors.New("video generation succeeded but no URI was returned")
		}
		uri := op.Response.GenerateVideoResponse.GeneratedSamples[0].Video.URI
		if uri == "" {
			return "", errors.New("video generation succeeded but no URI was returned")
		}
		return uri + "&key=" + s.apiKey, nil
	}
}

// SynthesizeSpeech converts text to base64 encoded audio.
func (s *GeminiService) SynthesizeSpeech(ctx context.Context, text string) (string, error) {
	speech := &speechConfig{}
	speech.VoiceConfig.PrebuiltVoiceConfig.VoiceName = "Kore"

	requestBody := generateContentRequest{
		Contents: []content{{Parts: []contentPart{{Text: text}}}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig:       speech,
		},
	}

	var resp generateContentResponse
	if err := s.post(ctx, s.modelURL(s.ttsModel, "generateContent"), requestBody, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("API error: %s", resp.Error.Message)
	}
	for _, candidate := range resp.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				return part.InlineData.Data, nil
			}
		}
	}
	return "", errors.New("no audio data in TTS response")
}

func (s *GeminiService) modelURL(model, method string) string {
	return fmt.Sprintf("%s/models/%s:%s", s.baseURL, model, method)
}

func (s *GeminiService) post(ctx context.Context, url string, body any, out any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	return s.do(req, out)
}

func (s *GeminiService) get(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	return s.do(req, out)
}

func (s *GeminiService) do(req *http.Request, out any) error {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error making API request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API request failed with status code %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("error unmarshaling response: %w", err)
	}
	return nil
}

// stripDataURI drops a "data:<mime>;base64," prefix if present so
// callers can pass either raw base64 or a browser-style data URI.
func stripDataURI(data string) string {
	if idx := strings.Index(data, ","); idx >= 0 && strings.HasPrefix(data, "data:") {
		return data[idx+1:]
	}
	return data
}
