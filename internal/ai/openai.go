package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"voicejournal/internal/journal"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"

	defaultChatModel       = "gpt-4"
	defaultTranscribeModel = "whisper-1"
	defaultImageModel      = "dall-e-3"

	chatTemperature = 0.7
	chatMaxTokens   = 500
	moodTemperature = 0.3
	moodMaxTokens   = 10

	imageSize = "1024x1024"
)

// OpenAIConfig tunes the OpenAI-compatible client. Zero values fall back to
// the defaults above.
type OpenAIConfig struct {
	APIKey          string
	BaseURL         string
	ChatModel       string
	TranscribeModel string
	ImageModel      string
	Timeout         time.Duration
}

// OpenAIClient talks to an OpenAI-compatible API. It covers all four remote
// concerns: speech-to-text, chat completion, mood classification and image
// generation.
type OpenAIClient struct {
	cfg        OpenAIConfig
	httpClient *http.Client
}

// NewOpenAIClient builds a client with request timeouts so a stalled provider
// maps to a failure instead of a silent hang.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOpenAIBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.ChatModel == "" {
		cfg.ChatModel = defaultChatModel
	}
	if cfg.TranscribeModel == "" {
		cfg.TranscribeModel = defaultTranscribeModel
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = defaultImageModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &OpenAIClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Transcribe sends the finalized audio payload to the speech-to-text
// endpoint. A success never yields an empty transcript.
func (c *OpenAIClient) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("%w: empty audio payload", journal.ErrTranscriptionFailed)
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", audioFileName(mimeType))
	if err != nil {
		return "", fmt.Errorf("%w: build form: %v", journal.ErrTranscriptionFailed, err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("%w: write audio: %v", journal.ErrTranscriptionFailed, err)
	}
	if err := form.WriteField("model", c.cfg.TranscribeModel); err != nil {
		return "", fmt.Errorf("%w: write model field: %v", journal.ErrTranscriptionFailed, err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("%w: finalize form: %v", journal.ErrTranscriptionFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", journal.ErrTranscriptionFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", form.FormDataContentType())

	var out struct {
		Text string `json:"text"`
	}
	if err := c.do(req, &out, journal.ErrTranscriptionFailed); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Text) == "" {
		return "", fmt.Errorf("%w: provider returned no text", journal.ErrTranscriptionFailed)
	}
	return out.Text, nil
}

// Reply requests the next assistant turn for the given history, prefixed with
// the companion persona instruction.
func (c *OpenAIClient) Reply(ctx context.Context, history []Message) (string, error) {
	if len(history) == 0 {
		return "", fmt.Errorf("%w: empty message history", journal.ErrGenerationFailed)
	}
	messages := append([]Message{{Role: RoleSystem, Content: companionSystemPrompt}}, history...)
	content, err := c.chatCompletion(ctx, messages, chatTemperature, chatMaxTokens, journal.ErrGenerationFailed)
	if err != nil {
		return "", err
	}
	return content, nil
}

// ClassifyMood asks the model for exactly one label from the fixed set. The
// raw label is returned; callers normalize it.
func (c *OpenAIClient) ClassifyMood(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty text", journal.ErrClassificationFailed)
	}
	messages := []Message{
		{Role: RoleSystem, Content: moodSystemPrompt},
		{Role: RoleUser, Content: text},
	}
	return c.chatCompletion(ctx, messages, moodTemperature, moodMaxTokens, journal.ErrClassificationFailed)
}

// GenerateImage renders one image for the prompt in base64 form.
func (c *OpenAIClient) GenerateImage(ctx context.Context, prompt string) (Image, error) {
	payload := map[string]any{
		"model":           c.cfg.ImageModel,
		"prompt":          prompt,
		"n":               1,
		"size":            imageSize,
		"response_format": "b64_json",
	}
	req, err := c.jsonRequest(ctx, "/images/generations", payload)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", journal.ErrImageGenerationFailed, err)
	}

	var out struct {
		Data []struct {
			B64JSON string `json:"b64_json"`
		} `json:"data"`
	}
	if err := c.do(req, &out, journal.ErrImageGenerationFailed); err != nil {
		return Image{}, err
	}
	if len(out.Data) == 0 || out.Data[0].B64JSON == "" {
		return Image{}, fmt.Errorf("%w: no image data in response", journal.ErrImageGenerationFailed)
	}
	return Image{B64JSON: out.Data[0].B64JSON, MIMEType: "image/png"}, nil
}

func (c *OpenAIClient) chatCompletion(ctx context.Context, messages []Message, temperature float64, maxTokens int, kind error) (string, error) {
	payload := map[string]any{
		"model":       c.cfg.ChatModel,
		"messages":    messages,
		"temperature": temperature,
		"max_tokens":  maxTokens,
	}
	req, err := c.jsonRequest(ctx, "/chat/completions", payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", kind, err)
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := c.do(req, &out, kind); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: no choices in response", kind)
	}
	return out.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) jsonRequest(ctx context.Context, path string, payload any) (*http.Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// do executes the request and decodes the response, mapping transport errors
// and non-success statuses onto the given failure kind.
func (c *OpenAIClient) do(req *http.Request, out any, kind error) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: http %d: %s", kind, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", kind, err)
	}
	return nil
}

func audioFileName(mimeType string) string {
	switch {
	case strings.Contains(mimeType, "wav"):
		return "audio.wav"
	case strings.Contains(mimeType, "mp4"):
		return "audio.mp4"
	case strings.Contains(mimeType, "mpeg"), strings.Contains(mimeType, "mp3"):
		return "audio.mp3"
	case strings.Contains(mimeType, "ogg"):
		return "audio.ogg"
	default:
		return "audio.webm"
	}
}
