package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"voicejournal/internal/journal"
)

const defaultGeminiModel = "gemini-1.5-flash-latest"

// GeminiClient is the alternate chat provider, backed by the Gemini API. It
// covers the text concerns only; transcription and image generation stay with
// the OpenAI client.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient connects to the Gemini API.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiClient{client: client, model: model}, nil
}

// Close releases the underlying API connection.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// Reply requests the next assistant turn for the given history.
func (c *GeminiClient) Reply(ctx context.Context, history []Message) (string, error) {
	if len(history) == 0 {
		return "", fmt.Errorf("%w: empty message history", journal.ErrGenerationFailed)
	}
	last := history[len(history)-1]
	if last.Role != RoleUser {
		return "", fmt.Errorf("%w: last message is not a user turn", journal.ErrGenerationFailed)
	}

	model := c.client.GenerativeModel(c.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(companionSystemPrompt)},
	}
	temp := float32(chatTemperature)
	maxTokens := int32(chatMaxTokens)
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:     &temp,
		MaxOutputTokens: &maxTokens,
	}

	session := model.StartChat()
	for _, msg := range history[:len(history)-1] {
		session.History = append(session.History, &genai.Content{
			Role:  geminiRole(msg.Role),
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}

	resp, err := session.SendMessage(ctx, genai.Text(last.Content))
	if err != nil {
		return "", fmt.Errorf("%w: %v", journal.ErrGenerationFailed, err)
	}
	text := candidateText(resp)
	if text == "" {
		return "", fmt.Errorf("%w: empty response from model", journal.ErrGenerationFailed)
	}
	return text, nil
}

// ClassifyMood asks the model for a single label; the raw label is returned.
func (c *GeminiClient) ClassifyMood(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty text", journal.ErrClassificationFailed)
	}

	model := c.client.GenerativeModel(c.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(moodSystemPrompt)},
	}
	temp := float32(moodTemperature)
	maxTokens := int32(moodMaxTokens)
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:     &temp,
		MaxOutputTokens: &maxTokens,
	}

	resp, err := model.GenerateContent(ctx, genai.Text(text))
	if err != nil {
		return "", fmt.Errorf("%w: %v", journal.ErrClassificationFailed, err)
	}
	label := candidateText(resp)
	if label == "" {
		return "", fmt.Errorf("%w: empty label from model", journal.ErrClassificationFailed)
	}
	return label, nil
}

func geminiRole(role string) string {
	if role == RoleAssistant {
		return "model"
	}
	return "user"
}

func candidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(b.String())
}
