package ai

import "context"

// Message roles as understood by the chat providers.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation. Order is turn order.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatProvider produces the next assistant turn and mood labels for text.
// Implementations prefix requests with their own system instructions; callers
// pass only user/assistant history.
type ChatProvider interface {
	// Reply returns one new assistant message for the given history.
	Reply(ctx context.Context, history []Message) (string, error)
	// ClassifyMood returns the provider's raw mood label for the text.
	// Callers are responsible for normalizing it against the known set.
	ClassifyMood(ctx context.Context, text string) (string, error)
}

// Transcriber converts a finalized audio payload into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// ImageGenerator renders an embeddable image for a prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (Image, error)
}

// Image is an embeddable generated image.
type Image struct {
	B64JSON  string
	MIMEType string
}

// DataURL encodes the image for inline embedding.
func (img Image) DataURL() string {
	mime := img.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + img.B64JSON
}
