package journal

import "time"

// Entry is the durable record of one journaling interaction. An entry is
// created once per completed recording and may be updated exactly once
// afterward to attach image metadata.
type Entry struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"-"`
	Transcript string    `json:"transcript"`
	AIResponse string    `json:"ai_response"`
	Mood       Mood      `json:"mood"`
	Metadata   Metadata  `json:"metadata"`
	CreatedAt  time.Time `json:"created_at"`
}

// Metadata holds optional structured attachments for an entry.
type Metadata struct {
	ImageURL string `json:"image_url,omitempty"`
}

// Merge overlays non-empty fields of other onto m.
func (m Metadata) Merge(other Metadata) Metadata {
	if other.ImageURL != "" {
		m.ImageURL = other.ImageURL
	}
	return m
}
