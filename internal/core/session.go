package core

import (
	"voicejournal/internal/ai"
	"voicejournal/internal/journal"
)

// State models the recording-to-entry lifecycle for one session.
type State string

const (
	StateIdle          State = "idle"
	StateRecording     State = "recording"
	StateProcessing    State = "processing"
	StateAwaitingImage State = "awaiting_image_choice"
	StateDone          State = "done"
	StateError         State = "error"
)

// session is the in-memory state for one recording-to-save interaction. It is
// created when the user starts recording and discarded on reset or when a new
// recording begins. Only the latest transcript/response pair outlives it, as
// a persisted entry.
type session struct {
	state    State
	chunks   [][]byte
	mimeType string

	transcript string
	response   string
	mood       journal.Mood
	history    []ai.Message

	entryID       string
	imageURL      string
	imageInFlight bool

	lastError string
}

func newSession() *session {
	return &session{
		state:   StateRecording,
		history: []ai.Message{{Role: ai.RoleAssistant, Content: ai.Greeting}},
	}
}

// finalizeAudio concatenates the accumulated fragments into a single payload
// and releases the buffered fragments.
func (s *session) finalizeAudio() ([]byte, string) {
	var total int
	for _, chunk := range s.chunks {
		total += len(chunk)
	}
	audio := make([]byte, 0, total)
	for _, chunk := range s.chunks {
		audio = append(audio, chunk...)
	}
	s.chunks = nil

	mime := s.mimeType
	if mime == "" {
		mime = "audio/webm"
	}
	return audio, mime
}

// Status is a snapshot of the session exposed to the client.
type Status struct {
	State      State        `json:"state"`
	Transcript string       `json:"transcript,omitempty"`
	Response   string       `json:"ai_response,omitempty"`
	Mood       journal.Mood `json:"mood,omitempty"`
	EntryID    string       `json:"entry_id,omitempty"`
	ImageURL   string       `json:"image_url,omitempty"`
	Messages   []ai.Message `json:"messages,omitempty"`
	Error      string       `json:"error,omitempty"`
}

func (s *session) status() Status {
	st := Status{
		State:      s.state,
		Transcript: s.transcript,
		Response:   s.response,
		Mood:       s.mood,
		EntryID:    s.entryID,
		ImageURL:   s.imageURL,
		Error:      s.lastError,
	}
	st.Messages = append(st.Messages, s.history...)
	return st
}
