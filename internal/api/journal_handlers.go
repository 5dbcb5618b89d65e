package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"voicejournal/internal/core"
	"voicejournal/internal/journal"
	"voicejournal/internal/store"
)

// maxAudioUploadBytes bounds a single recording upload.
const maxAudioUploadBytes = 25 << 20

func (h *APIHandler) StartSessionHandler(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	status, err := h.journal.StartRecording(user.ID)
	if err != nil {
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(status)
}

// UploadAudioHandler appends one audio fragment to the active recording. The
// fragment's MIME type is taken from the Content-Type header.
func (h *APIHandler) UploadAudioHandler(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	chunk, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxAudioUploadBytes))
	if err != nil {
		http.Error(w, "Failed to read audio payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(chunk) == 0 {
		http.Error(w, "Audio payload cannot be empty", http.StatusBadRequest)
		return
	}

	if err := h.journal.AppendAudio(user.ID, chunk, r.Header.Get("Content-Type")); err != nil {
		http.Error(w, err.Error(), statusForError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) StopSessionHandler(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	result, err := h.journal.StopRecording(r.Context(), user.ID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", user.ID).Msg("pipeline run failed")
		http.Error(w, err.Error(), statusForError(err))
		return
	}
	json.NewEncoder(w).Encode(result)
}

func (h *APIHandler) SessionStatusHandler(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)
	json.NewEncoder(w).Encode(h.journal.SessionStatus(user.ID))
}

func (h *APIHandler) ResetSessionHandler(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	if err := h.journal.ResetSession(user.ID); err != nil {
		http.Error(w, err.Error(), statusForError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) GenerateImageHandler(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	imageURL, err := h.journal.GenerateImage(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, journal.ErrImageGenerationFailed) {
			h.log.Warn().Err(err).Int64("user_id", user.ID).Msg("image generation failed")
		}
		http.Error(w, err.Error(), statusForError(err))
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"image_url": imageURL})
}

// ListEntriesHandler returns the user's history. Query parameters: order
// (asc|desc, default desc), mood (label filter), q (search term).
func (h *APIHandler) ListEntriesHandler(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	filter := store.ListFilter{
		Order:  store.OrderNewestFirst,
		Mood:   r.URL.Query().Get("mood"),
		Search: r.URL.Query().Get("q"),
	}
	if r.URL.Query().Get("order") == string(store.OrderOldestFirst) {
		filter.Order = store.OrderOldestFirst
	}
	if filter.Mood != "" {
		if _, ok := journal.ParseMood(filter.Mood); !ok {
			http.Error(w, "Unknown mood filter", http.StatusBadRequest)
			return
		}
	}

	entries, err := h.journal.ListEntries(user.ID, filter)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", user.ID).Msg("failed to list entries")
		http.Error(w, "Failed to list entries", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	json.NewEncoder(w).Encode(entries)
}

func (h *APIHandler) GetEntryHandler(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)
	entryID := chi.URLParam(r, "entryID")

	entry, err := h.journal.GetEntry(user.ID, entryID)
	if err != nil {
		if errors.Is(err, core.ErrEntryNotFound) {
			http.Error(w, "Entry not found", http.StatusNotFound)
			return
		}
		h.log.Error().Err(err).Int64("user_id", user.ID).Str("entry_id", entryID).Msg("failed to get entry")
		http.Error(w, "Failed to get entry", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(entry)
}

// ExportEntryHandler produces a downloadable PDF of one entry.
func (h *APIHandler) ExportEntryHandler(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)
	entryID := chi.URLParam(r, "entryID")

	entry, err := h.journal.GetEntry(user.ID, entryID)
	if err != nil {
		if errors.Is(err, core.ErrEntryNotFound) {
			http.Error(w, "Entry not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to get entry", http.StatusInternalServerError)
		return
	}

	pdfBytes, err := core.ExportEntryPDF(entry)
	if err != nil {
		h.log.Error().Err(err).Str("entry_id", entryID).Msg("failed to export entry")
		http.Error(w, "Failed to export entry", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "journal-entry.pdf"))
	w.Write(pdfBytes)
}

func (h *APIHandler) InsightsHandler(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	insights, err := h.insights.Overview(user.ID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", user.ID).Msg("failed to compute insights")
		http.Error(w, "Failed to compute insights", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(insights)
}
