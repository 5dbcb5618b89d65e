package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"voicejournal/internal/core"
	"voicejournal/internal/journal"
	"voicejournal/internal/store"
)

type contextKey string

const userContextKey contextKey = "user"

type APIHandler struct {
	accounts *core.AccountService
	journal  *core.JournalService
	insights *core.InsightsService
	log      zerolog.Logger
}

func NewAPIHandler(accounts *core.AccountService, journal *core.JournalService, insights *core.InsightsService, log zerolog.Logger) *APIHandler {
	return &APIHandler{
		accounts: accounts,
		journal:  journal,
		insights: insights,
		log:      log.With().Str("component", "api").Logger(),
	}
}

func (h *APIHandler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header is required", http.StatusUnauthorized)
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		user, err := h.accounts.Authenticate(token)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestUser(r *http.Request) *store.User {
	user, _ := r.Context().Value(userContextKey).(*store.User)
	return user
}

type SignupRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

func (h *APIHandler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.UserID == "" || req.Password == "" {
		http.Error(w, "User ID and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.accounts.Signup(req.UserID, req.Password)
	if err != nil {
		if errors.Is(err, core.ErrUserExists) {
			http.Error(w, "User already exists", http.StatusConflict)
			return
		}
		h.log.Error().Err(err).Str("user", req.UserID).Msg("signup failed")
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

type LoginRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.UserID == "" || req.Password == "" {
		http.Error(w, "User ID and password are required", http.StatusBadRequest)
		return
	}

	token, err := h.accounts.Login(req.UserID, req.Password)
	if err != nil {
		if errors.Is(err, core.ErrInvalidCredentials) {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		h.log.Error().Err(err).Str("user", req.UserID).Msg("login failed")
		http.Error(w, "Failed to log in", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"token": token})
}

// statusForError maps pipeline failure kinds onto HTTP statuses: state
// conflicts are 409, missing entries 404, upstream provider failures 502.
func statusForError(err error) int {
	switch {
	case errors.Is(err, core.ErrRecordingActive),
		errors.Is(err, core.ErrPipelineBusy),
		errors.Is(err, core.ErrNotRecording),
		errors.Is(err, core.ErrNoImageChoice),
		errors.Is(err, core.ErrImageInFlight):
		return http.StatusConflict
	case errors.Is(err, core.ErrEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, journal.ErrTranscriptionFailed),
		errors.Is(err, journal.ErrClassificationFailed),
		errors.Is(err, journal.ErrGenerationFailed),
		errors.Is(err, journal.ErrImageGenerationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
