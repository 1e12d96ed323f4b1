package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wolfman30/equilibra/internal/catalog"
	"github.com/wolfman30/equilibra/internal/dialogue"
	"github.com/wolfman30/equilibra/internal/scheduling"
	"github.com/wolfman30/equilibra/internal/session"
	"github.com/wolfman30/equilibra/pkg/logging"
)

// DefaultCookieName carries the session id between requests.
const DefaultCookieName = "equilibra_session"

const (
	maxBodyBytes = 16 << 10
	// compactHistory is how many history lines survive when a session blob
	// outgrows the store limit.
	compactHistory = 20
)

// Conversation applies one input to a session snapshot.
type Conversation interface {
	Handle(ctx context.Context, s dialogue.Session, in dialogue.Input) (dialogue.Session, dialogue.Turn)
}

// AvailabilityChecker answers the advisory "is this slot free" question.
type AvailabilityChecker interface {
	CheckAvailability(ctx context.Context, date, clock string) (bool, error)
}

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// ChatHandler exposes the dialogue over JSON. Sessions are loaded from the
// store at the start of each request and written back at the end.
type ChatHandler struct {
	conversation Conversation
	sessions     session.Store
	availability AvailabilityChecker
	cookie       CookieConfig
	logger       *logging.Logger
}

// NewChatHandler wires the chat endpoints. availability may be nil, in which
// case POST /api/availability answers 503.
func NewChatHandler(conv Conversation, sessions session.Store, availability AvailabilityChecker, cookie CookieConfig, logger *logging.Logger) *ChatHandler {
	if conv == nil {
		panic("handlers: conversation cannot be nil")
	}
	if sessions == nil {
		panic("handlers: session store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cookie.Name == "" {
		cookie.Name = DefaultCookieName
	}
	if cookie.MaxAge <= 0 {
		cookie.MaxAge = 24 * time.Hour
	}
	return &ChatHandler{
		conversation: conv,
		sessions:     sessions,
		availability: availability,
		cookie:       cookie,
		logger:       logger,
	}
}

type turnResponse struct {
	SessionID string             `json:"session_id"`
	Reply     string             `json:"reply"`
	State     dialogue.State     `json:"state"`
	Crisis    bool               `json:"crisis"`
	Booking   *scheduling.Result `json:"booking,omitempty"`
}

type sessionResponse struct {
	SessionID      string                 `json:"session_id"`
	State          dialogue.State         `json:"state"`
	CurrentSymptom string                 `json:"current_symptom,omitempty"`
	History        []dialogue.Interaction `json:"history"`
}

type availabilityRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// Symptoms lists the selectable symptoms.
// GET /api/symptoms
func (h *ChatHandler) Symptoms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"symptoms": catalog.Symptoms()})
}

// Session returns the current conversation, starting one if needed.
// GET /api/session
func (h *ChatHandler) Session(w http.ResponseWriter, r *http.Request) {
	s, found := h.load(r)
	if !found {
		s, _ = h.conversation.Handle(r.Context(), dialogue.Session{}, dialogue.Input{Action: dialogue.ActionReset})
		if !h.save(w, r, &s) {
			return
		}
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		SessionID:      s.ID,
		State:          s.State,
		CurrentSymptom: s.CurrentSymptom,
		History:        s.History,
	})
}

// Chat applies one dialogue input.
// POST /api/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var in dialogue.Input
	if err := decodeBody(w, r, &in); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	in.Action = dialogue.Action(strings.TrimSpace(string(in.Action)))
	if !knownAction(in.Action) {
		jsonError(w, "unknown action", http.StatusBadRequest)
		return
	}
	h.apply(w, r, in)
}

// Reset destroys the stored conversation and starts over.
// POST /api/reset
func (h *ChatHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, dialogue.Input{Action: dialogue.ActionReset})
}

// Cancel backs out of the booking form.
// POST /api/cancel
func (h *ChatHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, dialogue.Input{Action: dialogue.ActionCancel})
}

// Availability reports whether a slot looks free. The answer is advisory; the
// booking itself re-checks the calendar.
// POST /api/availability
func (h *ChatHandler) Availability(w http.ResponseWriter, r *http.Request) {
	if h.availability == nil {
		jsonError(w, "availability disabled", http.StatusServiceUnavailable)
		return
	}
	var req availabilityRequest
	if err := decodeBody(w, r, &req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	available, err := h.availability.CheckAvailability(r.Context(), strings.TrimSpace(req.Date), strings.TrimSpace(req.Time))
	var verr *scheduling.ValidationError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{"available": available})
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"available": false,
			"rule":      verr.Rule,
			"error":     verr.Reason,
		})
	default:
		h.logger.Warn("availability check failed", "date", req.Date, "time", req.Time, "error", err)
		jsonError(w, "calendar unavailable", http.StatusServiceUnavailable)
	}
}

func (h *ChatHandler) apply(w http.ResponseWriter, r *http.Request, in dialogue.Input) {
	s, found := h.load(r)
	next, turn := h.conversation.Handle(r.Context(), s, in)
	if found && next.ID != s.ID {
		if err := h.sessions.Delete(r.Context(), s.ID); err != nil {
			h.logger.Warn("session delete failed", "session_id", s.ID, "error", err)
		}
	}
	if !h.save(w, r, &next) {
		return
	}
	writeJSON(w, http.StatusOK, turnResponse{
		SessionID: next.ID,
		Reply:     turn.Reply,
		State:     turn.State,
		Crisis:    turn.Crisis,
		Booking:   turn.Booking,
	})
}

// load returns the stored session for the request cookie. A missing, expired
// or unreadable session yields a zero Session and false.
func (h *ChatHandler) load(r *http.Request) (dialogue.Session, bool) {
	c, err := r.Cookie(h.cookie.Name)
	if err != nil || strings.TrimSpace(c.Value) == "" {
		return dialogue.Session{}, false
	}
	blob, err := h.sessions.Load(r.Context(), c.Value)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			h.logger.Warn("session load failed", "error", err)
		}
		return dialogue.Session{}, false
	}
	s, err := dialogue.DecodeSession(blob)
	if err != nil {
		h.logger.Warn("discarding unreadable session", "error", err)
		return dialogue.Session{}, false
	}
	return s, true
}

// save persists s and refreshes the cookie. Oversized sessions are compacted
// to their most recent history once before giving up.
func (h *ChatHandler) save(w http.ResponseWriter, r *http.Request, s *dialogue.Session) bool {
	err := h.store(r.Context(), *s)
	if errors.Is(err, session.ErrTooLarge) && len(s.History) > compactHistory {
		s.History = append([]dialogue.Interaction(nil), s.History[len(s.History)-compactHistory:]...)
		err = h.store(r.Context(), *s)
	}
	if err != nil {
		h.logger.Error("session save failed", "session_id", s.ID, "error", err)
		jsonError(w, "session unavailable", http.StatusInternalServerError)
		return false
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    s.ID,
		Path:     "/",
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return true
}

func (h *ChatHandler) store(ctx context.Context, s dialogue.Session) error {
	blob, err := s.Encode()
	if err != nil {
		return err
	}
	return h.sessions.Save(ctx, s.ID, blob)
}

func knownAction(a dialogue.Action) bool {
	switch a {
	case dialogue.ActionSelectSymptom, dialogue.ActionSubmitOnset, dialogue.ActionMessage,
		dialogue.ActionRequestAppointment, dialogue.ActionCancel, dialogue.ActionSubmitAppointment,
		dialogue.ActionReset:
		return true
	}
	return false
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("handlers: trailing data after json body")
	}
	return nil
}
