package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/quietdesk/guidechat/internal/config"
	"github.com/quietdesk/guidechat/internal/convo"
	"github.com/quietdesk/guidechat/internal/form"
	"github.com/quietdesk/guidechat/internal/logger"
	"github.com/quietdesk/guidechat/internal/model"
	"github.com/quietdesk/guidechat/internal/prompt"
	"github.com/quietdesk/guidechat/internal/session"
	"github.com/quietdesk/guidechat/internal/store"
)

const sessionCookie = "guidechat_session"

type Handler struct {
	sessions     *session.Manager
	machine      *convo.Machine
	deck         config.Copy
	archive      store.Store
	log          *logger.Logger
	systemPrompt string
}

func NewHandler(sessions *session.Manager, machine *convo.Machine, deck config.Copy, archive store.Store, log *logger.Logger) *Handler {
	return &Handler{
		sessions:     sessions,
		machine:      machine,
		deck:         deck,
		archive:      archive,
		log:          log.With("component", "server"),
		systemPrompt: prompt.Build(deck.Description, deck.Language),
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Route("/api/session", func(r chi.Router) {
		r.Get("/", h.handleGet)
		r.Post("/terms", h.handleTerms)
		r.Post("/choice", h.handleChoice)
		r.Post("/form", h.handleForm)
		r.Post("/reset", h.handleReset)
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := h.ensureSession(w, r)
	h.respondView(w, id, http.StatusOK, "")
}

func (h *Handler) handleTerms(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Accepted bool `json:"accepted"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	id := h.ensureSession(w, r)
	_ = h.sessions.WithSession(id, func(st *convo.State) error {
		st.TermsAccepted = req.Accepted
		return nil
	})
	h.respondView(w, id, http.StatusOK, "")
}

func (h *Handler) handleChoice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label string `json:"label"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	req.Label = strings.TrimSpace(req.Label)
	if req.Label == "" {
		http.Error(w, "label is required", http.StatusBadRequest)
		return
	}

	id := h.ensureSession(w, r)
	h.act(w, r, id, func(st *convo.State) error {
		if !st.ChoiceAllowed(h.deck.Starters, req.Label) {
			return convo.ErrChoiceNotOffered
		}
		return h.machine.Choose(r.Context(), st, h.systemPrompt, req.Label)
	})
}

func (h *Handler) handleForm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Values map[string]any `json:"values"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	id := h.ensureSession(w, r)
	h.act(w, r, id, func(st *convo.State) error {
		if st.Active(h.deck.Starters) != convo.AffordanceForm {
			return convo.ErrNoPendingForm
		}
		return h.machine.SubmitForm(r.Context(), st, h.systemPrompt, req.Values)
	})
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	id := h.ensureSession(w, r)
	_ = h.sessions.WithSession(id, func(st *convo.State) error {
		h.archiveTranscript(id, st)
		st.Reset(h.deck.Greeting)
		return nil
	})
	h.respondView(w, id, http.StatusOK, "")
}

// act runs one user action under the session lock, maps the error taxonomy
// onto status codes, and replies with the resulting view. Every error path
// leaves the conversation continuable.
func (h *Handler) act(w http.ResponseWriter, r *http.Request, id string, fn func(st *convo.State) error) {
	status := http.StatusOK
	errMsg := ""

	err := h.sessions.WithSession(id, func(st *convo.State) error {
		if h.deck.TermsText != "" && !st.TermsAccepted {
			status = http.StatusForbidden
			errMsg = "Please accept the terms to continue."
			return nil
		}
		if err := fn(st); err != nil {
			return err
		}
		if st.Done {
			h.archiveTranscript(id, st)
		}
		return nil
	})

	if err != nil {
		status, errMsg = classify(err)
	}
	h.respondView(w, id, status, errMsg)
}

// classify maps machine errors onto a status plus the user-facing message.
// Validation and affordance errors are client-side; model failures are
// retryable upstream failures.
func classify(err error) (int, string) {
	var verr *form.ValidationError
	var httpErr *model.HTTPError
	var transportErr *model.TransportError
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, "Session expired. Reload to start over."
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, "Please fill in: " + strings.Join(verr.MissingLabels, ", ")
	case errors.Is(err, convo.ErrConversationDone), errors.Is(err, convo.ErrNoPendingForm),
		errors.Is(err, convo.ErrChoiceNotOffered):
		return http.StatusConflict, "That action is not available right now."
	case errors.As(err, &httpErr), errors.As(err, &transportErr):
		return http.StatusBadGateway, "The assistant is unreachable right now. Your last action was not lost — try it again. (" + err.Error() + ")"
	default:
		return http.StatusInternalServerError, "Something went wrong. Try again."
	}
}

func (h *Handler) archiveTranscript(id string, st *convo.State) {
	if h.archive == nil || len(st.History) <= 1 {
		return
	}
	err := h.archive.Archive(store.Transcript{
		SessionID: id,
		Messages:  st.History,
		Completed: st.Done,
	})
	if err != nil {
		h.log.Error("transcript archive failed", "session", id, "err", err)
	}
}

func (h *Handler) ensureSession(w http.ResponseWriter, r *http.Request) string {
	var current string
	if c, err := r.Cookie(sessionCookie); err == nil {
		current = c.Value
	}
	id := h.sessions.GetOrCreate(current, h.deck.Greeting)
	if id != current {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return id
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) respondView(w http.ResponseWriter, id string, status int, errMsg string) {
	var view sessionView
	err := h.sessions.WithSession(id, func(st *convo.State) error {
		view = buildView(st, h.deck, errMsg)
		return nil
	})
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(view); err != nil {
		h.log.Error("encoding view failed", "err", err)
	}
}
