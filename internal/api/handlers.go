package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/LeventeLantos/sms-dashboard/internal/repo"
	"github.com/LeventeLantos/sms-dashboard/internal/service"
	"github.com/LeventeLantos/sms-dashboard/internal/session"
)

const (
	msgWrongPassword = "Wrong password"
	msgLogsCleared   = "All logs cleared"
	msgLogLoaded     = "Log file loaded"
	msgInvalidLine   = "Invalid line number"
)

type Handler struct {
	dash     *service.Dashboard
	sessions *session.Manager
}

func NewHandler(d *service.Dashboard, s *session.Manager) *Handler {
	return &Handler{dash: d, sessions: s}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, pageData{})
}

func (h *Handler) SendSMS(w http.ResponseWriter, r *http.Request) {
	to := r.PostFormValue("to")
	message := r.PostFormValue("message")

	if field := missingField("to", to, "message", message); field != "" {
		http.Error(w, "missing required field: "+field, http.StatusBadRequest)
		return
	}

	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	if _, err := h.dash.Send(r.Context(), sid, to, message); err != nil {
		internalError(w, "send sms", err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) ClearLog(w http.ResponseWriter, r *http.Request) {
	err := h.dash.ClearLog(r.Context(), r.PostFormValue("admin_pass"))
	if err != nil {
		h.renderAdminError(w, r, "clear log", err)
		return
	}
	h.render(w, r, pageData{AdminMessage: msgLogsCleared, AdminSuccess: true})
}

func (h *Handler) DeleteLine(w http.ResponseWriter, r *http.Request) {
	n, err := h.dash.DeleteLine(r.Context(), r.PostFormValue("admin_pass"), r.PostFormValue("line_number"))
	if err != nil {
		h.renderAdminError(w, r, "delete line", err)
		return
	}
	h.render(w, r, pageData{AdminMessage: fmt.Sprintf("Line %d deleted", n), AdminSuccess: true})
}

func (h *Handler) ViewLog(w http.ResponseWriter, r *http.Request) {
	content, err := h.dash.ViewLog(r.Context(), r.PostFormValue("admin_pass"))
	if err != nil {
		h.renderAdminError(w, r, "view log", err)
		return
	}
	h.render(w, r, pageData{AdminMessage: msgLogLoaded, AdminSuccess: true, LogContent: content})
}

// renderAdminError shows anticipated admin failures inline; anything else
// is a storage fault and ends the request with a 500.
func (h *Handler) renderAdminError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var lnErr *service.LineNumberError

	var msg string
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		slog.Warn("admin action rejected", "op", op, "remote", r.RemoteAddr)
		msg = msgWrongPassword
	case errors.As(err, &lnErr):
		msg = "Error: " + lnErr.Error()
	case errors.Is(err, repo.ErrInvalidLineNumber):
		msg = msgInvalidLine
	default:
		internalError(w, op, err)
		return
	}

	h.render(w, r, pageData{AdminMessage: msg})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, data pageData) {
	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	data.SessionLog = h.dash.SessionLog(r.Context(), sid)
	renderDashboard(w, data)
}

func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	sid, err := h.sessions.ID(w, r)
	if err != nil {
		internalError(w, "session", err)
		return "", false
	}
	return sid, true
}

func internalError(w http.ResponseWriter, op string, err error) {
	slog.Error("request failed", "op", op, "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// missingField takes name/value pairs and returns the first blank name.
func missingField(pairs ...string) string {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return pairs[i]
		}
	}
	return ""
}
