package api

import "net/http"

func Router(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.Health)

	mux.HandleFunc("GET /{$}", h.Home)
	mux.HandleFunc("POST /send-sms", h.SendSMS)

	mux.HandleFunc("POST /delete-log-file", h.ClearLog)
	mux.HandleFunc("POST /delete-line", h.DeleteLine)
	mux.HandleFunc("POST /view-log", h.ViewLog)

	return mux
}
