package server

import "net/http"

// render executes a dashboard template.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("failed to render template", "template", name, "path", r.URL.Path, "error", err)
	}
}

// renderFailure answers a view request whose backing query failed.
func (h *Handler) renderFailure(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("failed to load view data", "path", r.URL.Path, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// renderLogin executes the login template with an optional error line.
func (h *Handler) renderLogin(w http.ResponseWriter, errMsg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "login.html", map[string]any{"Error": errMsg}); err != nil {
		h.logger.Error("failed to render template", "template", "login.html", "error", err)
	}
}
