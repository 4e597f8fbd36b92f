package vouchers

import "github.com/go-chi/chi/v5"

// MountRoutes attaches the posting engine routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.Post)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/reverse", h.Reverse)
}
