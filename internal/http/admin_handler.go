package http

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/Deejulu/halosaas/internal/cart"
)

// AdminHandler serves the mirror's only consumer: the admin dashboard's view
// of in-progress carts.
type AdminHandler struct {
	db      *sql.DB
	timeout time.Duration
}

func NewAdminHandler(db *sql.DB, timeout time.Duration) *AdminHandler {
	return &AdminHandler{db: db, timeout: timeout}
}

func (h *AdminHandler) ListSavedCarts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	carts, err := cart.ListSavedCarts(ctx, h.db)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list saved carts")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"carts": carts})
}
