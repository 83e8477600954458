package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Deejulu/halosaas/internal/menu"
)

type MenuHandler struct {
	repo    menu.Repository
	timeout time.Duration
}

func NewMenuHandler(repo menu.Repository, timeout time.Duration) *MenuHandler {
	return &MenuHandler{repo: repo, timeout: timeout}
}

func (h *MenuHandler) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	restaurantID := chi.URLParam(r, "restaurantID")
	if restaurantID == "" {
		writeError(w, http.StatusBadRequest, "missing restaurant id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	rest, err := h.repo.GetRestaurant(ctx, restaurantID)
	if err != nil {
		if errors.Is(err, menu.ErrNotFound) {
			writeError(w, http.StatusNotFound, "restaurant not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load restaurant")
		return
	}

	writeJSON(w, http.StatusOK, rest)
}

func (h *MenuHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	restaurantID := chi.URLParam(r, "restaurantID")
	if restaurantID == "" {
		writeError(w, http.StatusBadRequest, "missing restaurant id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	items, err := h.repo.ListItems(ctx, restaurantID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list menu items")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}
