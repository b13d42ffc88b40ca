package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/menuboard/internal/auth"
	"github.com/dukerupert/menuboard/internal/model"
	"github.com/dukerupert/menuboard/internal/store"
	"github.com/dukerupert/menuboard/internal/websocket"
)

type CategoryHandler struct {
	categoryStore *store.CategoryStore
	hub           *websocket.Hub
	logger        *slog.Logger
}

func NewCategoryHandler(cs *store.CategoryStore, hub *websocket.Hub, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{categoryStore: cs, hub: hub, logger: logger}
}

type categoryRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

func (req *categoryRequest) normalize() string {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if req.Title == "" {
		return "title is required"
	}
	return ""
}

func (req categoryRequest) active() bool {
	return req.IsActive == nil || *req.IsActive
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryStore.ListByBusiness(auth.BusinessID(r.Context()))
	if err != nil {
		h.logger.Error("list categories", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.normalize(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	businessID := auth.BusinessID(r.Context())
	cat, err := h.categoryStore.Create(businessID, req.Title, req.Description, req.active())
	if err != nil {
		h.logger.Error("create category", "business_id", businessID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create category")
		return
	}

	broadcast(h.hub, businessID, "category", "created", cat.ID, nil)
	writeJSON(w, http.StatusCreated, cat)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	cat, ok := h.owned(w, r)
	if !ok {
		return
	}
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.normalize(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	updated, err := h.categoryStore.Update(cat.ID, req.Title, req.Description, req.active())
	if err != nil {
		h.logger.Error("update category", "category_id", cat.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update category")
		return
	}

	broadcast(h.hub, cat.BusinessID, "category", "updated", cat.ID, nil)
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes a category together with its items.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	cat, ok := h.owned(w, r)
	if !ok {
		return
	}
	if err := h.categoryStore.Delete(cat.ID); err != nil {
		h.logger.Error("delete category", "category_id", cat.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}

	broadcast(h.hub, cat.BusinessID, "category", "deleted", cat.ID, nil)
	w.WriteHeader(http.StatusNoContent)
}

// owned loads the {id} category, answering 404 unless it belongs to the
// caller's business.
func (h *CategoryHandler) owned(w http.ResponseWriter, r *http.Request) (*model.Category, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	cat, err := h.categoryStore.GetForBusiness(auth.BusinessID(r.Context()), id)
	if err != nil {
		h.logger.Error("get category", "category_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load category")
		return nil, false
	}
	if cat == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return nil, false
	}
	return cat, true
}
