package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/menuboard/internal/auth"
	"github.com/dukerupert/menuboard/internal/model"
	"github.com/dukerupert/menuboard/internal/ordering"
	"github.com/dukerupert/menuboard/internal/store"
	"github.com/dukerupert/menuboard/internal/websocket"
)

// ReorderHandler exposes the owner's menu-order screen and its two
// drag-and-drop endpoints.
type ReorderHandler struct {
	coordinator   *ordering.Coordinator
	categoryStore *store.CategoryStore
	itemStore     *store.ItemStore
	hub           *websocket.Hub
	logger        *slog.Logger
}

func NewReorderHandler(c *ordering.Coordinator, cs *store.CategoryStore, is *store.ItemStore, hub *websocket.Hub, logger *slog.Logger) *ReorderHandler {
	return &ReorderHandler{
		coordinator:   c,
		categoryStore: cs,
		itemStore:     is,
		hub:           hub,
		logger:        logger,
	}
}

// entityID accepts an id as a JSON number or a numeric string.
type entityID int64

func (id *entityID) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		var err error
		if s, err = strconv.Unquote(s); err != nil {
			return fmt.Errorf("invalid id %s", b)
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %s", b)
	}
	*id = entityID(n)
	return nil
}

func toIDs(in []entityID) []int64 {
	out := make([]int64, len(in))
	for i, id := range in {
		out[i] = int64(id)
	}
	return out
}

type orderedCategory struct {
	Category model.Category `json:"category"`
	Items    []model.Item   `json:"items"`
}

// Order lists every category of the business with all of its items, in
// their current rank order, regardless of visibility.
func (h *ReorderHandler) Order(w http.ResponseWriter, r *http.Request) {
	businessID := auth.BusinessID(r.Context())
	categories, err := h.categoryStore.ListByBusiness(businessID)
	if err != nil {
		h.logger.Error("list categories", "business_id", businessID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load menu order")
		return
	}

	out := make([]orderedCategory, 0, len(categories))
	for _, cat := range categories {
		items, err := h.itemStore.ListByCategory(cat.ID)
		if err != nil {
			h.logger.Error("list items", "category_id", cat.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to load menu order")
			return
		}
		if items == nil {
			items = []model.Item{}
		}
		out = append(out, orderedCategory{Category: cat, Items: items})
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": out})
}

type categoryOrderRequest struct {
	Categories []entityID `json:"categories"`
}

func (h *ReorderHandler) ReorderCategories(w http.ResponseWriter, r *http.Request) {
	var req categoryOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, ordering.Validation("invalid request body"))
		return
	}

	ac, _ := auth.FromContext(r.Context())
	ids := toIDs(req.Categories)
	if err := h.coordinator.ReorderCategories(ac.Actor(), ac.BusinessID, ids); err != nil {
		h.fail(w, err)
		return
	}

	h.logger.Info("categories reordered", "business_id", ac.BusinessID, "count", len(ids))
	broadcast(h.hub, ac.BusinessID, "menu", "reordered", 0, map[string]any{"scope": "categories"})
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type itemOrderRequest struct {
	CategoryID entityID   `json:"category_id"`
	Items      []entityID `json:"items"`
}

func (h *ReorderHandler) ReorderItems(w http.ResponseWriter, r *http.Request) {
	var req itemOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, ordering.Validation("invalid request body"))
		return
	}
	if req.CategoryID == 0 {
		h.fail(w, ordering.Validation("category_id is required"))
		return
	}

	ac, _ := auth.FromContext(r.Context())
	categoryID := int64(req.CategoryID)
	ids := toIDs(req.Items)
	if err := h.coordinator.ReorderItems(ac.Actor(), ac.BusinessID, categoryID, ids); err != nil {
		h.fail(w, err)
		return
	}

	h.logger.Info("items reordered", "business_id", ac.BusinessID, "category_id", categoryID, "count", len(ids))
	broadcast(h.hub, ac.BusinessID, "menu", "reordered", categoryID, map[string]any{"scope": "items"})
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// fail reports a reorder failure as {"success":false} with the error kind
// and offending id.
func (h *ReorderHandler) fail(w http.ResponseWriter, err error) {
	var oe *ordering.Error
	if !errors.As(err, &oe) {
		h.logger.Error("reorder", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "failed to save order"})
		return
	}

	status := http.StatusBadRequest
	switch oe.Kind {
	case ordering.KindUnauthorized:
		status = http.StatusForbidden
	case ordering.KindNotFound, ordering.KindOutOfScope:
		status = http.StatusNotFound
	}
	resp := map[string]any{"success": false, "error": oe.Msg, "kind": oe.Kind}
	if oe.ID != 0 {
		resp["id"] = oe.ID
	}
	writeJSON(w, status, resp)
}
