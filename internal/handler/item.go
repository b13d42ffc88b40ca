package handler

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dukerupert/menuboard/internal/auth"
	"github.com/dukerupert/menuboard/internal/media"
	"github.com/dukerupert/menuboard/internal/model"
	"github.com/dukerupert/menuboard/internal/schedule"
	"github.com/dukerupert/menuboard/internal/store"
	"github.com/dukerupert/menuboard/internal/websocket"
)

// maxImageBytes caps item photo uploads.
const maxImageBytes = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type ItemHandler struct {
	itemStore     *store.ItemStore
	categoryStore *store.CategoryStore
	media         *media.Store
	hub           *websocket.Hub
	logger        *slog.Logger
}

func NewItemHandler(is *store.ItemStore, cs *store.CategoryStore, ms *media.Store, hub *websocket.Hub, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{
		itemStore:     is,
		categoryStore: cs,
		media:         ms,
		hub:           hub,
		logger:        logger,
	}
}

type itemRequest struct {
	CategoryID      int64           `json:"category_id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           int             `json:"price"`
	DiscountPercent *int            `json:"discount_percent"`
	SpecialPrice    *int            `json:"special_price"`
	Badge           string          `json:"badge"`
	Tags            string          `json:"tags"`
	Ingredients     string          `json:"ingredients"`
	Calories        *int            `json:"calories"`
	IsActive        *bool           `json:"is_active"`
	IsFeatured      bool            `json:"is_featured"`
	IsFullTime      *bool           `json:"is_full_time"`
	AvailableDays   []string        `json:"available_days"`
	AvailableFrom   *schedule.Clock `json:"available_from"`
	AvailableTo     *schedule.Clock `json:"available_to"`
	DisplayStart    *schedule.Date  `json:"display_start"`
	DisplayEnd      *schedule.Date  `json:"display_end"`
	SortOrder       *int            `json:"sort_order"`
}

// toItem validates req and builds the item it describes. The returned map
// holds one message per invalid field.
func (req itemRequest) toItem() (model.Item, map[string]string) {
	errs := make(map[string]string)

	item := model.Item{
		CategoryID:      req.CategoryID,
		Name:            strings.TrimSpace(req.Name),
		Description:     strings.TrimSpace(req.Description),
		Price:           req.Price,
		DiscountPercent: req.DiscountPercent,
		SpecialPrice:    req.SpecialPrice,
		Badge:           strings.TrimSpace(req.Badge),
		Tags:            strings.TrimSpace(req.Tags),
		Ingredients:     strings.TrimSpace(req.Ingredients),
		Calories:        req.Calories,
		IsActive:        req.IsActive == nil || *req.IsActive,
		IsFeatured:      req.IsFeatured,
		IsFullTime:      req.IsFullTime == nil || *req.IsFullTime,
		AvailableDays:   schedule.ParseDaySet(strings.Join(req.AvailableDays, ",")),
		AvailableFrom:   req.AvailableFrom,
		AvailableTo:     req.AvailableTo,
		DisplayStart:    req.DisplayStart,
		DisplayEnd:      req.DisplayEnd,
	}
	item.SortOrder = model.DefaultItemSortOrder
	if req.SortOrder != nil {
		item.SortOrder = *req.SortOrder
	}

	if item.CategoryID == 0 {
		errs["category_id"] = "category is required"
	}
	if item.Name == "" {
		errs["name"] = "name is required"
	}
	if item.Price < 0 {
		errs["price"] = "price must not be negative"
	}
	if p := item.DiscountPercent; p != nil && (*p < 0 || *p > 100) {
		errs["discount_percent"] = "discount must be between 0 and 100"
	}
	if p := item.SpecialPrice; p != nil && *p < 0 {
		errs["special_price"] = "special price must not be negative"
	}
	if c := item.Calories; c != nil && *c < 0 {
		errs["calories"] = "calories must not be negative"
	}
	if item.SortOrder < 0 {
		errs["sort_order"] = "sort order must not be negative"
	}

	if !item.IsFullTime {
		switch {
		case item.AvailableDays.IsEmpty():
			errs["available_days"] = "choose at least one day"
		case len(item.AvailableDays.Invalid()) > 0:
			errs["available_days"] = "unknown day " + string(item.AvailableDays.Invalid()[0])
		}
		if item.AvailableFrom == nil || item.AvailableTo == nil {
			errs["available_from"] = "set both start and end times"
		} else if *item.AvailableFrom >= *item.AvailableTo {
			errs["available_to"] = "end time must be after start time"
		}
	}
	if item.DisplayStart != nil && item.DisplayEnd != nil && item.DisplayEnd.Before(*item.DisplayStart) {
		errs["display_end"] = "display end must not be before display start"
	}

	item.Normalize()
	return item, errs
}

func writeValidation(w http.ResponseWriter, errs map[string]string) {
	writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid item", "fields": errs})
}

// List returns the business's items, optionally limited to ?category=.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	businessID := auth.BusinessID(r.Context())

	var items []model.Item
	var err error
	if c := r.URL.Query().Get("category"); c != "" {
		cat, ok := h.categoryParam(w, businessID, c)
		if !ok {
			return
		}
		items, err = h.itemStore.ListByCategory(cat.ID)
	} else {
		items, err = h.itemStore.ListByBusiness(businessID)
	}
	if err != nil {
		h.logger.Error("list items", "business_id", businessID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	writeJSON(w, http.StatusOK, viewItems(items, h.media))
}

func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, ok := h.owned(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, viewItem(*item, h.media))
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	item, errs := req.toItem()
	if len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	businessID := auth.BusinessID(r.Context())
	if !h.categoryOwned(w, businessID, item.CategoryID) {
		return
	}

	created, err := h.itemStore.Create(item)
	if err != nil {
		h.logger.Error("create item", "business_id", businessID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	broadcast(h.hub, businessID, "item", "created", created.ID, nil)
	writeJSON(w, http.StatusCreated, viewItem(*created, h.media))
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.owned(w, r)
	if !ok {
		return
	}
	var req itemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.CategoryID == 0 {
		req.CategoryID = existing.CategoryID
	}
	item, errs := req.toItem()
	if len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	businessID := auth.BusinessID(r.Context())
	if item.CategoryID != existing.CategoryID && !h.categoryOwned(w, businessID, item.CategoryID) {
		return
	}
	item.ID = existing.ID
	if req.SortOrder == nil {
		item.SortOrder = existing.SortOrder
	}

	updated, err := h.itemStore.Update(item)
	if err != nil {
		h.logger.Error("update item", "item_id", item.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	broadcast(h.hub, businessID, "item", "updated", updated.ID, nil)
	writeJSON(w, http.StatusOK, viewItem(*updated, h.media))
}

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	item, ok := h.owned(w, r)
	if !ok {
		return
	}
	if err := h.itemStore.Delete(item.ID); err != nil {
		h.logger.Error("delete item", "item_id", item.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}
	h.removeImage(r, item.ImageKey)

	broadcast(h.hub, auth.BusinessID(r.Context()), "item", "deleted", item.ID, nil)
	w.WriteHeader(http.StatusNoContent)
}

// UploadImage replaces the item's photo with the multipart "image" file.
func (h *ItemHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if !h.media.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "image storage is not configured")
		return
	}
	item, ok := h.owned(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes+1<<20)
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()
	if header.Size > maxImageBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "image must be 5MB or smaller")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read image")
		return
	}
	if len(data) > maxImageBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "image must be 5MB or smaller")
		return
	}
	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		writeError(w, http.StatusUnsupportedMediaType, "image must be JPEG, PNG or WebP")
		return
	}

	businessID := auth.BusinessID(r.Context())
	key := media.ImageKey(businessID, item.ID, ext)
	if err := h.media.Put(r.Context(), key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		h.logger.Error("upload image", "item_id", item.ID, "error", err)
		writeError(w, http.StatusBadGateway, "failed to store image")
		return
	}
	if err := h.itemStore.SetImageKey(item.ID, key); err != nil {
		h.logger.Error("set image key", "item_id", item.ID, "error", err)
		h.removeImage(r, key)
		writeError(w, http.StatusInternalServerError, "failed to save image")
		return
	}
	h.removeImage(r, item.ImageKey)

	item.ImageKey = key
	broadcast(h.hub, businessID, "item", "updated", item.ID, nil)
	writeJSON(w, http.StatusOK, viewItem(*item, h.media))
}

func (h *ItemHandler) removeImage(r *http.Request, key string) {
	if key == "" || !h.media.Enabled() {
		return
	}
	if err := h.media.Delete(r.Context(), key); err != nil && !errors.Is(err, media.ErrDisabled) {
		h.logger.Warn("delete image", "key", key, "error", err)
	}
}

func (h *ItemHandler) owned(w http.ResponseWriter, r *http.Request) (*model.Item, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	item, err := h.itemStore.GetForBusiness(auth.BusinessID(r.Context()), id)
	if err != nil {
		h.logger.Error("get item", "item_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load item")
		return nil, false
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return nil, false
	}
	return item, true
}

// categoryOwned answers 400 unless categoryID belongs to the business.
func (h *ItemHandler) categoryOwned(w http.ResponseWriter, businessID, categoryID int64) bool {
	cat, err := h.categoryStore.GetForBusiness(businessID, categoryID)
	if err != nil {
		h.logger.Error("get category", "category_id", categoryID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load category")
		return false
	}
	if cat == nil {
		writeValidation(w, map[string]string{"category_id": "unknown category"})
		return false
	}
	return true
}

func (h *ItemHandler) categoryParam(w http.ResponseWriter, businessID int64, raw string) (*model.Category, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category")
		return nil, false
	}
	cat, err := h.categoryStore.GetForBusiness(businessID, id)
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
