package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/menuboard/internal/media"
	"github.com/dukerupert/menuboard/internal/menu"
	"github.com/dukerupert/menuboard/internal/model"
	"github.com/dukerupert/menuboard/internal/notes"
	"github.com/dukerupert/menuboard/internal/store"
	"github.com/dukerupert/menuboard/internal/visibility"
)

const (
	featuredLimit = 6
	relatedLimit  = 4
)

// MenuHandler serves the public, read-only menu pages.
type MenuHandler struct {
	businessStore *store.BusinessStore
	categoryStore *store.CategoryStore
	itemStore     *store.ItemStore
	notes         *notes.Service
	media         *media.Store
	clock         visibility.Clock
	logger        *slog.Logger
}

func NewMenuHandler(bs *store.BusinessStore, cs *store.CategoryStore, is *store.ItemStore, ns *notes.Service, ms *media.Store, clock visibility.Clock, logger *slog.Logger) *MenuHandler {
	return &MenuHandler{
		businessStore: bs,
		categoryStore: cs,
		itemStore:     is,
		notes:         ns,
		media:         ms,
		clock:         clock,
		logger:        logger,
	}
}

// ListBusinesses is the home page: businesses matching ?q= plus the most
// recently updated featured items.
func (h *MenuHandler) ListBusinesses(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	businesses, err := h.businessStore.List(query)
	if err != nil {
		h.logger.Error("list businesses", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list businesses")
		return
	}
	if businesses == nil {
		businesses = []model.Business{}
	}

	featured, err := h.itemStore.ListFeatured(featuredLimit)
	if err != nil {
		h.logger.Error("list featured", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list featured items")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"query":      query,
		"businesses": businesses,
		"featured":   viewItems(featured, h.media),
	})
}

type sectionView struct {
	Category  model.Category `json:"category"`
	Items     []itemView     `json:"items"`
	ItemCount int            `json:"item_count"`
}

type menuResponse struct {
	Business   model.Business       `json:"business"`
	Hours      []hourView           `json:"hours"`
	OpenNow    bool                 `json:"open_now"`
	Query      string               `json:"query"`
	Sections   []sectionView        `json:"sections"`
	TotalItems int                  `json:"total_items"`
	AsOf       time.Time            `json:"as_of"`
	Notes      map[int64]notes.Note `json:"notes"`
	NoteCount  int                  `json:"note_count"`
}

// Menu renders a business's public menu as visible right now.
func (h *MenuHandler) Menu(w http.ResponseWriter, r *http.Request) {
	now := h.clock.Now()

	biz, ok := h.businessBySlug(w, r)
	if !ok {
		return
	}

	categories, err := h.categoryStore.ListActiveByBusiness(biz.ID)
	if err != nil {
		h.logger.Error("list categories", "business_id", biz.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load menu")
		return
	}
	items, err := h.itemStore.ListByBusiness(biz.ID)
	if err != nil {
		h.logger.Error("list items", "business_id", biz.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load menu")
		return
	}
	hours, err := h.businessStore.ListHours(biz.ID)
	if err != nil {
		h.logger.Error("list hours", "business_id", biz.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load menu")
		return
	}

	page := menu.BuildPage(*biz, categories, items, hours, r.URL.Query().Get("q"), now)

	noteMap, err := h.notes.Map(r.Context(), visitorID(r))
	if err != nil {
		h.logger.Error("load notes", "error", err)
		noteMap = map[int64]notes.Note{}
	}

	resp := menuResponse{
		Business:   page.Business,
		OpenNow:    page.OpenNow,
		Query:      page.Query,
		Sections:   make([]sectionView, len(page.Sections)),
		TotalItems: page.TotalItems,
		AsOf:       page.AsOf,
		Notes:      noteMap,
		NoteCount:  len(noteMap),
	}
	if biz.ShowHours {
		resp.Hours = viewHours(page.Hours)
	}
	for i, s := range page.Sections {
		resp.Sections[i] = sectionView{Category: s.Category, Items: viewItems(s.Items, h.media), ItemCount: s.ItemCount}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Item shows one active item of the business with related items from its
// category and the visitor's note on it.
func (h *MenuHandler) Item(w http.ResponseWriter, r *http.Request) {
	biz, ok := h.businessBySlug(w, r)
	if !ok {
		return
	}
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	item, err := h.itemStore.GetForBusiness(biz.ID, id)
	if err != nil {
		h.logger.Error("get item", "item_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load item")
		return
	}
	if item == nil || !item.IsActive {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	siblings, err := h.itemStore.ListByCategory(item.CategoryID)
	if err != nil {
		h.logger.Error("list related", "item_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load item")
		return
	}

	note, err := h.notes.Get(r.Context(), visitorID(r), item.ID)
	if err != nil {
		h.logger.Error("load note", "item_id", id, "error", err)
		note = nil
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"business": biz,
		"item":     viewItem(*item, h.media),
		"visible":  visibility.IsVisible(*item, h.clock.Now()),
		"related":  viewItems(menu.Related(siblings, *item, relatedLimit), h.media),
		"note":     note,
	})
}

type searchGroupView struct {
	Business model.Business `json:"business"`
	Items    []itemView     `json:"items"`
}

// Search finds visible items across businesses, or within ?business=slug.
func (h *MenuHandler) Search(w http.ResponseWriter, r *http.Request) {
	now := h.clock.Now()
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	slug := strings.TrimSpace(r.URL.Query().Get("business"))

	resp := map[string]any{"query": query, "business_filter": slug, "groups": []searchGroupView{}}

	var businessID int64
	if slug != "" {
		biz, err := h.businessStore.GetBySlug(slug)
		if err != nil {
			h.logger.Error("search business lookup", "slug", slug, "error", err)
			writeError(w, http.StatusInternalServerError, "search failed")
			return
		}
		if biz == nil {
			writeJSON(w, http.StatusOK, resp)
			return
		}
		businessID = biz.ID
	}

	items, err := h.itemStore.Search(query, businessID)
	if err != nil {
		h.logger.Error("search items", "error", err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	var lookupErr error
	categories := make(map[int64]*model.Category)
	businesses := make(map[int64]*model.Business)
	businessOf := func(categoryID int64) (model.Business, bool) {
		cat, seen := categories[categoryID]
		if !seen {
			c, err := h.categoryStore.GetByID(categoryID)
			if err != nil {
				lookupErr = err
			}
			categories[categoryID], cat = c, c
		}
		if cat == nil {
			return model.Business{}, false
		}
		biz, seen := businesses[cat.BusinessID]
		if !seen {
			b, err := h.businessStore.GetByID(cat.BusinessID)
			if err != nil {
				lookupErr = err
			}
			businesses[cat.BusinessID], biz = b, b
		}
		if biz == nil {
			return model.Business{}, false
		}
		return *biz, true
	}

	groups := menu.GroupSearchResults(items, businessOf, now)
	if lookupErr != nil {
		h.logger.Error("search grouping", "error", lookupErr)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	views := make([]searchGroupView, len(groups))
	for i, g := range groups {
		views[i] = searchGroupView{Business: g.Business, Items: viewItems(g.Items, h.media)}
	}
	resp["groups"] = views
	writeJSON(w, http.StatusOK, resp)
}

// Media proxies item photos when no public bucket URL is configured.
func (h *MenuHandler) Media(w http.ResponseWriter, r *http.Request) {
	if !h.media.Enabled() {
		http.NotFound(w, r)
		return
	}
	key := r.PathValue("key")
	obj, err := h.media.Get(r.Context(), key)
	if err != nil {
		h.logger.Warn("media get", "key", key, "error", err)
		http.NotFound(w, r)
		return
	}
	defer obj.Body.Close()

	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, obj.Body); err != nil {
		h.logger.Warn("media copy", "key", key, "error", err)
	}
}

// ResolveBusiness maps a slug to a business id for the websocket endpoint.
func (h *MenuHandler) ResolveBusiness(slug string) (int64, bool, error) {
	biz, err := h.businessStore.GetBySlug(slug)
	if err != nil || biz == nil {
		return 0, false, err
	}
	return biz.ID, true, nil
}

func (h *MenuHandler) businessBySlug(w http.ResponseWriter, r *http.Request) (*model.Business, bool) {
	return lookupBusinessBySlug(w, r, h.businessStore, h.logger)
}

func lookupBusinessBySlug(w http.ResponseWriter, r *http.Request, bs *store.BusinessStore, logger *slog.Logger) (*model.Business, bool) {
	slug := r.PathValue("slug")
	biz, err := bs.GetBySlug(slug)
	if err != nil {
		logger.Error("get business", "slug", slug, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load business")
		return nil, false
	}
	if biz == nil {
		writeError(w, http.StatusNotFound, "business not found")
		return nil, false
	}
	return biz, true
}
