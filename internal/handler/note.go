package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/menuboard/internal/notes"
	"github.com/dukerupert/menuboard/internal/store"
)

// VisitorCookieName identifies an anonymous visitor across requests.
const VisitorCookieName = "menuboard_visitor"

const visitorCookieMaxAge = 365 * 24 * time.Hour

// visitorID returns the visitor id from the request cookie, or "".
func visitorID(r *http.Request) string {
	c, err := r.Cookie(VisitorCookieName)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return ""
	}
	return c.Value
}

// NoteHandler manages visitors' private notes on menu items.
type NoteHandler struct {
	businessStore *store.BusinessStore
	itemStore     *store.ItemStore
	notes         *notes.Service
	secureCookie  bool
	logger        *slog.Logger
}

func NewNoteHandler(bs *store.BusinessStore, is *store.ItemStore, ns *notes.Service, secureCookie bool, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{
		businessStore: bs,
		itemStore:     is,
		notes:         ns,
		secureCookie:  secureCookie,
		logger:        logger,
	}
}

// ensureVisitor returns the visitor id, issuing a new cookie if needed.
func (h *NoteHandler) ensureVisitor(w http.ResponseWriter, r *http.Request) string {
	if id := visitorID(r); id != "" {
		return id
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     VisitorCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(visitorCookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// List returns the visitor's notes, newest first.
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.notes.List(r.Context(), visitorID(r))
	if err != nil {
		h.logger.Error("list notes", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list notes")
		return
	}
	if list == nil {
		list = []notes.Note{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"notes": list, "note_count": len(list)})
}

type noteRequest struct {
	Note string `json:"note"`
}

// Save stores the visitor's note on an item. Blank text removes it.
func (h *NoteHandler) Save(w http.ResponseWriter, r *http.Request) {
	biz, ok := lookupBusinessBySlug(w, r, h.businessStore, h.logger)
	if !ok {
		return
	}
	itemID, err := parsePathID(r, "item_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	var req noteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	item, err := h.itemStore.GetForBusiness(biz.ID, itemID)
	if err != nil {
		h.logger.Error("get item", "item_id", itemID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save note")
		return
	}
	if item == nil || !item.IsActive {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	visitor := h.ensureVisitor(w, r)
	saved, err := h.notes.Put(r.Context(), visitor, notes.Note{
		ItemID:       item.ID,
		Text:         req.Note,
		Business:     biz.Name,
		BusinessSlug: biz.Slug,
		ItemName:     item.Name,
	})
	if err != nil {
		h.logger.Error("save note", "item_id", itemID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save note")
		return
	}
	h.respond(w, r, visitor, item.ID, saved)
}

// Delete removes the visitor's note on one item.
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, ok := lookupBusinessBySlug(w, r, h.businessStore, h.logger); !ok {
		return
	}
	itemID, err := parsePathID(r, "item_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	visitor := visitorID(r)
	if visitor != "" {
		if err := h.notes.Remove(r.Context(), visitor, itemID); err != nil {
			h.logger.Error("remove note", "item_id", itemID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to remove note")
			return
		}
	}
	h.respond(w, r, visitor, itemID, false)
}

// Clear removes all of the visitor's notes.
func (h *NoteHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if visitor := visitorID(r); visitor != "" {
		if err := h.notes.Clear(r.Context(), visitor); err != nil {
			h.logger.Error("clear notes", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to clear notes")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "note_count": 0})
}

func (h *NoteHandler) respond(w http.ResponseWriter, r *http.Request, visitor string, itemID int64, hasNote bool) {
	var note *notes.Note
	if hasNote {
		n, err := h.notes.Get(r.Context(), visitor, itemID)
		if err != nil {
			h.logger.Error("reload note", "item_id", itemID, "error", err)
		}
		note = n
	}
	count, err := h.notes.Count(r.Context(), visitor)
	if err != nil {
		h.logger.Error("count notes", "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"has_note":   note != nil,
		"note":       note,
		"note_count": count,
	})
}
