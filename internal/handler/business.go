package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/menuboard/internal/auth"
	"github.com/dukerupert/menuboard/internal/model"
	"github.com/dukerupert/menuboard/internal/schedule"
	"github.com/dukerupert/menuboard/internal/store"
	"github.com/dukerupert/menuboard/internal/websocket"
)

// BusinessHandler serves the owner's profile, hours and dashboard.
type BusinessHandler struct {
	businessStore *store.BusinessStore
	hub           *websocket.Hub
	logger        *slog.Logger
}

func NewBusinessHandler(bs *store.BusinessStore, hub *websocket.Hub, logger *slog.Logger) *BusinessHandler {
	return &BusinessHandler{businessStore: bs, hub: hub, logger: logger}
}

func (h *BusinessHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	businessID := auth.BusinessID(r.Context())
	biz, err := h.businessStore.GetByID(businessID)
	if err != nil || biz == nil {
		h.logger.Error("dashboard business", "business_id", businessID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}
	counts, err := h.businessStore.Counts(businessID)
	if err != nil {
		h.logger.Error("dashboard counts", "business_id", businessID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"business": biz, "counts": counts})
}

func (h *BusinessHandler) Get(w http.ResponseWriter, r *http.Request) {
	biz, err := h.businessStore.GetByID(auth.BusinessID(r.Context()))
	if err != nil {
		h.logger.Error("get business", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load business")
		return
	}
	if biz == nil {
		writeError(w, http.StatusNotFound, "business not found")
		return
	}
	writeJSON(w, http.StatusOK, biz)
}

type businessRequest struct {
	Name           string `json:"name"`
	Tagline        string `json:"tagline"`
	Description    string `json:"description"`
	Address        string `json:"address"`
	City           string `json:"city"`
	Phone          string `json:"phone"`
	Website        string `json:"website"`
	ThemePrimary   string `json:"theme_primary"`
	ThemeSecondary string `json:"theme_secondary"`
	ShowHours      bool   `json:"show_hours"`
}

func (h *BusinessHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req businessRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	businessID := auth.BusinessID(r.Context())
	biz, err := h.businessStore.Update(businessID, store.BusinessProfile{
		Name:           req.Name,
		Tagline:        strings.TrimSpace(req.Tagline),
		Description:    strings.TrimSpace(req.Description),
		Address:        strings.TrimSpace(req.Address),
		City:           strings.TrimSpace(req.City),
		Phone:          strings.TrimSpace(req.Phone),
		Website:        strings.TrimSpace(req.Website),
		ThemePrimary:   strings.TrimSpace(req.ThemePrimary),
		ThemeSecondary: strings.TrimSpace(req.ThemeSecondary),
		ShowHours:      req.ShowHours,
	})
	if err != nil {
		h.logger.Error("update business", "business_id", businessID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update business")
		return
	}

	broadcast(h.hub, businessID, "business", "updated", businessID, nil)
	writeJSON(w, http.StatusOK, biz)
}

func (h *BusinessHandler) GetHours(w http.ResponseWriter, r *http.Request) {
	hours, err := h.businessStore.ListHours(auth.BusinessID(r.Context()))
	if err != nil {
		h.logger.Error("list hours", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load hours")
		return
	}
	writeJSON(w, http.StatusOK, viewHours(hours))
}

type hourRequest struct {
	Day       schedule.DayCode `json:"day"`
	OpensAt   *schedule.Clock  `json:"opens_at"`
	ClosesAt  *schedule.Clock  `json:"closes_at"`
	IsClosed  bool             `json:"is_closed"`
	IsVisible *bool            `json:"is_visible"`
}

func validateHour(req hourRequest) error {
	if !req.Day.Valid() {
		return fmt.Errorf("unknown day %q", req.Day)
	}
	if req.IsClosed {
		return nil
	}
	if (req.OpensAt == nil) != (req.ClosesAt == nil) {
		return fmt.Errorf("%s: set both opening and closing times", schedule.Label(req.Day))
	}
	if req.OpensAt != nil && *req.OpensAt >= *req.ClosesAt {
		return fmt.Errorf("%s: closing time must be after opening time", schedule.Label(req.Day))
	}
	return nil
}

// UpdateHours replaces the hours of the days listed in the request.
func (h *BusinessHandler) UpdateHours(w http.ResponseWriter, r *http.Request) {
	var req []hourRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	seen := make(map[schedule.DayCode]bool, len(req))
	hours := make([]model.BusinessHour, 0, len(req))
	for _, hr := range req {
		hr.Day = schedule.DayCode(strings.ToLower(strings.TrimSpace(string(hr.Day))))
		if err := validateHour(hr); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if seen[hr.Day] {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("%s listed more than once", schedule.Label(hr.Day)))
			return
		}
		seen[hr.Day] = true

		visible := true
		if hr.IsVisible != nil {
			visible = *hr.IsVisible
		}
		hours = append(hours, model.BusinessHour{
			Day:       hr.Day,
			OpensAt:   hr.OpensAt,
			ClosesAt:  hr.ClosesAt,
			IsClosed:  hr.IsClosed,
			IsVisible: visible,
		})
	}

	businessID := auth.BusinessID(r.Context())
	if err := h.businessStore.UpdateHours(businessID, hours); err != nil {
		h.logger.Error("update hours", "business_id", businessID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update hours")
		return
	}
	updated, err := h.businessStore.ListHours(businessID)
	if err != nil {
		h.logger.Error("list hours", "business_id", businessID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load hours")
		return
	}

	broadcast(h.hub, businessID, "hours", "updated", businessID, nil)
	writeJSON(w, http.StatusOK, viewHours(updated))
}
