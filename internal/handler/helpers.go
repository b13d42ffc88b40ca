package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/dukerupert/menuboard/internal/media"
	"github.com/dukerupert/menuboard/internal/model"
	"github.com/dukerupert/menuboard/internal/schedule"
	"github.com/dukerupert/menuboard/internal/websocket"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

func parseIDParam(r *http.Request) (int64, error) {
	return parsePathID(r, "id")
}

func parsePathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads a single JSON value from the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

type broadcaster interface {
	Broadcast(businessID int64, msg websocket.Message)
}

func broadcast(hub broadcaster, businessID int64, entity, action string, id int64, extra map[string]any) {
	if hub != nil {
		hub.Broadcast(businessID, websocket.NewMessage(entity, action, id, extra))
	}
}

// itemView is the public JSON form of a menu item.
type itemView struct {
	model.Item
	FinalPrice int      `json:"final_price"`
	ImageURL   string   `json:"image_url,omitempty"`
	DayLabels  []string `json:"day_labels,omitempty"`
}

func viewItem(item model.Item, store *media.Store) itemView {
	return itemView{
		Item:       item,
		FinalPrice: item.FinalPrice(),
		ImageURL:   store.URL(item.ImageKey),
		DayLabels:  item.AvailableDays.Labels(),
	}
}

func viewItems(items []model.Item, store *media.Store) []itemView {
	out := make([]itemView, len(items))
	for i, item := range items {
		out[i] = viewItem(item, store)
	}
	return out
}

// hourView adds the weekday label to a business hours row.
type hourView struct {
	model.BusinessHour
	Label string `json:"label"`
}

func viewHours(hours []model.BusinessHour) []hourView {
	out := make([]hourView, len(hours))
	for i, h := range hours {
		out[i] = hourView{BusinessHour: h, Label: schedule.Label(h.Day)}
	}
	return out
}
