package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"grimpo/internal/garden"
)

const writeWait = 10 * time.Second

type Handler struct {
	g        *garden.Garden
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewHandler(g *garden.Garden, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		g:   g,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// RegisterRoutes mounts the JSON API under /api. The events socket sits outside
// the timeout group since it stays open.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/events", h.events)
		r.Group(func(r chi.Router) {
			r.Use(requestTimeout)
			r.Get("/state", h.state)
			r.Get("/catalog", h.catalog)
			r.Post("/completions", h.complete)
			r.Post("/purchases", h.purchase)
			r.Post("/placements", h.place)
			r.Patch("/placements/{id}", h.updatePlacement)
			r.Delete("/placements/{id}", h.removePlacement)
		})
	})
}

type stateResponse struct {
	garden.State
	UnlockedIDs []garden.ItemID `json:"unlockedIds"`
}

type catalogEntry struct {
	garden.CatalogItem
	Unlocked bool `json:"unlocked"`
}

type completionRequest struct {
	TaskID string `json:"taskId"`
}

type purchaseRequest struct {
	ItemID garden.ItemID `json:"itemId"`
}

type placeRequest struct {
	ItemID garden.ItemID `json:"itemId"`
	X      float64       `json:"x"`
	Y      float64       `json:"y"`
}

type updateRequest struct {
	X     *float64 `json:"x"`
	Y     *float64 `json:"y"`
	Scale *float64 `json:"scale"`
	Color *string  `json:"color"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (h *Handler) state(w http.ResponseWriter, r *http.Request) {
	ids := []garden.ItemID{}
	for _, it := range h.g.Unlocked() {
		ids = append(ids, it.ID)
	}
	h.writeJSON(w, http.StatusOK, stateResponse{State: h.g.Snapshot(), UnlockedIDs: ids})
}

func (h *Handler) catalog(w http.ResponseWriter, r *http.Request) {
	unlocked := h.g.Catalog().ListUnlocked(h.g.LifetimeCompletions())
	items := h.g.Catalog().Items()
	out := make([]catalogEntry, 0, len(items))
	for _, it := range items {
		_, ok := unlocked[it.ID]
		out = append(out, catalogEntry{CatalogItem: it, Unlocked: ok})
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) complete(w http.ResponseWriter, r *http.Request) {
	var req completionRequest
	if !h.decode(w, r, &req, true) {
		return
	}
	h.writeJSON(w, http.StatusOK, h.g.AwardCompletion(req.TaskID))
}

func (h *Handler) purchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if !h.decode(w, r, &req, false) {
		return
	}
	if req.ItemID == "" {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "itemId is required", Code: "bad_request"})
		return
	}
	if err := h.g.Purchase(req.ItemID); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"itemId":   req.ItemID,
		"quantity": h.g.Quantity(req.ItemID),
		"currency": h.g.Currency(),
	})
}

func (h *Handler) place(w http.ResponseWriter, r *http.Request) {
	var req placeRequest
	if !h.decode(w, r, &req, false) {
		return
	}
	p, err := h.g.Place(req.ItemID, req.X, req.Y)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) updatePlacement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req updateRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	p, ok := h.g.PlacedItem(id)
	if !ok {
		h.writeError(w, garden.ErrNotFound)
		return
	}

	var err error
	if req.X != nil || req.Y != nil {
		x, y := p.X, p.Y
		if req.X != nil {
			x = *req.X
		}
		if req.Y != nil {
			y = *req.Y
		}
		if p, err = h.g.Move(id, x, y); err != nil {
			h.writeError(w, err)
			return
		}
	}
	if req.Scale != nil {
		if p, err = h.g.Resize(id, *req.Scale); err != nil {
			h.writeError(w, err)
			return
		}
	}
	if req.Color != nil {
		if p, err = h.g.Recolor(id, *req.Color); err != nil {
			h.writeError(w, err)
			return
		}
	}
	h.writeJSON(w, http.StatusOK, p)
}

func (h *Handler) removePlacement(w http.ResponseWriter, r *http.Request) {
	if err := h.g.Remove(chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// events streams garden events as JSON text frames until the client goes away.
func (h *Handler) events(w http.ResponseWriter, r *http.Request) {
	ch := h.g.Notifier().Subscribe()
	defer h.g.Notifier().Unsubscribe(ch)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case <-r.Context().Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				h.log.Debug("event write failed", zap.Error(err))
				return
			}
		}
	}
}

// decode reads a JSON body into dst. Unknown fields are rejected.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return true
		}
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error(), Code: "bad_request"})
		return false
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", zap.Error(err))
	}
	h.writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, garden.ErrItemLocked):
		return http.StatusConflict, "item_locked"
	case errors.Is(err, garden.ErrInsufficientFunds):
		return http.StatusConflict, "insufficient_funds"
	case errors.Is(err, garden.ErrNoneOwned):
		return http.StatusConflict, "none_owned"
	case errors.Is(err, garden.ErrInvalidPosition):
		return http.StatusBadRequest, "invalid_position"
	case errors.Is(err, garden.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, garden.ErrUnknownItem):
		return http.StatusNotFound, "unknown_item"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// writeJSON encodes v before touching the response, so an encoding failure
// still yields a 500 with a JSON error body.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.log.Error("encode response", zap.Int("status", status), zap.Error(err))
		status = http.StatusInternalServerError
		data, _ = json.Marshal(errorResponse{Error: "failed to encode response", Code: "internal"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}
