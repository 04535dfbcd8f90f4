package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"grimpo/internal/garden"
	"grimpo/internal/storage"
)

func newTestServer(t *testing.T, seed storage.GardenState) (*httptest.Server, *garden.Garden) {
	t.Helper()
	repo := storage.NewMemoryRepo()
	seed.Key = "api"
	repo.Seed(seed)
	g := garden.New(nil, repo, "api")
	require.NoError(t, g.Load(context.Background()))
	t.Cleanup(func() { _ = g.Close(context.Background()) })

	srv := httptest.NewServer(NewRouter(g, nil))
	t.Cleanup(srv.Close)
	return srv, g
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf strings.Builder
	_, err = io.Copy(&buf, resp.Body)
	require.NoError(t, err)
	return resp, []byte(buf.String())
}

func decodeError(t *testing.T, data []byte) errorResponse {
	t.Helper()
	var e errorResponse
	require.NoError(t, json.Unmarshal(data, &e))
	return e
}

func TestCompletionsAwardAndDeduplicate(t *testing.T) {
	srv, g := newTestServer(t, storage.GardenState{})

	resp, body := do(t, srv, http.MethodPost, "/api/completions", `{"taskId":"t1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res garden.AwardResult
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, 1, res.LifetimeCompletions)
	assert.Equal(t, 1, res.Currency)
	assert.Contains(t, res.NewlyUnlocked, garden.ItemID("kelp"))

	resp, body = do(t, srv, http.MethodPost, "/api/completions", `{"taskId":"t1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &res))
	assert.True(t, res.Duplicate)
	assert.Equal(t, 1, g.LifetimeCompletions())

	resp, _ = do(t, srv, http.MethodPost, "/api/completions", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, g.LifetimeCompletions())
}

func TestPurchaseErrorsMapToStatus(t *testing.T) {
	srv, _ := newTestServer(t, storage.GardenState{LifetimeCompletions: 1})

	cases := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"locked", `{"itemId":"abyssal_temple"}`, http.StatusConflict, "item_locked"},
		{"funds", `{"itemId":"kelp"}`, http.StatusConflict, "insufficient_funds"},
		{"unknown", `{"itemId":"nope"}`, http.StatusNotFound, "unknown_item"},
		{"missing", `{}`, http.StatusBadRequest, "bad_request"},
		{"bad json", `{"itemId":`, http.StatusBadRequest, "bad_request"},
		{"unknown field", `{"item":"kelp"}`, http.StatusBadRequest, "bad_request"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := do(t, srv, http.MethodPost, "/api/purchases", tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.code, decodeError(t, body).Code)
		})
	}
}

func TestPlacementLifecycle(t *testing.T) {
	srv, g := newTestServer(t, storage.GardenState{LifetimeCompletions: 1, Currency: 1})

	resp, _ := do(t, srv, http.MethodPost, "/api/purchases", `{"itemId":"kelp"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := do(t, srv, http.MethodPost, "/api/placements", `{"itemId":"kelp","x":3,"y":4}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var p garden.PlacedItem
	require.NoError(t, json.Unmarshal(body, &p))
	assert.Equal(t, garden.ItemID("kelp"), p.ItemID)
	assert.Equal(t, garden.DefaultScale, p.Scale)
	assert.Equal(t, 0, g.Quantity("kelp"))

	resp, _ = do(t, srv, http.MethodPost, "/api/placements", `{"itemId":"kelp","x":0,"y":0}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = do(t, srv, http.MethodPatch, "/api/placements/"+p.ID, `{"x":10,"scale":9,"color":"teal"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &p))
	assert.Equal(t, 10.0, p.X)
	assert.Equal(t, 4.0, p.Y)
	assert.Equal(t, garden.MaxScale, p.Scale)
	assert.Equal(t, "teal", p.Color.String())

	resp, body = do(t, srv, http.MethodPatch, "/api/placements/"+p.ID, `{"color":"not-a-color"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &p))
	assert.True(t, p.Color.IsDefault())

	resp, _ = do(t, srv, http.MethodDelete, "/api/placements/"+p.ID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 1, g.Quantity("kelp"))

	resp, body = do(t, srv, http.MethodDelete, "/api/placements/"+p.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", decodeError(t, body).Code)

	resp, _ = do(t, srv, http.MethodPatch, "/api/placements/missing", `{"x":1}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStateAndCatalog(t *testing.T) {
	srv, _ := newTestServer(t, storage.GardenState{
		LifetimeCompletions: 5,
		Currency:            2,
		Inventory:           map[string]int{"starfish": 1},
	})

	resp, body := do(t, srv, http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var st stateResponse
	require.NoError(t, json.Unmarshal(body, &st))
	assert.Equal(t, 5, st.LifetimeCompletions)
	assert.Equal(t, 2, st.Currency)
	assert.Equal(t, 1, st.Inventory["starfish"])
	assert.Contains(t, st.UnlockedIDs, garden.ItemID("coral_branch"))
	assert.NotContains(t, st.UnlockedIDs, garden.ItemID("brain_coral"))

	resp, body = do(t, srv, http.MethodGet, "/api/catalog", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var entries []catalogEntry
	require.NoError(t, json.Unmarshal(body, &entries))
	require.Len(t, entries, garden.DefaultCatalog().Len())
	for _, e := range entries {
		assert.Equal(t, e.UnlockThreshold <= 5, e.Unlocked, "item %s", e.ID)
	}
}

func TestEventsSocketDeliversPurchase(t *testing.T) {
	srv, _ := newTestServer(t, storage.GardenState{LifetimeCompletions: 1, Currency: 1})

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/events"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if resp != nil {
		defer resp.Body.Close()
	}
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	})

	r, _ := do(t, srv, http.MethodPost, "/api/purchases", `{"itemId":"kelp"}`)
	require.Equal(t, http.StatusOK, r.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev garden.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, garden.EventPurchased, ev.Kind)
	assert.Equal(t, garden.ItemID("kelp"), ev.ItemID)
	assert.Equal(t, 0, ev.Currency)
}

func TestWriteJSONReportsEncodeFailure(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	h := NewHandler(nil, zap.New(core))

	rec := httptest.NewRecorder()
	h.writeJSON(rec, http.StatusOK, map[string]float64{"x": math.Inf(1)})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal", decodeError(t, rec.Body.Bytes()).Code)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "encode response", logs.All()[0].Message)
}

func TestPlacementRejectsNonFinitePosition(t *testing.T) {
	srv, g := newTestServer(t, storage.GardenState{LifetimeCompletions: 1, Inventory: map[string]int{"kelp": 1}})

	// Out-of-range numbers fail decoding before they reach the garden.
	resp, body := do(t, srv, http.MethodPost, "/api/placements", `{"itemId":"kelp","x":1e400,"y":0}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "bad_request", decodeError(t, body).Code)
	assert.Equal(t, 1, g.Quantity("kelp"))

	status, code := statusFor(fmt.Errorf("wrapped: %w", garden.ErrInvalidPosition))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_position", code)
}
