package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amonks/kanban/board"
	"github.com/amonks/kanban/internal/ids"
	"github.com/amonks/kanban/internal/kv"
)

func newTestServer(t *testing.T) (*Server, *board.Store) {
	t.Helper()
	store := board.Open(board.NewGateway(kv.NewMemoryStore(), board.GatewayOptions{}), board.Options{})
	srv, err := New(Options{Store: store})
	require.NoError(t, err)
	return srv, store
}

func doRequest(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	response := httptest.NewRecorder()
	handler.ServeHTTP(response, request)
	return response
}

func decodeError(t *testing.T, response *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var payload errorResponse
	require.NoError(t, json.NewDecoder(response.Body).Decode(&payload))
	return payload
}

func TestNewRequiresStore(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestAddAndBoard(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.Handler()

	response := doRequest(t, handler, "/items/add", `{"title":"Write docs","description":"for the API"}`)
	require.Equal(t, http.StatusOK, response.Code)
	var added itemResponse
	require.NoError(t, json.NewDecoder(response.Body).Decode(&added))
	assert.Equal(t, "Write docs", added.Item.Title)
	assert.Equal(t, board.StatusBacklog, added.Item.Status)
	assert.Equal(t, "application/json", response.Header().Get("Content-Type"))

	response = doRequest(t, handler, "/board", `{}`)
	require.Equal(t, http.StatusOK, response.Code)
	var snapshot boardResponse
	require.NoError(t, json.NewDecoder(response.Body).Decode(&snapshot))
	assert.Equal(t, []string{added.Item.ID}, snapshot.Board.Columns[board.StatusBacklog])
}

func TestErrorStatuses(t *testing.T) {
	srv, store := newTestServer(t)
	handler := srv.Handler()

	require.NoError(t, store.SetWIPLimit(1))
	first, err := store.Add("first", "")
	require.NoError(t, err)
	second, err := store.Add("second", "")
	require.NoError(t, err)
	_, err = store.Move(first.ID, board.StatusInProgress)
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		kind   string
	}{
		{"blank title", "/items/add", `{"title":"  "}`, http.StatusBadRequest, KindInvalidTitle},
		{"bad status", "/items/move", `{"id":"` + second.ID + `","status":"archived"}`, http.StatusBadRequest, KindInvalidStatus},
		{"missing item", "/items/get", `{"id":"nope"}`, http.StatusNotFound, KindNotFound},
		{"unknown well-formed id", "/items/get", `{"id":"` + ids.New() + `"}`, http.StatusNotFound, KindNotFound},
		{"wip exceeded", "/items/move", `{"id":"` + second.ID + `","status":"in_progress"}`, http.StatusConflict, KindWIPLimitExceeded},
		{"bad reorder", "/items/reorder", `{"id":"` + second.ID + `","position":5}`, http.StatusBadRequest, KindInvalidReorder},
		{"zero limit", "/wip/set", `{"limit":0}`, http.StatusBadRequest, KindInvalidWIPLimit},
		{"limit equal to current", "/wip/set", `{"limit":1}`, http.StatusOK, ""},
		{"unknown field", "/items/add", `{"title":"x","priority":1}`, http.StatusBadRequest, KindBadRequest},
		{"unknown endpoint", "/items/archive", `{}`, http.StatusNotFound, KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response := doRequest(t, handler, tt.path, tt.body)
			require.Equal(t, tt.status, response.Code, response.Body.String())
			if tt.kind != "" {
				assert.Equal(t, tt.kind, decodeError(t, response).Kind)
			}
		})
	}

	_, err = store.Move(second.ID, board.StatusPaused)
	require.NoError(t, err)
	require.NoError(t, store.SetWIPLimit(2))
	_, err = store.Move(second.ID, board.StatusInProgress)
	require.NoError(t, err)
	response := doRequest(t, handler, "/wip/set", `{"limit":1}`)
	require.Equal(t, http.StatusConflict, response.Code)
	assert.Equal(t, KindWIPLimitBelowCurrent, decodeError(t, response).Kind)
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	request := httptest.NewRequest(http.MethodGet, "/board", nil)
	response := httptest.NewRecorder()
	srv.Handler().ServeHTTP(response, request)

	require.Equal(t, http.StatusMethodNotAllowed, response.Code)
	assert.Equal(t, http.MethodPost, response.Header().Get("Allow"))
	assert.Equal(t, KindMethodNotAllowed, decodeError(t, response).Kind)
}

func TestEmptyBodyIsAccepted(t *testing.T) {
	srv, _ := newTestServer(t)

	request := httptest.NewRequest(http.MethodPost, "/wip", bytes.NewReader(nil))
	response := httptest.NewRecorder()
	srv.Handler().ServeHTTP(response, request)

	require.Equal(t, http.StatusOK, response.Code)
	var payload wipResponse
	require.NoError(t, json.NewDecoder(response.Body).Decode(&payload))
	assert.Equal(t, board.WIPStatus{Count: 0, Limit: board.DefaultWIPLimit, Available: board.DefaultWIPLimit}, payload.WIP)
}

func TestRecoverHandler(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.recoverHandler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	response := doRequest(t, handler, "/anything", "")
	require.Equal(t, http.StatusInternalServerError, response.Code)
	assert.Equal(t, KindInternal, decodeError(t, response).Kind)
}

func TestClientRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)
	httpServer := httptest.NewServer(srv.Handler())
	t.Cleanup(httpServer.Close)

	ctx := context.Background()
	client := NewClient(strings.TrimPrefix(httpServer.URL, "http://"))

	item, err := client.Add(ctx, "Fix crash", "")
	require.NoError(t, err)

	resolved, err := client.Resolve(ctx, item.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, item.ID, resolved)

	moved, err := client.Move(ctx, item.ID, board.StatusDone)
	require.NoError(t, err)
	assert.Equal(t, "bug", moved.CategoryName())

	title := "Fix the crash"
	updated, err := client.Update(ctx, item.ID, board.UpdateOptions{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)

	results, err := client.SearchDone(ctx, "CRASH")
	require.NoError(t, err)
	require.Len(t, results, 1)

	require.NoError(t, client.SetWIPLimit(ctx, 4))
	wip, err := client.WIP(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, wip.Limit)

	categories, err := client.Categories(ctx)
	require.NoError(t, err)
	assert.Contains(t, categories, board.CategoryOther)

	snapshot, err := client.Board(ctx)
	require.NoError(t, err)
	assert.Len(t, snapshot.Items, 1)

	require.NoError(t, client.Delete(ctx, item.ID))
	_, err = client.Get(ctx, item.ID)
	assert.True(t, errors.Is(err, board.ErrNotFound), "expected ErrNotFound, got %v", err)

	_, err = client.Add(ctx, "", "")
	assert.ErrorIs(t, err, board.ErrInvalidTitle)
	assert.ErrorIs(t, err, board.ErrValidation)

	_, err = client.Reorder(ctx, "missing", 0)
	var serverErr *Error
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusNotFound, serverErr.Status)
}

func TestFullIDEndpointsRejectMalformedIDs(t *testing.T) {
	srv, store := newTestServer(t)
	handler := srv.Handler()

	item, err := store.Add("Keep me", "")
	require.NoError(t, err)
	prefix := item.ID[:8]

	tests := []struct {
		path string
		body string
	}{
		{"/items/get", `{"id":"` + prefix + `"}`},
		{"/items/move", `{"id":"` + prefix + `","status":"done"}`},
		{"/items/reorder", `{"id":"` + prefix + `","position":0}`},
		{"/items/update", `{"id":"` + prefix + `","title":"Renamed"}`},
		{"/items/delete", `{"id":"` + prefix + `"}`},
		{"/items/delete", `{"id":"../` + item.ID + `"}`},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			response := doRequest(t, handler, tt.path, tt.body)
			require.Equal(t, http.StatusNotFound, response.Code, response.Body.String())
			assert.Equal(t, KindNotFound, decodeError(t, response).Kind)
		})
	}

	got, err := store.Get(item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Keep me", got.Title)
	assert.Equal(t, board.StatusBacklog, got.Status)

	response := doRequest(t, handler, "/items/resolve", `{"id":"`+prefix+`"}`)
	require.Equal(t, http.StatusOK, response.Code, response.Body.String())
}

func TestNewClientTrimsTrailingSlashes(t *testing.T) {
	srv, _ := newTestServer(t)
	httpServer := httptest.NewServer(srv.Handler())
	t.Cleanup(httpServer.Close)

	client := NewClient(httpServer.URL + "//")
	assert.Equal(t, httpServer.URL, client.baseURL)

	wip, err := client.WIP(context.Background())
	require.NoError(t, err)
	assert.Equal(t, board.DefaultWIPLimit, wip.Limit)

	assert.Equal(t, "http://localhost:8080", NewClient("localhost:8080/").baseURL)
}
