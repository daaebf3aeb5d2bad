// internal/handlers/rooms_test.go
package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablestakes/holdem/internal/config"
	"github.com/tablestakes/holdem/internal/room"
)

func newTestManager() *room.Manager {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return room.NewManager(logger, config.Config{BigBlind: 20, MaxPlayers: 6})
}

func TestCreateRoomHandler(t *testing.T) {
	m := newTestManager()
	h := CreateRoomHandler(m)

	req := httptest.NewRequest(http.MethodPost, "/rooms/create",
		strings.NewReader(`{"player_id":"alice","stack_multiple":40}`))
	rec := httptest.NewRecorder()
	h(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp createRoomResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.RoomID, 8)
	assert.Equal(t, 800, resp.InitialStack)

	created, exists := m.Room(resp.RoomID)
	require.True(t, exists)
	assert.Equal(t, "alice", created.Creator)
}

func TestCreateRoomHandlerRejectsBadRequests(t *testing.T) {
	h := CreateRoomHandler(newTestManager())

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/rooms/create", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/rooms/create", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "player_id is required")
}

func TestListRoomsHandler(t *testing.T) {
	m := newTestManager()
	list := ListRoomsHandler(m)

	rec := httptest.NewRecorder()
	list(rec, httptest.NewRequest(http.MethodGet, "/rooms/list", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var empty map[string][]room.Summary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&empty))
	assert.Empty(t, empty["rooms"])

	m.CreateRoom("alice", 20)
	rec = httptest.NewRecorder()
	list(rec, httptest.NewRequest(http.MethodGet, "/rooms/list", nil))

	var resp map[string][]room.Summary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp["rooms"], 1)
	assert.Equal(t, 1, resp["rooms"][0].Seated)
	assert.Equal(t, 400, resp["rooms"][0].InitialStack)
}
