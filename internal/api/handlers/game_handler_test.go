package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-engine/internal/services/tetris"
)

func newTestServer(t *testing.T) (*httptest.Server, *tetris.SessionManager) {
	t.Helper()
	cfg := tetris.DefaultConfig()
	cfg.GravityInterval = time.Hour
	sm := tetris.NewSessionManager(cfg)
	t.Cleanup(sm.Shutdown)

	server := httptest.NewServer(NewRouter(sm, []string{"http://localhost:3000"}))
	t.Cleanup(server.Close)
	return server, sm
}

func createRoom(t *testing.T, server *httptest.Server) string {
	t.Helper()
	resp, err := http.Post(server.URL+"/api/games", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body["room_id"])
	return body["room_id"]
}

func TestHealth(t *testing.T) {
	server, _ := newTestServer(t)
	createRoom(t, server)

	resp, err := http.Get(server.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 1, body["sessions"])
}

func TestCreateRoomAndGetStatus(t *testing.T) {
	server, sm := newTestServer(t)
	roomID := createRoom(t, server)
	assert.Equal(t, 1, sm.SessionCount())

	resp, err := http.Get(server.URL + "/api/games/" + roomID)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var info tetris.SessionInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, roomID, info.ID)
	assert.Equal(t, tetris.StatusPlaying, info.Status)
	assert.Equal(t, tetris.StateRunning, info.State.State)
	assert.Equal(t, 20, info.State.Rows)
	assert.Equal(t, 10, info.State.Cols)
	assert.NotNil(t, info.State.Piece)
}

func TestGetStatus_NotFound(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/games/missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body["error"])
}

func TestMethodNotAllowed(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/games")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	server, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, server.URL+"/api/games", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}

func wsURL(server *httptest.Server, roomID string) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/api/games/" + roomID + "/ws"
}

func TestWebSocket_PlayAndDisconnect(t *testing.T) {
	server, sm := newTestServer(t)
	roomID := createRoom(t, server)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, roomID), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var first tetris.ServerMessage
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, tetris.MessageBoard, first.Type)
	require.NotNil(t, first.State)
	require.NotNil(t, first.State.Piece)
	startX := first.State.Piece.X

	require.NoError(t, conn.WriteJSON(tetris.InputMessage{Action: "right"}))
	for {
		var msg tetris.ServerMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == tetris.MessageBoard && msg.State.Piece.X != startX {
			assert.Equal(t, startX+1, msg.State.Piece.X)
			break
		}
	}

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool {
		return sm.SessionCount() == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestWebSocket_UnknownRoom(t *testing.T) {
	server, _ := newTestServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(server, "missing"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebSocket_ForeignOrigin(t *testing.T) {
	server, _ := newTestServer(t)
	roomID := createRoom(t, server)

	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(server, roomID), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
