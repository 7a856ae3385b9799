package tetris

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

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-engine/internal/models/tetris"
)

// newTestSessionManager は自動落下がほぼ起きない設定のセッションマネージャーを作成します。
func newTestSessionManager(t *testing.T) *SessionManager {
	t.Helper()
	cfg := DefaultConfig()
	cfg.GravityInterval = time.Hour
	sm := NewSessionManager(cfg)
	sm.newGenerator = func() ShapeGenerator { return NewSequenceGenerator(tetris.KindT) }
	t.Cleanup(sm.Shutdown)
	return sm
}

// dialSession はテスト用のWebSocketサーバーを立ててセッションに接続します。
func dialSession(t *testing.T, sm *SessionManager, roomID string) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		if err := sm.RegisterClient(roomID, conn); err != nil {
			conn.Close()
		}
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil は条件を満たすメッセージを受信するまで読み続けます。
func readUntil(t *testing.T, conn *websocket.Conn, match func(ServerMessage) bool) ServerMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var msg ServerMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		if match(msg) {
			return msg
		}
	}
}

func TestSessionManager_CreateAndEnd(t *testing.T) {
	sm := newTestSessionManager(t)

	roomID, err := sm.CreateSession()
	require.NoError(t, err)
	assert.NotEmpty(t, roomID)
	assert.Equal(t, 1, sm.SessionCount())

	session, ok := sm.GetSession(roomID)
	require.True(t, ok)
	info := session.Info()
	assert.Equal(t, roomID, info.ID)
	assert.Equal(t, StatusPlaying, info.Status)
	assert.Nil(t, info.EndedAt)
	require.NotNil(t, info.State.Piece)
	assert.Equal(t, "T", info.State.Piece.Shape)

	sm.EndSession(roomID)
	sm.EndSession(roomID)
	assert.Zero(t, sm.SessionCount())
	_, ok = sm.GetSession(roomID)
	assert.False(t, ok)

	select {
	case <-session.GameLoopDone:
	case <-time.After(5 * time.Second):
		t.Fatal("game loop did not stop")
	}
	info = session.Info()
	assert.Equal(t, StatusFinished, info.Status)
	assert.NotNil(t, info.EndedAt)
}

func TestSessionManager_IndependentSessions(t *testing.T) {
	sm := newTestSessionManager(t)

	a, err := sm.CreateSession()
	require.NoError(t, err)
	b, err := sm.CreateSession()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, sm.SessionCount())

	sm.EndSession(a)
	_, ok := sm.GetSession(b)
	assert.True(t, ok)
}

func TestSessionManager_RegisterUnknownSession(t *testing.T) {
	sm := newTestSessionManager(t)
	assert.ErrorIs(t, sm.RegisterClient("missing", nil), ErrSessionNotFound)
}

func TestSessionManager_WebSocketInput(t *testing.T) {
	sm := newTestSessionManager(t)
	roomID, err := sm.CreateSession()
	require.NoError(t, err)

	conn := dialSession(t, sm, roomID)

	// 接続直後に現在の盤面が届く
	first := readUntil(t, conn, func(m ServerMessage) bool { return m.Type == MessageBoard })
	require.NotNil(t, first.State)
	require.NotNil(t, first.State.Piece)
	assert.Equal(t, 3, first.State.Piece.X)

	require.NoError(t, conn.WriteJSON(InputMessage{Action: "jump"}))
	require.NoError(t, conn.WriteJSON(InputMessage{Action: "left"}))

	moved := readUntil(t, conn, func(m ServerMessage) bool {
		return m.Type == MessageBoard && m.State != nil && m.State.Piece != nil && m.State.Piece.X != 3
	})
	assert.Equal(t, 2, moved.State.Piece.X)
	assert.Equal(t, StateRunning, moved.State.State)
}

func TestSessionManager_DisconnectEndsSession(t *testing.T) {
	sm := newTestSessionManager(t)
	roomID, err := sm.CreateSession()
	require.NoError(t, err)

	conn := dialSession(t, sm, roomID)
	readUntil(t, conn, func(m ServerMessage) bool { return m.Type == MessageBoard })
	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool {
		_, ok := sm.GetSession(roomID)
		return !ok
	}, 5*time.Second, 10*time.Millisecond)
}

func TestSessionManager_GameOverEndsSession(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rows, cfg.Cols = 4, 4
	cfg.SpawnX, cfg.SpawnY = 0, -2
	cfg.GravityInterval = 50 * time.Millisecond
	cfg.FrameInterval = time.Millisecond
	sm := NewSessionManager(cfg)
	sm.newGenerator = func() ShapeGenerator { return NewSequenceGenerator(tetris.KindO) }
	t.Cleanup(sm.Shutdown)

	roomID, err := sm.CreateSession()
	require.NoError(t, err)
	conn := dialSession(t, sm, roomID)

	msg := readUntil(t, conn, func(m ServerMessage) bool { return m.Type == MessageGameOver })
	assert.Equal(t, 0, msg.Score)

	assert.Eventually(t, func() bool {
		_, ok := sm.GetSession(roomID)
		return !ok
	}, 5*time.Second, 10*time.Millisecond)
}
