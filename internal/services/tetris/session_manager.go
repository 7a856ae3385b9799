package tetris

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ErrSessionNotFound は指定されたセッションが存在しない場合に返されます。
var ErrSessionNotFound = errors.New("session not found")

// セッションの状態
const (
	StatusPlaying  = "playing"
	StatusFinished = "finished"
)

// サーバーからクライアントへのメッセージの種類
const (
	MessageBoard    = "board"
	MessageScore    = "score"
	MessageGameOver = "game_over"
)

// ServerMessage はWebSocketでクライアントに送信するメッセージです。
type ServerMessage struct {
	Type  string    `json:"type"`
	State *Snapshot `json:"state,omitempty"` // MessageBoard のときのみ
	Score int       `json:"score"`
}

// InputMessage はクライアントから受け取る操作メッセージです。
// 例: {"action": "left"}
type InputMessage struct {
	Action string `json:"action"`
}

// Client はWebSocket接続を持つ単一のクライアントを表します。
type Client struct {
	SessionID string          // このクライアントが接続しているセッションのID
	Conn      *websocket.Conn // クライアントとの実際のWebSocketコネクション
	Send      chan []byte     // クライアントへメッセージを送信するためのバッファ付きチャネル
	closed    bool            // チャネルが閉じられたかどうかのフラグ
	mu        sync.Mutex      // closedフラグ保護用
}

// SafeSend は安全にチャネルにメッセージを送信します（closedチェック付き）
func (c *Client) SafeSend(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.Send <- message:
		return true
	default:
		return false // チャネルがフル
	}
}

// SafeClose は安全にチャネルを閉じます
func (c *Client) SafeClose() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		close(c.Send)
		c.closed = true
	}
}

// GameSession は1人用のゲーム1つと、それに接続しているクライアントを表します。
// エンジンはセッションのゲームループのゴルーチンだけが操作します。
type GameSession struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`

	InputCh      chan Command  `json:"-"` // クライアントからの操作をゲームループに渡すチャネル
	GameLoopDone chan struct{} `json:"-"` // ゲームループの終了を通知するチャネル

	engine *Engine
	cancel context.CancelFunc

	mu      sync.RWMutex // 以下のフィールドを保護
	status  string
	endedAt time.Time
	client  *Client
	latest  Snapshot
}

// SessionInfo はHTTPで返すセッションの状態です。
type SessionInfo struct {
	ID        string     `json:"id"`
	Status    string     `json:"status"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	State     Snapshot   `json:"state"`
}

// Info はセッションの現在の状態を返します。どのゴルーチンからでも呼べます。
func (gs *GameSession) Info() SessionInfo {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	info := SessionInfo{
		ID:        gs.ID,
		Status:    gs.status,
		StartedAt: gs.StartedAt,
		State:     gs.latest,
	}
	if !gs.endedAt.IsZero() {
		ended := gs.endedAt
		info.EndedAt = &ended
	}
	return info
}

// LatestSnapshot はゲームループから最後に通知された盤面を返します。
func (gs *GameSession) LatestSnapshot() Snapshot {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.latest
}

func (gs *GameSession) currentClient() *Client {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.client
}

// send はメッセージを接続中のクライアントに送信します。クライアントがいなければ何もしません。
func (gs *GameSession) send(msg ServerMessage) {
	client := gs.currentClient()
	if client == nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[SessionManager] Error marshaling %s message for session %s: %v", msg.Type, gs.ID, err)
		return
	}
	if !client.SafeSend(data) {
		log.Printf("[SessionManager] Failed to send %s message to session %s (channel closed or full)", msg.Type, gs.ID)
	}
}

// sessionOutput はエンジンの出力をセッションのクライアントに転送する Listener です。
type sessionOutput struct {
	gs *GameSession
}

func (o sessionOutput) OnBoardChanged(s Snapshot) {
	o.gs.mu.Lock()
	o.gs.latest = s
	o.gs.mu.Unlock()
	o.gs.send(ServerMessage{Type: MessageBoard, State: &s, Score: s.Score})
}

func (o sessionOutput) OnScoreChanged(score int) {
	o.gs.send(ServerMessage{Type: MessageScore, Score: score})
}

func (o sessionOutput) OnGameOver() {
	o.gs.send(ServerMessage{Type: MessageGameOver, Score: o.gs.LatestSnapshot().Score})
}

// SessionManager はゲームセッションとWebSocketクライアント接続の全体を管理します。
// セッションごとにゲームループのゴルーチンを1つ起動します。
type SessionManager struct {
	sessions map[string]*GameSession // roomID -> GameSession
	mu       sync.RWMutex            // sessions マップへのアクセスを保護
	cfg      Config                  // 各セッションのエンジン設定の雛形
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	// newGenerator はセッションごとの ShapeGenerator を作成します。
	// ジェネレーターは並行利用できないのでセッション間で共有しません。
	newGenerator func() ShapeGenerator
}

// NewSessionManager は新しい SessionManager を作成します。
//
// Parameters:
//
//	cfg : 各セッションのエンジン設定。Generator はセッションごとに新しく作成されます
//
// Returns:
//
//	*SessionManager: 初期化されたセッションマネージャー
func NewSessionManager(cfg Config) *SessionManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &SessionManager{
		sessions: make(map[string]*GameSession),
		cfg:      cfg,
		ctx:      ctx,
		cancel:   cancel,
		newGenerator: func() ShapeGenerator {
			return NewUniformGenerator(time.Now().UnixNano())
		},
	}
}

// CreateSession は新しいゲームセッションを作成し、ゲームループを開始します。
//
// Returns:
//
//	string: 新しいセッションのID (UUID)
//	error: エンジンの作成に失敗した場合
func (sm *SessionManager) CreateSession() (string, error) {
	roomID := uuid.New().String()
	session := &GameSession{
		ID:           roomID,
		StartedAt:    time.Now(),
		InputCh:      make(chan Command, 100),
		GameLoopDone: make(chan struct{}),
		status:       StatusPlaying,
	}

	cfg := sm.cfg
	cfg.Generator = sm.newGenerator()
	engine, err := NewEngine(cfg, sessionOutput{gs: session})
	if err != nil {
		return "", fmt.Errorf("failed to create engine: %w", err)
	}

	ctx, cancel := context.WithCancel(sm.ctx)
	session.engine = engine
	session.cancel = cancel

	sm.mu.Lock()
	sm.sessions[roomID] = session
	sm.mu.Unlock()

	sm.wg.Add(1)
	go sm.runSession(ctx, session)

	log.Printf("[SessionManager] Created new game session: %s", roomID)
	return roomID, nil
}

// runSession はセッションのゲームループを実行し、終了したらセッションを片付けます。
func (sm *SessionManager) runSession(ctx context.Context, session *GameSession) {
	defer sm.wg.Done()
	defer close(session.GameLoopDone)

	if err := session.engine.Run(ctx, session.InputCh); err != nil {
		log.Printf("[SessionManager] Game loop for session %s stopped: %v", session.ID, err)
	} else {
		log.Printf("[SessionManager] Session %s reached game over with score %d", session.ID, session.engine.Score())
	}
	sm.EndSession(session.ID)
}

// GetSession は指定されたIDのゲームセッションを取得します。
func (sm *SessionManager) GetSession(roomID string) (*GameSession, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	session, ok := sm.sessions[roomID]
	return session, ok
}

// SessionCount は進行中のセッション数を返します。
func (sm *SessionManager) SessionCount() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// RegisterClient はWebSocket接続をセッションに登録し、読み書きのゴルーチンを開始します。
// 既に接続しているクライアントがいる場合は置き換えます（再接続対応）。
//
// Parameters:
//
//	roomID : 接続先のセッションID
//	conn   : WebSocketコネクション
//
// Returns:
//
//	error: セッションが存在しない場合は ErrSessionNotFound
func (sm *SessionManager) RegisterClient(roomID string, conn *websocket.Conn) error {
	session, ok := sm.GetSession(roomID)
	if !ok {
		return ErrSessionNotFound
	}

	client := &Client{
		SessionID: roomID,
		Conn:      conn,
		Send:      make(chan []byte, 512),
	}

	session.mu.Lock()
	if existing := session.client; existing != nil {
		log.Printf("[SessionManager] Replacing existing connection for session %s", roomID)
		existing.SafeClose()
	}
	session.client = client
	latest := session.latest
	session.mu.Unlock()

	conn.SetReadLimit(1024)

	go sm.readPump(session, client)
	go client.writePump()

	// 接続直後に現在の盤面を送信
	session.send(ServerMessage{Type: MessageBoard, State: &latest, Score: latest.Score})

	log.Printf("[SessionManager] Client registered for session %s", roomID)
	return nil
}

// readPump はクライアントからの操作メッセージを読み込み、セッションの InputCh に送ります。
// 現在のクライアントの接続が切れた場合はセッションを終了します。
func (sm *SessionManager) readPump(session *GameSession, client *Client) {
	defer func() {
		if err := client.Conn.Close(); err != nil {
			log.Printf("[SessionManager] Error closing WebSocket connection for session %s: %v", session.ID, err)
		}
		if session.currentClient() == client {
			log.Printf("[SessionManager] Client left session %s during game. Ending session.", session.ID)
			sm.EndSession(session.ID)
		}
	}()

	if err := client.Conn.SetReadDeadline(time.Now().Add(300 * time.Second)); err != nil {
		log.Printf("[SessionManager] Failed to set read deadline for session %s: %v", session.ID, err)
		return
	}
	client.Conn.SetPongHandler(func(string) error {
		// エラーを返すと ReadMessage が失敗し、readPump が終了する
		return client.Conn.SetReadDeadline(time.Now().Add(300 * time.Second))
	})

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Printf("[SessionManager] WebSocket unexpected close error for session %s: %v", session.ID, err)
			}
			return
		}

		var input InputMessage
		if err := json.Unmarshal(message, &input); err != nil {
			log.Printf("[SessionManager] Failed to unmarshal input message for session %s: %v, message: %s", session.ID, err, message)
			continue
		}
		cmd, ok := ParseCommand(input.Action)
		if !ok {
			continue // 不明な操作は無視
		}

		select {
		case session.InputCh <- cmd:
		case <-session.GameLoopDone:
			return
		default:
			log.Printf("[SessionManager] Input channel is full, dropping %s for session %s", cmd, session.ID)
		}
	}
}

// writePump は Client の Send チャネルからのメッセージをWebSocketコネクションに書き込みます。
func (c *Client) writePump() {
	ticker := time.NewTicker(60 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// セッションの終了や接続の置き換えでチャネルが閉じられた
				c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[Client] Error writing message for session %s: %v", c.SessionID, err)
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[Client] Error sending ping for session %s: %v", c.SessionID, err)
				return
			}
		}
	}
}

// EndSession はゲームセッションを終了させ、ゲームループを停止し、クライアントを切断します。
// 同じセッションに対して複数回呼んでも安全です。
func (sm *SessionManager) EndSession(roomID string) {
	sm.mu.Lock()
	session, ok := sm.sessions[roomID]
	if ok {
		delete(sm.sessions, roomID)
	}
	sm.mu.Unlock()
	if !ok {
		return
	}

	session.cancel()

	session.mu.Lock()
	session.status = StatusFinished
	session.endedAt = time.Now()
	client := session.client
	session.mu.Unlock()

	if client != nil {
		client.SafeClose()
	}
	log.Printf("[SessionManager] Game session %s ended.", roomID)
}

// Shutdown は全セッションのゲームループを停止し、終了を待ちます。
func (sm *SessionManager) Shutdown() {
	log.Printf("[SessionManager] Shutting down...")
	sm.cancel()
	sm.wg.Wait()
	log.Printf("[SessionManager] Shutdown complete")
}
