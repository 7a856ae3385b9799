package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-engine/internal/services/tetris"
)

// GameHandler はゲーム関連のHTTPリクエスト（部屋作成、状態取得、WebSocket接続）を処理します。
type GameHandler struct {
	sessionManager *tetris.SessionManager // ゲームセッションの管理サービス
	upgrader       websocket.Upgrader
}

// NewGameHandler は新しい GameHandler インスタンスを作成します。
//
// Parameters:
//
//	sm           : セッションマネージャーへのポインタ
//	checkOrigin  : WebSocket接続のOriginを検証する関数。nil の場合はすべて許可
//
// Returns:
//
//	*GameHandler: 新しく作成された GameHandler のポインタ
func NewGameHandler(sm *tetris.SessionManager, checkOrigin func(r *http.Request) bool) *GameHandler {
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &GameHandler{
		sessionManager: sm,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// WriteErrorResponse はエラーレスポンスをJSON形式で書き込みます。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	WriteJSONResponse(w, statusCode, map[string]string{"error": message})
}

// WriteJSONResponse はJSONレスポンスを書き込みます。
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[GameHandler] Failed to encode response: %v", err)
	}
}

// CreateRoom は新しいゲームセッション（部屋）を作成し、ゲームループを開始します。
// POST /api/games
func (h *GameHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := h.sessionManager.CreateSession()
	if err != nil {
		log.Printf("[GameHandler] Failed to create room: %v", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "ルームの作成に失敗しました")
		return
	}

	WriteJSONResponse(w, http.StatusCreated, map[string]string{"room_id": roomID})
}

// GetRoomStatus は特定のルームの現在の状態（盤面、スコア、進行状態）を返します。
// GET /api/games/{roomID}
func (h *GameHandler) GetRoomStatus(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomID"]
	if roomID == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "ルームIDが必要です")
		return
	}

	session, ok := h.sessionManager.GetSession(roomID)
	if !ok {
		WriteErrorResponse(w, http.StatusNotFound, "指定されたルームは見つかりませんでした")
		return
	}

	WriteJSONResponse(w, http.StatusOK, session.Info())
}

// HandleWebSocketConnection はHTTP接続をWebSocketプロトコルにアップグレードし、
// その後の送受信をセッションマネージャーに引き渡します。
// GET /api/games/{roomID}/ws
func (h *GameHandler) HandleWebSocketConnection(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomID"]
	if _, ok := h.sessionManager.GetSession(roomID); !ok {
		WriteErrorResponse(w, http.StatusNotFound, "指定されたルームは見つかりませんでした")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[GameHandler] Failed to upgrade to websocket for room %s: %v", roomID, err)
		return // Upgrade がエラーレスポンスを書き込み済み
	}

	// readPump と writePump は RegisterClient 内で開始される
	if err := h.sessionManager.RegisterClient(roomID, conn); err != nil {
		if errors.Is(err, tetris.ErrSessionNotFound) {
			// アップグレードの間にゲームが終了した
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "room not found"))
		}
		log.Printf("[GameHandler] Failed to register client to room %s: %v", roomID, err)
		conn.Close()
		return
	}
	log.Printf("[GameHandler] WebSocket upgraded for room %s.", roomID)
}
