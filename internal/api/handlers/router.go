package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-engine/internal/api/middleware"
	"github.com/progate-hackathon-strawberry-flavor/GITRIS-engine/internal/services/tetris"
)

// NewRouter はAPIのルーティングを設定したハンドラーを返します。
//
// Parameters:
//
//	sm             : セッションマネージャー
//	allowedOrigins : CORSとWebSocketで許可するOrigin。"*" はすべて許可
func NewRouter(sm *tetris.SessionManager, allowedOrigins []string) http.Handler {
	cors := middleware.NewCORS(allowedOrigins)
	public := NewPublicHandler(sm)
	game := NewGameHandler(sm, func(r *http.Request) bool {
		// ブラウザ以外のクライアントは Origin を送らない
		return r.Header.Get("Origin") == "" || cors.OriginAllowed(r)
	})

	r := mux.NewRouter()
	r.Use(cors.Handler)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", public.Health).Methods(http.MethodGet)
	api.HandleFunc("/games", game.CreateRoom).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/games/{roomID}", game.GetRoomStatus).Methods(http.MethodGet)
	api.HandleFunc("/games/{roomID}/ws", game.HandleWebSocketConnection).Methods(http.MethodGet)

	return r
}
