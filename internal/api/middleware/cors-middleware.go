package middleware

import "github.com/rs/cors"

// DefaultAllowedOrigins はローカル開発用のフロントエンドのオリジンです。
var DefaultAllowedOrigins = []string{"http://localhost:3000"}

// NewCORS は許可するオリジンを指定してCORS設定を作成します。
// 空の場合は DefaultAllowedOrigins を使います。"*" はすべてのオリジンを許可します。
func NewCORS(allowedOrigins []string) *cors.Cors {
	if len(allowedOrigins) == 0 {
		allowedOrigins = DefaultAllowedOrigins
	}
	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins, // フロントエンドのオリジン
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})
}
