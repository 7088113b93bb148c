// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hitoshi/inspiration/internal/model"
)

// SessionCookieName はセッショントークンを格納するCookie名。
const SessionCookieName = "session_id"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// actorContextKey はリクエストコンテキストに認証済みActorを格納するためのキー。
var actorContextKey = contextKey("actor")

// ActorResolver はセッショントークンをActorに解決するインターフェース。
// 未知・期限切れのトークンに対してはnilを返す。
type ActorResolver interface {
	ResolveSession(ctx context.Context, sessionID string) (*model.Actor, error)
}

// resolveActor はCookieのセッショントークンからActorを解決する。
func resolveActor(r *http.Request, resolver ActorResolver) *model.Actor {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	actor, err := resolver.ResolveSession(r.Context(), cookie.Value)
	if err != nil {
		slog.Error("failed to resolve session",
			slog.String("error", err.Error()),
		)
		return nil
	}
	return actor
}

// NewOptionalSessionMiddleware はセッションが有効な場合のみActorをコンテキストに注入する。
// 未認証リクエストも拒否せずに後続へ渡す。
func NewOptionalSessionMiddleware(resolver ActorResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ActorFromContext(r.Context()) != nil {
				next.ServeHTTP(w, r)
				return
			}
			if actor := resolveActor(r, resolver); actor.IsAuthenticated() {
				r = r.WithContext(ContextWithActor(r.Context(), actor))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NewSessionMiddleware はHTTP Only Cookieからセッションを読み取り、
// 有効性を検証するミドルウェアを返す。
// 認証済みActorをリクエストコンテキストに注入する。
// 未認証リクエストには401 UnauthorizedをJSONで返す。
func NewSessionMiddleware(resolver ActorResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 前段のミドルウェアで解決済みならそのまま通す
			if ActorFromContext(r.Context()).IsAuthenticated() {
				next.ServeHTTP(w, r)
				return
			}

			actor := resolveActor(r, resolver)
			if !actor.IsAuthenticated() {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithActor(r.Context(), actor)))
		})
	}
}

// ActorFromContext はリクエストコンテキストからActorを取得する。
// 未認証の場合はnilを返す。
func ActorFromContext(ctx context.Context) *model.Actor {
	actor, _ := ctx.Value(actorContextKey).(*model.Actor)
	return actor
}

// ContextWithActor はコンテキストにActorを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithActor(ctx context.Context, actor *model.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// UserIDFromContext はリクエストコンテキストから認証済みユーザーIDを取得する。
func UserIDFromContext(ctx context.Context) (string, error) {
	actor := ActorFromContext(ctx)
	if !actor.IsAuthenticated() {
		return "", fmt.Errorf("user ID not found in context")
	}
	return actor.UserID, nil
}
