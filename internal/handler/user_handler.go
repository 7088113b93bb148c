package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/inspiration/internal/middleware"
	"github.com/hitoshi/inspiration/internal/model"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// Profile は認証済みユーザーの最新のプロフィールを返す。
	Profile(ctx context.Context, actor *model.Actor) (*model.User, error)
}

// UserHandler はユーザープロフィールのHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// profileResponse はプロフィールのAPIレスポンス。
type profileResponse struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Coins          int    `json:"coins"`
	IdeasSubmitted int    `json:"ideas_submitted"`
	CreatedAt      string `json:"created_at"`
}

// Profile はログインユーザーのプロフィールを返す。
// GET /api/profile
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Profile(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		Username:       user.Username,
		Email:          user.Email,
		Coins:          user.Coins,
		IdeasSubmitted: user.IdeasSubmitted,
		CreatedAt:      formatTimestamp(user.CreatedAt),
	})
}

// formatTimestamp はレスポンス用にUTCのRFC3339形式へ変換する。
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
