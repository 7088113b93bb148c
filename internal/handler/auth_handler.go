package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/inspiration/internal/metrics"
	"github.com/hitoshi/inspiration/internal/middleware"
	"github.com/hitoshi/inspiration/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Signup(ctx context.Context, username, email, password string) (*model.User, *model.Session, error)
	Login(ctx context.Context, username, password string) (*model.User, *model.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler はサインアップ・ログイン関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
	metrics metrics.MetricsCollector
}

// NewAuthHandler はAuthHandlerを生成する。collectorはnilでもよい。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig, collector metrics.MetricsCollector) *AuthHandler {
	if collector == nil {
		collector = metrics.Noop{}
	}
	return &AuthHandler{
		service: service,
		config:  config,
		metrics: collector,
	}
}

// signupRequest はサインアップリクエストのボディ。
type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// authResponse はサインアップ・ログイン成功時のレスポンス。
type authResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// checkLoginResponse はログイン状態確認のレスポンス。
// 未ログイン時のusernameはnullになる。
type checkLoginResponse struct {
	LoggedIn bool    `json:"logged_in"`
	Username *string `json:"username"`
}

// Signup はユーザー登録を処理し、セッションCookieを発行する。
// POST /api/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req, "Username, email, and password required"); err != nil {
		handleServiceError(w, r, err)
		return
	}

	user, session, err := h.service.Signup(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordSignup()
	h.setSessionCookie(w, session.ID)
	writeJSON(w, http.StatusCreated, authResponse{
		Message:  "Signup successful!",
		Username: user.Username,
		Email:    user.Email,
	})
}

// Login は資格情報を検証し、セッションCookieを発行する。
// POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req, "Invalid login data"); err != nil {
		handleServiceError(w, r, err)
		return
	}

	user, session, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if model.IsAPIErrorCode(err, model.ErrCodeInvalidCreds) {
			h.metrics.RecordLoginFailure()
		}
		handleServiceError(w, r, err)
		return
	}

	h.setSessionCookie(w, session.ID)
	writeJSON(w, http.StatusOK, authResponse{
		Message:  "Login successful!",
		Username: user.Username,
		Email:    user.Email,
	})
}

// Logout はセッションを破棄し、Cookieをクリアする。常に200を返す。
// GET /api/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if logoutErr := h.service.Logout(r.Context(), cookie.Value); logoutErr != nil {
			// ログアウト失敗してもCookieはクリアする
			slog.Error("failed to logout", slog.String("error", logoutErr.Error()))
		}
	}

	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

// CheckLogin は現在のログイン状態を返す。
// GET /api/check-login
func (h *AuthHandler) CheckLogin(w http.ResponseWriter, r *http.Request) {
	resp := checkLoginResponse{}
	if actor := middleware.ActorFromContext(r.Context()); actor.IsAuthenticated() {
		resp.LoggedIn = true
		resp.Username = &actor.Username
	}
	writeJSON(w, http.StatusOK, resp)
}

// setSessionCookie はセッションCookieを設定する（HTTP Only）。
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie はセッションCookieを削除する。
func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
