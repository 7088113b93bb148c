package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/inspiration/internal/metrics"
	"github.com/hitoshi/inspiration/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	Metrics           metrics.MetricsCollector
	SessionResolver   middleware.ActorResolver
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	SecurityHeaders   middleware.SecurityHeadersConfig
	// TrustProxyHeaders はX-Forwarded-For等からクライアントIPを復元するかどうか。
	TrustProxyHeaders bool
	// CSRF はnilの場合CSRF検証を行わない。
	CSRF *middleware.CSRFConfig

	// /metrics のハンドラー。nilの場合はルートを登録しない。
	MetricsHandler http.Handler

	// 認証・ユーザー
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig
	UserService UserServiceInterface

	// アイデアと報酬
	IdeaService IdeaServiceInterface

	// チャット・プロジェクト・アクティビティ
	ChatService     ChatServiceInterface
	ProjectService  ProjectServiceInterface
	ActivityService ActivityServiceInterface
	BaseURL         string

	// ページとヘルスチェック
	Pages  PageRenderer
	Health HealthChecker
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// グローバルミドルウェアの実行順序:
//
//	Recovery → RequestID → (RealIP) → SecurityHeaders → CORS → OptionalSession → Logging
//
// OptionalSessionをLoggingより前に置き、アクセスログにuser_idを含める。
// /api 配下には RateLimit(General) → (CSRF) を追加で適用し、
// 認証必須ルートは Session(required) で保護する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewRequestIDMiddleware())
	if deps.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.NewSecurityHeadersMiddleware(deps.SecurityHeaders))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewOptionalSessionMiddleware(deps.SessionResolver))
	r.Use(middleware.NewLoggingMiddleware(logger, deps.Metrics))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig, deps.Metrics)
	userHandler := NewUserHandler(deps.UserService)
	ideaHandler := NewIdeaHandler(deps.IdeaService)
	contentHandler := NewContentHandler(deps.ChatService, deps.ProjectService, deps.ActivityService, deps.BaseURL)
	pageHandler := NewPageHandler(deps.Pages, deps.Health)

	// --- 運用エンドポイント ---
	r.Get("/health", pageHandler.Health)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- API ---
	r.Route("/api", func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// トークン取得はCSRF検証の外に置く（二重発行を避ける）
		if deps.CSRF != nil {
			r.Method(http.MethodGet, "/csrf-token", middleware.NewCSRFTokenHandler(*deps.CSRF))
		}

		r.Group(func(r chi.Router) {
			if deps.CSRF != nil {
				r.Use(middleware.NewCSRFMiddleware(*deps.CSRF))
			}

			// 認証（IP単位のレート制限を追加）
			r.With(deps.RateLimiter.AuthMiddleware()).Post("/signup", authHandler.Signup)
			r.With(deps.RateLimiter.AuthMiddleware()).Post("/login", authHandler.Login)
			r.Get("/logout", authHandler.Logout)
			r.Get("/check-login", authHandler.CheckLogin)

			// 認証不要の一覧
			r.Get("/ideas", ideaHandler.ListIdeas)
			r.Get("/chats", contentHandler.ListChats)
			r.Get("/projects", contentHandler.ListProjects)
			r.Get("/activities", contentHandler.ListActivities)
			r.Get("/activities/rss", contentHandler.ActivitiesRSS)

			// --- 認証が必要なルート ---
			r.Group(func(r chi.Router) {
				r.Use(middleware.NewSessionMiddleware(deps.SessionResolver))

				r.Get("/profile", userHandler.Profile)
				r.Post("/ideas", ideaHandler.SubmitIdea)
				r.Post("/vote-idea", ideaHandler.VoteIdea)
				r.Post("/chats", contentHandler.PostChat)
				r.Post("/projects", contentHandler.CreateProject)
			})
		})
	})

	// --- ページ ---
	r.Get("/", pageHandler.Index)
	r.Get("/{page}", pageHandler.Page)

	return r
}
