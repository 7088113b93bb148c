package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/inspiration/internal/middleware"
	"github.com/hitoshi/inspiration/internal/web"
)

// PageRenderer はページハンドラーが必要とするレンダラーのインターフェース。
type PageRenderer interface {
	Has(name string) bool
	Render(w io.Writer, name string, data web.PageData) error
}

// HealthChecker はデータベース疎通確認のインターフェース。*sql.DBが満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// PageHandler は静的ページとヘルスチェックのHTTPハンドラー。
type PageHandler struct {
	renderer PageRenderer
	health   HealthChecker
}

// NewPageHandler はPageHandlerを生成する。
func NewPageHandler(renderer PageRenderer, health HealthChecker) *PageHandler {
	return &PageHandler{
		renderer: renderer,
		health:   health,
	}
}

// Index はトップページを返す。
// GET /
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, web.IndexPage)
}

// Page はURLパスのページ名に対応するページを返す。未知のページは404を返す。
// GET /{page}
func (h *PageHandler) Page(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "page")
	if name == web.IndexPage || !h.renderer.Has(name) {
		http.NotFound(w, r)
		return
	}
	h.render(w, r, name)
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, name string) {
	data := web.PageData{}
	if actor := middleware.ActorFromContext(r.Context()); actor.IsAuthenticated() {
		data.LoggedIn = true
		data.Username = actor.Username
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.renderer.Render(w, name, data); err != nil {
		slog.Error("failed to render page",
			slog.String("page", name),
			slog.String("error", err.Error()),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// Health はデータベースへの疎通を確認する。
// GET /health
func (h *PageHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health.PingContext(r.Context()); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
