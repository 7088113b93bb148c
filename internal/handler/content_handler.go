package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/inspiration/internal/middleware"
	"github.com/hitoshi/inspiration/internal/model"
)

// ChatServiceInterface はチャットハンドラーが必要とするサービスインターフェース。
type ChatServiceInterface interface {
	Post(ctx context.Context, actor *model.Actor, message string) (*model.Chat, error)
	List(ctx context.Context) ([]model.Chat, error)
}

// ProjectServiceInterface はプロジェクトハンドラーが必要とするサービスインターフェース。
type ProjectServiceInterface interface {
	Create(ctx context.Context, actor *model.Actor, name string) (*model.Project, error)
	List(ctx context.Context) ([]model.Project, error)
}

// ActivityServiceInterface はアクティビティハンドラーが必要とするサービスインターフェース。
type ActivityServiceInterface interface {
	List(ctx context.Context) ([]string, error)
	RSS(ctx context.Context, baseURL string) ([]byte, error)
}

// ContentHandler はチャット・プロジェクト・アクティビティのHTTPハンドラー。
type ContentHandler struct {
	chats      ChatServiceInterface
	projects   ProjectServiceInterface
	activities ActivityServiceInterface
	baseURL    string
}

// NewContentHandler はContentHandlerを生成する。baseURLはRSSのリンクに使用する。
func NewContentHandler(
	chats ChatServiceInterface,
	projects ProjectServiceInterface,
	activities ActivityServiceInterface,
	baseURL string,
) *ContentHandler {
	return &ContentHandler{
		chats:      chats,
		projects:   projects,
		activities: activities,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

type postChatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type createProjectRequest struct {
	Name string `json:"name"`
}

type projectResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	UserID string `json:"user_id"`
}

type createProjectResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// ListChats はチャットメッセージ一覧を返す。
// GET /api/chats
func (h *ContentHandler) ListChats(w http.ResponseWriter, r *http.Request) {
	chats, err := h.chats.List(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := make([]chatResponse, len(chats))
	for i, c := range chats {
		resp[i] = chatResponse{
			Username:  c.Username,
			Message:   c.Message,
			Timestamp: formatTimestamp(c.CreatedAt),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// PostChat はチャットメッセージを投稿する。
// POST /api/chats
func (h *ContentHandler) PostChat(w http.ResponseWriter, r *http.Request) {
	var req postChatRequest
	if err := decodeJSON(r, &req, "Message required"); err != nil {
		handleServiceError(w, r, err)
		return
	}

	if _, err := h.chats.Post(r.Context(), middleware.ActorFromContext(r.Context()), req.Message); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Chat sent"})
}

// ListProjects はプロジェクト一覧を返す。
// GET /api/projects
func (h *ContentHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.List(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := make([]projectResponse, len(projects))
	for i, p := range projects {
		resp[i] = projectResponse{ID: p.ID, Name: p.Name, UserID: p.UserID}
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateProject はプロジェクトを作成する。
// POST /api/projects
func (h *ContentHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := decodeJSON(r, &req, "Project name required"); err != nil {
		handleServiceError(w, r, err)
		return
	}

	project, err := h.projects.Create(r.Context(), middleware.ActorFromContext(r.Context()), req.Name)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, createProjectResponse{
		Message: "Project created",
		ID:      project.ID,
	})
}

// ListActivities は整形済みのアクティビティ文字列一覧を返す。
// GET /api/activities
func (h *ContentHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	entries, err := h.activities.List(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// ActivitiesRSS はアクティビティフィードをRSS 2.0で返す。
// GET /api/activities/rss
func (h *ContentHandler) ActivitiesRSS(w http.ResponseWriter, r *http.Request) {
	body, err := h.activities.RSS(r.Context(), h.baseURL)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		slog.Warn("failed to write rss response", slog.String("error", err.Error()))
	}
}
