package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hitoshi/inspiration/internal/middleware"
	"github.com/hitoshi/inspiration/internal/model"
)

// IdeaServiceInterface はアイデアハンドラーが必要とするサービスインターフェース。
type IdeaServiceInterface interface {
	Submit(ctx context.Context, actor *model.Actor, category, description string) (*model.SubmitResult, error)
	Vote(ctx context.Context, actor *model.Actor, ideaID, voteType string) (*model.VoteResult, error)
	List(ctx context.Context) ([]model.IdeaWithOwner, error)
}

// IdeaHandler はアイデア投稿・投票のHTTPハンドラー。
type IdeaHandler struct {
	service IdeaServiceInterface
}

// NewIdeaHandler はIdeaHandlerを生成する。
func NewIdeaHandler(service IdeaServiceInterface) *IdeaHandler {
	return &IdeaHandler{
		service: service,
	}
}

// submitIdeaRequest はアイデア投稿リクエストのボディ。
type submitIdeaRequest struct {
	Category    string `json:"category"`
	Description string `json:"description"`
}

// voteIdeaRequest は投票リクエストのボディ。
type voteIdeaRequest struct {
	IdeaID   ideaIDValue `json:"ideaId"`
	VoteType string      `json:"voteType"`
}

// ideaIDValue はJSONの文字列または数値で送られたアイデアIDを文字列として受け取る。
// 数値のIDはUUIDとして解釈できないため、サービス層で存在しないアイデアとして扱われる。
type ideaIDValue string

func (v *ideaIDValue) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = ideaIDValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("ideaId must be a string or a number: %w", err)
	}
	*v = ideaIDValue(n.String())
	return nil
}

// ideaResponse はアイデア一覧の各要素。
type ideaResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Votes       int    `json:"votes"`
	Timestamp   string `json:"timestamp"`
}

// submitIdeaResponse はアイデア投稿成功時のレスポンス。
type submitIdeaResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// voteIdeaResponse は投票成功時のレスポンス。
type voteIdeaResponse struct {
	Message    string `json:"message"`
	Votes      int    `json:"votes"`
	OwnerCoins int    `json:"owner_coins"`
}

// ListIdeas は全アイデアを投稿者名付きで返す。
// GET /api/ideas
func (h *IdeaHandler) ListIdeas(w http.ResponseWriter, r *http.Request) {
	ideas, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := make([]ideaResponse, len(ideas))
	for i, idea := range ideas {
		resp[i] = ideaResponse{
			ID:          idea.ID,
			Username:    idea.Username,
			Category:    idea.Category,
			Description: idea.Description,
			Votes:       idea.Votes,
			Timestamp:   formatTimestamp(idea.CreatedAt),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// SubmitIdea はアイデア投稿を処理する。
// POST /api/ideas
func (h *IdeaHandler) SubmitIdea(w http.ResponseWriter, r *http.Request) {
	var req submitIdeaRequest
	if err := decodeJSON(r, &req, "Invalid idea data"); err != nil {
		handleServiceError(w, r, err)
		return
	}

	result, err := h.service.Submit(r.Context(), middleware.ActorFromContext(r.Context()), req.Category, req.Description)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, submitIdeaResponse{
		Message: "Idea submitted",
		ID:      result.Idea.ID,
	})
}

// VoteIdea はアイデアへの投票を処理する。
// POST /api/vote-idea
func (h *IdeaHandler) VoteIdea(w http.ResponseWriter, r *http.Request) {
	var req voteIdeaRequest
	if err := decodeJSON(r, &req, "Invalid vote data"); err != nil {
		handleServiceError(w, r, err)
		return
	}

	result, err := h.service.Vote(r.Context(), middleware.ActorFromContext(r.Context()), string(req.IdeaID), req.VoteType)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, voteIdeaResponse{
		Message:    "Vote recorded",
		Votes:      result.Votes,
		OwnerCoins: result.OwnerCoins,
	})
}
