// Package idea はアイデアの投稿・投票とコイン報酬のドメインロジックを提供する。
//
// 投稿時: 投稿者のideas_submittedを1増やし、coinsをfloor(ideas_submitted/10)に再計算する。
// 投票時: アイデアのvotesを1増やし、投票者と所有者が異なれば所有者のcoinsを1増やす。
// いずれも複数行の更新を単一トランザクションで行う（IdeaRepositoryの責務）。
package idea

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/inspiration/internal/activity"
	"github.com/hitoshi/inspiration/internal/metrics"
	"github.com/hitoshi/inspiration/internal/model"
	"github.com/hitoshi/inspiration/internal/repository"
	"github.com/hitoshi/inspiration/internal/validator"
)

// Service はアイデアと報酬のサービス層。
type Service struct {
	ideas    repository.IdeaRepository
	recorder activity.Recorder
	metrics  metrics.MetricsCollector
	now      func() time.Time
}

// NewService はServiceを生成する。recorderとcollectorはnilでもよい。
func NewService(
	ideas repository.IdeaRepository,
	recorder activity.Recorder,
	collector metrics.MetricsCollector,
) *Service {
	if collector == nil {
		collector = metrics.Noop{}
	}
	return &Service{
		ideas:    ideas,
		recorder: recorder,
		metrics:  collector,
		now:      time.Now,
	}
}

// Submit はアイデアを投稿し、新しいアイデアのIDを返す。
// 未認証はUnauthorized、入力不正はInvalidInputを返し、いずれも何も変更しない。
func (s *Service) Submit(ctx context.Context, actor *model.Actor, category, description string) (*model.SubmitResult, error) {
	if !actor.IsAuthenticated() {
		return nil, model.NewUnauthorizedError()
	}

	// 前後の空白のみ除去し、本文は送信されたとおりに保存する
	category = strings.TrimSpace(category)
	description = strings.TrimSpace(description)
	if errs := validator.ValidateIdea(category, description); errs.HasErrors() {
		return nil, errs.ToAPIError("Invalid idea data")
	}

	idea := &model.Idea{
		ID:          uuid.New().String(),
		UserID:      actor.UserID,
		Category:    category,
		Description: description,
		CreatedAt:   s.now(),
	}

	result, err := s.ideas.Submit(ctx, idea)
	if err != nil {
		return nil, fmt.Errorf("failed to submit idea: %w", err)
	}
	if result == nil {
		// セッションは有効だがユーザー行が消えている
		return nil, model.NewUnauthorizedError()
	}

	slog.Info("idea submitted",
		slog.String("idea_id", idea.ID),
		slog.String("user_id", actor.UserID),
		slog.String("username", actor.Username),
		slog.Int("ideas_submitted", result.IdeasSubmitted),
		slog.Int("coins", result.Coins),
	)
	s.metrics.RecordIdeaSubmitted(category)
	activity.RecordBestEffort(ctx, s.recorder, actor.UserID, "submitted an idea in "+category)

	return result, nil
}

// Vote はアイデアに投票し、新しい投票数と所有者のコイン残高を返す。
// 同一ユーザーによる同一アイデアへの重複投票も制限しない。
func (s *Service) Vote(ctx context.Context, actor *model.Actor, ideaID, voteType string) (*model.VoteResult, error) {
	if !actor.IsAuthenticated() {
		return nil, model.NewUnauthorizedError()
	}

	ideaID = strings.TrimSpace(ideaID)
	if errs := validator.ValidateVote(ideaID, voteType); errs.HasErrors() {
		return nil, errs.ToAPIError("Invalid vote data")
	}

	// UUIDとして解釈できないIDは存在しないアイデアとして扱う
	if _, err := uuid.Parse(ideaID); err != nil {
		return nil, model.NewIdeaNotFoundError(ideaID)
	}

	result, err := s.ideas.Vote(ctx, ideaID, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to record vote: %w", err)
	}
	if result == nil {
		return nil, model.NewIdeaNotFoundError(ideaID)
	}

	if result.Rewarded {
		slog.Info("coin awarded",
			slog.String("idea_id", ideaID),
			slog.String("owner_id", result.OwnerID),
			slog.Int("owner_coins", result.OwnerCoins),
		)
		s.metrics.RecordCoinsAwarded(1)
	}
	slog.Info("vote recorded",
		slog.String("idea_id", ideaID),
		slog.String("user_id", actor.UserID),
		slog.Int("votes", result.Votes),
	)
	s.metrics.RecordVote(result.Rewarded)
	activity.RecordBestEffort(ctx, s.recorder, actor.UserID, "voted on an idea")

	return result, nil
}

// List は全アイデアを投稿者のユーザー名付きで返す。認証不要。
func (s *Service) List(ctx context.Context) ([]model.IdeaWithOwner, error) {
	ideas, err := s.ideas.ListWithOwner(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ideas: %w", err)
	}
	return ideas, nil
}
