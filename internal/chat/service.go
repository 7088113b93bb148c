// Package chat はチャットメッセージの投稿と一覧を提供する。
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/inspiration/internal/model"
	"github.com/hitoshi/inspiration/internal/repository"
	"github.com/hitoshi/inspiration/internal/validator"
)

// Service はチャットのサービス層。
type Service struct {
	chats repository.ChatRepository
	now   func() time.Time
}

// NewService はServiceを生成する。
func NewService(chats repository.ChatRepository) *Service {
	return &Service{chats: chats, now: time.Now}
}

// Post はメッセージを投稿する。
func (s *Service) Post(ctx context.Context, actor *model.Actor, message string) (*model.Chat, error) {
	if !actor.IsAuthenticated() {
		return nil, model.NewUnauthorizedError()
	}

	message = strings.TrimSpace(message)
	if errs := validator.ValidateChatMessage(message); errs.HasErrors() {
		return nil, errs.ToAPIError("Message required")
	}

	chat := &model.Chat{
		ID:        uuid.New().String(),
		UserID:    actor.UserID,
		Username:  actor.Username,
		Message:   message,
		CreatedAt: s.now(),
	}
	if err := s.chats.Create(ctx, chat); err != nil {
		return nil, fmt.Errorf("failed to post chat: %w", err)
	}

	slog.Info("chat sent", slog.String("user_id", actor.UserID))
	return chat, nil
}

// List は全メッセージを作成順に返す。
func (s *Service) List(ctx context.Context) ([]model.Chat, error) {
	chats, err := s.chats.ListWithUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	return chats, nil
}
