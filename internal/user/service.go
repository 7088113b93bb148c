// Package user はユーザープロフィールのドメインロジックを提供する。
package user

import (
	"context"
	"fmt"

	"github.com/hitoshi/inspiration/internal/model"
)

// UserFinder はユーザー取得のインターフェース。
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// Service はユーザープロフィールのサービス層。
type Service struct {
	users UserFinder
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(users UserFinder) *Service {
	return &Service{users: users}
}

// Profile は認証済みユーザー自身のプロフィールを返す。
// セッションは有効だがユーザー行が存在しない場合はUserNotFoundを返す。
func (s *Service) Profile(ctx context.Context, actor *model.Actor) (*model.User, error) {
	if !actor.IsAuthenticated() {
		return nil, model.NewUnauthorizedError()
	}

	user, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	return user, nil
}
