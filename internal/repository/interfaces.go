// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"

	"github.com/hitoshi/inspiration/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByUsername はユーザー名でユーザーを取得する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// Create はユーザーを作成する。
	// username/emailの一意制約に違反した場合は*model.ErrDuplicateを返す。
	Create(ctx context.Context, user *model.User) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションをユーザー名付きで取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteExpired は期限切れのセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// IdeaRepository はアイデアと投票・コイン報酬の永続化インターフェース。
// 複数行にまたがる更新はすべて単一トランザクション内で行う。
type IdeaRepository interface {
	// Submit はアイデアを作成し、投稿者のideas_submittedを1増やしてcoinsを
	// floor(ideas_submitted/10)に再計算する。両方の更新は同一トランザクションで適用される。
	// 投稿者が存在しない場合はnilを返し、何も変更しない。
	Submit(ctx context.Context, idea *model.Idea) (*model.SubmitResult, error)

	// Vote はアイデアのvotesを1増やし、投票者と所有者が異なる場合は所有者のcoinsを1増やす。
	// 両方の更新は同一トランザクションで適用される。
	// アイデアが存在しない場合はnilを返し、何も変更しない。
	Vote(ctx context.Context, ideaID, voterID string) (*model.VoteResult, error)

	// FindByID は指定IDのアイデアを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Idea, error)

	// ListWithOwner は全アイデアを投稿者のユーザー名付きで作成順に返す。
	ListWithOwner(ctx context.Context) ([]model.IdeaWithOwner, error)
}

// ChatRepository はチャットメッセージの永続化インターフェース。
type ChatRepository interface {
	// Create はチャットメッセージを作成する。
	Create(ctx context.Context, chat *model.Chat) error
	// ListWithUser は全メッセージを投稿者のユーザー名付きで作成順に返す。
	ListWithUser(ctx context.Context) ([]model.Chat, error)
}

// ProjectRepository はプロジェクトの永続化インターフェース。
type ProjectRepository interface {
	// Create はプロジェクトを作成する。
	Create(ctx context.Context, project *model.Project) error
	// List は全プロジェクトを作成順に返す。
	List(ctx context.Context) ([]model.Project, error)
}

// ActivityRepository はアクティビティフィードの永続化インターフェース。
type ActivityRepository interface {
	// Create はアクティビティを作成する。
	Create(ctx context.Context, activity *model.Activity) error
	// ListWithUser は全アクティビティをユーザー名付きで作成順に返す。
	ListWithUser(ctx context.Context) ([]model.Activity, error)
}

// TxBeginner はトランザクション開始用のインターフェース。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
