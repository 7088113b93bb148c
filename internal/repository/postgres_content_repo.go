package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/inspiration/internal/model"
)

// PostgresChatRepo はPostgreSQLを使用したチャットリポジトリ。
type PostgresChatRepo struct {
	db *sql.DB
}

// NewPostgresChatRepo はPostgresChatRepoを生成する。
func NewPostgresChatRepo(db *sql.DB) *PostgresChatRepo {
	return &PostgresChatRepo{db: db}
}

// Create はチャットメッセージを作成する。
func (r *PostgresChatRepo) Create(ctx context.Context, chat *model.Chat) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO chats (id, user_id, message, created_at) VALUES ($1, $2, $3, $4)`,
		chat.ID, chat.UserID, chat.Message, chat.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert chat: %w", err)
	}
	return nil
}

// ListWithUser は全メッセージを投稿者のユーザー名付きで作成順に返す。
func (r *PostgresChatRepo) ListWithUser(ctx context.Context) ([]model.Chat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.user_id, u.username, c.message, c.created_at
		 FROM chats c
		 JOIN users u ON u.id = c.user_id
		 ORDER BY c.created_at ASC, c.id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	defer rows.Close()

	chats := []model.Chat{}
	for rows.Next() {
		var c model.Chat
		if err := rows.Scan(&c.ID, &c.UserID, &c.Username, &c.Message, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		chats = append(chats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chats: %w", err)
	}
	return chats, nil
}

// PostgresProjectRepo はPostgreSQLを使用したプロジェクトリポジトリ。
type PostgresProjectRepo struct {
	db *sql.DB
}

// NewPostgresProjectRepo はPostgresProjectRepoを生成する。
func NewPostgresProjectRepo(db *sql.DB) *PostgresProjectRepo {
	return &PostgresProjectRepo{db: db}
}

// Create はプロジェクトを作成する。
func (r *PostgresProjectRepo) Create(ctx context.Context, project *model.Project) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (id, user_id, name, created_at) VALUES ($1, $2, $3, $4)`,
		project.ID, project.UserID, project.Name, project.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}
	return nil
}

// List は全プロジェクトを作成順に返す。
func (r *PostgresProjectRepo) List(ctx context.Context) ([]model.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, created_at FROM projects ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return projects, nil
}

// PostgresActivityRepo はPostgreSQLを使用したアクティビティリポジトリ。
type PostgresActivityRepo struct {
	db *sql.DB
}

// NewPostgresActivityRepo はPostgresActivityRepoを生成する。
func NewPostgresActivityRepo(db *sql.DB) *PostgresActivityRepo {
	return &PostgresActivityRepo{db: db}
}

// Create はアクティビティを作成する。
func (r *PostgresActivityRepo) Create(ctx context.Context, activity *model.Activity) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO activities (id, user_id, description, created_at) VALUES ($1, $2, $3, $4)`,
		activity.ID, activity.UserID, activity.Description, activity.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

// ListWithUser は全アクティビティをユーザー名付きで作成順に返す。
func (r *PostgresActivityRepo) ListWithUser(ctx context.Context) ([]model.Activity, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT a.id, a.user_id, u.username, a.description, a.created_at
		 FROM activities a
		 JOIN users u ON u.id = a.user_id
		 ORDER BY a.created_at ASC, a.id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	activities := []model.Activity{}
	for rows.Next() {
		var a model.Activity
		if err := rows.Scan(&a.ID, &a.UserID, &a.Username, &a.Description, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activities: %w", err)
	}
	return activities, nil
}

// compile-time interface checks
var (
	_ ChatRepository     = (*PostgresChatRepo)(nil)
	_ ProjectRepository  = (*PostgresProjectRepo)(nil)
	_ ActivityRepository = (*PostgresActivityRepo)(nil)
)
