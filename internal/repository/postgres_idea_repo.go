package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/inspiration/internal/model"
)

// PostgresIdeaRepo はPostgreSQLを使用したアイデアリポジトリ。
// カウンタの更新はすべて行レベルの加算(SET x = x + 1)で行い、
// アプリケーション側での読み取り→書き戻しは行わない。
type PostgresIdeaRepo struct {
	db *sql.DB
}

// NewPostgresIdeaRepo はPostgresIdeaRepoを生成する。
func NewPostgresIdeaRepo(db *sql.DB) *PostgresIdeaRepo {
	return &PostgresIdeaRepo{db: db}
}

// Submit はアイデアの作成と投稿者カウンタの更新を同一トランザクションで行う。
// 投稿者が存在しない場合はnilを返し、トランザクションはロールバックされる。
func (r *PostgresIdeaRepo) Submit(ctx context.Context, idea *model.Idea) (*model.SubmitResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// 投稿数を加算し、コインを投稿数から再計算する
	result := &model.SubmitResult{Idea: idea}
	err = tx.QueryRowContext(ctx,
		`UPDATE users
		 SET ideas_submitted = ideas_submitted + 1,
		     coins = (ideas_submitted + 1) / 10
		 WHERE id = $1
		 RETURNING ideas_submitted, coins`,
		idea.UserID,
	).Scan(&result.IdeasSubmitted, &result.Coins)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update submitter counters: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ideas (id, user_id, category, description, votes, created_at)
		 VALUES ($1, $2, $3, $4, 0, $5)`,
		idea.ID, idea.UserID, idea.Category, idea.Description, idea.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert idea: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	idea.Votes = 0
	return result, nil
}

// Vote は投票数の加算と所有者へのコイン付与を同一トランザクションで行う。
// 同一アイデアへの同時投票はideas行のロックで直列化される。
// アイデアが存在しない場合はnilを返す。
func (r *PostgresIdeaRepo) Vote(ctx context.Context, ideaID, voterID string) (*model.VoteResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result := &model.VoteResult{IdeaID: ideaID}
	err = tx.QueryRowContext(ctx,
		`UPDATE ideas SET votes = votes + 1 WHERE id = $1 RETURNING votes, user_id`,
		ideaID,
	).Scan(&result.Votes, &result.OwnerID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to increment votes: %w", err)
	}

	if result.OwnerID != voterID {
		err = tx.QueryRowContext(ctx,
			`UPDATE users SET coins = coins + 1 WHERE id = $1 RETURNING coins`,
			result.OwnerID,
		).Scan(&result.OwnerCoins)
		result.Rewarded = err == nil
	} else {
		err = tx.QueryRowContext(ctx,
			`SELECT coins FROM users WHERE id = $1`,
			result.OwnerID,
		).Scan(&result.OwnerCoins)
	}
	// 所有者を解決できない場合はコイン0として投票のみ確定する
	if err == sql.ErrNoRows {
		result.OwnerCoins = 0
	} else if err != nil {
		return nil, fmt.Errorf("failed to update owner coins: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result, nil
}

// FindByID は指定IDのアイデアを取得する。見つからない場合はnilを返す。
func (r *PostgresIdeaRepo) FindByID(ctx context.Context, id string) (*model.Idea, error) {
	idea := &model.Idea{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, category, description, votes, created_at
		 FROM ideas WHERE id = $1`,
		id,
	).Scan(&idea.ID, &idea.UserID, &idea.Category, &idea.Description, &idea.Votes, &idea.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find idea: %w", err)
	}

	return idea, nil
}

// ListWithOwner は全アイデアを投稿者のユーザー名付きで作成順に返す。
func (r *PostgresIdeaRepo) ListWithOwner(ctx context.Context) ([]model.IdeaWithOwner, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT i.id, i.user_id, u.username, i.category, i.description, i.votes, i.created_at
		 FROM ideas i
		 JOIN users u ON u.id = i.user_id
		 ORDER BY i.created_at ASC, i.id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ideas: %w", err)
	}
	defer rows.Close()

	ideas := []model.IdeaWithOwner{}
	for rows.Next() {
		var iw model.IdeaWithOwner
		if err := rows.Scan(
			&iw.ID, &iw.UserID, &iw.Username, &iw.Category,
			&iw.Description, &iw.Votes, &iw.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan idea: %w", err)
		}
		ideas = append(ideas, iw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ideas: %w", err)
	}

	return ideas, nil
}

// compile-time interface check
var _ IdeaRepository = (*PostgresIdeaRepo)(nil)
