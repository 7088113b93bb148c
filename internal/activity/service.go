// Package activity はアクティビティフィードの記録と配信を提供する。
package activity

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/feeds"

	"github.com/hitoshi/inspiration/internal/model"
	"github.com/hitoshi/inspiration/internal/security"
)

// Store はアクティビティの永続化インターフェース。
type Store interface {
	Create(ctx context.Context, activity *model.Activity) error
	ListWithUser(ctx context.Context) ([]model.Activity, error)
}

// Recorder はアクティビティ記録のインターフェース。
// アイデア・プロジェクトのサービスから利用する。
type Recorder interface {
	Record(ctx context.Context, userID, description string) error
}

// Service はアクティビティフィードのサービス層。
type Service struct {
	store     Store
	sanitizer security.HTMLSanitizer
	now       func() time.Time
}

// NewService はServiceを生成する。
// sanitizerはRSSアイテムのHTML断片に適用する。
func NewService(store Store, sanitizer security.HTMLSanitizer) *Service {
	return &Service{store: store, sanitizer: sanitizer, now: time.Now}
}

// Record はユーザーのアクティビティを1件記録する。
func (s *Service) Record(ctx context.Context, userID, description string) error {
	if userID == "" || strings.TrimSpace(description) == "" {
		return model.NewInvalidInputError("Activity requires a user and a description")
	}

	activity := &model.Activity{
		ID:          uuid.New().String(),
		UserID:      userID,
		Description: description,
		CreatedAt:   s.now(),
	}
	if err := s.store.Create(ctx, activity); err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

// Entries は全アクティビティを作成順に返す。
func (s *Service) Entries(ctx context.Context) ([]model.Activity, error) {
	activities, err := s.store.ListWithUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, nil
}

// List は全アクティビティを"<username> <description> at <timestamp>"形式の文字列で返す。
func (s *Service) List(ctx context.Context) ([]string, error) {
	activities, err := s.Entries(ctx)
	if err != nil {
		return nil, err
	}

	lines := make([]string, 0, len(activities))
	for _, a := range activities {
		lines = append(lines, Format(a))
	}
	return lines, nil
}

// Format はアクティビティを表示用の1行に整形する。
func Format(a model.Activity) string {
	return fmt.Sprintf("%s %s at %s", a.Username, a.Description, a.CreatedAt.UTC().Format(time.RFC3339))
}

// RecordBestEffort はアクティビティを記録し、失敗はログに残すのみとする。
// 主操作はコミット済みのため、記録の失敗で呼び出し元の結果を変えない。
func RecordBestEffort(ctx context.Context, r Recorder, userID, description string) {
	if r == nil {
		return
	}
	if err := r.Record(ctx, userID, description); err != nil {
		slog.Warn("failed to record activity",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}

// RSS はアクティビティフィードをRSS 2.0として返す。新しいものが先に並ぶ。
// baseURLはチャンネルと各アイテムのリンクに使用する。
// titleはプレーンテキスト、descriptionはエスケープ済みのHTML断片として出力する。
func (s *Service) RSS(ctx context.Context, baseURL string) ([]byte, error) {
	activities, err := s.Entries(ctx)
	if err != nil {
		return nil, err
	}

	link := strings.TrimRight(baseURL, "/") + "/api/activities"
	feed := &feeds.Feed{
		Title:       "Inspiration activity",
		Link:        &feeds.Link{Href: link},
		Description: "Recent activity from Inspiration users",
		Items:       make([]*feeds.Item, 0, len(activities)),
	}

	for i := len(activities) - 1; i >= 0; i-- {
		a := activities[i]
		feed.Items = append(feed.Items, &feeds.Item{
			Title:       a.Username + " " + a.Description,
			Link:        &feeds.Link{Href: link + "#" + a.ID},
			Id:          "urn:uuid:" + a.ID,
			Description: s.itemHTML(a),
			Created:     a.CreatedAt.UTC(),
		})
	}
	if len(activities) > 0 {
		feed.Updated = activities[len(activities)-1].CreatedAt.UTC()
	}

	out, err := feed.ToRss()
	if err != nil {
		return nil, fmt.Errorf("failed to encode rss: %w", err)
	}
	return []byte(out), nil
}

func (s *Service) itemHTML(a model.Activity) string {
	fragment := fmt.Sprintf("<p><strong>%s</strong> %s</p>", html.EscapeString(a.Username), html.EscapeString(a.Description))
	return s.sanitizer.SanitizeHTML(fragment)
}
