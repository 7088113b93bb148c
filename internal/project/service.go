// Package project はプロジェクトの作成と一覧を提供する。
package project

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/inspiration/internal/activity"
	"github.com/hitoshi/inspiration/internal/model"
	"github.com/hitoshi/inspiration/internal/repository"
	"github.com/hitoshi/inspiration/internal/validator"
)

// Service はプロジェクトのサービス層。
type Service struct {
	projects repository.ProjectRepository
	recorder activity.Recorder
	now      func() time.Time
}

// NewService はServiceを生成する。recorderはnilでもよい。
func NewService(projects repository.ProjectRepository, recorder activity.Recorder) *Service {
	return &Service{projects: projects, recorder: recorder, now: time.Now}
}

// Create はプロジェクトを作成し、アクティビティに記録する。
func (s *Service) Create(ctx context.Context, actor *model.Actor, name string) (*model.Project, error) {
	if !actor.IsAuthenticated() {
		return nil, model.NewUnauthorizedError()
	}

	name = strings.TrimSpace(name)
	if errs := validator.ValidateProjectName(name); errs.HasErrors() {
		return nil, errs.ToAPIError("Project name required")
	}

	project := &model.Project{
		ID:        uuid.New().String(),
		UserID:    actor.UserID,
		Name:      name,
		CreatedAt: s.now(),
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	slog.Info("project created",
		slog.String("project_id", project.ID),
		slog.String("user_id", actor.UserID),
	)
	activity.RecordBestEffort(ctx, s.recorder, actor.UserID, "created project "+name)
	return project, nil
}

// List は全プロジェクトを作成順に返す。
func (s *Service) List(ctx context.Context) ([]model.Project, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}
