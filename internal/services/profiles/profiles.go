package profiles

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"salin-system/internal/database/models"
)

type Service struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewService(db *gorm.DB, log *logrus.Logger) *Service {
	return &Service{db: db, log: log}
}

// Upsert writes the login-time profile snapshot keyed by user id.
func (s *Service) Upsert(ctx context.Context, profile models.UserProfile) error {
	if profile.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(&profile).Error
	if err != nil {
		return fmt.Errorf("upsert profile %s: %w", profile.UserID, err)
	}
	return nil
}

// Task is a handle on a background profile write. The login path does not
// block on it, but the outcome stays observable: callers (and tests) can
// await Err instead of losing the failure.
type Task struct {
	done chan error
}

func (t *Task) Done() <-chan error {
	return t.done
}

func (t *Task) Err() error {
	return <-t.done
}

// UpsertAsync runs Upsert off the request path and reports the result
// through the returned task. Failures are also logged here so a caller that
// never awaits still leaves a trace.
func (s *Service) UpsertAsync(ctx context.Context, profile models.UserProfile) *Task {
	task := &Task{done: make(chan error, 1)}
	go func() {
		err := s.Upsert(context.WithoutCancel(ctx), profile)
		if err != nil {
			s.log.WithError(err).WithField("user_id", profile.UserID).Error("profile upsert failed")
		}
		task.done <- err
		close(task.done)
	}()
	return task
}
