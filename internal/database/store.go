package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	errs "github.com/popov-vn/ai-agent/internal/errors"
)

// MaxHistoryLimit caps RecentRecommendations.
const MaxHistoryLimit = 50

// Store is the data access layer of the recommendation history.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// SaveRecommendation inserts rec, assigning ID and CreatedAt when empty.
	SaveRecommendation(ctx context.Context, rec *Recommendation) error

	// RecentRecommendations returns the newest limit entries of userID, newest first.
	RecentRecommendations(ctx context.Context, userID int64, limit int) ([]Recommendation, error)

	// DeleteRecommendationsBefore removes entries created before cutoff and
	// returns how many were deleted.
	DeleteRecommendationsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// RunSQLMaintenance vacuums and optimizes the database file.
	RunSQLMaintenance(ctx context.Context) error
}

type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a Store backed by db.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) SaveRecommendation(ctx context.Context, rec *Recommendation) error {
	if rec == nil {
		return errs.NewValidationError("cannot save nil recommendation", nil)
	}
	if rec.UserID == 0 || rec.ChatID == 0 {
		return errs.NewValidationError("recommendation must have non-zero chat_id and user_id", nil)
	}
	if strings.TrimSpace(rec.PersonInfo) == "" {
		return errs.NewValidationError("recommendation must have person info", nil)
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	if len(rec.TopGifts) == 0 {
		if err := rec.SetGifts(nil); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errs.NewDatabaseError("failed to begin transaction", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
			}
		}
	}()

	const query = `
        INSERT INTO recommendations (id, chat_id, user_id, person_info, stage, top_gifts, duration_ms, created_at)
        VALUES (:id, :chat_id, :user_id, :person_info, :stage, :top_gifts, :duration_ms, :created_at);
    `
	if _, err := tx.NamedExecContext(ctx, query, rec); err != nil {
		s.logger.ErrorContext(ctx, "Error saving recommendation", "user_id", rec.UserID, "error", err)
		return errs.NewDatabaseError(fmt.Sprintf("failed to save recommendation for user %d", rec.UserID), err)
	}

	if err := tx.Commit(); err != nil {
		return errs.NewDatabaseError("failed to commit recommendation", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "Recommendation saved", "id", rec.ID, "user_id", rec.UserID, "stage", rec.Stage)
	return nil
}

func (s *sqlxStore) RecentRecommendations(ctx context.Context, userID int64, limit int) ([]Recommendation, error) {
	if userID == 0 {
		return nil, errs.NewValidationError("user_id cannot be zero", nil)
	}
	if limit <= 0 || limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	const query = `
        SELECT id, chat_id, user_id, person_info, stage, top_gifts, duration_ms, created_at
        FROM recommendations
        WHERE user_id = ?
        ORDER BY created_at DESC, rowid DESC
        LIMIT ?;
    `

	var recs []Recommendation
	if err := s.db.SelectContext(ctx, &recs, query, userID, limit); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, err
		}
		s.logger.ErrorContext(ctx, "Error reading history", "user_id", userID, "error", err)
		return nil, errs.NewDatabaseError(fmt.Sprintf("failed to read history of user %d", userID), err)
	}

	return recs, nil
}

func (s *sqlxStore) DeleteRecommendationsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recommendations WHERE created_at < ?;`, cutoff.UTC())
	if err != nil {
		return 0, errs.NewDatabaseError("failed to delete old recommendations", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		s.logger.WarnContext(ctx, "Could not read deleted row count", "error", err)
		return 0, nil
	}

	s.logger.InfoContext(ctx, "Old recommendations deleted", "cutoff", cutoff, "deleted", n)
	return n, nil
}

// RunSQLMaintenance runs VACUUM (outside any transaction) and PRAGMA optimize.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Starting database maintenance")

	for _, stmt := range []string{"VACUUM;", "PRAGMA optimize;"} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return fmt.Errorf("database maintenance (%s) interrupted: %w", stmt, err)
			}
			s.logger.ErrorContext(ctx, "Database maintenance failed", "statement", stmt, "error", err)
			return errs.NewDatabaseError(fmt.Sprintf("failed to execute %s", stmt), err)
		}
	}

	s.logger.InfoContext(ctx, "Database maintenance completed")
	return nil
}
