package recorder

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	apperrors "PropertyProspector/internal/errors"
	"PropertyProspector/internal/logger"
	"PropertyProspector/internal/metrics"
	"PropertyProspector/internal/model"
)

// SQLiteStore persists analyses to a SQLite database.
// The full result is stored as a JSON payload; status, favorite and notes live in
// their own columns because they change after the analysis is saved.
type SQLiteStore struct {
	db     *sqlx.DB
	mu     sync.Mutex
	logger *zap.Logger
	now    func() time.Time
}

type analysisRow struct {
	ID           string  `db:"id"`
	UserID       string  `db:"user_id"`
	Status       string  `db:"status"`
	Favorite     bool    `db:"favorite"`
	Notes        string  `db:"notes"`
	Category     string  `db:"category"`
	CurrentValue float64 `db:"current_value"`
	Payload      string  `db:"payload"`
	CreatedAt    int64   `db:"created_at"`
	UpdatedAt    int64   `db:"updated_at"`
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string, l *zap.Logger) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, logger: logger.OrNop(l), now: time.Now}
	if err := s.migrate(migrations); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	s.logger.Info("sqlite store opened", zap.String("path", dbPath))
	return s, nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS analyses (
			id            TEXT PRIMARY KEY,
			user_id       TEXT NOT NULL DEFAULT '',
			status        TEXT NOT NULL DEFAULT 'completed',
			favorite      INTEGER NOT NULL DEFAULT 0,
			notes         TEXT NOT NULL DEFAULT '',
			category      TEXT NOT NULL DEFAULT '',
			current_value REAL NOT NULL DEFAULT 0,
			payload       TEXT NOT NULL,
			created_at    INTEGER NOT NULL,
			updated_at    INTEGER NOT NULL
		)`,
	`CREATE INDEX IF NOT EXISTS idx_analyses_user ON analyses(user_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_analyses_status ON analyses(status, updated_at)`,
}

func (s *SQLiteStore) migrate(stmts []string) error {
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:min(len(stmt), 40)], err)
		}
	}
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, result model.PropertyAnalysisResult) (string, error) {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	if result.Status == "" {
		result.Status = model.StatusCompleted
	}
	if !result.Status.Valid() {
		return "", apperrors.NewValidationError("status", fmt.Sprintf("unknown status %q", result.Status))
	}
	now := s.now()
	if result.CreatedAt.IsZero() {
		result.CreatedAt = now
	}
	result.UpdatedAt = now

	payload, err := json.Marshal(result)
	if err != nil {
		return "", s.fail("save", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `INSERT INTO analyses
		(id, user_id, status, favorite, notes, category, current_value, payload, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			status = excluded.status,
			favorite = excluded.favorite,
			notes = excluded.notes,
			category = excluded.category,
			current_value = excluded.current_value,
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		result.ID, result.UserID, string(result.Status), result.Favorite, result.Notes,
		string(result.Category.Category), result.Valuation.CurrentValue, string(payload),
		result.CreatedAt.UnixMilli(), result.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return "", s.fail("save", err)
	}
	return result.ID, nil
}

func (s *SQLiteStore) Load(ctx context.Context, id string) (*model.PropertyAnalysisResult, error) {
	var row analysisRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM analyses WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(id)
	}
	if err != nil {
		return nil, s.fail("load", err)
	}

	var result model.PropertyAnalysisResult
	if err := json.Unmarshal([]byte(row.Payload), &result); err != nil {
		return nil, s.fail("load", err)
	}
	result.Status = model.AnalysisStatus(row.Status)
	result.Favorite = row.Favorite
	result.Notes = row.Notes
	result.CreatedAt = time.UnixMilli(row.CreatedAt).UTC()
	result.UpdatedAt = time.UnixMilli(row.UpdatedAt).UTC()
	return &result, nil
}

func (s *SQLiteStore) ListByUser(ctx context.Context, userID string) ([]model.AnalysisSummary, error) {
	var rows []analysisRow
	err := s.db.SelectContext(ctx, &rows, `SELECT id, user_id, status, favorite, notes, category,
		current_value, '' AS payload, created_at, updated_at
		FROM analyses WHERE user_id = ? ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, s.fail("list", err)
	}

	out := make([]model.AnalysisSummary, len(rows))
	for i, r := range rows {
		out[i] = model.AnalysisSummary{
			ID:           r.ID,
			UserID:       r.UserID,
			Status:       model.AnalysisStatus(r.Status),
			Favorite:     r.Favorite,
			Notes:        r.Notes,
			CurrentValue: r.CurrentValue,
			Category:     model.Category(r.Category),
			CreatedAt:    time.UnixMilli(r.CreatedAt).UTC(),
			UpdatedAt:    time.UnixMilli(r.UpdatedAt).UTC(),
		}
	}
	return out, nil
}

func (s *SQLiteStore) SetFavorite(ctx context.Context, id string, favorite bool) error {
	return s.update(ctx, "set_favorite", id, `UPDATE analyses SET favorite = ?, updated_at = ? WHERE id = ?`, favorite)
}

func (s *SQLiteStore) SetNotes(ctx context.Context, id string, notes string) error {
	return s.update(ctx, "set_notes", id, `UPDATE analyses SET notes = ?, updated_at = ? WHERE id = ?`, notes)
}

func (s *SQLiteStore) SetStatus(ctx context.Context, id string, status model.AnalysisStatus) error {
	if !status.Valid() {
		return apperrors.NewValidationError("status", fmt.Sprintf("unknown status %q", status))
	}
	return s.update(ctx, "set_status", id, `UPDATE analyses SET status = ?, updated_at = ? WHERE id = ?`, string(status))
}

func (s *SQLiteStore) update(ctx context.Context, op, id, query string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, query, value, s.now().UnixMilli(), id)
	if err != nil {
		return s.fail(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return s.fail(op, err)
	}
	if n == 0 {
		return apperrors.NewNotFoundError(id)
	}
	return nil
}

func (s *SQLiteStore) ArchiveStale(ctx context.Context, olderThan time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `UPDATE analyses SET status = ?, updated_at = ?
		WHERE favorite = 0 AND status != ? AND updated_at < ?`,
		string(model.StatusArchived), s.now().UnixMilli(), string(model.StatusArchived), olderThan.UnixMilli())
	if err != nil {
		return 0, s.fail("archive", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, s.fail("archive", err)
	}
	return int(n), nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) fail(op string, err error) error {
	metrics.StoreErrors.WithLabelValues(op).Inc()
	s.logger.Warn("sqlite store failure", zap.String("op", op), zap.Error(err))
	return apperrors.NewPersistenceError(op, err)
}
