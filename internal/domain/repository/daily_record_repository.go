package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cf_buddy/internal/common"
	"cf_buddy/internal/domain/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

type DailyRecordRepository interface {
	// Upsert writes rec as the single record for (rec.UserID, rec.Date) in one
	// statement. ID, IsFullySolved and timestamps are filled in on return.
	Upsert(ctx context.Context, rec *model.DailyRecord) error
	GetByDate(ctx context.Context, userID, date string) (*model.DailyRecord, error)
	GetCalendar(ctx context.Context, userID string) ([]model.CalendarEntry, error)
	// MarkSolved flips solved flags for problems isSolved reports as solved.
	// Problems and level are never touched.
	MarkSolved(ctx context.Context, userID, date string, isSolved func(model.ProblemKey) bool) (*model.DailyRecord, error)
}

type pgDailyRecordRepository struct {
	db *sql.DB
}

func NewPgDailyRecordRepository(db *sql.DB) DailyRecordRepository {
	return &pgDailyRecordRepository{db: db}
}

const recordColumns = `id, user_id, date, handle, level, algorithm_version, problems, is_fully_solved, created_at, updated_at`

func (r *pgDailyRecordRepository) Upsert(ctx context.Context, rec *model.DailyRecord) error {
	day, err := parseDay(rec.Date)
	if err != nil {
		return err
	}
	if rec.Problems == nil {
		rec.Problems = []model.DailyProblem{}
	}
	problems, err := json.Marshal(rec.Problems)
	if err != nil {
		return fmt.Errorf("pgDailyRecordRepository.Upsert: encode problems: %w", err)
	}
	rec.IsFullySolved = model.AllSolved(rec.Problems)

	query := `INSERT INTO daily_records (id, user_id, date, handle, level, algorithm_version, problems, is_fully_solved, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
	          ON CONFLICT (user_id, date) DO UPDATE SET
	              handle = EXCLUDED.handle,
	              level = EXCLUDED.level,
	              algorithm_version = EXCLUDED.algorithm_version,
	              problems = EXCLUDED.problems,
	              is_fully_solved = EXCLUDED.is_fully_solved,
	              updated_at = now()
	          RETURNING id, created_at, updated_at`

	err = r.db.QueryRowContext(ctx, query,
		uuid.NewString(), rec.UserID, day, rec.Handle, rec.Level, rec.AlgorithmVersion, problems, rec.IsFullySolved,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("pgDailyRecordRepository.Upsert: %w", classifyWriteError(err))
	}
	return nil
}

func (r *pgDailyRecordRepository) GetByDate(ctx context.Context, userID, date string) (*model.DailyRecord, error) {
	day, err := parseDay(date)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + recordColumns + ` FROM daily_records WHERE user_id = $1 AND date = $2`
	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, userID, day))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgDailyRecordRepository.GetByDate: %w", err)
	}
	return rec, nil
}

func (r *pgDailyRecordRepository) GetCalendar(ctx context.Context, userID string) ([]model.CalendarEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date, is_fully_solved FROM daily_records WHERE user_id = $1 ORDER BY date`, userID)
	if err != nil {
		return nil, fmt.Errorf("pgDailyRecordRepository.GetCalendar: %w", err)
	}
	defer rows.Close()

	entries := []model.CalendarEntry{}
	for rows.Next() {
		var day time.Time
		var entry model.CalendarEntry
		if err := rows.Scan(&day, &entry.IsFullySolved); err != nil {
			return nil, fmt.Errorf("pgDailyRecordRepository.GetCalendar: scan: %w", err)
		}
		entry.Date = day.Format(model.DateLayout)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgDailyRecordRepository.GetCalendar: %w", err)
	}
	return entries, nil
}

func (r *pgDailyRecordRepository) MarkSolved(ctx context.Context, userID, date string, isSolved func(model.ProblemKey) bool) (*model.DailyRecord, error) {
	day, err := parseDay(date)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("pgDailyRecordRepository.MarkSolved: begin: %w", err)
	}
	defer tx.Rollback()

	query := `SELECT ` + recordColumns + ` FROM daily_records WHERE user_id = $1 AND date = $2 FOR UPDATE`
	rec, err := scanRecord(tx.QueryRowContext(ctx, query, userID, day))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgDailyRecordRepository.MarkSolved: %w", err)
	}

	changed := false
	for i := range rec.Problems {
		if !rec.Problems[i].Solved && isSolved(rec.Problems[i].Key()) {
			rec.Problems[i].Solved = true
			changed = true
		}
	}
	if !changed {
		return rec, nil
	}
	rec.IsFullySolved = model.AllSolved(rec.Problems)

	problems, err := json.Marshal(rec.Problems)
	if err != nil {
		return nil, fmt.Errorf("pgDailyRecordRepository.MarkSolved: encode problems: %w", err)
	}
	err = tx.QueryRowContext(ctx,
		`UPDATE daily_records SET problems = $1, is_fully_solved = $2, updated_at = now() WHERE id = $3 RETURNING updated_at`,
		problems, rec.IsFullySolved, rec.ID,
	).Scan(&rec.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("pgDailyRecordRepository.MarkSolved: update: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("pgDailyRecordRepository.MarkSolved: commit: %w", err)
	}
	return rec, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*model.DailyRecord, error) {
	var (
		rec      model.DailyRecord
		day      time.Time
		problems []byte
	)
	err := row.Scan(&rec.ID, &rec.UserID, &day, &rec.Handle, &rec.Level, &rec.AlgorithmVersion,
		&problems, &rec.IsFullySolved, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rec.Date = day.Format(model.DateLayout)
	if err := json.Unmarshal(problems, &rec.Problems); err != nil {
		return nil, fmt.Errorf("decode problems: %w", err)
	}
	return &rec, nil
}

func parseDay(date string) (time.Time, error) {
	day, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q must be YYYY-MM-DD: %w", date, common.ErrValidation)
	}
	return day, nil
}

// classifyWriteError separates index drift from ordinary storage errors. The
// upsert absorbs the expected (user_id, date) conflict, so a unique violation
// here means another unique index fired, and 42P10 means no unique index on
// (user_id, date) exists at all.
func classifyWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("unique index %q rejected the write: %w", pgErr.ConstraintName, common.ErrConstraintMismatch)
		case "42P10":
			return fmt.Errorf("no unique index on (user_id, date): %w", common.ErrConstraintMismatch)
		}
	}
	return err
}
