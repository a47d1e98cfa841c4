package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"regenx/internal/models"
)

// UserSQLite stores users in SQLite: one row in users plus one row per
// history entry in day_records.
type UserSQLite struct {
	db *sql.DB
}

func NewUserSQLite(db *sql.DB) *UserSQLite {
	return &UserSQLite{db: db}
}

// Ensure implementation of UserStore interface at compile time.
var _ UserStore = (*UserSQLite)(nil)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const (
	insertUserSQL = `INSERT INTO users (username, email, password_hash, lifetime_steps, lifetime_energy, created_at) VALUES (?, ?, ?, 0, 0, ?)`

	selectUserByIDSQL = `SELECT id, username, email, password_hash, lifetime_steps, lifetime_energy, created_at FROM users WHERE id = ?`

	selectUserByEmailSQL = `SELECT id, username, email, password_hash, lifetime_steps, lifetime_energy, created_at FROM users WHERE email = ?`

	selectHistorySQL = `SELECT recorded_at, steps, energy FROM day_records WHERE user_id = ? ORDER BY position ASC`

	updateUserSQL = `UPDATE users SET username = ?, email = ?, password_hash = ?, lifetime_steps = ?, lifetime_energy = ? WHERE id = ?`

	deleteHistorySQL = `DELETE FROM day_records WHERE user_id = ?`

	insertDayRecordSQL = `INSERT INTO day_records (user_id, position, recorded_at, steps, energy) VALUES (?, ?, ?, ?, ?)`
)

// Create inserts a new user with zeroed counters and an empty history.
func (r *UserSQLite) Create(ctx context.Context, username, email, passwordHash string) (*models.User, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, insertUserSQL, username, email, passwordHash, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert user %q: %w", email, err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id for user %q: %w", email, err)
	}
	return &models.User{
		ID:           lastID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		History:      []models.DayRecord{},
		CreatedAt:    now,
	}, nil
}

// FindByEmail fetches a user with its history. Returns (nil, nil) if not found.
func (r *UserSQLite) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return loadUser(ctx, r.db, selectUserByEmailSQL, email)
}

// FindByID fetches a user with its history. Returns (nil, nil) if not found.
func (r *UserSQLite) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return loadUser(ctx, r.db, selectUserByIDSQL, id)
}

// Save overwrites the whole document: the user row and its full history.
func (r *UserSQLite) Save(ctx context.Context, u *models.User) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		return writeUser(ctx, tx, u)
	})
}

// Update runs load, fn and save inside a single transaction.
func (r *UserSQLite) Update(ctx context.Context, id int64, fn func(u *models.User) error) (*models.User, error) {
	var out *models.User
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		u, err := loadUser(ctx, tx, selectUserByIDSQL, id)
		if err != nil {
			return err
		}
		if u == nil {
			return ErrNotFound
		}
		if err := fn(u); err != nil {
			return err
		}
		if err := writeUser(ctx, tx, u); err != nil {
			return err
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *UserSQLite) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin user transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit user transaction: %w", err)
	}
	return nil
}

func loadUser(ctx context.Context, q querier, query string, arg any) (*models.User, error) {
	var u models.User
	err := q.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.LifetimeSteps,
		&u.LifetimeEnergy,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select user %v: %w", arg, err)
	}
	u.CreatedAt = u.CreatedAt.UTC()

	history, err := loadHistory(ctx, q, u.ID)
	if err != nil {
		return nil, err
	}
	u.History = history
	return &u, nil
}

func loadHistory(ctx context.Context, q querier, userID int64) ([]models.DayRecord, error) {
	rows, err := q.QueryContext(ctx, selectHistorySQL, userID)
	if err != nil {
		return nil, fmt.Errorf("select history for user %d: %w", userID, err)
	}
	defer rows.Close()

	out := make([]models.DayRecord, 0, 32)
	for rows.Next() {
		var rec models.DayRecord
		if err := rows.Scan(&rec.Date, &rec.Steps, &rec.Energy); err != nil {
			return nil, fmt.Errorf("scan history for user %d: %w", userID, err)
		}
		rec.Date = rec.Date.UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history for user %d: %w", userID, err)
	}
	return out, nil
}

func writeUser(ctx context.Context, q querier, u *models.User) error {
	res, err := q.ExecContext(ctx, updateUserSQL,
		u.Username,
		u.Email,
		u.PasswordHash,
		u.LifetimeSteps,
		u.LifetimeEnergy,
		u.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("update user %d: %w", u.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for user %d: %w", u.ID, err)
	}
	if n == 0 {
		return ErrNotFound
	}

	if _, err := q.ExecContext(ctx, deleteHistorySQL, u.ID); err != nil {
		return fmt.Errorf("clear history for user %d: %w", u.ID, err)
	}
	for i, rec := range u.History {
		if _, err := q.ExecContext(ctx, insertDayRecordSQL, u.ID, i, rec.Date.UTC(), rec.Steps, rec.Energy); err != nil {
			return fmt.Errorf("insert history %d for user %d: %w", i, u.ID, err)
		}
	}
	return nil
}
