package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-marketplace/internal/models"
)

const userColumns = `id, username, password_hash, first_name, last_name, email,
	picture_path, biography, post_count, verified, admin, created_at, last_seen`

type UserReadRepository struct {
	db *sqlx.DB
}

func NewUserReadRepository(db *sqlx.DB) *UserReadRepository {
	return &UserReadRepository{db: db}
}

// GetByUsername returns the user with the given username, or nil when none exists.
func (r *UserReadRepository) GetByUsername(ctx context.Context, username string) (*models.UserDB, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.get(ctx, query, username)
}

// GetByID returns the user with the given id, or nil when none exists.
func (r *UserReadRepository) GetByID(ctx context.Context, userID uuid.UUID) (*models.UserDB, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.get(ctx, query, userID)
}

func (r *UserReadRepository) get(ctx context.Context, query string, arg any) (*models.UserDB, error) {
	var user models.UserDB
	err := r.db.GetContext(ctx, &user, query, arg)

	logQuery(query, []any{arg}, user.Username, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

type UserWriteRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewUserWriteRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *UserWriteRepository {
	return &UserWriteRepository{db: db, txGetter: txGetter}
}

// Save inserts a new user. A taken username yields ErrConflict.
func (r *UserWriteRepository) Save(ctx context.Context, user *models.UserDB) error {
	query := `
		INSERT INTO users (id, username, password_hash, first_name, last_name, email, verified, admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`
	args := []any{user.UserID, user.Username, user.PasswordHash, user.FirstName, user.LastName, user.Email, user.Verified, user.Admin}

	_, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query, args...)

	// password hash stays out of the logs
	logQuery(query, []any{user.UserID, user.Username, user.Email}, user.UserID, err)

	return translateError(err)
}

// Update applies the non-nil fields of upd. It reports whether a row was changed.
func (r *UserWriteRepository) Update(ctx context.Context, userID uuid.UUID, upd models.UserUpdate) (bool, error) {
	record := goqu.Record{}
	if upd.Username != nil {
		record["username"] = *upd.Username
	}
	if upd.PasswordHash != nil {
		record["password_hash"] = *upd.PasswordHash
	}
	if upd.FirstName != nil {
		record["first_name"] = *upd.FirstName
	}
	if upd.LastName != nil {
		record["last_name"] = *upd.LastName
	}
	if upd.Email != nil {
		record["email"] = *upd.Email
	}
	if upd.Biography != nil {
		record["biography"] = *upd.Biography
	}
	if len(record) == 0 {
		return false, nil
	}

	query, args, err := dialect.Update("users").Prepared(true).
		Set(record).
		Where(goqu.C("id").Eq(userID.String())).
		ToSQL()
	if err != nil {
		return false, err
	}

	res, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query, args...)
	affected := rowsAffected(res)

	logQuery(query, []any{userID}, affected, err)

	if err != nil {
		return false, translateError(err)
	}
	return affected > 0, nil
}

// Delete removes the user. Places and favorites go with it through the foreign keys.
func (r *UserWriteRepository) Delete(ctx context.Context, userID uuid.UUID) (bool, error) {
	query := `DELETE FROM users WHERE id = $1`

	res, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query, userID)
	affected := rowsAffected(res)

	logQuery(query, []any{userID}, affected, err)

	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// AdjustPostCount adds delta to the user's post count without going below zero.
func (r *UserWriteRepository) AdjustPostCount(ctx context.Context, userID uuid.UUID, delta int) error {
	query := `UPDATE users SET post_count = GREATEST(post_count + $2, 0) WHERE id = $1`

	res, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query, userID, delta)

	logQuery(query, []any{userID, delta}, rowsAffected(res), err)

	return err
}

// UpdateLastSeen records when the user identified by username was last connected.
func (r *UserWriteRepository) UpdateLastSeen(ctx context.Context, username string, at time.Time) error {
	query := `UPDATE users SET last_seen = $2 WHERE username = $1`

	res, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query, username, at)

	logQuery(query, []any{username, at}, rowsAffected(res), err)

	return err
}

// UpdatePicture sets the blob path of the user's profile picture.
func (r *UserWriteRepository) UpdatePicture(ctx context.Context, userID uuid.UUID, path string) error {
	query := `UPDATE users SET picture_path = $2 WHERE id = $1`

	res, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query, userID, path)

	logQuery(query, []any{userID, path}, rowsAffected(res), err)

	return err
}

func rowsAffected(res sql.Result) int64 {
	if res == nil {
		return 0
	}
	n, _ := res.RowsAffected()
	return n
}
