package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Skryldev/userdb/db"
	"github.com/Skryldev/userdb/models"
)

// ─────────────────────────────────────────────────────────────────────────────
// UserRepository interface — for mocking in tests
// ─────────────────────────────────────────────────────────────────────────────

// UserRepository defines the user persistence operations. Lookups return an
// invalid sql.Null (Valid == false) when no row matches; that is not an error.
type UserRepository interface {
	GetAll(ctx context.Context) ([]*models.User, error)
	GetFullName(ctx context.Context, id int64) (sql.Null[string], error)
	GetEmail(ctx context.Context, id int64) (sql.Null[string], error)
	GetID(ctx context.Context, id int64) (sql.Null[int64], error)
	GetFieldByID(ctx context.Context, id int64, field models.Field) (sql.Null[any], error)
	IsAdult(ctx context.Context, id int64) (bool, error)
	Add(ctx context.Context, params models.CreateUserParams) (int64, error)
	Edit(ctx context.Context, id int64, params models.UpdateUserParams) error
	ChangeStatus(ctx context.Context, id int64, status int) error
}

// AdultAge is the age in whole years at which IsAdult reports true.
const AdultAge = 18

// ─────────────────────────────────────────────────────────────────────────────
// userRepo — concrete implementation
// ─────────────────────────────────────────────────────────────────────────────

// userRepo is the production implementation backed by a db.Querier. It holds
// no mutable state; concurrency safety is that of the querier (*db.DB is safe).
type userRepo struct {
	q     db.Querier
	clock clockwork.Clock
}

// Option configures a repository.
type Option func(*userRepo)

// WithClock sets the clock IsAdult measures "today" against.
func WithClock(c clockwork.Clock) Option {
	return func(r *userRepo) { r.clock = c }
}

// NewUserRepo returns a UserRepository backed by q.
func NewUserRepo(q db.Querier, opts ...Option) UserRepository {
	r := &userRepo{q: q, clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ─────────────────────────────────────────────────────────────────────────────
// SQL constants — every caller-supplied value is bound, never interpolated
// ─────────────────────────────────────────────────────────────────────────────

const (
	userColumns = `id, first_name, last_name, email, password, birthday, status`

	sqlGetAllUsers = `
		SELECT ` + userColumns + `
		FROM   users`

	sqlGetFullName = `
		SELECT CONCAT(first_name, ' ', last_name) AS full_name
		FROM   users
		WHERE  id = ?`

	sqlGetEmail = `
		SELECT email
		FROM   users
		WHERE  id = ?`

	sqlGetID = `
		SELECT id
		FROM   users
		WHERE  id = ?`

	sqlInsertUser = `
		INSERT INTO users (first_name, last_name, email, password, birthday, status)
		VALUES (?, ?, ?, ?, ?, ?)`

	sqlChangeStatus = `
		UPDATE users
		SET    status = ?
		WHERE  id = ?`
)

const (
	opGetAll       = "get_all_users"
	opGetFullName  = "get_full_name"
	opGetEmail     = "get_email"
	opGetID        = "get_id"
	opGetField     = "get_field_by_id"
	opIsAdult      = "is_adult"
	opAddUser      = "add_user"
	opEditUser     = "edit_user"
	opChangeStatus = "change_status"
)

// ─────────────────────────────────────────────────────────────────────────────
// GetAll
// ─────────────────────────────────────────────────────────────────────────────

// GetAll returns every user in storage order (not guaranteed to be by id).
func (r *userRepo) GetAll(ctx context.Context) ([]*models.User, error) {
	ctx = db.WithOperation(ctx, opGetAll)
	rows, err := r.q.Query(ctx, sqlGetAllUsers)
	if err != nil {
		return nil, queryErr(opGetAll, err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		u := &models.User{}
		var birthday sql.NullTime
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Password, &birthday, &u.Status); err != nil {
			return nil, queryErr(opGetAll, fmt.Errorf("scan: %w", err))
		}
		if birthday.Valid {
			u.Birthday = models.DateOf(birthday.Time)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr(opGetAll, err)
	}
	return users, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Single-value lookups
// ─────────────────────────────────────────────────────────────────────────────

// GetFullName returns "first_name last_name" for id.
func (r *userRepo) GetFullName(ctx context.Context, id int64) (sql.Null[string], error) {
	return lookup[string](ctx, r.q, opGetFullName, sqlGetFullName, id)
}

// GetEmail returns the email of id.
func (r *userRepo) GetEmail(ctx context.Context, id int64) (sql.Null[string], error) {
	return lookup[string](ctx, r.q, opGetEmail, sqlGetEmail, id)
}

// GetID returns id itself when a row with that id exists.
func (r *userRepo) GetID(ctx context.Context, id int64) (sql.Null[int64], error) {
	return lookup[int64](ctx, r.q, opGetID, sqlGetID, id)
}

// GetFieldByID returns one column of id. Text columns come back as string,
// integer columns as int64, and the birthday as a time.Time at midnight UTC.
func (r *userRepo) GetFieldByID(ctx context.Context, id int64, field models.Field) (sql.Null[any], error) {
	return r.getField(ctx, opGetField, id, field)
}

func (r *userRepo) getField(ctx context.Context, op string, id int64, field models.Field) (sql.Null[any], error) {
	if !field.Valid() {
		return sql.Null[any]{}, &models.ValidationError{Field: string(field), Reason: "unknown column"}
	}
	// field is one of the closed set of column names, never caller text.
	query := `SELECT ` + field.Column() + ` FROM users WHERE id = ?`

	v, err := lookup[any](ctx, r.q, op, query, id)
	if err != nil || !v.Valid {
		return v, err
	}
	return normalize(field, v.V), nil
}

// lookup scans a single-column, single-row query. No row, or a NULL value,
// yields an invalid sql.Null.
func lookup[T any](ctx context.Context, q db.Querier, op, query string, args ...any) (sql.Null[T], error) {
	var v sql.Null[T]
	err := q.QueryRow(db.WithOperation(ctx, op), query, args...).Scan(&v)
	if db.IsNotFound(err) {
		return sql.Null[T]{}, nil
	}
	if err != nil {
		return sql.Null[T]{}, queryErr(op, err)
	}
	return v, nil
}

func normalize(field models.Field, v any) sql.Null[any] {
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	switch field {
	case models.FieldBirthday:
		t, ok := asDate(v)
		if !ok {
			return sql.Null[any]{V: v, Valid: true}
		}
		return sql.Null[any]{V: t, Valid: true}
	case models.FieldID, models.FieldStatus:
		switch x := v.(type) {
		case int32:
			v = int64(x)
		case int:
			v = int64(x)
		case uint64:
			v = int64(x)
		}
	}
	return sql.Null[any]{V: v, Valid: true}
}

// asDate accepts the forms drivers return for a DATE column: time.Time when
// time parsing is on, the text form otherwise.
func asDate(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return time.Time{}, false
		}
		return models.DateOf(x), true
	case string:
		s := strings.TrimSpace(x)
		if len(s) >= len(models.DateLayout) {
			s = s[:len(models.DateLayout)]
		}
		t, err := models.ParseDate(s)
		if err != nil || t.IsZero() {
			return time.Time{}, false
		}
		return t, true
	}
	return time.Time{}, false
}

// ─────────────────────────────────────────────────────────────────────────────
// IsAdult
// ─────────────────────────────────────────────────────────────────────────────

// IsAdult reports whether id's birthday is on or before the same calendar day
// AdultAge years ago, in UTC. A missing row or an unparsable birthday is
// reported as false.
func (r *userRepo) IsAdult(ctx context.Context, id int64) (bool, error) {
	v, err := r.getField(ctx, opIsAdult, id, models.FieldBirthday)
	if err != nil {
		return false, err
	}
	if !v.Valid {
		return false, nil
	}
	birthday, ok := asDate(v.V)
	if !ok {
		return false, nil
	}
	cutoff := models.DateOf(r.clock.Now().UTC()).AddDate(-AdultAge, 0, 0)
	return !birthday.After(cutoff), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Add
// ─────────────────────────────────────────────────────────────────────────────

// Add inserts a user and returns the database-assigned id.
func (r *userRepo) Add(ctx context.Context, params models.CreateUserParams) (int64, error) {
	if err := params.Validate(); err != nil {
		return 0, err
	}
	res, err := r.q.Exec(db.WithOperation(ctx, opAddUser), sqlInsertUser,
		params.FirstName,
		params.LastName,
		params.Email,
		params.Password,
		params.Birthday.Format(models.DateLayout),
		params.Status,
	)
	if err != nil {
		return 0, queryErr(opAddUser, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, queryErr(opAddUser, err)
	}
	return id, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Edit — partial update with explicit SQL construction
// ─────────────────────────────────────────────────────────────────────────────

// Edit applies a partial update. Only fields with non-nil pointers in params
// are written; the column list comes from the closed Field set. Editing an id
// that does not exist is not an error.
func (r *userRepo) Edit(ctx context.Context, id int64, params models.UpdateUserParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	changes := params.Changes()
	setClauses := make([]string, 0, len(changes))
	args := make([]any, 0, len(changes)+1)
	for _, c := range changes {
		setClauses = append(setClauses, c.Field.Column()+" = ?")
		args = append(args, storageValue(c.Value))
	}
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE users
		SET    %s
		WHERE  id = ?`, strings.Join(setClauses, ", "))

	if _, err := r.q.Exec(db.WithOperation(ctx, opEditUser), query, args...); err != nil {
		return queryErr(opEditUser, err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// ChangeStatus
// ─────────────────────────────────────────────────────────────────────────────

// ChangeStatus sets the status code of id.
func (r *userRepo) ChangeStatus(ctx context.Context, id int64, status int) error {
	if _, err := r.q.Exec(db.WithOperation(ctx, opChangeStatus), sqlChangeStatus, status, id); err != nil {
		return queryErr(opChangeStatus, err)
	}
	return nil
}

func storageValue(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.Format(models.DateLayout)
	}
	return v
}

var _ UserRepository = (*userRepo)(nil)
