package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-user-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-user-go/pkg/database"
)

// UserRepo provides data access for the users table using sqlx.
// It is bound to either the pool or a transaction.
type UserRepo struct {
	db database.Queryer
}

func NewUserRepo(db database.Queryer) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, first_name, last_name, phone_number, created_at, updated_at`

// List returns every user ordered by id.
func (r *UserRepo) List(ctx context.Context) ([]entity.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users ORDER BY id`
	var rows []entity.User
	if err := sqlx.SelectContext(ctx, r.db, &rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetByID fetches a user row or sql.ErrNoRows.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	var u entity.User
	if err := sqlx.GetContext(ctx, r.db, &u, q, id); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByIDForUpdate fetches a user row and locks it until the transaction ends.
func (r *UserRepo) GetByIDForUpdate(ctx context.Context, id int64) (*entity.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`
	var u entity.User
	if err := sqlx.GetContext(ctx, r.db, &u, q, id); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a user row and returns it with store-assigned id and timestamps.
func (r *UserRepo) Create(ctx context.Context, f entity.UserFields) (*entity.User, error) {
	const q = `INSERT INTO users (first_name, last_name, phone_number)
		VALUES ($1, $2, $3) RETURNING ` + userColumns
	var u entity.User
	if err := sqlx.GetContext(ctx, r.db, &u, q, f.FirstName, f.LastName, f.PhoneNumber); err != nil {
		return nil, err
	}
	return &u, nil
}

// Update overwrites the scalar columns of a user. Returns sql.ErrNoRows if the row is gone.
func (r *UserRepo) Update(ctx context.Context, id int64, f entity.UserFields) (*entity.User, error) {
	const q = `UPDATE users SET first_name = $2, last_name = $3, phone_number = $4, updated_at = NOW()
		WHERE id = $1 RETURNING ` + userColumns
	var u entity.User
	if err := sqlx.GetContext(ctx, r.db, &u, q, id, f.FirstName, f.LastName, f.PhoneNumber); err != nil {
		return nil, err
	}
	return &u, nil
}

// Delete removes a user; email_addresses rows go with it via ON DELETE CASCADE.
// Returns the number of deleted users.
func (r *UserRepo) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
