package repo

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ovaphlow/pitchfork/service-user-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-user-go/pkg/database"
)

// uniqueViolation is the postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// IsUniqueViolation reports whether err is a postgres unique constraint failure.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// EmailRepo provides data access for the email_addresses table.
type EmailRepo struct {
	db database.Queryer
}

func NewEmailRepo(db database.Queryer) *EmailRepo { return &EmailRepo{db: db} }

const emailColumns = `id, user_id, email, created_at, updated_at`

// ListByUser returns the addresses owned by userID in insertion order.
func (r *EmailRepo) ListByUser(ctx context.Context, userID int64) ([]entity.EmailAddress, error) {
	const q = `SELECT ` + emailColumns + ` FROM email_addresses WHERE user_id = $1 ORDER BY id`
	var rows []entity.EmailAddress
	if err := sqlx.SelectContext(ctx, r.db, &rows, q, userID); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByUsers returns the addresses owned by any of userIDs in insertion order.
func (r *EmailRepo) ListByUsers(ctx context.Context, userIDs []int64) ([]entity.EmailAddress, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	const q = `SELECT ` + emailColumns + ` FROM email_addresses WHERE user_id = ANY($1) ORDER BY id`
	var rows []entity.EmailAddress
	if err := sqlx.SelectContext(ctx, r.db, &rows, q, pq.Array(userIDs)); err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByEmails returns every row, of any user, whose email is one of emails.
func (r *EmailRepo) FindByEmails(ctx context.Context, emails []string) ([]entity.EmailAddress, error) {
	if len(emails) == 0 {
		return nil, nil
	}
	const q = `SELECT ` + emailColumns + ` FROM email_addresses WHERE email = ANY($1)`
	var rows []entity.EmailAddress
	if err := sqlx.SelectContext(ctx, r.db, &rows, q, pq.Array(emails)); err != nil {
		return nil, err
	}
	return rows, nil
}

// Insert adds an address for userID.
func (r *EmailRepo) Insert(ctx context.Context, userID int64, email string) (*entity.EmailAddress, error) {
	const q = `INSERT INTO email_addresses (user_id, email) VALUES ($1, $2) RETURNING ` + emailColumns
	var e entity.EmailAddress
	if err := sqlx.GetContext(ctx, r.db, &e, q, userID, email); err != nil {
		return nil, err
	}
	return &e, nil
}

// UpdateEmail changes the value of address id owned by userID.
// Returns the number of rows touched; 0 means the id is not owned by userID.
func (r *EmailRepo) UpdateEmail(ctx context.Context, id, userID int64, email string) (int64, error) {
	const q = `UPDATE email_addresses SET email = $3, updated_at = NOW() WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, q, id, userID, email)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteExcept removes every address of userID whose id is not in keep.
func (r *EmailRepo) DeleteExcept(ctx context.Context, userID int64, keep []int64) (int64, error) {
	if keep == nil {
		keep = []int64{}
	}
	const q = `DELETE FROM email_addresses WHERE user_id = $1 AND NOT (id = ANY($2))`
	res, err := r.db.ExecContext(ctx, q, userID, pq.Array(keep))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
