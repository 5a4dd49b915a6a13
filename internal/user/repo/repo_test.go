package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-user-go/internal/user/entity"
)

var ts = time.Date(2025, 6, 20, 8, 52, 35, 0, time.UTC)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return sqlx.NewDb(db, "postgres"), mock
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "first_name", "last_name", "phone_number", "created_at", "updated_at"})
}

func emailRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "email", "created_at", "updated_at"})
}

func TestUserRepo_List(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`(?s)^SELECT id, first_name, last_name, phone_number, created_at, updated_at FROM users ORDER BY id$`).
		WillReturnRows(userRows().
			AddRow(1, "Ada", "Lovelace", "+441234", ts, ts).
			AddRow(2, "Alan", "Turing", nil, ts, ts))

	got, err := NewUserRepo(db).List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].PhoneNumber)
	assert.Equal(t, "+441234", *got[0].PhoneNumber)
	assert.Nil(t, got[1].PhoneNumber)
	assert.Equal(t, "Alan Turing", got[1].FullName())
}

func TestUserRepo_GetByID_NotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`FROM users WHERE id = \$1$`).WithArgs(int64(9)).WillReturnRows(userRows())

	_, err := NewUserRepo(db).GetByID(context.Background(), 9)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUserRepo_GetByIDForUpdate(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`FROM users WHERE id = \$1 FOR UPDATE$`).WithArgs(int64(3)).
		WillReturnRows(userRows().AddRow(3, "Grace", "Hopper", nil, ts, ts))

	u, err := NewUserRepo(db).GetByIDForUpdate(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), u.ID)
}

func TestUserRepo_Create(t *testing.T) {
	db, mock := newMock(t)
	phone := "+48123456789"
	mock.ExpectQuery(`(?s)^INSERT INTO users \(first_name, last_name, phone_number\)\s+VALUES \(\$1, \$2, \$3\) RETURNING id`).
		WithArgs("Jan", "Kowalski", &phone).
		WillReturnRows(userRows().AddRow(7, "Jan", "Kowalski", phone, ts, ts))

	u, err := NewUserRepo(db).Create(context.Background(), entity.UserFields{FirstName: "Jan", LastName: "Kowalski", PhoneNumber: &phone})
	require.NoError(t, err)
	assert.Equal(t, int64(7), u.ID)
	assert.Equal(t, ts, u.CreatedAt)
}

func TestUserRepo_Update(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`(?s)^UPDATE users SET first_name = \$2, last_name = \$3, phone_number = \$4, updated_at = NOW\(\)\s+WHERE id = \$1 RETURNING`).
		WithArgs(int64(7), "Jan", "Nowak", nil).
		WillReturnRows(userRows().AddRow(7, "Jan", "Nowak", nil, ts, ts))

	u, err := NewUserRepo(db).Update(context.Background(), 7, entity.UserFields{FirstName: "Jan", LastName: "Nowak"})
	require.NoError(t, err)
	assert.Equal(t, "Nowak", u.LastName)
}

func TestUserRepo_Delete(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`^DELETE FROM users WHERE id = \$1$`).WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := NewUserRepo(db).Delete(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestEmailRepo_ListByUsers(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`FROM email_addresses WHERE user_id = ANY\(\$1\) ORDER BY id$`).
		WithArgs(pq.Array([]int64{1, 2})).
		WillReturnRows(emailRows().
			AddRow(10, 1, "a@example.com", ts, ts).
			AddRow(11, 2, "b@example.com", ts, ts))

	got, err := NewEmailRepo(db).ListByUsers(context.Background(), []int64{1, 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[1].UserID)
}

func TestEmailRepo_ListByUsers_EmptySkipsQuery(t *testing.T) {
	db, _ := newMock(t)
	got, err := NewEmailRepo(db).ListByUsers(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEmailRepo_FindByEmails(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`FROM email_addresses WHERE email = ANY\(\$1\)$`).
		WithArgs(pq.Array([]string{"a@example.com", "c@example.com"})).
		WillReturnRows(emailRows().AddRow(10, 1, "a@example.com", ts, ts))

	got, err := NewEmailRepo(db).FindByEmails(context.Background(), []string{"a@example.com", "c@example.com"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(10), got[0].ID)
}

func TestEmailRepo_Insert_UniqueViolation(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`^INSERT INTO email_addresses \(user_id, email\) VALUES \(\$1, \$2\) RETURNING`).
		WithArgs(int64(1), "a@example.com").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "email_addresses_email_unique"})

	_, err := NewEmailRepo(db).Insert(context.Background(), 1, "a@example.com")
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.True(t, IsUniqueViolation(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsUniqueViolation(errors.New("other")))
}

func TestEmailRepo_UpdateEmail_ScopedToOwner(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`^UPDATE email_addresses SET email = \$3, updated_at = NOW\(\) WHERE id = \$1 AND user_id = \$2$`).
		WithArgs(int64(10), int64(1), "new@example.com").
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := NewEmailRepo(db).UpdateEmail(context.Background(), 10, 1, "new@example.com")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEmailRepo_DeleteExcept_NilKeepDeletesAll(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`^DELETE FROM email_addresses WHERE user_id = \$1 AND NOT \(id = ANY\(\$2\)\)$`).
		WithArgs(int64(1), "{}").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := NewEmailRepo(db).DeleteExcept(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
