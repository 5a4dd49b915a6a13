package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-user-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-user-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-user-go/pkg/database"
)

// Dispatcher queues a welcome message for one address. It must not wait for delivery.
type Dispatcher interface {
	Enqueue(ctx context.Context, to string, u *entity.User) error
}

// UserService manages users and their email addresses. Every write runs in one transaction.
type UserService struct {
	db         *sqlx.DB
	dispatcher Dispatcher
	logger     *zap.SugaredLogger
}

func NewUserService(db *sqlx.DB, dispatcher Dispatcher, logger *zap.SugaredLogger) *UserService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &UserService{db: db, dispatcher: dispatcher, logger: logger}
}

// List returns all users with their addresses attached.
func (s *UserService) List(ctx context.Context) ([]entity.User, error) {
	users, err := repo.NewUserRepo(s.db).List(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list users", Err: err}
	}
	ids := make([]int64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	emails, err := repo.NewEmailRepo(s.db).ListByUsers(ctx, ids)
	if err != nil {
		return nil, &PersistenceError{Op: "list email addresses", Err: err}
	}
	byUser := make(map[int64][]entity.EmailAddress, len(users))
	for _, e := range emails {
		byUser[e.UserID] = append(byUser[e.UserID], e)
	}
	for i := range users {
		users[i].EmailAddresses = nonNil(byUser[users[i].ID])
	}
	return users, nil
}

// Show returns one user with addresses, or ErrNotFound.
func (s *UserService) Show(ctx context.Context, id int64) (*entity.User, error) {
	u, err := repo.NewUserRepo(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, &PersistenceError{Op: "load user", Err: err}
	}
	emails, err := repo.NewEmailRepo(s.db).ListByUser(ctx, id)
	if err != nil {
		return nil, &PersistenceError{Op: "load email addresses", Err: err}
	}
	u.EmailAddresses = nonNil(emails)
	return u, nil
}

// Create inserts a user and one address per entry atomically. Supplied ids are
// ignored: every entry is inserted as a new address.
func (s *UserService) Create(ctx context.Context, in Input) (*entity.User, error) {
	in.Emails = asNew(in.Emails)
	if verr := in.Validate(); verr != nil {
		return nil, verr
	}

	var created *entity.User
	err := database.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *sqlx.Tx) error {
		u, err := repo.NewUserRepo(tx).Create(ctx, in.Fields())
		if err != nil {
			return &PersistenceError{Op: "create user", Err: err}
		}
		plan := Plan{UserID: u.ID}
		for _, e := range in.Emails {
			plan.Inserts = append(plan.Inserts, e.(entity.NewEmail))
		}
		emails, err := NewReconciler(repo.NewEmailRepo(tx)).Apply(ctx, plan)
		if err != nil {
			return err
		}
		u.EmailAddresses = nonNil(emails)
		created = u
		return nil
	})
	if err != nil {
		return nil, s.persistenceFailure("create user", err)
	}
	s.logger.Infow("user created", "user_id", created.ID, "emails", len(created.EmailAddresses))
	return created, nil
}

// Update replaces the scalar fields of user id and reconciles its address set
// with in.Emails. Validation, ownership and uniqueness failures abort before
// any write; store failures roll everything back.
func (s *UserService) Update(ctx context.Context, id int64, in Input) (*entity.User, error) {
	var updated *entity.User
	err := database.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *sqlx.Tx) error {
		users := repo.NewUserRepo(tx)
		if _, err := users.GetByIDForUpdate(ctx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return &PersistenceError{Op: "load user", Err: err}
		}
		if verr := in.Validate(); verr != nil {
			return verr
		}

		reconciler := NewReconciler(repo.NewEmailRepo(tx))
		plan, err := reconciler.Prepare(ctx, id, in.Emails)
		if err != nil {
			return err
		}

		u, err := users.Update(ctx, id, in.Fields())
		if err != nil {
			return &PersistenceError{Op: "update user", Err: err}
		}
		emails, err := reconciler.Apply(ctx, plan)
		if err != nil {
			return err
		}
		u.EmailAddresses = nonNil(emails)
		updated = u
		s.logger.Debugw("email addresses reconciled", "user_id", id,
			"inserted", len(plan.Inserts), "updated", len(plan.Updates), "deleted", len(plan.Deletes))
		return nil
	})
	if err != nil {
		return nil, s.persistenceFailure("update user", err)
	}
	return updated, nil
}

// Delete removes user id and, by cascade, its addresses.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	err := database.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *sqlx.Tx) error {
		n, err := repo.NewUserRepo(tx).Delete(ctx, id)
		if err != nil {
			return &PersistenceError{Op: "delete user", Err: err}
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return s.persistenceFailure("delete user", err)
	}
	s.logger.Infow("user deleted", "user_id", id)
	return nil
}

// SendWelcomeEmail queues one welcome message per address of user id.
// Jobs queued before a failing Enqueue are not withdrawn.
func (s *UserService) SendWelcomeEmail(ctx context.Context, id int64) (*entity.User, error) {
	u, err := s.Show(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(u.EmailAddresses) == 0 {
		return nil, ErrNoEmailAddresses
	}
	for _, e := range u.EmailAddresses {
		if err := s.dispatcher.Enqueue(ctx, e.Email, u); err != nil {
			s.logger.Errorw("queue welcome email failed", "user_id", u.ID, "email_address_id", e.ID, "err", err)
			return nil, &OperationError{Op: "queue welcome email", Err: err}
		}
	}
	s.logger.Infow("welcome email queued", "user_id", u.ID, "addresses", len(u.EmailAddresses))
	return u, nil
}

// persistenceFailure passes domain errors through and wraps anything else
// (commit or begin failures) as a PersistenceError.
func (s *UserService) persistenceFailure(op string, err error) error {
	var verr *ValidationError
	var perr *PersistenceError
	switch {
	case errors.Is(err, ErrNotFound), errors.As(err, &verr):
		return err
	case errors.As(err, &perr):
		s.logger.Errorw(op+" failed", "err", err, "unique_violation", repo.IsUniqueViolation(err))
		return err
	default:
		s.logger.Errorw(op+" failed", "err", err)
		return &PersistenceError{Op: op, Err: err}
	}
}

// asNew drops ids from entries; used on create where every address is new.
func asNew(entries []entity.EmailEntry) []entity.EmailEntry {
	if entries == nil {
		return nil
	}
	out := make([]entity.EmailEntry, len(entries))
	for i, e := range entries {
		if e == nil {
			continue
		}
		out[i] = entity.NewEmail{Email: e.Address()}
	}
	return out
}

func nonNil(emails []entity.EmailAddress) []entity.EmailAddress {
	if emails == nil {
		return []entity.EmailAddress{}
	}
	return emails
}
