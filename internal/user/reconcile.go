package user

import (
	"context"
	"fmt"

	"github.com/ovaphlow/pitchfork/service-user-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-user-go/internal/user/repo"
)

// Plan is the set of writes that turns a user's stored addresses into a requested set.
type Plan struct {
	UserID  int64
	Keep    []int64
	Updates []entity.ExistingEmail
	Inserts []entity.NewEmail
	Deletes []int64
}

// Empty reports whether applying p would write nothing.
func (p Plan) Empty() bool {
	return len(p.Updates) == 0 && len(p.Inserts) == 0 && len(p.Deletes) == 0
}

// PlanReconcile diffs requested against current, the addresses owned by userID.
// taken holds every stored row whose email appears in requested, across all users.
// All ownership and uniqueness failures are collected before returning.
func PlanReconcile(userID int64, current []entity.EmailAddress, requested []entity.EmailEntry, taken []entity.EmailAddress) (Plan, *ValidationError) {
	owned := make(map[int64]entity.EmailAddress, len(current))
	for _, e := range current {
		owned[e.ID] = e
	}
	holders := make(map[string][]int64, len(taken))
	for _, e := range taken {
		holders[e.Email] = append(holders[e.Email], e.ID)
	}

	plan := Plan{UserID: userID}
	verr := &ValidationError{}
	kept := make(map[int64]bool, len(requested))

	for i, entry := range requested {
		var selfID int64
		switch e := entry.(type) {
		case entity.ExistingEmail:
			selfID = e.ID
			stored, ok := owned[e.ID]
			switch {
			case !ok:
				verr.Add(fmt.Sprintf("emails.%d.id", i), fmt.Sprintf("The selected emails.%d.id is invalid.", i))
			case kept[e.ID]:
				verr.Add(fmt.Sprintf("emails.%d.id", i), fmt.Sprintf("The emails.%d.id field has a duplicate value.", i))
			default:
				kept[e.ID] = true
				plan.Keep = append(plan.Keep, e.ID)
				if stored.Email != e.Email {
					plan.Updates = append(plan.Updates, e)
				}
			}
		case entity.NewEmail:
			plan.Inserts = append(plan.Inserts, e)
		}

		for _, holder := range holders[entry.Address()] {
			if holder != selfID {
				verr.Add(fmt.Sprintf("emails.%d.email", i), fmt.Sprintf("The email address '%s' has already been taken.", entry.Address()))
				break
			}
		}
	}

	for _, e := range current {
		if !kept[e.ID] {
			plan.Deletes = append(plan.Deletes, e.ID)
		}
	}

	if !verr.Empty() {
		return Plan{}, verr
	}
	return plan, nil
}

// Reconciler computes and applies email set changes through repositories bound to one transaction.
type Reconciler struct {
	emails *repo.EmailRepo
}

func NewReconciler(emails *repo.EmailRepo) *Reconciler {
	return &Reconciler{emails: emails}
}

// Prepare reads the current and conflicting rows and returns the plan, or a
// ValidationError naming every offending position. It performs no writes.
func (r *Reconciler) Prepare(ctx context.Context, userID int64, requested []entity.EmailEntry) (Plan, error) {
	current, err := r.emails.ListByUser(ctx, userID)
	if err != nil {
		return Plan{}, &PersistenceError{Op: "load email addresses", Err: err}
	}
	addresses := make([]string, 0, len(requested))
	for _, e := range requested {
		addresses = append(addresses, e.Address())
	}
	taken, err := r.emails.FindByEmails(ctx, addresses)
	if err != nil {
		return Plan{}, &PersistenceError{Op: "check email uniqueness", Err: err}
	}
	plan, verr := PlanReconcile(userID, current, requested, taken)
	if verr != nil {
		return Plan{}, verr
	}
	return plan, nil
}

// Apply writes plan: deletes first, then in-place updates, then inserts.
// It returns the resulting address set of the user.
func (r *Reconciler) Apply(ctx context.Context, plan Plan) ([]entity.EmailAddress, error) {
	if len(plan.Deletes) > 0 {
		if _, err := r.emails.DeleteExcept(ctx, plan.UserID, plan.Keep); err != nil {
			return nil, &PersistenceError{Op: "delete email addresses", Err: err}
		}
	}
	for _, u := range plan.Updates {
		n, err := r.emails.UpdateEmail(ctx, u.ID, plan.UserID, u.Email)
		if err != nil {
			return nil, &PersistenceError{Op: "update email address", Err: err}
		}
		if n == 0 {
			return nil, &PersistenceError{Op: "update email address", Err: fmt.Errorf("address %d not owned by user %d", u.ID, plan.UserID)}
		}
	}
	for _, in := range plan.Inserts {
		if _, err := r.emails.Insert(ctx, plan.UserID, in.Email); err != nil {
			return nil, &PersistenceError{Op: "insert email address", Err: err}
		}
	}
	emails, err := r.emails.ListByUser(ctx, plan.UserID)
	if err != nil {
		return nil, &PersistenceError{Op: "load email addresses", Err: err}
	}
	return emails, nil
}
