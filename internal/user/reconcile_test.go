package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-user-go/internal/user/entity"
)

func addr(id, userID int64, email string) entity.EmailAddress {
	return entity.EmailAddress{ID: id, UserID: userID, Email: email}
}

func TestPlanReconcile_KeepInsertDelete(t *testing.T) {
	current := []entity.EmailAddress{addr(10, 1, "a@example.com"), addr(11, 1, "b@example.com")}
	requested := []entity.EmailEntry{
		entity.ExistingEmail{ID: 10, Email: "a@example.com"},
		entity.NewEmail{Email: "c@example.com"},
	}
	taken := []entity.EmailAddress{addr(10, 1, "a@example.com")}

	plan, verr := PlanReconcile(1, current, requested, taken)
	require.Nil(t, verr)
	assert.Equal(t, []int64{10}, plan.Keep)
	assert.Empty(t, plan.Updates, "unchanged address must not be rewritten")
	assert.Equal(t, []entity.NewEmail{{Email: "c@example.com"}}, plan.Inserts)
	assert.Equal(t, []int64{11}, plan.Deletes)
}

func TestPlanReconcile_UpdateInPlace(t *testing.T) {
	current := []entity.EmailAddress{addr(10, 1, "a@example.com")}
	requested := []entity.EmailEntry{entity.ExistingEmail{ID: 10, Email: "a2@example.com"}}

	plan, verr := PlanReconcile(1, current, requested, nil)
	require.Nil(t, verr)
	assert.Equal(t, []entity.ExistingEmail{{ID: 10, Email: "a2@example.com"}}, plan.Updates)
	assert.Empty(t, plan.Deletes)
	assert.Empty(t, plan.Inserts)
}

func TestPlanReconcile_Identical(t *testing.T) {
	current := []entity.EmailAddress{addr(10, 1, "a@example.com"), addr(11, 1, "b@example.com")}
	requested := []entity.EmailEntry{
		entity.ExistingEmail{ID: 11, Email: "b@example.com"},
		entity.ExistingEmail{ID: 10, Email: "a@example.com"},
	}
	plan, verr := PlanReconcile(1, current, requested, current)
	require.Nil(t, verr)
	assert.True(t, plan.Empty())
	assert.ElementsMatch(t, []int64{10, 11}, plan.Keep)
}

func TestPlanReconcile_ConflictsReportEveryPosition(t *testing.T) {
	current := []entity.EmailAddress{addr(10, 1, "a@example.com"), addr(11, 1, "b@example.com")}
	requested := []entity.EmailEntry{
		entity.NewEmail{Email: "other@example.com"},          // another user's address
		entity.ExistingEmail{ID: 10, Email: "a@example.com"}, // own, unchanged
		entity.ExistingEmail{ID: 10, Email: "b@example.com"}, // another row of the same user
		entity.NewEmail{Email: "fresh@example.com"},
	}
	taken := []entity.EmailAddress{
		addr(20, 2, "other@example.com"),
		addr(10, 1, "a@example.com"),
		addr(11, 1, "b@example.com"),
	}

	plan, verr := PlanReconcile(1, current, requested, taken)
	require.NotNil(t, verr)
	assert.True(t, plan.Empty())
	assert.Contains(t, verr.Fields, "emails.0.email")
	assert.NotContains(t, verr.Fields, "emails.1.email")
	assert.Contains(t, verr.Fields, "emails.2.email")
	assert.Contains(t, verr.Fields, "emails.2.id", "same id twice")
	assert.NotContains(t, verr.Fields, "emails.3.email")
	assert.Equal(t, []string{"The email address 'other@example.com' has already been taken."}, verr.Fields["emails.0.email"])
}

func TestPlanReconcile_ForeignIDRejected(t *testing.T) {
	current := []entity.EmailAddress{addr(10, 1, "a@example.com")}
	// id 20 belongs to user 2
	requested := []entity.EmailEntry{entity.ExistingEmail{ID: 20, Email: "mine-now@example.com"}}

	_, verr := PlanReconcile(1, current, requested, nil)
	require.NotNil(t, verr)
	assert.Equal(t, []string{"The selected emails.0.id is invalid."}, verr.Fields["emails.0.id"])
}

func TestPlanReconcile_NewEntryReusingDroppedAddressConflicts(t *testing.T) {
	current := []entity.EmailAddress{addr(10, 1, "a@example.com")}
	requested := []entity.EmailEntry{entity.NewEmail{Email: "a@example.com"}}

	_, verr := PlanReconcile(1, current, requested, current)
	require.NotNil(t, verr)
	assert.Contains(t, verr.Fields, "emails.0.email")
}
