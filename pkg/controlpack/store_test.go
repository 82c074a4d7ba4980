package controlpack

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/afu9/controlplane/pkg/storeerr"
)

// newTestDB creates an in-memory SQLite DB with the assignments table migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	store := NewAssignmentStore(db, nil, nil)
	require.NoError(t, store.AutoMigrate())
	return db
}

func newTestStore(t *testing.T) (*AssignmentStore, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewAssignmentStore(db, DefaultConfig(), nil), db
}

func countAssignments(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&ControlPackAssignment{}).Count(&n).Error)
	return n
}

func TestAssignmentStore_Assign(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	row, err := store.Assign(ctx, AssignmentInput{
		IssueID:  "issue-1",
		PackID:   "cp-sec",
		PackName: "Security Controls",
		Reason:   "manual review",
	})
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.NotEmpty(t, row.ID)
	assert.Equal(t, "issue-1", row.IssueID)
	assert.Equal(t, "cp-sec", row.ControlPackID)
	assert.Equal(t, "Security Controls", row.ControlPackName)
	assert.Equal(t, "system", row.AssignedBy, "assigned_by defaults to system")
	assert.Equal(t, "manual review", row.AssignmentReason)
	assert.Equal(t, StatusActive, row.Status)
	assert.False(t, row.CreatedAt.IsZero())
	assert.False(t, row.UpdatedAt.IsZero())
}

func TestAssignmentStore_Assign_InvalidInput(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	cases := []AssignmentInput{
		{PackID: "cp-sec", PackName: "Security Controls"},
		{IssueID: "issue-1", PackName: "Security Controls"},
		{IssueID: "issue-1", PackID: "cp-sec"},
		{IssueID: "issue-1", PackID: "cp-sec", PackName: "Security Controls", Status: "bogus"},
	}
	for i, in := range cases {
		_, err := store.Assign(ctx, in)
		assert.ErrorIs(t, err, storeerr.ErrInvalidInput, "case %d", i)
	}

	// Invalid input never reaches the database.
	assert.Equal(t, int64(0), countAssignments(t, db))
}

func TestAssignmentStore_Assign_CustomValidator(t *testing.T) {
	db := newTestDB(t)
	rejectAll := func(in AssignmentInput) error {
		return fmt.Errorf("%w: rejected by policy", storeerr.ErrInvalidInput)
	}
	store := NewAssignmentStore(db, nil, nil, WithValidator(rejectAll))

	_, err := store.Assign(context.Background(), AssignmentInput{
		IssueID: "issue-1", PackID: "cp-sec", PackName: "Security Controls",
	})
	require.ErrorIs(t, err, storeerr.ErrInvalidInput)
	assert.Contains(t, err.Error(), "rejected by policy")
	assert.Equal(t, int64(0), countAssignments(t, db))
}

func TestAssignmentStore_Assign_Conflict(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	_, err := store.Assign(ctx, AssignmentInput{
		IssueID: "issue-1", PackID: "cp-sec", PackName: "Security Controls",
	})
	require.NoError(t, err)

	// Second active assignment for the same (issue, pack) pair conflicts.
	_, err = store.Assign(ctx, AssignmentInput{
		IssueID: "issue-1", PackID: "cp-sec", PackName: "Security Controls",
	})
	require.ErrorIs(t, err, storeerr.ErrConflict)
	assert.Contains(t, err.Error(), "cp-sec")
	assert.Equal(t, int64(1), countAssignments(t, db), "conflicting assign performs no insert")

	// A different pack on the same issue is fine.
	_, err = store.Assign(ctx, AssignmentInput{
		IssueID: "issue-1", PackID: "cp-priv", PackName: "Privacy Controls",
	})
	require.NoError(t, err)

	// The same pack on a different issue is fine.
	_, err = store.Assign(ctx, AssignmentInput{
		IssueID: "issue-2", PackID: "cp-sec", PackName: "Security Controls",
	})
	require.NoError(t, err)
}

func TestAssignmentStore_Assign_AfterRevokeSucceeds(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	first, err := store.Assign(ctx, AssignmentInput{
		IssueID: "issue-1", PackID: "cp-sec", PackName: "Security Controls",
	})
	require.NoError(t, err)
	require.NoError(t, store.Revoke(ctx, first.ID))

	// Only active rows occupy the uniqueness slot.
	_, err = store.Assign(ctx, AssignmentInput{
		IssueID: "issue-1", PackID: "cp-sec", PackName: "Security Controls",
	})
	require.NoError(t, err)
}

func TestAssignmentStore_AssignDefault(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	row, err := store.AssignDefault(ctx, "issue-1", "")
	require.NoError(t, err)
	assert.Equal(t, "cp-default", row.ControlPackID)
	assert.Equal(t, "Default Control Pack", row.ControlPackName)
	assert.Equal(t, DefaultAssignmentReason, row.AssignmentReason)
	assert.Equal(t, "system", row.AssignedBy)

	row, err = store.AssignDefault(ctx, "issue-2", "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", row.AssignedBy)
}

func TestAssignmentStore_ListOrdering(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	// Seed rows with explicit creation times, inserted out of order.
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seed := []ControlPackAssignment{
		{ID: "a-middle", IssueID: "issue-1", ControlPackID: "cp-b", ControlPackName: "B",
			AssignedBy: "system", Status: StatusActive, CreatedAt: base.Add(time.Hour), UpdatedAt: base.Add(time.Hour)},
		{ID: "a-newest", IssueID: "issue-1", ControlPackID: "cp-c", ControlPackName: "C",
			AssignedBy: "system", Status: StatusRevoked, CreatedAt: base.Add(2 * time.Hour), UpdatedAt: base.Add(2 * time.Hour)},
		{ID: "a-oldest", IssueID: "issue-1", ControlPackID: "cp-a", ControlPackName: "A",
			AssignedBy: "system", Status: StatusActive, CreatedAt: base, UpdatedAt: base},
		{ID: "a-other", IssueID: "issue-2", ControlPackID: "cp-a", ControlPackName: "A",
			AssignedBy: "system", Status: StatusActive, CreatedAt: base, UpdatedAt: base},
	}
	for i := range seed {
		require.NoError(t, db.Create(&seed[i]).Error)
	}

	active, err := store.ListActive(ctx, "issue-1")
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "a-middle", active[0].ID)
	assert.Equal(t, "a-oldest", active[1].ID)

	all, err := store.ListAll(ctx, "issue-1")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a-newest", all[0].ID)
	assert.Equal(t, "a-middle", all[1].ID)
	assert.Equal(t, "a-oldest", all[2].ID)
}

func TestAssignmentStore_Revoke(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	row, err := store.Assign(ctx, AssignmentInput{
		IssueID: "issue-1", PackID: "cp-sec", PackName: "Security Controls",
	})
	require.NoError(t, err)

	// Rewind updated_at so the refresh is observable.
	stale := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, db.Model(&ControlPackAssignment{}).
		Where("id = ?", row.ID).Update("updated_at", stale).Error)

	require.NoError(t, store.Revoke(ctx, row.ID))

	var got ControlPackAssignment
	require.NoError(t, db.First(&got, "id = ?", row.ID).Error)
	assert.Equal(t, StatusRevoked, got.Status)
	assert.True(t, got.UpdatedAt.After(stale), "revoke refreshes updated_at")

	active, err := store.ListActive(ctx, "issue-1")
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := store.ListAll(ctx, "issue-1")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAssignmentStore_Revoke_NotFound(t *testing.T) {
	store, db := newTestStore(t)

	err := store.Revoke(context.Background(), "no-such-id")
	require.ErrorIs(t, err, storeerr.ErrNotFound)
	assert.Equal(t, int64(0), countAssignments(t, db))
}

func TestAssignmentStore_UpdateStatus(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	row, err := store.Assign(ctx, AssignmentInput{
		IssueID: "issue-1", PackID: "cp-sec", PackName: "Security Controls",
	})
	require.NoError(t, err)

	require.NoError(t, store.UpdateStatus(ctx, row.ID, StatusSuspended))

	var got ControlPackAssignment
	require.NoError(t, db.First(&got, "id = ?", row.ID).Error)
	assert.Equal(t, StatusSuspended, got.Status)
}

func TestAssignmentStore_UpdateStatus_Unrecognized(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	row, err := store.Assign(ctx, AssignmentInput{
		IssueID: "issue-1", PackID: "cp-sec", PackName: "Security Controls",
	})
	require.NoError(t, err)

	err = store.UpdateStatus(ctx, row.ID, "archived")
	require.ErrorIs(t, err, storeerr.ErrInvalidInput)

	var got ControlPackAssignment
	require.NoError(t, db.First(&got, "id = ?", row.ID).Error)
	assert.Equal(t, StatusActive, got.Status, "row is unchanged")
}

func TestAssignmentStore_UpdateStatus_ReactivateConflict(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	first, err := store.Assign(ctx, AssignmentInput{
		IssueID: "issue-1", PackID: "cp-sec", PackName: "Security Controls",
	})
	require.NoError(t, err)
	require.NoError(t, store.Revoke(ctx, first.ID))

	_, err = store.Assign(ctx, AssignmentInput{
		IssueID: "issue-1", PackID: "cp-sec", PackName: "Security Controls",
	})
	require.NoError(t, err)

	// Re-activating the revoked row would create a second active pair.
	err = store.UpdateStatus(ctx, first.ID, StatusActive)
	require.ErrorIs(t, err, storeerr.ErrConflict)
}
