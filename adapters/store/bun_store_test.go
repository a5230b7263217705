package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/taskito/backend/core"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	// A named in-memory database keeps each test isolated while letting
	// the pool reopen connections without losing the schema.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	require.NoError(t, CreateSchema(context.Background(), db))
	return db
}

func seedDBUser(t *testing.T, db *bun.DB, username string) *core.User {
	t.Helper()
	user := &core.User{
		Username:       username,
		Email:          username + "@example.com",
		HashedPassword: "$2a$10$placeholderplaceholderplaceholder",
		Role:           core.RoleUser,
		IsActive:       true,
	}
	require.NoError(t, NewBunUserStore(db).Create(context.Background(), user))
	return user
}

func TestBunUserStoreCRUD(t *testing.T) {
	db := newTestDB(t)
	users := NewBunUserStore(db)
	ctx := context.Background()

	created := seedDBUser(t, db, "Alice")
	require.NotZero(t, created.ID)
	assert.Equal(t, "alice", created.Username)

	got, err := users.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	got, err = users.GetByUsername(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	got, err = users.GetByEmail(ctx, "Alice@Example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = users.GetByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, core.ErrNotFound)

	got.Role = core.RoleAdmin
	require.NoError(t, users.Update(ctx, got))
	got, err = users.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, core.RoleAdmin, got.Role)

	require.NoError(t, users.UpdatePassword(ctx, created.ID, "newhash"))
	got, err = users.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "newhash", got.HashedPassword)

	require.NoError(t, users.SetActive(ctx, created.ID, false))
	got, err = users.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	all, err := users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, users.Delete(ctx, created.ID))
	_, err = users.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, users.Delete(ctx, created.ID), core.ErrNotFound)
}

func TestBunUserStoreAvailability(t *testing.T) {
	db := newTestDB(t)
	users := NewBunUserStore(db)
	ctx := context.Background()

	alice := seedDBUser(t, db, "alice")

	taken, err := users.UsernameTaken(ctx, "ALICE", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	// A user keeping their own name is not a conflict.
	taken, err = users.UsernameTaken(ctx, "alice", alice.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	taken, err = users.EmailTaken(ctx, "alice@example.com", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = users.EmailTaken(ctx, "free@example.com", 0)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestBunTaskStoreCRUD(t *testing.T) {
	db := newTestDB(t)
	tasks := NewBunTaskStore(db)
	ctx := context.Background()

	alice := seedDBUser(t, db, "alice")

	task := &core.Task{
		Title:     "write report",
		Priority:  core.PriorityHigh,
		CreatedBy: alice.ID,
	}
	require.NoError(t, tasks.Create(ctx, task))
	require.NotZero(t, task.ID)

	got, err := tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "write report", got.Title)
	assert.Empty(t, got.Comments)

	got.Completed = true
	require.NoError(t, tasks.Update(ctx, got))
	got, err = tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)

	comment := &core.Comment{Content: "done", TaskID: task.ID, AuthorID: alice.ID}
	require.NoError(t, tasks.CreateComment(ctx, comment))
	got, err = tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "done", got.Comments[0].Content)

	require.NoError(t, tasks.Delete(ctx, task.ID))
	_, err = tasks.GetByID(ctx, task.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestBunTaskStoreListAndFilter(t *testing.T) {
	db := newTestDB(t)
	tasks := NewBunTaskStore(db)
	ctx := context.Background()

	alice := seedDBUser(t, db, "alice")
	bob := seedDBUser(t, db, "bob")

	due := time.Now().Add(48 * time.Hour).UTC()
	seed := []*core.Task{
		{Title: "urgent report", Priority: core.PriorityHigh, CreatedBy: alice.ID, DueDate: &due},
		{Title: "groceries", Priority: core.PriorityLow, CreatedBy: alice.ID, Completed: true},
		{Title: "review code", Priority: core.PriorityMedium, CreatedBy: bob.ID, AssignedTo: &alice.ID},
	}
	for _, task := range seed {
		require.NoError(t, tasks.Create(ctx, task))
	}

	all, total, err := tasks.List(ctx, core.TaskFilter{}, core.PageRequest{Page: 1, Size: 10, OrderBy: core.OrderCreatedAt})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, all, 3)

	high := core.PriorityHigh
	got, total, err := tasks.List(ctx, core.TaskFilter{Priority: &high}, core.PageRequest{Page: 1, Size: 10, OrderBy: core.OrderCreatedAt})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, got, 1)
	assert.Equal(t, "urgent report", got[0].Title)

	got, total, err = tasks.List(ctx, core.TaskFilter{Search: "REPORT"}, core.PageRequest{Page: 1, Size: 10, OrderBy: core.OrderCreatedAt})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, got, 1)

	completed := true
	got, _, err = tasks.List(ctx, core.TaskFilter{Completed: &completed}, core.PageRequest{Page: 1, Size: 10, OrderBy: core.OrderCreatedAt})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "groceries", got[0].Title)

	paged, total, err := tasks.List(ctx, core.TaskFilter{}, core.PageRequest{Page: 2, Size: 2, OrderBy: core.OrderCreatedAt})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, paged, 1)

	mine, err := tasks.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 3)

	theirs, err := tasks.ListByUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, theirs, 1)
}

func TestBunTaskStoreStatistics(t *testing.T) {
	db := newTestDB(t)
	tasks := NewBunTaskStore(db)
	ctx := context.Background()

	alice := seedDBUser(t, db, "alice")

	past := time.Now().Add(-24 * time.Hour).UTC()
	seed := []*core.Task{
		{Title: "overdue", Priority: core.PriorityHigh, CreatedBy: alice.ID, DueDate: &past},
		{Title: "done", Priority: core.PriorityLow, CreatedBy: alice.ID, Completed: true},
		{Title: "open", Priority: core.PriorityMedium, CreatedBy: alice.ID},
	}
	for _, task := range seed {
		require.NoError(t, tasks.Create(ctx, task))
	}

	stats, err := tasks.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalTasks)
	assert.Equal(t, 1, stats.CompletedTasks)
	assert.Equal(t, 2, stats.PendingTasks)
	assert.Equal(t, 1, stats.OverdueTasks)
	assert.Equal(t, 1, stats.HighPriorityTasks)
	assert.Equal(t, 1, stats.MediumPriorityTasks)
	assert.Equal(t, 1, stats.LowPriorityTasks)
}
