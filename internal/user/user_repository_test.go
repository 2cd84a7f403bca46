package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"yatube/internal/db"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func TestUserRepository_CreateAndLookup(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewUserRepository(gdb)
	ctx := context.Background()

	u := &db.User{Username: "alice", PasswordHash: "x"}
	require.NoError(t, repo.CreateUser(ctx, u))
	require.NotZero(t, u.ID)

	byName, err := repo.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	byID, err := repo.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	exists, err := repo.CheckUserExists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = repo.CreateUser(ctx, &db.User{Username: "alice", PasswordHash: "y"})
	assert.True(t, db.IsDuplicateKey(err))
}

func TestUserRepository_DeleteUser_Cascades(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewUserRepository(gdb)
	ctx := context.Background()

	alice := &db.User{Username: "alice", PasswordHash: "x"}
	bob := &db.User{Username: "bob", PasswordHash: "x"}
	require.NoError(t, gdb.Create(alice).Error)
	require.NoError(t, gdb.Create(bob).Error)

	now := time.Now()
	alicePost := &db.Post{Text: "alice post", PubDate: now, AuthorID: alice.ID, Image: "img.png"}
	bobPost := &db.Post{Text: "bob post", PubDate: now, AuthorID: bob.ID}
	require.NoError(t, gdb.Omit("Author", "Group").Create(alicePost).Error)
	require.NoError(t, gdb.Omit("Author", "Group").Create(bobPost).Error)

	comments := []*db.Comment{
		{PostID: alicePost.ID, AuthorID: bob.ID, Text: "bob on alice", Created: now},
		{PostID: bobPost.ID, AuthorID: alice.ID, Text: "alice on bob", Created: now},
		{PostID: bobPost.ID, AuthorID: bob.ID, Text: "bob on bob", Created: now},
	}
	for _, c := range comments {
		require.NoError(t, gdb.Omit("Post", "Author").Create(c).Error)
	}
	require.NoError(t, gdb.Omit("User", "Author").Create(&db.Follow{UserID: alice.ID, AuthorID: bob.ID}).Error)
	require.NoError(t, gdb.Omit("User", "Author").Create(&db.Follow{UserID: bob.ID, AuthorID: alice.ID}).Error)

	images, err := repo.ListImagesByAuthor(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"img.png"}, images)

	require.NoError(t, repo.DeleteUser(ctx, alice.ID))

	count := func(model interface{}, query string, args ...interface{}) int64 {
		var n int64
		require.NoError(t, gdb.Model(model).Where(query, args...).Count(&n).Error)
		return n
	}

	assert.Zero(t, count(&db.User{}, "id = ?", alice.ID))
	assert.Zero(t, count(&db.Post{}, "author_id = ?", alice.ID))
	assert.Zero(t, count(&db.Comment{}, "author_id = ?", alice.ID))
	assert.Zero(t, count(&db.Comment{}, "post_id = ?", alicePost.ID))
	assert.Zero(t, count(&db.Follow{}, "user_id = ? OR author_id = ?", alice.ID, alice.ID))

	// bob and his own content are untouched
	assert.EqualValues(t, 1, count(&db.User{}, "id = ?", bob.ID))
	assert.EqualValues(t, 1, count(&db.Post{}, "author_id = ?", bob.ID))
	assert.EqualValues(t, 1, count(&db.Comment{}, "author_id = ?", bob.ID))

	assert.ErrorIs(t, repo.DeleteUser(ctx, alice.ID), gorm.ErrRecordNotFound)
}

func TestUserRepository_ListUsers(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewUserRepository(gdb)
	ctx := context.Background()

	for _, name := range []string{"zed", "amy"} {
		require.NoError(t, repo.CreateUser(ctx, &db.User{Username: name, PasswordHash: "x"}))
	}

	users, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "amy", users[0].Username)
}
