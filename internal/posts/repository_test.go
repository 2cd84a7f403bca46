package posts

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

func createUser(t *testing.T, gdb *gorm.DB, username string) *db.User {
	t.Helper()
	u := &db.User{Username: username, PasswordHash: "x"}
	require.NoError(t, gdb.Create(u).Error)
	return u
}

func TestRepository_ListPosts_NewestFirst(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()
	author := createUser(t, gdb, "alice")

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	var ids []uint
	for i := 0; i < 3; i++ {
		p := &db.Post{Text: "post", PubDate: base.Add(time.Duration(i) * time.Hour), AuthorID: author.ID}
		require.NoError(t, repo.CreatePost(ctx, p))
		ids = append(ids, p.ID)
	}
	// same timestamp as the newest, higher id wins the tie
	tie := &db.Post{Text: "tie", PubDate: base.Add(2 * time.Hour), AuthorID: author.ID}
	require.NoError(t, repo.CreatePost(ctx, tie))

	posts, err := repo.ListPosts(ctx, PostFilter{}, 0, 10)
	require.NoError(t, err)
	require.Len(t, posts, 4)
	assert.Equal(t, []uint{tie.ID, ids[2], ids[1], ids[0]},
		[]uint{posts[0].ID, posts[1].ID, posts[2].ID, posts[3].ID})
	assert.Equal(t, "alice", posts[0].Author.Username)

	page, err := repo.ListPosts(ctx, PostFilter{}, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[1], page[0].ID)
}

func TestRepository_Filters(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()
	alice := createUser(t, gdb, "alice")
	bob := createUser(t, gdb, "bob")
	carol := createUser(t, gdb, "carol")

	group := &db.Group{Title: "Cats", Slug: "cats", Description: "about cats"}
	require.NoError(t, repo.CreateGroup(ctx, group))

	now := time.Now()
	require.NoError(t, repo.CreatePost(ctx, &db.Post{Text: "alice cats", PubDate: now, AuthorID: alice.ID, GroupID: &group.ID}))
	require.NoError(t, repo.CreatePost(ctx, &db.Post{Text: "bob dogs", PubDate: now, AuthorID: bob.ID}))
	require.NoError(t, repo.CreatePost(ctx, &db.Post{Text: "carol cats", PubDate: now, AuthorID: carol.ID, GroupID: &group.ID}))
	require.NoError(t, gdb.Omit("User", "Author").Create(&db.Follow{UserID: alice.ID, AuthorID: bob.ID}).Error)

	count := func(f PostFilter) int64 {
		n, err := repo.CountPosts(ctx, f)
		require.NoError(t, err)
		return n
	}

	assert.EqualValues(t, 3, count(PostFilter{}))
	assert.EqualValues(t, 2, count(PostFilter{GroupID: &group.ID}))
	assert.EqualValues(t, 1, count(PostFilter{AuthorID: &bob.ID}))
	assert.EqualValues(t, 2, count(PostFilter{Search: "cats"}))

	followed, err := repo.ListPosts(ctx, PostFilter{FollowerID: &alice.ID}, 0, 10)
	require.NoError(t, err)
	require.Len(t, followed, 1)
	assert.Equal(t, "bob dogs", followed[0].Text)

	assert.EqualValues(t, 0, count(PostFilter{FollowerID: &carol.ID}))
}

func TestRepository_UpdatePost_KeepsPubDate(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()
	alice := createUser(t, gdb, "alice")
	group := &db.Group{Title: "Cats", Slug: "cats", Description: "d"}
	require.NoError(t, repo.CreateGroup(ctx, group))

	pub := time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)
	post := &db.Post{Text: "old", PubDate: pub, AuthorID: alice.ID, GroupID: &group.ID, Image: "a.png"}
	require.NoError(t, repo.CreatePost(ctx, post))

	post.Text = "new"
	post.GroupID = nil
	post.Image = ""
	post.PubDate = time.Now()
	require.NoError(t, repo.UpdatePost(ctx, post))

	stored, err := repo.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", stored.Text)
	assert.Nil(t, stored.GroupID)
	assert.Empty(t, stored.Image)
	assert.True(t, pub.Equal(stored.PubDate.UTC()), "pub_date changed to %v", stored.PubDate)
}

func TestRepository_DeleteGroup_KeepsPosts(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()
	alice := createUser(t, gdb, "alice")

	group := &db.Group{Title: "Cats", Slug: "cats", Description: "d"}
	require.NoError(t, repo.CreateGroup(ctx, group))
	post := &db.Post{Text: "in group", PubDate: time.Now(), AuthorID: alice.ID, GroupID: &group.ID}
	require.NoError(t, repo.CreatePost(ctx, post))

	require.NoError(t, repo.DeleteGroup(ctx, group.ID))

	stored, err := repo.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.GroupID)
	assert.Nil(t, stored.Group)

	_, err = repo.GetGroupBySlug(ctx, "cats")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.DeleteGroup(ctx, group.ID), gorm.ErrRecordNotFound)
}

func TestRepository_DeletePost_RemovesComments(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()
	alice := createUser(t, gdb, "alice")
	bob := createUser(t, gdb, "bob")

	post := &db.Post{Text: "p", PubDate: time.Now(), AuthorID: alice.ID}
	require.NoError(t, repo.CreatePost(ctx, post))
	require.NoError(t, repo.CreateComment(ctx, &db.Comment{PostID: post.ID, AuthorID: bob.ID, Text: "c", Created: time.Now()}))

	n, err := repo.CountComments(ctx, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, repo.DeletePost(ctx, post.ID))

	n, err = repo.CountComments(ctx, post.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.ErrorIs(t, repo.DeletePost(ctx, post.ID), gorm.ErrRecordNotFound)
}

func TestRepository_Comments_NewestFirst(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()
	alice := createUser(t, gdb, "alice")

	post := &db.Post{Text: "p", PubDate: time.Now(), AuthorID: alice.ID}
	require.NoError(t, repo.CreatePost(ctx, post))

	base := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		c := &db.Comment{PostID: post.ID, AuthorID: alice.ID, Text: "c", Created: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, repo.CreateComment(ctx, c))
	}

	all, err := repo.ListComments(ctx, post.ID, 0, -1)
	require.NoError(t, err)
	require.Len(t, all, 7)
	assert.True(t, all[0].Created.After(all[6].Created))
	assert.Equal(t, "alice", all[0].Author.Username)

	second, err := repo.ListComments(ctx, post.ID, 5, 5)
	require.NoError(t, err)
	assert.Len(t, second, 2)
}

func TestRepository_GroupTaken(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()

	group := &db.Group{Title: "Cats", Slug: "cats", Description: "d"}
	require.NoError(t, repo.CreateGroup(ctx, group))

	taken, err := repo.GroupTaken(ctx, "slug", "cats", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.GroupTaken(ctx, "slug", "cats", group.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	taken, err = repo.GroupTaken(ctx, "title", "Dogs", 0)
	require.NoError(t, err)
	assert.False(t, taken)
}
