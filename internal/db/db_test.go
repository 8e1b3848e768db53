package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDb(t *testing.T) *MirrorDb {
	t.Helper()
	db := NewMirrorDb(filepath.Join(t.TempDir(), "nested", "mirror.db"))
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirror.db")

	first := NewMirrorDb(path)
	require.NoError(t, first.Open())
	require.NoError(t, first.UpsertForum(context.Background(), &ForumRecord{Id: "1", Shortname: "a", Name: "A"}))
	require.NoError(t, first.Close())

	second := NewMirrorDb(path)
	require.NoError(t, second.Open())
	defer second.Close()

	forum, err := second.Forum(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "a", forum.Shortname)
}

func TestUpsertForumUpdates(t *testing.T) {
	db := openTestDb(t)
	ctx := context.Background()

	require.NoError(t, db.UpsertForum(ctx, &ForumRecord{Id: "01234", Shortname: "blog", Name: "Blog"}))
	require.NoError(t, db.UpsertForum(ctx, &ForumRecord{Id: "01234", Shortname: "blog", Name: "Renamed"}))

	forum, err := db.ForumByShortname(ctx, "blog")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", forum.Name)

	n, err := db.Count(ctx, "forum")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = db.ForumByShortname(ctx, "tacocat")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertThreadAndPost(t *testing.T) {
	db := openTestDb(t)
	ctx := context.Background()
	created := time.Date(2009, 1, 17, 5, 48, 0, 0, time.UTC)

	require.NoError(t, db.UpsertThread(ctx, &ThreadRecord{
		Id: "10", ForumId: "1", Slug: "hello", Title: "Hello", CreatedAt: created,
		AllowComments: true, Identifier: sql.NullString{String: "post-1", Valid: true},
	}))

	thread, err := db.Thread(ctx, "10")
	require.NoError(t, err)
	assert.True(t, thread.AllowComments)
	assert.False(t, thread.Url.Valid)
	assert.Equal(t, "post-1", thread.Identifier.String)
	assert.True(t, created.Equal(thread.CreatedAt))

	anonId, err := db.UpsertAnonymousAuthor(ctx, &AnonymousAuthorRecord{Name: "Joe", EmailHash: "abc"})
	require.NoError(t, err)
	againId, err := db.UpsertAnonymousAuthor(ctx, &AnonymousAuthorRecord{Name: "Joe", EmailHash: "abc",
		Url: sql.NullString{String: "http://joe.example", Valid: true}})
	require.NoError(t, err)
	assert.Equal(t, anonId, againId)

	require.NoError(t, db.UpsertPost(ctx, &PostRecord{
		Id: "100", ForumId: "1", ThreadId: "10", CreatedAt: created, Message: "first",
		Shown: true, IsAnonymous: true, AnonymousAuthorId: sql.NullInt64{Int64: anonId, Valid: true},
	}))
	require.NoError(t, db.UpsertPost(ctx, &PostRecord{
		Id: "100", ForumId: "1", ThreadId: "10", CreatedAt: created, Message: "edited",
		Shown: false, IsAnonymous: true, AnonymousAuthorId: sql.NullInt64{Int64: anonId, Valid: true},
	}))

	post, err := db.Post(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, "edited", post.Message)
	assert.False(t, post.Shown)
	assert.Equal(t, anonId, post.AnonymousAuthorId.Int64)
	assert.False(t, post.AuthorId.Valid)
}

func TestCommentsAfter(t *testing.T) {
	db := openTestDb(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, c := range []*CommentRecord{
		{ContentPath: "/a/", ContentTitle: "A", Comment: "one", SubmitDate: now, IsPublic: true},
		{ContentPath: "/a/", ContentTitle: "A", Comment: "hidden", SubmitDate: now, IsPublic: false},
		{ContentPath: "/b/", ContentTitle: "B", Comment: "removed", SubmitDate: now, IsPublic: true, IsRemoved: true},
		{ContentPath: "/b/", ContentTitle: "B", Comment: "two", SubmitDate: now, IsPublic: true},
	} {
		id, err := db.AddComment(ctx, c)
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), id)
	}

	all, err := db.CommentsAfter(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "one", all[0].Comment)
	assert.Equal(t, "two", all[1].Comment)
	assert.True(t, now.Equal(all[0].SubmitDate))

	rest, err := db.CommentsAfter(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, int64(4), rest[0].Id)

	feed, err := db.AllComments(ctx)
	require.NoError(t, err)
	assert.Len(t, feed, 3)
}

func TestCountRejectsUnknownTable(t *testing.T) {
	db := openTestDb(t)
	_, err := db.Count(context.Background(), "forum; DROP TABLE forum")
	require.Error(t, err)
}
