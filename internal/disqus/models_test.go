package disqus

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeThreads(t *testing.T) {
	raw := json.RawMessage(`[
		{"id": "10", "forum": "1", "slug": "hello_world", "title": "Hello",
		 "created_at": "2009-01-17T05:48", "allow_comments": true,
		 "url": "http://example.com/hello/", "identifier": ["post-1"]},
		{"id": 11, "forum": {"id": "1", "shortname": "a"}, "slug": "s",
		 "title": "T", "created_at": "2009-01-18T05:48", "allow_comments": false,
		 "url": null, "identifier": "legacy"}
	]`)

	threads, err := DecodeThreads(raw)
	require.NoError(t, err)
	require.Len(t, threads, 2)

	assert.Equal(t, Ref("10"), threads[0].ID)
	assert.Equal(t, "post-1", threads[0].Identifier.First())
	require.NotNil(t, threads[0].URL)
	assert.Equal(t, "http://example.com/hello/", *threads[0].URL)

	assert.Equal(t, Ref("11"), threads[1].ID)
	assert.Equal(t, Ref("1"), threads[1].Forum)
	assert.Nil(t, threads[1].URL)
	assert.Equal(t, "legacy", threads[1].Identifier.First())
}

func TestDecodePostsAuthors(t *testing.T) {
	raw := json.RawMessage(`[
		{"id": "1", "forum": "f", "thread": {"id": "t"}, "created_at": "2009-01-17T05:48",
		 "message": "anon", "parent_post": null, "shown": true, "is_anonymous": true,
		 "anonymous_author": {"name": "Joe", "url": "", "email_hash": "abc"}},
		{"id": "2", "forum": "f", "thread": "t", "created_at": "2009-01-17T05:49",
		 "message": "reply", "parent_post": "1", "shown": true, "is_anonymous": false,
		 "author": {"id": 7, "username": "ann", "display_name": "Ann", "url": "",
		            "email_hash": "def", "has_avatar": true}}
	]`)

	posts, err := DecodePosts(raw)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.True(t, posts[0].IsAnonymous)
	require.NotNil(t, posts[0].AnonymousAuthor)
	assert.Nil(t, posts[0].Author)
	assert.Equal(t, Ref("t"), posts[0].Thread)
	assert.Equal(t, Ref(""), posts[0].ParentPost)

	assert.False(t, posts[1].IsAnonymous)
	require.NotNil(t, posts[1].Author)
	assert.Equal(t, Ref("7"), posts[1].Author.ID)
	assert.Equal(t, Ref("1"), posts[1].ParentPost)
}

func TestDecodeThreadMiss(t *testing.T) {
	for _, raw := range []string{`null`, `""`, `{}`, `[]`} {
		thread, err := DecodeThread(json.RawMessage(raw))
		require.NoError(t, err)
		assert.Nil(t, thread, raw)
	}
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(json.RawMessage(` [ ] `)))
	assert.True(t, IsEmpty(nil))
	assert.False(t, IsEmpty(json.RawMessage(`[{}]`)))
	assert.False(t, IsEmpty(json.RawMessage(`"key"`)))
}

func TestLookupForum(t *testing.T) {
	host := newFakeHost(t, http.StatusOK, `{"succeeded": true, "code": "ok", "message": [
		{"id": "01234", "shortname": "arthurkozielsblog", "name": "Blog"},
		{"id": "56789", "shortname": "foobar", "name": "FooBar"}]}`)

	forum, err := LookupForum(context.Background(), host.client(), "key", "foobar")
	require.NoError(t, err)
	assert.Equal(t, Ref("56789"), forum.ID)

	_, err = LookupForum(context.Background(), host.client(), "key", "tacocat")
	require.ErrorIs(t, err, ErrForumNotFound)
}
