package disqus

import (
	"context"
	"encoding/json"
	"net/http"
)

type Verb string

const (
	GET  Verb = http.MethodGet
	POST Verb = http.MethodPost
)

const (
	MethodCreatePost         = "create_post"
	MethodGetForumAPIKey     = "get_forum_api_key"
	MethodGetForumList       = "get_forum_list"
	MethodGetForumPosts      = "get_forum_posts"
	MethodGetNumPosts        = "get_num_posts"
	MethodGetThreadByURL     = "get_thread_by_url"
	MethodGetThreadList      = "get_thread_list"
	MethodGetThreadPosts     = "get_thread_posts"
	MethodGetUpdatedThreads  = "get_updated_threads"
	MethodGetUserName        = "get_user_name"
	MethodModeratePost       = "moderate_post"
	MethodThreadByIdentifier = "thread_by_identifier"
	MethodUpdateThread       = "update_thread"
)

var methodVerbs = map[string]Verb{
	MethodCreatePost:         POST,
	MethodGetForumAPIKey:     GET,
	MethodGetForumList:       GET,
	MethodGetForumPosts:      GET,
	MethodGetNumPosts:        GET,
	MethodGetThreadByURL:     GET,
	MethodGetThreadList:      GET,
	MethodGetThreadPosts:     GET,
	MethodGetUpdatedThreads:  GET,
	MethodGetUserName:        POST,
	MethodModeratePost:       POST,
	MethodThreadByIdentifier: POST,
	MethodUpdateThread:       POST,
}

// Methods returns a copy of the method table.
func Methods() map[string]Verb {
	m := make(map[string]Verb, len(methodVerbs))
	for name, verb := range methodVerbs {
		m[name] = verb
	}
	return m
}

func (c *Client) CreatePost(ctx context.Context, params Params) (json.RawMessage, error) {
	return c.Call(ctx, MethodCreatePost, params)
}

func (c *Client) GetForumAPIKey(ctx context.Context, params Params) (json.RawMessage, error) {
	return c.Call(ctx, MethodGetForumAPIKey, params)
}

func (c *Client) GetForumList(ctx context.Context, params Params) (json.RawMessage, error) {
	return c.Call(ctx, MethodGetForumList, params)
}

func (c *Client) GetForumPosts(ctx context.Context, params Params) (json.RawMessage, error) {
	return c.Call(ctx, MethodGetForumPosts, params)
}

func (c *Client) GetNumPosts(ctx context.Context, params Params) (json.RawMessage, error) {
	return c.Call(ctx, MethodGetNumPosts, params)
}

func (c *Client) GetThreadByURL(ctx context.Context, params Params) (json.RawMessage, error) {
	return c.Call(ctx, MethodGetThreadByURL, params)
}

func (c *Client) GetThreadList(ctx context.Context, params Params) (json.RawMessage, error) {
	return c.Call(ctx, MethodGetThreadList, params)
}

func (c *Client) GetThreadPosts(ctx context.Context, params Params) (json.RawMessage, error) {
	return c.Call(ctx, MethodGetThreadPosts, params)
}

func (c *Client) GetUpdatedThreads(ctx context.Context, params Params) (json.RawMessage, error) {
	return c.Call(ctx, MethodGetUpdatedThreads, params)
}

func (c *Client) GetUserName(ctx context.Context, params Params) (json.RawMessage, error) {
	return c.Call(ctx, MethodGetUserName, params)
}

func (c *Client) ModeratePost(ctx context.Context, params Params) (json.RawMessage, error) {
	return c.Call(ctx, MethodModeratePost, params)
}

func (c *Client) ThreadByIdentifier(ctx context.Context, params Params) (json.RawMessage, error) {
	return c.Call(ctx, MethodThreadByIdentifier, params)
}

func (c *Client) UpdateThread(ctx context.Context, params Params) (json.RawMessage, error) {
	return c.Call(ctx, MethodUpdateThread, params)
}
