package disqus

import (
	"context"
	"encoding/json"
)

// EachForumPostsPage pages through get_forum_posts, pageSize posts at a
// time, calling fn with every non-empty page. The host gives no cursor, so
// paging stops at the first empty page.
func EachForumPostsPage(ctx context.Context, api API, params Params, pageSize int, fn func(start int, page json.RawMessage) error) error {
	for start := 0; ; start += pageSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		pageParams := make(Params, len(params)+2)
		for k, v := range params {
			pageParams[k] = v
		}
		pageParams["start"] = start
		pageParams["limit"] = pageSize

		page, err := api.GetForumPosts(ctx, pageParams)
		if err != nil {
			return err
		}
		if IsEmpty(page) {
			return nil
		}
		if err := fn(start, page); err != nil {
			return err
		}
	}
}
