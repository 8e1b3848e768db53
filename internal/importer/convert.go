package importer

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/davidleitw/disqus/internal/db"
	"github.com/davidleitw/disqus/internal/disqus"
)

// The host reports dates in UTC with minute precision; the other layouts
// cover older payloads.
var timeLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

func parseTime(value string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q", value)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func forumRecord(forum *disqus.Forum) *db.ForumRecord {
	return &db.ForumRecord{
		Id:        forum.ID.String(),
		Shortname: forum.Shortname,
		Name:      forum.Name,
	}
}

func threadRecord(thread *disqus.Thread, forumId string) (*db.ThreadRecord, error) {
	createdAt, err := parseTime(thread.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("thread %s: %w", thread.ID, err)
	}

	record := &db.ThreadRecord{
		Id:            thread.ID.String(),
		ForumId:       forumId,
		Slug:          thread.Slug,
		Title:         thread.Title,
		CreatedAt:     createdAt,
		AllowComments: thread.AllowComments,
		Identifier:    nullString(thread.Identifier.First()),
	}
	if thread.Forum != "" {
		record.ForumId = thread.Forum.String()
	}
	if thread.URL != nil {
		record.Url = nullString(*thread.URL)
	}
	return record, nil
}

func authorRecord(author *disqus.Author) *db.AuthorRecord {
	return &db.AuthorRecord{
		Id:          author.ID.String(),
		Username:    author.Username,
		DisplayName: nullString(author.DisplayName),
		Url:         nullString(author.URL),
		EmailHash:   author.EmailHash,
		HasAvatar:   author.HasAvatar,
	}
}

func anonymousAuthorRecord(author *disqus.AnonymousAuthor) *db.AnonymousAuthorRecord {
	return &db.AnonymousAuthorRecord{
		Name:      author.Name,
		Url:       nullString(author.URL),
		EmailHash: author.EmailHash,
	}
}

func postRecord(post *disqus.Post, forumId string) (*db.PostRecord, error) {
	createdAt, err := parseTime(post.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", post.ID, err)
	}

	record := &db.PostRecord{
		Id:           post.ID.String(),
		ForumId:      forumId,
		ThreadId:     post.Thread.String(),
		CreatedAt:    createdAt,
		Message:      post.Message,
		ParentPostId: nullString(post.ParentPost.String()),
		Shown:        post.Shown,
		IsAnonymous:  post.IsAnonymous,
	}
	if post.Forum != "" {
		record.ForumId = post.Forum.String()
	}
	return record, nil
}
