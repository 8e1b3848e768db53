package db

import (
	"database/sql"
	"time"
)

type ForumRecord struct {
	Id        string `json:"id"`
	Shortname string `json:"shortname"`
	Name      string `json:"name"`
}

type ThreadRecord struct {
	Id      string `json:"id"`
	ForumId string `json:"forum_id"`

	Slug          string    `json:"slug"`
	Title         string    `json:"title"`
	CreatedAt     time.Time `json:"created_at"`
	AllowComments bool      `json:"allow_comments"`

	Url        sql.NullString `json:"url"`
	Identifier sql.NullString `json:"identifier"`
}

type AuthorRecord struct {
	Id          string         `json:"id"`
	Username    string         `json:"username"`
	DisplayName sql.NullString `json:"display_name"`
	Url         sql.NullString `json:"url"`
	EmailHash   string         `json:"email_hash"`
	HasAvatar   bool           `json:"has_avatar"`
}

type AnonymousAuthorRecord struct {
	Id        int64          `json:"id"`
	Name      string         `json:"name"`
	Url       sql.NullString `json:"url"`
	EmailHash string         `json:"email_hash"`
}

type PostRecord struct {
	Id       string `json:"id"`
	ForumId  string `json:"forum_id"`
	ThreadId string `json:"thread_id"`

	CreatedAt    time.Time      `json:"created_at"`
	Message      string         `json:"message"`
	ParentPostId sql.NullString `json:"parent_post_id"`
	Shown        bool           `json:"shown"`
	IsAnonymous  bool           `json:"is_anonymous"`

	AnonymousAuthorId sql.NullInt64  `json:"anonymous_author_id"`
	AuthorId          sql.NullString `json:"author_id"`
}

// CommentRecord is a comment written on the local site, waiting to be
// exported to the comment host.
type CommentRecord struct {
	Id int64 `json:"id"`

	ContentPath       string `json:"content_path"`
	ContentTitle      string `json:"content_title"`
	ContentIdentifier string `json:"content_identifier"`

	Comment    string    `json:"comment"`
	UserId     string    `json:"user_id"`
	UserName   string    `json:"user_name"`
	UserEmail  string    `json:"user_email"`
	UserUrl    string    `json:"user_url"`
	IpAddress  string    `json:"ip_address"`
	SubmitDate time.Time `json:"submit_date"`

	IsPublic  bool          `json:"is_public"`
	IsRemoved bool          `json:"is_removed"`
	ParentId  sql.NullInt64 `json:"parent_id"`
}
