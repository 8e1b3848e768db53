package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

const (
	DefaultMirrorDbPath = "data/disqus.db"
)

var ErrNotFound = errors.New("record not found")

// MirrorDb is the local copy of forums, threads and posts pulled from the
// comment host, plus the site's own comments waiting to be exported.
type MirrorDb struct {
	path   string
	driver *sql.DB
}

func NewMirrorDb(path string) *MirrorDb {
	if path == "" {
		path = DefaultMirrorDbPath
	}
	return &MirrorDb{path: path}
}

var (
	tableCreateStatements = []string{
		`CREATE TABLE IF NOT EXISTS forum (
			id TEXT PRIMARY KEY,
			shortname TEXT NOT NULL,
			name TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS thread (
			id TEXT PRIMARY KEY,
			forum_id TEXT NOT NULL,
			slug TEXT NOT NULL,
			title TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			allow_comments INTEGER NOT NULL,
			url TEXT,
			identifier TEXT,
			FOREIGN KEY (forum_id) REFERENCES forum(id)
		);`,
		`CREATE TABLE IF NOT EXISTS author (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			display_name TEXT,
			url TEXT,
			email_hash TEXT NOT NULL,
			has_avatar INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS anonymous_author (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			url TEXT,
			email_hash TEXT NOT NULL,
			UNIQUE (name, email_hash)
		);`,
		`CREATE TABLE IF NOT EXISTS post (
			id TEXT PRIMARY KEY,
			forum_id TEXT NOT NULL,
			thread_id TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			message TEXT NOT NULL,
			parent_post_id TEXT,
			shown INTEGER NOT NULL,
			is_anonymous INTEGER NOT NULL,
			anonymous_author_id INTEGER,
			author_id TEXT,
			FOREIGN KEY (forum_id) REFERENCES forum(id),
			FOREIGN KEY (thread_id) REFERENCES thread(id),
			FOREIGN KEY (anonymous_author_id) REFERENCES anonymous_author(id),
			FOREIGN KEY (author_id) REFERENCES author(id)
		);`,
		`CREATE TABLE IF NOT EXISTS comment (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			content_path TEXT NOT NULL,
			content_title TEXT NOT NULL,
			content_identifier TEXT NOT NULL DEFAULT '',
			comment TEXT NOT NULL,
			user_id TEXT NOT NULL DEFAULT '',
			user_name TEXT NOT NULL DEFAULT '',
			user_email TEXT NOT NULL DEFAULT '',
			user_url TEXT NOT NULL DEFAULT '',
			ip_address TEXT NOT NULL DEFAULT '',
			submit_date DATETIME NOT NULL,
			is_public INTEGER NOT NULL DEFAULT 1,
			is_removed INTEGER NOT NULL DEFAULT 0,
			parent_id INTEGER
		);`,
	}
)

func ensureDirectoryExists(path string) error {
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		logrus.Infof("Directory %s not exist, create it", dir)
		if err = os.MkdirAll(dir, 0755); err != nil {
			logrus.WithError(err).Error("os.MkdirAll")
			return err
		}
	}
	return nil
}

// Open creates the database file and its tables when missing.
func (db *MirrorDb) Open() error {
	dbPath, err := filepath.Abs(db.path)
	if err != nil {
		logrus.WithError(err).Error("filepath.Abs failed")
		return err
	}

	if err := ensureDirectoryExists(dbPath); err != nil {
		logrus.WithError(err).Error("ensureDirectoryExists failed")
		return err
	}

	driver, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		logrus.WithError(err).Error("sql.Open failed")
		return err
	}
	if err := driver.Ping(); err != nil {
		driver.Close()
		logrus.WithError(err).Error("driver.Ping failed")
		return err
	}
	db.driver = driver
	logrus.WithField("MirrorDbPath", dbPath).Debug("sql.Open success")

	for _, statement := range tableCreateStatements {
		if _, err := db.driver.Exec(statement); err != nil {
			logrus.WithError(err).Error("db.driver.Exec failed")
			return err
		}
	}
	return nil
}

func (db *MirrorDb) Close() error {
	if db.driver == nil {
		return nil
	}
	return db.driver.Close()
}

func (db *MirrorDb) UpsertForum(ctx context.Context, forum *ForumRecord) error {
	query := `INSERT INTO forum (id, shortname, name) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET shortname = excluded.shortname, name = excluded.name;`

	if _, err := db.driver.ExecContext(ctx, query, forum.Id, forum.Shortname, forum.Name); err != nil {
		return fmt.Errorf("upsert forum %s: %w", forum.Id, err)
	}
	return nil
}

func (db *MirrorDb) UpsertThread(ctx context.Context, thread *ThreadRecord) error {
	query := `INSERT INTO thread (id, forum_id, slug, title, created_at, allow_comments, url, identifier)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			forum_id = excluded.forum_id,
			slug = excluded.slug,
			title = excluded.title,
			created_at = excluded.created_at,
			allow_comments = excluded.allow_comments,
			url = excluded.url,
			identifier = excluded.identifier;`

	_, err := db.driver.ExecContext(ctx, query,
		thread.Id, thread.ForumId, thread.Slug, thread.Title, thread.CreatedAt.UTC(),
		thread.AllowComments, thread.Url, thread.Identifier)
	if err != nil {
		return fmt.Errorf("upsert thread %s: %w", thread.Id, err)
	}
	return nil
}

func (db *MirrorDb) UpsertAuthor(ctx context.Context, author *AuthorRecord) error {
	query := `INSERT INTO author (id, username, display_name, url, email_hash, has_avatar)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			display_name = excluded.display_name,
			url = excluded.url,
			email_hash = excluded.email_hash,
			has_avatar = excluded.has_avatar;`

	_, err := db.driver.ExecContext(ctx, query,
		author.Id, author.Username, author.DisplayName, author.Url, author.EmailHash, author.HasAvatar)
	if err != nil {
		return fmt.Errorf("upsert author %s: %w", author.Id, err)
	}
	return nil
}

// UpsertAnonymousAuthor stores an anonymous author, identified by name and
// email hash, and returns its local row id.
func (db *MirrorDb) UpsertAnonymousAuthor(ctx context.Context, author *AnonymousAuthorRecord) (int64, error) {
	query := `INSERT INTO anonymous_author (name, url, email_hash) VALUES (?, ?, ?)
		ON CONFLICT(name, email_hash) DO UPDATE SET url = excluded.url;`

	if _, err := db.driver.ExecContext(ctx, query, author.Name, author.Url, author.EmailHash); err != nil {
		return 0, fmt.Errorf("upsert anonymous author %s: %w", author.Name, err)
	}

	var id int64
	err := db.driver.QueryRowContext(ctx,
		`SELECT id FROM anonymous_author WHERE name = ? AND email_hash = ?;`,
		author.Name, author.EmailHash).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("select anonymous author %s: %w", author.Name, err)
	}
	author.Id = id
	return id, nil
}

func (db *MirrorDb) UpsertPost(ctx context.Context, post *PostRecord) error {
	query := `INSERT INTO post (id, forum_id, thread_id, created_at, message, parent_post_id,
			shown, is_anonymous, anonymous_author_id, author_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			forum_id = excluded.forum_id,
			thread_id = excluded.thread_id,
			created_at = excluded.created_at,
			message = excluded.message,
			parent_post_id = excluded.parent_post_id,
			shown = excluded.shown,
			is_anonymous = excluded.is_anonymous,
			anonymous_author_id = excluded.anonymous_author_id,
			author_id = excluded.author_id;`

	_, err := db.driver.ExecContext(ctx, query,
		post.Id, post.ForumId, post.ThreadId, post.CreatedAt.UTC(), post.Message, post.ParentPostId,
		post.Shown, post.IsAnonymous, post.AnonymousAuthorId, post.AuthorId)
	if err != nil {
		return fmt.Errorf("upsert post %s: %w", post.Id, err)
	}
	return nil
}

func (db *MirrorDb) Forum(ctx context.Context, id string) (*ForumRecord, error) {
	return db.selectForum(ctx, `SELECT id, shortname, name FROM forum WHERE id = ?;`, id)
}

func (db *MirrorDb) ForumByShortname(ctx context.Context, shortname string) (*ForumRecord, error) {
	return db.selectForum(ctx, `SELECT id, shortname, name FROM forum WHERE shortname = ?;`, shortname)
}

func (db *MirrorDb) selectForum(ctx context.Context, query string, arg string) (*ForumRecord, error) {
	forum := &ForumRecord{}
	err := db.driver.QueryRowContext(ctx, query, arg).Scan(&forum.Id, &forum.Shortname, &forum.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("forum %q: %w", arg, ErrNotFound)
	}
	if err != nil {
		logrus.WithError(err).Error("db.driver.QueryRow.Scan failed")
		return nil, err
	}
	return forum, nil
}

func (db *MirrorDb) Thread(ctx context.Context, id string) (*ThreadRecord, error) {
	query := `SELECT id, forum_id, slug, title, created_at, allow_comments, url, identifier
		FROM thread WHERE id = ?;`

	thread := &ThreadRecord{}
	err := db.driver.QueryRowContext(ctx, query, id).Scan(
		&thread.Id, &thread.ForumId, &thread.Slug, &thread.Title, &thread.CreatedAt,
		&thread.AllowComments, &thread.Url, &thread.Identifier)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("thread %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return thread, nil
}

func (db *MirrorDb) Post(ctx context.Context, id string) (*PostRecord, error) {
	query := `SELECT id, forum_id, thread_id, created_at, message, parent_post_id,
			shown, is_anonymous, anonymous_author_id, author_id
		FROM post WHERE id = ?;`

	post := &PostRecord{}
	err := db.driver.QueryRowContext(ctx, query, id).Scan(
		&post.Id, &post.ForumId, &post.ThreadId, &post.CreatedAt, &post.Message, &post.ParentPostId,
		&post.Shown, &post.IsAnonymous, &post.AnonymousAuthorId, &post.AuthorId)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("post %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

// Count returns the number of rows in one of the mirror tables.
func (db *MirrorDb) Count(ctx context.Context, table string) (int, error) {
	switch table {
	case "forum", "thread", "author", "anonymous_author", "post", "comment":
	default:
		return 0, fmt.Errorf("unknown table %q", table)
	}

	var n int
	if err := db.driver.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
