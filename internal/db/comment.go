package db

import (
	"context"
	"fmt"
)

func (db *MirrorDb) AddComment(ctx context.Context, comment *CommentRecord) (int64, error) {
	query := `INSERT INTO comment (content_path, content_title, content_identifier, comment,
			user_id, user_name, user_email, user_url, ip_address, submit_date,
			is_public, is_removed, parent_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

	res, err := db.driver.ExecContext(ctx, query,
		comment.ContentPath, comment.ContentTitle, comment.ContentIdentifier, comment.Comment,
		comment.UserId, comment.UserName, comment.UserEmail, comment.UserUrl, comment.IpAddress,
		comment.SubmitDate.UTC(), comment.IsPublic, comment.IsRemoved, comment.ParentId)
	if err != nil {
		return 0, fmt.Errorf("insert comment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert comment: %w", err)
	}
	comment.Id = id
	return id, nil
}

// CommentsAfter returns the public, non-removed comments with an id greater
// than lastId, in id order. A lastId of 0 returns all of them.
func (db *MirrorDb) CommentsAfter(ctx context.Context, lastId int64) ([]*CommentRecord, error) {
	return db.selectComments(ctx, `WHERE is_public = 1 AND is_removed = 0 AND id > ? ORDER BY id;`, lastId)
}

// AllComments returns every comment that was not removed, hidden ones
// included, in id order. The WXR feed marks approval per comment.
func (db *MirrorDb) AllComments(ctx context.Context) ([]*CommentRecord, error) {
	return db.selectComments(ctx, `WHERE is_removed = 0 ORDER BY id;`)
}

func (db *MirrorDb) selectComments(ctx context.Context, where string, args ...any) ([]*CommentRecord, error) {
	query := `SELECT id, content_path, content_title, content_identifier, comment,
			user_id, user_name, user_email, user_url, ip_address, submit_date,
			is_public, is_removed, parent_id
		FROM comment ` + where

	rows, err := db.driver.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select comments: %w", err)
	}
	defer rows.Close()

	comments := make([]*CommentRecord, 0)
	for rows.Next() {
		c := &CommentRecord{}
		if err := rows.Scan(
			&c.Id, &c.ContentPath, &c.ContentTitle, &c.ContentIdentifier, &c.Comment,
			&c.UserId, &c.UserName, &c.UserEmail, &c.UserUrl, &c.IpAddress, &c.SubmitDate,
			&c.IsPublic, &c.IsRemoved, &c.ParentId,
		); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
