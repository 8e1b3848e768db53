package importer

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/davidleitw/disqus/internal/db"
	"github.com/davidleitw/disqus/internal/disqus"
	"github.com/davidleitw/disqus/internal/rule"
	"github.com/sirupsen/logrus"
)

// Store is the part of the local mirror the importer writes to.
type Store interface {
	UpsertForum(ctx context.Context, forum *db.ForumRecord) error
	UpsertThread(ctx context.Context, thread *db.ThreadRecord) error
	UpsertAuthor(ctx context.Context, author *db.AuthorRecord) error
	UpsertAnonymousAuthor(ctx context.Context, author *db.AnonymousAuthorRecord) (int64, error)
	UpsertPost(ctx context.Context, post *db.PostRecord) error
}

type Report struct {
	Forums  int
	Threads int
	Posts   int
	Failed  int
}

type Importer struct {
	api   disqus.API
	store Store
	rule  *rule.RunRule
}

func NewImporter(api disqus.API, store Store, rule *rule.RunRule) *Importer {
	return &Importer{api: api, store: store, rule: rule}
}

// ImportForums mirrors every forum the user api key can see.
func (im *Importer) ImportForums(ctx context.Context) ([]disqus.Forum, error) {
	raw, err := im.api.GetForumList(ctx, disqus.Params{"user_api_key": im.rule.UserAPIKey})
	if err != nil {
		var te *disqus.TransportError
		if errors.As(err, &te) {
			return nil, fmt.Errorf(`could not get forums, check your "DISQUS_API_KEY" setting: %w`, err)
		}
		return nil, err
	}

	forums, err := disqus.DecodeForums(raw)
	if err != nil {
		return nil, err
	}

	for i := range forums {
		if err := im.store.UpsertForum(ctx, forumRecord(&forums[i])); err != nil {
			logrus.WithError(err).Error("store.UpsertForum failed")
			return nil, err
		}
	}
	return forums, nil
}

// Run mirrors the configured forum with its threads and posts.
func (im *Importer) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	forums, err := im.ImportForums(ctx)
	if err != nil {
		return report, err
	}
	report.Forums = len(forums)

	forum, err := disqus.FindForum(forums, im.rule.Shortname)
	if err != nil {
		return report, fmt.Errorf(`%w, check your "DISQUS_WEBSITE_SHORTNAME" setting`, err)
	}
	log := logrus.WithFields(logrus.Fields{"forum": forum.ID, "shortname": forum.Shortname})

	// The forum key is only granted to accounts that moderate the forum.
	if _, err := disqus.ForumAPIKey(ctx, im.api, im.rule.UserAPIKey, forum.ID); err != nil {
		log.WithError(err).Error("get_forum_api_key failed")
		return report, err
	}

	if err := im.importThreads(ctx, forum, report); err != nil {
		return report, err
	}
	log.WithField("threads", report.Threads).Info("threads imported")

	if err := im.importPosts(ctx, forum, report); err != nil {
		return report, err
	}
	log.WithField("posts", report.Posts).Info("posts imported")

	return report, nil
}

func (im *Importer) importThreads(ctx context.Context, forum *disqus.Forum, report *Report) error {
	raw, err := im.api.GetThreadList(ctx, disqus.Params{
		"user_api_key": im.rule.UserAPIKey,
		"forum_id":     forum.ID.String(),
		"limit":        im.rule.GetThreadLimit(),
		"start":        0,
	})
	if err != nil {
		logrus.WithError(err).Error("get_thread_list failed")
		return err
	}

	threads, err := disqus.DecodeThreads(raw)
	if err != nil {
		return err
	}

	for i := range threads {
		err := im.importThread(ctx, &threads[i], forum.ID.String())
		if err == nil {
			report.Threads++
			continue
		}
		report.Failed++
		if err := im.rule.Handle(err, logrus.Fields{"thread": threads[i].ID}); err != nil {
			return err
		}
	}
	return nil
}

func (im *Importer) importThread(ctx context.Context, thread *disqus.Thread, forumId string) error {
	record, err := threadRecord(thread, forumId)
	if err != nil {
		return err
	}
	return im.store.UpsertThread(ctx, record)
}

func (im *Importer) importPosts(ctx context.Context, forum *disqus.Forum, report *Report) error {
	params := disqus.Params{
		"user_api_key": im.rule.UserAPIKey,
		"forum_id":     forum.ID.String(),
	}
	return disqus.EachForumPostsPage(ctx, im.api, params, im.rule.GetPageSize(),
		func(start int, page json.RawMessage) error {
			posts, err := disqus.DecodePosts(page)
			if err != nil {
				report.Failed++
				return im.rule.Handle(err, logrus.Fields{"start": start})
			}

			for i := range posts {
				err := im.importPost(ctx, &posts[i], forum.ID.String())
				if err == nil {
					report.Posts++
					continue
				}
				report.Failed++
				if err := im.rule.Handle(err, logrus.Fields{"post": posts[i].ID}); err != nil {
					return err
				}
			}
			return nil
		})
}

func (im *Importer) importPost(ctx context.Context, post *disqus.Post, forumId string) error {
	record, err := postRecord(post, forumId)
	if err != nil {
		return err
	}

	switch {
	case post.IsAnonymous && post.AnonymousAuthor != nil:
		id, err := im.store.UpsertAnonymousAuthor(ctx, anonymousAuthorRecord(post.AnonymousAuthor))
		if err != nil {
			return err
		}
		record.AnonymousAuthorId = sql.NullInt64{Int64: id, Valid: true}
	case !post.IsAnonymous && post.Author != nil:
		if err := im.store.UpsertAuthor(ctx, authorRecord(post.Author)); err != nil {
			return err
		}
		record.AuthorId = nullString(post.Author.ID.String())
	}

	return im.store.UpsertPost(ctx, record)
}
