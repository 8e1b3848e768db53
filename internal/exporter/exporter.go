package exporter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/davidleitw/disqus/internal/checkpoint"
	"github.com/davidleitw/disqus/internal/db"
	"github.com/davidleitw/disqus/internal/disqus"
	"github.com/davidleitw/disqus/internal/rule"
	"github.com/sirupsen/logrus"
)

const (
	createdAtLayout = "2006-01-02T15:04"

	// The host requires a name and an email on every post.
	defaultAuthorName  = "nobody"
	defaultAuthorEmail = "nobody@example.org"
)

// CommentSource yields the site's own comments in id order.
type CommentSource interface {
	CommentsAfter(ctx context.Context, lastId int64) ([]*db.CommentRecord, error)
}

// TitleSource looks up the title of a page on the site, for comments stored
// without one.
type TitleSource interface {
	PageTitle(ctx context.Context, url string) (string, error)
}

type Report struct {
	Total    int
	Exported int
	Failed   []int64
	LastId   int64
}

type Exporter struct {
	api        disqus.API
	source     CommentSource
	checkpoint checkpoint.Store
	rule       *rule.RunRule
	out        io.Writer
	titles     TitleSource
}

// NewExporter builds an exporter. store may be nil, in which case the run
// always starts from the first comment and nothing is saved.
func NewExporter(api disqus.API, source CommentSource, store checkpoint.Store, rule *rule.RunRule, out io.Writer) *Exporter {
	if out == nil {
		out = io.Discard
	}
	return &Exporter{api: api, source: source, checkpoint: store, rule: rule, out: out}
}

func (ex *Exporter) WithTitles(titles TitleSource) *Exporter {
	ex.titles = titles
	return ex
}

func (ex *Exporter) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	if ex.checkpoint != nil {
		lastId, ok, err := ex.checkpoint.Load(ctx)
		if err != nil {
			logrus.WithError(err).Error("checkpoint.Load failed")
			return report, err
		}
		if ok {
			logrus.Infof("Found previous state: %d, resuming after it", lastId)
			report.LastId = lastId
		}
	}

	comments, err := ex.source.CommentsAfter(ctx, report.LastId)
	if err != nil {
		logrus.WithError(err).Error("source.CommentsAfter failed")
		return report, err
	}
	report.Total = len(comments)
	logrus.Infof("Exporting %d comment(s)", len(comments))

	if ex.rule.DryRun {
		for _, c := range comments {
			fmt.Fprintf(ex.out, "%d\t%s\t%s\t%s\n", c.Id, ex.contentURL(c), c.UserName, c.SubmitDate.UTC().Format(createdAtLayout))
		}
		return report, nil
	}
	if len(comments) == 0 {
		return report, nil
	}

	forum, err := disqus.LookupForum(ctx, ex.api, ex.rule.UserAPIKey, ex.rule.Shortname)
	if err != nil {
		if errors.Is(err, disqus.ErrForumNotFound) {
			return report, fmt.Errorf(`%w, check your "DISQUS_WEBSITE_SHORTNAME" setting`, err)
		}
		return report, err
	}

	forumAPIKey, err := disqus.ForumAPIKey(ctx, ex.api, ex.rule.UserAPIKey, forum.ID)
	if err != nil {
		logrus.WithError(err).Error("get_forum_api_key failed")
		return report, err
	}

	for _, c := range comments {
		logrus.WithField("comment", c.Id).Debug("Exporting comment")

		if err := ex.exportComment(ctx, forumAPIKey, c); err != nil {
			report.Failed = append(report.Failed, c.Id)
			if err := ex.rule.Handle(err, logrus.Fields{"comment": c.Id}); err != nil {
				return report, err
			}
			continue
		}

		report.Exported++
		report.LastId = c.Id
		if ex.checkpoint != nil {
			if err := ex.checkpoint.Save(ctx, c.Id); err != nil {
				logrus.WithError(err).Error("checkpoint.Save failed")
				return report, err
			}
		}
	}
	return report, nil
}

func (ex *Exporter) contentURL(c *db.CommentRecord) string {
	return fmt.Sprintf("http://%s%s", ex.rule.GetSiteDomain(), c.ContentPath)
}

func (ex *Exporter) exportComment(ctx context.Context, forumAPIKey string, c *db.CommentRecord) error {
	url := ex.contentURL(c)

	thread, err := ex.findOrCreateThread(ctx, forumAPIKey, url, c)
	if err != nil {
		return err
	}

	name := c.UserName
	if name == "" {
		name = defaultAuthorName
	}
	email := c.UserEmail
	if email == "" {
		email = defaultAuthorEmail
	}

	params := disqus.Params{
		"forum_api_key": forumAPIKey,
		"thread_id":     thread.ID.String(),
		"message":       c.Comment,
		"author_name":   name,
		"author_email":  email,
		"author_url":    c.UserUrl,
		"created_at":    c.SubmitDate.UTC().Format(createdAtLayout),
	}
	if c.IpAddress != "" {
		params["ip_address"] = c.IpAddress
	}

	_, err = ex.api.CreatePost(ctx, params)
	return err
}

// findOrCreateThread looks the thread up by URL. A missing thread is created
// by identifier and then given the URL.
func (ex *Exporter) findOrCreateThread(ctx context.Context, forumAPIKey, url string, c *db.CommentRecord) (*disqus.Thread, error) {
	raw, err := ex.api.GetThreadByURL(ctx, disqus.Params{"url": url, "forum_api_key": forumAPIKey})
	if err != nil {
		return nil, err
	}
	thread, err := disqus.DecodeThread(raw)
	if err != nil {
		return nil, err
	}
	if thread != nil {
		return thread, nil
	}

	title := ex.threadTitle(ctx, url, c)
	identifier := c.ContentIdentifier
	if identifier == "" {
		identifier = title
	}
	raw, err = ex.api.ThreadByIdentifier(ctx, disqus.Params{
		"forum_api_key": forumAPIKey,
		"identifier":    identifier,
		"title":         title,
	})
	if err != nil {
		return nil, err
	}

	result := disqus.ThreadByIdentifierResult{}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode thread_by_identifier: %w", err)
	}
	if result.Thread == nil || result.Thread.ID == "" {
		return nil, fmt.Errorf("thread_by_identifier returned no thread for %q", identifier)
	}

	if _, err := ex.api.UpdateThread(ctx, disqus.Params{
		"forum_api_key": forumAPIKey,
		"thread_id":     result.Thread.ID.String(),
		"url":           url,
	}); err != nil {
		return nil, err
	}
	return result.Thread, nil
}

// threadTitle falls back to the page's own title, then to its URL.
func (ex *Exporter) threadTitle(ctx context.Context, url string, c *db.CommentRecord) string {
	if c.ContentTitle != "" {
		return c.ContentTitle
	}
	if ex.titles != nil {
		title, err := ex.titles.PageTitle(ctx, url)
		if err == nil {
			return title
		}
		logrus.WithError(err).WithField("url", url).Warn("could not read page title")
	}
	return url
}
