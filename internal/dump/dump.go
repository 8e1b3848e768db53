// Package dump pages through every post of a forum and writes the raw pages
// out as one JSON document.
package dump

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/davidleitw/disqus/internal/disqus"
	"github.com/davidleitw/disqus/internal/rule"
	"github.com/sirupsen/logrus"
)

type Dumper struct {
	api  disqus.API
	rule *rule.RunRule
}

func NewDumper(api disqus.API, rule *rule.RunRule) *Dumper {
	return &Dumper{api: api, rule: rule}
}

// Pages returns the get_forum_posts pages of the configured forum, in order.
func (d *Dumper) Pages(ctx context.Context) ([]json.RawMessage, error) {
	forum, err := disqus.LookupForum(ctx, d.api, d.rule.UserAPIKey, d.rule.Shortname)
	if err != nil {
		return nil, fmt.Errorf(`could not find forum, check your "DISQUS_WEBSITE_SHORTNAME" setting: %w`, err)
	}

	params := disqus.Params{
		"user_api_key": d.rule.UserAPIKey,
		"forum_id":     forum.ID.String(),
		"filter":       d.rule.Filter,
		"exclude":      d.rule.Exclude,
	}

	pages := make([]json.RawMessage, 0)
	err = disqus.EachForumPostsPage(ctx, d.api, params, d.rule.GetPageSize(), func(start int, page json.RawMessage) error {
		logrus.WithField("start", start).Debug("Fetched forum posts page")
		pages = append(pages, page)
		return nil
	})
	if err != nil {
		logrus.WithError(err).Error("disqus.EachForumPostsPage failed")
		return nil, err
	}
	return pages, nil
}

// Run fetches every page and writes them to w. indent <= 0 writes compact
// JSON, otherwise nested values are indented by that many spaces.
func (d *Dumper) Run(ctx context.Context, w io.Writer, indent int) error {
	pages, err := d.Pages(ctx)
	if err != nil {
		return err
	}
	return Write(w, pages, indent)
}

func Write(w io.Writer, pages []json.RawMessage, indent int) error {
	if pages == nil {
		pages = []json.RawMessage{}
	}

	var (
		out []byte
		err error
	)
	if indent > 0 {
		out, err = json.MarshalIndent(pages, "", strings.Repeat(" ", indent))
	} else {
		out, err = json.Marshal(pages)
	}
	if err != nil {
		return err
	}

	out = append(out, '\n')
	_, err = w.Write(out)
	return err
}
