package craw

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const defaultTimeout = 10 * time.Second

var ErrTitleNotFound = errors.New("page has no title")

// Crawler reads the site's own pages.
type Crawler interface {
	PageTitle(ctx context.Context, url string) (string, error)
}

type crawler struct {
	client *resty.Client
}

var _ Crawler = (*crawler)(nil)

func NewCrawler() Crawler {
	return &crawler{
		client: resty.New().
			SetTimeout(defaultTimeout).
			SetRetryCount(0).
			SetLogger(logrus.StandardLogger()),
	}
}

// NewCrawlerWithClient uses client for every page fetch.
func NewCrawlerWithClient(client *http.Client) Crawler {
	return &crawler{client: resty.NewWithClient(client).SetRetryCount(0)}
}

func (crawler *crawler) getDocumentFromUrl(ctx context.Context, url string) (*goquery.Document, error) {
	res, err := crawler.client.R().SetContext(ctx).Get(url)
	if err != nil {
		logrus.WithError(err).Errorf("GET %s failed", url)
		return nil, err
	}
	if res.IsError() {
		return nil, fmt.Errorf("GET %s: %s", url, res.Status())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		logrus.WithError(err).Errorf("goquery.NewDocumentFromReader failed")
		return nil, err
	}
	return doc, nil
}

// PageTitle prefers og:title, then <title>, then the first <h1>.
func (crawler *crawler) PageTitle(ctx context.Context, url string) (string, error) {
	doc, err := crawler.getDocumentFromUrl(ctx, url)
	if err != nil {
		return "", err
	}

	if title, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title), nil
	}
	if title := strings.TrimSpace(doc.Find("head>title").First().Text()); title != "" {
		return title, nil
	}
	if title := strings.TrimSpace(doc.Find("h1").First().Text()); title != "" {
		return title, nil
	}
	return "", fmt.Errorf("%w: %s", ErrTitleNotFound, url)
}
