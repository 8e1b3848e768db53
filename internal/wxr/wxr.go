// Package wxr writes local comments as a WordPress eXtended RSS document,
// the bulk import format the comment host accepts.
package wxr

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/davidleitw/disqus/internal/db"
)

const (
	dateLayout = "2006-01-02 15:04:05"

	nsContent = "http://purl.org/rss/1.0/modules/content/"
	nsDsq     = "http://www.disqus.com/"
	nsDc      = "http://purl.org/dc/elements/1.1/"
	nsWp      = "http://wordpress.org/export/1.0/"

	CommentStatusOpen   = "open"
	CommentStatusClosed = "closed"
)

type Feed struct {
	Title       string
	Link        string
	Description string

	// SingleSignOn adds a dsq:remote block with the local user id to every
	// comment.
	SingleSignOn bool

	Items []*Item
}

// Item is one page that has comments.
type Item struct {
	Title            string
	Link             string
	Content          string
	ThreadIdentifier string
	PostDate         time.Time
	CommentStatus    string
	Comments         []*Comment
}

type Comment struct {
	Id       int64
	UserId   string
	Avatar   string
	Author   string
	Email    string
	URL      string
	IP       string
	Date     time.Time
	Content  string
	Approved bool
	// ParentId is 0 for a top-level comment.
	ParentId int64
}

type cdata struct {
	Text string `xml:",cdata"`
}

type rssDoc struct {
	XMLName   xml.Name   `xml:"rss"`
	Version   string     `xml:"version,attr"`
	NsContent string     `xml:"xmlns:content,attr"`
	NsDsq     string     `xml:"xmlns:dsq,attr"`
	NsDc      string     `xml:"xmlns:dc,attr"`
	NsWp      string     `xml:"xmlns:wp,attr"`
	Channel   channelDoc `xml:"channel"`
}

type channelDoc struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []itemDoc `xml:"item"`
}

type itemDoc struct {
	Title            string       `xml:"title"`
	Link             string       `xml:"link"`
	Content          cdata        `xml:"content:encoded"`
	ThreadIdentifier string       `xml:"dsq:thread_identifier"`
	PostDate         string       `xml:"wp:post_date_gmt"`
	CommentStatus    string       `xml:"wp:comment_status"`
	Comments         []commentDoc `xml:"wp:comment"`
}

type remoteDoc struct {
	Id     string `xml:"dsq:id"`
	Avatar string `xml:"dsq:avatar"`
}

type commentDoc struct {
	Remote   *remoteDoc `xml:"dsq:remote,omitempty"`
	Id       string     `xml:"wp:comment_id"`
	Author   string     `xml:"wp:comment_author"`
	Email    string     `xml:"wp:comment_author_email"`
	URL      string     `xml:"wp:comment_author_url"`
	IP       string     `xml:"wp:comment_author_IP"`
	Date     string     `xml:"wp:comment_date_gmt"`
	Content  cdata      `xml:"wp:comment_content"`
	Approved string     `xml:"wp:comment_approved"`
	Parent   string     `xml:"wp:comment_parent"`
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func (f *Feed) document() *rssDoc {
	doc := &rssDoc{
		Version:   "2.0",
		NsContent: nsContent,
		NsDsq:     nsDsq,
		NsDc:      nsDc,
		NsWp:      nsWp,
		Channel: channelDoc{
			Title:       f.Title,
			Link:        f.Link,
			Description: f.Description,
		},
	}

	for _, item := range f.Items {
		// Pages without comments carry nothing to import.
		if len(item.Comments) == 0 {
			continue
		}

		status := item.CommentStatus
		if status == "" {
			status = CommentStatusOpen
		}
		idoc := itemDoc{
			Title:            item.Title,
			Link:             item.Link,
			Content:          cdata{item.Content},
			ThreadIdentifier: item.ThreadIdentifier,
			PostDate:         formatDate(item.PostDate),
			CommentStatus:    status,
		}

		for _, c := range item.Comments {
			cdoc := commentDoc{
				Id:       strconv.FormatInt(c.Id, 10),
				Author:   c.Author,
				Email:    c.Email,
				URL:      c.URL,
				IP:       c.IP,
				Date:     formatDate(c.Date),
				Content:  cdata{c.Content},
				Approved: "0",
				Parent:   strconv.FormatInt(c.ParentId, 10),
			}
			if c.Approved {
				cdoc.Approved = "1"
			}
			if f.SingleSignOn {
				cdoc.Remote = &remoteDoc{Id: c.UserId, Avatar: c.Avatar}
			}
			idoc.Comments = append(idoc.Comments, cdoc)
		}
		doc.Channel.Items = append(doc.Channel.Items, idoc)
	}
	return doc
}

func (f *Feed) WriteTo(w io.Writer) (int64, error) {
	out, err := xml.MarshalIndent(f.document(), "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshal wxr: %w", err)
	}

	n, err := io.WriteString(w, xml.Header)
	if err != nil {
		return int64(n), err
	}
	m, err := w.Write(append(out, '\n'))
	return int64(n + m), err
}

// FromComments groups comments into one item per page, in the order the
// pages first appear. Links are built as http://<domain><path>.
func FromComments(comments []*db.CommentRecord, domain string) []*Item {
	items := make([]*Item, 0)
	byPath := make(map[string]*Item)

	for _, c := range comments {
		item, ok := byPath[c.ContentPath]
		if !ok {
			link := fmt.Sprintf("http://%s%s", domain, c.ContentPath)
			identifier := c.ContentIdentifier
			if identifier == "" {
				identifier = link
			}
			item = &Item{
				Title:            c.ContentTitle,
				Link:             link,
				ThreadIdentifier: identifier,
				PostDate:         c.SubmitDate,
				CommentStatus:    CommentStatusOpen,
			}
			byPath[c.ContentPath] = item
			items = append(items, item)
		}

		if c.SubmitDate.Before(item.PostDate) {
			item.PostDate = c.SubmitDate
		}

		item.Comments = append(item.Comments, &Comment{
			Id:       c.Id,
			UserId:   c.UserId,
			Author:   c.UserName,
			Email:    c.UserEmail,
			URL:      c.UserUrl,
			IP:       c.IpAddress,
			Date:     c.SubmitDate,
			Content:  c.Comment,
			Approved: c.IsPublic,
			ParentId: c.ParentId.Int64,
		})
	}
	return items
}
