package wxr

import (
	"bytes"
	"database/sql"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/davidleitw/disqus/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleComments() []*db.CommentRecord {
	return []*db.CommentRecord{
		{
			Id: 1, ContentPath: "/hello/", ContentTitle: "Hello", ContentIdentifier: "entry-1",
			Comment: "first <b>post</b>", UserId: "42", UserName: "Ann", UserEmail: "ann@example.com",
			UserUrl: "http://ann.example", IpAddress: "10.0.0.1",
			SubmitDate: time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC), IsPublic: true,
		},
		{
			Id: 2, ContentPath: "/other/", ContentTitle: "Other",
			Comment: "elsewhere", UserName: "Bob",
			SubmitDate: time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC),
		},
		{
			Id: 3, ContentPath: "/hello/", ContentTitle: "Hello", ContentIdentifier: "entry-1",
			Comment: "a reply", UserName: "Bob",
			SubmitDate: time.Date(2024, 2, 28, 9, 15, 0, 0, time.UTC), IsPublic: true,
			ParentId: sql.NullInt64{Int64: 1, Valid: true},
		},
	}
}

func render(t *testing.T, feed *Feed) string {
	t.Helper()
	buf := &bytes.Buffer{}
	_, err := feed.WriteTo(buf)
	require.NoError(t, err)

	dec := xml.NewDecoder(bytes.NewReader(buf.Bytes()))
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err, "feed is not well-formed XML")
	}
	return buf.String()
}

func TestFromCommentsGroupsByPage(t *testing.T) {
	items := FromComments(sampleComments(), "blog.example.com")
	require.Len(t, items, 2)

	hello := items[0]
	assert.Equal(t, "Hello", hello.Title)
	assert.Equal(t, "http://blog.example.com/hello/", hello.Link)
	assert.Equal(t, "entry-1", hello.ThreadIdentifier)
	assert.Equal(t, time.Date(2024, 2, 28, 9, 15, 0, 0, time.UTC), hello.PostDate)
	require.Len(t, hello.Comments, 2)
	assert.Equal(t, int64(1), hello.Comments[1].ParentId)

	other := items[1]
	assert.Equal(t, "http://blog.example.com/other/", other.ThreadIdentifier)
	assert.False(t, other.Comments[0].Approved)
}

func TestWriteTo(t *testing.T) {
	feed := &Feed{
		Title: "Blog",
		Link:  "http://blog.example.com/",
		Items: FromComments(sampleComments(), "blog.example.com"),
	}
	out := render(t, feed)

	assert.True(t, strings.HasPrefix(out, xml.Header))
	assert.Contains(t, out, `xmlns:content="http://purl.org/rss/1.0/modules/content/"`)
	assert.Contains(t, out, `xmlns:dsq="http://www.disqus.com/"`)
	assert.Contains(t, out, `xmlns:dc="http://purl.org/dc/elements/1.1/"`)
	assert.Contains(t, out, `xmlns:wp="http://wordpress.org/export/1.0/"`)

	assert.Contains(t, out, "<dsq:thread_identifier>entry-1</dsq:thread_identifier>")
	assert.Contains(t, out, "<wp:post_date_gmt>2024-02-28 09:15:00</wp:post_date_gmt>")
	assert.Contains(t, out, "<wp:comment_status>open</wp:comment_status>")
	assert.Contains(t, out, "<wp:comment_date_gmt>2024-03-01 12:30:45</wp:comment_date_gmt>")
	assert.Contains(t, out, "<wp:comment_content><![CDATA[first <b>post</b>]]></wp:comment_content>")
	assert.Contains(t, out, "<wp:comment_author_IP>10.0.0.1</wp:comment_author_IP>")
	assert.Contains(t, out, "<wp:comment_parent>1</wp:comment_parent>")
	assert.Equal(t, 2, strings.Count(out, "<wp:comment_approved>1</wp:comment_approved>"))
	assert.Equal(t, 3, strings.Count(out, "<wp:comment>"))
	assert.NotContains(t, out, "dsq:remote")
}

func TestWriteToSingleSignOn(t *testing.T) {
	feed := &Feed{SingleSignOn: true, Items: FromComments(sampleComments()[:1], "blog.example.com")}
	out := render(t, feed)

	assert.Contains(t, out, "<dsq:remote>")
	assert.Contains(t, out, "<dsq:id>42</dsq:id>")
	assert.Less(t, strings.Index(out, "<dsq:remote>"), strings.Index(out, "<wp:comment_id>"))
}

func TestWriteToSkipsPagesWithoutComments(t *testing.T) {
	feed := &Feed{Items: []*Item{{Title: "Empty", Link: "http://blog.example.com/empty/"}}}
	out := render(t, feed)
	assert.NotContains(t, out, "<item>")
}
