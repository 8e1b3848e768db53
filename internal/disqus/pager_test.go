package disqus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEachForumPostsPageStopsOnEmptyPage(t *testing.T) {
	var (
		mu     sync.Mutex
		starts []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		mu.Lock()
		starts = append(starts, q.Get("start"))
		mu.Unlock()
		assert.Equal(t, "2", q.Get("limit"))
		assert.Equal(t, "spam", q.Get("exclude"))

		start, _ := strconv.Atoi(q.Get("start"))
		message := "[]"
		if start < 4 {
			message = fmt.Sprintf(`[{"id": "%d"}, {"id": "%d"}]`, start, start+1)
		}
		fmt.Fprintf(w, `{"succeeded": true, "code": "ok", "message": %s}`, message)
	}))
	defer server.Close()

	client := New(BaseURL(server.URL + "/api/"))
	var pages []json.RawMessage
	err := EachForumPostsPage(context.Background(), client, Params{"forum_id": "1", "exclude": "spam"}, 2,
		func(start int, page json.RawMessage) error {
			pages = append(pages, page)
			return nil
		})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"0", "2", "4"}, starts)
	assert.Len(t, pages, 2)
}

func TestEachForumPostsPagePropagatesErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"succeeded": false, "code": "no-forum", "message": "Forum not found"}`)
	}))
	defer server.Close()

	client := New(BaseURL(server.URL))
	err := EachForumPostsPage(context.Background(), client, Params{"forum_id": "1"}, 10,
		func(int, json.RawMessage) error { return nil })
	require.True(t, IsAPI(err))
}
