package checkpoint

import (
	"bufio"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 answers the handful of path-style S3 calls MinioStore makes.
type fakeS3 struct {
	mu          sync.Mutex
	buckets     map[string]bool
	objects     map[string][]byte
	bucketsMade int
}

func newFakeS3(t *testing.T) (*fakeS3, MinioConfig) {
	t.Helper()
	s3 := &fakeS3{buckets: map[string]bool{}, objects: map[string][]byte{}}
	srv := httptest.NewServer(s3)
	t.Cleanup(srv.Close)

	return s3, MinioConfig{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		AccessKey: "access",
		SecretKey: "secret",
		Bucket:    "checkpoints",
		Object:    "export.state",
		Region:    "us-east-1",
	}
}

func (s *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	bucket, key, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")

	s.mu.Lock()
	defer s.mu.Unlock()

	if key == "" {
		s.serveBucket(w, r, bucket)
		return
	}
	if !s.buckets[bucket] {
		s3Error(w, http.StatusNotFound, "NoSuchBucket")
		return
	}

	switch r.Method {
	case http.MethodPut:
		body, err := readObjectBody(r)
		if err != nil {
			s3Error(w, http.StatusBadRequest, "IncompleteBody")
			return
		}
		s.objects[bucket+"/"+key] = body
		sum := md5.Sum(body)
		w.Header().Set("ETag", `"`+hex.EncodeToString(sum[:])+`"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodGet, http.MethodHead:
		body, ok := s.objects[bucket+"/"+key]
		if !ok {
			s3Error(w, http.StatusNotFound, "NoSuchKey")
			return
		}
		sum := md5.Sum(body)
		w.Header().Set("ETag", `"`+hex.EncodeToString(sum[:])+`"`)
		w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Type", "text/plain")
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			w.Write(body)
		}
	default:
		s3Error(w, http.StatusMethodNotAllowed, "MethodNotAllowed")
	}
}

func (s *fakeS3) made() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bucketsMade
}

func (s *fakeS3) serveBucket(w http.ResponseWriter, r *http.Request, bucket string) {
	switch {
	case r.Method == http.MethodGet && r.URL.Query().Has("location"):
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?><LocationConstraint xmlns="http://s3.amazonaws.com/doc/2006-03-01/"></LocationConstraint>`)
	case r.Method == http.MethodHead:
		if !s.buckets[bucket] {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut:
		s.buckets[bucket] = true
		s.bucketsMade++
		w.WriteHeader(http.StatusOK)
	default:
		s3Error(w, http.StatusMethodNotAllowed, "MethodNotAllowed")
	}
}

// readObjectBody strips the aws-chunked framing plain-HTTP uploads are signed with.
func readObjectBody(r *http.Request) ([]byte, error) {
	chunked := strings.HasPrefix(r.Header.Get("X-Amz-Content-Sha256"), "STREAMING-") ||
		strings.Contains(r.Header.Get("Content-Encoding"), "aws-chunked")
	if !chunked {
		return io.ReadAll(r.Body)
	}

	body := []byte{}
	br := bufio.NewReader(r.Body)
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, err
		}
		sizeHex, _, _ := strings.Cut(strings.TrimSpace(line), ";")
		size, err := strconv.ParseInt(sizeHex, 16, 64)
		if err != nil {
			return nil, err
		}
		if size == 0 {
			return body, nil
		}
		chunk := make([]byte, size)
		if _, err := io.ReadFull(br, chunk); err != nil {
			return nil, err
		}
		body = append(body, chunk...)
		if _, err := br.Discard(2); err != nil {
			return nil, err
		}
	}
}

func s3Error(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>%s</Code><Message>%s</Message></Error>`, code, code)
}

func TestMinioStore(t *testing.T) {
	ctx := context.Background()
	s3, conf := newFakeS3(t)

	store, err := NewMinioStore(ctx, conf)
	require.NoError(t, err)
	assert.Equal(t, 1, s3.made())

	_, ok, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save(ctx, 41))
	require.NoError(t, store.Save(ctx, 42))

	id, ok, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	s3.mu.Lock()
	assert.Equal(t, "42", string(s3.objects["checkpoints/export.state"]))
	s3.mu.Unlock()
}

func TestMinioStoreReusesBucket(t *testing.T) {
	ctx := context.Background()
	s3, conf := newFakeS3(t)

	first, err := NewMinioStore(ctx, conf)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, 7))

	second, err := NewMinioStore(ctx, conf)
	require.NoError(t, err)
	assert.Equal(t, 1, s3.made())

	id, ok, err := second.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)
}

func TestMinioStoreDefaultObject(t *testing.T) {
	ctx := context.Background()
	s3, conf := newFakeS3(t)
	conf.Object = ""

	store, err := NewMinioStore(ctx, conf)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, 3))

	s3.mu.Lock()
	defer s3.mu.Unlock()
	assert.Equal(t, "3", string(s3.objects["checkpoints/disqus-export.state"]))
}

func TestMinioStoreRejectsGarbage(t *testing.T) {
	ctx := context.Background()
	s3, conf := newFakeS3(t)

	store, err := NewMinioStore(ctx, conf)
	require.NoError(t, err)

	s3.mu.Lock()
	s3.objects["checkpoints/export.state"] = []byte("seventeen")
	s3.mu.Unlock()

	_, _, err = store.Load(ctx)
	require.Error(t, err)
}
