package disqus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultBaseURL is the root every method name is appended to.
	// Example: http://disqus.com/api/get_forum_list?user_api_key=...&api_version=1.1
	DefaultBaseURL = "http://disqus.com/api/"

	// DefaultAPIVersion is sent as the api_version query parameter on every call.
	DefaultAPIVersion = "1.1"

	DefaultTimeout = 30 * time.Second

	apiVersionParam = "api_version"
)

// API is the set of remote operations the import, export and dump drivers
// depend on.
type API interface {
	Call(ctx context.Context, method string, params Params) (json.RawMessage, error)

	CreatePost(ctx context.Context, params Params) (json.RawMessage, error)
	GetForumAPIKey(ctx context.Context, params Params) (json.RawMessage, error)
	GetForumList(ctx context.Context, params Params) (json.RawMessage, error)
	GetForumPosts(ctx context.Context, params Params) (json.RawMessage, error)
	GetNumPosts(ctx context.Context, params Params) (json.RawMessage, error)
	GetThreadByURL(ctx context.Context, params Params) (json.RawMessage, error)
	GetThreadList(ctx context.Context, params Params) (json.RawMessage, error)
	GetThreadPosts(ctx context.Context, params Params) (json.RawMessage, error)
	GetUpdatedThreads(ctx context.Context, params Params) (json.RawMessage, error)
	GetUserName(ctx context.Context, params Params) (json.RawMessage, error)
	ModeratePost(ctx context.Context, params Params) (json.RawMessage, error)
	ThreadByIdentifier(ctx context.Context, params Params) (json.RawMessage, error)
	UpdateThread(ctx context.Context, params Params) (json.RawMessage, error)
}

// Client talks to the comment host. The zero value is not usable, build one
// with New. A Client is safe for concurrent use.
type Client struct {
	baseURL    string
	apiVersion string
	methods    map[string]Verb

	client *resty.Client
}

var _ API = (*Client)(nil)

// envelope is the shape of every response body.
type envelope struct {
	Succeeded *bool           `json:"succeeded"`
	Code      string          `json:"code"`
	Message   json.RawMessage `json:"message"`
}

func New(opts ...Option) *Client {
	o := &options{
		baseURL:    DefaultBaseURL,
		apiVersion: DefaultAPIVersion,
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}

	var rc *resty.Client
	if o.httpClient != nil {
		rc = resty.NewWithClient(o.httpClient)
	} else {
		rc = resty.New().SetTimeout(o.timeout)
	}
	// Every call is sent exactly once; create_post must never be duplicated.
	rc.SetRetryCount(0)
	rc.SetLogger(logrus.StandardLogger())
	rc.SetHeader("Accept", "application/json")
	if o.userAgent != "" {
		rc.SetHeader("User-Agent", o.userAgent)
	}

	baseURL := o.baseURL
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	return &Client{
		baseURL:    baseURL,
		apiVersion: o.apiVersion,
		methods:    Methods(),
		client:     rc,
	}
}

// Call invokes a named remote method and returns the decoded envelope's
// message untouched.
func (c *Client) Call(ctx context.Context, method string, params Params) (json.RawMessage, error) {
	verb, ok := c.methods[method]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}

	// The version is fixed per client and always sent by the client itself.
	if _, ok := params[apiVersionParam]; ok {
		return nil, fmt.Errorf("disqus: %s: %w: %s is set by the client", method, ErrUnsupportedParam, apiVersionParam)
	}

	values, err := params.Values()
	if err != nil {
		return nil, fmt.Errorf("disqus: %s: %w", method, err)
	}

	req := c.client.R().SetContext(ctx)
	var (
		res *resty.Response
		url string
	)
	switch verb {
	case GET:
		url = c.baseURL + method
		values.Set(apiVersionParam, c.apiVersion)
		res, err = req.SetQueryParamsFromValues(values).Get(url)
	case POST:
		url = c.baseURL + method + "/"
		res, err = req.
			SetQueryParam(apiVersionParam, c.apiVersion).
			SetFormDataFromValues(values).
			Post(url)
	default:
		return nil, fmt.Errorf("%w: %s uses %q", ErrUnsupportedVerb, method, verb)
	}
	if err != nil {
		logrus.WithError(err).Errorf("%s %s failed", verb, url)
		return nil, &TransportError{Method: method, Err: err}
	}

	return decodeResponse(method, res.StatusCode(), res.Body())
}

func decodeResponse(method string, status int, body []byte) (json.RawMessage, error) {
	env := envelope{}
	decodeErr := json.Unmarshal(body, &env)
	if decodeErr == nil && env.Succeeded == nil {
		decodeErr = fmt.Errorf("response has no succeeded field")
	}

	if decodeErr != nil {
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			logrus.WithField("status", status).Errorf("%s returned a non-JSON error response", method)
			return nil, &TransportError{Method: method, StatusCode: status, Err: fmt.Errorf("unexpected status %d", status)}
		}
		logrus.WithError(decodeErr).Errorf("%s response decode failed", method)
		return nil, &DecodeError{Method: method, Body: bytes.Clone(body), Err: decodeErr}
	}

	if !*env.Succeeded {
		return nil, &APIError{Method: method, StatusCode: status, Code: env.Code, Message: env.Message}
	}
	return env.Message, nil
}
