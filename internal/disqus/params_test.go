package disqus

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamsRoundTrip(t *testing.T) {
	params := Params{
		"user_api_key": "spam",
		"start":        100,
		"limit":        int64(200),
		"ratio":        0.5,
		"shown":        true,
		"exclude":      []string{"spam", "killed"},
		"ids":          []int{1, 2},
		"url":          "http://example.com/a b?c=d&e",
	}

	encoded, err := params.Encode()
	require.NoError(t, err)

	parsed, err := url.ParseQuery(encoded)
	require.NoError(t, err)
	assert.Equal(t, url.Values{
		"user_api_key": {"spam"},
		"start":        {"100"},
		"limit":        {"200"},
		"ratio":        {"0.5"},
		"shown":        {"true"},
		"exclude":      {"spam", "killed"},
		"ids":          {"1", "2"},
		"url":          {"http://example.com/a b?c=d&e"},
	}, parsed)
}

func TestParamsSkipsNil(t *testing.T) {
	values, err := Params{"a": nil, "b": "x"}.Values()
	require.NoError(t, err)
	assert.Equal(t, url.Values{"b": {"x"}}, values)
}

func TestParamsStringer(t *testing.T) {
	values, err := Params{"forum_id": Ref("42")}.Values()
	require.NoError(t, err)
	assert.Equal(t, "42", values.Get("forum_id"))
}

func TestParamsUnsupportedValue(t *testing.T) {
	_, err := Params{"bad": map[string]string{"a": "b"}}.Values()
	require.ErrorIs(t, err, ErrUnsupportedParam)
}
