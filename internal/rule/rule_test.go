package rule

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunRuleDefaults(t *testing.T) {
	rule, err := NewRunRule(Shortname("blog"))
	require.NoError(t, err)

	assert.Equal(t, Abort, rule.OnError)
	assert.Equal(t, DefaultPageSize, rule.GetPageSize())
	assert.Equal(t, DefaultThreadLimit, rule.GetThreadLimit())
	assert.Equal(t, DefaultSiteDomain, rule.GetSiteDomain())
}

func TestNewRunRuleRequiresShortname(t *testing.T) {
	_, err := NewRunRule(UserAPIKey("k"))
	require.Error(t, err)
}

func TestNewRunRuleRejectsUnknownPolicy(t *testing.T) {
	_, err := NewRunRule(Shortname("blog"), OnError("shrug"))
	require.Error(t, err)
}

func TestParseErrorPolicy(t *testing.T) {
	p, err := ParseErrorPolicy("continue")
	require.NoError(t, err)
	assert.Equal(t, Continue, p)

	p, err = ParseErrorPolicy("")
	require.NoError(t, err)
	assert.Equal(t, Abort, p)
}

func TestHandle(t *testing.T) {
	failure := errors.New("boom")

	abort, err := NewRunRule(Shortname("blog"))
	require.NoError(t, err)
	assert.Equal(t, failure, abort.Handle(failure, logrus.Fields{"comment": 1}))
	assert.NoError(t, abort.Handle(nil, nil))

	cont, err := NewRunRule(Shortname("blog"), OnError(Continue))
	require.NoError(t, err)
	assert.NoError(t, cont.Handle(failure, logrus.Fields{"comment": 1}))
}
