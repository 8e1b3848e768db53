package rule

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

const (
	DefaultPageSize    = 100
	DefaultThreadLimit = 65000
	DefaultSiteDomain  = "example.com"
)

// ErrorPolicy decides what a batch run does when one record fails.
type ErrorPolicy string

const (
	// Abort stops the run at the first failing record.
	Abort ErrorPolicy = "abort"
	// Continue logs the failure and moves on to the next record.
	Continue ErrorPolicy = "continue"
)

func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch ErrorPolicy(s) {
	case Abort, "":
		return Abort, nil
	case Continue:
		return Continue, nil
	}
	return "", fmt.Errorf("unknown error policy %q, want %q or %q", s, Abort, Continue)
}

type RuleOption func(*RunRule)

func UserAPIKey(key string) RuleOption {
	return func(o *RunRule) {
		o.UserAPIKey = key
	}
}

func Shortname(shortname string) RuleOption {
	return func(o *RunRule) {
		o.Shortname = shortname
	}
}

func SiteDomain(domain string) RuleOption {
	return func(o *RunRule) {
		o.SiteDomain = domain
	}
}

func PageSize(size int) RuleOption {
	return func(o *RunRule) {
		o.PageSize = size
	}
}

func ThreadLimit(limit int) RuleOption {
	return func(o *RunRule) {
		o.ThreadLimit = limit
	}
}

func DryRun(dryRun bool) RuleOption {
	return func(o *RunRule) {
		o.DryRun = dryRun
	}
}

func OnError(policy ErrorPolicy) RuleOption {
	return func(o *RunRule) {
		o.OnError = policy
	}
}

// Filter and Exclude are passed as-is to get_forum_posts.
func Filter(filter string) RuleOption {
	return func(o *RunRule) {
		o.Filter = filter
	}
}

func Exclude(exclude string) RuleOption {
	return func(o *RunRule) {
		o.Exclude = exclude
	}
}

// RunRule holds what an import, export or dump run needs to know about the
// account and how to behave.
type RunRule struct {
	UserAPIKey string
	Shortname  string
	SiteDomain string

	PageSize    int
	ThreadLimit int
	DryRun      bool
	OnError     ErrorPolicy

	Filter  string
	Exclude string
}

func NewRunRule(opts ...RuleOption) (*RunRule, error) {
	rule := &RunRule{}
	for _, opt := range opts {
		opt(rule)
	}

	if rule.Shortname == "" {
		return nil, errors.New("forum shortname is not set")
	}

	if rule.OnError == "" {
		rule.OnError = Abort
	}
	if _, err := ParseErrorPolicy(string(rule.OnError)); err != nil {
		return nil, err
	}

	return rule, nil
}

func (rule *RunRule) GetPageSize() int {
	if rule.PageSize <= 0 {
		return DefaultPageSize
	}
	return rule.PageSize
}

func (rule *RunRule) GetThreadLimit() int {
	if rule.ThreadLimit <= 0 {
		return DefaultThreadLimit
	}
	return rule.ThreadLimit
}

func (rule *RunRule) GetSiteDomain() string {
	if rule.SiteDomain == "" {
		return DefaultSiteDomain
	}
	return rule.SiteDomain
}

// Handle applies the error policy to a failure on a single record. It returns
// err when the run must stop and nil when it may go on.
func (rule *RunRule) Handle(err error, fields logrus.Fields) error {
	if err == nil {
		return nil
	}
	entry := logrus.WithError(err).WithFields(fields)
	if rule.OnError == Continue {
		entry.Warn("record failed, continuing")
		return nil
	}
	entry.Error("record failed, aborting")
	return err
}
