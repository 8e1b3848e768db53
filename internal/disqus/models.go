package disqus

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrForumNotFound is returned when no forum on the account has the
// configured shortname.
var ErrForumNotFound = errors.New("forum not found")

type Forum struct {
	ID        Ref    `json:"id"`
	Shortname string `json:"shortname"`
	Name      string `json:"name"`
}

type Thread struct {
	ID            Ref        `json:"id"`
	Forum         Ref        `json:"forum"`
	Slug          string     `json:"slug"`
	Title         string     `json:"title"`
	CreatedAt     string     `json:"created_at"`
	AllowComments bool       `json:"allow_comments"`
	URL           *string    `json:"url"`
	Identifier    Identifier `json:"identifier"`
}

type Post struct {
	ID          Ref    `json:"id"`
	Forum       Ref    `json:"forum"`
	Thread      Ref    `json:"thread"`
	CreatedAt   string `json:"created_at"`
	Message     string `json:"message"`
	ParentPost  Ref    `json:"parent_post"`
	Shown       bool   `json:"shown"`
	Status      string `json:"status,omitempty"`
	IsAnonymous bool   `json:"is_anonymous"`

	// Exactly one of these is set, depending on IsAnonymous.
	AnonymousAuthor *AnonymousAuthor `json:"anonymous_author,omitempty"`
	Author          *Author          `json:"author,omitempty"`
}

type AnonymousAuthor struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	Email     string `json:"email,omitempty"`
	EmailHash string `json:"email_hash"`
}

type Author struct {
	ID          Ref    `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	URL         string `json:"url"`
	EmailHash   string `json:"email_hash"`
	HasAvatar   bool   `json:"has_avatar"`
}

// ThreadByIdentifierResult is the message of thread_by_identifier.
type ThreadByIdentifierResult struct {
	Thread  *Thread `json:"thread"`
	Created bool    `json:"created"`
}

// Ref is a remote id. The host sends ids as strings or numbers, and
// sometimes embeds the whole referenced object; only its id is kept.
// An empty Ref means null.
type Ref string

func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = Ref(s)
	case '{':
		var obj struct {
			ID Ref `json:"id"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*r = obj.ID
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("ref: %w", err)
		}
		*r = Ref(n.String())
	}
	return nil
}

func (r Ref) MarshalJSON() ([]byte, error) {
	if r == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(r))
}

func (r Ref) String() string { return string(r) }

// Identifier is a thread identifier. The host returns it as a list of
// strings, older payloads as a single string.
type Identifier []string

func (id *Identifier) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*id = nil
	case data[0] == '[':
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*id = list
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = Identifier{s}
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("identifier: %w", err)
		}
		*id = Identifier{n.String()}
	}
	return nil
}

// First returns the primary identifier or "" when there is none.
func (id Identifier) First() string {
	if len(id) == 0 {
		return ""
	}
	return id[0]
}

func DecodeForums(raw json.RawMessage) ([]Forum, error) {
	forums := make([]Forum, 0)
	if err := decodeMessage(raw, &forums); err != nil {
		return nil, fmt.Errorf("decode forums: %w", err)
	}
	return forums, nil
}

func DecodeThreads(raw json.RawMessage) ([]Thread, error) {
	threads := make([]Thread, 0)
	if err := decodeMessage(raw, &threads); err != nil {
		return nil, fmt.Errorf("decode threads: %w", err)
	}
	return threads, nil
}

func DecodePosts(raw json.RawMessage) ([]Post, error) {
	posts := make([]Post, 0)
	if err := decodeMessage(raw, &posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return posts, nil
}

// DecodeThread decodes a single thread. A null or empty message yields nil,
// which is how get_thread_by_url reports a miss.
func DecodeThread(raw json.RawMessage) (*Thread, error) {
	if IsEmpty(raw) {
		return nil, nil
	}
	thread := &Thread{}
	if err := json.Unmarshal(raw, thread); err != nil {
		return nil, fmt.Errorf("decode thread: %w", err)
	}
	if thread.ID == "" {
		return nil, nil
	}
	return thread, nil
}

// DecodeString decodes a message that is a bare JSON string, such as the
// result of get_forum_api_key.
func DecodeString(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("decode string: %w", err)
	}
	return s, nil
}

// IsEmpty reports whether a message is null, an empty string, an empty list
// or an empty object. Pagination stops on the first empty page.
func IsEmpty(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	switch string(trimmed) {
	case "", "null", `""`, "[]", "{}":
		return true
	}
	if trimmed[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err == nil {
			return len(list) == 0
		}
	}
	return false
}

func decodeMessage(raw json.RawMessage, v any) error {
	if IsEmpty(raw) {
		return nil
	}
	return json.Unmarshal(raw, v)
}

// FindForum returns the forum with the given shortname.
func FindForum(forums []Forum, shortname string) (*Forum, error) {
	for i := range forums {
		if forums[i].Shortname == shortname {
			return &forums[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no forum with shortname %q", ErrForumNotFound, shortname)
}

// LookupForum lists the forums of a user api key and picks one by shortname.
func LookupForum(ctx context.Context, api API, userAPIKey, shortname string) (*Forum, error) {
	raw, err := api.GetForumList(ctx, Params{"user_api_key": userAPIKey})
	if err != nil {
		return nil, err
	}
	forums, err := DecodeForums(raw)
	if err != nil {
		return nil, err
	}
	return FindForum(forums, shortname)
}

// ForumAPIKey fetches the per-forum api key used by write operations.
func ForumAPIKey(ctx context.Context, api API, userAPIKey string, forumID Ref) (string, error) {
	raw, err := api.GetForumAPIKey(ctx, Params{"user_api_key": userAPIKey, "forum_id": forumID.String()})
	if err != nil {
		return "", err
	}
	return DecodeString(raw)
}
