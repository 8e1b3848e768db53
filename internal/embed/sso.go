package embed

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// User is the local identity handed to the comment host through single
// sign-on. A nil *User is an anonymous visitor.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// SignUser builds the remote_auth_s3 value: "<base64 payload> <hex hmac> <ts>",
// where the hmac is HMAC-SHA1 over "<base64 payload> <ts>" keyed by secret.
// Anonymous visitors get the empty payload "{}".
func SignUser(secret string, user *User, now time.Time) (string, error) {
	var (
		payload []byte
		err     error
	)
	if user == nil {
		payload = []byte("{}")
	} else if payload, err = json.Marshal(user); err != nil {
		return "", err
	}

	message := base64.StdEncoding.EncodeToString(payload)
	timestamp := now.Unix()

	mac := hmac.New(sha1.New, []byte(secret))
	fmt.Fprintf(mac, "%s %d", message, timestamp)
	sig := hex.EncodeToString(mac.Sum(nil))

	return fmt.Sprintf("%s %s %d", message, sig, timestamp), nil
}
