// Package auth verifies Telegram Mini App init data.
//
// Telegram signs the init data it hands to a Mini App with a key derived from
// the bot token. The web client forwards the raw string on every request and
// the server recomputes the signature before trusting any field in it.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/orlengos-star/Your-Day-MiniApp/pkg/errors"
)

// MaxAge is how old an auth_date may be before the init data is rejected.
const MaxAge = 24 * time.Hour

// TelegramUser is the user object embedded in verified init data.
type TelegramUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

// DisplayName returns the best human-readable name available.
func (u *TelegramUser) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	if u.Username != "" {
		return u.Username
	}
	return strconv.FormatInt(u.ID, 10)
}

// Verify checks the signature and freshness of a raw init data string and
// returns the embedded Telegram user. The signature scheme is the one
// documented for Mini Apps: the session key is HMAC-SHA256 of the bot token
// keyed with the literal string "WebAppData", and the expected hash is the
// hex HMAC-SHA256 of the data-check-string keyed with that session key. The
// data-check-string is every key=value pair except hash, sorted by key and
// joined with newlines.
func Verify(initData, botToken string, now time.Time) (*TelegramUser, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, apperrors.Unauthorized("malformed init data")
	}

	gotHash := values.Get("hash")
	if gotHash == "" {
		return nil, apperrors.Unauthorized("init data missing hash")
	}

	pairs := make([]string, 0, len(values))
	for key, vals := range values {
		if key == "hash" {
			continue
		}
		for _, v := range vals {
			pairs = append(pairs, key+"="+v)
		}
	}
	sort.Strings(pairs)
	checkString := strings.Join(pairs, "\n")

	sessionKey := hmacSHA256([]byte("WebAppData"), []byte(botToken))
	expected := hex.EncodeToString(hmacSHA256(sessionKey, []byte(checkString)))

	if subtle.ConstantTimeCompare([]byte(expected), []byte(gotHash)) != 1 {
		return nil, apperrors.Unauthorized("init data signature mismatch")
	}

	authDate := values.Get("auth_date")
	if authDate == "" {
		return nil, apperrors.Unauthorized("init data missing auth_date")
	}
	unix, err := strconv.ParseInt(authDate, 10, 64)
	if err != nil {
		return nil, apperrors.Unauthorized("init data has invalid auth_date")
	}
	if now.Sub(time.Unix(unix, 0)) > MaxAge {
		return nil, apperrors.Unauthorized("init data expired")
	}

	rawUser := values.Get("user")
	if rawUser == "" {
		return nil, apperrors.Unauthorized("init data missing user")
	}
	var user TelegramUser
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return nil, apperrors.Unauthorized("init data has invalid user")
	}
	if user.ID == 0 {
		return nil, apperrors.Unauthorized("init data user has no id")
	}

	return &user, nil
}

// Sign produces a valid init data string for the given values and bot token.
// Used by tests and local tooling to fabricate signed payloads.
func Sign(values url.Values, botToken string) string {
	pairs := make([]string, 0, len(values))
	for key, vals := range values {
		if key == "hash" {
			continue
		}
		for _, v := range vals {
			pairs = append(pairs, key+"="+v)
		}
	}
	sort.Strings(pairs)
	checkString := strings.Join(pairs, "\n")

	sessionKey := hmacSHA256([]byte("WebAppData"), []byte(botToken))
	hash := hex.EncodeToString(hmacSHA256(sessionKey, []byte(checkString)))

	out := url.Values{}
	for key, vals := range values {
		if key == "hash" {
			continue
		}
		for _, v := range vals {
			out.Add(key, v)
		}
	}
	out.Set("hash", hash)
	return out.Encode()
}

func hmacSHA256(key, msg []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(msg)
	return mac.Sum(nil)
}
