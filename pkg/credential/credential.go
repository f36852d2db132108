// Package credential parses the raw authorization credential carried on
// inbound requests.
//
// The wire format is "<method> <user>:<password>": exactly one space
// separates the method token from the pair, and exactly one colon separates
// user from password. Any other count of either separator is a structural
// error. Both fields travel as plain text.
package credential

import (
	"errors"
	"strings"
)

// ErrMalformed is returned when a raw credential does not have the expected
// space/colon structure. It is always a client error and never retried.
var ErrMalformed = errors.New("malformed credential")

// Credential is the structured form of a raw authorization credential.
// It lives for the duration of one request and is never persisted.
type Credential struct {
	Method   string
	Username string
	Password string
}

// Parse splits a raw credential string into method, username, and password.
// Validation is structural only: character set and length are not checked,
// and empty username or password fields pass through.
func Parse(raw string) (Credential, error) {
	parts := strings.Split(raw, " ")
	if len(parts) != 2 {
		return Credential{}, ErrMalformed
	}

	userinfo := strings.Split(parts[1], ":")
	if len(userinfo) != 2 {
		return Credential{}, ErrMalformed
	}

	return Credential{
		Method:   parts[0],
		Username: userinfo[0],
		Password: userinfo[1],
	}, nil
}

// Normalize returns a copy with username and password folded to lowercase.
// Normalization is idempotent.
func (c Credential) Normalize() Credential {
	c.Username = strings.ToLower(c.Username)
	c.Password = strings.ToLower(c.Password)
	return c
}
