package domain

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedAccessKey is returned when an access key can't be split into
// its scheme, auth & host parts.
var ErrMalformedAccessKey = errors.New("malformed access key")

// Credential is a parsed SimpleFIN access key.
type Credential struct {
	// BaseURL is scheme//host, without the user info
	BaseURL string `json:"base_url"`

	Username string `json:"username"`
	Password string `json:"-"`
}

// ParseAccessKey splits an access key of the form scheme//username:password@host
// into a Credential.
func ParseAccessKey(key string) (*Credential, error) {
	bits := strings.Split(strings.TrimSpace(key), "//")
	if len(bits) < 2 {
		return nil, fmt.Errorf("%w: missing '//'", ErrMalformedAccessKey)
	}
	scheme, rest := bits[0], bits[1]

	at := strings.LastIndex(rest, "@")
	if at < 0 {
		return nil, fmt.Errorf("%w: missing '@'", ErrMalformedAccessKey)
	}
	auth, host := rest[:at], rest[at+1:]

	username, password, ok := strings.Cut(auth, ":")
	if !ok {
		return nil, fmt.Errorf("%w: missing ':'", ErrMalformedAccessKey)
	}

	if scheme == "" || host == "" || username == "" || password == "" {
		return nil, fmt.Errorf("%w: empty field", ErrMalformedAccessKey)
	}

	return &Credential{
		BaseURL:  fmt.Sprintf("%s//%s", scheme, host),
		Username: username,
		Password: password,
	}, nil
}

// BasicAuth returns the value for an "Authorization: Basic" header.
func (c *Credential) BasicAuth() string {
	return base64.StdEncoding.EncodeToString([]byte(c.Username + ":" + c.Password))
}
