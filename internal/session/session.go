// Package session keeps the review server login between invocations.
package session

import "time"

// Session is a login to one review server. The auth token is optional: a
// session without one has a user and server but must log in again before
// talking to the server.
type Session struct {
	ServerURL string    `json:"server_url"`
	User      string    `json:"user"`
	CreatedAt time.Time `json:"created_at"`
	AuthToken string    `json:"auth_token,omitempty"`
}

// Token returns the auth token, or "" when there is none.
func (s *Session) Token() string { return s.AuthToken }

// SetToken replaces the auth token. An empty token logs the session out.
func (s *Session) SetToken(token string) { s.AuthToken = token }

// HasToken reports whether the session carries an auth token.
func (s *Session) HasToken() bool { return s.AuthToken != "" }

// Matches reports whether s is a login of user to serverURL. An empty user
// matches any user.
func (s *Session) Matches(serverURL, user string) bool {
	return s.ServerURL == serverURL && (user == "" || s.User == user)
}
