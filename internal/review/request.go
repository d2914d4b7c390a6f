package review

import (
	"strings"
	"unicode/utf8"
)

// MaxName is the longest review name the server accepts.
const MaxName = 120

// Repository is the repository name reviews are anchored to.
const Repository = "depot"

// Review identifies a review on the server.
type Review struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Request describes a review to create.
type Request struct {
	Project              string `json:"project"`
	Name                 string `json:"name"`
	Description          string `json:"description"`
	Author               string `json:"author"`
	Moderator            string `json:"moderator"`
	Creator              string `json:"creator"`
	Repository           string `json:"repository"`
	AllowReviewersToJoin bool   `json:"allow_reviewers_to_join"`
}

// NewRequest returns the request for reviewing changeID. The user is author,
// moderator and creator.
func NewRequest(project, user, changeID, description string) Request {
	name := NameFromDescription(description)
	if name != "" {
		name += " @" + changeID
	} else {
		name = "Review of pending change @" + changeID
	}
	return Request{
		Project:              project,
		Name:                 truncate(name, MaxName),
		Description:          description,
		Author:               user,
		Moderator:            user,
		Creator:              user,
		Repository:           Repository,
		AllowReviewersToJoin: true,
	}
}

// NameFromDescription returns the first non-blank line of description,
// trimmed and cut to MaxName characters. It returns "" for a blank
// description.
func NameFromDescription(description string) string {
	for _, line := range strings.Split(description, "\n") {
		if tl := strings.TrimSpace(line); tl != "" {
			return truncate(tl, MaxName)
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// Connector carries the server settings for one invocation.
type Connector struct {
	BaseURL string
}

// ReviewURL is the browser address of the review with key.
func (c Connector) ReviewURL(key string) string {
	return strings.TrimSuffix(c.BaseURL, "/") + "/cru/" + key
}
