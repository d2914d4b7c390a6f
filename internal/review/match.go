// Package review turns an extracted change into review requests and locates
// existing reviews of a change by the identifier embedded in their titles.
package review

import (
	"regexp"
	"strings"
)

// changeIDPattern finds "@" followed by a 3-10 digit changelist number or an
// 8-40 character commit hash.
var changeIDPattern = regexp.MustCompile(`(?s)^.*@(\d{3,10}|[0-9a-fA-F]{8,40}).*$`)

// ChangeIDFromTitle extracts the change identifier from a review title such
// as "Fix bug @12345".
func ChangeIDFromTitle(title string) (string, bool) {
	m := changeIDPattern.FindStringSubmatch(strings.TrimSpace(title))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Matches reports whether either identifier is a prefix of the other, so an
// abbreviated hash matches the full one. Short numbers can match longer ones
// ("12" matches "123").
func Matches(target, candidate string) bool {
	return strings.HasPrefix(candidate, target) || strings.HasPrefix(target, candidate)
}

// FindReview returns the first review whose title carries an identifier
// matching target.
func FindReview(target string, reviews []Review) (Review, bool) {
	for _, r := range reviews {
		if id, ok := ChangeIDFromTitle(r.Name); ok && Matches(target, id) {
			return r, true
		}
	}
	return Review{}, false
}

// MatchTitle is FindReview over bare titles.
func MatchTitle(target string, titles []string) (string, bool) {
	for _, title := range titles {
		if id, ok := ChangeIDFromTitle(title); ok && Matches(target, id) {
			return title, true
		}
	}
	return "", false
}
