package bundle

import (
	"time"

	"github.com/fakeyudi/postreview/internal/change"
	"github.com/fakeyudi/postreview/internal/review"
)

// Mode is how a bundle carries the change to the review server.
type Mode string

const (
	ModeItems    Mode = "items"    // file pairs
	ModePatch    Mode = "patch"    // one unified diff
	ModeRevision Mode = "revision" // a submitted change, referenced by id
)

// ReviewBundle is the complete, renderable representation of one review
// request and the content to upload with it.
type ReviewBundle struct {
	ID        string              `json:"id"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
	ServerURL string              `json:"server_url,omitempty"`
	Mode      Mode                `json:"mode"`
	Request   review.Request      `json:"request"`
	Change    ChangeMeta          `json:"change"`
	Items     []change.UploadItem `json:"items,omitempty"`
	Patch     string              `json:"patch,omitempty"`
	Revision  string              `json:"revision,omitempty"`
}

// ChangeMeta summarizes the change a bundle was extracted from.
type ChangeMeta struct {
	Source string        `json:"source"` // "p4" | "git"
	ID     string        `json:"id"`
	Author string        `json:"author"`
	Client string        `json:"client,omitempty"`
	Status string        `json:"status"`
	Time   time.Time     `json:"time"`
	Files  []FileSummary `json:"files"`
	Jobs   []string      `json:"jobs,omitempty"`
}

// FileSummary is one file of the change as listed in the bundle.
type FileSummary struct {
	Path     string `json:"path"`
	Revision int    `json:"revision,omitempty"`
	Action   string `json:"action"`
	Type     string `json:"type"`
}

// Review returns the review key and name the bundle stands for.
func (b *ReviewBundle) Review() review.Review {
	return review.Review{Key: b.ID, Name: b.Request.Name}
}

// MetaFrom summarizes rec, extracted from source.
func MetaFrom(source string, rec *change.Record) ChangeMeta {
	m := ChangeMeta{
		Source: source,
		ID:     rec.Number,
		Author: rec.Author,
		Client: rec.Client,
		Status: rec.Status.String(),
		Time:   rec.Time,
		Files:  make([]FileSummary, 0, len(rec.Files)),
	}
	for _, f := range rec.Files {
		m.Files = append(m.Files, FileSummary{
			Path:     f.DepotPath,
			Revision: f.Revision,
			Action:   f.Action.String(),
			Type:     f.Type.String(),
		})
	}
	for _, j := range rec.Jobs {
		m.Jobs = append(m.Jobs, j.String())
	}
	return m
}
