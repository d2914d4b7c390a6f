package change

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a change.
type Status int

const (
	Pending Status = iota
	Submitted
)

// ParseStatus resolves "pending" or "submitted"; anything else is Pending.
func ParseStatus(s string) Status {
	if strings.EqualFold(strings.TrimSpace(s), "submitted") {
		return Submitted
	}
	return Pending
}

func (s Status) String() string {
	if s == Submitted {
		return "submitted"
	}
	return "pending"
}

// Record is one changelist or commit range under review. It is built once
// from tool output and not modified afterwards.
type Record struct {
	Number      string
	Author      string
	Client      string // Perforce client; empty for Git
	Time        time.Time
	Status      Status
	Description string
	Files       []FileEntry
	Jobs        []JobEntry // Perforce only
}

// FileEntry is one file touched by a change.
type FileEntry struct {
	DepotPath string
	Revision  int
	Action    Action
	Type      FileType
}

func (f FileEntry) String() string {
	return fmt.Sprintf("%s '%s' #%d <%s>", f.Action, f.DepotPath, f.Revision, f.Type)
}

// JobEntry is a job attached to a Perforce change.
type JobEntry struct {
	Job         string
	Status      string
	Description string
}

func (j JobEntry) String() string {
	return j.Job + " " + j.Status + " " + j.Description
}

// String renders the record the way describe prints it.
func (r *Record) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "change: %s\n", r.Number)
	if r.Client != "" {
		fmt.Fprintf(&sb, "  by: %s@%s\n", r.Author, r.Client)
	} else {
		fmt.Fprintf(&sb, "  by: %s\n", r.Author)
	}
	if !r.Time.IsZero() {
		fmt.Fprintf(&sb, "  on: %s\n", r.Time.Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Fprintf(&sb, "  status: %s\n", r.Status)
	fmt.Fprintf(&sb, "  description: %s\n", r.Description)
	if len(r.Jobs) > 0 {
		sb.WriteString("  jobs:\n")
		for _, j := range r.Jobs {
			fmt.Fprintf(&sb, "    %s\n", j)
		}
	}
	if len(r.Files) > 0 {
		sb.WriteString("  files:\n")
		for _, f := range r.Files {
			fmt.Fprintf(&sb, "    %s\n", f)
		}
	}
	return sb.String()
}
