package bundle

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	versionSentinel = "<!-- postreview-bundle-version: 1 -->"
	dataPrefix      = "<!-- postreview-data: "
	dataSuffix      = " -->"
)

// BundleRenderer serializes a ReviewBundle to bytes.
type BundleRenderer interface {
	Render(bundle *ReviewBundle) ([]byte, error)
	Ext() string
}

// RendererFor returns the renderer for format, "json" or "markdown".
// Anything else renders Markdown.
func RendererFor(format string) BundleRenderer {
	if format == "json" {
		return &JSONRenderer{}
	}
	return &MarkdownRenderer{}
}

// JSONRenderer renders a ReviewBundle as indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(bundle *ReviewBundle) ([]byte, error) {
	return json.MarshalIndent(bundle, "", "  ")
}

func (r *JSONRenderer) Ext() string { return ".json" }

// MarkdownRenderer renders a ReviewBundle as human-readable Markdown with
// an embedded base64 JSON payload for lossless round-trip parsing.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Ext() string { return ".md" }

func (r *MarkdownRenderer) Render(bundle *ReviewBundle) ([]byte, error) {
	jsonBytes, err := json.Marshal(bundle)
	if err != nil {
		return nil, fmt.Errorf("marshal bundle: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(jsonBytes)

	var sb strings.Builder

	sb.WriteString(versionSentinel + "\n")
	fmt.Fprintf(&sb, "%s%s%s\n\n", dataPrefix, encoded, dataSuffix)

	fmt.Fprintf(&sb, "# %s\n\n", bundle.Request.Name)

	// ## Summary
	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "- Change: %s (%s, %s)\n", bundle.Change.ID, bundle.Change.Source, bundle.Change.Status)
	fmt.Fprintf(&sb, "- Author: %s\n", bundle.Change.Author)
	if bundle.Change.Client != "" {
		fmt.Fprintf(&sb, "- Client: %s\n", bundle.Change.Client)
	}
	if !bundle.Change.Time.IsZero() {
		fmt.Fprintf(&sb, "- Date: %s\n", bundle.Change.Time.Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Fprintf(&sb, "- Project: %s\n", bundle.Request.Project)
	fmt.Fprintf(&sb, "- Mode: %s\n", bundle.Mode)
	if bundle.ServerURL != "" {
		fmt.Fprintf(&sb, "- Server: %s\n", bundle.ServerURL)
	}
	sb.WriteString("\n")

	// ## Description
	sb.WriteString("## Description\n\n")
	if desc := strings.TrimSpace(bundle.Request.Description); desc == "" {
		sb.WriteString("_No description._\n")
	} else {
		sb.WriteString("```\n" + desc + "\n```\n")
	}
	sb.WriteString("\n")

	// ## Files
	sb.WriteString("## Files\n\n")
	if len(bundle.Change.Files) == 0 {
		sb.WriteString("_No files in change._\n")
	} else {
		sb.WriteString("| Path | Action | Type |\n")
		sb.WriteString("|------|--------|------|\n")
		for _, f := range bundle.Change.Files {
			path := f.Path
			if f.Revision > 0 {
				path = fmt.Sprintf("%s#%d", f.Path, f.Revision)
			}
			fmt.Fprintf(&sb, "| %s | %s | %s |\n", path, f.Action, f.Type)
		}
	}
	sb.WriteString("\n")

	if len(bundle.Change.Jobs) > 0 {
		sb.WriteString("## Jobs\n\n")
		for _, j := range bundle.Change.Jobs {
			fmt.Fprintf(&sb, "- %s\n", j)
		}
		sb.WriteString("\n")
	}

	switch bundle.Mode {
	case ModePatch:
		sb.WriteString("## Patch\n\n")
		if bundle.Patch == "" {
			sb.WriteString("_Empty patch._\n")
		} else {
			sb.WriteString("```diff\n")
			sb.WriteString(bundle.Patch)
			if !strings.HasSuffix(bundle.Patch, "\n") {
				sb.WriteString("\n")
			}
			sb.WriteString("```\n")
		}
	case ModeItems:
		sb.WriteString("## Upload Items\n\n")
		if len(bundle.Items) == 0 {
			sb.WriteString("_No file pairs._\n")
		} else {
			sb.WriteString("| Path | Old bytes | New bytes |\n")
			sb.WriteString("|------|-----------|-----------|\n")
			for _, it := range bundle.Items {
				fmt.Fprintf(&sb, "| %s | %d | %d |\n", it.Path, len(it.Old), len(it.New))
			}
		}
	case ModeRevision:
		sb.WriteString("## Revision\n\n")
		fmt.Fprintf(&sb, "Review of submitted change %s.\n", bundle.Revision)
	}
	sb.WriteString("\n")

	return []byte(sb.String()), nil
}
