package bundle

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// BundleParser deserializes a review bundle file back into structured data.
type BundleParser interface {
	Parse(data []byte) (*ReviewBundle, error)
}

// ParserFor picks the parser by file content: JSON objects parse as JSON,
// everything else as Markdown.
func ParserFor(data []byte) BundleParser {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		return &JSONParser{}
	}
	return &MarkdownParser{}
}

// ReadFile loads and parses the bundle at path.
func ReadFile(path string) (*ReviewBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParserFor(data).Parse(data)
}

// JSONParser parses a JSON-encoded ReviewBundle.
type JSONParser struct{}

func (p *JSONParser) Parse(data []byte) (*ReviewBundle, error) {
	var bundle ReviewBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("failed to parse JSON bundle: %w", err)
	}
	return &bundle, nil
}

// MarkdownParser parses a Markdown-rendered ReviewBundle by extracting the
// embedded base64 JSON payload from the sentinel comments.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(data []byte) (*ReviewBundle, error) {
	content := string(data)

	if !strings.Contains(content, versionSentinel) {
		return nil, fmt.Errorf("not a valid review bundle: missing version sentinel")
	}

	start := strings.Index(content, dataPrefix)
	if start == -1 {
		return nil, fmt.Errorf("not a valid review bundle: missing data payload")
	}
	start += len(dataPrefix)
	end := strings.Index(content[start:], dataSuffix)
	if end == -1 {
		return nil, fmt.Errorf("not a valid review bundle: malformed data payload")
	}
	encoded := content[start : start+end]

	jsonBytes, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("not a valid review bundle: corrupted base64 payload: %w", err)
	}

	var bundle ReviewBundle
	if err := json.Unmarshal(jsonBytes, &bundle); err != nil {
		return nil, fmt.Errorf("not a valid review bundle: failed to parse embedded JSON: %w", err)
	}

	return &bundle, nil
}
