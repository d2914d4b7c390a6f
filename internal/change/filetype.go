package change

import "strings"

// FileType is the content class of a file, derived from its p4 type.
type FileType int

const (
	Unknown FileType = iota
	Text
	Binary
	Symlink
	Apple
	Resource
	Unicode
	Utf16
)

var fileTypeNames = [...]string{
	Unknown:  "unknown",
	Text:     "text",
	Binary:   "binary",
	Symlink:  "symlink",
	Apple:    "apple",
	Resource: "resource",
	Unicode:  "unicode",
	Utf16:    "utf16",
}

// ParseFileType resolves a raw p4 file type such as "text", "ktext",
// "xbinary" or "text+x". Anything unrecognized is Unknown.
func ParseFileType(s string) FileType {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexByte(s, '+'); i >= 0 {
		s = s[:i]
	}
	switch {
	case strings.HasSuffix(s, "text"):
		return Text
	case strings.HasSuffix(s, "binary"), strings.HasSuffix(s, "tempobj"):
		return Binary
	case strings.HasSuffix(s, "symlink"):
		return Symlink
	case strings.HasSuffix(s, "apple"):
		return Apple
	case strings.HasSuffix(s, "resource"):
		return Resource
	case strings.HasSuffix(s, "unicode"):
		return Unicode
	case strings.HasSuffix(s, "utf16"):
		return Utf16
	}
	return Unknown
}

// IsTextual reports whether files of this type take part in diffs.
func (t FileType) IsTextual() bool {
	return t == Text || t == Unicode || t == Utf16
}

func (t FileType) String() string {
	if t < 0 || int(t) >= len(fileTypeNames) {
		return "unknown"
	}
	return fileTypeNames[t]
}
