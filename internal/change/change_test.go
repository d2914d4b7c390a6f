package change

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestParseAction(t *testing.T) {
	cases := map[string]Action{
		"add":         Add,
		"edit":        Edit,
		"delete":      Delete,
		"integrate":   Integrate,
		"branch":      Branch,
		"purge":       Purge,
		"move":        Move,
		"move/add":    MoveAdd,
		"move/delete": MoveDelete,
		"MOVE_ADD":    MoveAdd,
		" Delete ":    Delete,
		"archive":     Edit,
	}
	for raw, want := range cases {
		assert.Equal(t, want, ParseAction(raw), "ParseAction(%q)", raw)
	}
}

func TestActionSides(t *testing.T) {
	cases := []struct {
		a            Action
		depot, local bool
	}{
		{Add, false, true},
		{Edit, true, true},
		{Delete, true, false},
		{Integrate, true, true},
		{Branch, false, true},
		{Purge, false, false},
		{Move, false, false},
		{MoveAdd, false, true},
		{MoveDelete, true, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.depot, tc.a.HasDepotSide(), "%s depot side", tc.a)
		assert.Equal(t, tc.local, tc.a.HasLocalSide(), "%s local side", tc.a)
	}
}

func TestActionStringUsesSlashForms(t *testing.T) {
	assert.Equal(t, "move/add", MoveAdd.String())
	assert.Equal(t, "move/delete", MoveDelete.String())
	assert.Equal(t, "unknown", Action(99).String())
}

func TestParseFileType(t *testing.T) {
	cases := map[string]FileType{
		"text":       Text,
		"ktext":      Text,
		"text+x":     Text,
		"binary":     Binary,
		"xbinary":    Binary,
		"binary+F":   Binary,
		"tempobj":    Binary,
		"symlink":    Symlink,
		"apple":      Apple,
		"resource":   Resource,
		"unicode":    Unicode,
		"xunicode":   Unicode,
		"utf16":      Utf16,
		"":           Unknown,
		"mystery":    Unknown,
		"text-ish-x": Unknown,
	}
	for raw, want := range cases {
		assert.Equal(t, want, ParseFileType(raw), "ParseFileType(%q)", raw)
	}
}

func TestFileTypeIsTextual(t *testing.T) {
	textual := map[FileType]bool{Text: true, Unicode: true, Utf16: true}
	for ft := Unknown; ft <= Utf16; ft++ {
		assert.Equal(t, textual[ft], ft.IsTextual(), "%s", ft)
	}
}

// Any raw type string resolves to a member of the taxonomy.
func TestParseFileTypeTotal(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ft := ParseFileType(rapid.String().Draw(t, "raw"))
		if ft < Unknown || ft > Utf16 {
			t.Fatalf("out of range file type %d", ft)
		}
	})
}

func TestParseStatus(t *testing.T) {
	assert.Equal(t, Submitted, ParseStatus("submitted"))
	assert.Equal(t, Pending, ParseStatus("pending"))
	assert.Equal(t, Pending, ParseStatus("shelved"))
}

func TestNewUploadItemNeverNil(t *testing.T) {
	item := NewUploadItem("a/b.go", nil, nil)
	assert.NotNil(t, item.Old)
	assert.NotNil(t, item.New)
	assert.Empty(t, item.Old)
	assert.Empty(t, item.New)
}

func TestRecordString(t *testing.T) {
	r := &Record{
		Number:      "1234",
		Author:      "alice",
		Client:      "alice-ws",
		Time:        time.Unix(0, 0).UTC(),
		Status:      Pending,
		Description: "Fix it",
		Files:       []FileEntry{{DepotPath: "//depot/a.c", Revision: 3, Action: MoveAdd, Type: Text}},
		Jobs:        []JobEntry{{Job: "job001", Status: "open", Description: "bug"}},
	}

	s := r.String()

	assert.True(t, strings.HasPrefix(s, "change: 1234\n  by: alice@alice-ws\n"))
	assert.Contains(t, s, "  status: pending\n")
	assert.Contains(t, s, "    job001 open bug\n")
	assert.Contains(t, s, "    move/add '//depot/a.c' #3 <text>\n")
}
