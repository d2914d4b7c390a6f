package diff

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestAdd(t *testing.T) {
	got := Add("p", []string{"a", "b"})
	assert.Equal(t, []string{"--- p\t(added)", "+++ p\t(added)", "@@ -0,0 +1,2 @@", "+a", "+b"}, got)
}

func TestDelete(t *testing.T) {
	got := Delete("p", "7", []string{"x"})
	assert.Equal(t, []string{"--- p\t7", "+++ p\t7", "@@ -1,1 +0,0 @@", "-x"}, got)
}

func TestModifyKeepsWholeFileAsContext(t *testing.T) {
	got := Modify("p", "12", []string{"a", "b", "c"}, []string{"a", "x", "c"})

	assert.Equal(t, []string{
		"--- p\t12",
		"+++ p\t\t(modified)",
		"@@ -1,3 +1,3 @@",
		" a",
		"-b",
		"+x",
		" c",
	}, got)
}

func TestModifyDistantChangesShareOneHunk(t *testing.T) {
	var depot, local []string
	for i := 0; i < 50; i++ {
		depot = append(depot, fmt.Sprintf("line %d", i))
	}
	local = append(local, depot...)
	local[0] = "first changed"
	local[49] = "last changed"

	got := Modify("big.txt", "3", depot, local)

	hunks := 0
	for _, l := range got {
		if strings.HasPrefix(l, "@@") {
			hunks++
		}
	}
	assert.Equal(t, 1, hunks)
	assert.Equal(t, "@@ -1,50 +1,50 @@", got[2])
	assert.Equal(t, 2+1+50+2, len(got))
}

func TestModifyIdenticalIsEmpty(t *testing.T) {
	assert.Empty(t, Modify("p", "1", []string{"a", "b"}, []string{"a", "b"}))
	assert.Empty(t, Modify("p", "1", nil, nil))
}

func TestModifyFromEmpty(t *testing.T) {
	got := Modify("p", "4", nil, []string{"new"})
	assert.Equal(t, []string{"--- p\t4", "+++ p\t\t(modified)", "@@ -0,0 +1,1 @@", "+new"}, got)
}

func TestModifyToEmpty(t *testing.T) {
	got := Modify("p", "4", []string{"old"}, nil)
	assert.Equal(t, []string{"--- p\t4", "+++ p\t\t(modified)", "@@ -1,1 +0,0 @@", "-old"}, got)
}

func TestBanner(t *testing.T) {
	b := Banner("src/a.c")
	require.Len(t, b, 2)
	assert.Equal(t, "Index: src/a.c", b[0])
	assert.Equal(t, 69, len(b[1]))
	assert.Equal(t, strings.Repeat("=", 69), b[1])
}

func TestSplitLines(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a\n", []string{"a"}},
		{"a\nb", []string{"a", "b"}},
		{"a\r\nb\r\n", []string{"a", "b"}},
		{"a\n\n", []string{"a", ""}},
		{"\n", []string{""}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SplitLines([]byte(tc.in)), "SplitLines(%q)", tc.in)
	}
}

func TestDocument(t *testing.T) {
	assert.Equal(t, "a\nb", Document([]string{"a", "b"}))
	assert.Equal(t, "", Document(nil))
}

// Applying the hunk of a Modify fragment to the depot lines reproduces the
// local lines, and the hunk header counts match the body.
func TestModifyAppliesCleanly(t *testing.T) {
	line := rapid.SampledFrom([]string{"a", "b", "c", "d", ""})
	rapid.Check(t, func(t *rapid.T) {
		depot := rapid.SliceOfN(line, 0, 30).Draw(t, "depot")
		local := rapid.SliceOfN(line, 0, 30).Draw(t, "local")

		frag := Modify("f", "1", depot, local)
		if len(frag) == 0 {
			if strings.Join(depot, "\n") != strings.Join(local, "\n") || len(depot) != len(local) {
				t.Fatalf("empty fragment for differing inputs %q %q", depot, local)
			}
			return
		}

		var oldSide, newSide []string
		for _, l := range frag[3:] {
			switch l[0] {
			case ' ':
				oldSide = append(oldSide, l[1:])
				newSide = append(newSide, l[1:])
			case '-':
				oldSide = append(oldSide, l[1:])
			case '+':
				newSide = append(newSide, l[1:])
			default:
				t.Fatalf("unexpected line %q", l)
			}
		}
		if strings.Join(oldSide, "\x00") != strings.Join(depot, "\x00") || len(oldSide) != len(depot) {
			t.Fatalf("old side %q != depot %q", oldSide, depot)
		}
		if strings.Join(newSide, "\x00") != strings.Join(local, "\x00") || len(newSide) != len(local) {
			t.Fatalf("new side %q != local %q", newSide, local)
		}
		want := fmt.Sprintf("@@ -%s +%s @@", hunkRange(0, len(depot)), hunkRange(0, len(local)))
		if frag[2] != want {
			t.Fatalf("hunk header %q, want %q", frag[2], want)
		}
	})
}
