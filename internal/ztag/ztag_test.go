package ztag

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDecodeSimpleFields(t *testing.T) {
	out := "... change 1234\n... user alice\n... client alice-ws\n... status pending\n"

	m := Decode(out)

	assert.Equal(t, map[string]string{
		"change": "1234",
		"user":   "alice",
		"client": "alice-ws",
		"status": "pending",
	}, m)
}

func TestDecodeContinuationLines(t *testing.T) {
	out := "... desc Fix the frobnicator\n\nIt was broken.\n... status pending\n"

	m := Decode(out)

	assert.Equal(t, "Fix the frobnicator\n\nIt was broken.", m["desc"])
	assert.Equal(t, "pending", m["status"])
}

func TestDecodeCarriageReturns(t *testing.T) {
	out := "... change 7\r\n... desc one\r\ntwo\r... user bob\r\n"

	m := Decode(out)

	assert.Equal(t, "7", m["change"])
	assert.Equal(t, "one\ntwo", m["desc"])
	assert.Equal(t, "bob", m["user"])
}

func TestDecodeEmptyInput(t *testing.T) {
	for _, in := range []string{"", "\n\n", "no tagged output here\n", "p4: command not found"} {
		t.Run(fmt.Sprintf("%q", in), func(t *testing.T) {
			assert.Empty(t, Decode(in))
		})
	}
}

func TestDecodeMalformedMarkerIsContinuation(t *testing.T) {
	out := "... desc first\n...\n... user carol\n"

	m := Decode(out)

	assert.Equal(t, "first\n...", m["desc"])
	assert.Equal(t, "carol", m["user"])
}

func TestDecodeFieldWithoutValue(t *testing.T) {
	m := Decode("... otherOpen\n... change 9\n")

	v, ok := m["otherOpen"]
	require.True(t, ok)
	assert.Equal(t, "", v)
	assert.Equal(t, "9", m["change"])
}

func TestDecodeLastWriteWins(t *testing.T) {
	m := Decode("... change 1\n... change 2\n")
	assert.Equal(t, "2", m["change"])
}

func TestRecordsSplitsOnRepeatedName(t *testing.T) {
	out := "... client a\n... Owner x\n\n... client b\n... Owner y\n"

	recs := Records(out)

	require.Len(t, recs, 2)
	assert.Equal(t, "a", recs[0]["client"])
	// The blank separator line belongs to the open value of the first record.
	assert.Equal(t, "x\n", recs[0]["Owner"])
	assert.Equal(t, "b", recs[1]["client"])
	assert.Equal(t, "y", recs[1]["Owner"])
}

func TestRecordsEmpty(t *testing.T) {
	assert.Empty(t, Records(""))
}

func TestInt(t *testing.T) {
	assert.Equal(t, 42, Int("42"))
	assert.Equal(t, 42, Int(" 42 "))
	assert.Equal(t, 0, Int(""))
	assert.Equal(t, 0, Int("none"))
	assert.Equal(t, 0, Int("12abc"))
}

// Encoding arbitrary single-line fields and decoding them yields the same map.
func TestDecodeRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 20).Draw(t, "n")
		want := make(map[string]string, n)
		var sb strings.Builder
		for i := 0; i < n; i++ {
			name := fmt.Sprintf("%s%d", rapid.StringMatching(`[a-zA-Z]{1,10}`).Draw(t, "name"), i)
			value := rapid.StringMatching(`[^\r\n]{0,40}`).Draw(t, "value")
			want[name] = value
			fmt.Fprintf(&sb, "... %s %s\n", name, value)
		}

		got := Decode(sb.String())

		if len(got) != len(want) {
			t.Fatalf("decoded %d fields, want %d", len(got), len(want))
		}
		for k, v := range want {
			if got[k] != v {
				t.Fatalf("field %q: got %q, want %q", k, got[k], v)
			}
		}
	})
}

func TestDecodeMarkerWithoutSpaceIsContinuation(t *testing.T) {
	m := Decode("... a 1\n...b 2\n")

	assert.Equal(t, map[string]string{"a": "1\n...b 2"}, m)
}
