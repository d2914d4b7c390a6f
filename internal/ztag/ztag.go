// Package ztag decodes the tagged output Perforce prints when run with -ztag.
//
// Each structured line has the form "... name value". Lines that do not start
// a new field continue the value of the field opened most recently, joined by
// a newline. Decoding never fails: output that carries no fields decodes to an
// empty map, which callers treat as "not found".
package ztag

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	fieldLine = regexp.MustCompile(`^\.\.\. (\w+)(?: (.*))?$`)
	lineBreak = regexp.MustCompile(`\r\n|\n|\r`)
)

type field struct {
	name  string
	value string
}

// Decode returns the fields of output keyed by name. When a name repeats the
// last value wins.
func Decode(output string) map[string]string {
	m := make(map[string]string)
	for _, f := range scan(output) {
		m[f.name] = f.value
	}
	return m
}

// Records splits output holding several tagged records (one per file or
// client, say) into one map per record. A record ends where one of its field
// names appears again.
func Records(output string) []map[string]string {
	var records []map[string]string
	var cur map[string]string
	for _, f := range scan(output) {
		if cur == nil {
			cur = make(map[string]string)
		} else if _, seen := cur[f.name]; seen {
			records = append(records, cur)
			cur = make(map[string]string)
		}
		cur[f.name] = f.value
	}
	if cur != nil {
		records = append(records, cur)
	}
	return records
}

// Int parses s as a decimal integer, returning 0 when it is not one.
func Int(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func scan(output string) []field {
	lines := lineBreak.Split(output, -1)
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	var fields []field
	open := -1
	for _, line := range lines {
		if m := fieldLine.FindStringSubmatch(line); m != nil {
			fields = append(fields, field{name: m[1], value: m[2]})
			open = len(fields) - 1
			continue
		}
		if open < 0 {
			continue
		}
		fields[open].value += "\n" + line
	}
	return fields
}
