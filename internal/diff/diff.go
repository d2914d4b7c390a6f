// Package diff synthesizes unified-diff fragments for added, deleted and
// modified files in the layout the review server accepts.
package diff

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Separator follows the Index: line of every file section.
var Separator = strings.Repeat("=", 69)

// Banner returns the two lines that open a file's section in a patch.
func Banner(path string) []string {
	return []string{"Index: " + path, Separator}
}

// Add returns the fragment for a file that only exists locally.
func Add(path string, local []string) []string {
	lines := make([]string, 0, len(local)+3)
	lines = append(lines,
		"--- "+path+"\t(added)",
		"+++ "+path+"\t(added)",
		fmt.Sprintf("@@ -0,0 +1,%d @@", len(local)),
	)
	for _, l := range local {
		lines = append(lines, "+"+l)
	}
	return lines
}

// Delete returns the fragment for a file removed by change.
func Delete(path, change string, depot []string) []string {
	lines := make([]string, 0, len(depot)+3)
	lines = append(lines,
		"--- "+path+"\t"+change,
		"+++ "+path+"\t"+change,
		fmt.Sprintf("@@ -1,%d +0,0 @@", len(depot)),
	)
	for _, l := range depot {
		lines = append(lines, "-"+l)
	}
	return lines
}

// Modify returns a unified diff from depot to local whose context spans the
// whole file, so every changed file yields exactly one hunk. Identical
// inputs yield no lines.
func Modify(path, change string, depot, local []string) []string {
	m := difflib.NewMatcherWithJunk(depot, local, false, nil)
	groups := m.GetGroupedOpCodes(len(depot) + len(local) + 1)
	if len(groups) == 0 {
		return nil
	}

	lines := []string{
		"--- " + path + "\t" + change,
		"+++ " + path + "\t\t(modified)",
	}
	for _, g := range groups {
		first, last := g[0], g[len(g)-1]
		lines = append(lines, fmt.Sprintf("@@ -%s +%s @@",
			hunkRange(first.I1, last.I2), hunkRange(first.J1, last.J2)))
		for _, op := range g {
			if op.Tag == 'e' {
				for _, l := range depot[op.I1:op.I2] {
					lines = append(lines, " "+l)
				}
				continue
			}
			if op.Tag == 'r' || op.Tag == 'd' {
				for _, l := range depot[op.I1:op.I2] {
					lines = append(lines, "-"+l)
				}
			}
			if op.Tag == 'r' || op.Tag == 'i' {
				for _, l := range local[op.J1:op.J2] {
					lines = append(lines, "+"+l)
				}
			}
		}
	}
	return lines
}

// hunkRange formats the half-open range [start, stop) as "first,count". An
// empty range names the line before it.
func hunkRange(start, stop int) string {
	first := start + 1
	count := stop - start
	if count == 0 {
		first--
	}
	return fmt.Sprintf("%d,%d", first, count)
}

// SplitLines splits content on "\n", dropping one trailing "\r" from each
// line. A final newline does not start another line, and empty content has
// no lines.
func SplitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	s := strings.TrimSuffix(string(content), "\n")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// Document joins file sections into one patch.
func Document(lines []string) string {
	return strings.Join(lines, "\n")
}
