package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fakeyudi/postreview/internal/bundle"
	"github.com/fakeyudi/postreview/internal/session"
)

// executeCommand runs a cobra command with the given args and captures combined output.
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	_, err = root.ExecuteC()
	return buf.String(), err
}

// resetFlags restores every flag variable, since cobra keeps the values of
// one execution for the next.
func resetFlags() {
	logLevel, logFormat, verbose = "", "text", false
	flagP4Port, flagP4Client, flagP4User, flagP4Passwd, flagGitPath, flagDir = "", "", "", "", "", ""
	changeID, useGit, gitEnd = "", false, ""
	bundleFormat, reviewKey, forceNew, usePatch, nothing = "", "", false, false, false
	titlesFile, plainOutput, loginToken, loginForce = "", false, "", false
	rootCmd.SetIn(strings.NewReader(""))
}

// sandbox isolates the config, profile and session directories and sends
// bundles to a fresh output directory, which it returns.
func sandbox(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	out := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, "data"))
	t.Setenv("USER", "alice")
	for _, k := range []string{"P4PORT", "P4CLIENT", "P4USER", "P4PASSWD"} {
		t.Setenv(k, "")
	}

	dir := filepath.Join(home, ".config", "postreview")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	cfgJSON := `{"output_dir": "` + out + `", "server_url": "http://review.test"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(cfgJSON), 0o644))

	resetFlags()
	t.Cleanup(func() { runTool = nil })
	return out
}

// fakeTools makes p4 and git answer from outputs, keyed by the space-joined
// arguments. Unknown commands fail.
func fakeTools(outputs map[string]string) {
	runTool = func(ctx context.Context, dir string, env []string, args ...string) ([]byte, error) {
		key := strings.Join(args, " ")
		out, ok := outputs[key]
		if !ok {
			return []byte("unexpected command: " + key), errors.New("exit status 1")
		}
		return []byte(out), nil
	}
}

// pendingP4 fakes a pending changelist 1234 editing one text file.
func pendingP4(t *testing.T) {
	t.Helper()
	local := filepath.Join(t.TempDir(), "a.c")
	require.NoError(t, os.WriteFile(local, []byte("one\nTWO\n"), 0o644))
	fakeTools(map[string]string{
		"p4 -ztag clients -e ws": "... client ws\n... Owner alice\n... Root /ws\n... Host box\n",
		"p4 -ztag describe 1234": "... change 1234\n... user alice\n... client ws\n... status pending\n... desc Fix parser\n" +
			"... depotFile0 //depot/a.c\n... rev0 2\n... action0 edit\n... type0 text\n",
		"p4 -ztag fstat //depot/a.c": "... depotFile //depot/a.c\n... clientFile " + local + "\n... action edit\n... headChange 40\n... type text\n",
		"p4 print -q //depot/a.c#2":  "one\ntwo\n",
	})
}

func bundleFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "postreview-*"))
	require.NoError(t, err)
	return matches
}

func TestDescribePerforceChange(t *testing.T) {
	sandbox(t)
	pendingP4(t)

	out, err := executeCommand(rootCmd, "describe", "-c", "1234", "--p4client", "ws")

	require.NoError(t, err)
	assert.Contains(t, out, "change: 1234")
	assert.Contains(t, out, "by: alice@ws")
	assert.Contains(t, out, "//depot/a.c")
}

func TestDescribeRequiresChange(t *testing.T) {
	sandbox(t)

	_, err := executeCommand(rootCmd, "describe")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no change given")
}

func TestDescribeUnknownClient(t *testing.T) {
	sandbox(t)
	fakeTools(map[string]string{"p4 -ztag clients -e nope": ""})

	_, err := executeCommand(rootCmd, "describe", "-c", "1234", "--p4client", "nope")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "checking Perforce client")
}

func TestDescribeGitRange(t *testing.T) {
	sandbox(t)
	fakeTools(map[string]string{
		"git log HEAD^..HEAD":                            "commit abcdef0123456789\nAuthor: Alice <alice@example.com>\nDate:   Tue Mar 5 10:00:00 2024 -0800\n\n    Fix parser\n",
		"git diff --no-renames --name-status HEAD^ HEAD": "M\tparse.go\n",
		"git diff --no-renames --numstat HEAD^ HEAD":     "1\t1\tparse.go\n",
	})

	out, err := executeCommand(rootCmd, "describe", "--git")

	require.NoError(t, err)
	assert.Contains(t, out, "change: abcdef0123456789")
	assert.Contains(t, out, "parse.go")
}

func TestPatchPrintsDiff(t *testing.T) {
	sandbox(t)
	pendingP4(t)

	out, err := executeCommand(rootCmd, "patch", "-c", "1234", "--p4client", "ws")

	require.NoError(t, err)
	assert.Contains(t, out, "Index: a.c")
	assert.Contains(t, out, "-two")
	assert.Contains(t, out, "+TWO")
}

func TestBundleCreatesThenUpdates(t *testing.T) {
	dir := sandbox(t)
	pendingP4(t)

	out, err := executeCommand(rootCmd, "bundle", "-c", "1234", "--p4client", "ws")
	require.NoError(t, err)
	assert.Contains(t, out, "New review:")
	assert.Contains(t, out, "Fix parser @1234")
	assert.Contains(t, out, "http://review.test/cru/")
	files := bundleFiles(t, dir)
	require.Len(t, files, 1)
	assert.Equal(t, ".md", filepath.Ext(files[0]))

	resetFlags()
	out, err = executeCommand(rootCmd, "bundle", "-c", "1234", "--p4client", "ws")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated review:")
	assert.Equal(t, files, bundleFiles(t, dir))

	b, err := bundle.ReadFile(files[0])
	require.NoError(t, err)
	assert.Equal(t, bundle.ModeItems, b.Mode)
	assert.Equal(t, "alice", b.Request.Author)
	require.Len(t, b.Items, 1)
	assert.Equal(t, "a.c", b.Items[0].Path)
}

func TestBundleNothingWritesNothing(t *testing.T) {
	dir := sandbox(t)
	pendingP4(t)

	out, err := executeCommand(rootCmd, "bundle", "-c", "1234", "--p4client", "ws", "--patch", "-n")

	require.NoError(t, err)
	assert.Contains(t, out, "Doing nothing (--nothing)")
	assert.Contains(t, out, "+TWO")
	assert.Empty(t, bundleFiles(t, dir))
}

func TestBundleJSONFormat(t *testing.T) {
	dir := sandbox(t)
	pendingP4(t)

	_, err := executeCommand(rootCmd, "bundle", "-c", "1234", "--p4client", "ws", "--format", "json", "--patch")

	require.NoError(t, err)
	files := bundleFiles(t, dir)
	require.Len(t, files, 1)
	assert.Equal(t, ".json", filepath.Ext(files[0]))
	b, err := bundle.ReadFile(files[0])
	require.NoError(t, err)
	assert.Equal(t, bundle.ModePatch, b.Mode)
	assert.Contains(t, b.Patch, "Index: a.c")
}

func TestViewPlain(t *testing.T) {
	dir := sandbox(t)
	pendingP4(t)
	_, err := executeCommand(rootCmd, "bundle", "-c", "1234", "--p4client", "ws", "--patch")
	require.NoError(t, err)
	files := bundleFiles(t, dir)
	require.Len(t, files, 1)

	resetFlags()
	out, err := executeCommand(rootCmd, "view", "--plain", files[0])

	require.NoError(t, err)
	order := []string{"## Summary", "## Description", "## Files", "## Patch"}
	last := -1
	for _, h := range order {
		pos := strings.Index(out, h)
		require.NotEqual(t, -1, pos, "missing %q in:\n%s", h, out)
		assert.Greater(t, pos, last, "%q out of order", h)
		last = pos
	}
	assert.Contains(t, out, "Fix parser @1234")
}

func TestViewNonExistentFile(t *testing.T) {
	sandbox(t)
	missing := filepath.Join(t.TempDir(), "does-not-exist.md")

	_, err := executeCommand(rootCmd, "view", missing)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found: "+missing)
}

func TestViewInvalidBundle(t *testing.T) {
	sandbox(t)
	plain := filepath.Join(t.TempDir(), "plain.md")
	require.NoError(t, os.WriteFile(plain, []byte("# Just a regular markdown file\n"), 0o644))

	_, err := executeCommand(rootCmd, "view", plain)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid review bundle")
}

func TestMatchFromStdin(t *testing.T) {
	sandbox(t)
	rootCmd.SetIn(strings.NewReader("Unrelated @999\nFix parser @123456\nOther @1234\n"))

	out, err := executeCommand(rootCmd, "match", "1234")

	require.NoError(t, err)
	assert.Equal(t, "Fix parser @123456\n", out)
}

func TestMatchFromFileNoMatch(t *testing.T) {
	sandbox(t)
	titles := filepath.Join(t.TempDir(), "titles.txt")
	require.NoError(t, os.WriteFile(titles, []byte("No id here\nOther @555\n"), 0o644))

	_, err := executeCommand(rootCmd, "match", "1234", "--titles", titles)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no review matches change 1234")
}

func TestLoginLogout(t *testing.T) {
	sandbox(t)

	out, err := executeCommand(rootCmd, "login", "--token", "s3cret")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in to http://review.test as alice")

	store, err := session.NewSessionStore()
	require.NoError(t, err)
	s, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", s.Token())
	assert.True(t, s.Matches("http://review.test", "alice"))

	resetFlags()
	out, err = executeCommand(rootCmd, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out of http://review.test")

	resetFlags()
	_, err = executeCommand(rootCmd, "logout")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
}

func TestLoginReadsTokenFromInput(t *testing.T) {
	sandbox(t)
	rootCmd.SetIn(strings.NewReader("tok-from-stdin\n"))

	_, err := executeCommand(rootCmd, "login")
	require.NoError(t, err)

	store, err := session.NewSessionStore()
	require.NoError(t, err)
	s, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-from-stdin", s.Token())
}

func TestSetupSavesProfile(t *testing.T) {
	sandbox(t)
	rootCmd.SetIn(strings.NewReader("bob\nhttp://cru.test\nPROJ\njson\n/tmp/out\n"))

	out, err := executeCommand(rootCmd, "setup")
	require.NoError(t, err)
	assert.Contains(t, out, "Profile saved")

	resetFlags()
	_, err = executeCommand(rootCmd, "match", "1")
	require.Error(t, err)
	require.NotNil(t, activeProfile)
	assert.Equal(t, "bob", activeProfile.User)
	assert.Equal(t, "bob", cfg.User)
	assert.Equal(t, "PROJ", cfg.Project)
	assert.Equal(t, "json", cfg.DefaultFormat)
	// The config file wins over the profile for fields it sets.
	assert.Equal(t, "http://review.test", cfg.ServerURL)
}

func TestLoginRefusesToReplaceLiveToken(t *testing.T) {
	sandbox(t)
	_, err := executeCommand(rootCmd, "login", "--token", "first")
	require.NoError(t, err)

	resetFlags()
	out, err := executeCommand(rootCmd, "login", "--token", "first")
	require.NoError(t, err)
	assert.Contains(t, out, "Already logged in to http://review.test as alice")

	resetFlags()
	_, err = executeCommand(rootCmd, "login", "--token", "second")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pass --force")

	resetFlags()
	_, err = executeCommand(rootCmd, "login", "--token", "second", "--force")
	require.NoError(t, err)

	store, err := session.NewSessionStore()
	require.NoError(t, err)
	s, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "second", s.Token())
}

func TestBundleUsesLoginUserWhenUnconfigured(t *testing.T) {
	dir := sandbox(t)
	pendingP4(t)
	store, err := session.NewSessionStore()
	require.NoError(t, err)
	s := &session.Session{ServerURL: "http://review.test", User: "carol"}
	s.SetToken("tok")
	require.NoError(t, store.Save(s))
	t.Setenv("USER", "")

	_, err = executeCommand(rootCmd, "bundle", "-c", "1234", "--p4client", "ws")

	require.NoError(t, err)
	files := bundleFiles(t, dir)
	require.Len(t, files, 1)
	b, err := bundle.ReadFile(files[0])
	require.NoError(t, err)
	assert.Equal(t, "carol", b.Request.Author)
}

func TestPostChangeWithoutServerURL(t *testing.T) {
	dir := sandbox(t)
	pendingP4(t)
	_, err := executeCommand(rootCmd, "describe", "-c", "1234", "--p4client", "ws")
	require.NoError(t, err)
	ch, source, err := openChange(context.Background())
	require.NoError(t, err)
	cfg.ServerURL = ""

	var out bytes.Buffer
	r, err := postChange(context.Background(), &out, ch, source, "")

	require.NoError(t, err)
	assert.NotEmpty(t, r.Key)
	assert.Contains(t, out.String(), "Bundle: "+filepath.Join(dir, "postreview-"+r.Key+".md"))
	assert.NotContains(t, out.String(), "Review:")
}
