package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/calvinalkan/vectorfile/pkg/fs"
)

// CLI provides a clean interface for running CLI commands in tests.
// It manages a temp directory and environment variables.
type CLI struct {
	t   *testing.T
	Dir string
	Env map[string]string
	FS  fs.FS // nil means the real filesystem
}

// NewCLI creates a new test CLI with a temp directory. HOME points into
// the directory so no user config or history leaks into tests.
func NewCLI(t *testing.T) *CLI {
	t.Helper()

	dir := t.TempDir()

	return &CLI{
		t:   t,
		Dir: dir,
		Env: map[string]string{"HOME": filepath.Join(dir, "home")},
	}
}

// Run executes the CLI with the given args and returns stdout, stderr, and exit code.
// Args should not include "vecty" or "--cwd" - those are added automatically.
func (r *CLI) Run(args ...string) (string, string, int) {
	return r.RunWithInput("", args...)
}

// RunWithInput executes the CLI with stdin and returns stdout, stderr, and exit code.
func (r *CLI) RunWithInput(stdin string, args ...string) (string, string, int) {
	var outBuf, errBuf bytes.Buffer

	fullArgs := append([]string{"vecty", "--cwd", r.Dir}, args...)
	fsys := r.FS
	if fsys == nil {
		fsys = fs.NewReal()
	}

	code := RunWithFS(fsys, strings.NewReader(stdin), &outBuf, &errBuf, fullArgs, r.Env, nil)

	return outBuf.String(), errBuf.String(), code
}

// MustRun executes the CLI and fails the test if the command returns non-zero.
// Returns trimmed stdout on success.
func (r *CLI) MustRun(args ...string) string {
	r.t.Helper()

	stdout, stderr, code := r.Run(args...)
	if code != 0 {
		r.t.Fatalf("command %v failed with exit code %d\nstderr: %s", args, code, stderr)
	}

	return strings.TrimSpace(stdout)
}

// MustFail executes the CLI and fails the test if the command succeeds.
// Also fails if stdout is not empty. Returns trimmed stderr.
func (r *CLI) MustFail(args ...string) string {
	r.t.Helper()

	stdout, stderr, code := r.Run(args...)
	if code == 0 {
		r.t.Fatalf("command %v should have failed but succeeded\nstdout: %s", args, stdout)
	}

	if stdout != "" {
		r.t.Fatalf("command %v failed but stdout should be empty\nstdout: %s", args, stdout)
	}

	return strings.TrimSpace(stderr)
}

// Path returns the absolute path of a file in the test directory.
func (r *CLI) Path(name string) string {
	return filepath.Join(r.Dir, name)
}

// ReadFile returns the content of a file in the test directory.
func (r *CLI) ReadFile(name string) []byte {
	r.t.Helper()

	content, err := os.ReadFile(r.Path(name))
	if err != nil {
		r.t.Fatalf("failed to read %s: %v", name, err)
	}

	return content
}

// WriteFile writes content to a file in the test directory.
func (r *CLI) WriteFile(name, content string) {
	r.t.Helper()

	err := os.WriteFile(r.Path(name), []byte(content), 0o600)
	if err != nil {
		r.t.Fatalf("failed to write %s: %v", name, err)
	}
}

// AssertContains fails the test if content doesn't contain substr.
func AssertContains(t *testing.T, content, substr string) {
	t.Helper()

	if !strings.Contains(content, substr) {
		t.Errorf("content should contain %q\ncontent:\n%s", substr, content)
	}
}

// AssertNotContains fails the test if content contains substr.
func AssertNotContains(t *testing.T, content, substr string) {
	t.Helper()

	if strings.Contains(content, substr) {
		t.Errorf("content should NOT contain %q\ncontent:\n%s", substr, content)
	}
}
