package cli_test

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/calvinalkan/vectorfile/internal/cli"
)

func Test_Shell_Runs_Script_When_Stdin_Is_Not_A_Terminal(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	script := strings.Join([]string{
		"# build a small vector",
		"push 10",
		"push 20",
		"push 30",
		"get 1",
		"set 0 300",
		"len",
		"dump",
		"pop",
		"info",
		"exit",
		"push 99",
	}, "\n")

	stdout, stderr, exitCode := c.RunWithInput(script, "--codec", "i32", "--window", "8", "shell", "--create", "s.vec")

	if got, want := exitCode, 0; got != want {
		t.Fatalf("exitCode=%d, want=%d\nstderr: %s", got, want, stderr)
	}

	cli.AssertContains(t, stdout, "20\n3\n0\t300\n1\t20\n2\t30\n30\n")
	cli.AssertContains(t, stdout, "elements=2")
	cli.AssertContains(t, stdout, "bytes=8")

	data := c.ReadFile("s.vec")
	if got, want := len(data), 8; got != want {
		t.Fatalf("file size=%d, want=%d", got, want)
	}

	if got, want := int32(binary.LittleEndian.Uint32(data)), int32(300); got != want {
		t.Errorf("element 0=%d, want=%d", got, want)
	}
}

func Test_Shell_Reports_Stats_And_Metrics_When_Asked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.MustRun("create", "x.vec", "-n", "64")

	script := "get 0\nget 63\nseek 10\nget 11\nstats\nmetrics\n"
	stdout := mustRunShell(t, c, script, "--window", "16", "shell", "x.vec")

	cli.AssertContains(t, stdout, "hits=")
	cli.AssertContains(t, stdout, "misses=")
	cli.AssertContains(t, stdout, "slack=0")
	cli.AssertContains(t, stdout, "vectorfile_window_loads_total")
	cli.AssertContains(t, stdout, `vectorfile_accesses_total{result="hit",vector="x.vec"}`)
}

func Test_Shell_Counts_Failures_When_Commands_Fail(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.MustRun("create", "x.vec", "-n", "2")

	stdout, stderr, exitCode := c.RunWithInput("bogus\nget 5\nget 1\n", "shell", "x.vec")

	if got, want := exitCode, 1; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	if got, want := stdout, "0\n"; got != want {
		t.Errorf("stdout=%q, want=%q", got, want)
	}

	cli.AssertContains(t, stderr, "unknown command: bogus")
	cli.AssertContains(t, stderr, "index out of range")
	cli.AssertContains(t, stderr, "warning: 2 shell command(s) failed")
}

func Test_Shell_Dump_Stops_At_Limit_When_Given(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.MustRun("--codec", "bytes", "create", "b.vec")
	c.MustRun("--codec", "bytes", "push", "b.vec", "a", "b", "c")

	stdout := mustRunShell(t, c, "set 1 hello world\ndump 2\n", "--codec", "bytes", "shell", "b.vec")

	if got, want := stdout, "0\t\"a\"\n1\t\"hello world\"\n"; got != want {
		t.Errorf("stdout=%q, want=%q", got, want)
	}
}

func Test_Shell_Fails_When_File_Missing_Without_Create(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("shell", "missing.vec")

	cli.AssertContains(t, stderr, "open failure")
}

func mustRunShell(t *testing.T, c *cli.CLI, script string, args ...string) string {
	t.Helper()

	stdout, stderr, exitCode := c.RunWithInput(script, args...)
	if exitCode != 0 {
		t.Fatalf("shell %v failed with exit code %d\nstderr: %s", args, exitCode, stderr)
	}

	return stdout
}
