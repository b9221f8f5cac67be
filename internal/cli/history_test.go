package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/calvinalkan/vectorfile/pkg/fs"
)

func Test_ReadHistory_Returns_Saved_Lines_When_File_Exists(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".vecty_history")

	if err := os.WriteFile(path, []byte("get 0\nlen\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if got, want := string(readHistory(fs.NewReal(), path)), "get 0\nlen\n"; got != want {
		t.Errorf("history=%q, want=%q", got, want)
	}
}

func Test_ReadHistory_Returns_Nil_When_Missing_Or_Unreadable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, ".vecty_history")

	if got := readHistory(fs.NewReal(), ""); got != nil {
		t.Errorf("no history path: history=%q, want nil", got)
	}

	if got := readHistory(fs.NewReal(), path); got != nil {
		t.Errorf("missing file: history=%q, want nil", got)
	}

	if err := os.WriteFile(path, []byte("len\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	chaos := fs.NewChaos(fs.NewReal(), 1, &fs.ChaosConfig{ReadFailRate: 1.0})

	if got := readHistory(chaos, path); got != nil {
		t.Errorf("injected read failure: history=%q, want nil", got)
	}

	if got := chaos.Stats().ReadFails; got != 1 {
		t.Errorf("ReadFails=%d, want=1", got)
	}
}
