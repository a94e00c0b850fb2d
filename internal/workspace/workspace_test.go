package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nextlevelbuilder/goclaw/internal/bootstrap"
)

func TestLoadMissingFilesNonFatal(t *testing.T) {
	dir := t.TempDir()
	ws, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ws.Files) != 0 {
		t.Errorf("expected no files loaded from empty dir, got %d", len(ws.Files))
	}
	if len(ws.ContextFiles()) != 0 {
		t.Errorf("expected no context files from empty dir")
	}
}

func TestLoadCapsAndTruncates(t *testing.T) {
	dir := t.TempDir()
	var sb strings.Builder
	for i := 0; i < 500; i++ {
		sb.WriteString("word ")
		if i%5 == 0 {
			sb.WriteString("\n\n")
		}
	}
	content := sb.String()
	if err := os.WriteFile(filepath.Join(dir, bootstrap.IdentityFile), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	ws, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := ws.Files[bootstrap.IdentityFile]
	if len(got) >= len(content) {
		t.Errorf("expected identity file to be truncated, got len %d (original %d)", len(got), len(content))
	}
	if !strings.HasSuffix(got, truncationMarker) {
		t.Errorf("expected truncation marker suffix, got %q", got[max(0, len(got)-40):])
	}
}

func TestLoadUnlimitedFileNotTruncated(t *testing.T) {
	dir := t.TempDir()
	content := strings.Repeat("x", 10000)
	if err := os.WriteFile(filepath.Join(dir, bootstrap.BootstrapFile), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	ws, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ws.Files[bootstrap.BootstrapFile] != content {
		t.Error("expected onboarding file to load unmodified (uncapped)")
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	if err := Save(dir, bootstrap.UserFile, "hello user"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	ws, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ws.Files[bootstrap.UserFile] != "hello user" {
		t.Errorf("got %q", ws.Files[bootstrap.UserFile])
	}
}

func TestAppendDailyLogAndListRecent(t *testing.T) {
	dir := t.TempDir()
	if err := AppendDailyLog(dir, "did a thing"); err != nil {
		t.Fatalf("AppendDailyLog: %v", err)
	}
	if err := AppendDailyLog(dir, "did another thing"); err != nil {
		t.Fatalf("AppendDailyLog: %v", err)
	}
	out, err := ListRecentDaily(dir, 2)
	if err != nil {
		t.Fatalf("ListRecentDaily: %v", err)
	}
	if !strings.Contains(out, "did a thing") || !strings.Contains(out, "did another thing") {
		t.Errorf("expected both entries in concatenated output, got %q", out)
	}
}

func TestListRecentDailyNoDirectory(t *testing.T) {
	dir := t.TempDir()
	out, err := ListRecentDaily(dir, 2)
	if err != nil {
		t.Fatalf("expected no error for missing daily dir, got %v", err)
	}
	if out != "" {
		t.Errorf("expected empty output, got %q", out)
	}
}

func TestTrimDailyOverCapDropsOldestSections(t *testing.T) {
	content := "## 09:00:00\n" + strings.Repeat("a", 100) + "\n\n## 10:00:00\n" + strings.Repeat("b", 100) + "\n\n"
	trimmed := trimDailyOverCap(content, 120)
	if strings.Contains(trimmed, "09:00:00") {
		t.Error("expected oldest section to be dropped")
	}
	if !strings.Contains(trimmed, "10:00:00") {
		t.Error("expected newest section to survive")
	}
}
