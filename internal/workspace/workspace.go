// Package workspace reads and writes a per-agent workspace directory: the
// fixed set of persona/memory markdown files plus a dated daily-log
// directory. Loads are size-capped with deterministic truncation so a
// runaway file never blows the prompt budget.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nextlevelbuilder/goclaw/internal/bootstrap"
)

// truncationMarker is appended whenever a file's content is cut for size.
const truncationMarker = "\n\n[... truncated ...]"

// DailyDirName is the subdirectory holding one markdown file per day
// (YYYY-MM-DD.md) of appended daily-log entries.
const DailyDirName = "daily"

// dailyCap is the per-day file cap applied when concatenating recent daily
// logs, matching the long-memory file's cap.
const dailyCap = 6000

type fileSpec struct {
	name string
	cap  int // 0 = unlimited
}

// fileSpecs is the fixed workspace file set and its load-time char cap, in
// the order they are assembled into the prompt's context-files section.
var fileSpecs = []fileSpec{
	{bootstrap.IdentityFile, 2000},
	{bootstrap.SoulFile, 4000},
	{bootstrap.UserFile, 3000},
	{bootstrap.AgentsFile, 8000},
	{bootstrap.ToolsFile, 3000},
	{bootstrap.HeartbeatFile, 2000},
	{bootstrap.MemoryFile, 6000},
	{bootstrap.BootstrapFile, 0},
}

// Workspace is one directory's loaded file set. Missing files are simply
// absent from Files — a missing file is non-fatal.
type Workspace struct {
	Dir   string
	Files map[string]string
}

// ContextFiles renders the loaded files as bootstrap.ContextFile entries, in
// fileSpecs order, for injection into the system prompt.
func (w *Workspace) ContextFiles() []bootstrap.ContextFile {
	var out []bootstrap.ContextFile
	for _, spec := range fileSpecs {
		if content, ok := w.Files[spec.name]; ok {
			out = append(out, bootstrap.ContextFile{Path: spec.name, Content: content})
		}
	}
	return out
}

// Load fans out a parallel read over the known file set, each capped
// independently. A missing file is simply omitted; read errors other than
// "not exist" are likewise swallowed since a bad workspace file must never
// fail the whole prompt build.
func Load(dir string) (*Workspace, error) {
	ws := &Workspace{Dir: dir, Files: make(map[string]string, len(fileSpecs))}

	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, spec := range fileSpecs {
		wg.Add(1)
		go func(spec fileSpec) {
			defer wg.Done()
			content, err := readCapped(filepath.Join(dir, spec.name), spec.cap)
			if err != nil {
				return
			}
			mu.Lock()
			ws.Files[spec.name] = content
			mu.Unlock()
		}(spec)
	}
	wg.Wait()

	return ws, nil
}

func readCapped(path string, cap int) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return truncate(string(data), cap), nil
}

// truncate cuts content to at most cap characters. If content exceeds cap,
// it cuts at the last paragraph break ("\n\n") found within
// [cap*0.7, cap]; failing that, it cuts hard at cap. A marker is appended
// whenever truncation occurs.
func truncate(content string, cap int) string {
	if cap <= 0 || len(content) <= cap {
		return content
	}
	lower := int(float64(cap) * 0.7)
	window := content[:cap]
	cut := cap
	if idx := strings.LastIndex(window, "\n\n"); idx >= lower {
		cut = idx
	}
	return content[:cut] + truncationMarker
}

// Save writes file's content verbatim under dir, creating dir if needed.
func Save(dir, file, content string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, file), []byte(content), 0o644)
}

// AppendDailyLog appends a timestamped section to today's daily-log file,
// creating the daily directory and file on first use.
func AppendDailyLog(dir, content string) error {
	dailyDir := filepath.Join(dir, DailyDirName)
	if err := os.MkdirAll(dailyDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dailyDir, time.Now().Format("2006-01-02")+".md")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "## %s\n%s\n\n", time.Now().Format("15:04:05"), content)
	return err
}

// ListRecentDaily concatenates the most recent `days` daily-log files
// (oldest first), each independently capped. When a single day's content
// exceeds the cap, its oldest "## timestamp" sections are trimmed first.
func ListRecentDaily(dir string, days int) (string, error) {
	dailyDir := filepath.Join(dir, DailyDirName)
	entries, err := os.ReadDir(dailyDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			names = append(names, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	if len(names) > days {
		names = names[:days]
	}
	sort.Strings(names) // chronological order for concatenation

	var parts []string
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dailyDir, name))
		if err != nil {
			continue
		}
		parts = append(parts, trimDailyOverCap(string(data), dailyCap))
	}
	return strings.Join(parts, "\n\n"), nil
}

// trimDailyOverCap drops the oldest "## " sections from content until it
// fits within cap, falling back to a hard truncate if a single remaining
// section still exceeds it.
func trimDailyOverCap(content string, cap int) string {
	if len(content) <= cap {
		return content
	}
	sections := splitSections(content)
	for len(content) > cap && len(sections) > 1 {
		sections = sections[1:]
		content = strings.Join(sections, "")
	}
	if len(content) > cap {
		content = truncate(content, cap)
	}
	return content
}

// splitSections splits content into chunks starting at each "## " header
// line, keeping any leading preamble before the first header as its own
// section.
func splitSections(content string) []string {
	var sections []string
	var cur strings.Builder
	for _, line := range strings.SplitAfter(content, "\n") {
		if strings.HasPrefix(line, "## ") && cur.Len() > 0 {
			sections = append(sections, cur.String())
			cur.Reset()
		}
		cur.WriteString(line)
	}
	if cur.Len() > 0 {
		sections = append(sections, cur.String())
	}
	return sections
}
