package tools

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nextlevelbuilder/goclaw/internal/providers"
)

// defaultResultCap is the default maximum length, in characters, of a tool
// result's ForLLM field before compression kicks in.
const defaultResultCap = 10000

// Result is the unified return type from tool execution.
type Result struct {
	ForLLM  string `json:"for_llm"`            // content sent to the LLM
	ForUser string `json:"for_user,omitempty"`  // content shown to the user
	Silent  bool   `json:"silent"`              // suppress user message
	IsError bool   `json:"is_error"`            // marks error
	Async   bool   `json:"async"`               // running asynchronously
	Err     error  `json:"-"`                   // internal error (not serialized)

	// Usage holds token usage from tools that make internal LLM calls (e.g. read_image).
	// When set, the agent loop records these on the tool span for tracing.
	Usage    *providers.Usage `json:"-"`
	Provider string           `json:"-"` // provider name (for tool span metadata)
	Model    string           `json:"-"` // model used (for tool span metadata)
}

func NewResult(forLLM string) *Result {
	return &Result{ForLLM: forLLM}
}

func SilentResult(forLLM string) *Result {
	return &Result{ForLLM: forLLM, Silent: true}
}

func ErrorResult(message string) *Result {
	return &Result{ForLLM: message, IsError: true}
}

func UserResult(content string) *Result {
	return &Result{ForLLM: content, ForUser: content}
}

func AsyncResult(message string) *Result {
	return &Result{ForLLM: message, Async: true}
}

func (r *Result) WithError(err error) *Result {
	r.Err = err
	return r
}

// sensitiveKeyPattern matches `key: value` or `key=value` pairs whose key
// names a common credential field, so a tool result that happens to echo
// back request headers or config never leaks a live secret to the LLM or
// transcript. The key vocabulary mirrors
// internal/observability's JSON-structure redaction, adapted here to scan
// free text rather than a parsed JSON tree.
var sensitiveKeyPattern = regexp.MustCompile(`(?i)\b(api[_-]?key|x-api-key|authorization|access[_-]?token|refresh[_-]?token|password|secret|bearer)\b\s*[:=]\s*"?([^\s",}]+)"?`)

// scrubSecrets redacts the value half of any key:value/key=value pair whose
// key looks like a credential field. Applied to every tool result's ForLLM
// unless the registry's scrubbing is explicitly disabled.
func scrubSecrets(text string) string {
	return sensitiveKeyPattern.ReplaceAllString(text, "$1: [REDACTED]")
}

// compressResult applies a tool-specific truncation strategy to result's
// ForLLM field, capping it to defaultResultCap characters: web_search keeps
// the first 5 numbered entries verbatim; list_directory keeps every folder
// line plus the head and tail of the file lines; read_file and
// get_session_log preserve, respectively, the head (most useful for a file,
// read top-down) or tail (most useful for a log, read most-recent-first) up
// to 80% of the cap; everything else is hard-truncated with a trailing
// marker.
func compressResult(name string, result *Result) *Result {
	if len(result.ForLLM) <= defaultResultCap {
		return result
	}
	switch name {
	case "web_search":
		result.ForLLM = compressNumberedEntries(result.ForLLM, 5)
	case "list_directory":
		result.ForLLM = compressDirectoryListing(result.ForLLM, defaultResultCap)
	case "read_file":
		result.ForLLM = headTruncate(result.ForLLM, (defaultResultCap*8)/10)
	case "get_session_log":
		result.ForLLM = tailTruncate(result.ForLLM, (defaultResultCap*8)/10)
	default:
		result.ForLLM = hardTruncate(result.ForLLM, defaultResultCap)
	}
	return result
}

// compressNumberedEntries keeps the first keep lines that open with "N. "
// (web_search's result format) together with their indented detail lines,
// appending a summary of how many entries were dropped.
func compressNumberedEntries(text string, keep int) string {
	lines := strings.Split(text, "\n")
	entryStart := regexp.MustCompile(`^\d+\.\s`)

	var kept []string
	entries := 0
	total := 0
	i := 0
	for i < len(lines) {
		if entryStart.MatchString(lines[i]) {
			total++
			if entries < keep {
				kept = append(kept, lines[i])
				entries++
				i++
				for i < len(lines) && !entryStart.MatchString(lines[i]) {
					kept = append(kept, lines[i])
					i++
				}
				continue
			}
		}
		i++
	}
	if total > keep {
		kept = append(kept, fmt.Sprintf("(%d more omitted)", total-keep))
	}
	return strings.Join(kept, "\n")
}

// compressDirectoryListing keeps every line that looks like a folder entry
// (trailing "/") verbatim, then applies a head/tail split to the remaining
// file lines so the cap is respected overall.
func compressDirectoryListing(text string, limit int) string {
	lines := strings.Split(text, "\n")
	var folders, files []string
	for _, l := range lines {
		if strings.HasSuffix(strings.TrimSpace(l), "/") {
			folders = append(folders, l)
		} else {
			files = append(files, l)
		}
	}
	budget := limit - len(strings.Join(folders, "\n"))
	if budget < 0 {
		budget = 0
	}
	fileText := headAndTail(strings.Join(files, "\n"), budget)
	return strings.Join(folders, "\n") + "\n" + fileText
}

// headAndTail keeps the first and last halves of text within n characters,
// separating them with an omission marker.
func headAndTail(text string, n int) string {
	if len(text) <= n || n <= 0 {
		if n <= 0 {
			return ""
		}
		return text
	}
	half := n / 2
	return text[:half] + "\n... (truncated) ...\n" + text[len(text)-half:]
}

// headTruncate keeps the first n characters of text.
func headTruncate(text string, n int) string {
	if len(text) <= n {
		return text
	}
	return text[:n] + "\n... (truncated)"
}

// tailTruncate keeps the last n characters of text.
func tailTruncate(text string, n int) string {
	if len(text) <= n {
		return text
	}
	return "(truncated) ...\n" + text[len(text)-n:]
}

// hardTruncate keeps the first n characters of text with a trailing marker,
// the default compression strategy for tools without a bespoke one.
func hardTruncate(text string, n int) string {
	if len(text) <= n {
		return text
	}
	return text[:n] + "... (truncated)"
}
