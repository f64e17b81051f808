package latex

import (
	"regexp"
	"strconv"
	"strings"
)

// Diagnostic is the structured outcome of one compile (or validation)
// attempt. Immutable once produced.
type Diagnostic struct {
	Compiled     bool
	PageCount    int
	ErrorExcerpt string
	ArtifactSize int64
}

// FromValidation shapes a validator failure like a compile failure so the
// fix loop treats both identically.
func FromValidation(reason string) Diagnostic {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "structural validation failed"
	}
	return Diagnostic{ErrorExcerpt: reason}
}

// errorContextLines is how many log lines after the "!" marker are kept.
const errorContextLines = 4

// ExtractLogError pulls the first TeX error ("!"-prefixed line plus a few
// context lines) out of a pdflatex log, capped at limit bytes. Returns ""
// when the log carries no recognizable error marker.
func ExtractLogError(log string, limit int) string {
	lines := strings.Split(log, "\n")
	for i, line := range lines {
		if !strings.HasPrefix(line, "!") {
			continue
		}
		end := i + 1 + errorContextLines
		if end > len(lines) {
			end = len(lines)
		}
		excerpt := strings.TrimSpace(strings.Join(lines[i:end], "\n"))
		return Truncate(excerpt, limit)
	}
	return ""
}

// Truncate caps s at limit bytes on a rune boundary, appending an ellipsis
// marker when content was dropped. A non-positive limit disables capping.
func Truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + " [...]"
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// pageObject matches a page object in the PDF cross-reference body. The
// negative set excludes /Pages (the page-tree node).
var pageObject = regexp.MustCompile(`/Type\s*/Page([^a-zA-Z]|$)`)

// CountPDFPages determines the page count from the artifact's structural
// metadata by counting page objects. Returns 0 when the bytes do not look
// like a PDF or contain no pages. Page dictionaries packed into compressed
// object streams (pdftex's default at \pdfobjcompresslevel=2) are invisible
// to this scan; callers must fall back to CountLogPages for those artifacts.
func CountPDFPages(pdf []byte) int {
	if len(pdf) < 5 || string(pdf[:5]) != "%PDF-" {
		return 0
	}
	return len(pageObject.FindAll(pdf, -1))
}

// outputWritten matches the compiler's completion line, e.g.
// "Output written on document.pdf (3 pages, 9473 bytes).".
var outputWritten = regexp.MustCompile(`Output written on .*\((\d+) pages?`)

// CountLogPages reads the page count from the compiler's completion line.
// Returns 0 when the log carries none.
func CountLogPages(log string) int {
	match := outputWritten.FindStringSubmatch(log)
	if match == nil {
		return 0
	}
	pages, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}
	return pages
}
