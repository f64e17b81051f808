package latex

import (
	"fmt"
	"strings"
)

// Verdict is the result of structural validation.
type Verdict struct {
	OK     bool
	Reason string
}

var listEnvironments = map[string]struct{}{
	"itemize":   {},
	"enumerate": {},
}

// Validate runs cheap structural checks on candidate LaTeX source, in order,
// short-circuiting on the first violation: balanced braces, matched
// environments, required document markers, and well-formed list entries.
// It is deterministic and performs no I/O.
func Validate(document string) Verdict {
	if strings.TrimSpace(document) == "" {
		return fail("document is empty")
	}
	if v := checkBraces(document); !v.OK {
		return v
	}
	if v := checkEnvironments(document); !v.OK {
		return v
	}
	if v := checkMarkers(document); !v.OK {
		return v
	}
	return checkListItems(document)
}

func fail(reason string) Verdict {
	return Verdict{Reason: reason}
}

// stripComments removes LaTeX comments (% to end of line, unless escaped)
// while preserving line structure.
func stripComments(document string) string {
	var b strings.Builder
	b.Grow(len(document))
	escaped := false
	inComment := false
	for _, r := range document {
		if inComment {
			if r == '\n' {
				inComment = false
				b.WriteRune(r)
			}
			continue
		}
		if escaped {
			escaped = false
			b.WriteRune(r)
			continue
		}
		switch r {
		case '\\':
			escaped = true
			b.WriteRune(r)
		case '%':
			inComment = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func checkBraces(document string) Verdict {
	cleaned := stripComments(document)
	depth := 0
	line := 1
	escaped := false
	for _, r := range cleaned {
		if r == '\n' {
			line++
		}
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			escaped = true
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return fail(fmt.Sprintf("unbalanced delimiter: unexpected '}' near line %d", line))
			}
		}
	}
	if depth != 0 {
		return fail(fmt.Sprintf("unbalanced delimiter: %d unclosed '{'", depth))
	}
	return Verdict{OK: true}
}

func checkEnvironments(document string) Verdict {
	cleaned := stripComments(document)
	type frame struct {
		name string
		line int
	}
	var stack []frame
	line := 1
	for i := 0; i < len(cleaned); i++ {
		if cleaned[i] == '\n' {
			line++
			continue
		}
		if cleaned[i] != '\\' {
			continue
		}
		rest := cleaned[i:]
		if name, width := envDirective(rest, "\\begin{"); width > 0 {
			stack = append(stack, frame{name: name, line: line})
			i += width - 1
			continue
		}
		if name, width := envDirective(rest, "\\end{"); width > 0 {
			if len(stack) == 0 {
				return fail(fmt.Sprintf("unbalanced delimiter: \\end{%s} without matching \\begin near line %d", name, line))
			}
			top := stack[len(stack)-1]
			if top.name != name {
				return fail(fmt.Sprintf("unbalanced delimiter: \\end{%s} closes \\begin{%s} opened at line %d", name, top.name, top.line))
			}
			stack = stack[:len(stack)-1]
			i += width - 1
		}
	}
	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return fail(fmt.Sprintf("unbalanced delimiter: \\begin{%s} at line %d is never closed", top.name, top.line))
	}
	return Verdict{OK: true}
}

// envDirective parses "\begin{name}" style directives at the start of s and
// returns the environment name and the directive's byte width.
func envDirective(s, prefix string) (string, int) {
	if !strings.HasPrefix(s, prefix) {
		return "", 0
	}
	end := strings.IndexByte(s[len(prefix):], '}')
	if end < 0 {
		return "", 0
	}
	name := s[len(prefix) : len(prefix)+end]
	if name == "" || strings.ContainsAny(name, "\\{\n") {
		return "", 0
	}
	return name, len(prefix) + end + 1
}

func checkMarkers(document string) Verdict {
	cleaned := stripComments(document)
	if !strings.Contains(cleaned, "\\documentclass") {
		return fail("missing \\documentclass declaration")
	}
	if !strings.Contains(cleaned, "\\begin{document}") {
		return fail("missing \\begin{document}")
	}
	if !strings.Contains(cleaned, "\\end{document}") {
		return fail("missing \\end{document}")
	}
	return Verdict{OK: true}
}

// checkListItems verifies that every itemize/enumerate block starts its
// content with \item. Bare text after an \item is a legal continuation, but
// text between \begin{itemize} and the first \item never compiles cleanly.
func checkListItems(document string) Verdict {
	cleaned := stripComments(document)
	type listFrame struct {
		name     string
		line     int
		seenItem bool
	}
	var stack []listFrame
	line := 1
	i := 0
	for i < len(cleaned) {
		c := cleaned[i]
		if c == '\n' {
			line++
			i++
			continue
		}
		if c == '\\' {
			rest := cleaned[i:]
			if name, width := envDirective(rest, "\\begin{"); width > 0 {
				if _, ok := listEnvironments[name]; ok {
					stack = append(stack, listFrame{name: name, line: line})
				}
				i += width
				// Skip an optional [...] argument after \begin{...}.
				for i < len(cleaned) && (cleaned[i] == ' ' || cleaned[i] == '\t') {
					i++
				}
				if i < len(cleaned) && cleaned[i] == '[' {
					for i < len(cleaned) && cleaned[i] != ']' {
						if cleaned[i] == '\n' {
							line++
						}
						i++
					}
					if i < len(cleaned) {
						i++
					}
				}
				continue
			}
			if name, width := envDirective(rest, "\\end{"); width > 0 {
				if len(stack) > 0 && stack[len(stack)-1].name == name {
					stack = stack[:len(stack)-1]
				}
				i += width
				continue
			}
			if strings.HasPrefix(rest, "\\item") {
				if len(stack) > 0 {
					stack[len(stack)-1].seenItem = true
				}
				i += len("\\item")
				continue
			}
			// Any other command before the first \item is content.
			if len(stack) > 0 && !stack[len(stack)-1].seenItem {
				top := stack[len(stack)-1]
				return fail(fmt.Sprintf("%s opened at line %d contains content before the first \\item (line %d)", top.name, top.line, line))
			}
			i += 2
			continue
		}
		if len(stack) > 0 && !stack[len(stack)-1].seenItem && !isSpace(c) {
			top := stack[len(stack)-1]
			return fail(fmt.Sprintf("%s opened at line %d contains bare text before the first \\item (line %d)", top.name, top.line, line))
		}
		i++
	}
	return Verdict{OK: true}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
