package latex_test

import (
	"strings"
	"testing"

	"tailor/internal/latex"
)

const minimalDoc = `\documentclass{article}
\begin{document}
Hello.
\end{document}
`

func TestValidateAcceptsMinimalDocument(t *testing.T) {
	v := latex.Validate(minimalDoc)
	if !v.OK {
		t.Fatalf("expected valid document, got reason %q", v.Reason)
	}
}

func TestValidateRejectsEmptyDocument(t *testing.T) {
	if v := latex.Validate("   \n\t"); v.OK {
		t.Fatal("expected empty document to fail")
	}
}

func TestValidateDetectsUnclosedBrace(t *testing.T) {
	doc := strings.Replace(minimalDoc, "Hello.", `\textbf{Hello.`, 1)
	v := latex.Validate(doc)
	if v.OK {
		t.Fatal("expected unclosed brace to fail")
	}
	if !strings.Contains(v.Reason, "unbalanced delimiter") {
		t.Fatalf("expected unbalanced delimiter reason, got %q", v.Reason)
	}
}

func TestValidateDetectsStrayClosingBrace(t *testing.T) {
	doc := strings.Replace(minimalDoc, "Hello.", "Hello.}", 1)
	v := latex.Validate(doc)
	if v.OK || !strings.Contains(v.Reason, "unexpected '}'") {
		t.Fatalf("expected stray brace failure, got ok=%v reason=%q", v.OK, v.Reason)
	}
}

func TestValidateIgnoresEscapedBracesAndComments(t *testing.T) {
	doc := `\documentclass{article}
% this comment has an unmatched { brace
\begin{document}
50\% of \{escaped\} braces are fine.
\end{document}
`
	if v := latex.Validate(doc); !v.OK {
		t.Fatalf("expected escaped braces and comments to pass, got %q", v.Reason)
	}
}

func TestValidateDetectsMismatchedEnvironment(t *testing.T) {
	doc := `\documentclass{article}
\begin{document}
\begin{center}
text
\end{flushleft}
\end{document}
`
	v := latex.Validate(doc)
	if v.OK || !strings.Contains(v.Reason, `\end{flushleft}`) {
		t.Fatalf("expected mismatched environment failure, got ok=%v reason=%q", v.OK, v.Reason)
	}
}

func TestValidateDetectsUnclosedEnvironment(t *testing.T) {
	doc := `\documentclass{article}
\begin{document}
\begin{center}
text
\end{document}
`
	v := latex.Validate(doc)
	if v.OK {
		t.Fatalf("expected unclosed environment failure, got ok")
	}
}

func TestValidateRequiresDocumentMarkers(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{"no documentclass", "\\begin{document}x\\end{document}", "\\documentclass"},
		{"no begin", "\\documentclass{article}\nHello.", "\\begin{document}"},
	}
	for _, tc := range cases {
		v := latex.Validate(tc.doc)
		if v.OK {
			t.Fatalf("%s: expected failure", tc.name)
		}
		if !strings.Contains(v.Reason, tc.want) {
			t.Fatalf("%s: expected reason mentioning %q, got %q", tc.name, tc.want, v.Reason)
		}
	}
}

func TestValidateDetectsBareTextInItemize(t *testing.T) {
	doc := `\documentclass{article}
\begin{document}
\begin{itemize}
bare text before any item
\item fine
\end{itemize}
\end{document}
`
	v := latex.Validate(doc)
	if v.OK || !strings.Contains(v.Reason, "itemize") {
		t.Fatalf("expected itemize failure, got ok=%v reason=%q", v.OK, v.Reason)
	}
}

func TestValidateAcceptsContinuationTextAfterItem(t *testing.T) {
	doc := `\documentclass{article}
\begin{document}
\begin{itemize}[leftmargin=*]
\item first line
    wrapped continuation of the first item
\item second
\end{itemize}
\end{document}
`
	if v := latex.Validate(doc); !v.OK {
		t.Fatalf("expected continuation text to pass, got %q", v.Reason)
	}
}

func TestValidateDetectsCommandBeforeFirstItem(t *testing.T) {
	doc := `\documentclass{article}
\begin{document}
\begin{enumerate}
\textbf{heading}
\item one
\end{enumerate}
\end{document}
`
	v := latex.Validate(doc)
	if v.OK || !strings.Contains(v.Reason, "enumerate") {
		t.Fatalf("expected enumerate failure, got ok=%v reason=%q", v.OK, v.Reason)
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	docs := []string{
		minimalDoc,
		"broken {",
		strings.Replace(minimalDoc, "Hello.", `\textbf{x`, 1),
	}
	for _, doc := range docs {
		first := latex.Validate(doc)
		second := latex.Validate(doc)
		if first != second {
			t.Fatalf("verdicts differ for %q: %+v vs %+v", doc, first, second)
		}
	}
}
