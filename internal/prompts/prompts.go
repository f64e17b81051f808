// Package prompts owns the instruction text sent to the generative service:
// the embedded optimizer system prompt and the builders for the three
// instruction kinds the pipeline issues (initial optimization, compile fix,
// page shrink).
package prompts

import (
	_ "embed"
	"fmt"
)

//go:embed optimizer_prompt.md
var optimizerSystemPrompt string

// System returns the optimizer system prompt.
func System() string {
	return optimizerSystemPrompt
}

// Optimization builds the initial user instruction carrying the resume and
// the target job description.
func Optimization(document, jobDescription string) string {
	return fmt.Sprintf(`Please optimize the following LaTeX resume for this job description.

## Job Description:
%s

## Current LaTeX Resume:
%s

## Instructions:
1. Follow every phase in your system prompt (Job Analysis → Gap Analysis → Optimization → One-Page Enforcement → Keyword Check).
2. Before returning the LaTeX, run the SELF-VALIDATION CHECKLIST from your system prompt. If any check fails, fix it before outputting.
3. Pay special attention to CRITICAL LATEX RULES — count arguments for every custom command, ensure list environments only contain \item entries, and verify all braces are balanced.
4. Return ONLY the complete, compilable LaTeX code. No markdown fences, no explanations, no commentary.`, jobDescription, document)
}

// Fix builds the repair instruction for a failed compile. The diagnostic
// excerpt is embedded verbatim so the model sees the exact failure text.
func Fix(errorExcerpt string) string {
	return fmt.Sprintf(`The LaTeX you returned failed to compile with this error:

`+"```"+`
%s
`+"```"+`

Find and fix the issue. Common causes:
- A list item command placed directly inside a section list without its item-list wrapper
- Custom command called with wrong number of arguments
- Bare text inside an itemize/enumerate without \item
- Unbalanced braces

Return ONLY the complete corrected LaTeX. No explanations, no markdown fences.`, errorExcerpt)
}

// Shrink builds the condensation instruction for a document that compiles
// but exceeds the target length. It carries no error excerpt; this is a
// size-reduction request, not an error repair.
func Shrink(pageCount, targetPages int) string {
	return fmt.Sprintf(`The LaTeX you returned compiles but produces %d pages. It MUST fit on exactly %d page(s).

Apply these reduction strategies (Phase 4 from your instructions):

Reduction priority (cut first → cut last):
1. Oldest or least relevant experience details
2. Publications (keep if research role, summarize to 1-2 lines otherwise)
3. Additional/Awards section (keep most impressive only)
4. Reduce bullet points per role (3 max for older roles)
5. Consolidate similar skills

Space-saving LaTeX techniques:
- Reduce vertical spacing with \vspace{-Xpt} adjustments
- Tighten margins (minimum 0.5in)
- Use 10-11pt font (never below 10pt)
- Remove blank lines that create extra space

Do NOT degrade the content quality — preserve the optimized wording and keywords.

Return ONLY the complete corrected LaTeX that fits on %d page(s). No explanations, no markdown fences.`, pageCount, targetPages, targetPages)
}
