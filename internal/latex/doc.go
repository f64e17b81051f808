// Package latex provides the local document checks that run before and after
// the external compiler: structural pre-validation of candidate LaTeX source
// and parsing of compiler output into a structured diagnostic.
//
// Both halves are pure functions over text and bytes. The validator catches
// obviously malformed candidates (unbalanced braces, missing document
// markers, bare text in list environments) so the pipeline never spends a
// compiler invocation on them. The diagnostic side extracts a bounded error
// excerpt from the pdflatex log and determines the page count from the PDF
// artifact itself rather than from source text.
package latex
