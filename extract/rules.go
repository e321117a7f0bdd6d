// Package extract turns rendered patent pages into records.
//
// Every field is produced by an independent rule over a patscan.RawDocument.
// A rule that does not find its field reports a miss and leaves the field at
// its default; no rule can prevent another from running.
package extract

import (
	"regexp"
	"strings"

	"github.com/mrtoronto/patscan"
)

// Field names, matching the JSON names of patscan.PatentRecord.
const (
	FieldPrimaryExaminer = "primary_examiner"
	FieldAttorney        = "attorney"
	FieldPublicationDate = "publication_date"
	FieldDocumentNumber  = "document_number"
	FieldPatentNumber    = "patent_number"
	FieldInventors       = "inventors"
	FieldApplicant       = "applicant"
	FieldAbstract        = "abstract"
	FieldClaims          = "claims"
	FieldCitedReferences = "cited_references"
	FieldOtherReferences = "other_references"
)

// Block positions on a full-text page.
const (
	blockPatent     = 1
	blockInventors  = 2
	blockDates      = 3
	blockReferences = 5
)

var (
	examinerPattern       = regexp.MustCompile(`Primary Examiner:.*`)
	attorneyPattern       = regexp.MustCompile(`Attorney, Agent or Firm:.*`)
	labelMarkupPattern    = regexp.MustCompile(`^(?:\s*<[^<>]{1,7}>)*\s*`)
	datePattern           = regexp.MustCompile(`.{3} \d{1,2}, \d{4}`)
	documentNumberPattern = regexp.MustCompile(`(\d{1,3},)+(\d{1,3})`)
	applicantPattern      = regexp.MustCompile(`Type *.*`)
	whitespacePattern     = regexp.MustCompile(`\s+`)
	citationPattern       = regexp.MustCompile(`.*\n.*\n.*\n?`)
	flattenPattern        = regexp.MustCompile(`(<.{1,7}>)|(\n)`)
	claimsPattern         = regexp.MustCompile(`  Claims.{1,30}1\. {1,2}.*  (?i:description)`)
	descriptionRemnant    = regexp.MustCompile(`(?i) +description$`)
	claimStartPattern     = regexp.MustCompile(`\d{1,2}\.  `)
)

// applicantLabelWidth is the number of characters of the "Type " label
// preceding the value.
const applicantLabelWidth = 5

// Match is the result of one rule. Value holds the field default when Found
// is false.
type Match[T any] struct {
	Value T
	Found bool
}

func found[T any](v T) Match[T] { return Match[T]{Value: v, Found: true} }

func missed[T any](v T) Match[T] { return Match[T]{Value: v} }

// PrimaryExaminer returns the text following the "Primary Examiner:" label.
func PrimaryExaminer(doc *patscan.RawDocument) Match[string] {
	return labeledLine(doc.Content, examinerPattern, "Primary Examiner:")
}

// Attorney returns the text following the "Attorney, Agent or Firm:" label.
func Attorney(doc *patscan.RawDocument) Match[string] {
	return labeledLine(doc.Content, attorneyPattern, "Attorney, Agent or Firm:")
}

func labeledLine(content string, pattern *regexp.Regexp, label string) Match[string] {
	line := pattern.FindString(content)
	if line == "" {
		return missed("")
	}
	line = strings.TrimPrefix(line, label)
	line = labelMarkupPattern.ReplaceAllString(line, "")
	return found(strings.TrimSpace(line))
}

// PublicationDate returns the first "Mon D, YYYY" date of the dates block.
func PublicationDate(doc *patscan.RawDocument) Match[string] {
	return firstMatch(doc.Block(blockDates), datePattern)
}

// DocumentNumber returns the first comma-grouped number of the patent block.
func DocumentNumber(doc *patscan.RawDocument) Match[string] {
	return firstMatch(doc.Block(blockPatent), documentNumberPattern)
}

func firstMatch(s string, pattern *regexp.Regexp) Match[string] {
	if m := pattern.FindString(s); m != "" {
		return found(m)
	}
	return missed("")
}

// PatentNumber returns the second line of the patent block.
func PatentNumber(doc *patscan.RawDocument) Match[string] {
	return nonEmpty(lines(doc.Block(blockPatent), 2)[1])
}

// Inventors returns the second line of the inventors block.
func Inventors(doc *patscan.RawDocument) Match[string] {
	return nonEmpty(lines(doc.Block(blockInventors), 3)[1])
}

// Applicant returns the value of the "Type" entry on the third line of the
// inventors block.
func Applicant(doc *patscan.RawDocument) Match[string] {
	m := []rune(applicantPattern.FindString(lines(doc.Block(blockInventors), 3)[2]))
	if len(m) <= applicantLabelWidth {
		return missed("")
	}
	return nonEmpty(strings.TrimSpace(string(m[applicantLabelWidth:])))
}

// Abstract returns the first paragraph with whitespace collapsed.
func Abstract(doc *patscan.RawDocument) Match[string] {
	if len(doc.Paragraphs) == 0 {
		return missed("")
	}
	return found(strings.TrimSpace(whitespacePattern.ReplaceAllString(doc.Paragraphs[0], " ")))
}

// CitedReferences returns the patent citations of the references block.
// Each citation spans two or three lines, which are joined with "; ".
func CitedReferences(doc *patscan.RawDocument) Match[[]string] {
	units := citationPattern.FindAllString(strings.TrimSpace(doc.Block(blockReferences)), -1)
	refs := make([]string, 0, len(units))
	for _, u := range units {
		refs = append(refs, strings.TrimSpace(strings.ReplaceAll(u, "\n", "; ")))
	}
	if len(refs) == 0 {
		return missed(refs)
	}
	return found(refs)
}

// OtherReferences returns the lines of the reference table with their
// leading period removed.
func OtherReferences(doc *patscan.RawDocument) Match[[]string] {
	if !doc.HasReferenceTable {
		return missed([]string{})
	}
	split := strings.Split(doc.ReferenceTable, "\n")
	refs := make([]string, 0, len(split))
	for _, line := range split {
		refs = append(refs, strings.TrimSpace(strings.TrimPrefix(line, ".")))
	}
	return found(refs)
}

// Claims returns the numbered claims found between the "Claims" heading and
// the "Description" heading of the tag-stripped content. The first element
// is the text preceding claim 1. Claim bodies containing their own
// "N.  " enumerations are split there too.
func Claims(doc *patscan.RawDocument) Match[[]string] {
	m := claimsPattern.FindString(Flatten(doc.Content))
	if m == "" {
		return missed[[]string](nil)
	}
	m = descriptionRemnant.ReplaceAllString(m, "")

	claims := []string{}
	for _, piece := range claimStartPattern.Split(m, -1) {
		if piece == "" {
			continue
		}
		claims = append(claims, strings.TrimSpace(piece))
	}
	return found(claims)
}

// Flatten removes short markup tags and line breaks from content, the form
// the claims rule searches.
func Flatten(content string) string {
	return flattenPattern.ReplaceAllString(content, "")
}

// lines splits s into trimmed non-empty lines, padded with empty strings to
// at least n entries.
func lines(s string, n int) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	for len(out) < n {
		out = append(out, "")
	}
	return out
}

func nonEmpty(s string) Match[string] {
	if s == "" {
		return missed("")
	}
	return found(s)
}
