package extract

import "github.com/mrtoronto/patscan"

// Ensure Assembler implements patscan.Extractor at compile time.
var _ patscan.Extractor = (*Assembler)(nil)

// Rule extracts one field into a record. Apply reports whether the field
// was found.
type Rule struct {
	Field string
	Apply func(doc *patscan.RawDocument, rec *patscan.PatentRecord) bool
}

// StringRule adapts a string extraction function into a Rule writing to the
// field selected by dst.
func StringRule(field string, fn func(*patscan.RawDocument) Match[string], dst func(*patscan.PatentRecord) *string) Rule {
	return Rule{
		Field: field,
		Apply: func(doc *patscan.RawDocument, rec *patscan.PatentRecord) bool {
			m := fn(doc)
			*dst(rec) = m.Value
			return m.Found
		},
	}
}

// ListRule adapts a list extraction function into a Rule writing to the
// field selected by dst.
func ListRule(field string, fn func(*patscan.RawDocument) Match[[]string], dst func(*patscan.PatentRecord) *[]string) Rule {
	return Rule{
		Field: field,
		Apply: func(doc *patscan.RawDocument, rec *patscan.PatentRecord) bool {
			m := fn(doc)
			*dst(rec) = m.Value
			return m.Found
		},
	}
}

// DefaultRules returns the rules for every PatentRecord field in record order.
func DefaultRules() []Rule {
	return []Rule{
		StringRule(FieldPrimaryExaminer, PrimaryExaminer, func(r *patscan.PatentRecord) *string { return &r.PrimaryExaminer }),
		StringRule(FieldAttorney, Attorney, func(r *patscan.PatentRecord) *string { return &r.Attorney }),
		StringRule(FieldPublicationDate, PublicationDate, func(r *patscan.PatentRecord) *string { return &r.PublicationDate }),
		StringRule(FieldDocumentNumber, DocumentNumber, func(r *patscan.PatentRecord) *string { return &r.DocumentNumber }),
		StringRule(FieldPatentNumber, PatentNumber, func(r *patscan.PatentRecord) *string { return &r.PatentNumber }),
		StringRule(FieldInventors, Inventors, func(r *patscan.PatentRecord) *string { return &r.Inventors }),
		StringRule(FieldApplicant, Applicant, func(r *patscan.PatentRecord) *string { return &r.Applicant }),
		StringRule(FieldAbstract, Abstract, func(r *patscan.PatentRecord) *string { return &r.Abstract }),
		ListRule(FieldClaims, Claims, func(r *patscan.PatentRecord) *[]string { return &r.Claims }),
		ListRule(FieldCitedReferences, CitedReferences, func(r *patscan.PatentRecord) *[]string { return &r.CitedReferences }),
		ListRule(FieldOtherReferences, OtherReferences, func(r *patscan.PatentRecord) *[]string { return &r.OtherReferences }),
	}
}

// Assembler builds records by running a fixed list of rules.
// Assembler is safe for concurrent use.
type Assembler struct {
	rules []Rule
}

// NewAssembler returns an Assembler running rules, or DefaultRules when
// none are given.
func NewAssembler(rules ...Rule) *Assembler {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Assembler{rules: rules}
}

// Extract runs every rule against doc. A nil doc yields the stub record.
func (a *Assembler) Extract(ref patscan.Reference, doc *patscan.RawDocument) *patscan.Extraction {
	rec := patscan.NewStubRecord(ref)
	if doc == nil {
		return &patscan.Extraction{Record: rec}
	}
	doc.Normalize()

	var misses []string
	for _, rule := range a.rules {
		if !rule.Apply(doc, rec) {
			misses = append(misses, rule.Field)
		}
	}
	return &patscan.Extraction{Record: rec, Misses: misses}
}
