package patscan

// PatentRecord holds the metadata extracted from one patent page.
//
// Claims is nil when no claims section was found, which is distinct from an
// empty list. CitedReferences and OtherReferences are never nil.
type PatentRecord struct {
	PageReference   string   `json:"page_reference"`
	PrimaryExaminer string   `json:"primary_examiner"`
	Attorney        string   `json:"attorney"`
	PublicationDate string   `json:"publication_date"`
	DocumentNumber  string   `json:"document_number"`
	PatentNumber    string   `json:"patent_number"`
	Inventors       string   `json:"inventors"`
	Applicant       string   `json:"applicant"`
	Abstract        string   `json:"abstract"`
	Claims          []string `json:"claims"`
	CitedReferences []string `json:"cited_references"`
	OtherReferences []string `json:"other_references"`
}

// NewStubRecord returns the record kept for a page that could not be
// retrieved: only the page reference is set.
func NewStubRecord(ref Reference) *PatentRecord {
	return &PatentRecord{
		PageReference:   ref.URL,
		CitedReferences: []string{},
		OtherReferences: []string{},
	}
}

// HasClaims reports whether a claims section was found.
func (r *PatentRecord) HasClaims() bool {
	return r.Claims != nil
}

// Complete reports whether the record carries a document number. Records
// without one are treated as failed extractions.
func (r *PatentRecord) Complete() bool {
	return r != nil && r.DocumentNumber != ""
}

// normalize restores the non-nil invariant of the reference lists, which
// older or hand-edited datasets may not honor.
func (r *PatentRecord) normalize() {
	if r.CitedReferences == nil {
		r.CitedReferences = []string{}
	}
	if r.OtherReferences == nil {
		r.OtherReferences = []string{}
	}
}
