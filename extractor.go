package patscan

// Extraction is the outcome of turning one document into a record.
type Extraction struct {
	Record *PatentRecord

	// Misses lists the fields whose pattern did not match, in rule order.
	Misses []string
}

// Extractor builds a record from a rendered document. Extraction never fails:
// fields that cannot be found keep their empty defaults.
type Extractor interface {
	Extract(ref Reference, doc *RawDocument) *Extraction
}
