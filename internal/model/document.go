package model

import "time"

// DocumentType identifies the declared kind of an uploaded document
type DocumentType string

const (
	DocTypePolicy         DocumentType = "policy"
	DocTypeClaimForm      DocumentType = "claim_form"
	DocTypeDrivingLicense DocumentType = "driving_license"
	DocTypeAadhaar        DocumentType = "aadhaar"
	DocTypePAN            DocumentType = "pan"
	DocTypeRepairEstimate DocumentType = "repair_estimate"
)

// DocumentTypes lists every accepted document type, in a stable order.
var DocumentTypes = []DocumentType{
	DocTypePolicy,
	DocTypeClaimForm,
	DocTypeDrivingLicense,
	DocTypeAadhaar,
	DocTypePAN,
	DocTypeRepairEstimate,
}

// ParseDocumentType validates a client-supplied type string.
func ParseDocumentType(s string) (DocumentType, error) {
	for _, t := range DocumentTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", ErrInvalidDocumentType
}

// ExtractionStatus tracks the outcome of field extraction on a document
type ExtractionStatus string

const (
	ExtractionPending   ExtractionStatus = "pending"
	ExtractionSucceeded ExtractionStatus = "succeeded"
	ExtractionFailed    ExtractionStatus = "failed"
)

// ArtifactRef is an opaque handle into external blob storage. The core
// never inspects the key beyond passing it back to the store.
type ArtifactRef struct {
	Key         string `json:"key"`
	ContentType string `json:"content_type,omitempty"`
}

// ExtractedField is one field pulled out of a document by the extraction
// adapter. Normalized is always derivable from Raw via the normalizer;
// Confidence comes from the adapter and is never fabricated by the core.
type ExtractedField struct {
	Name                string  `json:"name"`
	Raw                 string  `json:"raw"`
	Normalized          string  `json:"normalized"`
	NormalizationFailed bool    `json:"normalization_failed,omitempty"`
	Confidence          float64 `json:"confidence"`
	DocumentID          string  `json:"document_id"`
}

// Document is a single uploaded artifact of a declared type. Immutable
// once extraction completes; a re-upload of the same type creates a new
// record and supersedes this one.
type Document struct {
	ID               string                    `json:"id"`
	ClaimID          string                    `json:"claim_id"`
	Type             DocumentType              `json:"type"`
	Artifact         ArtifactRef               `json:"artifact"`
	ExtractionStatus ExtractionStatus          `json:"extraction_status"`
	ExtractionError  string                    `json:"extraction_error,omitempty"`
	Fields           map[string]ExtractedField `json:"fields,omitempty"`
	Superseded       bool                      `json:"superseded,omitempty"`
	UploadedAt       time.Time                 `json:"uploaded_at"`
}

// Field returns the named extracted field, if present.
func (d *Document) Field(name string) (ExtractedField, bool) {
	f, ok := d.Fields[name]
	return f, ok
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	cp := *d
	if d.Fields != nil {
		cp.Fields = make(map[string]ExtractedField, len(d.Fields))
		for k, v := range d.Fields {
			cp.Fields[k] = v
		}
	}
	return &cp
}

// AssessmentStatus tracks the outcome of damage assessment on an image
type AssessmentStatus string

const (
	AssessmentPending   AssessmentStatus = "pending"
	AssessmentSucceeded AssessmentStatus = "succeeded"
	AssessmentFailed    AssessmentStatus = "failed"
)

// DamageSignal is the per-image output of the damage adapter.
type DamageSignal struct {
	Score     float64  `json:"score"` // 0 = no support for claimed damage, 1 = fully consistent
	Rationale string   `json:"rationale,omitempty"`
	Tags      []string `json:"tags,omitempty"`    // e.g. "dent", "shattered_glass"
	Regions   []string `json:"regions,omitempty"` // front, rear, left, right
}

// DamageImage is an uploaded damage photograph. Immutable once assessed.
type DamageImage struct {
	ID               string           `json:"id"`
	ClaimID          string           `json:"claim_id"`
	Artifact         ArtifactRef      `json:"artifact"`
	Angle            string           `json:"angle,omitempty"` // uploader-declared viewpoint
	AssessmentStatus AssessmentStatus `json:"assessment_status"`
	AssessmentError  string           `json:"assessment_error,omitempty"`
	Signal           *DamageSignal    `json:"signal,omitempty"`
	Superseded       bool             `json:"superseded,omitempty"`
	UploadedAt       time.Time        `json:"uploaded_at"`
}

// Clone returns a deep copy of the image.
func (img *DamageImage) Clone() *DamageImage {
	cp := *img
	if img.Signal != nil {
		sig := *img.Signal
		sig.Tags = append([]string(nil), img.Signal.Tags...)
		sig.Regions = append([]string(nil), img.Signal.Regions...)
		cp.Signal = &sig
	}
	return &cp
}
