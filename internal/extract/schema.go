package extract

import (
	"fmt"
	"strings"

	"github.com/claimpilot/claimpilot/internal/model"
)

// fieldSpec describes one canonical field for the extraction prompt.
type fieldSpec struct {
	name string
	desc string
}

var schemas = map[model.DocumentType]struct {
	label  string
	fields []fieldSpec
}{
	model.DocTypePolicy: {
		label: "motor insurance policy",
		fields: []fieldSpec{
			{"policy_number", "insurance policy number"},
			{"policy_start_date", "policy start date"},
			{"policy_expiry_date", "policy expiry date"},
			{"insured_name", "name of the insured person"},
			{"vehicle_registration", "vehicle registration number"},
			{"chassis_number", "chassis number"},
			{"engine_number", "engine number"},
			{"make", "vehicle make (e.g. Maruti, Hyundai, Honda)"},
			{"model", "vehicle model"},
			{"variant", "vehicle variant/version"},
			{"color", "vehicle color"},
		},
	},
	model.DocTypeClaimForm: {
		label: "motor insurance claim form",
		fields: []fieldSpec{
			{"claim_number", "claim number or reference"},
			{"accident_date", "date of the accident"},
			{"claim_submission_date", "date the claim was submitted"},
			{"accident_description", "description of the accident"},
			{"damage_location", "location of damage (front, rear, left, right or combination)"},
			{"insured_name", "name of the insured person"},
			{"vehicle_registration", "vehicle registration number"},
		},
	},
	// The licence holder gets its own canonical field: the driver may
	// legitimately differ from the insured, so the checker must never put
	// it in the insured_name comparison group. KYC names, by contrast, are
	// the insured's identity and are extracted as insured_name so they DO
	// land in that group.
	model.DocTypeDrivingLicense: {
		label: "driving licence",
		fields: []fieldSpec{
			{"license_number", "driving licence number"},
			{"holder_name", "full name as printed on the licence"},
			{"date_of_birth", "date of birth"},
			{"expiry_date", "licence expiry date"},
			{"address", "address as printed on the licence"},
		},
	},
	model.DocTypeAadhaar: {
		label: "Aadhaar card",
		fields: []fieldSpec{
			{"aadhaar_number", "Aadhaar number"},
			{"insured_name", "full name of the holder as printed on the card"},
			{"date_of_birth", "date of birth"},
			{"address", "address as printed on the card"},
		},
	},
	model.DocTypePAN: {
		label: "PAN card",
		fields: []fieldSpec{
			{"pan_number", "PAN number"},
			{"insured_name", "full name of the holder as printed on the card"},
			{"date_of_birth", "date of birth"},
		},
	},
	model.DocTypeRepairEstimate: {
		label: "vehicle repair estimate",
		fields: []fieldSpec{
			{"estimate_amount", "total repair estimate amount"},
			{"damaged_parts", "list of damaged parts, comma separated"},
			{"workshop_name", "name of the workshop or garage"},
		},
	},
}

// FieldNames returns the canonical field names for a document type.
func FieldNames(t model.DocumentType) []string {
	spec := schemas[t]
	names := make([]string, len(spec.fields))
	for i, f := range spec.fields {
		names[i] = f.name
	}
	return names
}

// buildPrompt constructs the extraction instruction for a document type.
// The adapter must report a per-field confidence; the core never invents
// one.
func buildPrompt(t model.DocumentType) string {
	spec := schemas[t]

	var b strings.Builder
	fmt.Fprintf(&b, "You extract structured data from %s documents.\n\n", spec.label)
	b.WriteString("Read the attached document image and extract these fields:\n")
	for _, f := range spec.fields {
		fmt.Fprintf(&b, "- %s: %s\n", f.name, f.desc)
	}
	b.WriteString(`
Respond with ONLY a JSON object, no markdown and no code fences, shaped as:
{"fields": {"<field_name>": {"value": "<extracted value>", "confidence": <0.0-1.0>}}}

Confidence reflects how certain you are of that specific value given the
legibility of the document. Omit fields you cannot find; never invent values.`)
	return b.String()
}
