// Package pipeline orchestrates the claim lifecycle: artifact intake with
// extraction, the validation run that turns evidence into a verdict, and
// rendering of the outcome. All probabilistic work happens at the attach
// and assess boundaries; everything from normalized fields to the verdict
// is deterministic and replayable.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/claimpilot/claimpilot/internal/assess"
	"github.com/claimpilot/claimpilot/internal/check"
	"github.com/claimpilot/claimpilot/internal/extract"
	"github.com/claimpilot/claimpilot/internal/model"
	"github.com/claimpilot/claimpilot/internal/normalize"
	"github.com/claimpilot/claimpilot/internal/store"
	"github.com/claimpilot/claimpilot/internal/verdict"
)

// Version tags validation results and partitions the extraction cache.
// Bump it whenever schemas, normalization or checking rules change in a
// way that invalidates previous results.
const Version = "0.1.0"

// Pipeline wires stores, adapters and the deterministic core together.
type Pipeline struct {
	cfg        model.Config
	claims     store.ClaimStore
	artifacts  store.ArtifactStore
	extractor  extract.Adapter
	assessor   *assess.Assessor
	normalizer *normalize.Normalizer
	checker    *check.Checker
	aggregator *verdict.Aggregator

	// test seams
	nowFn func() time.Time
	newID func() string
}

// New builds a pipeline. extractor and assessor may be nil-free test
// fakes; the deterministic components are constructed from cfg.
func New(cfg model.Config, claims store.ClaimStore, artifacts store.ArtifactStore, extractor extract.Adapter, assessor *assess.Assessor) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		claims:     claims,
		artifacts:  artifacts,
		extractor:  extractor,
		assessor:   assessor,
		normalizer: normalize.New(cfg.Locale),
		checker:    check.New(cfg.Checker),
		aggregator: verdict.New(cfg.Verdict),
		nowFn:      func() time.Time { return time.Now().UTC() },
		newID:      uuid.NewString,
	}
}

// CreateClaim registers an empty claim.
func (p *Pipeline) CreateClaim(ctx context.Context, claimNumber, description string) (*model.Claim, error) {
	now := p.nowFn()
	claim := &model.Claim{
		ID:          p.newID(),
		ClaimNumber: claimNumber,
		Description: description,
		Status:      model.StatusCreated,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := p.claims.Create(ctx, claim); err != nil {
		return nil, fmt.Errorf("create claim: %w", err)
	}
	return claim, nil
}

// AttachDocument stores the artifact, runs extraction and normalization,
// supersedes any prior document of the same declared type and advances the
// claim status. Extraction failure marks only this document failed; the
// attach itself still succeeds.
func (p *Pipeline) AttachDocument(ctx context.Context, claimID, docType string, data []byte, contentType string) (*model.Claim, error) {
	t, err := model.ParseDocumentType(docType)
	if err != nil {
		return nil, fmt.Errorf("attach document: %w", err)
	}

	claim, err := p.claims.Get(ctx, claimID)
	if err != nil {
		return nil, err
	}

	ref, err := p.artifacts.Put(ctx, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("store artifact: %w", err)
	}

	doc := model.Document{
		ID:         p.newID(),
		ClaimID:    claim.ID,
		Type:       t,
		Artifact:   ref,
		UploadedAt: p.nowFn(),
	}

	fields, err := p.extractor.Extract(ctx, data, contentType, t)
	if err != nil {
		doc.ExtractionStatus = model.ExtractionFailed
		doc.ExtractionError = err.Error()
	} else {
		doc.ExtractionStatus = model.ExtractionSucceeded
		doc.Fields = p.normalizeFields(doc.ID, fields)
	}

	for i := range claim.Documents {
		if claim.Documents[i].Type == t {
			claim.Documents[i].Superseded = true
		}
	}
	claim.Documents = append(claim.Documents, doc)
	applyAttach(claim)

	if err := p.claims.Save(ctx, claim, claim.Version); err != nil {
		return nil, err
	}
	return claim, nil
}

// AttachImage stores a damage photograph. Assessment is deferred to the
// validation run so it can see the declared damage from the claim form.
// A non-empty angle supersedes the previous photo of the same angle.
func (p *Pipeline) AttachImage(ctx context.Context, claimID string, data []byte, contentType, angle string) (*model.Claim, error) {
	claim, err := p.claims.Get(ctx, claimID)
	if err != nil {
		return nil, err
	}

	ref, err := p.artifacts.Put(ctx, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("store artifact: %w", err)
	}

	if angle != "" {
		for i := range claim.Images {
			if claim.Images[i].Angle == angle {
				claim.Images[i].Superseded = true
			}
		}
	}
	claim.Images = append(claim.Images, model.DamageImage{
		ID:               p.newID(),
		ClaimID:          claim.ID,
		Artifact:         ref,
		Angle:            angle,
		AssessmentStatus: model.AssessmentPending,
		UploadedAt:       p.nowFn(),
	})
	applyAttach(claim)

	if err := p.claims.Save(ctx, claim, claim.Version); err != nil {
		return nil, err
	}
	return claim, nil
}

// RequestValidation runs the full validation pass: assess any pending
// images, check cross-document consistency, aggregate damage and decide
// the verdict. The result is appended to the claim's history.
func (p *Pipeline) RequestValidation(ctx context.Context, claimID string) (*model.ValidationResult, error) {
	claim, err := p.claims.Get(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if err := canValidate(claim); err != nil {
		return nil, err
	}

	p.assessPending(ctx, claim)

	// A cancelled or timed-out run must not persist a verdict computed
	// from half-assessed evidence. Nothing was saved, so the pending
	// images are assessed on the retry.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("validation interrupted: %w", err)
	}

	discrepancies := p.checker.Check(claim.ActiveDocuments(), p.nowFn())
	damage := assess.Aggregate(p.cfg.Damage.Reducer, claim.ActiveImages())
	outcome := p.aggregator.Decide(claim, discrepancies, damage)

	result := model.ValidationResult{
		ClaimID:         claim.ID,
		Verdict:         outcome.Verdict,
		Discrepancies:   discrepancies,
		Damage:          damage,
		Rationale:       outcome.Rationale,
		Confidence:      outcome.Confidence,
		EvidenceDigest:  evidenceDigest(claim),
		PipelineVersion: Version,
		GeneratedAt:     p.nowFn(),
	}

	claim.Results = append(claim.Results, result)
	claim.Status = model.StatusValidated

	if err := p.claims.Save(ctx, claim, claim.Version); err != nil {
		return nil, err
	}
	return result.Clone(), nil
}

// GetClaim returns the claim by ID.
func (p *Pipeline) GetClaim(ctx context.Context, id string) (*model.Claim, error) {
	return p.claims.Get(ctx, id)
}

// ListClaims returns claims newest first. limit <= 0 means no limit.
func (p *Pipeline) ListClaims(ctx context.Context, offset, limit int) ([]model.Claim, error) {
	return p.claims.List(ctx, offset, limit)
}

// assessPending runs the damage adapter over images that were never
// assessed. Once an image has an outcome it keeps it; repeated validation
// runs never re-query the provider for the same photo.
func (p *Pipeline) assessPending(ctx context.Context, claim *model.Claim) {
	if p.assessor == nil {
		return
	}

	declared := declaredDamage(claim)

	var inputs []assess.Input
	for i := range claim.Images {
		img := &claim.Images[i]
		if img.Superseded || img.AssessmentStatus != model.AssessmentPending {
			continue
		}
		data, err := p.artifacts.Get(ctx, img.Artifact)
		if err != nil {
			img.AssessmentStatus = model.AssessmentFailed
			img.AssessmentError = err.Error()
			continue
		}
		inputs = append(inputs, assess.Input{
			ImageID:     img.ID,
			Data:        data,
			ContentType: img.Artifact.ContentType,
		})
	}
	if len(inputs) == 0 {
		return
	}

	byID := make(map[string]*model.DamageImage, len(claim.Images))
	for i := range claim.Images {
		byID[claim.Images[i].ID] = &claim.Images[i]
	}
	for _, res := range p.assessor.AssessImages(ctx, inputs, declared) {
		img, ok := byID[res.ImageID]
		if !ok {
			continue
		}
		if res.Err != nil {
			img.AssessmentStatus = model.AssessmentFailed
			img.AssessmentError = res.Err.Error()
			continue
		}
		img.AssessmentStatus = model.AssessmentSucceeded
		img.Signal = res.Signal
	}

	// A cancelled pool drops jobs without a result. Those images must not
	// stay pending, or the aggregate would silently ignore them.
	for _, in := range inputs {
		img := byID[in.ImageID]
		if img.AssessmentStatus == model.AssessmentPending {
			img.AssessmentStatus = model.AssessmentFailed
			img.AssessmentError = "assessment cancelled"
		}
	}
}

// declaredDamage collects the claimant's description of the loss from the
// claim form and repair estimate. Raw values: the declaration is prose for
// the vision model, not a field under consistency checking.
func declaredDamage(claim *model.Claim) assess.DeclaredDamage {
	var declared assess.DeclaredDamage
	for _, d := range claim.ActiveDocuments() {
		switch d.Type {
		case model.DocTypeClaimForm:
			if f, ok := d.Field("accident_description"); ok {
				declared.Description = f.Raw
			}
			if f, ok := d.Field("damage_location"); ok {
				declared.Location = f.Raw
			}
		case model.DocTypeRepairEstimate:
			if f, ok := d.Field("damaged_parts"); ok {
				declared.Parts = f.Raw
			}
		}
	}
	return declared
}

// normalizeFields runs every extracted value through the normalizer.
func (p *Pipeline) normalizeFields(docID string, raw map[string]extract.FieldValue) map[string]model.ExtractedField {
	fields := make(map[string]model.ExtractedField, len(raw))
	for name, fv := range raw {
		normalized, failed := p.normalizer.Normalize(name, fv.Raw)
		fields[name] = model.ExtractedField{
			Name:                name,
			Raw:                 fv.Raw,
			Normalized:          normalized,
			NormalizationFailed: failed,
			Confidence:          extract.ClampConfidence(fv.Confidence),
			DocumentID:          docID,
		}
	}
	return fields
}

// evidenceDigest fingerprints the non-superseded evidence set. Artifact
// keys are content digests, so identical uploads hash identically no
// matter the attach order.
func evidenceDigest(claim *model.Claim) string {
	var lines []string
	for _, d := range claim.Documents {
		if !d.Superseded {
			lines = append(lines, fmt.Sprintf("doc|%s|%s", d.Type, d.Artifact.Key))
		}
	}
	for _, img := range claim.Images {
		if !img.Superseded {
			lines = append(lines, fmt.Sprintf("img|%s|%s", img.Angle, img.Artifact.Key))
		}
	}
	sort.Strings(lines)

	h := sha256.New()
	h.Write([]byte(Version + "\n"))
	h.Write([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(h.Sum(nil))
}
