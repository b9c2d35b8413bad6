package assess

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/claimpilot/claimpilot/internal/model"
)

func TestParseSignal_Basic(t *testing.T) {
	content := `{"score": 0.85, "rationale": "dented front bumper matches declaration",
		"tags": ["Dent", "dent", "scratch"], "regions": ["Front"]}`

	sig, err := parseSignal(content)
	if err != nil {
		t.Fatalf("parseSignal: %v", err)
	}
	if sig.Score != 0.85 {
		t.Errorf("score = %f", sig.Score)
	}
	// Tags are lowercased, deduplicated and sorted.
	if len(sig.Tags) != 2 || sig.Tags[0] != "dent" || sig.Tags[1] != "scratch" {
		t.Errorf("tags = %v", sig.Tags)
	}
	if len(sig.Regions) != 1 || sig.Regions[0] != "front" {
		t.Errorf("regions = %v", sig.Regions)
	}
}

func TestParseSignal_ClampsScore(t *testing.T) {
	sig, err := parseSignal(`{"score": 1.4, "rationale": "x"}`)
	if err != nil {
		t.Fatalf("parseSignal: %v", err)
	}
	if sig.Score != 1.0 {
		t.Errorf("score = %f, want clamped to 1.0", sig.Score)
	}

	sig, err = parseSignal(`{"score": -0.2}`)
	if err != nil {
		t.Fatalf("parseSignal: %v", err)
	}
	if sig.Score != 0 {
		t.Errorf("score = %f, want clamped to 0", sig.Score)
	}
}

func TestParseSignal_Malformed(t *testing.T) {
	if _, err := parseSignal("the photo shows a car"); err == nil {
		t.Error("expected error for non-JSON content")
	}
}

// fakeVision scores images by a per-ID table and fails the listed IDs.
type fakeVision struct {
	scores map[string]float64
	fail   map[string]bool
}

func (f *fakeVision) Name() string { return "fake" }

func (f *fakeVision) Assess(_ context.Context, image []byte, _ string, _ DeclaredDamage) (*model.DamageSignal, error) {
	id := string(image) // tests pass the image ID as the payload
	if f.fail[id] {
		return nil, errors.New("unreadable image")
	}
	return &model.DamageSignal{Score: f.scores[id], Tags: []string{"dent"}}, nil
}

func TestAssessor_ResultsOrderedByImageID(t *testing.T) {
	fake := &fakeVision{scores: map[string]float64{"a": 0.9, "b": 0.5, "c": 0.7}}
	a := New(fake, 3, nil)

	inputs := []Input{
		{ImageID: "c", Data: []byte("c")},
		{ImageID: "a", Data: []byte("a")},
		{ImageID: "b", Data: []byte("b")},
	}
	results := a.AssessImages(context.Background(), inputs, DeclaredDamage{})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !sort.SliceIsSorted(results, func(i, j int) bool { return results[i].ImageID < results[j].ImageID }) {
		t.Errorf("results not ordered by image ID: %+v", results)
	}
}

func TestAssessor_FailureIsolatedPerImage(t *testing.T) {
	fake := &fakeVision{
		scores: map[string]float64{"good": 0.8},
		fail:   map[string]bool{"bad": true},
	}
	a := New(fake, 2, nil)

	results := a.AssessImages(context.Background(), []Input{
		{ImageID: "bad", Data: []byte("bad")},
		{ImageID: "good", Data: []byte("good")},
	}, DeclaredDamage{})

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ImageID != "bad" || results[0].Err == nil {
		t.Errorf("expected bad image to fail: %+v", results[0])
	}
	if results[1].ImageID != "good" || results[1].Err != nil || results[1].Signal == nil {
		t.Errorf("expected good image to succeed: %+v", results[1])
	}
}

func assessedImage(id string, score float64, tags, regions []string) model.DamageImage {
	return model.DamageImage{
		ID:               id,
		AssessmentStatus: model.AssessmentSucceeded,
		Signal:           &model.DamageSignal{Score: score, Rationale: fmt.Sprintf("image %s", id), Tags: tags, Regions: regions},
	}
}

func TestAggregate_MinReducer(t *testing.T) {
	images := []model.DamageImage{
		assessedImage("a", 0.9, []string{"dent"}, []string{"front"}),
		assessedImage("b", 0.4, []string{"scratch"}, []string{"rear"}),
	}

	summary := Aggregate("min", images)
	if summary == nil {
		t.Fatal("expected a summary")
	}
	if summary.Score != 0.4 {
		t.Errorf("score = %f, want 0.4", summary.Score)
	}
	if summary.Assessed != 2 {
		t.Errorf("assessed = %d", summary.Assessed)
	}
	wantTags := []string{"dent", "scratch"}
	if len(summary.Tags) != 2 || summary.Tags[0] != wantTags[0] || summary.Tags[1] != wantTags[1] {
		t.Errorf("tags = %v, want %v", summary.Tags, wantTags)
	}
}

func TestAggregate_MeanReducer(t *testing.T) {
	images := []model.DamageImage{
		assessedImage("a", 0.9, nil, nil),
		assessedImage("b", 0.5, nil, nil),
	}

	summary := Aggregate("mean", images)
	if diff := summary.Score - 0.7; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("score = %f, want 0.7", summary.Score)
	}
	if summary.Reducer != "mean" {
		t.Errorf("reducer = %s", summary.Reducer)
	}
}

func TestAggregate_UnknownReducerFallsBackToMin(t *testing.T) {
	images := []model.DamageImage{assessedImage("a", 0.6, nil, nil)}

	summary := Aggregate("median", images)
	if summary.Reducer != "min" {
		t.Errorf("reducer = %s, want min", summary.Reducer)
	}
}

func TestAggregate_CountsFailures(t *testing.T) {
	images := []model.DamageImage{
		assessedImage("a", 0.8, nil, nil),
		{ID: "b", AssessmentStatus: model.AssessmentFailed, AssessmentError: "unreadable"},
	}

	summary := Aggregate("min", images)
	if summary.Assessed != 1 || summary.Failed != 1 {
		t.Errorf("assessed=%d failed=%d", summary.Assessed, summary.Failed)
	}
	// The failed image contributes no score.
	if summary.Score != 0.8 {
		t.Errorf("score = %f, want 0.8", summary.Score)
	}
}

func TestAggregate_NoImages(t *testing.T) {
	if Aggregate("min", nil) != nil {
		t.Error("no images must aggregate to nil")
	}
}
