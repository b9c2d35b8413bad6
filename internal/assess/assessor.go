package assess

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/claimpilot/claimpilot/internal/model"
	"github.com/claimpilot/claimpilot/internal/worker"
)

// Input is one image queued for assessment.
type Input struct {
	ImageID     string
	Data        []byte
	ContentType string
}

// ImageResult carries the per-image outcome. Err is set when the adapter
// failed; the image is then recorded as unassessable rather than aborting
// the run.
type ImageResult struct {
	ImageID string
	Signal  *model.DamageSignal
	Err     error
}

// Assessor fans images out to the vision adapter through a bounded worker
// pool and reduces the per-image signals into one claim-level summary.
type Assessor struct {
	adapter Adapter
	workers int
	limiter *worker.Limiter
}

// New creates an assessor. limiter may be shared with the extraction path
// so both respect one per-provider budget.
func New(adapter Adapter, workers int, limiter *worker.Limiter) *Assessor {
	if workers <= 0 {
		workers = 1
	}
	return &Assessor{adapter: adapter, workers: workers, limiter: limiter}
}

type assessJob struct {
	a        *Assessor
	input    Input
	declared DeclaredDamage
}

type assessResult struct {
	ImageResult
}

func (r assessResult) GetError() error { return r.Err }

func (j assessJob) Execute(ctx context.Context) worker.Result {
	res := assessResult{ImageResult: ImageResult{ImageID: j.input.ImageID}}

	if j.a.limiter != nil {
		if err := j.a.limiter.Wait(ctx, j.a.adapter.Name()); err != nil {
			res.Err = fmt.Errorf("rate limit wait: %w", err)
			return res
		}
	}

	sig, err := j.a.adapter.Assess(ctx, j.input.Data, j.input.ContentType, j.declared)
	if err != nil {
		res.Err = err
		return res
	}
	res.Signal = sig
	return res
}

// AssessImages runs every input through the adapter concurrently and
// returns results ordered by image ID. Failed images come back with Err
// set; the caller decides how to surface them.
func (a *Assessor) AssessImages(ctx context.Context, inputs []Input, declared DeclaredDamage) []ImageResult {
	if len(inputs) == 0 {
		return nil
	}

	pool := worker.NewPool(ctx, a.workers)
	pool.Start()

	// Submit blocks when the queue is full; the started workers drain it,
	// so sequential submission cannot deadlock.
	for _, input := range inputs {
		pool.Submit(assessJob{a: a, input: input, declared: declared})
	}

	results := make([]ImageResult, 0, len(inputs))
	for _, r := range pool.Wait() {
		results = append(results, r.(assessResult).ImageResult)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].ImageID < results[j].ImageID })
	return results
}

// Aggregate reduces the signals of all assessed active images into a
// DamageSummary. reducer is "min" (default, worst image dominates) or
// "mean". Returns nil when the claim has no images.
func Aggregate(reducer string, images []model.DamageImage) *model.DamageSummary {
	if len(images) == 0 {
		return nil
	}

	sorted := make([]model.DamageImage, len(images))
	copy(sorted, images)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	summary := &model.DamageSummary{Reducer: reducer}
	if summary.Reducer != "mean" {
		summary.Reducer = "min"
	}

	tagSet := make(map[string]struct{})
	regionSet := make(map[string]struct{})
	var scores []float64

	for _, img := range sorted {
		switch img.AssessmentStatus {
		case model.AssessmentFailed:
			summary.Failed++
		case model.AssessmentSucceeded:
			if img.Signal == nil {
				continue
			}
			summary.Assessed++
			scores = append(scores, img.Signal.Score)
			for _, t := range img.Signal.Tags {
				tagSet[t] = struct{}{}
			}
			for _, rg := range img.Signal.Regions {
				regionSet[rg] = struct{}{}
			}
			summary.Notes = append(summary.Notes,
				fmt.Sprintf("image %s: score %.2f (%s)", img.ID, img.Signal.Score, img.Signal.Rationale))
		}
	}

	summary.Score = reduce(summary.Reducer, scores)
	summary.Tags = sortedKeys(tagSet)
	summary.Regions = sortedKeys(regionSet)
	return summary
}

func reduce(reducer string, scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	if reducer == "mean" {
		var sum float64
		for _, s := range scores {
			sum += s
		}
		return sum / float64(len(scores))
	}
	min := math.Inf(1)
	for _, s := range scores {
		if s < min {
			min = s
		}
	}
	return min
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
