package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/claimpilot/claimpilot/internal/assess"
	"github.com/claimpilot/claimpilot/internal/cache"
	"github.com/claimpilot/claimpilot/internal/extract"
	"github.com/claimpilot/claimpilot/internal/model"
	"github.com/claimpilot/claimpilot/internal/pipeline"
	"github.com/claimpilot/claimpilot/internal/store"
	"github.com/claimpilot/claimpilot/internal/worker"
)

var (
	claimNumber      string
	claimDescription string
	imageAngle       string
	attachType       string
	outJSON          bool
	listOffset       int
	listLimit        int
	opTimeout        time.Duration
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a new claim",
	Example: `  claimpilot create --number CLM-2024-0042 --description "rear-end collision"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := buildPipeline()
		if err != nil {
			return err
		}
		ctx, cancel := opContext()
		defer cancel()

		claim, err := p.CreateClaim(ctx, claimNumber, claimDescription)
		if err != nil {
			return err
		}
		fmt.Println(claim.ID)
		return nil
	},
}

var attachCmd = &cobra.Command{
	Use:   "attach <claim-id> <file>",
	Short: "Attach a document to a claim and extract its fields",
	Long: `Attach uploads a document, runs field extraction through the configured
LLM provider and normalizes the extracted values. A re-upload of the same
declared type supersedes the earlier document; history is kept.

Accepted types: policy, claim_form, driving_license, aadhaar, pan,
repair_estimate.`,
	Example: `  claimpilot attach 3f2a... policy.pdf --type policy
  claimpilot attach 3f2a... form.jpg --type claim_form`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := buildPipeline()
		if err != nil {
			return err
		}
		data, contentType, err := readArtifact(args[1])
		if err != nil {
			return err
		}
		ctx, cancel := opContext()
		defer cancel()

		if verbose {
			fmt.Fprintf(os.Stderr, "Extracting %s fields from %s...\n", attachType, args[1])
		}
		claim, err := p.AttachDocument(ctx, args[0], attachType, data, contentType)
		if err != nil {
			return err
		}

		doc := claim.Documents[len(claim.Documents)-1]
		if doc.ExtractionStatus == model.ExtractionFailed {
			fmt.Fprintf(os.Stderr, "Warning: extraction failed: %s\n", doc.ExtractionError)
		} else if verbose {
			fmt.Fprintf(os.Stderr, "Extracted %d fields\n", len(doc.Fields))
		}
		fmt.Printf("attached %s as %s (claim now %s)\n", doc.ID, doc.Type, claim.Status)
		return nil
	},
}

var attachImageCmd = &cobra.Command{
	Use:   "attach-image <claim-id> <file>",
	Short: "Attach a damage photograph to a claim",
	Long: `Attach-image uploads a damage photo. Assessment runs during validation,
once the declared damage from the claim form is known. Re-uploading the
same --angle supersedes the earlier photo.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := buildPipeline()
		if err != nil {
			return err
		}
		data, contentType, err := readArtifact(args[1])
		if err != nil {
			return err
		}
		ctx, cancel := opContext()
		defer cancel()

		claim, err := p.AttachImage(ctx, args[0], data, contentType, imageAngle)
		if err != nil {
			return err
		}
		img := claim.Images[len(claim.Images)-1]
		fmt.Printf("attached image %s (claim now %s)\n", img.ID, claim.Status)
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <claim-id>",
	Short: "Run the validation pipeline and print the verdict",
	Long: `Validate assesses any pending damage photos, cross-checks the extracted
document fields and produces the verdict with its full rationale. The
result is appended to the claim's history.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, renderer, err := buildPipeline()
		if err != nil {
			return err
		}
		ctx, cancel := opContext()
		defer cancel()

		if verbose {
			fmt.Fprintf(os.Stderr, "Validating claim %s...\n", args[0])
		}
		result, err := p.RequestValidation(ctx, args[0])
		if err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Verdict: %s (%d discrepancies)\n",
				result.Verdict, len(result.Discrepancies))
		}

		claim, err := p.GetClaim(ctx, args[0])
		if err != nil {
			return err
		}
		if outJSON {
			return renderer.RenderJSON(os.Stdout, claim)
		}
		return renderer.RenderMarkdown(os.Stdout, claim)
	},
}

var showCmd = &cobra.Command{
	Use:   "show <claim-id>",
	Short: "Show a claim and its latest validation result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, renderer, err := buildPipeline()
		if err != nil {
			return err
		}
		ctx, cancel := opContext()
		defer cancel()

		claim, err := p.GetClaim(ctx, args[0])
		if err != nil {
			return err
		}
		if outJSON {
			return renderer.RenderJSON(os.Stdout, claim)
		}
		return renderer.RenderMarkdown(os.Stdout, claim)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List claims, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, renderer, err := buildPipeline()
		if err != nil {
			return err
		}
		ctx, cancel := opContext()
		defer cancel()

		claims, err := p.ListClaims(ctx, listOffset, listLimit)
		if err != nil {
			return err
		}
		for i := range claims {
			if err := renderer.RenderSummary(os.Stdout, &claims[i]); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createCmd, attachCmd, attachImageCmd, validateCmd, showCmd, listCmd)

	createCmd.Flags().StringVar(&claimNumber, "number", "", "insurer-issued claim number")
	createCmd.Flags().StringVar(&claimDescription, "description", "", "free-text claim description")

	attachCmd.Flags().StringVar(&attachType, "type", "", "declared document type (required)")
	_ = attachCmd.MarkFlagRequired("type")

	attachImageCmd.Flags().StringVar(&imageAngle, "angle", "", "viewpoint of the photo (front, rear, left, right)")

	validateCmd.Flags().BoolVar(&outJSON, "json", false, "print the full claim as JSON")
	showCmd.Flags().BoolVar(&outJSON, "json", false, "print the full claim as JSON")

	listCmd.Flags().IntVar(&listOffset, "offset", 0, "skip this many claims")
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "maximum claims to list (0 = all)")

	for _, c := range []*cobra.Command{createCmd, attachCmd, attachImageCmd, validateCmd, showCmd, listCmd} {
		c.Flags().DurationVar(&opTimeout, "timeout", 3*time.Minute, "overall operation timeout")
	}
}

func opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opTimeout)
}

// buildPipeline assembles the full stack from configuration: file-backed
// stores under the data directory, the extraction adapter wrapped in rate
// limiting and caching, and the vision assessor sharing the limiter.
func buildPipeline() (*pipeline.Pipeline, *pipeline.Renderer, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	base, err := resolveDataDir()
	if err != nil {
		return nil, nil, err
	}

	claims := store.NewFileClaimStore(filepath.Join(base, "claims"))
	artifacts := store.NewDiskArtifactStore(filepath.Join(base, "artifacts"))
	limiter := worker.NewLimiter(cfg.Concurrency.ProviderRPS, cfg.Concurrency.ProviderBurst)

	var extractor extract.Adapter
	extractor, err = extract.NewAdapter(cfg.LLM)
	if err != nil {
		return nil, nil, err
	}
	extractor = extract.NewLimitedAdapter(extractor, limiter)
	if cfg.Cache.Enabled {
		cacheDir := cfg.Cache.Dir
		if cacheDir == "" {
			cacheDir = filepath.Join(base, "cache")
		}
		layered := cache.NewLayeredCache(cfg.Cache.MemoryTTL, cacheDir, cfg.Cache.DiskTTL)
		extractor = extract.NewCachedAdapter(extractor, layered, cfg.Cache.DiskTTL, pipeline.Version)
	}

	vision, err := assess.NewAdapter(cfg.LLM)
	if err != nil {
		return nil, nil, err
	}
	assessor := assess.New(vision, cfg.Concurrency.AssessmentWorkers, limiter)

	return pipeline.New(*cfg, claims, artifacts, extractor, assessor),
		pipeline.NewRenderer(cfg.Output), nil
}

// readArtifact loads the file and sniffs a content type from its
// extension, defaulting to octet-stream.
func readArtifact(path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}

	contentType := "application/octet-stream"
	switch filepath.Ext(path) {
	case ".pdf":
		contentType = "application/pdf"
	case ".png":
		contentType = "image/png"
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".webp":
		contentType = "image/webp"
	}
	return data, contentType, nil
}
