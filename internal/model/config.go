package model

import "time"

// Config is the complete pipeline configuration. Loaded by the CLI layer
// via viper (flags > CLAIMPILOT_* env > config file > defaults) and passed
// explicitly; the core never reads configuration ambiently.
type Config struct {
	Locale      LocaleConfig      `mapstructure:"locale" yaml:"locale"`
	Checker     CheckerConfig     `mapstructure:"checker" yaml:"checker"`
	Damage      DamageConfig      `mapstructure:"damage" yaml:"damage"`
	Verdict     VerdictConfig     `mapstructure:"verdict" yaml:"verdict"`
	LLM         LLMConfig         `mapstructure:"llm" yaml:"llm"`
	Cache       CacheConfig       `mapstructure:"cache" yaml:"cache"`
	Concurrency ConcurrencyConfig `mapstructure:"concurrency" yaml:"concurrency"`
	Output      OutputConfig      `mapstructure:"output" yaml:"output"`
}

// LocaleConfig resolves ambiguity in raw extracted values. Explicit
// options, never inferred from the data.
type LocaleConfig struct {
	// DayFirst resolves ambiguous numeric dates: true reads 04/05/2024
	// as 4 May, false as 5 April.
	DayFirst bool `mapstructure:"day_first" yaml:"day_first"`

	DecimalSep   string `mapstructure:"decimal_sep" yaml:"decimal_sep"`
	ThousandsSep string `mapstructure:"thousands_sep" yaml:"thousands_sep"`

	// Currency is the ISO 4217 code assumed when an amount carries no
	// symbol or code of its own.
	Currency string `mapstructure:"currency" yaml:"currency"`
}

// CoOccurRule requires a field to appear in every listed document type
// whenever those documents are present.
type CoOccurRule struct {
	Field string         `mapstructure:"field" yaml:"field"`
	Types []DocumentType `mapstructure:"types" yaml:"types"`
}

// CheckerConfig drives the consistency checker.
type CheckerConfig struct {
	// Severity maps canonical field names to the severity of a mismatch
	// on that field. Fields not listed default to minor.
	Severity map[string]Severity `mapstructure:"severity" yaml:"severity"`

	CoOccur []CoOccurRule `mapstructure:"co_occur" yaml:"co_occur"`
}

// SeverityFor returns the configured mismatch severity for a field.
func (c CheckerConfig) SeverityFor(field string) Severity {
	if s, ok := c.Severity[field]; ok {
		return s
	}
	return SeverityMinor
}

// DamageConfig drives per-claim damage aggregation.
type DamageConfig struct {
	// Reducer is "min" (pessimistic, default) or "mean".
	Reducer string `mapstructure:"reducer" yaml:"reducer"`
}

// VerdictConfig drives the final decision function.
type VerdictConfig struct {
	// RequiredDocuments must all be present (any extraction outcome) or
	// the claim is rejected for incompleteness.
	RequiredDocuments []DocumentType `mapstructure:"required_documents" yaml:"required_documents"`

	// DamageThreshold flags the claim when the aggregate damage score
	// falls below it.
	DamageThreshold float64 `mapstructure:"damage_threshold" yaml:"damage_threshold"`
}

// LLMConfig configures the extraction and damage adapters.
type LLMConfig struct {
	// Provider: "openai", "groq" (OpenAI-compatible) or "ollama".
	Provider    string        `mapstructure:"provider" yaml:"provider"`
	Model       string        `mapstructure:"model" yaml:"model"`
	VisionModel string        `mapstructure:"vision_model" yaml:"vision_model"`
	APIKey      string        `mapstructure:"api_key" yaml:"api_key,omitempty"`
	BaseURL     string        `mapstructure:"base_url" yaml:"base_url,omitempty"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxTokens   int           `mapstructure:"max_tokens" yaml:"max_tokens"`

	HTTPProxy  string `mapstructure:"http_proxy" yaml:"http_proxy,omitempty"`
	HTTPSProxy string `mapstructure:"https_proxy" yaml:"https_proxy,omitempty"`
	NoProxy    string `mapstructure:"no_proxy" yaml:"no_proxy,omitempty"`
}

// CacheConfig configures extraction-result caching.
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled" yaml:"enabled"`
	Dir       string        `mapstructure:"dir" yaml:"dir"`
	MemoryTTL time.Duration `mapstructure:"memory_ttl" yaml:"memory_ttl"`
	DiskTTL   time.Duration `mapstructure:"disk_ttl" yaml:"disk_ttl"`
}

// ConcurrencyConfig bounds adapter traffic.
type ConcurrencyConfig struct {
	AssessmentWorkers int     `mapstructure:"assessment_workers" yaml:"assessment_workers"`
	ProviderRPS       float64 `mapstructure:"provider_rps" yaml:"provider_rps"`
	ProviderBurst     int     `mapstructure:"provider_burst" yaml:"provider_burst"`
}

// OutputConfig controls CLI rendering.
type OutputConfig struct {
	Verbose       bool `mapstructure:"verbose" yaml:"verbose"`
	IncludeFooter bool `mapstructure:"include_footer" yaml:"include_footer"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Locale: LocaleConfig{
			DayFirst:     true, // dd-mm-yyyy, as on Indian documents
			DecimalSep:   ".",
			ThousandsSep: ",",
			Currency:     "INR",
		},
		Checker: CheckerConfig{
			Severity: map[string]Severity{
				"policy_number":        SeverityCritical,
				"vehicle_registration": SeverityCritical,
				"chassis_number":       SeverityCritical,
				"engine_number":        SeverityCritical,
				"license_number":       SeverityMajor,
				"aadhaar_number":       SeverityMajor,
				"pan_number":           SeverityMajor,
				"accident_date":        SeverityMajor,
				"date_of_birth":        SeverityMajor,
				"insured_name":         SeverityMinor,
				"address":              SeverityMinor,
				"make":                 SeverityMinor,
				"model":                SeverityMinor,
			},
			CoOccur: []CoOccurRule{
				{Field: "insured_name", Types: []DocumentType{DocTypePolicy, DocTypeClaimForm}},
				{Field: "vehicle_registration", Types: []DocumentType{DocTypePolicy, DocTypeClaimForm}},
			},
		},
		Damage: DamageConfig{
			Reducer: "min",
		},
		Verdict: VerdictConfig{
			RequiredDocuments: []DocumentType{DocTypePolicy, DocTypeClaimForm},
			DamageThreshold:   0.5,
		},
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			VisionModel: "gpt-4o-mini",
			Timeout:     60 * time.Second,
			MaxTokens:   2048,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "", // resolved by the CLI to ~/.claimpilot/cache
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			AssessmentWorkers: 4,
			ProviderRPS:       2,
			ProviderBurst:     4,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}
