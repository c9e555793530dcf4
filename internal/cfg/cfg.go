// Package cfg holds the flag-backed configuration for warden's binaries.
package cfg

import (
	"errors"
	"flag"
	"fmt"
)

// Config is the production server configuration.
type Config struct {
	DrainSeconds          int
	ShutdownBudgetSeconds int
	APIPort               int
	APIAuthToken          string
	Mode                  string
	Policy                string
	DetectorEndpoint      string
	DetectorHazardClasses string
	VLMBaseURL            string
	VLMAPIKey             string
	VLMModel              string
	ClaudeAPIKey          string
	ClaudeModel           string
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.DrainSeconds, "drain-seconds", 60, "seconds to wait for in-flight requests to drain before shutdown (1..300)")
	fs.IntVar(&c.ShutdownBudgetSeconds, "shutdown-budget-seconds", 90, "total seconds for component shutdown after drain (1..300)")
	fs.IntVar(&c.APIPort, "http-port", 8080, "API listen TCP port (1..65535)")
	fs.StringVar(&c.APIAuthToken, "api-auth-token", "", "bearer token required on the submit API (empty = no auth)")
	fs.StringVar(&c.Mode, "mode", "hybrid", "triage mode: hybrid, vlm-only or vlm-evaluate")
	fs.StringVar(&c.Policy, "policy", "lenient", "prediction normalization policy: lenient or strict")
	fs.StringVar(&c.DetectorEndpoint, "detector-endpoint", "", "visual detector sidecar endpoint")
	fs.StringVar(&c.DetectorHazardClasses, "detector-hazard-classes", "", "comma-separated detector class names treated as hazards (empty = built-in set)")
	fs.StringVar(&c.VLMBaseURL, "vlm-base-url", "https://api.openai.com/v1", "base URL of the OpenAI-compatible risk analyzer API")
	fs.StringVar(&c.VLMAPIKey, "vlm-api-key", "", "API key for the risk analyzer")
	fs.StringVar(&c.VLMModel, "vlm-model", "gpt-4o", "risk analyzer model")
	fs.StringVar(&c.ClaudeAPIKey, "claude-api-key", "", "API key for the guidance generator (empty = generation disabled)")
	fs.StringVar(&c.ClaudeModel, "claude-model", "claude-sonnet-4-20250514", "guidance generator model")
}

// Validate checks all configuration fields for correctness.
// It returns an error if any field is invalid, or nil if all fields are valid.
func (c *Config) Validate() error {
	var errs []error

	// Drain and shutdown budgets
	if c.DrainSeconds <= 0 || c.DrainSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid DRAIN_SECONDS %d (must be 1..300)", c.DrainSeconds))
	}
	if c.ShutdownBudgetSeconds <= 0 || c.ShutdownBudgetSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid SHUTDOWN_BUDGET_SECONDS %d (must be 1..300)", c.ShutdownBudgetSeconds))
	}

	// Shutdown budget must be greater than drain time
	if c.ShutdownBudgetSeconds <= c.DrainSeconds {
		errs = append(errs, fmt.Errorf("SHUTDOWN_BUDGET_SECONDS %d must be greater than DRAIN_SECONDS %d", c.ShutdownBudgetSeconds, c.DrainSeconds))
	}

	// API port must be valid TCP port number
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d (must be 1..65535)", c.APIPort))
	}

	errs = append(errs, validatePipeline(c.Mode, c.Policy, c.DetectorEndpoint, c.VLMAPIKey)...)

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// EvalConfig is the evaluation CLI configuration.
type EvalConfig struct {
	DataRoot         string
	MappingCSV       string
	Scheme           string
	SampleSize       int
	Seed             int64
	Mode             string
	Policy           string
	OutputCSV        string
	DetectorEndpoint string
	VLMBaseURL       string
	VLMAPIKey        string
	VLMModel         string
}

// RegisterFlags binds EvalConfig fields to the given FlagSet with defaults inline
func (c *EvalConfig) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.DataRoot, "data-root", "", "dataset root containing val/images")
	fs.StringVar(&c.MappingCSV, "mapping-csv", "", "filename mapping table (required for the mapping scheme)")
	fs.StringVar(&c.Scheme, "gt-scheme", "mapping", "ground-truth scheme: mapping (annotation JSON) or labels (flat label files)")
	fs.IntVar(&c.SampleSize, "sample", 50, "evaluation sample size (0 = all images)")
	fs.Int64Var(&c.Seed, "seed", 42, "sampling seed for reproducible subsets")
	fs.StringVar(&c.Mode, "mode", "hybrid", "triage mode: hybrid, vlm-only or vlm-evaluate")
	fs.StringVar(&c.Policy, "policy", "lenient", "prediction normalization policy: lenient or strict")
	fs.StringVar(&c.OutputCSV, "output", "logs/eval_result.csv", "per-image report path")
	fs.StringVar(&c.DetectorEndpoint, "detector-endpoint", "", "visual detector sidecar endpoint")
	fs.StringVar(&c.VLMBaseURL, "vlm-base-url", "https://api.openai.com/v1", "base URL of the OpenAI-compatible risk analyzer API")
	fs.StringVar(&c.VLMAPIKey, "vlm-api-key", "", "API key for the risk analyzer")
	fs.StringVar(&c.VLMModel, "vlm-model", "gpt-4o", "risk analyzer model")
}

// Validate checks all configuration fields for correctness.
func (c *EvalConfig) Validate() error {
	var errs []error

	if c.DataRoot == "" {
		errs = append(errs, errors.New("DATA_ROOT is required"))
	}
	switch c.Scheme {
	case "mapping":
		if c.MappingCSV == "" {
			errs = append(errs, errors.New("MAPPING_CSV is required for the mapping scheme"))
		}
	case "labels":
	default:
		errs = append(errs, fmt.Errorf("invalid GT_SCHEME %q (must be mapping or labels)", c.Scheme))
	}
	if c.SampleSize < 0 {
		errs = append(errs, fmt.Errorf("invalid SAMPLE %d (must be >= 0)", c.SampleSize))
	}
	if c.OutputCSV == "" {
		errs = append(errs, errors.New("OUTPUT is required"))
	}

	errs = append(errs, validatePipeline(c.Mode, c.Policy, c.DetectorEndpoint, c.VLMAPIKey)...)

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// validatePipeline checks the fields both binaries share. The detector
// endpoint is not needed in vlm-only mode; the analyzer key always is.
func validatePipeline(mode, policy, detectorEndpoint, vlmAPIKey string) []error {
	var errs []error

	switch mode {
	case "hybrid", "vlm-only", "vlm-evaluate":
	default:
		errs = append(errs, fmt.Errorf("invalid MODE %q (must be hybrid, vlm-only or vlm-evaluate)", mode))
	}
	switch policy {
	case "lenient", "strict":
	default:
		errs = append(errs, fmt.Errorf("invalid POLICY %q (must be lenient or strict)", policy))
	}
	if mode != "vlm-only" && detectorEndpoint == "" {
		errs = append(errs, errors.New("DETECTOR_ENDPOINT is required outside vlm-only mode"))
	}
	if vlmAPIKey == "" {
		errs = append(errs, errors.New("VLM_API_KEY is required"))
	}
	return errs
}
