// Wardeval scores the warden triage pipeline against a labelled dataset and
// writes a per-image CSV report.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/linnemanlabs/go-core/cfg"
	"github.com/linnemanlabs/go-core/log"
	v "github.com/linnemanlabs/go-core/version"

	wc "github.com/safesitelabs/warden/internal/cfg"
	"github.com/safesitelabs/warden/internal/detect"
	"github.com/safesitelabs/warden/internal/evaluation"
	"github.com/safesitelabs/warden/internal/groundtruth"
	"github.com/safesitelabs/warden/internal/hazard"
	"github.com/safesitelabs/warden/internal/triage"
	"github.com/safesitelabs/warden/internal/vlm"
)

const appName = "warden"
const component = "wardeval"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal error:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	v.AppName = appName
	v.Component = component
	vi := v.Get()

	// .env keeps API keys out of shell history for local evaluation runs;
	// absence is fine, real env vars win either way
	_ = godotenv.Load()

	var (
		appCfg wc.EvalConfig
		logCfg log.Config
	)
	appCfg.RegisterFlags(flag.CommandLine)
	logCfg.RegisterFlags(flag.CommandLine)
	var showVersion bool
	flag.BoolVar(&showVersion, "V", false, "Print version+build information and exit")

	flag.Parse()
	if showVersion {
		fmt.Printf(
			"%s (%s) %s (commit=%s, commit_date=%s, build_id=%s, build_date=%s, go=%s, dirty=%v)\n",
			vi.AppName, vi.Component, vi.Version, vi.Commit, vi.CommitDate, vi.BuildId, vi.BuildDate, vi.GoVersion,
			vi.VCSDirty != nil && *vi.VCSDirty,
		)
		return nil
	}

	// Fill in config values from environment variables with prefix WARDEN_,
	// these do not override cmdline flags
	cfg.FillFromEnv(flag.CommandLine, "WARDEN_", func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	})

	if err := appCfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if err := logCfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	mode, err := triage.ParseMode(appCfg.Mode)
	if err != nil {
		return err
	}
	policy, err := triage.ParsePolicy(appCfg.Policy)
	if err != nil {
		return err
	}

	lg, err := log.New(logCfg.ToOptions(v.AppName))
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer func() { _ = lg.Sync() }()

	L := lg.With("component", vi.Component)
	ctx = log.WithContext(ctx, L)

	imagesDir := filepath.Join(appCfg.DataRoot, "val", "images")

	L.Info(ctx, "starting evaluation",
		"version", vi.Version,
		"mode", string(mode),
		"policy", string(policy),
		"gt_scheme", appCfg.Scheme,
		"images_dir", imagesDir,
		"sample", appCfg.SampleSize,
		"seed", appCfg.Seed,
		"output", appCfg.OutputCSV,
	)

	var detector detect.Detector
	if mode != triage.ModeVLMOnly {
		detector = detect.NewClient(appCfg.DetectorEndpoint, hazard.DefaultDetectorClasses())
	}
	analyzer := vlm.NewClient(appCfg.VLMBaseURL, appCfg.VLMAPIKey, appCfg.VLMModel)

	// no metrics registry in the CLI, zero hooks
	engine := triage.NewEngine(detector, analyzer, mode, policy, L, triage.EngineHooks{})

	whitelist := hazard.DefaultWhitelist()
	var resolver groundtruth.Resolver
	switch appCfg.Scheme {
	case "mapping":
		resolver = groundtruth.NewMappingResolver(appCfg.MappingCSV, whitelist, L)
	case "labels":
		resolver = groundtruth.NewLabelFileResolver(hazard.DefaultIndexTable(), whitelist, L)
	default:
		return fmt.Errorf("unknown ground-truth scheme %q", appCfg.Scheme)
	}

	files, err := evaluation.ListImages(imagesDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no images found under %s", imagesDir)
	}
	sample := evaluation.Sample(files, appCfg.SampleSize, appCfg.Seed)
	L.Info(ctx, "sampled images", "population", len(files), "sample", len(sample))

	runner := evaluation.NewRunner(engine, resolver, L)
	acc, runErr := runner.Run(ctx, sample)

	rows := acc.Rows()
	if len(rows) > 0 {
		if err := evaluation.WriteReport(appCfg.OutputCSV, rows); err != nil {
			return err
		}
		L.Info(ctx, "report written", "path", appCfg.OutputCSV, "rows", len(rows))
	}

	summary := acc.Summary()
	evaluation.LogSummary(ctx, L, mode, summary)
	printSummary(mode, summary)

	if runErr != nil {
		return fmt.Errorf("evaluation interrupted: %w", runErr)
	}
	return nil
}

// printSummary writes the human-readable run summary to stdout, alongside
// the structured log line.
func printSummary(mode triage.Mode, s evaluation.Summary) {
	var b strings.Builder
	fmt.Fprintf(&b, "\n=== Evaluation Summary (%s) ===\n", mode)
	fmt.Fprintf(&b, "Images scored:            %d\n", s.Rows)
	fmt.Fprintf(&b, "Binary accuracy:          %.4f\n", s.BinaryAccuracy)
	fmt.Fprintf(&b, "Code accuracy:            %.4f\n", s.CodeAccuracy)
	fmt.Fprintf(&b, "Restricted code accuracy: %.4f (over %d anomaly rows)\n", s.RestrictedCodeAccuracy, s.AnomalyRows)
	fmt.Fprintf(&b, "Mean detector seconds:    %.4f\n", s.MeanDetectorSeconds)
	fmt.Fprintf(&b, "Mean analyzer seconds:    %.4f\n", s.MeanAnalyzerSeconds)
	fmt.Fprintf(&b, "Mean total seconds:       %.4f\n", s.MeanTotalSeconds)
	fmt.Fprintf(&b, "Analyzer calls:           %d (rate %.4f)\n", s.AnalyzerCalls, s.AnalyzerCallRate)
	fmt.Fprintf(&b, "Confusion (true x pred):  TP=%d FN=%d FP=%d TN=%d\n",
		s.Confusion.Count(detect.VerdictAnomaly, detect.VerdictAnomaly),
		s.Confusion.Count(detect.VerdictAnomaly, detect.VerdictNormal),
		s.Confusion.Count(detect.VerdictNormal, detect.VerdictAnomaly),
		s.Confusion.Count(detect.VerdictNormal, detect.VerdictNormal),
	)
	fmt.Print(b.String())
}
