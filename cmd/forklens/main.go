package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"forklens/internal/analyzer"
	"forklens/internal/config"
	"forklens/internal/contentcache"
	"forklens/internal/diaglog"
	"forklens/internal/metrics"
	"forklens/internal/model"
	"forklens/internal/provider"
	ghprovider "forklens/internal/provider/github"
	glprovider "forklens/internal/provider/gitlab"
	"forklens/internal/report"
	"forklens/internal/scan"
)

var version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "scan":
		runScan(os.Args[2:])
	case "quality":
		runQuality(os.Args[2:])
	case "version":
		fmt.Printf("forklens v%s\n", version)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: forklens <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  scan     Compare a repository against its forks")
	fmt.Println("  quality  Scan a repository's files for quality issues")
	fmt.Println("  version  Print version information")
}

func runScan(args []string) {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	configPath := fs.String("config", "forklens.yaml", "Path to config file")
	envFile := fs.String("env-file", "", "Path to .env file (optional)")
	repoName := fs.String("repo", "", "Base repository as owner/name")
	providerName := fs.String("provider", "github", "Git provider (github or gitlab)")
	maxForks := fs.Int("max-forks", 0, "Override the configured fork limit")
	fs.Parse(args)

	owner, repo := mustSplitRepo(*repoName)
	cfg := mustLoadConfig(*configPath, *envFile)
	if *maxForks > 0 {
		cfg.Scan.MaxForks = *maxForks
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := mustBuildEnv(ctx, cfg, *providerName)
	defer env.close()

	run, err := env.scanner.ScanForks(ctx, owner, repo)
	if err != nil {
		log.Fatalf("Scan failed: %v", err)
	}

	for _, comp := range run.Comparisons {
		path, err := env.writer.WriteForkCSV(comp, run.AnalysisDate)
		if err != nil {
			log.Fatalf("Writing fork report: %v", err)
		}
		log.Printf("saved CSV report to %s", path)
	}
	mainPath, err := env.writer.WriteMainCSV(run, run.AnalysisDate)
	if err != nil {
		log.Fatalf("Writing main report: %v", err)
	}
	qaPath, err := env.writer.WriteQACSV(run, run.AnalysisDate)
	if err != nil {
		log.Fatalf("Writing QA report: %v", err)
	}
	jsonPath, err := env.writer.WriteRunJSON(run, run.AnalysisDate)
	if err != nil {
		log.Fatalf("Writing run JSON: %v", err)
	}
	log.Printf("saved main report to %s", mainPath)
	log.Printf("saved QA report to %s", qaPath)
	log.Printf("saved complete analysis to %s", jsonPath)

	logMetrics()
	cleanupReports(cfg)
}

func runQuality(args []string) {
	fs := flag.NewFlagSet("quality", flag.ExitOnError)
	configPath := fs.String("config", "forklens.yaml", "Path to config file")
	envFile := fs.String("env-file", "", "Path to .env file (optional)")
	repoName := fs.String("repo", "", "Repository as owner/name")
	providerName := fs.String("provider", "github", "Git provider (github or gitlab)")
	sampleSize := fs.Int("sample", 20, "Number of files to sample")
	fs.Parse(args)

	owner, repo := mustSplitRepo(*repoName)
	cfg := mustLoadConfig(*configPath, *envFile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := mustBuildEnv(ctx, cfg, *providerName)
	defer env.close()

	fullName := owner + "/" + repo
	reports, err := env.scanner.ScanQuality(ctx, fullName, *sampleSize)
	if err != nil {
		log.Fatalf("Quality scan failed: %v", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	path, err := env.writer.WriteQualityJSON(fullName, reports, timestamp)
	if err != nil {
		log.Fatalf("Writing quality report: %v", err)
	}
	log.Printf("saved quality analysis to %s", path)

	logMetrics()
	cleanupReports(cfg)
}

// environment bundles the wired-up collaborators for one command.
type environment struct {
	scanner *scan.Scanner
	writer  *report.Writer
	close   func()
}

func mustBuildEnv(ctx context.Context, cfg *config.Config, providerName string) *environment {
	prov := mustBuildProvider(cfg, providerName)

	runner, closeRunner := mustBuildRunner(ctx, cfg)

	cache, err := contentcache.New(prov, cfg.Scan.CacheSize)
	if err != nil {
		log.Fatalf("Failed to create content cache: %v", err)
	}

	writer, err := report.NewWriter(cfg.Output.Dir)
	if err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	diag, err := diaglog.New(cfg.Output.Dir)
	if err != nil {
		log.Fatalf("Failed to create diagnostic log: %v", err)
	}

	a := analyzer.New(runner, analyzer.Config{
		CompareTimeout: time.Duration(cfg.Model.CompareTimeoutSeconds) * time.Second,
		QualityTimeout: time.Duration(cfg.Model.QualityTimeoutSeconds) * time.Second,
		TruncateLimit:  cfg.Scan.TruncateLimit,
	}, diag)

	scanner := scan.New(prov, cache, a, scan.Config{
		MaxForks: cfg.Scan.MaxForks,
		MaxFiles: cfg.Scan.MaxFiles,
		Workers:  cfg.Scan.Workers,
	})

	return &environment{scanner: scanner, writer: writer, close: closeRunner}
}

func mustBuildProvider(cfg *config.Config, name string) provider.Provider {
	switch name {
	case "github":
		return ghprovider.New(cfg.Providers.GitHub.Token)
	case "gitlab":
		return glprovider.New(cfg.Providers.GitLab.Token)
	default:
		log.Fatalf("Unknown provider %q (want github or gitlab)", name)
		return nil
	}
}

func mustBuildRunner(ctx context.Context, cfg *config.Config) (model.Runner, func()) {
	switch cfg.Model.Runtime {
	case "", "local":
		runner, err := model.NewExecRunner(cfg.Model.Argv())
		if err != nil {
			log.Fatalf("Failed to create model runner: %v", err)
		}
		return runner, func() {}
	case "docker":
		runner, err := model.NewDockerRunner(ctx, cfg.Model.Image, cfg.Model.Argv())
		if err != nil {
			log.Fatalf("Failed to create docker model runner: %v", err)
		}
		return runner, func() { runner.Close() }
	default:
		log.Fatalf("Unknown model runtime %q (want local or docker)", cfg.Model.Runtime)
		return nil, nil
	}
}

func mustLoadConfig(configPath, envFile string) *config.Config {
	// Load .env file if specified or exists
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			log.Printf("Warning: could not load env file %s: %v", envFile, err)
		}
	} else {
		// Try default locations
		godotenv.Load(".env")
		godotenv.Load("/etc/forklens/forklens.env")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func mustSplitRepo(repoName string) (owner, repo string) {
	parts := strings.SplitN(repoName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		log.Fatalf("Invalid -repo %q, want owner/name", repoName)
	}
	return parts[0], parts[1]
}

func logMetrics() {
	snap := metrics.Snapshot()
	log.Printf("comparisons: %d run, %d failed (%d timed out); cache: %d hits, %d misses",
		snap.ComparisonsRun, snap.ComparisonsFailed, snap.ComparisonsTimedOut,
		snap.CacheHits, snap.CacheMisses)
}

func cleanupReports(cfg *config.Config) {
	deleted, err := report.NewCleaner(cfg.Output.Dir, cfg.Output.RetentionDays).Cleanup()
	if err != nil {
		log.Printf("Warning: report cleanup: %v", err)
	}
	if deleted > 0 {
		log.Printf("removed %d expired report files", deleted)
	}
}
