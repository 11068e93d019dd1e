package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/config"
	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/findings"
	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/observability"
	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/validation"
)

// Dispatcher
func main() {
	os.Exit(Run(os.Args, os.Stdout, os.Stderr))
}

// Run is the entrypoint for testing.
//
// Exit codes:
//
//	0 = valid
//	1 = invalid
//	2 = runtime error
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		printUsage(stderr)
		return 2
	}

	switch args[1] {
	case "validate":
		return runValidateCmd(args[2:], stdout, stderr)
	case "solution":
		return runSolutionCmd(args[2:], stdout, stderr)
	case "connector":
		return runConnectorCmd(args[2:], stdout, stderr)
	case "history":
		return runHistoryCmd(args[2:], stdout, stderr)
	case "checks":
		for _, code := range findings.AllCheckCodes() {
			_, _ = fmt.Fprintln(stdout, code)
		}
		return 0
	case "help", "--help", "-h":
		printUsage(stdout)
		return 0
	default:
		_, _ = fmt.Fprintf(stderr, "Unknown command: %s\n", args[1])
		printUsage(stderr)
		return 2
	}
}

// ANSI Colors
const (
	ColorReset  = "\033[0m"
	ColorBold   = "\033[1m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorCyan   = "\033[36m"
	ColorGray   = "\033[37m"
)

func printUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintf(w, "%sskillcheck%s\n", ColorBold+ColorBlue, ColorReset)
	_, _ = fmt.Fprintf(w, "%sValidate skills, solutions and connector bundles before export.%s\n", ColorGray, ColorReset)
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintf(w, "%sUSAGE:%s\n", ColorBold, ColorReset)
	_, _ = fmt.Fprintln(w, "  skillcheck <command> [flags]")
	_, _ = fmt.Fprintln(w, "")

	printSection(w, "VALIDATION")
	printCommand(w, "validate", "Validate one skill (--file, --json, --shared-ids)")
	printCommand(w, "solution", "Validate a solution (--file, --context, --json)")
	printCommand(w, "connector", "Analyze connector bundles (--file, --id, --json)")

	printSection(w, "UTILITIES")
	printCommand(w, "history", "List stored reports (--db, --limit, --digest)")
	printCommand(w, "checks", "List every stable check code")
	printCommand(w, "help", "Show this help")
	_, _ = fmt.Fprintln(w, "")
}

func printSection(w io.Writer, title string) {
	_, _ = fmt.Fprintf(w, "%s%s:%s\n", ColorBold+ColorCyan, title, ColorReset)
}

func printCommand(w io.Writer, name, desc string) {
	_, _ = fmt.Fprintf(w, "  %s%-12s%s %s\n", ColorGreen, name, ColorReset, desc)
}

// runtime is the ambient state shared by the validation commands.
type runtime struct {
	cfg       *config.Config
	logger    *slog.Logger
	telemetry *observability.Provider
}

// setup loads configuration (environment, then the optional YAML file), builds the
// logger and starts telemetry when an OTLP endpoint is configured.
func setup(ctx context.Context, configPath string, stderr io.Writer) (*runtime, error) {
	cfg := config.Load()
	if configPath != "" {
		var err error
		if cfg, err = config.LoadFile(configPath); err != nil {
			return nil, err
		}
	}

	logger := cfg.Logger(stderr)
	slog.SetDefault(logger)

	otel := observability.DefaultConfig()
	otel.Enabled = cfg.OTLPEndpoint != ""
	otel.Insecure = cfg.OTLPInsecure
	if cfg.OTLPEndpoint != "" {
		otel.OTLPEndpoint = cfg.OTLPEndpoint
	}
	telemetry, err := observability.New(ctx, otel)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	return &runtime{cfg: cfg, logger: logger, telemetry: telemetry}, nil
}

func (r *runtime) validator(sharedIDs bool) *validation.Validator {
	return validation.New(validation.Options{
		SharedIDNamespace: sharedIDs || r.cfg.SharedIDNamespace,
		Workers:           r.cfg.Workers,
	}).WithLogger(r.logger).WithTelemetry(r.telemetry)
}

func (r *runtime) close(ctx context.Context) {
	_ = r.telemetry.Shutdown(ctx)
}
