package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/connector"
	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/findings"
	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/skill"
	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/store"
	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/validation"
)

// report is what the validation commands print and store.
type report struct {
	Kind    string `json:"kind"`
	Subject string `json:"subject"`
	Digest  string `json:"digest"`
	*validation.Result
}

// commonFlags are shared by validate, solution and connector.
type commonFlags struct {
	file       string
	configPath string
	dbPath     string
	jsonOutput bool
}

func (c *commonFlags) register(cmd *flag.FlagSet, fileHelp string) {
	cmd.StringVar(&c.file, "file", "", fileHelp)
	cmd.StringVar(&c.configPath, "config", "", "YAML config file overlaying SKILLCHECK_* environment")
	cmd.StringVar(&c.dbPath, "db", "", "SQLite history database (default: $SKILLCHECK_HISTORY_DB)")
	cmd.BoolVar(&c.jsonOutput, "json", false, "Output report as JSON to stdout")
}

// runValidateCmd implements `skillcheck validate`.
func runValidateCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("validate", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		common    commonFlags
		sharedIDs bool
	)
	common.register(cmd, "Path to skill document, JSON or YAML (REQUIRED)")
	cmd.BoolVar(&sharedIDs, "shared-ids", false, "Treat tool, intent, scenario, guardrail and workflow ids as one namespace")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if common.file == "" {
		_, _ = fmt.Fprintln(stderr, "Error: --file is required")
		return 2
	}

	ctx := context.Background()
	rt, err := setup(ctx, common.configPath, stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	defer rt.close(ctx)

	doc, err := skill.LoadFile(common.file)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	res := rt.validator(sharedIDs).ValidateSkill(ctx, doc)
	return rt.emit(ctx, "skill", skill.Or(doc.ID, common.file), res, common, stdout, stderr)
}

// runSolutionCmd implements `skillcheck solution`.
func runSolutionCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("solution", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		common      commonFlags
		contextFile string
		sharedIDs   bool
	)
	common.register(cmd, "Path to solution document, JSON or YAML (REQUIRED)")
	cmd.StringVar(&contextFile, "context", "", "Path to validation context: connectors and mcp_store")
	cmd.BoolVar(&sharedIDs, "shared-ids", false, "Treat tool, intent, scenario, guardrail and workflow ids as one namespace")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if common.file == "" {
		_, _ = fmt.Fprintln(stderr, "Error: --file is required")
		return 2
	}

	ctx := context.Background()
	rt, err := setup(ctx, common.configPath, stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	defer rt.close(ctx)

	sol, err := skill.LoadSolutionFile(common.file)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	var cctx *connector.Context
	if contextFile != "" {
		raw, err := skill.ReadObjectFile(contextFile)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
		cctx = connector.DecodeContext(raw)
	}

	res := rt.validator(sharedIDs).ValidateSolution(ctx, sol, cctx)
	return rt.emit(ctx, "solution", skill.Or(sol.ID, common.file), res, common, stdout, stderr)
}

// runConnectorCmd implements `skillcheck connector`.
func runConnectorCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("connector", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		common commonFlags
		id     string
	)
	common.register(cmd, "Path to validation context: connectors and mcp_store (REQUIRED)")
	cmd.StringVar(&id, "id", "", "Analyze only the connector with this id")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if common.file == "" {
		_, _ = fmt.Fprintln(stderr, "Error: --file is required")
		return 2
	}

	ctx := context.Background()
	rt, err := setup(ctx, common.configPath, stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	defer rt.close(ctx)

	raw, err := skill.ReadObjectFile(common.file)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	cctx := connector.DecodeContext(raw)

	subject := common.file
	if id != "" {
		only := &connector.Context{Store: cctx.Store}
		for _, cfg := range cctx.Connectors {
			if cfg.ID == id {
				only.Connectors = append(only.Connectors, cfg)
			}
		}
		if len(only.Connectors) == 0 {
			_, _ = fmt.Fprintf(stderr, "Error: connector %q is not registered in %s\n", id, common.file)
			return 2
		}
		cctx, subject = only, id
	}

	res := rt.validator(false).ValidateConnectors(ctx, cctx)
	return rt.emit(ctx, "connector", subject, res, common, stdout, stderr)
}

// emit prints the report, records it in the history database when one is
// configured, and maps validity to the exit code.
func (r *runtime) emit(ctx context.Context, kind, subject string, res *validation.Result, common commonFlags, stdout, stderr io.Writer) int {
	digest, err := res.Digest()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: cannot digest report: %v\n", err)
		return 2
	}
	rep := report{Kind: kind, Subject: subject, Digest: digest, Result: res}

	dbPath := common.dbPath
	if dbPath == "" {
		dbPath = r.cfg.HistoryDB
	}
	if dbPath != "" {
		if err := record(ctx, dbPath, rep); err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
		r.logger.DebugContext(ctx, "report recorded", "db", dbPath, "digest", digest)
	}

	if common.jsonOutput {
		data, _ := json.MarshalIndent(rep, "", "  ")
		_, _ = fmt.Fprintln(stdout, string(data))
	} else {
		printReport(stdout, rep)
	}

	if !res.Valid {
		return 1
	}
	return 0
}

func record(ctx context.Context, dbPath string, rep report) error {
	s, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	body, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return s.Store(ctx, &store.Record{
		Kind:     rep.Kind,
		Subject:  rep.Subject,
		Digest:   rep.Digest,
		Valid:    rep.Valid,
		Errors:   len(rep.Errors),
		Warnings: len(rep.Warnings),
		Report:   body,
	})
}

func printReport(w io.Writer, rep report) {
	switch {
	case rep.Valid && rep.ReadyToExport:
		_, _ = fmt.Fprintf(w, "%s✅ %s %s is valid and ready to export%s\n", ColorGreen, rep.Kind, rep.Subject, ColorReset)
	case rep.Valid:
		_, _ = fmt.Fprintf(w, "%s⚠️  %s %s is valid but not ready to export%s\n", ColorYellow, rep.Kind, rep.Subject, ColorReset)
	default:
		_, _ = fmt.Fprintf(w, "%s❌ %s %s is invalid%s\n", ColorRed, rep.Kind, rep.Subject, ColorReset)
	}
	_, _ = fmt.Fprintf(w, "Errors: %d  Warnings: %d\n", len(rep.Errors), len(rep.Warnings))
	printFindings(w, rep.Errors)
	printFindings(w, rep.Warnings)
	_, _ = fmt.Fprintf(w, "Digest: %s\n", rep.Digest)
}

func printFindings(w io.Writer, l findings.List) {
	for _, f := range l {
		_, _ = fmt.Fprintf(w, "  - %s\n", f)
		if f.Fix != "" {
			_, _ = fmt.Fprintf(w, "    fix: %s\n", f.Fix)
		}
	}
}
