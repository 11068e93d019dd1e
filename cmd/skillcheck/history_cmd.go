package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/config"
	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/store"
)

// runHistoryCmd implements `skillcheck history`.
//
// Lists the most recent stored reports, or prints one stored report by digest.
func runHistoryCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("history", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		dbPath string
		limit  int
		digest string
	)
	cmd.StringVar(&dbPath, "db", "", "SQLite history database (default: $SKILLCHECK_HISTORY_DB)")
	cmd.IntVar(&limit, "limit", 20, "Maximum number of reports to list")
	cmd.StringVar(&digest, "digest", "", "Print the stored report with this digest")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if dbPath == "" {
		dbPath = config.Load().HistoryDB
	}
	if dbPath == "" {
		_, _ = fmt.Fprintln(stderr, "Error: --db or SKILLCHECK_HISTORY_DB is required")
		return 2
	}
	if _, err := os.Stat(dbPath); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: history database: %v\n", err)
		return 2
	}

	s, err := store.Open(dbPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	defer func() { _ = s.Close() }()

	ctx := context.Background()

	if digest != "" {
		rec, err := s.GetByDigest(ctx, digest)
		if errors.Is(err, store.ErrNotFound) {
			_, _ = fmt.Fprintf(stderr, "Error: no report with digest %s\n", digest)
			return 1
		}
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
		_, _ = fmt.Fprintln(stdout, string(rec.Report))
		return 0
	}

	records, err := s.List(ctx, limit)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: list reports: %v\n", err)
		return 2
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "CREATED\tKIND\tSUBJECT\tVALID\tERRORS\tWARNINGS\tDIGEST")
	for _, r := range records {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%d\t%d\t%s\n",
			r.CreatedAt.Format(time.RFC3339), r.Kind, r.Subject, r.Valid, r.Errors, r.Warnings, r.Digest)
	}
	_ = tw.Flush()
	return 0
}
