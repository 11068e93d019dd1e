// Package validation runs the full pipeline over a skill or a solution and merges
// every stage into one Result.
//
// Per skill the stages run in a fixed order: schema, references, completeness,
// security. A section that fails schema is skipped by every later stage. Skills and
// connectors are independent of one another and are fanned out over a bounded
// worker group; results land in index-addressed slots and are merged in
// declaration order, so the output never depends on scheduling.
package validation

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/canonicalize"
	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/completeness"
	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/connector"
	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/findings"
	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/observability"
	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/policycheck"
	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/references"
	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/schema"
	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/skill"
)

// Options tunes a Validator.
type Options struct {
	// SharedIDNamespace enables the cross-section ID collision check.
	SharedIDNamespace bool
	// Workers bounds the skill and connector fan-out. Values below 1 mean 1.
	Workers int
}

// Result is the outcome of one validation call. It is never partial: every field
// is populated even when whole sections of the input are missing.
type Result struct {
	Valid         bool                                     `json:"valid"`
	ReadyToExport bool                                     `json:"ready_to_export"`
	Errors        findings.List                            `json:"errors"`
	Warnings      findings.List                            `json:"warnings"`
	Completeness  map[string]*completeness.Report          `json:"completeness"`
	Unresolved    map[string]references.Unresolved         `json:"unresolved"`
	Intents       map[string][]references.IntentResolution `json:"intents,omitempty"`
}

// Findings returns errors followed by warnings.
func (r *Result) Findings() findings.List {
	out := make(findings.List, 0, len(r.Errors)+len(r.Warnings))
	out = append(out, r.Errors...)
	return append(out, r.Warnings...)
}

// Digest returns the sha256 digest of the result's canonical JSON form.
func (r *Result) Digest() (string, error) {
	return canonicalize.Digest(r)
}

// Validator runs the pipeline. A zero Validator is not usable; use New.
type Validator struct {
	opts      Options
	logger    *slog.Logger
	telemetry *observability.Provider
}

// New creates a Validator.
func New(opts Options) *Validator {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Validator{
		opts:   opts,
		logger: slog.Default().With("component", "validation"),
	}
}

// WithLogger replaces the validator's logger.
func (v *Validator) WithLogger(l *slog.Logger) *Validator {
	if l != nil {
		v.logger = l.With("component", "validation")
	}
	return v
}

// WithTelemetry attaches an observability provider. A nil provider is allowed.
func (v *Validator) WithTelemetry(p *observability.Provider) *Validator {
	v.telemetry = p
	return v
}

// skillOutcome is everything one skill contributes to a Result.
type skillOutcome struct {
	key          string
	findings     findings.List
	completeness *completeness.Report
	references   *references.Report
}

// ValidateSkill validates a standalone skill document.
func (v *Validator) ValidateSkill(ctx context.Context, doc *skill.Document) *Result {
	if doc == nil {
		doc = skill.Decode(nil)
	}
	key := skill.Or(doc.ID, "skill")
	ctx, done := v.telemetry.TrackOperation(ctx, "validate.skill", attribute.String("skill", key))
	defer done(nil)

	out := v.skill(ctx, doc, key)
	res := newResult()
	res.add(out)
	res.finish()

	v.telemetry.RecordFindings(ctx, res.Findings(), attribute.String("kind", "skill"))
	v.logger.InfoContext(ctx, "skill validated",
		"skill", key,
		"valid", res.Valid,
		"ready_to_export", res.ReadyToExport,
		"errors", len(res.Errors),
		"warnings", len(res.Warnings),
	)
	return res.Result
}

// ValidateSolution validates every skill of sol, every connector registered in
// cctx, and the solution-level wiring between them. cctx may be nil.
func (v *Validator) ValidateSolution(ctx context.Context, sol *skill.Solution, cctx *connector.Context) *Result {
	if sol == nil {
		sol = skill.DecodeSolution(nil)
	}
	ctx, done := v.telemetry.TrackOperation(ctx, "validate.solution",
		attribute.String("solution", skill.Or(sol.ID, "")),
		attribute.Int("skills", len(sol.Skills)),
	)
	defer done(nil)

	keys := skillKeys(sol.Skills)
	skills := make([]skillOutcome, len(sol.Skills))
	v.fanOut(len(sol.Skills), func(i int) {
		skills[i] = v.skill(ctx, sol.Skills[i], keys[i])
	})

	connectors := v.connectors(ctx, cctx)

	res := newResult()
	if len(skills) == 0 {
		res.ready = false
	}
	for _, out := range skills {
		res.add(out)
	}
	for _, l := range connectors {
		res.all = append(res.all, l...)
	}

	envelope := schema.ValidateSolution(sol.Raw)
	res.all = append(res.all, envelope...)
	if cctx != nil && cctx.Raw != nil {
		res.all = append(res.all, schema.ValidateContext(cctx.Raw)...)
	}
	res.all = append(res.all, checkSolution(sol, keys, cctx, schema.FailedSections(envelope))...)
	res.finish()

	v.telemetry.RecordFindings(ctx, res.Findings(), attribute.String("kind", "solution"))
	v.logger.InfoContext(ctx, "solution validated",
		"solution", skill.Or(sol.ID, ""),
		"skills", len(sol.Skills),
		"connectors", len(connectors),
		"valid", res.Valid,
		"ready_to_export", res.ReadyToExport,
		"errors", len(res.Errors),
		"warnings", len(res.Warnings),
	)
	return res.Result
}

// ValidateConnectors runs the connector stage alone: the context schema, the
// static analysis of every registered connector and the duplicate id check.
func (v *Validator) ValidateConnectors(ctx context.Context, cctx *connector.Context) *Result {
	ctx, done := v.telemetry.TrackOperation(ctx, "validate.connectors")
	defer done(nil)

	res := newResult()
	if cctx != nil && cctx.Raw != nil {
		res.all = append(res.all, schema.ValidateContext(cctx.Raw)...)
	}
	for _, l := range v.connectors(ctx, cctx) {
		res.all = append(res.all, l...)
	}
	res.all = append(res.all, duplicateConnectors(cctx)...)
	res.finish()

	v.telemetry.RecordFindings(ctx, res.Findings(), attribute.String("kind", "connector"))
	v.logger.InfoContext(ctx, "connectors validated",
		"valid", res.Valid,
		"errors", len(res.Errors),
		"warnings", len(res.Warnings),
	)
	return res.Result
}

// skill runs the per-skill stages in order and tags every finding with key.
func (v *Validator) skill(ctx context.Context, doc *skill.Document, key string) skillOutcome {
	_, done := v.telemetry.TrackOperation(ctx, "validate.skill.stages", attribute.String("skill", key))
	defer done(nil)

	schemaFindings := schema.ValidateSkill(doc.Raw)
	failed := schema.FailedSections(schemaFindings)

	refs := references.Resolve(doc, failed, references.Options{SharedIDNamespace: v.opts.SharedIDNamespace})

	prior := make(findings.List, 0, len(schemaFindings)+len(refs.Findings))
	prior = append(prior, schemaFindings...)
	prior = append(prior, refs.Findings...)

	comp := completeness.Check(doc, failed, prior)
	security := policycheck.ValidateSecurity(doc, failed)

	all := make(findings.List, 0, len(prior)+len(comp.Findings)+len(security))
	all = append(all, prior...)
	all = append(all, comp.Findings...)
	all = append(all, security...)

	v.logger.DebugContext(ctx, "skill stages complete",
		"skill", key,
		"failed_sections", len(failed),
		"findings", len(all),
	)
	return skillOutcome{key: key, findings: all.Tag(key), completeness: comp, references: refs}
}

// connectors analyzes every registered connector against its uploaded bundle.
// The result is indexed like cctx.Connectors.
func (v *Validator) connectors(ctx context.Context, cctx *connector.Context) []findings.List {
	if cctx == nil {
		return nil
	}
	out := make([]findings.List, len(cctx.Connectors))
	v.fanOut(len(cctx.Connectors), func(i int) {
		cfg := cctx.Connectors[i]
		files := cctx.Files(cfg.ID)
		_, done := v.telemetry.TrackOperation(ctx, "validate.connector", attribute.String("connector", cfg.ID))
		out[i] = connector.AnalyzeConnector(cfg, files)
		done(nil)
		v.logger.DebugContext(ctx, "connector analyzed",
			"connector", cfg.ID,
			"files", len(files),
			"findings", len(out[i]),
		)
	})
	return out
}

// fanOut calls fn for every index in [0, n) on at most Workers goroutines.
func (v *Validator) fanOut(n int, fn func(i int)) {
	var g errgroup.Group
	g.SetLimit(v.opts.Workers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			fn(i)
			return nil
		})
	}
	_ = g.Wait()
}

// skillKeys names each skill by its id. A skill without an id, or whose id was
// already taken by an earlier skill, is named by its position.
func skillKeys(docs []*skill.Document) []string {
	keys := make([]string, len(docs))
	used := make(map[string]bool, len(docs))
	for i, d := range docs {
		key, ok := d.ID.Get()
		if !ok || key == "" || used[key] {
			key = fmt.Sprintf("skills[%d]", d.Index)
		}
		used[key] = true
		keys[i] = key
	}
	return keys
}

type resultBuilder struct {
	*Result
	all   findings.List
	ready bool
}

func newResult() *resultBuilder {
	return &resultBuilder{
		Result: &Result{
			Completeness: map[string]*completeness.Report{},
			Unresolved:   map[string]references.Unresolved{},
			Intents:      map[string][]references.IntentResolution{},
		},
		ready: true,
	}
}

func (b *resultBuilder) add(out skillOutcome) {
	b.all = append(b.all, out.findings...)
	b.Completeness[out.key] = out.completeness
	b.Unresolved[out.key] = out.references.Unresolved
	if len(out.references.Intents) > 0 {
		b.Intents[out.key] = out.references.Intents
	}
	if !out.completeness.ReadyToExport {
		b.ready = false
	}
}

func (b *resultBuilder) finish() {
	b.Errors = b.all.Errors()
	b.Warnings = b.all.Warnings()
	b.Valid = len(b.Errors) == 0
	b.ReadyToExport = b.Valid && b.ready
}
