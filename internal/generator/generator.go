// Package generator orchestrates test case generation: it builds a
// structured prompt per requirement, invokes the language model,
// validates and repairs the returned structure, and assigns deterministic
// identifiers. Requirement-level failures are isolated; one bad
// requirement never blocks the others.
package generator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"caseforge/internal/llm"
	"caseforge/internal/tagger"
	"caseforge/internal/types"
)

// Options tunes the orchestrator. Repair and concurrency bounds are
// policy choices, exposed here rather than hardcoded.
type Options struct {
	// Concurrency bounds parallel per-requirement model calls.
	Concurrency int

	// RepairAttempts is how many corrective re-requests are made when
	// the model output fails schema validation.
	RepairAttempts int

	// CasesMin and StepsMin are the minimums asked of the model.
	CasesMin int
	StepsMin int

	// RequestTimeout applies to each individual model invocation.
	RequestTimeout time.Duration
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		Concurrency:    4,
		RepairAttempts: 1,
		CasesMin:       3,
		StepsMin:       3,
		RequestTimeout: 120 * time.Second,
	}
}

func (o Options) withDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	if o.RepairAttempts < 0 {
		o.RepairAttempts = 0
	}
	if o.CasesMin <= 0 {
		o.CasesMin = 3
	}
	if o.StepsMin <= 0 {
		o.StepsMin = 3
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 120 * time.Second
	}
	return o
}

// Generator produces test cases for single requirements. Calls are fully
// independent across requirements; there is no shared mutable state.
type Generator struct {
	client llm.Client
	tagger *tagger.Tagger
	opts   Options
	logger *zap.Logger

	// now is swappable for deterministic tests.
	now func() time.Time
}

// New creates a generator. tg may be nil when compliance tagging is
// disabled entirely.
func New(client llm.Client, tg *tagger.Tagger, opts Options, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		client: client,
		tagger: tg,
		opts:   opts.withDefaults(),
		logger: logger,
		now:    time.Now,
	}
}

// ForRequirement generates the test cases for one requirement. On
// failure it returns either a *ServiceError (model call failed or the
// response was not JSON at all) or a *ValidationError (parseable but not
// coercible into the schema after repair).
func (g *Generator) ForRequirement(ctx context.Context, req types.Requirement) ([]types.TestCase, error) {
	var hints []string
	if g.tagger != nil {
		hints = g.tagger.ContextHints(ctx, req.Text)
	}

	prompt := buildPrompt(req, hints, g.opts.CasesMin, g.opts.StepsMin)

	var (
		env        *rawEnvelope
		lastIssues []string
		malformed  bool
	)

	request := prompt
	for attempt := 0; attempt <= g.opts.RepairAttempts; attempt++ {
		if attempt > 0 {
			g.logger.Info("Requesting repair of model output",
				zap.String("requirement_id", req.ID),
				zap.Int("attempt", attempt),
				zap.Strings("issues", lastIssues))
			request = buildRepairPrompt(prompt, lastIssues)
		}

		response, err := g.complete(ctx, request)
		if err != nil {
			return nil, &ServiceError{RequirementID: req.ID, Err: err}
		}
		if response == "" {
			return nil, &ServiceError{RequirementID: req.ID, Err: fmt.Errorf("empty response from model")}
		}

		var issues []string
		env, issues = decodeEnvelope(response)
		if env == nil {
			lastIssues, malformed = issues, true
			continue
		}

		issues = validateEnvelope(env)
		if len(issues) == 0 {
			cases := convertEnvelope(env, req, g.now().UTC())
			g.tagAll(ctx, cases)
			return cases, nil
		}
		lastIssues, malformed = issues, false
	}

	if malformed {
		return nil, &ServiceError{
			RequirementID: req.ID,
			Err:           fmt.Errorf("malformed response: %s", lastIssues[0]),
		}
	}
	return nil, &ValidationError{RequirementID: req.ID, Issues: lastIssues}
}

// complete runs one model invocation under the per-call timeout.
func (g *Generator) complete(ctx context.Context, request string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.opts.RequestTimeout)
	defer cancel()
	return g.client.CompleteWithSystem(callCtx, systemPrompt, request)
}

// tagAll attaches compliance tags to each test case. Tagging is an
// enrichment; failures are logged, not propagated.
func (g *Generator) tagAll(ctx context.Context, cases []types.TestCase) {
	if g.tagger == nil {
		return
	}
	for i := range cases {
		tags, err := g.tagger.Tag(ctx, &cases[i])
		if err != nil {
			g.logger.Warn("Compliance tagging failed",
				zap.String("test_id", cases[i].TestID),
				zap.Error(err))
			continue
		}
		cases[i].ComplianceTags = tags
	}
}
