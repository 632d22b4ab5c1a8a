package generator

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"caseforge/internal/parser"
	"caseforge/internal/types"
)

// Health is the readiness signal exposed to the health endpoint: whether
// the compliance corpus and embedding encoder initialized, plus a
// diagnostic message when they did not.
type Health struct {
	Ready   bool
	Message string
}

// Service is the boundary consumed by the HTTP layer. It owns the whole
// pipeline: parse, generate per requirement, tag, assemble.
type Service struct {
	gen    *Generator
	health Health
	logger *zap.Logger
}

// NewService creates the generation service.
func NewService(gen *Generator, health Health, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{gen: gen, health: health, logger: logger}
}

// Ready reports whether corpus and encoder initialized successfully.
func (s *Service) Ready() (bool, string) {
	return s.health.Ready, s.health.Message
}

// Generate converts raw requirement text into annotated test cases.
// Per-requirement model calls run concurrently, bounded by the configured
// limit; results are reassembled in requirement order regardless of
// completion order. Requirement-level failures are collected into the
// result, never silently dropped. Only an empty input is call-level
// fatal.
func (s *Service) Generate(ctx context.Context, raw string) (*types.GenerationResult, error) {
	reqs, err := parser.Split(raw)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Starting test case generation", zap.Int("requirements", len(reqs)))

	perReq := make([][]types.TestCase, len(reqs))
	perErr := make([]error, len(reqs))

	sem := semaphore.NewWeighted(int64(s.gen.opts.Concurrency))
	var wg sync.WaitGroup

	for i, req := range reqs {
		if err := sem.Acquire(ctx, 1); err != nil {
			perErr[i] = &ServiceError{RequirementID: req.ID, Err: err}
			continue
		}
		wg.Add(1)
		go func(i int, req types.Requirement) {
			defer wg.Done()
			defer sem.Release(1)
			perReq[i], perErr[i] = s.gen.ForRequirement(ctx, req)
		}(i, req)
	}
	wg.Wait()

	result := &types.GenerationResult{
		TestCases:          []types.TestCase{},
		SourceRequirements: reqs,
	}

	for i, req := range reqs {
		if perErr[i] != nil {
			result.Failures = append(result.Failures, toFailure(req, perErr[i]))
			s.logger.Warn("Requirement failed",
				zap.String("requirement_id", req.ID),
				zap.Error(perErr[i]))
			continue
		}
		result.TestCases = append(result.TestCases, perReq[i]...)
	}
	result.Count = len(result.TestCases)

	s.logger.Info("Generation complete",
		zap.Int("test_cases", result.Count),
		zap.Int("failed_requirements", len(result.Failures)))
	return result, nil
}

func toFailure(req types.Requirement, err error) types.GenerationFailure {
	stage := types.StageGeneration
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		stage = types.StageValidation
	}
	return types.GenerationFailure{
		RequirementID: req.ID,
		Stage:         stage,
		Reason:        err.Error(),
	}
}
