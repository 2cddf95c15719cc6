package detect

import (
	"context"
	"errors"
	"fmt"
	"time"

	"provenance/internal/config"
	"provenance/internal/consensus"
	"provenance/internal/judge"
	"provenance/internal/stylometry"
)

// ErrTextTooLong is the defensive guard against oversized input. It is the
// only error Detect returns; provider outages degrade the result instead.
var ErrTextTooLong = errors.New("text exceeds configured length limit")

// strongIndicator is the sub-score at or above which a linguistic indicator
// earns its own reasoning line.
const strongIndicator = 0.7

// Result is the full verdict for one passage. Confidence is the blended
// consensus score in [0,1]; Reasoning carries judge rationale first, then
// the strong linguistic indicators.
type Result struct {
	IsAIGenerated  bool                           `json:"is_ai_generated"`
	Confidence     float64                        `json:"confidence"`
	Reasoning      []string                       `json:"reasoning"`
	Indicators     map[string]consensus.Indicator `json:"indicators"`
	ModelConsensus string                         `json:"model_consensus"`
	Timestamp      time.Time                      `json:"timestamp"`
}

// ResultStore persists finished results. Persistence is best effort; a
// failing store is logged and never surfaces to the caller.
type ResultStore interface {
	Save(ctx context.Context, r Result) error
}

// Orchestrator settles every judge and reports how many were attempted.
type Orchestrator interface {
	Judge(ctx context.Context, text string) ([]judge.Judgment, judge.Outcome)
}

// Logger mirrors the judge package's consumer-side interface.
type Logger interface {
	Log(level, stage, message, detail string)
}

// Service runs the detection pipeline: linguistic feature extraction in
// parallel with the provider fan-out, then consensus scoring.
type Service struct {
	cfg    config.Config
	judges Orchestrator
	store  ResultStore
	logger Logger
}

// NewService wires the pipeline. store and logger may be nil.
func NewService(cfg config.Config, judges Orchestrator, store ResultStore, logger Logger) *Service {
	return &Service{cfg: cfg, judges: judges, store: store, logger: logger}
}

// Detect analyzes one passage end to end.
func (s *Service) Detect(ctx context.Context, text string) (Result, error) {
	if s.cfg.MaxTextLen > 0 && len(text) > s.cfg.MaxTextLen {
		return Result{}, fmt.Errorf("%w: %d chars over limit %d", ErrTextTooLong, len(text), s.cfg.MaxTextLen)
	}

	s.log("INFO", "DETECT", "extracting linguistic features", fmt.Sprintf("chars=%d", len(text)))

	type fanout struct {
		judgments []judge.Judgment
		outcome   judge.Outcome
	}
	settled := make(chan fanout, 1)
	go func() {
		judgments, outcome := s.judges.Judge(ctx, text)
		settled <- fanout{judgments: judgments, outcome: outcome}
	}()

	metrics := stylometry.Extract(text)
	s.log("INFO", "DETECT", "awaiting provider judgments", fmt.Sprintf("words=%d sentences=%d", metrics.WordCount, metrics.SentenceCount))

	fo := <-settled
	s.log("INFO", "DETECT", "scoring consensus", fmt.Sprintf("judges=%d/%d", fo.outcome.Succeeded, fo.outcome.Attempted))

	score := consensus.Blend(fo.judgments, metrics)
	indicators := consensus.BuildIndicators(metrics)

	result := Result{
		IsAIGenerated:  consensus.IsAIGenerated(score, s.cfg.AIThreshold),
		Confidence:     score,
		Reasoning:      composeReasoning(fo.judgments, indicators),
		Indicators:     indicators,
		ModelConsensus: consensusLabel(fo.outcome),
		Timestamp:      time.Now().UTC(),
	}
	s.log("INFO", "DETECT", "detection done", fmt.Sprintf("confidence=%.3f ai=%t", result.Confidence, result.IsAIGenerated))

	s.persist(ctx, result)
	return result, nil
}

// composeReasoning orders the explanation: each judge's own lines prefixed
// with its provider name, then every strong linguistic indicator in the
// fixed presentation order.
func composeReasoning(judgments []judge.Judgment, indicators map[string]consensus.Indicator) []string {
	lines := make([]string, 0, len(judgments)*2+len(indicators))
	for _, j := range judgments {
		for _, r := range j.Reasoning {
			lines = append(lines, j.Provider+": "+r)
		}
	}
	for _, name := range consensus.IndicatorNames() {
		ind := indicators[name]
		if ind.Score >= strongIndicator {
			lines = append(lines, fmt.Sprintf("%s %.2f: %s", name, ind.Score, ind.Description))
		}
	}
	return lines
}

func consensusLabel(out judge.Outcome) string {
	if out.Succeeded == 0 {
		return "no judges available, linguistic analysis only"
	}
	return fmt.Sprintf("%d of %d judges responded", out.Succeeded, out.Attempted)
}

func (s *Service) persist(ctx context.Context, r Result) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(ctx, r); err != nil {
		s.log("WARN", "STORE", "result persistence failed", err.Error())
	}
}

func (s *Service) log(level, stage, message, detail string) {
	if s.logger == nil {
		return
	}
	s.logger.Log(level, stage, message, detail)
}
