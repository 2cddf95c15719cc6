package rewrite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"provenance/internal/chunk"
	"provenance/internal/judge"
	"provenance/internal/pipeline"
	"provenance/internal/prompts"
)

// DefaultChunkChars bounds the passage bytes sent per generation call.
const DefaultChunkChars = 4000

// DefaultWorkers bounds concurrent segment rewrites; provider APIs tolerate
// little parallelism.
const DefaultWorkers = 2

var (
	// ErrNoProviders means every provider was absent (missing credentials).
	ErrNoProviders = errors.New("no rewrite providers configured")
	// ErrAllProvidersFailed means every available provider errored.
	ErrAllProvidersFailed = errors.New("all rewrite providers failed")
)

// Logger mirrors the judge package's consumer-side interface.
type Logger interface {
	Log(level, stage, message, detail string)
}

// Result is one finished rewrite.
type Result struct {
	Strategy string `json:"strategy"`
	Output   string `json:"output"`
	Segments int    `json:"segments"`
}

// Rewriter rewrites passages through the first provider that answers, in
// configured order. Long passages are segmented sentence-aware and each
// segment falls back independently.
type Rewriter struct {
	Clients    []judge.Client
	ChunkChars int
	Workers    int
	Logger     Logger
}

// New builds a Rewriter with the default segment budget. logger may be nil.
func New(clients []judge.Client, logger Logger) *Rewriter {
	return &Rewriter{
		Clients:    clients,
		ChunkChars: DefaultChunkChars,
		Workers:    DefaultWorkers,
		Logger:     logger,
	}
}

// Rewrite reworks text per strategy. Unlike detection there is no heuristic
// fallback: with no provider able to answer, the error is the result.
func (r *Rewriter) Rewrite(ctx context.Context, text, strategy string) (Result, error) {
	if !prompts.KnownStrategy(strategy) {
		return Result{}, fmt.Errorf("unknown rewrite strategy %q", strategy)
	}
	segments := chunk.BySentence(text, r.chunkChars())
	if len(segments) == 0 {
		return Result{}, errors.New("no text to rewrite")
	}

	r.log("INFO", "REWRITE", "rewriting text", fmt.Sprintf("strategy=%s segments=%d", strategy, len(segments)))

	parts := make([]string, len(segments))
	errs := pipeline.ForEachSegment(segments, r.workers(), func(seg chunk.Segment) error {
		out, provider, err := r.generate(ctx, prompts.RewritePrompt(strategy, seg.Text))
		if err != nil {
			return fmt.Errorf("segment %d: %w", seg.Index, err)
		}
		r.log("INFO", "REWRITE", "segment rewritten", fmt.Sprintf("segment=%d provider=%s", seg.Index, provider))
		parts[seg.Index] = strings.TrimSpace(out)
		return nil
	})
	if len(errs) > 0 {
		return Result{}, errors.Join(errs...)
	}

	return Result{Strategy: strategy, Output: strings.Join(parts, " "), Segments: len(segments)}, nil
}

// generate tries each provider in order and returns the first non-empty
// completion with the provider's name. Absent providers are skipped without
// counting as failures.
func (r *Rewriter) generate(ctx context.Context, prompt string) (string, string, error) {
	var lastErr error
	for _, client := range r.Clients {
		out, err := client.Generate(ctx, prompt)
		if err == nil {
			if strings.TrimSpace(out) == "" {
				lastErr = fmt.Errorf("%s: empty completion", client.Name())
				continue
			}
			return out, client.Name(), nil
		}
		if judge.KindOf(err) == judge.KindAuthMissing {
			r.log("INFO", "REWRITE", "provider not configured, skipped", fmt.Sprintf("provider=%s", client.Name()))
			continue
		}
		lastErr = err
		r.log("WARN", "REWRITE", "provider failed", fmt.Sprintf("provider=%s error=%v", client.Name(), err))
	}
	if lastErr == nil {
		return "", "", ErrNoProviders
	}
	return "", "", fmt.Errorf("%w: %v", ErrAllProvidersFailed, lastErr)
}

func (r *Rewriter) chunkChars() int {
	if r.ChunkChars > 0 {
		return r.ChunkChars
	}
	return DefaultChunkChars
}

func (r *Rewriter) workers() int {
	if r.Workers > 0 {
		return r.Workers
	}
	return DefaultWorkers
}

func (r *Rewriter) log(level, stage, message, detail string) {
	if r.Logger == nil {
		return
	}
	r.Logger.Log(level, stage, message, detail)
}
