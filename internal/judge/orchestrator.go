package judge

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultJudgeTimeout bounds a single provider call when no timeout is
// configured.
const DefaultJudgeTimeout = 30 * time.Second

// Logger is the consumer-side logging interface; a nil logger disables
// logging.
type Logger interface {
	Log(level, stage, message, detail string)
}

// Outcome summarizes one fan-out. Attempted counts providers that actually
// ran (configured, credential present); Succeeded counts those that returned
// a judgment. Providers without credentials are absent, not failed, and count
// in neither.
type Outcome struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
}

// Orchestrator fans a passage out to every configured client in parallel and
// waits for all of them to settle. A provider failing or timing out never
// blocks or discards another provider's judgment; first-success-wins is
// deliberately not used, because consensus wants every available judgment.
type Orchestrator struct {
	Clients []Client
	Timeout time.Duration
	Logger  Logger
}

func NewOrchestrator(clients []Client, timeout time.Duration, logger Logger) *Orchestrator {
	if timeout <= 0 {
		timeout = DefaultJudgeTimeout
	}
	return &Orchestrator{Clients: clients, Timeout: timeout, Logger: logger}
}

type settled struct {
	index    int
	judgment Judgment
	err      error
}

// Judge submits text to every client concurrently, each call under its own
// timeout derived from ctx so caller-side cancellation reaches in-flight
// requests. Judgments come back in configured client order. Zero successes
// yield an empty slice, never an error; the caller scores on linguistics
// alone.
func (o *Orchestrator) Judge(ctx context.Context, text string) ([]Judgment, Outcome) {
	results := make(chan settled, len(o.Clients))
	var wg sync.WaitGroup

	for i, client := range o.Clients {
		wg.Add(1)
		go func(i int, client Client) {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, o.timeout())
			defer cancel()
			j, err := client.Judge(callCtx, text)
			results <- settled{index: i, judgment: j, err: err}
		}(i, client)
	}
	wg.Wait()
	close(results)

	byIndex := make([]settled, len(o.Clients))
	for r := range results {
		byIndex[r.index] = r
	}

	judgments := make([]Judgment, 0, len(o.Clients))
	var out Outcome
	for i, r := range byIndex {
		name := o.Clients[i].Name()
		switch {
		case r.err == nil:
			out.Attempted++
			out.Succeeded++
			judgments = append(judgments, r.judgment)
			o.log("INFO", "JUDGE", "provider judgment collected",
				fmt.Sprintf("provider=%s model=%s score=%.3f", name, r.judgment.Model, r.judgment.Score))
		case KindOf(r.err) == KindAuthMissing:
			o.log("INFO", "JUDGE", "provider not configured, skipped", "provider="+name)
		default:
			out.Attempted++
			o.log("WARN", "JUDGE", "provider failed",
				fmt.Sprintf("provider=%s error=%v", name, r.err))
		}
	}
	return judgments, out
}

func (o *Orchestrator) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultJudgeTimeout
	}
	return o.Timeout
}

func (o *Orchestrator) log(level, stage, message, detail string) {
	if o.Logger != nil {
		o.Logger.Log(level, stage, message, detail)
	}
}
