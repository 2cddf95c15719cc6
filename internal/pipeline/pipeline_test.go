package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"provenance/internal/chunk"
)

func TestForEachSegmentVisitsEverySegment(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&b, "Sentence number %d sits right here. ", i)
	}
	segments := chunk.BySentence(b.String(), 120)
	if len(segments) < 2 {
		t.Fatalf("need several segments, got %d", len(segments))
	}

	var mu sync.Mutex
	seen := make(map[int]int)
	errs := ForEachSegment(segments, 4, func(seg chunk.Segment) error {
		mu.Lock()
		seen[seg.Index]++
		mu.Unlock()
		return nil
	})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(seen) != len(segments) {
		t.Fatalf("visited %d segments, want %d", len(seen), len(segments))
	}
	for idx, count := range seen {
		if count != 1 {
			t.Errorf("segment %d visited %d times", idx, count)
		}
	}
}

func TestForEachSegmentCollectsErrors(t *testing.T) {
	segments := chunk.BySentence("One bad. Two fine. Three bad. Four fine.", 12)
	failing := errors.New("segment rejected")

	errs := ForEachSegment(segments, 2, func(seg chunk.Segment) error {
		if strings.Contains(seg.Text, "bad") {
			return failing
		}
		return nil
	})
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(errs), errs)
	}
	for _, err := range errs {
		if !errors.Is(err, failing) {
			t.Errorf("unexpected error: %v", err)
		}
	}
}

func TestForEachSegmentDegenerateInputs(t *testing.T) {
	if errs := ForEachSegment(nil, 2, func(chunk.Segment) error { return nil }); errs != nil {
		t.Errorf("nil segments: got %v", errs)
	}
	segments := chunk.BySentence("One sentence.", 100)
	if errs := ForEachSegment(segments, 2, nil); errs != nil {
		t.Errorf("nil worker: got %v", errs)
	}
	if errs := ForEachSegment(segments, 0, func(chunk.Segment) error { return nil }); len(errs) != 0 {
		t.Errorf("default workers: got %v", errs)
	}
}
