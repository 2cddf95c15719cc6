package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"provenance/internal/consensus"
	"provenance/internal/detect"
)

const defaultHistoryLimit = 10

// Store keeps one row per detection in a SQLite file. Each operation opens
// its own connection; the CLI is one-shot, so nothing is held open.
type Store struct {
	Path string
}

var _ detect.ResultStore = (*Store)(nil)

func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Save appends one detection row. Reasoning and indicators are stored as
// JSON text.
func (s *Store) Save(ctx context.Context, r detect.Result) error {
	conn, err := Open(s.Path)
	if err != nil {
		return err
	}
	defer conn.Close()

	reasoning, err := json.Marshal(r.Reasoning)
	if err != nil {
		return fmt.Errorf("marshal reasoning: %w", err)
	}
	indicators, err := json.Marshal(r.Indicators)
	if err != nil {
		return fmt.Errorf("marshal indicators: %w", err)
	}

	if _, err := conn.ExecContext(ctx,
		`INSERT INTO detections(id, is_ai_generated, confidence, model_consensus, reasoning, indicators, created_at) VALUES(?,?,?,?,?,?,?)`,
		uuid.NewString(),
		r.IsAIGenerated,
		r.Confidence,
		r.ModelConsensus,
		string(reasoning),
		string(indicators),
		r.Timestamp.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("insert detection: %w", err)
	}
	return nil
}

// Record is one stored detection row.
type Record struct {
	ID             string                         `json:"id"`
	IsAIGenerated  bool                           `json:"is_ai_generated"`
	Confidence     float64                        `json:"confidence"`
	ModelConsensus string                         `json:"model_consensus"`
	Reasoning      []string                       `json:"reasoning"`
	Indicators     map[string]consensus.Indicator `json:"indicators"`
	CreatedAt      time.Time                      `json:"created_at"`
}

// Recent returns the newest rows first, by insertion order.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	conn, err := Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx,
		`SELECT id, is_ai_generated, confidence, model_consensus, reasoning, indicators, created_at FROM detections ORDER BY rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query detections: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0, limit)
	for rows.Next() {
		var (
			rec        Record
			reasoning  string
			indicators string
			createdAt  string
		)
		if err := rows.Scan(&rec.ID, &rec.IsAIGenerated, &rec.Confidence, &rec.ModelConsensus, &reasoning, &indicators, &createdAt); err != nil {
			return nil, fmt.Errorf("scan detection: %w", err)
		}
		if err := json.Unmarshal([]byte(reasoning), &rec.Reasoning); err != nil {
			return nil, fmt.Errorf("decode reasoning: %w", err)
		}
		if err := json.Unmarshal([]byte(indicators), &rec.Indicators); err != nil {
			return nil, fmt.Errorf("decode indicators: %w", err)
		}
		rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate detections: %w", err)
	}
	return records, nil
}
