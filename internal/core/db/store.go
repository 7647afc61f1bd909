package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/solatis/wayfinder/internal/router"
	"github.com/solatis/wayfinder/internal/types"
)

// Store is the persistence layer over Queries. It implements
// router.ProgressStore and additionally persists published documents.
//
// Progress collections (completed, objectives, attempts, scores) are stored
// as JSON columns: they are read and written whole per session, never
// queried by element, so relational decomposition buys nothing here.
type Store struct {
	q *Queries
}

// NewStore creates a store over an open connection.
func NewStore(conn *sqlx.DB) (*Store, error) {
	q, err := LoadQueries(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to load queries: %w", err)
	}
	return &Store{q: q}, nil
}

// progressRow mirrors the progress table.
type progressRow struct {
	SessionID  string `db:"session_id"`
	Completed  string `db:"completed"`
	Objectives string `db:"objectives"`
	Attempts   string `db:"attempts"`
	Scores     string `db:"scores"`
	UpdatedAt  string `db:"updated_at"`
}

// GetProgress loads a session's progress. Returns types.ErrSessionNotFound
// for unknown sessions so callers can distinguish "new learner" from a
// storage failure.
func (s *Store) GetProgress(ctx context.Context, id types.SessionID) (*types.Progress, error) {
	var row progressRow
	if err := s.q.Get(ctx, "get-progress", &row, string(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	prog := &types.Progress{SessionID: types.SessionID(row.SessionID)}

	if err := json.Unmarshal([]byte(row.Completed), &prog.Completed); err != nil {
		return nil, fmt.Errorf("corrupt completed column for session %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(row.Objectives), &prog.ObjectivesMet); err != nil {
		return nil, fmt.Errorf("corrupt objectives column for session %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(row.Attempts), &prog.Attempts); err != nil {
		return nil, fmt.Errorf("corrupt attempts column for session %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(row.Scores), &prog.Scores); err != nil {
		return nil, fmt.Errorf("corrupt scores column for session %s: %w", id, err)
	}

	updatedAt, err := time.Parse(time.RFC3339, row.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("corrupt updated_at column for session %s: %w", id, err)
	}
	prog.UpdatedAt = updatedAt

	return prog, nil
}

// SaveProgress upserts a session's progress. The dispatcher serializes
// writes per session, so last-write-wins upsert semantics are safe.
func (s *Store) SaveProgress(ctx context.Context, p *types.Progress) error {
	completed, err := marshalJSON(p.Completed)
	if err != nil {
		return err
	}
	objectives, err := marshalJSON(p.ObjectivesMet)
	if err != nil {
		return err
	}
	attempts, err := marshalJSON(p.Attempts)
	if err != nil {
		return err
	}
	scores, err := marshalJSON(p.Scores)
	if err != nil {
		return err
	}

	_, err = s.q.Exec(ctx, "upsert-progress",
		string(p.SessionID), completed, objectives, attempts, scores,
		p.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

// RecordDecision appends one routing outcome plus its per-rule error
// diagnostics to the audit log.
func (s *Store) RecordDecision(ctx context.Context, rec router.DecisionRecord) error {
	_, err := s.q.Exec(ctx, "insert-decision",
		string(rec.DecisionID), string(rec.SessionID), rec.ContainerID,
		rec.Matched, rec.Destination, rec.PathwayType, rec.RuleIndex,
		rec.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to record decision: %w", err)
	}

	for _, re := range rec.RuleErrors {
		_, err := s.q.Exec(ctx, "insert-rule-error",
			string(rec.DecisionID), re.RuleIndex, re.Condition, re.Err.Error(),
			rec.CreatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("failed to record rule error: %w", err)
		}
	}
	return nil
}

// DocumentRecord is one published document row.
type DocumentRecord struct {
	DocumentID  string `db:"document_id"`
	Version     int    `db:"version"`
	Title       string `db:"title"`
	Checksum    string `db:"checksum"`
	Source      []byte `db:"source"`
	PublishedAt string `db:"published_at"`
}

// SaveDocument publishes a document version. Publication is append-only:
// (document_id, version) is unique, re-publishing an existing version fails
// at the database rather than silently replacing published content.
func (s *Store) SaveDocument(ctx context.Context, rec DocumentRecord) error {
	_, err := s.q.Exec(ctx, "insert-document",
		rec.DocumentID, rec.Version, rec.Title, rec.Checksum, rec.Source,
		rec.PublishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

// GetDocument loads the latest published version of a document.
func (s *Store) GetDocument(ctx context.Context, documentID string) (*DocumentRecord, error) {
	var rec DocumentRecord
	if err := s.q.Get(ctx, "get-document", &rec, documentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("document not found: %s", documentID)
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &rec, nil
}

// DecisionRow is one audit log entry as stored.
type DecisionRow struct {
	DecisionID  string `db:"decision_id"`
	SessionID   string `db:"session_id"`
	ContainerID string `db:"container_id"`
	Matched     bool   `db:"matched"`
	Destination string `db:"destination"`
	PathwayType string `db:"pathway_type"`
	RuleIndex   int    `db:"rule_index"`
	CreatedAt   string `db:"created_at"`
}

// ListDecisions returns a session's routing history, newest first.
func (s *Store) ListDecisions(ctx context.Context, id types.SessionID, limit int) ([]DecisionRow, error) {
	var rows []DecisionRow
	if err := s.q.Select(ctx, "list-decisions", &rows, string(id), limit); err != nil {
		return nil, fmt.Errorf("failed to list decisions: %w", err)
	}
	return rows, nil
}

// marshalJSON encodes v, normalizing nil slices/maps to their empty JSON
// form so round-trips never surface SQL NULLs.
func marshalJSON(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode progress field: %w", err)
	}
	if string(b) == "null" {
		switch v.(type) {
		case []string:
			return "[]", nil
		default:
			return "{}", nil
		}
	}
	return string(b), nil
}
