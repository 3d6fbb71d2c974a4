// Package journal buffers assessment answers in a local sqlite database.
//
// The original client threw away locally collected answers whenever a 401
// forced a re-login mid-assessment. Here every answer is journaled before
// it is submitted and marked synced once the backend accepts it, so an
// evicted session can re-authenticate and replay what the server never
// received. Journal failures are deliberately non-fatal to the flow.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS answers (
	run_id      TEXT    NOT NULL,
	child_id    INTEGER NOT NULL,
	question_id INTEGER NOT NULL,
	idx         INTEGER NOT NULL,
	answer      TEXT    NOT NULL,
	synced      INTEGER NOT NULL DEFAULT 0,
	recorded_at INTEGER NOT NULL,
	PRIMARY KEY (run_id, question_id)
);
CREATE INDEX IF NOT EXISTS answers_child ON answers (child_id, synced);
`

// Entry is one journaled answer.
type Entry struct {
	RunID      string
	ChildID    int
	QuestionID int
	Index      int
	Answer     string
	Synced     bool
}

// Journal is a local write-ahead record of assessment answers.
type Journal struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal database at path.
func Open(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// OpenInMemory opens a throwaway journal, used in tests and as the
// fallback when the state directory is unavailable.
func OpenInMemory() (*Journal, error) {
	return Open(":memory:")
}

// Close releases the database handle.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record journals an answer before submission. Re-recording the same
// question for a run overwrites the previous answer and resets its synced
// flag.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO answers (run_id, child_id, question_id, idx, answer, synced, recorded_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)
		ON CONFLICT (run_id, question_id) DO UPDATE SET
			answer = excluded.answer,
			idx = excluded.idx,
			synced = 0,
			recorded_at = excluded.recorded_at`,
		e.RunID, e.ChildID, e.QuestionID, e.Index, e.Answer, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("journal record: %w", err)
	}
	return nil
}

// MarkSynced flags an answer as accepted by the backend.
func (j *Journal) MarkSynced(ctx context.Context, runID string, questionID int) error {
	_, err := j.db.ExecContext(ctx,
		`UPDATE answers SET synced = 1 WHERE run_id = ? AND question_id = ?`,
		runID, questionID)
	if err != nil {
		return fmt.Errorf("journal mark synced: %w", err)
	}
	return nil
}

// PendingForChild returns every journaled answer for a child across runs,
// synced rows included, in index order. Synced rows matter here: they say
// how far an interrupted run got, so a later run for the same child can
// replay the unsynced tail and resume at the right question instead of
// starting over.
func (j *Journal) PendingForChild(ctx context.Context, childID int) ([]Entry, error) {
	return j.query(ctx,
		`SELECT run_id, child_id, question_id, idx, answer, synced
		 FROM answers WHERE child_id = ? ORDER BY idx`, childID)
}

// DropRun deletes every journaled answer for a run. Called once a run
// completes or is abandoned for a new child.
func (j *Journal) DropRun(ctx context.Context, runID string) error {
	_, err := j.db.ExecContext(ctx, `DELETE FROM answers WHERE run_id = ?`, runID)
	if err != nil {
		return fmt.Errorf("journal drop run: %w", err)
	}
	return nil
}

func (j *Journal) query(ctx context.Context, q string, arg any) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, fmt.Errorf("journal query: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var synced int
		if err := rows.Scan(&e.RunID, &e.ChildID, &e.QuestionID, &e.Index, &e.Answer, &synced); err != nil {
			return nil, fmt.Errorf("journal scan: %w", err)
		}
		e.Synced = synced != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
