package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/proofworks/proofpipe/internal/proofread"
)

// Store provides persistence for proofread runs.
type Store struct {
	db *sql.DB
}

// NewStore creates a store for run persistence.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// RunRecord is one persisted pipeline run.
type RunRecord struct {
	RunID          string
	CreatedAt      string
	ArticleHash    string
	Attempt        int
	OverallScore   int
	Passed         bool
	Recommendation string
	ReportJSON     string
	ReportMD       string
}

// HashArticle derives the stable article key used to link attempts.
func HashArticle(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// SaveRun persists one completed pipeline run and returns its generated id.
func (s *Store) SaveRun(ctx context.Context, articleHash string, attempt int, report proofread.IntegrationResult) (string, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}

	runID := uuid.NewString()
	createdAt := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.db.ExecContext(ctx, `INSERT INTO runs(run_id, created_at, article_hash, attempt, overall_score, passed, recommendation, report_json, report_md)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, createdAt, articleHash, attempt, report.OverallScore, report.Passed, string(report.Recommendation), string(reportJSON), report.DetailedReport); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return runID, nil
}

// LatestAttempt returns the newest attempt number and score recorded for an
// article, or (0, nil) when the article has never been proofread.
func (s *Store) LatestAttempt(ctx context.Context, articleHash string) (int, *int, error) {
	row := s.db.QueryRowContext(ctx, `SELECT attempt, overall_score FROM runs
		WHERE article_hash = ? ORDER BY attempt DESC, created_at DESC LIMIT 1`, articleHash)

	var attempt, score int
	if err := row.Scan(&attempt, &score); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil, nil
		}
		return 0, nil, fmt.Errorf("query latest attempt: %w", err)
	}
	return attempt, &score, nil
}

// GetRun loads one run by id.
func (s *Store) GetRun(ctx context.Context, runID string) (RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT run_id, created_at, article_hash, attempt, overall_score, passed, recommendation, report_json, report_md
		FROM runs WHERE run_id = ?`, runID)
	var rec RunRecord
	if err := row.Scan(&rec.RunID, &rec.CreatedAt, &rec.ArticleHash, &rec.Attempt, &rec.OverallScore, &rec.Passed, &rec.Recommendation, &rec.ReportJSON, &rec.ReportMD); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, fmt.Errorf("run %s not found", runID)
		}
		return RunRecord{}, fmt.Errorf("query run: %w", err)
	}
	return rec, nil
}

// ListRuns returns all runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT run_id, created_at, article_hash, attempt, overall_score, passed, recommendation, report_json, report_md
		FROM runs ORDER BY created_at DESC, run_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var recs []RunRecord
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(&rec.RunID, &rec.CreatedAt, &rec.ArticleHash, &rec.Attempt, &rec.OverallScore, &rec.Passed, &rec.Recommendation, &rec.ReportJSON, &rec.ReportMD); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return recs, nil
}
