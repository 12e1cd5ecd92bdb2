package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/judgment-assistant/internal/core/domain"
)

// CaseRepository is the metadata half of the case index. A record is reserved before its
// vector is written and becomes visible to readers only once marked indexed.
type CaseRepository struct {
	db *sql.DB
}

func NewCaseRepository(db *sql.DB) *CaseRepository {
	return &CaseRepository{db: db}
}

const caseColumns = `position, document_id, case_id, court, decision_date, judge, petitioners, respondents, sections, outcome, full_text`

// Reserve assigns the next free position. A stale unindexed reservation for the same
// document keeps its position so the vector upsert overwrites the same point.
func (r *CaseRepository) Reserve(ctx context.Context, rec domain.CaseRecord) (int, error) {
	petitioners, respondents, sections, err := marshalLists(rec)
	if err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin reserve tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, positionLockKey); err != nil {
		return 0, fmt.Errorf("acquire position lock: %w", err)
	}

	var (
		position int
		indexed  bool
	)
	err = tx.QueryRowContext(ctx, `SELECT position, indexed FROM case_records WHERE document_id = $1`, rec.DocumentID).
		Scan(&position, &indexed)
	switch {
	case err == nil && indexed:
		return 0, domain.WrapError(domain.ErrInvalidInput, "reserve case", fmt.Errorf("document %s is already indexed", rec.DocumentID))
	case err == nil:
		_, err = tx.ExecContext(ctx, `
UPDATE case_records
SET case_id = $2, court = $3, decision_date = $4, judge = $5, petitioners = $6, respondents = $7,
	sections = $8, outcome = $9, full_text = $10
WHERE position = $1
`, position, rec.CaseID, rec.Court, rec.Date, rec.Judge, petitioners, respondents, sections, rec.Outcome, rec.FullText)
		if err != nil {
			return 0, fmt.Errorf("refresh case reservation: %w", err)
		}
	case errors.Is(err, sql.ErrNoRows):
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position) + 1, 0) FROM case_records`).Scan(&position); err != nil {
			return 0, fmt.Errorf("next case position: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
INSERT INTO case_records (`+caseColumns+`, indexed)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,FALSE)
`, position, rec.DocumentID, rec.CaseID, rec.Court, rec.Date, rec.Judge, petitioners, respondents, sections, rec.Outcome, rec.FullText)
		if err != nil {
			return 0, fmt.Errorf("insert case reservation: %w", err)
		}
	default:
		return 0, fmt.Errorf("lookup case reservation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit reserve tx: %w", err)
	}
	return position, nil
}

func (r *CaseRepository) MarkIndexed(ctx context.Context, position int) error {
	result, err := r.db.ExecContext(ctx, `UPDATE case_records SET indexed = TRUE WHERE position = $1`, position)
	if err != nil {
		return fmt.Errorf("mark case indexed: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark case indexed rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrCaseNotFound, "mark case indexed", fmt.Errorf("position=%d", position))
	}
	return nil
}

// Release drops an unindexed reservation. Indexed records are never released.
func (r *CaseRepository) Release(ctx context.Context, position int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM case_records WHERE position = $1 AND indexed = FALSE`, position); err != nil {
		return fmt.Errorf("release case position: %w", err)
	}
	return nil
}

func (r *CaseRepository) GetByPositions(ctx context.Context, positions []int) (map[int]domain.CaseRecord, error) {
	out := make(map[int]domain.CaseRecord, len(positions))
	if len(positions) == 0 {
		return out, nil
	}

	placeholders := make([]string, len(positions))
	args := make([]any, len(positions))
	for i, p := range positions {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = p
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT `+caseColumns+`
FROM case_records
WHERE indexed = TRUE AND position IN (`+strings.Join(placeholders, ",")+`)
`, args...)
	if err != nil {
		return nil, fmt.Errorf("get cases by position: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		out[rec.Position] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cases: %w", err)
	}
	return out, nil
}

func (r *CaseRepository) GetByDocumentID(ctx context.Context, documentID string) (*domain.CaseRecord, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+caseColumns+`
FROM case_records
WHERE document_id = $1 AND indexed = TRUE
`, documentID)
	rec, err := scanCase(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrCaseNotFound, "get case", fmt.Errorf("document_id=%s", documentID))
		}
		return nil, err
	}
	return &rec, nil
}

func (r *CaseRepository) List(ctx context.Context) ([]domain.CaseRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+caseColumns+`
FROM case_records
WHERE indexed = TRUE
ORDER BY position
`)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	defer rows.Close()

	out := make([]domain.CaseRecord, 0)
	for rows.Next() {
		rec, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cases: %w", err)
	}
	return out, nil
}

func (r *CaseRepository) CountIndexed(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM case_records WHERE indexed = TRUE`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count indexed cases: %w", err)
	}
	return n, nil
}

type caseScanner interface {
	Scan(dest ...any) error
}

func scanCase(row caseScanner) (domain.CaseRecord, error) {
	var rec domain.CaseRecord
	var petitioners, respondents, sections []byte
	err := row.Scan(
		&rec.Position,
		&rec.DocumentID,
		&rec.CaseID,
		&rec.Court,
		&rec.Date,
		&rec.Judge,
		&petitioners,
		&respondents,
		&sections,
		&rec.Outcome,
		&rec.FullText,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CaseRecord{}, err
		}
		return domain.CaseRecord{}, fmt.Errorf("scan case: %w", err)
	}
	for _, field := range []struct {
		raw []byte
		dst *[]string
	}{{petitioners, &rec.Petitioners}, {respondents, &rec.Respondents}, {sections, &rec.Sections}} {
		if len(field.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(field.raw, field.dst); err != nil {
			return domain.CaseRecord{}, fmt.Errorf("unmarshal case list: %w", err)
		}
	}
	return rec, nil
}

func marshalLists(rec domain.CaseRecord) (string, string, string, error) {
	out := make([]string, 3)
	for i, list := range [][]string{rec.Petitioners, rec.Respondents, rec.Sections} {
		if list == nil {
			list = []string{}
		}
		raw, err := json.Marshal(list)
		if err != nil {
			return "", "", "", fmt.Errorf("marshal case list: %w", err)
		}
		out[i] = string(raw)
	}
	return out[0], out[1], out[2], nil
}
