package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/judgment-assistant/internal/core/domain"
)

type CaseRepository struct {
	db *sql.DB
}

func NewCaseRepository(db *sql.DB) *CaseRepository {
	return &CaseRepository{db: db}
}

const caseColumns = `position, document_id, case_id, court, decision_date, judge, petitioners, respondents, sections, outcome, full_text`

func (r *CaseRepository) Reserve(ctx context.Context, rec domain.CaseRecord) (int, error) {
	lists, err := encodeLists(rec)
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

	var (
		position int
		indexed  bool
	)
	err = tx.QueryRowContext(ctx, `SELECT position, indexed FROM case_records WHERE document_id = ?`, rec.DocumentID).
		Scan(&position, &indexed)
	switch {
	case err == nil && indexed:
		return 0, domain.WrapError(domain.ErrInvalidInput, "reserve case", fmt.Errorf("document %s is already indexed", rec.DocumentID))
	case err == nil:
		_, err = tx.ExecContext(ctx, `
UPDATE case_records
SET case_id = ?, court = ?, decision_date = ?, judge = ?, petitioners = ?, respondents = ?, sections = ?, outcome = ?, full_text = ?
WHERE position = ?`,
			rec.CaseID, rec.Court, rec.Date, rec.Judge, lists[0], lists[1], lists[2], rec.Outcome, rec.FullText, position)
		if err != nil {
			return 0, fmt.Errorf("refresh case reservation: %w", err)
		}
	case errors.Is(err, sql.ErrNoRows):
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position) + 1, 0) FROM case_records`).Scan(&position); err != nil {
			return 0, fmt.Errorf("next case position: %w", err)
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO case_records (`+caseColumns+`, indexed) VALUES (?,?,?,?,?,?,?,?,?,?,?,0)`,
			position, rec.DocumentID, rec.CaseID, rec.Court, rec.Date, rec.Judge, lists[0], lists[1], lists[2], rec.Outcome, rec.FullText)
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
	result, err := r.db.ExecContext(ctx, `UPDATE case_records SET indexed = 1 WHERE position = ?`, position)
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

func (r *CaseRepository) Release(ctx context.Context, position int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM case_records WHERE position = ? AND indexed = 0`, position); err != nil {
		return fmt.Errorf("release case position: %w", err)
	}
	return nil
}

func (r *CaseRepository) GetByPositions(ctx context.Context, positions []int) (map[int]domain.CaseRecord, error) {
	out := make(map[int]domain.CaseRecord, len(positions))
	if len(positions) == 0 {
		return out, nil
	}
	args := make([]any, len(positions))
	for i, p := range positions {
		args[i] = p
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(positions)), ",")
	records, err := r.query(ctx, `SELECT `+caseColumns+` FROM case_records WHERE indexed = 1 AND position IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		out[rec.Position] = rec
	}
	return out, nil
}

func (r *CaseRepository) GetByDocumentID(ctx context.Context, documentID string) (*domain.CaseRecord, error) {
	records, err := r.query(ctx, `SELECT `+caseColumns+` FROM case_records WHERE document_id = ? AND indexed = 1`, documentID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, domain.WrapError(domain.ErrCaseNotFound, "get case", fmt.Errorf("document_id=%s", documentID))
	}
	return &records[0], nil
}

func (r *CaseRepository) List(ctx context.Context) ([]domain.CaseRecord, error) {
	return r.query(ctx, `SELECT `+caseColumns+` FROM case_records WHERE indexed = 1 ORDER BY position`)
}

func (r *CaseRepository) CountIndexed(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM case_records WHERE indexed = 1`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count indexed cases: %w", err)
	}
	return n, nil
}

func (r *CaseRepository) query(ctx context.Context, query string, args ...any) ([]domain.CaseRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query cases: %w", err)
	}
	defer rows.Close()

	out := make([]domain.CaseRecord, 0)
	for rows.Next() {
		var rec domain.CaseRecord
		var lists [3]string
		if err := rows.Scan(&rec.Position, &rec.DocumentID, &rec.CaseID, &rec.Court, &rec.Date, &rec.Judge,
			&lists[0], &lists[1], &lists[2], &rec.Outcome, &rec.FullText); err != nil {
			return nil, fmt.Errorf("scan case: %w", err)
		}
		for i, dst := range []*[]string{&rec.Petitioners, &rec.Respondents, &rec.Sections} {
			if err := json.Unmarshal([]byte(lists[i]), dst); err != nil {
				return nil, fmt.Errorf("unmarshal case list: %w", err)
			}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cases: %w", err)
	}
	return out, nil
}

func encodeLists(rec domain.CaseRecord) ([3]string, error) {
	var out [3]string
	for i, list := range [][]string{rec.Petitioners, rec.Respondents, rec.Sections} {
		if list == nil {
			list = []string{}
		}
		raw, err := json.Marshal(list)
		if err != nil {
			return out, fmt.Errorf("marshal case list: %w", err)
		}
		out[i] = string(raw)
	}
	return out, nil
}
