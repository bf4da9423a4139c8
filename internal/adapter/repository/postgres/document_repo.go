package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nusabooks/nusabooks/internal/domain"
)

// DocumentRepository implements usecase.DocumentRepository over the
// outstanding_documents read model.
type DocumentRepository struct {
	pool *pgxpool.Pool
}

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

// ListOutstanding returns documents of the given kind with a positive unpaid
// balance, issued on or before asOf.
func (r *DocumentRepository) ListOutstanding(ctx context.Context, kind domain.DocumentKind, asOf time.Time) ([]*domain.OutstandingDocument, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, kind, contact_id, contact_code, contact_name, number,
		        issue_date, due_date, balance_due
		 FROM outstanding_documents
		 WHERE kind = $1 AND balance_due > 0 AND issue_date <= $2
		 ORDER BY contact_name, due_date`,
		kind, timeToPgDate(asOf))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*domain.OutstandingDocument
	for rows.Next() {
		var d domain.OutstandingDocument
		var balance pgtype.Numeric

		err := rows.Scan(&d.ID, &d.Kind, &d.ContactID, &d.ContactCode, &d.ContactName,
			&d.Number, &d.IssueDate, &d.DueDate, &balance)
		if err != nil {
			return nil, err
		}

		d.BalanceDue = numericToDecimal(balance)
		docs = append(docs, &d)
	}

	return docs, rows.Err()
}
