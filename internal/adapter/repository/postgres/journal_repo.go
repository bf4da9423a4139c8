package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/nusabooks/nusabooks/internal/domain"
	"github.com/nusabooks/nusabooks/internal/usecase"
)

// JournalRepository implements usecase.JournalRepository.
type JournalRepository struct {
	pool *pgxpool.Pool
}

// NewJournalRepository creates a new JournalRepository.
func NewJournalRepository(pool *pgxpool.Pool) *JournalRepository {
	return &JournalRepository{pool: pool}
}

// CreateJournal persists a draft journal with all of its lines inside the
// caller's transaction. The group balance invariant is re-checked here as a
// last line of defense before anything hits storage.
func (r *JournalRepository) CreateJournal(ctx context.Context, tx usecase.Transaction, journal *domain.Journal) error {
	if err := journal.Validate(); err != nil {
		return err
	}

	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx,
		`INSERT INTO journals (id, date, description, status, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		journal.ID,
		timeToPgDate(journal.Date),
		journal.Description,
		journal.Status,
		timeToPgTimestamptz(journal.CreatedAt),
	)
	if err != nil {
		return err
	}

	for _, line := range journal.Lines {
		_, err := pgxTx.Exec(ctx,
			`INSERT INTO entry_lines (id, journal_id, account_id, debit, credit, description, line_no, date, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			line.ID,
			journal.ID,
			line.AccountID,
			decimalToNumeric(line.Debit),
			decimalToNumeric(line.Credit),
			line.Description,
			line.LineNo,
			timeToPgDate(line.Date),
			timeToPgTimestamptz(line.CreatedAt),
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// MarkPosted flips a draft journal to posted inside the caller's
// transaction.
func (r *JournalRepository) MarkPosted(ctx context.Context, tx usecase.Transaction, journalID string, postedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx,
		`UPDATE journals SET status = $1, posted_at = $2 WHERE id = $3 AND status = $4`,
		domain.JournalPosted, timeToPgTimestamptz(postedAt), journalID, domain.JournalDraft)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrJournalNotDraft
	}

	return nil
}

// GetByID retrieves a journal with its lines.
func (r *JournalRepository) GetByID(ctx context.Context, id string) (*domain.Journal, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, date, description, status, created_at, posted_at
		 FROM journals WHERE id = $1`, id)

	var j domain.Journal
	err := row.Scan(&j.ID, &j.Date, &j.Description, &j.Status, &j.CreatedAt, &j.PostedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrJournalNotFound
		}

		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, journal_id, account_id, debit, credit, description, line_no, date, created_at
		 FROM entry_lines WHERE journal_id = $1 ORDER BY line_no`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		line, err := scanEntryLine(rows)
		if err != nil {
			return nil, err
		}

		j.Lines = append(j.Lines, *line)
	}

	return &j, rows.Err()
}

// SumPostedBefore returns total posted debit and credit against the account
// strictly before the cutoff date.
func (r *JournalRepository) SumPostedBefore(ctx context.Context, accountID string, before time.Time) (decimal.Decimal, decimal.Decimal, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
		 FROM entry_lines l
		 JOIN journals j ON j.id = l.journal_id
		 WHERE l.account_id = $1 AND j.status = $2 AND l.date < $3`,
		accountID, domain.JournalPosted, timeToPgDate(before))

	return scanSums(row)
}

// SumPostedInRange returns total posted debit and credit within [start, end].
func (r *JournalRepository) SumPostedInRange(ctx context.Context, accountID string, start, end time.Time) (decimal.Decimal, decimal.Decimal, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
		 FROM entry_lines l
		 JOIN journals j ON j.id = l.journal_id
		 WHERE l.account_id = $1 AND j.status = $2 AND l.date BETWEEN $3 AND $4`,
		accountID, domain.JournalPosted, timeToPgDate(start), timeToPgDate(end))

	return scanSums(row)
}

// ListPostedLines returns posted lines within [start, end], chronologically,
// ties broken by insertion order.
func (r *JournalRepository) ListPostedLines(ctx context.Context, accountID string, start, end time.Time) ([]*domain.EntryLine, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT l.id, l.journal_id, l.account_id, l.debit, l.credit, l.description, l.line_no, l.date, l.created_at
		 FROM entry_lines l
		 JOIN journals j ON j.id = l.journal_id
		 WHERE l.account_id = $1 AND j.status = $2 AND l.date BETWEEN $3 AND $4
		 ORDER BY l.date, l.created_at, l.id`,
		accountID, domain.JournalPosted, timeToPgDate(start), timeToPgDate(end))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []*domain.EntryLine
	for rows.Next() {
		line, err := scanEntryLine(rows)
		if err != nil {
			return nil, err
		}

		lines = append(lines, line)
	}

	return lines, rows.Err()
}

// SumPostedByAccount returns per-account posted totals up to asOf.
func (r *JournalRepository) SumPostedByAccount(ctx context.Context, asOf time.Time) ([]usecase.AccountTotals, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.code, a.name, a.polarity,
		        COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
		 FROM entry_lines l
		 JOIN journals j ON j.id = l.journal_id
		 JOIN accounts a ON a.id = l.account_id
		 WHERE j.status = $1 AND l.date <= $2
		 GROUP BY a.id, a.code, a.name, a.polarity
		 ORDER BY a.code`,
		domain.JournalPosted, timeToPgDate(asOf))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []usecase.AccountTotals
	for rows.Next() {
		var t usecase.AccountTotals
		var debit, credit pgtype.Numeric

		err := rows.Scan(&t.AccountID, &t.Code, &t.Name, &t.Polarity, &debit, &credit)
		if err != nil {
			return nil, err
		}

		t.Debit = numericToDecimal(debit)
		t.Credit = numericToDecimal(credit)
		totals = append(totals, t)
	}

	return totals, rows.Err()
}

func scanEntryLine(row pgx.Row) (*domain.EntryLine, error) {
	var l domain.EntryLine
	var debit, credit pgtype.Numeric

	err := row.Scan(&l.ID, &l.JournalID, &l.AccountID, &debit, &credit, &l.Description, &l.LineNo, &l.Date, &l.CreatedAt)
	if err != nil {
		return nil, err
	}

	l.Debit = numericToDecimal(debit)
	l.Credit = numericToDecimal(credit)

	return &l, nil
}

func scanSums(row pgx.Row) (decimal.Decimal, decimal.Decimal, error) {
	var debit, credit pgtype.Numeric

	if err := row.Scan(&debit, &credit); err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(debit), numericToDecimal(credit), nil
}
