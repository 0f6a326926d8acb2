package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/numera/numera-api/internal/types/business"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// pgLockNotAvailable is the Postgres error code raised by FOR UPDATE NOWAIT
// when another transaction holds the row lock.
const pgLockNotAvailable = "55P03"

// PostgresStore implements the store interfaces on a pgx connection pool.
// Party, line and snapshot structures are kept as jsonb columns; the
// submission lock is a row lock taken with FOR UPDATE NOWAIT so a concurrent
// submitter fails fast.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresStore creates a store on an existing pool
func NewPostgresStore(pool *pgxpool.Pool, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{pool: pool, logger: logger}
}

// querier is the statement surface shared by pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type submissionTxKey struct{}

// db returns the executor for the given context. Inside WithSubmissionLock the
// context carries the lock transaction, so the callback's reads and writes run
// on the same connection that holds the row lock; an UPDATE on a pool
// connection would wait on that lock and the submission would never finish.
func (s *PostgresStore) db(ctx context.Context) querier {
	if tx, ok := ctx.Value(submissionTxKey{}).(pgx.Tx); ok {
		return tx
	}
	return s.pool
}

// CreateInvoice implements InvoiceStore
func (s *PostgresStore) CreateInvoice(ctx context.Context, invoice business.Invoice) error {
	seller, customer, lines, err := marshalInvoiceParts(invoice)
	if err != nil {
		return err
	}

	_, err = s.db(ctx).Exec(ctx, `
		INSERT INTO invoices (id, seller, customer, lines, issue_date, due_date,
			currency, treatment_kind, treatment_rate_bps, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		invoice.ID, seller, customer, lines, invoice.IssueDate, invoice.DueDate,
		invoice.Currency, invoice.Treatment.Kind, invoice.Treatment.RateBasisPoints,
		invoice.Status, invoice.CreatedAt, invoice.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, "insert invoice")
	}
	return nil
}

// GetInvoice implements InvoiceStore
func (s *PostgresStore) GetInvoice(ctx context.Context, id uuid.UUID) (business.Invoice, error) {
	row := s.db(ctx).QueryRow(ctx, `
		SELECT id, seller, customer, lines, issue_date, due_date,
			currency, treatment_kind, treatment_rate_bps, status, created_at, updated_at
		FROM invoices WHERE id = $1`, id)
	return scanInvoice(row)
}

// UpdateInvoice implements InvoiceStore
func (s *PostgresStore) UpdateInvoice(ctx context.Context, invoice business.Invoice) error {
	seller, customer, lines, err := marshalInvoiceParts(invoice)
	if err != nil {
		return err
	}

	tag, err := s.db(ctx).Exec(ctx, `
		UPDATE invoices
		SET seller = $2, customer = $3, lines = $4, issue_date = $5, due_date = $6,
			currency = $7, treatment_kind = $8, treatment_rate_bps = $9, status = $10,
			updated_at = $11
		WHERE id = $1`,
		invoice.ID, seller, customer, lines, invoice.IssueDate, invoice.DueDate,
		invoice.Currency, invoice.Treatment.Kind, invoice.Treatment.RateBasisPoints,
		invoice.Status, invoice.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, "update invoice")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListInvoicesByIssueDate implements InvoiceStore
func (s *PostgresStore) ListInvoicesByIssueDate(ctx context.Context, from, to time.Time) ([]business.Invoice, error) {
	rows, err := s.db(ctx).Query(ctx, `
		SELECT id, seller, customer, lines, issue_date, due_date,
			currency, treatment_kind, treatment_rate_bps, status, created_at, updated_at
		FROM invoices
		WHERE issue_date >= $1 AND issue_date <= $2
		ORDER BY issue_date`, from, to)
	if err != nil {
		return nil, errors.Wrap(err, "list invoices")
	}
	defer rows.Close()

	var out []business.Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, invoice)
	}
	return out, errors.Wrap(rows.Err(), "list invoices")
}

// CreateTransaction implements TransactionStore
func (s *PostgresStore) CreateTransaction(ctx context.Context, tx business.Transaction) error {
	counterparty, err := json.Marshal(tx.Counterparty)
	if err != nil {
		return errors.Wrap(err, "marshal counterparty")
	}

	_, err = s.db(ctx).Exec(ctx, `
		INSERT INTO transactions (id, date, description, amount_cents, currency, kind,
			counterparty, treatment_kind, treatment_rate_bps, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		tx.ID, tx.Date, tx.Description, tx.Amount.AmountCents, tx.Amount.Currency,
		tx.Kind, counterparty, tx.Treatment.Kind, tx.Treatment.RateBasisPoints, tx.CreatedAt)
	if err != nil {
		return errors.Wrap(err, "insert transaction")
	}
	return nil
}

// ListTransactionsByDate implements TransactionStore
func (s *PostgresStore) ListTransactionsByDate(ctx context.Context, from, to time.Time) ([]business.Transaction, error) {
	rows, err := s.db(ctx).Query(ctx, `
		SELECT id, date, description, amount_cents, currency, kind,
			counterparty, treatment_kind, treatment_rate_bps, created_at
		FROM transactions
		WHERE date >= $1 AND date <= $2
		ORDER BY date`, from, to)
	if err != nil {
		return nil, errors.Wrap(err, "list transactions")
	}
	defer rows.Close()

	var out []business.Transaction
	for rows.Next() {
		var (
			tx           business.Transaction
			counterparty []byte
		)
		if err := rows.Scan(&tx.ID, &tx.Date, &tx.Description, &tx.Amount.AmountCents,
			&tx.Amount.Currency, &tx.Kind, &counterparty, &tx.Treatment.Kind,
			&tx.Treatment.RateBasisPoints, &tx.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan transaction")
		}
		if err := json.Unmarshal(counterparty, &tx.Counterparty); err != nil {
			return nil, errors.Wrap(err, "unmarshal counterparty")
		}
		out = append(out, tx)
	}
	return out, errors.Wrap(rows.Err(), "list transactions")
}

// CreateReport implements ReportStore
func (s *PostgresStore) CreateReport(ctx context.Context, report business.TaxReport) error {
	financial, attempts, err := marshalReportParts(report)
	if err != nil {
		return err
	}

	_, err = s.db(ctx).Exec(ctx, `
		INSERT INTO tax_reports (id, kind, period_start, period_end, due_date, year,
			period_label, currency, status, financial_data, error_message, attempts,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		report.ID, report.Kind, report.PeriodStart, report.PeriodEnd, report.DueDate,
		report.Year, report.PeriodLabel, report.Currency, report.Status,
		financial, report.ErrorMessage, attempts, report.CreatedAt, report.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, "insert report")
	}
	return nil
}

// GetReport implements ReportStore
func (s *PostgresStore) GetReport(ctx context.Context, id uuid.UUID) (business.TaxReport, error) {
	row := s.db(ctx).QueryRow(ctx, `
		SELECT id, kind, period_start, period_end, due_date, year, period_label,
			currency, status, financial_data, error_message, attempts, created_at, updated_at
		FROM tax_reports WHERE id = $1`, id)
	return scanReport(row)
}

// UpdateReport implements ReportStore
func (s *PostgresStore) UpdateReport(ctx context.Context, report business.TaxReport) error {
	financial, attempts, err := marshalReportParts(report)
	if err != nil {
		return err
	}

	tag, err := s.db(ctx).Exec(ctx, `
		UPDATE tax_reports
		SET status = $2, financial_data = $3, error_message = $4, attempts = $5,
			updated_at = $6
		WHERE id = $1`,
		report.ID, report.Status, financial, report.ErrorMessage, attempts, report.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, "update report")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListReports implements ReportStore
func (s *PostgresStore) ListReports(ctx context.Context, kind business.ReportKind) ([]business.TaxReport, error) {
	rows, err := s.db(ctx).Query(ctx, `
		SELECT id, kind, period_start, period_end, due_date, year, period_label,
			currency, status, financial_data, error_message, attempts, created_at, updated_at
		FROM tax_reports WHERE kind = $1
		ORDER BY period_start`, kind)
	if err != nil {
		return nil, errors.Wrap(err, "list reports")
	}
	defer rows.Close()

	var out []business.TaxReport
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, report)
	}
	return out, errors.Wrap(rows.Err(), "list reports")
}

// WithSubmissionLock implements ReportStore. The row lock serializes
// submission per report id across all API instances sharing the database. The
// callback receives a context bound to the lock transaction, so store calls
// made inside it run on the locked connection and commit atomically with the
// lock release.
func (s *PostgresStore) WithSubmissionLock(ctx context.Context, id uuid.UUID, fn func(ctx context.Context) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin submission transaction")
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.logger.Warn("failed to roll back submission transaction",
				zap.String("report_id", id.String()),
				zap.Error(rbErr))
		}
	}()

	var locked uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM tax_reports WHERE id = $1 FOR UPDATE NOWAIT`, id).Scan(&locked)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgLockNotAvailable {
			return &business.SubmissionInProgressError{ReportID: id}
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return errors.Wrap(err, "lock report row")
	}

	if err := fn(context.WithValue(ctx, submissionTxKey{}, tx)); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(ctx), "commit submission transaction")
}

func marshalInvoiceParts(invoice business.Invoice) (seller, customer, lines []byte, err error) {
	if seller, err = json.Marshal(invoice.Seller); err != nil {
		return nil, nil, nil, errors.Wrap(err, "marshal seller")
	}
	if customer, err = json.Marshal(invoice.Customer); err != nil {
		return nil, nil, nil, errors.Wrap(err, "marshal customer")
	}
	if lines, err = json.Marshal(invoice.Lines); err != nil {
		return nil, nil, nil, errors.Wrap(err, "marshal lines")
	}
	return seller, customer, lines, nil
}

func marshalReportParts(report business.TaxReport) (financial, attempts []byte, err error) {
	if report.FinancialData != nil {
		if financial, err = json.Marshal(report.FinancialData); err != nil {
			return nil, nil, errors.Wrap(err, "marshal financial data")
		}
	}
	if attempts, err = json.Marshal(report.Attempts); err != nil {
		return nil, nil, errors.Wrap(err, "marshal attempts")
	}
	return financial, attempts, nil
}

func scanInvoice(row pgx.Row) (business.Invoice, error) {
	var (
		invoice                 business.Invoice
		seller, customer, lines []byte
	)
	err := row.Scan(&invoice.ID, &seller, &customer, &lines, &invoice.IssueDate,
		&invoice.DueDate, &invoice.Currency, &invoice.Treatment.Kind,
		&invoice.Treatment.RateBasisPoints, &invoice.Status,
		&invoice.CreatedAt, &invoice.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return business.Invoice{}, ErrNotFound
		}
		return business.Invoice{}, errors.Wrap(err, "scan invoice")
	}

	if err := json.Unmarshal(seller, &invoice.Seller); err != nil {
		return business.Invoice{}, errors.Wrap(err, "unmarshal seller")
	}
	if err := json.Unmarshal(customer, &invoice.Customer); err != nil {
		return business.Invoice{}, errors.Wrap(err, "unmarshal customer")
	}
	if err := json.Unmarshal(lines, &invoice.Lines); err != nil {
		return business.Invoice{}, errors.Wrap(err, "unmarshal lines")
	}
	return invoice, nil
}

func scanReport(row pgx.Row) (business.TaxReport, error) {
	var (
		report              business.TaxReport
		financial, attempts []byte
	)
	err := row.Scan(&report.ID, &report.Kind, &report.PeriodStart, &report.PeriodEnd,
		&report.DueDate, &report.Year, &report.PeriodLabel, &report.Currency,
		&report.Status, &financial, &report.ErrorMessage, &attempts,
		&report.CreatedAt, &report.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return business.TaxReport{}, ErrNotFound
		}
		return business.TaxReport{}, errors.Wrap(err, "scan report")
	}

	if len(financial) > 0 {
		report.FinancialData = &business.ReportFinancialData{}
		if err := json.Unmarshal(financial, report.FinancialData); err != nil {
			return business.TaxReport{}, errors.Wrap(err, "unmarshal financial data")
		}
	}
	if len(attempts) > 0 {
		if err := json.Unmarshal(attempts, &report.Attempts); err != nil {
			return business.TaxReport{}, errors.Wrap(err, "unmarshal attempts")
		}
	}
	return report, nil
}
