// Package store is the persistence collaborator: invoice, transaction and
// report storage plus the per-report-id exclusive submission lock.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/numera/numera-api/internal/types/business"
)

// ErrNotFound is returned when the requested entity does not exist
var ErrNotFound = errors.New("entity not found")

// InvoiceStore persists invoices
type InvoiceStore interface {
	CreateInvoice(ctx context.Context, invoice business.Invoice) error
	GetInvoice(ctx context.Context, id uuid.UUID) (business.Invoice, error)
	UpdateInvoice(ctx context.Context, invoice business.Invoice) error
	// ListInvoicesByIssueDate returns invoices whose issue date falls within
	// [from, to], inclusive.
	ListInvoicesByIssueDate(ctx context.Context, from, to time.Time) ([]business.Invoice, error)
}

// TransactionStore persists standalone income/expense transactions
type TransactionStore interface {
	CreateTransaction(ctx context.Context, tx business.Transaction) error
	// ListTransactionsByDate returns transactions whose date falls within
	// [from, to], inclusive.
	ListTransactionsByDate(ctx context.Context, from, to time.Time) ([]business.Transaction, error)
}

// ReportStore persists tax reports and serializes submissions per report id
type ReportStore interface {
	CreateReport(ctx context.Context, report business.TaxReport) error
	GetReport(ctx context.Context, id uuid.UUID) (business.TaxReport, error)
	UpdateReport(ctx context.Context, report business.TaxReport) error
	ListReports(ctx context.Context, kind business.ReportKind) ([]business.TaxReport, error)

	// WithSubmissionLock runs fn while holding the exclusive submission lock
	// for the report id. A concurrent holder causes SubmissionInProgressError;
	// the lock is released when fn returns, success or failure.
	WithSubmissionLock(ctx context.Context, id uuid.UUID, fn func(ctx context.Context) error) error
}
