package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/numera/numera-api/internal/types/business"
)

// MemoryStore is an in-process implementation of the store interfaces, used in
// tests and local development. Submission locks are per-report mutexes
// acquired with TryLock so a second submitter fails fast instead of queueing
// behind an in-flight filing.
type MemoryStore struct {
	mu           sync.RWMutex
	invoices     map[uuid.UUID]business.Invoice
	transactions map[uuid.UUID]business.Transaction
	reports      map[uuid.UUID]business.TaxReport

	lockMu          sync.Mutex
	submissionLocks map[uuid.UUID]*sync.Mutex
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		invoices:        make(map[uuid.UUID]business.Invoice),
		transactions:    make(map[uuid.UUID]business.Transaction),
		reports:         make(map[uuid.UUID]business.TaxReport),
		submissionLocks: make(map[uuid.UUID]*sync.Mutex),
	}
}

// CreateInvoice implements InvoiceStore
func (s *MemoryStore) CreateInvoice(ctx context.Context, invoice business.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices[invoice.ID] = invoice
	return nil
}

// GetInvoice implements InvoiceStore
func (s *MemoryStore) GetInvoice(ctx context.Context, id uuid.UUID) (business.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	invoice, ok := s.invoices[id]
	if !ok {
		return business.Invoice{}, ErrNotFound
	}
	return invoice, nil
}

// UpdateInvoice implements InvoiceStore
func (s *MemoryStore) UpdateInvoice(ctx context.Context, invoice business.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invoices[invoice.ID]; !ok {
		return ErrNotFound
	}
	s.invoices[invoice.ID] = invoice
	return nil
}

// ListInvoicesByIssueDate implements InvoiceStore
func (s *MemoryStore) ListInvoicesByIssueDate(ctx context.Context, from, to time.Time) ([]business.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []business.Invoice
	for _, invoice := range s.invoices {
		if invoice.IssueDate.Before(from) || invoice.IssueDate.After(to) {
			continue
		}
		out = append(out, invoice)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssueDate.Before(out[j].IssueDate) })
	return out, nil
}

// CreateTransaction implements TransactionStore
func (s *MemoryStore) CreateTransaction(ctx context.Context, tx business.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions[tx.ID] = tx
	return nil
}

// ListTransactionsByDate implements TransactionStore
func (s *MemoryStore) ListTransactionsByDate(ctx context.Context, from, to time.Time) ([]business.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []business.Transaction
	for _, tx := range s.transactions {
		if tx.Date.Before(from) || tx.Date.After(to) {
			continue
		}
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// CreateReport implements ReportStore
func (s *MemoryStore) CreateReport(ctx context.Context, report business.TaxReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.ID] = report
	return nil
}

// GetReport implements ReportStore
func (s *MemoryStore) GetReport(ctx context.Context, id uuid.UUID) (business.TaxReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.reports[id]
	if !ok {
		return business.TaxReport{}, ErrNotFound
	}
	return report, nil
}

// UpdateReport implements ReportStore
func (s *MemoryStore) UpdateReport(ctx context.Context, report business.TaxReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[report.ID]; !ok {
		return ErrNotFound
	}
	s.reports[report.ID] = report
	return nil
}

// ListReports implements ReportStore
func (s *MemoryStore) ListReports(ctx context.Context, kind business.ReportKind) ([]business.TaxReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []business.TaxReport
	for _, report := range s.reports {
		if report.Kind != kind {
			continue
		}
		out = append(out, report)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PeriodStart.Before(out[j].PeriodStart) })
	return out, nil
}

// WithSubmissionLock implements ReportStore
func (s *MemoryStore) WithSubmissionLock(ctx context.Context, id uuid.UUID, fn func(ctx context.Context) error) error {
	s.lockMu.Lock()
	lock, ok := s.submissionLocks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.submissionLocks[id] = lock
	}
	s.lockMu.Unlock()

	if !lock.TryLock() {
		return &business.SubmissionInProgressError{ReportID: id}
	}
	defer lock.Unlock()

	return fn(ctx)
}
