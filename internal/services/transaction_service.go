package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/numera/numera-api/internal/logger"
	"github.com/numera/numera-api/internal/store"
	"github.com/numera/numera-api/internal/types/api/params"
	"github.com/numera/numera-api/internal/types/api/responses"
	"github.com/numera/numera-api/internal/types/business"
	"go.uber.org/zap"
)

// TransactionService records standalone income and expense entries that feed
// report aggregation without an invoice behind them.
type TransactionService struct {
	transactions store.TransactionStore
	taxService   *TaxService
	logger       *zap.Logger
}

// NewTransactionService creates a new transaction service
func NewTransactionService(transactions store.TransactionStore, taxService *TaxService) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		taxService:   taxService,
		logger:       logger.Log,
	}
}

// CreateTransaction records a transaction. For income the owner is the seller;
// for an expense the counterparty is, so input VAT resolves at the rate the
// supplier would charge.
func (s *TransactionService) CreateTransaction(ctx context.Context, p params.TransactionCreateParams) (*responses.TransactionResponse, error) {
	if p.Kind != business.TransactionIncome && p.Kind != business.TransactionExpense {
		return nil, fmt.Errorf("unsupported transaction kind: %s", p.Kind)
	}

	amount, err := business.ParseMoney(p.Amount, p.Currency)
	if err != nil {
		return nil, err
	}

	date := p.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	seller, customer := p.Owner, p.Counterparty
	if p.Kind == business.TransactionExpense {
		seller, customer = p.Counterparty, p.Owner
	}

	treatment, err := s.taxService.ResolveTreatment(ctx, params.ResolveTreatmentParams{
		Seller:         seller,
		Customer:       customer,
		Category:       p.Category,
		IsGoods:        p.IsGoods,
		HasExportProof: p.HasExportProof,
		Date:           date,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve treatment: %w", err)
	}

	tx := business.Transaction{
		ID:           uuid.New(),
		Date:         date,
		Description:  p.Description,
		Amount:       amount,
		Kind:         p.Kind,
		Counterparty: p.Counterparty,
		Treatment:    treatment,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.transactions.CreateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	s.logger.Info("Recorded transaction",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("kind", string(tx.Kind)),
		zap.String("amount", tx.Amount.String()))

	resp := responses.NewTransactionResponse(tx)
	return &resp, nil
}

// ListTransactions lists transactions whose date falls within [from, to]
func (s *TransactionService) ListTransactions(ctx context.Context, from, to time.Time) ([]responses.TransactionResponse, error) {
	txs, err := s.transactions.ListTransactionsByDate(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	out := make([]responses.TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, responses.NewTransactionResponse(tx))
	}
	return out, nil
}
