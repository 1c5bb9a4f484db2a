package service

import (
	"context"
	"sort"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

type StatisticsService interface {
	SummaryByDivision(ctx context.Context, tenantID uuid.UUID) ([]model.StockSummary, error)
	SummaryByCategory(ctx context.Context, tenantID uuid.UUID) ([]model.StockSummary, error)
	LedgerTotals(ctx context.Context, tenantID uuid.UUID, itemID uint) (*model.LedgerTotals, error)
}

type statisticsService struct {
	itemRepo     repository.InventoryRepository
	incomingRepo repository.IncomingRepository
	outgoingRepo repository.OutgoingRepository
	usageRepo    repository.UsageRepository
}

func NewStatisticsService(
	itemRepo repository.InventoryRepository,
	incomingRepo repository.IncomingRepository,
	outgoingRepo repository.OutgoingRepository,
	usageRepo repository.UsageRepository,
) StatisticsService {
	return &statisticsService{
		itemRepo:     itemRepo,
		incomingRepo: incomingRepo,
		outgoingRepo: outgoingRepo,
		usageRepo:    usageRepo,
	}
}

func (s *statisticsService) summarize(ctx context.Context, tenantID uuid.UUID, keyOf func(model.InventoryItem) string) ([]model.StockSummary, error) {
	items, err := s.itemRepo.ListAll(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]*model.StockSummary)
	for _, item := range items {
		key := keyOf(item)
		summary, ok := byKey[key]
		if !ok {
			summary = &model.StockSummary{Key: key}
			byKey[key] = summary
		}
		summary.ItemCount++
		summary.CarriedOver += item.CarriedOver
		summary.Incoming += item.Incoming
		summary.Outgoing += item.Outgoing
		summary.Usage += item.Usage
		summary.Remaining += item.Remaining
		summary.TeamStock += item.TeamStock()
		summary.TotalStock += item.TotalStock()
	}

	summaries := make([]model.StockSummary, 0, len(byKey))
	for _, summary := range byKey {
		summaries = append(summaries, *summary)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Key < summaries[j].Key })
	return summaries, nil
}

func (s *statisticsService) SummaryByDivision(ctx context.Context, tenantID uuid.UUID) ([]model.StockSummary, error) {
	return s.summarize(ctx, tenantID, func(item model.InventoryItem) string { return item.Division })
}

func (s *statisticsService) SummaryByCategory(ctx context.Context, tenantID uuid.UUID) ([]model.StockSummary, error) {
	return s.summarize(ctx, tenantID, func(item model.InventoryItem) string { return item.Category })
}

// LedgerTotals sums the three ledgers for one item, id-attributed rows plus
// legacy rows matched by identity.
func (s *statisticsService) LedgerTotals(ctx context.Context, tenantID uuid.UUID, itemID uint) (*model.LedgerTotals, error) {
	item, err := s.itemRepo.FindByID(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}
	ident := item.Identity()

	incoming, err := s.incomingRepo.SumMatching(ctx, tenantID, itemID, ident)
	if err != nil {
		return nil, err
	}
	outgoing, err := s.outgoingRepo.SumMatching(ctx, tenantID, itemID, ident)
	if err != nil {
		return nil, err
	}
	usage, err := s.usageRepo.SumMatching(ctx, tenantID, itemID, ident)
	if err != nil {
		return nil, err
	}

	return &model.LedgerTotals{
		TotalIncoming:   int(incoming),
		TotalSentToTeam: int(outgoing),
		TotalUsage:      int(usage),
	}, nil
}
