package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ahmedabdul/staff-portal/internal/domain"
	"github.com/ahmedabdul/staff-portal/internal/persistence"
)

// ReportRepository snapshots the report ledger.
type ReportRepository interface {
	Load(ctx context.Context) ([]domain.Report, error)
	Save(ctx context.Context, reports []domain.Report) error
}

type reportRepository struct {
	medium persistence.Medium
}

// NewReportRepository instantiates the repository over the durable medium.
func NewReportRepository(medium persistence.Medium) ReportRepository {
	return &reportRepository{medium: medium}
}

func (r *reportRepository) Load(ctx context.Context) ([]domain.Report, error) {
	raw, ok, err := r.medium.Get(ctx, persistence.KeyReports)
	if err != nil {
		return nil, fmt.Errorf("load reports: %w", err)
	}
	reports := []domain.Report{}
	if !ok {
		return reports, nil
	}
	if err := json.Unmarshal([]byte(raw), &reports); err != nil {
		return nil, fmt.Errorf("decode reports: %w", err)
	}
	return reports, nil
}

func (r *reportRepository) Save(ctx context.Context, reports []domain.Report) error {
	if reports == nil {
		reports = []domain.Report{}
	}
	data, err := json.Marshal(reports)
	if err != nil {
		return fmt.Errorf("encode reports: %w", err)
	}
	if err := r.medium.Set(ctx, persistence.KeyReports, string(data)); err != nil {
		return fmt.Errorf("save reports: %w", err)
	}
	return nil
}
