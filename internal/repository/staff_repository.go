package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ahmedabdul/staff-portal/internal/domain"
	"github.com/ahmedabdul/staff-portal/internal/persistence"
)

// StaffRepository persists the staff roster as one snapshot.
type StaffRepository interface {
	Load(ctx context.Context) ([]domain.StaffMember, error)
	Save(ctx context.Context, roster []domain.StaffMember) error
}

type staffRepository struct {
	medium persistence.Medium
}

// NewStaffRepository instantiates the repository over the durable medium.
func NewStaffRepository(medium persistence.Medium) StaffRepository {
	return &staffRepository{medium: medium}
}

// Load returns the stored roster. A missing snapshot yields an empty roster;
// an unreadable one is an error so it is never overwritten.
func (r *staffRepository) Load(ctx context.Context) ([]domain.StaffMember, error) {
	raw, ok, err := r.medium.Get(ctx, persistence.KeyStaffList)
	if err != nil {
		return nil, fmt.Errorf("load staff list: %w", err)
	}
	roster := []domain.StaffMember{}
	if !ok {
		return roster, nil
	}
	if err := json.Unmarshal([]byte(raw), &roster); err != nil {
		return nil, fmt.Errorf("decode staff list: %w", err)
	}
	return roster, nil
}

func (r *staffRepository) Save(ctx context.Context, roster []domain.StaffMember) error {
	if roster == nil {
		roster = []domain.StaffMember{}
	}
	data, err := json.Marshal(roster)
	if err != nil {
		return fmt.Errorf("encode staff list: %w", err)
	}
	if err := r.medium.Set(ctx, persistence.KeyStaffList, string(data)); err != nil {
		return fmt.Errorf("save staff list: %w", err)
	}
	return nil
}
