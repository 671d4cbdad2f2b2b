package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmedabdul/staff-portal/internal/domain"
	"github.com/ahmedabdul/staff-portal/internal/persistence"
)

func TestStaffRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	medium := persistence.NewMemory()
	repo := NewStaffRepository(medium)

	roster, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, roster)
	assert.NotNil(t, roster)

	assigned := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	want := []domain.StaffMember{{
		ID: "s1", Email: "jane@firm.com", Name: "Jane", Role: domain.StaffRoleStaff, DateAssigned: assigned,
	}}
	require.NoError(t, repo.Save(ctx, want))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStaffRepositoryRejectsCorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	medium := persistence.NewMemory()
	require.NoError(t, medium.Set(ctx, persistence.KeyStaffList, "{not json"))

	_, err := NewStaffRepository(medium).Load(ctx)
	assert.ErrorContains(t, err, "decode staff list")

	raw, _, err := medium.Get(ctx, persistence.KeyStaffList)
	require.NoError(t, err)
	assert.Equal(t, "{not json", raw)
}

func TestStaffRepositorySaveNil(t *testing.T) {
	ctx := context.Background()
	medium := persistence.NewMemory()
	require.NoError(t, NewStaffRepository(medium).Save(ctx, nil))

	raw, ok, err := medium.Get(ctx, persistence.KeyStaffList)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", raw)
}

func TestReportRepositoryRejectsCorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	medium := persistence.NewMemory()
	require.NoError(t, medium.Set(ctx, persistence.KeyReports, "oops"))

	_, err := NewReportRepository(medium).Load(ctx)
	assert.Error(t, err)
}

func TestReportRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewReportRepository(persistence.NewMemory())
	reviewed := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	want := []domain.Report{{
		ID: "r1", Title: "Q1", Client: "Acme", Description: "d", Status: domain.ReportStatusApproved,
		Date: reviewed.Add(-time.Hour), ReviewDate: &reviewed, Author: "s1", Comments: []domain.Comment{},
	}}
	require.NoError(t, repo.Save(ctx, want))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
