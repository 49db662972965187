package service

import (
	"context"

	"github.com/shopspring/decimal"

	"portal/internal/model"
)

// DashboardSummary combines backend totals with the local history figures
type DashboardSummary struct {
	User          *model.User          `json:"user"`
	Totals        model.DashboardStats `json:"totals"`
	Riwayat       model.Stats          `json:"riwayat"`
	ApprovalRate  decimal.Decimal      `json:"approval_rate"`
	RejectionRate decimal.Decimal      `json:"rejection_rate"`
}

type DashboardService interface {
	Summary(ctx context.Context) (*DashboardSummary, error)
}

type dashboardService struct {
	session SessionService
	riwayat RiwayatService
}

func NewDashboardService(session SessionService, riwayat RiwayatService) DashboardService {
	return &dashboardService{session: session, riwayat: riwayat}
}

func (s *dashboardService) Summary(ctx context.Context) (*DashboardSummary, error) {
	user := s.session.User()
	if user == nil {
		return nil, ErrNotAuthenticated
	}

	if !s.riwayat.Snapshot().Loaded {
		// Failure is reflected in the zeroed history stats
		_ = s.riwayat.Load(ctx)
	}

	stats := s.riwayat.Stats()
	return &DashboardSummary{
		User:          user,
		Totals:        s.riwayat.DashboardStats(ctx),
		Riwayat:       stats,
		ApprovalRate:  percentage(stats.Approved, stats.Total),
		RejectionRate: percentage(stats.Rejected, stats.Total),
	}, nil
}

// percentage returns part/total*100 rounded to two decimals, 0 when total is 0
func percentage(part, total int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(2)
}
