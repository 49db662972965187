package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"portal/internal/gateway"
	"portal/internal/model"
)

var ErrNothingToExport = errors.New("Tidak ada data yang dapat diexport")

const riwayatLoadError = "Gagal memuat data riwayat"

var exportHeader = []string{"ID", "Jenis Request", "Unit", "Pemohon", "Tanggal Pengajuan", "Status", "Approver"}

// RiwayatSnapshot is a consistent copy of the history store
type RiwayatSnapshot struct {
	Entries  []model.HistoryEntry `json:"riwayatList"`
	Filtered []model.HistoryEntry `json:"filteredList"`
	Stats    model.Stats          `json:"stats"`
	Loading  bool                 `json:"loading"`
	Loaded   bool                 `json:"loaded"`
	Error    string               `json:"error,omitempty"`
}

// RiwayatService is the request history store of one workspace
type RiwayatService interface {
	Load(ctx context.Context) error
	Refresh(ctx context.Context) error
	Filter(filter model.HistoryFilter) []model.HistoryEntry
	Search(term string) []model.HistoryEntry
	ClearFilters() []model.HistoryEntry
	Export() ([]byte, int, error)
	ExportFilename(now time.Time) string
	Snapshot() RiwayatSnapshot
	Stats() model.Stats
	Reset()
	DashboardStats(ctx context.Context) model.DashboardStats
}

type riwayatService struct {
	mu       sync.RWMutex
	entries  []model.HistoryEntry
	filtered []model.HistoryEntry
	stats    model.Stats
	loading  bool
	loaded   bool
	errText  string

	// generation is bumped by Reset; loads started before it are discarded
	generation uint64

	gw      gateway.Gateway
	session SessionService
	logger  *slog.Logger
}

func NewRiwayatService(gw gateway.Gateway, session SessionService, logger *slog.Logger) RiwayatService {
	return &riwayatService{
		entries:  []model.HistoryEntry{},
		filtered: []model.HistoryEntry{},
		gw:       gw,
		session:  session,
		logger:   logger,
	}
}

func (s *riwayatService) Load(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.errText = ""
	gen := s.generation
	s.mu.Unlock()

	list, err := s.gw.ListRequests(s.session.AuthContext(ctx), gateway.ListRequestsParams{})

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return nil
	}
	s.loading = false

	if err != nil {
		s.logger.Error("failed to load riwayat", "error", err)
		s.errText = riwayatLoadError
		s.entries = []model.HistoryEntry{}
		s.filtered = []model.HistoryEntry{}
		s.stats = model.Stats{}
		return err
	}

	entries := make([]model.HistoryEntry, 0, len(list.Data))
	for _, req := range list.Data {
		entries = append(entries, req.ToHistoryEntry())
	}
	s.entries = entries
	s.filtered = cloneEntries(entries)
	s.stats = model.ComputeStats(entries)
	s.loaded = true
	return nil
}

func (s *riwayatService) Refresh(ctx context.Context) error {
	return s.Load(ctx)
}

// Filter always starts from the full list, so successive calls do not stack
func (s *riwayatService) Filter(filter model.HistoryFilter) []model.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := s.entries
	if filter.StartDate != "" && filter.EndDate != "" {
		start, okStart := parseHistoryDate(filter.StartDate)
		end, okEnd := parseHistoryDate(filter.EndDate)
		filtered = keep(filtered, func(e model.HistoryEntry) bool {
			if !okStart || !okEnd {
				return false
			}
			at, ok := parseHistoryDate(e.TanggalPengajuan)
			return ok && !at.Before(start) && !at.After(end)
		})
	}
	if filter.Unit != "" {
		unit := strings.ToLower(filter.Unit)
		filtered = keep(filtered, func(e model.HistoryEntry) bool {
			return e.Unit != "" && strings.Contains(strings.ToLower(e.Unit), unit)
		})
	}
	if filter.Status != "" {
		filtered = keep(filtered, func(e model.HistoryEntry) bool {
			return e.Status == filter.Status
		})
	}

	s.filtered = cloneEntries(filtered)
	return cloneEntries(s.filtered)
}

func (s *riwayatService) Search(term string) []model.HistoryEntry {
	if term == "" {
		return s.ClearFilters()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	needle := strings.ToLower(term)
	s.filtered = keep(s.entries, func(e model.HistoryEntry) bool {
		return containsFold(e.Unit, needle) ||
			containsFold(e.Pemohon, needle) ||
			containsFold(e.JenisRequest, needle)
	})
	return cloneEntries(s.filtered)
}

func (s *riwayatService) ClearFilters() []model.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filtered = cloneEntries(s.entries)
	return cloneEntries(s.filtered)
}

// Export renders the filtered view as CSV and reports the row count
func (s *riwayatService) Export() ([]byte, int, error) {
	s.mu.RLock()
	rows := cloneEntries(s.filtered)
	s.mu.RUnlock()

	if len(rows) == 0 {
		return nil, 0, ErrNothingToExport
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, 0, err
	}
	for _, e := range rows {
		record := []string{
			strconv.FormatInt(e.ID, 10),
			e.JenisRequest,
			e.Unit,
			e.Pemohon,
			e.TanggalPengajuan,
			e.Status,
			e.Approver,
		}
		if err := w.Write(record); err != nil {
			return nil, 0, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), len(rows), nil
}

func (s *riwayatService) ExportFilename(now time.Time) string {
	return "riwayat-pengajuan-" + now.UTC().Format("2006-01-02") + ".csv"
}

func (s *riwayatService) Snapshot() RiwayatSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return RiwayatSnapshot{
		Entries:  cloneEntries(s.entries),
		Filtered: cloneEntries(s.filtered),
		Stats:    s.stats,
		Loading:  s.loading,
		Loaded:   s.loaded,
		Error:    s.errText,
	}
}

// Reset forgets the loaded history so the next user starts from the backend
func (s *riwayatService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.entries = []model.HistoryEntry{}
	s.filtered = []model.HistoryEntry{}
	s.stats = model.Stats{}
	s.loading = false
	s.loaded = false
	s.errText = ""
}

func (s *riwayatService) Stats() model.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// DashboardStats asks the backend, falling back to the local totals
func (s *riwayatService) DashboardStats(ctx context.Context) model.DashboardStats {
	stats, err := s.gw.DashboardStats(s.session.AuthContext(ctx))
	if err != nil || stats == nil {
		s.logger.Warn("dashboard stats unavailable, using local totals", "error", err)
		return model.DashboardStats{TotalRiwayat: s.Stats().Total}
	}
	return *stats
}

// parseHistoryDate reads RFC 3339 timestamps and bare dates (UTC midnight)
func parseHistoryDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func keep(entries []model.HistoryEntry, pred func(model.HistoryEntry) bool) []model.HistoryEntry {
	out := make([]model.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		if pred(e) {
			out = append(out, e)
		}
	}
	return out
}

func containsFold(s, lowerNeedle string) bool {
	return s != "" && strings.Contains(strings.ToLower(s), lowerNeedle)
}

func cloneEntries(entries []model.HistoryEntry) []model.HistoryEntry {
	out := make([]model.HistoryEntry, len(entries))
	copy(out, entries)
	return out
}
