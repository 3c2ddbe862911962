package service

import (
	"sort"
	"sync"

	"github.com/chungty/companylens/config"
	"github.com/chungty/companylens/model"
)

// ReportStore keeps recent smoke-test reports in memory for the debug API.
// Oldest reports are evicted beyond the configured cap. Enrichment records
// themselves are never persisted here; only check runs are.
type ReportStore struct {
	mu         sync.RWMutex
	reports    map[string]*model.CheckReport
	maxReports int // 0 = unlimited
}

func NewReportStore(cfg *config.StoreConfig) *ReportStore {
	maxReports := cfg.MaxReports
	if maxReports < 0 {
		maxReports = 0
	}
	return &ReportStore{
		reports:    make(map[string]*model.CheckReport),
		maxReports: maxReports,
	}
}

func (s *ReportStore) Save(report *model.CheckReport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports[report.ID] = report
	s.evictIfNeeded()
}

func (s *ReportStore) Get(id string) *model.CheckReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reports[id]
}

// List returns all stored reports, newest first.
func (s *ReportStore) List() []*model.CheckReport {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reports := make([]*model.CheckReport, 0, len(s.reports))
	for _, r := range s.reports {
		reports = append(reports, r)
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].StartedAt.After(reports[j].StartedAt)
	})
	return reports
}

func (s *ReportStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reports)
}

// evictIfNeeded removes oldest reports beyond the cap.
// Must be called with lock held.
func (s *ReportStore) evictIfNeeded() {
	if s.maxReports <= 0 || len(s.reports) <= s.maxReports {
		return
	}

	reports := make([]*model.CheckReport, 0, len(s.reports))
	for _, r := range s.reports {
		reports = append(reports, r)
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].StartedAt.Before(reports[j].StartedAt)
	})

	removeCount := len(reports) - s.maxReports
	for i := 0; i < removeCount; i++ {
		delete(s.reports, reports[i].ID)
	}
}
