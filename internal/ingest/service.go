// Package ingest is the dataset service used by the API and the CLI. It
// converts uploaded sheets, persists them through the store and keeps an
// in-memory copy of the current tables for readers.
package ingest

import (
	"context"
	"fmt"
	"sync"

	"github.com/farxc/purchasing-kpi/internal/columns"
	"github.com/farxc/purchasing-kpi/internal/logger"
	"github.com/farxc/purchasing-kpi/internal/store"
	"github.com/farxc/purchasing-kpi/internal/table"
	"github.com/go-gota/gota/dataframe"
)

const component = "INGEST"

// maxLoggedIssues caps the per-cell warnings written for one upload. All of
// them are still returned in Result.
const maxLoggedIssues = 20

// Tables is the current dataset as canonical frames. The frames are shared
// between readers and must not be modified.
type Tables struct {
	Snapshot store.Snapshot
	SCs      dataframe.DataFrame
	Savings  dataframe.DataFrame
}

// Result describes a committed upload.
type Result struct {
	Snapshot store.Snapshot `json:"snapshot"`
	Missing  []string       `json:"missing,omitempty"`
	Issues   []string       `json:"issues,omitempty"`
}

type Service struct {
	store *store.Storage
	log   *logger.Logger

	// mu guards cache. Replace holds it for writing across the commit so a
	// reader can never cache the dataset being replaced.
	mu    sync.RWMutex
	cache *Tables
}

func NewService(s *store.Storage, log *logger.Logger) *Service {
	return &Service{store: s, log: log}
}

// Replace converts both sheets and makes them the current dataset. On error
// the previous dataset stays current.
func (s *Service) Replace(ctx context.Context, scs, savings dataframe.DataFrame, source string) (Result, error) {
	scRows, scReport := table.SCs(scs)
	savingRows, savingReport := table.Savings(savings)

	res := Result{Missing: columns.Merge(scReport.Missing, savingReport.Missing)}
	for _, i := range scReport.Issues {
		res.Issues = append(res.Issues, columns.SheetSCs+": "+i.String())
	}
	for _, i := range savingReport.Issues {
		res.Issues = append(res.Issues, columns.SheetSavings+": "+i.String())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.store.Dataset.Replace(ctx, scRows, savingRows, source, res.Missing...)
	if err != nil {
		s.log.Error(component, "Failed to replace dataset from %s: %v", source, err)
		return Result{}, err
	}
	s.cache = nil
	res.Snapshot = snapshot

	s.log.Info(component, "Replaced dataset from %s: %d SC's, %d savings", source, snapshot.SCCount, snapshot.SavingCount)
	if len(res.Missing) > 0 {
		s.log.Warn(component, "Columns not found in %s: %v", source, res.Missing)
	}
	for n, issue := range res.Issues {
		if n == maxLoggedIssues {
			s.log.Warn(component, "%d more cell issues not logged", len(res.Issues)-n)
			break
		}
		s.log.Warn(component, "%s", issue)
	}

	return res, nil
}

// Current returns the committed dataset, loading it from the store on the
// first call after a Replace. It returns store.ErrNoSnapshot before the
// first ingest.
func (s *Service) Current(ctx context.Context) (*Tables, error) {
	s.mu.RLock()
	cached := s.cache
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache != nil {
		return s.cache, nil
	}

	dataset, err := s.store.Dataset.Current(ctx)
	if err != nil {
		return nil, err
	}

	s.cache = &Tables{
		Snapshot: dataset.Snapshot,
		SCs:      table.SCFrame(dataset.SCs, dataset.Snapshot.Missing...),
		Savings:  table.SavingFrame(dataset.Savings, dataset.Snapshot.Missing...),
	}
	if err := s.cache.SCs.Error(); err != nil {
		s.cache = nil
		return nil, fmt.Errorf("failed to build SC's frame: %w", err)
	}
	if err := s.cache.Savings.Error(); err != nil {
		s.cache = nil
		return nil, fmt.Errorf("failed to build Saving frame: %w", err)
	}

	s.log.Debug(component, "Loaded dataset uploaded at %s", dataset.Snapshot.UploadTime)
	return s.cache, nil
}

// Snapshot returns the metadata of the current dataset without loading it.
func (s *Service) Snapshot(ctx context.Context) (store.Snapshot, error) {
	s.mu.RLock()
	cached := s.cache
	s.mu.RUnlock()
	if cached != nil {
		return cached.Snapshot, nil
	}
	return s.store.Dataset.Snapshot(ctx)
}
