// Package reports tracks the outcome of validate calls. Reports are buffered
// in memory while open and flushed to the storage backend once complete, at
// which point the memory entry is dropped.
package reports

import (
	"fmt"
	"sync"

	"github.com/mohae/deepcopy"
)

type Status int

const (
	Open Status = iota
	Complete
)

// Report is the durable record of one validation: where the document came
// from, whether it passed and the ordered findings.
type Report struct {
	ID       string
	Source   string
	Valid    bool
	Findings []string
	Status   Status
}

type Store interface {
	// Get returns the report from the in-memory buffer if available, and
	// reaches into the storage backend otherwise.
	Get(id string) (Report, error)

	// Open starts a report for a new validation of the given source.
	Open(id string, source string) error

	// AppendFinding adds a finding line to an open report.
	AppendFinding(id string, finding string) error

	// Complete marks the report done and flushes it to the storage
	// backend.
	Complete(id string, valid bool) error
}

func NewStore(backend StorageBackend) Store {
	return &LayeredStore{
		reports: map[string]*Report{},
		backend: backend,
	}
}

type LayeredStore struct {
	reports map[string]*Report
	backend StorageBackend
	lock    sync.RWMutex
}

func (s *LayeredStore) Get(id string) (Report, error) {
	if report, ok := s.getFromMemory(id); ok {
		return report, nil
	}

	findings, err := s.backend.Read(id)
	if err != nil {
		return Report{}, err
	}

	// Anything read back from the backend was complete when flushed.
	return Report{
		ID:       id,
		Findings: findings,
		Status:   Complete,
	}, nil
}

func (s *LayeredStore) getFromMemory(id string) (Report, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	report, ok := s.reports[id]
	if !ok {
		return Report{}, false
	}
	return deepcopy.Copy(*report).(Report), true
}

func (s *LayeredStore) Open(id string, source string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.reports[id]; ok {
		return fmt.Errorf("report %q is already open", id)
	}
	s.reports[id] = &Report{
		ID:     id,
		Source: source,
	}
	return nil
}

func (s *LayeredStore) AppendFinding(id string, finding string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	report, ok := s.reports[id]
	if !ok {
		return fmt.Errorf("report %q does not exist", id)
	}
	if report.Status == Complete {
		return fmt.Errorf("cannot append to a complete report")
	}
	report.Findings = append(report.Findings, finding)
	return nil
}

func (s *LayeredStore) Complete(id string, valid bool) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	report, ok := s.reports[id]
	if !ok {
		return fmt.Errorf("report %q does not exist", id)
	}
	if report.Status == Complete {
		return fmt.Errorf("report is already complete")
	}
	report.Status = Complete
	report.Valid = valid

	persisted, err := s.backend.Write(report.ID, report.Findings)
	if err != nil {
		return fmt.Errorf("error persisting report: %s", id)
	}

	// Clear the buffer only once the backend has the report.
	if persisted {
		delete(s.reports, id)
	}
	return nil
}
