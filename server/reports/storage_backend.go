package reports

import (
	"io"
	"strings"

	"github.com/graymeta/stow"
	"github.com/graymeta/stow/local"
	"github.com/pkg/errors"

	"github.com/flowlint/flowlint/server/logging"
)

const containerName = "reports"

type StorageBackend interface {
	// Read the findings of a flushed report from the storage backend.
	Read(key string) ([]string, error)

	// Write the findings of a report to the storage backend.
	Write(key string, findings []string) (success bool, err error)
}

type storageBackend struct {
	container stow.Container
	logger    logging.Logger
}

func (s *storageBackend) Read(key string) ([]string, error) {
	var findings []string
	found := false

	err := stow.Walk(s.container, stow.NoPrefix, 100, func(item stow.Item, err error) error {
		if err != nil {
			return err
		}
		if item.Name() != key {
			return nil
		}
		found = true

		r, err := item.Open()
		if err != nil {
			return err
		}
		defer r.Close() // nolint: errcheck

		data, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		if len(data) > 0 {
			findings = strings.Split(strings.TrimRight(string(data), "\n"), "\n")
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "reading report %q", key)
	}
	if !found {
		return nil, errors.Errorf("report %q not found in storage backend", key)
	}
	return findings, nil
}

func (s *storageBackend) Write(key string, findings []string) (bool, error) {
	payload := strings.Join(findings, "\n")
	_, err := s.container.Put(key, strings.NewReader(payload), int64(len(payload)), nil)
	if err != nil {
		return false, errors.Wrapf(err, "uploading report %q", key)
	}
	s.logger.Debug("flushed report to storage backend", map[string]interface{}{"report": key})
	return true, nil
}

// NewStorageBackend returns a local-dir backed store, or a noop store when
// persistence is not configured.
func NewStorageBackend(dir string, logger logging.Logger) (StorageBackend, error) {
	if dir == "" {
		return &NoopStorageBackend{}, nil
	}

	location, err := stow.Dial(local.Kind, stow.ConfigMap{local.ConfigKeyPath: dir})
	if err != nil {
		return nil, errors.Wrap(err, "dialing report storage")
	}

	container, err := location.Container(containerName)
	if err != nil {
		container, err = location.CreateContainer(containerName)
		if err != nil {
			return nil, errors.Wrap(err, "creating report container")
		}
	}

	return &storageBackend{
		container: container,
		logger:    logger,
	}, nil
}

// NoopStorageBackend is used when report persistence is not configured.
type NoopStorageBackend struct{}

func (s *NoopStorageBackend) Read(key string) ([]string, error) {
	return nil, errors.Errorf("report persistence is not configured")
}

func (s *NoopStorageBackend) Write(key string, findings []string) (bool, error) {
	return false, nil
}
