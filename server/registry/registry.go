// Package registry persists named workflow documents. The raw document bytes
// are the source of truth in bolt; the parsed valid model is cached in memory
// and handed out as copies so callers can't poke at the cache.
package registry

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	tally "github.com/uber-go/tally/v4"
	bolt "go.etcd.io/bbolt"

	"github.com/flowlint/flowlint/server/core/config"
	"github.com/flowlint/flowlint/server/core/config/valid"
	"github.com/flowlint/flowlint/server/logging"
	"github.com/flowlint/flowlint/server/metrics"
)

var workflowsBucket = []byte("workflows")

// ErrNotFound is returned when the named workflow is not registered.
var ErrNotFound = errors.New("workflow not found")

// StoredWorkflow pairs the original document text with its parsed model.
type StoredWorkflow struct {
	Name     string
	Document []byte
	Workflow valid.Workflow
}

type Registry struct {
	db     *bolt.DB
	logger logging.Logger
	scope  tally.Scope

	mu    sync.RWMutex
	cache map[string]valid.Workflow
}

// New opens (or creates) the registry database under dataDir and warms the
// in-memory cache from it. Documents that no longer parse, e.g. written by a
// newer flowlint, are skipped with a warning rather than failing startup.
func New(dataDir string, parser *config.ParserValidator, logger logging.Logger, scope tally.Scope) (*Registry, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, errors.Wrap(err, "creating data dir")
	}
	dbPath := filepath.Join(dataDir, "flowlint.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, errors.Errorf("starting registry: file %q is in use by another process", dbPath)
		}
		return nil, errors.Wrap(err, "starting registry")
	}

	r := &Registry{
		db:     db,
		logger: logger,
		scope:  scope.SubScope("registry"),
		cache:  make(map[string]valid.Workflow),
	}

	err = db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(workflowsBucket)
		if err != nil {
			return err
		}
		return bucket.ForEach(func(k, v []byte) error {
			name := string(k)
			workflow, err := parser.ParseWorkflowCfgData(v, name)
			if err != nil {
				logger.Warn("skipping stored workflow that no longer parses", map[string]interface{}{
					"workflow": name,
					"err":      err.Error(),
				})
				return nil
			}
			r.cache[name] = workflow
			return nil
		})
	})
	if err != nil {
		db.Close() // nolint: errcheck
		return nil, errors.Wrap(err, "loading stored workflows")
	}
	return r, nil
}

// Save stores the document under name, replacing any previous version.
// The workflow must be the parsed form of document.
func (r *Registry) Save(name string, document []byte, workflow valid.Workflow) error {
	err := r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(workflowsBucket).Put([]byte(name), document)
	})
	if err != nil {
		return errors.Wrapf(err, "storing workflow %q", name)
	}

	r.mu.Lock()
	r.cache[name] = workflow
	r.mu.Unlock()

	r.scope.Counter(metrics.RegistrySaveMetric).Inc(1)
	return nil
}

// Get returns the stored workflow. The valid model is a copy; mutating it
// doesn't affect the registry.
func (r *Registry) Get(name string) (StoredWorkflow, error) {
	r.mu.RLock()
	workflow, ok := r.cache[name]
	r.mu.RUnlock()
	if !ok {
		return StoredWorkflow{}, ErrNotFound
	}

	var document []byte
	err := r.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(workflowsBucket).Get([]byte(name)); v != nil {
			document = make([]byte, len(v))
			copy(document, v)
		}
		return nil
	})
	if err != nil {
		return StoredWorkflow{}, errors.Wrapf(err, "reading workflow %q", name)
	}

	return StoredWorkflow{
		Name:     name,
		Document: document,
		Workflow: workflow.Copy(),
	}, nil
}

// List returns all registered workflow names in lexicographic order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.cache))
	for name := range r.cache {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Delete removes the named workflow. Deleting an unknown name returns
// ErrNotFound. The db is the source of truth, so the cache entry only goes
// away once the db delete succeeded.
func (r *Registry) Delete(name string) error {
	r.mu.RLock()
	_, ok := r.cache[name]
	r.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	err := r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(workflowsBucket).Delete([]byte(name))
	})
	if err != nil {
		return errors.Wrapf(err, "deleting workflow %q", name)
	}

	r.mu.Lock()
	delete(r.cache, name)
	r.mu.Unlock()

	r.scope.Counter(metrics.RegistryDeleteMetric).Inc(1)
	return nil
}

func (r *Registry) Close() error {
	return r.db.Close()
}
