// Package raw is the YAML-facing schema for workflow documents. Every type
// carries a Validate method run before conversion into the valid package's
// model.
package raw

import (
	"errors"
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	version "github.com/hashicorp/go-version"

	"github.com/flowlint/flowlint/server/core/config/bounded"
	"github.com/flowlint/flowlint/server/core/config/valid"
)

const (
	MinMaxParallel     = 1
	MaxMaxParallel     = 256
	DefaultMaxParallel = 256
)

// jobNameRegex constrains job map keys. Uniqueness comes for free from the
// map form plus strict unmarshalling, which rejects duplicate keys.
var jobNameRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_-]*$`)

// Workflow is the top-level automation document: a trigger set, a display
// name and a mapping from job name to job.
type Workflow struct {
	Version          *int           `yaml:"version" json:"version"`
	Name             *string        `yaml:"name,omitempty" json:"name,omitempty"`
	On               Triggers       `yaml:"on" json:"on"`
	MinRunnerVersion *string        `yaml:"min_runner_version,omitempty" json:"min_runner_version,omitempty"`
	MaxParallel      *int           `yaml:"max-parallel,omitempty" json:"max-parallel,omitempty"`
	Jobs             map[string]Job `yaml:"jobs" json:"jobs"`
}

func (w Workflow) Validate() error {
	return validation.ValidateStruct(&w,
		validation.Field(&w.Version, validation.By(w.validateVersion)),
		validation.Field(&w.On, validation.By(triggersValidator)),
		validation.Field(&w.MinRunnerVersion, validation.By(VersionValidator)),
		validation.Field(&w.MaxParallel, validation.By(maxParallelValidator)),
		validation.Field(&w.Jobs, validation.Required.Error("at least one job is required"), validation.By(jobsValidator)),
	)
}

func (w Workflow) validateVersion(value interface{}) error {
	if w.Version == nil {
		return errors.New("is required")
	}
	if *w.Version != 1 {
		return errors.New("only version 1 is supported")
	}
	return nil
}

func triggersValidator(value interface{}) error {
	triggers, _ := value.(Triggers)
	return triggers.Validate()
}

func maxParallelValidator(value interface{}) error {
	maxParallel, _ := value.(*int)
	if maxParallel == nil {
		return nil
	}
	_, err := bounded.New(*maxParallel, MinMaxParallel, MaxMaxParallel)
	return err
}

func jobsValidator(value interface{}) error {
	jobs, _ := value.(map[string]Job)
	for key, job := range jobs {
		if !jobNameRegex.MatchString(key) {
			return fmt.Errorf("job name %q must match %q", key, jobNameRegex.String())
		}
		if err := job.Validate(); err != nil {
			return fmt.Errorf("job %q: %s", key, err)
		}
	}
	return nil
}

func (w Workflow) ToValid() valid.Workflow {
	workflow := valid.Workflow{
		Version:     *w.Version,
		On:          w.On.ToValid(),
		MaxParallel: bounded.Clamp(DefaultMaxParallel, MinMaxParallel, MaxMaxParallel),
		Jobs:        make(map[string]valid.Job, len(w.Jobs)),
	}
	if w.Name != nil {
		workflow.Name = *w.Name
	}
	if w.MinRunnerVersion != nil {
		// already validated
		workflow.MinRunnerVersion, _ = version.NewVersion(*w.MinRunnerVersion)
	}
	if w.MaxParallel != nil {
		workflow.MaxParallel = bounded.Clamp(*w.MaxParallel, MinMaxParallel, MaxMaxParallel)
	}
	for key, job := range w.Jobs {
		workflow.Jobs[key] = job.ToValid(key)
	}
	return workflow
}
