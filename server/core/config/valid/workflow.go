// Package valid holds the validated workflow model. Anything in this package
// already passed the raw schema's validation; consumers never see a
// half-formed document.
package valid

import (
	"encoding/json"
	"sort"

	version "github.com/hashicorp/go-version"

	"github.com/flowlint/flowlint/server/core/config/bounded"
)

type Workflow struct {
	Version          int
	Name             string
	On               []string
	MinRunnerVersion *version.Version
	MaxParallel      bounded.Int
	Jobs             map[string]Job
}

// Matches reports whether the given repository event triggers this workflow.
func (w Workflow) Matches(event string) bool {
	for _, e := range w.On {
		if e == event {
			return true
		}
	}
	return false
}

// JobNames returns the workflow's job names in lexicographic order.
func (w Workflow) JobNames() []string {
	names := make([]string, 0, len(w.Jobs))
	for name := range w.Jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// JobsFor returns the ordered job names activated by event, or nil when the
// event doesn't trigger this workflow. The mapping is static: a matching
// event activates every job in the document.
func (w Workflow) JobsFor(event string) []string {
	if !w.Matches(event) {
		return nil
	}
	return w.JobNames()
}

// Copy returns a deep copy. ParamValue and bounded.Int are immutable value
// types, so copying the containers is enough.
func (w Workflow) Copy() Workflow {
	out := w
	out.On = make([]string, len(w.On))
	copy(out.On, w.On)
	out.Jobs = make(map[string]Job, len(w.Jobs))
	for name, job := range w.Jobs {
		out.Jobs[name] = job.Copy()
	}
	return out
}

type Job struct {
	Name           string
	RunsOn         string
	TimeoutMinutes bounded.Int
	Steps          []Step
}

func (j Job) Copy() Job {
	out := j
	out.Steps = make([]Step, len(j.Steps))
	for i, step := range j.Steps {
		out.Steps[i] = step.Copy()
	}
	return out
}

type Step struct {
	Name string
	Uses string
	Run  string
	With map[string]ParamValue
	Env  map[string]string
}

// IsAction reports whether the step invokes an external action rather than an
// opaque command line.
func (s Step) IsAction() bool {
	return s.Uses != ""
}

func (s Step) Copy() Step {
	out := s
	if s.With != nil {
		out.With = make(map[string]ParamValue, len(s.With))
		for k, v := range s.With {
			out.With[k] = v
		}
	}
	if s.Env != nil {
		out.Env = make(map[string]string, len(s.Env))
		for k, v := range s.Env {
			out.Env[k] = v
		}
	}
	return out
}

// ParamValue is an opaque action parameter: either a string or a boolean,
// interpreted solely by the external action.
type ParamValue struct {
	isBool bool
	b      bool
	s      string
}

func StringParam(s string) ParamValue {
	return ParamValue{s: s}
}

func BoolParam(b bool) ParamValue {
	return ParamValue{isBool: true, b: b}
}

func (p ParamValue) IsBool() bool {
	return p.isBool
}

func (p ParamValue) Bool() bool {
	return p.b
}

// Text renders the value as the string the external action would receive.
func (p ParamValue) Text() string {
	if p.isBool {
		if p.b {
			return "true"
		}
		return "false"
	}
	return p.s
}

// MarshalJSON keeps the native scalar type in API responses.
func (p ParamValue) MarshalJSON() ([]byte, error) {
	if p.isBool {
		return json.Marshal(p.b)
	}
	return json.Marshal(p.s)
}
