package raw

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/flowlint/flowlint/server/core/config/valid"
)

// Step is a single invocation of an external action (uses) or an opaque
// command line (run). Parameter values are never interpreted here beyond
// checking they are scalars; the external runner owns their meaning.
type Step struct {
	Name *string                `yaml:"name,omitempty" json:"name,omitempty"`
	Uses *string                `yaml:"uses,omitempty" json:"uses,omitempty"`
	Run  *string                `yaml:"run,omitempty" json:"run,omitempty"`
	With map[string]interface{} `yaml:"with,omitempty" json:"with,omitempty"`
	Env  map[string]string      `yaml:"env,omitempty" json:"env,omitempty"`
}

func (s Step) Validate() error {
	if (s.Uses == nil) == (s.Run == nil) {
		return errors.New("exactly one of uses or run is required")
	}
	if s.Uses != nil && strings.TrimSpace(*s.Uses) == "" {
		return errors.New("uses: action reference must not be empty")
	}
	if s.Run != nil && strings.TrimSpace(*s.Run) == "" {
		return errors.New("run: command must not be empty")
	}
	if s.Run != nil && len(s.With) > 0 {
		return errors.New("with: only valid on uses steps")
	}
	if s.Uses != nil && len(s.Env) > 0 {
		return errors.New("env: only valid on run steps")
	}
	for key, value := range s.With {
		if err := validateParamValue(value); err != nil {
			return fmt.Errorf("with: key %q: %s", key, err)
		}
	}
	return nil
}

func validateParamValue(value interface{}) error {
	switch value.(type) {
	case string, bool, int, int64, uint64, float64:
		return nil
	case nil:
		return errors.New("value must be a string or boolean, not null")
	default:
		return errors.New("value must be a string or boolean")
	}
}

func (s Step) ToValid() valid.Step {
	var step valid.Step
	if s.Name != nil {
		step.Name = *s.Name
	}
	if s.Uses != nil {
		step.Uses = *s.Uses
	}
	if s.Run != nil {
		step.Run = *s.Run
	}
	if len(s.With) > 0 {
		step.With = make(map[string]valid.ParamValue, len(s.With))
		for key, value := range s.With {
			step.With[key] = paramValue(value)
		}
	}
	if len(s.Env) > 0 {
		step.Env = make(map[string]string, len(s.Env))
		for key, value := range s.Env {
			step.Env[key] = value
		}
	}
	return step
}

// paramValue normalizes a validated YAML scalar. Booleans keep their type,
// numbers become their string form since the runner treats them as opaque
// strings anyway.
func paramValue(value interface{}) valid.ParamValue {
	switch t := value.(type) {
	case bool:
		return valid.BoolParam(t)
	case string:
		return valid.StringParam(t)
	case int:
		return valid.StringParam(strconv.Itoa(t))
	case int64:
		return valid.StringParam(strconv.FormatInt(t, 10))
	case uint64:
		return valid.StringParam(strconv.FormatUint(t, 10))
	case float64:
		return valid.StringParam(strconv.FormatFloat(t, 'f', -1, 64))
	}
	// unreachable after Validate
	return valid.StringParam(fmt.Sprintf("%v", value))
}
