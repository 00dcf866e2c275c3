package raw

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/flowlint/flowlint/server/core/config/bounded"
	"github.com/flowlint/flowlint/server/core/config/valid"
)

const (
	MinTimeoutMinutes     = 1
	MaxTimeoutMinutes     = 360
	DefaultTimeoutMinutes = 60
)

// Job is a named, ordered sequence of steps run in a declared execution
// environment.
type Job struct {
	Name           *string `yaml:"name,omitempty" json:"name,omitempty"`
	RunsOn         *string `yaml:"runs-on" json:"runs-on"`
	TimeoutMinutes *int    `yaml:"timeout-minutes,omitempty" json:"timeout-minutes,omitempty"`
	Steps          []Step  `yaml:"steps" json:"steps"`
}

func (j Job) Validate() error {
	return validation.ValidateStruct(&j,
		validation.Field(&j.RunsOn, validation.Required.Error("is required")),
		validation.Field(&j.TimeoutMinutes, validation.By(timeoutMinutesValidator)),
		validation.Field(&j.Steps, validation.Required.Error("at least one step is required"), validation.By(stepsValidator)),
	)
}

func timeoutMinutesValidator(value interface{}) error {
	timeout, _ := value.(*int)
	if timeout == nil {
		return nil
	}
	_, err := bounded.New(*timeout, MinTimeoutMinutes, MaxTimeoutMinutes)
	return err
}

func stepsValidator(value interface{}) error {
	steps, _ := value.([]Step)
	for i, step := range steps {
		if err := step.Validate(); err != nil {
			return fmt.Errorf("step %d: %s", i+1, err)
		}
	}
	return nil
}

// ToValid converts to the validated model. key is the job's map key in the
// workflow document and doubles as the display name when none is declared.
func (j Job) ToValid(key string) valid.Job {
	name := key
	if j.Name != nil {
		name = *j.Name
	}

	timeout := bounded.Clamp(DefaultTimeoutMinutes, MinTimeoutMinutes, MaxTimeoutMinutes)
	if j.TimeoutMinutes != nil {
		timeout = bounded.Clamp(*j.TimeoutMinutes, MinTimeoutMinutes, MaxTimeoutMinutes)
	}

	steps := make([]valid.Step, 0, len(j.Steps))
	for _, step := range j.Steps {
		steps = append(steps, step.ToValid())
	}

	return valid.Job{
		Name:           name,
		RunsOn:         *j.RunsOn,
		TimeoutMinutes: timeout,
		Steps:          steps,
	}
}
