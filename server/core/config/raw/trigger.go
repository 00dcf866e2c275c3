package raw

import (
	"errors"
	"fmt"
	"regexp"
)

// eventNameRegex matches repository event names like push or pull_request.
var eventNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Triggers is the set of repository events that cause a workflow to be
// evaluated. The YAML form is either a single scalar or a list:
//
//	on: push
//	on: [push, pull_request]
type Triggers []string

func (t *Triggers) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var single string
	if err := unmarshal(&single); err == nil {
		*t = Triggers{single}
		return nil
	}

	var events []string
	if err := unmarshal(&events); err != nil {
		return err
	}
	*t = Triggers(events)
	return nil
}

func (t Triggers) Validate() error {
	if len(t) == 0 {
		return errors.New("at least one trigger event is required")
	}
	seen := make(map[string]bool, len(t))
	for _, event := range t {
		if !eventNameRegex.MatchString(event) {
			return fmt.Errorf("event %q must consist of lowercase letters, numbers and underscores", event)
		}
		if seen[event] {
			return fmt.Errorf("event %q is repeated", event)
		}
		seen[event] = true
	}
	return nil
}

func (t Triggers) ToValid() []string {
	events := make([]string, len(t))
	copy(events, t)
	return events
}
