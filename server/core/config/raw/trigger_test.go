package raw_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	yaml "gopkg.in/yaml.v2"

	"github.com/flowlint/flowlint/server/core/config/raw"
)

func TestTriggers_Unmarshal(t *testing.T) {
	t.Run("scalar form", func(t *testing.T) {
		var result struct {
			On raw.Triggers `yaml:"on"`
		}

		err := yaml.UnmarshalStrict([]byte(`on: push`), &result)
		assert.NoError(t, err)
		assert.Equal(t, raw.Triggers{"push"}, result.On)
	})

	t.Run("list form", func(t *testing.T) {
		var result struct {
			On raw.Triggers `yaml:"on"`
		}

		err := yaml.UnmarshalStrict([]byte(`on: [push, pull_request]`), &result)
		assert.NoError(t, err)
		assert.Equal(t, raw.Triggers{"push", "pull_request"}, result.On)
	})

	t.Run("mapping form rejected", func(t *testing.T) {
		var result struct {
			On raw.Triggers `yaml:"on"`
		}

		err := yaml.UnmarshalStrict([]byte("on:\n  push:\n    branches: [main]"), &result)
		assert.Error(t, err)
	})
}

func TestTriggers_Validate(t *testing.T) {
	cases := []struct {
		description string
		subject     raw.Triggers
		expErr      string
	}{
		{
			description: "single event",
			subject:     raw.Triggers{"push"},
		},
		{
			description: "multiple events",
			subject:     raw.Triggers{"push", "pull_request"},
		},
		{
			description: "empty",
			subject:     raw.Triggers{},
			expErr:      "at least one trigger event is required",
		},
		{
			description: "empty event name",
			subject:     raw.Triggers{""},
			expErr:      "event \"\" must consist of lowercase letters, numbers and underscores",
		},
		{
			description: "uppercase event name",
			subject:     raw.Triggers{"Push"},
			expErr:      "event \"Push\" must consist of lowercase letters, numbers and underscores",
		},
		{
			description: "repeated event",
			subject:     raw.Triggers{"push", "push"},
			expErr:      "event \"push\" is repeated",
		},
	}

	for _, c := range cases {
		t.Run(c.description, func(t *testing.T) {
			err := c.subject.Validate()
			if c.expErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, c.expErr)
		})
	}
}

func TestTriggers_ToValid_Copies(t *testing.T) {
	subject := raw.Triggers{"push", "pull_request"}
	events := subject.ToValid()
	events[0] = "mutated"
	assert.Equal(t, raw.Triggers{"push", "pull_request"}, subject)
}
