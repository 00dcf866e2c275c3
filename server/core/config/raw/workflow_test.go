package raw_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	yaml "gopkg.in/yaml.v2"

	"github.com/flowlint/flowlint/server/core/config/raw"
)

func validJob() raw.Job {
	return raw.Job{
		RunsOn: strPtr("ubuntu-latest"),
		Steps:  []raw.Step{{Uses: strPtr("actions/checkout@v4")}},
	}
}

func TestWorkflow_UnmarshalStrict(t *testing.T) {
	t.Run("unknown keys are rejected", func(t *testing.T) {
		rawYaml := `
version: 1
on: [push]
cron: "* * * * *"
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
    - run: make
`
		var result raw.Workflow
		err := yaml.UnmarshalStrict([]byte(rawYaml), &result)
		assert.Error(t, err)
	})

	t.Run("duplicate job names are rejected", func(t *testing.T) {
		rawYaml := `
version: 1
on: [push]
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
    - run: make
  build:
    runs-on: macos-latest
    steps:
    - run: make test
`
		var result raw.Workflow
		err := yaml.UnmarshalStrict([]byte(rawYaml), &result)
		assert.Error(t, err)
	})
}

func TestWorkflow_Validate(t *testing.T) {
	cases := []struct {
		description string
		subject     raw.Workflow
		expErr      string
	}{
		{
			description: "minimal valid workflow",
			subject: raw.Workflow{
				Version: intPtr(1),
				On:      raw.Triggers{"push"},
				Jobs:    map[string]raw.Job{"build": validJob()},
			},
		},
		{
			description: "missing version",
			subject: raw.Workflow{
				On:   raw.Triggers{"push"},
				Jobs: map[string]raw.Job{"build": validJob()},
			},
			expErr: "version: is required",
		},
		{
			description: "unsupported version",
			subject: raw.Workflow{
				Version: intPtr(2),
				On:      raw.Triggers{"push"},
				Jobs:    map[string]raw.Job{"build": validJob()},
			},
			expErr: "version: only version 1 is supported",
		},
		{
			description: "no triggers",
			subject: raw.Workflow{
				Version: intPtr(1),
				Jobs:    map[string]raw.Job{"build": validJob()},
			},
			expErr: "at least one trigger event is required",
		},
		{
			description: "no jobs",
			subject: raw.Workflow{
				Version: intPtr(1),
				On:      raw.Triggers{"push"},
			},
			expErr: "at least one job is required",
		},
		{
			description: "bad job name",
			subject: raw.Workflow{
				Version: intPtr(1),
				On:      raw.Triggers{"push"},
				Jobs:    map[string]raw.Job{"my job": validJob()},
			},
			expErr: "job name \"my job\" must match",
		},
		{
			description: "invalid job is attributed",
			subject: raw.Workflow{
				Version: intPtr(1),
				On:      raw.Triggers{"push"},
				Jobs:    map[string]raw.Job{"build": {RunsOn: strPtr("ubuntu-latest")}},
			},
			expErr: "job \"build\"",
		},
		{
			description: "unparsable runner version",
			subject: raw.Workflow{
				Version:          intPtr(1),
				On:               raw.Triggers{"push"},
				MinRunnerVersion: strPtr("not-a-version"),
				Jobs:             map[string]raw.Job{"build": validJob()},
			},
			expErr: "could not be parsed",
		},
		{
			description: "max-parallel out of range",
			subject: raw.Workflow{
				Version:     intPtr(1),
				On:          raw.Triggers{"push"},
				MaxParallel: intPtr(0),
				Jobs:        map[string]raw.Job{"build": validJob()},
			},
			expErr: "0 is outside the range [1, 256]",
		},
	}

	for _, c := range cases {
		t.Run(c.description, func(t *testing.T) {
			err := c.subject.Validate()
			if c.expErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Contains(t, err.Error(), c.expErr)
		})
	}
}

func TestWorkflow_ToValid(t *testing.T) {
	subject := raw.Workflow{
		Version:          intPtr(1),
		Name:             strPtr("CI"),
		On:               raw.Triggers{"push", "pull_request"},
		MinRunnerVersion: strPtr("2.300.0"),
		Jobs: map[string]raw.Job{
			"lint-stable": validJob(),
		},
	}

	workflow := subject.ToValid()
	assert.Equal(t, 1, workflow.Version)
	assert.Equal(t, "CI", workflow.Name)
	assert.Equal(t, []string{"push", "pull_request"}, workflow.On)
	assert.Equal(t, "2.300.0", workflow.MinRunnerVersion.String())
	// unset max-parallel defaults to the upper bound
	assert.Equal(t, raw.DefaultMaxParallel, workflow.MaxParallel.Value())
	assert.Contains(t, workflow.Jobs, "lint-stable")
}
