package raw_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	yaml "gopkg.in/yaml.v2"

	"github.com/flowlint/flowlint/server/core/config/raw"
	"github.com/flowlint/flowlint/server/core/config/valid"
)

func strPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}

func TestStep_Unmarshal(t *testing.T) {
	rawYaml := `
name: Install toolchain
uses: dtolnay/rust-toolchain@stable
with:
  toolchain: nightly
  components: clippy
  cache: true
`
	var result raw.Step
	err := yaml.UnmarshalStrict([]byte(rawYaml), &result)
	assert.NoError(t, err)
	assert.Equal(t, "Install toolchain", *result.Name)
	assert.Equal(t, "dtolnay/rust-toolchain@stable", *result.Uses)
	assert.Equal(t, "nightly", result.With["toolchain"])
	assert.Equal(t, true, result.With["cache"])
}

func TestStep_Validate(t *testing.T) {
	cases := []struct {
		description string
		subject     raw.Step
		expErr      string
	}{
		{
			description: "uses step",
			subject: raw.Step{
				Uses: strPtr("actions/checkout@v4"),
			},
		},
		{
			description: "uses step with params",
			subject: raw.Step{
				Uses: strPtr("actions-rs/cargo@v1"),
				With: map[string]interface{}{
					"command":        "clippy",
					"args":           "--all-features -- -D warnings",
					"use-cross":      false,
					"retry-attempts": 3,
				},
			},
		},
		{
			description: "run step with env",
			subject: raw.Step{
				Run: strPtr("cargo fmt -- --check"),
				Env: map[string]string{"RUSTFLAGS": "-D warnings"},
			},
		},
		{
			description: "neither uses nor run",
			subject:     raw.Step{},
			expErr:      "exactly one of uses or run is required",
		},
		{
			description: "both uses and run",
			subject: raw.Step{
				Uses: strPtr("actions/checkout@v4"),
				Run:  strPtr("echo hi"),
			},
			expErr: "exactly one of uses or run is required",
		},
		{
			description: "empty action reference",
			subject: raw.Step{
				Uses: strPtr("  "),
			},
			expErr: "uses: action reference must not be empty",
		},
		{
			description: "empty command",
			subject: raw.Step{
				Run: strPtr(""),
			},
			expErr: "run: command must not be empty",
		},
		{
			description: "with on a run step",
			subject: raw.Step{
				Run:  strPtr("make"),
				With: map[string]interface{}{"target": "all"},
			},
			expErr: "with: only valid on uses steps",
		},
		{
			description: "env on a uses step",
			subject: raw.Step{
				Uses: strPtr("actions/checkout@v4"),
				Env:  map[string]string{"A": "b"},
			},
			expErr: "env: only valid on run steps",
		},
		{
			description: "null param value",
			subject: raw.Step{
				Uses: strPtr("actions/checkout@v4"),
				With: map[string]interface{}{"token": nil},
			},
			expErr: "with: key \"token\": value must be a string or boolean, not null",
		},
		{
			description: "nested param value",
			subject: raw.Step{
				Uses: strPtr("actions/checkout@v4"),
				With: map[string]interface{}{"matrix": map[interface{}]interface{}{"os": "linux"}},
			},
			expErr: "with: key \"matrix\": value must be a string or boolean",
		},
		{
			description: "list param value",
			subject: raw.Step{
				Uses: strPtr("actions/checkout@v4"),
				With: map[string]interface{}{"paths": []interface{}{"a", "b"}},
			},
			expErr: "with: key \"paths\": value must be a string or boolean",
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

func TestStep_ToValid(t *testing.T) {
	subject := raw.Step{
		Name: strPtr("Clippy"),
		Uses: strPtr("actions-rs/cargo@v1"),
		With: map[string]interface{}{
			"command":   "clippy",
			"use-cross": true,
			"retries":   2,
			"timeout":   1.5,
		},
	}

	step := subject.ToValid()
	assert.Equal(t, "Clippy", step.Name)
	assert.Equal(t, "actions-rs/cargo@v1", step.Uses)
	assert.True(t, step.IsAction())

	assert.Equal(t, valid.StringParam("clippy"), step.With["command"])
	assert.Equal(t, valid.BoolParam(true), step.With["use-cross"])
	// numeric scalars are normalized to their string form
	assert.Equal(t, valid.StringParam("2"), step.With["retries"])
	assert.Equal(t, valid.StringParam("1.5"), step.With["timeout"])
}

func TestStep_ToValid_RunStep(t *testing.T) {
	subject := raw.Step{
		Run: strPtr("cargo test --features std"),
		Env: map[string]string{"RUST_BACKTRACE": "1"},
	}

	step := subject.ToValid()
	assert.Equal(t, "cargo test --features std", step.Run)
	assert.False(t, step.IsAction())
	assert.Equal(t, map[string]string{"RUST_BACKTRACE": "1"}, step.Env)
	assert.Nil(t, step.With)
}
