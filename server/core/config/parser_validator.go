// Package config parses and validates workflow documents.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"

	"github.com/flowlint/flowlint/server/core/config/raw"
	"github.com/flowlint/flowlint/server/core/config/valid"
)

// WorkflowCfgFilename is the file we look for in a directory when detecting
// a workflow document.
const WorkflowCfgFilename = "workflow.yaml"

// ParserValidator parses and validates workflow documents. The document is
// read in full, strictly unmarshalled (unknown keys and duplicate job names
// are errors), validated against the raw schema and only then converted into
// the valid model.
type ParserValidator struct{}

// HasWorkflowCfg returns true if dir contains a workflow config file.
func (p *ParserValidator) HasWorkflowCfg(dir string) (bool, error) {
	// Look for the deprecated .yml extension and inform the user it won't
	// be picked up.
	ymlFile := "workflow.yml"
	if _, err := os.Stat(filepath.Join(dir, ymlFile)); err == nil {
		return false, errors.Errorf("found %q as config file; rename using the .yaml extension - %q", ymlFile, WorkflowCfgFilename)
	}

	_, err := os.Stat(filepath.Join(dir, WorkflowCfgFilename))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ParseWorkflowCfg reads and validates the workflow document at path.
func (p *ParserValidator) ParseWorkflowCfg(path string) (valid.Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return valid.Workflow{}, err
		}
		return valid.Workflow{}, errors.Wrapf(err, "unable to read %s file", filepath.Base(path))
	}
	return p.ParseWorkflowCfgData(data, filepath.Base(path))
}

// ParseWorkflowCfgData validates an in-memory workflow document. sourceName
// is used in error messages only.
func (p *ParserValidator) ParseWorkflowCfgData(data []byte, sourceName string) (valid.Workflow, error) {
	var rawWorkflow raw.Workflow
	if err := yaml.UnmarshalStrict(data, &rawWorkflow); err != nil {
		return valid.Workflow{}, errors.Wrapf(err, "parsing %s", sourceName)
	}
	if err := rawWorkflow.Validate(); err != nil {
		return valid.Workflow{}, err
	}
	return rawWorkflow.ToValid(), nil
}
