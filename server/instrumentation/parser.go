// Package instrumentation wraps core components with stats emission.
package instrumentation

import (
	tally "github.com/uber-go/tally/v4"

	"github.com/flowlint/flowlint/server/core/config/valid"
	"github.com/flowlint/flowlint/server/metrics"
)

type workflowParser interface {
	ParseWorkflowCfgData(data []byte, sourceName string) (valid.Workflow, error)
}

// WorkflowParser times every parse and counts the outcomes.
type WorkflowParser struct {
	Delegate workflowParser
	Scope    tally.Scope
}

func (p *WorkflowParser) ParseWorkflowCfgData(data []byte, sourceName string) (valid.Workflow, error) {
	scope := p.Scope.SubScope("parse")

	executionTime := scope.Timer(metrics.ExecutionTimeMetric).Start()
	defer executionTime.Stop()

	executionSuccess := scope.Counter(metrics.ExecutionSuccessMetric)
	executionFailure := scope.Counter(metrics.ExecutionFailureMetric)

	workflow, err := p.Delegate.ParseWorkflowCfgData(data, sourceName)
	if err != nil {
		executionFailure.Inc(1)
		return workflow, err
	}

	executionSuccess.Inc(1)
	return workflow, nil
}
