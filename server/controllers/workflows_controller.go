package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	tally "github.com/uber-go/tally/v4"

	internal "github.com/flowlint/flowlint/server/context"
	"github.com/flowlint/flowlint/server/core/config/valid"
	"github.com/flowlint/flowlint/server/logging"
	"github.com/flowlint/flowlint/server/metrics"
	"github.com/flowlint/flowlint/server/registry"
	"github.com/flowlint/flowlint/server/reports"
)

// maxDocumentSize caps request bodies. Workflow documents are small; anything
// bigger than this is not one.
const maxDocumentSize = 1 << 20

var workflowNameRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

type ValidateResponse struct {
	ID       string   `json:"id"`
	Valid    bool     `json:"valid"`
	Findings []string `json:"findings"`
}

type WorkflowResponse struct {
	Name     string          `json:"name"`
	Document string          `json:"document"`
	Workflow WorkflowDetails `json:"workflow"`
}

type WorkflowDetails struct {
	Version          int                   `json:"version"`
	Name             string                `json:"name,omitempty"`
	On               []string              `json:"on"`
	MinRunnerVersion string                `json:"min_runner_version,omitempty"`
	MaxParallel      int                   `json:"max-parallel"`
	Jobs             map[string]JobDetails `json:"jobs"`
}

type JobDetails struct {
	Name           string        `json:"name"`
	RunsOn         string        `json:"runs-on"`
	TimeoutMinutes int           `json:"timeout-minutes"`
	Steps          []StepDetails `json:"steps"`
}

type StepDetails struct {
	Name string                      `json:"name,omitempty"`
	Uses string                      `json:"uses,omitempty"`
	Run  string                      `json:"run,omitempty"`
	With map[string]valid.ParamValue `json:"with,omitempty"`
	Env  map[string]string           `json:"env,omitempty"`
}

type ListResponse struct {
	Workflows []string `json:"workflows"`
}

type TriggersResponse struct {
	Event   string   `json:"event"`
	Matched bool     `json:"matched"`
	Jobs    []string `json:"jobs"`
}

type workflowParser interface {
	ParseWorkflowCfgData(data []byte, sourceName string) (valid.Workflow, error)
}

// WorkflowsController serves the validate and registry endpoints.
type WorkflowsController struct {
	Parser   workflowParser
	Registry *registry.Registry
	Reports  reports.Store
	Logger   logging.Logger
	Scope    tally.Scope
}

// Validate parses the request body as a workflow document and reports every
// finding. The outcome is kept in the reports store under the returned id.
func (c *WorkflowsController) Validate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	source := r.URL.Query().Get("source")
	if source == "" {
		source = "request"
	}
	ctx = internal.WithSource(ctx, source)
	scope := c.Scope.SubScope("validate").Tagged(map[string]string{metrics.SourceTag: source})

	document, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentSize))
	if err != nil {
		scope.Counter(metrics.ValidationErrorMetric).Inc(1)
		c.respond(ctx, w, http.StatusBadRequest, "reading request body: %s", err)
		return
	}

	reportID := uuid.New().String()
	if err := c.Reports.Open(reportID, source); err != nil {
		c.respond(ctx, w, http.StatusInternalServerError, "opening report: %s", err)
		return
	}

	response := ValidateResponse{
		ID:       reportID,
		Valid:    true,
		Findings: []string{},
	}
	if _, err := c.Parser.ParseWorkflowCfgData(document, source); err != nil {
		response.Valid = false
		response.Findings = append(response.Findings, err.Error())
		if appendErr := c.Reports.AppendFinding(reportID, err.Error()); appendErr != nil {
			c.Logger.ErrorContext(ctx, appendErr.Error())
		}
		scope.Counter(metrics.ValidationInvalidMetric).Inc(1)
	} else {
		scope.Counter(metrics.ValidationValidMetric).Inc(1)
	}

	if err := c.Reports.Complete(reportID, response.Valid); err != nil {
		c.Logger.ErrorContext(ctx, err.Error())
	}

	c.respondJSON(ctx, w, http.StatusOK, response)
}

// Save registers the document in the body under the name in the path. The
// document must be valid; invalid documents are rejected, not stored.
func (c *WorkflowsController) Save(w http.ResponseWriter, r *http.Request) {
	name, ok := mux.Vars(r)["name"]
	ctx := internal.WithWorkflow(r.Context(), name)
	if !ok || !workflowNameRegex.MatchString(name) {
		c.respond(ctx, w, http.StatusBadRequest, "workflow name %q must match %q", name, workflowNameRegex.String())
		return
	}

	document, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentSize))
	if err != nil {
		c.respond(ctx, w, http.StatusBadRequest, "reading request body: %s", err)
		return
	}

	workflow, err := c.Parser.ParseWorkflowCfgData(document, name)
	if err != nil {
		c.respond(ctx, w, http.StatusUnprocessableEntity, "workflow %q is invalid: %s", name, err)
		return
	}

	_, getErr := c.Registry.Get(name)
	replacing := getErr == nil

	if err := c.Registry.Save(name, document, workflow); err != nil {
		c.respond(ctx, w, http.StatusInternalServerError, "storing workflow %q: %s", name, err)
		return
	}

	code := http.StatusCreated
	if replacing {
		code = http.StatusOK
	}
	c.respond(ctx, w, code, "stored workflow %q", name)
}

// Get returns the registered workflow: the original document plus the parsed
// form.
func (c *WorkflowsController) Get(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	ctx := internal.WithWorkflow(r.Context(), name)

	stored, err := c.Registry.Get(name)
	if errors.Is(err, registry.ErrNotFound) {
		c.respond(ctx, w, http.StatusNotFound, "workflow %q is not registered", name)
		return
	}
	if err != nil {
		c.respond(ctx, w, http.StatusInternalServerError, "reading workflow %q: %s", name, err)
		return
	}

	c.respondJSON(ctx, w, http.StatusOK, WorkflowResponse{
		Name:     stored.Name,
		Document: string(stored.Document),
		Workflow: toWorkflowDetails(stored.Workflow),
	})
}

// List returns the names of all registered workflows.
func (c *WorkflowsController) List(w http.ResponseWriter, r *http.Request) {
	c.respondJSON(r.Context(), w, http.StatusOK, ListResponse{
		Workflows: c.Registry.List(),
	})
}

// Delete removes a registered workflow.
func (c *WorkflowsController) Delete(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	ctx := internal.WithWorkflow(r.Context(), name)

	err := c.Registry.Delete(name)
	if errors.Is(err, registry.ErrNotFound) {
		c.respond(ctx, w, http.StatusNotFound, "workflow %q is not registered", name)
		return
	}
	if err != nil {
		c.respond(ctx, w, http.StatusInternalServerError, "deleting workflow %q: %s", name, err)
		return
	}
	c.respond(ctx, w, http.StatusOK, "deleted workflow %q", name)
}

// Triggers returns the jobs of a registered workflow that an event would run.
func (c *WorkflowsController) Triggers(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name := vars["name"]
	event := vars["event"]
	ctx := internal.WithWorkflow(r.Context(), name)

	stored, err := c.Registry.Get(name)
	if errors.Is(err, registry.ErrNotFound) {
		c.respond(ctx, w, http.StatusNotFound, "workflow %q is not registered", name)
		return
	}
	if err != nil {
		c.respond(ctx, w, http.StatusInternalServerError, "reading workflow %q: %s", name, err)
		return
	}

	c.Scope.SubScope("triggers").Tagged(map[string]string{
		metrics.WorkflowTag: name,
		metrics.EventTag:    event,
	}).Counter(metrics.ExecutionSuccessMetric).Inc(1)

	jobs := stored.Workflow.JobsFor(event)
	c.respondJSON(ctx, w, http.StatusOK, TriggersResponse{
		Event:   event,
		Matched: jobs != nil,
		Jobs:    jobs,
	})
}

// Healthz always returns 200 while the server is up.
func (c *WorkflowsController) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintln(w, `{"status":"ok"}`) // nolint: errcheck
}

func (c *WorkflowsController) respond(ctx context.Context, w http.ResponseWriter, code int, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	if code >= http.StatusInternalServerError {
		c.Logger.ErrorContext(ctx, message)
	} else if code >= http.StatusBadRequest {
		c.Logger.WarnContext(ctx, message)
	} else {
		c.Logger.InfoContext(ctx, message)
	}
	w.WriteHeader(code)
	fmt.Fprintln(w, message) // nolint: errcheck
}

func (c *WorkflowsController) respondJSON(ctx context.Context, w http.ResponseWriter, code int, body interface{}) {
	data, err := json.Marshal(body)
	if err != nil {
		c.respond(ctx, w, http.StatusInternalServerError, "marshaling response: %s", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(data) // nolint: errcheck
}

func toWorkflowDetails(workflow valid.Workflow) WorkflowDetails {
	jobs := make(map[string]JobDetails, len(workflow.Jobs))
	for key, job := range workflow.Jobs {
		steps := make([]StepDetails, 0, len(job.Steps))
		for _, step := range job.Steps {
			steps = append(steps, StepDetails{
				Name: step.Name,
				Uses: step.Uses,
				Run:  step.Run,
				With: step.With,
				Env:  step.Env,
			})
		}
		jobs[key] = JobDetails{
			Name:           job.Name,
			RunsOn:         job.RunsOn,
			TimeoutMinutes: job.TimeoutMinutes.Value(),
			Steps:          steps,
		}
	}

	details := WorkflowDetails{
		Version:     workflow.Version,
		Name:        workflow.Name,
		On:          workflow.On,
		MaxParallel: workflow.MaxParallel.Value(),
		Jobs:        jobs,
	}
	if workflow.MinRunnerVersion != nil {
		details.MinRunnerVersion = workflow.MinRunnerVersion.String()
	}
	return details
}
