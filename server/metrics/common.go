package metrics

const (
	ExecutionTimeMetric    = "execution_time"
	ExecutionSuccessMetric = "execution_success"
	ExecutionFailureMetric = "execution_failure"

	// Validation outcomes. "error" means we couldn't even read the input,
	// "invalid" means the document parsed but failed validation.
	ValidationValidMetric   = "valid"
	ValidationInvalidMetric = "invalid"
	ValidationErrorMetric   = "error"

	RegistrySaveMetric   = "save"
	RegistryDeleteMetric = "delete"

	SourceTag   = "source"
	WorkflowTag = "workflow"
	EventTag    = "event"
)
