package ggbench

// Status strings shown outside of terminal outcomes.
const (
	StatusRunning   = "running..."
	StatusCannotRun = "Could not get a rendering context"
)

// OutcomeKind identifies the terminal outcome of a run.
type OutcomeKind int

const (
	// KindUnsupportedCapability: a required capability is missing; no frame
	// was scheduled.
	KindUnsupportedCapability OutcomeKind = iota

	// KindWorkloadError: the workload returned an error and the run stopped
	// on that frame.
	KindWorkloadError

	// KindContextError: the surface reported an unconsumed error when the
	// run finished.
	KindContextError

	// KindSuccess: the run collected enough samples.
	KindSuccess
)

// String returns the outcome kind name.
func (k OutcomeKind) String() string {
	switch k {
	case KindUnsupportedCapability:
		return "UnsupportedCapability"
	case KindWorkloadError:
		return "WorkloadError"
	case KindContextError:
		return "ContextError"
	case KindSuccess:
		return "Success"
	default:
		return "Unknown"
	}
}

// Outcome is the terminal result of a run. It is one of
// UnsupportedCapability, WorkloadError, ContextError or Success.
type Outcome interface {
	Kind() OutcomeKind

	// Status returns the human-readable status line for this outcome.
	Status() string

	// Result builds the notification payload for a run with the given
	// description.
	Result(description string) Result

	outcome()
}

// UnsupportedCapability reports the first required capability the surface
// lacks.
type UnsupportedCapability struct {
	Name string
}

// WorkloadError carries the message of the error returned by the workload.
type WorkloadError struct {
	Message string
}

// ContextError reports that the surface recorded an error during the run.
type ContextError struct{}

// Success carries the statistics of a completed run.
type Success struct {
	Report Report
}

func (UnsupportedCapability) Kind() OutcomeKind { return KindUnsupportedCapability }
func (WorkloadError) Kind() OutcomeKind         { return KindWorkloadError }
func (ContextError) Kind() OutcomeKind          { return KindContextError }
func (Success) Kind() OutcomeKind               { return KindSuccess }

func (o UnsupportedCapability) Status() string {
	return "Requires unsupported capability: " + o.Name
}
func (o WorkloadError) Status() string { return "Error: " + o.Message }
func (ContextError) Status() string    { return "A rendering context error occurred!" }
func (o Success) Status() string       { return o.Report.String() }

func (UnsupportedCapability) Result(description string) Result {
	return Result{TestDescription: description, Skip: true}
}

func (WorkloadError) Result(description string) Result {
	return Result{TestDescription: description, Error: true}
}

func (ContextError) Result(description string) Result {
	return Result{TestDescription: description, Error: true}
}

func (o Success) Result(description string) Result {
	median := o.Report.MedianMillis()
	return Result{TestDescription: description, TestResult: &median}
}

func (UnsupportedCapability) outcome() {}
func (WorkloadError) outcome()         {}
func (ContextError) outcome()          {}
func (Success) outcome()               {}

// Result is the one-shot notification emitted when a run stops. Exactly one
// of Skip, Error or TestResult is set.
type Result struct {
	TestDescription string `json:"testDescription"`
	Skip            bool   `json:"skip,omitempty"`
	Error           bool   `json:"error,omitempty"`

	// TestResult is the median frame duration in milliseconds.
	TestResult *float64 `json:"testResult,omitempty"`
}
