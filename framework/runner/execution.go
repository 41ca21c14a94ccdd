package runner

import (
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/webtest-hq/browser-test-harness/framework"
)

const failurePrefix = "Failure: "

// failureSignal is the panic value used by Execution.Fail. The sequencer's
// recover logic distinguishes it from any other panic.
type failureSignal struct {
	message string
}

// Execution is the signal channel for one unit-run: the mutable state that
// body code (hooks and test functions) reports into. Steps, Errors and Timers
// are reset by the sequencer immediately before each logical record begins, so
// no two records ever share accumulated state.
//
// An Execution is owned by exactly one unit-run and is never used from more
// than one goroutine; hooks and functions run strictly sequentially.
type Execution struct {
	TestFile    string
	TestName    string
	Project     string
	Environment string
	ReportDir   string

	// Driver is the opaque browser handle. The engine never inspects it; it
	// exists only so body code can reach whatever driver the caller provided.
	Driver any

	Data     map[string]ldvalue.Value
	Settings map[string]ldvalue.Value
	Logger   framework.Logger

	Steps  []StepEntry
	Errors []ErrorEntry
	Timers map[string]time.Duration

	secrets     map[string]ldvalue.Value
	timerStarts map[string]time.Time
}

// Step appends a plain step entry. It never fails and never interrupts the
// running body.
func (e *Execution) Step(message string) {
	e.Steps = append(e.Steps, StepEntry{Message: message})
	e.Logger.Println(message)
}

// Error records an advisory error and a step pointing at it. Control flow
// continues; the error only affects classification if nothing worse happens.
func (e *Execution) Error(message string) {
	entry := ErrorEntry{Message: message, Description: message}
	e.Errors = append(e.Errors, entry)
	e.Steps = append(e.Steps, StepEntry{Message: message, Error: &entry})
	e.Logger.Println(message)
}

// Fail records a failure signal and aborts the remainder of the current hook
// or function body immediately.
func (e *Execution) Fail(message string) {
	entry := ErrorEntry{Message: failurePrefix + message, Description: failurePrefix + message}
	e.Errors = append(e.Errors, entry)
	e.Steps = append(e.Steps, StepEntry{Message: "Failure", Error: &entry})
	e.Logger.Println(entry.Message)
	panic(failureSignal{message: message})
}

// Screenshot appends a step that references a stored screenshot file.
func (e *Execution) Screenshot(message, path string) {
	e.Steps = append(e.Steps, StepEntry{Message: message, Screenshot: path})
	e.Logger.Println(message)
}

// Secret returns a secret value by name. Secrets are available to body code
// but are never copied into records.
func (e *Execution) Secret(name string) ldvalue.Value {
	return e.secrets[name]
}

// StartTimer begins a named timer. Calling it again for the same name
// restarts the timer.
func (e *Execution) StartTimer(name string) {
	if e.timerStarts == nil {
		e.timerStarts = make(map[string]time.Time)
	}
	e.timerStarts[name] = time.Now()
}

// StopTimer stops a named timer and records its duration. Stopping a timer
// that was never started records zero.
func (e *Execution) StopTimer(name string) time.Duration {
	started, ok := e.timerStarts[name]
	if !ok {
		return 0
	}
	delete(e.timerStarts, name)
	d := time.Since(started)
	if e.Timers == nil {
		e.Timers = make(map[string]time.Duration)
	}
	e.Timers[name] = d
	return d
}

// reset clears all per-record state and rebinds the record identity. Called
// by the sequencer before each logical record.
func (e *Execution) reset(testName, reportDir string) {
	e.TestName = testName
	e.ReportDir = reportDir
	e.Steps = nil
	e.Errors = nil
	e.Timers = map[string]time.Duration{}
	e.timerStarts = nil
}

// snapshotSteps copies the accumulated steps so a Record stays immutable
// after the channel is reset.
func (e *Execution) snapshotSteps() []StepEntry {
	return append([]StepEntry{}, e.Steps...)
}

func (e *Execution) snapshotErrors() []ErrorEntry {
	return append([]ErrorEntry{}, e.Errors...)
}
