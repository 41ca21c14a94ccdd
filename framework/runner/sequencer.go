package runner

import (
	"fmt"
	"math"
	"runtime/debug"
	"strings"
	"time"

	"github.com/webtest-hq/browser-test-harness/framework"
)

const recordTimestampFormat = "2006-01-02 15:04:05.000"

// recordOutcome is everything the sequencer knows about one finished logical
// record before identity fields are stamped on.
type recordOutcome struct {
	kind      ResultKind
	steps     []StepEntry
	errors    []ErrorEntry
	elapsed   float64
	timestamp string
}

// sequencer drives one full pass of the hook state machine for one data set:
//
//	BEFORE_UNIT -> [BEFORE_EACH -> BODY -> AFTER_EACH]* -> AFTER_UNIT
//
// (the LOAD state lives in UnitRunner, because a load failure short-circuits
// every data set). Once cascadeSkip is set, all remaining test functions in
// the data set are emitted as skipped without running any of their bodies.
type sequencer struct {
	def       *Definition
	exec      *Execution
	logger    framework.Logger
	fromSuite bool
	filter    Filter
	emit      func(name string, out recordOutcome)

	cascadeSkip       bool
	emitted           bool
	deprecationLogged map[string]bool
}

func (s *sequencer) run() {
	functions := s.matchedFunctions()

	if h := s.def.Hooks.BeforeTest; h != nil {
		out := s.runHook(h)
		if out.kind != ResultSuccess {
			s.emitRecord(h.Name, out)
			s.cascadeSkip = true
		}
	}

	for _, fn := range functions {
		s.runFunction(fn)
	}

	// The after-unit hook is unconditional: it runs even when everything
	// before it failed or was skipped. Only a load failure prevents it.
	if h := s.def.Hooks.AfterTest; h != nil {
		out := s.runHook(h)
		if out.kind != ResultSuccess {
			s.emitRecord(h.Name, out)
		}
	}

	if len(functions) == 0 && !s.emitted {
		s.logger.Printf("No tests were found for file: %s", s.exec.TestFile)
	}
}

func (s *sequencer) runFunction(fn Function) {
	if s.cascadeSkip || (s.def.Skip && s.fromSuite) {
		s.emitSkipped(fn.Name)
		return
	}

	if h := s.def.Hooks.BeforeEach; h != nil {
		out := s.runHook(h)
		if out.kind != ResultSuccess {
			s.emitRecord(h.Name, out)
			s.cascadeSkip = true
			s.emitSkipped(fn.Name)
			return
		}
	}

	s.logger.Printf("Test started: %s", fn.Name)
	out := s.runRecord(fn.Name, fn.Body)
	s.emitRecord(fn.Name, out)
	s.logger.Printf("Test Result: %s", strings.ToUpper(string(out.kind)))

	if out.kind != ResultSuccess {
		return
	}
	if h := s.def.Hooks.AfterEach; h != nil {
		hookOut := s.runHook(h)
		if hookOut.kind != ResultSuccess {
			s.emitRecord(h.Name, hookOut)
			s.cascadeSkip = true
		}
	}
}

func (s *sequencer) matchedFunctions() []Function {
	functions := s.def.TestFunctions()
	if s.filter == nil {
		return functions
	}
	var ret []Function
	for _, fn := range functions {
		if s.filter(fn.Name) {
			ret = append(ret, fn)
		}
	}
	return ret
}

// runHook runs a lifecycle hook body as its own logical record, emitting the
// one-time deprecation notice when the unit declared the hook under a legacy
// alias.
func (s *sequencer) runHook(h *Hook) recordOutcome {
	if h.Deprecated && !s.deprecationLogged[h.Name] {
		if s.deprecationLogged == nil {
			s.deprecationLogged = make(map[string]bool)
		}
		s.deprecationLogged[h.Name] = true
		s.logger.Printf("%s hook function is deprecated, use %s", h.Name, h.Canonical())
	}
	return s.runRecord(h.Name, h.Body)
}

// runRecord resets the signal channel, runs one body, and classifies it.
// Elapsed time and the timestamp are measured around the body only.
func (s *sequencer) runRecord(name string, body Body) recordOutcome {
	s.exec.reset(name, s.exec.ReportDir)
	started := time.Now()
	outcome := runBody(s.exec, body)
	elapsed := roundSeconds(time.Since(started))
	return recordOutcome{
		kind:      Classify(outcome, s.exec.Errors),
		steps:     s.exec.snapshotSteps(),
		errors:    s.exec.snapshotErrors(),
		elapsed:   elapsed,
		timestamp: started.Format(recordTimestampFormat),
	}
}

// runBody converts the three ways a body can finish into a BodyOutcome. A
// panic that is not a failure signal is recorded as an error entry carrying
// the stack trace, so the record shows what went wrong in declaration order
// relative to any advisory errors.
func runBody(exec *Execution, body Body) (outcome BodyOutcome) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if fs, ok := r.(failureSignal); ok {
			outcome = AbortedByFailure(fs.message)
			return
		}
		message := fmt.Sprintf("%v", r)
		trace := message + "\n" + string(debug.Stack())
		entry := ErrorEntry{Message: message, Description: trace}
		exec.Errors = append(exec.Errors, entry)
		exec.Steps = append(exec.Steps, StepEntry{Message: message, Error: &entry})
		exec.Logger.Println(trace)
		outcome = AbortedByPanic(message, trace)
	}()
	body(exec)
	return Completed()
}

func (s *sequencer) emitSkipped(name string) {
	s.logger.Printf("Test skipped: %s", name)
	s.emitRecord(name, recordOutcome{
		kind:      ResultSkipped,
		timestamp: time.Now().Format(recordTimestampFormat),
	})
}

func (s *sequencer) emitRecord(name string, out recordOutcome) {
	s.emitted = true
	s.emit(name, out)
}

func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}
