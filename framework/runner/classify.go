package runner

// OutcomeKind says how a hook or function body finished.
type OutcomeKind int

const (
	// OutcomeCompleted means the body ran to the end, whether or not it
	// recorded advisory errors along the way.
	OutcomeCompleted OutcomeKind = iota
	// OutcomeFailure means the body was aborted by an explicit failure signal
	// (Execution.Fail).
	OutcomeFailure
	// OutcomePanic means the body was aborted by anything other than a
	// failure signal, including defects in the body code itself and failures
	// to load the unit.
	OutcomePanic
)

// BodyOutcome is the tagged result of running one body. Keeping this a closed
// variant set (rather than letting panics escape as unstructured conditions)
// is what lets Classify be a total pure function.
type BodyOutcome struct {
	Kind    OutcomeKind
	Message string
	Trace   string
}

func Completed() BodyOutcome {
	return BodyOutcome{Kind: OutcomeCompleted}
}

func AbortedByFailure(message string) BodyOutcome {
	return BodyOutcome{Kind: OutcomeFailure, Message: message}
}

func AbortedByPanic(message, trace string) BodyOutcome {
	return BodyOutcome{Kind: OutcomePanic, Message: message, Trace: trace}
}

// Classify maps the outcome of one body plus its accumulated errors to a
// ResultKind. A failure signal wins over everything so a deliberate
// assertion-style failure is never mistaken for a defect; any other abort is
// a code error; advisory errors only count when the body completed.
//
// Classify never returns ResultSkipped: skips are assigned directly by the
// sequencer and bypass classification entirely.
func Classify(outcome BodyOutcome, errors []ErrorEntry) ResultKind {
	switch {
	case outcome.Kind == OutcomeFailure:
		return ResultFailure
	case outcome.Kind == OutcomePanic:
		return ResultCodeError
	case len(errors) > 0:
		return ResultError
	default:
		return ResultSuccess
	}
}
