package runner

// ResultKind is the closed set of outcomes a logical record can have. The
// string values are part of the report wire format.
type ResultKind string

const (
	ResultSuccess   ResultKind = "success"
	ResultFailure   ResultKind = "failure"
	ResultError     ResultKind = "error"
	ResultCodeError ResultKind = "code error"
	ResultSkipped   ResultKind = "skipped"
)

// ErrorEntry is one error accumulated during a logical record. Message is the
// short form; Description carries the full trace when one exists.
type ErrorEntry struct {
	Message     string
	Description string
}

// StepEntry is one step logged during a logical record. Error points at the
// ErrorEntry that produced the step, if any.
type StepEntry struct {
	Message    string
	Screenshot string
	Error      *ErrorEntry
}

// Record is the result of one logical record (a hook or test function
// execution). Its field set is fixed at exactly these twelve fields; report
// sinks serialize all of them and consumers parse all of them. A Record is
// immutable once emitted.
type Record struct {
	TestFile    string
	Test        string
	SetName     string
	TestData    map[string]string
	Browser     string
	Environment string
	Description string
	Steps       []StepEntry
	Errors      []ErrorEntry
	Result      ResultKind
	ElapsedTime float64
	Timestamp   string
}

// Sink receives every Record emitted by a unit-run, in emission order.
// Implementations must be append-only.
type Sink interface {
	Write(Record) error
}
