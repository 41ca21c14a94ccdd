package runner

import (
	"strings"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

// Canonical hook names and their deprecated aliases.
const (
	HookBeforeTest = "before_test"
	HookAfterTest  = "after_test"
	HookBeforeEach = "before_each"
	HookAfterEach  = "after_each"

	HookSetupAlias    = "setup"
	HookTeardownAlias = "teardown"
)

// testFunctionPrefix is the naming convention that decides which functions in
// a unit are test functions.
const testFunctionPrefix = "test"

// Body is an executable hook or test function. Body code reports into the
// Execution and may abort it with Fail; any other panic is treated as a
// defect in the body.
type Body func(*Execution)

// Function is one named callable from a test unit, in declaration order.
type Function struct {
	Name string
	Body Body
}

// Hook is a lifecycle callable. Name is the name it was declared under in the
// unit, which is also the name used for its record when it does not succeed.
// Deprecated is true when the unit used a legacy alias (setup/teardown)
// instead of the canonical name.
type Hook struct {
	Name       string
	Body       Body
	Deprecated bool
}

// Canonical returns the canonical spelling for a hook name, which for the
// legacy aliases differs from the declared name.
func (h *Hook) Canonical() string {
	switch h.Name {
	case HookSetupAlias:
		return HookBeforeTest
	case HookTeardownAlias:
		return HookAfterTest
	default:
		return h.Name
	}
}

// Hooks holds the optional lifecycle callables of a unit. A nil entry means
// the unit did not declare that hook under either spelling.
type Hooks struct {
	BeforeTest *Hook
	AfterTest  *Hook
	BeforeEach *Hook
	AfterEach  *Hook
}

// DataSet is one named mapping of test data values. Name may be empty, in
// which case the runner derives a label from the set's position.
type DataSet struct {
	Name   string
	Values map[string]ldvalue.Value
}

// Definition is a loaded test unit. It is created once per unit-run by a
// Provider and never mutated afterwards.
type Definition struct {
	Description string
	Tags        []string
	Skip        bool
	Functions   []Function
	Hooks       Hooks
	DataSets    []DataSet
}

// TestFunctions returns the functions whose names match the test naming
// convention, preserving declaration order.
func (d *Definition) TestFunctions() []Function {
	var ret []Function
	for _, fn := range d.Functions {
		if strings.HasPrefix(fn.Name, testFunctionPrefix) {
			ret = append(ret, fn)
		}
	}
	return ret
}

// LoadError means a unit's source could not be turned into an executable
// definition. It always classifies as a code error.
type LoadError struct {
	Message string
	Trace   string
}

func (e *LoadError) Error() string { return e.Message }

// Provider turns unit source text into an executable Definition. A failed
// load should be reported as a *LoadError so the full trace reaches the
// report; any other error is carried with its plain message.
type Provider interface {
	Load(source []byte) (*Definition, error)
}
