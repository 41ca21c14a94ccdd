package runner

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/webtest-hq/browser-test-harness/framework"
)

// BrowserDefinition identifies the browser a unit-run targets. The engine
// only ever copies the name into records; capabilities are for callers that
// want to skip units a driver service cannot serve.
type BrowserDefinition struct {
	Name         string
	Capabilities framework.Capabilities
}

// RunContext is the per-unit-run state: identity, the opaque driver handle,
// settings, and secrets. It is created once per unit-run and discarded at the
// end; nothing in it is shared between concurrent unit-runs except whatever
// the caller chooses to share through the driver handle.
type RunContext struct {
	TestFile    string
	Project     string
	Browser     BrowserDefinition
	Driver      any
	Environment string
	Settings    map[string]ldvalue.Value
	ReportDir   string
	Secrets     map[string]ldvalue.Value
	FromSuite   bool
	Logger      framework.Logger
}

// UnitRunner executes test units: it loads a unit through its Provider,
// iterates the unit's data sets, drives one hook-sequencer pass per set, and
// forwards every emitted record to its Sink.
type UnitRunner struct {
	provider Provider
	sink     Sink
	filter   Filter
}

func NewUnitRunner(provider Provider, sink Sink) *UnitRunner {
	return &UnitRunner{provider: provider, sink: sink}
}

// WithFilter restricts which test functions run. Functions excluded by the
// filter produce no records at all.
func (r *UnitRunner) WithFilter(filter Filter) *UnitRunner {
	r.filter = filter
	return r
}

// RunUnit executes one unit against one RunContext. The returned error only
// reports sink write failures; test failures are expressed through records,
// never through the error return.
func (r *UnitRunner) RunUnit(ctx RunContext, source []byte) error {
	logger := ctx.Logger
	if logger == nil {
		logger = framework.NullLogger()
	}
	logger.Printf("Test execution started: %s", ctx.TestFile)
	logger.Printf("Browser: %s", ctx.Browser.Name)

	def, err := r.provider.Load(source)
	if err != nil {
		return r.emitLoadFailure(ctx, logger, err)
	}

	sets := def.DataSets
	if len(sets) == 0 {
		sets = []DataSet{{}}
	}

	var sinkErrs []error
	for i, set := range sets {
		setName := ""
		if len(sets) > 1 {
			setName = set.Name
			if setName == "" {
				setName = strconv.Itoa(i + 1)
			}
		}
		if len(set.Values) > 0 {
			logger.Printf("Using data:\n%s", formatDataValues(set.Values))
		}

		exec := &Execution{
			TestFile:    ctx.TestFile,
			Project:     ctx.Project,
			Environment: ctx.Environment,
			ReportDir:   ctx.ReportDir,
			Driver:      ctx.Driver,
			Data:        set.Values,
			Settings:    ctx.Settings,
			Logger:      logger,
			secrets:     ctx.Secrets,
		}
		testData := stringifyDataValues(set.Values)
		seq := &sequencer{
			def:       def,
			exec:      exec,
			logger:    logger,
			fromSuite: ctx.FromSuite,
			filter:    r.filter,
			emit: func(name string, out recordOutcome) {
				rec := Record{
					TestFile:    ctx.TestFile,
					Test:        name,
					SetName:     setName,
					TestData:    testData,
					Browser:     ctx.Browser.Name,
					Environment: ctx.Environment,
					Description: def.Description,
					Steps:       out.steps,
					Errors:      out.errors,
					Result:      out.kind,
					ElapsedTime: out.elapsed,
					Timestamp:   out.timestamp,
				}
				if werr := r.sink.Write(rec); werr != nil {
					sinkErrs = append(sinkErrs, werr)
				}
			},
		}
		seq.run()
	}
	return errors.Join(sinkErrs...)
}

// emitLoadFailure produces the single synthetic "setup" record that stands in
// for the whole unit-run when the unit source cannot be loaded. Description
// and browser are blank because nothing could be read from the unit.
func (r *UnitRunner) emitLoadFailure(ctx RunContext, logger framework.Logger, err error) error {
	entry := ErrorEntry{Message: err.Error(), Description: err.Error()}
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		entry = ErrorEntry{Message: loadErr.Message, Description: loadErr.Trace}
	}
	logger.Println(entry.Description)
	return r.sink.Write(Record{
		TestFile:  ctx.TestFile,
		Test:      HookSetupAlias,
		TestData:  map[string]string{},
		Errors:    []ErrorEntry{entry},
		Result:    ResultCodeError,
		Timestamp: time.Now().Format(recordTimestampFormat),
	})
}

// formatDataValues renders a data set for the "Using data:" notice, one
// indented key per line in sorted order.
func formatDataValues(values map[string]ldvalue.Value) string {
	keys := maps.Keys(values)
	slices.Sort(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("    %s: %s", k, plainValueString(values[k])))
	}
	return strings.Join(lines, "\n")
}

// stringifyDataValues produces the test_data record field: every value in its
// JSON representation, keyed by name. Secrets never pass through here.
func stringifyDataValues(values map[string]ldvalue.Value) map[string]string {
	ret := make(map[string]string, len(values))
	for k, v := range values {
		ret[k] = v.JSONString()
	}
	return ret
}

func plainValueString(v ldvalue.Value) string {
	if v.Type() == ldvalue.StringType {
		return v.StringValue()
	}
	return v.JSONString()
}
