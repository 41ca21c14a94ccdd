package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/webtest-hq/browser-test-harness/framework/runner"
)

var consoleErrorColor = color.New(color.FgYellow)               //nolint:gochecknoglobals
var consoleFailedColor = color.New(color.FgRed)                 //nolint:gochecknoglobals
var consoleSkippedColor = color.New(color.Faint, color.FgBlue)  //nolint:gochecknoglobals
var consoleAllPassedColor = color.New(color.FgGreen)            //nolint:gochecknoglobals

// ConsoleSink prints each record as it arrives and keeps a tally so the CLI
// can print a closing summary and choose its exit code.
type ConsoleSink struct {
	Output io.Writer // defaults to os.Stdout

	lock     sync.Mutex
	failures []runner.Record
	counts   map[runner.ResultKind]int
}

func (c *ConsoleSink) Write(rec runner.Record) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.counts == nil {
		c.counts = make(map[runner.ResultKind]int)
	}
	c.counts[rec.Result]++

	out := c.out()
	name := rec.Test
	if rec.SetName != "" {
		name += " [" + rec.SetName + "]"
	}
	switch rec.Result {
	case runner.ResultSuccess:
		fmt.Fprintf(out, "[%s] %s\n", rec.TestFile, name)
	case runner.ResultSkipped:
		_, _ = consoleSkippedColor.Fprintf(out, "[%s] SKIPPED: %s\n", rec.TestFile, name)
	case runner.ResultError:
		_, _ = consoleErrorColor.Fprintf(out, "[%s] ERROR: %s\n", rec.TestFile, name)
		c.printErrors(out, rec)
		c.failures = append(c.failures, rec)
	default:
		_, _ = consoleFailedColor.Fprintf(out, "[%s] FAILED: %s\n", rec.TestFile, name)
		c.printErrors(out, rec)
		c.failures = append(c.failures, rec)
	}
	return nil
}

func (c *ConsoleSink) printErrors(out io.Writer, rec runner.Record) {
	for _, e := range rec.Errors {
		for _, line := range strings.Split(e.Message, "\n") {
			_, _ = consoleErrorColor.Fprintf(out, "  %s\n", line)
		}
	}
}

// OK reports whether the run should exit clean: no failures, code errors, or
// advisory-error records. Skipped records never fail a run.
func (c *ConsoleSink) OK() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.failures) == 0
}

// PrintSummary writes the closing tally after all unit-runs finished.
func (c *ConsoleSink) PrintSummary() {
	c.lock.Lock()
	defer c.lock.Unlock()
	out := c.out()
	if len(c.failures) == 0 {
		_, _ = consoleAllPassedColor.Fprintf(out, "All tests passed (%d success, %d skipped)\n",
			c.counts[runner.ResultSuccess], c.counts[runner.ResultSkipped])
		return
	}
	_, _ = consoleFailedColor.Fprintf(out, "FAILED TESTS (%d):\n", len(c.failures))
	for _, rec := range c.failures {
		_, _ = consoleFailedColor.Fprintf(out, "  * %s/%s\n", rec.TestFile, rec.Test)
	}
}

func (c *ConsoleSink) out() io.Writer {
	if c.Output != nil {
		return c.Output
	}
	return os.Stdout
}
