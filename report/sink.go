// Package report contains the sinks that persist or display the result
// records produced by the runner. The JSON file sink defines the wire format
// that downstream tooling parses; the other sinks are alternative transports
// for the same records.
package report

import (
	"github.com/webtest-hq/browser-test-harness/framework/runner"
)

// MultiSink fans every record out to several sinks in order. A failing sink
// does not prevent the remaining sinks from receiving the record; the first
// error is returned.
type MultiSink struct {
	Sinks []runner.Sink
}

func (m *MultiSink) Write(rec runner.Record) error {
	var firstErr error
	for _, s := range m.Sinks {
		if err := s.Write(rec); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
