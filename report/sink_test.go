package report

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webtest-hq/browser-test-harness/framework/runner"
)

type collectingSink struct {
	records []runner.Record
	err     error
}

func (s *collectingSink) Write(rec runner.Record) error {
	s.records = append(s.records, rec)
	return s.err
}

func TestMultiSinkFansOutInOrder(t *testing.T) {
	a, b := &collectingSink{}, &collectingSink{}
	m := &MultiSink{Sinks: []runner.Sink{a, b}}

	for _, name := range []string{"test_one", "test_two"} {
		require.NoError(t, m.Write(runner.Record{Test: name}))
	}
	require.Len(t, a.records, 2)
	require.Len(t, b.records, 2)
	assert.Equal(t, "test_one", a.records[0].Test)
	assert.Equal(t, "test_two", b.records[1].Test)
}

func TestMultiSinkKeepsWritingPastAFailedSink(t *testing.T) {
	bad := &collectingSink{err: errors.New("disk full")}
	good := &collectingSink{}
	m := &MultiSink{Sinks: []runner.Sink{bad, good}}

	err := m.Write(runner.Record{Test: "test_one"})
	assert.EqualError(t, err, "disk full")
	assert.Len(t, good.records, 1)
}

func TestConsoleSinkTalliesResults(t *testing.T) {
	var buf bytes.Buffer
	c := &ConsoleSink{Output: &buf}

	require.NoError(t, c.Write(runner.Record{TestFile: "login", Test: "test_ok", Result: runner.ResultSuccess}))
	require.NoError(t, c.Write(runner.Record{TestFile: "login", Test: "test_skip", Result: runner.ResultSkipped}))
	assert.True(t, c.OK())

	require.NoError(t, c.Write(runner.Record{
		TestFile: "login", Test: "test_bad", Result: runner.ResultFailure,
		Errors: []runner.ErrorEntry{{Message: "Failure: nope"}},
	}))
	assert.False(t, c.OK())

	c.PrintSummary()
	out := buf.String()
	assert.Contains(t, out, "[login] test_ok")
	assert.Contains(t, out, "SKIPPED: test_skip")
	assert.Contains(t, out, "FAILED: test_bad")
	assert.Contains(t, out, "FAILED TESTS (1):")
}
