package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webtest-hq/browser-test-harness/framework/runner"
)

func TestJUnitSinkWritesOneSuitePerTestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junit.xml")
	sink := NewJUnitSink(path)

	require.NoError(t, sink.Write(runner.Record{
		TestFile: "login", Test: "test_ok", Result: runner.ResultSuccess, ElapsedTime: 0.25,
	}))
	require.NoError(t, sink.Write(runner.Record{
		TestFile: "login", Test: "test_bad", Result: runner.ResultFailure,
		Errors: []runner.ErrorEntry{{Message: "Failure: wrong password"}},
		Steps:  []runner.StepEntry{{Message: "open page"}, {Message: "Failure"}},
	}))
	require.NoError(t, sink.Write(runner.Record{
		TestFile: "search", Test: "test_skipped", Result: runner.ResultSkipped,
	}))
	require.NoError(t, sink.Flush())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, `<testsuite tests="2" failures="1" skipped="0"`)
	assert.Contains(t, out, `name="login"`)
	assert.Contains(t, out, `name="search"`)
	assert.Contains(t, out, `<failure message="Failure: wrong password" type="failure">`)
	assert.Contains(t, out, "open page")
	assert.Contains(t, out, `<skipped message="skipped">`)
}

func TestJUnitSinkNamesCasesWithSetName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junit.xml")
	sink := NewJUnitSink(path)
	require.NoError(t, sink.Write(runner.Record{
		TestFile: "login", Test: "test_ok", SetName: "2", Result: runner.ResultSuccess,
	}))
	require.NoError(t, sink.Flush())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `name="test_ok [2]"`)
}
