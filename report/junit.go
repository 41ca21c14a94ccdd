package report

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/webtest-hq/browser-test-harness/framework/runner"
)

// JUnitSink accumulates records and writes them as JUnit XML when Flush is
// called, one <testsuite> per test file. The schema follows the widely-parsed
// go-junit-report shape.
type JUnitSink struct {
	filePath string
	files    []string // preserves the order test files were first seen in
	records  map[string][]runner.Record
	lock     sync.Mutex
}

type jUnitXMLDocument struct {
	XMLName xml.Name            `xml:"testsuites"`
	Suites  []jUnitXMLTestSuite `xml:"testsuite"`
}

type jUnitXMLTestSuite struct {
	XMLName   xml.Name           `xml:"testsuite"`
	Tests     int                `xml:"tests,attr"`
	Failures  int                `xml:"failures,attr"`
	Skipped   int                `xml:"skipped,attr"`
	Time      string             `xml:"time,attr"`
	Name      string             `xml:"name,attr"`
	TestCases []jUnitXMLTestCase `xml:"testcase"`
}

type jUnitXMLTestCase struct {
	XMLName     xml.Name             `xml:"testcase"`
	Classname   string               `xml:"classname,attr"`
	Name        string               `xml:"name,attr"`
	Time        string               `xml:"time,attr"`
	SkipMessage *jUnitXMLSkipMessage `xml:"skipped,omitempty"`
	Failure     *jUnitXMLFailure     `xml:"failure,omitempty"`
}

type jUnitXMLSkipMessage struct {
	Message string `xml:"message,attr"`
}

type jUnitXMLFailure struct {
	Message  string `xml:"message,attr"`
	Type     string `xml:"type,attr"`
	Contents string `xml:",chardata"`
}

func NewJUnitSink(filePath string) *JUnitSink {
	return &JUnitSink{
		filePath: filePath,
		records:  make(map[string][]runner.Record),
	}
}

func (j *JUnitSink) Write(rec runner.Record) error {
	j.lock.Lock()
	defer j.lock.Unlock()
	if _, seen := j.records[rec.TestFile]; !seen {
		j.files = append(j.files, rec.TestFile)
	}
	j.records[rec.TestFile] = append(j.records[rec.TestFile], rec)
	return nil
}

// Flush writes everything collected so far to the configured path.
func (j *JUnitSink) Flush() error {
	j.lock.Lock()
	defer j.lock.Unlock()

	var doc jUnitXMLDocument
	for _, file := range j.files {
		suite := jUnitXMLTestSuite{Name: file}
		totalTime := 0.0
		for _, rec := range j.records[file] {
			suite.Tests++
			totalTime += rec.ElapsedTime

			testCase := jUnitXMLTestCase{
				Classname: file,
				Name:      caseName(rec),
				Time:      fmt.Sprintf("%.3f", rec.ElapsedTime),
			}
			switch rec.Result {
			case runner.ResultSkipped:
				suite.Skipped++
				testCase.SkipMessage = &jUnitXMLSkipMessage{Message: "skipped"}
			case runner.ResultFailure, runner.ResultError, runner.ResultCodeError:
				suite.Failures++
				testCase.Failure = &jUnitXMLFailure{
					Message:  joinErrorMessages(rec.Errors),
					Type:     string(rec.Result),
					Contents: stepTranscript(rec.Steps),
				}
			}
			suite.TestCases = append(suite.TestCases, testCase)
		}
		suite.Time = fmt.Sprintf("%.3f", totalTime)
		doc.Suites = append(doc.Suites, suite)
	}

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(j.filePath, data, 0o644) //nolint:gosec
}

func caseName(rec runner.Record) string {
	if rec.SetName == "" {
		return rec.Test
	}
	return rec.Test + " [" + rec.SetName + "]"
}

func joinErrorMessages(errs []runner.ErrorEntry) string {
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		messages = append(messages, e.Message)
	}
	return strings.Join(messages, "\n")
}

func stepTranscript(steps []runner.StepEntry) string {
	lines := make([]string, 0, len(steps))
	for _, s := range steps {
		lines = append(lines, s.Message)
	}
	return strings.Join(lines, "\n")
}
