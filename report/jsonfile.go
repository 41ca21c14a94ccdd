package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/webtest-hq/browser-test-harness/framework/runner"
)

// reportFileName is the file each unit-run's records are written to, inside
// the sink's directory.
const reportFileName = "report.json"

// JSONFileSink writes records as a JSON array to <dir>/report.json. The file
// is rewritten after every record so that a crash mid-run still leaves a
// parseable report of everything emitted so far.
type JSONFileSink struct {
	dir     string
	records []runner.Record
	lock    sync.Mutex
}

func NewJSONFileSink(dir string) *JSONFileSink {
	return &JSONFileSink{dir: dir}
}

// Path returns the location of the report file.
func (s *JSONFileSink) Path() string {
	return filepath.Join(s.dir, reportFileName)
}

func (s *JSONFileSink) Write(rec runner.Record) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.records = append(s.records, rec)
	data, err := EncodeRecords(s.records)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.Path(), data, 0o644) //nolint:gosec
}

// EncodeRecords serializes records as the JSON array consumed by report
// tooling. Every record carries exactly the twelve contract fields.
func EncodeRecords(records []runner.Record) ([]byte, error) {
	w := jwriter.NewWriter()
	arr := w.Array()
	for _, rec := range records {
		writeRecord(arr.Object(), rec)
	}
	arr.End()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return append(w.Bytes(), '\n'), nil
}

// EncodeRecord serializes a single record as a JSON object.
func EncodeRecord(rec runner.Record) ([]byte, error) {
	w := jwriter.NewWriter()
	writeRecord(w.Object(), rec)
	if err := w.Error(); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func writeRecord(obj jwriter.ObjectState, rec runner.Record) {
	obj.Name("test_file").String(rec.TestFile)
	obj.Name("test").String(rec.Test)
	obj.Name("set_name").String(rec.SetName)

	dataObj := obj.Name("test_data").Object()
	keys := maps.Keys(rec.TestData)
	slices.Sort(keys)
	for _, k := range keys {
		dataObj.Name(k).String(rec.TestData[k])
	}
	dataObj.End()

	obj.Name("browser").String(rec.Browser)
	obj.Name("environment").String(rec.Environment)
	obj.Name("description").String(rec.Description)

	steps := obj.Name("steps").Array()
	for _, step := range rec.Steps {
		stepObj := steps.Object()
		stepObj.Name("message").String(step.Message)
		if step.Screenshot == "" {
			stepObj.Name("screenshot").Null()
		} else {
			stepObj.Name("screenshot").String(step.Screenshot)
		}
		if step.Error == nil {
			stepObj.Name("error").Null()
		} else {
			writeErrorEntry(stepObj.Name("error").Object(), *step.Error)
		}
		stepObj.End()
	}
	steps.End()

	errs := obj.Name("errors").Array()
	for _, e := range rec.Errors {
		writeErrorEntry(errs.Object(), e)
	}
	errs.End()

	obj.Name("result").String(string(rec.Result))
	obj.Name("elapsed_time").Float64(rec.ElapsedTime)
	obj.Name("timestamp").String(rec.Timestamp)
	obj.End()
}

func writeErrorEntry(obj jwriter.ObjectState, e runner.ErrorEntry) {
	obj.Name("message").String(e.Message)
	obj.Name("description").String(e.Description)
	obj.End()
}

// wire structs for the decode side; the field set must stay in lockstep with
// writeRecord.
type wireRecord struct {
	TestFile    string            `json:"test_file"`
	Test        string            `json:"test"`
	SetName     string            `json:"set_name"`
	TestData    map[string]string `json:"test_data"`
	Browser     string            `json:"browser"`
	Environment string            `json:"environment"`
	Description string            `json:"description"`
	Steps       []wireStep        `json:"steps"`
	Errors      []wireError       `json:"errors"`
	Result      string            `json:"result"`
	ElapsedTime float64           `json:"elapsed_time"`
	Timestamp   string            `json:"timestamp"`
}

type wireStep struct {
	Message    string     `json:"message"`
	Screenshot *string    `json:"screenshot"`
	Error      *wireError `json:"error"`
}

type wireError struct {
	Message     string `json:"message"`
	Description string `json:"description"`
}

// DecodeRecords parses a report file back into records. It is the read half
// of the wire contract and round-trips everything EncodeRecords wrote.
func DecodeRecords(data []byte) ([]runner.Record, error) {
	var wire []wireRecord
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("malformed report data: %w", err)
	}
	ret := make([]runner.Record, 0, len(wire))
	for _, wr := range wire {
		rec := runner.Record{
			TestFile:    wr.TestFile,
			Test:        wr.Test,
			SetName:     wr.SetName,
			TestData:    wr.TestData,
			Browser:     wr.Browser,
			Environment: wr.Environment,
			Description: wr.Description,
			Result:      runner.ResultKind(wr.Result),
			ElapsedTime: wr.ElapsedTime,
			Timestamp:   wr.Timestamp,
		}
		if rec.TestData == nil {
			rec.TestData = map[string]string{}
		}
		for _, ws := range wr.Steps {
			step := runner.StepEntry{Message: ws.Message}
			if ws.Screenshot != nil {
				step.Screenshot = *ws.Screenshot
			}
			if ws.Error != nil {
				step.Error = &runner.ErrorEntry{Message: ws.Error.Message, Description: ws.Error.Description}
			}
			rec.Steps = append(rec.Steps, step)
		}
		for _, we := range wr.Errors {
			rec.Errors = append(rec.Errors, runner.ErrorEntry{Message: we.Message, Description: we.Description})
		}
		ret = append(ret, rec)
	}
	return ret, nil
}
