package data

import (
	"fmt"
	"os"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/webtest-hq/browser-test-harness/framework/runner"
)

// ParseDataSets reads a data document into runner data sets. The document may
// be either a list of mappings (anonymous sets, labelled by position) or a
// mapping of set name to mapping (named sets, ordered by name).
func ParseDataSets(raw []byte) ([]runner.DataSet, error) {
	var anyShape interface{}
	if err := ParseJSONOrYAML(raw, &anyShape); err != nil {
		return nil, fmt.Errorf("cannot parse data file: %w", err)
	}
	switch shape := anyShape.(type) {
	case nil:
		return nil, nil
	case []interface{}:
		ret := make([]runner.DataSet, 0, len(shape))
		for i, item := range shape {
			values, err := valueMap(item)
			if err != nil {
				return nil, fmt.Errorf("data set %d: %w", i+1, err)
			}
			ret = append(ret, runner.DataSet{Values: values})
		}
		return ret, nil
	case map[string]interface{}:
		names := maps.Keys(shape)
		slices.Sort(names)
		ret := make([]runner.DataSet, 0, len(names))
		for _, name := range names {
			values, err := valueMap(shape[name])
			if err != nil {
				return nil, fmt.Errorf("data set %q: %w", name, err)
			}
			ret = append(ret, runner.DataSet{Name: name, Values: values})
		}
		return ret, nil
	default:
		return nil, fmt.Errorf("data document must be a list or mapping, got %T", anyShape)
	}
}

// LoadDataSetsFile reads and parses a data file from disk.
func LoadDataSetsFile(path string) ([]runner.DataSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", path, err)
	}
	sets, err := ParseDataSets(raw)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}
	return sets, nil
}

func valueMap(item interface{}) (map[string]ldvalue.Value, error) {
	asMap, ok := item.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("expected a mapping of data values, got %T", item)
	}
	ret := make(map[string]ldvalue.Value, len(asMap))
	for k, v := range asMap {
		ret[k] = ldvalue.CopyArbitraryValue(v)
	}
	return ret, nil
}
