package unitdef

import (
	"fmt"

	yaml "gopkg.in/yaml.v3"

	"github.com/webtest-hq/browser-test-harness/data"
	"github.com/webtest-hq/browser-test-harness/framework/runner"
)

// Provider loads declarative YAML unit files. A unit file is a mapping with
// any of the keys description, tags, skip, data, hooks, and tests; hooks and
// tests map names to step lists, and declaration order is preserved.
type Provider struct{}

func NewProvider() *Provider {
	return &Provider{}
}

func (p *Provider) Load(source []byte) (*runner.Definition, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(source, &doc); err != nil {
		return nil, &runner.LoadError{
			Message: "invalid unit file: " + err.Error(),
			Trace:   err.Error(),
		}
	}
	def := &runner.Definition{}
	if len(doc.Content) == 0 {
		return def, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, loadErrorAt(root, "unit file must be a mapping")
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		switch key.Value {
		case "description":
			if err := value.Decode(&def.Description); err != nil {
				return nil, loadErrorAt(value, "description must be a string")
			}
		case "tags":
			if err := value.Decode(&def.Tags); err != nil {
				return nil, loadErrorAt(value, "tags must be a list of strings")
			}
		case "skip":
			if err := value.Decode(&def.Skip); err != nil {
				return nil, loadErrorAt(value, "skip must be a boolean")
			}
		case "data":
			raw, err := yaml.Marshal(value)
			if err != nil {
				return nil, loadErrorAt(value, err.Error())
			}
			sets, err := data.ParseDataSets(raw)
			if err != nil {
				return nil, loadErrorAt(value, err.Error())
			}
			def.DataSets = sets
		case "hooks":
			if err := parseHooks(value, def); err != nil {
				return nil, err
			}
		case "tests":
			if err := parseTests(value, def); err != nil {
				return nil, err
			}
		default:
			return nil, loadErrorAt(key, fmt.Sprintf("unknown unit file key %q", key.Value))
		}
	}
	return def, nil
}

func parseHooks(node *yaml.Node, def *runner.Definition) error {
	if node.Kind != yaml.MappingNode {
		return loadErrorAt(node, "hooks must be a mapping of hook name to step list")
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		body, err := compileSteps(key.Value, value)
		if err != nil {
			return err
		}
		hook := &runner.Hook{Name: key.Value, Body: body}
		var slot **runner.Hook
		switch key.Value {
		case runner.HookBeforeTest:
			slot = &def.Hooks.BeforeTest
		case runner.HookAfterTest:
			slot = &def.Hooks.AfterTest
		case runner.HookBeforeEach:
			slot = &def.Hooks.BeforeEach
		case runner.HookAfterEach:
			slot = &def.Hooks.AfterEach
		case runner.HookSetupAlias:
			hook.Deprecated = true
			slot = &def.Hooks.BeforeTest
		case runner.HookTeardownAlias:
			hook.Deprecated = true
			slot = &def.Hooks.AfterTest
		default:
			return loadErrorAt(key, fmt.Sprintf("unknown hook %q", key.Value))
		}
		if *slot != nil {
			return loadErrorAt(key, fmt.Sprintf("hook %q conflicts with %q: both declare the %s hook",
				key.Value, (*slot).Name, hook.Canonical()))
		}
		*slot = hook
	}
	return nil
}

func parseTests(node *yaml.Node, def *runner.Definition) error {
	if node.Kind != yaml.MappingNode {
		return loadErrorAt(node, "tests must be a mapping of test name to step list")
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		body, err := compileSteps(key.Value, value)
		if err != nil {
			return err
		}
		def.Functions = append(def.Functions, runner.Function{Name: key.Value, Body: body})
	}
	return nil
}

func loadErrorAt(node *yaml.Node, message string) *runner.LoadError {
	full := fmt.Sprintf("line %d: %s", node.Line, message)
	return &runner.LoadError{Message: full, Trace: full}
}
