package unitdef

import (
	"fmt"
	"path/filepath"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/webtest-hq/browser-test-harness/framework/runner"
)

// stepFunc is one compiled step. Compilation happens once per load; argument
// substitution against the execution's data happens at run time, so the same
// compiled body serves every data set.
type stepFunc func(*runner.Execution)

// compileSteps turns a YAML step list into a runner body. A step is either a
// plain string (shorthand for the step verb) or a single-key mapping of verb
// to argument(s).
func compileSteps(owner string, node *yaml.Node) (runner.Body, error) {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return func(*runner.Execution) {}, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, loadErrorAt(node, fmt.Sprintf("%q must be a list of steps", owner))
	}
	steps := make([]stepFunc, 0, len(node.Content))
	for _, item := range node.Content {
		step, err := compileStep(item)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return func(exec *runner.Execution) {
		for _, step := range steps {
			step(exec)
		}
	}, nil
}

func compileStep(node *yaml.Node) (stepFunc, error) {
	if node.Kind == yaml.ScalarNode {
		message := node.Value
		return func(exec *runner.Execution) {
			exec.Step(expand(exec, message))
		}, nil
	}
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return nil, loadErrorAt(node, "a step must be a string or a single verb mapping")
	}
	verb, value := node.Content[0].Value, node.Content[1]
	args, err := stringArgs(value)
	if err != nil {
		return nil, err
	}
	switch verb {
	case "step":
		return unary(verb, value, args, func(exec *runner.Execution, message string) {
			exec.Step(message)
		})
	case "error":
		return unary(verb, value, args, func(exec *runner.Execution, message string) {
			exec.Error(message)
		})
	case "fail":
		return unary(verb, value, args, func(exec *runner.Execution, message string) {
			exec.Fail(message)
		})
	case "navigate":
		return unary(verb, value, args, func(exec *runner.Execution, url string) {
			exec.Step("Navigate to " + url)
			if err := driverFor(exec).Navigate(url); err != nil {
				panic(fmt.Sprintf("navigate to %s: %s", url, err))
			}
		})
	case "click":
		return unary(verb, value, args, func(exec *runner.Execution, selector string) {
			exec.Step("Click " + selector)
			if err := driverFor(exec).Click(selector); err != nil {
				panic(fmt.Sprintf("click %s: %s", selector, err))
			}
		})
	case "type":
		return binary(verb, value, args, func(exec *runner.Execution, selector, text string) {
			exec.Step(fmt.Sprintf("Type %q into %s", text, selector))
			if err := driverFor(exec).Type(selector, text); err != nil {
				panic(fmt.Sprintf("type into %s: %s", selector, err))
			}
		})
	case "assert_text":
		return binary(verb, value, args, func(exec *runner.Execution, selector, expected string) {
			actual, err := driverFor(exec).Text(selector)
			if err != nil {
				panic(fmt.Sprintf("read text of %s: %s", selector, err))
			}
			if actual != expected {
				exec.Fail(fmt.Sprintf("expected element %s to have text %q but found %q",
					selector, expected, actual))
			}
			exec.Step(fmt.Sprintf("Element %s has text %q", selector, expected))
		})
	case "screenshot":
		return unary(verb, value, args, func(exec *runner.Execution, message string) {
			file := fmt.Sprintf("%s_%d.png", exec.TestName, len(exec.Steps)+1)
			if err := driverFor(exec).Screenshot(filepath.Join(exec.ReportDir, file)); err != nil {
				panic(fmt.Sprintf("take screenshot: %s", err))
			}
			exec.Screenshot(message, file)
		})
	default:
		return nil, loadErrorAt(node.Content[0], fmt.Sprintf("unknown step verb %q", verb))
	}
}

func unary(verb string, node *yaml.Node, args []string,
	run func(*runner.Execution, string)) (stepFunc, error) {
	if len(args) != 1 {
		return nil, loadErrorAt(node, fmt.Sprintf("%s takes one argument, got %d", verb, len(args)))
	}
	arg := args[0]
	return func(exec *runner.Execution) {
		run(exec, expand(exec, arg))
	}, nil
}

func binary(verb string, node *yaml.Node, args []string,
	run func(*runner.Execution, string, string)) (stepFunc, error) {
	if len(args) != 2 {
		return nil, loadErrorAt(node, fmt.Sprintf("%s takes two arguments, got %d", verb, len(args)))
	}
	first, second := args[0], args[1]
	return func(exec *runner.Execution) {
		run(exec, expand(exec, first), expand(exec, second))
	}, nil
}

func stringArgs(node *yaml.Node) ([]string, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return []string{node.Value}, nil
	case yaml.SequenceNode:
		args := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, loadErrorAt(item, "step arguments must be strings")
			}
			args = append(args, item.Value)
		}
		return args, nil
	default:
		return nil, loadErrorAt(node, "step arguments must be a string or list of strings")
	}
}

// expand replaces {name} placeholders with values from the execution's
// settings and data, data taking precedence. String values are interpolated
// as-is; anything else is interpolated as JSON.
func expand(exec *runner.Execution, s string) string {
	if !strings.Contains(s, "{") {
		return s
	}
	for name, value := range exec.Settings {
		if _, shadowed := exec.Data[name]; shadowed {
			continue
		}
		s = replacePlaceholder(s, name, value.IsString(), value.StringValue(), value.JSONString())
	}
	for name, value := range exec.Data {
		s = replacePlaceholder(s, name, value.IsString(), value.StringValue(), value.JSONString())
	}
	return s
}

func replacePlaceholder(s, name string, isString bool, stringValue, jsonValue string) string {
	repl := jsonValue
	if isString {
		repl = stringValue
	}
	return strings.ReplaceAll(s, "{"+name+"}", repl)
}
