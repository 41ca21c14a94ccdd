// Package unitdef is the declarative unit provider: it loads YAML unit files
// whose hooks and tests are lists of browser steps, and compiles them into
// executable bodies for the runner. The runner itself never sees YAML; it only
// sees the Provider interface.
package unitdef

import (
	"github.com/webtest-hq/browser-test-harness/framework/runner"
)

// Driver is the browser surface that compiled steps operate on. The engine
// carries it opaquely; only this package's compiled bodies call it.
type Driver interface {
	Navigate(url string) error
	Click(selector string) error
	Type(selector, text string) error
	Text(selector string) (string, error)
	Screenshot(path string) error
}

// driverFor pulls the driver out of the execution. Running a unit whose steps
// need a browser without attaching one is a defect in the caller, so this
// panics rather than failing the test.
func driverFor(exec *runner.Execution) Driver {
	drv, ok := exec.Driver.(Driver)
	if !ok {
		panic("no browser driver is attached to this execution")
	}
	return drv
}
