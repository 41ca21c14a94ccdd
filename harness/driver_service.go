// Package harness manages communication with an external browser driver
// service. The driver service is a separate process that owns real browser
// sessions; this package verifies that it is alive, creates browser entities
// inside it, and exposes each entity as a step driver.
package harness

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/webtest-hq/browser-test-harness/framework"
)

// DriverServiceInfo is status information returned by the driver service from
// the initial status query.
type DriverServiceInfo struct {
	DriverServiceInfoBase

	// FullData is the entire response received from the driver service, which
	// might contain additional properties beyond DriverServiceInfoBase.
	FullData []byte
}

// DriverServiceInfoBase is the basic set of properties that all driver
// services must provide.
type DriverServiceInfoBase struct {
	// Name identifies the driver service implementation, such as "chromedriver-proxy".
	Name string `json:"name"`

	// Capabilities is a list of strings representing optional features of the
	// driver service.
	Capabilities framework.Capabilities `json:"capabilities"`
}

// DriverService is a verified connection to one driver service. It can create
// any number of browser entities within the service.
type DriverService struct {
	baseURL string
	info    DriverServiceInfo
	logger  framework.Logger
}

// NewDriverService creates a DriverService instance, verifying that the
// service is responding by querying its status resource. The query is retried
// until the timeout elapses, so the service may still be starting up.
func NewDriverService(
	baseURL string,
	statusQueryTimeout time.Duration,
	logger framework.Logger,
	startupOutput io.Writer,
) (*DriverService, error) {
	if logger == nil {
		logger = framework.NullLogger()
	}
	info, err := queryDriverServiceInfo(baseURL, statusQueryTimeout, startupOutput)
	if err != nil {
		return nil, err
	}
	return &DriverService{baseURL: baseURL, info: info, logger: logger}, nil
}

// Info returns the initial status information received from the driver service.
func (s *DriverService) Info() DriverServiceInfo {
	return s.info
}

// Stop tells the driver service that it should exit.
func (s *DriverService) Stop() error {
	req, _ := http.NewRequest("DELETE", s.baseURL, nil)
	resp, err := http.DefaultClient.Do(req)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err == nil && resp.StatusCode >= 300 {
		return fmt.Errorf("driver service returned HTTP %d", resp.StatusCode)
	}
	// It's normal for the request to return an I/O error if the service
	// immediately quit before sending a response
	return nil
}

// NewBrowser tells the driver service to open a browser session. The session
// stays open inside the service until Close is called on the returned Browser.
func (s *DriverService) NewBrowser(
	browserName string,
	capabilities framework.Capabilities,
	logger framework.Logger,
) (*Browser, error) {
	if logger == nil {
		logger = s.logger
	}
	params, err := json.Marshal(map[string]interface{}{
		"browser":      browserName,
		"capabilities": capabilities,
	})
	if err != nil {
		return nil, err
	}
	logger.Printf("Opening browser session with parameters: %s", string(params))
	_, headers, err := doRequest("POST", s.baseURL, params)
	if err != nil {
		return nil, err
	}
	resourceURL := headers.Get("Location")
	if resourceURL == "" {
		return nil, errors.New("driver service did not return a Location header with a resource URL")
	}
	if !strings.HasPrefix(resourceURL, "http:") {
		resourceURL = s.baseURL + resourceURL
	}
	return &Browser{resourceURL: resourceURL, logger: logger}, nil
}

func queryDriverServiceInfo(url string, timeout time.Duration, output io.Writer) (DriverServiceInfo, error) {
	fmt.Fprintf(output, "Connecting to driver service at %s", url)

	deadline := time.Now().Add(timeout)
	for {
		fmt.Fprintf(output, ".")
		resp, err := http.DefaultClient.Get(url)
		if err == nil {
			fmt.Fprintln(output)
			if resp.StatusCode != 200 {
				return DriverServiceInfo{}, fmt.Errorf("driver service returned status code %d", resp.StatusCode)
			}
			if resp.Body == nil {
				fmt.Fprintf(output, "Status query successful, but service provided no metadata\n")
				return DriverServiceInfo{}, nil
			}
			respData, err := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if err != nil {
				return DriverServiceInfo{}, err
			}
			fmt.Fprintf(output, "Status query returned metadata: %s\n", string(respData))
			var base DriverServiceInfoBase
			if err := json.Unmarshal(respData, &base); err != nil {
				return DriverServiceInfo{}, fmt.Errorf("malformed status response from driver service: %s", string(respData))
			}
			return DriverServiceInfo{DriverServiceInfoBase: base, FullData: respData}, nil
		}
		if !time.Now().Before(deadline) {
			return DriverServiceInfo{}, fmt.Errorf("timed out, result of last query was: %w", err)
		}
		time.Sleep(time.Millisecond * 100)
	}
}

func doRequest(method, url string, body []byte) ([]byte, http.Header, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewBuffer(body)
	}
	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	if body != nil {
		req.Header.Add("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	var respBody []byte
	if resp.Body != nil {
		respBody, _ = io.ReadAll(resp.Body)
		_ = resp.Body.Close()
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := ""
		if body != nil {
			message = " (" + string(body) + ")"
		}
		err = fmt.Errorf("driver service returned error %d for %s %s%s", resp.StatusCode, method, url, message)
	}
	return respBody, resp.Header, err
}
