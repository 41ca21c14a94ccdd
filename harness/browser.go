package harness

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"

	"github.com/webtest-hq/browser-test-harness/framework"
	"github.com/webtest-hq/browser-test-harness/unitdef"
)

// Browser is one browser session inside the driver service. It satisfies the
// step driver interface by translating each action into a command request
// against the session's resource URL.
type Browser struct {
	resourceURL string
	logger      framework.Logger
}

var _ unitdef.Driver = (*Browser)(nil)

func (b *Browser) Navigate(url string) error {
	return b.sendCommand(map[string]interface{}{"command": "navigate", "url": url}, nil)
}

func (b *Browser) Click(selector string) error {
	return b.sendCommand(map[string]interface{}{"command": "click", "selector": selector}, nil)
}

func (b *Browser) Type(selector, text string) error {
	return b.sendCommand(map[string]interface{}{"command": "type", "selector": selector, "text": text}, nil)
}

func (b *Browser) Text(selector string) (string, error) {
	var resp struct {
		Text string `json:"text"`
	}
	err := b.sendCommand(map[string]interface{}{"command": "text", "selector": selector}, &resp)
	return resp.Text, err
}

// Screenshot asks the driver service for a capture of the current page and
// stores it at the given path. The service returns the image base64-encoded.
func (b *Browser) Screenshot(path string) error {
	var resp struct {
		Data string `json:"data"`
	}
	if err := b.sendCommand(map[string]interface{}{"command": "screenshot"}, &resp); err != nil {
		return err
	}
	image, err := base64.StdEncoding.DecodeString(resp.Data)
	if err != nil {
		return err
	}
	return os.WriteFile(path, image, 0644)
}

// Close tells the driver service to dispose of this browser session.
func (b *Browser) Close() error {
	b.logger.Printf("Closing %s", b.resourceURL)
	_, _, err := doRequest("DELETE", b.resourceURL, nil)
	if err != nil {
		b.logger.Printf("DELETE request to driver service failed: %s", err)
	}
	return err
}

func (b *Browser) sendCommand(allParams interface{}, responseOut interface{}) error {
	data, _ := json.Marshal(allParams)
	b.logger.Printf("Sending command: %s", string(data))
	body, _, err := doRequest("POST", b.resourceURL, data)
	if err != nil {
		return err
	}
	if responseOut != nil {
		if body == nil {
			return errors.New("expected a response body but got none")
		}
		if err = json.Unmarshal(body, responseOut); err != nil {
			return err
		}
		b.logger.Printf("Response: %s", string(body))
	}
	return nil
}
