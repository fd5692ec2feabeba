package gemini

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/tdai-app/tdai/pkg/core"
)

// geminiError represents an error response from the Gemini API.
type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// parseError parses an error response from Gemini. Everything the API
// rejects surfaces as an api_error, with the Gemini status carried in
// the code.
func (p *Provider) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var geminiErr geminiError
	if err := json.Unmarshal(body, &geminiErr); err != nil || geminiErr.Error.Message == "" {
		e := core.NewAPIError(string(body))
		e.Code = http.StatusText(resp.StatusCode)
		return e
	}

	e := core.NewAPIError(geminiErr.Error.Message)
	e.Code = geminiErr.Error.Status
	e.ProviderError = geminiErr.Error
	return e
}
