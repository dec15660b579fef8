package api

import "encoding/json"

// Envelope is the JSON wrapper every ledger endpoint returns. A transport
// success (2xx) does not imply an application success: callers must still
// inspect OK() before trusting Data.
type Envelope struct {
	Success bool            `json:"success"`
	Error   bool            `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// OK reports an application-level success.
func (e *Envelope) OK() bool {
	return e != nil && e.Success && !e.Error
}

// Decode unmarshals Data into out. Absent data decodes to the zero value.
func (e *Envelope) Decode(out any) error {
	if len(e.Data) == 0 {
		return nil
	}
	return json.Unmarshal(e.Data, out)
}

// FailureMessage returns the server-supplied message, or fallback when the
// server sent none.
func (e *Envelope) FailureMessage(fallback string) string {
	if e != nil && e.Message != "" {
		return e.Message
	}
	return fallback
}
