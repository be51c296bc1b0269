package common

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Envelope is the body shape of every API response.
type Envelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    interface{}  `json:"data,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, Envelope{Success: false, Message: message})
}

// RespondWithErr writes err using its mapped status. Server errors never leak
// their text to the client.
func RespondWithErr(w http.ResponseWriter, err error) {
	code := HTTPStatusFromError(err)
	env := Envelope{Success: false, Message: err.Error()}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		env.Errors = vErr.Fields
	}
	if code >= http.StatusInternalServerError {
		env.Message = ErrInternalServer.Error()
	}
	RespondWithJSON(w, code, env)
}

func RespondOK(w http.ResponseWriter, message string, data interface{}) {
	RespondWithJSON(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// RespondWithKey writes {"success": true, key: value} for endpoints whose
// clients expect a named collection instead of "data".
func RespondWithKey(w http.ResponseWriter, code int, key string, value interface{}) {
	RespondWithJSON(w, code, map[string]interface{}{"success": true, key: value})
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success": false, "message": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
