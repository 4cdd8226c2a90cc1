package transport

import (
	"encoding/json"
	"net/http"
)

// Fields are merged into the error envelope next to "error".
type Fields map[string]interface{}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteError writes {"error": message, ...fields}. A field named "error" is ignored.
func WriteError(w http.ResponseWriter, status int, message string, fields Fields) {
	body := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["error"] = message
	WriteJSON(w, status, body)
}

// Details carries the underlying error message as "details".
func Details(err error) Fields {
	if err == nil {
		return nil
	}
	return Fields{"details": err.Error()}
}

// With returns a copy of f with key set.
func (f Fields) With(key string, value interface{}) Fields {
	out := make(Fields, len(f)+1)
	for k, v := range f {
		out[k] = v
	}
	out[key] = value
	return out
}
