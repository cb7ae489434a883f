package server

import (
	"net/http"

	"QuantPicker/internal/exporter"

	"go.uber.org/zap"
)

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// WriteJSON writes data wrapped in a success envelope.
// ?pretty=1 on the request indents the output.
// Encoding happens before the header is written, so a value that cannot be
// encoded yields a 500 error envelope.
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	body, err := exporter.MarshalJSON(envelope{Success: true, Data: data}, r.URL.Query().Get("pretty") != "")
	if err != nil {
		zap.S().Errorf("encode response: %v", err)
		WriteError(w, r, http.StatusInternalServerError, "encode response failed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		zap.S().Warnf("write response: %v", err)
	}
}

// WriteError writes an error envelope.
func WriteError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := exporter.WriteJSON(w, envelope{Error: msg}, false); err != nil {
		zap.S().Warnf("write response: %v", err)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
