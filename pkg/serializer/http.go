package serializer

import (
	"log/slog"
	"net/http"
)

// contentTypes maps formats onto response content types.
var contentTypes = map[Format]string{
	FormatJSON:  "application/json",
	FormatYAML:  "application/yaml",
	FormatTable: "text/plain; charset=utf-8",
}

// Respond writes data encoded in format with the given status code.
// The body is encoded before any header is written so that an encoding
// failure never produces a partial response.
func Respond(w http.ResponseWriter, statusCode int, format Format, data any) {
	if format.IsUnknown() {
		format = FormatJSON
	}

	body, err := Marshal(format, data)
	if err != nil {
		slog.Error("response encoding failed", "format", format, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(statusCode)
	if _, err := w.Write(body); err != nil {
		// Connection is broken, log but can't recover
		slog.Warn("response write failed", "error", err)
	}
}

// RespondJSON writes data as JSON with the given status code.
func RespondJSON(w http.ResponseWriter, statusCode int, data any) {
	Respond(w, statusCode, FormatJSON, data)
}
