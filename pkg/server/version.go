package server

import (
	"mime"
	"net/http"
	"strings"
)

const (
	// DefaultAPIVersion is served when the client does not ask for one.
	DefaultAPIVersion = "v1"

	// vendorMediaTypePrefix selects an API version through the Accept
	// header: application/vnd.nvidia.machinestate.v1+json
	vendorMediaTypePrefix = "application/vnd.nvidia.machinestate."

	// HeaderAPIVersion reports the negotiated API version.
	HeaderAPIVersion = "X-API-Version"
)

var supportedAPIVersions = map[string]bool{
	"v1": true,
}

func isValidAPIVersion(v string) bool {
	return supportedAPIVersions[v]
}

// negotiateAPIVersion returns the version requested by the Accept header,
// or DefaultAPIVersion when none or an unsupported one is requested.
func negotiateAPIVersion(r *http.Request) string {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		rest, ok := strings.CutPrefix(mediaType, vendorMediaTypePrefix)
		if !ok {
			continue
		}
		version, _, _ := strings.Cut(rest, "+")
		if isValidAPIVersion(version) {
			return version
		}
	}
	return DefaultAPIVersion
}
