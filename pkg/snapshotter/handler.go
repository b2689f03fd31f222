package snapshotter

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/NVIDIA/machinestate/pkg/serializer"
	"github.com/NVIDIA/machinestate/pkg/server"
)

// Query parameters accepted by HandleSnapshot.
const (
	QueryExtended = "extended"
	QueryAnon     = "anon"
	QueryGroup    = "group"
	QueryFormat   = "format"
)

// HandleSnapshot handles GET requests by collecting a fresh snapshot.
//
// Query parameters:
//   - extended: include extended sources (bool)
//   - anon: drop sensitive keys (bool)
//   - group: built-in group to collect, repeatable or comma separated
//   - format: json (default), yaml or table
//
// The receiver is used as a template and is never modified.
func (n *NodeSnapshotter) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		server.WriteError(w, r, http.StatusMethodNotAllowed, server.ErrCodeMethodNotAllowed,
			"method not allowed", false, nil)
		return
	}

	req, format, err := n.fromQuery(r)
	if err != nil {
		server.WriteError(w, r, http.StatusBadRequest, server.ErrCodeInvalidRequest,
			err.Error(), false, nil)
		return
	}

	slog.Debug("snapshot requested",
		slog.Any("groups", req.Groups),
		slog.Bool("extended", req.Extended),
		slog.Bool("anon", req.Anon),
	)

	snap, err := req.Collect(r.Context())
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "failed to collect snapshot", nil)
		return
	}

	serializer.Respond(w, http.StatusOK, format, snap)
}

// fromQuery copies n and applies the request's query parameters.
func (n *NodeSnapshotter) fromQuery(r *http.Request) (*NodeSnapshotter, serializer.Format, error) {
	q := r.URL.Query()
	req := *n
	req.Serializer = nil

	var err error
	if req.Extended, err = boolParam(q.Get(QueryExtended), n.Extended); err != nil {
		return nil, "", fmt.Errorf("invalid %s parameter: %w", QueryExtended, err)
	}
	if req.Anon, err = boolParam(q.Get(QueryAnon), n.Anon); err != nil {
		return nil, "", fmt.Errorf("invalid %s parameter: %w", QueryAnon, err)
	}

	var groups []string
	for _, v := range q[QueryGroup] {
		for g := range strings.SplitSeq(v, ",") {
			if g = strings.TrimSpace(g); g != "" {
				groups = append(groups, g)
			}
		}
	}
	if len(groups) > 0 {
		req.Groups = groups
	}

	format := serializer.FormatJSON
	if v := q.Get(QueryFormat); v != "" {
		format = serializer.Format(strings.ToLower(v))
		if format.IsUnknown() {
			return nil, "", fmt.Errorf("unsupported format %q, supported: %s",
				v, strings.Join(serializer.SupportedFormats(), ", "))
		}
	}

	return &req, format, nil
}

func boolParam(v string, def bool) (bool, error) {
	if v == "" {
		return def, nil
	}
	return strconv.ParseBool(v)
}
