// Package tools holds the built-in media generation tools. Each tool drives
// one external provider call (or job), persists what comes back, and narrates
// the invocation through its Progress handle. Provider errors stay inside the
// tool: they become a step_failed event and an empty reference list, never a
// returned error. Returned errors are reserved for framework faults such as
// persistence or event delivery failures.
package tools

import (
	"context"
	"log"
	"strings"

	"github.com/forgeworks/mediagent/src/storage"
)

// stripDataURL removes a leading data-URL prefix ("data:image/...;base64,")
// so the remainder can be base64-decoded directly.
func stripDataURL(payload string) string {
	if !strings.HasPrefix(payload, "data:") {
		return payload
	}
	if i := strings.Index(payload, ";base64,"); i >= 0 {
		return payload[i+len(";base64,"):]
	}
	return payload
}

// recordProvenance links a stored artifact to its session. Provenance is
// best-effort: a recording failure is logged and does not fail the
// invocation.
func recordProvenance(ctx context.Context, rec storage.ProvenanceRecorder, sessionID, tool, ref, description string) {
	if rec == nil {
		return
	}
	if err := rec.RecordArtifact(ctx, sessionID, tool, ref, description); err != nil {
		log.Printf("provenance: record %s for %s: %v", ref, tool, err)
	}
}
