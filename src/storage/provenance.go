package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// GraphAccessMode controls whether a session is opened for read or write
// operations.
type GraphAccessMode string

const (
	AccessModeWrite GraphAccessMode = "write"
	AccessModeRead  GraphAccessMode = "read"
)

// GraphSessionConfig mirrors the minimal subset of Neo4j session
// configuration we require.
type GraphSessionConfig struct {
	AccessMode   GraphAccessMode
	DatabaseName string
}

// graphDriver abstracts the Neo4j driver capabilities used by the recorder.
// This allows tests to provide lightweight fakes without depending on the
// real driver package (which is guarded behind an optional build tag).
type graphDriver interface {
	NewSession(ctx context.Context, config GraphSessionConfig) (graphSession, error)
	Close(ctx context.Context) error
}

type graphSession interface {
	Run(ctx context.Context, query string, params map[string]any) error
	Close(ctx context.Context) error
}

// ProvenanceRecorder links produced artifacts to the session and tool that
// made them.
type ProvenanceRecorder interface {
	RecordArtifact(ctx context.Context, sessionID, tool, ref, description string) error
}

// NopProvenance discards provenance records.
type NopProvenance struct{}

func (NopProvenance) RecordArtifact(context.Context, string, string, string, string) error {
	return nil
}

// ErrGraphUnavailable is returned when provenance operations are attempted
// without a configured driver.
var ErrGraphUnavailable = errors.New("graph driver not configured")

// GraphProvenance writes one (:Session)-[:PRODUCED]->(:Artifact) edge per
// stored artifact into a Neo4j graph.
type GraphProvenance struct {
	driver   graphDriver
	database string
	nowFn    func() time.Time
}

var _ ProvenanceRecorder = (*GraphProvenance)(nil)

// NewGraphProvenance constructs a recorder over an adapted driver.
func NewGraphProvenance(driver graphDriver, database string) (*GraphProvenance, error) {
	if driver == nil {
		return nil, errors.New("graph driver is nil")
	}
	return &GraphProvenance{driver: driver, database: database, nowFn: time.Now}, nil
}

// EnsureSchema creates the uniqueness constraints the recorder relies on.
func (g *GraphProvenance) EnsureSchema(ctx context.Context) error {
	if g.driver == nil {
		return ErrGraphUnavailable
	}
	session, err := g.driver.NewSession(ctx, GraphSessionConfig{AccessMode: AccessModeWrite, DatabaseName: g.database})
	if err != nil {
		return fmt.Errorf("graph new session: %w", err)
	}
	defer session.Close(ctx)
	queries := []string{
		"CREATE CONSTRAINT IF NOT EXISTS FOR (s:Session) REQUIRE s.id IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (a:Artifact) REQUIRE a.ref IS UNIQUE",
	}
	for _, q := range queries {
		if err := session.Run(ctx, q, nil); err != nil {
			return fmt.Errorf("graph schema: %w", err)
		}
	}
	return nil
}

func (g *GraphProvenance) RecordArtifact(ctx context.Context, sessionID, tool, ref, description string) error {
	if g == nil || g.driver == nil {
		return ErrGraphUnavailable
	}
	if ref == "" {
		return errors.New("artifact ref is required")
	}
	session, err := g.driver.NewSession(ctx, GraphSessionConfig{AccessMode: AccessModeWrite, DatabaseName: g.database})
	if err != nil {
		return fmt.Errorf("graph new session: %w", err)
	}
	defer session.Close(ctx)

	query := `
MERGE (s:Session {id: $session})
MERGE (a:Artifact {ref: $ref})
SET a.tool = $tool, a.description = $description, a.created_at = $created_at
MERGE (s)-[:PRODUCED]->(a)`
	params := map[string]any{
		"session":     sessionID,
		"ref":         ref,
		"tool":        tool,
		"description": description,
		"created_at":  g.nowFn().UTC().Format(time.RFC3339),
	}
	if err := session.Run(ctx, query, params); err != nil {
		return fmt.Errorf("graph record artifact: %w", err)
	}
	return nil
}

// Close releases the underlying driver.
func (g *GraphProvenance) Close(ctx context.Context) error {
	if g == nil || g.driver == nil {
		return nil
	}
	return g.driver.Close(ctx)
}
