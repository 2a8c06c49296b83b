package mediagent

import "context"

// Progress is the per-invocation handle a tool uses to report lifecycle
// events. It assigns the monotonically increasing sequence number, collects
// produced artifact references, and remembers whether a terminal phase has
// been emitted so the runner can guard against silent termination.
//
// A Progress is owned by the single flow of control executing the
// invocation; it is not safe for concurrent use.
type Progress struct {
	tool      string
	sink      Notifier
	seq       int
	refs      []string
	completed bool
	failed    bool
}

// NewProgress binds a notifier to one invocation of the named tool.
func NewProgress(tool string, sink Notifier) *Progress {
	return &Progress{tool: tool, sink: sink}
}

// Tool returns the tool identifier the handle was bound to.
func (p *Progress) Tool() string { return p.tool }

// Refs returns the artifact references announced so far, in emission order.
func (p *Progress) Refs() []string {
	out := make([]string, len(p.refs))
	copy(out, p.refs)
	return out
}

// Terminated reports whether a run_completed or step_failed event has been
// emitted for this invocation.
func (p *Progress) Terminated() bool { return p.completed || p.failed }

// Failed reports whether a step_failed event has been emitted.
func (p *Progress) Failed() bool { return p.failed }

// Started emits the mandatory run_in_progress event.
func (p *Progress) Started(ctx context.Context, message string) error {
	return p.emit(ctx, Event{Phase: PhaseRunInProgress, Message: message})
}

// Step narrates a coarse-grained phase with a step_in_progress event.
func (p *Progress) Step(ctx context.Context, message string) error {
	return p.emit(ctx, Event{Phase: PhaseStepInProgress, Message: message})
}

// Fail emits a step_failed event and marks the invocation as failed.
func (p *Progress) Fail(ctx context.Context, message string) error {
	p.failed = true
	return p.emit(ctx, Event{Phase: PhaseStepFailed, Message: message})
}

// Complete emits the single run_completed event.
func (p *Progress) Complete(ctx context.Context, message string) error {
	p.completed = true
	return p.emit(ctx, Event{Phase: PhaseRunCompleted, Message: message})
}

// Artifact records a persisted deliverable and announces it with a
// step_completed event carrying the descriptor and the output flag.
// art.Ref must already hold the reference returned by the blob store.
func (p *Progress) Artifact(ctx context.Context, art ArtifactContent) error {
	p.refs = append(p.refs, art.Ref)
	return p.emit(ctx, Event{Phase: PhaseStepCompleted, Message: art.Ref, Artifact: &art, Output: true})
}

func (p *Progress) emit(ctx context.Context, ev Event) error {
	ev.Tool = p.tool
	ev.Seq = p.seq
	p.seq++
	if p.sink == nil {
		return nil
	}
	return p.sink.Notify(ctx, ev)
}
