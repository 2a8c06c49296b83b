package mediagent

import (
	"context"
	"fmt"

	json "github.com/alpkeskin/gotoon"
)

// Runner dispatches tool invocations under the execution protocol: it binds
// a Progress handle, emits run_in_progress before the tool body runs, and
// guarantees the stream carries a terminal event before Invoke returns.
type Runner struct {
	registry *Registry
}

// NewRunner wraps a registry for dispatch.
func NewRunner(registry *Registry) *Runner {
	return &Runner{registry: registry}
}

// Registry exposes the wrapped catalog.
func (r *Runner) Registry() *Registry { return r.registry }

// Result is what the orchestrator receives from one invocation. Summary is
// a compact TOON rendering of the outcome suitable for feeding back to the
// orchestrating model.
type Result struct {
	Tool    string
	Refs    []string
	Summary string
}

// Invoke executes the named tool against the given notifier.
//
// Argument-validation failures and anything the tool absorbed into the
// event stream yield a nil error and a possibly empty Refs slice; a non-nil
// error means a framework fault (unknown tool, persistence, event delivery)
// and still leaves the stream terminated.
func (r *Runner) Invoke(ctx context.Context, name, sessionID string, args map[string]any, sink Notifier) (Result, error) {
	tool, spec, ok := r.registry.Lookup(name)
	if !ok {
		return Result{Tool: name}, fmt.Errorf("tool %s not found", name)
	}

	prog := NewProgress(spec.Name, sink)
	if err := prog.Started(ctx, "starting "+spec.Name); err != nil {
		return Result{Tool: spec.Name}, err
	}

	if err := ValidateArguments(spec, args); err != nil {
		if ferr := prog.Fail(ctx, err.Error()); ferr != nil {
			return Result{Tool: spec.Name}, ferr
		}
		return r.result(spec.Name, nil), nil
	}

	refs, err := tool.Invoke(ctx, ToolRequest{SessionID: sessionID, Arguments: args, Progress: prog})
	if err != nil {
		if !prog.Terminated() {
			_ = prog.Fail(ctx, err.Error())
		}
		return r.result(spec.Name, refs), err
	}

	// Guard against the silent-termination defect: a tool that returned
	// without a terminal event still yields a fully terminated stream.
	if !prog.Terminated() {
		if err := prog.Complete(ctx, spec.Name+" complete"); err != nil {
			return r.result(spec.Name, refs), err
		}
	}
	return r.result(spec.Name, refs), nil
}

func (r *Runner) result(tool string, refs []string) Result {
	if refs == nil {
		refs = []string{}
	}
	res := Result{Tool: tool, Refs: refs}
	payload := map[string]any{"tool": tool, "artifacts": refs}
	if encoded, err := json.Marshal(payload); err == nil {
		res.Summary = string(encoded)
	}
	return res
}
