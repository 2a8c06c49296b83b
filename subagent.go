package mediagent

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// SubAgent is a named, pre-configured remote agent work can be delegated to.
// Run forwards the query plus freeform additional instructions and relays
// the remote agent's own progress through the invocation's Progress handle
// unchanged; its failure modes surface as the returned error.
type SubAgent interface {
	Name() string
	Description() string
	Run(ctx context.Context, query, instructions string, prog *Progress) error
}

// SubAgentDirectory stores sub-agents by name while preserving insertion
// order.
type SubAgentDirectory struct {
	mu        sync.RWMutex
	subagents map[string]SubAgent
	order     []string
}

// NewSubAgentDirectory constructs a directory from the provided sub-agents.
func NewSubAgentDirectory(subagents ...SubAgent) *SubAgentDirectory {
	dir := &SubAgentDirectory{subagents: make(map[string]SubAgent)}
	for _, sa := range subagents {
		_ = dir.Register(sa)
	}
	return dir
}

// Register adds a sub-agent. Duplicate names return an error.
func (d *SubAgentDirectory) Register(sa SubAgent) error {
	if sa == nil {
		return fmt.Errorf("sub-agent is nil")
	}
	key := strings.ToLower(strings.TrimSpace(sa.Name()))
	if key == "" {
		return fmt.Errorf("sub-agent name is empty")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.subagents[key]; exists {
		return fmt.Errorf("sub-agent %s already registered", sa.Name())
	}
	d.subagents[key] = sa
	d.order = append(d.order, key)
	return nil
}

// Lookup retrieves a sub-agent by name.
func (d *SubAgentDirectory) Lookup(name string) (SubAgent, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	sa, ok := d.subagents[strings.ToLower(strings.TrimSpace(name))]
	return sa, ok
}

// All returns the registered sub-agents in registration order.
func (d *SubAgentDirectory) All() []SubAgent {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]SubAgent, 0, len(d.order))
	for _, key := range d.order {
		out = append(out, d.subagents[key])
	}
	return out
}

// SubAgentTool adapts a SubAgent to the Tool contract. Delegated runs
// produce no local artifacts; the zero-artifact success path is valid.
type SubAgentTool struct {
	subAgent SubAgent
}

// NewSubAgentTool wraps a SubAgent for registration in a tool registry.
func NewSubAgentTool(sa SubAgent) Tool {
	return &SubAgentTool{subAgent: sa}
}

func (t *SubAgentTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        t.subAgent.Name(),
		Description: t.subAgent.Description(),
		Params: []ParamSpec{
			{
				Name:        "query",
				Type:        ParamString,
				Description: "The query or task to forward to the delegated agent.",
				Required:    true,
			},
			{
				Name:        "instructions",
				Type:        ParamString,
				Description: "Optional freeform additional instructions for the delegated agent.",
			},
		},
	}
}

func (t *SubAgentTool) Invoke(ctx context.Context, req ToolRequest) ([]string, error) {
	prog := req.Progress
	query := StringArg(req.Arguments, "query")
	if query == "" {
		if err := prog.Fail(ctx, "missing or empty 'query' argument"); err != nil {
			return nil, err
		}
		return []string{}, nil
	}
	instructions := StringArg(req.Arguments, "instructions")

	if err := t.subAgent.Run(ctx, query, instructions, prog); err != nil {
		// Remote agent failures are terminal outcomes, not framework faults.
		if !prog.Terminated() {
			if ferr := prog.Fail(ctx, err.Error()); ferr != nil {
				return nil, ferr
			}
		}
		return []string{}, nil
	}
	if !prog.Terminated() {
		if err := prog.Complete(ctx, t.subAgent.Name()+" complete"); err != nil {
			return prog.Refs(), err
		}
	}
	return prog.Refs(), nil
}
