package mediagent

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// ParamType is the semantic type of a declared tool parameter.
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamInteger ParamType = "integer"
	ParamEnum    ParamType = "enum"
)

// ParamSpec declares one tool parameter. Descriptions are written for the
// orchestrating model, which constructs arguments from them.
type ParamSpec struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"type"`
	Description string    `json:"description"`
	Enum        []string  `json:"enum,omitempty"`
	Required    bool      `json:"required"`
}

// ToolSpec describes how a tool is presented to the orchestrating model.
// Parameters are ordered and explicit; the catalog is populated by
// registration calls, not signature reflection.
type ToolSpec struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Params      []ParamSpec `json:"params,omitempty"`
}

// InputSchema renders the parameter list as a JSON schema object for
// model-facing surfaces.
func (s ToolSpec) InputSchema() map[string]any {
	properties := map[string]any{}
	var required []string
	for _, p := range s.Params {
		prop := map[string]any{"description": p.Description}
		switch p.Type {
		case ParamInteger:
			prop["type"] = "integer"
		case ParamEnum:
			prop["type"] = "string"
			enum := make([]any, 0, len(p.Enum))
			for _, v := range p.Enum {
				enum = append(enum, v)
			}
			prop["enum"] = enum
		default:
			prop["type"] = "string"
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// ToolRequest captures one invocation request for a tool. Progress is the
// bound notifier handle; the runner creates it before dispatch.
type ToolRequest struct {
	SessionID string
	Arguments map[string]any
	Progress  *Progress
}

// Tool exposes structured metadata and an invocation handler. Invoke returns
// the references of every artifact it persisted, in production order.
//
// Provider-facing failures must be absorbed: the tool emits step_failed and
// returns an empty slice with a nil error. A non-nil error is reserved for
// framework faults (persistence, event delivery) that should reach the
// orchestrator.
type Tool interface {
	Spec() ToolSpec
	Invoke(ctx context.Context, req ToolRequest) ([]string, error)
}

// ValidateArguments performs the defensive checks applied before dispatch:
// required parameters present, enum membership, and integer coercion.
// Satisfying declared constraints remains the orchestrator's job; this only
// rejects arguments that would be unusable downstream.
func ValidateArguments(spec ToolSpec, args map[string]any) error {
	for _, p := range spec.Params {
		raw, ok := args[p.Name]
		if !ok {
			if p.Required {
				return fmt.Errorf("missing required parameter %q for tool %s", p.Name, spec.Name)
			}
			continue
		}
		switch p.Type {
		case ParamInteger:
			if _, ok := IntArg(args, p.Name); !ok {
				return fmt.Errorf("parameter %q for tool %s must be an integer", p.Name, spec.Name)
			}
		case ParamEnum:
			val := strings.TrimSpace(fmt.Sprint(raw))
			found := false
			for _, allowed := range p.Enum {
				if val == allowed {
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("parameter %q for tool %s must be one of %s", p.Name, spec.Name, strings.Join(p.Enum, ", "))
			}
		default:
			if _, ok := raw.(string); !ok {
				return fmt.Errorf("parameter %q for tool %s must be a string", p.Name, spec.Name)
			}
		}
	}
	return nil
}

// StringArg returns the named argument as a trimmed string.
func StringArg(args map[string]any, name string) string {
	raw, ok := args[name]
	if !ok || raw == nil {
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		return strings.TrimSpace(fmt.Sprint(raw))
	}
	return strings.TrimSpace(s)
}

// IntArg returns the named argument as an int, accepting the numeric types
// a JSON decoder or a caller may supply.
func IntArg(args map[string]any, name string) (int, bool) {
	switch v := args[name].(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case float32:
		if float64(v) != math.Trunc(float64(v)) {
			return 0, false
		}
		return int(v), true
	default:
		return 0, false
	}
}
