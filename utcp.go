package mediagent

import (
	"context"
	"fmt"
	"strings"

	utcp "github.com/universal-tool-calling-protocol/go-utcp"
	"github.com/universal-tool-calling-protocol/go-utcp/src/providers/base"
	"github.com/universal-tool-calling-protocol/go-utcp/src/providers/cli"
	"github.com/universal-tool-calling-protocol/go-utcp/src/repository"
	"github.com/universal-tool-calling-protocol/go-utcp/src/tools"
	"github.com/universal-tool-calling-protocol/go-utcp/src/transports"
)

// registryCLITransport routes UTCP CallTool invocations for the registered
// provider directly to in-process handlers, delegating everything else to
// the transport it shadowed.
type registryCLITransport struct {
	inner repository.ClientTransport
	tools map[string][]tools.Tool
}

func (t *registryCLITransport) RegisterToolProvider(ctx context.Context, prov base.Provider) ([]tools.Tool, error) {
	p, ok := prov.(*cli.CliProvider)
	if !ok {
		if t.inner != nil {
			return t.inner.RegisterToolProvider(ctx, prov)
		}
		return nil, fmt.Errorf("unsupported provider type %T", prov)
	}
	if t.tools == nil {
		t.tools = make(map[string][]tools.Tool)
	}
	list, ok := t.tools[p.Name]
	if !ok {
		if t.inner != nil {
			return t.inner.RegisterToolProvider(ctx, prov)
		}
		return nil, fmt.Errorf("registry tools not found for provider %s", p.Name)
	}
	return list, nil
}

func (t *registryCLITransport) DeregisterToolProvider(ctx context.Context, prov base.Provider) error {
	if p, ok := prov.(*cli.CliProvider); ok {
		if _, ok := t.tools[p.Name]; ok {
			delete(t.tools, p.Name)
			return nil
		}
	}
	if t.inner != nil {
		return t.inner.DeregisterToolProvider(ctx, prov)
	}
	return nil
}

func (t *registryCLITransport) CallTool(ctx context.Context, toolName string, args map[string]any, prov base.Provider, _ *string) (any, error) {
	if p, ok := prov.(*cli.CliProvider); ok {
		if list, ok := t.tools[p.Name]; ok {
			for _, tool := range list {
				if tool.Name == toolName || strings.HasSuffix(tool.Name, "."+toolName) {
					if tool.Handler == nil {
						return nil, fmt.Errorf("tool %s has no handler", toolName)
					}
					return tool.Handler(ctx, args)
				}
			}
		}
		if t.inner != nil {
			return t.inner.CallTool(ctx, toolName, args, prov, nil)
		}
		return nil, fmt.Errorf("tool %s not found for provider %s", toolName, p.Name)
	}
	if t.inner != nil {
		return t.inner.CallTool(ctx, toolName, args, prov, nil)
	}
	return nil, fmt.Errorf("unsupported provider type %T", prov)
}

func (t *registryCLITransport) CallToolStream(ctx context.Context, toolName string, args map[string]any, prov base.Provider) (transports.StreamResult, error) {
	if p, ok := prov.(*cli.CliProvider); ok {
		if _, ok := t.tools[p.Name]; ok {
			return nil, fmt.Errorf("streaming not supported for tool %s (provider %s)", toolName, p.Name)
		}
	}
	if t.inner != nil {
		return t.inner.CallToolStream(ctx, toolName, args, prov)
	}
	return nil, fmt.Errorf("unsupported provider type %T", prov)
}

// AsUTCPTool exposes a registered tool as a UTCP tool with an in-process
// handler. Progress events produced during the call are delivered to sink;
// the handler's return value is the list of artifact references.
func (r *Runner) AsUTCPTool(name string, sink Notifier) (tools.Tool, error) {
	_, spec, ok := r.registry.Lookup(name)
	if !ok {
		return tools.Tool{}, fmt.Errorf("tool %s not found", name)
	}

	schema := spec.InputSchema()
	properties, _ := schema["properties"].(map[string]any)
	var required []string
	if raw, ok := schema["required"].([]string); ok {
		required = raw
	}

	providerName := providerNameFor(spec.Name)
	return tools.Tool{
		Name:        spec.Name,
		Description: spec.Description,
		Provider: &base.BaseProvider{
			Name:         providerName,
			ProviderType: base.ProviderCLI, // in-process handler, no remote transport
		},
		Inputs: tools.ToolInputOutputSchema{
			Type:       "object",
			Properties: properties,
			Required:   required,
		},
		Outputs: tools.ToolInputOutputSchema{
			Type: "object",
			Properties: map[string]any{
				"artifacts": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
		},
		Handler: tools.ToolHandler(func(ctx context.Context, inputs map[string]interface{}) (any, error) {
			execCtx := ctx
			if execCtx == nil {
				execCtx = context.Background()
			}
			sessionID := fmt.Sprintf("%s.session", providerName)
			res, err := r.Invoke(execCtx, spec.Name, sessionID, inputs, sink)
			if err != nil {
				return nil, err
			}
			return res.Refs, nil
		}),
	}, nil
}

// RegisterUTCPProvider registers every catalog tool on the provided UTCP
// client behind an in-process CLI transport, so remote UTCP callers reach
// the registry without an extra hop.
func (r *Runner) RegisterUTCPProvider(ctx context.Context, client utcp.UtcpClientInterface, providerName string, sink Notifier) error {
	if client == nil {
		return fmt.Errorf("utcp client is nil")
	}
	providerName = strings.TrimSpace(providerName)
	if providerName == "" {
		return fmt.Errorf("provider name is empty")
	}

	specs := r.registry.Specs()
	list := make([]tools.Tool, 0, len(specs))
	for _, spec := range specs {
		tool, err := r.AsUTCPTool(spec.Name, sink)
		if err != nil {
			return err
		}
		tool.Provider = &base.BaseProvider{Name: providerName, ProviderType: base.ProviderCLI}
		list = append(list, tool)
	}

	tp := &cli.CliProvider{
		BaseProvider: base.BaseProvider{
			Name:         providerName,
			ProviderType: base.ProviderCLI,
		},
	}

	transportsMap := client.GetTransports()
	if transportsMap == nil {
		return fmt.Errorf("utcp client transports map is nil")
	}

	existing := transportsMap[string(base.ProviderCLI)]
	var shim *registryCLITransport
	if maybe, ok := existing.(*registryCLITransport); ok {
		shim = maybe
	} else {
		shim = &registryCLITransport{inner: existing}
		transportsMap[string(base.ProviderCLI)] = shim
	}
	if shim.tools == nil {
		shim.tools = make(map[string][]tools.Tool)
	}
	shim.tools[tp.Name] = list

	_, err := client.RegisterToolProvider(ctx, tp)
	return err
}

func providerNameFor(name string) string {
	providerName := strings.TrimSpace(name)
	if parts := strings.Split(name, "."); len(parts) > 1 {
		providerName = parts[0]
	}
	return providerName
}
