package mediagent

import (
	"context"
	"testing"
)

func TestAsUTCPToolExposesSchemaAndHandler(t *testing.T) {
	tool := &stubTool{spec: ToolSpec{
		Name:        "generate_images",
		Description: "makes images",
		Params: []ParamSpec{
			{Name: "description", Type: ParamString, Description: "what to make", Required: true},
			{Name: "count", Type: ParamInteger, Description: "how many"},
		},
	}}
	tool.invoke = func(ctx context.Context, req ToolRequest) ([]string, error) {
		if err := req.Progress.Artifact(ctx, ArtifactContent{Kind: MediaImage, Ref: "blob-1.png"}); err != nil {
			return nil, err
		}
		if err := req.Progress.Complete(ctx, "done"); err != nil {
			return nil, err
		}
		return req.Progress.Refs(), nil
	}
	runner := NewRunner(NewRegistry(tool))
	sink := &recorder{}

	utcpTool, err := runner.AsUTCPTool("generate_images", sink)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if utcpTool.Name != "generate_images" || utcpTool.Description != "makes images" {
		t.Fatalf("unexpected tool metadata: %+v", utcpTool)
	}
	if utcpTool.Inputs.Type != "object" || utcpTool.Inputs.Properties["description"] == nil {
		t.Fatalf("unexpected input schema: %+v", utcpTool.Inputs)
	}
	if len(utcpTool.Inputs.Required) != 1 || utcpTool.Inputs.Required[0] != "description" {
		t.Fatalf("unexpected required list: %v", utcpTool.Inputs.Required)
	}

	out, err := utcpTool.Handler(context.Background(), map[string]any{"description": "a red fox"})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	refs, ok := out.([]string)
	if !ok || len(refs) != 1 || refs[0] != "blob-1.png" {
		t.Fatalf("unexpected handler result: %v", out)
	}
	assertTerminated(t, sink)
}

func TestAsUTCPToolUnknownTool(t *testing.T) {
	runner := NewRunner(NewRegistry())
	if _, err := runner.AsUTCPTool("missing", nil); err == nil {
		t.Fatalf("expected unknown tool to error")
	}
}
