package tools

import (
	"context"

	mediagent "github.com/forgeworks/mediagent"
	"github.com/forgeworks/mediagent/src/config"
	"github.com/forgeworks/mediagent/src/providers/imagegen"
	"github.com/forgeworks/mediagent/src/storage"
)

// ImageGenerator is the single-shot image synthesis call GenerateImagesTool
// depends on.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string, n int) ([]string, error)
}

var _ ImageGenerator = (*imagegen.Client)(nil)

// GenerateImagesTool produces one or more images from a text description in
// a single request/response exchange.
type GenerateImagesTool struct {
	Client ImageGenerator
	Store  storage.BlobStore
	Prov   storage.ProvenanceRecorder
	Cfg    config.Image
}

func (t *GenerateImagesTool) Spec() mediagent.ToolSpec {
	return mediagent.ToolSpec{
		Name: "generate_images",
		Description: "Generates a number of images based upon a detailed description. " +
			"Capable of producing images in a variety of styles, with different levels of detail and complexity.",
		Params: []mediagent.ParamSpec{
			{
				Name: "description",
				Type: mediagent.ParamString,
				Description: "The detailed description of the image to be generated. The more detailed the description, " +
					"the better the image will be. Include the style, the colors, and any other helpful details.",
				Required: true,
			},
			{
				Name:        "count",
				Type:        mediagent.ParamInteger,
				Description: "Number of images to generate.",
				Required:    true,
			},
		},
	}
}

func (t *GenerateImagesTool) Invoke(ctx context.Context, req mediagent.ToolRequest) ([]string, error) {
	prog := req.Progress
	description := mediagent.StringArg(req.Arguments, "description")
	count, ok := mediagent.IntArg(req.Arguments, "count")
	if !ok || count < 1 {
		count = 1
	}

	if err := prog.Step(ctx, "executing model"); err != nil {
		return nil, err
	}
	payloads, err := t.Client.Generate(ctx, description, count)
	if err != nil {
		if ferr := prog.Fail(ctx, err.Error()); ferr != nil {
			return nil, ferr
		}
		return []string{}, nil
	}
	if len(payloads) == 0 {
		if ferr := prog.Fail(ctx, "model returned no images"); ferr != nil {
			return nil, ferr
		}
		return []string{}, nil
	}

	msg := "storing image"
	if len(payloads) > 1 {
		msg = "storing images"
	}
	if err := prog.Step(ctx, msg); err != nil {
		return nil, err
	}
	for _, payload := range payloads {
		ref, err := t.Store.SaveImage(ctx, payload)
		if err != nil {
			// Persistence faults abort the invocation, keeping the
			// references already announced.
			return prog.Refs(), err
		}
		recordProvenance(ctx, t.Prov, req.SessionID, "generate_images", ref, description)
		if err := prog.Artifact(ctx, mediagent.ArtifactContent{
			Kind:        mediagent.MediaImage,
			Ref:         ref,
			Description: description,
			Size:        t.Cfg.Size,
			Quality:     t.Cfg.Quality,
		}); err != nil {
			return prog.Refs(), err
		}
	}

	if err := prog.Complete(ctx, "image generation complete"); err != nil {
		return prog.Refs(), err
	}
	return prog.Refs(), nil
}
