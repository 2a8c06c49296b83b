package tools

import (
	"context"
	"encoding/base64"

	mediagent "github.com/forgeworks/mediagent"
	"github.com/forgeworks/mediagent/src/config"
	"github.com/forgeworks/mediagent/src/providers/imagegen"
	"github.com/forgeworks/mediagent/src/storage"
)

// ImageEditor is the multipart image-edit call EditImageTool depends on.
type ImageEditor interface {
	Edit(ctx context.Context, prompt string, image []byte) ([]string, error)
}

var _ ImageEditor = (*imagegen.Client)(nil)

// EditImageTool reworks a provided image according to a text description.
// The image arrives base64-encoded, optionally wrapped in a data URL.
type EditImageTool struct {
	Client ImageEditor
	Store  storage.BlobStore
	Prov   storage.ProvenanceRecorder
	Cfg    config.Image
}

func (t *EditImageTool) Spec() mediagent.ToolSpec {
	return mediagent.ToolSpec{
		Name: "edit_image",
		Description: "Edits an image based upon a detailed description and a provided image. " +
			"The image is used as a starting point for the edit; the more detailed the description, the better the result. " +
			"The surrounding UI supplies the image bytes based on the kind parameter, so a placeholder is acceptable for the image argument.",
		Params: []mediagent.ParamSpec{
			{
				Name: "description",
				Type: mediagent.ParamString,
				Description: "The detailed prompt of the edit to be made. Include the style, the colors, " +
					"and any other helpful details.",
				Required: true,
			},
			{
				Name:        "image",
				Type:        mediagent.ParamString,
				Description: "The base64 encoded image to be used as a starting point for the edit.",
				Required:    true,
			},
			{
				Name: "kind",
				Type: mediagent.ParamEnum,
				Description: "Choose FILE if the image is uploaded from the user's device. " +
					"Choose CAMERA if the image is captured with the user's camera.",
				Enum:     []string{"FILE", "CAMERA"},
				Required: true,
			},
		},
	}
}

func (t *EditImageTool) Invoke(ctx context.Context, req mediagent.ToolRequest) ([]string, error) {
	prog := req.Progress
	description := mediagent.StringArg(req.Arguments, "description")
	kind := mediagent.StringArg(req.Arguments, "kind")

	raw, err := base64.StdEncoding.DecodeString(stripDataURL(mediagent.StringArg(req.Arguments, "image")))
	if err != nil {
		if ferr := prog.Fail(ctx, "image payload is not valid base64"); ferr != nil {
			return nil, ferr
		}
		return []string{}, nil
	}

	if err := prog.Step(ctx, "executing model"); err != nil {
		return nil, err
	}
	payloads, err := t.Client.Edit(ctx, description, raw)
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

	if err := prog.Step(ctx, "storing image"); err != nil {
		return nil, err
	}
	for _, payload := range payloads {
		ref, err := t.Store.SaveImage(ctx, payload)
		if err != nil {
			return prog.Refs(), err
		}
		recordProvenance(ctx, t.Prov, req.SessionID, "edit_image", ref, description)
		if err := prog.Artifact(ctx, mediagent.ArtifactContent{
			Kind:        mediagent.MediaImage,
			Ref:         ref,
			Description: description,
			Size:        t.Cfg.Size,
			Quality:     t.Cfg.Quality,
			Capture:     kind,
		}); err != nil {
			return prog.Refs(), err
		}
	}

	if err := prog.Complete(ctx, "image edit complete"); err != nil {
		return prog.Refs(), err
	}
	return prog.Refs(), nil
}
