package tools

import (
	"context"

	mediagent "github.com/forgeworks/mediagent"
	"github.com/forgeworks/mediagent/src/providers/imagegen"
	"github.com/forgeworks/mediagent/src/storage"
)

const defaultCaptionModel = "gpt-4o"

// ImageDescriber captions an image for CaptureImageTool.
type ImageDescriber interface {
	Describe(ctx context.Context, model, imageB64 string) (string, error)
}

var _ ImageDescriber = (*imagegen.Client)(nil)

// CaptureImageTool stores an image captured by the user's camera (or
// uploaded from their device) and attaches a model-written description.
type CaptureImageTool struct {
	Client ImageDescriber
	Store  storage.BlobStore
	Prov   storage.ProvenanceRecorder
	// Model is the chat model used for captioning; defaults to gpt-4o.
	Model string
}

func (t *CaptureImageTool) Spec() mediagent.ToolSpec {
	return mediagent.ToolSpec{
		Name: "capture_image",
		Description: "Captures an image using the user's camera or a file upload and produces a description of its content. " +
			"The surrounding UI handles the capture and supplies the image data; do not ask the user to upload or take a picture.",
		Params: []mediagent.ParamSpec{
			{
				Name:        "image",
				Type:        mediagent.ParamString,
				Description: "The base64 encoded image data captured from the user's camera.",
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

func (t *CaptureImageTool) Invoke(ctx context.Context, req mediagent.ToolRequest) ([]string, error) {
	prog := req.Progress
	kind := mediagent.StringArg(req.Arguments, "kind")
	payload := stripDataURL(mediagent.StringArg(req.Arguments, "image"))

	if err := prog.Step(ctx, "describing image"); err != nil {
		return nil, err
	}
	model := t.Model
	if model == "" {
		model = defaultCaptionModel
	}
	description, err := t.Client.Describe(ctx, model, payload)
	if err != nil {
		if ferr := prog.Fail(ctx, err.Error()); ferr != nil {
			return nil, ferr
		}
		return []string{}, nil
	}

	if err := prog.Step(ctx, "persisting image and description"); err != nil {
		return nil, err
	}
	ref, err := t.Store.SaveImage(ctx, payload)
	if err != nil {
		return prog.Refs(), err
	}
	recordProvenance(ctx, t.Prov, req.SessionID, "capture_image", ref, description)
	if err := prog.Artifact(ctx, mediagent.ArtifactContent{
		Kind:        mediagent.MediaImage,
		Ref:         ref,
		Description: description,
		Capture:     kind,
	}); err != nil {
		return prog.Refs(), err
	}

	if err := prog.Complete(ctx, "image capture complete"); err != nil {
		return prog.Refs(), err
	}
	return prog.Refs(), nil
}
