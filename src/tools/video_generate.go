package tools

import (
	"context"
	"errors"
	"fmt"
	"io"

	mediagent "github.com/forgeworks/mediagent"
	"github.com/forgeworks/mediagent/src/config"
	"github.com/forgeworks/mediagent/src/jobs"
	"github.com/forgeworks/mediagent/src/providers/videogen"
	"github.com/forgeworks/mediagent/src/storage"
)

const (
	minVideoSeconds = 1
	maxVideoSeconds = 20
)

// VideoJobClient is the create-then-poll surface GenerateVideoTool depends
// on.
type VideoJobClient interface {
	CreateJob(ctx context.Context, prompt string, seconds int) (string, error)
	JobStatus(ctx context.Context, jobID string) (videogen.Job, error)
	Content(ctx context.Context, generationID string) (io.ReadCloser, error)
}

var _ VideoJobClient = (*videogen.Client)(nil)

// GenerateVideoTool produces a short video from a text description by
// submitting an asynchronous provider job and polling it to a terminal
// status.
type GenerateVideoTool struct {
	Client VideoJobClient
	Store  storage.BlobStore
	Prov   storage.ProvenanceRecorder
	Cfg    config.Video
}

func (t *GenerateVideoTool) Spec() mediagent.ToolSpec {
	return mediagent.ToolSpec{
		Name: "generate_video",
		Description: "Generates a video based on a detailed description. " +
			"Capable of producing videos in various styles and formats, with different levels of detail and complexity.",
		Params: []mediagent.ParamSpec{
			{
				Name: "description",
				Type: mediagent.ParamString,
				Description: "The detailed description of the video to be generated. The more detailed the description, " +
					"the better the video will be. Include the style, the colors, and any other helpful details.",
				Required: true,
			},
			{
				Name: "seconds",
				Type: mediagent.ParamInteger,
				Description: "Duration of the video in seconds, between 1 and 20. " +
					"If unclear, consult the user or choose 10.",
				Required: true,
			},
		},
	}
}

func (t *GenerateVideoTool) Invoke(ctx context.Context, req mediagent.ToolRequest) ([]string, error) {
	prog := req.Progress
	description := mediagent.StringArg(req.Arguments, "description")
	seconds, ok := mediagent.IntArg(req.Arguments, "seconds")
	if !ok {
		seconds = 10
	}
	if seconds < minVideoSeconds || seconds > maxVideoSeconds {
		if ferr := prog.Fail(ctx, fmt.Sprintf("seconds must be between %d and %d", minVideoSeconds, maxVideoSeconds)); ferr != nil {
			return nil, ferr
		}
		return []string{}, nil
	}

	if err := prog.Step(ctx, "executing model"); err != nil {
		return nil, err
	}
	jobID, err := t.Client.CreateJob(ctx, description, seconds)
	if err != nil {
		if ferr := prog.Fail(ctx, err.Error()); ferr != nil {
			return nil, ferr
		}
		return []string{}, nil
	}
	if err := prog.Step(ctx, "video generation job created: "+jobID); err != nil {
		return nil, err
	}

	var notifyErr error
	poller := jobs.Poller{
		Interval:    t.Cfg.PollInterval,
		MaxAttempts: t.Cfg.PollBudget,
		OnChange: func(s jobs.Status) error {
			notifyErr = prog.Step(ctx, "job status: "+string(s))
			return notifyErr
		},
	}
	var job videogen.Job
	status, err := poller.Wait(ctx, func(ctx context.Context) (jobs.Status, error) {
		var ferr error
		job, ferr = t.Client.JobStatus(ctx, jobID)
		return job.Status, ferr
	})
	if err != nil {
		if notifyErr != nil {
			return nil, notifyErr
		}
		msg := err.Error()
		if errors.Is(err, jobs.ErrBudget) {
			msg = "job timeout: provider did not reach a terminal status"
		}
		if ferr := prog.Fail(ctx, msg); ferr != nil {
			return nil, ferr
		}
		return []string{}, nil
	}
	if status != jobs.StatusSucceeded {
		msg := "video generation " + string(status)
		if job.FailureReason != "" {
			msg += ": " + job.FailureReason
		}
		if ferr := prog.Fail(ctx, msg); ferr != nil {
			return nil, ferr
		}
		return []string{}, nil
	}
	if len(job.Generations) == 0 {
		if ferr := prog.Fail(ctx, "job succeeded but returned no generations"); ferr != nil {
			return nil, ferr
		}
		return []string{}, nil
	}

	content, err := t.Client.Content(ctx, job.Generations[0].ID)
	if err != nil {
		if ferr := prog.Fail(ctx, err.Error()); ferr != nil {
			return nil, ferr
		}
		return []string{}, nil
	}
	defer content.Close()

	if err := prog.Step(ctx, "moving video to storage"); err != nil {
		return nil, err
	}
	ref, err := t.Store.SaveVideo(ctx, content)
	if err != nil {
		return prog.Refs(), err
	}
	recordProvenance(ctx, t.Prov, req.SessionID, "generate_video", ref, description)
	if err := prog.Artifact(ctx, mediagent.ArtifactContent{
		Kind:        mediagent.MediaVideo,
		Ref:         ref,
		Description: description,
		Seconds:     seconds,
	}); err != nil {
		return prog.Refs(), err
	}

	if err := prog.Complete(ctx, "video generation complete"); err != nil {
		return prog.Refs(), err
	}
	return prog.Refs(), nil
}
