package mediagent

import "context"

// Phase identifies the lifecycle stage a progress event describes.
type Phase string

const (
	PhaseRunInProgress  Phase = "run_in_progress"
	PhaseStepInProgress Phase = "step_in_progress"
	PhaseStepCompleted  Phase = "step_completed"
	PhaseStepFailed     Phase = "step_failed"
	PhaseRunCompleted   Phase = "run_completed"
)

// MediaKind distinguishes the payload type of a produced artifact.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// ArtifactContent describes one produced deliverable carried by a
// step_completed event. Ref is assigned only after the blob store accepted
// the payload; the remaining fields are provenance metadata.
type ArtifactContent struct {
	Kind        MediaKind `json:"kind"`
	Ref         string    `json:"ref"`
	Description string    `json:"description,omitempty"`
	Size        string    `json:"size,omitempty"`
	Quality     string    `json:"quality,omitempty"`
	Seconds     int       `json:"seconds,omitempty"`
	Capture     string    `json:"capture,omitempty"`
}

// Event is a single immutable record on an invocation's progress stream.
// Seq orders events within one invocation; Output marks events that carry
// user-visible deliverable content.
type Event struct {
	Tool     string           `json:"tool"`
	Seq      int              `json:"seq"`
	Phase    Phase            `json:"phase"`
	Message  string           `json:"message,omitempty"`
	Artifact *ArtifactContent `json:"artifact,omitempty"`
	Output   bool             `json:"output,omitempty"`
}

// Notifier delivers progress events to a remote consumer. Delivery may block
// until the consumer accepts the event; implementations must not drop or
// reorder events. A cancelled context aborts delivery with the context error.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, ev Event) error

func (f NotifierFunc) Notify(ctx context.Context, ev Event) error { return f(ctx, ev) }

// ChannelNotifier delivers events over a Go channel, preserving order and
// blocking the producer until the consumer drains the channel.
type ChannelNotifier struct {
	ch chan Event
}

// NewChannelNotifier constructs a notifier with the given buffer size.
// A zero buffer gives strict hand-off semantics.
func NewChannelNotifier(buffer int) *ChannelNotifier {
	if buffer < 0 {
		buffer = 0
	}
	return &ChannelNotifier{ch: make(chan Event, buffer)}
}

// Events exposes the consumer side of the channel.
func (n *ChannelNotifier) Events() <-chan Event { return n.ch }

// Notify blocks until the consumer accepts the event or ctx is cancelled.
func (n *ChannelNotifier) Notify(ctx context.Context, ev Event) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case n.ch <- ev:
		return nil
	}
}

// Close releases the consumer side. Call only after the producing invocation
// has returned.
func (n *ChannelNotifier) Close() { close(n.ch) }
