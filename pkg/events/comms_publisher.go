package events

import (
	"context"
	"fmt"
	"log/slog"

	comms "github.com/nats-io/nats.go"

	"github.com/morezero/framehost/pkg/commsutil"
)

const commsPublisherLogPrefix = "events:comms_publisher"

// CommsPublisherOpts configures CommsPublisher. Nil or zero values use defaults.
type CommsPublisherOpts struct {
	// Prefix overrides the first subject token (e.g. from FRAME_SUBJECT_PREFIX).
	Prefix string
}

// CommsPublisher publishes lifecycle events to COMMS subjects.
type CommsPublisher struct {
	nc     *comms.Conn
	prefix string
}

// NewCommsPublisher creates a new CommsPublisher. Pass nil for opts to use defaults.
func NewCommsPublisher(nc *comms.Conn, opts *CommsPublisherOpts) *CommsPublisher {
	prefix := commsutil.DefaultPrefix
	if opts != nil && opts.Prefix != "" {
		prefix = opts.Prefix
	}
	return &CommsPublisher{nc: nc, prefix: prefix}
}

// PublishLifecycle publishes a LifecycleEvent to both the granular
// (<prefix>.<app>.lifecycle.<kind>) and aggregate (<prefix>.<app>.lifecycle)
// subjects.
func (p *CommsPublisher) PublishLifecycle(_ context.Context, event *LifecycleEvent) error {
	data, err := commsutil.EncodePayload(event)
	if err != nil {
		return fmt.Errorf("%s - failed to encode event: %w", commsPublisherLogPrefix, err)
	}

	granular := commsutil.BuildLifecycleSubject(p.prefix, event.App, event.Kind)
	if err := p.nc.Publish(granular, data); err != nil {
		slog.Error(fmt.Sprintf("%s - failed to publish to %s: %v", commsPublisherLogPrefix, granular, err))
		return err
	}

	aggregate := commsutil.BuildAppSubject(p.prefix, event.App, commsutil.SuffixLifecycle)
	if err := p.nc.Publish(aggregate, data); err != nil {
		slog.Error(fmt.Sprintf("%s - failed to publish to %s: %v", commsPublisherLogPrefix, aggregate, err))
		return err
	}

	slog.Debug(fmt.Sprintf("%s - Published %s for %s", commsPublisherLogPrefix, event.Kind, event.App))
	return nil
}
