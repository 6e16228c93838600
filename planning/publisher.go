package planning

import (
	"context"

	"go.uber.org/multierr"

	"go.viam.com/planning/messages"
)

// Publisher delivers the message produced by each cycle.
type Publisher interface {
	Publish(ctx context.Context, msg *messages.ADCTrajectory) error
}

// ChannelPublisher sends every message on a channel. Publish blocks until the message is received
// or ctx is done.
type ChannelPublisher chan *messages.ADCTrajectory

// Publish sends msg on the channel.
func (ch ChannelPublisher) Publish(ctx context.Context, msg *messages.ADCTrajectory) error {
	select {
	case ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MultiPublisher publishes to every publisher in order, continuing past failures.
type MultiPublisher []Publisher

// Publish publishes msg to every publisher and combines their errors.
func (pubs MultiPublisher) Publish(ctx context.Context, msg *messages.ADCTrajectory) error {
	var errs error
	for _, pub := range pubs {
		errs = multierr.Combine(errs, pub.Publish(ctx, msg))
	}
	return errs
}
