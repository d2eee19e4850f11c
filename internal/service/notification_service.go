package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/devrep/reputation-registry/internal/events"
)

const defaultQueueSize = 256

// NotificationService turns committed registry events into compact audit log
// lines. Handlers only enqueue; Run drains the queue off the write path.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	queue      chan events.Event
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, queueSize int) *NotificationService {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		queue:      make(chan events.Event, queueSize),
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, t := range []events.EventType{
		events.EventProfileCreated,
		events.EventReputationUpdated,
		events.EventUserVerified,
		events.EventAchievementAdded,
		events.EventPlatformFeeUpdated,
	} {
		n.dispatcher.Subscribe(t, n.enqueue)
	}
}

func (n *NotificationService) enqueue(_ context.Context, event events.Event) error {
	select {
	case n.queue <- event:
		return nil
	default:
		return fmt.Errorf("audit queue full; dropped %s %s", event.Type, event.TxID)
	}
}

// Run logs queued events until ctx is done, then flushes what is left.
func (n *NotificationService) Run(ctx context.Context) {
	for {
		select {
		case event := <-n.queue:
			n.emit(event)
		case <-ctx.Done():
			for {
				select {
				case event := <-n.queue:
					n.emit(event)
				default:
					return
				}
			}
		}
	}
}

func (n *NotificationService) emit(event events.Event) {
	n.logger.Info(AuditLine(event),
		zap.String("event_id", event.ID),
		zap.String("tx_id", event.TxID),
		zap.String("event_type", string(event.Type)))
}

// AuditLine renders the short pipe-delimited form of an event.
func AuditLine(e events.Event) string {
	switch p := e.Payload.(type) {
	case events.ProfileCreatedPayload:
		return fmt.Sprintf("pc|id:%s|name:%s|h:%d", e.Subject, p.Username, e.Height)
	case events.ReputationUpdatedPayload:
		return fmt.Sprintf("ru|id:%s|rep:%d|by:%s|h:%d", e.Subject, p.Reputation, e.Actor, e.Height)
	case events.AchievementAddedPayload:
		return fmt.Sprintf("aa|id:%s|ach:%d|pts:%d|by:%s|h:%d", e.Subject, p.AchievementID, p.Points, e.Actor, e.Height)
	case events.PlatformFeeUpdatedPayload:
		return fmt.Sprintf("pf|fee:%d|by:%s|h:%d", p.FeeBasisPoints, e.Actor, e.Height)
	}
	if e.Type == events.EventUserVerified {
		return fmt.Sprintf("uv|id:%s|by:%s|h:%d", e.Subject, e.Actor, e.Height)
	}
	return fmt.Sprintf("%s|by:%s|h:%d", e.Type, e.Actor, e.Height)
}
