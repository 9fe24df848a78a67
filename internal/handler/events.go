package handler

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/casting-agency/internal/queue"
)

// notifier publishes catalog events after a mutation has committed.  A
// failed publish is logged and otherwise ignored; the mutation already
// happened and the client gets its success response.
type notifier struct {
	events queue.Publisher
	log    logrus.FieldLogger
}

func (n notifier) publish(ctx context.Context, eventType, resource string, id uint64) {
	ev := queue.NewCatalogEvent(eventType, resource, id)
	if err := n.events.Publish(context.WithoutCancel(ctx), ev); err != nil {
		n.log.WithError(err).WithFields(logrus.Fields{
			"event":       ev.Type,
			"resource_id": id,
		}).Warn("publish catalog event failed")
	}
}
