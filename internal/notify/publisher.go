// Package notify publishes budget alert events for out-of-process consumers.
package notify

import "context"

// AlertRoutingKey is the routing key of every alert event.
const AlertRoutingKey = "budget.alert"

// Publisher delivers alert events.
type Publisher interface {
	PublishAlert(ctx context.Context, msg *AlertMessage) error
	Close() error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishAlert(context.Context, *AlertMessage) error { return nil }

func (NopPublisher) Close() error { return nil }
