// Package queue defines the catalog event payload and the RabbitMQ publisher
// and consumer that carry it.
package queue

import (
    "time"

    "github.com/google/uuid"
)

// Event types, one per committed catalog mutation.
const (
    ActorCreated = "actor.created"
    ActorUpdated = "actor.updated"
    ActorDeleted = "actor.deleted"
    MovieCreated = "movie.created"
    MovieUpdated = "movie.updated"
    MovieDeleted = "movie.deleted"
)

// Resource names carried by events.
const (
    ResourceActor = "actor"
    ResourceMovie = "movie"
)

// CatalogEvent is published after an actor or movie was created, updated or
// deleted.  It carries only identifiers; consumers that need the current
// state read it from the API.
type CatalogEvent struct {
    ID         string `json:"id"`          // uuid, unique per event
    Type       string `json:"type"`        // e.g. actor.created
    Resource   string `json:"resource"`    // actor | movie
    ResourceID uint64 `json:"resource_id"` // primary key of the changed row
    OccurredAt string `json:"occurred_at"` // RFC3339, UTC
}

// NewCatalogEvent stamps a new event with a fresh id and the current time.
func NewCatalogEvent(eventType, resource string, resourceID uint64) CatalogEvent {
    return CatalogEvent{
        ID:         uuid.NewString(),
        Type:       eventType,
        Resource:   resource,
        ResourceID: resourceID,
        OccurredAt: time.Now().UTC().Format(time.RFC3339),
    }
}
