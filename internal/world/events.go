// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package world

import (
	"context"
	"encoding/json"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// EventEmitter publishes world events for real-time consumers.
type EventEmitter interface {
	// Emit publishes an event to the given stream.
	Emit(ctx context.Context, stream string, eventType string, payload []byte) error
}

// MovePayload describes a hero position change.
type MovePayload struct {
	HeroID   string   `json:"hero_id"`
	Position Position `json:"position"`
}

// PresencePayload describes a hero joining or leaving a location.
type PresencePayload struct {
	HeroID       string `json:"hero_id"`
	LocationKind string `json:"location_kind"`
	LocationID   string `json:"location_id"`
}

// EmitMoveEvent emits a position update on the hero's room stream.
// If emitter is nil, this is a no-op.
func EmitMoveEvent(ctx context.Context, emitter EventEmitter, hero *Hero) error {
	if emitter == nil || hero.CurrentRoom == nil {
		return nil
	}
	payload := MovePayload{HeroID: hero.ID.String(), Position: hero.Position}
	data, err := json.Marshal(payload)
	if err != nil {
		return oops.Code("EVENT_MARSHAL_FAILED").With("event_type", "move").Wrap(err)
	}
	stream := "room:" + hero.CurrentRoom.String()
	if err := emitter.Emit(ctx, stream, "move", data); err != nil {
		return oops.Code("EVENT_EMIT_FAILED").With("stream", stream).With("event_type", "move").Wrap(err)
	}
	return nil
}

// EmitPresenceEvent emits a join or leave event on the location's stream.
// eventType is "join" or "leave". If emitter is nil, this is a no-op.
func EmitPresenceEvent(ctx context.Context, emitter EventEmitter, eventType string, heroID ulid.ULID, kind Kind, locationID ulid.ULID) error {
	if emitter == nil {
		return nil
	}
	payload := PresencePayload{
		HeroID:       heroID.String(),
		LocationKind: kind.String(),
		LocationID:   locationID.String(),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return oops.Code("EVENT_MARSHAL_FAILED").With("event_type", eventType).Wrap(err)
	}
	stream := kind.String() + ":" + locationID.String()
	if err := emitter.Emit(ctx, stream, eventType, data); err != nil {
		return oops.Code("EVENT_EMIT_FAILED").With("stream", stream).With("event_type", eventType).Wrap(err)
	}
	return nil
}
