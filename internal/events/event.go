// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package events

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// EventType identifies the payload schema in message metadata.
const EventType = "ratings.submitted.v1"

// Metadata keys set on every message.
const (
	MetadataEventType = "event_type"
	MetadataUserID    = "user_id"
	MetadataTrigger   = "trigger"
)

// RatingsSubmitted asks for a user's recommendations to be recomputed.
type RatingsSubmitted struct {
	EventID    string    `json:"event_id"`
	UserID     int       `json:"user_id"`
	Trigger    string    `json:"trigger"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewRatingsSubmitted creates an event with a fresh id.
func NewRatingsSubmitted(userID int, trigger string, at time.Time) *RatingsSubmitted {
	return &RatingsSubmitted{
		EventID:    uuid.New().String(),
		UserID:     userID,
		Trigger:    trigger,
		OccurredAt: at.UTC(),
	}
}

// Validate checks required fields.
func (e *RatingsSubmitted) Validate() error {
	if e.EventID == "" {
		return errors.New("event_id is required")
	}
	if e.UserID <= 0 {
		return fmt.Errorf("user_id must be positive, got %d", e.UserID)
	}
	return nil
}

// ToMessage encodes the event. The event id doubles as the message UUID so
// NATS deduplication sees one id per event.
func (e *RatingsSubmitted) ToMessage() (*message.Message, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	msg := message.NewMessage(e.EventID, payload)
	msg.Metadata.Set(MetadataEventType, EventType)
	msg.Metadata.Set(MetadataUserID, strconv.Itoa(e.UserID))
	msg.Metadata.Set(MetadataTrigger, e.Trigger)
	return msg, nil
}

// FromMessage decodes and validates a message payload.
func FromMessage(msg *message.Message) (*RatingsSubmitted, error) {
	if t := msg.Metadata.Get(MetadataEventType); t != "" && t != EventType {
		return nil, fmt.Errorf("unexpected event type %q", t)
	}
	var e RatingsSubmitted
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
