package server

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Event type constants prevent typos in feed event names.
const (
	EventCommentCreated  = "comment_created"
	EventCommentUpdated  = "comment_updated"
	EventCommentDeleted  = "comment_deleted"
	EventReactionUpdated = "reaction_updated"
	EventRSVPUpdated     = "rsvp_updated"
	EventNewsPublished   = "news_published"
	EventEnrollmentState = "enrollment_status_changed"
)

// publishBroadcastEvent pushes a feed event to every connected client,
// locally through the hub and across instances through Redis pub/sub.
func (s *Server) publishBroadcastEvent(eventType string, payload map[string]interface{}) {
	event := map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal feed event", "type", eventType, "error", err)
		return
	}
	if s.hub != nil {
		s.hub.BroadcastAll(eventJSON)
	}
	if s.notifier != nil {
		if err := s.notifier.PublishBroadcast(context.Background(), string(eventJSON)); err != nil {
			slog.Error("failed to publish feed event", "type", eventType, "error", err)
		}
	}
}

// publishUserEvent pushes a feed event to one user's connections.
func (s *Server) publishUserEvent(userID uint, eventType string, payload map[string]interface{}) {
	event := map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal feed event", "type", eventType, "error", err)
		return
	}
	if s.hub != nil {
		s.hub.BroadcastUser(userID, eventJSON)
	}
	if s.notifier != nil {
		if err := s.notifier.PublishUser(context.Background(), userID, string(eventJSON)); err != nil {
			slog.Error("failed to publish feed event", "type", eventType, "user_id", userID, "error", err)
		}
	}
}
