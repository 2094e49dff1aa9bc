package whiteboard

import (
	"context"
	"time"
)

// Reactions
const (
	ReactionLike      = "like"
	ReactionDislike   = "dislike"
	ReactionConfusion = "confusion"
	ReactionImportant = "important"
)

// Actions
const (
	ActionReact   = "react"
	ActionComment = "comment"
	ActionOpen    = "open"
)

var Reactions = []string{ReactionLike, ReactionDislike, ReactionConfusion, ReactionImportant}

// historyLimit bounds the action history kept per room.
const historyLimit = 200

func ValidReaction(kind string) bool {
	for _, r := range Reactions {
		if r == kind {
			return true
		}
	}
	return false
}

// Comment is a note left on a shape.
type Comment struct {
	ID        string    `json:"id"`
	ShapeID   string    `json:"shapeId"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Action is one entry of a room's history.
type Action struct {
	Kind      string    `json:"action"`
	ShapeID   string    `json:"shapeId,omitempty"`
	Author    string    `json:"author"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Summary is what the shape tooltip shows.
type Summary struct {
	ShapeID      string         `json:"shapeId"`
	Reactions    map[string]int `json:"reactions"`
	CommentCount int            `json:"commentCount"`
}

// OverlayStore keeps the reactions, comments and history of rooms for a limited time.
// Nothing it holds is ever written to the document store.
type OverlayStore interface {
	// AddReaction increments a reaction counter of a shape and returns every counter of the shape.
	AddReaction(ctx context.Context, room, shapeID, kind string) (map[string]int, error)
	Reactions(ctx context.Context, room, shapeID string) (map[string]int, error)
	AddComment(ctx context.Context, room string, c Comment) error
	// Comments returns the comments of a shape, oldest first.
	Comments(ctx context.Context, room, shapeID string) ([]Comment, error)
	// LogAction appends to the room history, dropping the oldest entries past limit.
	LogAction(ctx context.Context, room string, a Action, limit int) error
	// History returns the room history, oldest first.
	History(ctx context.Context, room string) ([]Action, error)
}

// NewSummary fills every known reaction kind, absent ones with 0.
func NewSummary(shapeID string, counts map[string]int, comments int) Summary {
	s := Summary{ShapeID: shapeID, Reactions: make(map[string]int, len(Reactions)), CommentCount: comments}
	for _, r := range Reactions {
		s.Reactions[r] = counts[r]
	}
	return s
}
