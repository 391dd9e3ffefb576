// Package relation models the user-scoped junction records: favorites,
// shopping cart entries and follows. Each (user, target) pair exists at most
// once.
package relation

import (
	"errors"
	"fmt"
	"time"
)

// Kind identifies a relation table.
type Kind string

const (
	KindFavorite Kind = "favorite"
	KindPurchase Kind = "purchase"
	KindFollow   Kind = "follow"
)

// Valid reports whether k is a known relation kind.
func (k Kind) Valid() bool {
	switch k {
	case KindFavorite, KindPurchase, KindFollow:
		return true
	}
	return false
}

// TargetsRecipe reports whether the relation points at a recipe rather than a user.
func (k Kind) TargetsRecipe() bool {
	return k == KindFavorite || k == KindPurchase
}

// ErrDuplicate and ErrNotFound are matched by the typed errors below.
var (
	ErrDuplicate = errors.New("relation already exists")
	ErrNotFound  = errors.New("relation does not exist")
)

var duplicateMessages = map[Kind]string{
	KindFavorite: "already favorited",
	KindPurchase: "already in shopping cart",
	KindFollow:   "already following",
}

var notFoundMessages = map[Kind]string{
	KindFavorite: "recipe is not in favorites",
	KindPurchase: "recipe is not in shopping cart",
	KindFollow:   "no such subscription",
}

// SelfFollowMessage is reported when a user tries to follow themselves.
const SelfFollowMessage = "cannot subscribe to yourself"

// DuplicateRelationError is returned when a relation already exists or is
// forbidden outright.
type DuplicateRelationError struct {
	Kind    Kind
	Message string
}

// NewDuplicateError builds the error for an existing (user, target) pair.
func NewDuplicateError(kind Kind) *DuplicateRelationError {
	return &DuplicateRelationError{Kind: kind, Message: duplicateMessages[kind]}
}

func (e *DuplicateRelationError) Error() string { return e.Message }

func (e *DuplicateRelationError) Is(target error) bool { return target == ErrDuplicate }

// NotFoundError is returned when removing a relation that is not stored.
type NotFoundError struct {
	Kind    Kind
	Message string
}

// NewNotFoundError builds the error for a missing (user, target) pair.
func NewNotFoundError(kind Kind) *NotFoundError {
	return &NotFoundError{Kind: kind, Message: notFoundMessages[kind]}
}

func (e *NotFoundError) Error() string { return e.Message }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Relation is a single junction row.
type Relation struct {
	Kind      Kind
	UserID    int64
	TargetID  int64
	CreatedAt time.Time
}

// New validates a relation before it is stored. Follows may not point at the
// follower.
func New(kind Kind, userID, targetID int64) (Relation, error) {
	if !kind.Valid() {
		return Relation{}, fmt.Errorf("unknown relation kind %q", kind)
	}
	if kind == KindFollow && userID == targetID {
		return Relation{}, &DuplicateRelationError{Kind: KindFollow, Message: SelfFollowMessage}
	}
	return Relation{
		Kind:      kind,
		UserID:    userID,
		TargetID:  targetID,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// AddedEvent is raised after a relation is stored
type AddedEvent struct {
	Kind     Kind
	UserID   int64
	TargetID int64
	At       time.Time
}

func (e AddedEvent) EventName() string     { return "relation.added" }
func (e AddedEvent) OccurredAt() time.Time { return e.At }

// RemovedEvent is raised after a relation is deleted
type RemovedEvent struct {
	Kind     Kind
	UserID   int64
	TargetID int64
	At       time.Time
}

func (e RemovedEvent) EventName() string     { return "relation.removed" }
func (e RemovedEvent) OccurredAt() time.Time { return e.At }
