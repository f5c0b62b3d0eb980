package domain

import "github.com/google/uuid"

// Task represents a single unit of work owned by a user.
type Task struct {
	ID        uuid.UUID `json:"id"`
	Details   string    `json:"details"`
	Completed bool      `json:"completed"`
	OwnerID   uuid.UUID `json:"ownerId"`
}

// NewTask creates an open task with a freshly generated id.
func NewTask(details string, ownerID uuid.UUID) Task {
	return Task{
		ID:      uuid.New(),
		Details: details,
		OwnerID: ownerID,
	}
}

// NewTaskPayload is the body accepted by task creation. A nil Details means the
// field was missing or explicitly null.
type NewTaskPayload struct {
	Details *string `json:"details"`
}

// DetailsValue returns the payload details or an empty string when unset.
func (p NewTaskPayload) DetailsValue() string {
	if p.Details == nil {
		return ""
	}
	return *p.Details
}
