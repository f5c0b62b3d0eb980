package api

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"rest-planner/domain"
)

// TaskStore abstracts task persistence for handlers.
type TaskStore interface {
	Save(ctx context.Context, task domain.Task) error
	FindByID(ctx context.Context, id uuid.UUID) (domain.Task, bool, error)
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]domain.Task, error)
}

// Authenticator resolves Basic credentials to a user.
type Authenticator interface {
	Authenticate(username, password string) (domain.User, error)
}

// MessageSource resolves message keys for a locale.
type MessageSource interface {
	Message(key string, args []any, tag language.Tag) string
	Negotiate(acceptLanguage string) language.Tag
}

// taskView is the client-facing representation of a task. The owner is never
// exposed.
type taskView struct {
	ID        uuid.UUID `json:"id"`
	Details   string    `json:"details"`
	Completed bool      `json:"completed"`
}

func newTaskView(t domain.Task) taskView {
	return taskView{ID: t.ID, Details: t.Details, Completed: t.Completed}
}

func newTaskViews(tasks []domain.Task) []taskView {
	out := make([]taskView, len(tasks))
	for i, t := range tasks {
		out[i] = newTaskView(t)
	}
	return out
}

type errorsPresentation struct {
	Errors []string `json:"errors"`
}
