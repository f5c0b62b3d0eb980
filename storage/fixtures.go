package storage

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"rest-planner/domain"
)

type taskFixture struct {
	ID        uuid.UUID `yaml:"id"`
	Details   string    `yaml:"details"`
	Completed bool      `yaml:"completed"`
	OwnerID   uuid.UUID `yaml:"ownerId"`
}

type tasksFile struct {
	Tasks []taskFixture `yaml:"tasks"`
}

// LoadTasks reads seed tasks from a YAML file. Entries without an id get a
// generated one.
func LoadTasks(path string) ([]domain.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tasks file: %w", err)
	}
	return decodeTasks(data)
}

func decodeTasks(data []byte) ([]domain.Task, error) {
	var f tasksFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse tasks file: %w", err)
	}
	tasks := make([]domain.Task, 0, len(f.Tasks))
	for i, fx := range f.Tasks {
		if fx.Details == "" {
			return nil, fmt.Errorf("task %d: empty details", i)
		}
		if fx.OwnerID == uuid.Nil {
			return nil, fmt.Errorf("task %d: missing ownerId", i)
		}
		id := fx.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		tasks = append(tasks, domain.Task{ID: id, Details: fx.Details, Completed: fx.Completed, OwnerID: fx.OwnerID})
	}
	return tasks, nil
}
