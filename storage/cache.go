package storage

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"rest-planner/domain"
)

var errStaleTasks = errors.New("task list changed while loading")

type backend interface {
	Save(ctx context.Context, task domain.Task) error
	FindAll(ctx context.Context) ([]domain.Task, error)
	FindByID(ctx context.Context, id uuid.UUID) (domain.Task, bool, error)
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]domain.Task, error)
}

// Cache wraps a task backend with a Redis-backed cache of per-owner task lists.
type Cache struct {
	base  backend
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates a caching wrapper using the provided Redis client and TTL.
func NewCache(base backend, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("storage.NewCache: base storage is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{base: base, redis: client, ttl: ttl}
}

func (c *Cache) Save(ctx context.Context, task domain.Task) error {
	if err := c.base.Save(ctx, task); err != nil {
		return err
	}
	c.evict(ctx, task.OwnerID)
	return nil
}

func (c *Cache) FindAll(ctx context.Context) ([]domain.Task, error) {
	return c.base.FindAll(ctx)
}

func (c *Cache) FindByID(ctx context.Context, id uuid.UUID) (domain.Task, bool, error) {
	return c.base.FindByID(ctx, id)
}

func (c *Cache) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]domain.Task, error) {
	if tasks, ok := c.loadTasksFromCache(ctx, ownerID); ok {
		return tasks, nil
	}

	gen, ok := c.generation(ctx, ownerID)
	tasks, err := c.base.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if ok {
		c.storeTasks(ctx, ownerID, gen, tasks)
	}
	return tasks, nil
}

// generation reads the owner's list version. Save bumps it, so a list read
// before a concurrent Save is never written back.
func (c *Cache) generation(ctx context.Context, ownerID uuid.UUID) (string, bool) {
	if c.redis == nil || c.ttl == 0 {
		return "", false
	}
	gen, err := c.redis.Get(ctx, generationKey(ownerID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", false
	}
	return gen, true
}

func (c *Cache) loadTasksFromCache(ctx context.Context, ownerID uuid.UUID) ([]domain.Task, bool) {
	if c.redis == nil {
		return nil, false
	}
	key := tasksCacheKey(ownerID)
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			// On redis errors fall back to the backing storage without failing.
			_ = c.redis.Del(ctx, key).Err()
		}
		return nil, false
	}
	tasks := []domain.Task{}
	if err := sonic.Unmarshal(data, &tasks); err != nil {
		_ = c.redis.Del(ctx, key).Err()
		return nil, false
	}
	return tasks, true
}

func (c *Cache) storeTasks(ctx context.Context, ownerID uuid.UUID, gen string, tasks []domain.Task) {
	data, err := sonic.Marshal(tasks)
	if err != nil {
		return
	}
	genKey := generationKey(ownerID)
	_ = c.redis.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStaleTasks
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, tasksCacheKey(ownerID), data, c.ttl)
			return nil
		})
		return err
	}, genKey)
}

func (c *Cache) evict(ctx context.Context, ownerID uuid.UUID) {
	if c.redis == nil {
		return
	}
	_, _ = c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(ownerID))
		pipe.Del(ctx, tasksCacheKey(ownerID))
		return nil
	})
}

func tasksCacheKey(ownerID uuid.UUID) string {
	return "tasks:" + ownerID.String()
}

func generationKey(ownerID uuid.UUID) string {
	return "tasks:gen:" + ownerID.String()
}
