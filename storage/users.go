package storage

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"rest-planner/domain"
)

var errUnknownUser = errors.New("unknown user")

// Users resolves Basic credentials against a fixed set of accounts.
type Users struct {
	byName map[string]domain.User
	// compared on unknown usernames so lookups cost the same either way
	dummyHash []byte
}

type usersFile struct {
	Users []domain.User `yaml:"users"`
}

// NewUsers indexes the given accounts by username. Duplicate usernames, nil ids
// and empty hashes are rejected.
func NewUsers(users []domain.User) (*Users, error) {
	byName := make(map[string]domain.User, len(users))
	for i, u := range users {
		name := strings.TrimSpace(u.Username)
		if name == "" {
			return nil, fmt.Errorf("user %d: empty username", i)
		}
		if u.ID == uuid.Nil {
			return nil, fmt.Errorf("user %q: missing id", name)
		}
		if u.PasswordHash == "" {
			return nil, fmt.Errorf("user %q: missing password hash", name)
		}
		if _, dup := byName[name]; dup {
			return nil, fmt.Errorf("user %q: duplicate username", name)
		}
		u.Username = name
		byName[name] = u
	}
	dummy, err := newDummyHash(users)
	if err != nil {
		return nil, err
	}
	return &Users{byName: byName, dummyHash: dummy}, nil
}

func newDummyHash(users []domain.User) ([]byte, error) {
	cost := bcrypt.DefaultCost
	for _, u := range users {
		if c, err := bcrypt.Cost([]byte(u.PasswordHash)); err == nil {
			cost = c
			break
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), cost)
	if err != nil {
		return nil, fmt.Errorf("dummy password hash: %w", err)
	}
	return hash, nil
}

// LoadUsers reads a YAML users file.
func LoadUsers(path string) (*Users, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read users file: %w", err)
	}
	var f usersFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse users file: %w", err)
	}
	return NewUsers(f.Users)
}

// Authenticate returns the user when the password matches its bcrypt hash.
func (u *Users) Authenticate(username, password string) (domain.User, error) {
	user, ok := u.byName[username]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(u.dummyHash, []byte(password))
		return domain.User{}, errUnknownUser
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Len reports the number of known accounts.
func (u *Users) Len() int { return len(u.byName) }
