// Package service holds the identity and task operations. Every task
// operation runs as an explicit models.Session and only touches tasks the
// session's user owns.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Thiht/transactor"
	"golang.org/x/crypto/bcrypt"

	"github.com/chetan-code/tasktracker/internal/models"
	"github.com/chetan-code/tasktracker/internal/repository"
)

// UserStore is the identity store the auth service reads and writes
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByID(ctx context.Context, id int) (models.User, error)
	Save(ctx context.Context, u models.User) (models.User, error)
}

// Credentials is what the register and login forms submit
type Credentials struct {
	Username string `form:"username" validate:"required,min=4,max=20"`
	Password string `form:"password" validate:"required,min=4,max=20"`
}

type Auth struct {
	users UserStore
	tx    transactor.Transactor
	cost  int
}

func NewAuth(users UserStore, tx transactor.Transactor, cost int) *Auth {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Auth{users: users, tx: tx, cost: cost}
}

// Register creates the user and returns the session to establish for it
func (a *Auth) Register(ctx context.Context, c Credentials) (models.Session, error) {
	if err := validateStruct(c); err != nil {
		return models.Session{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), a.cost)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to hash password: %w", err)
	}

	var user models.User
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		_, err := a.users.FindByUsername(ctx, c.Username)
		if err == nil {
			return ErrUsernameTaken
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		user, err = a.users.Save(ctx, models.User{Username: c.Username, Password: string(hash)})
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrUsernameTaken
		}
		return err
	})
	if err != nil {
		return models.Session{}, err
	}

	slog.InfoContext(ctx, "user_registered", "user_id", user.ID, "username", user.Username)
	return sessionOf(user), nil
}

// Authenticate checks the password against the stored bcrypt hash
func (a *Auth) Authenticate(ctx context.Context, c Credentials) (models.Session, error) {
	if err := validateStruct(c); err != nil {
		return models.Session{}, err
	}

	user, err := a.users.FindByUsername(ctx, c.Username)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Session{}, ErrUnknownUser
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to get user: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(c.Password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return models.Session{}, ErrWrongPassword
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to compare password: %w", err)
	}

	return sessionOf(user), nil
}

// Lookup resolves a session's user id back to a live session, failing with
// ErrUnknownUser when the account no longer exists
func (a *Auth) Lookup(ctx context.Context, id int) (models.Session, error) {
	user, err := a.users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Session{}, ErrUnknownUser
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return sessionOf(user), nil
}

func sessionOf(u models.User) models.Session {
	return models.Session{UserID: u.ID, Username: u.Username}
}
