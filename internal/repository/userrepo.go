package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	stdlibTransactor "github.com/Thiht/transactor/stdlib"

	"github.com/chetan-code/tasktracker/internal/models"
)

const selectUsers = "SELECT id, username, password FROM users"

type UserRepo struct {
	dbGetter stdlibTransactor.DBGetter
	dialect  Dialect
}

func NewUserRepo(dbGetter stdlibTransactor.DBGetter, dialect Dialect) *UserRepo {
	return &UserRepo{dbGetter: dbGetter, dialect: dialect}
}

// FindByUsername matches the username exactly, case included
func (r *UserRepo) FindByUsername(ctx context.Context, username string) (models.User, error) {
	db := r.dbGetter(ctx)
	row := db.QueryRowContext(ctx, r.dialect.rebind(selectUsers+" WHERE username = ?"), username)
	return extractUser(row)
}

func (r *UserRepo) FindByID(ctx context.Context, id int) (models.User, error) {
	db := r.dbGetter(ctx)
	row := db.QueryRowContext(ctx, r.dialect.rebind(selectUsers+" WHERE id = ?"), id)
	return extractUser(row)
}

// Save inserts a new user. Users are never updated, so a user that already
// has an id is rejected. A username collision returns ErrDuplicate.
func (r *UserRepo) Save(ctx context.Context, u models.User) (models.User, error) {
	if u.ID != 0 {
		return models.User{}, fmt.Errorf("user %d already persisted", u.ID)
	}

	db := r.dbGetter(ctx)
	query := "INSERT INTO users (username, password) VALUES (?, ?)"

	var err error
	if r.dialect.returning {
		err = db.QueryRowContext(ctx, r.dialect.rebind(query+" RETURNING id"), u.Username, u.Password).Scan(&u.ID)
	} else {
		var res sql.Result
		res, err = db.ExecContext(ctx, r.dialect.rebind(query), u.Username, u.Password)
		if err == nil {
			var id int64
			id, err = res.LastInsertId()
			u.ID = int(id)
		}
	}
	if isDuplicate(err) {
		return models.User{}, fmt.Errorf("username %q: %w", u.Username, ErrDuplicate)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("could not insert user: %w", err)
	}
	return u, nil
}

func extractUser(row scannable) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}
