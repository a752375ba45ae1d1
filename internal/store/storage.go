package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrConflict          = errors.New("resource already exists")
	ErrInvalidTransition = errors.New("only scheduled meetings can be cancelled")
	QueryTimeoutDuration = time.Second * 5
)

type Storage struct {
	Meetings interface {
		Create(context.Context, *Meeting) error
		GetByID(context.Context, int64) (*Meeting, error)
		Cancel(context.Context, int64) (*Meeting, error)
		Update(context.Context, int64, MeetingUpdate) (*Meeting, error)
		Delete(context.Context, int64) (*Meeting, error)
		List(context.Context, MeetingFilter) ([]Meeting, int, error)
	}
	Users interface {
		Create(context.Context, *User) error
		GetByID(context.Context, int64) (*User, error)
		GetByUsername(context.Context, string) (*User, error)
		ListByRole(context.Context, Role) ([]User, error)
		ExistsWithRole(context.Context, Role) (bool, error)
		Delete(context.Context, int64) error
	}
}

func NewStorage(db *pgxpool.Pool) Storage {
	return Storage{
		Meetings: &MeetingsStore{db},
		Users:    &UsersStore{db},
	}
}
