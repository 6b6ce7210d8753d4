package repo

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique key, such as a column name within a table, is taken.
	ErrDuplicate = errors.New("duplicate")
	// ErrLimitReached is returned when an insert would exceed the quota passed by the caller.
	ErrLimitReached = errors.New("limit reached")
)

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func duplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}
