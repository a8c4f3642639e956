package store

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Storage struct {
	Dataset interface {
		Replace(ctx context.Context, scs []SC, savings []Saving, source string, missing ...string) (Snapshot, error)
		Current(ctx context.Context) (*Dataset, error)
		Snapshot(ctx context.Context) (Snapshot, error)
	}
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{
		Dataset: NewDatasetStore(db),
	}
}
