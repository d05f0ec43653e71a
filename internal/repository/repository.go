package repository

import (
	"context"
	"time"

	"github.com/AnshRaj112/travel-journal-backend/internal/database"
	"go.uber.org/zap"
)

const defaultQueryTimeout = 5 * time.Second

// Connector hands out one database connection per operation.
// *database.Adapter is the production implementation.
type Connector interface {
	Connect(ctx context.Context) (*database.Conn, error)
}

type Repository struct {
	Entries *EntryRepository
}

func NewRepository(db Connector, log *zap.Logger, queryTimeout time.Duration) *Repository {
	if log == nil {
		log = zap.NewNop()
	}
	if queryTimeout <= 0 {
		queryTimeout = defaultQueryTimeout
	}
	return &Repository{
		Entries: &EntryRepository{db: db, log: log, timeout: queryTimeout},
	}
}
