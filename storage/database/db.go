package database

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/mentora/core"
	"github.com/trezcool/mentora/core/attendance"
	"github.com/trezcool/mentora/core/mentee"
	"github.com/trezcool/mentora/core/mentor"
	"github.com/trezcool/mentora/core/profile"
	"github.com/trezcool/mentora/core/user"
	inmemdb "github.com/trezcool/mentora/storage/database/inmem"
	"github.com/trezcool/mentora/storage/database/mongodb"
)

type Repositories struct {
	Users      user.Repository
	Admins     profile.AdminRepository
	Mentors    mentor.Repository
	Mentees    mentee.Repository
	Attendance attendance.Repository
}

// Store is the record store selected by `database.engine`.
type Store struct {
	Repositories
	mongo *mongodb.DB
}

// Open opens the configured engine. A MongoDB store has its indexes ensured.
func Open(ctx context.Context, conf *core.Config) (*Store, error) {
	switch conf.Database.Engine {
	case core.EngineMemory:
		return &Store{Repositories: Repositories(inmemdb.New().Repositories())}, nil

	case core.EngineMongoDB:
		ctx, cancel := context.WithTimeout(ctx, conf.Database.ConnectTimeout)
		defer cancel()

		db, err := mongodb.Open(ctx, conf)
		if err != nil {
			return nil, errors.Wrap(err, "opening database")
		}
		if err = db.EnsureIndexes(ctx); err != nil {
			_ = db.Close(context.Background())
			return nil, errors.Wrap(err, "ensuring indexes")
		}
		return &Store{Repositories: Repositories(db.Repositories()), mongo: db}, nil
	}
	return nil, fmt.Errorf("unknown database engine %q", conf.Database.Engine)
}

// EnsureIndexes is a no-op for the in-memory engine.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if s.mongo == nil {
		return nil
	}
	return s.mongo.EnsureIndexes(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	if s.mongo == nil {
		return nil
	}
	return s.mongo.Close(ctx)
}
