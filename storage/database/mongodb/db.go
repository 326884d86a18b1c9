package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/mentora/core"
	"github.com/trezcool/mentora/core/attendance"
	"github.com/trezcool/mentora/core/mentee"
	"github.com/trezcool/mentora/core/mentor"
	"github.com/trezcool/mentora/core/profile"
	"github.com/trezcool/mentora/core/user"
)

// Collections
const (
	colUsers      = "users"
	colAdmins     = "admins"
	colMentors    = "mentors"
	colMentees    = "mentees"
	colAttendance = "attendance"
)

type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

// Open connects to the configured database and waits until it answers.
func Open(ctx context.Context, conf *core.Config) (*DB, error) {
	opts := options.Client().
		ApplyURI(conf.Database.URI).
		SetConnectTimeout(conf.Database.ConnectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to database")
	}
	if err = ping(ctx, client); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &DB{client: client, db: client.Database(conf.Database.Name)}, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(ctx context.Context, client *mongo.Client) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		if err = client.Ping(ctx, nil); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "DB ping")
		case <-time.After(time.Duration(attempts) * 100 * time.Millisecond):
		}
	}
	return errors.Wrap(err, "DB ping timeout")
}

func (db *DB) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}

// Drop removes the whole database (tests).
func (db *DB) Drop(ctx context.Context) error {
	return db.db.Drop(ctx)
}

func (db *DB) col(name string) *mongo.Collection {
	return db.db.Collection(name)
}

// EnsureIndexes creates the unique indexes the repositories rely on.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	indexes := map[string][]mongo.IndexModel{
		colUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "role", Value: 1}}},
		},
		colAdmins: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: unique},
		},
		colMentors: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: unique},
		},
		colMentees: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "mentor_id", Value: 1}}},
			{Keys: bson.D{{Key: "student_id", Value: 1}}},
		},
		colAttendance: {
			{Keys: bson.D{{Key: "mentee_id", Value: 1}, {Key: "date", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "date", Value: 1}}},
		},
	}
	for name, models := range indexes {
		if _, err := db.col(name).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "creating %s indexes", name)
		}
	}
	return nil
}

// Repositories bundles the repositories backed by db.
type Repositories struct {
	Users      user.Repository
	Admins     profile.AdminRepository
	Mentors    mentor.Repository
	Mentees    mentee.Repository
	Attendance attendance.Repository
}

func (db *DB) Repositories() Repositories {
	return Repositories{
		Users:      NewUserRepository(db),
		Admins:     NewAdminRepository(db),
		Mentors:    NewMentorRepository(db),
		Mentees:    NewMenteeRepository(db),
		Attendance: NewAttendanceRepository(db),
	}
}
