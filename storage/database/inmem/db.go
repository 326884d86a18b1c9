package inmemdb

import (
	"sync"

	"github.com/trezcool/mentora/core/attendance"
	"github.com/trezcool/mentora/core/mentee"
	"github.com/trezcool/mentora/core/mentor"
	"github.com/trezcool/mentora/core/profile"
	"github.com/trezcool/mentora/core/user"
)

// DB is an in-memory record store. Every table is guarded by its own mutex.
type DB struct {
	users      *table[user.User]
	admins     *table[profile.Admin]
	mentors    *table[mentor.Mentor]
	mentees    *table[mentee.Mentee]
	attendance *table[attendance.Attendance]
}

type table[T any] struct {
	mutex sync.RWMutex
	rows  map[string]*T // {id: row}
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]*T)}
}

// all must be called while holding the lock.
func (t *table[T]) all() []T {
	rows := make([]T, 0, len(t.rows))
	for _, r := range t.rows {
		rows = append(rows, *r)
	}
	return rows
}

func New() *DB {
	return &DB{
		users:      newTable[user.User](),
		admins:     newTable[profile.Admin](),
		mentors:    newTable[mentor.Mentor](),
		mentees:    newTable[mentee.Mentee](),
		attendance: newTable[attendance.Attendance](),
	}
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
