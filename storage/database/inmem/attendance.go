package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/mentora/core/attendance"
)

type attendanceRepository struct {
	db *table[attendance.Attendance]
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db.attendance}
}

func attendanceKey(menteeID, date string) string { return menteeID + "|" + date }

// Rows are keyed by (mentee id, date), which makes the pair unique.
func (repo *attendanceRepository) UpsertAttendance(_ context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	key := attendanceKey(a.MenteeID, a.Date)
	if row, ok := repo.db.rows[key]; ok {
		row.Status = a.Status
		row.MarkedBy = a.MarkedBy
		row.UpdatedAt = a.UpdatedAt
		return *row, nil
	}
	repo.db.rows[key] = &a
	return a, nil
}

func (repo *attendanceRepository) QueryAttendance(_ context.Context, filter attendance.QueryFilter) ([]attendance.Attendance, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	records := make([]attendance.Attendance, 0)
	for _, a := range repo.db.rows {
		if len(filter.MenteeIDs) > 0 && !inList(filter.MenteeIDs, a.MenteeID) {
			continue
		}
		if filter.Date != "" && a.Date != filter.Date {
			continue
		}
		// YYYY-MM-DD strings sort chronologically
		if filter.From != "" && a.Date < filter.From {
			continue
		}
		if filter.To != "" && a.Date > filter.To {
			continue
		}
		records = append(records, *a)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date < records[j].Date
		}
		return records[i].MenteeID < records[j].MenteeID
	})
	return records, nil
}

func (repo *attendanceRepository) CountAttendance(_ context.Context, menteeID string, statuses ...attendance.Status) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var n int
	for _, a := range repo.db.rows {
		if a.MenteeID != menteeID {
			continue
		}
		if len(statuses) > 0 && !hasStatus(statuses, a.Status) {
			continue
		}
		n++
	}
	return n, nil
}

func hasStatus(statuses []attendance.Status, s attendance.Status) bool {
	for _, st := range statuses {
		if st == s {
			return true
		}
	}
	return false
}

func (repo *attendanceRepository) DeleteAttendanceByMentee(_ context.Context, menteeID string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for key, a := range repo.db.rows {
		if a.MenteeID == menteeID {
			delete(repo.db.rows, key)
		}
	}
	return nil
}
