package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/mentora/core/mentee"
	"github.com/trezcool/mentora/core/mentor"
	"github.com/trezcool/mentora/core/profile"
)

// Admins

type adminRepository struct {
	db *table[profile.Admin]
}

var _ profile.AdminRepository = (*adminRepository)(nil)

func NewAdminRepository(db *DB) profile.AdminRepository {
	return &adminRepository{db: db.admins}
}

func (repo *adminRepository) CreateAdmin(_ context.Context, a profile.Admin) (profile.Admin, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, row := range repo.db.rows {
		if row.UserID == a.UserID {
			return profile.Admin{}, profile.ErrProfileExists
		}
	}
	repo.db.rows[a.ID] = &a
	return a, nil
}

func (repo *adminRepository) GetAdminByUserID(_ context.Context, userID string) (profile.Admin, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, row := range repo.db.rows {
		if row.UserID == userID {
			return *row, nil
		}
	}
	return profile.Admin{}, profile.ErrNotFound
}

func (repo *adminRepository) UpdateAdmin(_ context.Context, a profile.Admin) (profile.Admin, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.rows[a.ID]; !ok {
		return profile.Admin{}, profile.ErrNotFound
	}
	repo.db.rows[a.ID] = &a
	return a, nil
}

func (repo *adminRepository) DeleteAdmin(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.rows, id)
	return nil
}

// Mentors

type mentorRepository struct {
	db *table[mentor.Mentor]
}

var _ mentor.Repository = (*mentorRepository)(nil)

func NewMentorRepository(db *DB) mentor.Repository {
	return &mentorRepository{db: db.mentors}
}

func (repo *mentorRepository) CreateMentor(_ context.Context, m mentor.Mentor) (mentor.Mentor, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, row := range repo.db.rows {
		if row.UserID == m.UserID {
			return mentor.Mentor{}, mentor.ErrProfileExists
		}
	}
	repo.db.rows[m.ID] = &m
	return m, nil
}

func (repo *mentorRepository) GetMentor(_ context.Context, filter mentor.GetFilter) (mentor.Mentor, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter.ID != "" {
		if m, ok := repo.db.rows[filter.ID]; ok {
			return *m, nil
		}
		return mentor.Mentor{}, mentor.ErrNotFound
	}
	if filter.UserID != "" {
		for _, m := range repo.db.rows {
			if m.UserID == filter.UserID {
				return *m, nil
			}
		}
	}
	return mentor.Mentor{}, mentor.ErrNotFound
}

func (repo *mentorRepository) QueryMentors(_ context.Context, filter mentor.QueryFilter) ([]mentor.Mentor, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	mentors := make([]mentor.Mentor, 0, len(repo.db.rows))
	for _, m := range repo.db.rows {
		if filter.Search != "" && !(containsFold(m.FullName, filter.Search) || containsFold(m.Email, filter.Search)) {
			continue
		}
		if filter.Department != "" && m.Department != filter.Department {
			continue
		}
		mentors = append(mentors, *m)
	}
	sort.Slice(mentors, func(i, j int) bool {
		if mentors[i].FullName != mentors[j].FullName {
			return mentors[i].FullName < mentors[j].FullName
		}
		return mentors[i].ID < mentors[j].ID
	})
	return mentors, nil
}

func (repo *mentorRepository) UpdateMentor(_ context.Context, m mentor.Mentor) (mentor.Mentor, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.rows[m.ID]; !ok {
		return mentor.Mentor{}, mentor.ErrNotFound
	}
	repo.db.rows[m.ID] = &m
	return m, nil
}

func (repo *mentorRepository) DeleteMentor(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.rows, id)
	return nil
}

func (repo *mentorRepository) CountMentors(_ context.Context) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.rows), nil
}

// Mentees

type menteeRepository struct {
	db *table[mentee.Mentee]
}

var _ mentee.Repository = (*menteeRepository)(nil)

func NewMenteeRepository(db *DB) mentee.Repository {
	return &menteeRepository{db: db.mentees}
}

func (repo *menteeRepository) CreateMentee(_ context.Context, m mentee.Mentee) (mentee.Mentee, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, row := range repo.db.rows {
		if row.UserID == m.UserID {
			return mentee.Mentee{}, mentee.ErrProfileExists
		}
	}
	repo.db.rows[m.ID] = &m
	return m, nil
}

func (repo *menteeRepository) GetMentee(_ context.Context, filter mentee.GetFilter) (mentee.Mentee, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter.ID != "" {
		if m, ok := repo.db.rows[filter.ID]; ok {
			return *m, nil
		}
		return mentee.Mentee{}, mentee.ErrNotFound
	}
	if filter.UserID != "" {
		for _, m := range repo.db.rows {
			if m.UserID == filter.UserID {
				return *m, nil
			}
		}
	}
	return mentee.Mentee{}, mentee.ErrNotFound
}

func matchMentee(m mentee.Mentee, filter mentee.QueryFilter) bool {
	if len(filter.IDs) > 0 && !inList(filter.IDs, m.ID) {
		return false
	}
	if filter.MentorID != "" && (m.MentorID == nil || *m.MentorID != filter.MentorID) {
		return false
	}
	if filter.Unassigned && m.MentorID != nil {
		return false
	}
	if filter.Class != "" && m.Class != filter.Class {
		return false
	}
	if filter.Section != "" && m.Section != filter.Section {
		return false
	}
	if filter.Search != "" &&
		!(containsFold(m.FullName, filter.Search) || containsFold(m.StudentID, filter.Search) || containsFold(m.Email, filter.Search)) {
		return false
	}
	return true
}

func (repo *menteeRepository) QueryMentees(_ context.Context, filter mentee.QueryFilter) ([]mentee.Mentee, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	mentees := make([]mentee.Mentee, 0, len(repo.db.rows))
	for _, m := range repo.db.rows {
		if matchMentee(*m, filter) {
			mentees = append(mentees, *m)
		}
	}
	sort.Slice(mentees, func(i, j int) bool {
		if mentees[i].FullName != mentees[j].FullName {
			return mentees[i].FullName < mentees[j].FullName
		}
		return mentees[i].ID < mentees[j].ID
	})
	return mentees, nil
}

func (repo *menteeRepository) UpdateMentee(_ context.Context, m mentee.Mentee) (mentee.Mentee, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.rows[m.ID]
	if !ok {
		return mentee.Mentee{}, mentee.ErrNotFound
	}
	m.Attendance = orig.Attendance // only written by UpdateAttendanceSummary
	m.CreatedAt = orig.CreatedAt
	repo.db.rows[m.ID] = &m
	return m, nil
}

func (repo *menteeRepository) UpdateAttendanceSummary(_ context.Context, id string, summary mentee.AttendanceSummary) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	m, ok := repo.db.rows[id]
	if !ok {
		return mentee.ErrNotFound
	}
	m.Attendance = summary
	return nil
}

func (repo *menteeRepository) UnassignMentor(_ context.Context, mentorID string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var n int
	for _, m := range repo.db.rows {
		if m.MentorID != nil && *m.MentorID == mentorID {
			m.MentorID = nil
			n++
		}
	}
	return n, nil
}

func (repo *menteeRepository) DeleteMentee(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.rows, id)
	return nil
}

func (repo *menteeRepository) CountMentees(_ context.Context, filter mentee.QueryFilter) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var n int
	for _, m := range repo.db.rows {
		if matchMentee(*m, filter) {
			n++
		}
	}
	return n, nil
}
