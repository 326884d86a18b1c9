package attendance

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mentora/core"
	"github.com/trezcool/mentora/core/mentee"
)

var (
	errInvalidStatus = fmt.Sprintf("invalid status, must be one of %v", AllStatuses)
	errInvalidRange  = errors.New("`from` must not be after `to`")

	nowFunc = func() time.Time { return time.Now().UTC() } // mockable
)

type (
	Repository interface {
		// UpsertAttendance inserts the record or overwrites Status, MarkedBy & UpdatedAt
		// of the existing (MenteeID, Date) record. Remarks of an existing record are kept.
		UpsertAttendance(ctx context.Context, a Attendance) (Attendance, error)
		// QueryAttendance returns records ordered by date then mentee id.
		QueryAttendance(ctx context.Context, filter QueryFilter) ([]Attendance, error)
		// CountAttendance counts the records of a mentee, optionally restricted to statuses.
		CountAttendance(ctx context.Context, menteeID string, statuses ...Status) (int, error)
		DeleteAttendanceByMentee(ctx context.Context, menteeID string) error
	}

	// Locker serializes work on a key across concurrent requests.
	Locker interface {
		Lock(ctx context.Context, key string) (unlock func(), err error)
	}

	Service struct {
		repo    Repository
		mentees mentee.Repository
		locker  Locker
	}
)

func NewService(repo Repository, mentees mentee.Repository, locker Locker) *Service {
	return &Service{repo: repo, mentees: mentees, locker: locker}
}

// Percentage is round(present / total * 100), 0 when there is no record.
func Percentage(present, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(present) / float64(total) * 100))
}

func lockKey(menteeID string) string { return "attendance:mentee:" + menteeID }

// Save marks every mentee whose entry holds a status for `date`, then recomputes its summary.
// Entries are processed one by one; a failing entry does not stop the others.
func (svc *Service) Save(ctx context.Context, date string, marks map[string]map[string]string, markedBy string) (SaveResult, error) {
	if !core.IsDate(date) {
		return SaveResult{}, core.NewFieldValidationError("date", "date must be in YYYY-MM-DD format")
	}

	ids := make([]string, 0, len(marks))
	for id := range marks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	res := SaveResult{Date: date, Saved: []SavedMark{}, Failed: []FailedMark{}}
	for _, id := range ids {
		raw, ok := marks[id][date]
		if !ok {
			continue
		}
		status, ok := ParseStatus(raw)
		if !ok {
			res.Failed = append(res.Failed, FailedMark{MenteeID: id, Error: errInvalidStatus})
			continue
		}
		summary, err := svc.mark(ctx, id, date, status, markedBy)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			res.Failed = append(res.Failed, FailedMark{MenteeID: id, Error: errors.Cause(err).Error()})
			continue
		}
		res.Saved = append(res.Saved, SavedMark{MenteeID: id, Status: status, Attendance: summary})
	}
	return res, nil
}

func (svc *Service) mark(ctx context.Context, menteeID, date string, status Status, markedBy string) (mentee.AttendanceSummary, error) {
	if _, err := svc.mentees.GetMentee(ctx, mentee.GetFilter{ID: menteeID}); err != nil {
		return mentee.AttendanceSummary{}, err
	}

	unlock, err := svc.locker.Lock(ctx, lockKey(menteeID))
	if err != nil {
		return mentee.AttendanceSummary{}, errors.Wrap(err, "locking mentee")
	}
	defer unlock()

	now := nowFunc()
	_, err = svc.repo.UpsertAttendance(ctx, Attendance{
		ID:        uuid.New().String(),
		MenteeID:  menteeID,
		Date:      date,
		Status:    status,
		MarkedBy:  markedBy,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return mentee.AttendanceSummary{}, errors.Wrap(err, "upserting attendance")
	}
	return svc.recompute(ctx, menteeID)
}

// Recompute rebuilds the attendance summary of a mentee from its records.
func (svc *Service) Recompute(ctx context.Context, menteeID string) (mentee.AttendanceSummary, error) {
	unlock, err := svc.locker.Lock(ctx, lockKey(menteeID))
	if err != nil {
		return mentee.AttendanceSummary{}, errors.Wrap(err, "locking mentee")
	}
	defer unlock()
	return svc.recompute(ctx, menteeID)
}

// recompute must be called while holding the mentee lock.
func (svc *Service) recompute(ctx context.Context, menteeID string) (mentee.AttendanceSummary, error) {
	total, err := svc.repo.CountAttendance(ctx, menteeID)
	if err != nil {
		return mentee.AttendanceSummary{}, errors.Wrap(err, "counting attendance")
	}
	present, err := svc.repo.CountAttendance(ctx, menteeID, StatusPresent)
	if err != nil {
		return mentee.AttendanceSummary{}, errors.Wrap(err, "counting present days")
	}
	summary := mentee.AttendanceSummary{
		TotalDays:   total,
		PresentDays: present,
		Percentage:  Percentage(present, total),
	}
	if err := svc.mentees.UpdateAttendanceSummary(ctx, menteeID, summary); err != nil {
		return mentee.AttendanceSummary{}, errors.Wrap(err, "writing attendance summary")
	}
	return summary, nil
}

// ByDate returns the status (or null) of every mentee matching `filter` on `date`.
func (svc *Service) ByDate(ctx context.Context, date string, filter mentee.QueryFilter) (Sheet, error) {
	if !core.IsDate(date) {
		return nil, core.NewFieldValidationError("date", "date must be in YYYY-MM-DD format")
	}
	return svc.sheet(ctx, []string{date}, QueryFilter{Date: date}, filter)
}

// ByMonth returns, for every mentee matching `filter`, the status (or null) of each day of the month.
func (svc *Service) ByMonth(ctx context.Context, year int, month time.Month, filter mentee.QueryFilter) (Sheet, error) {
	if month < time.January || month > time.December {
		return nil, core.NewFieldValidationError("month", "month must be between 1 and 12")
	}
	if year < 1 || year > 9999 {
		return nil, core.NewFieldValidationError("year", "invalid year")
	}
	days := MonthDays(year, month)
	return svc.sheet(ctx, days, QueryFilter{From: days[0], To: days[len(days)-1]}, filter)
}

func (svc *Service) sheet(ctx context.Context, days []string, qf QueryFilter, filter mentee.QueryFilter) (Sheet, error) {
	filter.Clean()
	mentees, err := svc.mentees.QueryMentees(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying mentees")
	}
	if len(mentees) == 0 {
		return Sheet{}, nil
	}

	sheet := make(Sheet, len(mentees))
	qf.MenteeIDs = make([]string, 0, len(mentees))
	for _, mt := range mentees {
		statuses := make(DayStatuses, len(days))
		for _, d := range days {
			statuses[d] = null.String{}
		}
		sheet[mt.ID] = statuses
		qf.MenteeIDs = append(qf.MenteeIDs, mt.ID)
	}

	records, err := svc.repo.QueryAttendance(ctx, qf)
	if err != nil {
		return nil, errors.Wrap(err, "querying attendance")
	}
	for _, rec := range records {
		if statuses, ok := sheet[rec.MenteeID]; ok {
			if _, ok := statuses[rec.Date]; ok {
				statuses[rec.Date] = null.StringFrom(string(rec.Status))
			}
		}
	}
	return sheet, nil
}

// MonthDays lists every calendar day of the month as YYYY-MM-DD.
func MonthDays(year int, month time.Month) []string {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	n := first.AddDate(0, 1, -1).Day()
	days := make([]string, 0, n)
	for d := 0; d < n; d++ {
		days = append(days, first.AddDate(0, 0, d).Format(core.DateLayout))
	}
	return days
}

// Stats summarises the records of a mentee between from and to (both optional, inclusive).
func (svc *Service) Stats(ctx context.Context, menteeID, from, to string) (Stats, error) {
	if from != "" && !core.IsDate(from) {
		return Stats{}, core.NewFieldValidationError("from", "date must be in YYYY-MM-DD format")
	}
	if to != "" && !core.IsDate(to) {
		return Stats{}, core.NewFieldValidationError("to", "date must be in YYYY-MM-DD format")
	}
	if from != "" && to != "" && from > to {
		return Stats{}, core.NewValidationError(errInvalidRange)
	}
	if _, err := svc.mentees.GetMentee(ctx, mentee.GetFilter{ID: menteeID}); err != nil {
		return Stats{}, errors.Wrap(err, "finding mentee")
	}

	records, err := svc.repo.QueryAttendance(ctx, QueryFilter{MenteeIDs: []string{menteeID}, From: from, To: to})
	if err != nil {
		return Stats{}, errors.Wrap(err, "querying attendance")
	}
	if records == nil {
		records = []Attendance{}
	}

	stats := Stats{MenteeID: menteeID, From: from, To: to, TotalDays: len(records), Records: records}
	for _, rec := range records {
		switch rec.Status {
		case StatusPresent:
			stats.PresentDays++
		case StatusAbsent:
			stats.AbsentDays++
		case StatusLate:
			stats.LateDays++
		case StatusExcused:
			stats.ExcusedDays++
		}
	}
	stats.Percentage = Percentage(stats.PresentDays, stats.TotalDays)
	return stats, nil
}

// CountByDay counts the marks of `date` per status.
func (svc *Service) CountByDay(ctx context.Context, date string) (DayCount, error) {
	records, err := svc.repo.QueryAttendance(ctx, QueryFilter{Date: date})
	if err != nil {
		return DayCount{}, errors.Wrap(err, "querying attendance")
	}
	dc := DayCount{Date: date, Total: len(records), Counts: make(map[Status]int, len(AllStatuses))}
	for _, st := range AllStatuses {
		dc.Counts[st] = 0
	}
	for _, rec := range records {
		dc.Counts[rec.Status]++
	}
	return dc, nil
}

// Today returns the current UTC date as YYYY-MM-DD.
func Today() string {
	return nowFunc().Format(core.DateLayout)
}

func (svc *Service) DeleteByMentee(ctx context.Context, menteeID string) error {
	return svc.repo.DeleteAttendanceByMentee(ctx, menteeID)
}
