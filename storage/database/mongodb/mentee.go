package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/mentora/core/mentee"
)

type (
	parentInfoDocument struct {
		PrimaryContact string `bson:"primary_contact"`
		Email          string `bson:"email"`
	}

	attendanceSummaryDocument struct {
		TotalDays   int `bson:"total_days"`
		PresentDays int `bson:"present_days"`
		Percentage  int `bson:"percentage"`
	}

	menteeDocument struct {
		ID           string                    `bson:"_id"`
		UserID       string                    `bson:"user_id"`
		FullName     string                    `bson:"full_name"`
		StudentID    string                    `bson:"student_id"`
		Email        string                    `bson:"email"`
		Phone        string                    `bson:"phone"`
		Class        string                    `bson:"class"`
		Section      string                    `bson:"section"`
		AcademicYear string                    `bson:"academic_year"`
		ParentInfo   parentInfoDocument        `bson:"parent_info"`
		MentorID     *string                   `bson:"mentor_id"`
		Attendance   attendanceSummaryDocument `bson:"attendance"`
		CreatedAt    time.Time                 `bson:"created_at"`
		UpdatedAt    time.Time                 `bson:"updated_at"`
	}
)

func toMenteeDocument(m mentee.Mentee) menteeDocument {
	return menteeDocument{
		ID:           m.ID,
		UserID:       m.UserID,
		FullName:     m.FullName,
		StudentID:    m.StudentID,
		Email:        m.Email,
		Phone:        m.Phone,
		Class:        m.Class,
		Section:      m.Section,
		AcademicYear: m.AcademicYear,
		ParentInfo:   parentInfoDocument(m.ParentInfo),
		MentorID:     m.MentorID,
		Attendance:   attendanceSummaryDocument(m.Attendance),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func (doc menteeDocument) toMentee() mentee.Mentee {
	return mentee.Mentee{
		ID:           doc.ID,
		UserID:       doc.UserID,
		FullName:     doc.FullName,
		StudentID:    doc.StudentID,
		Email:        doc.Email,
		Phone:        doc.Phone,
		Class:        doc.Class,
		Section:      doc.Section,
		AcademicYear: doc.AcademicYear,
		ParentInfo:   mentee.ParentInfo(doc.ParentInfo),
		MentorID:     doc.MentorID,
		Attendance:   mentee.AttendanceSummary(doc.Attendance),
		CreatedAt:    doc.CreatedAt.UTC(),
		UpdatedAt:    doc.UpdatedAt.UTC(),
	}
}

type menteeRepository struct {
	col *mongo.Collection
}

var _ mentee.Repository = (*menteeRepository)(nil)

func NewMenteeRepository(db *DB) mentee.Repository {
	return &menteeRepository{col: db.col(colMentees)}
}

func (repo *menteeRepository) CreateMentee(ctx context.Context, m mentee.Mentee) (mentee.Mentee, error) {
	if _, err := repo.col.InsertOne(ctx, toMenteeDocument(m)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return mentee.Mentee{}, mentee.ErrProfileExists
		}
		return mentee.Mentee{}, errors.Wrap(err, "inserting mentee")
	}
	return m, nil
}

func (repo *menteeRepository) GetMentee(ctx context.Context, filter mentee.GetFilter) (mentee.Mentee, error) {
	query := bson.M{}
	if filter.ID != "" {
		query["_id"] = filter.ID
	}
	if filter.UserID != "" {
		query["user_id"] = filter.UserID
	}
	if len(query) == 0 {
		return mentee.Mentee{}, mentee.ErrNotFound
	}

	var doc menteeDocument
	if err := repo.col.FindOne(ctx, query).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return mentee.Mentee{}, mentee.ErrNotFound
		}
		return mentee.Mentee{}, errors.Wrap(err, "finding mentee")
	}
	return doc.toMentee(), nil
}

func menteeQuery(filter mentee.QueryFilter) bson.M {
	query := bson.M{}
	if len(filter.IDs) > 0 {
		query["_id"] = bson.M{"$in": filter.IDs}
	}
	if filter.MentorID != "" {
		query["mentor_id"] = filter.MentorID
	} else if filter.Unassigned {
		query["mentor_id"] = nil
	}
	if filter.Class != "" {
		query["class"] = filter.Class
	}
	if filter.Section != "" {
		query["section"] = filter.Section
	}
	if filter.Search != "" {
		query["$or"] = bson.A{
			bson.M{"full_name": searchRegex(filter.Search)},
			bson.M{"student_id": searchRegex(filter.Search)},
			bson.M{"email": searchRegex(filter.Search)},
		}
	}
	return query
}

func (repo *menteeRepository) QueryMentees(ctx context.Context, filter mentee.QueryFilter) ([]mentee.Mentee, error) {
	opts := options.Find().SetSort(bson.D{{Key: "full_name", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := repo.col.Find(ctx, menteeQuery(filter), opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying mentees")
	}
	var docs []menteeDocument
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding mentees")
	}

	mentees := make([]mentee.Mentee, 0, len(docs))
	for _, doc := range docs {
		mentees = append(mentees, doc.toMentee())
	}
	return mentees, nil
}

// UpdateMentee writes every profile field but the attendance summary.
func (repo *menteeRepository) UpdateMentee(ctx context.Context, m mentee.Mentee) (mentee.Mentee, error) {
	doc := toMenteeDocument(m)
	update := bson.M{"$set": bson.M{
		"full_name":     doc.FullName,
		"student_id":    doc.StudentID,
		"email":         doc.Email,
		"phone":         doc.Phone,
		"class":         doc.Class,
		"section":       doc.Section,
		"academic_year": doc.AcademicYear,
		"parent_info":   doc.ParentInfo,
		"mentor_id":     doc.MentorID,
		"updated_at":    doc.UpdatedAt,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated menteeDocument
	if err := repo.col.FindOneAndUpdate(ctx, bson.M{"_id": m.ID}, update, opts).Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return mentee.Mentee{}, mentee.ErrNotFound
		}
		return mentee.Mentee{}, errors.Wrap(err, "updating mentee")
	}
	return updated.toMentee(), nil
}

func (repo *menteeRepository) UpdateAttendanceSummary(ctx context.Context, id string, summary mentee.AttendanceSummary) error {
	update := bson.M{"$set": bson.M{"attendance": attendanceSummaryDocument(summary)}}
	res, err := repo.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return errors.Wrap(err, "updating attendance summary")
	}
	if res.MatchedCount == 0 {
		return mentee.ErrNotFound
	}
	return nil
}

func (repo *menteeRepository) UnassignMentor(ctx context.Context, mentorID string) (int, error) {
	res, err := repo.col.UpdateMany(ctx, bson.M{"mentor_id": mentorID}, bson.M{"$set": bson.M{"mentor_id": nil}})
	if err != nil {
		return 0, errors.Wrap(err, "unassigning mentor")
	}
	return int(res.ModifiedCount), nil
}

func (repo *menteeRepository) DeleteMentee(ctx context.Context, id string) error {
	if _, err := repo.col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return errors.Wrap(err, "deleting mentee")
	}
	return nil
}

func (repo *menteeRepository) CountMentees(ctx context.Context, filter mentee.QueryFilter) (int, error) {
	n, err := repo.col.CountDocuments(ctx, menteeQuery(filter))
	if err != nil {
		return 0, errors.Wrap(err, "counting mentees")
	}
	return int(n), nil
}
