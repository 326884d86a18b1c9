package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/mentora/core/attendance"
)

type attendanceDocument struct {
	ID        string    `bson:"_id"`
	MenteeID  string    `bson:"mentee_id"`
	Date      string    `bson:"date"`
	Status    string    `bson:"status"`
	MarkedBy  string    `bson:"marked_by"`
	Remarks   string    `bson:"remarks"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (doc attendanceDocument) toAttendance() attendance.Attendance {
	return attendance.Attendance{
		ID:        doc.ID,
		MenteeID:  doc.MenteeID,
		Date:      doc.Date,
		Status:    attendance.Status(doc.Status),
		MarkedBy:  doc.MarkedBy,
		Remarks:   doc.Remarks,
		CreatedAt: doc.CreatedAt.UTC(),
		UpdatedAt: doc.UpdatedAt.UTC(),
	}
}

type attendanceRepository struct {
	col *mongo.Collection
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{col: db.col(colAttendance)}
}

// UpsertAttendance relies on the unique (mentee_id, date) index. Two concurrent upserts of a
// missing record may both try to insert; the loser gets a duplicate key error and is retried
// once, which then matches the winner's record.
func (repo *attendanceRepository) UpsertAttendance(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	filter := bson.M{"mentee_id": a.MenteeID, "date": a.Date}
	update := bson.M{
		"$set": bson.M{
			"status":     string(a.Status),
			"marked_by":  a.MarkedBy,
			"updated_at": a.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"_id":        a.ID,
			"remarks":    a.Remarks,
			"created_at": a.CreatedAt,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc attendanceDocument
	err := repo.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if mongo.IsDuplicateKeyError(err) {
		err = repo.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	}
	if err != nil {
		return attendance.Attendance{}, errors.Wrap(err, "upserting attendance")
	}
	return doc.toAttendance(), nil
}

func (repo *attendanceRepository) QueryAttendance(ctx context.Context, filter attendance.QueryFilter) ([]attendance.Attendance, error) {
	query := bson.M{}
	if len(filter.MenteeIDs) > 0 {
		query["mentee_id"] = bson.M{"$in": filter.MenteeIDs}
	}
	if filter.Date != "" {
		query["date"] = filter.Date
	} else if filter.From != "" || filter.To != "" {
		// YYYY-MM-DD strings sort chronologically
		rng := bson.M{}
		if filter.From != "" {
			rng["$gte"] = filter.From
		}
		if filter.To != "" {
			rng["$lte"] = filter.To
		}
		query["date"] = rng
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "mentee_id", Value: 1}})
	cur, err := repo.col.Find(ctx, query, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying attendance")
	}
	var docs []attendanceDocument
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding attendance")
	}

	records := make([]attendance.Attendance, 0, len(docs))
	for _, doc := range docs {
		records = append(records, doc.toAttendance())
	}
	return records, nil
}

func (repo *attendanceRepository) CountAttendance(ctx context.Context, menteeID string, statuses ...attendance.Status) (int, error) {
	query := bson.M{"mentee_id": menteeID}
	if len(statuses) > 0 {
		sts := make([]string, 0, len(statuses))
		for _, st := range statuses {
			sts = append(sts, string(st))
		}
		query["status"] = bson.M{"$in": sts}
	}
	n, err := repo.col.CountDocuments(ctx, query)
	if err != nil {
		return 0, errors.Wrap(err, "counting attendance")
	}
	return int(n), nil
}

func (repo *attendanceRepository) DeleteAttendanceByMentee(ctx context.Context, menteeID string) error {
	if _, err := repo.col.DeleteMany(ctx, bson.M{"mentee_id": menteeID}); err != nil {
		return errors.Wrap(err, "deleting attendance")
	}
	return nil
}
