package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/mentora/core/mentor"
	"github.com/trezcool/mentora/core/profile"
)

// Admins

type adminDocument struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	FullName  string    `bson:"full_name"`
	Phone     string    `bson:"phone"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (doc adminDocument) toAdmin() profile.Admin {
	return profile.Admin{
		ID:        doc.ID,
		UserID:    doc.UserID,
		FullName:  doc.FullName,
		Phone:     doc.Phone,
		CreatedAt: doc.CreatedAt.UTC(),
		UpdatedAt: doc.UpdatedAt.UTC(),
	}
}

type adminRepository struct {
	col *mongo.Collection
}

var _ profile.AdminRepository = (*adminRepository)(nil)

func NewAdminRepository(db *DB) profile.AdminRepository {
	return &adminRepository{col: db.col(colAdmins)}
}

func (repo *adminRepository) CreateAdmin(ctx context.Context, a profile.Admin) (profile.Admin, error) {
	doc := adminDocument{ID: a.ID, UserID: a.UserID, FullName: a.FullName, Phone: a.Phone, CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt}
	if _, err := repo.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return profile.Admin{}, profile.ErrProfileExists
		}
		return profile.Admin{}, errors.Wrap(err, "inserting admin")
	}
	return a, nil
}

func (repo *adminRepository) GetAdminByUserID(ctx context.Context, userID string) (profile.Admin, error) {
	var doc adminDocument
	if err := repo.col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return profile.Admin{}, profile.ErrNotFound
		}
		return profile.Admin{}, errors.Wrap(err, "finding admin")
	}
	return doc.toAdmin(), nil
}

func (repo *adminRepository) UpdateAdmin(ctx context.Context, a profile.Admin) (profile.Admin, error) {
	update := bson.M{"$set": bson.M{"full_name": a.FullName, "phone": a.Phone, "updated_at": a.UpdatedAt}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc adminDocument
	if err := repo.col.FindOneAndUpdate(ctx, bson.M{"_id": a.ID}, update, opts).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return profile.Admin{}, profile.ErrNotFound
		}
		return profile.Admin{}, errors.Wrap(err, "updating admin")
	}
	return doc.toAdmin(), nil
}

func (repo *adminRepository) DeleteAdmin(ctx context.Context, id string) error {
	if _, err := repo.col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return errors.Wrap(err, "deleting admin")
	}
	return nil
}

// Mentors

type mentorDocument struct {
	ID          string    `bson:"_id"`
	UserID      string    `bson:"user_id"`
	FullName    string    `bson:"full_name"`
	Email       string    `bson:"email"`
	Phone       string    `bson:"phone"`
	Department  string    `bson:"department"`
	Designation string    `bson:"designation"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func toMentorDocument(m mentor.Mentor) mentorDocument {
	return mentorDocument{
		ID:          m.ID,
		UserID:      m.UserID,
		FullName:    m.FullName,
		Email:       m.Email,
		Phone:       m.Phone,
		Department:  m.Department,
		Designation: m.Designation,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (doc mentorDocument) toMentor() mentor.Mentor {
	return mentor.Mentor{
		ID:          doc.ID,
		UserID:      doc.UserID,
		FullName:    doc.FullName,
		Email:       doc.Email,
		Phone:       doc.Phone,
		Department:  doc.Department,
		Designation: doc.Designation,
		CreatedAt:   doc.CreatedAt.UTC(),
		UpdatedAt:   doc.UpdatedAt.UTC(),
	}
}

type mentorRepository struct {
	col *mongo.Collection
}

var _ mentor.Repository = (*mentorRepository)(nil)

func NewMentorRepository(db *DB) mentor.Repository {
	return &mentorRepository{col: db.col(colMentors)}
}

func (repo *mentorRepository) CreateMentor(ctx context.Context, m mentor.Mentor) (mentor.Mentor, error) {
	if _, err := repo.col.InsertOne(ctx, toMentorDocument(m)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return mentor.Mentor{}, mentor.ErrProfileExists
		}
		return mentor.Mentor{}, errors.Wrap(err, "inserting mentor")
	}
	return m, nil
}

func (repo *mentorRepository) GetMentor(ctx context.Context, filter mentor.GetFilter) (mentor.Mentor, error) {
	query := bson.M{}
	if filter.ID != "" {
		query["_id"] = filter.ID
	}
	if filter.UserID != "" {
		query["user_id"] = filter.UserID
	}
	if len(query) == 0 {
		return mentor.Mentor{}, mentor.ErrNotFound
	}

	var doc mentorDocument
	if err := repo.col.FindOne(ctx, query).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return mentor.Mentor{}, mentor.ErrNotFound
		}
		return mentor.Mentor{}, errors.Wrap(err, "finding mentor")
	}
	return doc.toMentor(), nil
}

func (repo *mentorRepository) QueryMentors(ctx context.Context, filter mentor.QueryFilter) ([]mentor.Mentor, error) {
	query := bson.M{}
	if filter.Search != "" {
		query["$or"] = bson.A{
			bson.M{"full_name": searchRegex(filter.Search)},
			bson.M{"email": searchRegex(filter.Search)},
		}
	}
	if filter.Department != "" {
		query["department"] = filter.Department
	}

	opts := options.Find().SetSort(bson.D{{Key: "full_name", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := repo.col.Find(ctx, query, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying mentors")
	}
	var docs []mentorDocument
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding mentors")
	}

	mentors := make([]mentor.Mentor, 0, len(docs))
	for _, doc := range docs {
		mentors = append(mentors, doc.toMentor())
	}
	return mentors, nil
}

func (repo *mentorRepository) UpdateMentor(ctx context.Context, m mentor.Mentor) (mentor.Mentor, error) {
	doc := toMentorDocument(m)
	update := bson.M{"$set": bson.M{
		"full_name":   doc.FullName,
		"email":       doc.Email,
		"phone":       doc.Phone,
		"department":  doc.Department,
		"designation": doc.Designation,
		"updated_at":  doc.UpdatedAt,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated mentorDocument
	if err := repo.col.FindOneAndUpdate(ctx, bson.M{"_id": m.ID}, update, opts).Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return mentor.Mentor{}, mentor.ErrNotFound
		}
		return mentor.Mentor{}, errors.Wrap(err, "updating mentor")
	}
	return updated.toMentor(), nil
}

func (repo *mentorRepository) DeleteMentor(ctx context.Context, id string) error {
	if _, err := repo.col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return errors.Wrap(err, "deleting mentor")
	}
	return nil
}

func (repo *mentorRepository) CountMentors(ctx context.Context) (int, error) {
	n, err := repo.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, errors.Wrap(err, "counting mentors")
	}
	return int(n), nil
}
