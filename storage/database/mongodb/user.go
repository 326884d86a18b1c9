package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/mentora/core"
	"github.com/trezcool/mentora/core/user"
)

type userDocument struct {
	ID                 string     `bson:"_id"`
	Email              string     `bson:"email"`
	Role               string     `bson:"role"`
	IsActive           bool       `bson:"is_active"`
	MustChangePassword bool       `bson:"must_change_password"`
	PasswordHash       []byte     `bson:"password_hash"`
	LastLogin          *time.Time `bson:"last_login"`
	CreatedAt          time.Time  `bson:"created_at"`
	UpdatedAt          time.Time  `bson:"updated_at"`
}

func toUserDocument(usr user.User) userDocument {
	return userDocument{
		ID:                 usr.ID,
		Email:              usr.Email,
		Role:               usr.Role,
		IsActive:           usr.IsActive,
		MustChangePassword: usr.MustChangePassword,
		PasswordHash:       usr.PasswordHash,
		LastLogin:          usr.LastLogin,
		CreatedAt:          usr.CreatedAt,
		UpdatedAt:          usr.UpdatedAt,
	}
}

func (doc userDocument) toUser() user.User {
	usr := user.User{
		ID:                 doc.ID,
		Email:              doc.Email,
		Role:               doc.Role,
		IsActive:           doc.IsActive,
		MustChangePassword: doc.MustChangePassword,
		PasswordHash:       doc.PasswordHash,
		CreatedAt:          doc.CreatedAt.UTC(),
		UpdatedAt:          doc.UpdatedAt.UTC(),
	}
	if doc.LastLogin != nil {
		ll := doc.LastLogin.UTC()
		usr.LastLogin = &ll
	}
	return usr
}

type userRepository struct {
	col *mongo.Collection
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{col: db.col(colUsers)}
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if _, err := repo.col.InsertOne(ctx, toUserDocument(usr)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	query := bson.M{}
	if filter.ID != "" {
		query["_id"] = filter.ID
	}
	if filter.Email != "" {
		query["email"] = filter.Email
	}
	if len(query) == 0 {
		return user.User{}, user.ErrNotFound
	}

	var doc userDocument
	if err := repo.col.FindOne(ctx, query).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "finding user")
	}
	return doc.toUser(), nil
}

func userQuery(filter user.QueryFilter) bson.M {
	query := bson.M{}
	if filter.Search != "" {
		query["email"] = searchRegex(filter.Search)
	}
	if len(filter.Roles) > 0 {
		query["role"] = bson.M{"$in": filter.Roles}
	}
	if filter.IsActive != nil {
		query["is_active"] = *filter.IsActive
	}
	return query
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter user.QueryFilter, ordering ...core.DBOrdering) ([]user.User, error) {
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at"}}
	}
	opts := options.Find().SetSort(sortDoc(ordering))
	cur, err := repo.col.Find(ctx, userQuery(filter), opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	var docs []userDocument
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding users")
	}

	users := make([]user.User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, doc.toUser())
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	doc := toUserDocument(usr)
	update := bson.M{"$set": bson.M{
		"email":                doc.Email,
		"role":                 doc.Role,
		"is_active":            doc.IsActive,
		"must_change_password": doc.MustChangePassword,
		"password_hash":        doc.PasswordHash,
		"last_login":           doc.LastLogin,
		"updated_at":           doc.UpdatedAt,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated userDocument
	if err := repo.col.FindOneAndUpdate(ctx, bson.M{"_id": usr.ID}, update, opts).Decode(&updated); err != nil {
		switch {
		case err == mongo.ErrNoDocuments:
			return user.User{}, user.ErrNotFound
		case mongo.IsDuplicateKeyError(err):
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	return updated.toUser(), nil
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := repo.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}

func (repo *userRepository) CountUsers(ctx context.Context, filter user.QueryFilter) (int, error) {
	n, err := repo.col.CountDocuments(ctx, userQuery(filter))
	if err != nil {
		return 0, errors.Wrap(err, "counting users")
	}
	return int(n), nil
}
