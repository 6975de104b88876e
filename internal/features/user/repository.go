package user

import (
	"context"

	common_models "go-pos/internal/common/models"
	"go-pos/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository interface {
	Create(ctx context.Context, user *common_models.User) error
	FindByID(ctx context.Context, id string) (*common_models.User, error)
	FindByUsername(ctx context.Context, username string) (*common_models.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]common_models.User, error)
	List(ctx context.Context, filter map[string]interface{}, page, limit int64) ([]common_models.User, int64, error)
	CountByRole(ctx context.Context, roleID primitive.ObjectID) (int64, error)
	UpdateLastLogin(ctx context.Context, id primitive.ObjectID) error
}

type UserRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewUserRepository(mongodb *database.MongodbDB) UserRepository {
	return &UserRepositoryImpl{
		Collection: mongodb.DB.Collection("users"),
	}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *common_models.User) error {
	_, err := r.Collection.InsertOne(ctx, user)
	return err
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id string) (*common_models.User, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var user common_models.User
	err = r.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByUsername(ctx context.Context, username string) (*common_models.User, error) {
	var user common_models.User
	err := r.Collection.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByIDs(ctx context.Context, ids []string) ([]common_models.User, error) {
	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err == nil {
			objectIDs = append(objectIDs, oid)
		}
	}

	cursor, err := r.Collection.Find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []common_models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepositoryImpl) List(ctx context.Context, filter map[string]interface{}, page, limit int64) ([]common_models.User, int64, error) {
	query := bson.M{}
	for k, v := range filter {
		query[k] = v
	}

	total, err := r.Collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetLimit(limit).
		SetSkip((page - 1) * limit).
		SetSort(bson.M{"username": 1})

	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var users []common_models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepositoryImpl) CountByRole(ctx context.Context, roleID primitive.ObjectID) (int64, error) {
	return r.Collection.CountDocuments(ctx, bson.M{"roles": roleID})
}

func (r *UserRepositoryImpl) UpdateLastLogin(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$currentDate": bson.M{"last_login": true},
	})
	return err
}
