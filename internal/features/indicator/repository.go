package indicator

import (
	"context"
	"time"

	"go-obra/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type IndicatorRepository interface {
	Create(ctx context.Context, ind *Indicator) error
	GetByID(ctx context.Context, id string) (*Indicator, error)
	List(ctx context.Context) ([]Indicator, error)
	Update(ctx context.Context, ind *Indicator) error
	Delete(ctx context.Context, id string) error
}

type IndicatorRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewIndicatorRepository(mongodb *database.MongodbDB) IndicatorRepository {
	return &IndicatorRepositoryImpl{
		Collection: mongodb.DB.Collection("indicadores"),
	}
}

func (r *IndicatorRepositoryImpl) Create(ctx context.Context, ind *Indicator) error {
	ind.ID = primitive.NewObjectID()
	ind.CreatedAt = time.Now()
	ind.UpdatedAt = time.Now()
	_, err := r.Collection.InsertOne(ctx, ind)
	return err
}

func (r *IndicatorRepositoryImpl) GetByID(ctx context.Context, id string) (*Indicator, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var ind Indicator
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&ind)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &ind, nil
}

func (r *IndicatorRepositoryImpl) List(ctx context.Context) ([]Indicator, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var inds []Indicator
	if err = cursor.All(ctx, &inds); err != nil {
		return nil, err
	}
	return inds, nil
}

func (r *IndicatorRepositoryImpl) Update(ctx context.Context, ind *Indicator) error {
	ind.UpdatedAt = time.Now()
	_, err := r.Collection.UpdateOne(ctx, bson.M{"_id": ind.ID}, bson.M{"$set": ind})
	return err
}

func (r *IndicatorRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
