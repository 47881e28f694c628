package users

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// CollectionName is the MongoDB collection holding user documents.
const CollectionName = "users"

// userDocument is the stored form: {_id, name, phone, email, __v}.
type userDocument struct {
	ID      primitive.ObjectID `bson:"_id"`
	Name    string             `bson:"name"`
	Phone   string             `bson:"phone"`
	Email   string             `bson:"email"`
	Version int                `bson:"__v"`
}

func newDocument(candidate Candidate) userDocument {
	return userDocument{
		ID:    primitive.NewObjectID(),
		Name:  candidate.Name,
		Phone: candidate.Phone,
		Email: candidate.Email,
	}
}

func (d userDocument) toUser() User {
	return User{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Phone:     d.Phone,
		Email:     d.Email,
		Version:   d.Version,
		CreatedAt: d.ID.Timestamp().UTC(),
	}
}

// MongoRepository implements Repository on a MongoDB collection.
type MongoRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoRepository builds a repository over the users collection of database.
func NewMongoRepository(client *mongo.Client, database string) *MongoRepository {
	return &MongoRepository{client: client, coll: client.Database(database).Collection(CollectionName)}
}

// Create inserts a new user document.
func (r *MongoRepository) Create(ctx context.Context, candidate Candidate) (User, error) {
	doc := newDocument(candidate)
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return User{}, err
	}
	return doc.toUser(), nil
}

// List returns every user document in natural order.
func (r *MongoRepository) List(ctx context.Context) ([]User, error) {
	cur, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]User, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toUser())
	}
	return out, nil
}

// Ping checks connectivity to the primary.
func (r *MongoRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.client.Ping(ctx, readpref.Primary())
}
