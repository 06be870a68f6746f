package todos

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

const (
	defaultDatabase = "todo"
	collectionName  = "todos"
)

// MongoStore — хранилище задач в коллекции MongoDB.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore подключается к MongoDB и проверяет соединение Ping-ом.
//
// database может быть пустым: тогда берётся имя базы из URI, а если его нет — "todo".
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New("mongo: empty connection string")
	}

	if database == "" {
		database = databaseFromURI(uri)
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collectionName),
	}, nil
}

// FindAll возвращает все документы коллекции в естественном порядке.
func (s *MongoStore) FindAll(ctx context.Context) ([]Todo, error) {
	cur, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, storeErr("find", err)
	}
	defer cur.Close(ctx)

	todos := []Todo{}
	if err := cur.All(ctx, &todos); err != nil {
		return nil, storeErr("find", err)
	}
	return todos, nil
}

// Insert вставляет документ.
func (s *MongoStore) Insert(ctx context.Context, t Todo) error {
	if _, err := s.coll.InsertOne(ctx, t); err != nil {
		return storeErr("insert", err)
	}
	return nil
}

// FindByID ищет документ по _id; ErrNoDocuments -> ErrNotFound.
func (s *MongoStore) FindByID(ctx context.Context, id primitive.ObjectID) (Todo, error) {
	var t Todo
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Todo{}, ErrNotFound
	}
	if err != nil {
		return Todo{}, storeErr("find one", err)
	}
	return t, nil
}

// DeleteByID удаляет документ; DeletedCount == 0 -> ErrNotFound.
func (s *MongoStore) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storeErr("delete", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Save заменяет документ целиком; MatchedCount == 0 -> ErrNotFound.
func (s *MongoStore) Save(ctx context.Context, t Todo) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": t.ID}, t)
	if err != nil {
		return storeErr("save", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping проверяет доступность primary.
func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return storeErr("ping", err)
	}
	return nil
}

// Close закрывает соединение с MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func databaseFromURI(uri string) string {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil || cs.Database == "" {
		return defaultDatabase
	}
	return cs.Database
}
