package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ghoststack-shark/Katie-team-notetaker-backend/internal/domain"
)

const meetingsCollection = "meetings"

// MongoStore persists Meeting records in a MongoDB collection keyed by
// meetingId. Used when MONGO_URI is configured.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(database).Collection(meetingsCollection)

	indexCtx, cancelIndex := context.WithTimeout(ctx, 10*time.Second)
	defer cancelIndex()

	_, err = coll.Indexes().CreateOne(indexCtx, mongo.IndexModel{
		Keys:    bson.D{{Key: "meetingId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("ensure meetingId index: %w", err)
	}

	return &MongoStore{client: client, coll: coll}, nil
}

func (s *MongoStore) Upsert(ctx context.Context, meeting domain.Meeting) (domain.Meeting, error) {
	if meeting.MeetingID == "" {
		return domain.Meeting{}, errors.New("meetingId is required")
	}

	if meeting.CreatedAt == 0 {
		existing, err := s.Find(ctx, meeting.MeetingID)
		switch {
		case err == nil:
			meeting.CreatedAt = existing.CreatedAt
		case errors.Is(err, ErrMeetingNotFound):
			meeting.CreatedAt = time.Now().Unix()
		default:
			return domain.Meeting{}, err
		}
	}

	filter := bson.M{"meetingId": meeting.MeetingID}
	_, err := s.coll.ReplaceOne(ctx, filter, meeting, options.Replace().SetUpsert(true))
	if err != nil {
		return domain.Meeting{}, fmt.Errorf("upsert meeting %s: %w", meeting.MeetingID, err)
	}
	return meeting, nil
}

func (s *MongoStore) Find(ctx context.Context, meetingID string) (domain.Meeting, error) {
	var meeting domain.Meeting
	err := s.coll.FindOne(ctx, bson.M{"meetingId": meetingID}).Decode(&meeting)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Meeting{}, ErrMeetingNotFound
	}
	if err != nil {
		return domain.Meeting{}, fmt.Errorf("find meeting %s: %w", meetingID, err)
	}
	return meeting, nil
}

func (s *MongoStore) List(ctx context.Context) ([]domain.Meeting, error) {
	cursor, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	defer cursor.Close(ctx)

	meetings := make([]domain.Meeting, 0)
	if err := cursor.All(ctx, &meetings); err != nil {
		return nil, fmt.Errorf("decode meetings: %w", err)
	}
	return meetings, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
