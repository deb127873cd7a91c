package history

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	dperrors "github.com/depexplain/depexplain/pkg/errors"
	"github.com/depexplain/depexplain/pkg/report"
	"github.com/depexplain/depexplain/pkg/rules"
)

const (
	// DefaultDatabase is the MongoDB database name.
	DefaultDatabase = "depexplain"

	// reportsCollection holds one document per stored report.
	reportsCollection = "reports"

	connectTimeout = 10 * time.Second
)

// reportDoc is the stored shape of a report.
type reportDoc struct {
	ID          string         `bson:"_id"`
	Input       string         `bson:"input"`
	GeneratedAt time.Time      `bson:"generated_at"`
	Findings    int            `bson:"findings"`
	Compatible  bool           `bson:"compatible"`
	MaxSeverity string         `bson:"max_severity"`
	Report      *report.Report `bson:"report"`
}

// MongoStore persists reports in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and verifies the connection with a
// ping. An empty database name selects DefaultDatabase.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if database == "" {
		database = DefaultDatabase
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, dperrors.Wrap(dperrors.ErrCodeNetwork, err, "connecting to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, dperrors.Wrap(dperrors.ErrCodeNetwork, err, "pinging mongodb")
	}

	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(reportsCollection),
	}, nil
}

// Save stores a report, overwriting any existing document with the same ID.
func (s *MongoStore) Save(ctx context.Context, r *report.Report) error {
	doc := reportDoc{
		ID:          r.ID.String(),
		Input:       r.Input,
		GeneratedAt: r.GeneratedAt,
		Findings:    len(r.Findings),
		Compatible:  r.Compatible,
		MaxSeverity: r.MaxSeverity().String(),
		Report:      r,
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts); err != nil {
		return dperrors.Wrap(dperrors.ErrCodeInternal, err, "saving report")
	}
	return nil
}

// Get retrieves a report by ID.
func (s *MongoStore) Get(ctx context.Context, id uuid.UUID) (*report.Report, error) {
	var doc reportDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, dperrors.Wrap(dperrors.ErrCodeInternal, err, "loading report")
	}
	return doc.Report, nil
}

// List returns summaries, newest first.
func (s *MongoStore) List(ctx context.Context, limit int) ([]Entry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "generated_at", Value: -1}}).
		SetProjection(bson.M{"report": 0})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, dperrors.Wrap(dperrors.ErrCodeInternal, err, "listing reports")
	}
	defer cursor.Close(ctx)

	var entries []Entry
	for cursor.Next(ctx) {
		var doc reportDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, dperrors.Wrap(dperrors.ErrCodeInternal, err, "decoding report summary")
		}
		id, err := uuid.Parse(doc.ID)
		if err != nil {
			continue
		}
		severity, err := rules.ParseSeverity(doc.MaxSeverity)
		if err != nil {
			severity = rules.SeverityUnknown
		}
		entries = append(entries, Entry{
			ID:          id,
			Input:       doc.Input,
			GeneratedAt: doc.GeneratedAt,
			Findings:    doc.Findings,
			Compatible:  doc.Compatible,
			MaxSeverity: severity,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, dperrors.Wrap(dperrors.ErrCodeInternal, err, "listing reports")
	}
	return entries, nil
}

// Delete removes a report.
func (s *MongoStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id.String()}); err != nil {
		return dperrors.Wrap(dperrors.ErrCodeInternal, err, "deleting report")
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
