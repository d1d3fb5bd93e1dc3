// Package mongo implements the remote persistence variant: a cloud
// document database scoped to the authenticated identity. One profile
// document per identity holds the currency, savings goal and profile
// metadata; three record collections hold the per-identity items. Change
// streams feed the watch channel, so every external or own-write update
// comes back as an authoritative collection snapshot.
package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fintrack/internal/core"
	"fintrack/internal/persist"
)

type Store struct {
	client   *mongo.Client
	db       *mongo.Database
	profiles *mongo.Collection
	uid      string
}

var _ persist.Adapter = (*Store)(nil)

type record struct {
	UID          string `bson:"uid"`
	persist.Item `bson:",inline"`
}

type profileDoc struct {
	UID         string                  `bson:"_id"`
	Name        string                  `bson:"name,omitempty"`
	Birthday    string                  `bson:"birthday,omitempty"`
	Job         string                  `bson:"job,omitempty"`
	Bio         string                  `bson:"bio,omitempty"`
	PhotoURL    string                  `bson:"photoUrl,omitempty"`
	Currency    *persist.SavedCurrency  `bson:"currency,omitempty"`
	SavingsGoal *persist.SavedGoal      `bson:"savingsGoal,omitempty"`
}

// New connects to the document store for the given identity.
func New(ctx context.Context, uri, dbName, uid string) (*Store, error) {
	if uid == "" {
		return nil, fmt.Errorf("remote store requires an identity")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to document store: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping document store: %w", err)
	}

	db := client.Database(dbName)
	return &Store{
		client:   client,
		db:       db,
		profiles: db.Collection("profiles"),
		uid:      uid,
	}, nil
}

func (s *Store) Kind() persist.Kind { return persist.KindRemote }

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) collection(c persist.Collection) *mongo.Collection {
	return s.db.Collection(string(c))
}

func (s *Store) Load(ctx context.Context) (persist.Snapshot, error) {
	var snap persist.Snapshot

	for _, c := range persist.Collections {
		items, err := s.readCollection(ctx, c)
		if err != nil {
			return persist.Snapshot{}, err
		}
		switch c {
		case persist.Expenses:
			snap.Expenses = items
		case persist.Income:
			snap.Income = items
		case persist.Subscriptions:
			snap.Subscriptions = items
		}
	}

	var doc profileDoc
	err := s.profiles.FindOne(ctx, bson.M{"_id": s.uid}).Decode(&doc)
	if err != nil && err != mongo.ErrNoDocuments {
		return persist.Snapshot{}, fmt.Errorf("load profile: %w", err)
	}
	snap.Goal = doc.SavingsGoal
	snap.Currency = doc.Currency

	return snap, nil
}

// readCollection returns the identity's records; income and expenses come
// back sorted by record date descending, matching the live subscription
// order.
func (s *Store) readCollection(ctx context.Context, c persist.Collection) ([]persist.Item, error) {
	opts := options.Find()
	switch c {
	case persist.Expenses, persist.Income:
		opts = opts.SetSort(bson.D{{Key: "date", Value: -1}})
	case persist.Subscriptions:
		opts = opts.SetSort(bson.D{{Key: "nextDue", Value: 1}})
	}

	cursor, err := s.collection(c).Find(ctx, bson.M{"uid": s.uid}, opts)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c, err)
	}
	defer cursor.Close(ctx)

	var items []persist.Item
	for cursor.Next(ctx) {
		var rec record
		if err := cursor.Decode(&rec); err != nil {
			slog.WarnContext(ctx, "Skipping undecodable record", "collection", string(c), "error", err)
			continue
		}
		items = append(items, rec.Item)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", c, err)
	}
	return items, nil
}

func (s *Store) SaveCollection(ctx context.Context, c persist.Collection, items []persist.Item) error {
	coll := s.collection(c)
	if _, err := coll.DeleteMany(ctx, bson.M{"uid": s.uid}); err != nil {
		return fmt.Errorf("replace %s: %w", c, err)
	}
	if len(items) == 0 {
		return nil
	}
	docs := make([]interface{}, len(items))
	for i, it := range items {
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		docs[i] = record{UID: s.uid, Item: it}
	}
	if _, err := coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("replace %s: %w", c, err)
	}
	return nil
}

// AppendRecord upserts on the record's id. Records arriving from migration
// keep their locally assigned ids, so a retried batch can never duplicate.
func (s *Store) AppendRecord(ctx context.Context, c persist.Collection, item persist.Item) (string, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	_, err := s.collection(c).ReplaceOne(ctx,
		bson.M{"_id": item.ID},
		record{UID: s.uid, Item: item},
		options.Replace().SetUpsert(true))
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", c, err)
	}
	return item.ID, nil
}

func (s *Store) DeleteRecord(ctx context.Context, c persist.Collection, id string) error {
	_, err := s.collection(c).DeleteOne(ctx, bson.M{"_id": id, "uid": s.uid})
	if err != nil {
		return fmt.Errorf("delete from %s: %w", c, err)
	}
	return nil
}

// SaveGoal and SaveCurrency write through the profile document with $set
// merge semantics, never touching other profile fields.
func (s *Store) SaveGoal(ctx context.Context, g persist.SavedGoal) error {
	return s.patchProfile(ctx, bson.M{"savingsGoal": g})
}

func (s *Store) SaveCurrency(ctx context.Context, c persist.SavedCurrency) error {
	return s.patchProfile(ctx, bson.M{"currency": c})
}

func (s *Store) LoadProfile(ctx context.Context) (core.Profile, error) {
	var doc profileDoc
	err := s.profiles.FindOne(ctx, bson.M{"_id": s.uid}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return core.Profile{}, nil
	}
	if err != nil {
		return core.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	return core.Profile{
		Name:     doc.Name,
		Birthday: doc.Birthday,
		Job:      doc.Job,
		Bio:      doc.Bio,
		PhotoURL: doc.PhotoURL,
	}, nil
}

// SaveProfile merges the non-empty fields into the profile document.
func (s *Store) SaveProfile(ctx context.Context, p core.Profile) error {
	set := bson.M{}
	if p.Name != "" {
		set["name"] = p.Name
	}
	if p.Birthday != "" {
		set["birthday"] = p.Birthday
	}
	if p.Job != "" {
		set["job"] = p.Job
	}
	if p.Bio != "" {
		set["bio"] = p.Bio
	}
	if p.PhotoURL != "" {
		set["photoUrl"] = p.PhotoURL
	}
	if len(set) == 0 {
		return nil
	}
	return s.patchProfile(ctx, set)
}

func (s *Store) patchProfile(ctx context.Context, set bson.M) error {
	_, err := s.profiles.UpdateOne(ctx,
		bson.M{"_id": s.uid},
		bson.M{"$set": set},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// Watch opens one change stream per record collection. Every stream event
// triggers a full re-read of that collection, which is emitted as an
// authoritative snapshot; the subscriber replaces its copy wholesale.
func (s *Store) Watch(ctx context.Context) (<-chan persist.Event, error) {
	ch := make(chan persist.Event, 8)
	var wg sync.WaitGroup

	for _, c := range persist.Collections {
		stream, err := s.collection(c).Watch(ctx, mongo.Pipeline{})
		if err != nil {
			return nil, fmt.Errorf("watch %s: %w", c, err)
		}

		wg.Add(1)
		go func(c persist.Collection, stream *mongo.ChangeStream) {
			defer wg.Done()
			defer stream.Close(context.Background())

			for stream.Next(ctx) {
				items, err := s.readCollection(ctx, c)
				if err != nil {
					slog.ErrorContext(ctx, "Snapshot re-read failed",
						"collection", string(c), "error", err)
					continue
				}
				select {
				case ch <- persist.Event{Collection: c, Items: items}:
				case <-ctx.Done():
					return
				}
			}
			if err := stream.Err(); err != nil && ctx.Err() == nil {
				slog.ErrorContext(ctx, "Change stream ended",
					"collection", string(c), "error", err)
			}
		}(c, stream)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	return ch, nil
}
