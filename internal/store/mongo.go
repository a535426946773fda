// StreamVault - Streaming Media Catalog and Recommendation Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamvault

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/tomtom215/streamvault/internal/metrics"
)

// MongoOptions configures the Mongo store.
type MongoOptions struct {
	// URI is the MongoDB connection string.
	URI string

	// Database is the database name holding all collections.
	Database string

	// ConnectTimeout bounds the initial connect and ping.
	ConnectTimeout time.Duration

	// BreakerMaxFailures is the consecutive-failure count that opens the
	// circuit breaker.
	BreakerMaxFailures uint32

	// BreakerCooldown is how long the breaker stays open before probing.
	BreakerCooldown time.Duration
}

// Mongo implements Store on the official MongoDB driver. All round trips
// pass through a circuit breaker: once the store is unreachable, calls
// fail fast with ErrUnavailable instead of stacking up timeouts.
type Mongo struct {
	client  *mongo.Client
	db      *mongo.Database
	breaker *gobreaker.CircuitBreaker[any]
	logger  zerolog.Logger
}

// NewMongo connects to MongoDB, verifies the connection with a ping and
// returns a ready store. The caller owns the store and must Close it.
func NewMongo(ctx context.Context, opts MongoOptions, logger zerolog.Logger) (*Mongo, error) {
	if opts.URI == "" {
		return nil, errors.New("store: mongo URI is required")
	}
	if opts.Database == "" {
		return nil, errors.New("store: mongo database name is required")
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 10 * time.Second
	}
	if opts.BreakerMaxFailures == 0 {
		opts.BreakerMaxFailures = 5
	}
	if opts.BreakerCooldown <= 0 {
		opts.BreakerCooldown = 30 * time.Second
	}

	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	clientOpts := options.Client().ApplyURI(opts.URI).SetServerAPIOptions(serverAPI)

	client, err := mongo.Connect(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	log := logger.With().Str("component", "store").Logger()

	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:    "mongo",
		Timeout: opts.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.BreakerMaxFailures
		},
		// Not-found, duplicate-key and caller cancellation are normal
		// outcomes; only connectivity failures may open the breaker.
		IsSuccessful: func(err error) bool {
			switch {
			case err == nil:
				return true
			case errors.Is(err, ErrNotFound), errors.Is(err, ErrDuplicate):
				return true
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				return true
			default:
				return false
			}
		},
		OnStateChange: func(_ string, from, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				metrics.StoreBreakerState.Set(1)
			} else {
				metrics.StoreBreakerState.Set(0)
			}
			log.Warn().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("store breaker state changed")
		},
	})

	return &Mongo{
		client:  client,
		db:      client.Database(opts.Database),
		breaker: breaker,
		logger:  log,
	}, nil
}

// Close disconnects the underlying client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// Ping reports whether the store is reachable. Used by readiness checks.
func (m *Mongo) Ping(ctx context.Context) error {
	if err := m.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// EnsureIndexes creates the indexes the query paths depend on. Safe to
// call on every startup; Mongo treats existing identical indexes as a
// no-op.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		ColUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		ColProfiles: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		ColContent: {
			{Keys: bson.D{{Key: "tmdb_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "content_type", Value: 1}}},
			{Keys: bson.D{{Key: "genre_ids", Value: 1}}},
			{Keys: bson.D{{Key: "average_rating", Value: 1}}},
		},
		ColWatchHistory: {
			{Keys: bson.D{{Key: "profile_id", Value: 1}, {Key: "content_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "profile_id", Value: 1}}},
			{Keys: bson.D{{Key: "last_watched", Value: 1}}},
		},
		ColMyList: {
			{Keys: bson.D{{Key: "profile_id", Value: 1}, {Key: "content_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "profile_id", Value: 1}}},
		},
		ColReviews: {
			{Keys: bson.D{{Key: "profile_id", Value: 1}, {Key: "content_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "content_id", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: 1}}},
		},
		ColRecommendations: {
			{Keys: bson.D{{Key: "profile_id", Value: 1}}},
			{Keys: bson.D{{Key: "score", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: 1}}},
		},
	}

	for collection, models := range indexes {
		if _, err := m.db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("store: create indexes for %s: %w", collection, err)
		}
	}

	m.logger.Info().Msg("store indexes ensured")
	return nil
}

// Find implements Store.
func (m *Mongo) Find(ctx context.Context, collection string, filter Filter, opts *FindOptions, dest any) error {
	return m.observe(ctx, "find", collection, func(ctx context.Context) error {
		findOpts := options.Find()
		if opts != nil {
			if len(opts.Sort) > 0 {
				findOpts.SetSort(sortToBSON(opts.Sort))
			}
			if opts.Limit > 0 {
				findOpts.SetLimit(opts.Limit)
			}
			if opts.Skip > 0 {
				findOpts.SetSkip(opts.Skip)
			}
		}

		cursor, err := m.db.Collection(collection).Find(ctx, filterToBSON(filter), findOpts)
		if err != nil {
			return err
		}
		defer cursor.Close(ctx)

		return cursor.All(ctx, dest)
	})
}

// FindOne implements Store.
func (m *Mongo) FindOne(ctx context.Context, collection string, filter Filter, dest any) error {
	return m.observe(ctx, "find_one", collection, func(ctx context.Context) error {
		err := m.db.Collection(collection).FindOne(ctx, filterToBSON(filter)).Decode(dest)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	})
}

// Aggregate implements Store.
func (m *Mongo) Aggregate(ctx context.Context, collection string, pipeline []Stage, dest any) error {
	return m.observe(ctx, "aggregate", collection, func(ctx context.Context) error {
		cursor, err := m.db.Collection(collection).Aggregate(ctx, pipelineToBSON(pipeline))
		if err != nil {
			return err
		}
		defer cursor.Close(ctx)

		return cursor.All(ctx, dest)
	})
}

// InsertOne implements Store.
func (m *Mongo) InsertOne(ctx context.Context, collection string, doc any) error {
	return m.observe(ctx, "insert_one", collection, func(ctx context.Context) error {
		_, err := m.db.Collection(collection).InsertOne(ctx, doc)
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	})
}

// InsertMany implements Store.
func (m *Mongo) InsertMany(ctx context.Context, collection string, docs []any) error {
	if len(docs) == 0 {
		return nil
	}
	return m.observe(ctx, "insert_many", collection, func(ctx context.Context) error {
		_, err := m.db.Collection(collection).InsertMany(ctx, docs)
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	})
}

// UpdateOne implements Store. Returns the number of matched documents.
func (m *Mongo) UpdateOne(ctx context.Context, collection string, filter Filter, update Update) (int64, error) {
	var matched int64
	err := m.observe(ctx, "update_one", collection, func(ctx context.Context) error {
		res, err := m.db.Collection(collection).UpdateOne(ctx, filterToBSON(filter), bson.M{"$set": bson.M(update)})
		if err != nil {
			return err
		}
		matched = res.MatchedCount
		return nil
	})
	return matched, err
}

// DeleteOne implements Store.
func (m *Mongo) DeleteOne(ctx context.Context, collection string, filter Filter) (int64, error) {
	var deleted int64
	err := m.observe(ctx, "delete_one", collection, func(ctx context.Context) error {
		res, err := m.db.Collection(collection).DeleteOne(ctx, filterToBSON(filter))
		if err != nil {
			return err
		}
		deleted = res.DeletedCount
		return nil
	})
	return deleted, err
}

// DeleteMany implements Store.
func (m *Mongo) DeleteMany(ctx context.Context, collection string, filter Filter) (int64, error) {
	var deleted int64
	err := m.observe(ctx, "delete_many", collection, func(ctx context.Context) error {
		res, err := m.db.Collection(collection).DeleteMany(ctx, filterToBSON(filter))
		if err != nil {
			return err
		}
		deleted = res.DeletedCount
		return nil
	})
	return deleted, err
}

// CountDocuments implements Store.
func (m *Mongo) CountDocuments(ctx context.Context, collection string, filter Filter) (int64, error) {
	var count int64
	err := m.observe(ctx, "count", collection, func(ctx context.Context) error {
		c, err := m.db.Collection(collection).CountDocuments(ctx, filterToBSON(filter))
		if err != nil {
			return err
		}
		count = c
		return nil
	})
	return count, err
}

// observe runs op through the circuit breaker and records metrics.
// Driver errors other than not-found and duplicate-key are classified as
// connectivity failures and wrapped in ErrUnavailable so callers can
// retry with backoff.
func (m *Mongo) observe(ctx context.Context, operation, collection string, op func(context.Context) error) error {
	start := time.Now()
	_, err := m.breaker.Execute(func() (any, error) {
		return nil, op(ctx)
	})
	metrics.ObserveStoreQuery(operation, collection, start, err)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrDuplicate):
		return err
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Errorf("%w: breaker open", ErrUnavailable)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		m.logger.Error().
			Err(err).
			Str("operation", operation).
			Str("collection", collection).
			Msg("store operation failed")
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}

// filterToBSON translates a Filter into the driver's query format.
func filterToBSON(f Filter) bson.M {
	out := bson.M{}
	for key, val := range f {
		if cmp, ok := val.(Cmp); ok {
			out[key] = cmpToBSON(cmp)
			continue
		}
		out[key] = val
	}
	return out
}

func cmpToBSON(c Cmp) bson.M {
	out := bson.M{}
	if c.In != nil {
		out["$in"] = c.In
	}
	if c.NotIn != nil {
		out["$nin"] = c.NotIn
	}
	if c.Gt != nil {
		out["$gt"] = c.Gt
	}
	if c.Gte != nil {
		out["$gte"] = c.Gte
	}
	if c.Lt != nil {
		out["$lt"] = c.Lt
	}
	if c.Lte != nil {
		out["$lte"] = c.Lte
	}
	if c.Ne != nil {
		out["$ne"] = c.Ne
	}
	return out
}

func sortToBSON(s Sort) bson.D {
	out := make(bson.D, 0, len(s))
	for _, key := range s {
		dir := 1
		if key.Desc {
			dir = -1
		}
		out = append(out, bson.E{Key: key.Key, Value: dir})
	}
	return out
}

func pipelineToBSON(pipeline []Stage) mongo.Pipeline {
	out := make(mongo.Pipeline, 0, len(pipeline))
	for _, stage := range pipeline {
		switch {
		case stage.Match != nil:
			out = append(out, bson.D{{Key: "$match", Value: filterToBSON(stage.Match)}})
		case stage.Sort != nil:
			out = append(out, bson.D{{Key: "$sort", Value: sortToBSON(stage.Sort)}})
		case stage.Limit > 0:
			out = append(out, bson.D{{Key: "$limit", Value: stage.Limit}})
		}
	}
	return out
}
