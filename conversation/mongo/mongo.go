// Package mongo provides a MongoDB backed core.ConversationStore. Each
// conversation is one document in a collection keyed by a unique channel_id
// field; writes are atomic upserts on that key.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/hupe1980/chatbridge/core"
	"github.com/hupe1980/chatbridge/logging"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	// DefaultDatabase is used when Config.Database is empty.
	DefaultDatabase = "chatbridge"
	// DefaultCollection is used when Options.Collection is empty.
	DefaultCollection = "conversations"
)

// Compile-time checks
var (
	_ core.ConversationStore = (*Store)(nil)
	_ core.BatchDeleter      = (*Store)(nil)
)

// Config describes how to reach the MongoDB deployment. Per-operation
// timeouts are delegated to the driver (Timeout), not reimplemented here.
type Config struct {
	URI            string
	Database       string
	Collection     string
	AppName        string
	ConnectTimeout time.Duration
	Timeout        time.Duration
}

// Options configures a Store.
type Options struct {
	// Collection name holding conversation documents.
	Collection string
	// Now supplies save timestamps. Defaults to time.Now in UTC.
	Now func() time.Time
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Store implements core.ConversationStore and core.BatchDeleter on a MongoDB
// collection. The underlying client is shared and safe for concurrent use.
type Store struct {
	client *mongo.Client // non-nil only when the Store owns the connection
	coll   *mongo.Collection
	now    func() time.Time
	logger logging.Logger
}

type messageDoc struct {
	Role    string `bson:"role"`
	Content string `bson:"content"`
}

type conversationDoc struct {
	ChannelID string       `bson:"channel_id"`
	Messages  []messageDoc `bson:"messages"`
	CreatedAt time.Time    `bson:"created_at"`
	UpdatedAt time.Time    `bson:"updated_at"`
}

// Connect dials MongoDB, verifies the connection with a ping and returns a
// Store owning the client. Close releases it.
func Connect(ctx context.Context, cfg Config, optFns ...func(o *Options)) (*Store, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo: empty connection uri")
	}
	clientOpts := options.Client().ApplyURI(cfg.URI)
	if cfg.AppName != "" {
		clientOpts.SetAppName(cfg.AppName)
	}
	if cfg.ConnectTimeout > 0 {
		clientOpts.SetConnectTimeout(cfg.ConnectTimeout)
	}
	if cfg.Timeout > 0 {
		clientOpts.SetTimeout(cfg.Timeout)
	}

	client, err := mongo.Connect(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	dbName := cfg.Database
	if dbName == "" {
		dbName = DefaultDatabase
	}
	fns := optFns
	if cfg.Collection != "" {
		fns = append([]func(o *Options){func(o *Options) { o.Collection = cfg.Collection }}, optFns...)
	}
	s := New(client.Database(dbName), fns...)
	s.client = client
	s.logger.Info("Connected to MongoDB", "database", dbName, "collection", s.coll.Name())
	return s, nil
}

// New builds a Store on an existing database handle. The caller keeps
// ownership of the client.
func New(db *mongo.Database, optFns ...func(o *Options)) *Store {
	opts := Options{
		Collection: DefaultCollection,
		Now:        func() time.Time { return time.Now().UTC() },
		Logger:     logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Store{
		coll:   db.Collection(opts.Collection),
		now:    opts.Now,
		logger: logging.WithComponent(opts.Logger, "mongo"),
	}
}

// EnsureIndexes creates the unique channel_id index backing the
// one-document-per-channel invariant. It is safe to call repeatedly.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "channel_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("channel_id_unique"),
	})
	if err != nil {
		return fmt.Errorf("failed to create channel_id index: %w", err)
	}
	return nil
}

// Close disconnects the client when the Store owns it.
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// Get loads the conversation for channelID, or nil when none exists.
func (s *Store) Get(ctx context.Context, channelID string) (*core.Conversation, error) {
	if channelID == "" {
		return nil, core.NewStorageError("get", channelID, core.ErrInvalidChannelID)
	}
	var doc conversationDoc
	err := s.coll.FindOne(ctx, bson.M{"channel_id": channelID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("Error fetching conversation", "channel_id", channelID, "error", err)
		return nil, core.NewStorageError("get", channelID, err)
	}
	return doc.toConversation(), nil
}

// Save upserts conv keyed by channel id. Messages are replaced wholesale,
// created_at is only written on insert and updated_at never regresses. On
// success conv carries the timestamps held by the store.
func (s *Store) Save(ctx context.Context, conv *core.Conversation) (bool, error) {
	if err := conv.Validate(); err != nil {
		channelID := ""
		if conv != nil {
			channelID = conv.ChannelID
		}
		return false, core.NewStorageError("save", channelID, err)
	}

	// BSON datetimes carry millisecond precision
	now := s.now().UTC().Truncate(time.Millisecond)
	if conv.CreatedAt.IsZero() || conv.CreatedAt.After(now) {
		conv.CreatedAt = now
	}
	conv.UpdatedAt = now

	var saved savedTimes
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"channel_id": conv.ChannelID},
		saveUpdate(conv, now),
		options.FindOneAndUpdate().
			SetUpsert(true).
			SetReturnDocument(options.After).
			SetProjection(bson.D{{Key: "created_at", Value: 1}, {Key: "updated_at", Value: 1}, {Key: "_id", Value: 0}}),
	).Decode(&saved)
	if err != nil {
		s.logger.Error("Error saving conversation", "channel_id", conv.ChannelID, "error", err)
		return false, core.NewStorageError("save", conv.ChannelID, err)
	}
	saved.apply(conv)
	return true, nil
}

// savedTimes is the projection returned by Save.
type savedTimes struct {
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// apply copies the stored timestamps onto the caller's conversation.
func (t savedTimes) apply(conv *core.Conversation) {
	conv.CreatedAt = t.CreatedAt.UTC()
	conv.UpdatedAt = t.UpdatedAt.UTC()
}

// saveUpdate builds the upsert document: replace the payload, keep the
// original creation time, move updated_at forward only.
func saveUpdate(conv *core.Conversation, now time.Time) bson.D {
	return bson.D{
		{Key: "$set", Value: bson.D{{Key: "messages", Value: toMessageDocs(conv.Messages)}}},
		{Key: "$max", Value: bson.D{{Key: "updated_at", Value: now}}},
		{Key: "$setOnInsert", Value: bson.D{{Key: "created_at", Value: conv.CreatedAt}}},
	}
}

// Delete removes the conversation for channelID and reports whether one existed.
func (s *Store) Delete(ctx context.Context, channelID string) (bool, error) {
	res, err := s.coll.DeleteOne(ctx, bson.M{"channel_id": channelID})
	if err != nil {
		s.logger.Error("Error deleting conversation", "channel_id", channelID, "error", err)
		return false, core.NewStorageError("delete", channelID, err)
	}
	return res.DeletedCount > 0, nil
}

// DeleteMany removes all listed conversations in one round trip.
func (s *Store) DeleteMany(ctx context.Context, channelIDs []string) (int64, error) {
	if len(channelIDs) == 0 {
		return 0, nil
	}
	res, err := s.coll.DeleteMany(ctx, bson.M{"channel_id": bson.M{"$in": channelIDs}})
	if err != nil {
		return 0, core.NewStorageError("delete_many", "", err)
	}
	return res.DeletedCount, nil
}

// ListChannelIDs streams channel ids through a projected cursor, so full
// documents are never loaded.
func (s *Store) ListChannelIDs(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		cur, err := s.coll.Find(ctx, bson.D{},
			options.Find().SetProjection(bson.D{{Key: "channel_id", Value: 1}, {Key: "_id", Value: 0}}))
		if err != nil {
			yield("", core.NewStorageError("list", "", err))
			return
		}
		defer func() { _ = cur.Close(ctx) }()

		for cur.Next(ctx) {
			var doc struct {
				ChannelID string `bson:"channel_id"`
			}
			if err := cur.Decode(&doc); err != nil {
				yield("", core.NewStorageError("list", "", err))
				return
			}
			if !yield(doc.ChannelID, nil) {
				return
			}
		}
		if err := cur.Err(); err != nil {
			yield("", core.NewStorageError("list", "", err))
		}
	}
}

func toMessageDocs(msgs []core.Message) []messageDoc {
	out := make([]messageDoc, len(msgs))
	for i, m := range msgs {
		out[i] = messageDoc{Role: m.Role, Content: m.Content}
	}
	return out
}

func (d conversationDoc) toConversation() *core.Conversation {
	msgs := make([]core.Message, len(d.Messages))
	for i, m := range d.Messages {
		msgs[i] = core.Message{Role: m.Role, Content: m.Content}
	}
	return &core.Conversation{
		ChannelID: d.ChannelID,
		Messages:  msgs,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}
