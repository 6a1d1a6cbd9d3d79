package workspace

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoStore implements Store against MongoDB, an alternative to FSStore
// for deployments where workspace state must survive outside local disk
// (e.g. a horizontally-scaled Lucy fleet with no shared filesystem).
//
// Grounded on the teacher's features/memory/mongo and features/session/mongo
// stores: a thin Store type wrapping a mongo.Database, one collection per
// document family, upsert-by-compound-key writes, and index setup on
// construction.
type MongoStore struct {
	db *mongo.Database

	workspaces *mongo.Collection
	facts      *mongo.Collection
	skills     *mongo.Collection
	crons      *mongo.Collection
	heartbeats *mongo.Collection
}

// NewMongoStore constructs a MongoStore, ensuring the required indexes
// exist.
func NewMongoStore(ctx context.Context, client *mongo.Client, database string) (*MongoStore, error) {
	if client == nil {
		return nil, errors.New("workspace: mongo client is required")
	}
	db := client.Database(database)
	s := &MongoStore{
		db:         db,
		workspaces: db.Collection("workspaces"),
		facts:      db.Collection("session_facts"),
		skills:     db.Collection("skills"),
		crons:      db.Collection("crons"),
		heartbeats: db.Collection("heartbeats"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := s.skills.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "workspace_id", Value: 1}, {Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("workspace: ensure skills index: %w", err)
	}
	_, err = s.crons.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "workspace_id", Value: 1}, {Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("workspace: ensure crons index: %w", err)
	}
	_, err = s.heartbeats.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "workspace_id", Value: 1}, {Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("workspace: ensure heartbeats index: %w", err)
	}
	return nil
}

// EnsureWorkspace implements Store.
func (s *MongoStore) EnsureWorkspace(ctx context.Context, workspaceID string) error {
	_, err := s.workspaces.UpdateOne(ctx,
		bson.M{"_id": workspaceID},
		bson.M{"$setOnInsert": bson.M{"_id": workspaceID, "created_at": time.Now().UTC()}},
		options.UpdateOne().SetUpsert(true),
	)
	return err
}

// ListWorkspaces implements Store.
func (s *MongoStore) ListWorkspaces(ctx context.Context) ([]string, error) {
	cur, err := s.workspaces.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []string
	for cur.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.ID)
	}
	return ids, cur.Err()
}

type factsDoc struct {
	WorkspaceID string        `bson:"_id"`
	Facts       []SessionFact `bson:"facts"`
}

// AppendSessionFact implements Store using findAndModify-style
// read-modify-write under the workspace's logical lock.
func (s *MongoStore) AppendSessionFact(ctx context.Context, workspaceID string, fact SessionFact) error {
	release, err := s.Lock(ctx, workspaceID)
	if err != nil {
		return err
	}
	defer release()

	var doc factsDoc
	err = s.facts.FindOne(ctx, bson.M{"_id": workspaceID}).Decode(&doc)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}
	doc.WorkspaceID = workspaceID
	doc.Facts = append(doc.Facts, fact)
	if len(doc.Facts) > MaxSessionFacts {
		doc.Facts = doc.Facts[len(doc.Facts)-MaxSessionFacts:]
	}
	_, err = s.facts.UpdateOne(ctx,
		bson.M{"_id": workspaceID},
		bson.M{"$set": bson.M{"facts": doc.Facts}},
		options.UpdateOne().SetUpsert(true),
	)
	return err
}

// ListSessionFacts implements Store.
func (s *MongoStore) ListSessionFacts(ctx context.Context, workspaceID string) ([]SessionFact, error) {
	var doc factsDoc
	err := s.facts.FindOne(ctx, bson.M{"_id": workspaceID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.Facts, nil
}

type skillDoc struct {
	WorkspaceID string   `bson:"workspace_id"`
	Name        string   `bson:"name"`
	Description string   `bson:"description"`
	Triggers    []string `bson:"triggers"`
	Body        string   `bson:"body"`
}

// PutSkill implements Store.
func (s *MongoStore) PutSkill(ctx context.Context, workspaceID string, skill Skill) error {
	_, err := s.skills.UpdateOne(ctx,
		bson.M{"workspace_id": workspaceID, "name": skill.Name},
		bson.M{"$set": skillDoc{WorkspaceID: workspaceID, Name: skill.Name, Description: skill.Description, Triggers: skill.Triggers, Body: skill.Body}},
		options.UpdateOne().SetUpsert(true),
	)
	return err
}

// ListSkills implements Store.
func (s *MongoStore) ListSkills(ctx context.Context, workspaceID string) ([]Skill, error) {
	cur, err := s.skills.Find(ctx, bson.M{"workspace_id": workspaceID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var skills []Skill
	for cur.Next(ctx) {
		var doc skillDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		skills = append(skills, Skill{Name: doc.Name, Description: doc.Description, Triggers: doc.Triggers, Body: doc.Body})
	}
	return skills, cur.Err()
}

type cronDocModel struct {
	WorkspaceID string `bson:"workspace_id"`
	CronDoc     `bson:",inline"`
}

// PutCron implements Store.
func (s *MongoStore) PutCron(ctx context.Context, workspaceID string, doc CronDoc) error {
	doc.Path = "crons/" + sanitizeID(doc.Slug) + "/task"
	_, err := s.crons.UpdateOne(ctx,
		bson.M{"workspace_id": workspaceID, "slug": doc.Slug},
		bson.M{"$set": cronDocModel{WorkspaceID: workspaceID, CronDoc: doc}},
		options.UpdateOne().SetUpsert(true),
	)
	return err
}

// GetCron implements Store.
func (s *MongoStore) GetCron(ctx context.Context, workspaceID, slug string) (CronDoc, error) {
	var doc cronDocModel
	err := s.crons.FindOne(ctx, bson.M{"workspace_id": workspaceID, "slug": slug}).Decode(&doc)
	if err != nil {
		return CronDoc{}, err
	}
	return doc.CronDoc, nil
}

// ListCrons implements Store.
func (s *MongoStore) ListCrons(ctx context.Context, workspaceID string) ([]CronDoc, error) {
	cur, err := s.crons.Find(ctx, bson.M{"workspace_id": workspaceID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []CronDoc
	for cur.Next(ctx) {
		var doc cronDocModel
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc.CronDoc)
	}
	return docs, cur.Err()
}

// DeleteCron implements Store.
func (s *MongoStore) DeleteCron(ctx context.Context, workspaceID, slug string) error {
	_, err := s.crons.DeleteOne(ctx, bson.M{"workspace_id": workspaceID, "slug": slug})
	return err
}

// AppendLearning implements Store.
func (s *MongoStore) AppendLearning(ctx context.Context, workspaceID, slug, note string) error {
	note = strings.TrimRight(note, "\n") + "\n"
	_, err := s.crons.UpdateOne(ctx,
		bson.M{"workspace_id": workspaceID, "slug": slug},
		bson.M{"$set": bson.M{"updated_at": time.Now().UTC()}, "$push": bson.M{"learnings_lines": note}},
	)
	return err
}

// LoadLearnings implements Store.
func (s *MongoStore) LoadLearnings(ctx context.Context, workspaceID, slug string) (string, error) {
	var doc struct {
		Lines []string `bson:"learnings_lines"`
	}
	err := s.crons.FindOne(ctx, bson.M{"workspace_id": workspaceID, "slug": slug}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.Join(doc.Lines, ""), nil
}

type heartbeatDocModel struct {
	WorkspaceID  string `bson:"workspace_id"`
	HeartbeatDoc `bson:",inline"`
}

// PutHeartbeat implements Store.
func (s *MongoStore) PutHeartbeat(ctx context.Context, workspaceID string, doc HeartbeatDoc) error {
	_, err := s.heartbeats.UpdateOne(ctx,
		bson.M{"workspace_id": workspaceID, "slug": doc.Slug},
		bson.M{"$set": heartbeatDocModel{WorkspaceID: workspaceID, HeartbeatDoc: doc}},
		options.UpdateOne().SetUpsert(true),
	)
	return err
}

// ListHeartbeats implements Store.
func (s *MongoStore) ListHeartbeats(ctx context.Context, workspaceID string) ([]HeartbeatDoc, error) {
	cur, err := s.heartbeats.Find(ctx, bson.M{"workspace_id": workspaceID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []HeartbeatDoc
	for cur.Next(ctx) {
		var doc heartbeatDocModel
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc.HeartbeatDoc)
	}
	return docs, cur.Err()
}

// DeleteHeartbeat implements Store.
func (s *MongoStore) DeleteHeartbeat(ctx context.Context, workspaceID, slug string) error {
	_, err := s.heartbeats.DeleteOne(ctx, bson.M{"workspace_id": workspaceID, "slug": slug})
	return err
}

// Lock implements Store using a short-lived lock document with a TTL-like
// expiry check; Mongo has no in-process mutex to share across replicas, so
// contention is serialized through a unique-insert-as-lock pattern instead.
func (s *MongoStore) Lock(ctx context.Context, workspaceID string) (func(), error) {
	locks := s.db.Collection("workspace_locks")
	const maxWait = 5 * time.Second
	deadline := time.Now().Add(maxWait)
	for {
		_, err := locks.InsertOne(ctx, bson.M{"_id": workspaceID, "acquired_at": time.Now().UTC()})
		if err == nil {
			return func() {
				_, _ = locks.DeleteOne(context.Background(), bson.M{"_id": workspaceID})
			}, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return nil, err
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("workspace: lock %q: timed out waiting for release", workspaceID)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(20 * time.Millisecond):
		}
	}
}
