package repository

import (
	"context"
	"errors"
	"time"

	"sosmed/pkg/logger"
	"sosmed/store"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type UserRepository struct {
	Client *mongo.Client
	Coll   *mongo.Collection
	// UseTransactions runs follow/unfollow pairs in one multi-document
	// transaction. Requires a replica set.
	UseTransactions bool
}

func NewUserRepository(db *mongo.Database, useTransactions bool) *UserRepository {
	return &UserRepository{
		Client:          db.Client(),
		Coll:            db.Collection(store.UsersCollection),
		UseTransactions: useTransactions,
	}
}

func (r *UserRepository) Create(ctx context.Context, acc *store.Account) error {
	if acc.ID.IsZero() {
		acc.ID = bson.NewObjectID()
	}
	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = time.Now().UTC()
	}
	acc.UpdatedAt = acc.CreatedAt
	acc.Normalize()

	_, err := r.Coll.InsertOne(ctx, acc)
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrDuplicate
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to create user %s: %v", acc.Username, err)
	}
	return err
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*store.Account, error) {
	oid, err := store.ParseID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*store.Account, error) {
	return r.findOne(ctx, bson.D{{Key: "username", Value: username}})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.D) (*store.Account, error) {
	var acc store.Account
	err := r.Coll.FindOne(ctx, filter).Decode(&acc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to find user %v: %v", filter, err)
		return nil, err
	}
	acc.Normalize()
	return &acc, nil
}

func (r *UserRepository) List(ctx context.Context) ([]store.Account, error) {
	cursor, err := r.Coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		logger.Sugar.Errorf("Failed to list users: %v", err)
		return nil, err
	}
	accounts := []store.Account{}
	if err := cursor.All(ctx, &accounts); err != nil {
		logger.Sugar.Errorf("Failed to decode users: %v", err)
		return nil, err
	}
	for i := range accounts {
		accounts[i].Normalize()
	}
	return accounts, nil
}

func (r *UserRepository) Update(ctx context.Context, id string, patch store.AccountPatch) (*store.Account, error) {
	oid, err := store.ParseID(id)
	if err != nil {
		return nil, err
	}
	set := patch.Fields()
	set["updatedAt"] = time.Now().UTC()

	var acc store.Account
	err = r.Coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&acc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to update user %s: %v", id, err)
		return nil, err
	}
	acc.Normalize()
	return &acc, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	oid, err := store.ParseID(id)
	if err != nil {
		return err
	}
	res, err := r.Coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		logger.Sugar.Errorf("Failed to delete user %s: %v", id, err)
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Follow adds callerID to the target's followers and targetID to the
// caller's following. The first update is conditional on the caller not
// already being a follower; ErrNoChange is returned when it is.
func (r *UserRepository) Follow(ctx context.Context, targetID, callerID string) error {
	return r.pair(ctx, targetID, callerID, true)
}

// Unfollow reverses Follow; ErrNoChange when the caller was not following.
func (r *UserRepository) Unfollow(ctx context.Context, targetID, callerID string) error {
	return r.pair(ctx, targetID, callerID, false)
}

func (r *UserRepository) pair(ctx context.Context, targetID, callerID string, follow bool) error {
	tid, err := store.ParseID(targetID)
	if err != nil {
		return err
	}
	cid, err := store.ParseID(callerID)
	if err != nil {
		return err
	}
	targetID, callerID = tid.Hex(), cid.Hex()

	if r.UseTransactions {
		sess, err := r.Client.StartSession()
		if err != nil {
			logger.Sugar.Errorf("Failed to start session: %v", err)
			return err
		}
		defer sess.EndSession(ctx)

		_, err = sess.WithTransaction(ctx, func(ctx context.Context) (any, error) {
			if err := r.updateTarget(ctx, tid, callerID, follow); err != nil {
				return nil, err
			}
			return nil, r.updateCaller(ctx, cid, targetID, follow)
		})
		return err
	}

	if err := r.updateTarget(ctx, tid, callerID, follow); err != nil {
		return err
	}
	if err := r.updateCaller(ctx, cid, targetID, follow); err != nil {
		// Put the target back so the two lists do not drift apart.
		if undoErr := r.updateTarget(ctx, tid, callerID, !follow); undoErr != nil {
			logger.Sugar.Errorf("Failed to undo follower change on %s after %v: %v", targetID, err, undoErr)
		}
		return err
	}
	return nil
}

func (r *UserRepository) updateTarget(ctx context.Context, tid bson.ObjectID, callerID string, follow bool) error {
	filter := bson.D{{Key: "_id", Value: tid}}
	var update bson.D
	if follow {
		filter = append(filter, bson.E{Key: "followers", Value: bson.D{{Key: "$ne", Value: callerID}}})
		update = bson.D{{Key: "$push", Value: bson.D{{Key: "followers", Value: callerID}}}}
	} else {
		filter = append(filter, bson.E{Key: "followers", Value: callerID})
		update = bson.D{{Key: "$pull", Value: bson.D{{Key: "followers", Value: callerID}}}}
	}
	update = append(update, bson.E{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: time.Now().UTC()}}})

	res, err := r.Coll.UpdateOne(ctx, filter, update)
	if err != nil {
		logger.Sugar.Errorf("Failed to update followers of %s: %v", tid.Hex(), err)
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNoChange
	}
	return nil
}

func (r *UserRepository) updateCaller(ctx context.Context, cid bson.ObjectID, targetID string, follow bool) error {
	op := "$addToSet"
	if !follow {
		op = "$pull"
	}
	res, err := r.Coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: cid}},
		bson.D{
			{Key: op, Value: bson.D{{Key: "following", Value: targetID}}},
			{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: time.Now().UTC()}}},
		},
	)
	if err != nil {
		logger.Sugar.Errorf("Failed to update following of %s: %v", cid.Hex(), err)
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
