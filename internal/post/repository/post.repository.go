package repository

import (
	"context"
	"errors"
	"slices"
	"time"

	"sosmed/pkg/logger"
	"sosmed/store"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type PostRepository struct {
	Coll  *mongo.Collection
	Users *mongo.Collection
}

func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{
		Coll:  db.Collection(store.PostsCollection),
		Users: db.Collection(store.UsersCollection),
	}
}

func (r *PostRepository) Create(ctx context.Context, post *store.Post) error {
	if post.ID.IsZero() {
		post.ID = bson.NewObjectID()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	post.UpdatedAt = post.CreatedAt
	post.Normalize()

	if _, err := r.Coll.InsertOne(ctx, post); err != nil {
		logger.Sugar.Errorf("Failed to create post for %s: %v", post.UserID, err)
		return err
	}
	return nil
}

func (r *PostRepository) FindByID(ctx context.Context, id string) (*store.Post, error) {
	oid, err := store.ParseID(id)
	if err != nil {
		return nil, err
	}
	var post store.Post
	err = r.Coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to find post %s: %v", id, err)
		return nil, err
	}
	post.Normalize()
	return &post, nil
}

func (r *PostRepository) FindByUser(ctx context.Context, userID string) ([]store.Post, error) {
	cursor, err := r.Coll.Find(ctx,
		bson.D{{Key: "userId", Value: userID}},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}),
	)
	if err != nil {
		logger.Sugar.Errorf("Failed to query posts of %s: %v", userID, err)
		return nil, err
	}
	posts := []store.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		logger.Sugar.Errorf("Failed to decode posts of %s: %v", userID, err)
		return nil, err
	}
	for i := range posts {
		posts[i].Normalize()
	}
	return posts, nil
}

func (r *PostRepository) Update(ctx context.Context, id string, patch store.PostPatch) error {
	set := patch.Fields()
	set["updatedAt"] = time.Now().UTC()
	return r.updateOne(ctx, id, bson.D{{Key: "$set", Value: set}})
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	oid, err := store.ParseID(id)
	if err != nil {
		return err
	}
	res, err := r.Coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		logger.Sugar.Errorf("Failed to delete post %s: %v", id, err)
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *PostRepository) AddLike(ctx context.Context, id, accountID string) error {
	return r.updateOne(ctx, id, bson.D{
		{Key: "$addToSet", Value: bson.D{{Key: "likes", Value: accountID}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: time.Now().UTC()}}},
	})
}

func (r *PostRepository) RemoveLike(ctx context.Context, id, accountID string) error {
	return r.updateOne(ctx, id, bson.D{
		{Key: "$pull", Value: bson.D{{Key: "likes", Value: accountID}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: time.Now().UTC()}}},
	})
}

func (r *PostRepository) updateOne(ctx context.Context, id string, update bson.D) error {
	oid, err := store.ParseID(id)
	if err != nil {
		return err
	}
	res, err := r.Coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: oid}}, update)
	if err != nil {
		logger.Sugar.Errorf("Failed to update post %s: %v", id, err)
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// FollowingPosts joins the account with the posts of everyone it follows
// in a single aggregation over the users collection.
func (r *PostRepository) FollowingPosts(ctx context.Context, accountID string) ([]store.Post, error) {
	oid, err := store.ParseID(accountID)
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "_id", Value: oid}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: store.PostsCollection},
			{Key: "localField", Value: "following"},
			{Key: "foreignField", Value: "userId"},
			{Key: "as", Value: "followingPosts"},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "following", Value: 1},
			{Key: "followingPosts", Value: 1},
			{Key: "_id", Value: 0},
		}}},
	}

	cursor, err := r.Users.Aggregate(ctx, pipeline)
	if err != nil {
		logger.Sugar.Errorf("Failed to aggregate timeline of %s: %v", accountID, err)
		return nil, err
	}
	var rows []struct {
		Following      []string     `bson:"following"`
		FollowingPosts []store.Post `bson:"followingPosts"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		logger.Sugar.Errorf("Failed to decode timeline of %s: %v", accountID, err)
		return nil, err
	}
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}

	// An empty or missing following list can make $lookup match posts
	// without a userId; keep only posts by followed accounts.
	posts := []store.Post{}
	for _, p := range rows[0].FollowingPosts {
		if slices.Contains(rows[0].Following, p.UserID) {
			p.Normalize()
			posts = append(posts, p)
		}
	}
	return posts, nil
}
