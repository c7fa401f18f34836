// Package memory keeps users and posts in process memory. It satisfies the
// same repository contracts as the MongoDB repositories and backs local
// runs with STORE_DRIVER=memory as well as the package tests.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"sosmed/store"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type DB struct {
	mu       sync.RWMutex
	accounts map[bson.ObjectID]store.Account
	posts    map[bson.ObjectID]store.Post
	now      func() time.Time
}

func New() *DB {
	return &DB{
		accounts: make(map[bson.ObjectID]store.Account),
		posts:    make(map[bson.ObjectID]store.Post),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (db *DB) Accounts() *Accounts { return &Accounts{db: db} }
func (db *DB) Posts() *Posts       { return &Posts{db: db} }

type Accounts struct{ db *DB }

func (r *Accounts) Create(_ context.Context, acc *store.Account) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, existing := range r.db.accounts {
		if existing.Username == acc.Username {
			return store.ErrDuplicate
		}
	}
	if acc.ID.IsZero() {
		acc.ID = bson.NewObjectID()
	}
	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = r.db.now()
	}
	acc.UpdatedAt = acc.CreatedAt
	acc.Normalize()
	r.db.accounts[acc.ID] = cloneAccount(*acc)
	return nil
}

func (r *Accounts) FindByID(_ context.Context, id string) (*store.Account, error) {
	oid, err := store.ParseID(id)
	if err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	acc, ok := r.db.accounts[oid]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := cloneAccount(acc)
	return &out, nil
}

func (r *Accounts) FindByUsername(_ context.Context, username string) (*store.Account, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, acc := range r.db.accounts {
		if acc.Username == username {
			out := cloneAccount(acc)
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *Accounts) List(_ context.Context) ([]store.Account, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]store.Account, 0, len(r.db.accounts))
	for _, acc := range r.db.accounts {
		out = append(out, cloneAccount(acc))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *Accounts) Update(_ context.Context, id string, patch store.AccountPatch) (*store.Account, error) {
	oid, err := store.ParseID(id)
	if err != nil {
		return nil, err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	acc, ok := r.db.accounts[oid]
	if !ok {
		return nil, store.ErrNotFound
	}
	patch.Apply(&acc)
	acc.UpdatedAt = r.db.now()
	r.db.accounts[oid] = acc
	out := cloneAccount(acc)
	return &out, nil
}

func (r *Accounts) Delete(_ context.Context, id string) error {
	oid, err := store.ParseID(id)
	if err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.accounts[oid]; !ok {
		return store.ErrNotFound
	}
	delete(r.db.accounts, oid)
	return nil
}

// Follow adds callerID to the target's followers and targetID to the
// caller's following under one lock.
func (r *Accounts) Follow(_ context.Context, targetID, callerID string) error {
	return r.link(targetID, callerID, true)
}

func (r *Accounts) Unfollow(_ context.Context, targetID, callerID string) error {
	return r.link(targetID, callerID, false)
}

func (r *Accounts) link(targetID, callerID string, follow bool) error {
	tid, err := store.ParseID(targetID)
	if err != nil {
		return err
	}
	cid, err := store.ParseID(callerID)
	if err != nil {
		return err
	}
	targetID, callerID = tid.Hex(), cid.Hex()
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	target, ok := r.db.accounts[tid]
	if !ok {
		return store.ErrNotFound
	}
	caller, ok := r.db.accounts[cid]
	if !ok {
		return store.ErrNotFound
	}
	if target.HasFollower(callerID) == follow {
		return store.ErrNoChange
	}

	now := r.db.now()
	if follow {
		target.Followers = append(slices.Clone(target.Followers), callerID)
		if !slices.Contains(caller.Following, targetID) {
			caller.Following = append(slices.Clone(caller.Following), targetID)
		}
	} else {
		target.Followers = remove(target.Followers, callerID)
		caller.Following = remove(caller.Following, targetID)
	}
	target.UpdatedAt, caller.UpdatedAt = now, now
	r.db.accounts[tid] = target
	r.db.accounts[cid] = caller
	return nil
}

type Posts struct{ db *DB }

func (r *Posts) Create(_ context.Context, post *store.Post) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if post.ID.IsZero() {
		post.ID = bson.NewObjectID()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = r.db.now()
	}
	post.UpdatedAt = post.CreatedAt
	post.Normalize()
	r.db.posts[post.ID] = clonePost(*post)
	return nil
}

func (r *Posts) FindByID(_ context.Context, id string) (*store.Post, error) {
	oid, err := store.ParseID(id)
	if err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	post, ok := r.db.posts[oid]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := clonePost(post)
	return &out, nil
}

func (r *Posts) FindByUser(_ context.Context, userID string) ([]store.Post, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	return r.db.postsWhere(func(p store.Post) bool { return p.UserID == userID }), nil
}

func (r *Posts) Update(_ context.Context, id string, patch store.PostPatch) error {
	return r.mutate(id, func(p *store.Post) { patch.Apply(p) })
}

func (r *Posts) Delete(_ context.Context, id string) error {
	oid, err := store.ParseID(id)
	if err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.posts[oid]; !ok {
		return store.ErrNotFound
	}
	delete(r.db.posts, oid)
	return nil
}

func (r *Posts) AddLike(_ context.Context, id, accountID string) error {
	return r.mutate(id, func(p *store.Post) {
		if !p.LikedBy(accountID) {
			p.Likes = append(slices.Clone(p.Likes), accountID)
		}
	})
}

func (r *Posts) RemoveLike(_ context.Context, id, accountID string) error {
	return r.mutate(id, func(p *store.Post) { p.Likes = remove(p.Likes, accountID) })
}

// FollowingPosts returns the posts of every account accountID follows.
func (r *Posts) FollowingPosts(_ context.Context, accountID string) ([]store.Post, error) {
	oid, err := store.ParseID(accountID)
	if err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	acc, ok := r.db.accounts[oid]
	if !ok {
		return nil, store.ErrNotFound
	}
	return r.db.postsWhere(func(p store.Post) bool {
		return slices.Contains(acc.Following, p.UserID)
	}), nil
}

func (r *Posts) mutate(id string, fn func(*store.Post)) error {
	oid, err := store.ParseID(id)
	if err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	post, ok := r.db.posts[oid]
	if !ok {
		return store.ErrNotFound
	}
	fn(&post)
	post.UpdatedAt = r.db.now()
	r.db.posts[oid] = post
	return nil
}

// postsWhere must be called with db.mu held. Results are in creation order.
func (db *DB) postsWhere(keep func(store.Post) bool) []store.Post {
	out := []store.Post{}
	for _, p := range db.posts {
		if keep(p) {
			out = append(out, clonePost(p))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func cloneAccount(a store.Account) store.Account {
	a.Followers = slices.Clone(a.Followers)
	a.Following = slices.Clone(a.Following)
	a.Normalize()
	return a
}

func clonePost(p store.Post) store.Post {
	p.Likes = slices.Clone(p.Likes)
	p.Normalize()
	return p
}

func remove(list []string, id string) []string {
	return slices.DeleteFunc(slices.Clone(list), func(s string) bool { return s == id })
}
