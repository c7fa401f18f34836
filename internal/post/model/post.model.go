package model

import "sosmed/store"

// CreatePostRequest carries the new post. UserID names the author; when
// absent the authenticated caller is used.
type CreatePostRequest struct {
	UserID string `json:"userId"`
	Desc   string `json:"desc"`
	Image  string `json:"image"`
}

// UpdatePostRequest is the whitelisted body of a post update.
type UpdatePostRequest struct {
	Desc  *string `json:"desc"`
	Image *string `json:"image"`
}

func (r UpdatePostRequest) Patch() store.PostPatch {
	return store.PostPatch{Desc: r.Desc, Image: r.Image}
}

// LikeResult tells which way a like toggle went.
type LikeResult struct {
	Liked bool
}

func (l LikeResult) Message() string {
	if l.Liked {
		return "Post liked"
	}
	return "Post Unliked"
}
