package store

import (
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	UsersCollection = "users"
	PostsCollection = "posts"
)

// Account is a registered user as stored in the users collection.
// Password holds the bcrypt hash and is never serialized to JSON.
type Account struct {
	ID             bson.ObjectID `json:"_id" bson:"_id,omitempty"`
	Username       string        `json:"username" bson:"username"`
	Password       string        `json:"-" bson:"password"`
	Firstname      string        `json:"firstname" bson:"firstname"`
	Lastname       string        `json:"lastname" bson:"lastname"`
	IsAdmin        bool          `json:"isAdmin" bson:"isAdmin"`
	ProfilePicture string        `json:"profilePicture,omitempty" bson:"profilePicture,omitempty"`
	CoverPicture   string        `json:"coverPicture,omitempty" bson:"coverPicture,omitempty"`
	About          string        `json:"about,omitempty" bson:"about,omitempty"`
	LivesIn        string        `json:"livesin,omitempty" bson:"livesin,omitempty"`
	WorksAt        string        `json:"worksAt,omitempty" bson:"worksAt,omitempty"`
	Relationship   string        `json:"relationship,omitempty" bson:"relationship,omitempty"`
	Country        string        `json:"country,omitempty" bson:"country,omitempty"`
	Followers      []string      `json:"followers" bson:"followers"`
	Following      []string      `json:"following" bson:"following"`
	CreatedAt      time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt" bson:"updatedAt"`
}

func (a *Account) HasFollower(accountID string) bool {
	return slices.Contains(a.Followers, accountID)
}

// Normalize replaces nil graph lists with empty ones so they encode as [].
func (a *Account) Normalize() {
	if a.Followers == nil {
		a.Followers = []string{}
	}
	if a.Following == nil {
		a.Following = []string{}
	}
}

// AccountPatch lists the account fields a profile update may change.
type AccountPatch struct {
	Password       *string
	Firstname      *string
	Lastname       *string
	ProfilePicture *string
	CoverPicture   *string
	About          *string
	LivesIn        *string
	WorksAt        *string
	Relationship   *string
	Country        *string
}

// Fields returns the set fields keyed by their document name.
func (p AccountPatch) Fields() bson.M {
	set := bson.M{}
	put := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}
	put("password", p.Password)
	put("firstname", p.Firstname)
	put("lastname", p.Lastname)
	put("profilePicture", p.ProfilePicture)
	put("coverPicture", p.CoverPicture)
	put("about", p.About)
	put("livesin", p.LivesIn)
	put("worksAt", p.WorksAt)
	put("relationship", p.Relationship)
	put("country", p.Country)
	return set
}

// Apply copies the set fields onto a.
func (p AccountPatch) Apply(a *Account) {
	apply := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	apply(&a.Password, p.Password)
	apply(&a.Firstname, p.Firstname)
	apply(&a.Lastname, p.Lastname)
	apply(&a.ProfilePicture, p.ProfilePicture)
	apply(&a.CoverPicture, p.CoverPicture)
	apply(&a.About, p.About)
	apply(&a.LivesIn, p.LivesIn)
	apply(&a.WorksAt, p.WorksAt)
	apply(&a.Relationship, p.Relationship)
	apply(&a.Country, p.Country)
}

// Post is a content item authored by one account.
type Post struct {
	ID        bson.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID    string        `json:"userId" bson:"userId"`
	Desc      string        `json:"desc" bson:"desc"`
	Image     string        `json:"image,omitempty" bson:"image,omitempty"`
	Likes     []string      `json:"likes" bson:"likes"`
	CreatedAt time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt" bson:"updatedAt"`
}

func (p *Post) LikedBy(accountID string) bool {
	return slices.Contains(p.Likes, accountID)
}

func (p *Post) Normalize() {
	if p.Likes == nil {
		p.Likes = []string{}
	}
}

// PostPatch lists the post fields an owner may change.
type PostPatch struct {
	Desc  *string
	Image *string
}

func (p PostPatch) Fields() bson.M {
	set := bson.M{}
	if p.Desc != nil {
		set["desc"] = *p.Desc
	}
	if p.Image != nil {
		set["image"] = *p.Image
	}
	return set
}

func (p PostPatch) Apply(post *Post) {
	if p.Desc != nil {
		post.Desc = *p.Desc
	}
	if p.Image != nil {
		post.Image = *p.Image
	}
}
