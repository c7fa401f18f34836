package model

import "sosmed/store"

// UpdateUserRequest is the whitelisted body of a profile update.
type UpdateUserRequest struct {
	Password       *string `json:"password"`
	Firstname      *string `json:"firstname"`
	Lastname       *string `json:"lastname"`
	ProfilePicture *string `json:"profilePicture"`
	CoverPicture   *string `json:"coverPicture"`
	About          *string `json:"about"`
	LivesIn        *string `json:"livesin"`
	WorksAt        *string `json:"worksAt"`
	Relationship   *string `json:"relationship"`
	Country        *string `json:"country"`
}

func (r UpdateUserRequest) Patch() store.AccountPatch {
	return store.AccountPatch{
		Password:       r.Password,
		Firstname:      r.Firstname,
		Lastname:       r.Lastname,
		ProfilePicture: r.ProfilePicture,
		CoverPicture:   r.CoverPicture,
		About:          r.About,
		LivesIn:        r.LivesIn,
		WorksAt:        r.WorksAt,
		Relationship:   r.Relationship,
		Country:        r.Country,
	}
}

// AuthResponse is returned by register, login and profile update.
type AuthResponse struct {
	User  *store.Account `json:"user"`
	Token string         `json:"token"`
}
