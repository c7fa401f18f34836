package model

type RegisterRequest struct {
	Username       string `json:"username"`
	Password       string `json:"password"`
	Firstname      string `json:"firstname"`
	Lastname       string `json:"lastname"`
	ProfilePicture string `json:"profilePicture"`
	CoverPicture   string `json:"coverPicture"`
	About          string `json:"about"`
	LivesIn        string `json:"livesin"`
	WorksAt        string `json:"worksAt"`
	Relationship   string `json:"relationship"`
	Country        string `json:"country"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
