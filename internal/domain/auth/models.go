package auth

const UserStatusActive = "active"

type User struct {
	ID           string
	SchoolID     string
	Email        string
	FullName     string
	RoleName     string
	PasswordHash string
}

type LoginResult struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
	UserID    string `json:"userId"`
	SchoolID  string `json:"schoolId"`
	Role      string `json:"role"`
}
