package user

import "github.com/google/uuid"

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// пароль хранится открытым текстом: формат документа ai_planner_users менять нельзя
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

func New(username, password string) *User {
	return &User{
		ID:       uuid.NewString(),
		Username: username,
		Password: password,
		Role:     RoleUser,
	}
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
