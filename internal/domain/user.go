package domain

type Role string

const (
	RoleUser  Role = "ROLE_USER"
	RoleAdmin Role = "ROLE_ADMIN"
)

// User is the identity record owned by the excluded profile subsystem.
// The auth core only ever reads it through repository.UserRepository.
type User struct {
	ID           int64  `json:"id" db:"id"`
	Username     string `json:"username" db:"username"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password"`
	Role         Role   `json:"role" db:"role"`
}
