package user

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/mentora/core"
)

// Roles
const (
	RoleAdmin  = "admin"
	RoleMentor = "mentor"
	RoleMentee = "mentee"
)

var AllRoles = []string{RoleAdmin, RoleMentor, RoleMentee}

// IsRole reports whether r is a known role.
func IsRole(r string) bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// DefaultPassword is the first-login password given to accounts created by a student import.
func DefaultPassword(rollNo string) string {
	return rollNo + "@123"
}

type User struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	Role               string     `json:"role"`
	IsActive           bool       `json:"is_active"`
	MustChangePassword bool       `json:"must_change_password"`
	PasswordHash       []byte     `json:"-"`
	LastLogin          *time.Time `json:"last_login"` // UTC
	CreatedAt          time.Time  `json:"created_at"` // UTC
	UpdatedAt          time.Time  `json:"updated_at"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool  { return u.Role == RoleAdmin }
func (u *User) IsMentor() bool { return u.Role == RoleMentor }
func (u *User) IsMentee() bool { return u.Role == RoleMentee }

// NewUser contains information needed to create a new User.
type NewUser struct {
	Email              string `json:"email" validate:"required,simple_email"`
	Password           string `json:"password" validate:"required"`
	PasswordConfirm    string `json:"password_confirm" validate:"required,eqfield=Password"`
	Role               string `json:"role" validate:"required,role"`
	MustChangePassword bool   `json:"-"`
}

func (nu *NewUser) Clean() {
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Role = core.CleanString(nu.Role, true /* lower */)
}

// PasswordChange is submitted by a User changing their own password.
type PasswordChange struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	Email           string `json:"-"` // used by the password policy
}

type GetFilter struct {
	ID    string
	Email string
}

type QueryFilter struct {
	Search   string
	Roles    []string
	IsActive *bool
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	roles := qf.Roles[:0]
	for _, r := range qf.Roles {
		if r = core.CleanString(r, true /* lower */); r != "" {
			roles = append(roles, r)
		}
	}
	if len(roles) == 0 {
		roles = nil
	}
	qf.Roles = roles
}

// OrderingFields lists the fields users can be ordered by.
var OrderingFields = []string{"email", "role", "is_active", "created_at", "last_login"}
