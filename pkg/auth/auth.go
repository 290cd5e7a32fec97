package auth

import (
	"context"
	"os"

	"github.com/golang-jwt/jwt/v4"
)

// Role mirrors the users.role column: 1=Admin, 2=Librarian, 3=Reader.
type Role int

const (
	RoleAdmin     Role = 1
	RoleLibrarian Role = 2
	RoleReader    Role = 3
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleLibrarian || r == RoleReader
}

// Privileged reports whether the role may act on behalf of any user.
func (r Role) Privileged() bool {
	return r == RoleAdmin || r == RoleLibrarian
}

var JWTKey = jwtKey()

func jwtKey() []byte {
	if key := os.Getenv("JWT_SECRET"); key != "" {
		return []byte(key)
	}
	return []byte("dev-secret")
}

type Profile struct {
	UserID int    `json:"userId"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
}

type Claims struct {
	Profile Profile `json:"profile"`
	Email   string  `json:"email"`
	jwt.RegisteredClaims
}

// Principal is the authenticated actor attached to a request context.
type Principal struct {
	UserID int
	Name   string
	Role   Role
}

func (p Principal) Privileged() bool { return p.Role.Privileged() }

type contextKey int

const principalKey contextKey = iota + 1

func SetPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}
