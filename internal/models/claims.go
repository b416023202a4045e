package models

import (
	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID   int    `json:"uid"`
	Username string `json:"username"`
	//has standard jwt field issued at, expiry, jti etc
	jwt.RegisteredClaims
}

// Session is the authenticated identity every protected operation runs as
type Session struct {
	UserID   int
	Username string
}

func (s Session) Valid() bool {
	return s.UserID > 0
}
