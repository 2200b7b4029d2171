package models

import (
	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	Session
	//has standard jwt field issued at, issued by etc
	jwt.RegisteredClaims
}
