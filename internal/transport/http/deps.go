package http

import (
	"github.com/eventure/identity-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/eventure/identity-api/internal/infrastructure/jwt"
	redisstore "github.com/eventure/identity-api/internal/infrastructure/redis"
	"github.com/eventure/identity-api/internal/infrastructure/smtp"
	"github.com/eventure/identity-api/internal/infrastructure/sns"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo    *dynamo.UserRepo
	Sessions    *redisstore.Store
	Mailer      smtp.Mailer
	SMSSender   sns.SMSSender
	JWTProvider *jwtinfra.Provider
}
