package service

import (
	"crypto/subtle"

	"github.com/edirooss/museq-server/internal/env"
	"github.com/edirooss/museq-server/internal/principal"
	"github.com/gin-gonic/gin"
)

// AuthService validates credentials against the configured admin identity.
type AuthService struct{}

// NewAuthService creates a new AuthService.
func NewAuthService() *AuthService {
	return &AuthService{}
}

// ValidateUsernamePassword checks the credentials in constant time and, on
// success, binds a Principal to the request context.
func (s *AuthService) ValidateUsernamePassword(c *gin.Context, username, password string, cred principal.CredentialType) (*principal.Principal, bool) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(env.Admin.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(env.Admin.Password)) == 1
	if !userOK || !passOK {
		return nil, false
	}

	principal.SetPrincipal(c, username, cred, principal.Admin)
	return principal.GetPrincipal(c), true
}

// ValidateSessionUser checks a session-provided user id.
func (s *AuthService) ValidateSessionUser(c *gin.Context, userID string) (*principal.Principal, bool) {
	if userID != env.Admin.Username {
		return nil, false
	}
	principal.SetPrincipal(c, userID, principal.Session, principal.Admin)
	return principal.GetPrincipal(c), true
}

// WhoAmI returns the authenticated Principal from the Gin context.
// Returns nil if no principal is set.
func (s *AuthService) WhoAmI(c *gin.Context) *principal.Principal {
	return principal.GetPrincipal(c)
}
