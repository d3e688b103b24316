package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/vigneshnair/bazaarly-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	AccountID uuid.UUID
	Role      enums.Role
}

// AccessTokenClaims represents the typed JWT issued to clients. The
// subject is always the internal account id; the role is a snapshot
// taken at mint time and goes stale if the role changes afterwards.
type AccessTokenClaims struct {
	Role enums.Role `json:"role"`
	jwt.RegisteredClaims
}

// AccountID parses the subject claim back into an account id.
func (c *AccessTokenClaims) AccountID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}
