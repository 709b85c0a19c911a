package jwttoken

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "opsgate/pkg/domain-errors"
)

// AccessTokenClaims represents the JWT claims for admin access tokens.
type AccessTokenClaims struct {
	AdminID  string `json:"admin_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service handles JWT creation and validation.
// Validation here is purely stateless (signature, expiry, issuer, audience);
// blacklist membership is a separate stateful check owned by the revocation
// store.
type Service struct {
	signingKey []byte
	issuer     string
	audience   string
	tokenTTL   time.Duration
}

func NewService(signingKey, issuer, audience string, tokenTTL time.Duration) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
		tokenTTL:   tokenTTL,
	}
}

// TokenTTL reports the configured access token lifetime.
func (s *Service) TokenTTL() time.Duration {
	return s.tokenTTL
}

// Generate mints a signed access token for the given admin and returns the
// token string together with its JTI.
func (s *Service) Generate(adminID uuid.UUID, username string) (string, string, error) {
	if username == "" {
		return "", "", dErrors.New(dErrors.CodeInvalidInput, "username cannot be empty")
	}

	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	jti := hex.EncodeToString(b)
	now := time.Now()

	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessTokenClaims{
		AdminID:  adminID.String(),
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        jti,
		},
	})

	signed, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", "", err
	}
	return signed, jti, nil
}

// Validate parses and validates a token: signature, algorithm, expiry,
// issuer, and audience. Expired tokens surface as CodeTokenExpired so
// transport can distinguish them from malformed or forged ones.
func (s *Service) Validate(tokenString string) (*AccessTokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &AccessTokenClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeTokenExpired, "token expired")
		}
		return nil, dErrors.New(dErrors.CodeTokenInvalid, "invalid token")
	}

	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeTokenInvalid, "invalid token")
	}

	claims, ok := parsed.Claims.(*AccessTokenClaims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeTokenInvalid, "invalid token claims")
	}

	if claims.Issuer != s.issuer {
		return nil, dErrors.New(dErrors.CodeTokenInvalid, "invalid token issuer")
	}

	if !slices.Contains(claims.Audience, s.audience) {
		return nil, dErrors.New(dErrors.CodeTokenInvalid, "invalid token audience")
	}

	return claims, nil
}

// ParseSkipClaimsValidation parses a token WITHOUT validating expiration.
//
// This method should ONLY be used where an expired token is still meaningful:
//   - refresh flows that honor a grace period past expiry
//   - logout and revocation, where the JTI of an expired token must still
//     reach the blacklist
//
// Signature and algorithm are STILL verified. Callers own any further
// business validation (grace window, blacklist membership).
func (s *Service) ParseSkipClaimsValidation(tokenString string) (*AccessTokenClaims, error) {
	if tokenString == "" {
		return nil, dErrors.New(dErrors.CodeTokenInvalid, "empty token")
	}

	claims := new(AccessTokenClaims)
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, dErrors.New(dErrors.CodeTokenInvalid, "unexpected signing algorithm")
		}
		return s.signingKey, nil
	},
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrSignatureInvalid) {
			return nil, dErrors.New(dErrors.CodeTokenInvalid, "invalid jwt signature")
		}
		return nil, dErrors.New(dErrors.CodeTokenInvalid, "jwt parse failed")
	}

	if !token.Valid {
		return nil, dErrors.New(dErrors.CodeTokenInvalid, "invalid jwt signature")
	}

	return claims, nil
}

// FromAuthHeader extracts the raw token from an Authorization header value.
// The expected format is "Bearer {token}".
func FromAuthHeader(header string) (string, bool) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
