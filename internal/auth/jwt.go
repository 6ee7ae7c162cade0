package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthHeader is the request header protected routes read the token from.
const AuthHeader = "x-auth-token"

// Token lifetime. There is no server-side revocation; a token dies only
// by expiring or being discarded by the client.
const tokenTTL = time.Hour

var (
	// ErrMissingToken means the request carried no token at all.
	ErrMissingToken = errors.New("no token, authorization denied")
	// ErrInvalidToken covers every verification failure: bad signature,
	// malformed token, expired token. Callers cannot tell these apart.
	ErrInvalidToken = errors.New("token is not valid")
)

// Claims defines the JWT claims structure.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// callerKey is the context key the resolved caller id is stored under.
type contextKey string

const callerKey = contextKey("callerID")

// TokenIssuer mints and verifies signed session tokens.
type TokenIssuer struct {
	key []byte
}

// NewTokenIssuer creates a TokenIssuer with the given signing secret.
func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{key: []byte(secret)}
}

// Issue creates a new signed token for a user, expiring in one hour.
func (t *TokenIssuer) Issue(userID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.key)
}

// Verify parses and validates a token string, returning the subject
// user id. Any failure, expiry included, yields ErrInvalidToken.
func (t *TokenIssuer) Verify(tokenStr string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return t.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}

// Middleware protects routes by requiring a valid token in the
// x-auth-token header. The resolved user id is attached to the request
// context; this is the only place caller identity is established.
func (t *TokenIssuer) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := r.Header.Get(AuthHeader)
			if tokenStr == "" {
				writeAuthError(w, "No token, authorization denied")
				return
			}

			userID, err := t.Verify(tokenStr)
			if err != nil {
				writeAuthError(w, "Token is not valid")
				return
			}

			ctx := context.WithValue(r.Context(), callerKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CallerID returns the authenticated user id attached by Middleware.
func CallerID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(callerKey).(string)
	return id, ok
}

func writeAuthError(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"msg":"` + msg + `"}`))
}
