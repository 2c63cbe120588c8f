package middleware

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenIssuer   = "scrappages-api"
	TokenAudience = "scrappages-client"
	TokenTTL      = 7 * 24 * time.Hour

	// Messages returned to clients on authentication failures.
	MsgCredentialsMissing = "Authentication credentials were not provided."
	MsgInvalidToken       = "Invalid or expired token"
)

var (
	ErrMissingToken = errors.New("authorization token missing")
	ErrInvalidToken = errors.New("authorization token invalid")
)

// TokenClaims is the subset of JWT claims the API relies on.
type TokenClaims struct {
	UserID    uint
	JTI       string
	ExpiresAt time.Time
}

// IssueToken signs an HS256 token for the user.
func IssueToken(secret string, userID uint, username string, now time.Time) (string, *TokenClaims, error) {
	claims := &TokenClaims{
		UserID:    userID,
		JTI:       uuid.NewString(),
		ExpiresAt: now.Add(TokenTTL),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10),
		"username": username,
		"iss":      TokenIssuer,
		"aud":      TokenAudience,
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"exp":      claims.ExpiresAt.Unix(),
		"jti":      claims.JTI,
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// ParseToken validates signature, issuer, audience and expiry and extracts the claims.
func ParseToken(secret, tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(_ *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	// Extract user ID from "sub" claim (subject claim per RFC 7519)
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, ErrInvalidToken
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return nil, ErrInvalidToken
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrInvalidToken
	}
	jti, _ := claims["jti"].(string)

	return &TokenClaims{UserID: uint(userID), JTI: jti, ExpiresAt: exp.Time}, nil
}

// BearerToken extracts the token from the Authorization header. Both the
// "Bearer" and "Token" schemes are accepted. WebSocket handshakes may pass
// it as the "token" query parameter instead.
func BearerToken(c *fiber.Ctx) (string, error) {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if header == "" {
		if token := c.Query("token"); token != "" && isWebSocketUpgrade(c) {
			return token, nil
		}
		return "", ErrMissingToken
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found {
		return "", ErrInvalidToken
	}
	switch strings.ToLower(scheme) {
	case "bearer", "token":
	default:
		return "", ErrInvalidToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalidToken
	}
	return token, nil
}

func isWebSocketUpgrade(c *fiber.Ctx) bool {
	return strings.EqualFold(c.Get(fiber.HeaderUpgrade), "websocket")
}
