package auth

import (
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// Reserved claim names. A ClaimsProvider cannot overwrite them.
const (
	ClaimUsername = "username"
	ClaimClientID = "clientId"
	claimIssued   = "iat"
	claimExpires  = "exp"
)

// Claims is the verified content of an access token.
type Claims struct {
	Username  string
	ClientID  string
	ExpiresAt time.Time
	// Extra holds every other claim found in the token.
	Extra map[string]any
}

// Issuer signs and verifies HS256 access tokens bound to a client.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	claims ClaimsProvider
	now    func() time.Time
}

// NewIssuer validates the signing configuration. An empty secret is a
// startup error, as is a ttl under one second (expiresIn would be zero).
// A nil provider means NoClaims.
func NewIssuer(secret []byte, ttl time.Duration, claims ClaimsProvider) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, common.ErrMissingSecret
	}
	if ttl < time.Second {
		return nil, common.ErrInvalidTTL
	}
	if claims == nil {
		claims = NoClaims
	}
	return &Issuer{secret: secret, ttl: ttl, claims: claims, now: time.Now}, nil
}

// TTL returns the configured access token lifetime.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs a token for (user, clientID) and returns it with the number of
// whole seconds until it expires, measured from the issuance instant.
func (i *Issuer) Issue(user *models.User, clientID string) (string, int64, error) {
	now := i.now()
	issuedAt := jwt.NewNumericDate(now)
	expiresAt := jwt.NewNumericDate(now.Add(i.ttl))

	payload := jwt.MapClaims{}
	for k, v := range i.claims.Claims(user) {
		payload[k] = v
	}
	payload[ClaimUsername] = user.Username
	payload[ClaimClientID] = clientID
	payload[claimIssued] = issuedAt
	payload[claimExpires] = expiresAt

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, payload).SignedString(i.secret)
	if err != nil {
		return "", 0, err
	}

	return token, expiresAt.Unix() - issuedAt.Unix(), nil
}

// Parse verifies signature and expiry and extracts the binding claims. Any
// failure is reported as common.ErrInvalidToken; the cause is not exposed.
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	payload := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, payload,
		func(t *jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !token.Valid {
		return nil, common.ErrInvalidToken
	}

	username, _ := payload[ClaimUsername].(string)
	clientID, _ := payload[ClaimClientID].(string)
	if username == "" || clientID == "" {
		return nil, common.ErrInvalidToken
	}

	exp, err := payload.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, common.ErrInvalidToken
	}

	extra := make(map[string]any)
	for k, v := range payload {
		switch k {
		case ClaimUsername, ClaimClientID, claimIssued, claimExpires:
		default:
			extra[k] = v
		}
	}

	return &Claims{Username: username, ClientID: clientID, ExpiresAt: exp.Time, Extra: extra}, nil
}
