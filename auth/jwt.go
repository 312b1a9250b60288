package auth

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	nanoid "github.com/matoous/go-nanoid/v2"
)

// DefaultConnectTokenTTL is the lifetime of a per-request Connect JWT.
const DefaultConnectTokenTTL = 3 * time.Minute

// ConnectClaims are the claims of an Atlassian Connect JWT.
type ConnectClaims struct {
	jwt.RegisteredClaims
	QSH string `json:"qsh"`
}

// ConnectJWT signs each request with an Atlassian Connect JWT.
// The token binds to the request through the query string hash (qsh).
type ConnectJWT struct {
	// Issuer is the app key.
	Issuer string

	// SharedSecret is the HMAC key received at app installation.
	SharedSecret []byte

	// ContextPath is the path prefix of the Jira instance (e.g. "/jira"),
	// stripped before hashing. Empty for Cloud.
	ContextPath string

	// TTL is the token lifetime. Defaults to DefaultConnectTokenTTL.
	TTL time.Duration

	// Now overrides the clock (for tests).
	Now func() time.Time
}

func (c *ConnectJWT) ttl() time.Duration {
	if c.TTL == 0 {
		return DefaultConnectTokenTTL
	}
	return c.TTL
}

func (c *ConnectJWT) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Apply implements Authenticator.
func (c *ConnectJWT) Apply(req *http.Request) error {
	token, err := c.Sign(req.Method, req.URL)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "JWT "+token)
	return nil
}

// Sign returns a signed token for the given method and URL.
func (c *ConnectJWT) Sign(method string, u *url.URL) (string, error) {
	if len(c.SharedSecret) < 32 {
		return "", ErrSecretTooShort
	}

	tokenID, err := nanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate token ID: %w", err)
	}

	now := c.now()
	claims := ConnectClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl())),
			ID:        tokenID,
		},
		QSH: QueryStringHash(method, u, c.ContextPath),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.SharedSecret)
}

// ValidateConnectJWT parses a Connect token and checks its signature, expiry,
// issuer and that it was issued for the given request.
func ValidateConnectJWT(c *ConnectJWT, tokenString, method string, u *url.URL) (*ConnectClaims, error) {
	claims := &ConnectClaims{}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if c.Now != nil {
		opts = append(opts, jwt.WithTimeFunc(c.Now))
	}
	if c.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return c.SharedSecret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.QSH != QueryStringHash(method, u, c.ContextPath) {
		return nil, ErrQSHMismatch
	}
	return claims, nil
}

// QueryStringHash computes the Connect qsh claim for a request.
func QueryStringHash(method string, u *url.URL, contextPath string) string {
	return HashToken(CanonicalRequest(method, u, contextPath))
}

// CanonicalRequest builds the Connect canonical request string:
// METHOD&path&sorted-query.
func CanonicalRequest(method string, u *url.URL, contextPath string) string {
	path := u.EscapedPath()
	if contextPath != "" {
		path = strings.TrimPrefix(path, strings.TrimSuffix(contextPath, "/"))
	}
	if path == "" {
		path = "/"
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	path = strings.ReplaceAll(path, "&", "%26")

	query := u.Query()
	keys := make([]string, 0, len(query))
	for k := range query {
		if k == "jwt" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		vals := append([]string(nil), query[k]...)
		sort.Strings(vals)
		for i, v := range vals {
			vals[i] = percentEncode(v)
		}
		parts = append(parts, percentEncode(k)+"="+strings.Join(vals, ","))
	}

	return strings.ToUpper(method) + "&" + path + "&" + strings.Join(parts, "&")
}

// percentEncode applies RFC 3986 encoding (spaces as %20, not +).
func percentEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
