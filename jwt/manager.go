package jwt

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SigningMethod selects the signature algorithm for issued tokens.
type SigningMethod string

const (
	// MethodHS256 signs with a shared secret.
	MethodHS256 SigningMethod = "hs256"
	// MethodEd25519 signs with an ed25519 private key.
	MethodEd25519 SigningMethod = "ed25519"
)

// TokenKind distinguishes access tokens from refresh tokens.
type TokenKind string

const (
	// KindAccess is the short-lived bearer token presented on every request.
	KindAccess TokenKind = "access"
	// KindRefresh is the long-lived token exchanged for fresh pairs.
	KindRefresh TokenKind = "refresh"
)

var (
	// ErrKindMismatch indicates a structurally valid token of the wrong kind.
	ErrKindMismatch = errors.New("token kind mismatch")
	// ErrMissingTokenID indicates a token without a jti claim.
	ErrMissingTokenID = errors.New("token missing id")
)

// Config holds signing configuration. Secret material is loaded once at
// startup and treated as immutable.
type Config struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SigningMethod SigningMethod
	Secret        []byte // HS256
	PrivateKey    []byte // ed25519, raw or PEM
	PublicKey     []byte // ed25519, raw or PEM
	Issuer        string
	Leeway        time.Duration
}

// Claims is the decoded payload of an issued token.
type Claims struct {
	SubjectKind string `json:"skd"`
	TokenKind   string `json:"tkd"`
	OrgID       string `json:"org,omitempty"`
	Role        string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Kind returns the token kind claim.
func (c *Claims) Kind() TokenKind {
	return TokenKind(c.TokenKind)
}

// Extra carries optional supplementary claims for operator subjects.
type Extra struct {
	OrgID string
	Role  string
}

// Pair is an access token plus a refresh token issued together.
type Pair struct {
	AccessToken   string
	RefreshToken  string
	AccessClaims  *Claims
	RefreshClaims *Claims
}

// Manager mints and parses token pairs. Safe for concurrent use.
type Manager struct {
	config Config
}

// NewManager validates cfg and returns a ready Manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.RefreshTTL < cfg.AccessTTL {
		return nil, errors.New("refresh TTL shorter than access TTL")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.Secret) < 32 {
			return nil, errors.New("hs256 requires a secret of at least 32 bytes")
		}
	case MethodEd25519:
		if _, err := parseEdPrivateKey(cfg.PrivateKey); err != nil {
			return nil, err
		}
		if _, err := parseEdPublicKey(cfg.PublicKey); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("unsupported signing method")
	}

	return &Manager{config: cfg}, nil
}

// IssuePair mints an access token and a refresh token for the subject. Each
// token carries its own jti so they are revocable independently.
func (m *Manager) IssuePair(subjectID, subjectKind string, extra Extra) (*Pair, error) {
	if subjectID == "" || subjectKind == "" {
		return nil, errors.New("subject id and kind required")
	}

	now := time.Now()

	accessClaims := m.newClaims(subjectID, subjectKind, KindAccess, now, m.config.AccessTTL, extra)
	refreshClaims := m.newClaims(subjectID, subjectKind, KindRefresh, now, m.config.RefreshTTL, extra)

	access, err := m.sign(accessClaims)
	if err != nil {
		return nil, err
	}
	refresh, err := m.sign(refreshClaims)
	if err != nil {
		return nil, err
	}

	return &Pair{
		AccessToken:   access,
		RefreshToken:  refresh,
		AccessClaims:  accessClaims,
		RefreshClaims: refreshClaims,
	}, nil
}

// Parse checks structure, signature, and expiry, then enforces the expected
// token kind. Presenting a refresh token where an access token is expected
// fails with [ErrKindMismatch].
func (m *Manager) Parse(tokenStr string, expect TokenKind) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{m.method().Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != m.method().Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return m.verifyKey()
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.Subject == "" || claims.SubjectKind == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.ID == "" {
		return nil, ErrMissingTokenID
	}
	if claims.Kind() != expect {
		return nil, ErrKindMismatch
	}

	return claims, nil
}

func (m *Manager) newClaims(
	subjectID, subjectKind string,
	kind TokenKind,
	now time.Time,
	ttl time.Duration,
	extra Extra,
) *Claims {
	return &Claims{
		SubjectKind: subjectKind,
		TokenKind:   string(kind),
		OrgID:       extra.OrgID,
		Role:        extra.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			ID:        uuid.NewString(),
			Issuer:    m.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

func (m *Manager) sign(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(m.method(), claims)

	key, err := m.signKey()
	if err != nil {
		return "", err
	}
	return token.SignedString(key)
}

func (m *Manager) method() jwt.SigningMethod {
	if m.config.SigningMethod == MethodEd25519 {
		return jwt.SigningMethodEdDSA
	}
	return jwt.SigningMethodHS256
}

func (m *Manager) signKey() (interface{}, error) {
	if m.config.SigningMethod == MethodEd25519 {
		return parseEdPrivateKey(m.config.PrivateKey)
	}
	return m.config.Secret, nil
}

func (m *Manager) verifyKey() (interface{}, error) {
	if m.config.SigningMethod == MethodEd25519 {
		return parseEdPublicKey(m.config.PublicKey)
	}
	return m.config.Secret, nil
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}
