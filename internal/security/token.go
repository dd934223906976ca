package security

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("token has expired")
	ErrWrongTokenType = errors.New("wrong token type for this endpoint")
	ErrChallengeUsed  = errors.New("sign-in challenge already used")
)

type TokenType string

const (
	TokenTypeAccess    TokenType = "access"
	TokenTypeChallenge TokenType = "challenge"
)

// ChallengeTTL bounds how long a sign-in challenge may be answered.
const ChallengeTTL = 5 * time.Minute

const (
	issuer   = "lendlocal"
	audience = "lendlocal-api"
)

// SessionClaims identify the signed-in user and their wallet
type SessionClaims struct {
	UserID        string    `json:"user_id"`
	WalletAddress string    `json:"wallet_address,omitempty"`
	Type          TokenType `json:"type"`
	jwt.RegisteredClaims
}

// Challenge is handed to a wallet before sign-in. The wallet signs Message
// and returns it together with Token.
type Challenge struct {
	Token     string    `json:"challenge"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

type TokenManager interface {
	GenerateAccessToken(userID, walletAddress string) (string, error)
	ValidateToken(tokenString string) (*SessionClaims, error)
	GenerateChallenge(walletAddress string) (Challenge, error)
	RedeemChallenge(tokenString string) (*SessionClaims, error)
}

type tokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu    sync.Mutex
	spent map[string]time.Time // challenge jti -> expiry
}

// NewTokenManager issues HS256 session tokens valid for ttl.
func NewTokenManager(secret string, ttl time.Duration) TokenManager {
	return &tokenManager{secret: []byte(secret), ttl: ttl, now: time.Now, spent: make(map[string]time.Time)}
}

func (m *tokenManager) GenerateAccessToken(userID, walletAddress string) (string, error) {
	now := m.now()
	claims := SessionClaims{
		UserID:        userID,
		WalletAddress: walletAddress,
		Type:          TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// GenerateChallenge issues a single-use challenge bound to walletAddress.
// The token id doubles as the nonce in the signed message.
func (m *tokenManager) GenerateChallenge(walletAddress string) (Challenge, error) {
	now := m.now().UTC().Truncate(time.Second)
	expires := now.Add(ChallengeTTL)
	nonce := uuid.NewString()
	claims := SessionClaims{
		WalletAddress: walletAddress,
		Type:          TokenTypeChallenge,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   walletAddress,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			ID:        nonce,
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return Challenge{}, err
	}
	return Challenge{
		Token:     token,
		Message:   SignInMessage(walletAddress, nonce, now),
		ExpiresAt: expires,
	}, nil
}

// RedeemChallenge validates a challenge token and marks it spent, so each
// challenge signs in at most once per process.
func (m *tokenManager) RedeemChallenge(tokenString string) (*SessionClaims, error) {
	claims, err := m.parse(tokenString, TokenTypeChallenge)
	if err != nil {
		return nil, err
	}
	if claims.ID == "" || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for id, exp := range m.spent {
		if now.After(exp) {
			delete(m.spent, id)
		}
	}
	if _, used := m.spent[claims.ID]; used {
		return nil, ErrChallengeUsed
	}
	m.spent[claims.ID] = claims.ExpiresAt.Time
	return claims, nil
}

func (m *tokenManager) ValidateToken(tokenString string) (*SessionClaims, error) {
	claims, err := m.parse(tokenString, TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	return claims, nil
}

func (m *tokenManager) parse(tokenString string, want TokenType) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithAudience(audience), jwt.WithTimeFunc(m.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != want {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}
