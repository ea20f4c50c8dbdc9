package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/worklink/internal/model"
)

// bearerPrefix はAuthorizationヘッダーのbearerトークンのマーカー。
const bearerPrefix = "Bearer "

// defaultTokenTTL はトークンの有効期間。発行から24時間で失効する。
const defaultTokenTTL = 24 * time.Hour

// ErrInvalidToken はトークン検証の失敗を表す。
// 署名不正・期限切れ・パース失敗のいずれであるかは呼び出し側に漏らさず、
// すべてこの単一のエラーに集約する。
var ErrInvalidToken = errors.New("invalid or expired token")

// Claim は署名付きトークンに埋め込まれる認証済みアイデンティティ。
type Claim struct {
	ID    string
	Role  model.Role
	Email string
}

// tokenClaims はJWTのペイロード表現。
type tokenClaims struct {
	Role  string `json:"role"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenManagerConfig はTokenManagerの設定。
type TokenManagerConfig struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
}

// TokenManager はHS256署名のJWTを発行・検証する。
type TokenManager struct {
	config TokenManagerConfig
}

// NewTokenManager はTokenManagerを生成する。
// TTLが未指定の場合は24時間を使用する。
func NewTokenManager(cfg TokenManagerConfig) (*TokenManager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token secret is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTokenTTL
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "worklink"
	}
	return &TokenManager{config: cfg}, nil
}

// Issue はClaimから署名付きトークン文字列を生成する。
// 発行時刻と有効期限をペイロードに含める。
func (m *TokenManager) Issue(claim Claim) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Role:  string(claim.Role),
		Email: claim.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claim.ID,
			Issuer:    m.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.config.Secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Verify はトークン文字列を検証し、Claimを返す。
// "Bearer "プレフィックス付きの入力も受け付ける（検証前に除去する）。
// 失敗理由は区別せず、常にErrInvalidTokenを返す。
func (m *TokenManager) Verify(raw string) (*Claim, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(raw, bearerPrefix))
	if raw == "" {
		return nil, ErrInvalidToken
	}

	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.config.Secret, nil
	}, jwt.WithIssuer(m.config.Issuer), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	role := model.Role(claims.Role)
	if !role.IsValid() || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &Claim{
		ID:    claims.Subject,
		Role:  role,
		Email: claims.Email,
	}, nil
}

// ExtractBearerToken はAuthorizationヘッダーからbearerトークンを取り出す。
// ヘッダーが無い、またはbearer形式でない場合は空文字列を返す。副作用なし。
func ExtractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
}
