package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/iudanet/taskkeeper/internal/models"
)

// Issuer значение claim iss для всех выпущенных токенов
const Issuer = "taskkeeper"

// ErrInvalidToken возвращается, если подпись, срок действия или алгоритм токена не прошли проверку
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims представляет JWT claims сессионного токена
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwtlib.RegisteredClaims
}

// Identity возвращает данные пользователя из claims
func (c *Claims) Identity() models.Identity {
	return models.Identity{UserID: c.UserID, Email: c.Email, Name: c.Name}
}

// Service выпускает и проверяет сессионные токены (HS256)
type Service struct {
	now    func() time.Time
	secret []byte
	ttl    time.Duration
}

// NewService создает JWT сервис.
// secret должен быть криптографически стойкой случайной строкой
func NewService(secret string, ttl time.Duration) *Service {
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL время жизни выпускаемых токенов
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Generate создает новый токен для пользователя.
// Возвращает токен и момент его истечения.
func (s *Service) Generate(id models.Identity) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := Claims{
		UserID: id.UserID,
		Email:  id.Email,
		Name:   id.Name,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   id.UserID,
			Issuer:    Issuer,
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			IssuedAt:  jwtlib.NewNumericDate(now),
			NotBefore: jwtlib.NewNumericDate(now),
		},
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// Validate проверяет подпись, алгоритм, издателя и срок действия токена.
// Любая ошибка проверки оборачивает ErrInvalidToken.
func (s *Service) Validate(tokenString string) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(tokenString, &Claims{}, func(token *jwtlib.Token) (any, error) {
		// Проверяем что используется правильный алгоритм подписи
		if _, ok := token.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithIssuer(Issuer),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// UnverifiedExpiry читает exp без проверки подписи.
// Годится только для выбора срока хранения записи об отзыве, не для авторизации.
func (s *Service) UnverifiedExpiry(tokenString string) (time.Time, bool) {
	var claims Claims
	if _, _, err := jwtlib.NewParser().ParseUnverified(tokenString, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
