package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appErrors "sudooom.boba/pkg/errors"
)

const issuer = "boba-host"

// SeatClaims 座位凭证：把远程玩家绑定到 (对局, 座位)
type SeatClaims struct {
	GameID   string `json:"game_id"`
	PlayerID int    `json:"player_id"`
	Name     string `json:"name"`
	jwt.RegisteredClaims
}

// Service 座位凭证签发与校验
type Service struct {
	secretKey []byte
	expire    time.Duration
	now       func() time.Time
}

// NewService 创建服务
func NewService(secretKey string, expire time.Duration) *Service {
	return &Service{
		secretKey: []byte(secretKey),
		expire:    expire,
		now:       time.Now,
	}
}

// Issue 签发座位凭证
func (s *Service) Issue(gameID string, playerID int, name string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.expire)

	claims := &SeatClaims{
		GameID:   gameID,
		PlayerID: playerID,
		Name:     name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   name,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Validate 校验凭证并返回声明
func (s *Service) Validate(tokenString string) (*SeatClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SeatClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, appErrors.ErrTokenInvalid
		}
		return s.secretKey, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, appErrors.ErrTokenExpired
		}
		return nil, appErrors.ErrTokenInvalid.Wrap(err)
	}

	claims, ok := token.Claims.(*SeatClaims)
	if !ok || !token.Valid || claims.GameID == "" || claims.PlayerID < 0 {
		return nil, appErrors.ErrTokenInvalid
	}
	return claims, nil
}

// ValidateFor 校验凭证属于指定对局
func (s *Service) ValidateFor(tokenString, gameID string) (*SeatClaims, error) {
	claims, err := s.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.GameID != gameID {
		return nil, appErrors.ErrSeatMismatch
	}
	return claims, nil
}
