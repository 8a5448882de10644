package jwt

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"github.com/golang-jwt/jwt/v5"
	"time"
)

const purposeRecovery = "password_recovery"

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

type JWT struct {
	key []byte
	now func() time.Time
}

// Recovery is the content of a password recovery token.
type Recovery struct {
	ProfileID   string
	Fingerprint string // binds the token to the password hash it was issued against
	Expires     int64  // Unix second
}

type recoveryClaims struct {
	Purpose     string `json:"purpose"`
	Fingerprint string `json:"fp"`
	jwt.RegisteredClaims
}

func New(key string) (*JWT, error) {
	if len(key) == 0 {
		return nil, errors.New("key is empty")
	}

	return &JWT{key: []byte(key), now: time.Now}, nil
}

// Fingerprint derives a short, non-reversible marker of a password hash.
func Fingerprint(passwordHash string) string {
	sum := sha256.Sum256([]byte(passwordHash))
	return hex.EncodeToString(sum[:8])
}

func (j *JWT) SignRecovery(r *Recovery) (string, error) {
	claims := recoveryClaims{
		Purpose:     purposeRecovery,
		Fingerprint: r.Fingerprint,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   r.ProfileID,
			IssuedAt:  jwt.NewNumericDate(j.now()),
			ExpiresAt: jwt.NewNumericDate(time.Unix(r.Expires, 0)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(j.key)
}

func (j *JWT) ParseRecovery(tokenString string) (*Recovery, error) {
	if len(tokenString) == 0 {
		return nil, ErrTokenInvalid
	}

	var claims recoveryClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return j.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(j.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !token.Valid || claims.Purpose != purposeRecovery || claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, ErrTokenInvalid
	}

	return &Recovery{
		ProfileID:   claims.Subject,
		Fingerprint: claims.Fingerprint,
		Expires:     claims.ExpiresAt.Unix(),
	}, nil
}
