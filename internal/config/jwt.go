package config

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "wfc-server"

var ErrNoSigningKey = errors.New("no private key loaded")

// ClientClaims identify an API client allowed to write catalogs.
type ClientClaims struct {
	Client string `json:"client"`
	jwt.RegisteredClaims
}

type JWT struct {
	publicKey     *rsa.PublicKey
	privateKey    *rsa.PrivateKey
	signingMethod jwt.SigningMethod
	tokenLifetime time.Duration
}

func loadKey(name string) ([]byte, error) {
	if key, ok := os.LookupEnv(name); ok {
		return []byte(key), nil
	}
	path, ok := os.LookupEnv(name + "_FILE")
	if !ok {
		return nil, fmt.Errorf("no %s or %s_FILE env variable set", name, name)
	}
	key, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s_FILE: %w", name, err)
	}
	return key, nil
}

/*
NewJWT loads the verification key from JWT_PUBLIC_KEY or
JWT_PUBLIC_KEY_FILE. The private key is optional: without it the
returned JWT verifies tokens but cannot issue them.
*/
func NewJWT() (*JWT, error) {
	publicKeyBytes, err := loadKey("JWT_PUBLIC_KEY")
	if err != nil {
		return nil, err
	}
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("unable to parse JWT public key: %w", err)
	}

	var privateKey *rsa.PrivateKey
	if privateKeyBytes, err := loadKey("JWT_PRIVATE_KEY"); err == nil {
		privateKey, err = jwt.ParseRSAPrivateKeyFromPEM(privateKeyBytes)
		if err != nil {
			return nil, fmt.Errorf("unable to parse JWT private key: %w", err)
		}
	}

	return NewJWTFromKeys(publicKey, privateKey), nil
}

func NewJWTFromKeys(publicKey *rsa.PublicKey, privateKey *rsa.PrivateKey) *JWT {
	return &JWT{
		publicKey:     publicKey,
		privateKey:    privateKey,
		signingMethod: jwt.SigningMethodRS256,
		tokenLifetime: time.Hour * 24 * 30,
	}
}

func (j *JWT) CanSign() bool {
	return j.privateKey != nil
}

func (j *JWT) Sign(claims jwt.Claims) (string, error) {
	if j.privateKey == nil {
		return "", ErrNoSigningKey
	}
	return jwt.NewWithClaims(j.signingMethod, claims).SignedString(j.privateKey)
}

// IssueClientToken signs claims for client. A non-positive lifetime
// uses the default of 30 days.
func (j *JWT) IssueClientToken(client string, lifetime time.Duration) (string, error) {
	if lifetime <= 0 {
		lifetime = j.tokenLifetime
	}
	now := time.Now()
	return j.Sign(&ClientClaims{
		Client: client,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   client,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
	})
}

func (j *JWT) ParseClientClaims(tokenString string) (*ClientClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&ClientClaims{},
		func(t *jwt.Token) (interface{}, error) {
			return j.publicKey, nil
		},
		jwt.WithValidMethods([]string{j.signingMethod.Alg()}),
		jwt.WithIssuer(tokenIssuer),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*ClientClaims)
	if !ok {
		return nil, fmt.Errorf("malformed claims")
	}
	return claims, nil
}
