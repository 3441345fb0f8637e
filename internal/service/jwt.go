package service

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

const (
	participantIdKey = "participant_id"
	instanceIdKey    = "instance_id"
	identityKey      = "identity"
	expiresAtKey     = "exp"
)

type Claims struct {
	ParticipantId string
	InstanceId    string
	Identity      string
}

func (s service) generateJWT(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		participantIdKey: claims.ParticipantId,
		instanceIdKey:    claims.InstanceId,
		identityKey:      claims.Identity,
		expiresAtKey:     s.now().Add(s.instanceExp).Unix(),
	})

	return token.SignedString(s.secret)
}

func (s service) parseJWT(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	participantId, ok := claims[participantIdKey].(string)
	if !ok {
		return nil, ErrInvalidToken
	}

	instanceId, ok := claims[instanceIdKey].(string)
	if !ok {
		return nil, ErrInvalidToken
	}

	identity, ok := claims[identityKey].(string)
	if !ok {
		return nil, ErrInvalidToken
	}

	return &Claims{
		ParticipantId: participantId,
		InstanceId:    instanceId,
		Identity:      identity,
	}, nil
}
