package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken("5550001", time.Hour)
	req.NoError(err)
	req.NotEmpty(token)

	claims, err := ValidateToken(token)
	req.NoError(err)
	req.Equal("5550001", claims.Identity)
	req.Equal("chat-relay", claims.Issuer)
}

func TestValidateToken_Rejects_Garbage(t *testing.T) {
	req := require.New(t)

	_, err := ValidateToken("not.a.token")
	req.Error(err)
}

func TestValidateToken_Rejects_Expired(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken("5550001", -time.Minute)
	req.NoError(err)

	_, err = ValidateToken(token)
	req.Error(err)
}
