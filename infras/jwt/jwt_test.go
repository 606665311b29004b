package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafebook/config"
	"cafebook/infras/jwt"
)

func newService(secret string, expireMin int) jwt.JWT {
	cfg := &config.Config{}
	cfg.App.Name = "cafebook"
	cfg.JWT.AccessSecret = secret
	cfg.JWT.AccessExpireMin = expireMin

	return jwt.New(cfg)
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newService("secret", 60)

	token, err := svc.GenerateAccessToken("1234567890", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.Equal(t, int64(3600), token.ExpiresIn)

	claims, err := svc.ValidateToken(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "1234567890", claims.UserID)
	assert.Equal(t, "Alice", claims.Name)
	assert.NotEmpty(t, claims.TokenID)
}

func TestValidateToken_Errors(t *testing.T) {
	signed, err := newService("secret", 60).GenerateAccessToken("u1", "")
	require.NoError(t, err)

	expired, err := newService("secret", -5).GenerateAccessToken("u1", "")
	require.NoError(t, err)

	tests := []struct {
		name    string
		secret  string
		token   string
		wantErr error
	}{
		{name: "wrong secret", secret: "other", token: signed.AccessToken, wantErr: jwt.ErrInvalidToken},
		{name: "garbage", secret: "secret", token: "not.a.token", wantErr: jwt.ErrInvalidToken},
		{name: "expired", secret: "secret", token: expired.AccessToken, wantErr: jwt.ErrExpiredToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newService(tt.secret, 60).ValidateToken(tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGenerateAccessToken_Rejects(t *testing.T) {
	_, err := newService("secret", 60).GenerateAccessToken("", "Alice")
	assert.ErrorIs(t, err, jwt.ErrInvalidClaim)

	_, err = newService("", 60).GenerateAccessToken("u1", "Alice")
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "bearer", header: "Bearer abc.def", want: "abc.def"},
		{name: "empty", header: "", wantErr: true},
		{name: "basic", header: "Basic abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := jwt.ExtractTokenFromHeader(tt.header)
			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
