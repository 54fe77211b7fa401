package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_SignVerify(t *testing.T) {
	cases := []struct {
		name string
		run  func(t *testing.T)
	}{
		{
			name: "round trip keeps the claims",
			run: func(t *testing.T) {
				s := NewService([]byte("k"))
				tok, err := s.Sign("u1", "Amy", true, time.Hour)
				require.NoError(t, err)

				c, err := s.Verify(tok)
				require.NoError(t, err)
				assert.Equal(t, "u1", c.UserID)
				assert.Equal(t, "Amy", c.DisplayName)
				assert.True(t, c.Guest)
			},
		},
		{
			name: "other secret is rejected",
			run: func(t *testing.T) {
				tok, err := NewService([]byte("a")).Sign("u1", "", false, time.Hour)
				require.NoError(t, err)
				_, err = NewService([]byte("b")).Verify(tok)
				assert.ErrorIs(t, err, jwt.ErrSignatureInvalid)
			},
		},
		{
			name: "expired token is rejected",
			run: func(t *testing.T) {
				s := NewService([]byte("k"))
				s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
				tok, err := s.Sign("u1", "", false, time.Hour)
				require.NoError(t, err)

				s.now = time.Now
				_, err = s.Verify(tok)
				assert.ErrorIs(t, err, jwt.ErrTokenExpired)
			},
		},
		{
			name: "none algorithm is rejected",
			run: func(t *testing.T) {
				tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u1"}).
					SignedString(jwt.UnsafeAllowNoneSignatureType)
				require.NoError(t, err)
				_, err = NewService([]byte("k")).Verify(tok)
				assert.Error(t, err)
			},
		},
		{
			name: "empty user id is refused",
			run: func(t *testing.T) {
				_, err := NewService([]byte("k")).Sign("", "", false, time.Hour)
				assert.Error(t, err)
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, c.run)
	}
}
