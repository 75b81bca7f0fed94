package storefront

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"mobilehub/internal/localstore"
	"mobilehub/internal/models"
	"mobilehub/internal/services"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type authFixture struct {
	store     *localstore.MemoryStore
	session   *SessionStore
	directory *Directory
	auth      *AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	store := localstore.NewMemoryStore()
	session, err := NewSessionStore(store)
	require.NoError(t, err)
	directory, err := NewDirectory(store, bcrypt.MinCost)
	require.NoError(t, err)
	tokens := services.NewTokenService(testSecret, zerolog.Nop())
	return &authFixture{
		store:     store,
		session:   session,
		directory: directory,
		auth:      NewAuthService(directory, session, tokens, 0, zerolog.Nop()),
	}
}

func TestLogin_SeededAccounts(t *testing.T) {
	ctx := context.Background()
	tokens := services.NewTokenService(testSecret, zerolog.Nop())

	for _, acc := range seedAccounts {
		t.Run(acc.email, func(t *testing.T) {
			f := newAuthFixture(t)

			session, err := f.auth.Login(ctx, acc.email, acc.secret)
			require.NoError(t, err)

			current, ok := f.session.Current()
			require.True(t, ok)
			assert.Equal(t, acc.id, current.ID)
			assert.Equal(t, acc.email, current.Email)
			assert.Equal(t, acc.role, current.Role)
			assert.Equal(t, temporarySecretPattern.MatchString(acc.secret), current.IsTempPassword)
			assert.Equal(t, session.Token, current.Token)

			raw, ok, err := f.store.Get(sessionKey)
			require.NoError(t, err)
			require.True(t, ok)
			assert.NotContains(t, raw, acc.secret)
			assert.NotContains(t, raw, "passwordHash")

			claims, err := tokens.ValidateToken(current.Token)
			require.NoError(t, err)
			assert.Equal(t, acc.id, claims.UserID)
			assert.Equal(t, string(acc.role), claims.Role)
		})
	}
}

func TestLogin_EightCharacterSecretCountsAsTemporary(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	// admin123 was chosen, not generated, but matches the temporary pattern.
	session, err := f.auth.Login(ctx, "admin@mobilehub.com", "admin123")
	require.NoError(t, err)
	assert.True(t, session.IsTempPassword)

	require.NoError(t, f.auth.ChangeSecret(ctx, "admin123", "admin1234"))
	current, _ := f.session.Current()
	assert.False(t, current.IsTempPassword)

	session, err = f.auth.Login(ctx, "admin@mobilehub.com", "admin1234")
	require.NoError(t, err)
	assert.False(t, session.IsTempPassword)
}

func TestLogin_EmailMustMatchExactly(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	for _, email := range []string{"  user@mobilehub.com  ", "User@mobilehub.com", "user@mobilehub.com\n"} {
		_, err := f.auth.Login(ctx, email, "user123")
		assert.ErrorIs(t, err, ErrInvalidCredentials, email)
	}
	assert.False(t, f.auth.IsAuthenticated())

	session, err := f.auth.Signup(ctx, " user@mobilehub.com", "secret99")
	require.NoError(t, err)
	assert.Equal(t, " user@mobilehub.com", session.Email)
	assert.Equal(t, 3, f.directory.Len())
}

func TestSignup_LongSecret(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	secret := strings.Repeat("a", 73)

	_, err := f.auth.Signup(ctx, "long@mobilehub.com", secret)
	require.NoError(t, err)
	require.NoError(t, f.auth.Logout(ctx))

	_, err = f.auth.Login(ctx, "long@mobilehub.com", secret)
	require.NoError(t, err)
	_, err = f.auth.Login(ctx, "long@mobilehub.com", secret[:72])
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	longer := strings.Repeat("b", 200)
	require.NoError(t, f.auth.ChangeSecret(ctx, secret, longer))
	_, err = f.directory.Verify("long@mobilehub.com", longer)
	assert.NoError(t, err)
}

func TestLogin_MismatchLeavesSessionUnchanged(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	_, err := f.auth.Login(ctx, "user@mobilehub.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.False(t, f.auth.IsAuthenticated())

	_, err = f.auth.Login(ctx, "user@mobilehub.com", "user123")
	require.NoError(t, err)
	before, _ := f.session.Current()

	for _, creds := range [][2]string{
		{"user@mobilehub.com", "admin123"},
		{"nobody@mobilehub.com", "user123"},
		{"", ""},
	} {
		_, err = f.auth.Login(ctx, creds[0], creds[1])
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	after, ok := f.session.Current()
	require.True(t, ok)
	assert.Equal(t, before, after)
}

func TestSignup_DuplicateEmailDoesNotMutateDirectory(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	before, _, _ := f.store.Get(directoryKey)

	_, err := f.auth.Signup(ctx, "user@mobilehub.com", "another1")
	assert.ErrorIs(t, err, ErrEmailAlreadyRegistered)
	assert.False(t, f.auth.IsAuthenticated())

	after, _, _ := f.store.Get(directoryKey)
	assert.Equal(t, before, after)
	assert.Equal(t, 2, f.directory.Len())
}

func TestSignup_CreatesUserAndSession(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	session, err := f.auth.Signup(ctx, "new@mobilehub.com", "secret99")
	require.NoError(t, err)
	assert.Equal(t, 3, session.ID)
	assert.Equal(t, models.RoleUser, session.Role)
	assert.False(t, session.IsTempPassword)

	var stored []models.Identity
	raw, _, _ := f.store.Get(directoryKey)
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Len(t, stored, 3)

	require.NoError(t, f.auth.Logout(ctx))
	_, err = f.auth.Login(ctx, "new@mobilehub.com", "secret99")
	assert.NoError(t, err)
}

func TestLogout_RemovesPersistedSession(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	_, err := f.auth.Login(ctx, "admin@mobilehub.com", "admin123")
	require.NoError(t, err)
	require.NoError(t, f.auth.Logout(ctx))

	_, ok := f.session.Current()
	assert.False(t, ok)
	_, ok, err = f.store.Get(sessionKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, f.auth.Logout(ctx))
}

func TestResetSecret_TemporaryLogin(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	secret, err := f.auth.ResetSecret(ctx, "user@mobilehub.com")
	require.NoError(t, err)
	assert.Regexp(t, `^[a-zA-Z0-9]{8}$`, secret)

	_, err = f.auth.Login(ctx, "user@mobilehub.com", "user123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	session, err := f.auth.Login(ctx, "user@mobilehub.com", secret)
	require.NoError(t, err)
	assert.True(t, session.IsTempPassword)

	_, err = f.auth.ResetSecret(ctx, "ghost@mobilehub.com")
	assert.ErrorIs(t, err, ErrEmailNotFound)
}

func TestChangeSecret(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	assert.ErrorIs(t, f.auth.ChangeSecret(ctx, "user123", "newsecret"), ErrNoActiveSession)

	temp, err := f.auth.ResetSecret(ctx, "user@mobilehub.com")
	require.NoError(t, err)
	_, err = f.auth.Login(ctx, "user@mobilehub.com", temp)
	require.NoError(t, err)

	assert.ErrorIs(t, f.auth.ChangeSecret(ctx, "wrong", "newsecret"), ErrInvalidCredentials)

	require.NoError(t, f.auth.ChangeSecret(ctx, temp, "newsecret"))
	current, _ := f.session.Current()
	assert.False(t, current.IsTempPassword)

	_, err = f.directory.Verify("user@mobilehub.com", "newsecret")
	assert.NoError(t, err)
}

func TestValidateNewSecret(t *testing.T) {
	tests := []struct {
		name            string
		secret, confirm string
		want            error
	}{
		{"mismatch", "abcdef", "abcdeg", ErrSecretMismatch},
		{"too short", "abc", "abc", ErrSecretTooShort},
		{"ok", "abcdef", "abcdef", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNewSecret(tt.secret, tt.confirm)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuthLatency_HonoursContext(t *testing.T) {
	f := newAuthFixture(t)
	f.auth.latency = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.auth.Login(ctx, "user@mobilehub.com", "user123")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, f.auth.IsAuthenticated())
}

func TestSessionStore_DropsUnreadableValue(t *testing.T) {
	store := localstore.NewMemoryStore()
	require.NoError(t, store.Set(sessionKey, "{not json"))

	session, err := NewSessionStore(store)
	require.NoError(t, err)
	assert.False(t, session.Active())

	_, ok, _ := store.Get(sessionKey)
	assert.False(t, ok)
}
