package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Marga-Ghale/ora-crm-backend/internal/types"
)

func TestRegister_HashesPasswordAndDefaultsRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.svc.Auth.Register(ctx, RegisterInput{Email: "  Ana@Example.COM ", Password: "secret123", Name: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.Equal(t, types.RoleSales, u.Role)
	assert.NotEqual(t, "secret123", u.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("secret123")))

	cost, err := bcrypt.Cost([]byte(u.Password))
	require.NoError(t, err)
	assert.Equal(t, 10, cost)
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Auth.Register(ctx, RegisterInput{Email: "a@b.test", Password: "secret123"})
	requireValidation(t, err, "name")

	_, err = f.svc.Auth.Register(ctx, RegisterInput{Email: "not-an-email", Password: "secret123", Name: "A"})
	requireValidation(t, err, "email")

	_, err = f.svc.Auth.Register(ctx, RegisterInput{Email: "a@b.test", Password: "123", Name: "A"})
	requireValidation(t, err, "password")

	_, err = f.svc.Auth.Register(ctx, RegisterInput{Email: "a@b.test", Password: "secret123", Name: "A", Role: "root"})
	requireValidation(t, err, "role")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.user(t, "dup@crm.test")

	_, err := f.svc.Auth.Register(context.Background(), RegisterInput{Email: "DUP@crm.test", Password: "secret123", Name: "Again"})
	requireValidation(t, err, "email")
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.user(t, "rep@crm.test")

	_, _, err := f.svc.Auth.Login(ctx, "rep@crm.test", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = f.svc.Auth.Login(ctx, "nobody@crm.test", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	token, user, err := f.svc.Auth.Login(ctx, "Rep@CRM.test", "secret123")
	require.NoError(t, err)
	assert.Equal(t, userID, user.ID.Hex())

	claims, err := f.svc.Auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.Subject)
	assert.Equal(t, userID, claims.ID)
	assert.Equal(t, types.RoleSales, claims.Role)
	assert.WithinDuration(t, claims.IssuedAt.Add(24*time.Hour), claims.ExpiresAt.Time, time.Second)
}

func TestValidateToken_Rejects(t *testing.T) {
	f := newFixture(t)
	f.user(t, "rep@crm.test")
	token, _, err := f.svc.Auth.Login(context.Background(), "rep@crm.test", "secret123")
	require.NoError(t, err)

	_, err = f.svc.Auth.ValidateToken(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	auth := f.svc.Auth.(*authService)
	auth.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
	_, err = auth.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	auth.now = time.Now

	other := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		Role:             types.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "x", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	signed, err := other.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = auth.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Role: types.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{Subject: "x"}})
	signed, err = noExp.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = auth.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.user(t, "rep@crm.test")

	name, password := "Renamed", "newsecret"
	u, err := f.svc.Auth.UpdateProfile(ctx, userID, ProfileInput{Name: &name, Password: &password})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", u.Name)

	_, _, err = f.svc.Auth.Login(ctx, "rep@crm.test", "newsecret")
	require.NoError(t, err)

	short := "abc"
	_, err = f.svc.Auth.UpdateProfile(ctx, userID, ProfileInput{Password: &short})
	requireValidation(t, err, "password")

	blank := "  "
	_, err = f.svc.Auth.UpdateProfile(ctx, userID, ProfileInput{Name: &blank})
	requireValidation(t, err, "name")
}

func TestUpdateProfile_NameChangeDropsCachedStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.user(t, "rep@crm.test")
	f.task(t, userID, "Call back", "2026-06-16")
	key := statsCachePrefix + userID

	_, err := f.svc.Dashboard.Stats(ctx, userID)
	require.NoError(t, err)
	require.True(t, f.cache.has(key))

	name := "Renamed"
	_, err = f.svc.Auth.UpdateProfile(ctx, userID, ProfileInput{Name: &name})
	require.NoError(t, err)
	assert.False(t, f.cache.has(key))

	stats, err := f.svc.Dashboard.Stats(ctx, userID)
	require.NoError(t, err)
	require.Len(t, stats.RecentActivities.Tasks, 1)
	assert.Equal(t, "Renamed", stats.RecentActivities.Tasks[0].AssignedTo.Name)
}
