package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func newTestJWTService(t *testing.T) *JWTService {
	t.Helper()
	svc, err := NewJWTService(JWTConfig{
		Secret:     "test-secret-key-for-unit-tests",
		Issuer:     "kasva-test",
		Expiration: 15 * time.Minute,
	})
	require.NoError(t, err)
	return svc
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestJWTService(t)
	userID, tenantID := uuid.New(), uuid.New()

	token, err := svc.GenerateToken(userID, tenantID, []string{RoleCashier})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, tenantID, claims.TenantID)
	assert.True(t, claims.HasRole(RoleCashier))
	assert.False(t, claims.HasRole(RoleAdmin))
	assert.True(t, claims.HasAnyRole(RoleAdmin, RoleCashier))
}

func TestValidateToken_Rejects(t *testing.T) {
	svc := newTestJWTService(t)

	other, err := NewJWTService(JWTConfig{Secret: "another-secret", Issuer: "kasva-test"})
	require.NoError(t, err)
	foreign, err := other.GenerateToken(uuid.New(), uuid.New(), nil)
	require.NoError(t, err)

	wrongIssuer, err := NewJWTService(JWTConfig{Secret: "test-secret-key-for-unit-tests", Issuer: "someone-else"})
	require.NoError(t, err)
	misissued, err := wrongIssuer.GenerateToken(uuid.New(), uuid.New(), nil)
	require.NoError(t, err)

	expiredSvc, err := NewJWTService(JWTConfig{Secret: "test-secret-key-for-unit-tests", Issuer: "kasva-test", Expiration: -time.Minute})
	require.NoError(t, err)
	expired, err := expiredSvc.GenerateToken(uuid.New(), uuid.New(), nil)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":       "not.a.token",
		"bad signature": foreign,
		"wrong issuer":  misissued,
		"expired":       expired,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			assert.Error(t, err)
		})
	}
}

func TestNewJWTService_RequiresKey(t *testing.T) {
	_, err := NewJWTService(JWTConfig{})
	require.Error(t, err)

	_, err = NewJWTService(JWTConfig{PublicKeyPEM: "not pem"})
	require.Error(t, err)
}

func TestClaimsFromContext(t *testing.T) {
	_, ok := ClaimsFromContext(context.Background())
	assert.False(t, ok)

	claims := &Claims{UserID: uuid.New()}
	got, ok := ClaimsFromContext(ContextWithClaims(context.Background(), claims))
	require.True(t, ok)
	assert.Same(t, claims, got)
}

func TestUnaryAuthInterceptor(t *testing.T) {
	svc := newTestJWTService(t)
	interceptor := UnaryAuthInterceptor(svc, []string{"/grpc.health.v1.Health/Check"})
	token, err := svc.GenerateToken(uuid.New(), uuid.New(), []string{RoleAdmin})
	require.NoError(t, err)

	var seen *Claims
	handler := func(ctx context.Context, _ any) (any, error) {
		seen, _ = ClaimsFromContext(ctx)
		return "ok", nil
	}
	info := func(m string) *grpc.UnaryServerInfo { return &grpc.UnaryServerInfo{FullMethod: m} }

	t.Run("skipped method", func(t *testing.T) {
		_, err := interceptor(context.Background(), nil, info("/grpc.health.v1.Health/Check"), handler)
		require.NoError(t, err)
	})

	t.Run("missing header", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.MD{})
		_, err := interceptor(ctx, nil, info("/x/Y"), handler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("valid bearer", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+token))
		_, err := interceptor(ctx, nil, info("/x/Y"), handler)
		require.NoError(t, err)
		require.NotNil(t, seen)
		assert.True(t, seen.HasRole(RoleAdmin))
	})
}

func TestHTTPMiddleware(t *testing.T) {
	svc := newTestJWTService(t)
	token, err := svc.GenerateToken(uuid.New(), uuid.New(), nil)
	require.NoError(t, err)

	h := HTTPMiddleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := ClaimsFromContext(r.Context())
		assert.True(t, ok)
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
