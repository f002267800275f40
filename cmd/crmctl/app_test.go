package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marga-Ghale/ora-crm-backend/internal/api"
	"github.com/Marga-Ghale/ora-crm-backend/internal/config"
	"github.com/Marga-Ghale/ora-crm-backend/internal/repository/memory"
	"github.com/Marga-Ghale/ora-crm-backend/internal/service"
	"github.com/Marga-Ghale/ora-crm-backend/internal/socket"
)

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		JWTSecret:    "crmctl-test-secret",
		JWTExpiry:    24,
		CORSOrigins:  []string{"*"},
		DeleteRoles:  []string{"admin", "sales"},
		MaxBodyBytes: 1 << 16,
		Location:     time.UTC,
	}
	services := service.NewServices(&service.ServiceDeps{
		Config: cfg,
		Repos:  memory.NewStore().Repositories(),
	})
	srv := httptest.NewServer(api.NewRouter(api.RouterDeps{
		Config:   cfg,
		Services: services,
		Hub:      socket.NewHub(),
		Database: okPinger{},
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRun_LoginAndManageCustomers(t *testing.T) {
	srv := newAPIServer(t)
	session := filepath.Join(t.TempDir(), "session.json")
	ctx := context.Background()

	crm := func(args ...string) (string, error) {
		var out bytes.Buffer
		err := run(ctx, append([]string{"--server", srv.URL, "--session", session}, args...), &out)
		return out.String(), err
	}

	_, err := crm("whoami")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")

	_, err = crm("register", "--email", "ann@crm.test", "--password", "secret123", "--name", "Ann")
	require.NoError(t, err)

	out, err := crm("login", "--email", "ann@crm.test", "--password", "secret123")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as Ann (sales)")

	out, err = crm("whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Ann <ann@crm.test>")

	_, err = crm("customers", "create", "--name", "Acme", "--email", "ops@acme.test", "--company", "Acme Corp")
	require.NoError(t, err)

	out, err = crm("customers", "list", "--q", "acme")
	require.NoError(t, err)
	assert.Contains(t, out, "Acme Corp")

	out, err = crm("dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Customers: 1")

	_, err = crm("leads", "bogus")
	assert.EqualError(t, err, "unknown leads action: bogus")

	out, err = crm("logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")
	_, statErr := os.Stat(session)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_UnauthorizedClearsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Invalid token"}`))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, NewSessionStore(path, time.Hour).Save(&Session{BaseURL: srv.URL, Token: "revoked"}))

	var out bytes.Buffer
	err := run(context.Background(), []string{"--session", path, "whoami"}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session rejected")

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestParseRelated(t *testing.T) {
	rel, err := parseRelated("lead:abc")
	require.NoError(t, err)
	assert.Equal(t, "lead", rel.Type)
	assert.Equal(t, "abc", rel.ID)

	rel, err = parseRelated("none")
	require.NoError(t, err)
	assert.Equal(t, "none", rel.Type)

	_, err = parseRelated("user:abc")
	assert.Error(t, err)
}

func TestRegistry_UnknownCommand(t *testing.T) {
	r := NewCommandRegistry()
	r.Register(&Command{Name: "noop", Run: func([]string) error { return nil }})

	assert.NoError(t, r.Execute([]string{"noop"}))
	assert.EqualError(t, r.Execute([]string{"nope"}), "unknown command: nope")
}
