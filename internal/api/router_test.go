package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marga-Ghale/ora-crm-backend/internal/config"
	"github.com/Marga-Ghale/ora-crm-backend/internal/models"
	"github.com/Marga-Ghale/ora-crm-backend/internal/repository/memory"
	"github.com/Marga-Ghale/ora-crm-backend/internal/service"
	"github.com/Marga-Ghale/ora-crm-backend/internal/socket"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type testAPI struct {
	t      *testing.T
	router *gin.Engine
}

func newTestAPI(t *testing.T, database Pinger) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		JWTSecret:    "router-test-secret",
		JWTExpiry:    24,
		CORSOrigins:  []string{"*"},
		DeleteRoles:  []string{"admin"},
		MaxBodyBytes: 1 << 16,
		Location:     time.UTC,
	}
	services := service.NewServices(&service.ServiceDeps{
		Config: cfg,
		Repos:  memory.NewStore().Repositories(),
	})
	return &testAPI{t: t, router: NewRouter(RouterDeps{
		Config:   cfg,
		Services: services,
		Hub:      socket.NewHub(),
		Database: database,
	})}
}

func (a *testAPI) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// login registers the user and returns a token.
func (a *testAPI) login(email, role string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"email": email, "password": "secret123", "name": "User " + email, "role": role,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": "secret123"})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	return decode[models.LoginResponse](a.t, w).Token
}

func TestAuthRoutes(t *testing.T) {
	a := newTestAPI(t, stubPinger{})

	w := a.do(http.MethodPost, "/api/auth/register", "", gin.H{"email": "a@crm.test", "password": "secret123", "name": "Ann"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "User registered", decode[models.MessageResponse](t, w).Message)

	w = a.do(http.MethodPost, "/api/auth/register", "", gin.H{"email": "a@crm.test", "password": "secret123", "name": "Ann"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodPost, "/api/auth/register", "", gin.H{"email": "b@crm.test"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email, password, and name are required", decode[models.ErrorResponse](t, w).Error)

	w = a.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "a@crm.test", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", decode[models.ErrorResponse](t, w).Error)

	w = a.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "A@crm.test", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code)
	login := decode[models.LoginResponse](t, w)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, "sales", login.User.Role)
	assert.NotContains(t, w.Body.String(), "password")

	w = a.do(http.MethodGet, "/api/auth/profile", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, login.User.ID, decode[models.UserResponse](t, w).ID)

	w = a.do(http.MethodPut, "/api/auth/profile", login.Token, gin.H{"name": "Annie"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Annie", decode[models.UserResponse](t, w).Name)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	a := newTestAPI(t, stubPinger{})

	w := a.do(http.MethodGet, "/api/customers", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Authentication required", decode[models.ErrorResponse](t, w).Error)

	w = a.do(http.MethodGet, "/api/customers", "not.a.jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid token", decode[models.ErrorResponse](t, w).Error)
}

func TestCustomerRoutes(t *testing.T) {
	a := newTestAPI(t, stubPinger{})
	ann := a.login("ann@crm.test", "sales")
	bob := a.login("bob@crm.test", "admin")

	w := a.do(http.MethodPost, "/api/customers", ann, gin.H{"name": "Acme", "email": "ops@acme.test", "company": "Acme"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.CustomerResponse](t, w)
	assert.Len(t, created.ID, 24)
	require.NotNil(t, created.CreatedBy)
	assert.Equal(t, "User ann@crm.test", created.CreatedBy.Name)

	w = a.do(http.MethodPost, "/api/customers", ann, gin.H{"name": "No mail"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email", decode[models.ErrorResponse](t, w).Details[0].Field)

	w = a.do(http.MethodGet, "/api/customers?q=acme", ann, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.CustomerResponse](t, w), 1)

	w = a.do(http.MethodGet, "/api/customers/"+created.ID, bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Customer not found", decode[models.ErrorResponse](t, w).Error)

	w = a.do(http.MethodGet, "/api/customers/garbage", ann, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodPost, "/api/customers/"+created.ID+"/interactions", ann, gin.H{"type": "call", "notes": "intro"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[models.CustomerResponse](t, w).Interactions, 1)

	w = a.do(http.MethodPut, "/api/customers/"+created.ID, ann, gin.H{"phone": "555-0100", "createdBy": "000000000000000000000000"})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[models.CustomerResponse](t, w)
	assert.Equal(t, "555-0100", updated.Phone)
	assert.Equal(t, created.CreatedBy.ID, updated.CreatedBy.ID)

	// DELETE is limited to admins in this configuration.
	w = a.do(http.MethodDelete, "/api/customers/"+created.ID, ann, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(http.MethodDelete, "/api/customers/"+created.ID, bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLeadAndTaskRoutes(t *testing.T) {
	a := newTestAPI(t, stubPinger{})
	boss := a.login("boss@crm.test", "admin")

	w := a.do(http.MethodPost, "/api/customers", boss, gin.H{"name": "Acme", "email": "ops@acme.test"})
	require.Equal(t, http.StatusCreated, w.Code)
	customerID := decode[models.CustomerResponse](t, w).ID

	w = a.do(http.MethodPost, "/api/leads", boss, gin.H{"customer": customerID, "title": "Big", "source": "Website", "value": -10})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodPost, "/api/leads", boss, gin.H{"customer": customerID, "title": "Big", "source": "Website", "value": 2500})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	lead := decode[models.LeadResponse](t, w)
	assert.Equal(t, "New", lead.Stage)
	require.NotNil(t, lead.Customer)
	assert.Equal(t, "ops@acme.test", lead.Customer.Email)

	w = a.do(http.MethodGet, "/api/leads?stage=Bogus", boss, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodGet, "/api/leads?sortBy=value&order=desc", boss, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.LeadResponse](t, w), 1)

	w = a.do(http.MethodPost, "/api/tasks", boss, gin.H{
		"title": "Follow up", "dueDate": "2030-01-02",
		"relatedTo": gin.H{"type": "lead", "id": lead.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	task := decode[models.TaskResponse](t, w)
	assert.Equal(t, "Lead", task.RelatedToModel)
	require.NotNil(t, task.RelatedTo)
	assert.Equal(t, "lead", task.RelatedTo.Type)
	assert.Equal(t, "Big", task.RelatedTo.Title)
	assert.Equal(t, "Not Started", task.Status)

	w = a.do(http.MethodPut, "/api/tasks/"+task.ID, boss, gin.H{"relatedTo": gin.H{"type": "none"}})
	require.Equal(t, http.StatusOK, w.Code)
	cleared := decode[models.TaskResponse](t, w)
	assert.Nil(t, cleared.RelatedTo)
	assert.Empty(t, cleared.RelatedToModel)

	w = a.do(http.MethodGet, "/api/tasks?dueDate=upcoming", boss, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.TaskResponse](t, w), 1)

	w = a.do(http.MethodGet, "/api/dashboard/stats", boss, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[models.DashboardStatsResponse](t, w)
	assert.Equal(t, models.DashboardCounts{Customers: 1, Leads: 1, Tasks: 1}, stats.Counts)
	require.Len(t, stats.LeadsByStage, 1)
	assert.Equal(t, 2500.0, stats.LeadsByStage[0].Value)

	w = a.do(http.MethodGet, "/api/dashboard/lead-performance", boss, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.DailyPerformance](t, w), 1)

	w = a.do(http.MethodDelete, "/api/tasks/"+task.ID, boss, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = a.do(http.MethodDelete, "/api/tasks/"+task.ID, boss, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Task not found", decode[models.ErrorResponse](t, w).Error)
}

func TestTaskRelatedToRoundTrip(t *testing.T) {
	a := newTestAPI(t, stubPinger{})
	token := a.login("ann@crm.test", "")

	w := a.do(http.MethodPost, "/api/customers", token, gin.H{"name": "Acme", "email": "ops@acme.test"})
	require.Equal(t, http.StatusCreated, w.Code)
	customerID := decode[models.CustomerResponse](t, w).ID

	w = a.do(http.MethodPost, "/api/tasks", token, gin.H{
		"title": "Call Acme", "dueDate": "2030-01-02",
		"relatedTo": gin.H{"type": "customer", "id": customerID},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	taskID := decode[models.TaskResponse](t, w).ID

	w = a.do(http.MethodGet, "/api/tasks/"+taskID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	raw := decode[map[string]interface{}](t, w)
	related, ok := raw["relatedTo"].(map[string]interface{})
	require.True(t, ok, w.Body.String())
	assert.Equal(t, "customer", related["type"])
	assert.Equal(t, customerID, related["id"])
	assert.Equal(t, customerID, related["_id"])
	assert.Equal(t, "Acme", related["name"])

	w = a.do(http.MethodPut, "/api/tasks/"+taskID, token, gin.H{"title": "Call Acme again", "relatedTo": related})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.TaskResponse](t, w)
	assert.Equal(t, "Call Acme again", updated.Title)
	assert.Equal(t, "Customer", updated.RelatedToModel)
	require.NotNil(t, updated.RelatedTo)
	assert.Equal(t, customerID, updated.RelatedTo.ID)
}

func TestDashboardGroupKeys(t *testing.T) {
	a := newTestAPI(t, stubPinger{})
	token := a.login("ann@crm.test", "")

	w := a.do(http.MethodPost, "/api/customers", token, gin.H{"name": "Acme", "email": "ops@acme.test"})
	require.Equal(t, http.StatusCreated, w.Code)
	customerID := decode[models.CustomerResponse](t, w).ID
	w = a.do(http.MethodPost, "/api/leads", token, gin.H{"customer": customerID, "title": "Big", "source": "Website", "stage": "Qualified", "value": 10})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodGet, "/api/dashboard/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[models.DashboardStatsResponse](t, w)
	require.Len(t, stats.LeadsByStage, 1)
	assert.Equal(t, "Qualified", stats.LeadsByStage[0].Key)
	assert.Equal(t, "Qualified", stats.LeadsByStage[0].Stage)

	w = a.do(http.MethodGet, "/api/dashboard/lead-performance", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	days := decode[[]models.DailyPerformance](t, w)
	require.Len(t, days, 1)
	assert.NotEmpty(t, days[0].Key)
	assert.Equal(t, days[0].Date, days[0].Key)
}

func TestMalformedBody(t *testing.T) {
	a := newTestAPI(t, stubPinger{})
	token := a.login("ann@crm.test", "")

	req := httptest.NewRequest(http.MethodPost, "/api/customers", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndFallbacks(t *testing.T) {
	a := newTestAPI(t, stubPinger{})

	w := a.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]interface{}](t, w)
	assert.Equal(t, "connected", body["database"])
	assert.Equal(t, "disabled", body["cache"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = a.do(http.MethodGet, "/api/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Route not found", decode[models.ErrorResponse](t, w).Error)

	down := newTestAPI(t, stubPinger{err: errors.New("no route to host")})
	w = down.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
