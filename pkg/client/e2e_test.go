package client_test

import (
	"context"
	"net/http/httptest"
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
	"github.com/Marga-Ghale/ora-crm-backend/pkg/client"
)

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		JWTSecret:    "client-test-secret",
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

func TestClient_EndToEnd(t *testing.T) {
	ctx := context.Background()
	c := client.New(newServer(t).URL)

	require.NoError(t, c.Register(ctx, client.RegisterRequest{Email: "ann@crm.test", Password: "secret123", Name: "Ann"}))
	login, err := c.Login(ctx, "ann@crm.test", "secret123")
	require.NoError(t, err)
	assert.Equal(t, login.Token, c.Token())

	me, err := c.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ann", me.Name)

	name := "Ann B"
	me, err = c.UpdateProfile(ctx, client.ProfileUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ann B", me.Name)

	cust, err := c.CreateCustomer(ctx, client.CustomerRequest{Name: "Acme", Email: "ops@acme.test", Company: "Acme"})
	require.NoError(t, err)
	cust, err = c.AddInteraction(ctx, cust.ID, client.InteractionRequest{Type: "call", Notes: "intro"})
	require.NoError(t, err)
	require.Len(t, cust.Interactions, 1)

	customers, err := c.ListCustomers(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, customers, 1)

	lead, err := c.CreateLead(ctx, client.LeadRequest{Customer: cust.ID, Title: "Renewal", Source: "Referral", Value: 1200})
	require.NoError(t, err)
	assert.Equal(t, "New", lead.Stage)
	require.NotNil(t, lead.Customer)
	assert.Equal(t, "Acme", lead.Customer.Name)

	stage := "Won"
	lead, err = c.UpdateLead(ctx, lead.ID, client.LeadPatch{Stage: &stage})
	require.NoError(t, err)
	assert.Equal(t, "Won", lead.Stage)

	leads, err := c.ListLeads(ctx, client.LeadQuery{Stage: "Won"})
	require.NoError(t, err)
	assert.Len(t, leads, 1)

	task, err := c.CreateTask(ctx, client.TaskRequest{
		Title:     "Send contract",
		DueDate:   time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339),
		Priority:  "High",
		RelatedTo: &client.RelatedInput{Type: "lead", ID: lead.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "Lead", task.RelatedToModel)
	require.NotNil(t, task.RelatedTo)
	assert.Equal(t, "Renewal", task.RelatedTo.Title)

	status := "Completed"
	task, err = c.UpdateTask(ctx, task.ID, client.TaskPatch{Status: &status, RelatedTo: &client.RelatedInput{Type: "none"}})
	require.NoError(t, err)
	assert.Equal(t, "Completed", task.Status)
	assert.Nil(t, task.RelatedTo)

	tasks, err := c.ListTasks(ctx, client.TaskQuery{Status: "Completed"})
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	stats, err := c.DashboardStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Counts.Customers)
	assert.EqualValues(t, 1, stats.Counts.Leads)

	perf, err := c.LeadPerformance(ctx)
	require.NoError(t, err)
	assert.NotNil(t, perf)

	require.NoError(t, c.DeleteTask(ctx, task.ID))
	_, err = c.GetTask(ctx, task.ID)
	assert.True(t, client.IsNotFound(err))

	require.NoError(t, c.DeleteLead(ctx, lead.ID))
	require.NoError(t, c.DeleteCustomer(ctx, cust.ID))
	_, err = c.GetCustomer(ctx, cust.ID)
	assert.True(t, client.IsNotFound(err))
}

func TestClient_LoginFailure(t *testing.T) {
	c := client.New(newServer(t).URL)
	_, err := c.Login(context.Background(), "ghost@crm.test", "whatever1")
	assert.True(t, client.IsUnauthorized(err))
	assert.Empty(t, c.Token())
}
