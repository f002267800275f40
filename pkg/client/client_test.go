package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_SendsBearerAndQuery(t *testing.T) {
	var gotAuth, gotQuery, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", WithToken("tok"))
	leads, err := c.ListLeads(context.Background(), LeadQuery{Stage: "Won", SortBy: "value", Order: "desc"})
	require.NoError(t, err)
	assert.Empty(t, leads)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "/api/leads", gotPath)
	assert.Equal(t, "order=desc&sortBy=value&stage=Won", gotQuery)
}

func TestDo_DecodesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error":   "Validation failed",
			"details": []map[string]string{{"field": "email", "message": "must be a valid email"}},
		})
	}))
	defer srv.Close()

	_, err := New(srv.URL).CreateCustomer(context.Background(), CustomerRequest{Name: "x", Email: "bad"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Validation failed", apiErr.Message)
	require.Len(t, apiErr.Details, 1)
	assert.Equal(t, "email", apiErr.Details[0].Field)
}

func TestDo_NonJSONErrorFallsBackToStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := New(srv.URL).DeleteTask(context.Background(), "abc")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestDo_UnauthorizedClearsTokenAndCallsHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Invalid token"}`))
	}))
	defer srv.Close()

	called := 0
	c := New(srv.URL, WithToken("stale"), OnUnauthorized(func() { called++ }))
	_, err := c.Profile(context.Background())

	assert.True(t, IsUnauthorized(err))
	assert.False(t, IsNotFound(err))
	assert.Equal(t, 1, called)
	assert.Empty(t, c.Token())
}
