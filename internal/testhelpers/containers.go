// Package testhelpers starts disposable MongoDB and Redis containers for
// integration tests.
package testhelpers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	mongoImage = "mongo:7"
	redisImage = "redis:7-alpine"
)

// StartMongo runs a single MongoDB server and returns its connection URI.
// The test is skipped in short mode or when Docker is unavailable.
func StartMongo(t *testing.T) string {
	t.Helper()
	endpoint := start(t, mongoImage, "27017/tcp", wait.ForListeningPort("27017/tcp").WithStartupTimeout(90*time.Second))
	return "mongodb://" + endpoint
}

// StartRedis runs a Redis server and returns a redis:// URL for it.
func StartRedis(t *testing.T) string {
	t.Helper()
	endpoint := start(t, redisImage, "6379/tcp", wait.ForLog("Ready to accept connections").WithStartupTimeout(90*time.Second))
	return "redis://" + endpoint + "/0"
}

func start(t *testing.T, image, port string, strategy wait.Strategy) string {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{port},
			WaitingFor:   strategy,
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start %s: %v", image, err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate %s: %v", image, err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	mapped, err := container.MappedPort(ctx, nat.Port(port))
	if err != nil {
		t.Fatalf("failed to get mapped port: %v", err)
	}
	return fmt.Sprintf("%s:%s", host, mapped.Port())
}
