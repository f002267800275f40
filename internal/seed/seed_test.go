package seed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Marga-Ghale/ora-crm-backend/internal/repository"
	"github.com/Marga-Ghale/ora-crm-backend/internal/repository/memory"
)

func TestSeedData_PopulatesOnceOnly(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repositories()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, SeedData(ctx, repos, now))
	require.NoError(t, SeedData(ctx, repos, now))

	users, err := repos.UserRepo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, users)

	admin, err := repos.UserRepo.FindByEmail(ctx, "marga.ghale@oratechnologies.io")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(DemoPassword)))

	customers, err := repos.CustomerRepo.Count(ctx, admin.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, customers)

	leads, err := repos.LeadRepo.Count(ctx, admin.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, leads)

	overdue, err := repos.TaskRepo.FindOverdue(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, "Send revised proposal", overdue[0].Title)

	tasks, err := repos.TaskRepo.Count(ctx, repository.TaskFilter{Owner: admin.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 3, tasks)
}
