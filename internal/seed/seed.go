// internal/seed/seed.go
package seed

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"

	"github.com/Marga-Ghale/ora-crm-backend/internal/logger"
	"github.com/Marga-Ghale/ora-crm-backend/internal/repository"
	"github.com/Marga-Ghale/ora-crm-backend/internal/types"
)

// DemoPassword is the password of every seeded user.
const DemoPassword = "password123"

// SeedData fills an empty database with a small sales team and its pipeline.
// It does nothing when any user exists.
func SeedData(ctx context.Context, repos *repository.Repositories, now time.Time) error {
	users, err := repos.UserRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if users > 0 {
		logger.App().Info("[Seed] Data already exists, skipping...")
		return nil
	}

	logger.App().Info("[Seed] Creating demo data...")

	// ============================================
	// USERS
	// ============================================
	password, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), 10)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	marga := &repository.User{Email: "marga.ghale@oratechnologies.io", Password: string(password), Name: "Marga Ghale", Role: types.RoleAdmin}
	bipin := &repository.User{Email: "bipin.dhimal@oratechnologies.io", Password: string(password), Name: "Bipin Dhimal", Role: types.RoleSales}
	for _, u := range []*repository.User{marga, bipin} {
		if err := repos.UserRepo.Create(ctx, u); err != nil {
			return fmt.Errorf("failed to create user %s: %w", u.Email, err)
		}
	}

	// ============================================
	// CUSTOMERS
	// ============================================
	day := 24 * time.Hour
	customer := func(owner bson.ObjectID, name, email, company string, interactions ...repository.Interaction) (*repository.Customer, error) {
		c := &repository.Customer{
			Name:         name,
			Email:        email,
			Phone:        "+977-1-4000000",
			Company:      company,
			Interactions: interactions,
			CreatedBy:    owner,
		}
		if err := repos.CustomerRepo.Create(ctx, c); err != nil {
			return nil, fmt.Errorf("failed to create customer %s: %w", email, err)
		}
		return c, nil
	}
	interaction := func(kind string, ago time.Duration, notes string) repository.Interaction {
		return repository.Interaction{ID: bson.NewObjectID(), Type: kind, Date: now.Add(-ago).UTC(), Notes: notes}
	}

	himalaya, err := customer(marga.ID, "Himalaya Traders", "info@himalayatraders.com", "Himalaya Traders Pvt. Ltd.",
		interaction(types.InteractionCall, 10*day, "Intro call, interested in annual plan"),
		interaction(types.InteractionMeeting, 3*day, "Demo with procurement"),
	)
	if err != nil {
		return err
	}
	everest, err := customer(marga.ID, "Everest Logistics", "ops@everestlogistics.com", "Everest Logistics",
		interaction(types.InteractionEmail, 5*day, "Sent pricing sheet"),
	)
	if err != nil {
		return err
	}
	annapurna, err := customer(bipin.ID, "Annapurna Foods", "hello@annapurnafoods.com", "Annapurna Foods")
	if err != nil {
		return err
	}

	// ============================================
	// LEADS
	// ============================================
	type leadSeed struct {
		customer *repository.Customer
		title    string
		source   string
		stage    string
		value    float64
		age      time.Duration
	}
	leadSeeds := []leadSeed{
		{himalaya, "Annual subscription", types.SourceReferral, types.StageProposal, 12000, 12 * day},
		{himalaya, "Onboarding package", types.SourceWebsite, types.StageQualified, 2500, 6 * day},
		{everest, "Fleet tracking pilot", types.SourceColdCall, types.StageContacted, 4800, 4 * day},
		{everest, "Warehouse add-on", types.SourceEvent, types.StageWon, 7300.5, 20 * day},
		{annapurna, "POS integration", types.SourceSocialMedia, types.StageNew, 1500, 1 * day},
	}
	leads := make([]*repository.Lead, 0, len(leadSeeds))
	for _, s := range leadSeeds {
		l := &repository.Lead{
			Customer:   s.customer.ID,
			Title:      s.title,
			Source:     s.source,
			Stage:      s.stage,
			Value:      s.value,
			AssignedTo: s.customer.CreatedBy,
			CreatedAt:  now.Add(-s.age).UTC(),
		}
		if err := repos.LeadRepo.Create(ctx, l); err != nil {
			return fmt.Errorf("failed to create lead %q: %w", s.title, err)
		}
		leads = append(leads, l)
	}

	// ============================================
	// TASKS
	// ============================================
	tasks := []*repository.Task{
		{Title: "Send revised proposal", DueDate: now.Add(-2 * day).UTC(), Status: types.StatusInProgress, Priority: types.PriorityHigh,
			AssignedTo: marga.ID, Related: repository.RelatedRef{Model: types.ModelLead, ID: leads[0].ID}},
		{Title: "Schedule onboarding call", DueDate: now.UTC(), Status: types.StatusNotStarted, Priority: types.PriorityMedium,
			AssignedTo: marga.ID, Related: repository.RelatedRef{Model: types.ModelCustomer, ID: himalaya.ID}},
		{Title: "Quarterly pipeline review", DueDate: now.Add(5 * day).UTC(), Status: types.StatusNotStarted, Priority: types.PriorityLow,
			AssignedTo: marga.ID},
		{Title: "Collect menu requirements", DueDate: now.Add(2 * day).UTC(), Status: types.StatusNotStarted, Priority: types.PriorityMedium,
			AssignedTo: bipin.ID, Related: repository.RelatedRef{Model: types.ModelLead, ID: leads[4].ID}},
	}
	for _, t := range tasks {
		if err := repos.TaskRepo.Create(ctx, t); err != nil {
			return fmt.Errorf("failed to create task %q: %w", t.Title, err)
		}
	}

	logger.App().Infof("[Seed] Created 2 users, 3 customers, %d leads, %d tasks", len(leads), len(tasks))
	return nil
}
