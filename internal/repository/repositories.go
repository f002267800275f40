package repository

import "go.mongodb.org/mongo-driver/v2/mongo"

type Repositories struct {
	UserRepo     UserRepository
	CustomerRepo CustomerRepository
	LeadRepo     LeadRepository
	TaskRepo     TaskRepository
}

func NewRepositories(db *mongo.Database) *Repositories {
	return &Repositories{
		UserRepo:     NewUserRepository(db),
		CustomerRepo: NewCustomerRepository(db),
		LeadRepo:     NewLeadRepository(db),
		TaskRepo:     NewTaskRepository(db),
	}
}
