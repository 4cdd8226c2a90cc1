package server

import (
	"gurukul-backend/internal/admin"
	"gurukul-backend/internal/countries"
	"gurukul-backend/internal/db"
	"gurukul-backend/internal/forms"
	"gurukul-backend/internal/newsevents"
	"gurukul-backend/internal/resources"
	"gurukul-backend/internal/statistics"
	"gurukul-backend/internal/store"
	"gurukul-backend/internal/visas"

	"go.mongodb.org/mongo-driver/bson"
)

type Repositories struct {
	Countries        store.Repository[countries.Country]
	VisaRequirements store.Repository[visas.VisaRequirement]
	Resources        store.Repository[resources.Resource]
	NewsEvents       store.Repository[newsevents.NewsEvent]
	FormSubmissions  store.Repository[forms.Submission]
	Statistics       store.Repository[statistics.Statistic]
	AdminUsers       store.Repository[admin.User]
}

// MongoRepositories binds each feature to its collection with the list
// order that feature exposes.
func MongoRepositories(cols *db.Collections) Repositories {
	return Repositories{
		Countries:        store.NewMongoRepository[countries.Country](cols.Countries, bson.D{{Key: "name", Value: 1}}),
		VisaRequirements: store.NewMongoRepository[visas.VisaRequirement](cols.VisaRequirements, bson.D{{Key: "countryName", Value: 1}, {Key: "createdAt", Value: 1}}),
		Resources:        store.NewMongoRepository[resources.Resource](cols.Resources, bson.D{{Key: "createdAt", Value: -1}}),
		NewsEvents:       store.NewMongoRepository[newsevents.NewsEvent](cols.NewsEvents, bson.D{{Key: "date", Value: -1}}),
		FormSubmissions:  store.NewMongoRepository[forms.Submission](cols.FormSubmissions, bson.D{{Key: "createdAt", Value: -1}}),
		Statistics:       store.NewMongoRepository[statistics.Statistic](cols.Statistics, bson.D{{Key: "name", Value: 1}}),
		AdminUsers:       store.NewMongoRepository[admin.User](cols.AdminUsers, nil),
	}
}

// MemoryRepositories backs every feature with an in-process store.
func MemoryRepositories() Repositories {
	return Repositories{
		Countries:        store.NewMemoryRepository[countries.Country](),
		VisaRequirements: store.NewMemoryRepository[visas.VisaRequirement](),
		Resources:        store.NewMemoryRepository[resources.Resource](),
		NewsEvents:       store.NewMemoryRepository[newsevents.NewsEvent](),
		FormSubmissions:  store.NewMemoryRepository[forms.Submission](),
		Statistics:       store.NewMemoryRepository[statistics.Statistic](),
		AdminUsers:       store.NewMemoryRepository[admin.User](),
	}
}
