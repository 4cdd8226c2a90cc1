package main

import (
	"context"
	"log"
	"time"

	"gurukul-backend/internal/admin"
	"gurukul-backend/internal/cache"
	"gurukul-backend/internal/config"
	"gurukul-backend/internal/db"
	"gurukul-backend/internal/server"
	"gurukul-backend/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type seedCountry struct {
	Name        string
	Description string
	Highlights  []string
	IsPopular   bool
}

var defaultStatistics = []string{"students", "universities", "countries", "visa_success"}

var starterCountries = []seedCountry{
	{
		Name:        "Australia",
		Description: "World-ranked universities with post-study work rights.",
		Highlights:  []string{"Post-study work visa", "Part-time work during study"},
		IsPopular:   true,
	},
	{
		Name:        "Japan",
		Description: "Language schools and vocational pathways into Japanese industry.",
		Highlights:  []string{"Language school intakes four times a year", "Specified skilled worker route"},
		IsPopular:   true,
	},
	{
		Name:        "United Kingdom",
		Description: "One-year master's programmes and the Graduate route.",
		Highlights:  []string{"Graduate route", "One-year master's"},
		IsPopular:   true,
	},
	{
		Name:        "Canada",
		Description: "College and university programmes with PGWP eligibility.",
		Highlights:  []string{"Post-graduation work permit"},
	},
	{
		Name:        "New Zealand",
		Description: "Practical programmes with a straightforward visa process.",
		Highlights:  []string{"Post-study work visa"},
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		log.Fatal(err)
	}

	now := time.Now().In(cfg.Timezone)

	// Existing counts are never overwritten.
	for _, name := range defaultStatistics {
		update := bson.M{
			"$setOnInsert": bson.M{
				"_id":       primitive.NewObjectID().Hex(),
				"name":      name,
				"count":     int64(0),
				"updatedAt": now,
			},
		}
		if _, err := cols.Statistics.UpdateOne(ctx, bson.M{"name": name}, update, options.Update().SetUpsert(true)); err != nil {
			log.Fatalf("seed statistic %s: %v", name, err)
		}
	}

	for _, c := range starterCountries {
		slug := utils.Slugify(c.Name)
		update := bson.M{
			"$setOnInsert": bson.M{
				"_id":         primitive.NewObjectID().Hex(),
				"name":        c.Name,
				"slug":        slug,
				"description": c.Description,
				"highlights":  c.Highlights,
				"isPopular":   c.IsPopular,
				"createdAt":   now,
				"updatedAt":   now,
			},
		}
		if _, err := cols.Countries.UpdateOne(ctx, bson.M{"slug": slug}, update, options.Update().SetUpsert(true)); err != nil {
			log.Fatalf("seed country %s: %v", c.Name, err)
		}
	}

	if cfg.AdminPassword == "" {
		log.Printf("seed admin: ADMIN_PASSWORD missing, skipping %s", cfg.AdminUser)
	} else {
		users := admin.NewService(server.MongoRepositories(cols).AdminUsers, nil, cache.NewMemory(), cfg.Timezone)
		created, err := users.EnsureUser(ctx, cfg.AdminUser, cfg.AdminPassword)
		if err != nil {
			log.Fatalf("seed admin %s: %v", cfg.AdminUser, err)
		}
		if created {
			log.Printf("seed admin: created %s", cfg.AdminUser)
		} else {
			log.Printf("seed admin: %s already exists", cfg.AdminUser)
		}
	}

	log.Println("seed completed")
}
