// Command seed populates the database with demo data.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/TheAXPerience/ScrapPages/internal/bootstrap"
	"github.com/TheAXPerience/ScrapPages/internal/config"
	"github.com/TheAXPerience/ScrapPages/internal/seed"

	"github.com/joho/godotenv"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of generated users")
	scrapsPerUser := flag.Int("scraps", 3, "Scraps per generated user")
	commentsPerScrap := flag.Int("comments", 2, "Top-level comments per scrap")
	likeRatio := flag.Float64("likes", 0.3, "Chance each user likes each scrap")
	fixture := flag.String("fixture", "", "Optional YAML fixture of hand-written accounts")
	shouldClean := flag.Bool("clean", false, "Delete existing data before seeding")
	fast := flag.Bool("fast", true, "Use minimum bcrypt cost")
	randSeed := flag.Int64("seed", 0, "Random seed for reproducible content")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{SkipRedis: true})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	opts := seed.Options{
		NumUsers:         *numUsers,
		ScrapsPerUser:    *scrapsPerUser,
		CommentsPerScrap: *commentsPerScrap,
		LikeRatio:        *likeRatio,
		FixturePath:      *fixture,
		ShouldClean:      *shouldClean,
		FastHash:         *fast,
		RandSeed:         *randSeed,
	}
	report, err := seed.NewSeeder(rt.DB, rt.Store, opts).Run(ctx, opts)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d scraps, %d comments, %d likes", report.Users, report.Scraps, report.Comments, report.Likes)
	log.Printf("Generated users share the password: %s", seed.DefaultPassword)
}
