// Command seed applies migrations, creates a demo event and prints bearer
// tokens for an organizer and an admin.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"ms-admission/internal/auth"
	"ms-admission/internal/config"
	"ms-admission/internal/database"
	"ms-admission/internal/database/migrations"
	"ms-admission/internal/events"
	"ms-admission/internal/logger"
	"ms-admission/internal/models"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func main() {
	organizer := flag.String("organizer", "org-demo", "organizer id that owns the demo event")
	down := flag.Bool("down", false, "roll back every migration and exit")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	lg := logger.New(logger.Options{Service: "admission-seed"})
	ctx := context.Background()

	db, err := database.Open(ctx, cfg.Database, lg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	runner := migrations.NewRunner(db, lg)
	if *down {
		if err := runner.MigrateDown(); err != nil {
			log.Fatalf("Failed to roll back migrations: %v", err)
		}
		log.Println("Migrations rolled back")
		return
	}
	if err := runner.MigrateUp(); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	svc := events.NewService(db, database.TxOptions{LockTimeout: cfg.Database.LockTimeout}, lg)
	event, types, err := svc.CreateEvent(ctx, events.NewEvent{
		Title:       "Summer Fest",
		Description: "Annual summer music festival.",
		Venue:       "Main Stage",
		OrganizerID: *organizer,
		ScheduledAt: time.Now().AddDate(0, 1, 0),
		TicketTypes: []events.NewTicketType{
			{Name: "General", Price: decimal.RequireFromString("25.00"), Stock: 100},
			{Name: "VIP", Price: decimal.RequireFromString("80.00"), Stock: 10},
		},
	})
	if err != nil {
		log.Fatalf("Failed to create demo event: %v", err)
	}

	fmt.Printf("event %s (%s)\n", event.ID, event.Title)
	for _, tt := range types {
		fmt.Printf("  ticket type %s %-8s price=%s stock=%d\n", tt.ID, tt.Name, tt.Price.StringFixed(2), tt.Stock)
	}

	verifier := auth.NewVerifier(cfg.Auth.JWTSecret)
	for _, p := range []models.Principal{
		{ID: *organizer, Role: models.RoleOrganizer},
		{ID: "admin", Role: models.RoleAdmin},
	} {
		token, err := verifier.Sign(p, "", 24*time.Hour)
		if err != nil {
			log.Fatalf("Failed to sign token: %v", err)
		}
		fmt.Printf("%s token: %s\n", p.Role, token)
	}
}
