package main

import (
	"fmt"

	"github.com/musacbusiness/linkedin-post-manager/internal/entity"
	"github.com/musacbusiness/linkedin-post-manager/internal/repo/persistent"
	"github.com/musacbusiness/linkedin-post-manager/pkg/config"
	"github.com/musacbusiness/linkedin-post-manager/pkg/database"
	"github.com/musacbusiness/linkedin-post-manager/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.New()
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	repo := persistent.NewPostRepository(db)

	demoPosts := []entity.Post{
		{
			Title:   "AI Automation is Changing LinkedIn",
			Content: "AI is transforming how we work on LinkedIn. Automation tools help us save time on repetitive tasks while staying authentic.",
			Status:  entity.StatusDraft,
			Topic:   "AI & Automation",
			Source:  "seed",
		},
		{
			Title:   "Data-Driven Decision Making",
			Content: "Making decisions based on data rather than intuition leads to better outcomes. Here's why analytics matter.",
			Status:  entity.StatusPendingReview,
			Topic:   "Analytics",
			Source:  "seed",
		},
		{
			Title:   "Setting Goals for the New Year",
			Content: "New year, new goals! Here's my framework for setting realistic and achievable objectives.",
			Status:  entity.StatusApproved,
			Topic:   "Goals",
			Source:  "seed",
		},
		{
			Title:   "Productivity Tips for Remote Teams",
			Content: "Working remotely requires discipline and structure. These 5 tips have helped me stay productive.",
			Status:  entity.StatusDraft,
			Topic:   "Productivity",
			Source:  "seed",
		},
	}

	for i := range demoPosts {
		if err := repo.Create(&demoPosts[i]); err != nil {
			log.Error("Failed to create demo post %q: %v", demoPosts[i].Title, err)
			panic(err)
		}
		log.Info("Created demo post %s (%s)", demoPosts[i].ID, demoPosts[i].Status)
	}

	log.Info("Database seeded successfully!")
}
