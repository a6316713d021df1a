package main

import (
	"context"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/Matsupon/tailoring-system-sub001/internal/config"
	"github.com/Matsupon/tailoring-system-sub001/internal/database"
	"github.com/Matsupon/tailoring-system-sub001/internal/domain"
	"github.com/Matsupon/tailoring-system-sub001/internal/repository"
)

// Seeds the service catalog and the initial admin account. Safe to run
// repeatedly: service types upsert by name and the admin is skipped when the
// email already exists.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}

	if err := repository.AutoMigrateUsers(db); err != nil {
		log.Fatal(err)
	}
	if err := repository.AutoMigrateServiceTypes(db); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	serviceTypes := repository.NewServiceTypeRepository(db)
	for _, st := range []domain.ServiceType{
		{Name: "School Uniform", Downpayment: 500},
		{Name: "Barong", Downpayment: 800},
		{Name: "Gown", Downpayment: 1500},
		{Name: "Suit", Downpayment: 1200},
		{Name: "Alteration", Downpayment: 200},
	} {
		st := st
		if err := serviceTypes.Upsert(ctx, &st); err != nil {
			log.Fatalf("seed service type %q: %v", st.Name, err)
		}
		log.Printf("service type %q ready (id=%d)", st.Name, st.ID)
	}

	users := repository.NewUserRepository(db)

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		log.Println("ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin seed")
		return
	}

	exists, err := users.ExistsByEmail(ctx, adminEmail)
	if err != nil {
		log.Fatal(err)
	}
	if exists {
		log.Printf("admin %s already exists", adminEmail)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal(err)
	}

	admin := &domain.User{
		Email:        adminEmail,
		PasswordHash: string(hash),
		Name:         "Administrator",
		Role:         domain.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		log.Fatal(err)
	}
	log.Printf("admin %s created (id=%d)", adminEmail, admin.ID)
}
