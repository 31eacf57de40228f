package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Roja-08/Scout-Nallur/internal/admin"
	"github.com/Roja-08/Scout-Nallur/internal/config"
	"github.com/Roja-08/Scout-Nallur/internal/store"
)

// Seed creates the schema and the two bootstrap admin accounts. Safe to
// run repeatedly: existing emails are skipped.
func main() {
	cfg := config.Load()
	ctx := context.Background()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatalf("schema failed: %v", err)
	}

	repo := admin.NewRepository(db.Client)
	seed := []struct {
		email    string
		password string
		role     string
	}{
		{"super@gmail.com", "superadmin123", admin.RoleSuper},
		{"secondary@gmail.com", "secondadmin123", admin.RoleSecondary},
	}

	for _, s := range seed {
		exists, err := repo.ExistsEmail(ctx, s.email)
		if err != nil {
			log.Fatalf("lookup %s failed: %v", s.email, err)
		}
		if exists {
			log.Printf("%s already present, skipping", s.email)
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(s.password), cfg.BcryptCost)
		if err != nil {
			log.Fatalf("bcrypt failed: %v", err)
		}
		a := &admin.Admin{
			ID:           uuid.NewString(),
			Email:        s.email,
			PasswordHash: string(hash),
			Role:         s.role,
			CreatedAt:    time.Now().UTC(),
		}
		if err := repo.Create(ctx, a); err != nil {
			log.Fatalf("create %s failed: %v", s.email, err)
		}
		log.Printf("created %s admin %s", s.role, s.email)
	}
}
