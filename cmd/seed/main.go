package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/samaraie/linktree-backend/config"
	"github.com/samaraie/linktree-backend/internal/app/model"
	"github.com/samaraie/linktree-backend/internal/app/repository"
	"github.com/samaraie/linktree-backend/internal/app/service"
	"github.com/samaraie/linktree-backend/internal/db"
	"github.com/samaraie/linktree-backend/pkg/logger"
	"github.com/samaraie/linktree-backend/pkg/util"
)

func main() {
	email := flag.String("email", "", "admin e-mail address")
	password := flag.String("password", "", "initial password")
	name := flag.String("name", "", "display name")
	role := flag.String("role", string(model.RoleAdmin), "admin or editor")
	xlsxPath := flag.String("xlsx", "", "import accounts from an .xlsx sheet (email, name, role, password)")
	yes := flag.Bool("yes", false, "skip the confirmation prompt")
	flag.Parse()

	var admins []adminRow
	switch {
	case *xlsxPath != "":
		fmt.Printf("Reading XLSX file: %s\n", *xlsxPath)
		rows, err := readAdminsFromXLSX(*xlsxPath)
		if err != nil {
			log.Fatal("Failed to read XLSX:", err)
		}
		admins = rows
	case *email != "":
		admins = []adminRow{{
			Email:    *email,
			Name:     *name,
			Role:     model.UserRole(*role),
			Password: *password,
		}}
	default:
		fmt.Fprintln(os.Stderr, "Usage: seed -email <email> -password <password> -name <name> [-role admin|editor]")
		fmt.Fprintln(os.Stderr, "       seed -xlsx <file.xlsx>")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.Initialize(logger.Config{Level: "info", Format: "console"})

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	hasher, err := util.NewPasswordHasher(cfg.Auth.PasswordHasher)
	if err != nil {
		log.Fatal("Failed to configure password hasher:", err)
	}
	authService := service.NewAuthService(repository.NewUserRepository(db.GetDB()), hasher, service.TokenConfig{
		Secret:        cfg.JWT.Secret,
		AccessExpiry:  cfg.JWT.AccessTokenExpiry,
		RefreshExpiry: cfg.JWT.RefreshTokenExpiry,
	})

	fmt.Printf("Total accounts to create: %d\n", len(admins))
	if !*yes {
		fmt.Print("Do you want to proceed? (yes/no): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Seed cancelled.")
			return
		}
	}

	created, skipped := seedAdmins(context.Background(), authService, admins)

	fmt.Println("Seed completed.")
	fmt.Printf("  Created: %d\n", created)
	fmt.Printf("  Skipped: %d\n", skipped)
}

// seedAdmins creates every account, skipping ones that already exist or are rejected
func seedAdmins(ctx context.Context, authService service.AuthService, admins []adminRow) (created, skipped int) {
	for _, a := range admins {
		_, err := authService.CreateUser(ctx, a.Email, a.Password, a.Name, a.Role)
		switch {
		case err == nil:
			created++
		case errors.Is(err, service.ErrEmailAlreadyExists):
			fmt.Printf("  %s already exists, skipped\n", a.Email)
			skipped++
		case errors.Is(err, service.ErrStorageUnavailable):
			log.Fatal("Database unavailable:", err)
		default:
			fmt.Printf("  %s rejected: %v\n", a.Email, err)
			skipped++
		}
	}
	return created, skipped
}
