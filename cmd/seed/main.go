package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ikkim/shopfront-backend/config"
	"github.com/ikkim/shopfront-backend/internal/app/repository"
	"github.com/ikkim/shopfront-backend/internal/app/service"
	"github.com/ikkim/shopfront-backend/internal/db"
	"github.com/ikkim/shopfront-backend/internal/policy"
)

const usage = "Usage: go run cmd/seed/main.go [-y] <products.xlsx>"

// Imports a product workbook laid out like GET /products/export. When
// SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD are set an admin account is
// created first if it does not exist yet.
func main() {
	args := os.Args[1:]
	assumeYes := false
	if len(args) > 0 && args[0] == "-y" {
		assumeYes = true
		args = args[1:]
	}
	if len(args) != 1 {
		log.Fatal(usage)
	}
	filePath := args[0]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	database, err := db.Connect(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close(database)

	if err := db.Migrate(database); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	userRepo := repository.NewUserRepository(database)
	categoryRepo := repository.NewCategoryRepository(database)
	productRepo := repository.NewProductRepository(database)

	if email, password := os.Getenv("SEED_ADMIN_EMAIL"), os.Getenv("SEED_ADMIN_PASSWORD"); email != "" && password != "" {
		ensureAdmin(service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiry, nil), userRepo, email, password)
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	if !assumeYes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatal("Failed to open XLSX:", err)
	}
	defer f.Close()

	productService := service.NewProductService(productRepo, categoryRepo, nil, cfg.Storage.MaxImageSize)
	result, err := productService.ImportProducts(f)
	if err != nil {
		log.Fatal("Failed to import products:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Products created: %d\n", result.Created)
	fmt.Printf("Categories created: %d\n", result.CategoriesCreated)
	for _, reason := range result.Skipped {
		fmt.Printf("Skipped: %s\n", reason)
	}
}

func ensureAdmin(authService service.AuthService, userRepo repository.UserRepository, email, password string) {
	if _, err := userRepo.FindByEmail(email); err == nil {
		fmt.Printf("Admin %s already exists\n", email)
		return
	}
	if _, err := authService.Signup(email, password, policy.RoleAdmin); err != nil {
		log.Fatal("Failed to create admin:", err)
	}
	fmt.Printf("Admin %s created\n", email)
}
