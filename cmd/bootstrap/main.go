// Package main 数据库初始化入口（bootstrap）
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"sitepilot-api/internal/config"
	"sitepilot-api/internal/domain/entity"
	"sitepilot-api/internal/wire"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting system bootstrap...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	dataLayer, cleanup, err := wire.InitializePostgresOnly(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize data layer: %v", err)
	}
	defer cleanup()

	// 1. 建表
	fmt.Println("Running schema migrations...")
	if err := dataLayer.PgClient.DB().AutoMigrate(
		&entity.User{},
		&entity.Project{},
		&entity.GenerationRun{},
		&entity.ClarificationRound{},
		&entity.RevisionRequest{},
		&entity.BuildTask{},
		&entity.VersionSnapshot{},
		&entity.UploadedAsset{},
	); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	// 2. 创建首个管理员
	adminEmail := os.Getenv("BOOTSTRAP_ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@sitepilot.local"
	}
	adminEmail = strings.ToLower(strings.TrimSpace(adminEmail))

	adminPassword := os.Getenv("BOOTSTRAP_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "admin123" // 生产环境请务必通过环境变量设置
	}

	existing, err := dataLayer.UserRepo.GetByEmail(ctx, adminEmail)
	if err != nil {
		log.Fatalf("failed to check admin existence: %v", err)
	}

	if existing == nil {
		fmt.Printf("Creating admin user: %s...\n", adminEmail)
		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("failed to hash admin password: %v", err)
		}
		admin := &entity.User{
			Email:        adminEmail,
			PasswordHash: string(hash),
			DisplayName:  "System Admin",
			Role:         entity.RoleAdmin,
		}
		if err := dataLayer.UserRepo.Create(ctx, admin); err != nil {
			log.Fatalf("failed to create admin user: %v", err)
		}
		fmt.Printf("Admin user created with ID: %s\n", admin.ID)
	} else {
		fmt.Printf("Admin user already exists with ID: %s\n", existing.ID)
	}

	fmt.Println("Bootstrap completed.")
}
