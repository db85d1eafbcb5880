package main

import (
	"fmt"
	"os"

	"wazmoi/backend/internal/auth"
	"wazmoi/backend/internal/config"
	"wazmoi/backend/internal/storage"
	"wazmoi/backend/internal/storage/memory"
	sqlstore "wazmoi/backend/internal/storage/sql"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: create-admin <username> <password> [email] [fullName]")
		os.Exit(1)
	}

	username := os.Args[1]
	password := os.Args[2]
	email := ""
	fullName := ""
	if len(os.Args) >= 4 {
		email = os.Args[3]
	}
	if len(os.Args) >= 5 {
		fullName = os.Args[4]
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 创建存储
	var store storage.Store
	if cfg.Database.Type != "" {
		store, err = sqlstore.NewStore(
			cfg.Database.Type,
			cfg.Database.DSN,
			cfg.Database.MaxOpenConns,
			cfg.Database.MaxIdleConns,
			cfg.Database.ConnMaxLifetime,
		)
		if err != nil {
			fmt.Printf("Failed to connect to database: %v\n", err)
			os.Exit(1)
		}
	} else {
		store = memory.NewStore()
		fmt.Println("Warning: no database configured, the user exists only in this process")
	}
	defer store.Close()

	// 注册并提升为管理员
	authService := auth.NewService(store)
	user, err := authService.Register(auth.RegisterInput{
		Username: username,
		Email:    email,
		Password: password,
		FullName: fullName,
	})
	if err != nil {
		fmt.Printf("Failed to create user: %v\n", err)
		os.Exit(1)
	}

	user.IsAdmin = true
	if err := store.UpdateUser(user); err != nil {
		fmt.Printf("Failed to promote user to admin: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Admin user created successfully!\n")
	fmt.Printf("  ID:           %s\n", user.ID)
	fmt.Printf("  Username:     %s\n", user.Username)
	if user.Email != "" {
		fmt.Printf("  Email:        %s\n", user.Email)
	}
	fmt.Printf("  Profile link: %s\n", user.ProfileLink)
}
