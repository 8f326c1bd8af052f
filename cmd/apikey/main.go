package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/thep200/star-neighbours/cfg"
	"github.com/thep200/star-neighbours/internal/model"
	"github.com/thep200/star-neighbours/pkg/db"
	"github.com/thep200/star-neighbours/pkg/log"
)

func main() {
	username := flag.String("username", "", "Username of the api key owner")
	email := flag.String("email", "", "Email of the api key owner")
	expireAt := flag.String("expire-at", "", "Expiration time (RFC3339), default is the configured TTL")
	flag.Parse()

	if *username == "" || *email == "" {
		fmt.Println("Please specify -username and -email")
		os.Exit(1)
	}

	ctx := context.Background()
	loader, _ := cfg.NewViperLoader()
	config, err := loader.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, _ := log.NewCslLogger()

	var validUntil time.Time
	if *expireAt != "" {
		validUntil, err = time.Parse(time.RFC3339, *expireAt)
		if err != nil {
			fmt.Printf("Invalid -expire-at, use RFC3339 format (2026-12-31T23:59:59Z): %v\n", err)
			os.Exit(1)
		}
	}

	mysql, _ := db.NewMysql(config)
	userMd, _ := model.NewUser(config, logger, mysql)

	// Migrate database
	if err := mysql.Migrate(userMd); err != nil {
		logger.Error(ctx, "Failed to migrate database: %v", err)
		os.Exit(1)
	}

	apiKey, err := userMd.Create(*username, *email, validUntil)
	if err != nil {
		logger.Error(ctx, "Failed to create api key: %v", err)
		os.Exit(1)
	}

	fmt.Printf("Created api key for %s <%s>\n", *username, *email)
	fmt.Printf("X-API-Key: %s\n", apiKey)
}
