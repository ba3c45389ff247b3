package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"Excelerate/internal/appmanager"
	"Excelerate/internal/config"
	"Excelerate/internal/directories"
	"Excelerate/internal/notification"
	"Excelerate/internal/store"
)

// InitDB loads DB config from env vars
func InitDB() (*sql.DB, error) {
	user := os.Getenv("DB_USER")
	pass := os.Getenv("DB_PASSWORD")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	name := os.Getenv("DB_NAME")
	connStr := fmt.Sprintf(
		"user=%s password=%s host=%s port=%s dbname=%s sslmode=disable",
		user, pass, host, port, name,
	)
	return sql.Open("postgres", connStr)
}

func main() {
	// Load .env for local dev
	_ = godotenv.Load("../.env")
	ctx := context.Background()

	db, err := InitDB()
	if err != nil {
		log.Fatal("failed to connect to DB:", err)
	}
	appmanager.SetDB(db)

	dsn := config.DatabaseURL()
	if dsn == "" {
		dsn = fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=disable",
			os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_HOST"), os.Getenv("DB_PORT"), os.Getenv("DB_NAME"),
		)
	}
	metaStore, err := store.New(ctx, dsn)
	if err != nil {
		log.Fatal("failed to connect to metadata store:", err)
	}
	if err := metaStore.EnsureSchema(ctx); err != nil {
		log.Fatal("failed to ensure schema:", err)
	}
	appmanager.SetStore(metaStore)

	dirs, err := directories.DefaultLayout()
	if err != nil {
		log.Fatal("failed to resolve document tree:", err)
	}
	if err := dirs.Ensure(); err != nil {
		log.Fatal("failed to create document tree:", err)
	}
	appmanager.SetDirectories(dirs)
	appmanager.SetNotifier(notification.NewService())

	manager := appmanager.NewAppManager()

	// Load service configs from YAML
	servicesCfg, err := appmanager.LoadServiceSequence("../services.yaml")
	if err != nil {
		log.Fatal("failed to load service sequence:", err)
	}

	// Automatically register all services
	manager.AutoRegisterServices(servicesCfg)

	// Start all services
	if err := manager.StartAll(); err != nil {
		log.Fatal("failed to start:", err)
	}

	// Graceful shutdown handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	// Stop all services
	if err := manager.StopAll(); err != nil {
		log.Fatal("failed to stop:", err)
	}
	metaStore.Close()
	db.Close()
}
