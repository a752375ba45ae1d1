package main

import (
	"context"
	"database/sql"
	"log"
	"os"

	"meethub/internal/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Fatalf("Error loading .env file: %v", err)
	}

	db, err := sql.Open("pgx", os.Getenv("DB_ADDR"))
	if err != nil {
		log.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		log.Fatalf("goose dialect: %v", err)
	}

	if err := goose.UpContext(context.Background(), db, "."); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	log.Println("migrations applied")
}
