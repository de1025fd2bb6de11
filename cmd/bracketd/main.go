package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/coinflip-gg/bracketry/manager"
	"github.com/coinflip-gg/bracketry/sqlitestore"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	dsn := os.Getenv("DB_PATH")
	if dsn == "" {
		dsn = "bracketry.db?_journal_mode=WAL"
	}
	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}

	store, err := sqlitestore.Connect(dsn)
	if err != nil {
		log.Fatal("Failed to connect to storage:", err)
	}
	defer store.Close()

	m := manager.New(store)
	router := newRouter(m)

	slog.Info("bracketd starting", "addr", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatal(err)
	}
}
