/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the labor-time engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (optional) and parse command-line flags
  2. Load the jurisdiction rule set (built-in or from a JSON file)
  3. Initialize SQLite store
  4. Build the engines and API handler
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080, env PORT)
  -db      SQLite database path (default: labor.db, env DATABASE_PATH)
  -rules   Jurisdiction rule-set JSON file (default: built-in rules,
           env RULES_PATH)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/labor.db"

  # Run with a custom jurisdiction
  ./server -rules="./rules/jp-default.json"

SEE ALSO:
  - api/server.go: Router configuration
  - factory/jurisdiction.go: Rule-set parsing
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kosei-hr/labor-engine/api"
	"github.com/kosei-hr/labor-engine/calendar"
	"github.com/kosei-hr/labor-engine/compliance"
	"github.com/kosei-hr/labor-engine/factory"
	"github.com/kosei-hr/labor-engine/leave"
	"github.com/kosei-hr/labor-engine/store/sqlite"
	"github.com/kosei-hr/labor-engine/worktime"
)

func main() {
	// .env is optional; flags override.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("DATABASE_PATH", "labor.db"), "SQLite database path")
	rulesPath := flag.String("rules", envStr("RULES_PATH", ""), "jurisdiction rule-set JSON file (built-in rules when empty)")
	flag.Parse()

	rules := factory.Default()
	if *rulesPath != "" {
		raw, err := os.ReadFile(*rulesPath)
		if err != nil {
			log.Fatalf("Failed to read rule set: %v", err)
		}
		rules, err = factory.Parse(string(raw))
		if err != nil {
			log.Fatalf("Failed to parse rule set: %v", err)
		}
	}

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	cal := calendar.New(rules.Calendar)
	calc := worktime.New(rules.WorkTime, cal)
	engine := leave.New(rules.Leave, store, store, cal)
	checker := compliance.New(rules.Compliance)

	handler := api.NewHandler(store, engine, calc, cal, checker)
	router := api.NewRouter(handler, api.RouterOptions{})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%d (rules: %s)", *port, rules.Name)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
