package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/nowstock/nowstock-api/pkg/config"
)

const defaultDir = "migrations"

// Runner de migraciones goose sobre el mismo DSN que usa la API.
// Comandos: up, down, status, create (goose SQL con timestamp).
func main() {
	cmd := flag.String("cmd", "up", "migration command: up|down|status|create")
	dir := flag.String("dir", defaultDir, "goose migrations directory")
	name := flag.String("name", "", "migration name (for create)")
	flag.Parse()

	if err := goose.SetDialect("postgres"); err != nil {
		fail("set goose dialect: %v", err)
	}

	if *cmd == "create" {
		if *name == "" {
			fail("missing -name for create")
		}
		if err := goose.Create(nil, *dir, *name, "sql"); err != nil {
			fail("create migration: %v", err)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fail("cargar configuración: %v", err)
	}

	db, err := sql.Open("pgx", cfg.DB.ConnectionString())
	if err != nil {
		fail("abrir conexión: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		fail("ping DB: %v", err)
	}

	switch *cmd {
	case "up":
		err = goose.UpContext(ctx, db, *dir)
	case "down":
		err = goose.DownContext(ctx, db, *dir)
	case "status":
		err = goose.StatusContext(ctx, db, *dir)
	default:
		fail("unknown -cmd value: %s", *cmd)
	}
	if err != nil {
		fail("goose %s: %v", *cmd, err)
	}
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
