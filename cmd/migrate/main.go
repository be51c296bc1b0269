// Command migrate applies or inspects the database schema.
//
//	migrate [up|down|status|version|redo|reset]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"coursehub/internal/platform/config"
	"coursehub/internal/platform/database"
)

func main() {
	flag.Parse()
	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	cfg := config.Load()
	ctx := context.Background()
	db, err := database.Open(ctx, cfg.DBConnStr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
	defer db.Close()

	var args []string
	if flag.NArg() > 1 {
		args = flag.Args()[1:]
	}
	if err := database.Run(ctx, db, command, args...); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}
