// Command adduser creates a user directly in the database.
//
//	adduser -name "Dana Cohen" -email dana@example.com -password s3cret -role lecturer
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"coursehub/internal/app/service"
	"coursehub/internal/domain/repository"
	"coursehub/internal/platform/config"
	"coursehub/internal/platform/database"
)

func main() {
	name := flag.String("name", "", "full name")
	email := flag.String("email", "", "email address")
	password := flag.String("password", "", "plain-text password, stored hashed")
	role := flag.String("role", "student", "student, lecturer or admin")
	flag.Parse()

	if err := run(*name, *email, *password, *role); err != nil {
		fmt.Fprintln(os.Stderr, "adduser:", err)
		os.Exit(1)
	}
}

func run(name, email, password, role string) error {
	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Open(ctx, cfg.DBConnStr)
	if err != nil {
		return err
	}
	defer db.Close()

	users := service.NewUserService(repository.NewPgUserRepository(db))
	u, err := users.AddUser(ctx, service.AddUserRequest{FullName: name, Email: email, Password: password, Role: role})
	if err != nil {
		return err
	}
	fmt.Printf("created %s %s (id %d)\n", u.Role, u.Email, u.ID)
	return nil
}
