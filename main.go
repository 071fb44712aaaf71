package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/bookboss/bookboss/internal/auth"
	"github.com/bookboss/bookboss/internal/config"
	"github.com/bookboss/bookboss/internal/database"
	"github.com/bookboss/bookboss/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "create-admin":
		if err := createAdmin(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "version":
		fmt.Printf("bookboss %s (%s)\n", Version, Commit)

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: bookboss [command]

Commands:
  serve          Run the HTTP server (default)
  create-admin   Create an administrator account
  version        Print version information
  help           Show this help`)
}

// createAdmin bootstraps an administrator account from the terminal.
func createAdmin(args []string) error {
	flags := flag.NewFlagSet("create-admin", flag.ExitOnError)
	username := flags.String("username", "", "Username for the new administrator")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg := config.NewConfig()
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	reader := bufio.NewReader(os.Stdin)

	name := *username
	if name == "" {
		fmt.Print("Username: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		name = strings.TrimSpace(line)
	}

	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	service := auth.NewService(db.DB, cfg.Auth)
	user, err := service.CreateUser(name, string(password), true)
	if err != nil {
		return err
	}

	fmt.Printf("Administrator %q created (id %d)\n", user.Username, user.ID)
	return nil
}
