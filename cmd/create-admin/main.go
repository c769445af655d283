// Interactive bootstrap for the first admin account. Admins created here
// skip the registration approval queue.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/quizdrill/backend/internal/config"
	"github.com/quizdrill/backend/internal/database"
	"github.com/quizdrill/backend/internal/logger"
	"github.com/quizdrill/backend/internal/model"
	"github.com/quizdrill/backend/internal/repository"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	admin, password, err := promptAdmin(bufio.NewReader(os.Stdin))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}
	admin.PasswordHash = string(hash)

	if err := repository.NewUserRepository(pool).Create(ctx, admin); err != nil {
		log.Fatal().Err(err).Msg("Failed to create admin")
	}

	fmt.Printf("\nAdmin %q (%s) created with ID %d\n", admin.Username, admin.Email, admin.ID)
}

func promptAdmin(reader *bufio.Reader) (*model.User, string, error) {
	fmt.Println("=== Create Admin Account ===")

	username, err := promptLine(reader, "Username")
	if err != nil {
		return nil, "", err
	}
	fullName, err := promptLine(reader, "Full name")
	if err != nil {
		return nil, "", err
	}
	email, err := promptLine(reader, "Email")
	if err != nil {
		return nil, "", err
	}

	fmt.Print("Password: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return nil, "", errors.New("could not read password")
	}
	if len(raw) < 6 {
		return nil, "", errors.New("password must be at least 6 characters")
	}

	return &model.User{
		Username: username,
		FullName: fullName,
		Email:    email,
		Role:     model.RoleAdmin,
		Approved: true,
		Active:   true,
	}, string(raw), nil
}

func promptLine(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(label + ": ")
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("%s is required", strings.ToLower(label))
	}
	return line, nil
}
