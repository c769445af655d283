package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/quizdrill/backend/internal/model"
	"github.com/quizdrill/backend/internal/repository"
)

// ErrUsernameTaken is returned when registration hits an existing username.
var ErrUsernameTaken = errors.New("username is already taken")

// UserService handles account registration, login checks, and admin user
// management (approvals included).
type UserService struct {
	userRepo    *repository.UserRepository
	authService *AuthService
	log         zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(userRepo *repository.UserRepository, authService *AuthService, log zerolog.Logger) *UserService {
	return &UserService{
		userRepo:    userRepo,
		authService: authService,
		log:         log.With().Str("component", "user_service").Logger(),
	}
}

// Register creates a student account awaiting admin approval.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if existing, err := s.userRepo.GetByUsername(ctx, req.Username); err == nil && existing != nil {
		return nil, ErrUsernameTaken
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	hash, err := s.authService.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     req.Username,
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         model.RoleStudent,
		Approved:     false,
		Active:       false,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Str("username", user.Username).Int("id", user.ID).Msg("Registration received, awaiting approval")
	return user, nil
}

// Authenticate checks credentials and account state, returning the user on
// success. Pending and deactivated accounts are rejected with dedicated
// errors so the UI can explain why.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := s.authService.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.Approved {
		return nil, ErrAccountPending
	}
	if !user.Active {
		return nil, ErrAccountDisabled
	}

	return user, nil
}

// GetByID retrieves one user.
func (s *UserService) GetByID(ctx context.Context, id int) (*model.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// List retrieves users, optionally filtered by role.
func (s *UserService) List(ctx context.Context, role *model.Role) ([]model.User, error) {
	return s.userRepo.List(ctx, role, nil)
}

// ListPendingApproval retrieves registrations awaiting admin action.
func (s *UserService) ListPendingApproval(ctx context.Context) ([]model.User, error) {
	approved := false
	return s.userRepo.List(ctx, nil, &approved)
}

// Update applies admin edits to an account, including approval toggles.
func (s *UserService) Update(ctx context.Context, id int, req *model.UpdateUserRequest) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	user.FullName = req.FullName
	user.Email = req.Email
	user.Approved = *req.Approved
	user.Active = *req.Active

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if user.Approved {
		s.log.Info().Int("id", user.ID).Str("username", user.Username).Msg("User approved")
	}
	return user, nil
}

// ResetPassword sets a new password for the user.
func (s *UserService) ResetPassword(ctx context.Context, userID int, newPassword string) error {
	hash, err := s.authService.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.userRepo.UpdatePassword(ctx, userID, hash)
}

// Delete removes an account.
func (s *UserService) Delete(ctx context.Context, id int) error {
	return s.userRepo.Delete(ctx, id)
}
