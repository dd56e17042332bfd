package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/invoicely-api/internal/domain/entity"
	"github.com/sangkips/invoicely-api/internal/domain/repository"
	"github.com/sangkips/invoicely-api/pkg/apperror"
	"github.com/sangkips/invoicely-api/pkg/utils"
)

// AuthService handles authentication-related operations
type AuthService struct {
	userRepo     repository.UserRepository
	roleRepo     repository.RoleRepository
	settingsRepo repository.SettingsRepository
	jwtManager   *utils.JWTManager
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	settingsRepo repository.SettingsRepository,
	jwtManager *utils.JWTManager,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		roleRepo:     roleRepo,
		settingsRepo: settingsRepo,
		jwtManager:   jwtManager,
	}
}

// LoginInput represents the login input
type LoginInput struct {
	Email    string
	Password string
}

// LoginOutput represents the login output
type LoginOutput struct {
	User         *entity.User
	AccessToken  string
	RefreshToken string
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, apperror.NewPersistenceError(err)
	}
	if user == nil || !utils.CheckPasswordHash(input.Password, user.Password) {
		return nil, apperror.ErrInvalidCredentials
	}

	return s.issueTokens(user)
}

// RegisterInput represents the registration input
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Register creates a new account with the default role and default business
// settings, and signs it in
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*LoginOutput, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.NewPersistenceError(err)
	}
	if existingUser != nil {
		return nil, apperror.NewConflictError("Email already registered")
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Email:     email,
		Password:  hashedPassword,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperror.NewPersistenceError(err)
	}

	defaultRole, err := s.roleRepo.GetByName(ctx, entity.RoleUser)
	if err != nil {
		return nil, apperror.NewPersistenceError(err)
	}
	if defaultRole != nil {
		if err := s.userRepo.AssignRole(ctx, user.ID, defaultRole.ID); err != nil {
			return nil, apperror.NewPersistenceError(err)
		}
	}

	settings := entity.DefaultBusinessSettings(user.ID)
	settings.OwnerName = user.FullName()
	settings.Email = user.Email
	if err := s.settingsRepo.Create(ctx, settings); err != nil {
		return nil, apperror.NewPersistenceError(err)
	}

	user, err = s.userRepo.GetWithRoles(ctx, user.ID)
	if err != nil {
		return nil, apperror.NewPersistenceError(err)
	}
	return s.issueTokens(user)
}

// RefreshToken generates new tokens from a refresh token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*LoginOutput, error) {
	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperror.ErrInvalidToken
	}

	user, err := s.userRepo.GetWithRoles(ctx, userID)
	if err != nil {
		return nil, apperror.NewPersistenceError(err)
	}
	if user == nil {
		return nil, apperror.ErrInvalidToken
	}

	return s.issueTokens(user)
}

func (s *AuthService) issueTokens(user *entity.User) (*LoginOutput, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.RoleNames(), user.GetPermissions())
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &LoginOutput{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// GetCurrentUser returns the current user by ID
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetWithRoles(ctx, userID)
	if err != nil {
		return nil, apperror.NewPersistenceError(err)
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}
	return user, nil
}

// ChangePasswordInput represents the change password input
type ChangePasswordInput struct {
	UserID          uuid.UUID
	CurrentPassword string
	NewPassword     string
}

// ChangePassword changes the user's password
func (s *AuthService) ChangePassword(ctx context.Context, input *ChangePasswordInput) error {
	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return apperror.NewPersistenceError(err)
	}
	if user == nil {
		return apperror.NewNotFoundError("User")
	}

	if !utils.CheckPasswordHash(input.CurrentPassword, user.Password) {
		return apperror.NewFieldValidationError("current_password", "is incorrect")
	}

	hashedPassword, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}

	user.Password = hashedPassword
	if err := s.userRepo.Update(ctx, user); err != nil {
		return apperror.NewPersistenceError(err)
	}
	return nil
}

// UpdateProfileInput represents the update profile input
type UpdateProfileInput struct {
	UserID    uuid.UUID
	FirstName string
	LastName  string
}

// UpdateProfile updates the user's name. Empty fields are left unchanged.
func (s *AuthService) UpdateProfile(ctx context.Context, input *UpdateProfileInput) (*entity.User, error) {
	user, err := s.userRepo.GetWithRoles(ctx, input.UserID)
	if err != nil {
		return nil, apperror.NewPersistenceError(err)
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}

	if v := strings.TrimSpace(input.FirstName); v != "" {
		user.FirstName = v
	}
	if v := strings.TrimSpace(input.LastName); v != "" {
		user.LastName = v
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, apperror.NewPersistenceError(err)
	}

	return user, nil
}
