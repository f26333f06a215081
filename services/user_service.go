package services

import (
	"context"
	"errors"
	"strings"

	"recipe-api/models"
	"recipe-api/repositories"

	"golang.org/x/crypto/bcrypt"
)

// The UserService interface defines the methods that user services need to implement
type UserService interface {
	CreateUser(ctx context.Context, input *CreateUserInput) (*models.User, error)
	CreateSuperuser(ctx context.Context, email, password string) (*models.User, error)
	GetUser(ctx context.Context, userID uint) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uint, input *UpdateProfileInput) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

// --- Structs for Input ---
type CreateUserInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=5"`
	Name     string `json:"name" validate:"max=255"`
}

type UpdateProfileInput struct {
	// Pointers distinguish "not provided" from an empty value.
	Email    *string `json:"email" validate:"omitnil,email,max=255"`
	Name     *string `json:"name" validate:"omitnil,max=255"`
	Password *string `json:"password" validate:"omitnil,min=5"`
}

// The userService structure is the implementation of the UserService interface
type userService struct {
	repo repositories.UserRepository
	cost int
}

var _ UserService = (*userService)(nil)

// NewUserService creates a new UserService instance
func NewUserService(repo repositories.UserRepository) UserService {
	return &userService{repo: repo, cost: bcrypt.DefaultCost}
}

// NormalizeEmail lowercases the domain part of an address and keeps the
// local part as given.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}

// CreateUser registers a regular user. The stored password is a bcrypt hash.
func (s *userService) CreateUser(ctx context.Context, input *CreateUserInput) (*models.User, error) {
	if strings.TrimSpace(input.Email) == "" {
		return nil, NewValidationError("email", requiredMessage)
	}
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	email := NormalizeEmail(input.Email)
	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}

	hashed, err := s.hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:    email,
		Name:     input.Name,
		Password: hashed,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, &user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, duplicateEmail()
		}
		return nil, translate("create user", err)
	}
	return &user, nil
}

// CreateSuperuser registers a user with staff and superuser flags set.
func (s *userService) CreateSuperuser(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.CreateUser(ctx, &CreateUserInput{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	user.IsStaff = true
	user.IsSuperuser = true
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, translate("promote user", err)
	}
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, translate("get user", err)
	}
	return user, nil
}

// UpdateProfile changes the acting user's own record. Only provided fields
// are touched; a new password is re-hashed.
func (s *userService) UpdateProfile(ctx context.Context, userID uint, input *UpdateProfileInput) (*models.User, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, translate("get user", err)
	}

	if input.Email != nil {
		email := NormalizeEmail(*input.Email)
		if email != user.Email {
			if err := s.ensureEmailFree(ctx, email, user.ID); err != nil {
				return nil, err
			}
			user.Email = email
		}
	}
	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Password != nil {
		hashed, err := s.hash(*input.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, duplicateEmail()
		}
		return nil, translate("update user", err)
	}
	return user, nil
}

// Authenticate returns the active user whose password matches.
func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, translate("find user", err)
	}

	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) ensureEmailFree(ctx context.Context, email string, selfID uint) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil && existing.ID != selfID:
		return duplicateEmail()
	case err == nil, errors.Is(err, repositories.ErrNotFound):
		return nil
	default:
		return translate("check email", err)
	}
}

func (s *userService) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", translate("hash password", err)
	}
	return string(hashed), nil
}

func duplicateEmail() error {
	return NewValidationError("email", "user with this email already exists.")
}
