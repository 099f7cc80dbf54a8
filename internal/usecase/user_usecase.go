package usecase

import (
	"strings"

	"shophub/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Email    string
	FullName string
	Phone    string
	Password string
	Role     domain.UserRole
}

type UserUseCase interface {
	Register(input RegisterInput) (*domain.User, error)
	Authenticate(email, password string) (*domain.User, error)
	GetUserByID(id uuid.UUID) (*domain.User, error)
	UpdateProfile(id uuid.UUID, patch domain.UserPatch) (*domain.User, error)
	DeactivateUser(id uuid.UUID) error

	CountUsers() (int, error)
	ListUsers() ([]domain.User, error)
	FindDuplicateEmails() ([]domain.DuplicateEmail, error)
	RemoveDuplicateEmails() (int64, error)
	DeleteAllUsersExcept(keep uuid.UUID) (int64, error)
}

type userUseCase struct {
	userRepo domain.UserRepository
	log      *logrus.Logger
}

func NewUserUseCase(repo domain.UserRepository, logger *logrus.Logger) UserUseCase {
	return &userUseCase{
		userRepo: repo,
		log:      logger,
	}
}

func (uc *userUseCase) Register(input RegisterInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	fullName := strings.TrimSpace(input.FullName)

	uc.log.Infof("Use Case: Attempting registration for email: %s", email)

	if fullName == "" {
		uc.log.Warn("Use Case: Registration failed - empty full name")
		return nil, domain.Errorf(domain.EINVALID, "Full name cannot be empty")
	}
	if len(input.Password) < 8 {
		uc.log.Warnf("Use Case: Registration failed - password too short for %s", email)
		return nil, domain.Errorf(domain.EINVALID, "Password must be at least 8 characters long")
	}
	role := input.Role
	if role == "" {
		role = domain.RoleBuyer
	}
	if !domain.IsValidRole(role) {
		uc.log.Warnf("Use Case: Registration failed - invalid role '%s' for %s", role, email)
		return nil, domain.Errorf(domain.EINVALID, "Invalid role: %s", role)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to hash password for %s: %v", email, err)
		return nil, domain.Errorf(domain.EINTERNAL, "Internal error processing password")
	}

	newUser := &domain.User{
		Email:        email,
		FullName:     fullName,
		Phone:        strings.TrimSpace(input.Phone),
		PasswordHash: string(hashedPassword),
		Role:         role,
	}

	createdUser, err := uc.userRepo.CreateUser(newUser)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to create user %s: %v", email, err)
		return nil, err
	}

	uc.log.Infof("Use Case: User registered successfully. ID: %s, Email: %s, Role: %s",
		createdUser.ID, createdUser.Email, createdUser.Role)
	return createdUser, nil
}

// Authenticate deliberately returns the same error for a missing user,
// an inactive user and a wrong password.
func (uc *userUseCase) Authenticate(email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	uc.log.Infof("Use Case: Attempting authentication for email: %s", email)

	user, err := uc.userRepo.GetUserByEmail(email)
	if err != nil {
		if domain.ErrorCode(err) == domain.ENOTFOUND {
			uc.log.Warnf("Use Case: Auth failed - user not found: %s", email)
			return nil, domain.ErrBadCredentials
		}
		uc.log.Errorf("Use Case: Error retrieving user %s during auth: %v", email, err)
		return nil, err
	}

	if !user.IsActive {
		uc.log.Warnf("Use Case: Auth failed - inactive user: %s", email)
		return nil, domain.ErrBadCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		uc.log.Warnf("Use Case: Auth failed - incorrect password for %s", email)
		return nil, domain.ErrBadCredentials
	}

	uc.log.Infof("Use Case: Authentication successful for user %s (ID: %s)", email, user.ID)
	return user, nil
}

func (uc *userUseCase) GetUserByID(id uuid.UUID) (*domain.User, error) {
	user, err := uc.userRepo.GetUserByID(id)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to get user %s: %v", id, err)
		return nil, err
	}
	return user, nil
}

func (uc *userUseCase) UpdateProfile(id uuid.UUID, patch domain.UserPatch) (*domain.User, error) {
	if patch.FullName != nil && strings.TrimSpace(*patch.FullName) == "" {
		uc.log.Warnf("Use Case: Profile update failed - empty full name for user %s", id)
		return nil, domain.Errorf(domain.EINVALID, "Full name cannot be empty")
	}

	uc.log.Infof("Use Case: Updating profile for user %s", id)
	updatedUser, err := uc.userRepo.UpdateUser(id, patch)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to update user %s: %v", id, err)
		return nil, err
	}

	return updatedUser, nil
}

func (uc *userUseCase) DeactivateUser(id uuid.UUID) error {
	uc.log.Infof("Use Case: Deactivating user %s", id)
	if err := uc.userRepo.DeactivateUser(id); err != nil {
		uc.log.Warnf("Use Case: Repository failed to deactivate user %s: %v", id, err)
		return err
	}
	return nil
}

func (uc *userUseCase) CountUsers() (int, error) {
	return uc.userRepo.CountUsers()
}

func (uc *userUseCase) ListUsers() ([]domain.User, error) {
	return uc.userRepo.ListUsers()
}

func (uc *userUseCase) FindDuplicateEmails() ([]domain.DuplicateEmail, error) {
	return uc.userRepo.FindDuplicateEmails()
}

func (uc *userUseCase) RemoveDuplicateEmails() (int64, error) {
	removed, err := uc.userRepo.RemoveDuplicateEmails()
	if err != nil {
		uc.log.Errorf("Use Case: Failed to remove duplicate emails: %v", err)
		return 0, err
	}
	uc.log.Infof("Use Case: Removed %d duplicate user rows", removed)
	return removed, nil
}

func (uc *userUseCase) DeleteAllUsersExcept(keep uuid.UUID) (int64, error) {
	deleted, err := uc.userRepo.DeleteAllUsersExcept(keep)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to delete users: %v", err)
		return 0, err
	}
	uc.log.Warnf("Use Case: Deleted %d users, kept %s", deleted, keep)
	return deleted, nil
}
