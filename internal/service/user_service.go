package service

import (
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tazhate/leaderflow/internal/domain"
	"github.com/tazhate/leaderflow/internal/storage"
)

const (
	adminID          = "admin_master"
	adminUsername    = "admin"
	adminPassword    = "admin##"
	adminFullName    = "Quản trị viên Hệ thống"
	minPasswordChars = 6
)

// UserService is the account directory: login, self-registration and
// admin-only management.
type UserService struct {
	storage *storage.Storage
	logger  *zap.Logger
	cost    int
}

func NewUserService(s *storage.Storage, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.L()
	}
	return &UserService{storage: s, logger: logger.Named("users"), cost: bcrypt.DefaultCost}
}

// EnsureAdmin creates the built-in admin account if it does not exist yet.
func (s *UserService) EnsureAdmin() error {
	existing, err := s.storage.GetUserByUsername(adminUsername)
	if err != nil {
		return fmt.Errorf("get admin: %w", err)
	}
	if existing != nil {
		return nil
	}

	hash, err := s.hash(adminPassword)
	if err != nil {
		return err
	}
	rec := &storage.UserRecord{
		User:         domain.User{ID: adminID, Username: adminUsername, FullName: adminFullName, Role: domain.RoleAdmin},
		PasswordHash: hash,
	}
	if err := s.storage.CreateUser(rec); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	s.logger.Info("default admin account created", zap.String("username", adminUsername))
	return nil
}

// Authenticate returns the matching user, or nil when the credentials are wrong.
func (s *UserService) Authenticate(username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, nil
	}

	rec, err := s.storage.GetUserByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if rec == nil {
		return nil, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)); err != nil {
		return nil, nil
	}
	u := rec.User
	return &u, nil
}

// Register creates a leader account from the self-service sign-up form.
func (s *UserService) Register(username, fullName, password, confirm string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	fullName = strings.TrimSpace(fullName)
	if username == "" || fullName == "" || password == "" || confirm == "" {
		return nil, fmt.Errorf("%w: all fields are required", domain.ErrInvalidUser)
	}
	if password != confirm {
		return nil, fmt.Errorf("%w: passwords do not match", domain.ErrInvalidUser)
	}
	return s.create(username, fullName, password, domain.RoleLeader)
}

func (s *UserService) create(username, fullName, password string, role domain.UserRole) (*domain.User, error) {
	if strings.IndexFunc(username, unicode.IsSpace) >= 0 {
		return nil, fmt.Errorf("%w: username cannot contain spaces", domain.ErrInvalidUser)
	}
	if len(password) < minPasswordChars {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidUser, minPasswordChars)
	}
	if role != domain.RoleAdmin && role != domain.RoleLeader {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidUser, role)
	}

	existing, err := s.storage.GetUserByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrUserExists
	}

	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}
	rec := &storage.UserRecord{
		User: domain.User{
			ID:       strings.ToLower(username),
			Username: username,
			FullName: fullName,
			Role:     role,
		},
		PasswordHash: hash,
	}
	if err := s.storage.CreateUser(rec); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	u := rec.User
	return &u, nil
}

func (s *UserService) List(actor *domain.User) ([]domain.User, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	recs, err := s.storage.ListUsers()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]domain.User, 0, len(recs))
	for _, r := range recs {
		users = append(users, r.User)
	}
	return users, nil
}

func (s *UserService) Create(actor *domain.User, username, fullName, password string, role domain.UserRole) (*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	username = strings.TrimSpace(username)
	fullName = strings.TrimSpace(fullName)
	if username == "" || fullName == "" {
		return nil, fmt.Errorf("%w: username and full name are required", domain.ErrInvalidUser)
	}
	if role == "" {
		role = domain.RoleLeader
	}
	return s.create(username, fullName, password, role)
}

// Update changes name and role. An empty password keeps the current one.
func (s *UserService) Update(actor *domain.User, id, fullName, password string, role domain.UserRole) (*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	rec, err := s.storage.GetUserByID(id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}

	if fullName = strings.TrimSpace(fullName); fullName != "" {
		rec.FullName = fullName
	}
	if role != "" {
		if role != domain.RoleAdmin && role != domain.RoleLeader {
			return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidUser, role)
		}
		rec.Role = role
	}
	if password != "" {
		if len(password) < minPasswordChars {
			return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidUser, minPasswordChars)
		}
		if rec.PasswordHash, err = s.hash(password); err != nil {
			return nil, err
		}
		s.logger.Info("password reset", zap.String("username", rec.Username))
	}

	if err := s.storage.UpdateUser(rec); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	u := rec.User
	return &u, nil
}

// Delete removes an account and all of its stored data. Neither the caller's
// own account nor the built-in admin can be deleted.
func (s *UserService) Delete(actor *domain.User, id string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	rec, err := s.storage.GetUserByID(id)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if rec == nil {
		return domain.ErrNotFound
	}
	if rec.ID == actor.ID || strings.EqualFold(rec.Username, adminUsername) {
		return domain.ErrProtectedUser
	}

	if err := s.storage.DeleteUserData(rec.ID); err != nil {
		return fmt.Errorf("delete user data: %w", err)
	}
	if err := s.storage.DeleteUser(rec.ID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (s *UserService) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}
