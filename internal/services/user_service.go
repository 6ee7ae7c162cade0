package services

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wavefeed/wavefeed-be/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUserByID(id string) (models.User, error)
	Register(name, email, password string, dateOfBirth *time.Time, gender *string) (models.User, error)
	AuthenticateUser(email, password string) (models.User, error)
}

// UserService provides business logic for user management.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT id, name, email, username, role, date_of_birth, gender, created_at FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Username, &user.Role, &user.DateOfBirth, &user.Gender, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// GetUserByEmail retrieves a single user by their email, including the password hash.
func (s *UserService) GetUserByEmail(email string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT id, name, email, username, password_hash, role, date_of_birth, gender, created_at FROM users WHERE email = ?", email)
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Username, &user.PasswordHash, &user.Role, &user.DateOfBirth, &user.Gender, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// Register creates a new user with a hashed password and a generated
// username. Every account starts with the "user" role; moderators are
// promoted out of band.
func (s *UserService) Register(name, email, password string, dateOfBirth *time.Time, gender *string) (models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         models.RoleUser,
		DateOfBirth:  dateOfBirth,
		Gender:       gender,
		CreatedAt:    time.Now().UTC(),
	}

	// Generated usernames can collide; pick a fresh one and retry.
	for attempt := 0; attempt < 5; attempt++ {
		user.Username = randomUsername()
		_, err = s.db.Exec(
			"INSERT INTO users(id, name, email, username, password_hash, role, date_of_birth, gender, created_at) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)",
			user.ID, user.Name, user.Email, user.Username, user.PasswordHash, user.Role, user.DateOfBirth, user.Gender, user.CreatedAt,
		)
		if err == nil {
			user.PasswordHash = ""
			return user, nil
		}
		if strings.Contains(err.Error(), "users.email") {
			return models.User{}, ErrEmailTaken
		}
		if !strings.Contains(err.Error(), "users.username") {
			return models.User{}, err
		}
	}
	return models.User{}, fmt.Errorf("could not find a free username: %w", err)
}

// AuthenticateUser verifies a user's credentials.
func (s *UserService) AuthenticateUser(email, password string) (models.User, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		if err == ErrUserNotFound {
			return models.User{}, ErrBadCredentials
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrBadCredentials
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}
