package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wavefeed/wavefeed-be/internal/auth"
	"github.com/wavefeed/wavefeed-be/internal/services"
)

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	service services.UserServiceProvider
	tokens  *auth.TokenIssuer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service services.UserServiceProvider, tokens *auth.TokenIssuer) *AuthHandler {
	return &AuthHandler{service: service, tokens: tokens}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DateOfBirth string `json:"dateOfBirth"`
	Gender      string `json:"gender"`
}

// AuthPayload defines the structure for login requests.
type AuthPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles new user registration. On success the response is
// the same {token} shape login returns.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondErrors(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var msgs []string
	if payload.Name == "" {
		msgs = append(msgs, "Name is required")
	}
	if _, err := mail.ParseAddress(payload.Email); err != nil {
		msgs = append(msgs, "Please include a valid email")
	}
	if len(payload.Password) < 6 {
		msgs = append(msgs, "Please enter a password with 6 or more characters")
	}
	var gender *string
	if payload.Gender != "" {
		switch payload.Gender {
		case "Male", "Female", "Other":
			gender = &payload.Gender
		default:
			msgs = append(msgs, "Gender must be Male, Female, or Other")
		}
	}
	var dateOfBirth *time.Time
	if payload.DateOfBirth != "" {
		parsed, err := parseDate(payload.DateOfBirth)
		if err != nil {
			msgs = append(msgs, "Date of birth must be a valid date")
		} else {
			dateOfBirth = &parsed
		}
	}
	if len(msgs) > 0 {
		respondErrors(w, http.StatusBadRequest, msgs...)
		return
	}

	user, err := h.service.Register(payload.Name, payload.Email, payload.Password, dateOfBirth, gender)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			respondErrors(w, http.StatusBadRequest, "User already exists")
			return
		}
		log.Error().Err(err).Str("email", payload.Email).Msg("Failed to register user")
		respondMsg(w, http.StatusInternalServerError, "Server error")
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to sign token")
		respondMsg(w, http.StatusInternalServerError, "Server error")
		return
	}

	log.Info().Str("email", user.Email).Str("username", user.Username).Msg("User registered")
	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Login handles user authentication and token generation.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload AuthPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondErrors(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var msgs []string
	if _, err := mail.ParseAddress(payload.Email); err != nil {
		msgs = append(msgs, "Please include a valid email")
	}
	if payload.Password == "" {
		msgs = append(msgs, "Password is required")
	}
	if len(msgs) > 0 {
		respondErrors(w, http.StatusBadRequest, msgs...)
		return
	}

	user, err := h.service.AuthenticateUser(payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrBadCredentials) {
			respondErrors(w, http.StatusBadRequest, "Invalid Credentials")
			return
		}
		log.Error().Err(err).Str("email", payload.Email).Msg("Failed to authenticate user")
		respondMsg(w, http.StatusInternalServerError, "Server error")
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to sign token")
		respondMsg(w, http.StatusInternalServerError, "Server error")
		return
	}

	log.Info().Str("email", user.Email).Msg("User logged in")
	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Logout acknowledges a logout. Tokens are stateless, so the client
// simply discards its copy; there is nothing to revoke server-side.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if callerID, ok := auth.CallerID(r.Context()); ok {
		log.Info().Str("user_id", callerID).Msg("User logged out")
	}
	respondMsg(w, http.StatusOK, "Logged out successfully")
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
