// Package accounts creates API accounts and issues their tokens.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"patient-studies-server/internal/models"
	"patient-studies-server/internal/utils"
)

// ErrUsernameTaken is returned when creating an account whose username exists.
var ErrUsernameTaken = errors.New("a user with that username already exists")

// Service owns the account creation path.
type Service struct {
	DB  *gorm.DB
	Log zerolog.Logger
}

// NewService creates a new account Service.
func NewService(db *gorm.DB, log zerolog.Logger) *Service {
	return &Service{DB: db, Log: log}
}

// CreateOptions tunes CreateUser.
type CreateOptions struct {
	// Raw marks a bulk or fixture import: the row is stored as given and no
	// token is issued.
	Raw bool
}

// CreateUser inserts a new account. Unless opts.Raw is set, the account
// gets its token in the same transaction and the token is returned.
func (s *Service) CreateUser(ctx context.Context, user *models.User, opts CreateOptions) (*models.Token, error) {
	var token *models.Token
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		token, err = s.CreateUserTx(tx, user, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	return token, nil
}

// CreateUserTx is CreateUser inside a caller-owned transaction.
func (s *Service) CreateUserTx(tx *gorm.DB, user *models.User, opts CreateOptions) (*models.Token, error) {
	var existing int64
	if err := tx.Model(&models.User{}).Where("username = ?", user.Username).Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUsernameTaken, user.Username)
	}

	if user.DateJoined.IsZero() {
		user.DateJoined = time.Now().UTC()
	}
	if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if opts.Raw {
		return nil, nil
	}
	return s.issueToken(tx, user)
}

// SaveUser persists changes to an existing account. It never issues a token.
func (s *Service) SaveUser(ctx context.Context, user *models.User) error {
	if user.ID == 0 {
		return errors.New("cannot save a user that was never created")
	}
	return s.DB.WithContext(ctx).Omit(clause.Associations).Save(user).Error
}

func (s *Service) issueToken(tx *gorm.DB, user *models.User) (*models.Token, error) {
	key, err := utils.GenerateTokenKey()
	if err != nil {
		return nil, err
	}
	token := &models.Token{Key: key, UserID: user.ID, Created: time.Now().UTC()}
	if err := tx.Omit(clause.Associations).Create(token).Error; err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}
	user.Token = token

	s.Log.Info().Str("username", user.Username).Str("token", token.Key).Msg("issued api token")
	return token, nil
}

// Authenticate resolves a token key to its active account.
func (s *Service) Authenticate(ctx context.Context, key string) (*models.User, error) {
	var token models.Token
	if err := s.DB.WithContext(ctx).Preload("User").Where(clause.Eq{Column: clause.Column{Name: "key"}, Value: key}).First(&token).Error; err != nil {
		return nil, err
	}
	if !token.User.IsActive {
		return nil, errors.New("user inactive or deleted")
	}
	return &token.User, nil
}

// ErrInvalidCredentials is returned by ObtainToken for an unknown username,
// a wrong password or an inactive account.
var ErrInvalidCredentials = errors.New("unable to log in with provided credentials")

// ObtainToken checks a username and password and returns the account's
// token. An account imported without one gets it here, once.
func (s *Service) ObtainToken(ctx context.Context, username, password string) (*models.Token, error) {
	var token *models.Token
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Preload("Token").Where("username = ?", username).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidCredentials
			}
			return err
		}
		if !user.IsActive || !user.CheckPassword(password) {
			return ErrInvalidCredentials
		}
		if user.Token != nil {
			token = user.Token
			return nil
		}
		var err error
		token, err = s.issueToken(tx, &user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return token, nil
}
