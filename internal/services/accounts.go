package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inkwell/internal/logger"
	"inkwell/internal/models"
	"inkwell/internal/utils"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const minPasswordLength = 8

// validate shares gin's binding rules so services and handlers agree.
var validate = validator.New()

// reservedUsernames would shadow top-level routes.
var reservedUsernames = map[string]bool{
	"posts": true, "comments": true, "likes": true, "follow": true,
	"notifications": true, "profile": true, "profiles": true,
	"login": true, "logout": true, "me": true, "register": true, "health": true, "static": true,
}

type RegisterInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

type ProfileInput struct {
	BlogTitle string
	Bio       string
	City      string
	Country   string
	Website   string
	Twitter   string
	Github    string
}

type AccountService struct {
	db *gorm.DB
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db}
}

func (in *RegisterInput) normalize() error {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	if err := validate.Var(in.Email, "required,email"); err != nil {
		return validationError("please provide a valid email")
	}
	switch {
	case in.Username == "":
		return validationError("please provide a valid username")
	case !utils.IsSlug(in.Username) || len(in.Username) > 50:
		return validationError("invalid username")
	case reservedUsernames[in.Username]:
		return validationError("username %q is reserved", in.Username)
	case in.FirstName == "":
		return validationError("please provide a first name")
	case in.LastName == "":
		return validationError("please provide a last name")
	case len(in.Password) < minPasswordLength:
		return validationError("password must be at least %d characters", minPasswordLength)
	}
	return nil
}

// Register creates an account and its profile in one transaction; neither
// exists without the other.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.Profile, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var profile models.Profile
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.Account{}).
			Where("email = ? OR username = ?", in.Email, in.Username).
			Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return ErrConflict
		}

		account := models.Account{
			Email:     in.Email,
			Username:  in.Username,
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Password:  hash,
		}
		if err := tx.Create(&account).Error; err != nil {
			return err
		}

		profile = models.Profile{AccountID: account.ID}
		if err := tx.Omit("Account").Create(&profile).Error; err != nil {
			return err
		}
		profile.Account = account
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrConflict) || isUniqueViolation(err):
		return nil, fmt.Errorf("%w: email or username is already registered", ErrConflict)
	default:
		return nil, fmt.Errorf("failed to register account: %w", err)
	}

	logger.Ctx(ctx).Info().
		Uint(logger.FieldProfileID, profile.ID).
		Str(logger.FieldUsername, profile.Account.Username).
		Msg("account registered")
	return &profile, nil
}

// Authenticate checks an email/password pair and returns the profile.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.Profile, error) {
	var account models.Account
	err := s.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&account).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	if !utils.CheckPasswordHash(password, account.Password) {
		return nil, ErrInvalidCredentials
	}
	return s.ProfileByAccountID(ctx, account.ID)
}

func (s *AccountService) ProfileByAccountID(ctx context.Context, accountID uint) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.WithContext(ctx).Preload("Account").
		Where("account_id = ?", accountID).
		First(&profile).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return &profile, nil
}

func (s *AccountService) ProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	return profileByUsername(s.db.WithContext(ctx), username)
}

// profileByUsername works on either the root handle or a transaction.
func profileByUsername(tx *gorm.DB, username string) (*models.Profile, error) {
	var account models.Account
	err := tx.Where("username = ?", strings.ToLower(username)).First(&account).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	var profile models.Profile
	if err := tx.Where("account_id = ?", account.ID).First(&profile).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	profile.Account = account
	return &profile, nil
}

// UpdateProfile replaces the editable profile fields of the requester.
func (s *AccountService) UpdateProfile(ctx context.Context, requester *models.Profile, in ProfileInput) (*models.Profile, error) {
	if requester == nil {
		return nil, ErrAuthenticationRequired
	}

	country := strings.ToUpper(strings.TrimSpace(in.Country))
	if country != "" && (len(country) != 2 || models.CountryName(country) == country) {
		return nil, validationError("unknown country code %q", in.Country)
	}

	updates := map[string]interface{}{
		"blog_title": strings.TrimSpace(in.BlogTitle),
		"bio":        strings.TrimSpace(in.Bio),
		"city":       strings.TrimSpace(in.City),
		"country":    country,
		"website":    strings.TrimSpace(in.Website),
		"twitter":    strings.TrimPrefix(strings.TrimSpace(in.Twitter), "@"),
		"github":     strings.TrimSpace(in.Github),
	}
	err := s.db.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ?", requester.ID).
		Updates(updates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.ProfileByAccountID(ctx, requester.AccountID)
}
