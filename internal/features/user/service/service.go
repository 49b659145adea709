package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"carbon-forest-backend/internal/common/apperr"
	"carbon-forest-backend/internal/common/logger"
	carriermodels "carbon-forest-backend/internal/features/carrier/models"
	carrierservice "carbon-forest-backend/internal/features/carrier/service"
	energyservice "carbon-forest-backend/internal/features/energy/service"
	"carbon-forest-backend/internal/features/user/models"
	"carbon-forest-backend/internal/features/user/repository"
	"carbon-forest-backend/internal/platform/db"
)

// Service is the identity provider: registration, login and the profile
// aggregate.
type Service struct {
	db       *db.DB
	repo     repository.Repository
	ledger   *energyservice.Ledger
	balls    *energyservice.BallService
	carriers *carrierservice.Service

	jwtSecret string
	tokenTTL  time.Duration
	now       func() time.Time
}

func New(d *db.DB, repo repository.Repository, ledger *energyservice.Ledger,
	balls *energyservice.BallService, carriers *carrierservice.Service,
	jwtSecret string, tokenTTL time.Duration) *Service {
	return &Service{
		db:        d,
		repo:      repo,
		ledger:    ledger,
		balls:     balls,
		carriers:  carriers,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}
}

// Register creates the user together with their carbon account and a
// stage-1 tree carrier; all three rows commit together.
func (s *Service) Register(ctx context.Context, username, email, password, nickname string) (*models.AuthResult, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	if len(username) < 3 || len(username) > 32 {
		return nil, ErrInvalidUsername
	}
	if !strings.Contains(email, "@") || len(email) < 5 {
		return nil, ErrInvalidEmail
	}
	if len(password) < 6 {
		return nil, ErrWeakPassword
	}

	taken, err := s.repo.UsernameOrEmailTaken(ctx, username, email)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	if taken {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "internal storage error", err)
	}

	now := s.now()
	if nickname == "" {
		nickname = username
	}
	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		Nickname:     nickname,
		UserType:     models.TypePersonal,
		CreatedAt:    now,
		PasswordHash: string(hash),
	}

	err = s.db.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateUser(ctx, &user); err != nil {
			return apperr.Storage(err)
		}
		if err := s.ledger.CreateAccount(ctx, user.ID); err != nil {
			return err
		}
		if _, err := s.carriers.Create(ctx, user.ID, carriermodels.KindTree); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	token, err := issueToken(s.jwtSecret, user.ID, s.tokenTTL, now)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "internal storage error", err)
	}
	logger.Info().Str("user_id", user.ID).Str("username", username).Msg("User registered")
	return &models.AuthResult{User: user, Token: token}, nil
}

// Login verifies the password and issues a fresh token. Unknown user and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (*models.AuthResult, error) {
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, apperr.Storage(err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	token, err := issueToken(s.jwtSecret, user.ID, s.tokenTTL, s.now())
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "internal storage error", err)
	}
	return &models.AuthResult{User: *user, Token: token}, nil
}

// Profile aggregates the user with their account, carrier evaluation,
// available balls and today's collected energy.
func (s *Service) Profile(ctx context.Context, userID string) (*models.Profile, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	profile := models.Profile{User: *user}

	account, err := s.ledger.Account(ctx, userID)
	if err != nil && !errors.Is(err, energyservice.ErrAccountNotFound) {
		return nil, err
	}
	profile.Account = account

	eval, err := s.carriers.Evaluate(ctx, userID)
	if err != nil && !errors.Is(err, carrierservice.ErrCarrierNotFound) {
		return nil, err
	}
	profile.Carrier = eval

	balls, err := s.balls.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.Balls = balls

	today, err := s.balls.TodayEnergy(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.TodayEnergy = today
	return &profile, nil
}
