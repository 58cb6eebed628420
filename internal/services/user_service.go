package services

import (
	"context"
	"fmt"
	"math/rand"

	"cricketbet/internal/apperr"
	"cricketbet/internal/models"
	"cricketbet/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	store      repository.Store
	logger     zerolog.Logger
	bcryptCost int
}

func NewUserService(store repository.Store, logger zerolog.Logger) *UserService {
	return &UserService{
		store:      store,
		logger:     logger,
		bcryptCost: bcrypt.DefaultCost,
	}
}

func (s *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error hashing password")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Phone:        req.Phone,
		PasswordHash: string(hashedPassword),
		Name:         fmt.Sprintf("User%d", rand.Intn(1000)),
		Balance:      decimal.Zero,
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("User registered successfully")
	return user, nil
}

func (s *UserService) Authenticate(ctx context.Context, req *models.LoginRequest) (*models.User, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	invalid := apperr.New(apperr.KindUnauthorized, "invalid credentials")
	user, err := s.store.Users().GetByPhone(ctx, req.Phone)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn().Str("user_id", user.ID).Msg("Failed authentication attempt")
		return nil, invalid
	}

	s.logger.Info().Str("user_id", user.ID).Msg("User authenticated successfully")
	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	return s.store.Users().GetByID(ctx, userID)
}

func (s *UserService) UpdateProfile(ctx context.Context, req *models.ProfileRequest) (*models.User, error) {
	if req.UserID == "" {
		return nil, apperr.Validation("userId is required")
	}
	if req.BankInfo == nil && (req.CryptoWallet == nil || *req.CryptoWallet == "") {
		return s.store.Users().GetByID(ctx, req.UserID)
	}

	wallet := req.CryptoWallet
	if wallet != nil && *wallet == "" {
		wallet = nil
	}
	user, err := s.store.Users().UpdateProfile(ctx, req.UserID, req.BankInfo, wallet)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("Profile updated")
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.store.Users().List(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, nil
}

func (s *UserService) DeleteUser(ctx context.Context, phone string) error {
	if phone == "" {
		return apperr.Validation("phone is required")
	}
	if err := s.store.Users().DeleteByPhone(ctx, phone); err != nil {
		return err
	}
	s.logger.Info().Str("phone", phone).Msg("User deleted")
	return nil
}
