package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"time"

	"go-smartretail-api/internal/model"
	"go-smartretail-api/internal/repository"
	"go-smartretail-api/pkg/jwt"
	"go-smartretail-api/pkg/validator"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(req *RegisterRequest) (*AuthResponse, error)
	Login(req *LoginRequest) (*AuthResponse, error)
	Refresh(refreshToken string) (*TokenResponse, error)
	GetProfile(userID uint) (*model.UserResponse, error)
	UpdateProfile(userID uint, req *UpdateProfileRequest) (*model.UserResponse, error)
	ChangePassword(userID uint, req *ChangePasswordRequest) error
	GenerateAPIKey(userID uint, req *CreateAPIKeyRequest) (*model.ApiKey, error)
	ListAPIKeys(userID uint) ([]model.ApiKey, error)
	RevokeAPIKey(userID, keyID uint) error
	AuthenticateAPIKey(apiKey string) (*model.ApiKey, error)
}

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Username  string `json:"username" validate:"required,min=3,max=100"`
	Password  string `json:"password" validate:"required,min=8"`
	StoreName string `json:"store_name" validate:"required"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	StoreName *string `json:"store_name"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

type CreateAPIKeyRequest struct {
	KeyName       string `json:"key_name"`
	ExpiresInDays *int   `json:"expires_in_days" validate:"omitempty,gte=1"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    string `json:"expires_in"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   string `json:"expires_in"`
}

type AuthResponse struct {
	User   model.UserResponse `json:"user"`
	Tokens TokenPair          `json:"tokens"`
}

type authService struct {
	userRepo   repository.UserRepository
	apiKeyRepo repository.ApiKeyRepository
}

func NewAuthService(userRepo repository.UserRepository, apiKeyRepo repository.ApiKeyRepository) AuthService {
	return &authService{
		userRepo:   userRepo,
		apiKeyRepo: apiKeyRepo,
	}
}

func (s *authService) Register(req *RegisterRequest) (*AuthResponse, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, firstValidationError(errs)
	}

	if existing, _ := s.userRepo.FindByEmail(req.Email); existing != nil {
		return nil, ErrEmailExists
	}
	if existing, _ := s.userRepo.FindByUsername(req.Username); existing != nil {
		return nil, ErrUsernameExists
	}

	user := &model.User{
		Email:     req.Email,
		Username:  req.Username,
		StoreName: req.StoreName,
		Role:      model.RoleAdmin,
		IsActive:  true,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	return s.buildAuthResponse(user)
}

func (s *authService) Login(req *LoginRequest) (*AuthResponse, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, firstValidationError(errs)
	}

	user, err := s.userRepo.FindByUsername(req.Username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}
	if !user.CheckPassword(req.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.buildAuthResponse(user)
}

func (s *authService) buildAuthResponse(user *model.User) (*AuthResponse, error) {
	accessToken, err := jwt.GenerateAccessToken(user.UserID, user.Email)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}
	refreshToken, err := jwt.GenerateRefreshToken(user.UserID)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &AuthResponse{
		User: user.ToResponse(),
		Tokens: TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			TokenType:    "Bearer",
			ExpiresIn:    jwt.AccessExpiresIn,
		},
	}, nil
}

func (s *authService) Refresh(refreshToken string) (*TokenResponse, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefresh
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, ErrInvalidRefresh
	}
	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}

	accessToken, err := jwt.GenerateAccessToken(user.UserID, user.Email)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   jwt.AccessExpiresIn,
	}, nil
}

func (s *authService) GetProfile(userID uint) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *authService) UpdateProfile(userID uint, req *UpdateProfileRequest) (*model.UserResponse, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, firstValidationError(errs)
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && *req.Email != user.Email {
		if existing, _ := s.userRepo.FindByEmail(*req.Email); existing != nil {
			return nil, ErrEmailExists
		}
		user.Email = *req.Email
	}
	if req.StoreName != nil && *req.StoreName != "" {
		user.StoreName = *req.StoreName
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *authService) ChangePassword(userID uint, req *ChangePasswordRequest) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return firstValidationError(errs)
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return err
	}
	if !user.CheckPassword(req.CurrentPassword) {
		return ErrWrongPassword
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(userID, user.PasswordHash)
}

// GenerateAPIKey mints an sk_-prefixed random key for programmatic access
func (s *authService) GenerateAPIKey(userID uint, req *CreateAPIKeyRequest) (*model.ApiKey, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, firstValidationError(errs)
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}

	key := &model.ApiKey{
		UserID:      userID,
		APIKey:      "sk_" + hex.EncodeToString(raw),
		KeyName:     req.KeyName,
		Permissions: datatypes.JSON([]byte("{}")),
		IsActive:    true,
	}
	if req.ExpiresInDays != nil {
		expiry := time.Now().AddDate(0, 0, *req.ExpiresInDays)
		key.ExpiresAt = &expiry
	}

	if err := s.apiKeyRepo.Create(key); err != nil {
		return nil, err
	}
	return key, nil
}

func (s *authService) ListAPIKeys(userID uint) ([]model.ApiKey, error) {
	return s.apiKeyRepo.FindAllByUser(userID)
}

func (s *authService) RevokeAPIKey(userID, keyID uint) error {
	if err := s.apiKeyRepo.Deactivate(userID, keyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrKeyNotFound
		}
		return err
	}
	return nil
}

// AuthenticateAPIKey resolves an X-API-Key header value to its owning key
// record, enforcing revocation, expiry and account state.
func (s *authService) AuthenticateAPIKey(apiKey string) (*model.ApiKey, error) {
	key, err := s.apiKeyRepo.FindActiveByKey(apiKey)
	if err != nil {
		return nil, ErrKeyInvalid
	}
	if key.IsExpired() {
		return nil, ErrKeyExpired
	}
	if key.User == nil || !key.User.IsActive {
		return nil, ErrAccountDeactivated
	}

	// Touch last_used_at without blocking the request
	go func(keyID uint) {
		if err := s.apiKeyRepo.TouchLastUsed(keyID); err != nil {
			log.Printf("failed to update API key last_used_at: %v", err)
		}
	}(key.KeyID)

	return key, nil
}
