package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"lifehub/internal/dto"
	"lifehub/internal/model"
	"lifehub/internal/policy"
	"lifehub/internal/repository"
	"lifehub/pkg/apperror"
	"lifehub/pkg/token"
)

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenPairResponse, error)
	Refresh(ctx context.Context, req dto.RefreshRequest) (*dto.AccessTokenResponse, error)
	Logout(ctx context.Context, req dto.RefreshRequest) error
	Profile(ctx context.Context, actor policy.Actor) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, actor policy.Actor, req dto.UpdateProfileRequest) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, actor policy.Actor, req dto.ChangePasswordRequest) error
}

type authService struct {
	users     repository.UserRepository
	tokens    *token.Manager
	blacklist token.Blacklist
}

func NewAuthService(users repository.UserRepository, tokens *token.Manager, blacklist token.Blacklist) AuthService {
	return &authService{
		users:     users,
		tokens:    tokens,
		blacklist: blacklist,
	}
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserResponse, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        req.Email,
		PasswordHash: string(hashed),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         model.RoleUser,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: email already registered", apperror.ErrConflict)
		}
		return nil, err
	}

	return toUserResponse(user), nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenPairResponse, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", apperror.ErrUnauthorized)
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, fmt.Errorf("%w: account disabled", apperror.ErrUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", apperror.ErrUnauthorized)
	}

	access, err := s.tokens.IssueAccess(user)
	if err != nil {
		return nil, err
	}
	refresh, _, err := s.tokens.IssueRefresh(user.ID)
	if err != nil {
		return nil, err
	}

	return &dto.TokenPairResponse{Access: access, Refresh: refresh}, nil
}

func (s *authService) Refresh(ctx context.Context, req dto.RefreshRequest) (*dto.AccessTokenResponse, error) {
	claims, err := s.tokens.ParseRefresh(req.Refresh)
	if err != nil {
		return nil, err
	}

	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, fmt.Errorf("%w: token revoked", apperror.ErrUnauthorized)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperror.ErrUnauthorized
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, apperror.ErrUnauthorized
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account disabled", apperror.ErrUnauthorized)
	}

	access, err := s.tokens.IssueAccess(user)
	if err != nil {
		return nil, err
	}
	return &dto.AccessTokenResponse{Access: access}, nil
}

func (s *authService) Logout(ctx context.Context, req dto.RefreshRequest) error {
	claims, err := s.tokens.ParseRefresh(req.Refresh)
	if err != nil {
		return err
	}

	// Keep the jti blacklisted only as long as the token itself could live.
	ttl := time.Until(claims.ExpiresAt.Time)
	return s.blacklist.Revoke(ctx, claims.ID, ttl)
}

func (s *authService) Profile(ctx context.Context, actor policy.Actor) (*dto.UserResponse, error) {
	if !actor.Authenticated() {
		return nil, apperror.ErrUnauthorized
	}
	user, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, translateDBError(err)
	}
	return toUserResponse(user), nil
}

func (s *authService) UpdateProfile(ctx context.Context, actor policy.Actor, req dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	if !actor.Authenticated() {
		return nil, apperror.ErrUnauthorized
	}

	user, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, translateDBError(err)
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}

	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

func (s *authService) ChangePassword(ctx context.Context, actor policy.Actor, req dto.ChangePasswordRequest) error {
	if !actor.Authenticated() {
		return apperror.ErrUnauthorized
	}

	user, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return translateDBError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		ve := apperror.NewValidation()
		ve.Add("old_password", "old password does not match")
		return ve
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.PasswordHash = string(hashed)
	return s.users.Save(ctx, user)
}
