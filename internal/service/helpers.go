package service

import (
	"errors"

	"gorm.io/gorm"

	"lifehub/internal/dto"
	"lifehub/internal/model"
	"lifehub/pkg/apperror"
)

func translateDBError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperror.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperror.ErrConflict
	}
	return err
}

func toAuthorResponse(user model.User) dto.AuthorResponse {
	return dto.AuthorResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
}

func toUserResponse(user *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
	}
}
