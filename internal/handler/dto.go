package handler

import (
	"time"

	"github.com/msomdec/catalog-admin/internal/domain"
)

// UserDTO is the JSON representation of a user.
type UserDTO struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

// CategoryDTO is the JSON representation of a category.
type CategoryDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
	// MaterialCount is only filled in on single-category lookups.
	MaterialCount *int `json:"materialCount,omitempty"`
}

func toCategoryDTO(c *domain.Category) CategoryDTO {
	return CategoryDTO{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
	}
}

func toCategoryDTOs(categories []domain.Category) []CategoryDTO {
	dtos := make([]CategoryDTO, len(categories))
	for i := range categories {
		dtos[i] = toCategoryDTO(&categories[i])
	}
	return dtos
}

// MaterialImageDTO is the JSON representation of a material image.
type MaterialImageDTO struct {
	ID        int64  `json:"id"`
	ImageURL  string `json:"imageUrl"`
	IsCover   bool   `json:"isCover"`
	SortOrder int    `json:"sortOrder"`
}

// MaterialDTO is the JSON representation of a material.
type MaterialDTO struct {
	ID           int64              `json:"id"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	CategoryID   *int64             `json:"categoryId"`
	CategoryName string             `json:"categoryName,omitempty"`
	IsPublished  bool               `json:"isPublished"`
	CoverURL     string             `json:"coverUrl"`
	Images       []MaterialImageDTO `json:"images"`
	CreatedAt    string             `json:"createdAt"`
}

func toMaterialDTO(m *domain.Material) MaterialDTO {
	dto := MaterialDTO{
		ID:           m.ID,
		Title:        m.Title,
		Description:  m.Description,
		CategoryID:   m.CategoryID,
		CategoryName: m.CategoryName,
		IsPublished:  m.IsPublished,
		Images:       make([]MaterialImageDTO, len(m.Images)),
		CreatedAt:    m.CreatedAt.Format(time.RFC3339),
	}
	if cover := m.Cover(); cover != nil {
		dto.CoverURL = cover.ImageURL
	}
	for i, img := range m.Images {
		dto.Images[i] = MaterialImageDTO{
			ID:        img.ID,
			ImageURL:  img.ImageURL,
			IsCover:   img.IsCover,
			SortOrder: img.SortOrder,
		}
	}
	return dto
}

func toMaterialDTOs(materials []domain.Material) []MaterialDTO {
	dtos := make([]MaterialDTO, len(materials))
	for i := range materials {
		dtos[i] = toMaterialDTO(&materials[i])
	}
	return dtos
}

// SecretDTO is the JSON representation of a registration key.
type SecretDTO struct {
	ID        int64   `json:"id"`
	Secret    string  `json:"secret"`
	IsUsed    bool    `json:"isUsed"`
	UserID    *int64  `json:"userId"`
	CreatedAt string  `json:"createdAt"`
	UsedAt    *string `json:"usedAt"`
}

func toSecretDTOs(secrets []domain.RegisterSecret) []SecretDTO {
	dtos := make([]SecretDTO, len(secrets))
	for i, s := range secrets {
		dtos[i] = SecretDTO{
			ID:        s.ID,
			Secret:    s.Secret,
			IsUsed:    s.IsUsed,
			UserID:    s.UserID,
			CreatedAt: s.CreatedAt.Format(time.RFC3339),
		}
		if s.UsedAt != nil {
			usedAt := s.UsedAt.Format(time.RFC3339)
			dtos[i].UsedAt = &usedAt
		}
	}
	return dtos
}
