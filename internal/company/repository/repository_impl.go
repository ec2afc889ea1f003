package repository

import (
	"context"
	"errors"

	"github.com/adlift/cashout/internal/company/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) GetByID(ctx context.Context, id snowflake.ID) (domain.Company, error) {
	var company domain.Company
	err := r.db.WithContext(ctx).First(&company, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Company{}, domain.ErrNotFound
		}
		return domain.Company{}, err
	}
	return company, nil
}

func (r *repo) CompanyForUser(ctx context.Context, userID string) (snowflake.ID, error) {
	var membership domain.Membership
	err := r.db.WithContext(ctx).First(&membership, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, domain.ErrNoMembership
		}
		return 0, err
	}
	return membership.CompanyID, nil
}

func (r *repo) RegionsForCompanies(ctx context.Context, ids []snowflake.ID) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var regions []string
	err := r.db.WithContext(ctx).Model(&domain.Company{}).
		Distinct("region").
		Where("id IN ?", ids).
		Pluck("region", &regions).Error
	if err != nil {
		return nil, err
	}
	return regions, nil
}
