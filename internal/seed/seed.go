// Package seed bootstraps a usable local environment.
package seed

import (
	"context"
	"errors"
	"time"

	companydomain "github.com/adlift/cashout/internal/company/domain"
	pkgdb "github.com/adlift/cashout/pkg/db"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

const (
	defaultCompanyName = "Demo Media SA"
	defaultUserID      = "demo-user"
)

// EnsureDefaultCompany creates a demo company with one member so the API is
// exercisable out of the box. Safe to call repeatedly.
func EnsureDefaultCompany(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing companydomain.Company
		err := tx.First(&existing, "name = ?", defaultCompanyName).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now().UTC()
		company := companydomain.Company{
			ID:        node.Generate(),
			Name:      defaultCompanyName,
			Region:    "ec",
			CreatedAt: now,
		}
		if err := tx.Create(&company).Error; err != nil {
			return err
		}
		err = tx.Create(&companydomain.Membership{
			CompanyID: company.ID,
			UserID:    defaultUserID,
			CreatedAt: now,
		}).Error
		if pkgdb.IsDuplicateKeyErr(err) {
			// Another replica seeded first.
			return nil
		}
		return err
	})
}
