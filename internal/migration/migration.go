package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	auditdomain "github.com/adlift/cashout/internal/audittrail/domain"
	billingdomain "github.com/adlift/cashout/internal/billingrequest/domain"
	companydomain "github.com/adlift/cashout/internal/company/domain"
	gamificationdomain "github.com/adlift/cashout/internal/gamification/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

//go:embed migrations
var embeddedMigrations embed.FS

const migrationsDir = "migrations"

// RunMigrations applies the versioned postgres migrations. All core billing
// tables are created automatically on startup.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}

// AutoMigrate creates the schema from the gorm models, for the mysql and
// sqlite dialects the versioned migrations do not cover.
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&companydomain.Company{},
		&companydomain.Membership{},
		&billingdomain.BillingRequest{},
		&auditdomain.AuditEntry{},
		&gamificationdomain.PlatformUser{},
		&gamificationdomain.GamificationState{},
	)
}
