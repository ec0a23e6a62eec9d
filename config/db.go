package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hotel-pms/models"
	"hotel-pms/utils"
)

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	// stay dates are stored as DATE and compared as UTC midnights
	if q.Get("loc") == "" {
		q.Set("loc", "UTC")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}

func resolveMySQLDSN() (string, error) {
	raw := strings.TrimSpace(os.Getenv("MYSQL_URL"))
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, nil
	}

	user := utils.EnvOrDefault("DB_USER", "root")
	pass := utils.EnvOrDefault("DB_PASS", "")
	host := utils.EnvOrDefault("DB_HOST", "127.0.0.1")
	port := utils.EnvOrDefault("DB_PORT", "3306")
	dbName := utils.EnvOrDefault("DB_NAME", "hotel_pms")

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		user, pass, host, port, dbName,
	), nil
}

func resolvePostgresDSN() string {
	if raw := strings.TrimSpace(os.Getenv("DATABASE_URL")); raw != "" {
		return raw
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		utils.EnvOrDefault("DB_HOST", "127.0.0.1"),
		utils.EnvOrDefault("DB_USER", "postgres"),
		utils.EnvOrDefault("DB_PASS", ""),
		utils.EnvOrDefault("DB_NAME", "hotel_pms"),
		utils.EnvOrDefault("DB_PORT", "5432"),
		utils.EnvOrDefault("DB_SSLMODE", "disable"),
	)
}

func dialector(driver string) (gorm.Dialector, error) {
	switch driver {
	case "mysql", "":
		dsn, err := resolveMySQLDSN()
		if err != nil {
			return nil, err
		}
		return mysql.Open(dsn), nil
	case "postgres", "postgresql":
		return postgres.Open(resolvePostgresDSN()), nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
}

// ConnectDatabase opens the configured SQL database, migrates the schema and
// installs the PostgreSQL overlap constraint.
func ConnectDatabase(cfg Config, log logrus.FieldLogger) (*gorm.DB, error) {
	dial, err := dialector(cfg.DBDriver)
	if err != nil {
		return nil, err
	}

	gormLogger := logger.New(
		log.WithField("component", "gorm"),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(dial, &gorm.Config{
		Logger:  gormLogger,
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	// AutoMigrate in parent->child order
	if err := db.AutoMigrate(
		&models.Hotel{},
		&models.Sequence{},
		&models.Floor{},
		&models.RoomType{},
		&models.Room{},
		&models.Guest{},
		&models.Reservation{},
		&models.CheckInRecord{},
		&models.CheckOutRecord{},
		&models.ServiceRequest{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.Payment{},
	); err != nil {
		return nil, errors.Wrap(err, "auto migrate")
	}

	if db.Dialector.Name() == "postgres" {
		ensureOverlapConstraint(db, cfg.ReleaseNoShowRooms, log)
	}
	return db, nil
}

const overlapConstraint = "reservations_no_overlap"

// ensureOverlapConstraint (re)creates the exclusion constraint that stops
// two blocking reservations of one room from sharing a night. Its filter
// follows the no-show policy, so it is rebuilt on every start.
func ensureOverlapConstraint(db *gorm.DB, releaseNoShows bool, log logrus.FieldLogger) {
	nonBlocking := "'CANCELLED'"
	if releaseNoShows {
		nonBlocking = "'CANCELLED', 'NO_SHOW'"
	}
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS btree_gist`,
		`ALTER TABLE reservations DROP CONSTRAINT IF EXISTS ` + overlapConstraint,
		`ALTER TABLE reservations ADD CONSTRAINT ` + overlapConstraint + ` EXCLUDE USING gist (
			room_id WITH =,
			daterange(check_in_date, check_out_date, '[)') WITH &&
		) WHERE (status NOT IN (` + nonBlocking + `) AND deleted_at IS NULL)`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			log.WithError(err).Warn("overlap constraint not installed; relying on row locks")
			return
		}
	}
	log.Info("reservation overlap constraint installed")
}
