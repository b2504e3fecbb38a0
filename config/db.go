package config

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Hasan-Al-Banna-Nahid/retreat/models"
)

const defaultAdminPassword = "admin123"

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
	if q.Get("loc") == "" {
		q.Set("loc", "UTC")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}

// MySQLDSN prefers MYSQL_URL, then DATABASE_URL, then the discrete DB_* settings.
func (c Server) MySQLDSN() (string, error) {
	raw := strings.TrimSpace(c.MySQLURL)
	if raw == "" {
		raw = strings.TrimSpace(c.DBURL)
	}
	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, nil
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName,
	), nil
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	}
	return logger.Warn
}

// OpenDatabase connects with the configured driver. SQLite is meant for local
// runs and tests; it is held to a single connection.
func OpenDatabase(c Server) (*gorm.DB, error) {
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogLevel(c.DBLogLevel),
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	var dialector gorm.Dialector
	switch strings.ToLower(c.DBDriver) {
	case "sqlite":
		dialector = sqlite.Open(c.SQLitePath)
	case "mysql", "":
		dsn, err := c.MySQLDSN()
		if err != nil {
			return nil, err
		}
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  newLogger,
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(c.DBDriver, "sqlite") {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Admin{},
		&models.Venue{},
		&models.Booking{},
	)
}

// SeedDatabase makes sure an approver account exists.
func SeedDatabase(ctx context.Context, db *gorm.DB, c Server) error {
	var existing models.Admin
	err := db.WithContext(ctx).Where("username = ?", c.AdminUsername).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	password := c.AdminPassword
	if password == "" {
		password = defaultAdminPassword
		log.Printf("warning: ADMIN_PASSWORD not set, seeding %s with the default password", c.AdminUsername)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := models.Admin{
		FullName: "Admin User",
		Username: c.AdminUsername,
		Password: string(hash),
		Role:     models.RoleApprover,
	}
	if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
		return fmt.Errorf("create default admin: %w", err)
	}
	log.Println("Default admin seeded")
	return nil
}

// ConnectDatabase opens, migrates and seeds the database.
func ConnectDatabase(ctx context.Context, c Server) (*gorm.DB, error) {
	db, err := OpenDatabase(c)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := SeedDatabase(ctx, db, c); err != nil {
		return nil, err
	}
	return db, nil
}
