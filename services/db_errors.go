package services

import (
	"errors"
	"strings"

	mysql "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"github.com/Hasan-Al-Banna-Nahid/retreat/models"
)

// MySQL error numbers.
const (
	mysqlDuplicateEntry  = 1062
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452
)

func isForeignKeyError(err error) bool {
	if err == nil {
		return false
	}
	var merr *mysql.MySQLError
	if errors.As(err, &merr) {
		return merr.Number == mysqlRowIsReferenced || merr.Number == mysqlNoReferencedRow
	}
	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "foreign key")
}

func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var merr *mysql.MySQLError
	if errors.As(err, &merr) {
		return merr.Number == mysqlDuplicateEntry
	}
	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "duplicate") || strings.Contains(lower, "unique constraint")
}

// notFound converts gorm's record-not-found into the models taxonomy.
func notFound(err error, what, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NotFoundf("%s %s not found", what, id)
	}
	return err
}
