package db

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	TypePostgres string = "postgres"
	TypeFile     string = "file"

	DefaultSqlitePath string = "sensors.db"
)

var (
	ErrIncompleteConfig = errors.New("database configuration incomplete: set CONNECTION_STRING or all of USER, PASSWORD, HOST, PORT, DBNAME")
	ErrUnknownDBType    = errors.New("unknown database type")
)

// Config describes how to reach the database. ConnectionString wins over the discrete
// fields; the discrete fields are only used when all five are present.
type Config struct {
	Type             string
	ConnectionString string

	User     string
	Password string
	Host     string
	Port     string
	DBName   string

	AutoMigrate bool
}

func (c Config) hasDiscreteFields() bool {
	for _, v := range []string{c.User, c.Password, c.Host, c.Port, c.DBName} {
		if v == "" {
			return false
		}
	}
	return true
}

// quoteDSNValue quotes a libpq key/value parameter when it would not survive unquoted.
func quoteDSNValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// PostgresDSN returns the connection descriptor, or assembles one from the discrete fields.
func (c Config) PostgresDSN() (string, error) {
	if c.ConnectionString != "" {
		return c.ConnectionString, nil
	}

	if !c.hasDiscreteFields() {
		return "", ErrIncompleteConfig
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s",
		quoteDSNValue(c.Host),
		quoteDSNValue(c.Port),
		quoteDSNValue(c.User),
		quoteDSNValue(c.Password),
		quoteDSNValue(c.DBName),
	), nil
}

// Dialector builds a fresh gorm dialector for one connection.
func (c Config) Dialector() (gorm.Dialector, error) {
	switch c.Type {
	case TypePostgres, "":
		dsn, err := c.PostgresDSN()
		if err != nil {
			return nil, err
		}
		return postgres.Open(dsn), nil
	case TypeFile:
		return UseSqliteDialector(c.ConnectionString), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDBType, c.Type)
	}
}

func UseSqliteDialector(dbPath string) gorm.Dialector {
	if dbPath == "" {
		dbPath = DefaultSqlitePath
	}
	return sqlite.Open(dbPath)
}
