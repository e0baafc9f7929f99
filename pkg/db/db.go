package db

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	constant "liyu1981.xyz/iot-datalogger/pkg/common"
	"liyu1981.xyz/iot-datalogger/pkg/models"
)

type DB struct {
	Conn *gorm.DB
}

// Open connects, migrates the blob table and tunes sqlite.
func Open(dialector gorm.Dialector) (*DB, error) {
	var log = constant.GetLogger()

	conn, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	log.Info("Connected to database with dialector:", zap.String("dialector", dialector.Name()))

	instance := &DB{Conn: conn}

	if err := instance.Conn.AutoMigrate(&models.Blob{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	log.Info("Database migration completed")

	if err := instance.Conn.Exec("PRAGMA journal_mode = WAL").Error; err != nil {
		return nil, fmt.Errorf("set sqlite journal mode: %w", err)
	}

	return instance, nil
}

func UseSqliteDialector() gorm.Dialector {
	var dbPath string
	var found bool
	if dbPath, found = os.LookupEnv(constant.EnvKeyIOTDbPath); !found {
		dbPath = "datalogger.db"
	}
	return sqlite.Open(dbPath)
}

// UseMemorySqliteDialector returns a fresh, uniquely named in-memory database. The shared cache
// keeps it alive across the pool's connections.
func UseMemorySqliteDialector() gorm.Dialector {
	return sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
}

// GetBlob returns the stored value and whether the key exists.
func (d *DB) GetBlob(key string) (string, bool, error) {
	var blob models.Blob
	err := d.Conn.Where("blob_key = ?", key).First(&blob).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return blob.Value, true, nil
}

func (d *DB) PutBlob(key string, value string) error {
	blob := models.Blob{Key: key, Value: value}
	return d.Conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "blob_key"}},
		UpdateAll: true,
	}).Create(&blob).Error
}

func (d *DB) DeleteBlob(key string) error {
	return d.Conn.Where("blob_key = ?", key).Delete(&models.Blob{}).Error
}

func (d *DB) Close() error {
	sqlDB, err := d.Conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// BlobStore is the key-value persistence used for the alarm log and the user record.
type BlobStore interface {
	GetBlob(key string) (string, bool, error)
	PutBlob(key string, value string) error
	DeleteBlob(key string) error
}

var _ BlobStore = (*DB)(nil)
