// Package storage implementa el almacén clave-valor durable sobre SQLite
// embebido (vía GORM): el equivalente local al almacenamiento del cliente.
package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// blobRow fila del almacén: una clave, un blob serializado opaco.
// Sin versión de esquema embebida, por contrato del formato persistido.
type blobRow struct {
	Key   string `gorm:"primaryKey;column:key"`
	Value []byte `gorm:"column:value"`
}

func (blobRow) TableName() string { return "blobs" }

// GormBlobStore implementa inventory.BlobStore.
type GormBlobStore struct {
	db *gorm.DB
}

// Open abre (o crea) la base SQLite en la ruta dada.
// "file::memory:?cache=shared" sirve para pruebas.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("abrir base de datos %s: %w", path, err)
	}
	return db, nil
}

// NewGormBlobStore construye el almacén y migra su tabla.
func NewGormBlobStore(db *gorm.DB) (*GormBlobStore, error) {
	if err := db.AutoMigrate(&blobRow{}); err != nil {
		return nil, fmt.Errorf("migrar tabla de blobs: %w", err)
	}
	return &GormBlobStore{db: db}, nil
}

// Get devuelve el blob de una clave, o found=false si no existe.
func (s *GormBlobStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var row blobRow
	err := s.db.WithContext(ctx).First(&row, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return row.Value, true, nil
}

// Put escribe todas las entradas en una sola transacción: o se persisten
// todas o ninguna. Nunca queda una colección guardada y la otra no.
func (s *GormBlobStore) Put(ctx context.Context, entries map[string][]byte) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for key, value := range entries {
			row := blobRow{Key: key, Value: value}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
