package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Documento is the single table backing PostgresDocumentStore.
type Documento struct {
	Coleccion string    `gorm:"primaryKey;type:varchar(64)"`
	Contenido string    `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Documento) TableName() string { return "documentos" }

// PostgresDocumentStore keeps each collection as a jsonb row. SaveAll runs in
// one transaction.
type PostgresDocumentStore struct{ db *gorm.DB }

// NewPostgresDocumentStore creates the documentos table if needed.
func NewPostgresDocumentStore(db *gorm.DB) (*PostgresDocumentStore, error) {
	if err := db.AutoMigrate(&Documento{}); err != nil {
		return nil, fmt.Errorf("migrate documentos: %w", err)
	}
	return &PostgresDocumentStore{db: db}, nil
}

func (r *PostgresDocumentStore) Load(ctx context.Context, coleccion string) ([]byte, error) {
	var d Documento
	err := r.db.WithContext(ctx).Where("coleccion = ?", coleccion).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(d.Contenido), nil
}

func (r *PostgresDocumentStore) SaveAll(ctx context.Context, docs map[string][]byte) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for col, doc := range docs {
			row := Documento{Coleccion: col, Contenido: string(doc), UpdatedAt: now}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "coleccion"}},
				DoUpdates: clause.AssignmentColumns([]string{"contenido", "updated_at"}),
			}).Create(&row).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PostgresDocumentStore) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
