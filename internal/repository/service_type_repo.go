package repository

import (
	"context"
	"time"

	"github.com/Matsupon/tailoring-system-sub001/internal/domain"

	"gorm.io/gorm"
)

type ServiceTypeRepository struct {
	db *gorm.DB
}

func NewServiceTypeRepository(db *gorm.DB) *ServiceTypeRepository {
	return &ServiceTypeRepository{db: db}
}

type serviceTypeModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	Name        string    `gorm:"column:name;uniqueIndex"`
	Downpayment float64   `gorm:"column:downpayment"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (serviceTypeModel) TableName() string { return "service_types" }

func toDomainServiceType(m serviceTypeModel) *domain.ServiceType {
	return &domain.ServiceType{
		ID:          m.ID,
		Name:        m.Name,
		Downpayment: m.Downpayment,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (r *ServiceTypeRepository) GetByID(ctx context.Context, id int64) (*domain.ServiceType, error) {
	var m serviceTypeModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return toDomainServiceType(m), nil
}

func (r *ServiceTypeRepository) List(ctx context.Context) ([]domain.ServiceType, error) {
	var rows []serviceTypeModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.ServiceType, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainServiceType(m))
	}
	return out, nil
}

// Upsert is used by the seed command; matching is by name.
func (r *ServiceTypeRepository) Upsert(ctx context.Context, st *domain.ServiceType) error {
	var existing serviceTypeModel
	err := r.db.WithContext(ctx).Where("name = ?", st.Name).First(&existing).Error
	if err == nil {
		return r.db.WithContext(ctx).Model(&existing).
			Update("downpayment", st.Downpayment).Error
	}

	m := serviceTypeModel{Name: st.Name, Downpayment: st.Downpayment}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	st.ID = m.ID
	return nil
}

// AutoMigrateServiceTypes registers the service_types table.
func AutoMigrateServiceTypes(db *gorm.DB) error {
	return db.AutoMigrate(&serviceTypeModel{})
}
