package repository

import (
	"errors"

	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/model"
	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/util"

	"gorm.io/gorm"
)

type AnalysisRunRepository struct {
	DB *gorm.DB
}

func NewAnalysisRunRepository(db *gorm.DB) *AnalysisRunRepository {
	return &AnalysisRunRepository{DB: db}
}

func (r *AnalysisRunRepository) Create(run *model.AnalysisRun) error {
	return r.DB.Create(run).Error
}

func (r *AnalysisRunRepository) Update(run *model.AnalysisRun) error {
	return r.DB.Save(run).Error
}

func (r *AnalysisRunRepository) FindByID(id string) (*model.AnalysisRun, error) {
	var run model.AnalysisRun
	err := r.DB.Where("id = ?", id).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// List 按创建时间倒序分页
func (r *AnalysisRunRepository) List(page, pageSize int) ([]model.AnalysisRun, int64, error) {
	var runs []model.AnalysisRun
	var total int64

	if err := r.DB.Model(&model.AnalysisRun{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.DB.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&runs).Error
	if err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}

func (r *AnalysisRunRepository) Delete(id string) error {
	result := r.DB.Where("id = ?", id).Delete(&model.AnalysisRun{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return util.ErrRunNotFound
	}
	return nil
}
