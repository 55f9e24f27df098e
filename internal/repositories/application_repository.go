package repositories

import (
	"errors"

	"gorm.io/gorm"

	"jobboard_backend/internal/models"
)

var ErrApplicationNotFound = errors.New("job application not found")

type ApplicationRepository interface {
	Create(db *gorm.DB, application *models.JobApplication) error
	FindByID(db *gorm.DB, id string) (*models.JobApplication, error)
	FindByJobAndApplicant(db *gorm.DB, jobID, applicantID string) (*models.JobApplication, error)
	FindByApplicant(db *gorm.DB, applicantID string) ([]models.JobApplication, error)
	UpdateStatus(db *gorm.DB, id string, status models.ApplicationStatus) error
}

type ApplicationRepositoryImpl struct{}

func NewApplicationRepository() ApplicationRepository {
	return &ApplicationRepositoryImpl{}
}

func (r *ApplicationRepositoryImpl) Create(db *gorm.DB, application *models.JobApplication) error {
	return db.Create(application).Error
}

func (r *ApplicationRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.JobApplication, error) {
	var application models.JobApplication
	err := db.Preload("Job").First(&application, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &application, nil
}

func (r *ApplicationRepositoryImpl) FindByJobAndApplicant(db *gorm.DB, jobID, applicantID string) (*models.JobApplication, error) {
	var application models.JobApplication
	err := db.First(&application, "job_id = ? AND applicant_id = ?", jobID, applicantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &application, nil
}

func (r *ApplicationRepositoryImpl) FindByApplicant(db *gorm.DB, applicantID string) ([]models.JobApplication, error) {
	var applications []models.JobApplication
	err := db.Preload("Job").
		Where("applicant_id = ?", applicantID).
		Order("created_at DESC").
		Find(&applications).Error
	return applications, err
}

func (r *ApplicationRepositoryImpl) UpdateStatus(db *gorm.DB, id string, status models.ApplicationStatus) error {
	result := db.Model(&models.JobApplication{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}
