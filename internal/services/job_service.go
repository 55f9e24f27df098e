package services

import (
	"encoding/json"

	"gorm.io/gorm"

	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/repositories"
	chatService "jobboard_backend/internal/services/chat"
	"jobboard_backend/internal/services/dto"
	"jobboard_backend/pkg/apperrors"
)

type JobService struct {
	Jobs         repositories.JobRepository
	Applications repositories.ApplicationRepository
	Chat         *chatService.ChatService
}

func NewJobService(
	jobs repositories.JobRepository,
	applications repositories.ApplicationRepository,
	chat *chatService.ChatService,
) *JobService {
	return &JobService{
		Jobs:         jobs,
		Applications: applications,
		Chat:         chat,
	}
}

// CreateJob публикует вакансию от имени рекрутера
func (s *JobService) CreateJob(db *gorm.DB, recruiterID string, req dto.CreateJobRequest) (*models.Job, error) {
	job := &models.Job{
		RecruiterID: recruiterID,
		Title:       req.Title,
		Description: req.Description,
		City:        req.City,
		SalaryMin:   req.SalaryMin,
		SalaryMax:   req.SalaryMax,
		JobType:     req.JobType,
		Status:      models.JobStatusActive,
	}
	if len(req.Tags) > 0 {
		raw, err := json.Marshal(req.Tags)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		job.Tags = raw
	}

	if err := s.Jobs.Create(db, job); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return job, nil
}

// GetJob возвращает вакансию и инкрементирует счетчик просмотров
func (s *JobService) GetJob(db *gorm.DB, jobID string) (*models.Job, error) {
	job, err := s.Jobs.FindByID(db, jobID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrJobNotFound) {
			return nil, apperrors.ErrJobNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	if err := s.Jobs.IncrementViews(db, jobID); err != nil {
		// просмотр не критичен, вакансию все равно отдаем
		logger.Warn("failed to increment job views", "job_id", jobID, "error", err.Error())
	}
	return job, nil
}

// ListJobs возвращает вакансии по фильтру с пагинацией
func (s *JobService) ListJobs(db *gorm.DB, filter repositories.JobFilter) ([]models.Job, int64, error) {
	jobs, total, err := s.Jobs.FindWithFilter(db, filter)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}
	return jobs, total, nil
}

// Apply создает отклик на вакансию и сразу открывает чат-тред между
// соискателем и рекрутером: диалог существует с момента отклика.
func (s *JobService) Apply(db *gorm.DB, jobID, applicantID string, req dto.ApplyRequest) (*models.JobApplication, error) {
	job, err := s.Jobs.FindByID(db, jobID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrJobNotFound) {
			return nil, apperrors.ErrJobNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	if job.Status != models.JobStatusActive {
		return nil, apperrors.ErrInvalidOperation("application", "Job is not accepting applications")
	}
	if job.RecruiterID == applicantID {
		return nil, apperrors.ErrInvalidOperation("application", "Cannot apply to own job")
	}

	if _, err := s.Applications.FindByJobAndApplicant(db, jobID, applicantID); err == nil {
		return nil, apperrors.ErrAlreadyApplied
	} else if !apperrors.Is(err, repositories.ErrApplicationNotFound) {
		return nil, apperrors.InternalError(err)
	}

	application := &models.JobApplication{
		JobID:       jobID,
		ApplicantID: applicantID,
		CoverLetter: req.CoverLetter,
		Status:      models.ApplicationStatusPending,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.Applications.Create(tx, application); err != nil {
			return err
		}
		_, err := s.Chat.OpenThread(tx, application.ID, applicantID)
		return err
	})
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok {
			return nil, appErr
		}
		return nil, apperrors.InternalError(err)
	}

	application.Job = job
	return application, nil
}

// Withdraw отзывает отклик. Зачистку висящих приглашений на интервью
// делает фоновый воркер, не этот вызов.
func (s *JobService) Withdraw(db *gorm.DB, applicationID, applicantID string) error {
	application, err := s.Applications.FindByID(db, applicationID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrApplicationNotFound) {
			return apperrors.ErrApplicationNotFound
		}
		return apperrors.InternalError(err)
	}
	if application.ApplicantID != applicantID {
		return apperrors.NewForbiddenError("Only the applicant may withdraw the application")
	}
	if application.Status == models.ApplicationStatusWithdrawn {
		return nil
	}

	if err := s.Applications.UpdateStatus(db, applicationID, models.ApplicationStatusWithdrawn); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}
