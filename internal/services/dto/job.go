package dto

// CreateJobRequest представляет тело запроса публикации вакансии
type CreateJobRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"required"`
	City        string   `json:"city,omitempty"`
	SalaryMin   *float64 `json:"salary_min,omitempty"`
	SalaryMax   *float64 `json:"salary_max,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	JobType     string   `json:"job_type,omitempty" validate:"omitempty,oneof=full_time part_time contract internship"`
}

// ApplyRequest представляет тело отклика на вакансию
type ApplyRequest struct {
	CoverLetter *string `json:"cover_letter,omitempty" validate:"omitempty,max=5000"`
}
