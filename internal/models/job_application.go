package models

import "time"

type JobApplication struct {
	ID          string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	JobID       string `gorm:"not null;uniqueIndex:ux_application_job_applicant"`
	ApplicantID string `gorm:"not null;uniqueIndex:ux_application_job_applicant"`
	CoverLetter *string
	Status      ApplicationStatus `gorm:"type:varchar(20);default:'pending'"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Job       *Job  `gorm:"foreignKey:JobID"`
	Applicant *User `gorm:"foreignKey:ApplicantID"`
}
