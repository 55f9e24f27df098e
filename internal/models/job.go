package models

import (
	"time"

	"gorm.io/datatypes"
)

type Job struct {
	ID          string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RecruiterID string `gorm:"index;not null"`
	Title       string `gorm:"not null"`
	Description string `gorm:"type:text"`
	City        string
	SalaryMin   *float64
	SalaryMax   *float64
	Tags        datatypes.JSON `gorm:"type:jsonb"`
	JobType     string         // full_time, part_time, contract, internship
	Status      JobStatus      `gorm:"type:varchar(20);default:'active'"`
	Views       int
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Recruiter *User `gorm:"foreignKey:RecruiterID"`
}
