package models

import (
	"time"

	"github.com/lib/pq"
)

// Student represents an examinee registered for seating allocation.
type Student struct {
	ID         string         `db:"id" json:"id"`
	RollNo     string         `db:"roll_no" json:"roll_no"`
	FullName   string         `db:"full_name" json:"full_name"`
	Department string         `db:"department" json:"department"`
	ClassName  string         `db:"class_name" json:"class_name"`
	Subjects   pq.StringArray `db:"subjects" json:"subjects"`
	Allocated  bool           `db:"allocated" json:"allocated"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search     string
	Department string
	ClassName  string
	Subject    string
	Allocated  *bool
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// StudentSelection narrows the candidate pool for an allocation run.
type StudentSelection struct {
	Departments []string
	Classes     []string
	Subjects    []string
}

// DepartmentSubjects maps a department to the distinct subjects its students sit.
type DepartmentSubjects struct {
	Department string         `db:"department" json:"department"`
	Subjects   pq.StringArray `db:"subjects" json:"subjects"`
}
