package dto

// CreateStudentRequest registers a single examinee.
type CreateStudentRequest struct {
	RollNo     string   `json:"rollNo" validate:"required"`
	FullName   string   `json:"fullName" validate:"required"`
	Department string   `json:"department" validate:"required"`
	ClassName  string   `json:"className" validate:"required"`
	Subjects   []string `json:"subjects" validate:"required,min=1,dive,required"`
}

// CreateRoomRequest registers an exam hall and its bench layout.
type CreateRoomRequest struct {
	RoomNo       string `json:"roomNo" validate:"required"`
	TotalBenches int    `json:"totalBenches" validate:"required,min=1"`
	RightCount   int    `json:"rightCount" validate:"min=0"`
	MiddleCount  int    `json:"middleCount" validate:"min=0"`
	LeftCount    int    `json:"leftCount" validate:"min=0"`
	Capacity     int    `json:"capacity" validate:"min=0"`
}

// RowError describes a spreadsheet row the upload could not accept.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// UploadSummary reports the outcome of a roster spreadsheet upload.
type UploadSummary struct {
	Created int        `json:"created"`
	Updated int        `json:"updated"`
	Skipped int        `json:"skipped"`
	Errors  []RowError `json:"errors,omitempty"`
}
