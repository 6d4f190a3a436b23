package dto

// GenerateSeatingRequest selects the candidate pool for an allocation run.
type GenerateSeatingRequest struct {
	ExamDate        string   `json:"examDate" validate:"required,datetime=2006-01-02"`
	ArrangementName string   `json:"arrangementName" validate:"required"`
	Departments     []string `json:"departments" validate:"required,min=1,dive,required"`
	Classes         []string `json:"classes" validate:"required,min=1,dive,required"`
	Subjects        []string `json:"subjects" validate:"required,min=1,dive,required"`
}

// SubjectShortage reports students left unseated for one subject.
type SubjectShortage struct {
	Subject   string `json:"subject"`
	Remaining int    `json:"remaining"`
}

// GenerateSeatingResponse summarises the outcome of an allocation run.
type GenerateSeatingResponse struct {
	ExamDate            string            `json:"examDate"`
	ArrangementName     string            `json:"arrangementName"`
	TotalAssigned       int               `json:"totalAssigned"`
	RoomsUsed           int               `json:"roomsUsed"`
	UnallocatedStudents int               `json:"unallocatedStudents"`
	UnfilledSeats       int               `json:"unfilledSeats"`
	Shortages           []SubjectShortage `json:"shortages,omitempty"`
}

// SeatingCounts exposes aggregate totals for the dashboard.
type SeatingCounts struct {
	Students    int `json:"students"`
	Rooms       int `json:"rooms"`
	Seats       int `json:"seats"`
	Assignments int `json:"assignments"`
}
