package models

import "time"

// SeatAssignment binds a student to a seat for a dated exam sitting.
type SeatAssignment struct {
	ID              string    `db:"id" json:"id"`
	StudentID       string    `db:"student_id" json:"student_id"`
	RoomID          string    `db:"room_id" json:"room_id"`
	SeatID          string    `db:"seat_id" json:"seat_id"`
	Subject         string    `db:"subject" json:"subject"`
	ExamDate        string    `db:"exam_date" json:"exam_date"`
	ArrangementName string    `db:"arrangement_name" json:"arrangement_name"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// AssignmentRecord is the denormalised read model joining student, room and seat.
type AssignmentRecord struct {
	RollNo      string       `db:"roll_no" json:"roll_no"`
	StudentName string       `db:"student_name" json:"student_name"`
	Department  string       `db:"department" json:"department"`
	ClassName   string       `db:"class_name" json:"class_name"`
	Subject     string       `db:"subject" json:"subject"`
	RoomNo      string       `db:"room_no" json:"room_no"`
	SeatNo      string       `db:"seat_no" json:"seat_no"`
	Position    SeatPosition `db:"position" json:"position"`
	BenchNo     int          `db:"bench_no" json:"bench_no"`
	ExamDate    string       `db:"exam_date" json:"exam_date"`
}
