package models

// ConsolidatedRow summarises one (room, department) group for a date.
type ConsolidatedRow struct {
	RoomNo     string `json:"room_no"`
	Department string `json:"department"`
	SeatFrom   string `json:"seat_from"`
	SeatTo     string `json:"seat_to"`
	Count      int    `json:"count"`
}

// ConsolidatedReport lists every (room, department) group for a date.
type ConsolidatedReport struct {
	ExamDate string            `json:"exam_date"`
	Total    int               `json:"total"`
	Rows     []ConsolidatedRow `json:"rows"`
}

// RoomSeatEntry is one seated student inside a room report column.
type RoomSeatEntry struct {
	SeatNo      string `json:"seat_no"`
	BenchNo     int    `json:"bench_no"`
	RollNo      string `json:"roll_no"`
	StudentName string `json:"student_name"`
	Department  string `json:"department"`
	Subject     string `json:"subject"`
}

// RoomReport groups a single room's assignments for a date by seat column.
type RoomReport struct {
	ExamDate    string          `json:"exam_date"`
	RoomNo      string          `json:"room_no"`
	Departments []string        `json:"departments"`
	Subjects    []string        `json:"subjects"`
	RightSeats  []RoomSeatEntry `json:"right_seats"`
	MiddleSeats []RoomSeatEntry `json:"middle_seats"`
	LeftSeats   []RoomSeatEntry `json:"left_seats"`
}

// SupervisorEntry is one numbered line on a junior supervisor sheet.
type SupervisorEntry struct {
	SerialNo int    `json:"serial_no"`
	SeatNo   string `json:"seat_no"`
	RollNo   string `json:"roll_no"`
}

// SupervisorSheet covers one room and subject pair on the supervisor report.
type SupervisorSheet struct {
	RoomNo  string            `json:"room_no"`
	Subject string            `json:"subject"`
	Count   int               `json:"count"`
	Entries []SupervisorEntry `json:"entries"`
}

// SupervisorReport is the per room and subject breakdown handed to invigilators.
type SupervisorReport struct {
	ExamDate string            `json:"exam_date"`
	Sheets   []SupervisorSheet `json:"sheets"`
}
