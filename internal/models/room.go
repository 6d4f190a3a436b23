package models

import "time"

// SeatPosition identifies the bench column a seat occupies.
type SeatPosition string

const (
	PositionRight  SeatPosition = "R"
	PositionMiddle SeatPosition = "M"
	PositionLeft   SeatPosition = "L"
)

// Room represents an exam hall with benches arranged in three columns.
type Room struct {
	ID           string    `db:"id" json:"id"`
	RoomNo       string    `db:"room_no" json:"room_no"`
	TotalBenches int       `db:"total_benches" json:"total_benches"`
	RightCount   int       `db:"right_count" json:"right_count"`
	MiddleCount  int       `db:"middle_count" json:"middle_count"`
	LeftCount    int       `db:"left_count" json:"left_count"`
	Capacity     int       `db:"capacity" json:"capacity"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Seat is a single physical position inside a room, e.g. seat "R3" on bench 3.
type Seat struct {
	ID       string       `db:"id" json:"id"`
	RoomID   string       `db:"room_id" json:"room_id"`
	SeatNo   string       `db:"seat_no" json:"seat_no"`
	Position SeatPosition `db:"position" json:"position"`
	BenchNo  int          `db:"bench_no" json:"bench_no"`
	Occupied bool         `db:"occupied" json:"occupied"`
}

// RoomFilter captures filtering criteria for listing rooms.
type RoomFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
