package service

import (
	"sort"
	"strings"

	"github.com/noah-isme/exam-seating-api/internal/dto"
	"github.com/noah-isme/exam-seating-api/internal/models"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
)

// subjectBucket holds the examinees attributed to one subject in their
// original encountered order. Consumption advances the cursor only, the
// underlying slice is never mutated.
type subjectBucket struct {
	subject  string
	students []models.Student
	cursor   int
}

func (b *subjectBucket) remaining() int {
	return len(b.students) - b.cursor
}

func (b *subjectBucket) takeNext() *models.Student {
	if b.cursor >= len(b.students) {
		return nil
	}
	student := &b.students[b.cursor]
	b.cursor++
	return student
}

// subjectPopulationIndex partitions candidates into one bucket per requested
// subject and ranks subjects by descending initial population, ties broken by
// subject name ascending. The ranking is fixed for the whole run so that the
// engine cursors stay meaningful while populations drain.
type subjectPopulationIndex struct {
	ranked  []string
	buckets map[string]*subjectBucket
}

// newSubjectPopulationIndex attributes each candidate to exactly one bucket:
// the lexicographically smallest of the student's subjects that appears in the
// requested set. Requested subjects with no matching student keep an empty
// bucket so shortages can be reported against them.
func newSubjectPopulationIndex(candidates []models.Student, requested []string) *subjectPopulationIndex {
	buckets := make(map[string]*subjectBucket, len(requested))
	for _, subject := range requested {
		buckets[subject] = &subjectBucket{subject: subject}
	}

	for _, student := range candidates {
		chosen := ""
		for _, subject := range student.Subjects {
			if _, ok := buckets[subject]; !ok {
				continue
			}
			if chosen == "" || subject < chosen {
				chosen = subject
			}
		}
		if chosen == "" {
			continue
		}
		bucket := buckets[chosen]
		bucket.students = append(bucket.students, student)
	}

	ranked := make([]string, 0, len(buckets))
	for subject := range buckets {
		ranked = append(ranked, subject)
	}
	sort.Slice(ranked, func(i, j int) bool {
		ri, rj := buckets[ranked[i]].remaining(), buckets[ranked[j]].remaining()
		if ri != rj {
			return ri > rj
		}
		return ranked[i] < ranked[j]
	})

	return &subjectPopulationIndex{ranked: ranked, buckets: buckets}
}

func (idx *subjectPopulationIndex) remaining(subject string) int {
	bucket, ok := idx.buckets[subject]
	if !ok {
		return 0
	}
	return bucket.remaining()
}

func (idx *subjectPopulationIndex) takeNext(subject string) *models.Student {
	bucket, ok := idx.buckets[subject]
	if !ok {
		return nil
	}
	return bucket.takeNext()
}

// populatedSubjects counts the subjects that still have a remaining student.
func (idx *subjectPopulationIndex) populatedSubjects() int {
	count := 0
	for _, subject := range idx.ranked {
		if idx.remaining(subject) > 0 {
			count++
		}
	}
	return count
}

func (idx *subjectPopulationIndex) totalRemaining() int {
	total := 0
	for _, subject := range idx.ranked {
		total += idx.remaining(subject)
	}
	return total
}

// shortages lists requested subjects that ended with zero attribution or with
// students left over, in ranked order.
func (idx *subjectPopulationIndex) shortages() []dto.SubjectShortage {
	var out []dto.SubjectShortage
	for _, subject := range idx.ranked {
		bucket := idx.buckets[subject]
		if len(bucket.students) == 0 || bucket.remaining() > 0 {
			out = append(out, dto.SubjectShortage{Subject: subject, Remaining: bucket.remaining()})
		}
	}
	return out
}

// roomSeats is one room's unoccupied seats split by column, each list sorted
// ascending by bench number.
type roomSeats struct {
	room   models.Room
	right  []models.Seat
	middle []models.Seat
	left   []models.Seat
}

// seatTopology orders available seats deterministically by room, column and bench.
type seatTopology struct {
	rooms []roomSeats
}

// newSeatTopology builds the per-room column lists. Rooms are ordered ascending
// by room number, which is the stable identity in this schema. Occupied seats
// are excluded.
func newSeatTopology(rooms []models.Room, seatsByRoom map[string][]models.Seat) *seatTopology {
	ordered := make([]models.Room, len(rooms))
	copy(ordered, rooms)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].RoomNo < ordered[j].RoomNo
	})

	topology := &seatTopology{rooms: make([]roomSeats, 0, len(ordered))}
	for _, room := range ordered {
		rs := roomSeats{room: room}
		for _, seat := range seatsByRoom[room.ID] {
			if seat.Occupied {
				continue
			}
			switch seat.Position {
			case models.PositionRight:
				rs.right = append(rs.right, seat)
			case models.PositionMiddle:
				rs.middle = append(rs.middle, seat)
			case models.PositionLeft:
				rs.left = append(rs.left, seat)
			}
		}
		sortByBench(rs.right)
		sortByBench(rs.middle)
		sortByBench(rs.left)
		topology.rooms = append(topology.rooms, rs)
	}
	return topology
}

func sortByBench(seats []models.Seat) {
	sort.Slice(seats, func(i, j int) bool {
		return seats[i].BenchNo < seats[j].BenchNo
	})
}

func (t *seatTopology) totalSeats() int {
	total := 0
	for _, rs := range t.rooms {
		total += len(rs.right) + len(rs.middle) + len(rs.left)
	}
	return total
}

// runStats captures the advisory outcome counters of one allocation run.
type runStats struct {
	totalAssigned       int
	roomsUsed           int
	unallocatedStudents int
	unfilledSeats       int
	shortages           []dto.SubjectShortage
}

// allocationEngine walks the topology room by room, columns R then M then L,
// benches ascending, pulling students from the population index. The two
// cursors persist across rooms for the whole run.
type allocationEngine struct {
	index    *subjectPopulationIndex
	topology *seatTopology

	rCursor int
	lCursor int
	stopR   bool
	stopL   bool
}

func newAllocationEngine(index *subjectPopulationIndex, topology *seatTopology) *allocationEngine {
	return &allocationEngine{index: index, topology: topology, rCursor: 0, lCursor: 1}
}

// run produces the ordered assignment list for the given session. At least two
// subjects must have a remaining student or no assignment is made at all.
func (e *allocationEngine) run(examDate, arrangementName string) ([]models.SeatAssignment, runStats, error) {
	if e.index.populatedSubjects() < 2 {
		return nil, runStats{}, appErrors.ErrInsufficientSubjects
	}

	var assignments []models.SeatAssignment
	roomsUsed := 0

	for _, rs := range e.topology.rooms {
		// Subjects already placed on each bench of this room, keyed by column.
		benchRight := make(map[int]string)
		benchLeft := make(map[int]string)
		before := len(assignments)

		if !e.stopR {
			for _, seat := range rs.right {
				subject, ok := e.nextRightSubject()
				if !ok {
					e.stopR = true
					break
				}
				student := e.index.takeNext(subject)
				benchRight[seat.BenchNo] = subject
				assignments = append(assignments, newAssignment(student, rs.room, seat, subject, examDate, arrangementName))
			}
		}

		for _, seat := range rs.middle {
			subject, ok := e.middleSubject(benchRight[seat.BenchNo], benchLeft[seat.BenchNo])
			if !ok {
				continue
			}
			student := e.index.takeNext(subject)
			assignments = append(assignments, newAssignment(student, rs.room, seat, subject, examDate, arrangementName))
		}

		if !e.stopL {
			for _, seat := range rs.left {
				subject, ok := e.nextLeftSubject()
				if !ok {
					e.stopL = true
					break
				}
				student := e.index.takeNext(subject)
				benchLeft[seat.BenchNo] = subject
				assignments = append(assignments, newAssignment(student, rs.room, seat, subject, examDate, arrangementName))
			}
		}

		if len(assignments) > before {
			roomsUsed++
		}
	}

	stats := runStats{
		totalAssigned:       len(assignments),
		roomsUsed:           roomsUsed,
		unallocatedStudents: e.index.totalRemaining(),
		unfilledSeats:       e.topology.totalSeats() - len(assignments),
		shortages:           e.index.shortages(),
	}
	return assignments, stats, nil
}

// nextRightSubject returns the subject to seat on the next right seat, moving
// the right cursor forward (wrapping, never onto the left cursor) when its
// current subject is exhausted.
func (e *allocationEngine) nextRightSubject() (string, bool) {
	ranked := e.index.ranked
	if e.index.remaining(ranked[e.rCursor]) > 0 {
		return ranked[e.rCursor], true
	}
	for step := 1; step <= len(ranked); step++ {
		candidate := (e.rCursor + step) % len(ranked)
		if candidate == e.lCursor {
			continue
		}
		if e.index.remaining(ranked[candidate]) > 0 {
			e.rCursor = candidate
			return ranked[candidate], true
		}
	}
	return "", false
}

// middleSubject picks between the subjects already seated on the bench's right
// and left seats, preferring the larger remaining population. Right wins ties
// since the left seat is normally still empty when the middle column runs.
func (e *allocationEngine) middleSubject(rightSubject, leftSubject string) (string, bool) {
	preferred, fallback := rightSubject, leftSubject
	if e.index.remaining(leftSubject) > e.index.remaining(rightSubject) {
		preferred, fallback = leftSubject, rightSubject
	}
	if preferred != "" && e.index.remaining(preferred) > 0 {
		return preferred, true
	}
	if fallback != "" && e.index.remaining(fallback) > 0 {
		return fallback, true
	}
	return "", false
}

// nextLeftSubject returns the subject for the next left seat. The left cursor
// never points at the right cursor's subject, which keeps the two outer seats
// of any bench on different subjects.
func (e *allocationEngine) nextLeftSubject() (string, bool) {
	ranked := e.index.ranked
	if e.lCursor != e.rCursor && e.index.remaining(ranked[e.lCursor]) > 0 {
		return ranked[e.lCursor], true
	}
	for step := 1; step <= len(ranked); step++ {
		candidate := (e.lCursor + step) % len(ranked)
		if candidate == e.rCursor {
			continue
		}
		if e.index.remaining(ranked[candidate]) > 0 {
			e.lCursor = candidate
			return ranked[candidate], true
		}
	}
	return "", false
}

func newAssignment(student *models.Student, room models.Room, seat models.Seat, subject, examDate, arrangementName string) models.SeatAssignment {
	return models.SeatAssignment{
		StudentID:       student.ID,
		RoomID:          room.ID,
		SeatID:          seat.ID,
		Subject:         subject,
		ExamDate:        examDate,
		ArrangementName: strings.TrimSpace(arrangementName),
	}
}
