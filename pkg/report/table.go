package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/limaJavier/coursetabling/pkg/model"
)

const (
	ruleWidth     = 100
	emptySchedule = "  Lịch trống!"
)

func rule(w io.Writer, char string) {
	fmt.Fprintln(w, strings.Repeat(char, ruleWidth))
}

func banner(w io.Writer, title string) {
	fmt.Fprintln(w)
	rule(w, "=")
	fmt.Fprintf(w, "  %v\n", title)
	rule(w, "=")
}

// WriteTable prints the schedule in chronological order
func WriteTable(w io.Writer, rows []Row, title string) {
	banner(w, title)
	if len(rows) == 0 {
		fmt.Fprintln(w, emptySchedule)
		rule(w, "=")
		return
	}

	table := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(table, strings.Join([]string{HeaderDay, HeaderSession, HeaderTime, HeaderCourse, HeaderClass, HeaderTeacher, HeaderRoom}, "\t"))
	for _, row := range rows {
		fmt.Fprintln(table, strings.Join([]string{row.Day, row.Session, row.Time, row.Course, row.Class, row.Teacher, row.Room}, "\t"))
	}
	table.Flush()
	rule(w, "=")
}

// WriteByCourse prints one block per course
func WriteByCourse(w io.Writer, rows []Row, title string) {
	banner(w, title)
	if len(rows) == 0 {
		fmt.Fprintln(w, emptySchedule)
		rule(w, "=")
		return
	}

	for _, row := range rows {
		fmt.Fprintf(w, "\n  Môn: %v - Lớp: %v\n", row.Course, row.Class)
		fmt.Fprintf(w, "  Giáo viên: %v\n", row.Teacher)
		fmt.Fprintf(w, "  Phòng: %v\n", row.Room)
		fmt.Fprintf(w, "  Thời gian: %v, %v (%v)\n", row.Day, row.Session, row.Time)
		rule(w, "-")
	}
}

func WriteStatistics(w io.Writer, statistics Statistics) {
	banner(w, "THỐNG KÊ LỊCH HỌC")
	if statistics.Assignments == 0 {
		fmt.Fprintln(w, emptySchedule)
		rule(w, "=")
		return
	}

	fmt.Fprintf(w, "  Tổng số môn học: %d\n", statistics.Assignments)
	fmt.Fprintf(w, "  Số phòng học sử dụng: %d\n", statistics.Rooms)
	fmt.Fprintf(w, "  Số giáo viên sử dụng: %d\n", statistics.Teachers)
	fmt.Fprintf(w, "  Số khung giờ sử dụng: %d\n", statistics.Timeslots)
	rule(w, "=")
}

// WriteSummary prints the fitness breakdown, the unassigned courses and any infeasibility found
func WriteSummary(w io.Writer, run *Run, input model.ModelInput) {
	banner(w, fmt.Sprintf("KẾT QUẢ (%v)", run.Strategy))
	fmt.Fprintf(w, "  Run: %v\n", run.Id)
	fmt.Fprintf(w, "  Thời gian chạy: %v\n", run.Duration)
	fmt.Fprintf(w, "  Đã xếp: %d/%d\n", run.Assigned(), run.Courses)
	fmt.Fprintf(w, "  Hợp lệ: %v\n", run.Valid)
	fmt.Fprintf(w, "  Fitness: %.2f (liên tiếp %.2f, phòng %.2f)\n", run.Fitness.Total, run.Fitness.Consecutive, run.Fitness.RoomUsage)

	if len(run.Unassigned) > 0 {
		fmt.Fprintln(w, "  Chưa xếp:")
		for _, courseId := range run.Unassigned {
			course := input.Courses[courseId]
			fmt.Fprintf(w, "    - %v (%v - %v)\n", courseId, course.Name, course.StudentClass)
		}
	}
	for _, infeasibility := range run.Infeasibilities {
		fmt.Fprintf(w, "  ! %v\n", infeasibility)
	}
	rule(w, "=")
}

// WriteReport prints every console section of a run
func WriteReport(w io.Writer, run *Run, input model.ModelInput) {
	WriteTable(w, run.Rows, "LỊCH HỌC")
	courseRows := []Row{}
	if run.Schedule != nil {
		courseRows = CourseRows(run.Schedule, input)
	}
	WriteByCourse(w, courseRows, "LỊCH HỌC THEO MÔN")
	WriteStatistics(w, run.Statistics)
	WriteSummary(w, run, input)
}

