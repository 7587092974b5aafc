package report

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Column headers of the schedule table
const (
	HeaderDay     = "Thứ"
	HeaderSession = "Buổi"
	HeaderTime    = "Thời gian"
	HeaderCourse  = "Môn học"
	HeaderClass   = "Lớp"
	HeaderTeacher = "Giáo viên"
	HeaderRoom    = "Phòng học"
)

func NewDataset(rows []Row) Dataset {
	data := Dataset{
		Headers: []string{HeaderDay, HeaderSession, HeaderTime, HeaderCourse, HeaderClass, HeaderTeacher, HeaderRoom},
		Rows:    make([]map[string]string, 0, len(rows)),
	}
	for _, row := range rows {
		data.Rows = append(data.Rows, map[string]string{
			HeaderDay:     row.Day,
			HeaderSession: row.Session,
			HeaderTime:    row.Time,
			HeaderCourse:  row.Course,
			HeaderClass:   row.Class,
			HeaderTeacher: row.Teacher,
			HeaderRoom:    row.Room,
		})
	}
	return data
}

func (data Dataset) record(row map[string]string) []string {
	record := make([]string, len(data.Headers))
	for i, header := range data.Headers {
		record[i] = row[header]
	}
	return record
}
