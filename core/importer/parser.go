package importer

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrEmptyFile = errors.New("the file is empty or has no header row")

	utf8BOM = "\ufeff"
)

// Logical CSV fields
const (
	fieldRollNo       = "rollNo"
	fieldFullName     = "fullName"
	fieldStudentEmail = "studentEmail"
	fieldStudentPhone = "studentPhone"
	fieldParentsPhone = "parentsPhone"
	fieldParentsEmail = "parentsEmail"
	fieldMentorEmail  = "mentorEmail"
	fieldClassName    = "className"
	fieldSection      = "section"
)

// aliases lists, per logical field, the accepted header spellings in lookup order.
// Headers are matched case-insensitively after trimming.
var aliases = []struct {
	field string
	names []string
}{
	{fieldRollNo, []string{"rollno", "roll_no", "roll no", "roll number", "rollnumber", "roll_number", "studentid", "student_id", "student id"}},
	{fieldFullName, []string{"fullname", "full_name", "full name", "name", "studentname", "student_name", "student name"}},
	{fieldStudentEmail, []string{"studentemail", "student_email", "student email", "email", "email address", "emailaddress"}},
	{fieldStudentPhone, []string{"studentphone", "student_phone", "student phone", "phone", "phone number", "phonenumber", "mobile", "contact"}},
	{fieldParentsPhone, []string{"parentsphone", "parents_phone", "parents phone", "parentphone", "parent_phone", "parent phone", "guardianphone", "guardian phone"}},
	{fieldParentsEmail, []string{"parentsemail", "parents_email", "parents email", "parentemail", "parent_email", "parent email", "guardianemail", "guardian email"}},
	{fieldMentorEmail, []string{"mentoremail", "mentor_email", "mentor email", "mentor"}},
	{fieldClassName, []string{"classname", "class_name", "class name", "class"}},
	{fieldSection, []string{"section", "sec", "division"}},
}

// StudentRow is one line of an import file.
type StudentRow struct {
	RowNumber    int    `json:"row"`
	RollNo       string `json:"roll_no" validate:"required"`
	FullName     string `json:"full_name"`
	StudentEmail string `json:"student_email" validate:"required,simple_email"`
	StudentPhone string `json:"student_phone" validate:"required,phone10"`
	ParentsPhone string `json:"parents_phone"`
	ParentsEmail string `json:"parents_email"`
	MentorEmail  string `json:"mentor_email"`
	ClassName    string `json:"class_name"`
	Section      string `json:"section"`

	// ParseError is set when the line is not valid CSV; the other fields are then empty.
	ParseError string `json:"-"`
}

// headerIndex maps a lower-cased header to its column.
type headerIndex map[string]int

func newHeaderIndex(header []string) headerIndex {
	idx := make(headerIndex, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		h = strings.ToLower(strings.TrimSpace(h))
		if _, ok := idx[h]; !ok && h != "" {
			idx[h] = i
		}
	}
	return idx
}

// value returns the first non-empty value among the aliases of field.
func (idx headerIndex) value(record []string, names []string) string {
	for _, name := range names {
		i, ok := idx[name]
		if !ok || i >= len(record) {
			continue
		}
		if v := strings.TrimSpace(record[i]); v != "" {
			return v
		}
	}
	return ""
}

// ParseRows reads an import file. Rows are numbered by line, the header being line 1.
// Blank rows are skipped. A malformed line is returned as a row carrying its ParseError.
func ParseRows(r io.Reader) ([]StudentRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // tolerate ragged rows
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading header")
	}
	idx := newHeaderIndex(header)
	if len(idx) == 0 {
		return nil, ErrEmptyFile
	}

	var rows []StudentRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pErr *csv.ParseError
			if !errors.As(err, &pErr) {
				return nil, errors.Wrap(err, "reading row")
			}
			rows = append(rows, StudentRow{RowNumber: pErr.StartLine, ParseError: "invalid CSV row: " + pErr.Err.Error()})
			continue
		}
		if isBlank(record) {
			continue
		}
		line, _ := reader.FieldPos(0)

		vals := make(map[string]string, len(aliases))
		for _, a := range aliases {
			vals[a.field] = idx.value(record, a.names)
		}
		rows = append(rows, StudentRow{
			RowNumber:    line,
			RollNo:       vals[fieldRollNo],
			FullName:     vals[fieldFullName],
			StudentEmail: vals[fieldStudentEmail],
			StudentPhone: vals[fieldStudentPhone],
			ParentsPhone: vals[fieldParentsPhone],
			ParentsEmail: vals[fieldParentsEmail],
			MentorEmail:  vals[fieldMentorEmail],
			ClassName:    vals[fieldClassName],
			Section:      vals[fieldSection],
		})
	}
	return rows, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

const csvTemplate = `rollNo,fullName,studentEmail,studentPhone,parentsPhone,parentsEmail,mentorEmail,class,section
STU001,Aarav Sharma,aarav.sharma@example.com,9876543210,9876500001,parent.sharma@example.com,mentor@example.com,10,A
STU002,Diya Patel,diya.patel@example.com,9876543211,9876500002,parent.patel@example.com,mentor@example.com,10,B
STU003,Kabir Singh,kabir.singh@example.com,9876543212,9876500003,parent.singh@example.com,,11,A
`

// Template returns the CSV template of an import file.
func Template() []byte {
	return []byte(csvTemplate)
}
