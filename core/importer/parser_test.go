package importer

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRows(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []StudentRow
		wantErr error
	}{
		{name: "empty file", content: "", wantErr: ErrEmptyFile},
		{name: "blank header", content: " , ,\n", wantErr: ErrEmptyFile},
		{name: "header only", content: "rollNo,studentEmail,studentPhone\n"},
		{
			name:    "aliases",
			content: "Roll No, Name ,EMAIL,Mobile,Parent Phone,Guardian Email,Mentor,Class Name,Division\nSTU001,Jane Doe,jane@test.cd,9876543210,9876500001,mum@test.cd,mentor@test.cd,10,A\n",
			want: []StudentRow{{
				RowNumber: 2, RollNo: "STU001", FullName: "Jane Doe", StudentEmail: "jane@test.cd",
				StudentPhone: "9876543210", ParentsPhone: "9876500001", ParentsEmail: "mum@test.cd",
				MentorEmail: "mentor@test.cd", ClassName: "10", Section: "A",
			}},
		},
		{
			name:    "first non-empty alias wins",
			content: "student_id,rollNo,email,studentEmail\n,STU001,jane@test.cd,\n",
			want:    []StudentRow{{RowNumber: 2, RollNo: "STU001", StudentEmail: "jane@test.cd"}},
		},
		{
			name:    "bom and blank rows",
			content: "\ufeffrollNo,studentEmail\nSTU001,a@test.cd\n\n , \nSTU002,b@test.cd\n",
			want: []StudentRow{
				{RowNumber: 2, RollNo: "STU001", StudentEmail: "a@test.cd"},
				{RowNumber: 5, RollNo: "STU002", StudentEmail: "b@test.cd"},
			},
		},
		{
			name:    "ragged rows",
			content: "rollNo,studentEmail,studentPhone,section\nSTU001\nSTU002,b@test.cd,9876543210,B,extra\n",
			want: []StudentRow{
				{RowNumber: 2, RollNo: "STU001"},
				{RowNumber: 3, RollNo: "STU002", StudentEmail: "b@test.cd", StudentPhone: "9876543210", Section: "B"},
			},
		},
		{
			name:    "stray quote",
			content: "rollNo,studentEmail,studentPhone\nSTU001,a@test.cd,9876543210\nSTU002,b@test.cd,\"98765\"43211\nSTU003,c@test.cd,9876543212\n",
			want: []StudentRow{
				{RowNumber: 2, RollNo: "STU001", StudentEmail: "a@test.cd", StudentPhone: "9876543210"},
				{RowNumber: 3, ParseError: "invalid CSV row: " + csv.ErrQuote.Error()},
				{RowNumber: 4, RollNo: "STU003", StudentEmail: "c@test.cd", StudentPhone: "9876543212"},
			},
		},
		{
			name:    "unterminated quote",
			content: "rollNo,studentEmail\nSTU001,a@test.cd\nSTU002,\"b@test.cd\nSTU003,c@test.cd\n",
			want: []StudentRow{
				{RowNumber: 2, RollNo: "STU001", StudentEmail: "a@test.cd"},
				{RowNumber: 3, ParseError: "invalid CSV row: " + csv.ErrQuote.Error()},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := ParseRows(strings.NewReader(tt.content))
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, rows)
		})
	}
}

func TestTemplate(t *testing.T) {
	rows, err := ParseRows(bytes.NewReader(Template()))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, StudentRow{
		RowNumber:    2,
		RollNo:       "STU001",
		FullName:     "Aarav Sharma",
		StudentEmail: "aarav.sharma@example.com",
		StudentPhone: "9876543210",
		ParentsPhone: "9876500001",
		ParentsEmail: "parent.sharma@example.com",
		MentorEmail:  "mentor@example.com",
		ClassName:    "10",
		Section:      "A",
	}, rows[0])
	assert.Equal(t, 4, rows[2].RowNumber)
	assert.Empty(t, rows[2].MentorEmail)
}
