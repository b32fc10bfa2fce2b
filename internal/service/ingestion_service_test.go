package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findViolation(violations []model.RowViolation, row int, column string) *model.RowViolation {
	for i := range violations {
		if violations[i].Row == row && violations[i].Column == column {
			return &violations[i]
		}
	}
	return nil
}

func TestIngestCSVAcceptsValidRows(t *testing.T) {
	data := "student_id,course_id,chapter_order,time_spent,score,completion_status\n" +
		"s1,c1,1,30,80,1\n" +
		"s1,c1,2,45.5,70.5,0\n" +
		"s2,c1,1,20,90,1\n"

	svc := NewIngestionService()
	records, report, err := svc.Ingest(strings.NewReader(data), FormatCSV, false)

	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, 3, report.TotalRows)
	assert.Equal(t, 3, report.AcceptedRows)
	assert.Equal(t, 0, report.RejectedRows)
	assert.Empty(t, report.Violations)

	assert.Equal(t, "s1", records[1].StudentID)
	assert.Equal(t, "c1", records[1].CourseID)
	assert.Equal(t, 2, records[1].ChapterOrder)
	assert.Equal(t, 45.5, records[1].TimeSpent)
	assert.Equal(t, 70.5, records[1].Score)
	assert.Equal(t, 0, records[1].CompletionStatus)
}

func TestIngestCSVHeaderMissingColumn(t *testing.T) {
	data := "student_id,course_id,chapter_order,time_spent,score\n" +
		"s1,c1,1,30,80\n"

	svc := NewIngestionService()
	records, report, err := svc.Ingest(strings.NewReader(data), FormatCSV, false)

	require.Error(t, err)
	assert.Nil(t, records)
	assert.Nil(t, report)

	var schemaErr *model.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	require.Len(t, schemaErr.Violations, 1)
	assert.Equal(t, "completion_status", schemaErr.Violations[0].Column)
	assert.Equal(t, "缺少该列", schemaErr.Violations[0].Reason)
}

func TestIngestCSVHeaderUnknownColumn(t *testing.T) {
	data := "student_id,course_id,chapter_order,time_spent,score,completion_status,grade\n" +
		"s1,c1,1,30,80,1,A\n"

	svc := NewIngestionService()
	_, _, err := svc.Ingest(strings.NewReader(data), FormatCSV, false)

	var schemaErr *model.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	require.Len(t, schemaErr.Violations, 1)
	assert.Equal(t, "grade", schemaErr.Violations[0].Column)
	assert.Equal(t, "未知列", schemaErr.Violations[0].Reason)
}

// 列名大小写敏感: 大小写不符的列同时报缺失与未知
func TestIngestCSVHeaderCaseSensitive(t *testing.T) {
	data := "Student_ID,course_id,chapter_order,time_spent,score,completion_status\n" +
		"s1,c1,1,30,80,1\n"

	svc := NewIngestionService()
	_, _, err := svc.Ingest(strings.NewReader(data), FormatCSV, false)

	var schemaErr *model.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	require.Len(t, schemaErr.Violations, 2)

	missing := findViolation(schemaErr.Violations, 0, "student_id")
	require.NotNil(t, missing)
	assert.Equal(t, "缺少该列", missing.Reason)

	unknown := findViolation(schemaErr.Violations, 0, "Student_ID")
	require.NotNil(t, unknown)
	assert.Equal(t, "未知列", unknown.Reason)
}

func TestIngestCSVHeaderDuplicateColumn(t *testing.T) {
	data := "student_id,course_id,chapter_order,time_spent,score,score,completion_status\n" +
		"s1,c1,1,30,80,80,1\n"

	svc := NewIngestionService()
	_, _, err := svc.Ingest(strings.NewReader(data), FormatCSV, false)

	var schemaErr *model.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	dup := findViolation(schemaErr.Violations, 0, "score")
	require.NotNil(t, dup)
	assert.Equal(t, "列重复出现", dup.Reason)
}

// 行级违规不中断处理: 每行都被归入接受或拒绝,诊断覆盖全部违规
func TestIngestCSVRowViolations(t *testing.T) {
	data := "student_id,course_id,chapter_order,time_spent,score,completion_status\n" +
		"s1,c1,1,30,80,1\n" +
		",c1,2,30,80,1\n" +
		"s2,c1,0,30,80,1\n" +
		"s3,c1,2,-5,80,1\n" +
		"s4,c1,2,30,150,1\n" +
		"s5,c1,2,30,80,2\n" +
		"s6,c1,abc,30,80,1\n"

	svc := NewIngestionService()
	records, report, err := svc.Ingest(strings.NewReader(data), FormatCSV, false)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "s1", records[0].StudentID)
	assert.Equal(t, 7, report.TotalRows)
	assert.Equal(t, 1, report.AcceptedRows)
	assert.Equal(t, 6, report.RejectedRows)
	require.Len(t, report.Violations, 6)

	cases := []struct {
		row    int
		column string
		reason string
	}{
		{2, "student_id", "不能为空"},
		{3, "chapter_order", "必须为正整数"},
		{4, "time_spent", "不能为负数"},
		{5, "score", "必须在0到100之间"},
		{6, "completion_status", "必须为0或1"},
		{7, "chapter_order", "必须为整数"},
	}
	for _, tc := range cases {
		v := findViolation(report.Violations, tc.row, tc.column)
		require.NotNil(t, v, "第%d行应有%s的违规", tc.row, tc.column)
		assert.Equal(t, tc.reason, v.Reason)
	}
}

// 单行多处违规只使该行被拒绝一次
func TestIngestCSVMultipleViolationsCountOneRow(t *testing.T) {
	data := "student_id,course_id,chapter_order,time_spent,score,completion_status\n" +
		",,0,-1,200,5\n" +
		"s1,c1,1,30,80,1\n"

	svc := NewIngestionService()
	records, report, err := svc.Ingest(strings.NewReader(data), FormatCSV, false)

	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 2, report.TotalRows)
	assert.Equal(t, 1, report.RejectedRows)
	assert.Len(t, report.Violations, 6)
}

func TestIngestCSVMalformedRowContinues(t *testing.T) {
	data := "student_id,course_id,chapter_order,time_spent,score,completion_status\n" +
		"s1,c1,1,30,80\n" +
		"s2,c1,1,30,80,1\n"

	svc := NewIngestionService()
	records, report, err := svc.Ingest(strings.NewReader(data), FormatCSV, false)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "s2", records[0].StudentID)
	assert.Equal(t, 1, report.RejectedRows)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, 1, report.Violations[0].Row)
	assert.Contains(t, report.Violations[0].Reason, "行解析失败")
}

// 重复的(student_id, course_id, chapter_order)保留首条
func TestIngestCSVDuplicateFirstWins(t *testing.T) {
	data := "student_id,course_id,chapter_order,time_spent,score,completion_status\n" +
		"s1,c1,1,30,80,1\n" +
		"s1,c1,1,99,10,0\n"

	svc := NewIngestionService()
	records, report, err := svc.Ingest(strings.NewReader(data), FormatCSV, false)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 80.0, records[0].Score)
	assert.Equal(t, 1, records[0].CompletionStatus)
	assert.Equal(t, 1, report.RejectedRows)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, 2, report.Violations[0].Row)
	assert.Contains(t, report.Violations[0].Reason, "重复记录")
}

func TestIngestStrictEscalatesRowViolations(t *testing.T) {
	data := "student_id,course_id,chapter_order,time_spent,score,completion_status\n" +
		"s1,c1,1,30,80,1\n" +
		"s2,c1,1,30,999,1\n"

	svc := NewIngestionService()
	records, report, err := svc.Ingest(strings.NewReader(data), FormatCSV, true)

	require.Error(t, err)
	assert.Nil(t, records)
	require.NotNil(t, report)
	assert.Equal(t, 1, report.RejectedRows)

	var schemaErr *model.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	require.Len(t, schemaErr.Violations, 1)
	assert.Equal(t, "score", schemaErr.Violations[0].Column)
}

func TestIngestStrictPassesCleanData(t *testing.T) {
	data := "student_id,course_id,chapter_order,time_spent,score,completion_status\n" +
		"s1,c1,1,30,80,1\n"

	svc := NewIngestionService()
	records, _, err := svc.Ingest(strings.NewReader(data), FormatCSV, true)

	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestIngestCSVEmptyInput(t *testing.T) {
	svc := NewIngestionService()
	_, _, err := svc.Ingest(strings.NewReader(""), FormatCSV, false)

	var schemaErr *model.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Contains(t, schemaErr.Violations[0].Reason, "无法读取CSV表头")
}

func TestIngestCSVHeaderOnly(t *testing.T) {
	data := "student_id,course_id,chapter_order,time_spent,score,completion_status\n"

	svc := NewIngestionService()
	records, report, err := svc.Ingest(strings.NewReader(data), FormatCSV, false)

	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, 0, report.TotalRows)
	assert.Equal(t, 0, report.AcceptedRows)
	assert.Equal(t, 0, report.RejectedRows)
}

// JSON标量既接受数值也接受数值字符串
func TestIngestJSONAcceptsNumbersAndStrings(t *testing.T) {
	data := `[
		{"student_id":"s1","course_id":"c1","chapter_order":1,"time_spent":30,"score":80.5,"completion_status":1},
		{"student_id":"s2","course_id":"c1","chapter_order":"2","time_spent":"45.5","score":"70","completion_status":"0"}
	]`

	svc := NewIngestionService()
	records, report, err := svc.Ingest(strings.NewReader(data), FormatJSON, false)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 2, report.AcceptedRows)

	assert.Equal(t, 1, records[0].ChapterOrder)
	assert.Equal(t, 80.5, records[0].Score)
	assert.Equal(t, 2, records[1].ChapterOrder)
	assert.Equal(t, 45.5, records[1].TimeSpent)
	assert.Equal(t, 70.0, records[1].Score)
	assert.Equal(t, 0, records[1].CompletionStatus)
}

func TestIngestJSONRowKeyViolations(t *testing.T) {
	data := `[
		{"student_id":"s1","course_id":"c1","chapter_order":1,"time_spent":30,"score":80,"completion_status":1},
		{"student_id":"s2","chapter_order":1,"time_spent":30,"score":80,"completion_status":1,"extra":"x"}
	]`

	svc := NewIngestionService()
	records, report, err := svc.Ingest(strings.NewReader(data), FormatJSON, false)

	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 2, report.TotalRows)
	assert.Equal(t, 1, report.RejectedRows)
	require.Len(t, report.Violations, 2)

	missing := findViolation(report.Violations, 2, "course_id")
	require.NotNil(t, missing)
	assert.Equal(t, "缺少该列", missing.Reason)

	unknown := findViolation(report.Violations, 2, "extra")
	require.NotNil(t, unknown)
	assert.Equal(t, "未知列", unknown.Reason)
}

// JSON null视同空值,按行级违规处理而不是模式错误
func TestIngestJSONNullValue(t *testing.T) {
	data := `[{"student_id":"s1","course_id":"c1","chapter_order":1,"time_spent":30,"score":null,"completion_status":1}]`

	svc := NewIngestionService()
	records, report, err := svc.Ingest(strings.NewReader(data), FormatJSON, false)

	require.NoError(t, err)
	assert.Empty(t, records)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, "score", report.Violations[0].Column)
	assert.Equal(t, "不能为空", report.Violations[0].Reason)
}

func TestIngestJSONTopLevelNotArray(t *testing.T) {
	svc := NewIngestionService()
	_, _, err := svc.Ingest(strings.NewReader(`{"student_id":"s1"}`), FormatJSON, false)

	var schemaErr *model.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Contains(t, schemaErr.Violations[0].Reason, "JSON解析失败")
}

func TestIngestUnsupportedFormat(t *testing.T) {
	svc := NewIngestionService()
	_, _, err := svc.Ingest(strings.NewReader("x"), "xml", false)

	require.Error(t, err)
	var schemaErr *model.SchemaError
	assert.False(t, errors.As(err, &schemaErr))
	assert.Contains(t, err.Error(), "不支持的输入格式")
}
