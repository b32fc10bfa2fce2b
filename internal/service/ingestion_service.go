package service

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/model"
	"github.com/Divya20-05/Learning-Intelligence-Tool/pkg/logger"

	"go.uber.org/zap"
)

// 支持的输入格式
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

type IngestionService struct{}

func NewIngestionService() *IngestionService {
	return &IngestionService{}
}

// rawRow 解析后未校验的一行,Index为数据行号(从1开始)
type rawRow struct {
	Index  int
	Values map[string]string
}

// Ingest 解析并逐行校验输入,校验是全量的: 每一行都被归入接受或拒绝,
// 诊断信息覆盖所有违规而不是止于首个错误。
// 表头级违规(缺列/未知列/无法解析)直接返回SchemaError;
// strict为真时任何被拒绝的行也会升级为SchemaError。
func (s *IngestionService) Ingest(r io.Reader, format string, strict bool) ([]model.ActivityRecord, *model.ValidationReport, error) {
	var rows []rawRow
	var rowViolations []model.RowViolation
	var err error

	switch format {
	case FormatCSV:
		rows, rowViolations, err = s.parseCSV(r)
	case FormatJSON:
		rows, rowViolations, err = s.parseJSON(r)
	default:
		return nil, nil, fmt.Errorf("不支持的输入格式: %s", format)
	}
	if err != nil {
		return nil, nil, err
	}

	report := &model.ValidationReport{Violations: rowViolations}

	records := make([]model.ActivityRecord, 0, len(rows))
	seen := make(map[string]bool, len(rows))

	for _, row := range rows {
		rec, violations := validateRow(row)
		if len(violations) > 0 {
			report.Violations = append(report.Violations, violations...)
			continue
		}

		key := fmt.Sprintf("%s|%s|%d", rec.StudentID, rec.CourseID, rec.ChapterOrder)
		if seen[key] {
			report.Violations = append(report.Violations, model.RowViolation{
				Row:    row.Index,
				Column: "chapter_order",
				Value:  key,
				Reason: "重复记录: (student_id, course_id, chapter_order)已出现过",
			})
			continue
		}
		seen[key] = true
		records = append(records, rec)
	}

	rejected := countRejectedRows(report.Violations)
	report.AcceptedRows = len(records)
	report.RejectedRows = rejected
	report.TotalRows = report.AcceptedRows + report.RejectedRows

	logger.Log.Info("输入校验完成",
		zap.Int("total", report.TotalRows),
		zap.Int("accepted", report.AcceptedRows),
		zap.Int("rejected", report.RejectedRows))

	if strict && report.RejectedRows > 0 {
		return nil, report, &model.SchemaError{Violations: report.Violations}
	}
	return records, report, nil
}

// parseCSV 读取表头并做精确列名校验,列名大小写敏感
func (s *IngestionService) parseCSV(r io.Reader) ([]rawRow, []model.RowViolation, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, &model.SchemaError{Violations: []model.RowViolation{{
			Row:    0,
			Reason: "无法读取CSV表头: " + err.Error(),
		}}}
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	if headerViolations := checkHeader(header); len(headerViolations) > 0 {
		return nil, nil, &model.SchemaError{Violations: headerViolations}
	}

	var rows []rawRow
	var violations []model.RowViolation
	index := 0
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		index++
		if err != nil {
			violations = append(violations, model.RowViolation{
				Row:    index,
				Reason: "行解析失败: " + err.Error(),
			})
			continue
		}

		values := make(map[string]string, len(header))
		for i, col := range header {
			values[col] = strings.TrimSpace(fields[i])
		}
		rows = append(rows, rawRow{Index: index, Values: values})
	}
	return rows, violations, nil
}

// parseJSON 接受对象数组,每个对象的键集合逐行校验
func (s *IngestionService) parseJSON(r io.Reader) ([]rawRow, []model.RowViolation, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("读取输入失败: %w", err)
	}

	var objects []map[string]any
	if err := json.Unmarshal(data, &objects); err != nil {
		return nil, nil, &model.SchemaError{Violations: []model.RowViolation{{
			Row:    0,
			Reason: "JSON解析失败: 期望对象数组, " + err.Error(),
		}}}
	}

	var rows []rawRow
	var violations []model.RowViolation
	for i, obj := range objects {
		index := i + 1
		rowBad := false

		for _, col := range model.RequiredColumns {
			if _, ok := obj[col]; !ok {
				violations = append(violations, model.RowViolation{
					Row:    index,
					Column: col,
					Reason: "缺少该列",
				})
				rowBad = true
			}
		}

		var extra []string
		for key := range obj {
			if !isRequiredColumn(key) {
				extra = append(extra, key)
			}
		}
		sort.Strings(extra)
		for _, key := range extra {
			violations = append(violations, model.RowViolation{
				Row:    index,
				Column: key,
				Reason: "未知列",
			})
			rowBad = true
		}

		if rowBad {
			continue
		}

		values := make(map[string]string, len(obj))
		for _, col := range model.RequiredColumns {
			values[col] = jsonScalarString(obj[col])
		}
		rows = append(rows, rawRow{Index: index, Values: values})
	}
	return rows, violations, nil
}

// validateRow 对单行做类型与取值范围校验,返回该行全部违规
func validateRow(row rawRow) (model.ActivityRecord, []model.RowViolation) {
	var rec model.ActivityRecord
	var violations []model.RowViolation

	reject := func(col, value, reason string) {
		violations = append(violations, model.RowViolation{
			Row:    row.Index,
			Column: col,
			Value:  value,
			Reason: reason,
		})
	}

	rec.StudentID = row.Values["student_id"]
	if rec.StudentID == "" {
		reject("student_id", "", "不能为空")
	}

	rec.CourseID = row.Values["course_id"]
	if rec.CourseID == "" {
		reject("course_id", "", "不能为空")
	}

	if v := row.Values["chapter_order"]; v == "" {
		reject("chapter_order", v, "不能为空")
	} else if n, err := strconv.Atoi(v); err != nil {
		reject("chapter_order", v, "必须为整数")
	} else if n < 1 {
		reject("chapter_order", v, "必须为正整数")
	} else {
		rec.ChapterOrder = n
	}

	if v := row.Values["time_spent"]; v == "" {
		reject("time_spent", v, "不能为空")
	} else if f, err := strconv.ParseFloat(v, 64); err != nil {
		reject("time_spent", v, "必须为数值")
	} else if f < 0 {
		reject("time_spent", v, "不能为负数")
	} else {
		rec.TimeSpent = f
	}

	if v := row.Values["score"]; v == "" {
		reject("score", v, "不能为空")
	} else if f, err := strconv.ParseFloat(v, 64); err != nil {
		reject("score", v, "必须为数值")
	} else if f < 0 || f > 100 {
		reject("score", v, "必须在0到100之间")
	} else {
		rec.Score = f
	}

	if v := row.Values["completion_status"]; v == "" {
		reject("completion_status", v, "不能为空")
	} else if n, err := strconv.Atoi(v); err != nil || (n != 0 && n != 1) {
		reject("completion_status", v, "必须为0或1")
	} else {
		rec.CompletionStatus = n
	}

	if len(violations) > 0 {
		return model.ActivityRecord{}, violations
	}
	return rec, nil
}

// checkHeader 表头必须与六个必需列精确一致
func checkHeader(header []string) []model.RowViolation {
	var violations []model.RowViolation
	counts := make(map[string]int, len(header))
	for _, col := range header {
		counts[col]++
	}

	for _, col := range model.RequiredColumns {
		if counts[col] == 0 {
			violations = append(violations, model.RowViolation{
				Row:    0,
				Column: col,
				Reason: "缺少该列",
			})
		}
	}
	var extra []string
	for col, n := range counts {
		if !isRequiredColumn(col) {
			extra = append(extra, col)
		} else if n > 1 {
			violations = append(violations, model.RowViolation{
				Row:    0,
				Column: col,
				Reason: "列重复出现",
			})
		}
	}
	sort.Strings(extra)
	for _, col := range extra {
		violations = append(violations, model.RowViolation{
			Row:    0,
			Column: col,
			Reason: "未知列",
		})
	}
	return violations
}

func isRequiredColumn(col string) bool {
	for _, c := range model.RequiredColumns {
		if c == col {
			return true
		}
	}
	return false
}

// countRejectedRows 同一行的多处违规只计一次
func countRejectedRows(violations []model.RowViolation) int {
	rows := make(map[int]bool, len(violations))
	for _, v := range violations {
		rows[v.Row] = true
	}
	return len(rows)
}

// jsonScalarString 将JSON标量统一渲染为字符串供统一校验
func jsonScalarString(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case nil:
		return ""
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}
