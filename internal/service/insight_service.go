package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/model"
)

// InsightService 汇总各阶段产物生成洞察报告,只做呈现层聚合,不重算统计
type InsightService struct{}

func NewInsightService() *InsightService {
	return &InsightService{}
}

// InsightInput 报告生成所需的全部上游产物
type InsightInput struct {
	Validation           *model.ValidationReport
	Predictions          []model.PredictionResult
	Chapters             []model.ChapterDifficultyResult
	Excluded             []model.ExcludedChapter
	CompletionImportance map[string]float64
	DropoutImportance    map[string]float64
}

// recommendationRule 规则表的一行: 指标满足条件时触发对应建议
type recommendationRule struct {
	Metric    string
	Op        string // lt 或 gt
	Threshold float64
	Message   string
}

// 建议规则表,数据驱动,新增规则只需加一行
var recommendationRules = []recommendationRule{
	{"predicted_completion_rate", "lt", 0.6, "预测完成率低于60%, 建议调整课程节奏并安排阶段性复习"},
	{"high_risk_rate", "gt", 0.3, "高风险学生占比超过30%, 建议教师按风险名单逐一跟进"},
	{"high_risk_count", "gt", 0, "存在高风险学生, 建议发送学习提醒并提供针对性辅导"},
	{"max_difficulty_score", "gt", 70, "存在难度分超过70的章节, 建议为其补充讲解材料与配套练习"},
	{"mean_dropout_probability", "gt", 0.5, "平均流失概率超过50%, 建议重新评估课程范围与先修要求"},
	{"chapters_excluded", "gt", 0, "部分章节因样本量不足未参与难度排名, 建议积累更多学习数据后重新分析"},
}

// GenerateReport 构建最终报告: 汇总统计、排序后的名单、特征贡献度、规则化建议,
// 以及被拒绝行与被排除章节的完整诊断清单。
func (s *InsightService) GenerateReport(in InsightInput) *model.InsightReport {
	report := &model.InsightReport{
		GeneratedAt:          time.Now().Format(time.RFC3339),
		SummaryStats:         buildSummary(in),
		Predictions:          in.Predictions,
		HighRiskStudents:     buildHighRiskList(in.Predictions),
		DifficultChapters:    in.Chapters,
		CompletionImportance: rankImportances(in.CompletionImportance),
		DropoutImportance:    rankImportances(in.DropoutImportance),
	}

	report.Recommendations = evaluateRules(buildMetrics(report.SummaryStats, in.Chapters))

	if in.Validation != nil {
		report.Diagnostics.RejectedRows = in.Validation.Violations
	}
	report.Diagnostics.ExcludedChapters = in.Excluded

	return report
}

func buildSummary(in InsightInput) model.SummaryStats {
	stats := model.SummaryStats{
		TotalStudents:    len(in.Predictions),
		ChaptersScored:   len(in.Chapters),
		ChaptersExcluded: len(in.Excluded),
	}

	sumCompletion := 0.0
	sumDropout := 0.0
	for _, p := range in.Predictions {
		if p.PredictedCompletion {
			stats.PredictedCompletions++
		}
		sumCompletion += p.CompletionProbability
		sumDropout += p.DropoutProbability

		switch p.RiskLevel {
		case model.RiskHigh:
			stats.HighRiskCount++
		case model.RiskMedium:
			stats.MediumRiskCount++
		default:
			stats.LowRiskCount++
		}
	}

	stats.PredictedDropouts = stats.TotalStudents - stats.PredictedCompletions
	if stats.TotalStudents > 0 {
		n := float64(stats.TotalStudents)
		stats.PredictedCompletionRate = float64(stats.PredictedCompletions) / n
		stats.MeanCompletionProb = sumCompletion / n
		stats.MeanDropoutProb = sumDropout / n
		stats.HighRiskRate = float64(stats.HighRiskCount) / n
	}
	return stats
}

// buildHighRiskList High在前Medium次之,同级按流失概率降序,再按student_id升序
func buildHighRiskList(predictions []model.PredictionResult) []model.HighRiskStudent {
	var list []model.HighRiskStudent
	for _, p := range predictions {
		if p.RiskLevel == model.RiskHigh || p.RiskLevel == model.RiskMedium {
			list = append(list, model.HighRiskStudent{
				StudentID:             p.StudentID,
				RiskLevel:             p.RiskLevel,
				DropoutProbability:    p.DropoutProbability,
				CompletionProbability: p.CompletionProbability,
			})
		}
	}

	rank := map[model.RiskLevel]int{model.RiskHigh: 0, model.RiskMedium: 1}
	sort.Slice(list, func(i, j int) bool {
		if rank[list[i].RiskLevel] != rank[list[j].RiskLevel] {
			return rank[list[i].RiskLevel] < rank[list[j].RiskLevel]
		}
		if list[i].DropoutProbability != list[j].DropoutProbability {
			return list[i].DropoutProbability > list[j].DropoutProbability
		}
		return list[i].StudentID < list[j].StudentID
	})
	return list
}

// rankImportances 贡献度降序,同值按特征名升序保证稳定
func rankImportances(importances map[string]float64) []model.FeatureImportance {
	ranked := make([]model.FeatureImportance, 0, len(importances))
	for feature, value := range importances {
		ranked = append(ranked, model.FeatureImportance{Feature: feature, Importance: value})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Importance != ranked[j].Importance {
			return ranked[i].Importance > ranked[j].Importance
		}
		return ranked[i].Feature < ranked[j].Feature
	})
	return ranked
}

func buildMetrics(stats model.SummaryStats, chapters []model.ChapterDifficultyResult) map[string]float64 {
	maxDifficulty := 0.0
	if len(chapters) > 0 {
		// 章节列表已按难度降序排列
		maxDifficulty = chapters[0].DifficultyScore
	}
	return map[string]float64{
		"predicted_completion_rate": stats.PredictedCompletionRate,
		"high_risk_rate":            stats.HighRiskRate,
		"high_risk_count":           float64(stats.HighRiskCount),
		"mean_dropout_probability":  stats.MeanDropoutProb,
		"max_difficulty_score":      maxDifficulty,
		"chapters_excluded":         float64(stats.ChaptersExcluded),
	}
}

func evaluateRules(metrics map[string]float64) []model.Recommendation {
	var recommendations []model.Recommendation
	for _, rule := range recommendationRules {
		value, ok := metrics[rule.Metric]
		if !ok {
			continue
		}
		triggered := (rule.Op == "lt" && value < rule.Threshold) ||
			(rule.Op == "gt" && value > rule.Threshold)
		if triggered {
			recommendations = append(recommendations, model.Recommendation{
				Trigger: fmt.Sprintf("%s %s %v (当前%.4g)", rule.Metric, opSymbol(rule.Op), rule.Threshold, value),
				Message: rule.Message,
			})
		}
	}

	if len(recommendations) == 0 {
		recommendations = append(recommendations, model.Recommendation{
			Trigger: "default",
			Message: "各项核心指标均在正常范围内, 维持当前教学安排即可",
		})
	}
	return recommendations
}

func opSymbol(op string) string {
	if op == "lt" {
		return "<"
	}
	return ">"
}
