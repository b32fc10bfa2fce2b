package service

import (
	"io"
	"math/rand"

	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/config"
	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/model"
	"github.com/Divya20-05/Learning-Intelligence-Tool/pkg/ensemble"
	"github.com/Divya20-05/Learning-Intelligence-Tool/pkg/logger"

	"go.uber.org/zap"
)

// 少于这个学生数就没有划分验证集的意义
const minTrainingSamples = 10

// TrainingService 离线训练完成率与流失两个模型。
// 标签取学生最后一条章节记录的完成状态,流失标签为其取反。
type TrainingService struct {
	Ingestion *IngestionService
	Feature   *FeatureService
}

func NewTrainingService(ingestion *IngestionService, feature *FeatureService) *TrainingService {
	return &TrainingService{Ingestion: ingestion, Feature: feature}
}

// TrainingResult 一次训练的产出与验证集指标
type TrainingResult struct {
	Samples            int     `json:"samples"`
	HoldoutSamples     int     `json:"holdout_samples"`
	CompletionAccuracy float64 `json:"completion_accuracy"`
	DropoutAccuracy    float64 `json:"dropout_accuracy"`
	DropoutRecall      float64 `json:"dropout_recall"`

	CompletionModel *ensemble.Forest           `json:"-"`
	DropoutModel    *ensemble.GradientBoosting `json:"-"`
}

// Train 从数据集读取、校验并构建特征后训练双模型
func (s *TrainingService) Train(r io.Reader, format string, cfg config.AnalyticsConfig) (*TrainingResult, error) {
	records, report, err := s.Ingestion.Ingest(r, format, cfg.StrictValidation)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("训练数据校验完成",
		zap.Int("accepted", report.AcceptedRows),
		zap.Int("rejected", report.RejectedRows))
	return s.TrainFromRecords(records, cfg)
}

// TrainFromRecords 在已校验的记录上训练,记录数不足时返回数据不足错误
func (s *TrainingService) TrainFromRecords(records []model.ActivityRecord, cfg config.AnalyticsConfig) (*TrainingResult, error) {
	students, _, err := s.Feature.BuildFeatures(records)
	if err != nil {
		return nil, err
	}
	if len(students) < minTrainingSamples {
		return nil, &model.InsufficientDataError{Reason: "训练样本不足,至少需要10名学生"}
	}

	labels := completionLabels(records)
	xs := make([][]float64, len(students))
	completion := make([]float64, len(students))
	dropout := make([]float64, len(students))
	for i, st := range students {
		xs[i] = st.Values()
		completion[i] = labels[st.StudentID]
		dropout[i] = 1 - labels[st.StudentID]
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	trainIdx, holdIdx := splitIndices(len(xs), rng)

	trainX := pickRows(xs, trainIdx)
	forest, err := ensemble.TrainForest(trainX, pickValues(completion, trainIdx), model.FeatureNames(), ensemble.DefaultForestConfig(cfg.Seed))
	if err != nil {
		return nil, err
	}
	boosting, err := ensemble.TrainBoosting(trainX, pickValues(dropout, trainIdx), model.FeatureNames(), ensemble.DefaultBoostingConfig(cfg.Seed))
	if err != nil {
		return nil, err
	}

	// 无验证集时退回在训练集上评估,指标仅供参考
	evalIdx := holdIdx
	if len(evalIdx) == 0 {
		evalIdx = trainIdx
	}
	result := &TrainingResult{
		Samples:         len(trainIdx),
		HoldoutSamples:  len(holdIdx),
		CompletionModel: forest,
		DropoutModel:    boosting,
	}
	result.CompletionAccuracy = accuracy(forest, xs, completion, evalIdx, cfg.CompletionThreshold)
	result.DropoutAccuracy = accuracy(boosting, xs, dropout, evalIdx, 0.5)
	result.DropoutRecall = recall(boosting, xs, dropout, evalIdx, 0.5)

	logger.Log.Info("模型训练完成",
		zap.Int("samples", result.Samples),
		zap.Int("holdout", result.HoldoutSamples),
		zap.Float64("completionAccuracy", result.CompletionAccuracy),
		zap.Float64("dropoutAccuracy", result.DropoutAccuracy),
		zap.Float64("dropoutRecall", result.DropoutRecall))
	return result, nil
}

// SaveModels 把训练产物写成版本化工件
func (s *TrainingService) SaveModels(result *TrainingResult, completionPath, dropoutPath string) error {
	if err := ensemble.SaveForest(completionPath, result.CompletionModel); err != nil {
		return err
	}
	return ensemble.SaveBoosting(dropoutPath, result.DropoutModel)
}

// completionLabels 每个学生取章节序号最大的记录的完成状态作为标签,
// 序号相同时取课程号较大者,保证与输入顺序无关
func completionLabels(records []model.ActivityRecord) map[string]float64 {
	type lastRecord struct {
		chapter int
		course  string
		status  int
	}
	last := make(map[string]lastRecord)
	for _, rec := range records {
		cur, ok := last[rec.StudentID]
		if !ok || rec.ChapterOrder > cur.chapter ||
			(rec.ChapterOrder == cur.chapter && rec.CourseID > cur.course) {
			last[rec.StudentID] = lastRecord{rec.ChapterOrder, rec.CourseID, rec.CompletionStatus}
		}
	}
	labels := make(map[string]float64, len(last))
	for id, rec := range last {
		labels[id] = float64(rec.status)
	}
	return labels
}

func splitIndices(n int, rng *rand.Rand) (train, holdout []int) {
	perm := rng.Perm(n)
	holdSize := n / 5
	holdout = append(holdout, perm[:holdSize]...)
	train = append(train, perm[holdSize:]...)
	return train, holdout
}

func pickRows(xs [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for i, j := range idx {
		out[i] = xs[j]
	}
	return out
}

func pickValues(ys []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = ys[j]
	}
	return out
}

func accuracy(m ensemble.Model, xs [][]float64, ys []float64, idx []int, threshold float64) float64 {
	if len(idx) == 0 {
		return 0
	}
	correct := 0
	for _, j := range idx {
		p, err := m.Predict(xs[j])
		if err != nil {
			continue
		}
		if (p >= threshold) == (ys[j] >= 0.5) {
			correct++
		}
	}
	return float64(correct) / float64(len(idx))
}

func recall(m ensemble.Model, xs [][]float64, ys []float64, idx []int, threshold float64) float64 {
	positives, hits := 0, 0
	for _, j := range idx {
		if ys[j] < 0.5 {
			continue
		}
		positives++
		p, err := m.Predict(xs[j])
		if err != nil {
			continue
		}
		if p >= threshold {
			hits++
		}
	}
	if positives == 0 {
		return 0
	}
	return float64(hits) / float64(positives)
}
