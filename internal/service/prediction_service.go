package service

import (
	"sync"

	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/config"
	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/model"
	"github.com/Divya20-05/Learning-Intelligence-Tool/pkg/ensemble"
	"github.com/Divya20-05/Learning-Intelligence-Tool/pkg/logger"

	"go.uber.org/zap"
)

// PredictionService 持有两套已训练模型: 完成率分类器与流失风险分类器。
// 模型加载后只读,可被并发请求安全共享; 阈值支持热更新,不需要重新训练。
type PredictionService struct {
	mu                  sync.RWMutex
	completionModel     ensemble.Model
	dropoutModel        ensemble.Model
	completionThreshold float64
	riskHigh            float64
	riskMedium          float64
}

func NewPredictionService(cfg config.AnalyticsConfig) *PredictionService {
	return &PredictionService{
		completionThreshold: cfg.CompletionThreshold,
		riskHigh:            cfg.RiskHighThreshold,
		riskMedium:          cfg.RiskMediumThreshold,
	}
}

// LoadModels 从训练产物加载两个模型,特征模式不匹配时报错
func (s *PredictionService) LoadModels(completionPath, dropoutPath string) error {
	names := model.FeatureNames()

	completion, err := ensemble.LoadModel(completionPath, names)
	if err != nil {
		return err
	}
	dropout, err := ensemble.LoadModel(dropoutPath, names)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.completionModel = completion
	s.dropoutModel = dropout
	s.mu.Unlock()

	logger.Log.Info("预测模型加载完成",
		zap.String("completion", completionPath),
		zap.String("dropout", dropoutPath))
	return nil
}

// SetModels 直接注入模型,供离线训练与测试使用
func (s *PredictionService) SetModels(completion, dropout ensemble.Model) {
	s.mu.Lock()
	s.completionModel = completion
	s.dropoutModel = dropout
	s.mu.Unlock()
}

// ModelsLoaded 两个模型是否都已就绪
func (s *PredictionService) ModelsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.completionModel != nil && s.dropoutModel != nil
}

// UpdateThresholds 热更新阈值,对进行中的请求不生效,下一次运行起使用新值
func (s *PredictionService) UpdateThresholds(cfg config.AnalyticsConfig) {
	s.mu.Lock()
	s.completionThreshold = cfg.CompletionThreshold
	s.riskHigh = cfg.RiskHighThreshold
	s.riskMedium = cfg.RiskMediumThreshold
	s.mu.Unlock()

	logger.Log.Info("风险阈值已更新",
		zap.Float64("completion", cfg.CompletionThreshold),
		zap.Float64("high", cfg.RiskHighThreshold),
		zap.Float64("medium", cfg.RiskMediumThreshold))
}

// Predict 对每个学生计算完成概率与流失概率并映射风险等级。
// 模型未加载时返回ModelNotLoadedError,这属于配置错误而不是数据问题。
func (s *PredictionService) Predict(students []model.StudentFeatureVector) ([]model.PredictionResult, error) {
	s.mu.RLock()
	completion := s.completionModel
	dropout := s.dropoutModel
	threshold := s.completionThreshold
	high := s.riskHigh
	medium := s.riskMedium
	s.mu.RUnlock()

	if completion == nil {
		return nil, &model.ModelNotLoadedError{Model: "completion"}
	}
	if dropout == nil {
		return nil, &model.ModelNotLoadedError{Model: "dropout"}
	}

	results := make([]model.PredictionResult, 0, len(students))
	for i := range students {
		x := students[i].Values()

		pc, err := completion.Predict(x)
		if err != nil {
			return nil, err
		}
		pd, err := dropout.Predict(x)
		if err != nil {
			return nil, err
		}

		results = append(results, model.PredictionResult{
			StudentID:             students[i].StudentID,
			CompletionProbability: pc,
			PredictedCompletion:   pc >= threshold,
			DropoutProbability:    pd,
			RiskLevel:             riskLevelFor(pd, high, medium),
		})
	}
	return results, nil
}

// RiskLevelFor 按当前阈值将流失概率离散为风险等级
func (s *PredictionService) RiskLevelFor(p float64) model.RiskLevel {
	s.mu.RLock()
	high := s.riskHigh
	medium := s.riskMedium
	s.mu.RUnlock()
	return riskLevelFor(p, high, medium)
}

// riskLevelFor 概率到等级的单调映射: p>=high为High, medium<=p<high为Medium, 其余为Low
func riskLevelFor(p, high, medium float64) model.RiskLevel {
	switch {
	case p >= high:
		return model.RiskHigh
	case p >= medium:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}

// CompletionImportances 完成率模型的特征贡献度
func (s *PredictionService) CompletionImportances() (map[string]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.completionModel == nil {
		return nil, &model.ModelNotLoadedError{Model: "completion"}
	}
	return s.completionModel.FeatureImportances(), nil
}

// DropoutImportances 流失风险模型的特征贡献度
func (s *PredictionService) DropoutImportances() (map[string]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dropoutModel == nil {
		return nil, &model.ModelNotLoadedError{Model: "dropout"}
	}
	return s.dropoutModel.FeatureImportances(), nil
}
