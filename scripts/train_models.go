// 离线训练预测模型脚本
//
// 读取本地数据集训练完成率与流失风险两个模型,写出版本化JSON工件,
// 服务启动时按 models.autoload 配置加载。训练接口也可在线完成同样的事,
// 此脚本用于首次部署或离线批量重训。
//
// 用法: go run scripts/train_models.go -data sample_data.csv

package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/config"
	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/service"
	"github.com/Divya20-05/Learning-Intelligence-Tool/pkg/logger"
)

func main() {
	dataPath := flag.String("data", "", "训练数据集路径(.csv/.json)")
	completionOut := flag.String("out-completion", "", "完成率模型输出路径,默认取配置")
	dropoutOut := flag.String("out-dropout", "", "流失模型输出路径,默认取配置")
	flag.Parse()

	if *dataPath == "" {
		log.Fatal("必须通过 -data 指定训练数据集")
	}

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	logger.InitLogger(cfg)

	if *completionOut == "" {
		*completionOut = cfg.Models.CompletionPath
	}
	if *dropoutOut == "" {
		*dropoutOut = cfg.Models.DropoutPath
	}

	f, err := os.Open(*dataPath)
	if err != nil {
		log.Fatalf("打开数据集失败: %v", err)
	}
	defer f.Close()

	format := service.FormatCSV
	if strings.ToLower(filepath.Ext(*dataPath)) == ".json" {
		format = service.FormatJSON
	}

	training := service.NewTrainingService(service.NewIngestionService(), service.NewFeatureService())
	result, err := training.Train(f, format, cfg.Analytics)
	if err != nil {
		log.Fatalf("训练失败: %v", err)
	}

	if err := training.SaveModels(result, *completionOut, *dropoutOut); err != nil {
		log.Fatalf("保存模型失败: %v", err)
	}

	log.Printf("训练完成: 样本=%d 验证集=%d 完成率准确率=%.4f 流失准确率=%.4f 流失召回率=%.4f",
		result.Samples, result.HoldoutSamples,
		result.CompletionAccuracy, result.DropoutAccuracy, result.DropoutRecall)
	log.Printf("模型已写出: %s, %s", *completionOut, *dropoutOut)
}
