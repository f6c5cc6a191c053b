// planctl 排线批处理工具
// 从CSV点位文件生成排线方案并输出JSON

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/paixian/paixian/internal/config"
	"github.com/paixian/paixian/internal/ingest"
	"github.com/paixian/paixian/pkg/logger"
	"github.com/paixian/paixian/pkg/model"
	"github.com/paixian/paixian/pkg/planner"
)

func main() {
	var (
		csvPath     = flag.String("input", "", "点位CSV文件路径（必填）")
		outPath     = flag.String("output", "", "结果输出文件，默认打印到标准输出")
		startDate   = flag.String("start", "", "起始日期 YYYY-MM-DD，默认今天")
		horizonDays = flag.Int("horizon", 0, "规划周期（日历天），默认取配置")
		maxHours    = flag.Float64("max-hours", 0, "单日最大工时，默认取配置")
		maxDays     = flag.Int("max-days", 0, "每周最大工作天数，默认取配置")
		timeout     = flag.Duration("timeout", 5*time.Minute, "规划超时时间")
		pretty      = flag.Bool("pretty", true, "缩进输出JSON")
	)
	flag.Parse()

	if *csvPath == "" {
		fmt.Fprintln(os.Stderr, "用法: planctl -input points.csv [-start 2026-03-02] [-horizon 90]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	// 加载 .env（不存在则忽略）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置加载失败: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: "console",
		Output: "stderr", // 标准输出留给结果JSON
	})

	points, err := ingest.LoadFile(*csvPath)
	if err != nil {
		logger.Fatal().Err(err).Str("file", *csvPath).Msg("加载点位文件失败")
	}
	logger.Info().Int("points", len(points)).Str("file", *csvPath).Msg("点位文件加载完成")

	engine := planner.New(planner.Config{
		MaxHoursPerDay:   cfg.Planner.MaxHoursPerDay,
		MaxDaysPerWeek:   cfg.Planner.MaxDaysPerWeek,
		HorizonDays:      cfg.Planner.HorizonDays,
		AvgSpeedKmh:      cfg.Planner.AvgSpeedKmh,
		ClusterFillRatio: cfg.Planner.ClusterFillRatio,
	})

	params := model.Parameters{
		MaxHoursPerDay: *maxHours,
		MaxDaysPerWeek: *maxDays,
		StartDate:      *startDate,
		HorizonDays:    *horizonDays,
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	result := engine.Optimize(ctx, points, params)
	duration := time.Since(start)

	if result.Success {
		logger.Info().
			Dur("duration", duration).
			Int("routes", result.Summary.TotalRoutes).
			Int("employees", result.Summary.TotalEmployees).
			Msg("排线完成")
	} else {
		logger.Warn().Str("reason", result.Error).Msg("排线失败")
	}

	var data []byte
	if *pretty {
		data, err = json.MarshalIndent(result, "", "  ")
	} else {
		data, err = json.Marshal(result)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("序列化结果失败")
	}
	data = append(data, '\n')

	if *outPath != "" {
		if err := os.WriteFile(*outPath, data, 0644); err != nil {
			logger.Fatal().Err(err).Str("file", *outPath).Msg("写入结果文件失败")
		}
		logger.Info().Str("file", *outPath).Msg("结果已写入")
	} else {
		os.Stdout.Write(data)
	}

	if !result.Success {
		os.Exit(1)
	}
}
