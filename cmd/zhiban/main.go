// ZhiBan 排班求解引擎
// 命令行入口：JSON 问题定义进，JSON 排班表出

package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/zhiban/zhiban/internal/catalog"
	"github.com/zhiban/zhiban/internal/config"
	"github.com/zhiban/zhiban/internal/metrics"
	"github.com/zhiban/zhiban/pkg/availability"
	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/logger"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// 退出码约定
const (
	exitOK         = 0
	exitUsage      = 1
	exitValidation = 2
	exitInfeasible = 3
	exitTimeout    = 4
	exitSolver     = 5
)

func main() {
	os.Exit(run())
}

func run() int {
	// 命令行参数
	var (
		inputPath       = flag.String("input", "-", "问题定义 JSON 文件，- 表示标准输入")
		outputPath      = flag.String("output", "-", "排班表输出文件，- 表示标准输出")
		modelName       = flag.String("model", "", "排班模型: helpdesk 或 lab")
		timeLimit       = flag.Duration("time-limit", 0, "求解时间预算，0 取配置默认值")
		acceptIncumbent = flag.Bool("accept-incumbent", false, "超出时间预算时接受可行解")
		listModels      = flag.Bool("models", false, "打印模型目录后退出")
		checkPairs      = flag.String("check", "", "可用性查询，格式 人员:班次[,人员:班次...]")
		showMetrics     = flag.Bool("show-metrics", false, "结束时向标准错误输出 Prometheus 指标")
		showVersion     = flag.Bool("version", false, "打印版本信息后退出")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("zhiban v%s\n", Version)
		fmt.Printf("Build: %s (%s)\n", BuildTime, GitCommit)
		return exitOK
	}

	// 环境文件与配置
	loadEnv()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置加载失败: %v\n", err)
		return exitUsage
	}

	// 初始化日志
	logger.Init(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})

	// 模型目录不需要输入
	if *listModels {
		return writeJSON(*outputPath, catalog.CatalogResponse{Models: catalog.GetCatalog()})
	}

	problem, err := readProblem(*inputPath)
	if err != nil {
		return fail(errors.Wrap(err, errors.CodeInvalidInput, "问题定义读取失败"))
	}

	engine := buildEngine(cfg, *acceptIncumbent)

	// 即席可用性查询
	if *checkPairs != "" {
		queries, err := parseQueries(*checkPairs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "查询格式无效: %v\n", err)
			return exitUsage
		}
		results := engine.CheckAvailabilityBatch(problem.Availability, queries)
		type answer struct {
			StaffID   string `json:"staff_id"`
			ShiftID   string `json:"shift_id"`
			Available bool   `json:"available"`
		}
		answers := make([]answer, len(queries))
		for i, q := range queries {
			answers[i] = answer{StaffID: q.StaffID, ShiftID: q.ShiftID, Available: results[i]}
		}
		code := writeJSON(*outputPath, answers)
		dumpMetrics(*showMetrics)
		return code
	}

	// 排班求解
	rosterType := model.RosterType(*modelName)
	if *modelName == "" {
		rosterType = model.RosterType(cfg.Roster.DefaultModel)
	}

	budget := *timeLimit
	if budget == 0 {
		budget = cfg.Solver.TimeLimit
	}

	schedule, err := engine.GenerateSchedule(context.Background(), problem, rosterType, budget)
	if err != nil {
		dumpMetrics(*showMetrics)
		return fail(err)
	}

	code := writeJSON(*outputPath, schedule)
	dumpMetrics(*showMetrics)
	return code
}

// loadEnv 依次尝试候选路径加载环境文件，全部缺席也不是错误
func loadEnv() {
	for _, path := range []string{".env.local", ".env"} {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
		}
	}
}

// buildEngine 按配置组装引擎
func buildEngine(cfg *config.Config, acceptIncumbent bool) *scheduler.Engine {
	opts := []scheduler.Option{
		scheduler.WithDefaultParams(cfg.Roster.ToParams()),
	}
	if acceptIncumbent || cfg.Solver.AcceptIncumbent {
		opts = append(opts, scheduler.WithAcceptIncumbent())
	}
	if cfg.Solver.Verbose {
		opts = append(opts, scheduler.WithVerboseSolver())
	}
	if !cfg.Metrics.Enabled {
		opts = append(opts, scheduler.WithoutMetrics())
	}
	return scheduler.NewEngine(nil, opts...)
}

// readProblem 读取并解析问题定义
func readProblem(path string) (*model.Problem, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	var problem model.Problem
	if err := json.Unmarshal(data, &problem); err != nil {
		return nil, err
	}
	return &problem, nil
}

// parseQueries 解析 人员:班次 查询串
func parseQueries(raw string) ([]availability.Query, error) {
	var queries []availability.Query
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("期望 人员:班次，得到 %q", pair)
		}
		queries = append(queries, availability.Query{StaffID: parts[0], ShiftID: parts[1]})
	}
	return queries, nil
}

// writeJSON 输出 JSON 结果
func writeJSON(path string, v interface{}) int {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "结果序列化失败: %v\n", err)
		return exitSolver
	}
	data = append(data, '\n')

	if path == "-" {
		if _, err := os.Stdout.Write(data); err != nil {
			return exitSolver
		}
		return exitOK
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "结果写入失败: %v\n", err)
		return exitSolver
	}
	return exitOK
}

// fail 把引擎错误输出为 JSON 并映射退出码
func fail(err error) int {
	payload := map[string]interface{}{
		"error":   true,
		"code":    errors.GetCode(err),
		"message": err.Error(),
	}
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		payload["message"] = appErr.Message
		if appErr.Details != "" {
			payload["details"] = appErr.Details
		}
		if len(appErr.Fields) > 0 {
			payload["fields"] = appErr.Fields
		}
	}

	data, _ := json.MarshalIndent(payload, "", "  ")
	fmt.Fprintln(os.Stderr, string(data))

	return exitCodeFor(err)
}

// exitCodeFor 错误码到退出码的映射
func exitCodeFor(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeModelUnknown:
		return exitUsage
	case errors.CodeValidationFail, errors.CodeInvalidInput:
		return exitValidation
	case errors.CodeNoFeasibleSolution:
		return exitInfeasible
	case errors.CodeSolveTimeout:
		return exitTimeout
	default:
		return exitSolver
	}
}

// dumpMetrics 按需输出指标快照
func dumpMetrics(enabled bool) {
	if !enabled {
		return
	}
	_ = metrics.Write(os.Stderr)
}
