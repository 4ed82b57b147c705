package internal

import (
	"context"
	"fmt"
	"os"

	"shipflow/internal/directory"
	"shipflow/internal/filter"
	"shipflow/internal/pkg"
	"shipflow/internal/report"
	"shipflow/internal/store"

	"go.uber.org/zap"
)

// Pipeline 把三个数据源装载进规范化的 product/shipment 两张表。
// 整个运行是单线程顺序执行：路径 A 连同提交完成后才开始路径 B。
// 重复运行会把所有发运数据再插一遍（shipment 没有自然键），这是既定行为。
type Pipeline struct {
	store   *store.Store
	dir     *directory.Directory
	metrics *pkg.RunMetrics
	filterA *filter.Filter
	filterB *filter.Filter
}

// MissingFiles 返回配置的数据源文件中不存在的那些。
// 缺文件不是致命错误，调用方记日志后直接正常退出。
func MissingFiles(files *pkg.FilesConfig) []string {
	var missing []string
	for _, path := range []string{files.SourceA, files.SourceB, files.SourceC} {
		if _, err := os.Stat(path); err != nil {
			missing = append(missing, path)
		}
	}
	return missing
}

// NewPipeline 编译行过滤器并建立数据库连接。
// 这里的任何错误（配置、连库、建表）都是致命的，直接终止运行。
func NewPipeline(ctx context.Context) (*Pipeline, error) {
	log := pkg.LoggerFromContext(ctx)
	config := pkg.ConfigFromContext(ctx)

	// 1. 编译行过滤表达式，配置错误在这里就暴露
	filterA, err := filter.Compile(config.Pipeline.Filter.SourceA)
	if err != nil {
		return nil, fmt.Errorf("数据源 A 过滤器: %w", err)
	}
	filterB, err := filter.Compile(config.Pipeline.Filter.SourceB)
	if err != nil {
		return nil, fmt.Errorf("数据源 B 过滤器: %w", err)
	}

	// 2. 连接数据库并确保表结构
	st, err := store.Open(&config.Database, log)
	if err != nil {
		return nil, err
	}
	if err := st.EnsureSchema(); err != nil {
		st.Close()
		return nil, err
	}

	return &Pipeline{
		store:   st,
		dir:     directory.New(log),
		metrics: pkg.NewRunMetrics(),
		filterA: filterA,
		filterB: filterB,
	}, nil
}

// Run 依次执行两条装载路径，然后做只读校验。
// 校验失败只记日志，不影响退出状态。
func (p *Pipeline) Run(ctx context.Context) error {
	log := pkg.LoggerFromContext(ctx).With(zap.String("run_id", p.metrics.RunID))
	ctx = pkg.WithLogger(ctx, log)

	// 1. 路径 A：自包含数据源
	if err := p.runPathA(ctx); err != nil {
		return err
	}

	// 2. 路径 B：数据源 B+C 联结
	if err := p.runPathB(ctx); err != nil {
		return err
	}

	// 3. 只读校验与统计
	report.Run(ctx, p.store)

	// 4. 输出本次运行指标
	p.metrics.ProductsCreated.Add(float64(p.dir.Created()))
	p.metrics.Log(log)

	log.Info("数据装载完成")
	return nil
}

// Close 关闭数据库连接，成功失败所有退出路径都要调用
func (p *Pipeline) Close() {
	p.store.Close()
}
