package pkg

import (
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// RunMetrics 存储单次装载运行的指标数据。
// 使用私有 registry，批处理程序不对外暴露 HTTP 端点，
// 指标在运行结束时随报告一并输出到日志。
type RunMetrics struct {
	RunID string

	registry        *prometheus.Registry
	RowsRead        *prometheus.CounterVec // 按数据源统计读取的行数
	RowsInserted    *prometheus.CounterVec // 按数据源统计插入的发运行数
	RowsSkipped     *prometheus.CounterVec // 按数据源统计跳过的行数
	RouteMisses     prometheus.Counter     // 路线缺失次数
	ProductsCreated prometheus.Counter     // 新建产品数
}

// NewRunMetrics 创建一次运行的指标集合
func NewRunMetrics() *RunMetrics {
	registry := prometheus.NewRegistry()

	m := &RunMetrics{
		RunID:    uuid.NewString(),
		registry: registry,
		RowsRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shipflow_rows_read_total",
			Help: "Rows read per source file",
		}, []string{"source"}),
		RowsInserted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shipflow_rows_inserted_total",
			Help: "Shipment rows inserted per source path",
		}, []string{"source"}),
		RowsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shipflow_rows_skipped_total",
			Help: "Rows skipped per source path",
		}, []string{"source"}),
		RouteMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shipflow_route_misses_total",
			Help: "Shipments with no matching route record",
		}),
		ProductsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shipflow_products_created_total",
			Help: "Product rows created during this run",
		}),
	}

	registry.MustRegister(m.RowsRead, m.RowsInserted, m.RowsSkipped, m.RouteMisses, m.ProductsCreated)
	return m
}

// Log 在运行结束时把所有指标输出到日志
func (m *RunMetrics) Log(log *zap.Logger) {
	families, err := m.registry.Gather()
	if err != nil {
		log.Error("采集运行指标失败", zap.Error(err))
		return
	}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			fields := []zap.Field{zap.String("run_id", m.RunID)}
			for _, label := range metric.GetLabel() {
				fields = append(fields, zap.String(label.GetName(), label.GetValue()))
			}
			fields = append(fields, zap.Float64("value", metric.GetCounter().GetValue()))
			log.Info(family.GetName(), fields...)
		}
	}
}
