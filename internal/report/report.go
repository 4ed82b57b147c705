package report

import (
	"context"

	"shipflow/internal/pkg"
	"shipflow/internal/store"

	"go.uber.org/zap"
)

// Stats 是校验报告对存储层的只读依赖，由 store.Store 实现
type Stats interface {
	CountProducts() (int64, error)
	CountShipments() (int64, error)
	TotalQuantity() (int64, error)
	SampleShipments(limit int) ([]store.SampleRow, error)
	TopProducts(limit int) ([]store.ProductStat, error)
}

// Run 在装载完成后做只读一致性检查并输出汇总统计。
// 纯观察性质：任何查询失败只记错误日志，不影响已提交的数据和退出状态。
func Run(ctx context.Context, stats Stats) {
	log := pkg.LoggerFromContext(ctx)
	config := pkg.ConfigFromContext(ctx)
	log.Info("开始校验装载结果")

	if products, err := stats.CountProducts(); err != nil {
		log.Error("统计产品总数失败", zap.Error(err))
	} else {
		log.Info("产品总数", zap.Int64("total_products", products))
	}

	if shipments, err := stats.CountShipments(); err != nil {
		log.Error("统计发运总数失败", zap.Error(err))
	} else {
		log.Info("发运总数", zap.Int64("total_shipments", shipments))
	}

	if quantity, err := stats.TotalQuantity(); err != nil {
		log.Error("统计发运总量失败", zap.Error(err))
	} else {
		log.Info("发运总量", zap.Int64("total_quantity", quantity))
	}

	if sample, err := stats.SampleShipments(config.Report.SampleSize); err != nil {
		log.Error("查询样本数据失败", zap.Error(err))
	} else {
		for _, row := range sample {
			log.Info("样本数据", zap.String("product", row.Name), zap.Int("quantity", row.Quantity))
		}
	}

	if top, err := stats.TopProducts(config.Report.TopN); err != nil {
		log.Error("查询产品排名失败", zap.Error(err))
	} else {
		for rank, stat := range top {
			log.Info("产品排名",
				zap.Int("rank", rank+1),
				zap.String("product", stat.Name),
				zap.Int64("shipments", stat.ShipmentCount),
				zap.Int64("total_quantity", stat.TotalQuantity))
		}
	}
}
