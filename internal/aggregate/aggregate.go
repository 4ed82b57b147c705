package aggregate

import (
	"shipflow/internal/pkg"

	"go.uber.org/zap"
)

// 数据源 B 中的列名
const (
	FieldShipmentID = "shipment_identifier"
	FieldProduct    = "product"
)

// Line 聚合后的发运行：一个 (发运单, 产品) 组合一行，数量为该组合的记录条数
type Line struct {
	ShipmentID string
	Product    string // 聚合时保留原始文本，去空白在产品解析阶段做
	Quantity   int
}

type groupKey struct {
	shipmentID string
	product    string
}

// Lines 将逐件记录按 (发运单标识, 产品) 分组计数。
// 数据源 B 没有数量列，一行就是一件，所以数量 = 组内行数。
// 输出按首次出现顺序排列，保证相同输入产出相同结果。
func Lines(records []pkg.Record, log *zap.Logger) []Line {
	counts := make(map[groupKey]int, len(records))
	var order []groupKey

	for _, record := range records {
		id, ok := record.TrimmedField(FieldShipmentID)
		if !ok || id == "" {
			log.Warn("逐件记录缺少发运单标识，已跳过", zap.String("record", record.String()))
			continue
		}
		product, ok := record.Field(FieldProduct)
		if !ok {
			log.Warn("逐件记录缺少产品列，已跳过", zap.String("record", record.String()))
			continue
		}

		key := groupKey{shipmentID: id, product: product}
		if _, exist := counts[key]; !exist {
			order = append(order, key)
		}
		counts[key]++
	}

	lines := make([]Line, 0, len(order))
	for _, key := range order {
		lines = append(lines, Line{
			ShipmentID: key.shipmentID,
			Product:    key.product,
			Quantity:   counts[key],
		})
	}
	return lines
}
