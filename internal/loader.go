package internal

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"shipflow/internal/aggregate"
	"shipflow/internal/pkg"
	"shipflow/internal/reader"
	"shipflow/internal/route"
	"shipflow/internal/store"

	"go.uber.org/zap"
)

// 数据源 A 中的列名
const (
	fieldProduct     = "product"
	fieldQuantity    = "product_quantity"
	fieldOrigin      = "origin_warehouse"
	fieldDestination = "destination_store"
)

// 路线缺失时写入的哨兵值。这是数据值不是错误码，下游按字面匹配，不可改动。
const (
	UnknownOrigin      = "Unknown Origin"
	UnknownDestination = "Unknown Destination"
)

// 指标里区分两条装载路径的标签
const (
	labelSourceA = "source_a"
	labelSourceB = "source_b"
)

// BatchTx 是装载循环对批次事务的最小依赖，由 store.Tx 实现
type BatchTx interface {
	FindProductID(name string) (uint, bool, error)
	InsertProduct(name string) (uint, error)
	InsertShipment(shipment *store.Shipment) error
}

// runPathA 处理数据源 A：每行就是一个完整发运。
// 行级错误告警后跳过，单行失败不能中断整个批次；
// 读文件、开事务、提交失败才是致命的。
func (p *Pipeline) runPathA(ctx context.Context) error {
	log := pkg.LoggerFromContext(ctx)
	config := pkg.ConfigFromContext(ctx)
	log.Info("开始处理数据源 A", zap.String("file", config.Files.SourceA))

	records, err := reader.ReadFile(config.Files.SourceA, log)
	if err != nil {
		return err
	}
	p.metrics.RowsRead.WithLabelValues(labelSourceA).Add(float64(len(records)))

	tx, err := p.store.Begin()
	if err != nil {
		return err
	}

	inserted := p.loadSelfContained(ctx, tx, records)

	// 一条路径一个提交边界，提交之后的行不再回滚
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("数据源 A 批次: %w", err)
	}
	log.Info("数据源 A 处理完成", zap.Int("rows", len(records)), zap.Int("inserted", inserted))
	return nil
}

// loadSelfContained 逐行装载自包含记录，返回成功插入的行数
func (p *Pipeline) loadSelfContained(ctx context.Context, tx BatchTx, records []pkg.Record) int {
	log := pkg.LoggerFromContext(ctx)
	inserted := 0

	for _, record := range records {
		matched, err := p.filterA.Match(record)
		if err != nil {
			p.skipRow(log, labelSourceA, record, err)
			continue
		}
		if !matched {
			log.Debug("行未通过过滤条件", zap.String("record", record.String()))
			p.metrics.RowsSkipped.WithLabelValues(labelSourceA).Inc()
			continue
		}

		name, ok := record.TrimmedField(fieldProduct)
		if !ok || name == "" {
			p.skipRow(log, labelSourceA, record, fmt.Errorf("缺少产品名称"))
			continue
		}
		quantityText, ok := record.TrimmedField(fieldQuantity)
		if !ok {
			p.skipRow(log, labelSourceA, record, fmt.Errorf("缺少数量列"))
			continue
		}
		quantity, err := strconv.Atoi(quantityText)
		if err != nil {
			p.skipRow(log, labelSourceA, record, fmt.Errorf("数量不是整数: %w", err))
			continue
		}
		if quantity <= 0 {
			p.skipRow(log, labelSourceA, record, fmt.Errorf("数量必须为正: %d", quantity))
			continue
		}
		origin, ok := record.Field(fieldOrigin)
		if !ok {
			p.skipRow(log, labelSourceA, record, fmt.Errorf("缺少起点仓库列"))
			continue
		}
		destination, ok := record.Field(fieldDestination)
		if !ok {
			p.skipRow(log, labelSourceA, record, fmt.Errorf("缺少终点门店列"))
			continue
		}

		productID, err := p.dir.Resolve(tx, name)
		if err != nil {
			p.skipRow(log, labelSourceA, record, err)
			continue
		}
		err = tx.InsertShipment(&store.Shipment{
			ProductID:   productID,
			Quantity:    quantity,
			Origin:      origin,
			Destination: destination,
		})
		if err != nil {
			p.skipRow(log, labelSourceA, record, err)
			continue
		}

		inserted++
		p.metrics.RowsInserted.WithLabelValues(labelSourceA).Inc()
	}
	return inserted
}

// runPathB 处理数据源 B+C：先从 C 建路线查找表，
// 再把 B 按 (发运单, 产品) 聚合计数，每组落一条发运行。
func (p *Pipeline) runPathB(ctx context.Context) error {
	log := pkg.LoggerFromContext(ctx)
	config := pkg.ConfigFromContext(ctx)
	log.Info("开始处理数据源 B 和 C",
		zap.String("items", config.Files.SourceB), zap.String("routes", config.Files.SourceC))

	routeRecords, err := reader.ReadFile(config.Files.SourceC, log)
	if err != nil {
		return err
	}
	itemRecords, err := reader.ReadFile(config.Files.SourceB, log)
	if err != nil {
		return err
	}
	p.metrics.RowsRead.WithLabelValues(labelSourceB).Add(float64(len(itemRecords)))

	routes := route.Build(routeRecords, log)
	lines := aggregate.Lines(p.applyFilterB(ctx, itemRecords), log)

	tx, err := p.store.Begin()
	if err != nil {
		return err
	}

	inserted := p.loadJoined(ctx, tx, lines, routes)

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("数据源 B 批次: %w", err)
	}
	log.Info("数据源 B 处理完成", zap.Int("groups", len(lines)), zap.Int("inserted", inserted))
	return nil
}

// applyFilterB 在聚合之前对逐件记录应用行过滤
func (p *Pipeline) applyFilterB(ctx context.Context, records []pkg.Record) []pkg.Record {
	if p.filterB == nil {
		return records
	}
	log := pkg.LoggerFromContext(ctx)

	filtered := make([]pkg.Record, 0, len(records))
	for _, record := range records {
		matched, err := p.filterB.Match(record)
		if err != nil {
			p.skipRow(log, labelSourceB, record, err)
			continue
		}
		if !matched {
			log.Debug("行未通过过滤条件", zap.String("record", record.String()))
			p.metrics.RowsSkipped.WithLabelValues(labelSourceB).Inc()
			continue
		}
		filtered = append(filtered, record)
	}
	return filtered
}

// loadJoined 逐组装载聚合后的发运行，返回成功插入的行数
func (p *Pipeline) loadJoined(ctx context.Context, tx BatchTx, lines []aggregate.Line, routes route.Table) int {
	log := pkg.LoggerFromContext(ctx)
	inserted := 0

	for _, line := range lines {
		// 路线缺失是预期内可容忍的情况，填哨兵值继续
		origin, destination := UnknownOrigin, UnknownDestination
		if r, found := routes.Lookup(line.ShipmentID); found {
			origin, destination = r.Origin, r.Destination
		} else {
			log.Warn("发运单没有匹配的路线记录", zap.String("shipment", line.ShipmentID))
			p.metrics.RouteMisses.Inc()
		}

		name := strings.TrimSpace(line.Product)
		if name == "" {
			p.skipLine(log, line, fmt.Errorf("缺少产品名称"))
			continue
		}

		productID, err := p.dir.Resolve(tx, name)
		if err != nil {
			p.skipLine(log, line, err)
			continue
		}
		err = tx.InsertShipment(&store.Shipment{
			ProductID:   productID,
			Quantity:    line.Quantity,
			Origin:      origin,
			Destination: destination,
		})
		if err != nil {
			p.skipLine(log, line, err)
			continue
		}

		inserted++
		p.metrics.RowsInserted.WithLabelValues(labelSourceB).Inc()
	}
	return inserted
}

// skipRow 行级错误：告警、计数、跳过
func (p *Pipeline) skipRow(log *zap.Logger, source string, record pkg.Record, err error) {
	log.Warn("跳过无法处理的行", zap.String("record", record.String()), zap.Error(err))
	p.metrics.RowsSkipped.WithLabelValues(source).Inc()
}

// skipLine 聚合组级错误：告警、计数、跳过
func (p *Pipeline) skipLine(log *zap.Logger, line aggregate.Line, err error) {
	log.Warn("跳过无法处理的发运组",
		zap.String("shipment", line.ShipmentID), zap.String("product", line.Product), zap.Error(err))
	p.metrics.RowsSkipped.WithLabelValues(labelSourceB).Inc()
}
