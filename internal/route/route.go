package route

import (
	"shipflow/internal/pkg"

	"go.uber.org/zap"
)

// 数据源 C 中的列名
const (
	FieldShipmentID  = "shipment_identifier"
	FieldOrigin      = "origin_warehouse"
	FieldDestination = "destination_store"
)

// Route 一个发运单对应的 (起点, 终点)
type Route struct {
	Origin      string
	Destination string
}

// Table 发运单标识 -> 路线 的查找表
type Table map[string]Route

// Build 从路线记录构建查找表。
// 同一发运单标识出现多次时后写覆盖先写（按数据源顺序）。
func Build(records []pkg.Record, log *zap.Logger) Table {
	table := make(Table, len(records))
	for _, record := range records {
		id, ok := record.TrimmedField(FieldShipmentID)
		if !ok || id == "" {
			log.Warn("路线记录缺少发运单标识，已跳过", zap.String("record", record.String()))
			continue
		}
		origin, _ := record.Field(FieldOrigin)
		destination, _ := record.Field(FieldDestination)
		table[id] = Route{Origin: origin, Destination: destination}
	}
	return table
}

// Lookup 按发运单标识查找路线
func (t Table) Lookup(shipmentID string) (Route, bool) {
	r, ok := t[shipmentID]
	return r, ok
}
