package store

import "fmt"

// SampleRow 校验用的联表样本行
type SampleRow struct {
	Name     string
	Quantity int
}

// ProductStat 按产品汇总的发运统计
type ProductStat struct {
	Name          string
	ShipmentCount int64
	TotalQuantity int64
}

// CountProducts 产品总数
func (s *Store) CountProducts() (int64, error) {
	var count int64
	if err := s.db.Model(&Product{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("统计产品总数失败: %w", err)
	}
	return count, nil
}

// CountShipments 发运记录总数
func (s *Store) CountShipments() (int64, error) {
	var count int64
	if err := s.db.Model(&Shipment{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("统计发运总数失败: %w", err)
	}
	return count, nil
}

// TotalQuantity 全部发运数量之和，空表时为 0
func (s *Store) TotalQuantity() (int64, error) {
	var total int64
	err := s.db.Model(&Shipment{}).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("统计发运总量失败: %w", err)
	}
	return total, nil
}

// SampleShipments 按插入顺序取前 limit 条 (产品名, 数量) 联表样本
func (s *Store) SampleShipments(limit int) ([]SampleRow, error) {
	var rows []SampleRow
	err := s.db.Raw(`SELECT p.name AS name, s.quantity AS quantity
FROM shipment s
JOIN product p ON s.product_id = p.id
ORDER BY s.id
LIMIT ?`, limit).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("查询样本数据失败: %w", err)
	}
	return rows, nil
}

// TopProducts 按总量降序取前 limit 个产品，并列时维持存储顺序
func (s *Store) TopProducts(limit int) ([]ProductStat, error) {
	var stats []ProductStat
	err := s.db.Raw(`SELECT p.name AS name, COUNT(s.id) AS shipment_count, COALESCE(SUM(s.quantity), 0) AS total_quantity
FROM product p
LEFT JOIN shipment s ON p.id = s.product_id
GROUP BY p.id, p.name
ORDER BY total_quantity DESC
LIMIT ?`, limit).Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("查询产品排名失败: %w", err)
	}
	return stats, nil
}
