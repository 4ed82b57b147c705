package store

// Product 产品表模型，name 上有唯一约束
type Product struct {
	ID   uint   `gorm:"column:id;primaryKey;autoIncrement"`
	Name string `gorm:"column:name;type:varchar(255);not null"`
}

// TableName 指定表名
func (Product) TableName() string {
	return "product"
}

// Shipment 发运表模型，product_id 外键指向 product.id
type Shipment struct {
	ID          uint   `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID   uint   `gorm:"column:product_id;not null"`
	Quantity    int    `gorm:"column:quantity;not null"`
	Origin      string `gorm:"column:origin;type:varchar(255)"`
	Destination string `gorm:"column:destination;type:varchar(255)"`
}

// TableName 指定表名
func (Shipment) TableName() string {
	return "shipment"
}
