package store

import (
	"database/sql"
	"errors"
	"fmt"

	"shipflow/internal/pkg"

	_ "github.com/go-sql-driver/mysql" // 引导连接使用原生驱动
	"go.uber.org/zap"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// 建表语句与既有库结构保持一致，不能用 AutoMigrate 生成（约束命名必须逐字对齐）
const (
	createProductTable = `CREATE TABLE IF NOT EXISTS product (
    id INT AUTO_INCREMENT PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    UNIQUE KEY unique_name (name)
)`
	createShipmentTable = `CREATE TABLE IF NOT EXISTS shipment (
    id INT AUTO_INCREMENT PRIMARY KEY,
    product_id INT NOT NULL,
    quantity INT NOT NULL,
    origin VARCHAR(255),
    destination VARCHAR(255),
    FOREIGN KEY (product_id) REFERENCES product(id)
)`
)

// Store 持有整个运行期间独占的 MySQL 连接。
// 管道是单线程单写者，目录的先查后插在这个前提下才没有竞态；
// 引入并发写者时必须换成 ON DUPLICATE KEY 形式的 upsert。
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

// Open 建立 MySQL 连接。先用不带库名的连接建库（不存在时），
// 再连到目标库并 ping 确认。连接失败是致命错误，由调用方终止运行。
func Open(cfg *pkg.DatabaseConfig, log *zap.Logger) (*Store, error) {
	// 1. 先不指定数据库连接，确保目标库存在
	bootstrapDSN := fmt.Sprintf("%s:%s@tcp(%s:%d)/", cfg.User, cfg.Password, cfg.Host, cfg.Port)
	bootstrap, err := sql.Open("mysql", bootstrapDSN)
	if err != nil {
		return nil, fmt.Errorf("建立引导连接失败: %w", err)
	}
	_, err = bootstrap.Exec(fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", cfg.Database))
	closeErr := bootstrap.Close()
	if err != nil {
		return nil, fmt.Errorf("创建数据库 %s 失败: %w", cfg.Database, err)
	}
	if closeErr != nil {
		log.Warn("关闭引导连接失败", zap.Error(closeErr))
	}

	// 2. 连接到目标数据库
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
	db, err := gorm.Open(gormmysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent), // SQL 日志交给 zap，gorm 自己的关掉
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库 %s 失败: %w", cfg.Database, err)
	}

	// 3. ping 确认连接可用
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层连接失败: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping 数据库失败: %w", err)
	}

	log.Info("已连接到 MySQL 数据库", zap.String("database", cfg.Database))
	return &Store{db: db, log: log}, nil
}

// EnsureSchema 建表（不存在时）。失败是致命错误。
func (s *Store) EnsureSchema() error {
	if err := s.db.Exec(createProductTable).Error; err != nil {
		return fmt.Errorf("创建 product 表失败: %w", err)
	}
	if err := s.db.Exec(createShipmentTable).Error; err != nil {
		return fmt.Errorf("创建 shipment 表失败: %w", err)
	}
	s.log.Info("数据库表结构就绪")
	return nil
}

// Begin 开启一个批次事务，一条装载路径一个批次
func (s *Store) Begin() (*Tx, error) {
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("开启事务失败: %w", tx.Error)
	}
	return &Tx{db: tx}, nil
}

// Close 关闭数据库连接，所有退出路径都必须走到这里
func (s *Store) Close() {
	sqlDB, err := s.db.DB()
	if err != nil {
		s.log.Error("获取底层连接失败", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		s.log.Error("关闭数据库连接失败", zap.Error(err))
		return
	}
	s.log.Info("数据库连接已关闭")
}

// Tx 一条装载路径的批次事务
type Tx struct {
	db *gorm.DB
}

// FindProductID 按名称精确查找产品 id，found 为 false 表示不存在
func (t *Tx) FindProductID(name string) (uint, bool, error) {
	var product Product
	err := t.db.Where("name = ?", name).Take(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("查询产品失败 %q: %w", name, err)
	}
	return product.ID, true, nil
}

// InsertProduct 插入新产品并返回生成的 id
func (t *Tx) InsertProduct(name string) (uint, error) {
	product := Product{Name: name}
	if err := t.db.Create(&product).Error; err != nil {
		return 0, fmt.Errorf("插入产品失败 %q: %w", name, err)
	}
	return product.ID, nil
}

// InsertShipment 插入一条发运行
func (t *Tx) InsertShipment(shipment *Shipment) error {
	if err := t.db.Create(shipment).Error; err != nil {
		return fmt.Errorf("插入发运记录失败: %w", err)
	}
	return nil
}

// Commit 提交批次。提交之后的行不再回滚，这是每条路径的提交边界。
func (t *Tx) Commit() error {
	if err := t.db.Commit().Error; err != nil {
		return fmt.Errorf("提交批次失败: %w", err)
	}
	return nil
}

// Rollback 回滚未提交的批次
func (t *Tx) Rollback() {
	t.db.Rollback()
}
