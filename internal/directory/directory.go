package directory

import (
	"fmt"

	"go.uber.org/zap"
)

// ProductSink 是目录落库所需的最小接口，由 store.Tx 实现
type ProductSink interface {
	FindProductID(name string) (id uint, found bool, err error)
	InsertProduct(name string) (id uint, err error)
}

// Directory 维护产品名称到 id 的规范映射。
// 缓存是写穿的：每次新建立即落库，名称在一次运行内不可变，所以缓存不失效。
// 先查后插只在单写者前提下无竞态。
type Directory struct {
	cache   map[string]uint
	created int64 // 本次运行新建的产品数
	log     *zap.Logger
}

// New 创建一个空目录，目录在一次管道运行内独占名称缓存
func New(log *zap.Logger) *Directory {
	return &Directory{
		cache: make(map[string]uint),
		log:   log,
	}
}

// Resolve 返回产品名称对应的 id，不存在时创建。
// name 必须是已去除首尾空白的非空文本。
// 顺序：缓存 -> 库内精确查找 -> 插入取生成 id，命中即回填缓存。
func (d *Directory) Resolve(sink ProductSink, name string) (uint, error) {
	if name == "" {
		return 0, fmt.Errorf("产品名称为空")
	}

	// 1. 先查缓存
	if id, exist := d.cache[name]; exist {
		return id, nil
	}

	// 2. 缓存未命中，查库
	id, found, err := sink.FindProductID(name)
	if err != nil {
		return 0, err
	}

	// 3. 库里也没有，新建
	if !found {
		id, err = sink.InsertProduct(name)
		if err != nil {
			return 0, err
		}
		d.created++
		d.log.Debug("新建产品", zap.String("name", name), zap.Uint("id", id))
	}

	d.cache[name] = id
	return id, nil
}

// Created 本次运行新建的产品数
func (d *Directory) Created() int64 {
	return d.created
}
