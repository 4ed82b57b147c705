package internal

import (
	"context"
	"fmt"
	"testing"

	"shipflow/internal/aggregate"
	"shipflow/internal/directory"
	"shipflow/internal/filter"
	"shipflow/internal/pkg"
	"shipflow/internal/route"
	"shipflow/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeTx 内存版批次事务，记录落库的产品和发运行
type fakeTx struct {
	products  map[string]uint
	nextID    uint
	shipments []store.Shipment
	failFor   map[string]bool // 插入这些产品的发运行时报错
}

func newFakeTx() *fakeTx {
	return &fakeTx{
		products: make(map[string]uint),
		nextID:   1,
		failFor:  make(map[string]bool),
	}
}

func (f *fakeTx) FindProductID(name string) (uint, bool, error) {
	id, found := f.products[name]
	return id, found, nil
}

func (f *fakeTx) InsertProduct(name string) (uint, error) {
	id := f.nextID
	f.nextID++
	f.products[name] = id
	return id, nil
}

func (f *fakeTx) InsertShipment(shipment *store.Shipment) error {
	for name, id := range f.products {
		if id == shipment.ProductID && f.failFor[name] {
			return fmt.Errorf("insert failed for %s", name)
		}
	}
	f.shipments = append(f.shipments, *shipment)
	return nil
}

func newTestPipeline() *Pipeline {
	return &Pipeline{
		dir:     directory.New(zap.NewNop()),
		metrics: pkg.NewRunMetrics(),
	}
}

func testCtx() context.Context {
	return pkg.WithLogger(context.Background(), zap.NewNop())
}

// TestLoadSelfContained 测试路径 A：每条有效行产出一条发运行，数量取解析后的整数
func TestLoadSelfContained(t *testing.T) {
	records := []pkg.Record{
		{"product": "Widget", "product_quantity": "12", "origin_warehouse": "W1", "destination_store": "S1"},
		{"product": " Widget ", "product_quantity": "5", "origin_warehouse": "W2", "destination_store": "S2"},
		{"product": "Gadget", "product_quantity": "1", "origin_warehouse": "W1", "destination_store": "S3"},
	}

	p := newTestPipeline()
	tx := newFakeTx()
	inserted := p.loadSelfContained(testCtx(), tx, records)

	assert.Equal(t, 3, inserted)
	require.Len(t, tx.shipments, 3)

	// 第一条：解析后的字段原样落库
	assert.Equal(t, store.Shipment{ProductID: 1, Quantity: 12, Origin: "W1", Destination: "S1"}, tx.shipments[0])
	// 名称去空白后解析到同一个产品，不建第二行
	assert.Equal(t, uint(1), tx.shipments[1].ProductID)
	assert.Len(t, tx.products, 2)
}

// TestLoadSelfContainedFaultIsolation 测试单行错误不影响后续行
func TestLoadSelfContainedFaultIsolation(t *testing.T) {
	records := []pkg.Record{
		{"product": "Widget", "product_quantity": "abc", "origin_warehouse": "W1", "destination_store": "S1"},
		{"product": "", "product_quantity": "4", "origin_warehouse": "W1", "destination_store": "S1"},
		{"product": "Gizmo", "product_quantity": "-3", "origin_warehouse": "W1", "destination_store": "S1"},
		{"product": "Gizmo", "origin_warehouse": "W1", "destination_store": "S1"},
		{"product": "Gizmo", "product_quantity": "4", "destination_store": "S1"},
		{"product": "Widget", "product_quantity": "9", "origin_warehouse": "W1", "destination_store": "S1"},
	}

	p := newTestPipeline()
	tx := newFakeTx()
	inserted := p.loadSelfContained(testCtx(), tx, records)

	// 只有最后一条有效
	assert.Equal(t, 1, inserted)
	require.Len(t, tx.shipments, 1)
	assert.Equal(t, 9, tx.shipments[0].Quantity)
}

// TestLoadSelfContainedInsertError 测试落库失败按行级错误跳过
func TestLoadSelfContainedInsertError(t *testing.T) {
	records := []pkg.Record{
		{"product": "Broken", "product_quantity": "2", "origin_warehouse": "W1", "destination_store": "S1"},
		{"product": "Widget", "product_quantity": "3", "origin_warehouse": "W1", "destination_store": "S1"},
	}

	p := newTestPipeline()
	tx := newFakeTx()
	tx.failFor["Broken"] = true
	inserted := p.loadSelfContained(testCtx(), tx, records)

	assert.Equal(t, 1, inserted)
	require.Len(t, tx.shipments, 1)
	assert.Equal(t, "W1", tx.shipments[0].Origin)
}

// TestLoadSelfContainedWithFilter 测试行过滤表达式在装载前生效
func TestLoadSelfContainedWithFilter(t *testing.T) {
	f, err := filter.Compile([]string{`Field.origin_warehouse == "W1"`})
	require.NoError(t, err)

	records := []pkg.Record{
		{"product": "Widget", "product_quantity": "2", "origin_warehouse": "W1", "destination_store": "S1"},
		{"product": "Widget", "product_quantity": "2", "origin_warehouse": "W2", "destination_store": "S1"},
	}

	p := newTestPipeline()
	p.filterA = f
	tx := newFakeTx()
	inserted := p.loadSelfContained(testCtx(), tx, records)

	assert.Equal(t, 1, inserted)
}

// TestLoadJoined 测试路径 B：聚合组装载，路线联结与产品解析
func TestLoadJoined(t *testing.T) {
	itemRecords := []pkg.Record{
		{"shipment_identifier": "S100", "product": "Gadget"},
		{"shipment_identifier": "S100", "product": "Gadget"},
		{"shipment_identifier": "S100", "product": "Gadget"},
	}
	routeRecords := []pkg.Record{
		{"shipment_identifier": "S100", "origin_warehouse": "W2", "destination_store": "S2"},
	}

	lines := aggregate.Lines(itemRecords, zap.NewNop())
	routes := route.Build(routeRecords, zap.NewNop())

	p := newTestPipeline()
	tx := newFakeTx()
	inserted := p.loadJoined(testCtx(), tx, lines, routes)

	// 三条逐件记录聚成一条数量为 3 的发运行
	assert.Equal(t, 1, inserted)
	require.Len(t, tx.shipments, 1)
	assert.Equal(t, store.Shipment{ProductID: 1, Quantity: 3, Origin: "W2", Destination: "S2"}, tx.shipments[0])
}

// TestLoadJoinedRouteMiss 测试路线缺失时填入哨兵值
func TestLoadJoinedRouteMiss(t *testing.T) {
	lines := []aggregate.Line{
		{ShipmentID: "S404", Product: "Widget", Quantity: 2},
	}

	p := newTestPipeline()
	tx := newFakeTx()
	inserted := p.loadJoined(testCtx(), tx, lines, route.Table{})

	assert.Equal(t, 1, inserted)
	require.Len(t, tx.shipments, 1)
	assert.Equal(t, UnknownOrigin, tx.shipments[0].Origin)
	assert.Equal(t, UnknownDestination, tx.shipments[0].Destination)
}

// TestLoadJoinedTrimsProduct 测试聚合保留的原始名称在解析前去空白
func TestLoadJoinedTrimsProduct(t *testing.T) {
	lines := []aggregate.Line{
		{ShipmentID: "S100", Product: "Gadget", Quantity: 1},
		{ShipmentID: "S100", Product: " Gadget ", Quantity: 2},
		{ShipmentID: "S200", Product: "   ", Quantity: 1},
	}
	routes := route.Table{
		"S100": {Origin: "W2", Destination: "S2"},
	}

	p := newTestPipeline()
	tx := newFakeTx()
	inserted := p.loadJoined(testCtx(), tx, lines, routes)

	// 空白名称的组被跳过，两个 Gadget 组解析到同一产品
	assert.Equal(t, 2, inserted)
	assert.Len(t, tx.products, 1)
	require.Len(t, tx.shipments, 2)
	assert.Equal(t, tx.shipments[0].ProductID, tx.shipments[1].ProductID)
}

// TestProductDirectorySharedAcrossPaths 测试两条路径共用产品目录，不重复建产品
func TestProductDirectorySharedAcrossPaths(t *testing.T) {
	p := newTestPipeline()
	tx := newFakeTx()

	inserted := p.loadSelfContained(testCtx(), tx, []pkg.Record{
		{"product": "Widget", "product_quantity": "2", "origin_warehouse": "W1", "destination_store": "S1"},
	})
	require.Equal(t, 1, inserted)

	inserted = p.loadJoined(testCtx(), tx, []aggregate.Line{
		{ShipmentID: "S100", Product: "Widget", Quantity: 4},
	}, route.Table{})
	require.Equal(t, 1, inserted)

	assert.Len(t, tx.products, 1)
	assert.Equal(t, tx.shipments[0].ProductID, tx.shipments[1].ProductID)
}

// TestMissingFiles 测试数据文件存在性检查
func TestMissingFiles(t *testing.T) {
	files := &pkg.FilesConfig{
		SourceA: "no/such/a.csv",
		SourceB: "no/such/b.csv",
		SourceC: "no/such/c.csv",
	}
	assert.Len(t, MissingFiles(files), 3)
}
