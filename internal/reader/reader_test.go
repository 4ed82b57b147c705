package reader

import (
	"strings"
	"testing"

	"shipflow/internal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestRead 测试带表头 CSV 的正常解析
func TestRead(t *testing.T) {
	input := "product,product_quantity,origin_warehouse,destination_store\n" +
		"Widget,12,W1,S1\n" +
		"Gadget,3,W2,S2\n"

	records, err := Read(strings.NewReader(input), "test.csv", zap.NewNop())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, pkg.Record{
		"product":           "Widget",
		"product_quantity":  "12",
		"origin_warehouse":  "W1",
		"destination_store": "S1",
	}, records[0])
	assert.Equal(t, "Gadget", records[1]["product"])
}

// TestReadSkipsShortRows 测试列数不符的行被跳过而不中断文件
func TestReadSkipsShortRows(t *testing.T) {
	input := "shipment_identifier,product\n" +
		"S100,Gadget\n" +
		"S101\n" +
		"S102,Widget,extra\n" +
		"S103,Gizmo\n"

	records, err := Read(strings.NewReader(input), "test.csv", zap.NewNop())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "S100", records[0]["shipment_identifier"])
	assert.Equal(t, "S103", records[1]["shipment_identifier"])
}

// TestReadEmptyBody 测试只有表头的文件返回空记录
func TestReadEmptyBody(t *testing.T) {
	records, err := Read(strings.NewReader("a,b,c\n"), "test.csv", zap.NewNop())
	require.NoError(t, err)
	assert.Empty(t, records)
}

// TestReadMissingHeader 测试空文件在读表头时报错
func TestReadMissingHeader(t *testing.T) {
	_, err := Read(strings.NewReader(""), "test.csv", zap.NewNop())
	assert.Error(t, err)
}

// TestReadFileMissing 测试不存在的文件返回错误
func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile("does/not/exist.csv", zap.NewNop())
	assert.Error(t, err)
}

// TestReadQuotedFields 测试带引号和逗号的字段
func TestReadQuotedFields(t *testing.T) {
	input := "product,product_quantity\n" +
		"\"Widget, Large\",7\n"

	records, err := Read(strings.NewReader(input), "test.csv", zap.NewNop())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Widget, Large", records[0]["product"])
}
