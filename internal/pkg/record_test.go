package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestRecordField 测试按列名取值
func TestRecordField(t *testing.T) {
	record := Record{"product": " Widget ", "origin_warehouse": "W1"}

	value, ok := record.Field("product")
	assert.True(t, ok)
	assert.Equal(t, " Widget ", value)

	_, ok = record.Field("missing")
	assert.False(t, ok)
}

// TestRecordTrimmedField 测试取值时去除首尾空白
func TestRecordTrimmedField(t *testing.T) {
	record := Record{"product": "  Widget\t"}

	value, ok := record.TrimmedField("product")
	assert.True(t, ok)
	assert.Equal(t, "Widget", value)

	value, ok = record.TrimmedField("missing")
	assert.False(t, ok)
	assert.Equal(t, "", value)
}

// TestRecordString 测试 String 输出的确定性（列名排序）
func TestRecordString(t *testing.T) {
	record := Record{"b": "2", "a": "1"}
	assert.Equal(t, "Record({a: 1, b: 2})", record.String())
}
