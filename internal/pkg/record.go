package pkg

import (
	"fmt"
	"sort"
	"strings"
)

// Record 是 Reader 和装载管道之间传递的数据结构，一行 = 列名到原始文本的映射
type Record map[string]string

// Field 按列名取值，列不存在时 ok 为 false
func (r Record) Field(name string) (string, bool) {
	value, ok := r[name]
	return value, ok
}

// TrimmedField 按列名取去除首尾空白后的值
func (r Record) TrimmedField(name string) (string, bool) {
	value, ok := r[name]
	return strings.TrimSpace(value), ok
}

// String 方法实现
func (r Record) String() string {
	keys := make([]string, 0, len(r))
	for key := range r {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fieldStr := "{"
	for i, key := range keys {
		if i > 0 {
			fieldStr += ", "
		}
		fieldStr += fmt.Sprintf("%s: %s", key, r[key])
	}
	fieldStr += "}"
	return fmt.Sprintf("Record(%s)", fieldStr)
}
