package filter

import (
	"fmt"
	"strings"

	"shipflow/internal/pkg"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// REnv 是行过滤表达式执行的环境。
// Field 是当前行的列名到原始文本的映射，表达式形如 `Field.product != ""`。
type REnv struct {
	Field map[string]string
}

// Filter 编译后的行过滤器，多个条件按 && 连接
type Filter struct {
	program *vm.Program
}

// Compile 编译过滤条件，conditions 为空时返回 nil（不过滤）。
// 编译错误是配置错误，直接返回，由调用方按致命错误处理。
func Compile(conditions []string) (*Filter, error) {
	if len(conditions) == 0 {
		return nil, nil
	}
	source := strings.Join(conditions, " && ")
	program, err := expr.Compile(source, expr.Env(&REnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("编译行过滤表达式失败 %q: %w", source, err)
	}
	return &Filter{program: program}, nil
}

// Match 判断一行记录是否通过过滤。nil 过滤器放行所有行；
// 求值出错（如引用不存在的列）按不通过处理。
func (f *Filter) Match(record pkg.Record) (bool, error) {
	if f == nil {
		return true, nil
	}
	output, err := expr.Run(f.program, &REnv{Field: record})
	if err != nil {
		return false, fmt.Errorf("求值行过滤表达式失败: %w", err)
	}
	matched, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("行过滤表达式结果不是布尔值: %T", output)
	}
	return matched, nil
}
