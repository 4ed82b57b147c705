package reader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"shipflow/internal/pkg"

	"go.uber.org/zap"
)

// ReadFile 读取一个带表头的 CSV 文件，返回按列名映射的行记录序列。
// 单行结构错误（列数不符等）跳过并告警，不中断整个文件；
// 文件级错误（打不开、表头缺失）直接返回。
func ReadFile(path string, log *zap.Logger) ([]pkg.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开数据文件失败 %s: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	return Read(file, path, log)
}

// Read 从 r 中解析 CSV 记录，path 仅用于日志标识
func Read(r io.Reader, path string, log *zap.Logger) ([]pkg.Record, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = -1 // 列数校验放到下面逐行做，避免一行坏数据毁掉整个文件

	// 第一行是表头
	header, err := csvReader.Read()
	if err != nil {
		return nil, fmt.Errorf("读取表头失败 %s: %w", path, err)
	}

	var records []pkg.Record
	line := 1
	for {
		line++
		row, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				log.Warn("跳过无法解析的行",
					zap.String("file", path), zap.Int("line", line), zap.Error(err))
				continue
			}
			return nil, fmt.Errorf("读取数据文件失败 %s: %w", path, err)
		}
		if len(row) != len(header) {
			log.Warn("跳过列数不符的行",
				zap.String("file", path), zap.Int("line", line),
				zap.Int("want", len(header)), zap.Int("got", len(row)))
			continue
		}

		record := make(pkg.Record, len(header))
		for i, name := range header {
			record[name] = row[i]
		}
		records = append(records, record)
	}

	log.Info("读取数据文件完成", zap.String("file", path), zap.Int("rows", len(records)))
	return records, nil
}
