package pkg

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/viper"
)

// DatabaseConfig MySQL 连接配置
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// FilesConfig 三个数据源文件的路径
type FilesConfig struct {
	SourceA string `mapstructure:"source_a"` // 自包含发运数据
	SourceB string `mapstructure:"source_b"` // 按发运单逐件记录的产品数据
	SourceC string `mapstructure:"source_c"` // 发运单的路线数据
}

// SourceFilterConfig 单个数据源的行过滤条件（expr 表达式，可为空）
type SourceFilterConfig struct {
	SourceA []string `mapstructure:"source_a"`
	SourceB []string `mapstructure:"source_b"`
}

// PipelineConfig 装载管道配置
type PipelineConfig struct {
	Filter SourceFilterConfig `mapstructure:"filter"`
}

// ReportConfig 校验报告配置
type ReportConfig struct {
	SampleSize int `mapstructure:"sample_size"` // 样本行数
	TopN       int `mapstructure:"top_n"`       // 按总量排名的产品数
}

type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Files    FilesConfig    `mapstructure:"files"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Report   ReportConfig   `mapstructure:"report"`
	Version  string         `mapstructure:"version"`
}

// InitCommon 用于初始化全局配置
func InitCommon(configDir string) (*Config, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter("::")) // 设置 key 分隔符为 ::，因为默认的 . 会和文件路径冲突
	v.AddConfigPath(configDir)
	v.AutomaticEnv() // 读取环境变量
	// 遍历配置目录及其子目录中的所有文件
	err := filepath.WalkDir(configDir, func(filePath string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("访问路径 %s 失败: %w", filePath, err)
		}

		// 如果是目录则跳过，继续遍历
		if d.IsDir() {
			return nil
		}

		// 只处理 .yaml 或 .yml 文件
		ext := filepath.Ext(filePath)
		if ext == ".yaml" || ext == ".yml" {
			v.SetConfigFile(filePath)

			// 读取并合并配置文件 (会覆盖之前的配置)
			if err := v.MergeInConfig(); err != nil {
				return fmt.Errorf("读取配置文件失败 %s: %w", filePath, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	var common Config
	// 反序列化到结构体
	if err := v.Unmarshal(&common); err != nil {
		return nil, fmt.Errorf("反序列化配置失败: %w", err)
	}

	// 报告配置缺省值，避免 LIMIT 0 的查询
	if common.Report.SampleSize <= 0 {
		common.Report.SampleSize = 10
	}
	if common.Report.TopN <= 0 {
		common.Report.TopN = 10
	}
	return &common, nil
}

// 定义一个不导出的 key 类型，避免 context key 冲突
type configKey struct{}

// WithConfig 将全局配置存入 context 中
func WithConfig(ctx context.Context, config *Config) context.Context {
	return context.WithValue(ctx, configKey{}, config)
}

// ConfigFromContext 从 context 中提取配置指针
func ConfigFromContext(ctx context.Context) *Config {
	if config, ok := ctx.Value(configKey{}).(*Config); ok {
		return config
	}
	return &Config{}
}
