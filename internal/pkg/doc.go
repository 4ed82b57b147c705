/*
Package pkg 包含了项目的公共类部分。具体地：

config.go -- 统一定义了所有配置的加载项，便于使用

logger.go -- 配置logger项

以下项因为在多个模块共用，故放置在此包中

record.go -- 数据源行记录模型定义

metrics.go -- 单次运行的指标统计
*/
package pkg
