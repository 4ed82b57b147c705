package command

import (
	"context"
	"fmt"

	"shipflow/internal"
	"shipflow/internal/pkg"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewRootCommand 创建根命令
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "shipflow",
		Short: "Load shipping spreadsheets into the product/shipment tables",
		Long:  `shipflow reads three shipping data files and loads them into a normalized MySQL schema, deduplicating products and reconstructing routes and quantities.`,
	}

	// 添加子命令
	rootCmd.AddCommand(NewRunCommand())

	return rootCmd
}

// NewRunCommand 创建 run 子命令
func NewRunCommand() *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full load pipeline once",
		Long:  `Run both ingestion paths (the self-contained source, then the joined sources) followed by the post-load validation report.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// 1. 初始化common yaml
			config, err := pkg.InitCommon(configDir)
			if err != nil {
				return fmt.Errorf("加载配置失败: %w", err)
			}

			// 2. 初始化log
			log := pkg.NewLogger(&config.Log)
			defer func() {
				_ = log.Sync()
			}()
			log.Info("程序启动", zap.String("version", config.Version))

			// 3. 检查数据文件，缺文件不算失败，记日志后正常退出
			if missing := internal.MissingFiles(&config.Files); len(missing) > 0 {
				log.Error("缺少数据文件，无法开始装载", zap.Strings("missing", missing))
				log.Info("请确认三个数据源文件的路径配置")
				return nil
			}

			// 4. 创建上下文并挂载config和logger
			ctx := pkg.WithConfig(context.Background(), config)
			ctx = pkg.WithLogger(ctx, log)

			// 5. 创建并执行管道，连接在所有退出路径上关闭
			pipeline, err := internal.NewPipeline(ctx)
			if err != nil {
				log.Error("初始化管道失败", zap.Error(err))
				return err
			}
			defer pipeline.Close()

			if err := pipeline.Run(ctx); err != nil {
				log.Error("数据装载失败", zap.Error(err))
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configDir, "config", "c", "config", "配置文件目录")
	return cmd
}
