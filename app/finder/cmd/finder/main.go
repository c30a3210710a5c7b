package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/iWorld-y/armor_finder/app/finder/pkg/config"
	"github.com/iWorld-y/armor_finder/app/finder/pkg/logger"
	"github.com/iWorld-y/armor_finder/app/finder/pkg/model"
	"github.com/iWorld-y/armor_finder/app/finder/pkg/render"
	"github.com/iWorld-y/armor_finder/app/finder/pkg/resolver"
	"github.com/iWorld-y/armor_finder/app/finder/pkg/storage"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		logger.Log.Fatalf("%v", err)
	}
}

// run 解析参数并执行一次推荐
func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("finder", flag.ContinueOnError)
	fs.SetOutput(stdout)
	flagconf := fs.String("conf", "app/finder/configs/config.yaml", "config path, eg: -conf config.yaml")
	flagtopic := fs.String("topic", model.Topics()[0].Label, "armor of god topic, eg: -topic \"Shield of Faith\"")
	flagout := fs.String("out", "output/index.html", "html output path")
	flaglist := fs.Bool("list", false, "list topics and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *flaglist {
		for _, t := range model.Topics() {
			fmt.Fprintf(stdout, "%-32s %s\n", t.Label, t.Hint)
		}
		return nil
	}

	// 1. 加载配置
	cfg, err := config.Load(*flagconf)
	if err != nil {
		return fmt.Errorf("无法加载配置: %w", err)
	}

	// 2. 初始化日志
	if err = logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		return fmt.Errorf("无法初始化日志: %w", err)
	}
	logger.Log.Info("启动 Armor of God 视频推荐...")

	topic := *flagtopic
	if _, ok := model.LookupTopic(topic); !ok {
		logger.Log.Warnf("主题不在目录中，仍然尝试推荐: %s", topic)
	}

	// 3. 初始化数据库连接，未配置时跳过
	var store *storage.Storage
	if cfg.DB.Host != "" {
		s, err := storage.NewStorage(cfg.DB)
		if err != nil {
			logger.Log.Errorf("无法连接数据库: %v. 将仅生成 HTML 文件。", err)
		} else {
			store = s
			defer store.Close()
			logger.Log.Info("已成功连接到数据库")
		}
	} else {
		logger.Log.Info("未配置数据库信息，跳过数据库连接")
	}

	// 4. 初始化推荐解析器
	r, err := resolver.NewFromConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("推荐解析器初始化失败: %w", err)
	}

	// 5. 推荐
	res := r.Resolve(ctx, topic)
	for i, v := range res.Videos {
		fmt.Fprintf(stdout, "%d. %s\n   %s\n", i+1, v.Title, v.URL)
	}

	if store != nil {
		if _, err := store.SaveResolution(ctx, res.Record()); err != nil {
			logger.Log.Errorf("保存推荐记录失败: %v", err)
		}
	}

	// 6. 生成 HTML
	page := render.NewPage(topic, res.Videos, true)
	page.Interactive = false
	if err := render.WriteFile(*flagout, page); err != nil {
		return fmt.Errorf("生成 HTML 失败: %w", err)
	}

	logger.Log.Infof("✅ 推荐页面生成完毕: %s (source=%s, videos=%d)", *flagout, res.Source, len(res.Videos))
	if len(res.Videos) == 0 {
		logger.Log.Warn(render.NoResultsNotice)
	}
	return nil
}
