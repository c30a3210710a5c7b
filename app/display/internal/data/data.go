package data

import (
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/armor_finder/app/finder/pkg/config"
	"github.com/iWorld-y/armor_finder/app/finder/pkg/storage"
)

// Data 数据层资源，store 为 nil 表示未配置数据库
type Data struct {
	store *storage.Storage
}

func NewData(cfg *config.Config, logger log.Logger) (*Data, func(), error) {
	helper := log.NewHelper(logger)
	if cfg.DB.Host == "" {
		helper.Info("database not configured, recommendation history disabled")
		return &Data{}, func() {}, nil
	}

	store, err := storage.NewStorage(cfg.DB)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		helper.Info("closing the data resources")
		store.Close()
	}
	return &Data{store: store}, cleanup, nil
}
