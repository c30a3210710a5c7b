package data

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/armor_finder/app/display/internal/biz"
	"github.com/iWorld-y/armor_finder/app/finder/pkg/model"
)

type historyRepo struct {
	data *Data
	log  *log.Helper
}

func NewHistoryRepo(data *Data, logger log.Logger) biz.HistoryRepo {
	return &historyRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *historyRepo) Enabled() bool {
	return r.data.store != nil
}

func (r *historyRepo) Save(ctx context.Context, res *model.Resolution) error {
	if r.data.store == nil {
		return nil
	}
	id, err := r.data.store.SaveResolution(ctx, res)
	if err != nil {
		return err
	}
	r.log.WithContext(ctx).Debugf("saved resolution %d for %q", id, res.Topic)
	return nil
}

func (r *historyRepo) List(ctx context.Context, limit int) ([]*model.Resolution, error) {
	if r.data.store == nil {
		return nil, biz.ErrHistoryDisabled
	}
	return r.data.store.ListResolutions(ctx, limit)
}
