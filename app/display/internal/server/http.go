package server

import (
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iWorld-y/armor_finder/app/display/internal/conf"
	"github.com/iWorld-y/armor_finder/app/display/internal/service"
)

// DefaultTimeout 一次推荐最多包含一次 LLM 调用和一次搜索
const DefaultTimeout = 90 * time.Second

func NewHTTPServer(c *conf.Server, s *service.FinderService, logger log.Logger) *http.Server {
	timeout := DefaultTimeout
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
	}
	if c != nil && c.Http != nil {
		if c.Http.Addr != "" {
			opts = append(opts, http.Address(c.Http.Addr))
		}
		if c.Http.Timeout != "" {
			if d, err := time.ParseDuration(c.Http.Timeout); err == nil {
				timeout = d
			} else {
				log.NewHelper(logger).Warnf("invalid http timeout %q, using %s", c.Http.Timeout, DefaultTimeout)
			}
		}
	}
	opts = append(opts, http.Timeout(timeout))

	srv := http.NewServer(opts...)
	service.RegisterFinderHTTPServer(srv, s)

	srv.Handle("/metrics", promhttp.Handler())
	srv.HandleFunc("/", s.Page)

	return srv
}
