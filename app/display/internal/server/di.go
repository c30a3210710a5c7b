package server

import (
	"github.com/google/wire"

	"github.com/iWorld-y/armor_finder/app/display/internal/biz"
	"github.com/iWorld-y/armor_finder/app/display/internal/data"
	"github.com/iWorld-y/armor_finder/app/display/internal/service"
	"github.com/iWorld-y/armor_finder/app/finder/pkg/resolver"
)

// ProviderSet 是展示服务的依赖注入 Provider 集合
var ProviderSet = wire.NewSet(
	// Server providers
	NewHTTPServer,

	// Finder providers
	NewFinderConfig,
	NewFinderResolver,
	wire.Bind(new(biz.Resolver), new(*resolver.Resolver)),

	// Data providers
	data.NewData,
	data.NewHistoryRepo,

	// UseCase providers
	biz.NewRecommendUseCase,

	// Service providers
	service.NewFinderService,
)
