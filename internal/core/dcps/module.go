package dcps

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-dds/internal/core/entity"
)

// Params Service 依赖参数
type Params struct {
	fx.In

	Manager *entity.Manager
}

// Module 是 dcps 的 Fx 模块
var Module = fx.Module("dcps",
	fx.Provide(ProvideService),
	fx.Invoke(registerLifecycle),
)

// ProvideService 提供 Service 实例
func ProvideService(p Params) (*Service, error) {
	return NewService(p.Manager)
}

// registerLifecycle 注册生命周期钩子
//
// 停止时删除根实体，先于实体管理器关闭事件发射器。
func registerLifecycle(lc fx.Lifecycle, s *Service) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return s.Close()
		},
	})
}
