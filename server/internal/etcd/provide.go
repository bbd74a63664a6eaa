package etcd

import (
	"github.com/rs/zerolog"
	"github.com/samber/do"
	clientv3 "go.etcd.io/etcd/client/v3"
	"google.golang.org/grpc/grpclog"

	"github.com/pgEdge/recordstore/server/internal/config"
)

func Provide(i *do.Injector) {
	provideEmbeddedEtcd(i)
	provideClient(i)
}

func provideClient(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*clientv3.Client, error) {
		etcd, err := do.Invoke[*EmbeddedEtcd](i)
		if err != nil {
			return nil, err
		}
		grpcLogger, err := do.Invoke[grpclog.LoggerV2](i)
		if err != nil {
			return nil, err
		}
		grpclog.SetLoggerV2(grpcLogger)
		return etcd.GetClient()
	})
}

func provideEmbeddedEtcd(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*EmbeddedEtcd, error) {
		cfg, err := do.Invoke[config.Config](i)
		if err != nil {
			return nil, err
		}
		logger, err := do.Invoke[zerolog.Logger](i)
		if err != nil {
			return nil, err
		}
		return NewEmbeddedEtcd(cfg, logger), nil
	})
}
