package etcd

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/do"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.etcd.io/etcd/server/v3/embed"

	"github.com/pgEdge/recordstore/server/internal/config"
)

const memberName = "recordstore"

var ErrNotStarted = errors.New("etcd not started")

var _ do.Shutdownable = (*EmbeddedEtcd)(nil)

// EmbeddedEtcd runs a single-member etcd server inside the process. The
// record store keeps all of its state in this server.
type EmbeddedEtcd struct {
	mu     sync.Mutex
	client *clientv3.Client
	etcd   *embed.Etcd
	logger zerolog.Logger
	cfg    config.Config
}

func NewEmbeddedEtcd(cfg config.Config, logger zerolog.Logger) *EmbeddedEtcd {
	return &EmbeddedEtcd{
		cfg: cfg,
		logger: logger.With().
			Str("component", "embedded_etcd").
			Logger(),
	}
}

func (e *EmbeddedEtcd) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.etcd != nil {
		return nil
	}

	initialized, err := e.IsInitialized()
	if err != nil {
		return fmt.Errorf("failed to determine if etcd is already initialized: %w", err)
	}

	cfg, err := embedConfig(e.cfg, e.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize embedded etcd config: %w", err)
	}
	etcd, err := startEmbedded(ctx, cfg)
	if err != nil {
		return err
	}
	e.etcd = etcd

	e.logger.Debug().
		Bool("existing_data_dir", initialized).
		Str("data_dir", e.DataDir()).
		Msg("started embedded etcd")

	return nil
}

func (e *EmbeddedEtcd) Shutdown() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var errs []error
	if e.client != nil {
		if err := e.client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close etcd client: %w", err))
		}
		e.client = nil
	}
	if e.etcd != nil {
		e.etcd.Close()
		e.etcd = nil
	}
	return errors.Join(errs...)
}

func (e *EmbeddedEtcd) DataDir() string {
	return filepath.Join(e.cfg.DataDir, "etcd")
}

func (e *EmbeddedEtcd) IsInitialized() (bool, error) {
	// Use the existence of the WAL dir to determine if a server has already
	// been started with this data directory.
	walDir := filepath.Join(e.DataDir(), "member", "wal")
	info, err := os.Stat(walDir)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat wal dir %q: %w", walDir, err)
	}
	if !info.IsDir() {
		return false, fmt.Errorf("%q is not a directory", walDir)
	}

	return true, nil
}

func (e *EmbeddedEtcd) GetClient() (*clientv3.Client, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.client != nil {
		return e.client, nil
	}
	if e.etcd == nil {
		return nil, ErrNotStarted
	}

	client, err := clientForEmbedded(e.cfg, e.logger, e.etcd)
	if err != nil {
		return nil, err
	}
	e.client = client

	return client, nil
}

func embedConfig(cfg config.Config, logger zerolog.Logger) (*embed.Config, error) {
	lg, err := newZapLogger(logger, cfg.EmbeddedEtcd.ServerLogLevel, "etcd_server")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize etcd server logger: %w", err)
	}

	c := embed.NewConfig()
	c.ZapLoggerBuilder = embed.NewZapLoggerBuilder(lg)
	c.Name = memberName
	c.Dir = filepath.Join(cfg.DataDir, "etcd")
	if cfg.EmbeddedEtcd.AutoCompactionRetention != "" {
		c.AutoCompactionMode = "periodic"
		c.AutoCompactionRetention = cfg.EmbeddedEtcd.AutoCompactionRetention
	}

	// The server is only reachable from this host.
	clientPort := cfg.EmbeddedEtcd.ClientPort
	peerPort := cfg.EmbeddedEtcd.PeerPort
	c.ListenClientUrls = []url.URL{
		{Scheme: "http", Host: fmt.Sprintf("127.0.0.1:%d", clientPort)},
	}
	c.AdvertiseClientUrls = []url.URL{
		{Scheme: "http", Host: fmt.Sprintf("127.0.0.1:%d", clientPort)},
	}
	c.ListenPeerUrls = []url.URL{
		{Scheme: "http", Host: fmt.Sprintf("127.0.0.1:%d", peerPort)},
	}
	c.AdvertisePeerUrls = []url.URL{
		{Scheme: "http", Host: fmt.Sprintf("127.0.0.1:%d", peerPort)},
	}
	c.InitialCluster = fmt.Sprintf(
		"%s=http://127.0.0.1:%d",
		memberName,
		peerPort,
	)
	// Every write of a schema version change goes into one transaction, so
	// this caps the size of a single migration pass.
	c.MaxTxnOps = cfg.EmbeddedEtcd.MaxTxnOps
	c.MaxRequestBytes = 10 * 1024 * 1024 // 10MB

	return c, nil
}

func startEmbedded(ctx context.Context, cfg *embed.Config) (*embed.Etcd, error) {
	etcd, err := embed.StartEtcd(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to start etcd: %w", err)
	}

	// Block until ready
	select {
	case <-etcd.Server.ReadyNotify():
		return etcd, nil
	case <-time.After(60 * time.Second):
		etcd.Server.Stop() // trigger a shutdown
		return nil, errors.New("server took too long to start")
	case <-ctx.Done():
		etcd.Server.Stop()
		return nil, fmt.Errorf("context cancelled while starting etcd: %w", ctx.Err())
	}
}

func clientForEmbedded(cfg config.Config, logger zerolog.Logger, etcd *embed.Etcd) (*clientv3.Client, error) {
	lg, err := newZapLogger(logger, cfg.EmbeddedEtcd.ClientLogLevel, "etcd_client")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize etcd client logger: %w", err)
	}

	client, err := clientv3.New(clientv3.Config{
		Logger:             lg,
		Endpoints:          etcd.Server.Cluster().ClientURLs(),
		MaxCallSendMsgSize: 10 * 1024 * 1024, // 10MB
		MaxCallRecvMsgSize: 10 * 1024 * 1024, // 10MB
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize etcd client: %w", err)
	}

	return client, nil
}
