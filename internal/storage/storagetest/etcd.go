package storagetest

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
	"go.etcd.io/etcd/server/v3/embed"
	"go.uber.org/zap"
)

// EtcdTestServer is a single-member embedded etcd server that lives for the
// duration of a test.
type EtcdTestServer struct {
	etcd      *embed.Etcd
	dir       string
	clientURL string
}

// Client returns a new client for the test server. The client is closed when
// the test completes.
func (s *EtcdTestServer) Client(t testing.TB) *clientv3.Client {
	t.Helper()

	client, err := clientv3.New(clientv3.Config{
		Logger:      zap.NewNop(),
		Endpoints:   []string{s.clientURL},
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		client.Close()
	})
	return client
}

func NewEtcdTestServer(t testing.TB) *EtcdTestServer {
	t.Helper()

	dir := TempDir(t)

	clientURL := url.URL{
		Scheme: "http",
		Host:   fmt.Sprintf("127.0.0.1:%d", GetFreePort(t)),
	}
	peerURL := url.URL{
		Scheme: "http",
		Host:   fmt.Sprintf("127.0.0.1:%d", GetFreePort(t)),
	}

	cfg := embed.NewConfig()
	cfg.LogLevel = "error"
	cfg.Name = "test"
	cfg.Dir = filepath.Join(dir, "data")
	cfg.ListenClientUrls = []url.URL{clientURL}
	cfg.AdvertiseClientUrls = []url.URL{clientURL}
	cfg.ListenPeerUrls = []url.URL{peerURL}
	cfg.AdvertisePeerUrls = []url.URL{peerURL}
	cfg.InitialCluster = fmt.Sprintf("test=%s", peerURL.String())
	cfg.MaxTxnOps = 2048

	e, err := embed.StartEtcd(cfg)
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		e.Close()
	})

	// Blocks until ready
	select {
	case <-e.Server.ReadyNotify():
		return &EtcdTestServer{
			etcd:      e,
			dir:       dir,
			clientURL: clientURL.String(),
		}
	case <-time.After(60 * time.Second):
		e.Server.Stop() // trigger a shutdown
		t.Fatal("Server took too long to start!")
	}

	return nil
}

func GetFreePort(t testing.TB) int {
	t.Helper()

	a, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		t.Fatal(err)
	}
	l, err := net.ListenTCP("tcp", a)
	if err != nil {
		t.Fatal(err)
	}

	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TempDir(t testing.TB) string {
	t.Helper()

	dir, err := os.MkdirTemp(os.TempDir(), "embedded-etcd")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.RemoveAll(dir)
	})

	return dir
}
