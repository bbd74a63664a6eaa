package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Logging struct {
	Level  string `koanf:"level" json:"level,omitempty"`
	Pretty bool   `koanf:"pretty" json:"pretty,omitempty"`
}

func (l Logging) validate() []error {
	var errs []error
	if _, err := zerolog.ParseLevel(l.Level); err != nil {
		errs = append(errs, fmt.Errorf("level: invalid log level %q: %w", l.Level, err))
	}
	return errs
}

var loggingDefault = Logging{
	Level: "info",
}

type EmbeddedEtcd struct {
	ClientLogLevel string `koanf:"client_log_level" json:"client_log_level,omitempty"`
	ServerLogLevel string `koanf:"server_log_level" json:"server_log_level,omitempty"`
	PeerPort       int    `koanf:"peer_port" json:"peer_port,omitempty"`
	ClientPort     int    `koanf:"client_port" json:"client_port,omitempty"`
	// MaxTxnOps bounds the number of writes that a single schema version
	// change can commit.
	MaxTxnOps               uint   `koanf:"max_txn_ops" json:"max_txn_ops,omitempty"`
	AutoCompactionRetention string `koanf:"auto_compaction_retention" json:"auto_compaction_retention,omitempty"`
}

func (e EmbeddedEtcd) validate() []error {
	var errs []error
	if _, err := zerolog.ParseLevel(e.ClientLogLevel); err != nil {
		errs = append(errs, fmt.Errorf("client_log_level: invalid log level %q: %w", e.ClientLogLevel, err))
	}
	if _, err := zerolog.ParseLevel(e.ServerLogLevel); err != nil {
		errs = append(errs, fmt.Errorf("server_log_level: invalid log level %q: %w", e.ServerLogLevel, err))
	}
	if e.PeerPort < 1 || e.PeerPort > 65535 {
		errs = append(errs, fmt.Errorf("peer_port: invalid port %d", e.PeerPort))
	}
	if e.ClientPort < 1 || e.ClientPort > 65535 {
		errs = append(errs, fmt.Errorf("client_port: invalid port %d", e.ClientPort))
	}
	if e.PeerPort == e.ClientPort {
		errs = append(errs, errors.New("peer_port: must differ from client_port"))
	}
	if e.MaxTxnOps < 128 {
		errs = append(errs, fmt.Errorf("max_txn_ops: must be at least 128, got %d", e.MaxTxnOps))
	}
	if e.AutoCompactionRetention != "" {
		if _, err := time.ParseDuration(e.AutoCompactionRetention); err != nil {
			errs = append(errs, fmt.Errorf("auto_compaction_retention: %w", err))
		}
	}
	return errs
}

var embeddedEtcdDefault = EmbeddedEtcd{
	ClientLogLevel:          "fatal",
	ServerLogLevel:          "fatal",
	PeerPort:                2380,
	ClientPort:              2379,
	MaxTxnOps:               2048,
	AutoCompactionRetention: "1h",
}

type Config struct {
	DataDir        string       `koanf:"data_dir" json:"data_dir,omitempty"`
	KeyRoot        string       `koanf:"key_root" json:"key_root,omitempty"`
	Logging        Logging      `koanf:"logging" json:"logging,omitzero"`
	EmbeddedEtcd   EmbeddedEtcd `koanf:"embedded_etcd" json:"embedded_etcd,omitzero"`
	SeedSampleData bool         `koanf:"seed_sample_data" json:"seed_sample_data,omitempty"`
}

func (c Config) Validate() error {
	var errs []error
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir cannot be empty"))
	}
	if c.KeyRoot == "" {
		errs = append(errs, errors.New("key_root cannot be empty"))
	} else if strings.Contains(c.KeyRoot, "/") {
		errs = append(errs, fmt.Errorf("key_root: must not contain '/', got %q", c.KeyRoot))
	}
	for _, err := range c.Logging.validate() {
		errs = append(errs, fmt.Errorf("logging.%w", err))
	}
	for _, err := range c.EmbeddedEtcd.validate() {
		errs = append(errs, fmt.Errorf("embedded_etcd.%w", err))
	}
	return errors.Join(errs...)
}

func DefaultConfig() Config {
	return Config{
		KeyRoot:      "recordstore",
		Logging:      loggingDefault,
		EmbeddedEtcd: embeddedEtcdDefault,
	}
}
