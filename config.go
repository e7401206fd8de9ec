package main

import (
	"time"

	"github.com/spf13/viper"

	"github.com/vagrants/blackbird-redis/collector"
)

// fileConfig mirrors the plugin config file the original shipped under
// /etc/blackbird/conf.d, with the same keys and defaults. Timeout stays in
// whole seconds, as it was there.
type fileConfig struct {
	Host             string `mapstructure:"host"`
	Port             int    `mapstructure:"port"`
	DB               int    `mapstructure:"db"`
	User             string `mapstructure:"user"`
	Auth             string `mapstructure:"auth"`
	Timeout          int    `mapstructure:"timeout"`
	Hostname         string `mapstructure:"hostname"`
	ResponseCheckKey string `mapstructure:"response_check_key"`

	UseTLS              bool   `mapstructure:"use_tls"`
	ClientCertFile      string `mapstructure:"tls_client_cert_file"`
	ClientKeyFile       string `mapstructure:"tls_client_key_file"`
	CaCertFile          string `mapstructure:"tls_ca_cert_file"`
	SkipTLSVerification bool   `mapstructure:"skip_tls_verification"`
}

func loadConfig(path string) (*fileConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port", 6379)
	v.SetDefault("db", 0)
	v.SetDefault("auth", "")
	v.SetDefault("timeout", 10)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg fileConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *fileConfig) spec() collector.ConnectionSpec {
	return collector.ConnectionSpec{
		Host:     c.Host,
		Port:     c.Port,
		DB:       c.DB,
		User:     c.User,
		Password: c.Auth,
		Timeout:  time.Duration(c.Timeout) * time.Second,

		UseTLS:              c.UseTLS,
		ClientCertFile:      c.ClientCertFile,
		ClientKeyFile:       c.ClientKeyFile,
		CaCertFile:          c.CaCertFile,
		SkipTLSVerification: c.SkipTLSVerification,
	}
}
