package collector

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"os"

	log "github.com/sirupsen/logrus"
)

// createClientTLSConfig builds the client TLS config for a spec, or nil
// when the spec carries no TLS material.
func createClientTLSConfig(spec ConnectionSpec) (*tls.Config, error) {
	if !spec.UseTLS && spec.ClientCertFile == "" && spec.CaCertFile == "" {
		return nil, nil
	}

	tlsConfig := tls.Config{
		InsecureSkipVerify: spec.SkipTLSVerification,
	}

	if spec.ClientCertFile != "" {
		cert, err := LoadKeyPair(spec.ClientCertFile, spec.ClientKeyFile)
		if err != nil {
			return nil, err
		}
		tlsConfig.Certificates = []tls.Certificate{*cert}
	}

	if spec.CaCertFile != "" {
		pem, err := os.ReadFile(spec.CaCertFile)
		if err != nil {
			return nil, err
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, errors.New("no certificates found in CA cert file")
		}
		tlsConfig.RootCAs = pool
	}

	return &tlsConfig, nil
}

// LoadKeyPair reads and parses a public/private key pair from a pair of
// files. The files must contain PEM encoded data.
func LoadKeyPair(certFile, keyFile string) (*tls.Certificate, error) {
	log.Debugf("Load key pair: %s %s", certFile, keyFile)
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, err
	}
	return &cert, nil
}
