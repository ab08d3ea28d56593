package wsbridge

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"strconv"

	"github.com/momentics/bacnet-sc/scwsapi"
)

func portAddr(port uint16) string {
	return net.JoinHostPort("", strconv.Itoa(int(port)))
}

func newTLSListener(addr string, cfg *tls.Config) (net.Listener, error) {
	return tls.Listen("tcp", addr, cfg)
}

// buildTLSConfig turns an scwsapi.TLSCertificates bundle into a
// crypto/tls.Config usable by both gorilla/websocket's Dialer and an
// http.Server. serverSide adds ClientAuth/ClientCAs for mutual TLS on the
// acceptor; the initiator side only needs RootCAs plus its own leaf cert.
func buildTLSConfig(certs scwsapi.TLSCertificates, serverSide bool) (*tls.Config, error) {
	pool := x509.NewCertPool()
	if len(certs.CAChain) > 0 {
		if !pool.AppendCertsFromPEM(certs.CAChain) {
			return nil, fmt.Errorf("wsbridge: no valid certificates found in CA chain")
		}
	}

	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if serverSide {
		cfg.ClientCAs = pool
		cfg.ClientAuth = tls.RequireAndVerifyClientCert
	} else {
		cfg.RootCAs = pool
	}

	if len(certs.CertPair) > 0 && len(certs.Key) > 0 {
		cert, err := tls.X509KeyPair(certs.CertPair, certs.Key)
		if err != nil {
			return nil, fmt.Errorf("wsbridge: loading node certificate/key: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}

	return cfg, nil
}
