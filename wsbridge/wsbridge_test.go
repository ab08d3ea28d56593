package wsbridge_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	cryptorand "crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/momentics/bacnet-sc/scwsapi"
	"github.com/momentics/bacnet-sc/wsbridge"
)

// selfSignedPair generates an in-memory CA plus one leaf certificate signed
// by it, for a loopback-only TLS handshake test. Not a real BACnet/SC PKI
// exercise — just enough to drive gorilla/websocket's TLS path end to end.
func selfSignedPair(t *testing.T) (caPEM, certPEM, keyPEM []byte) {
	t.Helper()

	caKey, err := ecdsa.GenerateKey(elliptic.P256(), cryptorand.Reader)
	require.NoError(t, err)
	caTpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "test-ca"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
	}
	caDER, err := x509.CreateCertificate(cryptorand.Reader, caTpl, caTpl, &caKey.PublicKey, caKey)
	require.NoError(t, err)
	caCert, err := x509.ParseCertificate(caDER)
	require.NoError(t, err)

	leafKey, err := ecdsa.GenerateKey(elliptic.P256(), cryptorand.Reader)
	require.NoError(t, err)
	leafTpl := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject:      pkix.Name{CommonName: "localhost"},
		DNSNames:     []string{"localhost"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
	}
	leafDER, err := x509.CreateCertificate(cryptorand.Reader, leafTpl, caCert, &leafKey.PublicKey, caKey)
	require.NoError(t, err)

	keyDER, err := x509.MarshalECPrivateKey(leafKey)
	require.NoError(t, err)

	encode := func(blockType string, der []byte) []byte {
		return pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
	}
	return encode("CERTIFICATE", caDER), encode("CERTIFICATE", leafDER), encode("EC PRIVATE KEY", keyDER)
}

func TestHubAndDialerRoundTrip(t *testing.T) {
	caPEM, certPEM, keyPEM := selfSignedPair(t)
	certs := scwsapi.TLSCertificates{CAChain: caPEM, CertPair: certPEM, Key: keyPEM}

	hub := wsbridge.NewHub()
	require.NoError(t, hub.Start(scwsapi.ProtocolDirect, 37811, certs))
	defer hub.Stop()

	dialer := wsbridge.NewDialer(2 * time.Second)

	acceptDone := make(chan scwsapi.Handle, 1)
	go func() {
		h, err := hub.Accept(scwsapi.ProtocolDirect, 2*time.Second)
		require.NoError(t, err)
		acceptDone <- h
	}()

	clientHandle, err := dialer.Connect(scwsapi.ProtocolDirect, "wss://localhost:37811/", certs)
	require.NoError(t, err)

	serverHandle := <-acceptDone

	ok, err := dialer.Send(clientHandle, []byte("ping"))
	require.NoError(t, err)
	require.True(t, ok)

	buf := make([]byte, 32)
	n, err := hub.Recv(scwsapi.ProtocolDirect, serverHandle, buf, 2*time.Second)
	require.NoError(t, err)
	require.Equal(t, "ping", string(buf[:n]))

	require.NoError(t, dialer.Disconnect(clientHandle))
	require.NoError(t, hub.Disconnect(scwsapi.ProtocolDirect, serverHandle))
}
