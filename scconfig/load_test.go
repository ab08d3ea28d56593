package scconfig_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/bacnet-sc/scconfig"
	"github.com/momentics/bacnet-sc/scconn"
	"github.com/momentics/bacnet-sc/scwsapi"
)

func writeTempCert(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("-----BEGIN CERTIFICATE-----\nZmFrZQ==\n-----END CERTIFICATE-----\n"), 0o600))
	return p
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	caPath := writeTempCert(t, dir, "ca.pem")
	certPath := writeTempCert(t, dir, "cert.pem")
	keyPath := writeTempCert(t, dir, "key.pem")

	yamlDoc := `
role: acceptor
protocol: hub
port: 47808
ca_cert_file: ` + caPath + `
cert_file: ` + certPath + `
key_file: ` + keyPath + `
local_vmac: "aa:bb:cc:dd:ee:ff"
local_uuid: "550e8400-e29b-41d4-a716-446655440000"
max_bvlc_len: 1497
max_npdu_len: 1490
connect_timeout: 5s
heartbeat_timeout: 60s
disconnect_timeout: 5s
`
	cfgPath := filepath.Join(dir, "node.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(yamlDoc), 0o600))

	cfg, err := scconfig.Load(cfgPath)
	require.Nil(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, scconn.RoleAcceptor, cfg.Role)
	assert.Equal(t, scwsapi.ProtocolHub, cfg.Protocol)
	assert.Equal(t, uint16(47808), cfg.Port)
	assert.Equal(t, uint16(1497), cfg.MaxBVLCLen)
	assert.Equal(t, 5*time.Second, cfg.ConnectTimeout)
	assert.NotEmpty(t, cfg.Certificates.CAChain)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", cfg.LocalVMAC.String())
}

func TestLoadAppliesEnvOverride(t *testing.T) {
	dir := t.TempDir()
	certPath := writeTempCert(t, dir, "cert.pem")
	keyPath := writeTempCert(t, dir, "key.pem")

	t.Setenv("BACNET_SC_ROLE", "initiator")
	t.Setenv("BACNET_SC_PROTOCOL", "direct")
	t.Setenv("BACNET_SC_CERT_FILE", certPath)
	t.Setenv("BACNET_SC_KEY_FILE", keyPath)
	t.Setenv("BACNET_SC_CONNECT_TIMEOUT", "2s")

	cfg, err := scconfig.Load("")
	require.Nil(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, scconn.RoleInitiator, cfg.Role)
	assert.Equal(t, scwsapi.ProtocolDirect, cfg.Protocol)
	assert.Equal(t, 2*time.Second, cfg.ConnectTimeout)
	assert.False(t, cfg.LocalUUID.Equal([16]byte{}))
}

func TestLoadRejectsUnknownRole(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "node.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("role: bogus\n"), 0o600))

	_, err := scconfig.Load(cfgPath)
	require.NotNil(t, err)
}
