// File: scconfig/load.go
//
// Assembles a scconn.ContextConfig from a YAML file plus BACNET_SC_*
// environment overrides: defaults, then file, then environment, each layer
// overriding the last.
package scconfig

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/momentics/bacnet-sc/api"
	"github.com/momentics/bacnet-sc/scconn"
	"github.com/momentics/bacnet-sc/scwsapi"
)

// Load reads path (if non-empty), layers BACNET_SC_* environment overrides
// on top, and resolves the result into a validated scconn.ContextConfig.
// A missing path is not an error: the environment alone (or the built-in
// defaults) may fully specify a node's configuration.
func Load(path string) (*scconn.ContextConfig, *api.Error) {
	fc := DefaultFileConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, api.NewError(api.ErrorClassCommunication, api.ErrorCodeInvalidArgument,
				fmt.Sprintf("reading config file: %v", err))
		}
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, api.NewError(api.ErrorClassCommunication, api.ErrorCodeInvalidArgument,
				fmt.Sprintf("parsing config file: %v", err))
		}
	}

	applyEnv(&fc)

	return resolve(fc)
}

func resolve(fc FileConfig) (*scconn.ContextConfig, *api.Error) {
	cfg := &scconn.ContextConfig{
		Port:              fc.Port,
		MaxBVLCLen:        fc.MaxBVLCLen,
		MaxNPDULen:        fc.MaxNPDULen,
		ConnectTimeout:    fc.ConnectTimeout,
		HeartbeatTimeout:  fc.HeartbeatTimeout,
		DisconnectTimeout: fc.DisconnectTimeout,
	}

	switch strings.ToLower(fc.Role) {
	case "acceptor":
		cfg.Role = scconn.RoleAcceptor
	case "initiator":
		cfg.Role = scconn.RoleInitiator
	default:
		return nil, api.NewError(api.ErrorClassCommunication, api.ErrorCodeInvalidArgument,
			fmt.Sprintf("role must be \"initiator\" or \"acceptor\", got %q", fc.Role))
	}

	switch strings.ToLower(fc.Protocol) {
	case "hub":
		cfg.Protocol = scwsapi.ProtocolHub
	case "direct", "":
		cfg.Protocol = scwsapi.ProtocolDirect
	default:
		return nil, api.NewError(api.ErrorClassCommunication, api.ErrorCodeInvalidArgument,
			fmt.Sprintf("protocol must be \"hub\" or \"direct\", got %q", fc.Protocol))
	}

	certs, err := loadCertificates(fc)
	if err != nil {
		return nil, api.NewError(api.ErrorClassCommunication, api.ErrorCodeInvalidArgument, err.Error())
	}
	cfg.Certificates = certs

	if fc.LocalVMAC != "" {
		vmac, err := parseVMAC(fc.LocalVMAC)
		if err != nil {
			return nil, api.NewError(api.ErrorClassCommunication, api.ErrorCodeInvalidArgument, err.Error())
		}
		cfg.LocalVMAC = vmac
	}

	if fc.LocalUUID != "" {
		uid, err := parseUUID(fc.LocalUUID)
		if err != nil {
			return nil, api.NewError(api.ErrorClassCommunication, api.ErrorCodeInvalidArgument, err.Error())
		}
		cfg.LocalUUID = uid
	} else {
		cfg.LocalUUID = api.NewRandomUUID()
	}

	if aerr := cfg.Validate(); aerr != nil {
		return nil, aerr
	}
	return cfg, nil
}

func loadCertificates(fc FileConfig) (scwsapi.TLSCertificates, error) {
	var certs scwsapi.TLSCertificates
	var err error
	if fc.CACertFile != "" {
		if certs.CAChain, err = os.ReadFile(fc.CACertFile); err != nil {
			return certs, fmt.Errorf("reading ca_cert_file: %w", err)
		}
	}
	if fc.CertFile != "" {
		if certs.CertPair, err = os.ReadFile(fc.CertFile); err != nil {
			return certs, fmt.Errorf("reading cert_file: %w", err)
		}
	}
	if fc.KeyFile != "" {
		if certs.Key, err = os.ReadFile(fc.KeyFile); err != nil {
			return certs, fmt.Errorf("reading key_file: %w", err)
		}
	}
	return certs, nil
}
