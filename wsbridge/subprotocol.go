package wsbridge

import (
	"fmt"

	"github.com/momentics/bacnet-sc/scwsapi"
)

const (
	// subprotocolHub is the WebSocket subprotocol string a hub connection
	// negotiates (ASHRAE 135 Annex AB.7.1).
	subprotocolHub = "hub.bsc.bacnet.org"
	// subprotocolDirect is the WebSocket subprotocol string a direct
	// (peer-to-peer) connection negotiates.
	subprotocolDirect = "dc.bsc.bacnet.org"
)

func subprotocolName(proto scwsapi.Protocol) string {
	if proto == scwsapi.ProtocolDirect {
		return subprotocolDirect
	}
	return subprotocolHub
}

func protocolFromSubprotocol(name string) (scwsapi.Protocol, error) {
	switch name {
	case subprotocolHub:
		return scwsapi.ProtocolHub, nil
	case subprotocolDirect:
		return scwsapi.ProtocolDirect, nil
	default:
		return 0, fmt.Errorf("wsbridge: unrecognized subprotocol %q", name)
	}
}
