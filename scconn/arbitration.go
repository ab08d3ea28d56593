// File: scconn/arbitration.go
// Identity arbitration: pure decision functions over the table snapshot,
// called from Context.Accept under the lock so they are unit-testable
// without a real transport.
package scconn

import "github.com/momentics/bacnet-sc/api"

type arbitrationDecision int

const (
	decisionAccept arbitrationDecision = iota
	decisionDuplicateUUIDReplace
	decisionDuplicateVMACReject
	decisionLocalIdentityReject
)

// arbitrateLocked decides what a Connect-Request claiming (peerVMAC,
// peerUUID) should do against the current table: replace an existing
// connection under the same uuid, reject a vmac collision under a
// different uuid, reject a claim to our own local identity, or accept.
// Must be called with ctx.mu held.
func (ctx *Context) arbitrateLocked(peerVMAC api.VMAC, peerUUID api.UUID) (arbitrationDecision, *Connection) {
	if existing := ctx.findByUUIDLocked(peerUUID); existing != nil {
		return decisionDuplicateUUIDReplace, existing
	}
	if existing := ctx.findByVMACLocked(peerVMAC); existing != nil && !existing.peerUUID.Equal(peerUUID) {
		return decisionDuplicateVMACReject, existing
	}
	if peerVMAC.Equal(ctx.config.LocalVMAC) && !peerUUID.Equal(ctx.config.LocalUUID) {
		return decisionLocalIdentityReject, nil
	}
	return decisionAccept, nil
}
