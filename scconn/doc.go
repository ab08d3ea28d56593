// Package scconn implements the BACnet/SC connection state machine and its
// owning Context: Connect, Accept, Send, Recv, Disconnect, and the
// once-per-second maintenance tick. A single non-recursive sync.Mutex plus
// unexported *Locked helpers guard the connection table; an intrusive
// next/prev list plus two plain Go maps (by vmac, by uuid) support both
// ordered iteration and O(1) lookup.
package scconn
