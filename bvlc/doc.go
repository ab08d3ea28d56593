// Package bvlc implements the BVLC-SC wire codec used by package scconn:
// per-function frame encoders and decoders, option-chain scanning, and the
// error taxonomy raised when a frame is malformed.
package bvlc
