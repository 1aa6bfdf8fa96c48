// Package core defines sentinel errors.
package core

import "errors"

var (
	// Capture source errors
	ErrSourceOpen = errors.New("pktinspect: capture source open failed")
	ErrSourceRead = errors.New("pktinspect: capture source read failed")

	// Session log errors
	ErrSessionLog = errors.New("pktinspect: session log write failed")
	ErrSinkClosed = errors.New("pktinspect: sink closed")

	// Dump errors
	ErrDumpWrite = errors.New("pktinspect: pcap dump write failed")

	// Configuration errors
	ErrConfigInvalid = errors.New("pktinspect: invalid configuration")
)
