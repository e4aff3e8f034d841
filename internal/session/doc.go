// Package session bridges an asynchronous BLE notify transport to a
// synchronous request/response call contract.
//
// A Session owns exactly one Transport. A dedicated receive goroutine reads
// every inbound notification and classifies it: the first frame whose opcode
// matches the in-flight request completes that request; everything else is
// broadcast traffic and flows, in order, through an unbounded queue to the
// channel returned by Broadcasts. Periodic temperature broadcasts therefore
// interleave freely with solicited exchanges and never block, or are blocked
// by, a caller awaiting a reply.
//
// The lifecycle is Disconnected -> Connected -> Authenticating -> Ready.
// A new Session starts Connected; only the 0x01 handshake is accepted until
// it completes, after which arbitrary catalog commands are accepted.
//
// Error policy follows the wire reality of a chatty consumer device:
// malformed or unexpectedly-shaped inbound frames are logged and absorbed
// rather than tearing the session down, while anomalies in a frame that
// answers the pending request fail that request. Transport failures are
// fatal; timeouts are not.
package session
