//go:build !linux

package tpmseal

// detectHardware has no platform backend outside Linux; go-tpm's transport
// package only wires up /dev/tpmrm0-style device access there. Darwin and
// Windows key slots always use the plain secretstore path.
func detectHardware() Sealer {
	return nil
}
