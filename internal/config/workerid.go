package config

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"

	"github.com/rzbill/flake/pkg/id"
)

var (
	ErrBadWorkerCIDR = errors.New("worker cidr invalid")
	ErrBadPodIP      = errors.New("pod ip invalid")
	// ErrMaskRange means the CIDR leaves no host bits, or more host bits than
	// the data center and machine fields can hold together.
	ErrMaskRange = errors.New("worker cidr host range does not fit the layout")
)

// WorkerIDs derives the data center and machine ids from the host part of a
// private IPv4 pod address. Only the CIDR's prefix length matters, so
// "0.0.0.0/22" and "10.4.0.0/22" are equivalent. The machine id takes the low MachineBits of the
// host part and the data center id the bits above them.
func WorkerIDs(cidr, podIP string, layout id.Layout) (dataCenterID, machineID int64, err error) {
	if cidr == "" || podIP == "" {
		return 0, 0, fmt.Errorf("both worker cidr and pod ip are required: %w", ErrBadWorkerCIDR)
	}
	_, ipNet, err := net.ParseCIDR(cidr)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %v: %w", cidr, err, ErrBadWorkerCIDR)
	}
	ones, size := ipNet.Mask.Size()
	if size != 32 {
		return 0, 0, fmt.Errorf("%s is not an IPv4 network: %w", cidr, ErrBadWorkerCIDR)
	}
	hostBits := size - ones
	if hostBits < 1 || hostBits > layout.DataCenterBits+layout.MachineBits {
		return 0, 0, fmt.Errorf("%s leaves %d host bits, want 1..%d: %w",
			cidr, hostBits, layout.DataCenterBits+layout.MachineBits, ErrMaskRange)
	}

	ip := net.ParseIP(podIP)
	if ip == nil || ip.To4() == nil {
		return 0, 0, fmt.Errorf("%s - issue parsing IPv4: %w", podIP, ErrBadPodIP)
	}
	if !ip.IsPrivate() {
		return 0, 0, fmt.Errorf("%s - is not a private ip: %w", podIP, ErrBadPodIP)
	}

	host := int64(binary.BigEndian.Uint32(ip.To4()) & (uint32(1)<<hostBits - 1))
	machineID = host & layout.MaxMachineID()
	dataCenterID = (host >> layout.MachineBits) & layout.MaxDataCenterID()
	return dataCenterID, machineID, nil
}
