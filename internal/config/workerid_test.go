package config

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rzbill/flake/pkg/id"
)

func TestWorkerIDs(t *testing.T) {
	tests := []struct {
		optional    string
		cidr, podIP string
		wantDC      int64
		wantMachine int64
		wantErr     error
	}{
		{"", "0.0.0.0/22", "10.2.3.4", 24, 4, nil},
		{"", "0.0.0.0/22", "10.2.3.36", 25, 4, nil},
		{"", "0.0.0.0/22", "10.2.7.255", 31, 31, nil},
		{"", "10.2.0.0/27", "10.2.0.29", 0, 29, nil},
		{"", "0.0.0.0/31", "192.168.1.3", 0, 1, nil},

		{"err not private ip ", "0.0.0.0/24", "1.2.3.4", 0, 0, ErrBadPodIP},
		{"err not ipv4 ", "0.0.0.0/24", "fd00::1", 0, 0, ErrBadPodIP},
		{"err garbage ip ", "0.0.0.0/24", "pod", 0, 0, ErrBadPodIP},
		{"err to many ips ", "0.0.0.0/21", "10.2.3.4", 0, 0, ErrMaskRange},
		{"err to few ips ", "0.0.0.0/32", "10.2.3.4", 0, 0, ErrMaskRange},
		{"err bad cidr ", "10.0.0.0", "10.2.3.4", 0, 0, ErrBadWorkerCIDR},
		{"err ipv6 cidr ", "fd00::/120", "10.2.3.4", 0, 0, ErrBadWorkerCIDR},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%scidr=%s,ip=%s", tt.optional, tt.cidr, tt.podIP), func(t *testing.T) {
			dc, machine, err := WorkerIDs(tt.cidr, tt.podIP, id.DefaultLayout)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("WorkerIDs() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if dc != tt.wantDC || machine != tt.wantMachine {
				t.Errorf("WorkerIDs() = (%d, %d), want (%d, %d)", dc, machine, tt.wantDC, tt.wantMachine)
			}
		})
	}
}
