package flakev1

import "time"

type NextRequest struct {
	Count  int32  `json:"count,omitempty"`
	Format string `json:"format,omitempty"`
}

type NextResponse struct {
	Ids    []string `json:"ids"`
	Format string   `json:"format"`
}

type DecodeRequest struct {
	Id     string `json:"id"`
	Format string `json:"format,omitempty"`
}

type DecodeResponse struct {
	Id           string    `json:"id"`
	Format       string    `json:"format"`
	Value        int64     `json:"value"`
	Timestamp    int64     `json:"timestamp"`
	UnixMs       int64     `json:"unixMs"`
	Time         time.Time `json:"time"`
	DataCenterId int64     `json:"dataCenterId"`
	MachineId    int64     `json:"machineId"`
	Sequence     int64     `json:"sequence"`
}

type InfoRequest struct{}

type Layout struct {
	TimestampBits  int32 `json:"timestampBits"`
	DataCenterBits int32 `json:"dataCenterBits"`
	MachineBits    int32 `json:"machineBits"`
	SequenceBits   int32 `json:"sequenceBits"`
}

type InfoResponse struct {
	EpochMs       int64    `json:"epochMs"`
	Layout        Layout   `json:"layout"`
	DataCenterId  int64    `json:"dataCenterId"`
	MachineId     int64    `json:"machineId"`
	MaxBatch      int32    `json:"maxBatch"`
	Formats       []string `json:"formats"`
	LastTimestamp int64    `json:"lastTimestamp"`
}
