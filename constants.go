package sframe

// SYN is the synchronization marker that begins every frame on the wire.
const SYN byte = 0x02

// MaxDataLen is the payload capacity of a single packet.
const MaxDataLen = 128

// Frame layout, in order: SYN, LEN, DESTINATION, SOURCE, TYPE, payload
// bytes, CHECKSUM. LEN counts everything after itself, so it is always
// the payload length plus the four bytes for destination, source, type
// and checksum.
const (
	minBodyLen = 4
	maxBodyLen = MaxDataLen + minBodyLen
)

// MaxFrameLen is the size of the largest possible frame: the SYN and
// LEN bytes plus the largest body.
const MaxFrameLen = maxBodyLen + 2
