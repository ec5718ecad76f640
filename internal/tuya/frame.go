package tuya

import (
	"crypto/aes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

// Local protocol framing constants.
//
// Every message on the wire is a frame:
//
//	prefix(4) seq(4) cmd(4) length(4) body(n) crc(4) suffix(4)
//
// where length = len(body) + 8 (the CRC and suffix count towards it) and
// the CRC is IEEE CRC-32 over everything from the prefix up to and
// including the body.
const (
	// framePrefix marks the start of every frame.
	framePrefix uint32 = 0x000055AA

	// frameSuffix marks the end of every frame.
	frameSuffix uint32 = 0x0000AA55

	// frameHeaderLen is prefix + seq + cmd + length.
	frameHeaderLen = 16

	// frameTrailerLen is crc + suffix.
	frameTrailerLen = 8

	// maxFrameBody caps the accepted body size for received frames.
	// Anything larger indicates a desynchronised or hostile stream.
	maxFrameBody = 4096
)

// Command codes for the local protocol.
const (
	// CmdControl sets data points on the device.
	CmdControl uint32 = 0x07

	// CmdStatus is pushed by the device when data points change.
	CmdStatus uint32 = 0x08

	// CmdHeartbeat keeps the session alive.
	CmdHeartbeat uint32 = 0x09

	// CmdDPQuery requests the current data point values.
	CmdDPQuery uint32 = 0x0A
)

// DefaultProtocolVersion is the local protocol version spoken when the
// device configuration does not name one. 3.3 is what current bulb
// firmware ships with.
const DefaultProtocolVersion = "3.3"

// versionReservedLen is the number of reserved zero bytes that follow
// the ASCII version string in a CONTROL body header.
const versionReservedLen = 12

// Frame is a decoded local-protocol frame.
type Frame struct {
	// Seq is the sender-assigned sequence number.
	Seq uint32

	// Cmd is the command code (CmdControl, CmdStatus, ...).
	Cmd uint32

	// Body is the raw frame body. For device responses the first four
	// bytes are a big-endian return code (0 = accepted).
	Body []byte
}

// ReturnCode extracts the device return code from a response body.
// Returns 0 for bodies too short to carry one.
func (f Frame) ReturnCode() uint32 {
	if len(f.Body) < 4 {
		return 0
	}
	return binary.BigEndian.Uint32(f.Body[:4])
}

// EncodeFrame builds a complete wire frame around the given body.
func EncodeFrame(seq, cmd uint32, body []byte) []byte {
	buf := make([]byte, frameHeaderLen+len(body)+frameTrailerLen)

	binary.BigEndian.PutUint32(buf[0:4], framePrefix)
	binary.BigEndian.PutUint32(buf[4:8], seq)
	binary.BigEndian.PutUint32(buf[8:12], cmd)
	binary.BigEndian.PutUint32(buf[12:16], uint32(len(body)+frameTrailerLen))
	copy(buf[frameHeaderLen:], body)

	crcEnd := frameHeaderLen + len(body)
	binary.BigEndian.PutUint32(buf[crcEnd:crcEnd+4], crc32.ChecksumIEEE(buf[:crcEnd]))
	binary.BigEndian.PutUint32(buf[crcEnd+4:], frameSuffix)

	return buf
}

// ParseFrame decodes a complete frame from buf.
//
// The entire frame must be present; partial reads are the transport's
// responsibility. The prefix, suffix and CRC are all verified.
func ParseFrame(buf []byte) (Frame, error) {
	if len(buf) < frameHeaderLen+frameTrailerLen {
		return Frame{}, fmt.Errorf("%w: %d bytes is below minimum frame size", ErrInvalidFrame, len(buf))
	}
	if binary.BigEndian.Uint32(buf[0:4]) != framePrefix {
		return Frame{}, fmt.Errorf("%w: bad prefix", ErrInvalidFrame)
	}

	length := binary.BigEndian.Uint32(buf[12:16])
	if length < frameTrailerLen || length > maxFrameBody+frameTrailerLen {
		return Frame{}, fmt.Errorf("%w: implausible length field %d", ErrInvalidFrame, length)
	}
	total := frameHeaderLen + int(length)
	if len(buf) != total {
		return Frame{}, fmt.Errorf("%w: have %d bytes, length field implies %d", ErrInvalidFrame, len(buf), total)
	}

	crcEnd := total - frameTrailerLen
	wantCRC := binary.BigEndian.Uint32(buf[crcEnd : crcEnd+4])
	if got := crc32.ChecksumIEEE(buf[:crcEnd]); got != wantCRC {
		return Frame{}, fmt.Errorf("%w: got %08x, want %08x", ErrCRCMismatch, got, wantCRC)
	}
	if binary.BigEndian.Uint32(buf[total-4:]) != frameSuffix {
		return Frame{}, fmt.Errorf("%w: bad suffix", ErrInvalidFrame)
	}

	body := make([]byte, crcEnd-frameHeaderLen)
	copy(body, buf[frameHeaderLen:crcEnd])

	return Frame{
		Seq:  binary.BigEndian.Uint32(buf[4:8]),
		Cmd:  binary.BigEndian.Uint32(buf[8:12]),
		Body: body,
	}, nil
}

// buildControlBody encrypts a JSON payload and prepends the version
// header (ASCII version string plus reserved zeros), producing the body
// of a CONTROL frame.
func buildControlBody(version string, localKey, payload []byte) ([]byte, error) {
	encrypted, err := encryptECB(localKey, payload)
	if err != nil {
		return nil, err
	}

	headerLen := len(version) + versionReservedLen
	body := make([]byte, headerLen+len(encrypted))
	copy(body, version)
	copy(body[headerLen:], encrypted)
	return body, nil
}

// encryptECB encrypts plaintext with AES-128-ECB and PKCS#7 padding.
//
// ECB is what the device firmware speaks for protocol 3.3; each payload is
// a single short JSON document, keyed by the per-device local key.
func encryptECB(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	padded := padPKCS7(plaintext, aes.BlockSize)
	out := make([]byte, len(padded))
	for i := 0; i < len(padded); i += aes.BlockSize {
		block.Encrypt(out[i:i+aes.BlockSize], padded[i:i+aes.BlockSize])
	}
	return out, nil
}

// padPKCS7 pads data to a multiple of blockSize.
func padPKCS7(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}
