package protocol

import (
	"encoding/binary"
)

// Packet is a single encoded protocol message. All integers are 4-byte
// big-endian and text is length-prefixed single-byte characters.
type Packet []byte

// PutUint writes a uint32 to the packet buffer.
func (p *Packet) PutUint(v uint32) {
	*p = binary.BigEndian.AppendUint32(*p, v)
}

func (p *Packet) PutBool(v bool) {
	if v {
		p.PutUint(1)
	} else {
		p.PutUint(0)
	}
}

func (p *Packet) PutByte(v byte) {
	*p = append(*p, v)
}

// PutRaw writes bytes without a length prefix. Used for headers, where the
// lengths of both strings come first.
func (p *Packet) PutRaw(v string) {
	*p = append(*p, v...)
}

// PutString writes a length-prefixed string.
func (p *Packet) PutString(v string) {
	p.PutUint(uint32(len(v)))
	p.PutRaw(v)
}

func (p *Packet) GetByte() (byte, bool) {
	if len(*p) < 1 {
		return 0, false
	}
	b := (*p)[0]
	(*p) = (*p)[1:]
	return b, true
}

func (p *Packet) GetUint() (uint32, bool) {
	if len(*p) < 4 {
		return 0, false
	}
	v := binary.BigEndian.Uint32(*p)
	(*p) = (*p)[4:]
	return v, true
}

// GetBytes never reads past the end of the buffer.
func (p *Packet) GetBytes(n int) ([]byte, bool) {
	if n < 0 || n > len(*p) {
		return nil, false
	}
	b := make([]byte, n)
	copy(b, (*p)[:n])
	(*p) = (*p)[n:]
	return b, true
}

func (p *Packet) GetString() (string, bool) {
	length, ok := p.GetUint()
	if !ok || uint64(length) > uint64(len(*p)) {
		return "", false
	}
	value, ok := p.GetBytes(int(length))
	return string(value), ok
}
