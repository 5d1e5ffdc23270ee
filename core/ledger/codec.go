package ledger

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/anoideaopen/tipledger/core/address"
)

// Payload sizes of the fixed record layouts, discriminator excluded.
const (
	handleFieldSize = 4 + MaxHandleLength

	MasterSize = address.Length + 8 + 8 + 1
	UserSize   = handleFieldSize + address.Length + 8 + 8 + 1
	EscrowSize = handleFieldSize + 8 + 1
)

var (
	ErrHandleTooLong    = errors.New("twitter handle too long")
	ErrWrongAccountKind = errors.New("wrong account kind")
	ErrBadRecordSize    = errors.New("bad record size")
	ErrUnknownKind      = errors.New("unknown account kind")
)

// Marshal encodes record as discriminator followed by its fixed layout.
func Marshal(rec Record) ([]byte, error) {
	switch r := rec.(type) {
	case *MasterRegistry:
		w := newWriter(KindMaster, MasterSize)
		w.bytes(r.Authority.Bytes())
		w.uint64(r.TotalUsers)
		w.uint64(r.TotalEscrows)
		w.uint8(r.Nonce)
		return w.buf, nil
	case *UserAccount:
		w := newWriter(KindUser, UserSize)
		if err := w.handle(r.Handle); err != nil {
			return nil, err
		}
		w.bytes(r.Owner.Bytes())
		w.uint64(r.Balance)
		w.uint64(r.EscrowBalance)
		w.uint8(r.Nonce)
		return w.buf, nil
	case *EscrowAccount:
		w := newWriter(KindEscrow, EscrowSize)
		if err := w.handle(r.RecipientHandle); err != nil {
			return nil, err
		}
		w.uint64(r.Amount)
		w.uint8(r.Nonce)
		return w.buf, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownKind, rec)
	}
}

// Unmarshal decodes any record kind.
func Unmarshal(data []byte) (Record, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrBadRecordSize)
	}

	kind := Kind(data[0])
	r := &reader{buf: data[1:]}

	var want int
	switch kind {
	case KindMaster:
		want = MasterSize
	case KindUser:
		want = UserSize
	case KindEscrow:
		want = EscrowSize
	case KindUnknown:
		fallthrough
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	if len(r.buf) != want {
		return nil, fmt.Errorf("%w: %s record has %d bytes, expected %d", ErrBadRecordSize, kind, len(r.buf), want)
	}

	switch kind {
	case KindMaster:
		m := &MasterRegistry{}
		copy(m.Authority[:], r.next(address.Length))
		m.TotalUsers = r.uint64()
		m.TotalEscrows = r.uint64()
		m.Nonce = r.uint8()
		return m, nil
	case KindUser:
		u := &UserAccount{}
		handle, err := r.handle()
		if err != nil {
			return nil, err
		}
		u.Handle = handle
		copy(u.Owner[:], r.next(address.Length))
		u.Balance = r.uint64()
		u.EscrowBalance = r.uint64()
		u.Nonce = r.uint8()
		return u, nil
	default:
		e := &EscrowAccount{}
		handle, err := r.handle()
		if err != nil {
			return nil, err
		}
		e.RecipientHandle = handle
		e.Amount = r.uint64()
		e.Nonce = r.uint8()
		return e, nil
	}
}

type writer struct {
	buf []byte
}

func newWriter(kind Kind, size int) *writer {
	buf := make([]byte, 1, size+1)
	buf[0] = byte(kind)
	return &writer{buf: buf}
}

func (w *writer) bytes(b []byte) {
	w.buf = append(w.buf, b...)
}

func (w *writer) uint64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

func (w *writer) uint8(v uint8) {
	w.buf = append(w.buf, v)
}

// handle writes u32 length and the handle padded to MaxHandleLength.
func (w *writer) handle(h string) error {
	if len(h) > MaxHandleLength {
		return ErrHandleTooLong
	}
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(len(h)))
	padded := make([]byte, MaxHandleLength)
	copy(padded, h)
	w.buf = append(w.buf, padded...)
	return nil
}

type reader struct {
	buf []byte
}

func (r *reader) next(n int) []byte {
	out := r.buf[:n]
	r.buf = r.buf[n:]
	return out
}

func (r *reader) uint64() uint64 {
	return binary.LittleEndian.Uint64(r.next(8))
}

func (r *reader) uint8() uint8 {
	return r.next(1)[0]
}

func (r *reader) handle() (string, error) {
	n := binary.LittleEndian.Uint32(r.next(4))
	raw := r.next(MaxHandleLength)
	if n > MaxHandleLength {
		return "", ErrHandleTooLong
	}
	return string(raw[:n]), nil
}
