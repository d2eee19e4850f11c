package registry

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/devrep/reputation-registry/internal/domain"
)

// codecVersion leads every encoded record.
const codecVersion byte = 1

var errShortBuffer = errors.New("unexpected EOF")

type binWriter struct {
	buf bytes.Buffer
}

func newWriter() *binWriter { return &binWriter{} }

func (w *binWriter) bytes() []byte { return w.buf.Bytes() }

func (w *binWriter) writeBool(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

// writeUint64 writes big endian so stored blobs read the same on every backend.
func (w *binWriter) writeUint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *binWriter) writeVarUint(v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	w.buf.Write(tmp[:n])
}

// writeString prefixes the length as a varint.
func (w *binWriter) writeString(s string) {
	w.writeVarUint(uint64(len(s)))
	w.buf.WriteString(s)
}

type binReader struct {
	data []byte
	pos  int
}

func newReader(data []byte) *binReader {
	return &binReader{data: data}
}

func (r *binReader) readByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, errShortBuffer
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *binReader) readBool() (bool, error) {
	b, err := r.readByte()
	if err != nil {
		return false, err
	}
	return b == 1, nil
}

func (r *binReader) readUint64() (uint64, error) {
	if r.pos+8 > len(r.data) {
		return 0, errShortBuffer
	}
	v := binary.BigEndian.Uint64(r.data[r.pos : r.pos+8])
	r.pos += 8
	return v, nil
}

func (r *binReader) readVarUint() (uint64, error) {
	v, n := binary.Uvarint(r.data[r.pos:])
	if n <= 0 {
		return 0, errors.New("invalid varint")
	}
	r.pos += n
	return v, nil
}

func (r *binReader) readString() (string, error) {
	l, err := r.readVarUint()
	if err != nil {
		return "", err
	}
	if l > uint64(len(r.data)-r.pos) {
		return "", errShortBuffer
	}
	s := string(r.data[r.pos : r.pos+int(l)])
	r.pos += int(l)
	return s, nil
}

func (r *binReader) readVersion() error {
	v, err := r.readByte()
	if err != nil {
		return err
	}
	if v != codecVersion {
		return fmt.Errorf("unsupported record version %d", v)
	}
	return nil
}

// EncodeProfile serializes a profile into its stored form.
func EncodeProfile(p *domain.UserProfile) []byte {
	w := newWriter()
	w.buf.WriteByte(codecVersion)
	w.writeString(p.Username)
	w.writeUint64(p.Reputation)
	w.writeUint64(p.TotalContributions)
	w.writeUint64(p.JoinDate)
	w.writeBool(p.IsVerified)
	return w.bytes()
}

// DecodeProfile is the inverse of EncodeProfile.
func DecodeProfile(data []byte) (*domain.UserProfile, error) {
	r := newReader(data)
	if err := r.readVersion(); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	var (
		p   domain.UserProfile
		err error
	)
	if p.Username, err = r.readString(); err != nil {
		return nil, fmt.Errorf("decode profile username: %w", err)
	}
	if p.Reputation, err = r.readUint64(); err != nil {
		return nil, fmt.Errorf("decode profile reputation: %w", err)
	}
	if p.TotalContributions, err = r.readUint64(); err != nil {
		return nil, fmt.Errorf("decode profile contributions: %w", err)
	}
	if p.JoinDate, err = r.readUint64(); err != nil {
		return nil, fmt.Errorf("decode profile join date: %w", err)
	}
	if p.IsVerified, err = r.readBool(); err != nil {
		return nil, fmt.Errorf("decode profile verified flag: %w", err)
	}
	return &p, nil
}

// EncodeAchievement serializes an achievement into its stored form.
func EncodeAchievement(a *domain.Achievement) []byte {
	w := newWriter()
	w.buf.WriteByte(codecVersion)
	w.writeString(a.Title)
	w.writeString(a.Description)
	w.writeUint64(a.EarnedDate)
	w.writeUint64(a.Points)
	return w.bytes()
}

// DecodeAchievement is the inverse of EncodeAchievement.
func DecodeAchievement(data []byte) (*domain.Achievement, error) {
	r := newReader(data)
	if err := r.readVersion(); err != nil {
		return nil, fmt.Errorf("decode achievement: %w", err)
	}
	var (
		a   domain.Achievement
		err error
	)
	if a.Title, err = r.readString(); err != nil {
		return nil, fmt.Errorf("decode achievement title: %w", err)
	}
	if a.Description, err = r.readString(); err != nil {
		return nil, fmt.Errorf("decode achievement description: %w", err)
	}
	if a.EarnedDate, err = r.readUint64(); err != nil {
		return nil, fmt.Errorf("decode achievement earned date: %w", err)
	}
	if a.Points, err = r.readUint64(); err != nil {
		return nil, fmt.Errorf("decode achievement points: %w", err)
	}
	return &a, nil
}
