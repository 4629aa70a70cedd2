package index

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/asheraflow/ashera/plumbing/filemode"
	"github.com/asheraflow/ashera/plumbing/hash"
)

var (
	signature = [4]byte{'D', 'I', 'R', 'C'}

	// ErrMalformedSignature is returned when the header magic or
	// version don't match what this decoder supports.
	ErrMalformedSignature = fmt.Errorf("index: malformed signature")
	// ErrInvalidChecksum is returned when the trailing SHA-1 doesn't
	// match the preceding bytes.
	ErrInvalidChecksum = fmt.Errorf("index: invalid checksum")
)

const (
	version = 2

	// entryHeaderSize is the fixed portion of an on-disk entry: ten
	// 4-byte stat words, a 20-byte oid, and a 2-byte flags word.
	entryHeaderSize = 10*4 + hash.Size + 2

	stageMask = 0x3000
	stageShift = 12
	nameMask  = 0x0fff
)

// Encode writes idx to w in the on-disk DIRC v2 format, including the
// trailing checksum.
func Encode(w io.Writer, idx *Index) error {
	h := sha1.New()
	mw := io.MultiWriter(w, h)
	bw := bufio.NewWriter(mw)

	if _, err := bw.Write(signature[:]); err != nil {
		return err
	}
	if err := writeUint32(bw, version); err != nil {
		return err
	}

	entries := idx.Entries()
	if err := writeUint32(bw, uint32(len(entries))); err != nil {
		return err
	}

	for _, e := range entries {
		if err := writeEntry(bw, e); err != nil {
			return err
		}
	}

	if err := bw.Flush(); err != nil {
		return err
	}

	_, err := w.Write(h.Sum(nil))
	return err
}

func writeEntry(w io.Writer, e *Entry) error {
	csec, cnsec := splitTime(e.CreatedAt)
	msec, mnsec := splitTime(e.ModifiedAt)

	words := []uint32{
		csec, cnsec,
		msec, mnsec,
		e.Dev,
		e.Inode,
		uint32(e.Mode),
		e.UID,
		e.GID,
		e.Size,
	}
	for _, v := range words {
		if err := writeUint32(w, v); err != nil {
			return err
		}
	}

	if _, err := w.Write(e.Hash[:]); err != nil {
		return err
	}

	nameLen := len(e.Name)
	if nameLen > nameMask {
		nameLen = nameMask
	}
	flags := uint16(e.Stage)<<stageShift | uint16(nameLen)
	if err := writeUint16(w, flags); err != nil {
		return err
	}

	if _, err := io.WriteString(w, e.Name); err != nil {
		return err
	}

	written := entryHeaderSize + len(e.Name)
	pad := 8 - written%8
	if pad == 0 {
		pad = 8
	}
	_, err := w.Write(make([]byte, pad))
	return err
}

// Decode reads a DIRC v2 index from r, verifying the trailing checksum.
func Decode(r io.Reader) (*Index, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(raw) < 12+hash.Size {
		return nil, ErrMalformedSignature
	}

	body, sum := raw[:len(raw)-hash.Size], raw[len(raw)-hash.Size:]
	computed := sha1.Sum(body)
	if !bytes.Equal(computed[:], sum) {
		return nil, ErrInvalidChecksum
	}

	br := bytes.NewReader(body)
	var sig [4]byte
	if _, err := io.ReadFull(br, sig[:]); err != nil || sig != signature {
		return nil, ErrMalformedSignature
	}

	ver, err := readUint32(br)
	if err != nil {
		return nil, err
	}
	if ver != version {
		return nil, fmt.Errorf("%w: version %d", ErrMalformedSignature, ver)
	}

	count, err := readUint32(br)
	if err != nil {
		return nil, err
	}

	idx := New()
	for n := uint32(0); n < count; n++ {
		e, err := readEntry(br)
		if err != nil {
			return nil, err
		}
		idx.entries = append(idx.entries, e)
	}

	return idx, nil
}

func readEntry(r *bytes.Reader) (*Entry, error) {
	words := make([]uint32, 10)
	for i := range words {
		v, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		words[i] = v
	}

	var oid hash.Hash
	if _, err := io.ReadFull(r, oid[:]); err != nil {
		return nil, err
	}

	flags, err := readUint16(r)
	if err != nil {
		return nil, err
	}
	stage := Stage((flags & stageMask) >> stageShift)
	nameLen := int(flags & nameMask)

	nameBuf := make([]byte, 0, nameLen)
	startPos := r.Size() - int64(r.Len())
	for {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if b == 0 {
			break
		}
		nameBuf = append(nameBuf, b)
	}
	consumedName := r.Size() - int64(r.Len()) - startPos
	actualNameLen := int(consumedName) - 1 // consumedName includes the NUL terminator

	beforePad := entryHeaderSize + actualNameLen
	padTotal := 8 - beforePad%8 // total NUL bytes the encoder wrote, including the terminator
	skip := padTotal - 1        // the terminator is already consumed above
	if skip > 0 {
		if _, err := r.Seek(int64(skip), io.SeekCurrent); err != nil {
			return nil, err
		}
	}

	e := &Entry{
		Name:       string(nameBuf),
		Mode:       filemode.FileMode(words[6]),
		Hash:       oid,
		Stage:      stage,
		Dev:        words[4],
		Inode:      words[5],
		UID:        words[7],
		GID:        words[8],
		Size:       words[9],
	}
	if words[0] != 0 || words[1] != 0 {
		e.CreatedAt = time.Unix(int64(words[0]), int64(words[1]))
	}
	if words[2] != 0 || words[3] != 0 {
		e.ModifiedAt = time.Unix(int64(words[2]), int64(words[3]))
	}

	return e, nil
}

func splitTime(t time.Time) (sec, nsec uint32) {
	if t.IsZero() {
		return 0, 0
	}
	return uint32(t.Unix()), uint32(t.Nanosecond())
}

func writeUint32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func writeUint16(w io.Writer, v uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func readUint16(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}
