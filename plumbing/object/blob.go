package object

import "github.com/asheraflow/ashera/plumbing/hash"

// Blob is opaque file content; the store never interprets its bytes.
type Blob struct {
	Hash    hash.Hash
	Content []byte
}

// NewBlob wraps raw bytes; the caller stores it to learn its Hash.
func NewBlob(content []byte) *Blob {
	return &Blob{Content: content}
}

// Type implements Object.
func (b *Blob) Type() Type { return BlobObject }

// Encode returns the blob's content verbatim; a blob's wire form is its
// bytes, unframed (the "<kind> <size>\0" framing belongs to the store).
func (b *Blob) Encode() []byte {
	return b.Content
}

// DecodeBlob builds a Blob from stored bytes.
func DecodeBlob(h hash.Hash, content []byte) *Blob {
	return &Blob{Hash: h, Content: content}
}
