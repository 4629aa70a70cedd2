package objectstore

import (
	"context"

	"github.com/asheraflow/ashera/plumbing/hash"
	"golang.org/x/sync/errgroup"
)

// Blob is one file's content queued to be stored.
type Blob struct {
	Content []byte
}

// StoreBlobsParallel hashes and writes many blobs concurrently. No caller
// in this module uses it: `add` stores its blobs one at a time. Object
// writes are independent of each other and of the index/ref update that
// follows, so reordering them is invisible: §9 only forbids reordering
// writes *before* the ref update, which this never does since it returns
// only after every blob in the batch has been written.
func (s *Store) StoreBlobsParallel(ctx context.Context, blobs []Blob) ([]hash.Hash, error) {
	hashes := make([]hash.Hash, len(blobs))

	g, ctx := errgroup.WithContext(ctx)
	for i := range blobs {
		i := i
		g.Go(func() error {
			h, err := s.StoreBlob(blobs[i].Content)
			if err != nil {
				return err
			}
			hashes[i] = h
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return hashes, nil
}
