package kmtree

import (
	"bufio"
	"context"
	"io"
	"time"

	"github.com/hupe1980/kmtree/blobstore"
	"github.com/hupe1980/kmtree/kmeans"
	"github.com/hupe1980/kmtree/persistence"
	"github.com/hupe1980/kmtree/resource"
)

// SaveFile writes the index to a file, atomically via a temp file rename.
func (t *KMTree) SaveFile(ctx context.Context, filename string) error {
	start := time.Now()
	err := persistence.SaveToFile(filename, func(w io.Writer) error {
		return t.save(ctx, w)
	})
	t.opts.metrics.RecordSave(time.Since(start), err)
	t.opts.logger.LogSave(ctx, filename, err)
	return err
}

// LoadFile reads an index previously written by SaveFile. The tree must
// have been created over the same dataset.
func (t *KMTree) LoadFile(ctx context.Context, filename string) error {
	start := time.Now()
	err := persistence.LoadFromFile(filename, func(r io.Reader) error {
		return t.load(ctx, r)
	})
	t.opts.metrics.RecordLoad(time.Since(start), err)
	t.opts.logger.LogLoad(ctx, filename, err)
	return err
}

// SaveToStore writes the index to a blob store under name.
func (t *KMTree) SaveToStore(ctx context.Context, store blobstore.BlobStore, name string) error {
	start := time.Now()
	err := t.saveToStore(ctx, store, name)
	t.opts.metrics.RecordSave(time.Since(start), err)
	t.opts.logger.LogSave(ctx, name, err)
	return err
}

func (t *KMTree) saveToStore(ctx context.Context, store blobstore.BlobStore, name string) error {
	blob, err := store.Create(ctx, name)
	if err != nil {
		return err
	}

	buf := bufio.NewWriterSize(resource.LimitWriter(ctx, t.opts.resources, blob), 256*1024)
	if err := t.save(ctx, buf); err != nil {
		_ = blob.Close()
		return err
	}
	if err := buf.Flush(); err != nil {
		_ = blob.Close()
		return err
	}
	return blob.Close()
}

// LoadFromStore reads an index previously written by SaveToStore.
func (t *KMTree) LoadFromStore(ctx context.Context, store blobstore.BlobStore, name string) error {
	start := time.Now()
	err := t.loadFromStore(ctx, store, name)
	t.opts.metrics.RecordLoad(time.Since(start), err)
	t.opts.logger.LogLoad(ctx, name, err)
	return err
}

func (t *KMTree) loadFromStore(ctx context.Context, store blobstore.BlobStore, name string) error {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return err
	}
	defer blob.Close()

	r := bufio.NewReaderSize(resource.LimitReader(ctx, t.opts.resources, blobstore.NewBlobReader(ctx, blob)), 256*1024)
	return t.load(ctx, r)
}

func (t *KMTree) save(_ context.Context, w io.Writer) error {
	return t.idx.Save(w, func(o *kmeans.SaveOptions) {
		o.Compression = t.opts.compression
	})
}

func (t *KMTree) load(_ context.Context, r io.Reader) error {
	return t.idx.Load(r)
}
