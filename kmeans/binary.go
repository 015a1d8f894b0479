package kmeans

import (
	"fmt"
	"io"

	"github.com/hupe1980/kmtree/persistence"
)

// SaveOptions contains configuration options for Save.
type SaveOptions struct {
	// Compression selects the stream compression for the payload after
	// the file header.
	Compression persistence.Compression
}

// Save writes the index to w: a file header, then (under the selected
// compression) the build parameters, the permutation, and the tree in
// pre-order. Leaf members are encoded as offsets into the permutation.
func (idx *Index) Save(w io.Writer, optFns ...func(o *SaveOptions)) error {
	if !idx.built {
		return ErrNotBuilt
	}

	opts := SaveOptions{Compression: persistence.CompressionNone}
	for _, fn := range optFns {
		fn(&opts)
	}

	bw := persistence.NewWriter(w)
	if err := bw.WriteHeader(&persistence.FileHeader{
		IndexType:   persistence.IndexTypeKMeansTree,
		Compression: uint8(opts.Compression),
		PointCount:  uint64(idx.data.Rows),
		Dimension:   uint32(idx.data.Cols),
	}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	cw, err := persistence.WrapWriter(w, opts.Compression)
	if err != nil {
		return err
	}
	pw := persistence.NewWriter(cw)

	if err := idx.savePayload(pw); err != nil {
		return err
	}

	return cw.Close()
}

func (idx *Index) savePayload(pw *persistence.Writer) error {
	if err := pw.WriteInt32(int32(idx.branching)); err != nil {
		return err
	}
	if err := pw.WriteInt64(int64(idx.maxIter)); err != nil {
		return err
	}
	if err := pw.WriteInt64(idx.memoryCounter.Load()); err != nil {
		return err
	}
	if err := pw.WriteFloat32(idx.cbIndex); err != nil {
		return err
	}

	perm := make([]uint64, len(idx.perm))
	for i, v := range idx.perm {
		perm[i] = uint64(v)
	}
	if err := pw.WriteUint64Slice(perm); err != nil {
		return err
	}

	return idx.saveTree(pw, idx.root)
}

func (idx *Index) saveTree(pw *persistence.Writer, n *node) error {
	if err := pw.WriteFloat32(n.radius); err != nil {
		return err
	}
	if err := pw.WriteFloat32(n.meanRadius); err != nil {
		return err
	}
	if err := pw.WriteFloat32(n.variance); err != nil {
		return err
	}
	if err := pw.WriteInt64(int64(n.size)); err != nil {
		return err
	}
	if err := pw.WriteInt32(int32(n.level)); err != nil {
		return err
	}

	var leaf uint8
	if n.leaf() {
		leaf = 1
	}
	if err := pw.WriteUint8(leaf); err != nil {
		return err
	}

	if err := pw.WriteFloat32Slice(n.pivot); err != nil {
		return err
	}

	if n.leaf() {
		return pw.WriteInt64(int64(n.offset))
	}

	for _, child := range n.children {
		if err := idx.saveTree(pw, child); err != nil {
			return err
		}
	}
	return nil
}

// Load reads an index previously written by Save. The index must have been
// created over the same dataset; the stored parameters replace the
// configured ones.
func (idx *Index) Load(r io.Reader) error {
	br := persistence.NewReader(r)
	header, err := br.ReadHeader()
	if err != nil {
		return err
	}
	if header.IndexType != persistence.IndexTypeKMeansTree {
		return fmt.Errorf("%w: got %d", persistence.ErrInvalidIndexType, header.IndexType)
	}
	if header.PointCount != uint64(idx.data.Rows) {
		return fmt.Errorf("%w: stored index has %d points, dataset has %d", ErrInvalidParameter, header.PointCount, idx.data.Rows)
	}
	if header.Dimension != uint32(idx.data.Cols) {
		return fmt.Errorf("%w: stored index has dimension %d, dataset has %d", ErrInvalidParameter, header.Dimension, idx.data.Cols)
	}

	cr, closeFn, err := persistence.WrapReader(r, persistence.Compression(header.Compression))
	if err != nil {
		return err
	}
	defer closeFn()
	pr := persistence.NewReader(cr)

	return idx.loadPayload(pr)
}

func (idx *Index) loadPayload(pr *persistence.Reader) error {
	branching, err := pr.ReadInt32()
	if err != nil {
		return err
	}
	maxIter, err := pr.ReadInt64()
	if err != nil {
		return err
	}
	memoryCounter, err := pr.ReadInt64()
	if err != nil {
		return err
	}
	cbIndex, err := pr.ReadFloat32()
	if err != nil {
		return err
	}

	perm, err := pr.ReadUint64Slice(idx.data.Rows)
	if err != nil {
		return err
	}

	idx.branching = int(branching)
	idx.maxIter = int(maxIter)
	idx.memoryCounter.Store(memoryCounter)
	idx.cbIndex = cbIndex

	idx.perm = make([]int, idx.data.Rows)
	for i, v := range perm {
		idx.perm[i] = int(v)
	}

	// Drop any previous tree and rebuild it from the stream.
	idx.nodePool.Reset()
	idx.childPool.Reset()

	root, err := idx.loadTree(pr)
	if err != nil {
		return err
	}

	idx.root = root
	idx.built = true
	return nil
}

func (idx *Index) loadTree(pr *persistence.Reader) (*node, error) {
	n := idx.nodePool.Alloc()

	var err error
	if n.radius, err = pr.ReadFloat32(); err != nil {
		return nil, err
	}
	if n.meanRadius, err = pr.ReadFloat32(); err != nil {
		return nil, err
	}
	if n.variance, err = pr.ReadFloat32(); err != nil {
		return nil, err
	}

	size, err := pr.ReadInt64()
	if err != nil {
		return nil, err
	}
	n.size = int(size)

	level, err := pr.ReadInt32()
	if err != nil {
		return nil, err
	}
	n.level = int(level)

	leaf, err := pr.ReadUint8()
	if err != nil {
		return nil, err
	}

	n.pivot = make([]float32, idx.data.Cols)
	if err := pr.ReadFloat32SliceInto(n.pivot); err != nil {
		return nil, err
	}

	if leaf == 1 {
		offset, err := pr.ReadInt64()
		if err != nil {
			return nil, err
		}
		if offset < 0 || int(offset)+n.size > len(idx.perm) {
			return nil, fmt.Errorf("%w: leaf offset %d with size %d out of range", ErrInvalidParameter, offset, n.size)
		}
		n.offset = int(offset)
		n.children = nil
		return n, nil
	}

	n.children = idx.childPool.AllocSlice(idx.branching)
	for i := range n.children {
		child, err := idx.loadTree(pr)
		if err != nil {
			return nil, err
		}
		n.children[i] = child
	}
	return n, nil
}
