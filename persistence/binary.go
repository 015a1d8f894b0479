// Package persistence provides binary serialization for k-means tree
// indexes: a little-endian writer/reader pair, optional stream
// compression, and atomic file helpers.
package persistence

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unsafe"
)

// Writer writes index data in little-endian binary format.
type Writer struct {
	w         io.Writer
	byteOrder binary.ByteOrder
}

// NewWriter creates a new binary writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w:         w,
		byteOrder: binary.LittleEndian, // Native on x86/ARM
	}
}

// WriteHeader writes the file header, stamping magic and version.
func (bw *Writer) WriteHeader(header *FileHeader) error {
	header.Magic = MagicNumber
	header.Version = Version
	return binary.Write(bw.w, bw.byteOrder, header)
}

// WriteUint8 writes a single byte.
func (bw *Writer) WriteUint8(v uint8) error {
	return binary.Write(bw.w, bw.byteOrder, v)
}

// WriteInt32 writes an int32.
func (bw *Writer) WriteInt32(v int32) error {
	return binary.Write(bw.w, bw.byteOrder, v)
}

// WriteInt64 writes an int64.
func (bw *Writer) WriteInt64(v int64) error {
	return binary.Write(bw.w, bw.byteOrder, v)
}

// WriteFloat32 writes a float32.
func (bw *Writer) WriteFloat32(v float32) error {
	return binary.Write(bw.w, bw.byteOrder, v)
}

// WriteFloat32Slice writes a float32 slice as raw bytes (no length prefix).
// Safety: validates alignment before the unsafe conversion.
func (bw *Writer) WriteFloat32Slice(vec []float32) error {
	if len(vec) == 0 {
		return nil
	}

	if err := validateAlignment(unsafe.Pointer(&vec[0]), 4); err != nil {
		return err
	}

	byteSlice := unsafe.Slice((*byte)(unsafe.Pointer(&vec[0])), len(vec)*4)
	_, err := bw.w.Write(byteSlice)
	return err
}

// WriteUint64Slice writes a uint64 slice as raw bytes (no length prefix).
// Safety: validates alignment before the unsafe conversion.
func (bw *Writer) WriteUint64Slice(slice []uint64) error {
	if len(slice) == 0 {
		return nil
	}

	if err := validateAlignment(unsafe.Pointer(&slice[0]), 8); err != nil {
		return err
	}

	byteSlice := unsafe.Slice((*byte)(unsafe.Pointer(&slice[0])), len(slice)*8)
	_, err := bw.w.Write(byteSlice)
	return err
}

// Reader reads index data written by Writer.
type Reader struct {
	r         io.Reader
	byteOrder binary.ByteOrder
}

// NewReader creates a new binary reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		r:         r,
		byteOrder: binary.LittleEndian,
	}
}

// ReadHeader reads and validates the file header.
func (br *Reader) ReadHeader() (*FileHeader, error) {
	var header FileHeader
	if err := binary.Read(br.r, br.byteOrder, &header); err != nil {
		return nil, err
	}
	if header.Magic != MagicNumber {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, header.Magic)
	}
	if header.Version != Version {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidVersion, header.Version)
	}
	return &header, nil
}

// ReadUint8 reads a single byte.
func (br *Reader) ReadUint8() (uint8, error) {
	var v uint8
	err := binary.Read(br.r, br.byteOrder, &v)
	return v, err
}

// ReadInt32 reads an int32.
func (br *Reader) ReadInt32() (int32, error) {
	var v int32
	err := binary.Read(br.r, br.byteOrder, &v)
	return v, err
}

// ReadInt64 reads an int64.
func (br *Reader) ReadInt64() (int64, error) {
	var v int64
	err := binary.Read(br.r, br.byteOrder, &v)
	return v, err
}

// ReadFloat32 reads a float32.
func (br *Reader) ReadFloat32() (float32, error) {
	var v float32
	err := binary.Read(br.r, br.byteOrder, &v)
	return v, err
}

// ReadFloat32SliceInto reads len(vec) float32 values into vec.
func (br *Reader) ReadFloat32SliceInto(vec []float32) error {
	if len(vec) == 0 {
		return nil
	}
	byteSlice := unsafe.Slice((*byte)(unsafe.Pointer(&vec[0])), len(vec)*4)
	if _, err := io.ReadFull(br.r, byteSlice); err != nil {
		return err
	}
	return nil
}

// ReadUint64Slice reads a uint64 slice of the given length.
func (br *Reader) ReadUint64Slice(count int) ([]uint64, error) {
	if count == 0 {
		return nil, nil
	}
	slice := make([]uint64, count)
	byteSlice := unsafe.Slice((*byte)(unsafe.Pointer(&slice[0])), count*8)
	if _, err := io.ReadFull(br.r, byteSlice); err != nil {
		return nil, err
	}
	return slice, nil
}

func validateAlignment(p unsafe.Pointer, align uintptr) error {
	if uintptr(p)%align != 0 {
		return fmt.Errorf("slice not %d-byte aligned", align)
	}
	return nil
}

// SaveToFile is a helper to save data to a file atomically.
func SaveToFile(filename string, writeFunc func(io.Writer) error) error {
	dir := filepath.Dir(filename)
	base := filepath.Base(filename)

	// Write to a temp file in the same directory to ensure rename is atomic.
	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	// Match typical file permissions (best-effort).
	_ = tmp.Chmod(0644)

	buf := bufio.NewWriterSize(tmp, 256*1024)
	if err := writeFunc(buf); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	// Atomically replace target.
	if err := os.Rename(tmpName, filename); err != nil {
		return err
	}

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	// Success: prevent deferred cleanup from removing the final file.
	tmpName = ""
	return nil
}

// LoadFromFile is a helper to load data from a file.
func LoadFromFile(filename string, readFunc func(io.Reader) error) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := bufio.NewReaderSize(f, 256*1024)
	return readFunc(buf)
}
