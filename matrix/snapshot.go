package matrix

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"math"
	"time"

	"github.com/hupe1980/geodist"
	"github.com/hupe1980/geodist/blobstore"
	"github.com/hupe1980/geodist/codec"
	"github.com/hupe1980/geodist/resource"
)

// Snapshot layout: magic, header length, codec-encoded header, then a
// single compressed block holding the points followed by the values,
// both as little-endian float64.
var snapshotMagic = [4]byte{'G', 'D', 'M', '1'}

const snapshotVersion = 1

// ErrChecksumMismatch is returned when a snapshot payload fails its
// integrity check.
var ErrChecksumMismatch = errors.New("snapshot checksum mismatch")

type snapshotHeader struct {
	Version     int       `json:"version"`
	Codec       string    `json:"codec"`
	Formula     string    `json:"formula"`
	Count       int       `json:"count"`
	Compression uint8     `json:"compression"`
	Checksum    uint32    `json:"checksum"`
	CreatedAt   time.Time `json:"created_at"`
}

type snapshotOptions struct {
	compression CompressionType
	codec       codec.Codec
	controller  *resource.Controller
}

// SnapshotOption configures Write and Load.
type SnapshotOption func(*snapshotOptions)

// WithCompression sets the payload compression. Defaults to ZSTD.
func WithCompression(ct CompressionType) SnapshotOption {
	return func(o *snapshotOptions) {
		o.compression = ct
	}
}

// WithCodec sets the header codec. Defaults to codec.Default.
func WithCodec(c codec.Codec) SnapshotOption {
	return func(o *snapshotOptions) {
		o.codec = c
	}
}

// WithIOController attaches a resource controller. Snapshot reads and
// writes acquire IO budget for the transferred bytes.
func WithIOController(rc *resource.Controller) SnapshotOption {
	return func(o *snapshotOptions) {
		o.controller = rc
	}
}

func applySnapshotOptions(optFns []SnapshotOption) snapshotOptions {
	opts := snapshotOptions{
		compression: CompressionZSTD,
		codec:       codec.Default,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return opts
}

// Snapshot serializes the matrix into a self-describing blob.
func (m *Matrix) Snapshot(optFns ...SnapshotOption) ([]byte, error) {
	opts := applySnapshotOptions(optFns)

	n := len(m.points)

	payload := make([]byte, (2*n+n*n)*8)
	off := 0

	for _, p := range m.points {
		binary.LittleEndian.PutUint64(payload[off:], math.Float64bits(p.Lat))
		binary.LittleEndian.PutUint64(payload[off+8:], math.Float64bits(p.Lng))
		off += 16
	}

	for _, v := range m.values {
		binary.LittleEndian.PutUint64(payload[off:], math.Float64bits(v))
		off += 8
	}

	block, err := compressBlock(payload, opts.compression)
	if err != nil {
		return nil, fmt.Errorf("compress payload: %w", err)
	}

	header, err := opts.codec.Marshal(snapshotHeader{
		Version:     snapshotVersion,
		Codec:       opts.codec.Name(),
		Formula:     m.formula.String(),
		Count:       n,
		Compression: uint8(opts.compression),
		Checksum:    crc32.ChecksumIEEE(payload),
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal header: %w", err)
	}

	blob := make([]byte, 0, len(snapshotMagic)+4+len(header)+len(block))
	blob = append(blob, snapshotMagic[:]...)
	blob = binary.LittleEndian.AppendUint32(blob, uint32(len(header)))
	blob = append(blob, header...)
	blob = append(blob, block...)

	return blob, nil
}

// FromSnapshot reconstructs a matrix from a snapshot blob.
func FromSnapshot(data []byte) (*Matrix, error) {
	if len(data) < len(snapshotMagic)+4 {
		return nil, errors.New("snapshot too small")
	}

	if [4]byte(data[:4]) != snapshotMagic {
		return nil, errors.New("bad snapshot magic")
	}

	headerLen := binary.LittleEndian.Uint32(data[4:])
	if uint32(len(data)) < 8+headerLen {
		return nil, errors.New("snapshot header truncated")
	}

	// Both supported codecs emit standard JSON, so the header can
	// always be decoded with the default regardless of which codec
	// wrote it.
	var header snapshotHeader
	if err := codec.Default.Unmarshal(data[8:8+headerLen], &header); err != nil {
		return nil, fmt.Errorf("unmarshal header: %w", err)
	}

	if header.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", header.Version)
	}

	formula, err := geodist.ParseFormula(header.Formula)
	if err != nil {
		return nil, err
	}

	payload, err := decompressBlock(data[8+headerLen:], CompressionType(header.Compression))
	if err != nil {
		return nil, fmt.Errorf("decompress payload: %w", err)
	}

	if crc32.ChecksumIEEE(payload) != header.Checksum {
		return nil, ErrChecksumMismatch
	}

	n := header.Count
	if len(payload) != (2*n+n*n)*8 {
		return nil, errors.New("snapshot payload size mismatch")
	}

	points := make([]geodist.Point, n)
	off := 0

	for i := range points {
		points[i].Lat = math.Float64frombits(binary.LittleEndian.Uint64(payload[off:]))
		points[i].Lng = math.Float64frombits(binary.LittleEndian.Uint64(payload[off+8:]))
		off += 16
	}

	values := make([]float64, n*n)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(payload[off:]))
		off += 8
	}

	return &Matrix{
		points:  points,
		formula: formula,
		values:  values,
	}, nil
}

// Write snapshots the matrix and stores it under name.
func Write(ctx context.Context, store blobstore.Store, name string, m *Matrix, optFns ...SnapshotOption) error {
	opts := applySnapshotOptions(optFns)

	blob, err := m.Snapshot(optFns...)
	if err != nil {
		return err
	}

	if err := opts.controller.AcquireIO(ctx, len(blob)); err != nil {
		return err
	}

	return store.Put(ctx, name, blob)
}

// Load fetches the snapshot stored under name and reconstructs the
// matrix.
func Load(ctx context.Context, store blobstore.Store, name string, optFns ...SnapshotOption) (*Matrix, error) {
	opts := applySnapshotOptions(optFns)

	blob, err := store.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := opts.controller.AcquireIO(ctx, len(blob)); err != nil {
		return nil, err
	}

	return FromSnapshot(blob)
}
