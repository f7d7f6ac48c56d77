// Package pvs stores potentially-visible-set data: for each cluster of a
// world, a packed bit row of the clusters that may be visible from it.
package pvs

import (
	"bytes"
	"errors"
	"fmt"
)

// ErrCorrupt is returned when compressed visibility data runs out mid-row.
var ErrCorrupt = errors.New("corrupt visibility data")

// BytesPerCluster returns the row size for numClusters clusters.
func BytesPerCluster(numClusters int) int {
	return (numClusters + 7) >> 3
}

// Data is the decompressed visibility matrix of a world.
type Data struct {
	NumClusters     int
	BytesPerCluster int
	// Rows holds NumClusters rows of BytesPerCluster bytes each.
	Rows []byte
}

// New returns a matrix in which nothing is visible.
func New(numClusters int) *Data {
	bpc := BytesPerCluster(numClusters)
	return &Data{
		NumClusters:     numClusters,
		BytesPerCluster: bpc,
		Rows:            make([]byte, numClusters*bpc),
	}
}

// NewFull returns a matrix in which every cluster sees every cluster, as
// used by worlds compiled without vis.
func NewFull(numClusters int) *Data {
	d := New(numClusters)
	for i := range d.Rows {
		d.Rows[i] = 0xff
	}
	return d
}

// Row returns the row of cluster, or nil when cluster is out of range.
// The slice aliases the matrix.
func (d *Data) Row(cluster int) []byte {
	if d == nil || cluster < 0 || cluster >= d.NumClusters {
		return nil
	}
	off := cluster * d.BytesPerCluster
	return d.Rows[off : off+d.BytesPerCluster : off+d.BytesPerCluster]
}

// Set marks to as visible from from.
func (d *Data) Set(from, to int) {
	if row := d.Row(from); row != nil {
		SetBit(row, to)
	}
}

// Visible reports whether to is in the row of from.
func (d *Data) Visible(from, to int) bool {
	return Test(d.Row(from), to)
}

// Reflexive reports whether every cluster sees itself. When it does not,
// the first offending cluster is returned.
func (d *Data) Reflexive() (bool, int) {
	for c := 0; c < d.NumClusters; c++ {
		if !d.Visible(c, c) {
			return false, c
		}
	}
	return true, -1
}

// Test reports whether bit cluster is set in row. Out of range is false.
func Test(row []byte, cluster int) bool {
	if cluster < 0 || cluster>>3 >= len(row) {
		return false
	}
	return row[cluster>>3]&(1<<(cluster&7)) != 0
}

// SetBit sets bit cluster in row. Out of range is ignored.
func SetBit(row []byte, cluster int) {
	if cluster < 0 || cluster>>3 >= len(row) {
		return
	}
	row[cluster>>3] |= 1 << (cluster & 7)
}

// Or merges src into dst over their common length.
func Or(dst, src []byte) {
	n := min(len(dst), len(src))
	for i := 0; i < n; i++ {
		dst[i] |= src[i]
	}
}

// Clear zeroes row.
func Clear(row []byte) {
	clear(row)
}

// Decompress expands one run-length encoded row: a zero byte is followed
// by a count of zero bytes to emit, any other byte is copied. An empty
// input means everything is visible. On truncated input the partial row is
// returned along with ErrCorrupt.
func Decompress(in []byte, numClusters int) ([]byte, error) {
	bpc := BytesPerCluster(numClusters)
	if len(in) == 0 {
		return bytes.Repeat([]byte{0xff}, bpc), nil
	}

	out := make([]byte, 0, bpc)
	for i := 0; i < len(in) && len(out) < bpc; i++ {
		if in[i] != 0 {
			out = append(out, in[i])
			continue
		}
		i++
		if i >= len(in) {
			return pad(out, bpc), fmt.Errorf("%w: zero run without a count at byte %d", ErrCorrupt, i-1)
		}
		for c := int(in[i]); c > 0 && len(out) < bpc; c-- {
			out = append(out, 0)
		}
	}
	return pad(out, bpc), nil
}

// DecompressAll builds a matrix from per-cluster compressed rows. A nil
// entry means the cluster sees everything.
func DecompressAll(rows [][]byte) (*Data, error) {
	d := New(len(rows))
	for c, in := range rows {
		row, err := Decompress(in, d.NumClusters)
		copy(d.Row(c), row)
		if err != nil {
			return d, fmt.Errorf("cluster %d: %w", c, err)
		}
	}
	return d, nil
}

func pad(row []byte, n int) []byte {
	for len(row) < n {
		row = append(row, 0)
	}
	return row
}
