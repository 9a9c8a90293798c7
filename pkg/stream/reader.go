package stream

import (
	"io"
)

// DataReader Read-only io.Reader view over a byte slice.  The data
// is never modified and the reader keeps no reference to any scratch
// buffer owned by a node loop.
type DataReader struct {
	data      []byte
	dataIndex int
}

func (r *DataReader) Read(buffer []byte) (int, error) {
	if r.dataIndex >= len(r.data) {
		return 0, io.EOF
	}

	count := copy(buffer, r.data[r.dataIndex:])
	r.dataIndex += count
	return count, nil
}

// Len Number of bytes remaining to be read
func (r *DataReader) Len() int {
	if r.dataIndex >= len(r.data) {
		return 0
	}
	return len(r.data) - r.dataIndex
}

func NewDataReader(data []byte) *DataReader {
	r := &DataReader{}
	r.data = data
	return r
}
