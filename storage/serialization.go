// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"
	"slices"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/folio/core"
)

// Artifact headers. A version bump invalidates every persisted artifact.
const (
	indexMagic    = "folio-index"
	dataMagic     = "folio-data"
	formatVersion = 1
)

// IndexArtifact is the vector half of a persisted index.
type IndexArtifact struct {
	Fingerprint core.ID
	Model       string
	Dimension   int
	Vectors     [][]float32
}

// DataArtifact is the document half of a persisted index.
type DataArtifact struct {
	Fingerprint core.ID
	Documents   []core.Document
}

// CacheEntry is a persisted dynamic cache entry. Model names the embedding
// model that produced Vector; entries written before it was recorded decode
// with an empty Model.
type CacheEntry struct {
	Query       string
	Vector      []float32
	Response    string
	AccessCount int64
	LastAccess  time.Time
	Model       string
}

// serializer is the method set shared by every mus-go serializer.
type serializer[T any] interface {
	Marshal(v T, bs []byte) (n int)
	Unmarshal(bs []byte) (v T, n int, err error)
	Size(v T) (size int)
	Skip(bs []byte) (n int, err error)
}

// sliceMUS encodes a length-prefixed slice.
type sliceMUS[T any] struct {
	elem serializer[T]
}

func (s sliceMUS[T]) Marshal(v []T, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, e := range v {
		n += s.elem.Marshal(e, bs[n:])
	}
	return
}

func (s sliceMUS[T]) Unmarshal(bs []byte) (v []T, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	if length < 0 || length > len(bs)-n {
		return nil, n, ErrTruncatedData
	}
	v = make([]T, length)
	var n1 int
	for i := range v {
		v[i], n1, err = s.elem.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return
}

func (s sliceMUS[T]) Size(v []T) (size int) {
	size = varint.Int.Size(len(v))
	for _, e := range v {
		size += s.elem.Size(e)
	}
	return
}

func (s sliceMUS[T]) Skip(bs []byte) (n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	for i := 0; i < length; i++ {
		n1, err = s.elem.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

var (
	vectorMUS  = sliceMUS[float32]{elem: raw.Float32}
	vectorsMUS = sliceMUS[[]float32]{elem: vectorMUS}
	stringsMUS = sliceMUS[string]{elem: ord.String}
	docsMUS    = sliceMUS[core.Document]{elem: documentMUS{}}
)

// stringMapMUS encodes a map as sorted key/value pairs so output is deterministic.
type stringMapMUS struct{}

func (stringMapMUS) pairs(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	flat := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		flat = append(flat, k, m[k])
	}
	return flat
}

func (s stringMapMUS) Marshal(v map[string]string, bs []byte) int {
	return stringsMUS.Marshal(s.pairs(v), bs)
}

func (stringMapMUS) Unmarshal(bs []byte) (map[string]string, int, error) {
	flat, n, err := stringsMUS.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if len(flat)%2 != 0 {
		return nil, n, ErrSerializationFailed
	}
	if len(flat) == 0 {
		return nil, n, nil
	}
	m := make(map[string]string, len(flat)/2)
	for i := 0; i < len(flat); i += 2 {
		m[flat[i]] = flat[i+1]
	}
	return m, n, nil
}

func (s stringMapMUS) Size(v map[string]string) int {
	return stringsMUS.Size(s.pairs(v))
}

func (stringMapMUS) Skip(bs []byte) (int, error) {
	return stringsMUS.Skip(bs)
}

// documentMUS encodes core.Document field by field.
type documentMUS struct{}

func (documentMUS) Marshal(v core.Document, bs []byte) (n int) {
	n = ord.String.Marshal(v.ID, bs)
	n += ord.String.Marshal(v.Text, bs[n:])
	n += ord.String.Marshal(v.Metadata.Category, bs[n:])
	n += stringsMUS.Marshal(v.Metadata.Keywords, bs[n:])
	n += ord.String.Marshal(v.Metadata.Priority, bs[n:])
	n += ord.String.Marshal(v.Metadata.Date, bs[n:])
	n += ord.String.Marshal(v.Metadata.Recency, bs[n:])
	n += stringMapMUS{}.Marshal(v.Metadata.Extra, bs[n:])
	return
}

func (documentMUS) Unmarshal(bs []byte) (v core.Document, n int, err error) {
	var n1 int
	steps := []func() error{
		func() (e error) { v.ID, n1, e = ord.String.Unmarshal(bs[n:]); return },
		func() (e error) { v.Text, n1, e = ord.String.Unmarshal(bs[n:]); return },
		func() (e error) { v.Metadata.Category, n1, e = ord.String.Unmarshal(bs[n:]); return },
		func() (e error) { v.Metadata.Keywords, n1, e = stringsMUS.Unmarshal(bs[n:]); return },
		func() (e error) { v.Metadata.Priority, n1, e = ord.String.Unmarshal(bs[n:]); return },
		func() (e error) { v.Metadata.Date, n1, e = ord.String.Unmarshal(bs[n:]); return },
		func() (e error) { v.Metadata.Recency, n1, e = ord.String.Unmarshal(bs[n:]); return },
		func() (e error) { v.Metadata.Extra, n1, e = stringMapMUS{}.Unmarshal(bs[n:]); return },
	}
	for _, step := range steps {
		err = step()
		n += n1
		if err != nil {
			return
		}
	}
	if len(v.Metadata.Keywords) == 0 {
		v.Metadata.Keywords = nil
	}
	return
}

func (documentMUS) Size(v core.Document) (size int) {
	size = ord.String.Size(v.ID)
	size += ord.String.Size(v.Text)
	size += ord.String.Size(v.Metadata.Category)
	size += stringsMUS.Size(v.Metadata.Keywords)
	size += ord.String.Size(v.Metadata.Priority)
	size += ord.String.Size(v.Metadata.Date)
	size += ord.String.Size(v.Metadata.Recency)
	size += stringMapMUS{}.Size(v.Metadata.Extra)
	return
}

func (d documentMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = d.Unmarshal(bs)
	return
}

// header precedes both artifacts.
type header struct {
	magic       string
	version     int
	fingerprint core.ID
}

func marshalHeader(h header, bs []byte) (n int) {
	n = ord.String.Marshal(h.magic, bs)
	n += varint.Int.Marshal(h.version, bs[n:])
	n += varint.Uint64.Marshal(uint64(h.fingerprint), bs[n:])
	return
}

func sizeHeader(h header) int {
	return ord.String.Size(h.magic) + varint.Int.Size(h.version) + varint.Uint64.Size(uint64(h.fingerprint))
}

func unmarshalHeader(bs []byte, wantMagic string) (h header, n int, err error) {
	var n1 int
	h.magic, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	if h.magic != wantMagic {
		return h, n, fmt.Errorf("%w: unexpected magic %q", ErrSerializationFailed, h.magic)
	}
	h.version, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if h.version != formatVersion {
		return h, n, fmt.Errorf("%w: unsupported version %d", ErrSerializationFailed, h.version)
	}
	var fp uint64
	fp, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	h.fingerprint = core.ID(fp)
	return
}

// MarshalIndexArtifact serializes the vector half of an index.
func MarshalIndexArtifact(a *IndexArtifact) []byte {
	h := header{magic: indexMagic, version: formatVersion, fingerprint: a.Fingerprint}
	size := sizeHeader(h) + ord.String.Size(a.Model) + varint.Int.Size(a.Dimension) + vectorsMUS.Size(a.Vectors)
	buf := make([]byte, size)
	n := marshalHeader(h, buf)
	n += ord.String.Marshal(a.Model, buf[n:])
	n += varint.Int.Marshal(a.Dimension, buf[n:])
	vectorsMUS.Marshal(a.Vectors, buf[n:])
	return buf
}

// UnmarshalIndexArtifact deserializes the vector half of an index.
func UnmarshalIndexArtifact(data []byte) (*IndexArtifact, error) {
	h, n, err := unmarshalHeader(data, indexMagic)
	if err != nil {
		return nil, err
	}
	a := &IndexArtifact{Fingerprint: h.fingerprint}
	var n1 int
	if a.Model, n1, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += n1
	if a.Dimension, n1, err = varint.Int.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += n1
	if a.Vectors, n1, err = vectorsMUS.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	if n+n1 != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrSerializationFailed, len(data)-n-n1)
	}
	return a, nil
}

// MarshalDataArtifact serializes the document half of an index.
func MarshalDataArtifact(a *DataArtifact) []byte {
	h := header{magic: dataMagic, version: formatVersion, fingerprint: a.Fingerprint}
	buf := make([]byte, sizeHeader(h)+docsMUS.Size(a.Documents))
	n := marshalHeader(h, buf)
	docsMUS.Marshal(a.Documents, buf[n:])
	return buf
}

// UnmarshalDataArtifact deserializes the document half of an index.
func UnmarshalDataArtifact(data []byte) (*DataArtifact, error) {
	h, n, err := unmarshalHeader(data, dataMagic)
	if err != nil {
		return nil, err
	}
	docs, n1, err := docsMUS.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	if n+n1 != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrSerializationFailed, len(data)-n-n1)
	}
	return &DataArtifact{Fingerprint: h.fingerprint, Documents: docs}, nil
}

// MarshalCacheEntry serializes a CacheEntry to bytes.
func MarshalCacheEntry(e *CacheEntry) []byte {
	micros := e.LastAccess.UnixMicro()
	size := ord.String.Size(e.Query) + vectorMUS.Size(e.Vector) + ord.String.Size(e.Response) +
		varint.Int64.Size(e.AccessCount) + varint.Int64.Size(micros) + ord.String.Size(e.Model)
	buf := make([]byte, size)
	n := ord.String.Marshal(e.Query, buf)
	n += vectorMUS.Marshal(e.Vector, buf[n:])
	n += ord.String.Marshal(e.Response, buf[n:])
	n += varint.Int64.Marshal(e.AccessCount, buf[n:])
	n += varint.Int64.Marshal(micros, buf[n:])
	ord.String.Marshal(e.Model, buf[n:])
	return buf
}

// UnmarshalCacheEntry deserializes a CacheEntry from bytes.
func UnmarshalCacheEntry(data []byte) (*CacheEntry, error) {
	e := &CacheEntry{}
	var (
		n, n1  int
		err    error
		micros int64
	)
	if e.Query, n1, err = ord.String.Unmarshal(data); err != nil {
		return nil, err
	}
	n += n1
	if e.Vector, n1, err = vectorMUS.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += n1
	if e.Response, n1, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += n1
	if e.AccessCount, n1, err = varint.Int64.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += n1
	if micros, n1, err = varint.Int64.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += n1
	e.LastAccess = time.UnixMicro(micros).UTC()
	if n < len(data) {
		if e.Model, _, err = ord.String.Unmarshal(data[n:]); err != nil {
			return nil, err
		}
	}
	return e, nil
}
