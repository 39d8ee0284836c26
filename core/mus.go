package core

import (
	"sort"
	"time"

	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the types that reach storage. Field order
// is part of the stored format: append new fields at the end only.

var (
	IDMUS         = idSer{}
	SnippetMUS    = snippetSer{}
	RecallItemMUS = recallItemSer{}
	CacheEntryMUS = cacheEntrySer{}

	_ mus.Serializer[ID]         = IDMUS
	_ mus.Serializer[Snippet]    = SnippetMUS
	_ mus.Serializer[RecallItem] = RecallItemMUS
	_ mus.Serializer[CacheEntry] = CacheEntryMUS
)

type idSer struct{}

func (idSer) Marshal(id ID, bs []byte) int { return varint.Uint64.Marshal(uint64(id), bs) }

func (idSer) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idSer) Size(id ID) int { return varint.Uint64.Size(uint64(id)) }

func (idSer) Skip(bs []byte) (int, error) { return varint.Uint64.Skip(bs) }

// timeSer stores times as UnixMicro. The zero time is stored as 0 so that
// "never used" survives a round trip.
type timeSer struct{}

var timeMUS = timeSer{}

func (timeSer) Marshal(t time.Time, bs []byte) int {
	var v int64
	if !t.IsZero() {
		v = t.UnixMicro()
	}
	return varint.Int64.Marshal(v, bs)
}

func (timeSer) Unmarshal(bs []byte) (time.Time, int, error) {
	v, n, err := varint.Int64.Unmarshal(bs)
	if err != nil || v == 0 {
		return time.Time{}, n, err
	}
	return time.UnixMicro(v).UTC(), n, nil
}

func (timeSer) Size(t time.Time) int {
	var v int64
	if !t.IsZero() {
		v = t.UnixMicro()
	}
	return varint.Int64.Size(v)
}

func (timeSer) Skip(bs []byte) (int, error) { return varint.Int64.Skip(bs) }

// stringMapSer stores map[string]string with sorted keys for deterministic
// output.
type stringMapSer struct{}

var stringMapMUS = stringMapSer{}

func (stringMapSer) Marshal(m map[string]string, bs []byte) int {
	n := varint.PositiveInt.Marshal(len(m), bs)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		n += ord.String.Marshal(k, bs[n:])
		n += ord.String.Marshal(m[k], bs[n:])
	}
	return n
}

func (stringMapSer) Unmarshal(bs []byte) (map[string]string, int, error) {
	length, n, err := varint.PositiveInt.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length == 0 {
		return nil, n, nil
	}
	m := make(map[string]string, length)
	for i := 0; i < length; i++ {
		k, kn, err := ord.String.Unmarshal(bs[n:])
		n += kn
		if err != nil {
			return nil, n, err
		}
		v, vn, err := ord.String.Unmarshal(bs[n:])
		n += vn
		if err != nil {
			return nil, n, err
		}
		m[k] = v
	}
	return m, n, nil
}

func (stringMapSer) Size(m map[string]string) int {
	size := varint.PositiveInt.Size(len(m))
	for k, v := range m {
		size += ord.String.Size(k) + ord.String.Size(v)
	}
	return size
}

func (s stringMapSer) Skip(bs []byte) (int, error) {
	_, n, err := s.Unmarshal(bs)
	return n, err
}

type snippetSer struct{}

func (snippetSer) Marshal(sn Snippet, bs []byte) int {
	n := IDMUS.Marshal(sn.Id, bs)
	n += ord.String.Marshal(sn.WorkspaceId, bs[n:])
	n += ord.String.Marshal(sn.Source, bs[n:])
	n += ord.String.Marshal(sn.Text, bs[n:])
	n += timeMUS.Marshal(sn.LastUsedAt, bs[n:])
	n += varint.Int.Marshal(sn.UseCount, bs[n:])
	n += raw.Float64.Marshal(sn.FeedbackWeight, bs[n:])
	n += stringMapMUS.Marshal(sn.Metadata, bs[n:])
	n += timeMUS.Marshal(sn.InsertedAt, bs[n:])
	n += timeMUS.Marshal(sn.UpdatedAt, bs[n:])
	return n
}

func (snippetSer) Unmarshal(bs []byte) (sn Snippet, n int, err error) {
	var m int
	if sn.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if sn.WorkspaceId, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return sn, n + m, err
	}
	n += m
	if sn.Source, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return sn, n + m, err
	}
	n += m
	if sn.Text, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return sn, n + m, err
	}
	n += m
	if sn.LastUsedAt, m, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return sn, n + m, err
	}
	n += m
	if sn.UseCount, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return sn, n + m, err
	}
	n += m
	if sn.FeedbackWeight, m, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
		return sn, n + m, err
	}
	n += m
	if sn.Metadata, m, err = stringMapMUS.Unmarshal(bs[n:]); err != nil {
		return sn, n + m, err
	}
	n += m
	if sn.InsertedAt, m, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return sn, n + m, err
	}
	n += m
	if sn.UpdatedAt, m, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return sn, n + m, err
	}
	return sn, n + m, nil
}

func (snippetSer) Size(sn Snippet) int {
	return IDMUS.Size(sn.Id) +
		ord.String.Size(sn.WorkspaceId) +
		ord.String.Size(sn.Source) +
		ord.String.Size(sn.Text) +
		timeMUS.Size(sn.LastUsedAt) +
		varint.Int.Size(sn.UseCount) +
		raw.Float64.Size(sn.FeedbackWeight) +
		stringMapMUS.Size(sn.Metadata) +
		timeMUS.Size(sn.InsertedAt) +
		timeMUS.Size(sn.UpdatedAt)
}

func (s snippetSer) Skip(bs []byte) (int, error) {
	_, n, err := s.Unmarshal(bs)
	return n, err
}

type recallItemSer struct{}

func (recallItemSer) Marshal(it RecallItem, bs []byte) int {
	n := IDMUS.Marshal(it.Id, bs)
	n += ord.String.Marshal(it.Source, bs[n:])
	n += ord.String.Marshal(it.Text, bs[n:])
	n += raw.Float64.Marshal(it.Score, bs[n:])
	n += stringMapMUS.Marshal(it.Metadata, bs[n:])
	return n
}

func (recallItemSer) Unmarshal(bs []byte) (it RecallItem, n int, err error) {
	var m int
	if it.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if it.Source, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return it, n + m, err
	}
	n += m
	if it.Text, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return it, n + m, err
	}
	n += m
	if it.Score, m, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
		return it, n + m, err
	}
	n += m
	if it.Metadata, m, err = stringMapMUS.Unmarshal(bs[n:]); err != nil {
		return it, n + m, err
	}
	return it, n + m, nil
}

func (recallItemSer) Size(it RecallItem) int {
	return IDMUS.Size(it.Id) +
		ord.String.Size(it.Source) +
		ord.String.Size(it.Text) +
		raw.Float64.Size(it.Score) +
		stringMapMUS.Size(it.Metadata)
}

func (s recallItemSer) Skip(bs []byte) (int, error) {
	_, n, err := s.Unmarshal(bs)
	return n, err
}

type cacheEntrySer struct{}

func (cacheEntrySer) Marshal(e CacheEntry, bs []byte) int {
	n := IDMUS.Marshal(e.Key, bs)
	n += ord.String.Marshal(e.WorkspaceId, bs[n:])
	n += ord.String.Marshal(e.Query, bs[n:])
	n += ord.String.Marshal(string(e.Strategy), bs[n:])
	n += varint.PositiveInt.Marshal(len(e.Items), bs[n:])
	for _, it := range e.Items {
		n += RecallItemMUS.Marshal(it, bs[n:])
	}
	n += timeMUS.Marshal(e.CreatedAt, bs[n:])
	n += timeMUS.Marshal(e.ExpireAt, bs[n:])
	n += varint.Int.Marshal(e.HitCount, bs[n:])
	return n
}

func (cacheEntrySer) Unmarshal(bs []byte) (e CacheEntry, n int, err error) {
	var m int
	if e.Key, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if e.WorkspaceId, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + m, err
	}
	n += m
	if e.Query, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + m, err
	}
	n += m
	var strategy string
	if strategy, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + m, err
	}
	e.Strategy = Strategy(strategy)
	n += m
	var count int
	if count, m, err = varint.PositiveInt.Unmarshal(bs[n:]); err != nil {
		return e, n + m, err
	}
	n += m
	if count > 0 {
		e.Items = make([]RecallItem, count)
		for i := 0; i < count; i++ {
			if e.Items[i], m, err = RecallItemMUS.Unmarshal(bs[n:]); err != nil {
				return e, n + m, err
			}
			n += m
		}
	}
	if e.CreatedAt, m, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return e, n + m, err
	}
	n += m
	if e.ExpireAt, m, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return e, n + m, err
	}
	n += m
	if e.HitCount, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return e, n + m, err
	}
	return e, n + m, nil
}

func (cacheEntrySer) Size(e CacheEntry) int {
	size := IDMUS.Size(e.Key) +
		ord.String.Size(e.WorkspaceId) +
		ord.String.Size(e.Query) +
		ord.String.Size(string(e.Strategy)) +
		varint.PositiveInt.Size(len(e.Items))
	for _, it := range e.Items {
		size += RecallItemMUS.Size(it)
	}
	return size +
		timeMUS.Size(e.CreatedAt) +
		timeMUS.Size(e.ExpireAt) +
		varint.Int.Size(e.HitCount)
}

func (s cacheEntrySer) Skip(bs []byte) (int, error) {
	_, n, err := s.Unmarshal(bs)
	return n, err
}
