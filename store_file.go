package namematch

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"fmt"
	"os"
	"sort"
)

// File-backed store framing (spec.md §4.3: "Implementations choosing a
// custom on-disk format must document their magic bytes and record
// framing"). Layout:
//
//	magic   [4]byte   "NMX1"
//	kind    byte       0=NameIndex 1=NameIDIndex 2=EntityIDIndex
//	body    []byte      gob-encoded, sorted-by-key record slice
//	digest  [32]byte    sha256(magic || kind || body)
//
// The digest adapts the teacher's canonical-hash pattern
// (session.go's sha256.Sum256-based computeComponentCanonicalHash)
// from "hash identifies a session" to "hash verifies a store was
// written completely and matches on re-scan" (see DESIGN.md): a store
// whose trailing digest doesn't match its body fails closed rather
// than serving partial or corrupt data.
var fileMagic = [4]byte{'N', 'M', 'X', '1'}

const (
	kindNameIndex     byte = 0
	kindNameIDIndex   byte = 1
	kindEntityIDIndex byte = 2
)

type nameIndexRecord struct {
	Hash    uint64
	Entries []IndexEntry
}

func writeFramedStore(path string, kind byte, body []byte) error {
	var buf bytes.Buffer
	buf.Write(fileMagic[:])
	buf.WriteByte(kind)
	buf.Write(body)

	digest := sha256.Sum256(buf.Bytes())
	buf.Write(digest[:])

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return newErr(KindInternal, "writeFramedStore", fmt.Errorf("write %s: %w", path, err))
	}
	return nil
}

func readFramedStore(path string, wantKind byte) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, newErr(KindIndexMissing, "readFramedStore", fmt.Errorf("open %s: %w", path, err))
	}
	if len(raw) < 4+1+sha256.Size {
		return nil, newErr(KindIndexMissing, "readFramedStore", fmt.Errorf("%s: truncated store", path))
	}

	head := raw[:len(raw)-sha256.Size]
	wantDigest := raw[len(raw)-sha256.Size:]
	gotDigest := sha256.Sum256(head)
	if !bytes.Equal(gotDigest[:], wantDigest) {
		return nil, newErr(KindIndexMissing, "readFramedStore", fmt.Errorf("%s: digest mismatch, store is corrupt", path))
	}
	if !bytes.Equal(head[:4], fileMagic[:]) {
		return nil, newErr(KindIndexMissing, "readFramedStore", fmt.Errorf("%s: bad magic", path))
	}
	if head[4] != wantKind {
		return nil, newErr(KindIndexMissing, "readFramedStore", fmt.Errorf("%s: store kind mismatch", path))
	}
	return head[5:], nil
}

// saveNameIndex persists m to path in the framed format above, with
// keys sorted ascending so a re-scan is byte-for-byte deterministic
// (spec.md §4.3 contract c).
func saveNameIndex(m *memNameIndex, path string) error {
	var records []nameIndexRecord
	_ = m.Scan(func(hash uint64, entries []IndexEntry) bool {
		records = append(records, nameIndexRecord{Hash: hash, Entries: entries})
		return true
	})

	var body bytes.Buffer
	if err := gob.NewEncoder(&body).Encode(records); err != nil {
		return newErr(KindInternal, "saveNameIndex", err)
	}
	return writeFramedStore(path, kindNameIndex, body.Bytes())
}

// openNameIndex loads a framed NameIndex file into memory.
func openNameIndex(path string) (*memNameIndex, error) {
	body, err := readFramedStore(path, kindNameIndex)
	if err != nil {
		return nil, err
	}
	var records []nameIndexRecord
	if err := gob.NewDecoder(bytes.NewReader(body)).Decode(&records); err != nil {
		return nil, newErr(KindInternal, "openNameIndex", err)
	}
	m := newMemNameIndex()
	for _, r := range records {
		m.data[r.Hash] = r.Entries
	}
	return m, nil
}

// saveNameIDIndex persists m to path, sorted by name_id ascending.
func saveNameIDIndex(m *memNameIDIndex, path string) error {
	var records []NameIDRec
	_ = m.Scan(func(r NameIDRec) bool {
		records = append(records, r)
		return true
	})

	var body bytes.Buffer
	if err := gob.NewEncoder(&body).Encode(records); err != nil {
		return newErr(KindInternal, "saveNameIDIndex", err)
	}
	return writeFramedStore(path, kindNameIDIndex, body.Bytes())
}

func openNameIDIndex(path string) (*memNameIDIndex, error) {
	body, err := readFramedStore(path, kindNameIDIndex)
	if err != nil {
		return nil, err
	}
	var records []NameIDRec
	if err := gob.NewDecoder(bytes.NewReader(body)).Decode(&records); err != nil {
		return nil, newErr(KindInternal, "openNameIDIndex", err)
	}
	m := newMemNameIDIndex()
	for _, r := range records {
		m.data[r.NameID] = r
	}
	return m, nil
}

// saveEntityIDIndex persists m to path, sorted by (entity_id, name_id) ascending.
func saveEntityIDIndex(m *memEntityIDIndex, path string) error {
	var records []EntityIDRec
	_ = m.Scan(func(r EntityIDRec) bool {
		records = append(records, r)
		return true
	})
	sort.Slice(records, func(i, j int) bool {
		if records[i].EntityID != records[j].EntityID {
			return records[i].EntityID < records[j].EntityID
		}
		return records[i].NameID < records[j].NameID
	})

	var body bytes.Buffer
	if err := gob.NewEncoder(&body).Encode(records); err != nil {
		return newErr(KindInternal, "saveEntityIDIndex", err)
	}
	return writeFramedStore(path, kindEntityIDIndex, body.Bytes())
}

func openEntityIDIndex(path string) (*memEntityIDIndex, error) {
	body, err := readFramedStore(path, kindEntityIDIndex)
	if err != nil {
		return nil, err
	}
	var records []EntityIDRec
	if err := gob.NewDecoder(bytes.NewReader(body)).Decode(&records); err != nil {
		return nil, newErr(KindInternal, "openEntityIDIndex", err)
	}
	m := newMemEntityIDIndex()
	for _, r := range records {
		m.data[r.EntityID] = append(m.data[r.EntityID], r)
	}
	return m, nil
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
