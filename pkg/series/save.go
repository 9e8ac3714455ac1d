package series

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tidwall/sjson"
)

// Bytes renders the document with the current delivery state:
// tab-indented with a trailing newline, key order and all other
// content unchanged.
func (d *Document) Bytes() ([]byte, error) {
	out := d.raw
	for _, r := range d.records {
		if !r.stored && r.ledger.IsEmpty() {
			continue
		}
		state, err := marshalLedger(r)
		if err != nil {
			return nil, err
		}
		if out, err = sjson.SetRawBytes(out, r.path(), state); err != nil {
			return nil, fmt.Errorf("%w: record #%d: %v", ErrPersist, r.Number(), err)
		}
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, out, "", "\t"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersist, err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func marshalLedger(r *Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r.Ledger()); err != nil {
		return nil, fmt.Errorf("%w: record #%d: %v", ErrPersist, r.Number(), err)
	}
	return bytes.TrimSpace(buf.Bytes()), nil
}

// Save writes the document to path atomically: the content goes to a
// temporary file in the same directory, is synced and then renamed over
// the target, so a crash leaves either the old or the new document.
func (d *Document) Save(path string) error {
	data, err := d.Bytes()
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

func writeAtomic(path string, data []byte) (err error) {
	perm := fs.FileMode(0o644)
	if fi, serr := os.Stat(path); serr == nil {
		perm = fi.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err = os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}
