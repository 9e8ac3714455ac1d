package series

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/dmitrymomot/mailseries/pkg/delivery"
	"github.com/dmitrymomot/mailseries/pkg/hook"
)

// Top-level keys of a series document.
const (
	KeyGlobal     = "global"
	KeyIndividual = "individual"
	KeyHooksOnce  = "hooks_once"
	KeyHooks      = "hooks"
)

// ReservedKey holds the delivery state inside each record.
const ReservedKey = "_delivery"

// LegacyKey holds delivery state written by older makomailer versions.
// It is read when ReservedKey is absent and never rewritten.
const LegacyKey = "_makomailer"

// Document is a loaded series: shared global data, the ordered recipient
// records and the hooks to run around rendering.
//
// The raw bytes are kept so that saving rewrites only the delivery state
// and leaves everything else, key order included, as it was.
type Document struct {
	raw       []byte
	global    map[string]any
	records   []*Record
	hooksOnce []hook.Descriptor
	hooks     []hook.Descriptor
}

// Load reads and validates a series document.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return Parse(data)
}

// Parse validates a series document held in memory.
func Parse(data []byte) (*Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrConfiguration)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: the root JSON value must be an object", ErrConfiguration)
	}

	ind := root.Get(KeyIndividual)
	if !ind.IsArray() {
		return nil, fmt.Errorf("%w: the root object must contain a list named %q", ErrConfiguration, KeyIndividual)
	}

	doc := &Document{raw: bytes.Clone(data)}

	if g := root.Get(KeyGlobal); g.Exists() && g.Type != gjson.Null {
		if !g.IsObject() {
			return nil, fmt.Errorf("%w: %q must be an object", ErrConfiguration, KeyGlobal)
		}
		if err := json.Unmarshal([]byte(g.Raw), &doc.global); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrConfiguration, KeyGlobal, err)
		}
	}

	var err, perr error
	ind.ForEach(func(_, value gjson.Result) bool {
		rec, err := newRecord(len(doc.records), value)
		if err != nil {
			perr = err
			return false
		}
		doc.records = append(doc.records, rec)
		return true
	})
	if perr != nil {
		return nil, perr
	}

	if doc.hooksOnce, err = parseHooks(root, KeyHooksOnce); err != nil {
		return nil, err
	}
	if doc.hooks, err = parseHooks(root, KeyHooks); err != nil {
		return nil, err
	}
	return doc, nil
}

func parseHooks(root gjson.Result, key string) ([]hook.Descriptor, error) {
	v := root.Get(key)
	if !v.Exists() || v.Type == gjson.Null {
		return nil, nil
	}
	if !v.IsArray() {
		return nil, fmt.Errorf("%w: %q must be a list", ErrConfiguration, key)
	}
	var descs []hook.Descriptor
	if err := json.Unmarshal([]byte(v.Raw), &descs); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfiguration, key, err)
	}
	for i, d := range descs {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s[%d]: %v", ErrConfiguration, key, i, err)
		}
	}
	return descs, nil
}

// Global returns a private copy of the shared global data.
// Hooks may modify the copy without touching the document.
func (d *Document) Global() map[string]any {
	return deepCopy(d.global)
}

// Records returns the recipient records in document order.
func (d *Document) Records() []*Record {
	return d.records
}

// Len returns the number of records.
func (d *Document) Len() int {
	return len(d.records)
}

// HooksOnce returns the hooks run a single time before the first record.
func (d *Document) HooksOnce() []hook.Descriptor {
	return d.hooksOnce
}

// Hooks returns the hooks run for every processed record.
func (d *Document) Hooks() []hook.Descriptor {
	return d.hooks
}

// Record is one recipient entry of the series.
// Its data is read-only; only the delivery ledger changes.
type Record struct {
	raw    []byte
	ledger delivery.Ledger
	index  int
	stored bool // reserved key present in raw
}

func newRecord(index int, value gjson.Result) (*Record, error) {
	if !value.IsObject() {
		return nil, fmt.Errorf("%w: record #%d is not an object", ErrConfiguration, index+1)
	}
	r := &Record{raw: []byte(value.Raw), index: index}
	if st := value.Get(ReservedKey); st.Exists() && st.Type != gjson.Null {
		if err := json.Unmarshal([]byte(st.Raw), &r.ledger); err != nil {
			return nil, fmt.Errorf("%w: record #%d: %v", ErrConfiguration, index+1, err)
		}
		r.stored = true
		return r, nil
	}
	if st := value.Get(LegacyKey); st.Exists() && st.Type != gjson.Null {
		ledger, err := delivery.ParseLegacy([]byte(st.Raw))
		if err != nil {
			return nil, fmt.Errorf("%w: record #%d: %v", ErrConfiguration, index+1, err)
		}
		r.ledger = ledger
	}
	return r, nil
}

// Number returns the 1-based position of the record in the series.
func (r *Record) Number() int {
	return r.index + 1
}

// Vars decodes the record's data for rendering, without the delivery state.
func (r *Record) Vars() (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(r.raw, &m); err != nil {
		return nil, fmt.Errorf("%w: record #%d: %v", ErrConfiguration, r.Number(), err)
	}
	delete(m, ReservedKey)
	delete(m, LegacyKey)
	return m, nil
}

// Ledger returns the record's delivery state.
func (r *Record) Ledger() *delivery.Ledger {
	return &r.ledger
}

func (r *Record) path() string {
	return KeyIndividual + "." + strconv.Itoa(r.index) + "." + ReservedKey
}

func deepCopy(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopy(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	default:
		return v
	}
}
