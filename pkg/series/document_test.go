package series_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/dmitrymomot/mailseries/pkg/delivery"
	"github.com/dmitrymomot/mailseries/pkg/facility"
	"github.com/dmitrymomot/mailseries/pkg/hook"
	"github.com/dmitrymomot/mailseries/pkg/mailer"
	"github.com/dmitrymomot/mailseries/pkg/series"
)

const sample = `{
	"zeta": "keeps its place",
	"global": {"event": "Spring Meetup", "nested": {"room": "A1"}},
	"hooks_once": [{"filename": "prepare.sh"}],
	"hooks": [{"filename": "each.sh", "function": "enrich"}],
	"individual": [
		{"name": "Alice", "email": "alice@example.com", "note": "<b>&</b>"},
		{"name": "Bob", "email": "bob@example.com", "_delivery": {"sent_utc": "2024-01-01T00:00:00Z"}}
	],
	"alpha": 1
}`

func TestParse_Shape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{"not json", `{`},
		{"root list", `[]`},
		{"missing individual", `{"global": {}}`},
		{"individual not a list", `{"individual": {}}`},
		{"record not an object", `{"individual": [1]}`},
		{"global not an object", `{"global": [], "individual": []}`},
		{"hooks not a list", `{"individual": [], "hooks": {}}`},
		{"hook without filename", `{"individual": [], "hooks_once": [{"function": "x"}]}`},
		{"bad delivery state", `{"individual": [{"_delivery": {"facilities": []}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := series.Parse([]byte(tt.data))
			require.ErrorIs(t, err, series.ErrConfiguration)
		})
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	doc, err := series.Parse([]byte(sample))
	require.NoError(t, err)

	require.Equal(t, 2, doc.Len())
	assert.Equal(t, []hook.Descriptor{{Filename: "prepare.sh"}}, doc.HooksOnce())
	assert.Equal(t, []hook.Descriptor{{Filename: "each.sh", Function: "enrich"}}, doc.Hooks())

	g := doc.Global()
	assert.Equal(t, "Spring Meetup", g["event"])
	g["event"] = "changed"
	g["nested"].(map[string]any)["room"] = "B2"
	fresh := doc.Global()
	assert.Equal(t, "Spring Meetup", fresh["event"])
	assert.Equal(t, "A1", fresh["nested"].(map[string]any)["room"])

	recs := doc.Records()
	assert.Equal(t, 1, recs[0].Number())
	assert.Equal(t, 2, recs[1].Number())

	vars, err := recs[1].Vars()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Bob", "email": "bob@example.com"}, vars)

	assert.True(t, recs[0].Ledger().IsEmpty())
	marked, ok := recs[1].Ledger().Marked()
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), marked)
}

func TestParse_NoGlobal(t *testing.T) {
	t.Parallel()

	doc, err := series.Parse([]byte(`{"individual": []}`))
	require.NoError(t, err)
	assert.Equal(t, 0, doc.Len())
	assert.Empty(t, doc.Global())
	assert.Nil(t, doc.Hooks())
}

const legacy = `{
	"individual": [
		{"name": "Alice", "_makomailer": {"smtp://mx.example.com": {"sent": "2024-03-01T10:00:00.123456+00:00"}}},
		{"name": "Bob", "_makomailer": {"sent_utc": "2024-03-01T10:00:00+00:00"}},
		{"name": "Carol", "_makomailer": {"smtp://mx.example.com": {"sent": "2024-03-01T10:00:00+00:00"}}, "_delivery": {}},
		{"name": "Dave", "_makomailer": {"smtp://mx.example.com": {"error": {"at": "2024-03-01T10:00:00+00:00", "reason": "refused"}}}}
	]
}`

func TestParse_LegacyState(t *testing.T) {
	t.Parallel()

	doc, err := series.Parse([]byte(legacy))
	require.NoError(t, err)
	recs := doc.Records()
	fids := []string{"smtp://mx.example.com"}

	assert.True(t, recs[0].Ledger().Delivered(fids))
	_, marked := recs[1].Ledger().Marked()
	assert.True(t, marked)
	assert.True(t, recs[2].Ledger().IsEmpty(), "current state wins over the legacy key")
	assert.False(t, recs[3].Ledger().Delivered(fids))
	st, ok := recs[3].Ledger().Status(fids[0])
	require.True(t, ok)
	failure, ok := st.LastError()
	require.True(t, ok)
	assert.Equal(t, "refused", failure.Reason)

	vars, err := recs[0].Vars()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Alice"}, vars)

	out, err := doc.Bytes()
	require.NoError(t, err)
	assert.True(t, gjson.GetBytes(out, "individual.0._delivery.facilities").Exists())
	kept := gjson.GetBytes(out, "individual.3._makomailer").Map()["smtp://mx.example.com"]
	assert.Equal(t, "refused", kept.Get("error.reason").String())

	reloaded, err := series.Parse(out)
	require.NoError(t, err)
	assert.True(t, reloaded.Records()[0].Ledger().Delivered(fids))
	_, marked = reloaded.Records()[1].Ledger().Marked()
	assert.True(t, marked)
}

func TestParse_BadLegacyState(t *testing.T) {
	t.Parallel()

	_, err := series.Parse([]byte(`{"individual": [{"_makomailer": {"smtp://a": {"sent": "soon"}}}]}`))
	require.ErrorIs(t, err, series.ErrConfiguration)
}

func deliverAll(t *testing.T, ledger *delivery.Ledger, at time.Time) {
	t.Helper()
	reg := facility.NewRegistry(
		[]facility.Facility{{URI: "smtp://mx.example.com"}},
		func(facility.Facility) (mailer.Sender, error) {
			return mailer.SenderFunc(func(context.Context, *mailer.Email) error { return nil }), nil
		},
	)
	tr := delivery.NewTracker(reg, delivery.WithClock(func() time.Time { return at }))
	require.True(t, tr.Deliver(context.Background(), &mailer.Email{}, ledger, false))
}

func TestSave(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "series.json")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	doc, err := series.Load(path)
	require.NoError(t, err)

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	deliverAll(t, doc.Records()[0].Ledger(), at)
	require.NoError(t, doc.Save(path))

	out, err := os.ReadFile(path)
	require.NoError(t, err)

	// Key order and untouched content survive.
	keys := []string{}
	gjson.ParseBytes(out).ForEach(func(k, _ gjson.Result) bool {
		keys = append(keys, k.String())
		return true
	})
	assert.Equal(t, []string{"zeta", "global", "hooks_once", "hooks", "individual", "alpha"}, keys)
	assert.Contains(t, string(out), "\n\t\"zeta\": \"keeps its place\",\n")
	assert.Contains(t, string(out), `"note": "<b>&</b>"`)
	assert.Equal(t, byte('\n'), out[len(out)-1])

	state := gjson.GetBytes(out, "individual.0._delivery.facilities").Map()
	assert.Equal(t, "2025-06-01T12:00:00Z", state["smtp://mx.example.com"].Get("sent").String())
	assert.Equal(t, "2024-01-01T00:00:00Z", gjson.GetBytes(out, "individual.1._delivery.sent_utc").String())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")

	// Reloading gives the saved state back.
	again, err := series.Load(path)
	require.NoError(t, err)
	assert.True(t, again.Records()[0].Ledger().Sent("smtp://mx.example.com"))
}

func TestSave_Unchanged(t *testing.T) {
	t.Parallel()

	doc, err := series.Parse([]byte(`{"individual":[{"a":1}],"global":{"b":[1,2]}}`))
	require.NoError(t, err)

	out, err := doc.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "{\n\t\"individual\": [\n\t\t{\n\t\t\t\"a\": 1\n\t\t}\n\t],\n\t\"global\": {\n\t\t\"b\": [\n\t\t\t1,\n\t\t\t2\n\t\t]\n\t}\n}\n", string(out))
}

func TestSave_MissingDirectory(t *testing.T) {
	t.Parallel()

	doc, err := series.Parse([]byte(`{"individual": []}`))
	require.NoError(t, err)

	err = doc.Save(filepath.Join(t.TempDir(), "missing", "series.json"))
	require.ErrorIs(t, err, series.ErrPersist)
}
