package export

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/popuptinybar/tinybar/internal/cloudwriter"
	"github.com/popuptinybar/tinybar/internal/events"
	"github.com/popuptinybar/tinybar/internal/models"
	"github.com/popuptinybar/tinybar/internal/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
)

func sampleQuotes() []*models.Quote {
	june := time.Date(2026, 6, 6, 0, 0, 0, 0, time.UTC)
	return []*models.Quote{
		{
			ID: "qa", CustomerName: "Ana", CustomerEmail: "ana@example.com", CustomerPhone: "5512345678",
			EventType: pricing.EventWedding, EventDate: &june, GuestCount: 100,
			CocktailStyle: pricing.StyleSignature, ServiceLevel: pricing.ServiceBartender,
			Extras: []string{"fotografo", "cans_regalo"}, BasePrice: 15000, PerPersonPrice: 304,
			Subtotal: 28240, Tax: 4518, Total: 32758, Status: models.QuoteStatusPending,
			CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), UpdatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			ID: "qb", CustomerName: "Beto", EventType: pricing.EventPrivate, GuestCount: 20,
			CocktailStyle: pricing.StyleClassic, ServiceLevel: pricing.ServiceSelf, Total: 11000,
			Status: models.QuoteStatusConverted,
			CreatedAt: time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC), UpdatedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		},
		{
			ID: "qc", CustomerName: "Caro", EventType: pricing.EventCorporate, GuestCount: 60,
			CocktailStyle: pricing.StyleMocktail, ServiceLevel: pricing.ServiceFullExperience, Total: 40000,
			Status: models.QuoteStatusPending,
			CreatedAt: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC), UpdatedAt: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
		},
	}
}

func TestPartitionPath(t *testing.T) {
	s := Sink{Folder: "quotes"}
	at := time.Date(2026, 3, 1, 23, 30, 0, 0, time.FixedZone("CST", -6*3600))
	assert.Equal(t, "quotes/tinybar.quote_exported/year=2026/month=03/day=02/data.csv",
		s.PartitionPath("tinybar.quote_exported", at, "data.csv"))
}

func TestJSONOutput_PartitionsByDay(t *testing.T) {
	dir := t.TempDir()
	out := NewJSONOutput(Sink{BasePath: dir, Folder: "exports"})

	n, err := WriteQuotes(out, "quotes", "quote_exported", sampleQuotes(), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.NoError(t, out.Close())

	day1 := filepath.Join(dir, "exports", "quotes", "year=2026", "month=03", "day=01", "data.json")
	f, err := os.Open(day1)
	require.NoError(t, err)
	defer f.Close()

	var ids []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		ev, err := events.Decode(sc.Bytes())
		require.NoError(t, err)
		assert.Equal(t, "quote_exported", ev.Type)
		ids = append(ids, ev.Quote.ID)
	}
	assert.Equal(t, []string{"qa", "qb"}, ids)

	assert.FileExists(t, filepath.Join(dir, "exports", "quotes", "year=2026", "month=03", "day=02", "data.json"))
}

func TestCSVOutput_WritesHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	out := NewCSVOutput(Sink{BasePath: dir, Folder: "exports"})

	var ticks int
	_, err := WriteQuotes(out, "quotes", "quote_exported", sampleQuotes()[:2], func() { ticks++ })
	require.NoError(t, err)
	require.NoError(t, out.Close())
	assert.Equal(t, 2, ticks)

	raw, err := os.ReadFile(filepath.Join(dir, "exports", "quotes", "year=2026", "month=03", "day=01", "data.csv"))
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])

	first := rows[1]
	col := func(name string) string {
		for i, h := range csvHeader {
			if h == name {
				return first[i]
			}
		}
		t.Fatalf("no column %s", name)
		return ""
	}
	assert.Equal(t, "qa", col("quote_id"))
	assert.Equal(t, "2026-06-06", col("event_date"))
	assert.Equal(t, "fotografo;cans_regalo", col("extras"))
	assert.Equal(t, "32758", col("total"))
	assert.Equal(t, "2026-03-01T10:00:00Z", col("created_at"))
}

func TestParquetOutput_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	out := NewParquetOutput(Sink{BasePath: dir, Folder: "exports"})

	_, err := WriteQuotes(out, "quotes", "quote_exported", sampleQuotes(), nil)
	require.NoError(t, err)
	require.NoError(t, out.Close())

	path := filepath.Join(dir, "exports", "quotes", "year=2026", "month=03", "day=01", "data.parquet")
	fr, err := local.NewLocalFileReader(path)
	require.NoError(t, err)
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(QuoteRecord), 1)
	require.NoError(t, err)
	defer pr.ReadStop()

	require.Equal(t, int64(2), pr.GetNumRows())
	records := make([]QuoteRecord, 2)
	require.NoError(t, pr.Read(&records))
	assert.Equal(t, "qa", records[0].QuoteID)
	assert.Equal(t, int64(32758), records[0].Total)
	assert.Equal(t, int32(100), records[0].GuestCount)
	assert.Equal(t, "converted", records[1].Status)
}

type memoryObject struct {
	store *memoryStore
	key   string
	buf   bytes.Buffer
}

func (o *memoryObject) Write(p []byte) (int, error) { return o.buf.Write(p) }
func (o *memoryObject) Close() error {
	o.store.mu.Lock()
	defer o.store.mu.Unlock()
	o.store.objects[o.key] = o.buf.Bytes()
	return nil
}

type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memoryStore) NewWriter(bucket, objectPath string) (cloudwriter.CloudWriter, error) {
	return &memoryObject{store: m, key: bucket + "/" + objectPath}, nil
}

func TestOutputs_CloudSink(t *testing.T) {
	store := &memoryStore{objects: map[string][]byte{}}
	sink := Sink{Folder: "exports", Factory: store, Bucket: "tinybar"}

	for _, format := range []string{"json", "csv", "parquet"} {
		out, err := New(format, sink)
		require.NoError(t, err)
		_, err = WriteQuotes(out, "quotes", "quote_exported", sampleQuotes(), nil)
		require.NoError(t, err)
		require.NoError(t, out.Close())

		key := "tinybar/exports/quotes/year=2026/month=03/day=02/data." + format
		require.Contains(t, store.objects, key)
		assert.NotEmpty(t, store.objects[key])
	}
	assert.True(t, bytes.HasPrefix(store.objects["tinybar/exports/quotes/year=2026/month=03/day=02/data.parquet"], []byte("PAR1")))
	assert.True(t, strings.HasPrefix(string(store.objects["tinybar/exports/quotes/year=2026/month=03/day=01/data.csv"]), "event_id,"))

	_, err := New("avro", sink)
	assert.Error(t, err)
}

func TestOutputs_RejectGarbage(t *testing.T) {
	out := NewJSONOutput(Sink{BasePath: t.TempDir()})
	assert.Error(t, out.WriteMessage("quotes", []byte("{")))
}
