package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/popuptinybar/tinybar/internal/events"
	"github.com/popuptinybar/tinybar/internal/models"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

// New returns the file output for format ("json", "csv" or "parquet").
func New(format string, sink Sink) (events.OutputDestination, error) {
	switch format {
	case "json":
		return NewJSONOutput(sink), nil
	case "csv":
		return NewCSVOutput(sink), nil
	case "parquet":
		return NewParquetOutput(sink), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// JSONOutput appends each message as one line of newline delimited JSON.
type JSONOutput struct {
	sink  Sink
	mu    sync.Mutex
	files map[string]io.WriteCloser
}

func NewJSONOutput(sink Sink) *JSONOutput {
	return &JSONOutput{sink: sink, files: make(map[string]io.WriteCloser)}
}

func (j *JSONOutput) WriteMessage(topic string, msg []byte) error {
	ev, err := events.Decode(msg)
	if err != nil {
		return err
	}
	key := j.sink.PartitionPath(topic, time.Unix(ev.Timestamp, 0), "data.json")

	j.mu.Lock()
	defer j.mu.Unlock()
	file, ok := j.files[key]
	if !ok {
		file, err = j.sink.Create(key)
		if err != nil {
			return err
		}
		j.files[key] = file
	}
	if _, err := file.Write(msg); err != nil {
		return err
	}
	_, err = file.Write([]byte("\n"))
	return err
}

func (j *JSONOutput) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	var errs []error
	for key, file := range j.files {
		if err := file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", key, err))
		}
	}
	j.files = make(map[string]io.WriteCloser)
	return errors.Join(errs...)
}

type csvFile struct {
	file   io.WriteCloser
	writer *csv.Writer
}

type CSVOutput struct {
	sink  Sink
	mu    sync.Mutex
	files map[string]*csvFile
}

func NewCSVOutput(sink Sink) *CSVOutput {
	return &CSVOutput{sink: sink, files: make(map[string]*csvFile)}
}

func (c *CSVOutput) WriteMessage(topic string, msg []byte) error {
	ev, err := events.Decode(msg)
	if err != nil {
		return err
	}
	key := c.sink.PartitionPath(topic, time.Unix(ev.Timestamp, 0), "data.csv")

	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.files[key]
	if !ok {
		file, err := c.sink.Create(key)
		if err != nil {
			return err
		}
		f = &csvFile{file: file, writer: csv.NewWriter(file)}
		c.files[key] = f
		if err := f.writer.Write(csvHeader); err != nil {
			return err
		}
	}
	if err := f.writer.Write(NewQuoteRecord(ev).csvRow()); err != nil {
		return err
	}
	f.writer.Flush()
	return f.writer.Error()
}

func (c *CSVOutput) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var errs []error
	for key, f := range c.files {
		f.writer.Flush()
		if err := f.writer.Error(); err != nil {
			errs = append(errs, fmt.Errorf("flush %s: %w", key, err))
		}
		if err := f.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", key, err))
		}
	}
	c.files = make(map[string]*csvFile)
	return errors.Join(errs...)
}

type parquetFile struct {
	file   source.ParquetFile
	writer *writer.ParquetWriter
}

type ParquetOutput struct {
	sink  Sink
	mu    sync.Mutex
	files map[string]*parquetFile
}

func NewParquetOutput(sink Sink) *ParquetOutput {
	return &ParquetOutput{sink: sink, files: make(map[string]*parquetFile)}
}

func (p *ParquetOutput) WriteMessage(topic string, msg []byte) error {
	ev, err := events.Decode(msg)
	if err != nil {
		return err
	}
	key := p.sink.PartitionPath(topic, time.Unix(ev.Timestamp, 0), "data.parquet")

	p.mu.Lock()
	defer p.mu.Unlock()
	f, ok := p.files[key]
	if !ok {
		f, err = p.createWriter(key)
		if err != nil {
			return fmt.Errorf("failed to create new writer: %w", err)
		}
		p.files[key] = f
	}
	if err := f.writer.Write(NewQuoteRecord(ev)); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

func (p *ParquetOutput) createWriter(key string) (*parquetFile, error) {
	fw, err := p.sink.CreateParquet(key)
	if err != nil {
		return nil, err
	}
	pw, err := writer.NewParquetWriter(fw, new(QuoteRecord), 4)
	if err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to create ParquetWriter: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	return &parquetFile{file: fw, writer: pw}, nil
}

func (p *ParquetOutput) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var errs []error
	for key, f := range p.files {
		if err := f.writer.WriteStop(); err != nil {
			errs = append(errs, fmt.Errorf("stop writer %s: %w", key, err))
		}
		if err := f.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", key, err))
		}
	}
	p.files = make(map[string]*parquetFile)
	return errors.Join(errs...)
}

// WriteQuotes emits every quote as a recordType event stamped with its
// creation time, calling progress after each one.
func WriteQuotes(dest events.OutputDestination, topic, recordType string, quotes []*models.Quote, progress func()) (int, error) {
	written := 0
	for _, q := range quotes {
		ev := events.NewEvent(recordType, q, q.CreatedAt)
		msg, err := ev.Marshal()
		if err != nil {
			return written, err
		}
		if err := dest.WriteMessage(topic, msg); err != nil {
			return written, fmt.Errorf("write quote %s: %w", q.ID, err)
		}
		written++
		if progress != nil {
			progress()
		}
	}
	return written, nil
}
