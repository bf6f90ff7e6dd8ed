package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/popuptinybar/tinybar/internal/cloudwriter"
	"github.com/popuptinybar/tinybar/internal/models"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
)

// Sink decides where partition files live. A nil Factory means local disk
// under BasePath; otherwise objects go to Bucket.
type Sink struct {
	BasePath string
	Folder   string
	Factory  cloudwriter.CloudWriterFactory
	Bucket   string
}

func NewSink(ctx context.Context, cfg *models.Config) (Sink, error) {
	s := Sink{BasePath: cfg.OutputPath, Folder: cfg.OutputFolder}
	if cfg.OutputDestination != "s3" {
		return s, nil
	}
	switch cfg.CloudStorage.Provider {
	case "", "s3":
	default:
		return Sink{}, fmt.Errorf("unsupported cloud storage provider: %s", cfg.CloudStorage.Provider)
	}
	factory, err := cloudwriter.NewS3WriterFactory(ctx, cfg.CloudStorage.Region, cfg.CloudStorage.Endpoint)
	if err != nil {
		return Sink{}, fmt.Errorf("failed to create cloud writer factory: %w", err)
	}
	s.Factory = factory
	s.Bucket = cfg.CloudStorage.BucketName
	return s, nil
}

// PartitionPath is the slash separated key of a partition file relative to
// the sink root.
func (s Sink) PartitionPath(topic string, at time.Time, file string) string {
	at = at.UTC()
	return path.Join(
		s.Folder,
		topic,
		fmt.Sprintf("year=%d", at.Year()),
		fmt.Sprintf("month=%02d", int(at.Month())),
		fmt.Sprintf("day=%02d", at.Day()),
		file,
	)
}

func (s Sink) localPath(rel string) (string, error) {
	full := filepath.Join(s.BasePath, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	return full, nil
}

func (s Sink) Create(rel string) (io.WriteCloser, error) {
	if s.Factory != nil {
		w, err := s.Factory.NewWriter(s.Bucket, rel)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud file writer: %w", err)
		}
		return w, nil
	}
	full, err := s.localPath(rel)
	if err != nil {
		return nil, err
	}
	return os.Create(full)
}

func (s Sink) CreateParquet(rel string) (source.ParquetFile, error) {
	if s.Factory != nil {
		w, err := s.Factory.NewWriter(s.Bucket, rel)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud file writer: %w", err)
		}
		return NewCloudParquetFile(w), nil
	}
	full, err := s.localPath(rel)
	if err != nil {
		return nil, err
	}
	fw, err := local.NewLocalFileWriter(full)
	if err != nil {
		return nil, fmt.Errorf("failed to create local file writer: %w", err)
	}
	return fw, nil
}

// CloudParquetFile adapts a write-only CloudWriter to source.ParquetFile.
type CloudParquetFile struct {
	cloudWriter cloudwriter.CloudWriter
	offset      int64
}

func NewCloudParquetFile(w cloudwriter.CloudWriter) *CloudParquetFile {
	return &CloudParquetFile{cloudWriter: w}
}

// Open and Create return the receiver: the object is created by writing.
func (c *CloudParquetFile) Open(string) (source.ParquetFile, error)   { return c, nil }
func (c *CloudParquetFile) Create(string) (source.ParquetFile, error) { return c, nil }

func (c *CloudParquetFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		c.offset = offset
	case io.SeekCurrent:
		c.offset += offset
	default:
		return 0, fmt.Errorf("seek from end not supported for cloud storage")
	}
	return c.offset, nil
}

func (c *CloudParquetFile) Read([]byte) (int, error) {
	return 0, fmt.Errorf("read not supported for cloud storage")
}

func (c *CloudParquetFile) Write(p []byte) (int, error) {
	n, err := c.cloudWriter.Write(p)
	c.offset += int64(n)
	return n, err
}

func (c *CloudParquetFile) Close() error {
	return c.cloudWriter.Close()
}
