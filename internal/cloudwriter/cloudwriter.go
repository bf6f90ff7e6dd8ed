// Package cloudwriter buffers export files in memory and uploads them to
// object storage on Close.
package cloudwriter

import "io"

type CloudWriter interface {
	io.WriteCloser
}

type CloudWriterFactory interface {
	NewWriter(bucket, objectPath string) (CloudWriter, error)
}
