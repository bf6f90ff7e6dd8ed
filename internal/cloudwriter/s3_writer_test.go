package cloudwriter

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	puts map[string][]byte
	meta map[string]string
	err  error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.puts[key] = body
	f.meta[key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Writer_UploadsOnClose(t *testing.T) {
	fake := &fakeS3{puts: map[string][]byte{}, meta: map[string]string{}}
	factory := NewS3WriterFactoryWithClient(context.Background(), fake)

	w, err := factory.NewWriter("exports", "/quotes/year=2026/../year=2026/data.csv")
	require.NoError(t, err)

	_, err = w.Write([]byte("id,total\n"))
	require.NoError(t, err)
	_, err = w.Write([]byte("q1,22736\n"))
	require.NoError(t, err)
	assert.Empty(t, fake.puts)

	require.NoError(t, w.Close())
	assert.Equal(t, "id,total\nq1,22736\n", string(fake.puts["exports/quotes/year=2026/data.csv"]))
	assert.Equal(t, "text/csv", fake.meta["exports/quotes/year=2026/data.csv"])

	require.NoError(t, w.Close())
	_, err = w.Write([]byte("late"))
	assert.Error(t, err)
}

func TestS3Writer_Errors(t *testing.T) {
	fake := &fakeS3{puts: map[string][]byte{}, meta: map[string]string{}, err: errors.New("denied")}
	factory := NewS3WriterFactoryWithClient(context.Background(), fake)

	_, err := factory.NewWriter("", "x.json")
	assert.Error(t, err)

	w, err := factory.NewWriter("exports", "x.json")
	require.NoError(t, err)
	assert.ErrorContains(t, w.Close(), "denied")
}
