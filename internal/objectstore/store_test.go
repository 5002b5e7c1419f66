package objectstore

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 is an in-memory API implementation for unit tests.
type fakeS3 struct {
	objects map[string][]byte
	// headErr is returned from HeadObject when set
	headErr error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*in.Key]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	if _, ok := f.objects[*in.Key]; !ok {
		return nil, &s3types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	var contents []s3types.Object
	for key := range f.objects {
		if strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			contents = append(contents, s3types.Object{Key: aws.String(key)})
		}
	}
	return &s3.ListObjectsV2Output{Contents: contents, IsTruncated: aws.Bool(false)}, nil
}

func (f *fakeS3) DeleteObjects(_ context.Context, in *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	for _, obj := range in.Delete.Objects {
		delete(f.objects, *obj.Key)
	}
	return &s3.DeleteObjectsOutput{}, nil
}

func TestStore_UploadDownload(t *testing.T) {
	fake := newFakeS3()
	store := NewWithAPI(fake, "demo-bucket")

	err := store.Upload(context.Background(), "input/a.txt", strings.NewReader("hello"))
	require.NoError(t, err)

	body, err := store.Download(context.Background(), "input/a.txt")
	require.NoError(t, err)
	defer func() { _ = body.Close() }()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestStore_UploadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("file body"), 0644))

	fake := newFakeS3()
	store := NewWithAPI(fake, "demo-bucket")

	require.NoError(t, store.UploadFile(context.Background(), "input/a.txt", path))
	assert.Equal(t, []byte("file body"), fake.objects["input/a.txt"])
}

func TestStore_DownloadTo(t *testing.T) {
	fake := newFakeS3()
	fake.objects["results/output.tar.gz"] = []byte("archive-bytes")
	store := NewWithAPI(fake, "demo-bucket")

	dest := filepath.Join(t.TempDir(), "nested", "output.tar.gz")
	require.NoError(t, store.DownloadTo(context.Background(), "results/output.tar.gz", dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "archive-bytes", string(data))
}

func TestStore_List(t *testing.T) {
	fake := newFakeS3()
	fake.objects["input/a.txt"] = []byte("a")
	fake.objects["input/b.txt"] = []byte("b")
	fake.objects["other/c.txt"] = []byte("c")
	store := NewWithAPI(fake, "demo-bucket")

	keys, err := store.List(context.Background(), "input/")
	require.NoError(t, err)
	assert.Len(t, keys, 2)
	assert.Contains(t, keys, "input/a.txt")
	assert.Contains(t, keys, "input/b.txt")
}

func TestStore_Exists(t *testing.T) {
	fake := newFakeS3()
	fake.objects["input/a.txt"] = []byte("a")
	store := NewWithAPI(fake, "demo-bucket")

	ok, err := store.Exists(context.Background(), "input/a.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(context.Background(), "input/missing.txt")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_DeletePrefix(t *testing.T) {
	fake := newFakeS3()
	fake.objects["input/a.txt"] = []byte("a")
	fake.objects["input/b.txt"] = []byte("b")
	fake.objects["keep/c.txt"] = []byte("c")
	store := NewWithAPI(fake, "demo-bucket")

	deleted, err := store.DeletePrefix(context.Background(), "input/")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	assert.Len(t, fake.objects, 1)
	assert.Contains(t, fake.objects, "keep/c.txt")
}

func TestStore_URI(t *testing.T) {
	store := NewWithAPI(newFakeS3(), "demo-bucket")
	assert.Equal(t, "s3://demo-bucket/input/a.txt", store.URI("input/a.txt"))
}

func TestParseURI(t *testing.T) {
	bucket, key, err := ParseURI("s3://demo-bucket/results/output.tar.gz")
	require.NoError(t, err)
	assert.Equal(t, "demo-bucket", bucket)
	assert.Equal(t, "results/output.tar.gz", key)
}

func TestParseURI_Invalid(t *testing.T) {
	_, _, err := ParseURI("https://example.com/file")
	assert.Error(t, err)

	_, _, err = ParseURI("s3://bucket-only")
	assert.Error(t, err)
}

func TestJoinKey(t *testing.T) {
	assert.Equal(t, "runs/abc/input", JoinKey("runs/", "/abc/", "input"))
	assert.Equal(t, "input", JoinKey("", "input", ""))
}
