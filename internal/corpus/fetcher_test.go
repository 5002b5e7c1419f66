package corpus

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daniela/corpus-insights/internal/objectstore"
)

func corpusServer(t *testing.T, files map[string]string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/corpus/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/corpus/")
		if name == "" {
			var b strings.Builder
			b.WriteString("<html><body><ul>")
			for f := range files {
				fmt.Fprintf(&b, `<li><a href="%s">%s</a></li>`, f, f)
			}
			b.WriteString(`<a href="README.md">readme</a></ul></body></html>`)
			_, _ = w.Write([]byte(b.String()))
			return
		}
		body, ok := files[name]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchHTTP(t *testing.T) {
	srv := corpusServer(t, map[string]string{
		"alpha.txt": "Alpha Title\n\nAlpha body.\n",
		"beta.txt":  "Beta Title\n\nBeta body.\n",
	})
	dir := t.TempDir()

	manifest, err := FetchHTTP(context.Background(), srv.URL+"/corpus/", dir, 0)
	require.NoError(t, err)
	require.Len(t, manifest.Articles, 2)

	ids := []string{manifest.Articles[0].ID, manifest.Articles[1].ID}
	assert.ElementsMatch(t, []string{"alpha", "beta"}, ids)

	for _, a := range manifest.Articles {
		data, err := os.ReadFile(a.Path)
		require.NoError(t, err)
		assert.NotEmpty(t, data)
	}

	// The manifest round-trips from disk.
	loaded, err := LoadManifest(dir)
	require.NoError(t, err)
	assert.Len(t, loaded.Articles, 2)
}

func TestFetchHTTP_SampleSize(t *testing.T) {
	srv := corpusServer(t, map[string]string{
		"alpha.txt": "a\n",
		"beta.txt":  "b\n",
		"gamma.txt": "c\n",
	})

	manifest, err := FetchHTTP(context.Background(), srv.URL+"/corpus/", t.TempDir(), 1)
	require.NoError(t, err)
	assert.Len(t, manifest.Articles, 1)
}

func TestFetchHTTP_NoLinks(t *testing.T) {
	srv := corpusServer(t, map[string]string{})

	_, err := FetchHTTP(context.Background(), srv.URL+"/corpus/", t.TempDir(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no .txt links")
}

// listGetS3 serves List and GetObject over a fixed key set.
type listGetS3 struct {
	objects map[string]string
}

func (f *listGetS3) PutObject(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return &s3.PutObjectOutput{}, nil
}

func (f *listGetS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[*in.Key]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader([]byte(body)))}, nil
}

func (f *listGetS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if _, ok := f.objects[*in.Key]; !ok {
		return nil, &s3types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *listGetS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	var contents []s3types.Object
	for key := range f.objects {
		if strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			contents = append(contents, s3types.Object{Key: aws.String(key)})
		}
	}
	return &s3.ListObjectsV2Output{Contents: contents, IsTruncated: aws.Bool(false)}, nil
}

func (f *listGetS3) DeleteObjects(context.Context, *s3.DeleteObjectsInput, ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	return &s3.DeleteObjectsOutput{}, nil
}

func TestFetchS3(t *testing.T) {
	store := objectstore.NewWithAPI(&listGetS3{objects: map[string]string{
		"dataset/alpha.txt":  "Alpha Title\n\nAlpha body.\n",
		"dataset/beta.txt":   "Beta Title\n\nBeta body.\n",
		"dataset/notes.json": "{}",
	}}, "public-corpus")
	dir := t.TempDir()

	manifest, err := FetchS3(context.Background(), store, "dataset/", dir, 0)
	require.NoError(t, err)
	require.Len(t, manifest.Articles, 2)
	assert.Equal(t, "s3://public-corpus/dataset/", manifest.Dataset)

	for _, a := range manifest.Articles {
		assert.FileExists(t, filepath.Join(dir, filepath.Base(a.Path)))
	}
}

func TestFetchS3_NoTextObjects(t *testing.T) {
	store := objectstore.NewWithAPI(&listGetS3{objects: map[string]string{
		"dataset/notes.json": "{}",
	}}, "public-corpus")

	_, err := FetchS3(context.Background(), store, "dataset/", t.TempDir(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no .txt objects")
}
