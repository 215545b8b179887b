package objectstore

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/phrazzld/accounts-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type putCall struct {
	path        string
	contentType string
	data        []byte
}

type fakeBucket struct {
	puts      []putCall
	removed   []string
	putErr    error
	removeErr error
}

func (b *fakeBucket) Put(_ context.Context, objectPath, contentType string, data []byte) error {
	if b.putErr != nil {
		return b.putErr
	}
	b.puts = append(b.puts, putCall{path: objectPath, contentType: contentType, data: data})
	return nil
}

func (b *fakeBucket) Remove(_ context.Context, objectPath string) error {
	if b.removeErr != nil {
		return b.removeErr
	}
	b.removed = append(b.removed, objectPath)
	return nil
}

func newTestStore(t *testing.T, bucket *fakeBucket) *GCSImageStore {
	t.Helper()
	s, err := newImageStore(bucket, config.StorageConfig{
		Bucket:        "avatars",
		Folder:        "profiles",
		PublicBaseURL: "https://storage.googleapis.com/",
	}, nil, nil)
	require.NoError(t, err)
	return s
}

func TestNewImageStore_Validation(t *testing.T) {
	_, err := newImageStore(&fakeBucket{}, config.StorageConfig{PublicBaseURL: "https://x"}, nil, nil)
	assert.Error(t, err)

	_, err = newImageStore(&fakeBucket{}, config.StorageConfig{Bucket: "b"}, nil, nil)
	assert.Error(t, err)

	_, err = NewGCSImageStore(nil, config.StorageConfig{Bucket: "b", PublicBaseURL: "https://x"}, nil)
	assert.Error(t, err)
}

func TestUpload(t *testing.T) {
	bucket := &fakeBucket{}
	s := newTestStore(t, bucket)

	url, err := s.Upload(context.Background(), "profiles", dataURL("image/jpeg", []byte("jpegdata")))
	require.NoError(t, err)

	require.Len(t, bucket.puts, 1)
	put := bucket.puts[0]
	assert.True(t, strings.HasPrefix(put.path, "profiles/"))
	assert.True(t, strings.HasSuffix(put.path, ".jpg"))
	assert.Equal(t, "image/jpeg", put.contentType)
	assert.Equal(t, []byte("jpegdata"), put.data)
	assert.Equal(t, "https://storage.googleapis.com/avatars/"+put.path, url)
}

func TestUpload_UniqueNames(t *testing.T) {
	bucket := &fakeBucket{}
	s := newTestStore(t, bucket)

	first, err := s.Upload(context.Background(), "profiles", dataURL("image/png", []byte("a")))
	require.NoError(t, err)
	second, err := s.Upload(context.Background(), "profiles", dataURL("image/png", []byte("a")))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestUpload_RejectsBadPayloadWithoutWriting(t *testing.T) {
	bucket := &fakeBucket{}
	s := newTestStore(t, bucket)

	_, err := s.Upload(context.Background(), "profiles", "not-a-data-url")
	assert.ErrorIs(t, err, ErrMalformedPayload)

	_, err = s.Upload(context.Background(), "profiles", dataURL("text/plain", []byte("hi")))
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	assert.Empty(t, bucket.puts)
}

func TestUpload_BucketFailure(t *testing.T) {
	bucket := &fakeBucket{putErr: errors.New("permission denied")}
	s := newTestStore(t, bucket)

	_, err := s.Upload(context.Background(), "profiles", dataURL("image/png", []byte("a")))
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	t.Run("deletes object behind public url", func(t *testing.T) {
		bucket := &fakeBucket{}
		s := newTestStore(t, bucket)

		err := s.Delete(context.Background(), "https://storage.googleapis.com/avatars/profiles/abc.png")
		require.NoError(t, err)
		assert.Equal(t, []string{"profiles/abc.png"}, bucket.removed)
	})

	t.Run("unescapes object path", func(t *testing.T) {
		bucket := &fakeBucket{}
		s := newTestStore(t, bucket)

		require.NoError(t, s.Delete(context.Background(), "https://storage.googleapis.com/avatars/profiles/a%20b.png"))
		assert.Equal(t, []string{"profiles/a b.png"}, bucket.removed)
	})

	t.Run("ignores foreign urls", func(t *testing.T) {
		bucket := &fakeBucket{}
		s := newTestStore(t, bucket)

		require.NoError(t, s.Delete(context.Background(), "https://cdn.example.com/other/abc.png"))
		require.NoError(t, s.Delete(context.Background(), "https://storage.googleapis.com/avatars/"))
		assert.Empty(t, bucket.removed)
	})

	t.Run("surfaces bucket failures", func(t *testing.T) {
		bucket := &fakeBucket{removeErr: errors.New("backend unavailable")}
		s := newTestStore(t, bucket)

		err := s.Delete(context.Background(), "https://storage.googleapis.com/avatars/profiles/abc.png")
		assert.Error(t, err)
	})
}

func TestClose_WithoutClient(t *testing.T) {
	s := newTestStore(t, &fakeBucket{})
	assert.NoError(t, s.Close())
}
