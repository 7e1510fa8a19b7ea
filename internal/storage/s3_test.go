package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects      map[string][]byte
	contentTypes map[string]string
	putErr       error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, contentTypes: map[string]string{}}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.objects[key] = data
	f.contentTypes[key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	data, ok := f.objects[key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentType:   aws.String(f.contentTypes[key]),
		ContentLength: aws.Int64(int64(len(data))),
	}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store_Lifecycle(t *testing.T) {
	fake := newFakeS3()
	store := newS3Store(fake, S3Options{Bucket: "media", Prefix: "uploads", MaxBytes: 1024})
	ctx := context.Background()

	ref, err := store.Save(ctx, Upload{Reader: bytes.NewReader(pngBytes)})
	require.NoError(t, err)
	name, err := NameFromRef(ref)
	require.NoError(t, err)

	require.Contains(t, fake.objects, "media/uploads/"+name)
	assert.Equal(t, "image/png", fake.contentTypes["media/uploads/"+name])

	obj, err := store.Open(ctx, name)
	require.NoError(t, err)
	data, _ := io.ReadAll(obj.Body)
	assert.Equal(t, pngBytes, data)
	assert.Equal(t, int64(len(pngBytes)), obj.Size)

	require.NoError(t, store.Delete(ctx, ref))
	_, err = store.Open(ctx, name)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestS3Store_PutFailure(t *testing.T) {
	fake := newFakeS3()
	fake.putErr = errors.New("bucket unavailable")
	store := newS3Store(fake, S3Options{Bucket: "media", MaxBytes: 1024})

	_, err := store.Save(context.Background(), Upload{Reader: bytes.NewReader(pngBytes)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket unavailable")
}
