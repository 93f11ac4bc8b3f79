package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
)

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404}))
	assert.True(t, isNotFound(minio.ErrorResponse{StatusCode: 404}))
	assert.False(t, isNotFound(minio.ErrorResponse{Code: "NoSuchBucket", StatusCode: 404}))
	assert.False(t, isNotFound(minio.ErrorResponse{Code: "AccessDenied", StatusCode: 403}))
	assert.False(t, isNotFound(errors.New("dial tcp: connection refused")))
}

func TestCheckConnectionWithoutClient(t *testing.T) {
	var m *MinioStore
	assert.Error(t, m.CheckConnection(context.Background()))

	m = &MinioStore{bucket: "crownmania"}
	assert.Equal(t, "crownmania", m.Bucket())
	assert.Error(t, m.CheckConnection(context.Background()))
}
