package export

import (
	"context"
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/storage"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/storage/mocks"
)

func TestArchiveUploadsPerRunFolder(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("BucketExists", mock.Anything, "monitoring-exports").Return(true, nil)
	mockClient.On("FPutObject", mock.Anything, "monitoring-exports",
		"illumio-monitoring/run-1/report.xlsx", "/tmp/out/report.xlsx", mock.Anything).
		Return(minio.UploadInfo{Size: 1024}, nil)

	cfg := storage.Config{Bucket: "monitoring-exports", Prefix: "illumio-monitoring"}
	archiver := NewArchiver(mockClient, cfg, zap.NewNop())

	err := archiver.Archive(context.Background(), "run-1", []string{"/tmp/out/report.xlsx"})
	require.NoError(t, err)
	mockClient.AssertExpectations(t)
}

func TestArchiveCreatesMissingBucket(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("BucketExists", mock.Anything, "monitoring-exports").Return(false, nil)
	mockClient.On("MakeBucket", mock.Anything, "monitoring-exports", mock.Anything).Return(nil)
	mockClient.On("FPutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)

	cfg := storage.Config{Bucket: "monitoring-exports", Prefix: "illumio-monitoring"}
	archiver := NewArchiver(mockClient, cfg, zap.NewNop())

	err := archiver.Archive(context.Background(), "run-1", []string{"/tmp/out/report.xlsx"})
	require.NoError(t, err)
	mockClient.AssertExpectations(t)
}

func TestArchiveUploadFailure(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("BucketExists", mock.Anything, "monitoring-exports").Return(true, nil)
	mockClient.On("FPutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("connection reset"))

	cfg := storage.Config{Bucket: "monitoring-exports", Prefix: "illumio-monitoring"}
	archiver := NewArchiver(mockClient, cfg, zap.NewNop())

	err := archiver.Archive(context.Background(), "run-1", []string{"/tmp/out/report.xlsx"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uploading")
}
