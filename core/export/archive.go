package export

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/storage"
)

// Archiver uploads generated export files to object storage, one folder per
// run.
type Archiver struct {
	client storage.Client
	cfg    storage.Config
	log    *zap.Logger
}

// NewArchiver creates an archiver over the given storage client.
func NewArchiver(client storage.Client, cfg storage.Config, log *zap.Logger) *Archiver {
	return &Archiver{client: client, cfg: cfg, log: log}
}

// Archive uploads the files under {prefix}/{runID}/, creating the bucket if
// needed. A failed upload aborts the archive but never the run.
func (a *Archiver) Archive(ctx context.Context, runID string, files []string) error {
	exists, err := a.client.BucketExists(ctx, a.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("checking bucket: %w", err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.cfg.Bucket, minio.MakeBucketOptions{Region: a.cfg.Region}); err != nil {
			return fmt.Errorf("creating bucket %s: %w", a.cfg.Bucket, err)
		}
	}

	for _, file := range files {
		object := a.cfg.Prefix + "/" + runID + "/" + filepath.Base(file)
		info, err := a.client.FPutObject(ctx, a.cfg.Bucket, object, file, minio.PutObjectOptions{
			ContentType: contentType(file),
		})
		if err != nil {
			return fmt.Errorf("uploading %s: %w", object, err)
		}
		a.log.Info("export archived",
			zap.String("object", object),
			zap.Int64("size", info.Size))
	}

	return nil
}

func contentType(file string) string {
	switch filepath.Ext(file) {
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".pdf":
		return "application/pdf"
	case ".csv":
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}
