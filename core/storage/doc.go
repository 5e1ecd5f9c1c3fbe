// Package storage provides the S3/MinIO client used to archive generated
// export files.
//
// The Client interface is deliberately narrow: the archiver only needs to
// ensure its bucket exists and upload files. Connection setup uses explicit
// transport timeouts so a misconfigured endpoint fails fast instead of
// hanging the run.
package storage
