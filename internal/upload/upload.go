// Package upload transfers the files of a folder to the service, one at a
// time, and finalizes the version.
package upload

import (
	"context"
	"fmt"
	"mime"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"launchpd/internal/api"
	"launchpd/internal/logging"
	"launchpd/internal/scan"
)

// API is the part of the service client the engine uses.
type API interface {
	UploadFile(ctx context.Context, u api.Upload) error
	CompleteUpload(ctx context.Context, done api.Completion) (*api.CompletionResult, error)
}

// Progress is reported after each uploaded file.
type Progress struct {
	Done  int
	Total int
	Path  string
	Bytes int64
}

// Summary totals an upload.
type Summary struct {
	Uploaded   int
	TotalBytes int64
}

// Engine uploads sequentially, pacing requests with a token bucket.
type Engine struct {
	client  API
	limiter *rate.Limiter
}

// NewEngine returns an engine sending at most rps requests per second. A
// non-positive rps disables pacing.
func NewEngine(client API, rps float64) *Engine {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if rps > 0 {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return &Engine{client: client, limiter: limiter}
}

// UploadFiles uploads files in order. The first failure aborts the run;
// files already sent stay under the unfinalized version.
func (e *Engine) UploadFiles(ctx context.Context, files []scan.File, subdomain string, version int, onProgress func(Progress)) (Summary, error) {
	log := logging.Named("upload")
	var sum Summary

	for _, f := range files {
		data, err := os.ReadFile(f.AbsPath)
		if err != nil {
			return sum, fmt.Errorf("read %s: %w", f.Path, err)
		}
		if err := e.limiter.Wait(ctx); err != nil {
			return sum, err
		}

		contentType := ContentType(f.Ext, data)
		err = e.client.UploadFile(ctx, api.Upload{
			Subdomain:   subdomain,
			Version:     version,
			Path:        f.Path,
			ContentType: contentType,
			Data:        data,
		})
		if err != nil {
			return sum, fmt.Errorf("upload %s: %w", f.Path, err)
		}
		log.Debug("uploaded", zap.String("path", f.Path), zap.String("type", contentType), zap.Int("bytes", len(data)))

		sum.Uploaded++
		sum.TotalBytes += int64(len(data))
		if onProgress != nil {
			onProgress(Progress{Done: sum.Uploaded, Total: len(files), Path: f.Path, Bytes: int64(len(data))})
		}
	}
	return sum, nil
}

// Finalize commits the version. Until it succeeds the version is neither
// listed nor served.
func (e *Engine) Finalize(ctx context.Context, done api.Completion) (*api.CompletionResult, error) {
	res, err := e.client.CompleteUpload(ctx, done)
	if err != nil {
		return nil, fmt.Errorf("finalize version %d: %w", done.Version, err)
	}
	return res, nil
}

// ContentType maps an extension to a MIME type, sniffing the content when
// the extension is unknown.
func ContentType(ext string, data []byte) string {
	if ext != "" {
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
	}
	return mimetype.Detect(data).String()
}
