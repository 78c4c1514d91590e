package worker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"video-publisher/internal/entity"
)

// UploadRequest is everything an uploader needs to post one video.
type UploadRequest struct {
	Video       entity.VideoRef
	Account     entity.AccountRef
	Title       string
	Description string
	AccessToken string
}

type UploadResult struct {
	PlatformPostID string
}

// Uploader posts a video to one platform.
type Uploader interface {
	Upload(ctx context.Context, req UploadRequest) (UploadResult, error)
}

type UploaderFunc func(ctx context.Context, req UploadRequest) (UploadResult, error)

func (f UploaderFunc) Upload(ctx context.Context, req UploadRequest) (UploadResult, error) {
	return f(ctx, req)
}

// Registry maps platforms to their uploader.
type Registry struct {
	mu        sync.RWMutex
	uploaders map[entity.Platform]Uploader
}

func NewRegistry() *Registry {
	return &Registry{uploaders: map[entity.Platform]Uploader{}}
}

func (r *Registry) Register(p entity.Platform, u Uploader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uploaders[p] = u
}

func (r *Registry) Get(p entity.Platform) (Uploader, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.uploaders[p]
	if !ok {
		return nil, ErrUnsupportedPlatform(p)
	}
	return u, nil
}

func (r *Registry) Platforms() []entity.Platform {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entity.Platform, 0, len(r.uploaders))
	for p := range r.uploaders {
		out = append(out, p)
	}
	return out
}

// PublishError is a platform failure with enough detail to decide on retry.
type PublishError struct {
	Platform   string
	Code       string
	StatusCode int
	Retryable  bool
	Err        error
}

func (e *PublishError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Platform, e.Code)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

func ErrRateLimited(p entity.Platform) *PublishError {
	return &PublishError{Platform: p.Key(), Code: "RATE_LIMIT_EXCEEDED", StatusCode: http.StatusTooManyRequests, Retryable: true}
}

func ErrTokenExpired(p entity.Platform, cause error) *PublishError {
	return &PublishError{Platform: p.Key(), Code: "TOKEN_EXPIRED", StatusCode: http.StatusUnauthorized, Retryable: true, Err: cause}
}

func ErrUnsupportedPlatform(p entity.Platform) *PublishError {
	return &PublishError{Platform: p.Key(), Code: "UNSUPPORTED_PLATFORM", StatusCode: http.StatusBadRequest}
}

// IsRetryable reports whether another attempt may succeed. Timeouts and 5xx
// platform responses are retryable.
func IsRetryable(err error) bool {
	var pe *PublishError
	if errors.As(err, &pe) {
		return pe.Retryable || pe.StatusCode >= http.StatusInternalServerError
	}
	return errors.Is(err, context.DeadlineExceeded)
}
