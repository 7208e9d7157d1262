package file

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/wazazi/core"
	"github.com/trezcool/wazazi/core/user"
)

var (
	// errors
	ErrNotFound = errors.New("file not found")
	ErrRead     = errors.New("could not read file")
	ErrTooLarge = errors.New("file is too large")
)

type Service struct {
	files   *core.Collection[File]
	maxSize int64
}

// NewService creates the file store. Files larger than maxSize bytes are rejected; 0 means no limit.
func NewService(kv core.KVStore, maxSize int64) *Service {
	return &Service{
		files:   core.NewCollection[File](core.KeyFiles, kv),
		maxSize: maxSize,
	}
}

func (svc *Service) Load(ctx context.Context) error { return svc.files.Load(ctx) }

func (svc *Service) OnChange(fn func()) (unsubscribe func()) { return svc.files.OnChange(fn) }

// All returns the files in upload order.
func (svc *Service) All() []File { return svc.files.Items() }

func (svc *Service) Count() int { return svc.files.Len() }

func (svc *Service) Get(id string) (File, error) {
	if f, ok := svc.files.Find(func(f File) bool { return f.ID == id }); ok {
		return f, nil
	}
	return File{}, ErrNotFound
}

// Upload reads src and stores it on behalf of uploader.
func (svc *Service) Upload(ctx context.Context, src Source, uploader user.User) (File, error) {
	content, err := svc.read(src)
	if err != nil {
		return File{}, err
	}

	mimeType := src.Type()
	if mimeType == "" {
		mimeType = http.DetectContentType(content)
	}
	f := File{
		ID:         core.NewID(),
		Name:       src.Name(),
		UploadedBy: uploader.Name,
		Role:       uploader.Role,
		DataURL:    encodeDataURL(mimeType, content),
		Type:       mimeType,
	}
	err = svc.files.Mutate(ctx, func(files []File) ([]File, error) {
		return append(files, f), nil
	})
	if err != nil {
		return File{}, err
	}
	return f, nil
}

// UploadAsync runs Upload in the background. The returned future settles once;
// the upload is not cancelled when the caller stops waiting.
func (svc *Service) UploadAsync(src Source, uploader user.User) *core.Future[File] {
	return core.Go(func() (File, error) {
		return svc.Upload(context.Background(), src, uploader)
	})
}

// Delete removes the file. Deleting a missing file is a no-op.
func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.files.Mutate(ctx, func(files []File) ([]File, error) {
		kept := make([]File, 0, len(files))
		for _, f := range files {
			if f.ID != id {
				kept = append(kept, f)
			}
		}
		return kept, nil
	})
}

func (svc *Service) read(src Source) ([]byte, error) {
	if strings.TrimSpace(src.Name()) == "" {
		return nil, errors.Wrap(ErrRead, "missing file name")
	}
	rc, err := src.Open()
	if err != nil {
		return nil, wrapRead(err)
	}
	defer func() { _ = rc.Close() }()

	var r io.Reader = rc
	if svc.maxSize > 0 {
		r = io.LimitReader(rc, svc.maxSize+1)
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, wrapRead(err)
	}
	if svc.maxSize > 0 && int64(len(content)) > svc.maxSize {
		return nil, ErrTooLarge
	}
	return content, nil
}

// wrapRead keeps ErrRead as the cause of read failures.
func wrapRead(err error) error {
	return &readError{cause: err}
}

type readError struct {
	cause error
}

func (e *readError) Error() string { return ErrRead.Error() + ": " + e.cause.Error() }

func (e *readError) Cause() error { return ErrRead }

func (e *readError) Unwrap() []error { return []error{ErrRead, e.cause} }
