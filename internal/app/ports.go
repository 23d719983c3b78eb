package app

import (
	"context"
	"io"
	"io/fs"
	"iter"
	"time"

	"dcimsync/internal/domain"
)

type FileSystem interface {
	Exists(path string) (bool, error)
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(path string) ([]fs.DirEntry, error)
	Create(path string) (io.WriteCloser, error)
	Rename(src, dst string) error
	Remove(path string) error
	RemoveAll(path string) error
}

type ExifReader interface {
	CaptureTime(ctx context.Context, path string) (time.Time, error)
}

// SourceFinder reports an available camera, or nil when there is none.
type SourceFinder interface {
	Find(ctx context.Context) (*domain.Source, error)
}

// Lister enumerates the files on a connected source. The sequence is lazy and
// may be consumed only once.
type Lister interface {
	List(ctx context.Context, src domain.Source) iter.Seq2[domain.RemoteFile, error]
}

// Transport writes one remote file's bytes to w.
type Transport interface {
	Retrieve(ctx context.Context, src domain.Source, file domain.RemoteFile, w io.Writer) error
}

type HistoryStore interface {
	Load(ctx context.Context, source string) ([]string, error)
	Append(ctx context.Context, source string, names []string) error
}

type UploadResult struct {
	OK     bool
	Output []string
}

type Uploader interface {
	Upload(ctx context.Context, root string) (UploadResult, error)
}

// Network is the slice of the connection manager the cycle needs. Connection
// identities are opaque names.
type Network interface {
	ActiveConnection(ctx context.Context) (string, error)
	Connect(ctx context.Context, ssid, password string) error
	Up(ctx context.Context, name string) error
}

type Unmounter interface {
	Unmount(ctx context.Context, mountPath string) error
}

// Recorder receives cycle telemetry. A nil Recorder is allowed.
type Recorder interface {
	StateChanged(state State)
	CycleFinished(report domain.CycleReport)
	FetchAttemptFailed(source string)
	FileFetched(source string)
	FileSkipped(source string)
	UploadFinished(ok bool)
	Committed(source string, count int)
}

type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done, returning ctx.Err() in the
	// latter case.
	Sleep(ctx context.Context, d time.Duration) error
}
