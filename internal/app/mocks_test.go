package app

import (
	"context"
	"errors"
	"io"
	"iter"
	"sort"
	"sync"
	"time"

	"dcimsync/internal/domain"
)

type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.sleeps = append(c.sleeps, d)
	return ctx.Err()
}

type mockExif struct {
	taken time.Time
	err   error
	calls int
}

func (m *mockExif) CaptureTime(ctx context.Context, path string) (time.Time, error) {
	m.calls++
	return m.taken, m.err
}

// mockTransport serves file contents by name and fails the first failures[name]
// attempts for that name.
type mockTransport struct {
	content  map[string]string
	failures map[string]int
	calls    map[string]int
}

func (m *mockTransport) Retrieve(ctx context.Context, src domain.Source, file domain.RemoteFile, w io.Writer) error {
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[file.Name]++
	if m.calls[file.Name] <= m.failures[file.Name] {
		// a partial write must not survive a failed attempt
		_, _ = io.WriteString(w, "partial")
		return errors.New("connection reset")
	}
	_, err := io.WriteString(w, m.content[file.Name])
	return err
}

type mockLister struct {
	files []domain.RemoteFile
	// failAfter, when positive, yields that many files and then an error.
	failAfter int
	err       error
}

func (m *mockLister) List(ctx context.Context, src domain.Source) iter.Seq2[domain.RemoteFile, error] {
	return func(yield func(domain.RemoteFile, error) bool) {
		for i, file := range m.files {
			if m.failAfter > 0 && i == m.failAfter {
				yield(domain.RemoteFile{}, m.err)
				return
			}
			if !yield(file, nil) {
				return
			}
		}
	}
}

type mockHistory struct {
	mu        sync.Mutex
	names     map[string][]string
	appendErr error
	appends   int
}

func newMockHistory(source string, names ...string) *mockHistory {
	return &mockHistory{names: map[string][]string{source: names}}
}

func (m *mockHistory) Load(ctx context.Context, source string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.names[source]...), nil
}

func (m *mockHistory) Append(ctx context.Context, source string, names []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appends++
	if m.appendErr != nil {
		return m.appendErr
	}
	m.names[source] = append(m.names[source], names...)
	return nil
}

func (m *mockHistory) sorted(source string) []string {
	names := append([]string(nil), m.names[source]...)
	sort.Strings(names)
	return names
}

type mockUploader struct {
	result UploadResult
	err    error
	roots  []string
	// onUpload runs before returning, e.g. to cancel the cycle.
	onUpload func()
}

func (m *mockUploader) Upload(ctx context.Context, root string) (UploadResult, error) {
	m.roots = append(m.roots, root)
	if m.onUpload != nil {
		m.onUpload()
	}
	return m.result, m.err
}

type mockNetwork struct {
	active     string
	connectErr error
	connected  []string
	ups        []string
}

func (m *mockNetwork) ActiveConnection(ctx context.Context) (string, error) {
	return m.active, nil
}

func (m *mockNetwork) Connect(ctx context.Context, ssid, password string) error {
	m.connected = append(m.connected, ssid)
	return m.connectErr
}

func (m *mockNetwork) Up(ctx context.Context, name string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	m.ups = append(m.ups, name)
	return nil
}

type mockUnmounter struct {
	paths []string
}

func (m *mockUnmounter) Unmount(ctx context.Context, mountPath string) error {
	m.paths = append(m.paths, mountPath)
	return nil
}

type mockFinder struct {
	src *domain.Source
	err error
}

func (m mockFinder) Find(ctx context.Context) (*domain.Source, error) {
	return m.src, m.err
}

type mockRecorder struct {
	states         []State
	reports        []domain.CycleReport
	attemptsFailed int
	fetched        int
	skipped        int
	uploads        []bool
	committed      map[string]int
}

func (m *mockRecorder) StateChanged(state State) { m.states = append(m.states, state) }

func (m *mockRecorder) CycleFinished(report domain.CycleReport) {
	m.reports = append(m.reports, report)
}

func (m *mockRecorder) FetchAttemptFailed(source string) { m.attemptsFailed++ }
func (m *mockRecorder) FileFetched(source string)        { m.fetched++ }
func (m *mockRecorder) FileSkipped(source string)        { m.skipped++ }
func (m *mockRecorder) UploadFinished(ok bool)           { m.uploads = append(m.uploads, ok) }

func (m *mockRecorder) Committed(source string, count int) {
	if m.committed == nil {
		m.committed = map[string]int{}
	}
	m.committed[source] += count
}
