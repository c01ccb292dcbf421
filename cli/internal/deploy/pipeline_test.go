package deploy

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchpd/internal/api"
	"launchpd/internal/failfast"
	"launchpd/internal/history"
	"launchpd/internal/metadata"
	"launchpd/internal/quota"
	"launchpd/internal/subdomain"
	"launchpd/internal/testutil"
	"launchpd/internal/upload"
	"launchpd/internal/versions"
)

// fakeService stands in for the deployment service.
type fakeService struct {
	mu        sync.Mutex
	available bool
	owned     []api.Subdomain
	quota     *api.Quota
	quotaErr  error
	uploadErr error
	uploads   []api.Upload
	completed []api.Completion
}

func newFakeService() *fakeService {
	return &fakeService{available: true, quota: &api.Quota{Limits: api.QuotaLimits{MaxSites: 10, MaxStorageMB: 100}}}
}

func (f *fakeService) CheckSubdomain(context.Context, string) (bool, error) {
	return f.available, nil
}

func (f *fakeService) ListSubdomains(context.Context) ([]api.Subdomain, error) {
	return f.owned, nil
}

func (f *fakeService) GetQuota(context.Context, bool) (*api.Quota, error) {
	return f.quota, f.quotaErr
}

func (f *fakeService) GetAnonymousQuota(context.Context, string, int64) (*api.Quota, error) {
	return f.quota, f.quotaErr
}

func (f *fakeService) UploadFile(_ context.Context, u api.Upload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploads = append(f.uploads, u)
	return nil
}

func (f *fakeService) CompleteUpload(_ context.Context, done api.Completion) (*api.CompletionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = append(f.completed, done)
	return &api.CompletionResult{Success: true}, nil
}

type harness struct {
	svc      *fakeService
	rep      *testutil.Reporter
	history  *history.Store
	active   *metadata.LocalStore
	versions *versions.Manager
	pipeline *Pipeline
}

func newHarness(t *testing.T, authenticated bool) *harness {
	t.Helper()
	state := t.TempDir()
	h := &harness{
		svc:     newFakeService(),
		rep:     &testutil.Reporter{},
		history: history.NewStore(state),
		active:  metadata.NewLocalStore(state),
	}
	h.versions = versions.NewManager(h.rep, &versions.LocalProvider{History: h.history, Active: h.active})
	h.pipeline = &Pipeline{
		Resolver: &subdomain.Resolver{
			Client:        h.svc,
			Reporter:      h.rep,
			Authenticated: authenticated,
			AutoYes:       true,
		},
		Quota:         quota.NewGate(h.svc, authenticated, "cli_0123456789abcdef0123456789abcdef"),
		Versions:      h.versions,
		Uploader:      upload.NewEngine(h.svc, 0),
		History:       h.history,
		Active:        h.active,
		Reporter:      h.rep,
		Authenticated: authenticated,
		SiteURL:       func(s string) string { return "https://" + s + ".launchpd.cloud" },
	}
	return h
}

func requireFailure(t *testing.T, err error) *failfast.Failure {
	t.Helper()
	require.Error(t, err)
	f, ok := failfast.As(err)
	require.True(t, ok, "expected *failfast.Failure, got %T: %v", err, err)
	return f
}

func TestDeployFirstVersion(t *testing.T) {
	h := newHarness(t, true)
	site := testutil.Site(t, map[string]string{"index.html": "0123456789"})

	out, err := h.pipeline.Run(context.Background(), Options{Folder: site, Message: "first"})
	require.NoError(t, err)

	require.Len(t, h.svc.uploads, 1)
	assert.Equal(t, "index.html", h.svc.uploads[0].Path)
	require.Len(t, h.svc.completed, 1)
	done := h.svc.completed[0]
	assert.Equal(t, 1, done.FileCount)
	assert.Equal(t, 1, done.Version)
	assert.EqualValues(t, 10, done.TotalBytes)
	assert.Equal(t, "first", done.Message)

	records, err := h.history.All()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, out.Subdomain, records[0].Subdomain)

	url := "https://" + out.Subdomain + ".launchpd.cloud"
	assert.Equal(t, url, out.URL)
	succeeded := strings.Join(h.rep.Messages("succeed"), "\n")
	assert.Contains(t, succeeded, url)
}

func TestDeployReportsUploadProgress(t *testing.T) {
	h := newHarness(t, true)
	site := testutil.Site(t, map[string]string{"about.html": "a", "index.html": "i"})

	_, err := h.pipeline.Run(context.Background(), Options{Folder: site})
	require.NoError(t, err)
	assert.Equal(t, []string{"1/2 about.html", "2/2 index.html"}, h.rep.Messages("progress"))
}

func TestDeployRejectsBackendFiles(t *testing.T) {
	h := newHarness(t, true)
	site := testutil.Site(t, map[string]string{"index.html": "<p>", "app.py": "print()"})

	_, err := h.pipeline.Run(context.Background(), Options{Folder: site, Message: "oops"})
	f := requireFailure(t, err)
	assert.Contains(t, f.Details, "app.py")
	assert.Empty(t, h.svc.uploads)
	assert.Empty(t, h.svc.completed)
}

func TestDeployForceContinuesPastViolations(t *testing.T) {
	h := newHarness(t, true)
	site := testutil.Site(t, map[string]string{"index.html": "<p>", "app.py": "print()"})

	_, err := h.pipeline.Run(context.Background(), Options{Folder: site, Message: "forced", Force: true})
	require.NoError(t, err)
	assert.Len(t, h.svc.uploads, 2)

	warnings := strings.Join(h.rep.Messages("warn"), "\n")
	assert.Contains(t, warnings, "app.py")
}

func TestDeployLocalChecksBeforeNetwork(t *testing.T) {
	site := testutil.Site(t, map[string]string{"index.html": "<p>"})
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"missing message", Options{Folder: site}, "message is required"},
		{"blank message", Options{Folder: site, Message: "   "}, "message is required"},
		{"bad expiration", Options{Folder: site, Message: "m", Expires: "10m"}, "Invalid expiration"},
		{"missing folder", Options{Folder: site + "/nope", Message: "m"}, "Folder not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, true)
			_, err := h.pipeline.Run(context.Background(), tt.opts)
			f := requireFailure(t, err)
			assert.Contains(t, f.Message, tt.want)
			assert.Empty(t, h.svc.uploads)
		})
	}
}

func TestDeployEmptyFolder(t *testing.T) {
	h := newHarness(t, true)
	site := testutil.Site(t, map[string]string{"node_modules/pkg/index.js": "x", ".DS_Store": ""})

	_, err := h.pipeline.Run(context.Background(), Options{Folder: site, Message: "m"})
	f := requireFailure(t, err)
	assert.Contains(t, f.Message, "No deployable files")
}

func TestDeployTakenSubdomain(t *testing.T) {
	h := newHarness(t, true)
	h.svc.available = false
	site := testutil.Site(t, map[string]string{"index.html": "<p>"})

	_, err := h.pipeline.Run(context.Background(), Options{Folder: site, Name: "taken", Message: "m"})
	f := requireFailure(t, err)
	assert.Contains(t, f.Message, "already taken")
	assert.ErrorIs(t, err, subdomain.ErrSubdomainTaken)
	assert.Empty(t, h.svc.uploads)
}

func TestDeployQuotaDenied(t *testing.T) {
	h := newHarness(t, true)
	h.svc.quota = &api.Quota{Usage: api.QuotaUsage{SiteCount: 1}, Limits: api.QuotaLimits{MaxSites: 1}}
	site := testutil.Site(t, map[string]string{"index.html": "<p>"})

	_, err := h.pipeline.Run(context.Background(), Options{Folder: site, Message: "m"})
	f := requireFailure(t, err)
	assert.Contains(t, f.Message, "Quota check failed")
	assert.Empty(t, h.svc.uploads)

	_, err = h.pipeline.Run(context.Background(), Options{Folder: site, Message: "m", Force: true})
	require.NoError(t, err, "--force overrides a quota denial")
}

func TestDeployBlockedIgnoresForce(t *testing.T) {
	h := newHarness(t, true)
	h.svc.quota = &api.Quota{Blocked: true}
	site := testutil.Site(t, map[string]string{"index.html": "<p>"})

	_, err := h.pipeline.Run(context.Background(), Options{Folder: site, Message: "m", Force: true})
	requireFailure(t, err)
	assert.Empty(t, h.svc.uploads)
}

func TestDeployQuotaUnreachableStillDeploys(t *testing.T) {
	h := newHarness(t, true)
	h.svc.quotaErr = &api.Error{Kind: api.KindNetwork, Message: "offline"}
	site := testutil.Site(t, map[string]string{"index.html": "<p>"})

	_, err := h.pipeline.Run(context.Background(), Options{Folder: site, Message: "m"})
	require.NoError(t, err)
	assert.NotEmpty(t, h.rep.Messages("warn"))
}

func TestDeployUploadFailureClassified(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&api.Error{Kind: api.KindMaintenance, Status: 503}, "maintenance"},
		{&api.Error{Kind: api.KindNetwork}, "Could not connect"},
		{&api.Error{Kind: api.KindAuth, Status: 401}, "Authentication failed"},
		{&api.Error{Kind: api.KindAPI, Status: 413, Message: "payload too large"}, "Upload failed"},
	}
	for _, tt := range tests {
		h := newHarness(t, true)
		h.svc.uploadErr = tt.err
		site := testutil.Site(t, map[string]string{"index.html": "<p>"})

		_, err := h.pipeline.Run(context.Background(), Options{Folder: site, Message: "m"})
		f := requireFailure(t, err)
		assert.Contains(t, f.Message, tt.want)
		assert.NotEmpty(t, f.Suggestions)
		assert.LessOrEqual(t, len(f.Suggestions), 3)
		assert.Empty(t, h.svc.completed, "no finalize after a failed upload")
	}
}

func TestVersionsStayContiguousAcrossRollbacks(t *testing.T) {
	h := newHarness(t, true)
	site := testutil.Site(t, map[string]string{"index.html": "<p>"})
	ctx := context.Background()

	first, err := h.pipeline.Run(ctx, Options{Folder: site, Name: "steady", Message: "v1"})
	require.NoError(t, err)
	h.svc.available = false
	h.svc.owned = []api.Subdomain{{Subdomain: first.Subdomain}}

	for i := 2; i <= 4; i++ {
		_, err := h.pipeline.Run(ctx, Options{Folder: site, Message: "next"})
		require.NoError(t, err)
		if i == 3 {
			_, err := h.versions.Rollback(ctx, first.Subdomain, 1)
			require.NoError(t, err)
		}
	}

	set, err := h.versions.List(ctx, first.Subdomain)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 3, 2, 1}, set.Numbers())
	assert.Equal(t, 4, set.Active)
}

func TestDeployPresentation(t *testing.T) {
	h := newHarness(t, false)
	var opened string
	var qr bytes.Buffer
	h.pipeline.Open = func(url string) error { opened = url; return nil }
	h.pipeline.Out = &qr
	h.pipeline.Now = func() time.Time { return time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC) }
	site := testutil.Site(t, map[string]string{"index.html": "<p>"})

	out, err := h.pipeline.Run(context.Background(), Options{
		Folder: site, Message: "m", Expires: "2h", OpenURL: true, QR: true,
	})
	require.NoError(t, err)

	require.NotNil(t, out.ExpiresAt)
	assert.Equal(t, time.Date(2026, 1, 1, 14, 0, 0, 0, time.UTC), *out.ExpiresAt)
	require.Len(t, h.svc.completed, 1)
	assert.Equal(t, out.ExpiresAt, h.svc.completed[0].ExpiresAt)
	assert.Equal(t, out.URL, opened)
	assert.NotZero(t, qr.Len())

	info := strings.Join(h.rep.Messages("info"), "\n")
	assert.Contains(t, info, "Expires")
	assert.Contains(t, info, "3 sites")
}
