package subdomain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchpd/internal/api"
	"launchpd/internal/projectlink"
	"launchpd/internal/testutil"
)

type fakeAPI struct {
	available bool
	checkErr  error
	owned     []api.Subdomain
	ownedErr  error
}

func (f *fakeAPI) CheckSubdomain(context.Context, string) (bool, error) {
	return f.available, f.checkErr
}

func (f *fakeAPI) ListSubdomains(context.Context) ([]api.Subdomain, error) {
	return f.owned, f.ownedErr
}

type scriptedConfirmer struct {
	answer    bool
	questions []string
}

func (s *scriptedConfirmer) YesNo(q string, _ bool) (bool, error) {
	s.questions = append(s.questions, q)
	return s.answer, nil
}

func TestValidAndGenerate(t *testing.T) {
	assert.True(t, Valid("my-site"))
	assert.True(t, Valid("a"))
	assert.False(t, Valid("-bad"))
	assert.False(t, Valid("bad-"))
	assert.False(t, Valid("Has_Caps"))
	assert.False(t, Valid(""))

	for i := 0; i < 20; i++ {
		name := Generate()
		assert.True(t, Valid(name), name)
	}
}

func TestExplicitNameAuthenticated(t *testing.T) {
	dir := t.TempDir()
	confirm := &scriptedConfirmer{answer: true}
	r := &Resolver{Prompt: confirm, Reporter: &testutil.Reporter{}, Authenticated: true}

	res, err := r.Resolve(context.Background(), dir, "  My-Site ")
	require.NoError(t, err)
	assert.Equal(t, "my-site", res.Subdomain)
	assert.False(t, res.Generated)
	require.Len(t, confirm.questions, 1, "offers to create a link")

	link, err := projectlink.Load(dir)
	require.NoError(t, err)
	require.NotNil(t, link)
	assert.Equal(t, "my-site", link.Subdomain)
}

func TestExplicitNameInvalid(t *testing.T) {
	r := &Resolver{Reporter: &testutil.Reporter{}, Authenticated: true, AutoYes: true}
	_, err := r.Resolve(context.Background(), t.TempDir(), "bad_name")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestAnonymousExplicitNameDowngraded(t *testing.T) {
	rep := &testutil.Reporter{}
	r := &Resolver{Reporter: rep, AutoYes: true}

	res, err := r.Resolve(context.Background(), t.TempDir(), "wanted")
	require.NoError(t, err)
	assert.NotEqual(t, "wanted", res.Subdomain)
	assert.True(t, res.Generated)
	assert.Len(t, rep.Messages("warn"), 1)
}

func TestAnonymousExplicitNameLeavesLinkAlone(t *testing.T) {
	dir := t.TempDir()
	_, err := projectlink.Save(dir, "linked-site")
	require.NoError(t, err)
	confirm := &scriptedConfirmer{answer: true}
	r := &Resolver{Prompt: confirm, Reporter: &testutil.Reporter{}, AutoYes: true}

	res, err := r.Resolve(context.Background(), dir, "wanted")
	require.NoError(t, err)
	assert.True(t, res.Generated)
	assert.NotEqual(t, "linked-site", res.Subdomain)
	assert.Empty(t, confirm.questions)

	link, err := projectlink.Load(dir)
	require.NoError(t, err)
	require.NotNil(t, link)
	assert.Equal(t, "linked-site", link.Subdomain)
}

func TestUsesLinkWithoutExplicitName(t *testing.T) {
	dir := t.TempDir()
	_, err := projectlink.Save(dir, "linked-site")
	require.NoError(t, err)
	confirm := &scriptedConfirmer{}
	r := &Resolver{Prompt: confirm, Reporter: &testutil.Reporter{}}

	res, err := r.Resolve(context.Background(), dir, "")
	require.NoError(t, err)
	assert.Equal(t, "linked-site", res.Subdomain)
	assert.True(t, res.FromLink)
	assert.Empty(t, confirm.questions)
}

func TestLinkMismatchDeclinedKeepsLink(t *testing.T) {
	dir := t.TempDir()
	_, err := projectlink.Save(dir, "old-site")
	require.NoError(t, err)
	confirm := &scriptedConfirmer{answer: false}
	r := &Resolver{Prompt: confirm, Reporter: &testutil.Reporter{}, Authenticated: true}

	res, err := r.Resolve(context.Background(), dir, "new-site")
	require.NoError(t, err)
	assert.Equal(t, "new-site", res.Subdomain)
	require.Len(t, confirm.questions, 1)

	link, err := projectlink.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "old-site", link.Subdomain)
}

func TestLinkMismatchAutoYesUpdates(t *testing.T) {
	dir := t.TempDir()
	_, err := projectlink.Save(dir, "old-site")
	require.NoError(t, err)
	r := &Resolver{Reporter: &testutil.Reporter{}, Authenticated: true, AutoYes: true}

	_, err = r.Resolve(context.Background(), dir, "new-site")
	require.NoError(t, err)

	link, err := projectlink.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "new-site", link.Subdomain)
}

func TestCheckAvailability(t *testing.T) {
	ctx := context.Background()

	free := &Resolver{Client: &fakeAPI{available: true}, Reporter: &testutil.Reporter{}}
	av, err := free.CheckAvailability(ctx, "demo")
	require.NoError(t, err)
	assert.True(t, av.Verified)
	assert.False(t, av.Owned)

	mine := &Resolver{Client: &fakeAPI{owned: []api.Subdomain{{Subdomain: "demo"}}}, Reporter: &testutil.Reporter{}}
	av, err = mine.CheckAvailability(ctx, "demo")
	require.NoError(t, err)
	assert.True(t, av.Owned)

	taken := &Resolver{Client: &fakeAPI{owned: []api.Subdomain{{Subdomain: "other"}}}, Reporter: &testutil.Reporter{}}
	_, err = taken.CheckAvailability(ctx, "demo")
	assert.ErrorIs(t, err, ErrSubdomainTaken)

	rep := &testutil.Reporter{}
	offline := &Resolver{Client: &fakeAPI{checkErr: errors.New("dial tcp: refused")}, Reporter: rep}
	av, err = offline.CheckAvailability(ctx, "demo")
	require.NoError(t, err)
	assert.False(t, av.Verified)
	assert.Len(t, rep.Messages("warn"), 1)
}
