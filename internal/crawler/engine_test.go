package crawler

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/nholik/sharecrawl/internal/model"
	"github.com/nholik/sharecrawl/internal/session"
)

// fakeFile is one file row of a fake listing.
type fakeFile struct {
	name    string
	preview string // empty means no preview surface ever appears
	err     error  // non-nil means the preview request fails
}

// fakeDir is one fake remote folder.
type fakeDir struct {
	folders []string
	files   []fakeFile
}

// fakeNavigator is an in-memory Navigator over a static location map.
// It mimics the share UI contract: activation moves the current
// location, GoBack restores it, previews resolve per file.
type fakeNavigator struct {
	dirs map[string]*fakeDir
	root string
	loc  string

	// links reroutes "location|name" activations to an arbitrary
	// destination, used to simulate cyclic remote links.
	links map[string]string

	// failFolders names folders whose activation always fails, even via
	// the forced fallback.
	failFolders map[string]bool

	// stuck names folders whose activation never moves the location.
	stuck map[string]bool

	// requireReady makes every navigation leave the listing unreadable
	// until WaitUntilReady is called, like a real page that moves its
	// location on click and renders the listing afterwards.
	requireReady bool
	rendering    bool

	goBacks int
	closed  bool
}

var _ session.Navigator = (*fakeNavigator)(nil)

func newFakeNavigator(root string, dirs map[string]*fakeDir) *fakeNavigator {
	return &fakeNavigator{
		dirs:        dirs,
		root:        root,
		links:       make(map[string]string),
		failFolders: make(map[string]bool),
		stuck:       make(map[string]bool),
	}
}

func (f *fakeNavigator) Open(_ context.Context, _ string) error {
	f.loc = f.root
	return nil
}

func (f *fakeNavigator) CurrentLocation() (string, error) {
	return f.loc, nil
}

func (f *fakeNavigator) WaitUntilReady(_ context.Context) error {
	f.rendering = false
	return nil
}

func (f *fakeNavigator) ListEntries(_ context.Context) ([]string, []string, error) {
	if f.rendering {
		return nil, nil, nil
	}
	d := f.dirs[f.loc]
	if d == nil {
		return nil, nil, nil
	}
	files := make([]string, 0, len(d.files))
	for _, file := range d.files {
		files = append(files, file.name)
	}
	return append([]string(nil), d.folders...), files, nil
}

func (f *fakeNavigator) ActivateEntry(_ context.Context, name string, kind model.EntryKind) error {
	if kind != model.KindContainer {
		return nil // leaf activation happens inside RequestPreview
	}
	if f.failFolders[name] {
		return fmt.Errorf("%w: folder %q", session.ErrActivationFailed, name)
	}
	if f.stuck[name] {
		return nil
	}
	if dest, ok := f.links[f.loc+"|"+name]; ok {
		f.loc = dest
	} else {
		f.loc = f.loc + "/" + encodeName(name)
	}
	f.rendering = f.requireReady
	return nil
}

func (f *fakeNavigator) WaitForLocationChange(_ context.Context, old string) error {
	if f.loc == old {
		return session.ErrNavigationTimeout
	}
	return nil
}

func (f *fakeNavigator) RequestPreview(_ context.Context, name string) (string, bool, error) {
	d := f.dirs[f.loc]
	if d == nil {
		return "", false, nil
	}
	for _, file := range d.files {
		if file.name != name {
			continue
		}
		if file.err != nil {
			return "", false, file.err
		}
		if file.preview == "" {
			return "", false, nil
		}
		return file.preview, true, nil
	}
	return "", false, nil
}

func (f *fakeNavigator) ClosePreview(_ context.Context) error {
	return nil
}

func (f *fakeNavigator) GoBack(_ context.Context, expected string) error {
	f.goBacks++
	f.loc = expected
	f.rendering = f.requireReady
	return nil
}

func (f *fakeNavigator) Close() error {
	f.closed = true
	return nil
}

// TestCrawl tests depth-first tree building over a fake share.
func TestCrawl(t *testing.T) {
	t.Parallel()

	nav := newFakeNavigator("/home/Brand", map[string]*fakeDir{
		"/home/Brand": {
			folders: []string{"Alpha", "Beta"},
			files: []fakeFile{
				{name: "a.png", preview: "https://cdn/a"},
				{name: "b.txt"},
				{name: "c.JPG", preview: "https://cdn/c"},
				{name: "d.jpeg", preview: "https://cdn/d"},
			},
		},
		"/home/Brand/Alpha": {
			files: []fakeFile{{name: "one.jpg", preview: "https://cdn/one"}},
		},
		"/home/Brand/Beta": {},
	})

	result, err := New(nav).Crawl(context.Background(), "https://example.com/share/x")
	if err != nil {
		t.Fatalf("crawl failed: %v", err)
	}

	root := result.Root
	if root.Location != "/home/Brand" {
		t.Errorf("expected root location /home/Brand, got %q", root.Location)
	}

	// Extension filter: exactly the allow-listed names become resources.
	wantLeaves := []string{"a.png", "c.JPG", "d.jpeg"}
	if len(root.Leaves) != len(wantLeaves) {
		t.Fatalf("expected %d root leaves, got %d", len(wantLeaves), len(root.Leaves))
	}
	for i, want := range wantLeaves {
		if root.Leaves[i].Name != want {
			t.Errorf("leaf %d: expected %q, got %q", i, want, root.Leaves[i].Name)
		}
		if root.Leaves[i].PreviewSrc == "" {
			t.Errorf("leaf %d: expected preview reference", i)
		}
		if root.Leaves[i].Location != "/home/Brand" {
			t.Errorf("leaf %d: expected source location /home/Brand, got %q", i, root.Leaves[i].Location)
		}
	}

	// Children in listing order, with labels from the clicked names.
	if len(root.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(root.Children))
	}
	if root.Children[0].DisplayName != "Alpha" || root.Children[1].DisplayName != "Beta" {
		t.Errorf("expected children [Alpha Beta], got [%s %s]",
			root.Children[0].DisplayName, root.Children[1].DisplayName)
	}
	if got := root.Children[0].Leaves; len(got) != 1 || got[0].Name != "one.jpg" {
		t.Errorf("expected Alpha to hold one.jpg, got %v", got)
	}

	// One back navigation per entered folder.
	if nav.goBacks != 2 {
		t.Errorf("expected 2 back navigations, got %d", nav.goBacks)
	}

	if result.Visited != 3 {
		t.Errorf("expected 3 visited locations, got %d", result.Visited)
	}
	if result.Meta.MaxDepth != nil {
		t.Errorf("expected unbounded depth in metadata, got %v", *result.Meta.MaxDepth)
	}
}

// TestCrawlDepthBound tests that the depth budget stops recursion while
// keeping leaves collected at the boundary.
func TestCrawlDepthBound(t *testing.T) {
	t.Parallel()

	nav := newFakeNavigator("/root", map[string]*fakeDir{
		"/root": {folders: []string{"L1"}},
		"/root/L1": {
			folders: []string{"L2"},
			files:   []fakeFile{{name: "edge.png", preview: "https://cdn/edge"}},
		},
		"/root/L1/L2": {
			files: []fakeFile{{name: "deep.png", preview: "https://cdn/deep"}},
		},
	})

	result, err := New(nav, WithMaxDepth(1)).Crawl(context.Background(), "https://example.com/share/x")
	if err != nil {
		t.Fatalf("crawl failed: %v", err)
	}

	if got := result.Root.MaxDepth(); got != 1 {
		t.Errorf("expected tree depth 1, got %d", got)
	}

	l1 := result.Root.Children[0]
	if len(l1.Children) != 0 {
		t.Errorf("expected no recursion past the depth limit, got %d children", len(l1.Children))
	}
	// Leaves discovered exactly at the depth limit are retained.
	if len(l1.Leaves) != 1 || l1.Leaves[0].Name != "edge.png" {
		t.Errorf("expected edge.png retained at depth limit, got %v", l1.Leaves)
	}

	if result.Meta.MaxDepth == nil || *result.Meta.MaxDepth != 1 {
		t.Errorf("expected max depth 1 in metadata, got %v", result.Meta.MaxDepth)
	}
}

// TestCrawlVisitedSafety tests that a cyclic remote link yields one empty
// placeholder node and the crawl still terminates.
func TestCrawlVisitedSafety(t *testing.T) {
	t.Parallel()

	nav := newFakeNavigator("/root", map[string]*fakeDir{
		"/root": {
			folders: []string{"Loop", "Real"},
			files:   []fakeFile{{name: "here.png", preview: "https://cdn/here"}},
		},
		"/root/Real": {},
	})
	// Activating Loop lands back on the already-visited root.
	nav.links["/root|Loop"] = "/root"

	result, err := New(nav).Crawl(context.Background(), "https://example.com/share/x")
	if err != nil {
		t.Fatalf("crawl failed: %v", err)
	}

	if len(result.Root.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(result.Root.Children))
	}

	placeholder := result.Root.Children[0]
	if placeholder.Location != "/root" {
		t.Errorf("expected placeholder at /root, got %q", placeholder.Location)
	}
	if len(placeholder.Children) != 0 || len(placeholder.Leaves) != 0 {
		t.Errorf("expected empty placeholder, got %d children %d leaves",
			len(placeholder.Children), len(placeholder.Leaves))
	}

	// The sibling after the cycle is still processed.
	if result.Root.Children[1].DisplayName != "Real" {
		t.Errorf("expected sibling Real after cycle, got %q", result.Root.Children[1].DisplayName)
	}
}

// TestCrawlLeafFailureIsolation tests that one leaf's extraction failure
// never cancels its siblings.
func TestCrawlLeafFailureIsolation(t *testing.T) {
	t.Parallel()

	nav := newFakeNavigator("/root", map[string]*fakeDir{
		"/root": {
			files: []fakeFile{
				{name: "bad.jpg", err: errors.New("preview crashed")},
				{name: "good.png", preview: "https://cdn/good"},
			},
		},
	})

	result, err := New(nav).Crawl(context.Background(), "https://example.com/share/x")
	if err != nil {
		t.Fatalf("expected leaf failure to be isolated, got %v", err)
	}

	if len(result.Root.Leaves) != 1 || result.Root.Leaves[0].Name != "good.png" {
		t.Errorf("expected only good.png extracted, got %v", result.Root.Leaves)
	}
}

// TestCrawlPreviewAbsent tests that a leaf without a preview is dropped
// silently, not treated as an error.
func TestCrawlPreviewAbsent(t *testing.T) {
	t.Parallel()

	nav := newFakeNavigator("/root", map[string]*fakeDir{
		"/root": {
			files: []fakeFile{
				{name: "silent.png"}, // no preview ever appears
				{name: "loud.png", preview: "https://cdn/loud"},
			},
		},
	})

	result, err := New(nav).Crawl(context.Background(), "https://example.com/share/x")
	if err != nil {
		t.Fatalf("crawl failed: %v", err)
	}

	if len(result.Root.Leaves) != 1 || result.Root.Leaves[0].Name != "loud.png" {
		t.Errorf("expected only loud.png recorded, got %v", result.Root.Leaves)
	}
}

// TestCrawlClickedNameTrusted tests that a child's names come from the
// label actually clicked, not from its location segment.
func TestCrawlClickedNameTrusted(t *testing.T) {
	t.Parallel()

	nav := newFakeNavigator("/root", map[string]*fakeDir{
		"/root":        {folders: []string{"Троси управління"}},
		"/root/mangled": {},
	})
	// The remote derives a location the label does not round-trip to.
	nav.links["/root|Троси управління"] = "/root/mangled"

	result, err := New(nav).Crawl(context.Background(), "https://example.com/share/x")
	if err != nil {
		t.Fatalf("crawl failed: %v", err)
	}

	child := result.Root.Children[0]
	if child.DisplayName != "Троси управління" {
		t.Errorf("expected clicked label as display name, got %q", child.DisplayName)
	}
	if child.EncodedName != encodeName("Троси управління") {
		t.Errorf("expected encoded clicked label, got %q", child.EncodedName)
	}
	if child.Location != "/root/mangled" {
		t.Errorf("expected remote location preserved, got %q", child.Location)
	}
}

// TestCrawlActivationFailureAborts tests that an escalated activation
// fault aborts the whole crawl.
func TestCrawlActivationFailureAborts(t *testing.T) {
	t.Parallel()

	nav := newFakeNavigator("/root", map[string]*fakeDir{
		"/root": {folders: []string{"Broken"}},
	})
	nav.failFolders["Broken"] = true

	_, err := New(nav).Crawl(context.Background(), "https://example.com/share/x")
	if !errors.Is(err, session.ErrActivationFailed) {
		t.Errorf("expected ErrActivationFailed, got %v", err)
	}
}

// TestCrawlStuckFolderFallsBack tests the readiness fallback when an
// activation never moves the location: the revisit check then turns the
// folder into a placeholder instead of recursing forever.
func TestCrawlStuckFolderFallsBack(t *testing.T) {
	t.Parallel()

	nav := newFakeNavigator("/root", map[string]*fakeDir{
		"/root": {folders: []string{"Stuck", "Fine"}},
		"/root/Fine": {
			files: []fakeFile{{name: "ok.png", preview: "https://cdn/ok"}},
		},
	})
	nav.stuck["Stuck"] = true

	result, err := New(nav).Crawl(context.Background(), "https://example.com/share/x")
	if err != nil {
		t.Fatalf("crawl failed: %v", err)
	}

	if len(result.Root.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(result.Root.Children))
	}
	if got := result.Root.Children[0]; len(got.Children) != 0 || len(got.Leaves) != 0 {
		t.Errorf("expected stuck folder to become a placeholder, got %+v", got)
	}
	if got := result.Root.Children[1]; len(got.Leaves) != 1 {
		t.Errorf("expected sibling after stuck folder to be crawled, got %+v", got)
	}
}

// TestCrawlWaitsForListingRender tests that a folder's contents are
// read only after its listing has rendered. The location moves as soon
// as a click lands, so reading the page immediately would observe an
// empty listing and silently drop the folder's contents.
func TestCrawlWaitsForListingRender(t *testing.T) {
	t.Parallel()

	nav := newFakeNavigator("/home", map[string]*fakeDir{
		"/home": {
			folders: []string{"Alpha", "Beta"},
		},
		"/home/Alpha": {
			folders: []string{"Deep"},
			files:   []fakeFile{{name: "a.png", preview: "https://cdn/a"}},
		},
		"/home/Alpha/Deep": {
			files: []fakeFile{{name: "deep.png", preview: "https://cdn/deep"}},
		},
		"/home/Beta": {
			files: []fakeFile{{name: "b.png", preview: "https://cdn/b"}},
		},
	})
	nav.requireReady = true

	result, err := New(nav).Crawl(context.Background(), "https://example.com/share/x")
	if err != nil {
		t.Fatalf("crawl failed: %v", err)
	}

	if len(result.Root.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(result.Root.Children))
	}
	alpha := result.Root.Children[0]
	if len(alpha.Leaves) != 1 || alpha.Leaves[0].Name != "a.png" {
		t.Errorf("expected Alpha to hold a.png, got %+v", alpha.Leaves)
	}
	if len(alpha.Children) != 1 || len(alpha.Children[0].Leaves) != 1 {
		t.Errorf("expected Deep to be crawled through two renders, got %+v", alpha.Children)
	}
	beta := result.Root.Children[1]
	if len(beta.Leaves) != 1 || beta.Leaves[0].Name != "b.png" {
		t.Errorf("expected Beta to hold b.png after back navigation, got %+v", beta.Leaves)
	}
}
