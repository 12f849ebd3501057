package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nholik/sharecrawl/internal/model"
	"github.com/nholik/sharecrawl/internal/session"
)

// Engine performs one depth-first crawl over a navigation session.
// It issues strictly sequential calls to the session, because the
// session's current location is shared mutable state.
type Engine struct {
	// nav is the navigation session. The engine borrows it for the
	// duration of one Crawl call; acquisition and release belong to the
	// caller.
	nav session.Navigator

	// maxDepth is the depth budget. Negative means unbounded; 0 crawls
	// only the root listing.
	maxDepth int

	// extensions is the case-insensitive suffix allow-list selecting
	// extractable leaves.
	extensions []string

	// logger receives crawl narration, indented by depth attribute.
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxDepth sets the crawl depth budget.
// Negative means unbounded, 0 means only the root listing.
func WithMaxDepth(depth int) Option {
	return func(e *Engine) {
		e.maxDepth = depth
	}
}

// WithExtensions sets the leaf suffix allow-list.
func WithExtensions(extensions []string) Option {
	return func(e *Engine) {
		if len(extensions) > 0 {
			e.extensions = extensions
		}
	}
}

// WithLogger sets a custom logger for crawl narration.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an Engine over the given navigation session.
func New(nav session.Navigator, opts ...Option) *Engine {
	e := &Engine{
		nav:        nav,
		maxDepth:   -1,
		extensions: []string{".png", ".jpg", ".jpeg"},
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}

	return e
}

// Crawl opens the session at rootLocator and explores the tree depth
// first. The returned result owns the root node; the visited set and all
// intermediate state are discarded when Crawl returns.
func (e *Engine) Crawl(ctx context.Context, rootLocator string) (*model.CrawlResult, error) {
	start := time.Now()

	if err := e.nav.Open(ctx, rootLocator); err != nil {
		return nil, fmt.Errorf("failed to open share: %w", err)
	}

	visited := make(map[string]struct{})
	root, err := e.visit(ctx, visited, e.maxDepth, 0)
	if err != nil {
		return nil, err
	}

	meta := model.CrawlMeta{
		RootLocator: rootLocator,
		Extensions:  append([]string(nil), e.extensions...),
		GeneratedAt: time.Now().UTC().Truncate(time.Second),
	}
	if e.maxDepth >= 0 {
		depth := e.maxDepth
		meta.MaxDepth = &depth
	}

	elapsed := time.Since(start)
	e.logger.Info("crawl finished",
		"root", root.Location,
		"visited", len(visited),
		"elapsed", elapsed.Round(time.Millisecond),
	)

	return &model.CrawlResult{
		Root:    root,
		Meta:    meta,
		Visited: len(visited),
		Elapsed: elapsed,
	}, nil
}

// visit expands the node at the session's current location.
//
// budget is the remaining depth allowance (negative = unbounded); depth
// is the distance from the root, used only for log indentation. Leaves
// are fully extracted before any child is entered, both in listing order.
func (e *Engine) visit(ctx context.Context, visited map[string]struct{}, budget, depth int) (*model.Node, error) {
	location, err := e.nav.CurrentLocation()
	if err != nil {
		return nil, fmt.Errorf("failed to read location: %w", err)
	}
	e.logger.Info("visiting", "depth", depth, "path", location)

	display, encoded := lastSegmentNames(location)

	// A revisited location means the remote linked back into explored
	// territory. Expanding it again could recurse forever, so it becomes
	// an empty placeholder.
	if _, seen := visited[location]; seen {
		e.logger.Warn("already visited, skipping", "depth", depth, "path", location)
		return &model.Node{Location: location, DisplayName: display, EncodedName: encoded}, nil
	}
	visited[location] = struct{}{}

	folders, files, err := e.nav.ListEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", location, err)
	}
	e.logger.Info("listed entries", "depth", depth, "folders", len(folders), "files", len(files))

	node := &model.Node{Location: location, DisplayName: display, EncodedName: encoded}

	for _, name := range files {
		if !matchesExtension(name, e.extensions) {
			continue
		}
		leaf, ok, err := e.extractLeaf(ctx, name, location, depth)
		if err != nil {
			// One leaf's failure never cancels its siblings.
			e.logger.Warn("skipping file after error", "depth", depth, "name", name, "error", err)
			continue
		}
		if ok {
			node.Leaves = append(node.Leaves, leaf)
		}
	}

	if budget == 0 {
		e.logger.Info("depth budget exhausted", "depth", depth, "path", location)
		return node, nil
	}

	for _, name := range folders {
		before, err := e.nav.CurrentLocation()
		if err != nil {
			return nil, fmt.Errorf("failed to read location: %w", err)
		}

		e.logger.Info("open folder", "depth", depth, "name", name)
		if err := e.nav.ActivateEntry(ctx, name, model.KindContainer); err != nil {
			return nil, fmt.Errorf("failed to open folder %q: %w", name, err)
		}

		if err := e.nav.WaitForLocationChange(ctx, before); err != nil {
			if !errors.Is(err, session.ErrNavigationTimeout) {
				return nil, err
			}
			// Some activations re-render in place without moving the
			// location.
			e.logger.Warn("location unchanged, waiting for listing", "depth", depth, "name", name)
		}
		// The location moves as soon as the click lands while the child
		// listing renders later, so readiness must be re-established
		// before the child can be read.
		if err := e.nav.WaitUntilReady(ctx); err != nil {
			return nil, err
		}

		child, err := e.visit(ctx, visited, budget-1, depth+1)
		if err != nil {
			return nil, err
		}

		// The clicked label is trusted over whatever name the child's
		// location decodes to; encoding and locale can diverge remotely.
		child.DisplayName = name
		child.EncodedName = encodeName(name)
		node.Children = append(node.Children, child)

		if err := e.nav.GoBack(ctx, before); err != nil {
			return nil, fmt.Errorf("failed to return to %s: %w", before, err)
		}
		if err := e.nav.WaitUntilReady(ctx); err != nil {
			return nil, err
		}
	}

	e.logger.Debug("level done", "depth", depth, "path", location)
	return node, nil
}

// extractLeaf previews one file and records its resolved reference.
// The preview is always closed and the listing re-validated before
// returning, whatever the preview outcome, so the session is back in a
// listable state for the next sibling.
func (e *Engine) extractLeaf(ctx context.Context, name, location string, depth int) (model.LeafResource, bool, error) {
	e.logger.Info("preview file", "depth", depth, "name", name)

	src, ok, previewErr := e.nav.RequestPreview(ctx, name)

	_ = e.nav.ClosePreview(ctx)
	readyErr := e.nav.WaitUntilReady(ctx)

	if previewErr != nil {
		return model.LeafResource{}, false, previewErr
	}
	if readyErr != nil {
		return model.LeafResource{}, false, readyErr
	}
	if !ok {
		// No preview resolved: the leaf is dropped, not retried.
		e.logger.Debug("no preview resolved, dropping", "depth", depth, "name", name)
		return model.LeafResource{}, false, nil
	}

	return model.LeafResource{Name: name, PreviewSrc: src, Location: location}, true, nil
}
