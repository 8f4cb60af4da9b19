package core

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/adam-gaia/checklints/internal/types"
)

// ProjectOptions configures a Project. Zero-valued collaborators get the
// real implementations.
type ProjectOptions struct {
	Root             string
	Settings         Settings
	UserChecklistDir string
	UserTemplateDir  string
	CacheDir         string
	Extra            []string // Additional checklist files or directories

	FS      FileSystem
	Fetcher Fetcher
	Runner  CommandRunner
	UI      UICallback
	Logger  *log.Logger
	RunID   string // Generated when empty
}

// Project is a prepared audit: checklists discovered, facts resolved and
// the result cache validated against those facts.
type Project struct {
	root       string
	runID      string
	settings   Settings
	cache      *ResultCache
	checklists []*types.Checklist
	facts      *types.Facts
	evaluator  *CheckEvaluator
	ui         UICallback
	logger     *log.Logger
}

// NewProject prepares an audit of opts.Root.
//
// The result cache is loaded (and wiped on clear_cache), external templates
// are fetched and registered, checklists are discovered, and facts are
// resolved checklist by checklist. A cache written with different facts is
// invalidated before any check runs.
func NewProject(ctx context.Context, opts ProjectOptions) (*Project, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project directory: %w", err)
	}

	fs := opts.FS
	if fs == nil {
		fs = NewOSFileSystem()
	}
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = NewHTTPFetcher(nil)
	}
	ui := opts.UI
	if ui == nil {
		ui = &SilentUICallback{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	runID := opts.RunID
	if runID == "" {
		runID = uuid.New().String()
	}
	logger = logger.With("run", runID)

	runner := opts.Runner
	if runner == nil {
		runner = NewPipelineExecutor(root, logger)
	}

	name := filepath.Base(root)
	cache, err := LoadResultCache(fs, logger, opts.CacheDir, name)
	if err != nil {
		return nil, err
	}
	if cache == nil {
		cache = NewResultCache(fs, logger, opts.CacheDir, name)
	}
	if opts.Settings.ClearCache {
		if err := cache.Wipe(); err != nil {
			return nil, err
		}
	}

	renderer := NewTemplateRenderer(fs, logger)
	if opts.Settings.UserChecklists && opts.UserTemplateDir != "" {
		if info, err := fs.Stat(opts.UserTemplateDir); err == nil && info.IsDir() {
			if err := renderer.AddDir(opts.UserTemplateDir); err != nil {
				return nil, err
			}
		}
	}

	if err := confirmUnpinned(ui, opts.Settings.ExternalTemplates, opts.Settings.ExternalChecklists); err != nil {
		return nil, err
	}

	remotes := NewRemoteCache(fs, fetcher, logger, cache.Dir(), cache.Remotes())
	reqs := make([]FetchRequest, 0, len(opts.Settings.ExternalTemplates))
	for _, ref := range opts.Settings.ExternalTemplates {
		reqs = append(reqs, FetchRequest{Ref: ref, Kind: ResourceTemplate})
	}
	fetched, err := NewParallelFetcher(remotes, 0).FetchAll(ctx, reqs)
	if err != nil {
		return nil, err
	}
	for _, r := range fetched {
		renderer.Register(r.Request.Ref.Name(), r.Path)
	}

	discovery := DiscoveryOptions{
		ProjectRoot: root,
		External:    opts.Settings.ExternalChecklists,
		Extra:       opts.Extra,
	}
	if opts.Settings.UserChecklists {
		discovery.UserChecklistDir = opts.UserChecklistDir
	}
	checklists, err := NewDiscoverer(fs, remotes, logger).Discover(ctx, discovery)
	if err != nil {
		return nil, err
	}

	evaluator := NewCheckEvaluator(fs, renderer, logger)
	resolver := NewFactResolver(runner, evaluator, logger)
	facts := types.NewFacts()
	for _, cl := range checklists {
		if err := resolver.ResolveChecklist(ctx, cl, facts); err != nil {
			return nil, err
		}
	}

	if !cache.FactsMatch(facts) {
		logger.Info("facts changed, invalidating result cache")
		if err := cache.Invalidate(); err != nil {
			return nil, err
		}
	}
	cache.SetFacts(facts)

	logger.Debug("project ready", "root", root, "checklists", len(checklists), "facts", facts.Len())
	return &Project{
		root:       root,
		runID:      runID,
		settings:   opts.Settings,
		cache:      cache,
		checklists: checklists,
		facts:      facts,
		evaluator:  evaluator,
		ui:         ui,
		logger:     logger,
	}, nil
}

// confirmUnpinned asks before trusting any reference without a content hash.
func confirmUnpinned(ui UICallback, groups ...[]*types.RemoteFile) error {
	for _, refs := range groups {
		for _, ref := range refs {
			if ref.Pinned() {
				continue
			}
			msg := fmt.Sprintf("%s has no '::<hash>' pin and may change between runs. Use it anyway?", ref.URL())
			if !ui.AskConfirmation("Unpinned external resource", msg) {
				return fmt.Errorf("%w: %s", ErrUnpinnedRejected, ref.URL())
			}
		}
	}
	return nil
}

// RunID returns the unique id of this run.
func (p *Project) RunID() string { return p.runID }

// Root returns the absolute project directory.
func (p *Project) Root() string { return p.root }

// Checklists returns the discovered checklists in evaluation order.
func (p *Project) Checklists() []*types.Checklist { return p.checklists }

// Facts returns the resolved facts.
func (p *Project) Facts() *types.Facts { return p.facts }

// RunChecks evaluates every check and returns the aggregated statuses.
// With fail_fast the run stops after the first Fail. When cache writes are
// enabled, stale entries are swept and the cache is saved.
func (p *Project) RunChecks() (*types.Statuses, error) {
	var all []types.CheckType
	for _, cl := range p.checklists {
		for _, check := range cl.Checks {
			all = append(all, check.Type)
		}
	}

	tracker := p.ui.StartProgress(len(all), "Running checks")
	statuses := types.NewStatuses()

outer:
	for _, cl := range p.checklists {
		for _, check := range cl.Checks {
			status, err := p.runCheck(cl, check)
			if err != nil {
				tracker.Fail(err)
				return nil, err
			}
			statuses.Insert(cl.Path, check.Describe(), status)
			tracker.Increment(check.Describe())

			if p.settings.FailFast && status.IsFail() {
				p.logger.Debug("fail fast", "checklist", cl.Path, "check", check.Describe())
				break outer
			}
		}
	}
	tracker.Complete()

	if p.settings.WriteCache {
		p.cache.Sweep(all)
		if err := p.cache.Save(); err != nil {
			return nil, err
		}
	}
	return statuses, nil
}

func (p *Project) runCheck(cl *types.Checklist, check types.Check) (types.Status, error) {
	if p.settings.ReadCache {
		cached, err := p.cache.Get(check.Type)
		if err != nil {
			return types.Status{}, err
		}
		if cached != nil {
			p.logger.Debug("check result from cache", "check", check.Describe(), "cached", true)
			return *cached, nil
		}
	}

	status, inputs, cacheable := p.evaluator.Evaluate(cl, check, p.facts)
	p.logger.Debug("check evaluated", "check", check.Describe(), "status", status.Kind)

	if cacheable && p.settings.WriteCache {
		if err := p.cache.Insert(check.Type, status, inputs...); err != nil {
			return types.Status{}, err
		}
	}
	return status, nil
}
