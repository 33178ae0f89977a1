package listing

import (
	"context"
	"log/slog"

	"careerpage/portal-service/internal/model"
)

// Fetcher returns the complete job collection. token may be empty.
type Fetcher interface {
	ListJobs(ctx context.Context, token string) ([]model.Job, error)
}

// State of a view's single load attempt.
type State string

const (
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
	StateFailed  State = "failed"
)

// View holds one fetched collection and the facet derived from it. A View
// belongs to a single page render and is never shared.
type View struct {
	fetcher    Fetcher
	jobs       []model.Job
	categories []string
	state      State
}

// NewView returns a view in the loading state.
func NewView(f Fetcher) *View {
	return &View{fetcher: f, jobs: []model.Job{}, categories: []string{}, state: StateLoading}
}

// Load performs the view's one request. On failure the collection stays
// empty and the error is handed back; nothing is retried.
func (v *View) Load(ctx context.Context) error {
	jobs, err := v.fetcher.ListJobs(ctx, "")
	if err != nil {
		slog.Error("job list load failed", "err", err)
		v.Replace(nil)
		v.state = StateFailed
		return err
	}
	v.Replace(jobs)
	v.state = StateLoaded
	return nil
}

// Replace swaps the whole collection and recomputes the facet.
func (v *View) Replace(jobs []model.Job) {
	if jobs == nil {
		jobs = []model.Job{}
	}
	v.jobs = jobs
	v.categories = CategoriesOf(jobs)
}

func (v *View) Jobs() []model.Job    { return v.jobs }
func (v *View) Categories() []string { return v.categories }
func (v *View) State() State         { return v.state }

// Category is one facet tile.
type Category struct {
	Name  string   `json:"name"`
	Lines []string `json:"lines"`
}

// Page is the JSON view-model of the job list page.
type Page struct {
	State      State       `json:"state"`
	Message    string      `json:"message,omitempty"`
	Categories []Category  `json:"categories"`
	Jobs       []model.Job `json:"jobs"`
	Visible    int         `json:"visible"`
	Total      int         `json:"total"`
	HasMore    bool        `json:"hasMore"`
	NextCursor int         `json:"nextCursor,omitempty"`
}

// Render builds the page for cursor.
func (v *View) Render(cursor int) Page {
	cats := make([]Category, 0, len(v.categories))
	for _, c := range v.categories {
		cats = append(cats, Category{Name: c, Lines: FormatCategory(c)})
	}
	visible := VisiblePage(v.jobs, cursor)
	p := Page{
		State:      v.state,
		Categories: cats,
		Jobs:       visible,
		Visible:    len(visible),
		Total:      len(v.jobs),
		HasMore:    HasMore(v.jobs, cursor),
	}
	if p.HasMore {
		p.NextCursor = RevealMore(cursor)
	}
	if v.state == StateFailed {
		p.Message = "Failed to load jobs"
	}
	return p
}
