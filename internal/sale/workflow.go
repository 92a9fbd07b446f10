package sale

import (
	"strconv"
	"time"

	"github.com/loomhouse/fabricdesk/internal/catalog"
)

// Stage is the position of a sale in its workflow.
type Stage string

const (
	StageCollecting Stage = "COLLECTING"
	StageReviewing  Stage = "REVIEWING"
	StageCommitting Stage = "COMMITTING"
	StageCommitted  Stage = "COMMITTED"
)

// Options caches lookup results for the lifetime of one sale. Failed lookups
// are not cached.
type Options struct {
	Colors     map[int64][]string  `json:"colors,omitempty"`
	Categories map[string][]string `json:"categories,omitempty"`
}

func (o *Options) colors(productID int64) ([]string, bool) {
	colors, ok := o.Colors[productID]
	return colors, ok
}

func (o *Options) putColors(productID int64, colors []string) {
	if o.Colors == nil {
		o.Colors = make(map[int64][]string)
	}
	o.Colors[productID] = append([]string{}, colors...)
}

func categoryKey(productID int64, color string) string {
	return strconv.FormatInt(productID, 10) + "/" + color
}

func (o *Options) categories(productID int64, color string) ([]string, bool) {
	categories, ok := o.Categories[categoryKey(productID, color)]
	return categories, ok
}

func (o *Options) putCategories(productID int64, color string, categories []string) {
	if o.Categories == nil {
		o.Categories = make(map[string][]string)
	}
	o.Categories[categoryKey(productID, color)] = append([]string{}, categories...)
}

// Workflow is one sale moving from collection through review to commit.
type Workflow struct {
	ID       string   `json:"id"`
	Stage    Stage    `json:"stage"`
	Session  *Session `json:"session"`
	Review   *Review  `json:"review,omitempty"`
	Options  Options  `json:"options"`
	Attempts int      `json:"attempts"`
	// CommitDeadline bounds a COMMITTING stage left behind by a crashed request.
	CommitDeadline time.Time `json:"commitDeadline,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func NewWorkflow(id string, now time.Time) *Workflow {
	return &Workflow{
		ID:        id,
		Stage:     StageCollecting,
		Session:   NewSession(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Editable reports ErrInvalidStage unless the session may be edited.
func (w *Workflow) Editable() error {
	if w.Stage != StageCollecting {
		return ErrInvalidStage
	}
	return nil
}

// EnterReview validates the session and freezes it for confirmation.
func (w *Workflow) EnterReview(products catalog.Catalog, customers []Customer, now time.Time) error {
	if err := w.Editable(); err != nil {
		return err
	}
	if err := Validate(w.Session); err != nil {
		return err
	}
	w.Review = Freeze(w.Session, products, customers, now)
	w.Stage = StageReviewing
	return nil
}

// Back returns to collection keeping the entered data.
func (w *Workflow) Back(now time.Time) error {
	if !w.reviewable(now) {
		return ErrInvalidStage
	}
	w.Stage = StageCollecting
	w.Review = nil
	w.CommitDeadline = time.Time{}
	return nil
}

// BeginCommit locks the review for dispatch until the deadline passes.
func (w *Workflow) BeginCommit(now time.Time, timeout time.Duration) (*Review, error) {
	if !w.reviewable(now) || w.Review == nil {
		return nil, ErrInvalidStage
	}
	w.Stage = StageCommitting
	w.CommitDeadline = now.Add(timeout)
	w.Attempts++
	return w.Review, nil
}

// FinishCommit records the dispatch outcome. A failure returns to review.
func (w *Workflow) FinishCommit(err error) {
	if w.Stage != StageCommitting {
		return
	}
	w.CommitDeadline = time.Time{}
	if err != nil {
		w.Stage = StageReviewing
		return
	}
	w.Stage = StageCommitted
}

// reviewable treats a COMMITTING stage past its deadline as REVIEWING.
func (w *Workflow) reviewable(now time.Time) bool {
	switch w.Stage {
	case StageReviewing:
		return true
	case StageCommitting:
		return !w.CommitDeadline.IsZero() && now.After(w.CommitDeadline)
	}
	return false
}
