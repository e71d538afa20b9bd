package session

import (
	"context"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"

	"imagesearch/common/client"
	"imagesearch/common/models"
)

// User-facing messages
const (
	MsgSelectImage          = "Please select an image first"
	MsgEnterQuery           = "Please enter a search query"
	MsgClassificationFailed = "Image classification failed"
	MsgSimilarFailed        = "Similar image search failed"
	MsgTextSearchFailed     = "Text-based image search failed"
)

// Backend is the set of calls the session makes. *client.Client satisfies it.
type Backend interface {
	ClassifyImage(ctx context.Context, img client.Upload) (*models.ClassificationResult, error)
	SearchSimilarImages(ctx context.Context, img client.Upload) (*models.SimilarImagesResult, error)
	SearchImagesByText(ctx context.Context, query string) ([]models.ImageEntry, error)
}

// App drives one user's session: each action sends at most one request and
// updates only its own slot of the state.
type App struct {
	backend  Backend
	notifier Notifier
	logger   hclog.Logger

	mu    sync.Mutex
	state State
}

// NewApp creates a session with empty state
func NewApp(backend Backend, notifier Notifier, logger hclog.Logger) *App {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &App{
		backend:  backend,
		notifier: notifier,
		logger:   logger,
	}
}

// State returns the current snapshot
func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *App) update(fn func(State) State) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = fn(a.state)
}

// SelectFile records the image the next upload actions will send
func (a *App) SelectFile(file client.Upload) {
	a.update(func(s State) State { return s.WithSelectedFile(&file) })
}

// SetTextQuery records the query the next text search will send
func (a *App) SetTextQuery(query string) {
	a.update(func(s State) State { return s.WithTextQuery(query) })
}

// ClassifyImage classifies the selected file. It returns false when the
// action was rejected or failed; the user has been alerted in that case.
func (a *App) ClassifyImage(ctx context.Context) bool {
	file := a.State().SelectedFile
	if file == nil {
		a.notifier.Alert(MsgSelectImage)
		return false
	}

	result, err := a.backend.ClassifyImage(ctx, *file)
	if err != nil {
		a.logger.Error("classification error", "file", file.Name, "error", err)
		a.notifier.Alert(MsgClassificationFailed)
		return false
	}

	a.update(func(s State) State { return s.WithClassification(result) })
	return true
}

// SearchSimilarImages searches for images similar to the selected file
func (a *App) SearchSimilarImages(ctx context.Context) bool {
	file := a.State().SelectedFile
	if file == nil {
		a.notifier.Alert(MsgSelectImage)
		return false
	}

	result, err := a.backend.SearchSimilarImages(ctx, *file)
	if err != nil {
		a.logger.Error("similar image search error", "file", file.Name, "error", err)
		a.notifier.Alert(MsgSimilarFailed)
		return false
	}

	a.update(func(s State) State { return s.WithSimilar(result) })
	return true
}

// SearchImagesByText searches images with the current text query
func (a *App) SearchImagesByText(ctx context.Context) bool {
	query := a.State().TextQuery
	if strings.TrimSpace(query) == "" {
		a.notifier.Alert(MsgEnterQuery)
		return false
	}

	images, err := a.backend.SearchImagesByText(ctx, query)
	if err != nil {
		a.logger.Error("text-based image search error", "query", query, "error", err)
		a.notifier.Alert(MsgTextSearchFailed)
		return false
	}
	if images == nil {
		images = []models.ImageEntry{}
	}

	a.update(func(s State) State { return s.WithTextResults(images) })
	return true
}
