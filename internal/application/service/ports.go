package service

import (
	"context"
	"fmt"
	"os"

	"github.com/garyjia/esign-wizard/internal/domain/event"
	"github.com/garyjia/esign-wizard/internal/domain/form"
	"github.com/garyjia/esign-wizard/internal/esign"
)

// Logger is satisfied by *zap.SugaredLogger
type Logger interface {
	Infow(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
}

// Projection derives the submission view of a form state
type Projection interface {
	Project(state form.State) form.State
}

// BaseDocumentSource supplies the blank form document
type BaseDocumentSource interface {
	BaseDocument(ctx context.Context) ([]byte, error)
}

// DocumentFiller merges projected data into the base document
type DocumentFiller interface {
	FillDocument(ctx context.Context, base []byte, projected form.State) ([]byte, error)
}

// PackageCreator submits a transaction and returns its identifier
type PackageCreator interface {
	CreatePackage(ctx context.Context, tx *esign.Transaction) (string, error)
}

// SigningURLFetcher resolves the signing URL of a package
type SigningURLFetcher interface {
	SigningURL(ctx context.Context, packageID string) (string, error)
}

// Publisher receives submission lifecycle events
type Publisher interface {
	Dispatch(ctx context.Context, evt *event.Event) error
}

// AsyncPublisher receives events without blocking the run
type AsyncPublisher interface {
	DispatchAsync(ctx context.Context, evt *event.Event)
}

// FileDocument reads the base document from disk on every call
type FileDocument struct {
	Path string
}

// BaseDocument implements BaseDocumentSource
func (f FileDocument) BaseDocument(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBaseDocument, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrBaseDocument, f.Path)
	}
	return data, nil
}
