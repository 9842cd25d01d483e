// Package service holds the application use cases built on the domain and
// infrastructure packages.
package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"

	"github.com/garyjia/esign-wizard/internal/domain/event"
	"github.com/garyjia/esign-wizard/internal/domain/form"
	"github.com/garyjia/esign-wizard/internal/domain/workflow"
	"github.com/garyjia/esign-wizard/internal/esign"
)

// Submission is the outcome of one run of the sequencer
type Submission struct {
	ID         string
	State      workflow.State
	PackageID  string
	SigningURL string

	// Err and FailedStage are set when State is StateFailed
	Err         error
	FailedStage workflow.State

	History []workflow.Transition
}

// Succeeded reports whether the submission reached READY
func (s *Submission) Succeeded() bool {
	return s.State == workflow.StateReady
}

// SequencerOption configures a Sequencer
type SequencerOption func(*Sequencer)

// WithPublisher publishes lifecycle events for every run
func WithPublisher(p Publisher) SequencerOption {
	return func(s *Sequencer) {
		s.publisher = p
	}
}

// WithAsyncPublisher hands lifecycle events off without waiting for handlers.
// Handlers run detached from the run's cancellation.
func WithAsyncPublisher(p AsyncPublisher) SequencerOption {
	return func(s *Sequencer) {
		s.async = p
	}
}

// WithTransactionOptions overrides the package naming and signature placement
func WithTransactionOptions(opts esign.TransactionOptions) SequencerOption {
	return func(s *Sequencer) {
		s.txOpts = opts
	}
}

// Sequencer runs fill, package creation and signing URL lookup in order.
// Each run owns its own state machine; runs are independent.
type Sequencer struct {
	projector Projection
	documents BaseDocumentSource
	filler    DocumentFiller
	creator   PackageCreator
	urls      SigningURLFetcher
	publisher Publisher
	async     AsyncPublisher
	txOpts    esign.TransactionOptions
	logger    Logger
}

// NewSequencer creates a Sequencer
func NewSequencer(
	projector Projection,
	documents BaseDocumentSource,
	filler DocumentFiller,
	creator PackageCreator,
	urls SigningURLFetcher,
	logger Logger,
	opts ...SequencerOption,
) *Sequencer {
	s := &Sequencer{
		projector: projector,
		documents: documents,
		filler:    filler,
		creator:   creator,
		urls:      urls,
		txOpts:    esign.DefaultTransactionOptions(),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run drives one submission to READY or FAILED. Nothing is retried.
func (s *Sequencer) Run(ctx context.Context, state form.State) *Submission {
	run := &run{
		seq:     s,
		machine: workflow.NewSubmissionMachine(),
		sub:     &Submission{ID: uuid.NewString(), State: workflow.StateIdle},
	}
	s.publish(ctx, event.New(event.TypeSubmissionStarted, run.sub.ID))

	if err := run.advance(ctx, workflow.TriggerStart); err != nil {
		return run.fail(ctx, err)
	}

	projected := s.projector.Project(state)

	base, err := s.documents.BaseDocument(ctx)
	if err != nil {
		return run.fail(ctx, fmt.Errorf("load base document: %w", err))
	}
	pdf, err := s.filler.FillDocument(ctx, base, projected)
	if err != nil {
		return run.fail(ctx, fmt.Errorf("fill document: %w", err))
	}
	if err := run.advance(ctx, workflow.TriggerDocumentFilled); err != nil {
		return run.fail(ctx, err)
	}

	tx := esign.BuildTransaction(base64.StdEncoding.EncodeToString(pdf), projected, s.txOpts)
	packageID, err := s.creator.CreatePackage(ctx, tx)
	if err != nil {
		return run.fail(ctx, fmt.Errorf("create package: %w", err))
	}
	run.sub.PackageID = packageID
	if err := run.advance(ctx, workflow.TriggerPackageCreated); err != nil {
		return run.fail(ctx, err)
	}

	signingURL, err := s.urls.SigningURL(ctx, packageID)
	if err != nil {
		return run.fail(ctx, fmt.Errorf("get signing url: %w", err))
	}
	run.sub.SigningURL = signingURL
	if err := run.advance(ctx, workflow.TriggerSigningURLReady); err != nil {
		return run.fail(ctx, err)
	}

	s.logger.Infow("Submission ready",
		"submission_id", run.sub.ID,
		"package_id", packageID)
	s.publish(ctx, event.New(event.TypeSubmissionReady, run.sub.ID).
		WithPayload("package_id", packageID))

	return run.sub
}

func (s *Sequencer) publish(ctx context.Context, evt *event.Event) {
	if s.async != nil {
		s.async.DispatchAsync(context.WithoutCancel(ctx), evt)
	}
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Dispatch(ctx, evt); err != nil {
		s.logger.Errorw("Failed to publish submission event",
			"event_type", evt.Type,
			"submission_id", evt.SubmissionID,
			"error", err)
	}
}

type run struct {
	seq     *Sequencer
	machine workflow.StateMachine
	sub     *Submission
}

func (r *run) advance(ctx context.Context, trigger workflow.Trigger) error {
	from := r.machine.State()
	if err := r.machine.Fire(ctx, trigger); err != nil {
		return err
	}
	r.sub.State = r.machine.State()
	r.sub.History = r.machine.History()
	r.seq.publish(ctx, event.Transition(r.sub.ID, from.String(), r.sub.State.String()))
	return nil
}

func (r *run) fail(ctx context.Context, err error) *Submission {
	stage := r.machine.State()
	r.sub.Err = err
	r.sub.FailedStage = stage

	// only IDLE and terminal states refuse FAIL
	if !r.machine.CanFire(workflow.TriggerFail) {
		r.seq.logger.Errorw("Cannot mark submission failed",
			"submission_id", r.sub.ID,
			"stage", stage,
			"permitted", r.machine.PermittedTriggers())
	} else if fireErr := r.machine.Fire(ctx, workflow.TriggerFail); fireErr != nil {
		r.seq.logger.Errorw("Cannot mark submission failed",
			"submission_id", r.sub.ID,
			"stage", stage,
			"error", fireErr)
	}
	r.sub.State = workflow.StateFailed
	r.sub.History = r.machine.History()

	r.seq.logger.Errorw("Submission failed",
		"submission_id", r.sub.ID,
		"stage", stage,
		"error", err)
	r.seq.publish(ctx, event.New(event.TypeSubmissionFailed, r.sub.ID).
		WithPayload("stage", stage.String()).
		WithPayload("error", err.Error()))

	return r.sub
}
