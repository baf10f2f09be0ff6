// Package animate drives one upload-and-generate session: it owns the
// selected image, the in-flight generation job and the resulting video, and
// moves the session through the domain state machine.
package animate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"animator/internal/domain"
	"animator/internal/i18n"
	"animator/internal/infra"
	"animator/internal/providers/video"
)

const (
	DefaultModel         = "veo-2.0-generate-001"
	DefaultPollInterval  = 10 * time.Second
	DefaultMaxImageBytes = 20 << 20
)

// ImageFile is a user-selected file with its declared content type.
type ImageFile struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

// Options configures a Controller.
type Options struct {
	ID           string
	Service      video.Service
	Model        string
	PollInterval time.Duration
	// MaxPolls bounds the status queries of one job; zero means unbounded.
	MaxPolls      int
	MaxImageBytes int64
	Logger        *infra.Logger
	Observer      func(domain.View)
	// After replaces time.After; tests use it to skip the poll interval.
	After func(time.Duration) <-chan time.Time
}

// Controller owns all mutable state of a single session.
type Controller struct {
	id            string
	svc           video.Service
	model         string
	interval      time.Duration
	maxPolls      int
	maxImageBytes int64
	logger        infra.Logger
	observer      func(domain.View)
	after         func(time.Duration) <-chan time.Time

	mu      sync.Mutex
	state   domain.State
	image   *domain.UploadedImage
	job     *domain.GenerationJob
	result  *domain.Video
	banner  string
	loading string
	cancel  context.CancelFunc
	// epoch is bumped by Reset so work started earlier cannot write back.
	epoch uint64
}

// New builds a Controller in the Idle state. Without a video service the
// session cannot do anything and ErrMissingCredential is returned.
func New(opts Options) (*Controller, error) {
	if opts.Service == nil {
		return nil, domain.ErrMissingCredential
	}
	c := &Controller{
		id:            opts.ID,
		svc:           opts.Service,
		model:         opts.Model,
		interval:      opts.PollInterval,
		maxPolls:      opts.MaxPolls,
		maxImageBytes: opts.MaxImageBytes,
		observer:      opts.Observer,
		after:         opts.After,
		state:         domain.StateIdle,
	}
	if c.id == "" {
		c.id = uuid.NewString()
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.interval <= 0 {
		c.interval = DefaultPollInterval
	}
	if c.maxPolls < 0 {
		c.maxPolls = 0
	}
	if c.maxImageBytes <= 0 {
		c.maxImageBytes = DefaultMaxImageBytes
	}
	if c.after == nil {
		c.after = time.After
	}
	if opts.Logger != nil {
		c.logger = opts.Logger.With().Str("session_id", c.id).Logger()
	} else {
		c.logger = infra.NopLogger()
	}
	return c, nil
}

// ID returns the session identifier.
func (c *Controller) ID() string { return c.id }

// State returns the current state.
func (c *Controller) State() domain.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Image returns a copy of the selected image, or nil.
func (c *Controller) Image() *domain.UploadedImage {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.image == nil {
		return nil
	}
	img := *c.image
	return &img
}

// Job returns a copy of the pending job, or nil when none is in flight.
func (c *Controller) Job() *domain.GenerationJob {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.job == nil {
		return nil
	}
	job := *c.job
	return &job
}

// Video returns the downloaded result, or nil.
func (c *Controller) Video() *domain.Video {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// View returns the current render projection.
func (c *Controller) View() domain.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Controller) viewLocked() domain.View {
	v := domain.Project(c.state, c.image != nil)
	if v.PreviewVisible {
		v.PreviewURI = c.image.PreviewURI()
	}
	if v.LoaderVisible {
		v.LoadingMessage = c.loading
	}
	if v.VideoVisible && c.result != nil {
		v.VideoRef = c.result.Ref
	}
	v.ErrorVisible = c.banner != ""
	v.ErrorMessage = c.banner
	return v
}

func (c *Controller) notify(v domain.View) {
	if c.observer != nil {
		c.observer(v)
	}
}

// SetLoadingMessage replaces the visible status text. It never fails.
func (c *Controller) SetLoadingMessage(text string) {
	c.mu.Lock()
	c.loading = text
	v := c.viewLocked()
	c.mu.Unlock()
	c.notify(v)
}

// setLoading is SetLoadingMessage for the job started at epoch.
func (c *Controller) setLoading(epoch uint64, text string) {
	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return
	}
	c.loading = text
	v := c.viewLocked()
	c.mu.Unlock()
	c.notify(v)
}

// IngestImage reads and encodes an image, replacing any prior selection.
// A non-image content type leaves the session untouched apart from the banner.
func (c *Controller) IngestImage(ctx context.Context, file ImageFile) error {
	c.mu.Lock()
	if _, err := c.state.Next(domain.EventImageLoaded); err != nil {
		c.mu.Unlock()
		return err
	}
	if !domain.IsImageType(file.ContentType) {
		c.banner = i18n.T(i18n.KeyInvalidFileType)
		v := c.viewLocked()
		c.mu.Unlock()
		recordIngest("invalid_type")
		c.notify(v)
		return fmt.Errorf("%w: %q", domain.ErrInvalidFileType, file.ContentType)
	}
	c.banner = ""
	epoch := c.epoch
	c.mu.Unlock()

	data, readErr := readAll(ctx, file.Reader, c.maxImageBytes)
	var img *domain.UploadedImage
	if readErr == nil {
		img, readErr = domain.NewUploadedImage(data, file.ContentType, file.Filename)
	}

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return ErrSessionReset
	}
	if readErr != nil {
		next, err := c.state.Next(domain.EventImageFailed)
		if err != nil {
			c.mu.Unlock()
			return err
		}
		c.state = next
		c.image = nil
		c.banner = i18n.T(i18n.KeyFileReadError)
		v := c.viewLocked()
		c.mu.Unlock()
		recordIngest("read_error")
		c.logger.Warn().Err(readErr).Str("filename", file.Filename).Msg("animate: image read failed")
		c.notify(v)
		return fmt.Errorf("%w: %v", domain.ErrFileRead, readErr)
	}
	next, err := c.state.Next(domain.EventImageLoaded)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.state = next
	c.image = img
	v := c.viewLocked()
	c.mu.Unlock()

	recordIngest("ok")
	c.logger.Debug().
		Str("filename", file.Filename).
		Str("mime", img.MIMEType).
		Int64("bytes", img.Size).
		Msg("animate: image selected")
	c.notify(v)
	return nil
}

// ErrSessionReset reports work abandoned because Reset ran while it was in
// progress. The session is Idle; nothing failed.
var ErrSessionReset = errors.New("session was reset")

// Reset clears the image, any job and result, cancels in-flight polling and
// returns to Idle. Calling it again has no further effect.
func (c *Controller) Reset() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	changed := c.state != domain.StateIdle || c.image != nil || c.job != nil || c.result != nil || c.banner != ""
	c.epoch++
	c.state, _ = c.state.Next(domain.EventReset)
	c.image = nil
	c.job = nil
	c.result = nil
	c.banner = ""
	c.loading = ""
	v := c.viewLocked()
	c.mu.Unlock()

	if changed {
		c.logger.Debug().Msg("animate: session reset")
		c.notify(v)
	}
}

// Generate runs the whole submission, polling and download sequence and
// returns once the session reaches Result or Error.
func (c *Controller) Generate(ctx context.Context) error {
	run, err := c.begin(ctx)
	if err != nil {
		return err
	}
	return run()
}

// StartGenerate checks the preconditions synchronously and runs the rest of
// Generate in the background. The outcome is visible through View.
func (c *Controller) StartGenerate(ctx context.Context) error {
	run, err := c.begin(ctx)
	if err != nil {
		return err
	}
	go func() { _ = run() }()
	return nil
}

func (c *Controller) begin(ctx context.Context) (func() error, error) {
	c.mu.Lock()
	if c.state == domain.StateGenerating {
		c.mu.Unlock()
		return nil, domain.ErrGenerationInProgress
	}
	if c.image == nil {
		c.banner = i18n.T(i18n.KeyNoImageSelected)
		v := c.viewLocked()
		c.mu.Unlock()
		c.notify(v)
		return nil, domain.ErrNoImageSelected
	}
	next, err := c.state.Next(domain.EventGenerateStarted)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}

	jobCtx, cancel := context.WithCancel(ctx)
	now := time.Now()
	job := &domain.GenerationJob{
		ID:        uuid.NewString(),
		Status:    domain.JobStatusSubmitted,
		CreatedAt: now,
		UpdatedAt: now,
	}
	c.state = next
	c.banner = ""
	c.result = nil
	c.job = job
	c.cancel = cancel
	c.epoch++
	epoch := c.epoch
	img := *c.image
	c.loading = i18n.T(i18n.KeyInitializing)
	v := c.viewLocked()
	c.mu.Unlock()

	c.notify(v)
	generationsInFlight.Inc()

	return func() error {
		defer cancel()
		defer generationsInFlight.Dec()
		started := time.Now()
		result, err := c.run(jobCtx, epoch, job.ID, img)
		return c.finish(epoch, result, err, time.Since(started))
	}, nil
}

func (c *Controller) run(ctx context.Context, epoch uint64, jobID string, img domain.UploadedImage) (*domain.Video, error) {
	op, err := c.svc.Submit(ctx, video.Request{
		Model:          c.model,
		Prompt:         video.AnimationPrompt,
		ImageBase64:    img.EncodedBytes,
		MIMEType:       img.MIMEType,
		NumberOfVideos: 1,
		RequestID:      jobID,
	})
	if err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	if op == nil {
		return nil, fmt.Errorf("submit: %w: no operation returned", domain.ErrUnexpected)
	}
	c.updateJob(epoch, op, 0)
	c.logger.Info().Str("job_id", jobID).Str("operation", op.Name).Msg("animate: generation submitted")

	index := 0
	c.setLoading(epoch, i18n.LoadingMessage(index))

	polls := 0
	for !op.Done {
		if c.maxPolls > 0 && polls >= c.maxPolls {
			return nil, fmt.Errorf("%w after %d polls", domain.ErrPollLimit, polls)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.after(c.interval):
		}
		if index < i18n.LoadingMessageCount()-1 {
			index++
			c.setLoading(epoch, i18n.LoadingMessage(index))
		}
		next, err := c.svc.Poll(ctx, op)
		if err != nil {
			return nil, fmt.Errorf("poll: %w", err)
		}
		if next == nil {
			return nil, fmt.Errorf("poll: %w: no operation returned", domain.ErrUnexpected)
		}
		op = next
		polls++
		pollIterations.Inc()
		c.updateJob(epoch, op, polls)
		c.logger.Debug().Str("job_id", jobID).Int("poll", polls).Bool("done", op.Done).Msg("animate: operation polled")
	}

	if op.Failed {
		return nil, &domain.GenerationError{Message: op.ErrorMessage}
	}
	uri := op.ResultURI()
	if uri == "" {
		if op.FilteredReason != "" {
			c.logger.Warn().Str("job_id", jobID).Str("reason", op.FilteredReason).Msg("animate: result filtered")
		}
		return nil, domain.ErrEmptyResult
	}

	c.setLoading(epoch, i18n.T(i18n.KeyDownloading))
	blob, err := c.svc.Download(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	downloadBytes.Observe(float64(len(blob.Data)))

	return &domain.Video{
		Ref:       uuid.NewString(),
		MIMEType:  blob.MIMEType,
		Data:      blob.Data,
		SourceURI: uri,
		CreatedAt: time.Now(),
	}, nil
}

func (c *Controller) updateJob(epoch uint64, op *video.Operation, polls int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch || c.job == nil {
		return
	}
	c.job.Handle = op.Name
	c.job.Polls = polls
	c.job.Resolve(op.Done, op.ResultURI(), op.ErrorMessage)
}

func (c *Controller) finish(epoch uint64, result *domain.Video, runErr error, elapsed time.Duration) error {
	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		recordGeneration("abandoned", elapsed)
		if runErr != nil {
			return runErr
		}
		return ErrSessionReset
	}
	c.cancel = nil
	c.job = nil
	c.loading = ""

	if runErr == nil {
		c.state, _ = c.state.Next(domain.EventGenerateSucceeded)
		c.result = result
		v := c.viewLocked()
		c.mu.Unlock()
		recordGeneration("success", elapsed)
		c.logger.Info().Int64("bytes", result.Size()).Dur("elapsed", elapsed).Msg("animate: video ready")
		c.notify(v)
		return nil
	}

	c.state, _ = c.state.Next(domain.EventGenerateFailed)
	c.banner = i18n.T(i18n.KeyErrorBanner, Message(runErr))
	v := c.viewLocked()
	c.mu.Unlock()
	recordGeneration(outcome(runErr), elapsed)
	c.logger.Error().Err(runErr).Dur("elapsed", elapsed).Msg("animate: generation failed")
	c.notify(v)
	return runErr
}

// readAll reads r fully, honouring ctx between chunks and rejecting payloads
// larger than limit.
func readAll(ctx context.Context, r io.Reader, limit int64) ([]byte, error) {
	if r == nil {
		return nil, errors.New("no file content")
	}
	var (
		buf   []byte
		chunk = make([]byte, 32<<10)
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := r.Read(chunk)
		buf = append(buf, chunk[:n]...)
		if int64(len(buf)) > limit {
			return nil, fmt.Errorf("file exceeds %d bytes", limit)
		}
		if errors.Is(err, io.EOF) {
			return buf, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
