package booth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// State is the capture session's position in the
// Idle → Previewing → (Countdown) → Captured → Uploading → Done/Failed
// machine. Transitions are guarded: a call from the wrong state returns
// ErrInvalidTransition instead of corrupting the session.
type State int

const (
	StateIdle State = iota
	StatePreviewing
	StateCountdown
	StateCaptured
	StateUploading
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreviewing:
		return "previewing"
	case StateCountdown:
		return "countdown"
	case StateCaptured:
		return "captured"
	case StateUploading:
		return "uploading"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	ErrInvalidTransition = errors.New("invalid session state for this operation")
	ErrUploadInFlight    = errors.New("an upload is already in flight")
)

// Session drives one capture: preview, optional countdown, capture,
// confirm-and-upload. The camera handle is held only between StartPreview
// and the capture (or cancel); every exit path releases it.
type Session struct {
	mu sync.Mutex

	state      State
	source     CaptureSource
	sourceOpen bool
	encoder    *Encoder
	uploader   *Client

	frame   []byte
	lastErr error

	countdownCancel context.CancelFunc

	// OnUploaded is invoked after a successful upload so the feed view can
	// refresh. May be nil.
	OnUploaded func()
}

func NewSession(source CaptureSource, uploader *Client) *Session {
	return &Session{
		state:    StateIdle,
		source:   source,
		encoder:  NewEncoder(),
		uploader: uploader,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Frame returns the encoded frame held by the session, if any.
func (s *Session) Frame() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

// Err returns the error recorded by the last failed operation.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// StartPreview acquires the camera handle and enters Previewing.
func (s *Session) StartPreview(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle && s.state != StateFailed {
		return fmt.Errorf("cannot start preview from %s: %w", s.state, ErrInvalidTransition)
	}

	if err := s.source.Open(ctx); err != nil {
		s.lastErr = err
		return fmt.Errorf("failed to open capture source: %w", err)
	}
	s.sourceOpen = true
	s.state = StatePreviewing
	s.lastErr = nil
	return nil
}

// StartCountdown arms the self-timer: after d the capture fires by itself.
// Cancelable via CancelCountdown or Cancel.
func (s *Session) StartCountdown(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	if s.state != StatePreviewing {
		s.mu.Unlock()
		return fmt.Errorf("cannot start countdown from %s: %w", s.state, ErrInvalidTransition)
	}

	countdownCtx, cancel := context.WithCancel(ctx)
	s.countdownCancel = cancel
	s.state = StateCountdown
	s.mu.Unlock()

	go func() {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-countdownCtx.Done():
			return
		case <-timer.C:
			_ = s.timerCapture(ctx, countdownCtx)
		}
	}()

	return nil
}

// CancelCountdown disarms the self-timer and returns to Previewing. The
// pending capture is guaranteed not to fire afterwards.
func (s *Session) CancelCountdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCountdown {
		return fmt.Errorf("cannot cancel countdown from %s: %w", s.state, ErrInvalidTransition)
	}
	if s.countdownCancel != nil {
		s.countdownCancel()
		s.countdownCancel = nil
	}
	s.state = StatePreviewing
	return nil
}

// Capture grabs one frame, encodes it (mirrored for front-facing sources)
// and releases the camera handle.
func (s *Session) Capture(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.captureLocked(ctx)
}

// timerCapture runs the self-timer's capture. countdownCtx only tells
// whether the countdown was canceled between the timer firing and the lock
// being acquired; the capture itself runs on the session's parent context,
// which must stay live for the frame grab.
func (s *Session) timerCapture(ctx, countdownCtx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := countdownCtx.Err(); err != nil {
		return err
	}
	return s.captureLocked(ctx)
}

func (s *Session) captureLocked(ctx context.Context) error {
	if s.state != StatePreviewing && s.state != StateCountdown {
		return fmt.Errorf("cannot capture from %s: %w", s.state, ErrInvalidTransition)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if s.countdownCancel != nil {
		s.countdownCancel()
		s.countdownCancel = nil
	}

	frame, err := s.source.Frame(ctx)
	if err != nil {
		s.releaseSourceLocked()
		s.state = StateFailed
		s.lastErr = err
		return fmt.Errorf("failed to capture frame: %w", err)
	}

	encoded, err := s.encoder.Encode(frame, s.source.FrontFacing())
	if err != nil {
		s.releaseSourceLocked()
		s.state = StateFailed
		s.lastErr = err
		return err
	}

	s.releaseSourceLocked()
	s.frame = encoded
	s.state = StateCaptured
	s.lastErr = nil
	return nil
}

// Retake discards the captured frame and reopens the preview.
func (s *Session) Retake(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCaptured && s.state != StateFailed {
		return fmt.Errorf("cannot retake from %s: %w", s.state, ErrInvalidTransition)
	}

	s.frame = nil
	if err := s.source.Open(ctx); err != nil {
		s.state = StateFailed
		s.lastErr = err
		return fmt.Errorf("failed to reopen capture source: %w", err)
	}
	s.sourceOpen = true
	s.state = StatePreviewing
	s.lastErr = nil
	return nil
}

// Confirm uploads the captured frame. Exactly one upload may be in flight;
// on failure the frame is preserved and the session returns to Captured so
// no recapture is needed.
func (s *Session) Confirm(ctx context.Context, caption string) error {
	s.mu.Lock()
	if s.state == StateUploading {
		s.mu.Unlock()
		return ErrUploadInFlight
	}
	if s.state != StateCaptured {
		s.mu.Unlock()
		return fmt.Errorf("cannot confirm from %s: %w", s.state, ErrInvalidTransition)
	}
	frame := s.frame
	s.state = StateUploading
	s.mu.Unlock()

	filename := fmt.Sprintf("photo_%d.jpg", time.Now().UnixMilli())
	_, err := s.uploader.Upload(ctx, frame, filename, caption)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateUploading {
		// Cancel ran while the upload was in flight. The session is no
		// longer this upload's to mutate; drop the result.
		return err
	}

	if err != nil {
		// The frame survives the failure; only the upload is retried.
		s.state = StateCaptured
		s.lastErr = err
		return err
	}

	s.frame = nil
	s.state = StateDone
	s.lastErr = nil

	if s.OnUploaded != nil {
		s.OnUploaded()
	}
	return nil
}

// Cancel aborts the session from any state and releases every held
// resource: the countdown timer, the captured frame and the camera handle.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.countdownCancel != nil {
		s.countdownCancel()
		s.countdownCancel = nil
	}
	s.releaseSourceLocked()
	s.frame = nil
	s.state = StateIdle
	s.lastErr = nil
}

func (s *Session) releaseSourceLocked() {
	if !s.sourceOpen {
		return
	}
	if err := s.source.Close(); err != nil && s.lastErr == nil {
		s.lastErr = err
	}
	s.sourceOpen = false
}
