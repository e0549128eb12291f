package checkout

import (
	"context"
	"sync"
	"time"

	"taprelay/internal/domain/entities"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// State of one charge attempt.
type State string

const (
	StateIdle           State = "IDLE"
	StateSubmitting     State = "SUBMITTING"
	StateAuthenticating State = "AUTHENTICATING"
	StateSucceeded      State = "SUCCEEDED"
	StateFailed         State = "FAILED"
)

// DefaultPollInterval matches the 2s cadence of the original checkout page.
const DefaultPollInterval = 2 * time.Second

// AuthSurface displays the provider's step-up redirect to the payer. The
// embedded iframe modal is one implementation; tests use a recorder.
type AuthSurface interface {
	Present(url string)
	Dismiss()
}

// Result is what an attempt ends with.
type Result struct {
	ChargeID string
	Amount   decimal.Decimal
	Currency string
	Message  string
}

// Callbacks receive attempt outcomes. Nil fields are skipped. A cancelled
// attempt reports nothing: abandonment is not an outcome.
type Callbacks struct {
	OnAuthenticationRequired func(url string)
	OnSuccess                func(Result)
	OnFailure                func(Result)
}

// Config tunes one coordinator.
//
// AuthTimeout bounds how long we wait for the payer to finish 3-D Secure;
// zero keeps the original behavior of polling until cancelled.
type Config struct {
	PollInterval time.Duration
	AuthTimeout  time.Duration
	Logger       logrus.FieldLogger
}

// Coordinator is the charge lifecycle state machine.
//
// At most one poll session is live at a time. Every attempt gets a fresh
// sequence number; a poll response is applied only while its session is still
// the active one, so responses landing after resolution, cancellation or a
// newer attempt are discarded.
type Coordinator struct {
	relay   RelayAPI
	surface AuthSurface
	cb      Callbacks
	cfg     Config
	log     logrus.FieldLogger

	mu      sync.Mutex
	state   State
	seq     uint64
	session *pollSession
}

type pollSession struct {
	seq      uint64
	chargeID string
	cancel   context.CancelFunc
}

func NewCoordinator(relay RelayAPI, surface AuthSurface, cb Callbacks, cfg Config) *Coordinator {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if surface == nil {
		surface = noopSurface{}
	}
	return &Coordinator{
		relay:   relay,
		surface: surface,
		cb:      cb,
		cfg:     cfg,
		log:     logger,
		state:   StateIdle,
	}
}

// State returns the current attempt state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit starts a new charge attempt with a one-time token, cancelling any
// attempt still in flight. It blocks until the relay answers; when step-up
// authentication is required the attempt then continues in the background
// until a poll sees a terminal status, the payer cancels, or the coordinator
// is closed.
func (c *Coordinator) Submit(ctx context.Context, req ChargeRequest) {
	c.mu.Lock()
	c.cancelSessionLocked()
	c.seq++
	seq := c.seq
	c.state = StateSubmitting
	c.mu.Unlock()

	c.log.Infof("[checkout] submit start token=%s amount=%s currency=%s", req.Token, req.Amount, req.Currency)
	env, err := c.relay.CreateCharge(ctx, req)

	c.mu.Lock()
	if c.seq != seq || c.state != StateSubmitting {
		c.mu.Unlock()
		c.log.Infof("[checkout] submission superseded, response discarded")
		return
	}

	var fire func()
	switch {
	case err != nil:
		c.state = StateFailed
		res := Result{Message: err.Error()}
		c.log.Warnf("[checkout] submit transport failed err=%v", err)
		fire = func() { c.fireFailure(res) }

	case !env.Success:
		c.state = StateFailed
		res := Result{Message: env.ErrorMessage()}
		c.log.Warnf("[checkout] charge rejected reason=%s", res.Message)
		fire = func() { c.fireFailure(res) }

	default:
		charge, perr := entities.ParseCharge(env.Charge)
		if perr != nil {
			c.state = StateFailed
			res := Result{Message: "invalid charge response"}
			c.log.Errorf("[checkout] charge response unmarshal failed err=%v", perr)
			fire = func() { c.fireFailure(res) }
			break
		}

		if charge.RequiresAuthentication() {
			sessCtx, cancel := context.WithCancel(context.Background())
			s := &pollSession{seq: seq, chargeID: charge.ID, cancel: cancel}
			c.session = s
			c.state = StateAuthenticating
			authURL := charge.AuthenticationURL()
			c.log.Infof("[checkout] 3-D Secure required charge_id=%s", charge.ID)
			go c.pollLoop(sessCtx, s)
			fire = func() {
				c.surface.Present(authURL)
				if c.cb.OnAuthenticationRequired != nil {
					c.cb.OnAuthenticationRequired(authURL)
				}
			}
			break
		}

		res := Result{ChargeID: charge.ID, Amount: charge.Amount, Currency: charge.Currency, Message: charge.FailureMessage()}
		if charge.Status.Failed() {
			c.state = StateFailed
			c.log.Warnf("[checkout] charge failed without step-up charge_id=%s status=%s", charge.ID, charge.Status)
			fire = func() { c.fireFailure(res) }
		} else {
			c.state = StateSucceeded
			res.Message = ""
			c.log.Infof("[checkout] charge settled without step-up charge_id=%s status=%s", charge.ID, charge.Status)
			fire = func() { c.fireSuccess(res) }
		}
	}
	c.mu.Unlock()
	fire()
}

// Cancel abandons the in-flight attempt: polling stops, the auth surface is
// dismissed and the state returns to idle. Nothing is reported; the payer
// walking away is not an error.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	c.cancelSessionLocked()
	c.state = StateIdle
	c.mu.Unlock()
	c.surface.Dismiss()
	c.log.Infof("[checkout] attempt cancelled")
}

// Close tears the coordinator down, cancelling any active poll session so no
// orphaned polling outlives the component.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.cancelSessionLocked()
	c.state = StateIdle
	c.mu.Unlock()
}

func (c *Coordinator) cancelSessionLocked() {
	if c.session != nil {
		c.session.cancel()
		c.session = nil
	}
}

// pollLoop schedules ticks on the fixed interval. Each tick's network call
// runs on its own goroutine so a slow response never delays the next tick;
// staleness is handled when the response lands.
func (c *Coordinator) pollLoop(ctx context.Context, s *pollSession) {
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	var timeoutC <-chan time.Time
	if c.cfg.AuthTimeout > 0 {
		timer := time.NewTimer(c.cfg.AuthTimeout)
		defer timer.Stop()
		timeoutC = timer.C
	}

	tick := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-timeoutC:
			c.log.Warnf("[checkout] authentication timed out charge_id=%s", s.chargeID)
			c.resolveSession(s, false, Result{ChargeID: s.chargeID, Message: "authentication timed out"})
			return
		case <-ticker.C:
			tick++
			go c.pollOnce(ctx, s, tick)
		}
	}
}

// pollOnce is one status lookup. Anything short of a terminal status, poll
// transport errors included, is a no-op tick: log and keep polling.
func (c *Coordinator) pollOnce(ctx context.Context, s *pollSession, tick int) {
	env, err := c.relay.GetCharge(ctx, s.chargeID)
	if err != nil {
		c.log.Warnf("[checkout] poll error charge_id=%s tick=%d err=%v", s.chargeID, tick, err)
		return
	}
	if !env.Success {
		c.log.Warnf("[checkout] poll rejected charge_id=%s tick=%d reason=%s", s.chargeID, tick, env.ErrorMessage())
		return
	}

	charge, err := entities.ParseCharge(env.Charge)
	if err != nil {
		c.log.Warnf("[checkout] poll response unmarshal failed charge_id=%s tick=%d err=%v", s.chargeID, tick, err)
		return
	}
	c.log.Infof("[checkout] polling status charge_id=%s tick=%d status=%s", s.chargeID, tick, charge.Status)

	if !charge.Status.Terminal() {
		return
	}

	if charge.Status.Succeeded() {
		c.resolveSession(s, true, Result{ChargeID: charge.ID, Amount: charge.Amount, Currency: charge.Currency})
		return
	}
	c.resolveSession(s, false, Result{ChargeID: charge.ID, Amount: charge.Amount, Currency: charge.Currency, Message: charge.FailureMessage()})
}

// resolveSession ends an attempt exactly once. Responses belonging to a
// session that is no longer active (resolved, cancelled, superseded) are
// dropped here.
func (c *Coordinator) resolveSession(s *pollSession, success bool, res Result) {
	c.mu.Lock()
	if c.session == nil || c.session.seq != s.seq {
		c.mu.Unlock()
		c.log.Infof("[checkout] stale poll response discarded charge_id=%s", s.chargeID)
		return
	}
	c.session.cancel()
	c.session = nil
	if success {
		c.state = StateSucceeded
	} else {
		c.state = StateFailed
	}
	c.mu.Unlock()

	c.surface.Dismiss()
	if success {
		c.log.Infof("[checkout] payment successful charge_id=%s", res.ChargeID)
		c.fireSuccess(res)
	} else {
		c.log.Warnf("[checkout] payment failed charge_id=%s reason=%s", res.ChargeID, res.Message)
		c.fireFailure(res)
	}
}

func (c *Coordinator) fireSuccess(res Result) {
	if c.cb.OnSuccess != nil {
		c.cb.OnSuccess(res)
	}
}

func (c *Coordinator) fireFailure(res Result) {
	if c.cb.OnFailure != nil {
		c.cb.OnFailure(res)
	}
}

type noopSurface struct{}

func (noopSurface) Present(string) {}
func (noopSurface) Dismiss()       {}
