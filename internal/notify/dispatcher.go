package notify

import (
	"becoming_backend/internal/model"
	"becoming_backend/internal/push"
	"becoming_backend/pkg/monitoring"
	"becoming_backend/pkg/tracing"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	PushTitle          = "The Becoming"
	PushTypeScheduled  = "scheduled_signal"
	DefaultSpec        = "* * * * *"
	DefaultWorkers     = 4
	DefaultHistorySize = 20
)

// Options 调度参数
type Options struct {
	Spec          string
	Location      *time.Location
	Workers       int
	HistoryWindow int
}

func (o Options) withDefaults() Options {
	if o.Spec == "" {
		o.Spec = DefaultSpec
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Workers < 1 {
		o.Workers = DefaultWorkers
	}
	if o.HistoryWindow < 1 {
		o.HistoryWindow = DefaultHistorySize
	}
	return o
}

// TickReport 一次调度的统计
type TickReport struct {
	RunID     string        `json:"runId"`
	Slot      model.Slot    `json:"slot"`
	Due       int           `json:"due"`
	Generated int           `json:"generated"`
	Fallback  int           `json:"fallback"`
	Delivered int           `json:"delivered"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	Duration  time.Duration `json:"duration"`
	Err       error         `json:"-"`
}

type outcomeStatus int

const (
	outcomeSkipped outcomeStatus = iota
	outcomeFailed
	outcomeReady
)

type userOutcome struct {
	status   outcomeStatus
	fallback bool
	message  push.Message
}

// Dispatcher 每分钟一次，为到期用户生成、保存并推送信号
type Dispatcher struct {
	store     Store
	selector  *Selector
	generator Generator
	transport push.Transport
	guard     SlotGuard
	opts      Options
	log       *zap.Logger
	cron      *cron.Cron
}

func NewDispatcher(store Store, selector *Selector, generator Generator, transport push.Transport, guard SlotGuard, opts Options, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		store:     store,
		selector:  selector,
		generator: generator,
		transport: transport,
		guard:     guard,
		opts:      opts.withDefaults(),
		log:       log,
	}
}

// Start 启动定时任务。上一次调度未结束时允许重叠，由时段占用去重。
func (d *Dispatcher) Start() error {
	d.cron = cron.New(
		cron.WithLocation(d.opts.Location),
		cron.WithChain(cron.Recover(cronLogger{d.log})),
	)
	if _, err := d.cron.AddFunc(d.opts.Spec, func() {
		d.Tick(context.Background(), time.Now())
	}); err != nil {
		return fmt.Errorf("schedule dispatcher: %w", err)
	}
	d.cron.Start()
	d.log.Info("Notification dispatcher started",
		zap.String("spec", d.opts.Spec),
		zap.String("timezone", d.opts.Location.String()),
		zap.Int("workers", d.opts.Workers))
	return nil
}

// Stop 停止调度并等待正在运行的任务结束
func (d *Dispatcher) Stop(ctx context.Context) {
	if d.cron == nil {
		return
	}
	stopped := d.cron.Stop()
	select {
	case <-stopped.Done():
		d.log.Info("Notification dispatcher stopped")
	case <-ctx.Done():
		d.log.Warn("Notification dispatcher stop timed out")
	}
}

// Tick 处理 now 所在分钟的时段。查询到期用户失败会中止本次调度，单个用户的失败不影响其他用户。
func (d *Dispatcher) Tick(ctx context.Context, now time.Time) TickReport {
	start := time.Now()
	slot := model.SlotAt(now.In(d.opts.Location))
	report := TickReport{RunID: ulid.Make().String(), Slot: slot}

	ctx, span := tracing.Tracer.Start(ctx, "notify.tick", trace.WithAttributes(
		attribute.String("run_id", report.RunID),
		attribute.String("slot", slot.String()),
	))
	defer span.End()

	log := d.log.With(zap.String("run_id", report.RunID), zap.String("slot", slot.String()))

	due, err := d.store.FindDue(ctx, slot)
	if err != nil {
		log.Error("Failed to query due users", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "find due users")
		monitoring.TicksTotal.WithLabelValues("error").Inc()
		report.Err = err
		report.Duration = time.Since(start)
		return report
	}

	report.Due = len(due)
	monitoring.DueUsers.Set(float64(len(due)))
	if len(due) == 0 {
		log.Debug("No users due")
		monitoring.TicksTotal.WithLabelValues("idle").Inc()
		report.Duration = time.Since(start)
		return report
	}
	log.Info("Dispatching signals", zap.Int("due", len(due)))

	outcomes := make([]userOutcome, len(due))
	var g errgroup.Group
	g.SetLimit(d.opts.Workers)
	for i := range due {
		i := i
		g.Go(func() error {
			outcomes[i] = d.prepare(ctx, report.RunID, slot, due[i], log)
			return nil
		})
	}
	_ = g.Wait()

	var msgs []push.Message
	for _, o := range outcomes {
		switch o.status {
		case outcomeSkipped:
			report.Skipped++
		case outcomeFailed:
			report.Failed++
		case outcomeReady:
			report.Generated++
			if o.fallback {
				report.Fallback++
			}
			msgs = append(msgs, o.message)
		}
	}

	if len(msgs) > 0 {
		for _, r := range d.transport.Send(ctx, msgs) {
			if r.OK {
				report.Delivered++
				monitoring.DeliveriesTotal.WithLabelValues(d.transport.Name(), "ok").Inc()
				continue
			}
			report.Failed++
			monitoring.DeliveriesTotal.WithLabelValues(d.transport.Name(), "failed").Inc()
			monitoring.UserFailures.WithLabelValues("deliver").Inc()
			log.Warn("Push delivery failed",
				zap.Uint("user_id", r.Message.UserID),
				zap.String("signal_id", r.Message.Data["signalId"]),
				zap.Error(r.Err))
		}
	}

	report.Duration = time.Since(start)
	monitoring.TickDuration.Observe(report.Duration.Seconds())
	monitoring.TicksTotal.WithLabelValues("ok").Inc()
	span.SetAttributes(
		attribute.Int("due", report.Due),
		attribute.Int("delivered", report.Delivered),
		attribute.Int("failed", report.Failed),
	)
	log.Info("Tick finished",
		zap.Int("due", report.Due),
		zap.Int("generated", report.Generated),
		zap.Int("fallback", report.Fallback),
		zap.Int("delivered", report.Delivered),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped),
		zap.Duration("duration", report.Duration))
	return report
}

// prepare 为单个用户生成并保存信号，返回待推送的消息。所有错误和 panic 都在这里吸收。
func (d *Dispatcher) prepare(ctx context.Context, runID string, slot model.Slot, user model.DueUser, tickLog *zap.Logger) (out userOutcome) {
	log := tickLog.With(zap.Uint("user_id", user.UserID))

	ctx, span := tracing.Tracer.Start(ctx, "notify.user", trace.WithAttributes(
		attribute.Int64("user_id", int64(user.UserID)),
	))
	defer span.End()

	fail := func(stage string, err error) userOutcome {
		log.Error("Failed to prepare signal", zap.String("stage", stage), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, stage)
		monitoring.UserFailures.WithLabelValues(stage).Inc()
		return userOutcome{status: outcomeFailed}
	}

	defer func() {
		if r := recover(); r != nil {
			out = fail("panic", fmt.Errorf("panic: %v", r))
		}
	}()

	claimed, err := d.guard.Claim(ctx, user.UserID, slot)
	if err != nil {
		return fail("claim", err)
	}
	if !claimed {
		log.Debug("Slot already claimed")
		return userOutcome{status: outcomeSkipped}
	}

	goals, err := d.store.Goals(ctx, user.UserID)
	if err != nil {
		return fail("load", err)
	}
	history, err := d.store.RecentSignals(ctx, user.UserID, d.opts.HistoryWindow)
	if err != nil {
		return fail("load", err)
	}

	target, err := d.selector.Select(goals, user.MainMission, history)
	if errors.Is(err, ErrNothingToTarget) {
		log.Info("User has no goals or mission, skipping")
		return userOutcome{status: outcomeSkipped}
	}
	if err != nil {
		return fail("select", err)
	}

	steering := SteeringContext(history)
	content := d.generator.Generate(ctx, GenerateRequest{
		UserID:   user.UserID,
		RunID:    runID,
		Scope:    target.Scope,
		Goal:     target.Goal,
		Mission:  target.Mission,
		Tone:     user.Tone,
		Liked:    steering.Liked,
		Disliked: steering.Disliked,
		Recent:   steering.Recent,
	})

	signal := &model.Signal{
		UserID:         user.UserID,
		Text:           content.Text,
		Category:       content.Category,
		TargetType:     target.Scope,
		TargetIdentity: target.Label(),
		Feedback:       model.FeedbackNone,
		Origin:         model.OriginScheduled,
	}
	if err := d.store.SaveSignal(ctx, signal); err != nil {
		return fail("persist", err)
	}

	log.Debug("Signal saved", zap.String("signal_id", signal.ID), zap.String("scope", string(signal.TargetType)))
	return userOutcome{
		status:   outcomeReady,
		fallback: content.Fallback,
		message:  SignalMessage(user, signal),
	}
}

// SignalMessage 构造定时信号的推送
func SignalMessage(user model.DueUser, signal *model.Signal) push.Message {
	return push.Message{
		UserID: user.UserID,
		Token:  user.Token,
		Title:  PushTitle,
		Body:   signal.Text,
		Data: map[string]string{
			"type":           PushTypeScheduled,
			"signalId":       signal.ID,
			"text":           signal.Text,
			"signalType":     string(signal.Category),
			"targetType":     string(signal.TargetType),
			"targetIdentity": signal.TargetIdentity,
			"timestamp":      signal.Timestamp().UTC().Format(time.RFC3339),
		},
		Sound:    push.SoundDefault,
		Priority: push.PriorityHigh,
	}
}

// cronLogger 把 cron 的日志接到 zap
type cronLogger struct {
	log *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
