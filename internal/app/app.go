// internal/app/app.go
package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/client"
	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/config"
	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/internal/activity"
	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/internal/cache"
	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/internal/notify"
	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/internal/session"
	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/internal/views"
	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/pkg/kafka"
	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/shared/rabbitmq"
	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/store"
)

// App is one tmsctl process: a session, a gateway client and the views
// sharing them.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer
	in     *bufio.Reader

	Store    store.SessionStore
	Client   *client.Client
	Session  *session.Manager
	Nav      *views.Navigator
	Env      *views.Env
	activity activity.Recorder
	broker   *rabbitmq.Client

	login     *views.Login
	dashboard *views.Dashboard
	list      *views.ShipmentList
	detail    *views.ShipmentDetail
	analytics *views.Analytics
	settings  *views.Settings

	unauthMu sync.Mutex
	expired  int
}

type options struct {
	store      store.SessionStore
	out        io.Writer
	in         io.Reader
	notifier   notify.Notifier
	recorder   activity.Recorder
	httpClient *http.Client
	logger     *slog.Logger
}

// Option customises New.
type Option func(*options)

// WithStore uses st instead of the configured session backend.
func WithStore(st store.SessionStore) Option {
	return func(o *options) { o.store = st }
}

// WithOutput renders views and notices to w.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithInput reads prompts and shell lines from r.
func WithInput(r io.Reader) Option {
	return func(o *options) { o.in = r }
}

// WithNotifier replaces the console and queue notifiers.
func WithNotifier(n notify.Notifier) Option {
	return func(o *options) { o.notifier = n }
}

// WithActivity replaces the configured activity recorder.
func WithActivity(r activity.Recorder) Option {
	return func(o *options) { o.recorder = r }
}

// WithHTTPClient sends API requests through hc.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New wires the application and restores a persisted session.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	o := options{out: os.Stdout, in: os.Stdin, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{
		cfg:    cfg,
		logger: o.logger,
		out:    o.out,
		in:     bufio.NewReader(o.in),
	}

	st := o.store
	if st == nil {
		var err error
		if st, err = openStore(cfg); err != nil {
			return nil, err
		}
	}
	a.Store = st

	c := cache.New()
	api, err := client.NewClient(cfg.API_URL, client.Options{
		HTTPClient:        o.httpClient,
		Timeout:           cfg.HTTP_TIMEOUT,
		Tokens:            client.TokenFunc(func() string { return a.Session.Token() }),
		Cache:             c,
		Logger:            a.logger,
		OnUnauthenticated: a.handleUnauthenticated,
	})
	if err != nil {
		st.Close()
		return nil, err
	}
	a.Client = api
	a.Session = session.NewManager(st, api, c, a.logger)
	if err := a.Session.Hydrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	a.Nav = views.NewNavigator(a.Session.IsAuthenticated)

	notifier := o.notifier
	if notifier == nil {
		notifier = a.openNotifier()
	}
	a.activity = o.recorder
	if a.activity == nil {
		a.activity = a.openRecorder()
	}

	a.Env = &views.Env{
		API:      api,
		Session:  a.Session,
		Nav:      a.Nav,
		Notify:   notifier,
		Activity: a.activity,
		Prefs:    st,
		Out:      a.out,
		Logger:   a.logger,
		PageSize: cfg.PAGE_SIZE,
	}
	a.login = views.NewLogin(a.Env)
	a.dashboard = views.NewDashboard(a.Env)
	a.list = views.NewShipmentList(a.Env)
	a.detail = views.NewShipmentDetail(a.Env)
	a.analytics = views.NewAnalytics(a.Env)
	a.settings = views.NewSettings(a.Env)

	if a.Session.IsAuthenticated() {
		a.Nav.Go(views.Route{Name: views.DashboardView})
	}
	return a, nil
}

func openStore(cfg *config.Config) (store.SessionStore, error) {
	switch cfg.SESSION_BACKEND {
	case config.BackendMemory:
		return store.NewMemoryStore(), nil
	case config.BackendPostgres:
		return store.NewPostgresStore(cfg.Common.GetDBURL(), cfg.PROFILE)
	default:
		return store.NewBadgerStore(cfg.SessionDir())
	}
}

// openNotifier prints notices and, when a broker is configured, forwards
// them to the notice queue. An unreachable broker only loses forwarding.
func (a *App) openNotifier() notify.Notifier {
	console := notify.NewConsole(a.out)
	if !a.cfg.Common.RabbitMQEnabled() {
		return console
	}
	broker, err := rabbitmq.NewClient(a.cfg.Common.GetRabbitMQURL())
	if err != nil {
		a.logger.Warn("notice forwarding disabled", "err", err)
		return console
	}
	if err := broker.DeclareQueue(a.cfg.Common.RABBITMQ_QUEUE); err != nil {
		a.logger.Warn("notice forwarding disabled", "err", err)
		broker.Close()
		return console
	}
	a.broker = broker
	return notify.Multi{console, notify.NewQueue(broker, a.cfg.Common.RABBITMQ_QUEUE, a.logger)}
}

func (a *App) openRecorder() activity.Recorder {
	if !a.cfg.Common.KafkaEnabled() {
		return activity.Nop{}
	}
	producer := kafka.NewProducer(a.cfg.Common.KAFKA_BROKER, a.cfg.Common.KAFKA_TOPIC, "tmsctl", a.logger)
	return activity.NewKafkaRecorder(producer, a.logger)
}

// handleUnauthenticated discards the session as soon as any response says
// it is no longer valid and sends the operator to the login view. A
// rejected login carries no session, so there is nothing to expire.
func (a *App) handleUnauthenticated(ctx context.Context) {
	a.unauthMu.Lock()
	defer a.unauthMu.Unlock()

	u := a.Session.User()
	if u == nil {
		return
	}
	if err := a.Session.Invalidate(ctx); err != nil {
		a.logger.Warn("failed to clear expired session", "err", err)
	}
	a.activity.Record(ctx, activity.Event{Type: activity.SessionInvalidated, UserID: u.ID})
	a.login.Expired = true
	a.expired++
	a.Nav.Go(views.Route{Name: views.LoginView})
}

// expirations counts sessions discarded by handleUnauthenticated.
func (a *App) expirations() int {
	a.unauthMu.Lock()
	defer a.unauthMu.Unlock()
	return a.expired
}

// Close flushes activity events and releases the broker and session store.
func (a *App) Close() error {
	var first error
	if err := a.activity.Close(); err != nil {
		first = err
	}
	if a.broker != nil {
		if err := a.broker.Close(); err != nil && first == nil {
			first = err
		}
	}
	if err := a.Store.Close(); err != nil && first == nil {
		first = fmt.Errorf("failed to close session store: %w", err)
	}
	return first
}
