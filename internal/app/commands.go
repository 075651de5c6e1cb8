// internal/app/commands.go
package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/internal/activity"
	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/internal/models"
	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/internal/notify"
	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/internal/views"
	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/pkg/kafka"
	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/shared/rabbitmq"
)

var (
	// ErrLoginRequired is returned by commands that need a session when
	// there is none.
	ErrLoginRequired = errors.New("not signed in")
	// ErrSessionExpired is returned when the API rejected the session
	// during the command.
	ErrSessionExpired = errors.New("session expired")
	// ErrUsage reports a malformed command line.
	ErrUsage = errors.New("usage")
	// ErrNotConfigured is returned by follow commands without a broker.
	ErrNotConfigured = errors.New("broker not configured")
)

type command struct {
	usage string
	run   func(ctx context.Context, args []string) error
}

func (a *App) commands() map[string]command {
	return map[string]command{
		"login":     {"login --email <email> [--password <pw>]", a.cmdLogin},
		"register":  {"register --email <email> --first <name> --last <name> [--department <d>]", a.cmdRegister},
		"logout":    {"logout", a.cmdLogout},
		"whoami":    {"whoami [--remote]", a.cmdWhoami},
		"dashboard": {"dashboard", a.cmdDashboard},
		"analytics": {"analytics", a.cmdAnalytics},
		"shipments": {"shipments [--status S] [--flagged] [--select S,..] [--priority P,..] [--search text] [--sort FIELD] [--grid|--tile] [--clear]", a.cmdShipments},
		"more":      {"more", a.cmdMore},
		"shipment":  {"shipment <id>", a.cmdShipment},
		"flag":      {"flag <id> [--reason <text>]", a.cmdFlag},
		"unflag":    {"unflag <id>", a.cmdUnflag},
		"status":    {"status <id> <STATUS>", a.cmdStatus},
		"delete":    {"delete <id>", a.cmdDelete},
		"create":    {"create --file <input.json>", a.cmdCreate},
		"update":    {"update <id> --file <input.json>", a.cmdUpdate},
		"settings":  {"settings [--email-alerts=bool] [--shipment-updates=bool] [--delay-alerts=bool] [--weekly-reports=bool] [--marketing-emails=bool]", a.cmdSettings},
		"notices":   {"notices", a.cmdNotices},
		"activity":  {"activity [--group <id>]", a.cmdActivity},
	}
}

// Run executes one command line.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage(a.out)
		return ErrUsage
	}
	name, rest := args[0], args[1:]
	switch name {
	case "help", "-h", "--help":
		a.usage(a.out)
		return nil
	case "shell":
		return a.Shell(ctx)
	}
	cmd, ok := a.commands()[name]
	if !ok {
		a.usage(a.out)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, name)
	}

	expired := a.expirations()
	err := cmd.run(ctx, rest)
	if err != nil && a.expirations() != expired {
		a.login.Render(a.out)
		return ErrSessionExpired
	}
	if errors.Is(err, ErrUsage) {
		fmt.Fprintln(a.out, "usage: tmsctl "+cmd.usage)
	}
	return err
}

func (a *App) usage(w io.Writer) {
	cmds := a.commands()
	names := make([]string, 0, len(cmds))
	for n := range cmds {
		names = append(names, n)
	}
	sort.Strings(names)
	fmt.Fprintln(w, "usage: tmsctl <command> [flags]")
	for _, n := range names {
		fmt.Fprintf(w, "  %s\n", cmds[n].usage)
	}
	fmt.Fprintln(w, "  shell")
}

// parseArgs parses flags that may appear before, after or between
// positional arguments and returns the positionals.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUsage, err)
		}
		if fs.NArg() == 0 {
			return positional, nil
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
}

func (a *App) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// open navigates to r. When the guard sends the operator to the login view
// instead, the login view is shown and ErrLoginRequired returned.
func (a *App) open(r views.Route) error {
	if got := a.Nav.Go(r); got.Name != r.Name {
		a.login.Render(a.out)
		return ErrLoginRequired
	}
	return nil
}

func (a *App) prompt(label string) (string, error) {
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (a *App) cmdLogin(ctx context.Context, args []string) error {
	fs := a.flagSet("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	return a.submitLogin(ctx, views.LoginForm{Email: *email, Password: *password})
}

func (a *App) cmdRegister(ctx context.Context, args []string) error {
	fs := a.flagSet("register")
	form := views.LoginForm{Register: true}
	fs.StringVar(&form.Email, "email", "", "account email")
	fs.StringVar(&form.Password, "password", "", "account password")
	fs.StringVar(&form.FirstName, "first", "", "first name")
	fs.StringVar(&form.LastName, "last", "", "last name")
	fs.StringVar(&form.Department, "department", "", "department")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	if form.FirstName == "" || form.LastName == "" {
		return fmt.Errorf("%w: --first and --last are required", ErrUsage)
	}
	return a.submitLogin(ctx, form)
}

func (a *App) submitLogin(ctx context.Context, form views.LoginForm) error {
	if form.Email == "" {
		return fmt.Errorf("%w: --email is required", ErrUsage)
	}
	if form.Password == "" {
		pw, err := a.prompt("Password: ")
		if err != nil {
			return err
		}
		form.Password = pw
	}
	a.Nav.Go(views.Route{Name: views.LoginView})
	if err := a.login.Submit(ctx, form); err != nil {
		return err
	}
	return a.showDashboard(ctx)
}

func (a *App) cmdLogout(ctx context.Context, _ []string) error {
	if !a.Session.IsAuthenticated() {
		fmt.Fprintln(a.out, "Not signed in")
		return nil
	}
	if err := a.settings.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *App) cmdWhoami(ctx context.Context, args []string) error {
	fs := a.flagSet("whoami")
	remote := fs.Bool("remote", false, "ask the API instead of the stored session")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	u := a.Session.User()
	if u == nil {
		a.login.Render(a.out)
		return ErrLoginRequired
	}
	if *remote {
		me, err := a.Client.Me(ctx)
		if err != nil {
			return err
		}
		u = me
	}
	fmt.Fprintf(a.out, "%s <%s>  %s\n", u.FullName, u.Email, u.Role)
	return nil
}

func (a *App) cmdDashboard(ctx context.Context, _ []string) error {
	return a.showDashboard(ctx)
}

func (a *App) showDashboard(ctx context.Context) error {
	if err := a.open(views.Route{Name: views.DashboardView}); err != nil {
		return err
	}
	err := a.dashboard.Load(ctx)
	if errors.Is(err, views.ErrLeft) {
		return err
	}
	// partial results still render
	a.dashboard.Render(a.out)
	return err
}

func (a *App) cmdAnalytics(ctx context.Context, _ []string) error {
	if err := a.open(views.Route{Name: views.AnalyticsView}); err != nil {
		return err
	}
	if err := a.analytics.Load(ctx); err != nil {
		return err
	}
	a.analytics.Render(a.out)
	return nil
}

func (a *App) cmdShipments(ctx context.Context, args []string) error {
	fs := a.flagSet("shipments")
	status := fs.String("status", "", "show only this status")
	flagged := fs.Bool("flagged", false, "show only flagged shipments")
	selectStatus := fs.String("select", "", "toggle selected statuses (comma separated)")
	priority := fs.String("priority", "", "toggle selected priorities (comma separated)")
	search := fs.String("search", "", "search text")
	sortField := fs.String("sort", "", "sort field; repeating the active field flips the order")
	grid := fs.Bool("grid", false, "card layout")
	tile := fs.Bool("tile", false, "table layout")
	clearFilters := fs.Bool("clear", false, "clear filters")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	params := map[string]string{}
	if *status != "" {
		params["status"] = *status
	}
	if *flagged {
		params["flagged"] = "true"
	}
	route := views.Route{Name: views.ShipmentsView, Params: params}
	if err := a.open(route); err != nil {
		return err
	}

	if *clearFilters {
		a.list.ClearFilters()
	}
	a.list.SetParams(route)
	for _, s := range splitList(*selectStatus) {
		st := models.ShipmentStatus(strings.ToUpper(s))
		if !st.IsValid() {
			return fmt.Errorf("%w: unknown status %q", ErrUsage, s)
		}
		a.list.ToggleStatus(st)
	}
	for _, p := range splitList(*priority) {
		pr := models.ShipmentPriority(strings.ToUpper(p))
		if !pr.IsValid() {
			return fmt.Errorf("%w: unknown priority %q", ErrUsage, p)
		}
		a.list.TogglePriority(pr)
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "search" {
			a.list.SetSearch(*search)
		}
	})
	if *sortField != "" {
		field := models.SortField(strings.ToUpper(*sortField))
		if !field.IsValid() {
			return fmt.Errorf("%w: unknown sort field %q", ErrUsage, *sortField)
		}
		a.list.SortBy(field)
	}
	switch {
	case *grid:
		a.list.SetMode(views.ModeGrid)
	case *tile:
		a.list.SetMode(views.ModeTile)
	}

	if err := a.list.Load(ctx); err != nil {
		return err
	}
	a.list.Render(a.out)
	return nil
}

func (a *App) cmdMore(ctx context.Context, _ []string) error {
	if a.Nav.Current().Name != views.ShipmentsView {
		return fmt.Errorf("%w: open a list with `shipments` first", ErrUsage)
	}
	if !a.list.Connection().PageInfo.HasNextPage {
		fmt.Fprintln(a.out, "No more shipments")
		return nil
	}
	if err := a.list.LoadMore(ctx); err != nil {
		return err
	}
	a.list.Render(a.out)
	return nil
}

func (a *App) cmdShipment(ctx context.Context, args []string) error {
	id, err := oneID(a.flagSet("shipment"), args)
	if err != nil {
		return err
	}
	if err := a.openDetail(ctx, id); err != nil {
		return err
	}
	a.detail.Render(a.out)
	return nil
}

func (a *App) openDetail(ctx context.Context, id string) error {
	if err := a.open(views.Route{Name: views.DetailView, Params: map[string]string{"id": id}}); err != nil {
		return err
	}
	return a.detail.Load(ctx, id)
}

// onDetail reports whether id is the shipment open in the detail view.
func (a *App) onDetail(id string) bool {
	cur := a.Nav.Current()
	return cur.Name == views.DetailView && cur.Param("id") == id
}

func (a *App) cmdFlag(ctx context.Context, args []string) error {
	fs := a.flagSet("flag")
	reason := fs.String("reason", "", "why the shipment needs attention")
	id, err := oneID(fs, args)
	if err != nil {
		return err
	}
	if !a.Session.IsAuthenticated() {
		a.login.Render(a.out)
		return ErrLoginRequired
	}
	if strings.TrimSpace(*reason) == "" {
		if *reason, err = a.prompt("Reason for flagging: "); err != nil {
			return err
		}
	}

	if a.onDetail(id) {
		err = a.detail.Flag(ctx, *reason)
	} else {
		err = a.list.Flag(ctx, id, *reason)
	}
	if errors.Is(err, views.ErrReasonRequired) {
		fmt.Fprintln(a.out, "Flag cancelled: a reason is required")
		return nil
	}
	return err
}

func (a *App) cmdUnflag(ctx context.Context, args []string) error {
	id, err := oneID(a.flagSet("unflag"), args)
	if err != nil {
		return err
	}
	if !a.Session.IsAuthenticated() {
		a.login.Render(a.out)
		return ErrLoginRequired
	}
	if a.onDetail(id) {
		return a.detail.Unflag(ctx)
	}
	return a.list.Unflag(ctx, id)
}

func (a *App) cmdStatus(ctx context.Context, args []string) error {
	pos, err := parseArgs(a.flagSet("status"), args)
	if err != nil {
		return err
	}
	if len(pos) != 2 {
		return fmt.Errorf("%w: expected <id> <STATUS>", ErrUsage)
	}
	id, status := pos[0], models.ShipmentStatus(strings.ToUpper(pos[1]))
	if !status.IsValid() {
		return views.ErrInvalidStatus
	}
	if !a.onDetail(id) {
		if err := a.openDetail(ctx, id); err != nil {
			return err
		}
	}
	if a.detail.NotFound() {
		a.detail.Render(a.out)
		return nil
	}
	if err := a.detail.UpdateStatus(ctx, status); err != nil {
		return err
	}
	a.detail.Render(a.out)
	return nil
}

func (a *App) cmdDelete(ctx context.Context, args []string) error {
	id, err := oneID(a.flagSet("delete"), args)
	if err != nil {
		return err
	}
	if !a.Session.IsAuthenticated() {
		a.login.Render(a.out)
		return ErrLoginRequired
	}
	if a.onDetail(id) {
		return a.detail.Delete(ctx)
	}
	if a.Nav.Current().Name != views.ShipmentsView {
		if err := a.open(views.Route{Name: views.ShipmentsView}); err != nil {
			return err
		}
	}
	return a.list.Delete(ctx, id)
}

func (a *App) cmdCreate(ctx context.Context, args []string) error {
	fs := a.flagSet("create")
	file := fs.String("file", "", "JSON file holding the shipment input")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	var input models.CreateShipmentInput
	if err := readJSON(*file, &input); err != nil {
		return err
	}
	if err := a.open(views.Route{Name: views.ShipmentsView}); err != nil {
		return err
	}
	sh, err := a.list.Create(ctx, input)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created %s (%s)\n", sh.TrackingNumber, sh.ID)
	a.list.Render(a.out)
	return nil
}

func (a *App) cmdUpdate(ctx context.Context, args []string) error {
	fs := a.flagSet("update")
	file := fs.String("file", "", "JSON file holding the fields to change")
	id, err := oneID(fs, args)
	if err != nil {
		return err
	}
	var input models.UpdateShipmentInput
	if err := readJSON(*file, &input); err != nil {
		return err
	}
	if !a.onDetail(id) {
		if err := a.openDetail(ctx, id); err != nil {
			return err
		}
	}
	if a.detail.NotFound() {
		a.detail.Render(a.out)
		return nil
	}
	if err := a.detail.Update(ctx, input); err != nil {
		return err
	}
	a.detail.Render(a.out)
	return nil
}

func (a *App) cmdSettings(ctx context.Context, args []string) error {
	if err := a.open(views.Route{Name: views.SettingsView}); err != nil {
		return err
	}
	if err := a.settings.Load(ctx); err != nil {
		return err
	}

	p := a.settings.Preferences()
	fs := a.flagSet("settings")
	fs.BoolVar(&p.EmailAlerts, "email-alerts", p.EmailAlerts, "email alerts")
	fs.BoolVar(&p.ShipmentUpdates, "shipment-updates", p.ShipmentUpdates, "shipment updates")
	fs.BoolVar(&p.DelayAlerts, "delay-alerts", p.DelayAlerts, "delay alerts")
	fs.BoolVar(&p.WeeklyReports, "weekly-reports", p.WeeklyReports, "weekly reports")
	fs.BoolVar(&p.MarketingEmails, "marketing-emails", p.MarketingEmails, "marketing emails")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	changed := false
	fs.Visit(func(*flag.Flag) { changed = true })
	if changed {
		if err := a.settings.Save(ctx, p); err != nil {
			return err
		}
	}
	a.settings.Render(a.out)
	return nil
}

// cmdNotices prints notices forwarded by other tmsctl processes until ctx
// ends.
func (a *App) cmdNotices(ctx context.Context, _ []string) error {
	if !a.cfg.Common.RabbitMQEnabled() {
		return fmt.Errorf("%w: set RABBITMQ_HOST", ErrNotConfigured)
	}
	broker, err := rabbitmq.NewClient(a.cfg.Common.GetRabbitMQURL())
	if err != nil {
		return err
	}
	defer broker.Close()
	if err := broker.DeclareQueue(a.cfg.Common.RABBITMQ_QUEUE); err != nil {
		return err
	}
	src, err := broker.Consume(ctx, a.cfg.Common.RABBITMQ_QUEUE)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Following notices on %s (Ctrl-C to stop)\n", a.cfg.Common.RABBITMQ_QUEUE)
	if err := notify.Follow(ctx, src, a.out); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// cmdActivity prints operator events from the activity topic until ctx
// ends.
func (a *App) cmdActivity(ctx context.Context, args []string) error {
	fs := a.flagSet("activity")
	group := fs.String("group", "tmsctl-"+a.cfg.PROFILE, "consumer group")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	if !a.cfg.Common.KafkaEnabled() {
		return fmt.Errorf("%w: set KAFKA_BROKER and KAFKA_TOPIC", ErrNotConfigured)
	}
	consumer := kafka.NewConsumer(a.cfg.Common.KAFKA_BROKER, a.cfg.Common.KAFKA_TOPIC, *group, a.logger)
	defer consumer.Close()

	fmt.Fprintf(a.out, "Following activity on %s (Ctrl-C to stop)\n", a.cfg.Common.KAFKA_TOPIC)
	consumer.Start(ctx, func(_ context.Context, _, value []byte) error {
		return printEvent(a.out, value)
	})
	return nil
}

func printEvent(w io.Writer, value []byte) error {
	var ev activity.Event
	if err := json.Unmarshal(value, &ev); err != nil {
		return fmt.Errorf("undecodable activity event: %w", err)
	}
	line := fmt.Sprintf("%s  %-22s user=%s", ev.At.Local().Format("15:04:05"), ev.Type, ev.UserID)
	if ev.ShipmentID != "" {
		line += " shipment=" + ev.ShipmentID
	}
	keys := make([]string, 0, len(ev.Detail))
	for k := range ev.Detail {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		line += fmt.Sprintf(" %s=%q", k, ev.Detail[k])
	}
	fmt.Fprintln(w, line)
	return nil
}

func oneID(fs *flag.FlagSet, args []string) (string, error) {
	pos, err := parseArgs(fs, args)
	if err != nil {
		return "", err
	}
	if len(pos) != 1 || pos[0] == "" {
		return "", fmt.Errorf("%w: expected one shipment id", ErrUsage)
	}
	return pos[0], nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func readJSON(path string, v interface{}) error {
	if path == "" {
		return fmt.Errorf("%w: --file is required", ErrUsage)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
