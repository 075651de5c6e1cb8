// internal/views/settings.view.go
package views

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/internal/activity"
	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/internal/session"
)

// KeyPreferences is the durable entry holding notification preferences.
const KeyPreferences = "tms_prefs"

// Preferences are local notification toggles.
type Preferences struct {
	EmailAlerts     bool `json:"emailAlerts"`
	ShipmentUpdates bool `json:"shipmentUpdates"`
	DelayAlerts     bool `json:"delayAlerts"`
	WeeklyReports   bool `json:"weeklyReports"`
	MarketingEmails bool `json:"marketingEmails"`
}

// DefaultPreferences are used until the operator saves their own.
func DefaultPreferences() Preferences {
	return Preferences{EmailAlerts: true, ShipmentUpdates: true, DelayAlerts: true}
}

// Settings shows the profile and session and owns logout.
type Settings struct {
	env   *Env
	prefs Preferences
}

func NewSettings(env *Env) *Settings {
	return &Settings{env: env, prefs: DefaultPreferences()}
}

// Load reads saved preferences. Nothing is fetched from the API.
func (v *Settings) Load(ctx context.Context) error {
	if v.env.Prefs == nil {
		return nil
	}
	raw, ok, err := v.env.Prefs.Get(ctx, KeyPreferences)
	if err != nil || !ok {
		return err
	}
	var p Preferences
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		v.env.Logger.Warn("ignoring unreadable preferences", "err", err)
		return nil
	}
	v.prefs = p
	return nil
}

func (v *Settings) Preferences() Preferences {
	return v.prefs
}

// Save stores preferences locally and confirms.
func (v *Settings) Save(ctx context.Context, p Preferences) error {
	if v.env.Prefs != nil {
		raw, err := json.Marshal(p)
		if err != nil {
			return err
		}
		if err := v.env.Prefs.Save(ctx, map[string]string{KeyPreferences: string(raw)}); err != nil {
			v.env.Notify.Error(ctx, "Failed to save settings")
			return err
		}
	}
	v.prefs = p
	v.env.Notify.Success(ctx, "Settings saved successfully")
	return nil
}

// Logout ends the session and opens the login view. If the stored
// session cannot be removed the operator stays signed in.
func (v *Settings) Logout(ctx context.Context) error {
	userID := ""
	if u := v.env.Session.User(); u != nil {
		userID = u.ID
	}
	if err := v.env.Session.Logout(ctx); err != nil {
		v.env.Notify.Error(ctx, "Failed to sign out")
		return err
	}
	v.env.Activity.Record(ctx, activity.Event{Type: activity.SessionLogout, UserID: userID})
	v.env.Nav.Go(Route{Name: LoginView})
	return nil
}

func (v *Settings) Render(w io.Writer) {
	u := v.env.Session.User()
	if u == nil {
		fmt.Fprintln(w, "Not signed in")
		return
	}
	fmt.Fprintln(w, "Profile")
	fmt.Fprintf(w, "  Name        %s\n", u.FullName)
	fmt.Fprintf(w, "  Email       %s\n", u.Email)
	fmt.Fprintf(w, "  Role        %s\n", label(u.Role))
	dept := u.Department
	if dept == "" {
		dept = "—"
	}
	fmt.Fprintf(w, "  Department  %s\n", dept)

	fmt.Fprintln(w, "\nSession")
	exp, err := v.env.Session.ExpiresAt()
	switch {
	case errors.Is(err, session.ErrNoExpiry):
		fmt.Fprintln(w, "  Expires     unknown")
	case err != nil:
		fmt.Fprintf(w, "  Expires     unknown (%v)\n", err)
	default:
		fmt.Fprintf(w, "  Expires     %s (in %s)\n", exp.Local().Format("Jan 2, 2006 3:04 PM"), time.Until(exp).Round(time.Minute))
	}

	p := v.prefs
	fmt.Fprintln(w, "\nNotifications")
	fmt.Fprintf(w, "  Email alerts      %s\n", onOff(p.EmailAlerts))
	fmt.Fprintf(w, "  Shipment updates  %s\n", onOff(p.ShipmentUpdates))
	fmt.Fprintf(w, "  Delay alerts      %s\n", onOff(p.DelayAlerts))
	fmt.Fprintf(w, "  Weekly reports    %s\n", onOff(p.WeeklyReports))
	fmt.Fprintf(w, "  Marketing emails  %s\n", onOff(p.MarketingEmails))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
