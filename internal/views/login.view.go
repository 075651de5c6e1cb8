// internal/views/login.view.go
package views

import (
	"context"
	"fmt"
	"io"

	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/internal/activity"
	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/internal/models"
)

// LoginForm is what the operator typed. Register fields are ignored when
// signing in.
type LoginForm struct {
	Register   bool
	Email      string
	Password   string
	FirstName  string
	LastName   string
	Department string
}

// Login signs the operator in or registers a new account.
type Login struct {
	env *Env
	// Expired is set when the view was opened because the API rejected the
	// session.
	Expired bool
}

func NewLogin(env *Env) *Login {
	return &Login{env: env}
}

// Submit sends the form. Success shows a welcome notice and opens the
// dashboard; failure shows the server's message.
func (v *Login) Submit(ctx context.Context, form LoginForm) error {
	var (
		user   *models.User
		err    error
		notice string
		event  string
	)
	if form.Register {
		user, err = v.env.Session.Register(ctx, models.RegisterInput{
			Email:      form.Email,
			Password:   form.Password,
			FirstName:  form.FirstName,
			LastName:   form.LastName,
			Department: form.Department,
		})
		notice, event = "Account created successfully!", activity.SessionRegister
	} else {
		user, err = v.env.Session.Login(ctx, form.Email, form.Password)
		notice, event = "Welcome back!", activity.SessionLogin
	}
	if err != nil {
		v.env.Notify.Error(ctx, err.Error())
		return err
	}

	v.Expired = false
	v.env.Notify.Success(ctx, notice)
	v.env.Activity.Record(ctx, activity.Event{Type: event, UserID: user.ID})
	v.env.Nav.Go(Route{Name: DashboardView})
	return nil
}

func (v *Login) Render(w io.Writer) {
	fmt.Fprintln(w, "TMS Dashboard")
	if v.Expired {
		fmt.Fprintln(w, "Your session has expired. Please sign in again.")
		return
	}
	fmt.Fprintln(w, "Sign in with `login --email <email>` or create an account with `register`.")
}
