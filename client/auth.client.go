// client/auth.client.go
package client

import (
	"context"

	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/graph"
	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/internal/models"
)

// Login exchanges credentials for a token and user.
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthPayload, error) {
	var data struct {
		Login models.AuthPayload `json:"login"`
	}
	vars := map[string]interface{}{
		"input": models.LoginInput{Email: email, Password: password},
	}
	if err := c.Do(ctx, graph.Login, vars, &data); err != nil {
		return nil, err
	}
	return &data.Login, nil
}

// Register creates an account and signs it in.
func (c *Client) Register(ctx context.Context, input models.RegisterInput) (*models.AuthPayload, error) {
	var data struct {
		Register models.AuthPayload `json:"register"`
	}
	if err := c.Do(ctx, graph.Register, map[string]interface{}{"input": input}, &data); err != nil {
		return nil, err
	}
	return &data.Register, nil
}

// Me fetches the identity behind the current token. A nil user means the
// server does not recognise the session.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	v, err := c.shared(graph.Me, func() (interface{}, error) {
		var data struct {
			Me *models.User `json:"me"`
		}
		if err := c.Do(ctx, graph.Me, nil, &data); err != nil {
			return nil, err
		}
		if c.cache != nil {
			c.cache.WriteMe(data.Me)
		}
		return data.Me, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.User), nil
}
