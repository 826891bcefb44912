package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/notemanager/notesync/pkg/models"
)

// credentials is the request body shared by the auth endpoints.
type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp creates a new user account. It does not authenticate: callers
// that want a session sign in afterwards.
func (c *Client) SignUp(ctx context.Context, email, password string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/signup", credentials{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("signup request failed: %w", err)
	}

	if err := decodeResponse(resp, nil); err != nil {
		// The server reports a duplicate email as a plain 400.
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest {
			return fmt.Errorf("%w: %s", ErrDuplicateEmail, apiErr.Message)
		}
		return err
	}

	return nil
}

// SignIn authenticates an existing user and returns the issued session.
// On success the credential is kept on the client and attached to
// subsequent requests.
func (c *Client) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/login", credentials{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}

	var result models.Session
	if err := decodeResponse(resp, &result); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest {
			return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, apiErr.Message)
		}
		return nil, err
	}

	c.SetToken(result.Token)

	return &result, nil
}
