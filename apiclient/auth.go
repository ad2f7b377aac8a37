package apiclient

import (
	"context"
	"net/http"

	"github.com/far7tna/portal/credentials"
	apperrors "github.com/far7tna/portal/internal/errors"
	"github.com/far7tna/portal/refresh"
)

const (
	LoginPath   = "/api/auth/login"
	RefreshPath = "/api/tokens/refresh"
)

const defaultLoginMessage = "Invalid email or password."

// AuthAPI calls the unauthenticated auth endpoints. It must be built on a client that
// does not itself refresh, so a rejected exchange cannot trigger another exchange.
type AuthAPI struct {
	client *Client
}

var _ refresh.Exchanger = (*AuthAPI)(nil)

func NewAuthAPI(baseURL string, httpClient *http.Client) *AuthAPI {
	return &AuthAPI{client: NewClient(baseURL, httpClient)}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Login exchanges email and password for credentials. Every non-2xx answer is an *APIError
// that also matches ErrInvalidCredentials; its Message is the text to show the user.
// Transport failures are returned as they are.
func (a *AuthAPI) Login(ctx context.Context, email, password string) (credentials.Credentials, error) {
	var creds credentials.Credentials
	err := a.client.Do(ctx, http.MethodPost, LoginPath, nil, loginRequest{Email: email, Password: password}, &creds)
	if err != nil {
		var apiErr *APIError
		if !apperrors.As(err, &apiErr) {
			return credentials.Credentials{}, err
		}
		// Any answer other than 2xx is a rejected login.
		message := apiErr.Message
		if message == http.StatusText(apiErr.Status) {
			message = defaultLoginMessage
		}
		return credentials.Credentials{}, &APIError{
			Status:  apiErr.Status,
			Message: message,
			cause:   apperrors.ErrInvalidCredentials,
		}
	}
	if !creds.Complete() {
		return credentials.Credentials{}, apperrors.Wrapf(apperrors.ErrIncompleteCredentials, "login response")
	}
	return creds, nil
}

// Exchange implements refresh.Exchanger.
func (a *AuthAPI) Exchange(ctx context.Context, refreshToken string) (credentials.Credentials, error) {
	var creds credentials.Credentials
	err := a.client.Do(ctx, http.MethodPost, RefreshPath, nil, refreshRequest{RefreshToken: refreshToken}, &creds)
	if err != nil {
		return credentials.Credentials{}, apperrors.Wrapf(apperrors.ErrRefreshFailed, "exchange refresh token: %v", err)
	}
	return creds, nil
}
