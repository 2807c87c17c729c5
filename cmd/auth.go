package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/snap2style/s2s/internal/models"
	"github.com/snap2style/s2s/internal/repositories"
	"github.com/snap2style/s2s/internal/server"
	"github.com/snap2style/s2s/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// AuthLogin authenticates with email and password and stores the session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	email := cmd.String("email")
	password := cmd.String("password")

	r.logger.Info("logging in", "email", email)

	result, err := r.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if result.Token == "" {
		return fmt.Errorf("%w: no session cookie in response", shared.ErrAuthFailed)
	}

	if err := r.saveSession(email, result.Token); err != nil {
		return err
	}

	r.writePlain("✓ Logged in as %s\n", email)
	return nil
}

// AuthRegister creates an account, stores the session, and prompts for
// email verification.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	email := cmd.String("email")
	password := cmd.String("password")

	r.logger.Info("registering account", "email", email)

	result, err := r.auth.Register(ctx, email, password)
	if err != nil {
		return err
	}
	if result.Token == "" {
		return fmt.Errorf("%w: no session cookie in response", shared.ErrAuthFailed)
	}

	if err := r.saveSession(email, result.Token); err != nil {
		return err
	}

	r.writePlain("✓ Account created and logged in as %s\n", email)
	if result.Message != "" {
		r.writePlain("  %s\n", result.Message)
	}
	r.writePlain("Check your inbox for a code, then run 's2s auth verify' to unlock styling credits.\n")
	return nil
}

// AuthVerify submits the emailed verification code and refreshes the session.
func (r *Runner) AuthVerify(ctx context.Context, cmd *cli.Command) error {
	email := cmd.String("email")
	code := cmd.String("code")

	result, err := r.auth.VerifyOTP(ctx, email, code)
	if err != nil {
		return err
	}

	if result.Token != "" {
		if err := r.saveSession(email, result.Token); err != nil {
			return err
		}
	}

	r.writePlain("✓ Email verified; styling credits unlocked\n")
	if result.Message != "" {
		r.writePlain("  %s\n", result.Message)
	}
	return nil
}

// AuthResend asks the backend to email a fresh verification code.
func (r *Runner) AuthResend(ctx context.Context, cmd *cli.Command) error {
	email := cmd.String("email")

	if err := r.auth.RequestOTP(ctx, email); err != nil {
		return err
	}

	r.writePlain("✓ Verification code sent to %s\n", email)
	return nil
}

// AuthLogout ends the session server-side and clears the stored cookie.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	sessions := repositories.NewSessionRepository(db)

	session, err := sessions.Current()
	if err != nil {
		r.writePlain("Not logged in.\n")
		return nil
	}

	if err := r.auth.Logout(ctx, session.Cookie); err != nil {
		r.logger.Warn("server-side logout failed", "error", err)
	}

	if err := sessions.Clear(); err != nil {
		return err
	}

	r.writePlain("✓ Logged out\n")
	return nil
}

// AuthStatus reports the stored session and the backend's view of it.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	session, err := repositories.NewSessionRepository(db).Current()
	if err != nil {
		r.writePlain("Not logged in (guest requests only).\n")
		return nil
	}

	r.writePlain("Logged in as: %s (since %s)\n", session.Email, session.CreatedAt.Format("2006-01-02"))

	r.styler.SetAuthCookie(session.Cookie)
	info, err := r.styler.Credits(ctx)
	if err != nil {
		r.logger.Warn("failed to verify session with backend", "error", err)
		return nil
	}

	if info.Kind != "user" {
		r.writePlain("⚠ Backend no longer recognizes this session; run 's2s auth login' again.\n")
		return nil
	}

	r.writePlain("Verified: %v, credits: %d\n", info.Verified, info.FreeCredits)
	return nil
}

// AuthGoogle signs in with Google using a local callback server, then
// exchanges the Google ID token for a backend session.
func (r *Runner) AuthGoogle(ctx context.Context, cmd *cli.Command) error {
	creds := r.config.Credentials.Google
	if creds.ClientID == "" || creds.ClientSecret == "" {
		// Without local OAuth credentials the backend's own sign-in page
		// still works; the browser session comes back via 'auth import'.
		startURL := r.auth.GoogleStartURL()
		r.writePlain("→ No Google client credentials configured; opening the backend sign-in page...\n")
		if err := shared.OpenBrowser(startURL); err != nil {
			r.writePlain("Open this URL in your browser:\n%s\n\n", startURL)
		}
		r.writePlain("After signing in, import the web session with 's2s auth import --curl ...'.\n")
		return nil
	}

	redirectURI := creds.RedirectURI
	if redirectURI == "" {
		redirectURI = fmt.Sprintf("http://%s:%d/callback", r.config.Server.Host, r.config.Server.Port)
	}

	oauthConfig := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://accounts.google.com/o/oauth2/auth",
			TokenURL: "https://oauth2.googleapis.com/token",
		},
	}

	result, err := r.doOAuth(ctx, oauthConfig)
	if err != nil {
		return err
	}
	if result.IDToken == "" {
		return fmt.Errorf("%w: no ID token in Google response", shared.ErrAuthFailed)
	}

	authResult, err := r.auth.GoogleIDTokenLogin(ctx, result.IDToken)
	if err != nil {
		return err
	}
	if authResult.Token == "" {
		return fmt.Errorf("%w: no session cookie in response", shared.ErrAuthFailed)
	}

	var email string
	if result.Token != nil {
		if v, ok := result.Token.Extra("email").(string); ok {
			email = v
		}
	}

	if err := r.saveSession(email, authResult.Token); err != nil {
		return err
	}

	r.writePlain("✓ Signed in with Google\n")
	return nil
}

// AuthImport stores a session pasted from the browser as a cURL command.
func (r *Runner) AuthImport(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	if curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: either --curl or --curl-file must be provided", shared.ErrMissingArgument)
	}
	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidInput)
	}

	var session *shared.CurlSession
	var err error

	if curlFile != "" {
		session, err = shared.ParseCurlFile(curlFile)
	} else {
		session, err = shared.ParseCurlCommand([]byte(curlCmd))
	}
	if err != nil {
		return fmt.Errorf("failed to parse cURL command: %w", err)
	}

	token := session.AuthToken()
	if token == "" {
		return fmt.Errorf("%w: no s2s_auth cookie in the cURL command", shared.ErrNotAuthenticated)
	}

	if err := r.saveSession("", token); err != nil {
		return err
	}

	r.writePlain("✓ Web session imported\n")
	return nil
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(ctx context.Context, oauthConfig *oauth2.Config) (*server.OAuthResult, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	authURL := oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
	oauthHandler := server.NewOAuthHandler(oauthConfig, state)
	router := server.NewBasicRouter()
	router.Use(server.LogRequests(r.logger))
	router.Handler(oauthHandler)

	serverAddr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth callback server at %v", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Google sign-in...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("no token received")
	}

	return &result, nil
}

// saveSession persists the auth cookie and attaches it to the HTTP clients.
func (r *Runner) saveSession(email, token string) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	err = repositories.NewSessionRepository(db).Save(models.Session{
		Email:  email,
		Cookie: token,
		Kind:   "user",
	})
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	r.styler.SetAuthCookie(token)
	r.api.SetAuthCookie(token)
	return nil
}
