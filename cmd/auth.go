package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/vuciv/true-random-shuffle/internal/server"
	"github.com/vuciv/true-random-shuffle/internal/shared"
)

// AuthLogin performs the OAuth2 + PKCE authorization flow.
//
// Starts a local HTTP server, opens the browser for user consent, and
// exchanges the returned authorization code for tokens.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(cmd.String("config")); err != nil {
		return err
	}

	if r.config.Credentials.Spotify.ClientID == "" {
		return fmt.Errorf("%w: Spotify client_id must be set in config.toml", shared.ErrInvalidConfig)
	}

	code, err := r.doOAuth(ctx)
	if err != nil {
		return err
	}

	if err := r.auth.Exchange(ctx, code); err != nil {
		return err
	}
	r.engine.ClearReauth()

	r.writePlainln("✓ Authorization successful")
	r.writePlain("You can now use: shuffle tui\n")
	return nil
}

// AuthLogout removes every stored credential.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(cmd.String("config")); err != nil {
		return err
	}

	if err := r.auth.Logout(); err != nil {
		return fmt.Errorf("logout incomplete: %w", err)
	}
	r.writePlain("✓ Credentials removed\n")
	return nil
}

// AuthStatus reports whether credentials are on record and still usable.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(cmd.String("config")); err != nil {
		return err
	}

	if !r.auth.Authenticated() {
		r.writePlain("Not authenticated. Run 'shuffle auth login'.\n")
		return nil
	}

	user, err := r.client.Me(ctx)
	if err != nil {
		r.writePlain("Credentials on record, but the session is not usable: %v\n", err)
		r.writePlain("Run 'shuffle auth login' to reconnect.\n")
		return nil
	}

	r.writePlain("✓ Authenticated as %s", user.DisplayName)
	if user.Email != "" {
		r.writePlain(" (%s)", user.Email)
	}
	r.writePlain("\n")
	return nil
}

// doOAuth runs the browser consent flow against a loopback callback server
// and returns the authorization code.
func (r *Runner) doOAuth(ctx context.Context) (string, error) {
	state := shared.GenerateState()

	authURL, err := r.auth.AuthURL(state)
	if err != nil {
		return "", err
	}

	callback := server.NewCallbackHandler(state)
	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(callback)

	serverAddr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Info("starting OAuth callback server", "addr", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.CallbackResult

	select {
	case result = <-callback.Result():
		// Got result from callback
	case err := <-serverErrors:
		return "", fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return "", fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return "", fmt.Errorf("authorization failed: %w", result.Error())
	}
	return result.Code, nil
}
