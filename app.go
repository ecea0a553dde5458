package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/docuvault/shareview-go/internal/access"
	"github.com/docuvault/shareview-go/internal/config"
	"github.com/docuvault/shareview-go/internal/download"
	"github.com/docuvault/shareview-go/internal/session"
	"github.com/docuvault/shareview-go/internal/shareapi"
)

// app bundles the long-lived pieces every subcommand needs: the share API
// client, the token-info resolver, and the session store.
type app struct {
	cfg      *config.Resolved
	logger   *slog.Logger
	api      *shareapi.Client
	resolver *shareapi.Resolver
	store    *session.Store

	manager *download.Manager
	cached  *download.Handle
}

// newApp assembles the client stack from the resolved configuration.
// Callers must Close it.
func newApp() (*app, error) {
	logger := buildLogger()

	api := shareapi.NewClient(resolvedCfg.ServerURL, defaultHTTPClient(), resolvedCfg.UserAgent, logger)

	store, err := session.Open(config.SessionDBPath(resolvedCfg.DataDir), logger)
	if err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}

	return &app{
		cfg:      resolvedCfg,
		logger:   logger,
		api:      api,
		resolver: shareapi.NewResolver(api),
		store:    store,
	}, nil
}

// Close releases the app's resources.
func (a *app) Close() {
	if a.manager != nil {
		if err := a.manager.Close(); err != nil {
			a.logger.Warn("releasing downloads", slog.String("error", err.Error()))
		}
	}

	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing session store", slog.String("error", err.Error()))
	}
}

// downloads returns the app's download manager, creating it on first use.
// Its temp files live until Close.
func (a *app) downloads() *download.Manager {
	if a.manager == nil {
		a.manager = download.NewManager(a.api, "", a.logger)
	}

	return a.manager
}

// takeCached hands over the handle fetched by the session probe, if any.
// The caller owns it afterwards.
func (a *app) takeCached() *download.Handle {
	handle := a.cached
	a.cached = nil

	return handle
}

// ensureAccess resolves the share token and drives verification to
// completion: silent session restore when a cached identity still works,
// otherwise the interactive email and OTP prompts. The returned Success
// carries the verified email and the share target.
func (a *app) ensureAccess(ctx context.Context, token string) (access.Success, error) {
	if a.cfg.ServerURL == "" {
		return access.Success{}, fmt.Errorf("no server URL configured: set server.base_url in the config file, %s, or --server", config.EnvServer)
	}

	info, err := a.resolver.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, shareapi.ErrLinkInvalid) {
			return access.Success{}, fmt.Errorf("this share link is invalid or has expired")
		}

		return access.Success{}, fmt.Errorf("resolving share link: %w", err)
	}

	machine := access.NewMachine(token, info, a.api, a.store, a.cfg.AllowedEmailDomain, a.logger)

	return runAccessFlow(ctx, machine, a.contentProbe(token), stdinIsTTY(), os.Stdin, os.Stderr)
}

// contentProbe validates a cached session by loading content with it:
// folder shares list their root folder, file shares fetch the document.
// Any failure means the session is stale and verification starts over.
//
// File shares have no listing endpoint, so the probe is a real document
// fetch. The resulting handle is kept on the app and reused by the
// command instead of downloading the same bytes twice.
func (a *app) contentProbe(token string) access.Probe {
	return func(ctx context.Context, sess session.Session) error {
		if sess.ShareType == shareapi.ShareTypeFolder {
			_, err := a.api.FolderContents(ctx, token, sess.Email, "")
			return err
		}

		handle, err := a.downloads().FetchAndOpen(ctx, token, sess.Email, download.Options{})
		if err != nil {
			return err
		}

		a.cached = handle

		return nil
	}
}

// runAccessFlow loops the verification state machine against interactive
// prompts until it reaches Success or the viewer gives up. Prompts go to
// errOut so stdout stays clean for data. interactive is false when stdin
// cannot answer prompts; any state that needs input then fails fast.
func runAccessFlow(ctx context.Context, machine *access.Machine, probe access.Probe, interactive bool, in io.Reader, errOut io.Writer) (access.Success, error) {
	st, err := machine.Start(ctx, probe)
	if err != nil {
		return access.Success{}, err
	}

	reader := bufio.NewReader(in)

	for {
		switch s := st.(type) {
		case access.Success:
			if s.Restored {
				statusf("Verified as %s (cached session)\n", s.Email)
			} else {
				statusf("Verified as %s\n", s.Email)
			}

			return s, nil

		case access.EmailInput:
			if s.ErrMsg != "" {
				fmt.Fprintf(errOut, "%s\n", s.ErrMsg)
			}

			if s.Hint != "" {
				fmt.Fprintf(errOut, "This link is restricted to %s\n", s.Hint)
			}

			if !interactive {
				return access.Success{}, fmt.Errorf("email verification required: run interactively")
			}

			fmt.Fprint(errOut, "Email address: ")

			line, readErr := readLine(reader)
			if readErr != nil {
				return access.Success{}, readErr
			}

			st, err = machine.Apply(ctx, access.SubmitEmail{Email: line})
			if err != nil {
				return access.Success{}, err
			}

		case access.OTPInput:
			if s.ErrMsg != "" {
				fmt.Fprintf(errOut, "%s\n", s.ErrMsg)
			} else if s.AutoSent {
				fmt.Fprintf(errOut, "A verification code was sent to %s\n", s.Email)
			} else {
				fmt.Fprintf(errOut, "Verification code sent to %s\n", s.Email)
			}

			if !interactive {
				return access.Success{}, fmt.Errorf("email verification required: run interactively")
			}

			fmt.Fprint(errOut, "Code (or \"back\" to change email): ")

			line, readErr := readLine(reader)
			if readErr != nil {
				return access.Success{}, readErr
			}

			if strings.EqualFold(line, "back") {
				st, err = machine.Apply(ctx, access.ChangeEmail{})
			} else {
				st, err = machine.Apply(ctx, access.SubmitOTP{Code: line})
			}

			if err != nil {
				return access.Success{}, err
			}

		default:
			return access.Success{}, fmt.Errorf("unexpected verification state %T", st)
		}
	}
}

// readLine reads one trimmed line of input.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading input: %w", err)
	}

	return strings.TrimSpace(line), nil
}
