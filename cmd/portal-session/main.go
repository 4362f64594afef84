package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/ringer-warp/portal-session/assertion"
	credfilerepo "github.com/ringer-warp/portal-session/credentials/filerepo"
	"github.com/ringer-warp/portal-session/gatekeeper"
	"github.com/ringer-warp/portal-session/identity/httpservice"
	"github.com/ringer-warp/portal-session/internal/config"
	"github.com/ringer-warp/portal-session/session"
	"github.com/ringer-warp/portal-session/tenants"
	tenantfilerepo "github.com/ringer-warp/portal-session/tenants/filerepo"
	"github.com/ringer-warp/portal-session/token"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %s\n", err)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = fmt.Errorf("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	orchestrator, err := buildSession(c, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	unsubscribe := orchestrator.SubscribeTenantChanges(func(tenant *tenants.TenantAccess) {
		if tenant == nil {
			logger.Info().Msg("tenant selection cleared")
			return
		}
		logger.Info().Str("customer", tenant.CustomerName).Str("ban", tenant.BAN).Msg("tenant changed")
	})
	defer unsubscribe()

	if err := orchestrator.Startup(ctx); err != nil {
		return err
	}

	if snapshot := orchestrator.Snapshot(); !snapshot.Authenticated {
		if rawIDToken := os.Getenv("GOOGLE_ID_TOKEN"); rawIDToken != "" {
			if err := loginWithIDToken(ctx, c, orchestrator, rawIDToken); err != nil {
				return err
			}
		}
	}

	printSnapshot(orchestrator)
	return nil
}

func buildSession(c config.Config, logger zerolog.Logger) (*session.Orchestrator, error) {
	credentialRepo, err := credfilerepo.New(c.GetDataFolder(), c.GetCredentialKey())
	if err != nil {
		return nil, err
	}
	selectionRepo, err := tenantfilerepo.New(c.GetDataFolder())
	if err != nil {
		return nil, err
	}

	service := httpservice.New(c.GetAPIBaseURL(),
		httpservice.WithHTTPClient(&http.Client{Timeout: c.GetRequestTimeout()}),
		httpservice.WithLogger(logger),
	)

	manager, err := token.NewManager(service, credentialRepo, token.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	resolver := gatekeeper.NewResolver(service, gatekeeper.WithLogger(logger))
	controller := tenants.NewController(selectionRepo, tenants.WithLogger(logger))

	return session.New(manager, resolver, controller,
		session.WithLogger(logger),
		session.OnForcedLogout(func() {
			logger.Warn().Msg("session revoked by gateway, please sign in again")
		}),
	)
}

func loginWithIDToken(ctx context.Context, c config.Config, orchestrator *session.Orchestrator, rawIDToken string) error {
	verifier, err := assertion.NewVerifier(ctx, c.GetOIDCIssuer(), c.GetOIDCClientID())
	if err != nil {
		return err
	}
	a, err := verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return err
	}
	return orchestrator.Login(ctx, a)
}

func printSnapshot(orchestrator *session.Orchestrator) {
	snapshot := orchestrator.Snapshot()
	if !snapshot.Authenticated {
		fmt.Println("Not signed in. Set GOOGLE_ID_TOKEN to log in.")
		return
	}

	fmt.Printf("Signed in as %s (%s)\n", snapshot.Identity.Email, snapshot.Identity.UserType)
	if snapshot.IsSuperAdmin() {
		fmt.Println("Super admin: all resources permitted")
	}
	if snapshot.Grant.Degraded {
		fmt.Println("Warning: permissions unavailable, running with an empty grant")
	}
	if snapshot.ActiveTenant != nil {
		fmt.Printf("Active customer: %s (BAN %s, %d accessible)\n",
			snapshot.ActiveTenant.CustomerName, snapshot.ActiveTenant.BAN, len(snapshot.TenantAccess()))
	}

	// Any resource paths on the command line become permission probes.
	for _, resourcePath := range os.Args[1:] {
		fmt.Printf("  %-40s %v\n", resourcePath, orchestrator.HasPermission(resourcePath))
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
