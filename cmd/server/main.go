package main

import (
	"log"
	"os"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/tagship/tagship/internal"
	"github.com/tagship/tagship/internal/handler"
	"github.com/tagship/tagship/internal/pipeline"
	"github.com/tagship/tagship/internal/release"
	"github.com/tagship/tagship/internal/security"
	"github.com/tagship/tagship/internal/service"
	"github.com/tagship/tagship/internal/settings"
	"github.com/tagship/tagship/internal/store"
	"github.com/tagship/tagship/internal/toolchain"
	"github.com/tagship/tagship/internal/util"
	"github.com/tagship/tagship/internal/workspace"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	_ "modernc.org/sqlite"
)

// publishCredentialName is the credential row the publish stage resolves
// when no token is supplied through the environment.
const publishCredentialName = "github"

func main() {
	settings.ReadDotenv(internal.DotEnvPath)
	settings.Settings = settings.NewSettings()
	internal.InitializeConfiguration()
	encrypter := security.NewAESEncrypter(security.EnsureHashKey())
	webhookKey := security.EnsureWebhookKey()

	rdb := store.InitDatabase(true)
	defer rdb.Close()
	rwdb := store.InitDatabase(false)
	defer rwdb.Close()
	store.RunMigrations(rwdb, internal.MigrationsDir)

	runStore := store.NewRunSQLiteStore(rdb, rwdb)
	credentialStore := store.NewCredentialSQLiteStore(rdb, rwdb)
	credentialSvc := service.NewCredentialService(credentialStore, encrypter)

	scheduler := service.NewScheduler()
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			log.Println("err shutting down scheduler:", err)
		}
	}()

	queue := service.NewRunQueue(
		runStore,
		newRunnerFactory(credentialStore, encrypter),
		newRetainer(),
		internal.Config.QueueSize,
	)
	runSvc := service.NewRunService(runStore, queue, scheduler)
	runSvc.StartQueue()
	defer runSvc.ShutdownQueue()

	if internal.Config.ScheduleCron != "" {
		if _, err := runSvc.ScheduleBuildRun(internal.Config.ScheduleCron, "main"); err != nil {
			log.Fatal(err)
		}
	}
	runSvc.ScheduleRunPruning(int(internal.Config.HistoryDays))
	scheduler.Start()

	e := setupEcho()
	handler.SetupRunRoutes(e, runSvc, webhookKey)
	handler.SetupCredentialRoutes(e, credentialSvc, webhookKey)

	internal.GracefulShutdown(e, settings.Settings.Port)
}

// newRunnerFactory builds a fresh pipeline per queued run so progress
// lines from concurrent enqueues never interleave.
func newRunnerFactory(
	credentialStore store.CredentialStore,
	encrypter security.Encrypter,
) service.RunnerFactory {
	cfg := internal.Config
	s := settings.Settings

	preparer := workspace.NewPreparer(cfg.Repository, s.WorkspaceRoot, gitAuth())
	builder := toolchain.NewBuilder(cfg.ToolchainVersion, cfg.Target, cfg.ArtifactName)
	owner, name := util.SplitRepoPath(cfg.Repository)
	publisher := release.NewGitHubPublisher(owner, name)

	var tokens pipeline.TokenSource
	if s.GitHubToken != "" {
		tokens = service.EnvTokenSource{Value: s.GitHubToken}
	} else {
		tokens = service.NewStoreTokenSource(
			credentialStore, encrypter, publishCredentialName,
		)
	}

	pcfg := pipeline.Config{
		Repository:       cfg.Repository,
		ToolchainVersion: cfg.ToolchainVersion,
		Target:           cfg.Target,
		ArtifactName:     cfg.ArtifactName,
		PublishEnabled:   cfg.PublishEnabled,
	}

	return func(out func(string)) service.PipelineRunner {
		return pipeline.New(pcfg, preparer, builder, publisher, tokens, out)
	}
}

func gitAuth() transport.AuthMethod {
	s := settings.Settings
	if s.GitSSHKeyPath != "" {
		auth, err := workspace.KeyFileAuth(s.GitSSHUser, s.GitSSHKeyPath)
		if err != nil {
			log.Fatal(err)
		}
		return auth
	}
	if s.GitHubToken != "" {
		return workspace.TokenAuth(s.GitHubToken)
	}
	return nil
}

func newRetainer() *service.Retainer {
	s := settings.Settings
	if s.RetentionHost == "" || s.RetentionKey == "" {
		return nil
	}
	key, err := os.ReadFile(s.RetentionKey)
	if err != nil {
		log.Fatal(err)
	}
	return service.NewRetainer(s.RetentionUser, s.RetentionHost, key, s.RetentionDir)
}

func setupEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = handler.ErrorHandler
	e.Use(
		middleware.CORSWithConfig(internal.GetCORSConfig()),
		middleware.RateLimiterWithConfig(internal.GetRateLimiterConfig()),
	)
	return e
}
