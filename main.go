package main

import (
	"context"
	"log"
	"os"
	"time"

	apimod "github.com/example/taskboard/modules/api"
	authmod "github.com/example/taskboard/modules/auth"
	broadcastmod "github.com/example/taskboard/modules/broadcast"
	kvstoremod "github.com/example/taskboard/modules/kvstore"
	statsmod "github.com/example/taskboard/modules/stats"
	tasksmod "github.com/example/taskboard/modules/tasks"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration from environment
	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")
	authDBPath := getEnv("AUTH_DB_PATH", "./users.db")
	tasksDBPath := getEnv("TASKS_DB_PATH", "./tasks.db")
	statsTTL := getEnvDuration("STATS_CACHE_TTL", 30*time.Second)
	draftTTL := getEnvDuration("DRAFT_TTL", 24*time.Hour)
	rememberTTL := getEnvDuration("REMEMBER_TTL", 30*24*time.Hour)

	log.Println("=== Taskboard - Academic Task Manager ===")
	log.Printf("Redis: %s", redisAddr)
	log.Printf("Auth DB: %s", authDBPath)
	log.Printf("Tasks DB: %s", tasksDBPath)
	log.Printf("Stats cache TTL: %s", statsTTL)

	// Create modules
	kvModule := kvstoremod.NewModule(redisAddr)
	authModule := authmod.NewModule(authDBPath)
	tasksModule := tasksmod.NewModule(tasksDBPath)
	statsModule := statsmod.NewModule()
	broadcastModule := broadcastmod.NewModule()
	apiModule := apimod.NewModule()

	// Inject broadcast hub into API module
	// (done manually because the hub is not exposed via ServiceContainer)
	apiModule.SetHub(broadcastModule.GetHub())

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create mono application: %v", err)
	}

	// Register modules with the framework.
	// Order: independent modules first, then modules with dependencies
	// - kvstore: Redis-backed key-value stores (drafts, stats cache, remember-me)
	// - auth: identity provider (ServiceProviderModule)
	// - tasks: core domain (ServiceProviderModule + EventEmitterModule)
	// - stats: snapshot computation (depends on tasks, consumes task events)
	// - broadcast: WebSocket hub (consumes task events)
	// - api: Fiber HTTP/WebSocket server (depends on auth, tasks, stats)
	app.Register(kvModule)
	app.Register(authModule)
	app.Register(tasksModule)
	app.Register(statsModule)
	app.Register(broadcastModule)
	app.Register(apiModule)

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	// Wire up Redis-backed stores after start, once the client exists.
	// Each consumer degrades gracefully when its store stays nil.
	authModule.SetRememberStore(kvModule.NewStore("remember:", rememberTTL))
	tasksModule.SetDraftStore(kvModule.NewStore("draft:", draftTTL))
	statsModule.SetStore(kvModule.NewStore("stats:", statsTTL))

	printStartupInfo()

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo() {
	port := getEnv("PORT", "3000")

	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%s):", port)
	log.Println("  GET    /health                          - Health check")
	log.Println("  POST   /api/v1/auth/register            - Register a new account")
	log.Println("  POST   /api/v1/auth/login               - Login, returns token pair")
	log.Println("  POST   /api/v1/auth/refresh             - Refresh the token pair")
	log.Println("  GET    /api/v1/auth/remembered-email    - Prefill email for a device")
	log.Println("  GET    /api/v1/profile                  - Current user profile")
	log.Println("  PUT    /api/v1/profile                  - Update profile")
	log.Println("  GET    /api/v1/tasks                    - List tasks (filter/sort/paginate)")
	log.Println("  POST   /api/v1/tasks                    - Create a task")
	log.Println("  GET    /api/v1/tasks/:id                - Get a task")
	log.Println("  PUT    /api/v1/tasks/:id                - Update a task")
	log.Println("  DELETE /api/v1/tasks/:id                - Delete a task")
	log.Println("  POST   /api/v1/tasks/:id/toggle         - Advance task status")
	log.Println("  POST   /api/v1/tasks/:id/duplicate      - Duplicate a task")
	log.Println("  GET    /api/v1/tasks/draft              - Get creation-form draft")
	log.Println("  PUT    /api/v1/tasks/draft              - Save creation-form draft")
	log.Println("  DELETE /api/v1/tasks/draft              - Discard creation-form draft")
	log.Println("  GET    /api/v1/stats                    - Statistics snapshot")
	log.Println("")
	log.Printf("WebSocket change feed: ws://localhost:%s/ws?token=<access_token>", port)
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}

// getEnv returns the environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration returns the environment variable as a duration or a default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
