package main

import (
	"context"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"sentiment-dashboard/internal/auth"
	"sentiment-dashboard/internal/config"
	"sentiment-dashboard/internal/service"
	"sentiment-dashboard/internal/storage"

	"github.com/charmbracelet/ssh"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestMainBootstrap(t *testing.T) {
	restore := stubSSHDeps()
	defer restore()

	done := make(chan struct{})
	go func() {
		main()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("main did not exit")
	}
}

func TestDashboardModelDeviceLogin(t *testing.T) {
	store := storage.NewMemoryStore()
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	d := &dashboards{
		cfg:     &config.Config{AuthURL: "http://auth.local", FrontendURL: "http://dash.local"},
		tracer:  tracer,
		store:   store,
		decoder: auth.UnverifiedDecoder{},
		market:  service.NewMarketService(tracer, nil),
		now:     func() time.Time { return now },
	}

	if _, err := d.model(context.Background(), ""); err == nil {
		t.Fatal("expected error without a fingerprint")
	}

	m, err := d.model(context.Background(), "SHA256:abc")
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	if m == nil {
		t.Fatal("expected model")
	}

	logins, _ := store.Namespace(storage.LoginNamespace)
	link, err := d.loginURL(logins, namespaceFor("SHA256:abc"))(context.Background())
	if err != nil {
		t.Fatalf("login url: %v", err)
	}
	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse login url: %v", err)
	}
	callback, err := url.Parse(u.Query().Get("callback_url"))
	if err != nil || callback.Host != "dash.local" || callback.RawQuery != "" || !strings.HasPrefix(callback.Path, "/auth/callback/") {
		t.Fatalf("unexpected callback url %q", u.Query().Get("callback_url"))
	}
	state := strings.TrimPrefix(callback.Path, "/auth/callback/")

	ns, err := auth.CompleteDeviceLogin(context.Background(), logins, state, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if ns != "ssh:SHA256:abc" {
		t.Fatalf("namespace = %q", ns)
	}
}

func TestOpenStorageMemory(t *testing.T) {
	store, err := openStorage(context.Background(), &config.Config{StorageBackend: config.BackendMemory}, trace.NewNoopTracerProvider().Tracer("test"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := store.(*storage.MemoryStore); !ok {
		t.Fatalf("expected memory store, got %T", store)
	}
}

func stubSSHDeps() func() {
	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origConfigureLogger := configureLoggerFunc
	origInitPostgres := initPostgresFunc
	origInitRedis := initRedisFunc
	origInitTracer := initTracerFunc
	origOpenStorage := openStorageFunc
	origNewWishServer := newWishServerFunc
	origSetupSignal := setupSignalNotify
	origWait := waitForSignalFunc
	origFatal := fatalFunc

	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() *config.Config {
		return &config.Config{
			StorageBackend:     config.BackendMemory,
			SSHPort:            2222,
			SSHHostKeyPath:     ".ssh/test_key",
			HTTPTimeoutSecs:    1,
			AnalysisRatePerMin: 60,
		}
	}
	configureLoggerFunc = func(string, string) error { return nil }
	initPostgresFunc = func(context.Context, string) error { return nil }
	initRedisFunc = func(context.Context, string) error { return nil }
	initTracerFunc = func(ctx context.Context) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	openStorageFunc = openStorage
	newWishServerFunc = func(ops ...ssh.Option) (*ssh.Server, error) {
		return nil, nil
	}
	setupSignalNotify = func(c chan<- os.Signal, sig ...os.Signal) {}
	waitForSignalFunc = func(<-chan os.Signal) {}
	fatalFunc = func(...any) {}

	return func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		configureLoggerFunc = origConfigureLogger
		initPostgresFunc = origInitPostgres
		initRedisFunc = origInitRedis
		initTracerFunc = origInitTracer
		openStorageFunc = origOpenStorage
		newWishServerFunc = origNewWishServer
		setupSignalNotify = origSetupSignal
		waitForSignalFunc = origWait
		fatalFunc = origFatal
	}
}
